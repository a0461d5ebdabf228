package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/lirany1/stress-insight/pkg/controller"
	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/form"
	"github.com/lirany1/stress-insight/pkg/logger"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/renderer"
	"github.com/lirany1/stress-insight/pkg/themes"
)

// Config holds server configuration
type Config struct {
	Addr        string
	FormOptions map[string][]string
	Palette     themes.Palette
}

// Server serves the prediction page. It holds a single page session: one
// form, one results surface.
type Server struct {
	config     *Config
	router     *mux.Router
	controller *controller.Controller

	// mu guards values only; the surface is locked by the renderer
	mu     sync.Mutex
	values models.FormInput
}

// NewServer creates a page server presenting through c
func NewServer(cfg *Config, c *controller.Controller) *Server {
	s := &Server{
		config:     cfg,
		router:     mux.NewRouter(),
		controller: c,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	logger.Infof("Server running at http://%s", s.config.Addr)
	logger.Info("Press Ctrl+C to stop")

	return http.ListenAndServe(s.config.Addr, s.router)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handlePage).Methods(http.MethodGet)
	s.router.HandleFunc("/submit", s.handleSubmit).Methods(http.MethodPost)
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.writePage(w)
}

// handleSubmit runs the prediction without holding any page lock, so the page
// stays readable and a concurrent submit is turned away by the controller.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	_, err := s.controller.HandleSubmit(r.Context(), r.PostForm)
	if err != nil {
		logger.WithFields(logrus.Fields{"remote": r.RemoteAddr}).Warnf("Submission failed: %v", err)
	}
	if !errors.Is(err, controller.ErrSubmissionPending) {
		s.mu.Lock()
		s.values = form.Collect(r.PostForm)
		s.mu.Unlock()
	}
	s.writePage(w)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// writePage renders into a buffer first so a template failure never leaves a
// half-written page
func (s *Server) writePage(w http.ResponseWriter) {
	s.mu.Lock()
	values := s.values
	s.mu.Unlock()

	var buf bytes.Buffer
	err := s.controller.Renderer().View(func(surface *display.Surface) error {
		view := renderer.NewPageView(surface, s.config.FormOptions, values, s.config.Palette)
		view.Notices = surface.TakeNotices()
		return renderer.RenderPage(&buf, view)
	})
	if err != nil {
		logger.Errorf("Failed to render page: %v", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
