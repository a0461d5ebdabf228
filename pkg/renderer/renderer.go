package renderer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/lirany1/stress-insight/pkg/advice"
	"github.com/lirany1/stress-insight/pkg/charts"
	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/logger"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/themes"
)

// DefaultFailureMessage is shown when an error carries no message
const DefaultFailureMessage = "Prediction failed"

// ErrNoResult is returned by Present when called without a result
var ErrNoResult = errors.New("no prediction result to present")

// Renderer writes prediction results onto a display surface. Present, Fail,
// ChartConfig, Close and View are serialized; readers that reach the surface
// from another goroutine go through View.
type Renderer struct {
	mu      sync.Mutex
	surface *display.Surface
	charts  *charts.Manager
	engine  *advice.Engine
	palette themes.Palette
}

// New creates a renderer. The chart manager is owned by the renderer from here on.
func New(surface *display.Surface, manager *charts.Manager, engine *advice.Engine, palette themes.Palette) *Renderer {
	return &Renderer{
		surface: surface,
		charts:  manager,
		engine:  engine,
		palette: palette,
	}
}

// Surface returns the surface the renderer writes to. It is not locked; use
// View when a Present may be running concurrently.
func (r *Renderer) Surface() *display.Surface {
	return r.surface
}

// View runs fn with the surface locked against Present and Fail
func (r *Renderer) View(fn func(surface *display.Surface) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(r.surface)
}

// Present renders both charts and then reveals the results region with the
// label and recommendations. If a chart fails, the label, visibility and
// recommendations keep their previous state.
func (r *Renderer) Present(result *models.PredictionResult) error {
	if result == nil {
		return ErrNoResult
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	featureCfg := charts.FeatureImportanceConfig(result.FeatureImportance, r.palette)
	if err := r.charts.Render(charts.SlotFeature, r.surface.FeatureHost, featureCfg); err != nil {
		return fmt.Errorf("failed to render feature importance: %w", err)
	}

	profileCfg := charts.ProfileImpactConfig(result.ImportanceByValue, r.palette)
	if err := r.charts.Render(charts.SlotProfile, r.surface.ProfileHost, profileCfg); err != nil {
		return fmt.Errorf("failed to render profile impact: %w", err)
	}

	recommendations := r.engine.Recommend(result)

	r.surface.Results.Visible = true
	r.surface.Label.Text = "Predicted Stress Level: " + result.Prediction
	r.surface.Label.Class = "prediction-" + result.StyleClass()
	r.surface.Recommendations.Clear()
	for _, text := range recommendations {
		r.surface.Recommendations.Append(display.Bullet{Text: text})
	}

	logger.Infof("Presented %s prediction with %d recommendations", result.Prediction, len(recommendations))
	return nil
}

// Fail surfaces err to the user. The results region is left as it was.
func (r *Renderer) Fail(err error) {
	message := DefaultFailureMessage
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.surface.Notify("Error: " + message)
	logger.Warnf("Prediction not presented: %s", message)
}

// ChartConfig returns the configuration of the chart currently shown in slot
func (r *Renderer) ChartConfig(slot charts.Slot) (charts.Config, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst := r.charts.Live(slot)
	if inst == nil {
		return charts.Config{}, false
	}
	return inst.Config(), true
}

// Close releases both charts
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.charts.Close()
}
