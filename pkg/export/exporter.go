package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/sync/errgroup"

	"github.com/lirany1/stress-insight/pkg/charts"
	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/logger"
	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/renderer"
)

// Supported export formats
const (
	FormatHTML = "html"
	FormatPNG  = "png"
	FormatJSON = "json"
)

const (
	htmlFile = "stress-report.html"
	jsonFile = "stress-report.json"
)

var chartFiles = map[charts.Slot]string{
	charts.SlotFeature: "feature-importance.png",
	charts.SlotProfile: "profile-impact.png",
}

// Report is a snapshot of one presented prediction
type Report struct {
	Result          *models.PredictionResult
	View            renderer.PageView
	Charts          map[charts.Slot]charts.Config
	Recommendations []string
}

// Snapshot captures what r currently shows for result
func Snapshot(r *renderer.Renderer, result *models.PredictionResult, view renderer.PageView) *Report {
	report := &Report{
		Result: result,
		View:   view,
		Charts: make(map[charts.Slot]charts.Config),
	}
	_ = r.View(func(surface *display.Surface) error {
		report.Recommendations = surface.Recommendations.Bullets()
		return nil
	})
	for slot := range chartFiles {
		if cfg, ok := r.ChartConfig(slot); ok {
			report.Charts[slot] = cfg
		}
	}
	return report
}

// Exporter handles exporting reports to various formats
type Exporter struct {
	Width  int
	Height int
}

// NewExporter creates a new exporter with the default image size
func NewExporter() *Exporter {
	return &Exporter{Width: 800, Height: 480}
}

// Export writes report into outputDir once per format, concurrently. It
// returns the written paths in sorted order.
func (e *Exporter) Export(ctx context.Context, report *Report, outputDir string, formats []string) ([]string, error) {
	if report == nil || report.Result == nil {
		return nil, fmt.Errorf("nothing to export")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var (
		mu      sync.Mutex
		written []string
	)
	record := func(paths ...string) {
		mu.Lock()
		written = append(written, paths...)
		mu.Unlock()
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, format := range dedupe(formats) {
		format := format
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var (
				paths []string
				err   error
			)
			switch format {
			case FormatHTML:
				paths, err = e.exportHTML(report, outputDir)
			case FormatPNG:
				paths, err = e.exportPNG(report, outputDir)
			case FormatJSON:
				paths, err = e.exportJSON(report, outputDir)
			default:
				err = fmt.Errorf("unsupported export format %q", format)
			}
			if err != nil {
				return fmt.Errorf("%s export: %w", format, err)
			}
			record(paths...)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(written)
	logger.Infof("Exported %d file(s) to %s", len(written), outputDir)
	return written, nil
}

func (e *Exporter) exportHTML(report *Report, outputDir string) ([]string, error) {
	var buf bytes.Buffer
	if err := renderer.RenderPage(&buf, report.View); err != nil {
		return nil, err
	}
	path := filepath.Join(outputDir, htmlFile)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// jsonSummary is the machine-readable form of a report
type jsonSummary struct {
	Prediction        string            `json:"prediction"`
	Label             string            `json:"label"`
	FeatureImportance models.Scores     `json:"feature_importance"`
	ImportanceByValue models.Scores     `json:"importance_by_value"`
	InputValues       map[string]string `json:"input_values"`
	Recommendations   []string          `json:"recommendations"`
}

func (e *Exporter) exportJSON(report *Report, outputDir string) ([]string, error) {
	result := report.Result
	summary := jsonSummary{
		Prediction:        result.Prediction,
		Label:             "Predicted Stress Level: " + result.Prediction,
		FeatureImportance: result.FeatureImportance,
		ImportanceByValue: result.ImportanceByValue,
		InputValues:       result.InputValues,
		Recommendations:   report.Recommendations,
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return nil, err
	}
	path := filepath.Join(outputDir, jsonFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// exportPNG draws each non-empty chart as a static bar chart
func (e *Exporter) exportPNG(report *Report, outputDir string) ([]string, error) {
	var paths []string
	for _, slot := range []charts.Slot{charts.SlotFeature, charts.SlotProfile} {
		cfg, ok := report.Charts[slot]
		if !ok || len(cfg.Data) == 0 {
			logger.Debugf("Skipping %s chart image: no data", slot)
			continue
		}

		var buf bytes.Buffer
		if err := e.barChart(cfg).Render(chart.PNG, &buf); err != nil {
			return nil, fmt.Errorf("failed to render %s chart: %w", slot, err)
		}
		path := filepath.Join(outputDir, chartFiles[slot])
		if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func (e *Exporter) barChart(cfg charts.Config) chart.BarChart {
	style := chart.Style{
		FillColor:   drawing.ParseColor(cfg.Colors.Fill),
		StrokeColor: drawing.ParseColor(cfg.Colors.Border),
		StrokeWidth: float64(cfg.BorderWidth),
	}

	bars := make([]chart.Value, len(cfg.Data))
	top := 0.0
	for i, v := range cfg.Data {
		label := ""
		if i < len(cfg.Labels) {
			label = cfg.Labels[i]
		}
		bars[i] = chart.Value{Label: label, Value: v, Style: style}
		if v > top {
			top = v
		}
	}
	if top <= 0 {
		top = 1
	}

	return chart.BarChart{
		Title:      cfg.Title,
		Width:      e.Width,
		Height:     e.Height,
		BarWidth:   barWidth(e.Width, len(bars)),
		Background: chart.Style{Padding: chart.Box{Top: 48, Left: 16, Right: 16, Bottom: 16}},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.1},
		},
		Bars: bars,
	}
}

func barWidth(width, count int) int {
	if count == 0 {
		return 40
	}
	w := width / (count * 2)
	if w > 60 {
		return 60
	}
	if w < 8 {
		return 8
	}
	return w
}

func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}
