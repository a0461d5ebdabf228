package charts

import (
	"fmt"
	"html/template"
	"sync"

	echarts "github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/lirany1/stress-insight/pkg/display"
)

const (
	defaultWidth  = "100%"
	defaultHeight = "360px"
)

// EChartsFactory builds bar charts with go-echarts. The chart option is drawn
// onto the canvas as JSON for the page script to initialise.
type EChartsFactory struct {
	Width  string
	Height string
}

// NewEChartsFactory creates a factory with the default chart size
func NewEChartsFactory() *EChartsFactory {
	return &EChartsFactory{Width: defaultWidth, Height: defaultHeight}
}

// Construct builds the chart described by cfg and draws it on canvas
func (f *EChartsFactory) Construct(canvas *display.Canvas, cfg Config) (Instance, error) {
	if canvas == nil {
		return nil, fmt.Errorf("canvas is required")
	}
	if cfg.Type != "" && cfg.Type != TypeBar {
		return nil, fmt.Errorf("unsupported chart type %q", cfg.Type)
	}

	bar := echarts.NewBar()
	bar.SetGlobalOptions(
		echarts.WithInitializationOpts(opts.Initialization{
			ChartID:         canvas.ID,
			Theme:           cfg.Theme,
			Width:           f.Width,
			Height:          f.Height,
			BackgroundColor: cfg.Background,
		}),
		echarts.WithTitleOpts(opts.Title{Title: cfg.Title, Left: "center"}),
		echarts.WithLegendOpts(opts.Legend{Show: opts.Bool(false)}),
		echarts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		echarts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			AxisLabel: &opts.AxisLabel{Interval: "0", Rotate: 30},
		}),
		echarts.WithYAxisOpts(yAxisFor(cfg)),
	)

	data := make([]opts.BarData, len(cfg.Data))
	for i, v := range cfg.Data {
		data[i] = opts.BarData{Value: v}
	}

	bar.SetXAxis(cfg.Labels).
		AddSeries(cfg.SeriesLabel, data,
			echarts.WithItemStyleOpts(opts.ItemStyle{
				Color:       cfg.Colors.Fill,
				BorderColor: cfg.Colors.Border,
			}),
		)

	canvas.Draw(template.JS(bar.JSONNotEscaped()))

	return &echartsInstance{bar: bar, canvas: canvas, cfg: cfg}, nil
}

func yAxisFor(cfg Config) opts.YAxis {
	axis := opts.YAxis{Type: "value"}
	if cfg.BeginAtZero {
		axis.Min = 0
		axis.Scale = opts.Bool(false)
	}
	return axis
}

type echartsInstance struct {
	mu     sync.Mutex
	bar    *echarts.Bar
	canvas *display.Canvas
	cfg    Config
}

func (i *echartsInstance) Config() Config {
	return i.cfg
}

func (i *echartsInstance) Destroy() {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.canvas != nil {
		i.canvas.Release()
		i.canvas = nil
	}
	i.bar = nil
}
