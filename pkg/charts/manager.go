package charts

import (
	"errors"
	"fmt"

	"github.com/lirany1/stress-insight/pkg/display"
	"github.com/lirany1/stress-insight/pkg/logger"
)

// Slot names a chart position on the page. Each slot holds at most one live chart.
type Slot string

const (
	SlotFeature Slot = "feature"
	SlotProfile Slot = "profile"
)

// ErrNoHost is returned when Render is called without a host container
var ErrNoHost = errors.New("chart host container is required")

// Instance is a live chart bound to a canvas
type Instance interface {
	Config() Config
	// Destroy releases the drawing resources. It is safe to call twice.
	Destroy()
}

// Factory is the charting capability: it builds a chart on a canvas
type Factory interface {
	Construct(canvas *display.Canvas, cfg Config) (Instance, error)
}

// Manager owns the chart slots and replaces their occupants safely
type Manager struct {
	factory Factory
	slots   map[Slot]Instance
}

// NewManager creates a manager that builds charts with factory
func NewManager(factory Factory) *Manager {
	return &Manager{
		factory: factory,
		slots:   make(map[Slot]Instance),
	}
}

// Render destroys the slot's current chart, empties host, creates a fresh
// canvas inside it and builds a new chart there.
func (m *Manager) Render(slot Slot, host *display.Container, cfg Config) error {
	if host == nil {
		return ErrNoHost
	}

	m.release(slot)
	host.Clear()

	canvas := display.NewCanvas()
	host.Append(canvas)

	instance, err := m.factory.Construct(canvas, cfg)
	if err != nil {
		return fmt.Errorf("failed to construct %s chart: %w", slot, err)
	}
	m.slots[slot] = instance

	logger.Debugf("Rendered %s chart with %d bars on %s", slot, len(cfg.Data), canvas.ID)
	return nil
}

// Live returns the slot's current chart, or nil
func (m *Manager) Live(slot Slot) Instance {
	return m.slots[slot]
}

// Close destroys every live chart
func (m *Manager) Close() {
	for slot := range m.slots {
		m.release(slot)
	}
}

func (m *Manager) release(slot Slot) {
	if live, ok := m.slots[slot]; ok && live != nil {
		live.Destroy()
	}
	delete(m.slots, slot)
}
