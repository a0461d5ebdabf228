package themes

import (
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/types"
)

// DefaultTheme is used when no theme or an unknown theme is configured
const DefaultTheme = "default"

// ColorPair is the fill and border colour of one chart's bars
type ColorPair struct {
	Fill   string
	Border string
}

// Palette holds the colours of both result charts
type Palette struct {
	Name         string
	Feature      ColorPair
	Profile      ColorPair
	EChartsTheme string
	Background   string
}

var palettes = map[string]Palette{
	"default": {
		Name:         "default",
		Feature:      ColorPair{Fill: "rgba(54, 162, 235, 0.6)", Border: "rgba(54, 162, 235, 1)"},
		Profile:      ColorPair{Fill: "rgba(255, 99, 132, 0.6)", Border: "rgba(255, 99, 132, 1)"},
		EChartsTheme: types.ThemeWesteros,
		Background:   "#ffffff",
	},
	"dark": {
		Name:         "dark",
		Feature:      ColorPair{Fill: "rgba(34, 211, 238, 0.6)", Border: "rgba(34, 211, 238, 1)"},
		Profile:      ColorPair{Fill: "rgba(251, 113, 133, 0.6)", Border: "rgba(251, 113, 133, 1)"},
		EChartsTheme: types.ThemeChalk,
		Background:   "#060c1b",
	},
	"classic": {
		Name:         "classic",
		Feature:      ColorPair{Fill: "rgba(75, 192, 192, 0.6)", Border: "rgba(75, 192, 192, 1)"},
		Profile:      ColorPair{Fill: "rgba(255, 159, 64, 0.6)", Border: "rgba(255, 159, 64, 1)"},
		EChartsTheme: types.ThemeMacarons,
		Background:   "#fafafa",
	},
}

// Manager resolves palette names
type Manager struct {
	fallback string
}

// NewManager creates a manager that falls back to the named theme
func NewManager(fallback string) *Manager {
	if _, ok := palettes[normalize(fallback)]; !ok {
		fallback = DefaultTheme
	}
	return &Manager{fallback: normalize(fallback)}
}

// Palette returns the named palette, or the fallback when name is unknown
func (m *Manager) Palette(name string) Palette {
	if p, ok := palettes[normalize(name)]; ok {
		return p
	}
	return palettes[m.fallback]
}

// Names lists the available palettes
func (m *Manager) Names() []string {
	names := make([]string, 0, len(palettes))
	for name := range palettes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
