package charts

import (
	"strings"

	"github.com/lirany1/stress-insight/pkg/models"
	"github.com/lirany1/stress-insight/pkg/themes"
)

// TypeBar is the only visual encoding the result charts use
const TypeBar = "bar"

const (
	featureTitle  = "General Feature Importance"
	featureSeries = "Feature Importance"
	profileTitle  = "Your Profile Impact"
	profileSeries = "Impact on Your Stress"

	// model-side feature names carry this suffix
	codeSuffix = "_Code"
)

// Config is the declarative description of one chart
type Config struct {
	Type        string
	Title       string
	SeriesLabel string
	Labels      []string
	Data        []float64
	Colors      themes.ColorPair
	BorderWidth int
	BeginAtZero bool
	Theme       string
	Background  string
}

// FeatureLabel turns a model feature name such as "Work_Hours_Code" into "Work Hours"
func FeatureLabel(name string) string {
	return strings.ReplaceAll(strings.TrimSuffix(name, codeSuffix), "_", " ")
}

// ProfileLabel turns a form field name such as "sleep_time" into "sleep time"
func ProfileLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// FeatureImportanceConfig describes the model-wide importance chart
func FeatureImportanceConfig(scores models.Scores, palette themes.Palette) Config {
	return newBarConfig(featureTitle, featureSeries, scores, FeatureLabel, palette.Feature, palette)
}

// ProfileImpactConfig describes the chart of this profile's contributions
func ProfileImpactConfig(scores models.Scores, palette themes.Palette) Config {
	return newBarConfig(profileTitle, profileSeries, scores, ProfileLabel, palette.Profile, palette)
}

func newBarConfig(title, series string, scores models.Scores, label func(string) string, colors themes.ColorPair, palette themes.Palette) Config {
	labels := make([]string, len(scores))
	for i, score := range scores {
		labels[i] = label(score.Name)
	}
	return Config{
		Type:        TypeBar,
		Title:       title,
		SeriesLabel: series,
		Labels:      labels,
		Data:        scores.Values(),
		Colors:      colors,
		BorderWidth: 1,
		BeginAtZero: true,
		Theme:       palette.EChartsTheme,
		Background:  palette.Background,
	}
}
