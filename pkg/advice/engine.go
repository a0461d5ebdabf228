package advice

import (
	"sort"

	"github.com/lirany1/stress-insight/pkg/models"
)

const (
	// TopContributors is how many ranked features are checked against the rules
	TopContributors = 3
	// MinRecommendations is the floor reached by padding with general advice
	MinRecommendations = 3
	// MaxRecommendations caps the returned list
	MaxRecommendations = 5
)

// Rule maps a feature's at-risk input values to one piece of advice
type Rule struct {
	Feature string
	AtRisk  []string
	Advice  string
}

// Matches reports whether value is one of the rule's at-risk values
func (r Rule) Matches(value string) bool {
	for _, risky := range r.AtRisk {
		if value == risky {
			return true
		}
	}
	return false
}

var defaultRules = []Rule{
	{
		Feature: models.FieldSleepTime,
		AtRisk:  []string{"Less than 4 hours", "4 - 6 hours"},
		Advice:  "Try to get more sleep (aim for 7-8 hours per night)",
	},
	{
		Feature: models.FieldWorkHours,
		AtRisk:  []string{"More than 10 hours", "9 - 10 hours"},
		Advice:  "Consider reducing work hours or taking regular breaks",
	},
	{
		Feature: models.FieldExerciseFreq,
		AtRisk:  []string{"Never", "1 - 2 times per week"},
		Advice:  "Increase physical activity (aim for at least 3-4 times per week)",
	},
	{
		Feature: models.FieldScreenTime,
		AtRisk:  []string{"More than 6 hours", "4 - 6 hours"},
		Advice:  "Take regular breaks from screen time and practice the 20-20-20 rule",
	},
	{
		Feature: models.FieldWorkLifeBalance,
		AtRisk:  []string{"Not Balanced", "Somewhat Balanced"},
		Advice:  "Work on improving work-life balance through better time management",
	},
	{
		Feature: models.FieldSocialSupport,
		AtRisk:  []string{"None", "Weak"},
		Advice:  "Build stronger social connections and seek support when needed",
	},
}

var fallbackAdvice = []string{
	"Practice stress management techniques like meditation or deep breathing",
	"Maintain a regular sleep schedule",
	"Take regular breaks during work hours",
}

// Rules returns a copy of the built-in rule table
func Rules() []Rule {
	rules := make([]Rule, len(defaultRules))
	for i, rule := range defaultRules {
		rules[i] = Rule{
			Feature: rule.Feature,
			AtRisk:  append([]string(nil), rule.AtRisk...),
			Advice:  rule.Advice,
		}
	}
	return rules
}

// Fallbacks returns the general advice used for padding, in order
func Fallbacks() []string {
	return append([]string(nil), fallbackAdvice...)
}

// Engine turns a prediction into personalized recommendations
type Engine struct {
	rules     map[string]Rule
	fallbacks []string
}

// NewEngine creates an engine with the built-in rule table
func NewEngine() *Engine {
	return NewEngineWithRules(defaultRules)
}

// NewEngineWithRules creates an engine with a custom rule table. Later rules
// for the same feature replace earlier ones.
func NewEngineWithRules(rules []Rule) *Engine {
	byFeature := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		byFeature[rule.Feature] = rule
	}
	return &Engine{
		rules:     byFeature,
		fallbacks: Fallbacks(),
	}
}

// Rank orders scores by descending value. Equal values keep their original order.
func Rank(scores models.Scores) models.Scores {
	ranked := make(models.Scores, len(scores))
	copy(ranked, scores)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}

// Recommend returns between MinRecommendations and MaxRecommendations pieces of
// advice. Rule matches for the top contributors come first, in rank order.
func (e *Engine) Recommend(result *models.PredictionResult) []string {
	recommendations := make([]string, 0, MaxRecommendations)

	if result != nil {
		ranked := Rank(result.ImportanceByValue)
		if len(ranked) > TopContributors {
			ranked = ranked[:TopContributors]
		}
		for _, contributor := range ranked {
			rule, ok := e.rules[contributor.Name]
			if !ok {
				continue
			}
			if rule.Matches(result.InputValue(contributor.Name)) {
				recommendations = append(recommendations, rule.Advice)
			}
		}
	}

	for _, general := range e.fallbacks {
		if len(recommendations) >= MinRecommendations {
			break
		}
		recommendations = append(recommendations, general)
	}

	if len(recommendations) > MaxRecommendations {
		recommendations = recommendations[:MaxRecommendations]
	}
	return recommendations
}
