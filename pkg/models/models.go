package models

import (
	"strings"
)

// Form field names, in the order the page lays them out
const (
	FieldAge             = "age"
	FieldGender          = "gender"
	FieldWorkHours       = "work_hours"
	FieldScreenTime      = "screen_time"
	FieldSleepTime       = "sleep_time"
	FieldExerciseFreq    = "exercise_freq"
	FieldMood            = "mood"
	FieldFatigue         = "fatigue"
	FieldHeadache        = "headache"
	FieldWorkLifeBalance = "work_life_balance"
	FieldSocialSupport   = "social_support"
)

// FieldNames lists every field the prediction service expects
var FieldNames = []string{
	FieldAge,
	FieldGender,
	FieldWorkHours,
	FieldScreenTime,
	FieldSleepTime,
	FieldExerciseFreq,
	FieldMood,
	FieldFatigue,
	FieldHeadache,
	FieldWorkLifeBalance,
	FieldSocialSupport,
}

// FormInput is a snapshot of the form, keyed by field name. Values are sent as-is.
type FormInput map[string]string

// FeatureScore pairs a feature name with a numeric score
type FeatureScore struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Scores is an ordered list of feature scores. Order follows the keys of the
// response document so ties can be broken by position.
type Scores []FeatureScore

// Names returns the feature names in order
func (s Scores) Names() []string {
	names := make([]string, len(s))
	for i, score := range s {
		names[i] = score.Name
	}
	return names
}

// Values returns the scores in order
func (s Scores) Values() []float64 {
	values := make([]float64, len(s))
	for i, score := range s {
		values[i] = score.Value
	}
	return values
}

// PredictionResult is the structured response of the prediction service
type PredictionResult struct {
	Prediction        string            `json:"prediction"`
	FeatureImportance Scores            `json:"feature_importance"`
	ImportanceByValue Scores            `json:"importance_by_value"`
	InputValues       map[string]string `json:"input_values"`
}

// StyleClass returns the case-folded prediction label used as a style token
func (r *PredictionResult) StyleClass() string {
	return strings.ToLower(r.Prediction)
}

// InputValue returns the submitted value for a feature, or "" when the
// service did not echo it.
func (r *PredictionResult) InputValue(feature string) string {
	if r.InputValues == nil {
		return ""
	}
	return r.InputValues[feature]
}
