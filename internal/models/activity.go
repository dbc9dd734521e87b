// ABOUTME: Activity definitions for the daily tracking questions.
// ABOUTME: Holds render types, value domains, and the fixed default catalog.
package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownActivity is returned for an activity id not in the catalog.
var ErrUnknownActivity = errors.New("unknown activity")

// ActivityType determines how an activity is answered and stored.
type ActivityType string

const (
	ActivityCheckbox ActivityType = "checkbox"
	ActivityRating   ActivityType = "rating"
	ActivityNumber   ActivityType = "number"
	ActivityText     ActivityType = "text"
	ActivityScale    ActivityType = "scale"
)

// Bucketing names the qualitative label set applied to a numeric value.
type Bucketing string

const (
	BucketNone     Bucketing = ""
	BucketMood     Bucketing = "mood"
	BucketSeverity Bucketing = "severity"
)

// ActivityConfig constrains the input control. It never constrains stored values.
type ActivityConfig struct {
	Min          *float64       `json:"min,omitempty" yaml:"min,omitempty"`
	Max          *float64       `json:"max,omitempty" yaml:"max,omitempty"`
	Step         *float64       `json:"step,omitempty" yaml:"step,omitempty"`
	Unit         string         `json:"unit,omitempty" yaml:"unit,omitempty"`
	MaxRating    int            `json:"max_rating,omitempty" yaml:"max_rating,omitempty"`
	Labels       []string       `json:"labels,omitempty" yaml:"labels,omitempty"`
	ScaleLabels  map[int]string `json:"scale_labels,omitempty" yaml:"scale_labels,omitempty"`
	DefaultValue *float64       `json:"default_value,omitempty" yaml:"default_value,omitempty"`
	Placeholder  string         `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Multiline    bool           `json:"multiline,omitempty" yaml:"multiline,omitempty"`
	Optional     bool           `json:"optional,omitempty" yaml:"optional,omitempty"`
	Bucketing    Bucketing      `json:"bucketing,omitempty" yaml:"bucketing,omitempty"`
}

// Activity is one configured daily tracking question.
type Activity struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Type        ActivityType   `json:"type" yaml:"type"`
	Description string         `json:"description" yaml:"description"`
	Config      ActivityConfig `json:"config" yaml:"config"`
}

// Coerce converts raw text input to the value type the activity stores.
// Range is not checked; out-of-range numbers are stored as given.
func (a Activity) Coerce(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	switch a.Type {
	case ActivityCheckbox:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "1", "done", "x":
			return BoolValue(true), nil
		case "false", "no", "n", "0", "":
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%s expects yes/no, got %q", a.ID, raw)
	case ActivityRating, ActivityNumber, ActivityScale:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("%s expects a number, got %q", a.ID, raw)
		}
		return NumberValue(n), nil
	case ActivityText:
		return TextValue(raw), nil
	}
	return Value{}, fmt.Errorf("activity %s has unsupported type %q", a.ID, a.Type)
}

// IsComplete reports whether v counts as answered for daily progress.
func (a Activity) IsComplete(v *Value) bool {
	if v == nil || !v.IsValid() {
		return false
	}
	switch a.Type {
	case ActivityCheckbox:
		b, ok := v.Bool()
		return ok && b
	case ActivityRating:
		n, ok := v.Number()
		return ok && n > 0
	case ActivityText:
		s, ok := v.Text()
		return ok && strings.TrimSpace(s) != ""
	case ActivityNumber, ActivityScale:
		return true
	}
	return false
}

// FindActivity returns the activity with the given id.
func FindActivity(activities []Activity, id string) (Activity, error) {
	for _, a := range activities {
		if a.ID == id {
			return a, nil
		}
	}
	return Activity{}, fmt.Errorf("%w: %s", ErrUnknownActivity, id)
}

func floatPtr(v float64) *float64 { return &v }

// DefaultActivities returns the standing catalog in display order.
func DefaultActivities() []Activity {
	return []Activity{
		{
			ID:          "sleep-quality",
			Name:        "Sleep Quality",
			Type:        ActivityRating,
			Description: "How well did you sleep?",
			Config: ActivityConfig{
				MaxRating: 5,
				Labels:    []string{"Terrible", "Poor", "Okay", "Good", "Great"},
			},
		},
		{
			ID:          "sleep-hours",
			Name:        "Hours Slept",
			Type:        ActivityNumber,
			Description: "How many hours did you sleep?",
			Config: ActivityConfig{
				Min:          floatPtr(0),
				Max:          floatPtr(24),
				Step:         floatPtr(0.5),
				Unit:         "hours",
				DefaultValue: floatPtr(7),
			},
		},
		{
			ID:          "exercise",
			Name:        "Exercise",
			Type:        ActivityText,
			Description: "What exercise did you do today?",
			Config:      ActivityConfig{Placeholder: "e.g., 30 min walk, yoga class..."},
		},
		{
			ID:          "stretch",
			Name:        "Stretch",
			Type:        ActivityCheckbox,
			Description: "Did you stretch today?",
		},
		{
			ID:          "weather",
			Name:        "Weather",
			Type:        ActivityText,
			Description: "What was the weather like?",
			Config:      ActivityConfig{Placeholder: "e.g., sunny, rainy, overcast..."},
		},
		{
			ID:          "sunshine",
			Name:        "Sunshine",
			Type:        ActivityNumber,
			Description: "How many minutes did you spend in the sun?",
			Config: ActivityConfig{
				Min:  floatPtr(0),
				Max:  floatPtr(600),
				Step: floatPtr(5),
				Unit: "minutes",
			},
		},
		{
			ID:          "mood",
			Name:        "Mood",
			Type:        ActivityScale,
			Description: "Where are you on the spectrum?",
			Config: ActivityConfig{
				Min:          floatPtr(-5),
				Max:          floatPtr(5),
				Step:         floatPtr(1),
				ScaleLabels:  map[int]string{-5: "Depressed", 0: "Baseline", 5: "Manic"},
				DefaultValue: floatPtr(0),
				Bucketing:    BucketMood,
			},
		},
		{
			ID:          "paranoia",
			Name:        "Paranoia",
			Type:        ActivityScale,
			Description: "How strong is any paranoia today?",
			Config: ActivityConfig{
				Min:          floatPtr(0),
				Max:          floatPtr(10),
				Step:         floatPtr(1),
				ScaleLabels:  map[int]string{0: "None", 5: "Moderate", 10: "Severe"},
				DefaultValue: floatPtr(0),
				Bucketing:    BucketSeverity,
			},
		},
		{
			ID:          "scrambled-brains",
			Name:        "Scrambled Brains",
			Type:        ActivityScale,
			Description: "How scattered are your thoughts?",
			Config: ActivityConfig{
				Min:          floatPtr(0),
				Max:          floatPtr(10),
				Step:         floatPtr(1),
				ScaleLabels:  map[int]string{0: "None", 5: "Moderate", 10: "Severe"},
				DefaultValue: floatPtr(0),
				Bucketing:    BucketSeverity,
			},
		},
		{
			ID:          "journaling",
			Name:        "Journaling",
			Type:        ActivityCheckbox,
			Description: "Did you journal today?",
		},
		{
			ID:          "notes",
			Name:        "Notes",
			Type:        ActivityText,
			Description: "Anything to note about today?",
			Config: ActivityConfig{
				Placeholder: "Optional notes...",
				Multiline:   true,
				Optional:    true,
			},
		},
	}
}
