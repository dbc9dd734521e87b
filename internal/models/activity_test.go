// ABOUTME: Tests for the activity catalog and input coercion.
// ABOUTME: Validates the fixed order, coercion by render type, and completion rules.
package models

import (
	"errors"
	"testing"
)

func TestDefaultActivitiesOrder(t *testing.T) {
	want := []string{
		"sleep-quality", "sleep-hours", "exercise", "stretch", "weather",
		"sunshine", "mood", "paranoia", "scrambled-brains", "journaling", "notes",
	}

	got := DefaultActivities()
	if len(got) != len(want) {
		t.Fatalf("got %d activities, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("activity %d = %s, want %s", i, got[i].ID, id)
		}
	}
}

func TestActivityCoerce(t *testing.T) {
	acts := DefaultActivities()
	get := func(id string) Activity {
		a, err := FindActivity(acts, id)
		if err != nil {
			t.Fatalf("FindActivity(%s): %v", id, err)
		}
		return a
	}

	tests := []struct {
		name     string
		activity string
		raw      string
		want     Value
		wantErr  bool
	}{
		{"checkbox yes", "stretch", "yes", BoolValue(true), false},
		{"checkbox no", "journaling", "no", BoolValue(false), false},
		{"checkbox garbage", "stretch", "maybe", Value{}, true},
		{"rating", "sleep-quality", "4", NumberValue(4), false},
		{"rating out of range kept", "sleep-quality", "9", NumberValue(9), false},
		{"number", "sleep-hours", "7.5", NumberValue(7.5), false},
		{"scale negative", "mood", "-3", NumberValue(-3), false},
		{"scale not a number", "mood", "happy", Value{}, true},
		{"text", "exercise", "  30 min walk ", TextValue("30 min walk"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := get(tt.activity).Coerce(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got %v", got.Interface())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Coerce(%q) = %v, want %v", tt.raw, got.Interface(), tt.want.Interface())
			}
		})
	}
}

func TestFindActivityUnknown(t *testing.T) {
	_, err := FindActivity(DefaultActivities(), "episode-intensity")
	if !errors.Is(err, ErrUnknownActivity) {
		t.Errorf("expected ErrUnknownActivity, got %v", err)
	}
}

func TestActivityIsComplete(t *testing.T) {
	acts := DefaultActivities()
	stretch, _ := FindActivity(acts, "stretch")
	rating, _ := FindActivity(acts, "sleep-quality")
	exercise, _ := FindActivity(acts, "exercise")
	mood, _ := FindActivity(acts, "mood")

	yes, no := BoolValue(true), BoolValue(false)
	zero, three := NumberValue(0), NumberValue(3)
	blank, walk := TextValue("  "), TextValue("walk")

	tests := []struct {
		name     string
		activity Activity
		value    *Value
		want     bool
	}{
		{"missing", stretch, nil, false},
		{"checkbox true", stretch, &yes, true},
		{"checkbox false", stretch, &no, false},
		{"rating zero", rating, &zero, false},
		{"rating set", rating, &three, true},
		{"text blank", exercise, &blank, false},
		{"text set", exercise, &walk, true},
		{"scale zero counts", mood, &zero, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.activity.IsComplete(tt.value); got != tt.want {
				t.Errorf("IsComplete = %v, want %v", got, tt.want)
			}
		})
	}
}
