// ABOUTME: Human-readable formatting of entry values, times, and dates.
// ABOUTME: Mood and severity thresholds are fixed domain constants.
package display

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/harperreed/anchor/internal/models"
)

// MoodLabel buckets a mood scale value.
func MoodLabel(v float64) string {
	switch {
	case v <= -3:
		return "Depressed"
	case v <= -1:
		return "Low"
	case v >= 3:
		return "Manic"
	case v >= 1:
		return "Elevated"
	default:
		return "Baseline"
	}
}

// SeverityLabel buckets a 0-10 severity scale value.
func SeverityLabel(v float64) string {
	switch {
	case v >= 8:
		return "Severe"
	case v >= 5:
		return "Moderate"
	case v >= 1:
		return "Mild"
	default:
		return "None"
	}
}

// RatingLabel returns the configured label for a star rating, or "".
func RatingLabel(a models.Activity, v float64) string {
	i := int(math.Round(v)) - 1
	if i < 0 || i >= len(a.Config.Labels) {
		return ""
	}
	return a.Config.Labels[i]
}

// MissingPlaceholder is shown for an activity with no entry on a day.
func MissingPlaceholder(a models.Activity) string {
	if a.Type == models.ActivityText {
		if a.Config.Optional {
			return "No notes"
		}
		return "None"
	}
	return "No data"
}

// Number formats a float without trailing zeros.
func Number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatValue renders a stored value for the given activity.
func FormatValue(a models.Activity, v models.Value) string {
	switch v.Kind() {
	case models.KindBool:
		b, _ := v.Bool()
		if b {
			return "Yes"
		}
		return "No"
	case models.KindText:
		s, _ := v.Text()
		return s
	case models.KindJSON:
		raw, _ := v.JSON()
		var compact any
		if err := json.Unmarshal(raw, &compact); err == nil {
			if out, err := json.Marshal(compact); err == nil {
				return string(out)
			}
		}
		return string(raw)
	case models.KindNumber:
		n, _ := v.Number()
		return formatNumber(a, n)
	}
	return ""
}

func formatNumber(a models.Activity, n float64) string {
	switch a.Config.Bucketing {
	case models.BucketMood:
		return fmt.Sprintf("%s (%s)", Number(n), MoodLabel(n))
	case models.BucketSeverity:
		return fmt.Sprintf("%s (%s)", Number(n), SeverityLabel(n))
	}

	switch a.Type {
	case models.ActivityRating:
		maxRating := a.Config.MaxRating
		if maxRating == 0 {
			maxRating = 5
		}
		s := fmt.Sprintf("%s/%d", Number(n), maxRating)
		if label := RatingLabel(a, n); label != "" {
			s += " (" + label + ")"
		}
		return s
	case models.ActivityCheckbox:
		if n != 0 {
			return "Yes"
		}
		return "No"
	}

	if a.Config.Unit != "" {
		return Number(n) + " " + a.Config.Unit
	}
	return Number(n)
}

// FormatTime renders a 12-hour clock time like "8:05 PM".
func FormatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("3:04 PM")
}

// FormatDate renders a day like "Monday, January 6".
func FormatDate(d models.DateKey) string {
	t := d.Time()
	if t.IsZero() {
		return string(d)
	}
	return t.Format("Monday, January 2")
}

// FormatDosage renders a dose amount with its unit.
func FormatDosage(value *float64, unit string) string {
	if value == nil {
		return ""
	}
	if unit == "" {
		return Number(*value)
	}
	return Number(*value) + unit
}
