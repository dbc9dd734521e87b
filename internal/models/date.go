// ABOUTME: DateKey type used to partition every per-day record.
// ABOUTME: Formats as YYYY-MM-DD in local time and round-trips through SQL date columns.
package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the layout of a DateKey.
const DateLayout = "2006-01-02"

// ErrInvalidDateKey is returned when a string is not a YYYY-MM-DD date.
var ErrInvalidDateKey = errors.New("invalid date key")

// DateKey is a calendar day in local time, formatted YYYY-MM-DD.
type DateKey string

// DateKeyOf returns the key for the local calendar day containing t.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.In(time.Local).Format(DateLayout))
}

// Today returns the key for the local day containing now.
func Today(now time.Time) DateKey {
	return DateKeyOf(now)
}

// ParseDateKey validates s and returns it as a DateKey.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	return DateKey(t.Format(DateLayout)), nil
}

// Time returns local midnight of the day.
func (d DateKey) Time() time.Time {
	t, err := time.ParseInLocation(DateLayout, string(d), time.Local)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays returns the key n days after d (n may be negative).
func (d DateKey) AddDays(n int) DateKey {
	return DateKeyOf(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is an earlier day than other.
func (d DateKey) Before(other DateKey) bool {
	return d < other
}

// After reports whether d is a later day than other.
func (d DateKey) After(other DateKey) bool {
	return d > other
}

// IsFuture reports whether d is after the local day containing now.
func (d DateKey) IsFuture(now time.Time) bool {
	return d.After(Today(now))
}

// String implements fmt.Stringer.
func (d DateKey) String() string {
	return string(d)
}

// MonthBounds returns the first and last day of the given month.
func MonthBounds(year int, month time.Month) (DateKey, DateKey) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, 1, -1)
	return DateKeyOf(first), DateKeyOf(last)
}

// Scan implements sql.Scanner so Postgres date columns load directly.
func (d *DateKey) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
		return nil
	case time.Time:
		// date columns come back as UTC midnight
		*d = DateKey(v.UTC().Format(DateLayout))
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("scan date key from %T", src)
	}
}

func (d *DateKey) scanString(s string) error {
	if len(s) < len(DateLayout) {
		return fmt.Errorf("%w: %q", ErrInvalidDateKey, s)
	}
	key, err := ParseDateKey(s[:len(DateLayout)])
	if err != nil {
		return err
	}
	*d = key
	return nil
}

// Value implements driver.Valuer.
func (d DateKey) Value() (driver.Value, error) {
	if d == "" {
		return nil, nil
	}
	return string(d), nil
}

// ResolveDate accepts "", "today", "yesterday", or YYYY-MM-DD.
func ResolveDate(s string, now time.Time) (DateKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return Today(now), nil
	case "yesterday":
		return Today(now).AddDays(-1), nil
	}
	return ParseDateKey(strings.TrimSpace(s))
}

var clockLayouts = []string{"15:04", "3:04pm", "3:04 pm", "3pm", "3 pm"}

// ParseClock parses a timestamp, or a clock time on day d.
// Accepted: RFC 3339, "2006-01-02 15:04", "15:04", "3:04pm", "3pm".
func ParseClock(d DateKey, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local); err == nil {
		return t, nil
	}
	lower := strings.ToLower(s)
	for _, layout := range clockLayouts {
		c, err := time.ParseInLocation(layout, lower, time.Local)
		if err != nil {
			continue
		}
		day := d.Time()
		return time.Date(day.Year(), day.Month(), day.Day(), c.Hour(), c.Minute(), 0, 0, time.Local), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use HH:MM, 3:04pm, or RFC 3339)", s)
}
