// ABOUTME: Calendar month summary and day navigation for the history view.
// ABOUTME: Future dates are never selectable; navigation never passes today.
package history

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/anchor/internal/models"
)

// CalendarDay is one cell of the month grid.
type CalendarDay struct {
	Date       models.DateKey `json:"date"`
	HasData    bool           `json:"has_data"`
	Selectable bool           `json:"selectable"`
	IsToday    bool           `json:"is_today"`
}

// MonthSummary covers every day of one month.
type MonthSummary struct {
	Year  int           `json:"year"`
	Month time.Month    `json:"month"`
	Days  []CalendarDay `json:"days"`
}

// DataDates returns the dates flagged as having data.
func (m *MonthSummary) DataDates() []models.DateKey {
	var out []models.DateKey
	for _, d := range m.Days {
		if d.HasData {
			out = append(out, d.Date)
		}
	}
	return out
}

// Month summarizes which days of the month have an entry or a medication log.
func (r *Reconstructor) Month(ctx context.Context, year int, month time.Month, now time.Time) (*MonthSummary, error) {
	first, last := models.MonthBounds(year, month)
	active, err := r.Source.ActiveDates(ctx, first, last)
	if err != nil {
		return nil, fmt.Errorf("load calendar for %d-%02d: %w", year, month, err)
	}
	has := make(map[models.DateKey]bool, len(active))
	for _, d := range active {
		has[d] = true
	}

	today := models.Today(now)
	summary := &MonthSummary{Year: year, Month: month}
	for d := first; !d.After(last); d = d.AddDays(1) {
		summary.Days = append(summary.Days, CalendarDay{
			Date:       d,
			HasData:    has[d],
			Selectable: !d.After(today),
			IsToday:    d == today,
		})
	}
	return summary, nil
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.ParseInLocation("2006-01", s, time.Local)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q, want YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// DefaultDate is the day the history view opens on: yesterday.
func DefaultDate(now time.Time) models.DateKey {
	return models.Today(now).AddDays(-1)
}

// Navigate moves delta days from date, never past today.
func Navigate(date models.DateKey, delta int, now time.Time) models.DateKey {
	next := date.AddDays(delta)
	if today := models.Today(now); next.After(today) {
		return today
	}
	return next
}
