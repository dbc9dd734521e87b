// ABOUTME: Terminal rendering shared by the day, history, and calendar commands.
// ABOUTME: Uses fatih/color for status marks and faint secondary text.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/history"
	"github.com/harperreed/anchor/internal/models"
)

var (
	faint   = color.New(color.Faint)
	bold    = color.New(color.Bold)
	checked = color.GreenString("✓")
	pending = color.New(color.Faint).Sprint("·")
)

var dateFlag string

// resolveDate turns the --date flag (or an argument) into a date key.
func resolveDate(s string) (models.DateKey, error) {
	if s == "" {
		s = dateFlag
	}
	return models.ResolveDate(s, tr.Now())
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return strings.Repeat(".", maxLen)
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}

func mark(done bool) string {
	if done {
		return checked
	}
	return pending
}

func printHeader(date models.DateKey) {
	fmt.Printf("%s %s\n\n", bold.Sprint(display.FormatDate(date)), faint.Sprintf("(%s)", date))
}

func printActivities(rows []history.ActivityRow) {
	for _, r := range rows {
		value := truncate(r.Display, 60)
		if r.Missing {
			value = faint.Sprint(value)
		}
		fmt.Printf("  %s %s %s\n", mark(!r.Missing), padRight(r.Activity.Name, 18), value)
	}
}

func printProgress(p history.Progress) {
	fmt.Printf("\n%s %d/%d (%d%%)\n", bold.Sprint(p.Message), p.Completed, p.Required, p.Percent)
}

func medLabel(m models.Medication) string {
	if m.Dosage == "" {
		return m.Name
	}
	return m.Name + " " + m.Dosage
}

func doseDetail(taken bool, at *time.Time, dosage *float64, unit string) string {
	var parts []string
	if taken && at != nil {
		parts = append(parts, display.FormatTime(at))
	}
	if d := display.FormatDosage(dosage, unit); d != "" {
		parts = append(parts, d)
	}
	return faint.Sprint(strings.Join(parts, " "))
}

func printDoseRows(title string, rows []history.DoseRow) {
	if len(rows) == 0 {
		return
	}
	fmt.Printf("\n%s\n", bold.Sprint(title))
	for _, r := range rows {
		label := medLabel(r.Medication)
		if r.Medication.Doses() > 1 {
			label = fmt.Sprintf("%s #%d", label, r.DoseNumber)
		}
		fmt.Printf("  %s %s %s\n", mark(r.Taken), padRight(label, 24),
			doseDetail(r.Taken, r.TakenAt, r.DosageValue, r.Medication.DosageUnit))
	}
}

func printExtras(extras []models.ExtraMed) {
	if len(extras) == 0 {
		return
	}
	fmt.Printf("\n%s\n", bold.Sprint("Extra medications"))
	for _, m := range extras {
		takenAt := m.TakenAt
		fmt.Printf("  %s %s %s\n",
			faint.Sprint(m.ID),
			padRight(strings.TrimSpace(m.Name+" "+m.Dosage), 24),
			faint.Sprint(display.FormatTime(&takenAt)))
	}
}

func printEveningTime(at *time.Time) {
	if at == nil {
		return
	}
	fmt.Printf("\n%s %s\n", faint.Sprint("Evening meds taken at"), display.FormatTime(at))
}

// printHistory renders a reconstructed day. Only logged doses appear.
func printHistory(view *history.DayView) {
	printHeader(view.Date)
	printActivities(view.Activities)
	printDoseRows("Daytime medications", view.Daytime)
	printDoseRows("Evening medications", view.Evening)
	printEveningTime(view.EveningTime)
	printExtras(view.Extras)
	if !view.HasData {
		fmt.Println()
		faint.Println("Nothing was logged on this day.")
	}
}

// printToday renders every configured dose slot, logged or not.
func printToday(date models.DateKey, view *history.DayView, progress history.Progress, cfg models.MedicationConfig) {
	printHeader(date)
	printActivities(view.Activities)
	printProgress(progress)

	var daytime, evening []history.DoseRow
	for _, m := range cfg.Daytime {
		for n := 1; n <= m.Doses(); n++ {
			daytime = append(daytime, slotRow(date, m, n))
		}
	}
	for _, m := range cfg.Evening {
		evening = append(evening, slotRow(date, m, 1))
	}
	printDoseRows("Daytime medications", daytime)
	printDoseRows("Evening medications", evening)
	printEveningTime(view.EveningTime)
	printExtras(view.Extras)
}

func slotRow(date models.DateKey, m models.Medication, n int) history.DoseRow {
	row := history.DoseRow{Medication: m, DoseNumber: n}
	if l := tr.DoseLog(date, m.ID, n); l != nil {
		row.Taken = l.Taken
		row.TakenAt = l.TakenAt
		row.DosageValue = l.DosageValue
	}
	return row
}

func printCalendar(m *history.MonthSummary) {
	first := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.Local)
	fmt.Println(bold.Sprint(first.Format("January 2006")))
	fmt.Println(faint.Sprint("Su Mo Tu We Th Fr Sa"))

	fmt.Print(strings.Repeat("   ", int(first.Weekday())))
	for i, d := range m.Days {
		cell := fmt.Sprintf("%2d", i+1)
		switch {
		case d.IsToday:
			cell = color.New(color.Bold, color.Underline).Sprint(cell)
		case d.HasData:
			cell = color.GreenString(cell)
		case !d.Selectable:
			cell = faint.Sprint(cell)
		}
		fmt.Print(cell)
		if (int(first.Weekday())+i+1)%7 == 0 {
			fmt.Println()
		} else {
			fmt.Print(" ")
		}
	}
	fmt.Println()
	fmt.Printf("\n%s %d day(s) with data\n", faint.Sprint("●"), len(m.DataDates()))
}
