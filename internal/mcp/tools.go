// ABOUTME: MCP tool implementations for daily entries and medication logs.
// ABOUTME: Each tool resolves its date, validates ids, and calls the tracker.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/history"
	"github.com/harperreed/anchor/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_day",
		Description: "Get every activity, dose, and extra medication for a day, with progress",
	}, s.handleGetDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_entry",
		Description: "Record a value for one activity (mood, sleep-hours, stretch, notes, ...)",
	}, s.handleSetEntry)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "toggle_dose",
		Description: "Mark a medication dose taken, or untaken if it already was",
	}, s.handleToggleDose)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_dose_time",
		Description: "Change the time a dose was taken without changing whether it was taken",
	}, s.handleUpdateDoseTime)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_dosage",
		Description: "Record the dosage actually taken for one dose",
	}, s.handleUpdateDosage)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_evening_time",
		Description: "Set the time the evening medications were taken",
	}, s.handleSetEveningTime)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_extra_med",
		Description: "Log a one-off medication that is not in the standing list",
	}, s.handleAddExtraMed)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "remove_extra_med",
		Description: "Remove a logged one-off medication by id",
	}, s.handleRemoveExtraMed)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_history",
		Description: "Get the reconstructed history of a past day, defaulting to yesterday",
	}, s.handleGetHistory)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_calendar",
		Description: "List which days of a month have data",
	}, s.handleGetCalendar)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_activities",
		Description: "List tracked activities and the medication configuration",
	}, s.handleListActivities)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_medications",
		Description: "Replace the standing medication list; daytime meds take times_per_day doses",
	}, s.handleSetMedications)
}

// Tool input/output types

type dateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, today, or yesterday; defaults to today"`
}

// Results that carry times or entry values are returned as any, so no
// output schema is inferred for them.

type dayOutput struct {
	View     *history.DayView `json:"view"`
	Progress history.Progress `json:"progress"`
}

type setEntryInput struct {
	Date       string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	ActivityID string `json:"activity_id" jsonschema:"Activity id, see list_activities"`
	Value      string `json:"value" jsonschema:"Value as text: yes/no for checkboxes, a number for ratings and scales"`
}

type entryOutput struct {
	ActivityID string `json:"activity_id"`
	Display    string `json:"display"`
	Message    string `json:"message"`
}

type doseInput struct {
	Date         string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	MedicationID string `json:"medication_id" jsonschema:"Medication id from the configuration"`
	DoseNumber   int    `json:"dose_number,omitempty" jsonschema:"Dose slot, starting at 1; defaults to 1"`
}

type doseTimeInput struct {
	Date         string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	MedicationID string `json:"medication_id" jsonschema:"Medication id from the configuration"`
	DoseNumber   int    `json:"dose_number,omitempty" jsonschema:"Dose slot, starting at 1; defaults to 1"`
	Time         string `json:"time" jsonschema:"Time taken: HH:MM, 3:04pm, or RFC 3339"`
}

type dosageInput struct {
	Date         string  `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	MedicationID string  `json:"medication_id" jsonschema:"Medication id from the configuration"`
	DoseNumber   int     `json:"dose_number,omitempty" jsonschema:"Dose slot, starting at 1; defaults to 1"`
	Value        float64 `json:"value" jsonschema:"Dosage actually taken, in the medication's unit"`
}

type doseOutput struct {
	Log     models.DoseLog `json:"log"`
	Message string         `json:"message"`
}

type eveningInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	Time string `json:"time,omitempty" jsonschema:"Time taken; defaults to now"`
}

type addExtraInput struct {
	Date    string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	Name    string `json:"name" jsonschema:"Medication name"`
	Dosage  string `json:"dosage,omitempty" jsonschema:"Dosage as free text, e.g. 200mg"`
	TakenAt string `json:"taken_at,omitempty" jsonschema:"Time taken; defaults to now"`
}

type extraOutput struct {
	Med     models.ExtraMed `json:"med"`
	Message string          `json:"message"`
}

type removeExtraInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD; defaults to today"`
	ID   string `json:"id" jsonschema:"Extra medication id"`
}

type calendarInput struct {
	Month string `json:"month,omitempty" jsonschema:"Month as YYYY-MM; defaults to the current month"`
}

type activitiesOutput struct {
	Activities  []models.Activity       `json:"activities"`
	Medications models.MedicationConfig `json:"medications"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

func (s *Server) resolveDate(raw string) (models.DateKey, error) {
	return models.ResolveDate(raw, s.tracker.Now())
}

// loadedDay resolves the date and makes sure the tracker holds it.
func (s *Server) loadedDay(ctx context.Context, raw string) (models.DateKey, error) {
	date, err := s.resolveDate(raw)
	if err != nil {
		return "", err
	}
	if _, err := s.tracker.Load(ctx, date); err != nil {
		return "", fmt.Errorf("failed to load %s: %w", date, err)
	}
	return date, nil
}

// Tool handlers

func (s *Server) handleGetDay(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date, err := s.loadedDay(ctx, input.Date)
	if err != nil {
		return nil, nil, err
	}
	day := s.tracker.Day(date)
	return nil, dayOutput{
		View:     history.Build(day, s.tracker.Activities(), s.meds.Current()),
		Progress: history.ComputeProgress(s.tracker.Activities(), day.Entries),
	}, nil
}

func (s *Server) handleSetEntry(ctx context.Context, req *mcp.CallToolRequest, input setEntryInput) (*mcp.CallToolResult, entryOutput, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, entryOutput{}, err
	}
	act, err := models.FindActivity(s.tracker.Activities(), input.ActivityID)
	if err != nil {
		return nil, entryOutput{}, err
	}
	entry, err := s.tracker.SetEntryText(ctx, date, act.ID, input.Value)
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to set %s: %w", act.ID, err)
	}

	shown := display.FormatValue(act, entry.Value)
	return nil, entryOutput{
		ActivityID: act.ID,
		Display:    shown,
		Message:    fmt.Sprintf("%s on %s: %s", act.Name, date, shown),
	}, nil
}

func (s *Server) handleToggleDose(ctx context.Context, req *mcp.CallToolRequest, input doseInput) (*mcp.CallToolResult, any, error) {
	date, dose, med, err := s.resolveDose(input)
	if err != nil {
		return nil, nil, err
	}
	l, err := s.tracker.ToggleDose(ctx, date, med.ID, dose)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to toggle dose: %w", err)
	}

	state := "not taken"
	if l.Taken {
		state = "taken at " + display.FormatTime(l.TakenAt)
	}
	return nil, doseOutput{
		Log:     l,
		Message: fmt.Sprintf("%s dose %d %s", med.Name, dose, state),
	}, nil
}

func (s *Server) handleUpdateDoseTime(ctx context.Context, req *mcp.CallToolRequest, input doseTimeInput) (*mcp.CallToolResult, any, error) {
	date, dose, med, err := s.resolveDose(doseInput{Date: input.Date, MedicationID: input.MedicationID, DoseNumber: input.DoseNumber})
	if err != nil {
		return nil, nil, err
	}
	at, err := models.ParseClock(date, input.Time)
	if err != nil {
		return nil, nil, err
	}
	l, err := s.tracker.UpdateDoseTime(ctx, date, med.ID, dose, at)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update dose time: %w", err)
	}
	return nil, doseOutput{
		Log:     l,
		Message: fmt.Sprintf("%s dose %d time set to %s", med.Name, dose, display.FormatTime(&at)),
	}, nil
}

func (s *Server) handleUpdateDosage(ctx context.Context, req *mcp.CallToolRequest, input dosageInput) (*mcp.CallToolResult, any, error) {
	date, dose, med, err := s.resolveDose(doseInput{Date: input.Date, MedicationID: input.MedicationID, DoseNumber: input.DoseNumber})
	if err != nil {
		return nil, nil, err
	}
	if !med.DosageAdjustable {
		return nil, nil, fmt.Errorf("%s does not have an adjustable dosage", med.Name)
	}
	l, err := s.tracker.UpdateDosage(ctx, date, med.ID, dose, input.Value)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update dosage: %w", err)
	}
	return nil, doseOutput{
		Log:     l,
		Message: fmt.Sprintf("%s dosage set to %s", med.Name, display.FormatDosage(&input.Value, med.DosageUnit)),
	}, nil
}

func (s *Server) resolveDose(input doseInput) (models.DateKey, int, models.Medication, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return "", 0, models.Medication{}, err
	}
	dose := input.DoseNumber
	if dose == 0 {
		dose = 1
	}
	med, err := s.meds.Dose(input.MedicationID, dose)
	if err != nil {
		return "", 0, models.Medication{}, err
	}
	return date, dose, med, nil
}

func (s *Server) handleSetEveningTime(ctx context.Context, req *mcp.CallToolRequest, input eveningInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	at := s.tracker.Now()
	if input.Time != "" {
		if at, err = models.ParseClock(date, input.Time); err != nil {
			return nil, simpleOutput{}, err
		}
	}
	if err := s.tracker.SetEveningTime(ctx, date, at); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to set evening time: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Evening medications taken at %s on %s", display.FormatTime(&at), date),
	}, nil
}

func (s *Server) handleAddExtraMed(ctx context.Context, req *mcp.CallToolRequest, input addExtraInput) (*mcp.CallToolResult, any, error) {
	if input.Name == "" {
		return nil, nil, fmt.Errorf("name is required")
	}
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, nil, err
	}
	var at time.Time
	if input.TakenAt != "" {
		if at, err = models.ParseClock(date, input.TakenAt); err != nil {
			return nil, nil, err
		}
	}
	med, err := s.tracker.AddExtraMed(ctx, date, input.Name, input.Dosage, at)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to add extra med: %w", err)
	}
	return nil, extraOutput{
		Med:     med,
		Message: fmt.Sprintf("Logged %s at %s (ID: %s)", med.Name, display.FormatTime(&med.TakenAt), med.ID),
	}, nil
}

func (s *Server) handleRemoveExtraMed(ctx context.Context, req *mcp.CallToolRequest, input removeExtraInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := s.resolveDate(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if err := s.tracker.RemoveExtraMed(ctx, date, input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to remove extra med: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Removed extra med: %s", input.ID)}, nil
}

func (s *Server) handleGetHistory(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, any, error) {
	date := history.DefaultDate(s.tracker.Now())
	if input.Date != "" {
		var err error
		if date, err = s.resolveDate(input.Date); err != nil {
			return nil, nil, err
		}
	}
	view, err := s.history.Day(ctx, date)
	if err != nil {
		return nil, nil, err
	}
	return nil, view, nil
}

func (s *Server) handleGetCalendar(ctx context.Context, req *mcp.CallToolRequest, input calendarInput) (*mcp.CallToolResult, any, error) {
	now := s.tracker.Now()
	year, month := now.Year(), now.Month()
	if input.Month != "" {
		var err error
		if year, month, err = history.ParseMonth(input.Month); err != nil {
			return nil, nil, err
		}
	}
	summary, err := s.history.Month(ctx, year, month, now)
	if err != nil {
		return nil, nil, err
	}
	return nil, summary, nil
}

func (s *Server) handleListActivities(ctx context.Context, req *mcp.CallToolRequest, input struct{}) (*mcp.CallToolResult, any, error) {
	return nil, activitiesOutput{
		Activities:  s.tracker.Activities(),
		Medications: s.meds.Current(),
	}, nil
}

func (s *Server) handleSetMedications(ctx context.Context, req *mcp.CallToolRequest, input models.MedicationConfig) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.meds.Save(input); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to save medications: %w", err)
	}
	return nil, simpleOutput{
		Message: fmt.Sprintf("Saved %d daytime and %d evening medications", len(input.Daytime), len(input.Evening)),
	}, nil
}
