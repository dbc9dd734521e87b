// ABOUTME: Export of tracked days to JSON, YAML, and Markdown.
// ABOUTME: Reads through a DaySource so local and remote stores export alike.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/anchor/internal/display"
	"github.com/harperreed/anchor/internal/models"
	"gopkg.in/yaml.v3"
)

// DaySource lists and loads stored days.
type DaySource interface {
	ActiveDates(ctx context.Context, from, to models.DateKey) ([]models.DateKey, error)
	LoadDay(ctx context.Context, date models.DateKey) (*models.DayRecords, error)
}

// ExportData represents the full export format for tracked days.
type ExportData struct {
	Version    string               `json:"version" yaml:"version"`
	ExportedAt time.Time            `json:"exported_at" yaml:"exported_at"`
	Tool       string               `json:"tool" yaml:"tool"`
	From       models.DateKey       `json:"from" yaml:"from"`
	To         models.DateKey       `json:"to" yaml:"to"`
	Days       []*models.DayRecords `json:"days" yaml:"days"`
}

// GetAllData loads every day with data between from and to.
func GetAllData(ctx context.Context, src DaySource, from, to models.DateKey) (*ExportData, error) {
	dates, err := src.ActiveDates(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list active dates: %w", err)
	}

	data := &ExportData{
		Version:    "1.0",
		ExportedAt: time.Now(),
		Tool:       "anchor",
		From:       from,
		To:         to,
		Days:       make([]*models.DayRecords, 0, len(dates)),
	}
	for _, date := range dates {
		day, err := src.LoadDay(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", date, err)
		}
		data.Days = append(data.Days, day)
	}
	return data, nil
}

// ExportJSON encodes data as indented JSON.
func ExportJSON(data *ExportData) ([]byte, error) {
	return json.MarshalIndent(data, "", "  ")
}

// ParseExportJSON decodes a JSON export, rejecting other tools' files.
func ParseExportJSON(raw []byte) (*ExportData, error) {
	var data ExportData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode export: %w", err)
	}
	if data.Tool != "anchor" {
		return nil, fmt.Errorf("not an anchor export (tool %q)", data.Tool)
	}
	for _, day := range data.Days {
		if _, err := models.ParseDateKey(string(day.Date)); err != nil {
			return nil, err
		}
		if day.Entries == nil {
			day.Entries = make(map[string]models.EntryValue)
		}
	}
	return &data, nil
}

// ExportYAML encodes data in a flattened, human-friendly YAML shape.
func ExportYAML(data *ExportData) ([]byte, error) {
	yamlData := struct {
		Version    string    `yaml:"version"`
		ExportedAt string    `yaml:"exported_at"`
		Tool       string    `yaml:"tool"`
		Days       []yamlDay `yaml:"days"`
	}{
		Version:    data.Version,
		ExportedAt: data.ExportedAt.Format(time.RFC3339),
		Tool:       data.Tool,
		Days:       make([]yamlDay, 0, len(data.Days)),
	}

	for _, day := range data.Days {
		yd := yamlDay{
			Date:    string(day.Date),
			Entries: make(map[string]any, len(day.Entries)),
		}
		for id, ev := range day.Entries {
			yd.Entries[id] = ev.Value.Interface()
		}
		for _, l := range day.DoseLogs {
			ydl := yamlDose{
				Medication: l.MedicationID,
				Dose:       l.DoseNumber,
				Taken:      l.Taken,
			}
			if l.TakenAt != nil {
				ydl.TakenAt = l.TakenAt.Format(time.RFC3339)
			}
			if l.DosageValue != nil {
				ydl.Dosage = *l.DosageValue
			}
			yd.Doses = append(yd.Doses, ydl)
		}
		if day.EveningTime != nil {
			yd.EveningTime = day.EveningTime.Format(time.RFC3339)
		}
		for _, m := range day.ExtraMeds {
			yd.Extras = append(yd.Extras, yamlExtra{
				Name:    m.Name,
				Dosage:  m.Dosage,
				TakenAt: m.TakenAt.Format(time.RFC3339),
			})
		}
		yamlData.Days = append(yamlData.Days, yd)
	}

	return yaml.Marshal(yamlData)
}

type yamlDay struct {
	Date        string         `yaml:"date"`
	Entries     map[string]any `yaml:"entries,omitempty"`
	Doses       []yamlDose     `yaml:"doses,omitempty"`
	EveningTime string         `yaml:"evening_time,omitempty"`
	Extras      []yamlExtra    `yaml:"extras,omitempty"`
}

type yamlDose struct {
	Medication string  `yaml:"medication"`
	Dose       int     `yaml:"dose"`
	Taken      bool    `yaml:"taken"`
	TakenAt    string  `yaml:"taken_at,omitempty"`
	Dosage     float64 `yaml:"dosage,omitempty"`
}

type yamlExtra struct {
	Name    string `yaml:"name"`
	Dosage  string `yaml:"dosage,omitempty"`
	TakenAt string `yaml:"taken_at"`
}

// ExportMarkdown renders one section per day, activities in catalog order.
func ExportMarkdown(data *ExportData, activities []models.Activity, meds models.MedicationConfig) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Anchor Export - %s\n\n", data.ExportedAt.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", data.ExportedAt.Format(time.RFC3339)))

	for _, day := range data.Days {
		sb.WriteString(fmt.Sprintf("## %s\n\n", display.FormatDate(day.Date)))

		if len(day.Entries) > 0 {
			sb.WriteString("| Activity | Value |\n")
			sb.WriteString("|----------|-------|\n")
			for _, a := range activities {
				ev, ok := day.Entries[a.ID]
				if !ok {
					continue
				}
				sb.WriteString(fmt.Sprintf("| %s | %s |\n", a.Name, escapeCell(display.FormatValue(a, ev.Value))))
			}
			sb.WriteString("\n")
		}

		if len(day.DoseLogs) > 0 || len(day.ExtraMeds) > 0 {
			sb.WriteString("| Medication | Dose | Taken | Time |\n")
			sb.WriteString("|------------|------|-------|------|\n")
			for _, l := range day.DoseLogs {
				name := l.MedicationID
				if m, ok := meds.Find(l.MedicationID); ok {
					name = m.Name
				}
				taken := "no"
				if l.Taken {
					taken = "yes"
				}
				sb.WriteString(fmt.Sprintf("| %s | %d | %s | %s |\n", name, l.DoseNumber, taken, display.FormatTime(l.TakenAt)))
			}
			for _, m := range day.ExtraMeds {
				takenAt := m.TakenAt
				sb.WriteString(fmt.Sprintf("| %s (extra) | 1 | yes | %s |\n", strings.TrimSpace(m.Name+" "+m.Dosage), display.FormatTime(&takenAt)))
			}
			sb.WriteString("\n")
		}

		if day.EveningTime != nil {
			sb.WriteString(fmt.Sprintf("Evening meds taken at %s\n\n", display.FormatTime(day.EveningTime)))
		}
	}

	return sb.String()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
