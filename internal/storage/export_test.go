// ABOUTME: Tests for export functionality.
// ABOUTME: Verifies JSON, YAML, and Markdown export formats.
package storage

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/harperreed/anchor/internal/models"
	"gopkg.in/yaml.v3"
)

// daysSource adapts Days to DaySource for tests.
type daysSource struct{ days *Days }

func (s daysSource) ActiveDates(_ context.Context, from, to models.DateKey) ([]models.DateKey, error) {
	return s.days.Dates(from, to)
}

func (s daysSource) LoadDay(_ context.Context, date models.DateKey) (*models.DayRecords, error) {
	return s.days.Load(date)
}

func setupExport(t *testing.T) *ExportData {
	t.Helper()

	days := NewDays(setupTestDB(t))
	if err := days.Save(sampleDay("2025-01-02")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := GetAllData(context.Background(), daysSource{days}, "2025-01-01", "2025-01-31")
	if err != nil {
		t.Fatalf("GetAllData failed: %v", err)
	}
	return data
}

func TestExportJSON(t *testing.T) {
	data := setupExport(t)

	out, err := ExportJSON(data)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	var export ExportData
	if err := json.Unmarshal(out, &export); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}

	if export.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", export.Version)
	}
	if export.Tool != "anchor" {
		t.Errorf("Expected tool anchor, got %s", export.Tool)
	}
	if len(export.Days) != 1 {
		t.Fatalf("Expected 1 day, got %d", len(export.Days))
	}
	if n, _ := export.Days[0].Entries["mood"].Value.Number(); n != -2 {
		t.Errorf("mood did not survive export, got %v", n)
	}
}

func TestExportYAML(t *testing.T) {
	data := setupExport(t)

	out, err := ExportYAML(data)
	if err != nil {
		t.Fatalf("ExportYAML failed: %v", err)
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(out, &parsed); err != nil {
		t.Fatalf("Failed to parse YAML: %v", err)
	}
	if parsed["tool"] != "anchor" {
		t.Errorf("Expected tool anchor, got %v", parsed["tool"])
	}
	if !strings.Contains(string(out), "medication: xanax-xr") {
		t.Errorf("YAML missing dose entry:\n%s", out)
	}
	if !strings.Contains(string(out), "exercise: walk") {
		t.Errorf("YAML missing entry value:\n%s", out)
	}
}

func TestExportMarkdown(t *testing.T) {
	data := setupExport(t)

	md := ExportMarkdown(data, models.DefaultActivities(), models.DefaultMedications())

	for _, want := range []string{
		"# Anchor Export",
		"## Thursday, January 2",
		"| Mood | -2 (Low) |",
		"| Xanax XR | 2 | yes |",
		"Advil 200mg (extra)",
		"Evening meds taken at",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestParseExportJSONRoundTrip(t *testing.T) {
	data := setupExport(t)
	out, err := ExportJSON(data)
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	parsed, err := ParseExportJSON(out)
	if err != nil {
		t.Fatalf("ParseExportJSON failed: %v", err)
	}
	if len(parsed.Days) != 1 || parsed.Days[0].Date != "2025-01-02" {
		t.Fatalf("unexpected days: %+v", parsed.Days)
	}
	if len(parsed.Days[0].Entries) != len(data.Days[0].Entries) {
		t.Errorf("entries not preserved: got %d, want %d", len(parsed.Days[0].Entries), len(data.Days[0].Entries))
	}
}

func TestParseExportJSONRejectsForeignFile(t *testing.T) {
	if _, err := ParseExportJSON([]byte(`{"tool":"health","days":[]}`)); err == nil {
		t.Error("expected error for another tool's export")
	}
	if _, err := ParseExportJSON([]byte(`{"tool":"anchor","days":[{"date":"01/02/2025"}]}`)); err == nil {
		t.Error("expected error for a bad date")
	}
	if _, err := ParseExportJSON([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
