// ABOUTME: Integration tests for the anchor CLI.
// ABOUTME: Builds the binary and runs a full day of logging against a temp SQLite store.
package test

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestFullWorkflow(t *testing.T) {
	// Build the binary
	projectRoot, _ := filepath.Abs("..")
	tmpDir := t.TempDir()
	anchorBinary := filepath.Join(tmpDir, "anchor")

	buildCmd := exec.Command("go", "build", "-o", anchorBinary, "./cmd/anchor")
	buildCmd.Dir = projectRoot
	if output, err := buildCmd.CombinedOutput(); err != nil {
		t.Fatalf("Failed to build: %v\n%s", err, output)
	}

	// Keep config, data, and .env lookups inside the temp dir
	var env []string
	for _, kv := range os.Environ() {
		if !strings.HasPrefix(kv, "ANCHOR_") {
			env = append(env, kv)
		}
	}
	env = append(env,
		"HOME="+tmpDir,
		"XDG_CONFIG_HOME="+filepath.Join(tmpDir, "config"),
		"XDG_DATA_HOME="+filepath.Join(tmpDir, "data"),
	)

	run := func(args ...string) (string, error) {
		cmd := exec.Command(anchorBinary, args...)
		cmd.Dir = tmpDir
		cmd.Env = env
		output, err := cmd.CombinedOutput()
		return string(output), err
	}

	// Answer a scale question with a negative value
	output, err := run("log", "mood", "-2")
	if err != nil {
		t.Fatalf("Failed to log mood: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Logged Mood") {
		t.Errorf("Expected 'Logged Mood' in output, got: %s", output)
	}

	output, err = run("log", "stretch", "yes")
	if err != nil {
		t.Fatalf("Failed to log stretch: %v\n%s", err, output)
	}

	// Toggle a dose
	output, err = run("take", "xanax-xr", "2")
	if err != nil {
		t.Fatalf("Failed to take dose: %v\n%s", err, output)
	}
	if !strings.Contains(output, "Xanax XR dose 2 taken") {
		t.Errorf("Expected 'Xanax XR dose 2 taken' in output, got: %s", output)
	}

	// Unknown activity is rejected
	if output, err = run("log", "bogus", "1"); err == nil {
		t.Errorf("Expected error for unknown activity, got: %s", output)
	}

	// Today shows what was logged
	output, err = run("today")
	if err != nil {
		t.Fatalf("Failed to show today: %v\n%s", err, output)
	}
	for _, want := range []string{"Mood", "Stretch", "Xanax XR"} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in today output, got: %s", want, output)
		}
	}

	// Export carries the day
	output, err = run("export", "json")
	if err != nil {
		t.Fatalf("Failed to export: %v\n%s", err, output)
	}
	var exported struct {
		Tool string `json:"tool"`
		Days []struct {
			Entries map[string]json.RawMessage `json:"entries"`
		} `json:"days"`
	}
	if err := json.Unmarshal([]byte(output), &exported); err != nil {
		t.Fatalf("Export is not JSON: %v\n%s", err, output)
	}
	if exported.Tool != "anchor" || len(exported.Days) != 1 {
		t.Fatalf("Unexpected export: tool=%q days=%d", exported.Tool, len(exported.Days))
	}
	if _, ok := exported.Days[0].Entries["mood"]; !ok {
		t.Errorf("Expected mood entry in export, got: %s", output)
	}

	// Reset clears it
	output, err = run("reset", "--yes")
	if err != nil {
		t.Fatalf("Failed to reset: %v\n%s", err, output)
	}
	output, err = run("export", "json")
	if err != nil {
		t.Fatalf("Failed to export after reset: %v\n%s", err, output)
	}
	if !strings.Contains(output, `"days": []`) {
		t.Errorf("Expected no days after reset, got: %s", output)
	}
}
