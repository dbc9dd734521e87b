// ABOUTME: Tests for the install-skill command.
// ABOUTME: Validates skill installation, overwrite, permissions, and embedded content.

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func installIntoTempHome(t *testing.T) string {
	t.Helper()
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	skillSkipConfirm = true
	t.Cleanup(func() { skillSkipConfirm = false })

	if err := installSkill(); err != nil {
		t.Fatalf("installSkill failed: %v", err)
	}
	return filepath.Join(tmpHome, ".claude", "skills", "anchor", "SKILL.md")
}

func TestInstallSkillWritesFile(t *testing.T) {
	skillPath := installIntoTempHome(t)

	written, err := os.ReadFile(skillPath)
	if err != nil {
		t.Fatalf("Skill file not created: %v", err)
	}
	embedded, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}
	if string(written) != string(embedded) {
		t.Error("Installed skill does not match the embedded copy")
	}
}

func TestInstallSkillOverwrite(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	skillDir := filepath.Join(tmpHome, ".claude", "skills", "anchor")
	if err := os.MkdirAll(skillDir, 0750); err != nil {
		t.Fatal(err)
	}
	skillPath := filepath.Join(skillDir, "SKILL.md")
	if err := os.WriteFile(skillPath, []byte("stale content"), 0600); err != nil {
		t.Fatal(err)
	}

	skillSkipConfirm = true
	defer func() { skillSkipConfirm = false }()
	if err := installSkill(); err != nil {
		t.Fatalf("installSkill overwrite failed: %v", err)
	}

	content, _ := os.ReadFile(skillPath)
	if strings.Contains(string(content), "stale content") {
		t.Error("Expected skill file to be overwritten")
	}
}

func TestInstallSkillPermissions(t *testing.T) {
	skillPath := installIntoTempHome(t)

	info, err := os.Stat(skillPath)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected file permissions 0600, got %o", perm)
	}
	dirInfo, err := os.Stat(filepath.Dir(skillPath))
	if err != nil {
		t.Fatal(err)
	}
	if perm := dirInfo.Mode().Perm(); perm&0027 != 0 {
		t.Errorf("Expected directory not writable by group or readable by others, got %o", perm)
	}
}

func TestSkillSkipConfirmFlag(t *testing.T) {
	flag := installSkillCmd.Flags().Lookup("yes")
	if flag == nil {
		t.Fatal("Expected --yes flag to be defined")
	}
	if flag.Shorthand != "y" {
		t.Errorf("Expected shorthand 'y', got %q", flag.Shorthand)
	}
	if flag.DefValue != "false" {
		t.Errorf("Expected default value 'false', got %q", flag.DefValue)
	}
}

func TestSkillEmbeddedContent(t *testing.T) {
	content, err := skillFS.ReadFile("skill/SKILL.md")
	if err != nil {
		t.Fatalf("Failed to read embedded skill: %v", err)
	}
	contentStr := string(content)

	if !strings.HasPrefix(contentStr, "---\n") {
		t.Error("Expected SKILL.md to start with frontmatter")
	}
	markers := []string{
		"name: anchor",
		"description:",
		"## When to use anchor",
		"mcp__anchor__get_day",
		"mcp__anchor__set_entry",
		"mcp__anchor__toggle_dose",
		"mcp__anchor__update_dose_time",
		"mcp__anchor__update_dosage",
		"mcp__anchor__set_evening_time",
		"mcp__anchor__add_extra_med",
		"mcp__anchor__remove_extra_med",
		"mcp__anchor__get_history",
		"mcp__anchor__get_calendar",
		"mcp__anchor__list_activities",
	}
	for _, marker := range markers {
		if !strings.Contains(contentStr, marker) {
			t.Errorf("Expected SKILL.md to contain %q", marker)
		}
	}

	for _, a := range []string{"sleep-quality", "mood", "paranoia", "scrambled-brains", "journaling"} {
		if !strings.Contains(contentStr, a) {
			t.Errorf("Expected SKILL.md to document activity %q", a)
		}
	}
}
