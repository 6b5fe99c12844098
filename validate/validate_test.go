package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/knights-tour/tour/engine"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func containsMessage(messages []string, substr string) bool {
	for _, m := range messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

func TestValidateConfig_ValidJSON(t *testing.T) {
	path := writeConfig(t, "six.json", `{
		"name": "six",
		"description": "6x6 board",
		"rows": 6,
		"cols": 6,
		"offsets": [
			{"dr": -2, "dc": -1}, {"dr": 2, "dc": -1}, {"dr": -1, "dc": -2}, {"dr": 1, "dc": -2},
			{"dr": -2, "dc": 1}, {"dr": 2, "dc": 1}, {"dr": -1, "dc": 2}, {"dr": 1, "dc": 2}
		]
	}`)

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if result.File != "six.json" {
		t.Errorf("Expected file six.json, got %s", result.File)
	}
	for _, want := range []string{"✓ Name: six", "✓ Board: 6x6", "✓ Offsets: 8", "all 36 squares reachable"} {
		if !containsMessage(result.Errors, want) {
			t.Errorf("Expected %q in %v", want, result.Errors)
		}
	}
}

func TestValidateConfig_YAMLDefaultsOffsets(t *testing.T) {
	path := writeConfig(t, "five.yaml", "name: five\ndescription: 5x5 board\nrows: 5\ncols: 5\n")

	result := validateConfig(path)
	if !result.Valid {
		t.Fatalf("Expected valid config, but got errors: %v", result.Errors)
	}
	if !containsMessage(result.Errors, "✓ Offsets: 8") {
		t.Errorf("Expected default offsets, got %v", result.Errors)
	}
}

func TestValidateConfig_InvalidJSON(t *testing.T) {
	path := writeConfig(t, "broken.json", `{"name": "broken",`)

	result := validateConfig(path)
	if result.Valid {
		t.Error("Expected invalid config for malformed JSON")
	}
	if !containsMessage(result.Errors, "Invalid format") {
		t.Errorf("Expected format error, got %v", result.Errors)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	result := validateConfig(filepath.Join(t.TempDir(), "missing.json"))

	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !containsMessage(result.Errors, "Failed to read file") {
		t.Errorf("Expected read error, got %v", result.Errors)
	}
}

func TestValidateConfig_ReportsEveryProblem(t *testing.T) {
	path := writeConfig(t, "bad.json", `{
		"rows": 0,
		"cols": 40,
		"offsets": [{"dr": 0, "dc": 0}, {"dr": 1, "dc": 2}, {"dr": 1, "dc": 2}]
	}`)

	result := validateConfig(path)
	if result.Valid {
		t.Fatal("Expected invalid config")
	}

	for _, want := range []string{"name is required", "description is required", "rows must be between", "cols must be between", "is (0,0)", "duplicates offset 2"} {
		if !containsMessage(result.Errors, want) {
			t.Errorf("Expected %q in %v", want, result.Errors)
		}
	}
	for _, msg := range result.Errors {
		if strings.HasPrefix(msg, "config validation:") {
			t.Errorf("Expected prefix to be trimmed, got %q", msg)
		}
	}
}

func TestValidateConnectivity_Connected(t *testing.T) {
	result := validateConnectivity(8, 8, engine.DefaultOffsets)

	if !result.Valid {
		t.Errorf("Expected valid result, got %v", result.Errors)
	}
	if !containsMessage(result.Errors, "all 64 squares reachable") {
		t.Errorf("Expected full connectivity, got %v", result.Errors)
	}
}

func TestValidateConnectivity_ThreeByThreeCentre(t *testing.T) {
	result := validateConnectivity(3, 3, engine.DefaultOffsets)

	if !result.Valid {
		t.Error("Disconnected boards stay valid")
	}
	if !containsMessage(result.Errors, "1/9 squares unreachable") || !containsMessage(result.Errors, "(1,1)") {
		t.Errorf("Expected the centre square to be unreachable, got %v", result.Errors)
	}
}

func TestValidateConnectivity_EmptyBoard(t *testing.T) {
	result := validateConnectivity(0, 0, engine.DefaultOffsets)

	if result.Valid {
		t.Error("Expected invalid result for empty board")
	}
}

func TestFindConfigFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.yaml", "a.json", "c.yml", "notes.txt"} {
		os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644)
	}

	files, err := findConfigFiles(dir)
	if err != nil {
		t.Fatalf("findConfigFiles failed: %v", err)
	}

	var names []string
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	if strings.Join(names, ",") != "a.json,b.yaml,c.yml" {
		t.Errorf("Expected a.json,b.yaml,c.yml, got %v", names)
	}
}

func TestShippedConfigsAreValid(t *testing.T) {
	files, err := findConfigFiles("../configs")
	if err != nil {
		t.Fatalf("findConfigFiles failed: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("Expected shipped config files")
	}

	for _, file := range files {
		if result := validateConfig(file); !result.Valid {
			t.Errorf("%s: %v", filepath.Base(file), result.Errors)
		}
	}
}
