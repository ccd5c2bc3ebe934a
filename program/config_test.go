package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyConfigFile(t *testing.T) {
	saved := config
	defer func() { config = saved }()

	path := filepath.Join(t.TempDir(), "race.toml")
	body := `
input = "data/marketcap_monthly.csv"
top_n = 12
frame_duration = "100ms"
window_years = 5
categories = ["Chips", "Cloud"]
stats = true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := applyConfigFile(path); err != nil {
		t.Fatalf("applyConfigFile returned error: %v", err)
	}

	if config.InputPath != "data/marketcap_monthly.csv" {
		t.Fatalf("unexpected input path: %q", config.InputPath)
	}
	if config.TopN != 12 {
		t.Fatalf("unexpected top_n: %d", config.TopN)
	}
	if config.FrameDuration != 100*time.Millisecond {
		t.Fatalf("unexpected frame duration: %v", config.FrameDuration)
	}
	if config.WindowYears != 5 {
		t.Fatalf("unexpected window_years: %d", config.WindowYears)
	}
	if config.Categories != "Chips,Cloud" {
		t.Fatalf("unexpected categories: %q", config.Categories)
	}
	if !config.StatsEnabled {
		t.Fatal("expected stats enabled")
	}
	// Keys absent from the file keep their defaults.
	if config.Steps != saved.Steps {
		t.Fatalf("steps should be untouched, got %d", config.Steps)
	}
}

func TestApplyConfigFileBadDuration(t *testing.T) {
	saved := config
	defer func() { config = saved }()

	path := filepath.Join(t.TempDir(), "race.toml")
	if err := os.WriteFile(path, []byte("frame_duration = \"fast\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if err := applyConfigFile(path); err == nil {
		t.Fatal("expected an error for an unparseable duration")
	}
}

func TestApplyConfigFileMissing(t *testing.T) {
	if err := applyConfigFile(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
