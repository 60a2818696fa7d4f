package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trainingload/internal/analysis"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test athlete defaults
	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.Athlete.FTP != 0 {
		t.Errorf("Athlete.FTP = %v, want 0 so power TSS is opt-in", cfg.Athlete.FTP)
	}
	if cfg.Athlete.Gender != "male" {
		t.Errorf("Athlete.Gender = %q, want male", cfg.Athlete.Gender)
	}

	// Test display defaults
	if cfg.Display.DistanceUnit != "km" {
		t.Errorf("Display.DistanceUnit = %q, want %q", cfg.Display.DistanceUnit, "km")
	}
	if cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display.PaceUnit = %q, want %q", cfg.Display.PaceUnit, "min/km")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	valid := DefaultConfig()

	tests := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{name: "valid config", mutate: func(c *Config) {}},
		{name: "with FTP and pace", mutate: func(c *Config) { c.Athlete.FTP = 280; c.Athlete.ThresholdPace = 255 }},
		{name: "max HR not above resting", mutate: func(c *Config) { c.Athlete.MaxHR = 50 }, errContains: "max_hr"},
		{name: "negative FTP", mutate: func(c *Config) { c.Athlete.FTP = -1 }, errContains: "ftp"},
		{name: "negative threshold pace", mutate: func(c *Config) { c.Athlete.ThresholdPace = -5 }, errContains: "threshold_pace_sec"},
		{name: "unknown gender", mutate: func(c *Config) { c.Athlete.Gender = "x" }, errContains: "gender"},
		{name: "bad distance unit", mutate: func(c *Config) { c.Display.DistanceUnit = "yd" }, errContains: "distance_unit"},
		{name: "bad pace unit", mutate: func(c *Config) { c.Display.PaceUnit = "min/yd" }, errContains: "pace_unit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadFrom(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFrom(filepath.Join(dir, "nope.json"))
		if !errors.Is(err, ErrNoConfig) {
			t.Errorf("err = %v, want ErrNoConfig", err)
		}
	})

	t.Run("partial file gets defaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		if err := os.WriteFile(path, []byte(`{"athlete":{"ftp":265,"gender":"female"}}`), 0600); err != nil {
			t.Fatal(err)
		}
		cfg, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom: %v", err)
		}
		if cfg.Athlete.FTP != 265 || cfg.Athlete.MaxHR != 185 || cfg.Athlete.RestingHR != 50 {
			t.Errorf("athlete = %+v", cfg.Athlete)
		}
		if cfg.Display.PaceUnit != "min/km" {
			t.Errorf("PaceUnit = %q, want default", cfg.Display.PaceUnit)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{`), 0600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFrom(path); err == nil || errors.Is(err, ErrNoConfig) {
			t.Errorf("err = %v, want parse error", err)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		path := filepath.Join(dir, "nested", "config.json")
		want := DefaultConfig()
		want.Athlete.FTP = 300
		want.Storage.DataDir = dir
		if err := SaveTo(path, &want); err != nil {
			t.Fatalf("SaveTo: %v", err)
		}
		got, err := LoadFrom(path)
		if err != nil {
			t.Fatalf("LoadFrom: %v", err)
		}
		if *got != want {
			t.Errorf("got %+v, want %+v", *got, want)
		}
	})
}

func TestAthleteProfile(t *testing.T) {
	a := AthleteConfig{FTP: 250, RestingHR: 48, MaxHR: 190, ThresholdPace: 260, Gender: "female"}
	p := a.Profile()
	want := analysis.AthleteProfile{FTP: 250, RestingHR: 48, MaxHR: 190, ThresholdPace: 260, Gender: analysis.GenderFemale}
	if p != want {
		t.Errorf("Profile() = %+v, want %+v", p, want)
	}

	if (AthleteConfig{}).Profile().Gender != analysis.GenderMale {
		t.Error("empty gender should map to male coefficients")
	}
}

func TestStoragePaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.DataDir = "/tmp/tl"

	db, err := cfg.DBPath()
	if err != nil || db != filepath.Join("/tmp/tl", "data.db") {
		t.Errorf("DBPath = %q, %v", db, err)
	}
	logPath, err := cfg.LogPath()
	if err != nil || logPath != filepath.Join("/tmp/tl", "trainingload.log") {
		t.Errorf("LogPath = %q, %v", logPath, err)
	}
}
