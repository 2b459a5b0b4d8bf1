package config

import (
	"testing"

	"github.com/mwalther/diametrics/internal/models"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Unit != "mg/dL" {
		t.Errorf("Unit = %q, want mg/dL", cfg.Unit)
	}
	if cfg.HypoThreshold != 70 || cfg.HyperThreshold != 180 || cfg.MaxGapMinutes != 60 {
		t.Errorf("episode defaults = %v/%v/%v, want 70/180/60",
			cfg.HypoThreshold, cfg.HyperThreshold, cfg.MaxGapMinutes)
	}
	if cfg.PreWindowMinutes != 30 || cfg.PostWindowMinutes != 120 {
		t.Errorf("correlation windows = %d/%d, want 30/120", cfg.PreWindowMinutes, cfg.PostWindowMinutes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("DIAMETRICS_UNIT", "mmol/L")
	t.Setenv("DIAMETRICS_TARGET_HIGH", "160")
	t.Setenv("DIAMETRICS_AGP_INTERVAL_MIN", "15")

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DisplayUnit() != models.UnitMmolL {
		t.Errorf("DisplayUnit = %q, want mmol/L", cfg.DisplayUnit())
	}
	if cfg.TargetHigh != 160 {
		t.Errorf("TargetHigh = %v, want 160", cfg.TargetHigh)
	}
	if cfg.AGPIntervalMinutes != 15 {
		t.Errorf("AGPIntervalMinutes = %d, want 15", cfg.AGPIntervalMinutes)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad unit", func(c *Config) { c.Unit = "grams" }},
		{"zero gap", func(c *Config) { c.MaxGapMinutes = 0 }},
		{"negative pre window", func(c *Config) { c.PreWindowMinutes = -5 }},
		{"oversized AGP interval", func(c *Config) { c.AGPIntervalMinutes = 2000 }},
		{"zero moving average", func(c *Config) { c.MovingAvgWindow = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadFromEnv()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}

func TestBandThresholds(t *testing.T) {
	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := cfg.BandThresholds(), models.DefaultBandThresholds(); got != want {
		t.Errorf("BandThresholds() = %+v, want defaults %+v", got, want)
	}
}
