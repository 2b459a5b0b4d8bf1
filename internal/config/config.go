// Package config holds the engine defaults, overridable via environment
// variables and, at the CLI, per-invocation flags.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/mwalther/diametrics/internal/models"
)

// Config carries the clinical defaults of the analytics engine.
type Config struct {
	// Display unit for results: "mg/dL" or "mmol/L".
	Unit string `env:"DIAMETRICS_UNIT" envDefault:"mg/dL"`

	// Time-in-range band boundaries, mg/dL.
	VeryLowThreshold  float64 `env:"DIAMETRICS_VERY_LOW" envDefault:"54"`
	LowThreshold      float64 `env:"DIAMETRICS_LOW" envDefault:"70"`
	TargetLow         float64 `env:"DIAMETRICS_TARGET_LOW" envDefault:"70"`
	TargetHigh        float64 `env:"DIAMETRICS_TARGET_HIGH" envDefault:"180"`
	HighThreshold     float64 `env:"DIAMETRICS_HIGH" envDefault:"250"`
	VeryHighThreshold float64 `env:"DIAMETRICS_VERY_HIGH" envDefault:"400"`

	// Episode segmentation.
	HypoThreshold  float64 `env:"DIAMETRICS_HYPO" envDefault:"70"`
	HyperThreshold float64 `env:"DIAMETRICS_HYPER" envDefault:"180"`
	MaxGapMinutes  int     `env:"DIAMETRICS_MAX_GAP_MIN" envDefault:"60"`

	// Event correlation matching windows, minutes.
	PreWindowMinutes  int `env:"DIAMETRICS_PRE_WINDOW_MIN" envDefault:"30"`
	PostWindowMinutes int `env:"DIAMETRICS_POST_WINDOW_MIN" envDefault:"120"`

	// AGP bin width, minutes.
	AGPIntervalMinutes int `env:"DIAMETRICS_AGP_INTERVAL_MIN" envDefault:"30"`

	// Moving-average window size, in readings.
	MovingAvgWindow int `env:"DIAMETRICS_MOVING_AVG_WINDOW" envDefault:"5"`

	// Logging.
	LogLevel string `env:"DIAMETRICS_LOG_LEVEL" envDefault:"info"`
}

// LoadFromEnv loads the configuration from environment variables, falling
// back to the clinical defaults.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the engine cannot work with.
// Band boundaries may legitimately overlap and are not ordered-checked.
func (c *Config) Validate() error {
	if _, err := models.NormalizeUnit(c.Unit); err != nil {
		return err
	}
	if c.MaxGapMinutes <= 0 {
		return fmt.Errorf("max gap must be positive, got %d", c.MaxGapMinutes)
	}
	if c.PreWindowMinutes <= 0 || c.PostWindowMinutes <= 0 {
		return fmt.Errorf("correlation windows must be positive, got pre=%d post=%d", c.PreWindowMinutes, c.PostWindowMinutes)
	}
	if c.AGPIntervalMinutes <= 0 || c.AGPIntervalMinutes > 1440 {
		return fmt.Errorf("AGP interval must be within (0, 1440] minutes, got %d", c.AGPIntervalMinutes)
	}
	if c.MovingAvgWindow <= 0 {
		return fmt.Errorf("moving average window must be positive, got %d", c.MovingAvgWindow)
	}
	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// BandThresholds assembles the configured time-in-range boundaries.
func (c *Config) BandThresholds() models.BandThresholds {
	return models.BandThresholds{
		VeryLow:    c.VeryLowThreshold,
		Low:        c.LowThreshold,
		TargetLow:  c.TargetLow,
		TargetHigh: c.TargetHigh,
		High:       c.HighThreshold,
		VeryHigh:   c.VeryHighThreshold,
	}
}

// DisplayUnit returns the configured unit in canonical form.
func (c *Config) DisplayUnit() models.Unit {
	unit, err := models.NormalizeUnit(c.Unit)
	if err != nil {
		return models.UnitMgdL
	}
	return unit
}
