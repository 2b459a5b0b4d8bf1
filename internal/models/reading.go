// Package models contains data structures used throughout the application
package models

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Unit is a glucose measurement unit.
type Unit string

const (
	UnitMgdL  Unit = "mg/dL"
	UnitMmolL Unit = "mmol/L"
)

// NormalizeUnit maps the unit spellings accepted at the boundary onto the
// canonical forms. Returns an error for anything else.
func NormalizeUnit(s string) (Unit, error) {
	switch s {
	case "mg/dl", "mg/dL", "MG/DL":
		return UnitMgdL, nil
	case "mmol/l", "mmol/L", "MMOL/L":
		return UnitMmolL, nil
	}
	return "", fmt.Errorf("invalid unit %q: must be 'mg/dl' or 'mmol/l'", s)
}

// ConvertGlucose converts a glucose value between mg/dL and mmol/L.
// mg/dL = mmol/L × 18; results are rounded to an integer for mg/dL and to
// one decimal for mmol/L.
func ConvertGlucose(value float64, from, to Unit) (float64, error) {
	if from == to {
		return value, nil
	}
	switch {
	case from == UnitMgdL && to == UnitMmolL:
		return math.Round(value/18*10) / 10, nil
	case from == UnitMmolL && to == UnitMgdL:
		return math.Round(value * 18), nil
	}
	return 0, fmt.Errorf("unsupported unit conversion: %s to %s", from, to)
}

// GlucoseReading is a single glucose measurement as supplied by the
// repository. Readings are immutable once handed to the engine.
type GlucoseReading struct {
	Timestamp   time.Time `json:"timestamp"`
	Value       float64   `json:"value"`
	Unit        Unit      `json:"unit"`
	MealContext string    `json:"meal_context,omitempty"` // "before_meal", "after_meal", ...
	Note        string    `json:"note,omitempty"`
}

// Valid reports whether the reading carries both a timestamp and a positive value.
func (r GlucoseReading) Valid() bool {
	return !r.Timestamp.IsZero() && r.Value > 0
}

// ValueIn returns the reading's value converted to the given unit.
func (r GlucoseReading) ValueIn(u Unit) (float64, error) {
	unit := r.Unit
	if unit == "" {
		unit = UnitMgdL
	}
	return ConvertGlucose(r.Value, unit, u)
}

// Sample pairs a UTC-normalized timestamp with a glucose value in a single
// target unit. The engine derives samples from readings instead of mutating
// them, so records stay immutable.
type Sample struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// SamplesInUnit converts readings into chronologically sorted samples in the
// target unit. Readings without a timestamp or positive value are discarded;
// readings with unsupported units are skipped rather than failing the batch.
func SamplesInUnit(readings []GlucoseReading, unit Unit) []Sample {
	samples := make([]Sample, 0, len(readings))
	for _, r := range readings {
		if !r.Valid() {
			continue
		}
		v, err := r.ValueIn(unit)
		if err != nil {
			continue
		}
		samples = append(samples, Sample{At: r.Timestamp.UTC(), Value: v})
	}
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].At.Before(samples[j].At)
	})
	return samples
}

// Values extracts the value series from a sample slice.
func Values(samples []Sample) []float64 {
	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}
	return values
}
