// Package models contains data structures used throughout the application
package models

import "time"

// Meal is a logged meal used as a temporal anchor for correlation analysis.
type Meal struct {
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description,omitempty"`
	TotalCarbs  float64   `json:"total_carbs"` // Grams of carbohydrates
	TotalWeight float64   `json:"total_weight,omitempty"`
	Note        string    `json:"note,omitempty"`
}

// Activity is a logged physical activity.
type Activity struct {
	Timestamp      time.Time `json:"timestamp"`
	Type           string    `json:"type"` // "walking", "running", ...
	Intensity      string    `json:"intensity,omitempty"`
	DurationMin    float64   `json:"duration_min"`
	CaloriesBurned float64   `json:"calories_burned,omitempty"`
	Note           string    `json:"note,omitempty"`
}

// InsulinDose is a logged insulin administration.
type InsulinDose struct {
	Timestamp time.Time `json:"timestamp"`
	Units     float64   `json:"units"`
	Type      string    `json:"type,omitempty"` // "rapid_acting", "long_acting", ...
	Note      string    `json:"note,omitempty"`
}

// TimeWindow is an inclusive [Start, End] interval in UTC. A zero Start or
// End leaves that side unbounded.
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window, honoring unbounded sides.
func (w TimeWindow) Contains(t time.Time) bool {
	if !w.Start.IsZero() && t.Before(w.Start) {
		return false
	}
	if !w.End.IsZero() && t.After(w.End) {
		return false
	}
	return true
}

// EpisodeType classifies an out-of-range glucose episode.
type EpisodeType string

const (
	EpisodeHypo  EpisodeType = "hypo"
	EpisodeHyper EpisodeType = "hyper"
)

// Episode is a contiguous span of out-of-range readings. Derived, transient,
// never persisted.
type Episode struct {
	Type            EpisodeType `json:"type"`
	Start           time.Time   `json:"start"`
	End             time.Time   `json:"end"`
	DurationMinutes int         `json:"duration_minutes"`
	MinValue        float64     `json:"min_value"`
	MaxValue        float64     `json:"max_value"`
	NumReadings     int         `json:"num_readings"`
}

// BandThresholds are the caller-supplied clinical band boundaries for
// time-in-range classification. Values may legitimately overlap at the
// boundaries; the band logic preserves the exact interval semantics instead
// of validating an ordering.
type BandThresholds struct {
	VeryLow    float64 `json:"very_low_threshold"`
	Low        float64 `json:"low_threshold"`
	TargetLow  float64 `json:"target_low"`
	TargetHigh float64 `json:"target_high"`
	High       float64 `json:"high_threshold"`
	VeryHigh   float64 `json:"very_high_threshold"`
}

// DefaultBandThresholds returns the standard consensus bands in mg/dL.
func DefaultBandThresholds() BandThresholds {
	return BandThresholds{
		VeryLow:    54,
		Low:        70,
		TargetLow:  70,
		TargetHigh: 180,
		High:       250,
		VeryHigh:   400,
	}
}

// Insight is a qualitative recommendation produced by the rule engine.
type Insight struct {
	Type            string  `json:"type"`
	Title           string  `json:"title"`
	Message         string  `json:"message"`
	Confidence      float64 `json:"confidence"`
	SuggestedAction string  `json:"suggested_action"`
	Priority        string  `json:"priority"` // "high", "medium", "low"
}
