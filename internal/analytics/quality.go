package analytics

import (
	"math"
	"time"

	"github.com/mwalther/diametrics/internal/models"
)

// gapCensusThreshold is the spacing beyond which consecutive readings count
// as a coverage gap.
const gapCensusThreshold = 2 * time.Hour

// DataQuality summarizes the completeness and consistency of a reading set.
type DataQuality struct {
	TotalReadings      int        `json:"total_readings"`
	CoveragePercentage float64    `json:"coverage_percentage"`
	GapsLongerThan2h   int        `json:"gaps_longer_than_2_hours"`
	UnitConsistency    string     `json:"unit_consistency"` // unit name, "mixed", or "" with no data
	DataFreshness      *time.Time `json:"data_freshness"`
}

// AssessDataQuality censuses gaps and grades coverage against an ideal of one
// reading per hour for the named windows. Custom windows grade against the
// observed count (always 100% when any readings exist).
func AssessDataQuality(readings []models.GlucoseReading, windowToken string) DataQuality {
	quality := DataQuality{TotalReadings: len(readings)}

	samples := models.SamplesInUnit(readings, models.UnitMgdL)
	for i := 1; i < len(samples); i++ {
		if samples[i].At.Sub(samples[i-1].At) > gapCensusThreshold {
			quality.GapsLongerThan2h++
		}
	}
	if len(samples) > 0 {
		last := samples[len(samples)-1].At
		quality.DataFreshness = &last
	}

	ideal := len(readings)
	switch windowToken {
	case WindowDay:
		ideal = 24
	case WindowWeek:
		ideal = 168
	case WindowMonth:
		ideal = 720
	case Window3Months:
		ideal = 2160
	}
	if ideal > 0 {
		quality.CoveragePercentage = round1(math.Min(100, float64(len(readings))/float64(ideal)*100))
	}

	units := make(map[models.Unit]bool)
	for _, r := range readings {
		unit := r.Unit
		if unit == "" {
			unit = models.UnitMgdL
		}
		units[unit] = true
	}
	switch {
	case len(units) > 1:
		quality.UnitConsistency = "mixed"
	case len(units) == 1:
		for u := range units {
			quality.UnitConsistency = string(u)
		}
	}

	return quality
}
