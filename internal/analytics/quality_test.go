package analytics

import (
	"testing"
	"time"

	"github.com/mwalther/diametrics/internal/models"
)

func readingsAt(base time.Time, spacing time.Duration, values ...float64) []models.GlucoseReading {
	readings := make([]models.GlucoseReading, len(values))
	for i, v := range values {
		readings[i] = models.GlucoseReading{
			Timestamp: base.Add(time.Duration(i) * spacing),
			Value:     v,
			Unit:      models.UnitMgdL,
		}
	}
	return readings
}

func TestAssessDataQuality(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := readingsAt(base, time.Hour, 100, 110, 120, 115, 105, 108)
	// Introduce a 3-hour gap.
	readings[5].Timestamp = readings[4].Timestamp.Add(3 * time.Hour)

	quality := AssessDataQuality(readings, WindowDay)

	if quality.TotalReadings != 6 {
		t.Errorf("TotalReadings = %d, want 6", quality.TotalReadings)
	}
	if quality.GapsLongerThan2h != 1 {
		t.Errorf("GapsLongerThan2h = %d, want 1", quality.GapsLongerThan2h)
	}
	if quality.CoveragePercentage != 25.0 {
		t.Errorf("CoveragePercentage = %v, want 25.0 for 6 of 24 ideal", quality.CoveragePercentage)
	}
	if quality.UnitConsistency != string(models.UnitMgdL) {
		t.Errorf("UnitConsistency = %q, want mg/dL", quality.UnitConsistency)
	}
	if quality.DataFreshness == nil || !quality.DataFreshness.Equal(readings[5].Timestamp) {
		t.Errorf("DataFreshness = %v, want last reading time", quality.DataFreshness)
	}
}

func TestAssessDataQuality_CoverageCapped(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := readingsAt(base, 30*time.Minute, make([]float64, 50)...)
	for i := range readings {
		readings[i].Value = 100
	}

	quality := AssessDataQuality(readings, WindowDay)
	if quality.CoveragePercentage != 100.0 {
		t.Errorf("CoveragePercentage = %v, want capped at 100", quality.CoveragePercentage)
	}
}

func TestAssessDataQuality_MixedUnits(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	readings := []models.GlucoseReading{
		{Timestamp: base, Value: 100, Unit: models.UnitMgdL},
		{Timestamp: base.Add(time.Hour), Value: 5.5, Unit: models.UnitMmolL},
	}

	quality := AssessDataQuality(readings, WindowCustom)
	if quality.UnitConsistency != "mixed" {
		t.Errorf("UnitConsistency = %q, want mixed", quality.UnitConsistency)
	}
	// Custom windows grade against the observed count.
	if quality.CoveragePercentage != 100.0 {
		t.Errorf("CoveragePercentage = %v, want 100 for custom window", quality.CoveragePercentage)
	}
}

func TestAssessDataQuality_Empty(t *testing.T) {
	quality := AssessDataQuality(nil, WindowDay)

	if quality.TotalReadings != 0 || quality.GapsLongerThan2h != 0 {
		t.Errorf("empty input should census nothing, got %+v", quality)
	}
	if quality.DataFreshness != nil {
		t.Error("empty input should have nil freshness")
	}
	if quality.UnitConsistency != "" {
		t.Errorf("UnitConsistency = %q, want empty", quality.UnitConsistency)
	}
}
