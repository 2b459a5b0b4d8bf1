package report

import (
	"errors"
	"testing"
	"time"

	"github.com/mwalther/diametrics/internal/analytics"
	"github.com/mwalther/diametrics/internal/config"
	"github.com/mwalther/diametrics/internal/models"
	"github.com/mwalther/diametrics/internal/store"
)

const testUser = "alice"

var testNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func testComposer(t *testing.T) (*Composer, *store.MemoryStore) {
	t.Helper()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}
	s := store.NewMemoryStore()
	c := NewComposer(s, cfg).WithNow(func() time.Time { return testNow })
	return c, s
}

func seedReadings(s *store.MemoryStore, base time.Time, spacing time.Duration, values ...float64) {
	for i, v := range values {
		s.AddReadings(testUser, models.GlucoseReading{
			Timestamp: base.Add(time.Duration(i) * spacing),
			Value:     v,
			Unit:      models.UnitMgdL,
		})
	}
}

func TestComposer_Range(t *testing.T) {
	c, s := testComposer(t)
	base := testNow.Add(-6 * time.Hour)
	seedReadings(s, base, 30*time.Minute, 50, 60, 80, 120, 160, 200, 300)

	payload, err := c.Range(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := analytics.BandCounts{VeryLow: 1, Low: 1, InRange: 3, High: 1, VeryHigh: 1}
	if payload.Counts != want {
		t.Errorf("Counts = %+v, want %+v", payload.Counts, want)
	}
	pct, ok := payload.TimeInRange.(*analytics.BandPercentages)
	if !ok || pct == nil {
		t.Fatalf("expected percentages when requested, got %T", payload.TimeInRange)
	}
	sum := pct.VeryLow + pct.Low + pct.InRange + pct.High + pct.VeryHigh
	if sum < 99.9 || sum > 100.1 {
		t.Errorf("percentages sum to %v, want 100 ± 0.1", sum)
	}
	if payload.Meta.TotalReadings != 7 || !payload.Meta.ShowPercentage {
		t.Errorf("meta = %+v, want 7 readings with percentages", payload.Meta)
	}
}

func TestComposer_RangeWithoutPercentages(t *testing.T) {
	c, s := testComposer(t)
	seedReadings(s, testNow.Add(-2*time.Hour), 30*time.Minute, 110, 120)

	payload, err := c.Range(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	counts, ok := payload.TimeInRange.(analytics.BandCounts)
	if !ok {
		t.Fatalf("time_in_range should carry counts when percentages are off, got %T", payload.TimeInRange)
	}
	if counts != payload.Counts {
		t.Errorf("time_in_range counts = %+v, want %+v", counts, payload.Counts)
	}
	if payload.Meta.ShowPercentage {
		t.Error("meta should record that percentages were not requested")
	}
}

func TestComposer_Variability(t *testing.T) {
	c, s := testComposer(t)
	seedReadings(s, testNow.Add(-3*time.Hour), 30*time.Minute, 100, 110, 105, 115, 108, 112)

	payload, err := c.Variability(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m := payload.Metrics
	if m.MinGlucose == nil || *m.MinGlucose != 100 || m.MaxGlucose == nil || *m.MaxGlucose != 115 {
		t.Errorf("min/max = %v/%v, want 100/115", m.MinGlucose, m.MaxGlucose)
	}
	if m.GMI == nil || *m.GMI < 5.0 || *m.GMI > 8.0 {
		t.Errorf("GMI = %v, want within [5, 8]", m.GMI)
	}
	if payload.Explanations == nil {
		t.Error("expected explanations when requested")
	}
}

func TestComposer_VariabilityInsufficientData(t *testing.T) {
	c, s := testComposer(t)
	seedReadings(s, testNow.Add(-time.Hour), 30*time.Minute, 110)

	payload, err := c.Variability(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Metrics.StandardDeviation != nil || payload.Metrics.GMI != nil {
		t.Error("SD and GMI should be nil below 2 readings")
	}
	if payload.Explanations == nil {
		t.Fatal("expected explanations")
	}
	if payload.Explanations.StandardDeviation == "" {
		t.Error("expected an insufficient-data explanation")
	}
}

func TestComposer_Episodes(t *testing.T) {
	c, s := testComposer(t)
	base := testNow.Add(-4 * time.Hour)
	seedReadings(s, base, 15*time.Minute, 120, 65, 68, 62, 110, 185, 200, 195, 130)

	payload, err := c.Episodes(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, 0, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload.NumEpisodes != 2 {
		t.Fatalf("NumEpisodes = %d, want 2", payload.NumEpisodes)
	}
	if payload.Meta.HypoThreshold != 70 || payload.Meta.HyperThreshold != 180 || payload.Meta.MaxGapMinutes != 60 {
		t.Errorf("defaults not applied: %+v", payload.Meta)
	}
}

func TestComposer_EpisodesEmptyWindow(t *testing.T) {
	c, _ := testComposer(t)

	payload, err := c.Episodes(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, 0, 0, 0)
	if err != nil {
		t.Fatalf("empty window should not error, got %v", err)
	}
	if payload.Episodes == nil || len(payload.Episodes) != 0 {
		t.Errorf("expected an explicit empty episode list, got %v", payload.Episodes)
	}
}

func TestComposer_InsulinImpact(t *testing.T) {
	c, s := testComposer(t)
	doseAt := testNow.Add(-2 * time.Hour)
	s.AddReadings(testUser,
		models.GlucoseReading{Timestamp: doseAt.Add(-10 * time.Minute), Value: 180, Unit: models.UnitMgdL},
		models.GlucoseReading{Timestamp: doseAt.Add(60 * time.Minute), Value: 120, Unit: models.UnitMgdL},
	)
	s.AddDoses(testUser, models.InsulinDose{Timestamp: doseAt, Units: 3.0})

	payload, err := c.Impact(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, KindInsulin, analytics.GroupByDoseSize)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(payload.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(payload.Groups))
	}
	g := payload.Groups[0]
	if g.Group != "medium_dose" {
		t.Errorf("group = %q, want medium_dose", g.Group)
	}
	if g.AvgGlucoseChange != -60.0 {
		t.Errorf("AvgGlucoseChange = %v, want -60.0", g.AvgGlucoseChange)
	}
	if g.InsulinSensitivity == nil || *g.InsulinSensitivity != -20.0 {
		t.Errorf("InsulinSensitivity = %v, want -20.0", g.InsulinSensitivity)
	}
	if payload.Meta.NumPairs != 1 {
		t.Errorf("NumPairs = %d, want 1", payload.Meta.NumPairs)
	}
}

func TestComposer_ImpactValidation(t *testing.T) {
	c, _ := testComposer(t)
	q := analytics.WindowQuery{Window: analytics.WindowDay}

	if _, err := c.Impact(testUser, q, "sleep", ""); !errors.Is(err, analytics.ErrValidation) {
		t.Errorf("unknown kind should be a validation error, got %v", err)
	}
	if _, err := c.Impact(testUser, q, KindMeals, "bogus"); !errors.Is(err, analytics.ErrValidation) {
		t.Errorf("unknown group_by should be a validation error, got %v", err)
	}
}

func TestComposer_Trend(t *testing.T) {
	c, s := testComposer(t)
	seedReadings(s, testNow.Add(-5*time.Hour), 30*time.Minute, 100, 105, 110, 150, 160, 170)

	payload, err := c.Trend(testUser, analytics.WindowQuery{Window: analytics.WindowDay}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Trend != analytics.TrendRising {
		t.Errorf("Trend = %q, want rising", payload.Trend)
	}
	if len(payload.MovingAverage) != 4 {
		t.Errorf("moving average length = %d, want 4", len(payload.MovingAverage))
	}
}

func TestComposer_CustomWindowValidation(t *testing.T) {
	c, _ := testComposer(t)

	_, err := c.Range(testUser, analytics.WindowQuery{Window: analytics.WindowCustom}, false)
	if !errors.Is(err, analytics.ErrValidation) {
		t.Errorf("custom window without bounds should be a validation error, got %v", err)
	}
}

func TestComposer_Compose(t *testing.T) {
	c, s := testComposer(t)
	base := testNow.Add(-6 * time.Hour)
	seedReadings(s, base, 30*time.Minute, 110, 120, 115, 210, 220, 205, 130, 125)
	s.AddMeals(testUser, models.Meal{Timestamp: base.Add(90 * time.Minute), TotalCarbs: 60, Description: "Lunch"})
	s.AddDoses(testUser, models.InsulinDose{Timestamp: base.Add(100 * time.Minute), Units: 4.0})

	d, err := c.Compose(testUser, analytics.WindowQuery{Window: analytics.WindowDay})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Summary.NumReadings != 8 {
		t.Errorf("summary NumReadings = %d, want 8", d.Summary.NumReadings)
	}
	if d.TimeInRange == nil || d.TimeInRange.Counts.Total() != 8 {
		t.Error("expected a complete time-in-range block")
	}
	if d.Variability == nil || d.Variability.Metrics.GMI == nil {
		t.Error("expected computed variability metrics")
	}
	if d.Trend == nil || d.Trend.Trend == "" {
		t.Error("expected a trend classification")
	}
	if d.DataQuality.TotalReadings != 8 {
		t.Errorf("data quality TotalReadings = %d, want 8", d.DataQuality.TotalReadings)
	}
	if d.Meta.UserID != testUser || !d.Meta.GeneratedAt.Equal(testNow) {
		t.Errorf("meta = %+v, want user and pinned clock", d.Meta)
	}
}

func TestComposer_ComposeSingleWindowResolution(t *testing.T) {
	// The clock advances 20 minutes on every read and starts just before
	// midnight. If any sub-metric resolved its own window it would land on
	// the next day and see none of the evening's readings.
	c, s := testComposer(t)
	calls := 0
	c.WithNow(func() time.Time {
		calls++
		return time.Date(2024, 3, 15, 23, 50, 0, 0, time.UTC).
			Add(time.Duration(calls-1) * 20 * time.Minute)
	})
	evening := time.Date(2024, 3, 15, 21, 0, 0, 0, time.UTC)
	seedReadings(s, evening, 30*time.Minute, 110, 120, 115, 125)

	d, err := c.Compose(testUser, analytics.WindowQuery{Window: analytics.WindowDay})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for name, w := range map[string]models.TimeWindow{
		"time_in_range": d.TimeInRange.Meta.Window,
		"variability":   d.Variability.Meta.Window,
		"episodes":      d.Episodes.Meta.Window,
		"trend":         d.Trend.Meta.Window,
	} {
		if w != d.Meta.Window {
			t.Errorf("%s window = %v, want the dashboard window %v", name, w, d.Meta.Window)
		}
	}
	if d.Summary.NumReadings != 4 {
		t.Errorf("summary NumReadings = %d, want 4", d.Summary.NumReadings)
	}
	if d.TimeInRange.Meta.TotalReadings != d.Summary.NumReadings {
		t.Errorf("time-in-range saw %d readings, summary saw %d",
			d.TimeInRange.Meta.TotalReadings, d.Summary.NumReadings)
	}
}

func TestComposer_ComposeEmptyWindow(t *testing.T) {
	c, _ := testComposer(t)

	d, err := c.Compose(testUser, analytics.WindowQuery{Window: analytics.WindowWeek})
	if err != nil {
		t.Fatalf("empty window should not error, got %v", err)
	}
	if d.Summary.Trend != analytics.TrendNoData {
		t.Errorf("summary trend = %q, want no_data", d.Summary.Trend)
	}
	if d.TimeInRange.Counts.Total() != 0 {
		t.Error("expected zero counts for an empty window")
	}
	if len(d.Insights) != 0 {
		t.Errorf("expected no insights, got %d", len(d.Insights))
	}
}
