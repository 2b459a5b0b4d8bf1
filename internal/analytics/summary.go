package analytics

import (
	"time"

	"github.com/mwalther/diametrics/internal/models"
)

// GlucoseSummary is the dashboard's latest-reading snapshot.
type GlucoseSummary struct {
	CurrentValue    *float64    `json:"current_value"`
	Trend           string      `json:"trend"`
	LastReadingTime *time.Time  `json:"last_reading_time"`
	Unit            models.Unit `json:"unit"`
	NumReadings     int         `json:"num_readings"`
}

// SummarizeGlucose reports the most recent value in the target unit and the
// short trend over the last three readings. An empty sample set yields the
// explicit no-data shape.
func SummarizeGlucose(samples []models.Sample, unit models.Unit) GlucoseSummary {
	summary := GlucoseSummary{Trend: TrendNoData, Unit: unit, NumReadings: len(samples)}
	if len(samples) == 0 {
		return summary
	}

	latest := samples[len(samples)-1]
	at := latest.At
	summary.CurrentValue = &latest.Value
	summary.LastReadingTime = &at
	summary.Trend = QuickTrend(models.Values(samples))
	return summary
}

// WindowSummary holds the basic statistics for a window of readings.
type WindowSummary struct {
	Average         *float64 `json:"average"`
	Min             *float64 `json:"min"`
	Max             *float64 `json:"max"`
	StdDev          *float64 `json:"std_dev"`
	NumReadings     int      `json:"num_readings"`
	InTargetPercent *float64 `json:"in_target_percent"`
}

// SummarizeWindow computes average/min/max/SD and the percentage of values
// inside [low, high]. An empty value set yields all-nil fields.
func SummarizeWindow(values []float64, low, high float64) WindowSummary {
	summary := WindowSummary{NumReadings: len(values)}
	if len(values) == 0 {
		return summary
	}

	avg := mean(values)
	min, max := minMax(values)
	sd := stdDev(values)

	inTarget := 0
	for _, v := range values {
		if v >= low && v <= high {
			inTarget++
		}
	}
	pct := float64(inTarget) / float64(len(values)) * 100

	summary.Average = &avg
	summary.Min = &min
	summary.Max = &max
	summary.StdDev = &sd
	summary.InTargetPercent = &pct
	return summary
}

// HourStat is the per-hour-of-day reading aggregate used by pattern rules.
type HourStat struct {
	Hour    int     `json:"hour"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// HourlyAverages groups samples by hour of day and averages each bucket,
// emitted in ascending hour order; empty hours are omitted.
func HourlyAverages(samples []models.Sample) []HourStat {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, s := range samples {
		h := s.At.Hour()
		sums[h] += s.Value
		counts[h]++
	}

	stats := make([]HourStat, 0, len(counts))
	for h := 0; h < 24; h++ {
		if counts[h] == 0 {
			continue
		}
		stats = append(stats, HourStat{
			Hour:    h,
			Average: round2(sums[h] / float64(counts[h])),
			Count:   counts[h],
		})
	}
	return stats
}
