package analytics

import "github.com/mwalther/diametrics/internal/models"

// BandCounts holds the number of readings per clinical band.
type BandCounts struct {
	VeryLow  int `json:"very_low"`
	Low      int `json:"low"`
	InRange  int `json:"in_range"`
	High     int `json:"high"`
	VeryHigh int `json:"very_high"`
}

// Total sums all five band counts.
func (c BandCounts) Total() int {
	return c.VeryLow + c.Low + c.InRange + c.High + c.VeryHigh
}

// BandPercentages expresses each band as a percentage of the total, rounded
// to two decimals.
type BandPercentages struct {
	VeryLow  float64 `json:"very_low"`
	Low      float64 `json:"low"`
	InRange  float64 `json:"in_range"`
	High     float64 `json:"high"`
	VeryHigh float64 `json:"very_high"`
}

// RangeResult is the time-in-range classification for a value set.
type RangeResult struct {
	Counts        BandCounts            `json:"counts"`
	Percentages   *BandPercentages      `json:"time_in_range,omitempty"`
	TotalReadings int                   `json:"total_readings"`
	Thresholds    models.BandThresholds `json:"thresholds"`
}

// ClassifyBands assigns each value to exactly one of the five bands.
//
// The low side uses the very_low/low thresholds and the high side the
// target_high/high thresholds; the two pairs are independent and the
// half-open interval semantics are load-bearing:
//
//	very_low: v < very_low
//	low:      very_low ≤ v < low
//	in_range: target_low ≤ v ≤ target_high
//	high:     target_high < v ≤ high
//	very_high: v > high
//
// Threshold values are caller-supplied and may overlap at the boundaries;
// the band order below resolves any overlap deterministically.
func ClassifyBands(values []float64, th models.BandThresholds, withPercentages bool) RangeResult {
	result := RangeResult{Thresholds: th, TotalReadings: len(values)}

	for _, v := range values {
		switch {
		case v < th.VeryLow:
			result.Counts.VeryLow++
		case v < th.Low:
			result.Counts.Low++
		case v <= th.TargetHigh:
			result.Counts.InRange++
		case v <= th.High:
			result.Counts.High++
		default:
			result.Counts.VeryHigh++
		}
	}

	if withPercentages {
		p := BandPercentages{}
		if n := float64(len(values)); n > 0 {
			p.VeryLow = round2(float64(result.Counts.VeryLow) / n * 100)
			p.Low = round2(float64(result.Counts.Low) / n * 100)
			p.InRange = round2(float64(result.Counts.InRange) / n * 100)
			p.High = round2(float64(result.Counts.High) / n * 100)
			p.VeryHigh = round2(float64(result.Counts.VeryHigh) / n * 100)
		}
		result.Percentages = &p
	}

	return result
}
