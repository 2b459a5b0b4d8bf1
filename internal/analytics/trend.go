package analytics

import "github.com/mwalther/diametrics/internal/models"

// DefaultMovingAvgWindow is the default moving-average window size.
const DefaultMovingAvgWindow = 5

// Trend classification labels.
const (
	TrendRising           = "rising"
	TrendFalling          = "falling"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
	TrendNoData           = "no_data"
)

// trendThresholdMgdL is the half-split mean difference beyond which a series
// classifies as rising or falling, defined in mg/dL.
const trendThresholdMgdL = 20.0

// MovingAverage computes the k-wide trailing average over a chronologically
// sorted value series. The average at index i covers values[i-k+1..i], so the
// output length is len(values)-k+1 when enough values exist, else empty.
// Averages are rounded to one decimal.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 0 {
		window = DefaultMovingAvgWindow
	}
	if len(values) < window {
		return []float64{}
	}

	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, round1(sum/float64(window)))
		}
	}
	return out
}

// ClassifyTrend splits the chronologically sorted series at its midpoint and
// compares half means; a difference beyond ±20 mg/dL (converted when the
// series is in mmol/L) classifies as rising or falling.
func ClassifyTrend(values []float64, unit models.Unit) string {
	if len(values) == 0 {
		return TrendNoData
	}
	if len(values) < 2 {
		return TrendInsufficientData
	}

	threshold := trendThresholdMgdL
	if unit == models.UnitMmolL {
		threshold = trendThresholdMgdL / 18
	}

	mid := len(values) / 2
	diff := mean(values[mid:]) - mean(values[:mid])
	switch {
	case diff > threshold:
		return TrendRising
	case diff < -threshold:
		return TrendFalling
	}
	return TrendStable
}

// QuickTrend is the dashboard's latest-readings trend: it compares the last
// reading against the third-to-last. Below three readings it reports
// insufficient data.
func QuickTrend(values []float64) string {
	if len(values) < 3 {
		return TrendInsufficientData
	}
	recent := values[len(values)-3:]
	switch {
	case recent[2] > recent[0]:
		return TrendRising
	case recent[2] < recent[0]:
		return TrendFalling
	}
	return TrendStable
}
