package analytics

import (
	"fmt"
	"sort"

	"github.com/mwalther/diametrics/internal/models"
)

// DefaultAGPIntervalMinutes is the standard AGP bin width.
const DefaultAGPIntervalMinutes = 30

// AGPBin is one time-of-day bucket of the ambulatory glucose profile.
type AGPBin struct {
	TimeOfDay string  `json:"time_of_day"` // "HH:MM"
	Median    float64 `json:"median"`
	P25       float64 `json:"p25"`
	P75       float64 `json:"p75"`
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	Count     int     `json:"count"`
}

// AGProfile bins samples by time of day, independent of calendar date, and
// computes per-bin percentile statistics. Bins are emitted in ascending
// time-of-day order; empty bins are omitted.
func AGProfile(samples []models.Sample, intervalMinutes int) []AGPBin {
	if intervalMinutes <= 0 {
		intervalMinutes = DefaultAGPIntervalMinutes
	}

	byBin := make(map[int][]float64)
	for _, s := range samples {
		minutes := s.At.Hour()*60 + s.At.Minute()
		bin := minutes / intervalMinutes * intervalMinutes
		byBin[bin] = append(byBin[bin], s.Value)
	}

	starts := make([]int, 0, len(byBin))
	for bin := range byBin {
		starts = append(starts, bin)
	}
	sort.Ints(starts)

	bins := make([]AGPBin, 0, len(starts))
	for _, start := range starts {
		values := byBin[start]
		sorted := make([]float64, len(values))
		copy(sorted, values)
		sort.Float64s(sorted)

		n := len(sorted)
		// With fewer than 4 values there are no meaningful quartiles;
		// fall back to the extremes.
		p25 := sorted[0]
		p75 := sorted[n-1]
		if n >= 4 {
			p25 = sorted[n/4]
			p75 = sorted[3*n/4]
		}

		bins = append(bins, AGPBin{
			TimeOfDay: fmt.Sprintf("%02d:%02d", start/60, start%60),
			Median:    median(sorted),
			P25:       p25,
			P75:       p75,
			Min:       sorted[0],
			Max:       sorted[n-1],
			Count:     n,
		})
	}
	return bins
}
