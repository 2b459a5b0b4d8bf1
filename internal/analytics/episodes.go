package analytics

import (
	"time"

	"github.com/mwalther/diametrics/internal/models"
)

// Default episode segmentation parameters, in mg/dL and minutes.
const (
	DefaultHypoThreshold  = 70.0
	DefaultHyperThreshold = 180.0
	DefaultMaxGapMinutes  = 60
)

type episodeState struct {
	kind     models.EpisodeType
	start    time.Time
	last     time.Time
	minValue float64
	maxValue float64
	count    int
}

func (e *episodeState) extend(s models.Sample) {
	e.last = s.At
	e.count++
	if s.Value < e.minValue {
		e.minValue = s.Value
	}
	if s.Value > e.maxValue {
		e.maxValue = s.Value
	}
}

func (e *episodeState) close() models.Episode {
	return models.Episode{
		Type:            e.kind,
		Start:           e.start,
		End:             e.last,
		DurationMinutes: int(e.last.Sub(e.start).Minutes()),
		MinValue:        e.minValue,
		MaxValue:        e.maxValue,
		NumReadings:     e.count,
	}
}

func openEpisode(kind models.EpisodeType, s models.Sample) *episodeState {
	return &episodeState{
		kind:     kind,
		start:    s.At,
		last:     s.At,
		minValue: s.Value,
		maxValue: s.Value,
		count:    1,
	}
}

// SegmentEpisodes walks a chronologically sorted sample sequence and extracts
// contiguous hypo/hyper episodes. A normal reading closes the in-progress
// episode at the previous abnormal reading; a gap longer than maxGapMinutes
// always splits episodes, even when the classification did not change; a
// direct hypo/hyper flip closes one episode and opens the next. Fewer than
// two samples yields no episodes.
func SegmentEpisodes(samples []models.Sample, hypoThreshold, hyperThreshold float64, maxGapMinutes int) []models.Episode {
	if len(samples) < 2 {
		return nil
	}

	maxGap := time.Duration(maxGapMinutes) * time.Minute
	episodes := []models.Episode{}
	var current *episodeState

	classify := func(v float64) models.EpisodeType {
		switch {
		case v < hypoThreshold:
			return models.EpisodeHypo
		case v > hyperThreshold:
			return models.EpisodeHyper
		}
		return ""
	}

	for _, s := range samples {
		kind := classify(s.Value)

		if current != nil {
			switch {
			case s.At.Sub(current.last) > maxGap:
				episodes = append(episodes, current.close())
				current = nil
			case kind == "":
				episodes = append(episodes, current.close())
				current = nil
				continue
			case kind != current.kind:
				episodes = append(episodes, current.close())
				current = nil
			}
		}

		if current == nil {
			if kind != "" {
				current = openEpisode(kind, s)
			}
			continue
		}
		current.extend(s)
	}

	if current != nil {
		episodes = append(episodes, current.close())
	}
	return episodes
}
