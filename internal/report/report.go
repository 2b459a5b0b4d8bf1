// Package report composes the analytics engine's individual metrics into
// serializable result payloads. The window is resolved once and each record
// set is fetched once per request; every computation below the fetch is pure.
package report

import (
	"fmt"
	"time"

	"github.com/mwalther/diametrics/internal/analytics"
	"github.com/mwalther/diametrics/internal/config"
	"github.com/mwalther/diametrics/internal/insights"
	"github.com/mwalther/diametrics/internal/models"
	"github.com/mwalther/diametrics/internal/store"
)

// Anchor kinds accepted by the impact operation.
const (
	KindMeals      = "meals"
	KindActivities = "activities"
	KindInsulin    = "insulin"
)

// Composer runs the analytics pipeline against a repository.
type Composer struct {
	repo store.Repository
	cfg  *config.Config
	now  func() time.Time
}

// NewComposer wires a composer to its repository and configuration.
func NewComposer(repo store.Repository, cfg *config.Config) *Composer {
	return &Composer{repo: repo, cfg: cfg, now: time.Now}
}

// WithNow overrides the clock, for tests and reproducible runs.
func (c *Composer) WithNow(now func() time.Time) *Composer {
	c.now = now
	return c
}

func (c *Composer) window(q analytics.WindowQuery) (models.TimeWindow, error) {
	return analytics.ResolveWindow(c.now().UTC(), q)
}

// mgdlSamples fetches the window's readings normalized to mg/dL.
func (c *Composer) mgdlSamples(userID string, w models.TimeWindow) ([]models.Sample, error) {
	readings, err := c.repo.GlucoseReadings(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching glucose readings: %w", err)
	}
	return models.SamplesInUnit(readings, models.UnitMgdL), nil
}

// RangeMeta echoes the parameters a time-in-range result was computed with.
type RangeMeta struct {
	Window         models.TimeWindow     `json:"window"`
	Thresholds     models.BandThresholds `json:"thresholds"`
	Unit           models.Unit           `json:"unit"`
	ShowPercentage bool                  `json:"show_percentage"`
	TotalReadings  int                   `json:"total_readings"`
}

// RangePayload is the time-in-range result envelope. TimeInRange carries the
// per-band percentages when requested, otherwise the absolute counts.
type RangePayload struct {
	Counts      analytics.BandCounts `json:"counts"`
	TimeInRange any                  `json:"time_in_range"`
	Meta        RangeMeta            `json:"meta"`
}

// Range classifies the window's readings into the configured clinical bands.
func (c *Composer) Range(userID string, q analytics.WindowQuery, withPercentages bool) (*RangePayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	samples, err := c.mgdlSamples(userID, w)
	if err != nil {
		return nil, err
	}
	return c.rangePayload(w, models.Values(samples), withPercentages), nil
}

func (c *Composer) rangePayload(w models.TimeWindow, values []float64, withPercentages bool) *RangePayload {
	result := analytics.ClassifyBands(values, c.cfg.BandThresholds(), withPercentages)

	var timeInRange any = result.Counts
	if withPercentages {
		timeInRange = result.Percentages
	}
	return &RangePayload{
		Counts:      result.Counts,
		TimeInRange: timeInRange,
		Meta: RangeMeta{
			Window:         w,
			Thresholds:     result.Thresholds,
			Unit:           models.UnitMgdL,
			ShowPercentage: withPercentages,
			TotalReadings:  result.TotalReadings,
		},
	}
}

// VariabilityMeta echoes the variability request parameters.
type VariabilityMeta struct {
	Window              models.TimeWindow `json:"window"`
	Unit                models.Unit       `json:"unit"`
	IncludeExplanations bool              `json:"include_explanations"`
}

// VariabilityPayload is the variability result envelope.
type VariabilityPayload struct {
	Metrics      analytics.VariabilityMetrics       `json:"variability_metrics"`
	Explanations *analytics.VariabilityExplanations `json:"explanations,omitempty"`
	Meta         VariabilityMeta                    `json:"meta"`
}

// Variability computes SD/CV/GMI statistics over the window's readings.
func (c *Composer) Variability(userID string, q analytics.WindowQuery, includeExplanations bool) (*VariabilityPayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	samples, err := c.mgdlSamples(userID, w)
	if err != nil {
		return nil, err
	}
	return c.variabilityPayload(w, models.Values(samples), includeExplanations), nil
}

func (c *Composer) variabilityPayload(w models.TimeWindow, values []float64, includeExplanations bool) *VariabilityPayload {
	metrics, explanations := analytics.Variability(values)
	payload := &VariabilityPayload{
		Metrics: metrics,
		Meta: VariabilityMeta{
			Window:              w,
			Unit:                models.UnitMgdL,
			IncludeExplanations: includeExplanations,
		},
	}
	if includeExplanations {
		payload.Explanations = &explanations
	}
	return payload
}

// AGPMeta echoes the AGP request parameters.
type AGPMeta struct {
	Window          models.TimeWindow `json:"window"`
	IntervalMinutes int               `json:"interval_minutes"`
	TotalReadings   int               `json:"total_readings"`
}

// AGPPayload is the ambulatory glucose profile envelope.
type AGPPayload struct {
	Bins []analytics.AGPBin `json:"bins"`
	Meta AGPMeta            `json:"meta"`
}

// AGP bins the window's readings by time of day. A non-positive interval
// falls back to the configured default.
func (c *Composer) AGP(userID string, q analytics.WindowQuery, intervalMinutes int) (*AGPPayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	samples, err := c.mgdlSamples(userID, w)
	if err != nil {
		return nil, err
	}

	if intervalMinutes <= 0 {
		intervalMinutes = c.cfg.AGPIntervalMinutes
	}
	return &AGPPayload{
		Bins: analytics.AGProfile(samples, intervalMinutes),
		Meta: AGPMeta{Window: w, IntervalMinutes: intervalMinutes, TotalReadings: len(samples)},
	}, nil
}

// EpisodesMeta echoes the episode segmentation parameters.
type EpisodesMeta struct {
	Window         models.TimeWindow `json:"window"`
	HypoThreshold  float64           `json:"hypo_threshold"`
	HyperThreshold float64           `json:"hyper_threshold"`
	MaxGapMinutes  int               `json:"max_gap_minutes"`
}

// EpisodesPayload is the episode segmentation envelope.
type EpisodesPayload struct {
	Episodes    []models.Episode `json:"episodes"`
	NumEpisodes int              `json:"num_episodes"`
	Meta        EpisodesMeta     `json:"meta"`
}

// Episodes segments the window's readings into hypo and hyper episodes.
// Non-positive parameters fall back to the configured defaults.
func (c *Composer) Episodes(userID string, q analytics.WindowQuery, hypo, hyper float64, maxGapMinutes int) (*EpisodesPayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	samples, err := c.mgdlSamples(userID, w)
	if err != nil {
		return nil, err
	}
	return c.episodesPayload(w, samples, hypo, hyper, maxGapMinutes), nil
}

func (c *Composer) episodesPayload(w models.TimeWindow, samples []models.Sample, hypo, hyper float64, maxGapMinutes int) *EpisodesPayload {
	if hypo <= 0 {
		hypo = c.cfg.HypoThreshold
	}
	if hyper <= 0 {
		hyper = c.cfg.HyperThreshold
	}
	if maxGapMinutes <= 0 {
		maxGapMinutes = c.cfg.MaxGapMinutes
	}

	episodes := analytics.SegmentEpisodes(samples, hypo, hyper, maxGapMinutes)
	if episodes == nil {
		episodes = []models.Episode{}
	}
	return &EpisodesPayload{
		Episodes:    episodes,
		NumEpisodes: len(episodes),
		Meta: EpisodesMeta{
			Window:         w,
			HypoThreshold:  hypo,
			HyperThreshold: hyper,
			MaxGapMinutes:  maxGapMinutes,
		},
	}
}

// ImpactMeta echoes the correlation request parameters.
type ImpactMeta struct {
	Window            models.TimeWindow `json:"window"`
	Kind              string            `json:"kind"`
	GroupBy           string            `json:"group_by"`
	PreWindowMinutes  int               `json:"pre_window_minutes"`
	PostWindowMinutes int               `json:"post_window_minutes"`
	NumAnchors        int               `json:"num_anchors"`
	NumPairs          int               `json:"num_pairs"`
}

// ImpactPayload is the event correlation envelope.
type ImpactPayload struct {
	Groups []analytics.GroupImpact `json:"groups"`
	Meta   ImpactMeta              `json:"meta"`
}

// Impact correlates glucose movement around the window's anchor events of
// the requested kind, grouped by the requested key.
func (c *Composer) Impact(userID string, q analytics.WindowQuery, kind, groupBy string) (*ImpactPayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	samples, err := c.mgdlSamples(userID, w)
	if err != nil {
		return nil, err
	}
	anchors, err := c.anchors(userID, w, kind, groupBy)
	if err != nil {
		return nil, err
	}
	return c.impactPayload(w, kind, groupBy, anchors, samples), nil
}

// anchors fetches the window's events of one kind and reduces them to
// correlation anchors. Unknown kinds and groupings are validation errors.
func (c *Composer) anchors(userID string, w models.TimeWindow, kind, groupBy string) ([]analytics.Anchor, error) {
	switch kind {
	case KindMeals:
		meals, err := c.repo.Meals(userID, w)
		if err != nil {
			return nil, fmt.Errorf("fetching meals: %w", err)
		}
		return analytics.MealAnchors(meals, groupBy)
	case KindActivities:
		activities, err := c.repo.Activities(userID, w)
		if err != nil {
			return nil, fmt.Errorf("fetching activities: %w", err)
		}
		return analytics.ActivityAnchors(activities, groupBy)
	case KindInsulin:
		doses, err := c.repo.InsulinDoses(userID, w)
		if err != nil {
			return nil, fmt.Errorf("fetching insulin doses: %w", err)
		}
		return analytics.InsulinAnchors(doses, groupBy)
	}
	return nil, fmt.Errorf("%w: unknown anchor kind %q", analytics.ErrValidation, kind)
}

func (c *Composer) impactPayload(w models.TimeWindow, kind, groupBy string, anchors []analytics.Anchor, samples []models.Sample) *ImpactPayload {
	pairs := analytics.MatchPairs(anchors, samples, c.cfg.PreWindowMinutes, c.cfg.PostWindowMinutes)
	if kind == KindInsulin && groupBy == analytics.GroupByEffectiveness {
		pairs = analytics.RegroupByEffectiveness(pairs)
	}

	return &ImpactPayload{
		Groups: analytics.AggregateGroups(pairs, kind == KindInsulin),
		Meta: ImpactMeta{
			Window:            w,
			Kind:              kind,
			GroupBy:           groupBy,
			PreWindowMinutes:  c.cfg.PreWindowMinutes,
			PostWindowMinutes: c.cfg.PostWindowMinutes,
			NumAnchors:        len(anchors),
			NumPairs:          len(pairs),
		},
	}
}

// TrendMeta echoes the trend request parameters.
type TrendMeta struct {
	Window        models.TimeWindow `json:"window"`
	WindowSize    int               `json:"window_size"`
	Unit          models.Unit       `json:"unit"`
	TotalReadings int               `json:"total_readings"`
}

// TrendPayload is the trend analysis envelope.
type TrendPayload struct {
	MovingAverage []float64 `json:"moving_average"`
	Trend         string    `json:"trend"`
	Meta          TrendMeta `json:"meta"`
}

// Trend computes the moving-average series and overall trend classification
// in the configured display unit.
func (c *Composer) Trend(userID string, q analytics.WindowQuery, windowSize int) (*TrendPayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	readings, err := c.repo.GlucoseReadings(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching glucose readings: %w", err)
	}
	return c.trendPayload(w, readings, windowSize), nil
}

func (c *Composer) trendPayload(w models.TimeWindow, readings []models.GlucoseReading, windowSize int) *TrendPayload {
	unit := c.cfg.DisplayUnit()
	values := models.Values(models.SamplesInUnit(readings, unit))
	if windowSize <= 0 {
		windowSize = c.cfg.MovingAvgWindow
	}

	return &TrendPayload{
		MovingAverage: analytics.MovingAverage(values, windowSize),
		Trend:         analytics.ClassifyTrend(values, unit),
		Meta: TrendMeta{
			Window:        w,
			WindowSize:    windowSize,
			Unit:          unit,
			TotalReadings: len(values),
		},
	}
}

// InsightsPayload is the heuristic insight envelope.
type InsightsPayload struct {
	Insights []models.Insight `json:"insights"`
	Meta     struct {
		Window        models.TimeWindow `json:"window"`
		TotalReadings int               `json:"total_readings"`
	} `json:"meta"`
}

// Insights computes the metric snapshot for the window and runs the rule
// table over it.
func (c *Composer) Insights(userID string, q analytics.WindowQuery) (*InsightsPayload, error) {
	w, err := c.window(q)
	if err != nil {
		return nil, err
	}
	samples, err := c.mgdlSamples(userID, w)
	if err != nil {
		return nil, err
	}
	meals, err := c.repo.Meals(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching meals: %w", err)
	}
	doses, err := c.repo.InsulinDoses(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching insulin doses: %w", err)
	}
	return c.insightsPayload(w, samples, meals, doses), nil
}

func (c *Composer) insightsPayload(w models.TimeWindow, samples []models.Sample, meals []models.Meal, doses []models.InsulinDose) *InsightsPayload {
	payload := &InsightsPayload{Insights: insights.Evaluate(c.insightMetrics(samples, meals, doses))}
	payload.Meta.Window = w
	payload.Meta.TotalReadings = len(samples)
	return payload
}

// insightMetrics assembles the aggregate snapshot the rule table reads. Pure
// computation over already-fetched records.
func (c *Composer) insightMetrics(samples []models.Sample, meals []models.Meal, doses []models.InsulinDose) insights.Metrics {
	values := models.Values(samples)
	variability, _ := analytics.Variability(values)

	metrics := insights.Metrics{
		NumReadings: len(values),
		MeanGlucose: variability.MeanGlucose,
		MinGlucose:  variability.MinGlucose,
		MaxGlucose:  variability.MaxGlucose,
		CV:          variability.CoefficientOfVariation,
		HourlyStats: analytics.HourlyAverages(samples),
	}

	if len(values) > 0 {
		tir := analytics.ClassifyBands(values, c.cfg.BandThresholds(), true)
		if tir.Percentages != nil {
			metrics.TimeInRangePct = &tir.Percentages.InRange
		}
	}

	if mealAnchors, err := analytics.MealAnchors(meals, analytics.GroupByTimeOfDay); err == nil {
		pairs := analytics.MatchPairs(mealAnchors, samples, c.cfg.PreWindowMinutes, c.cfg.PostWindowMinutes)
		metrics.MealImpacts = analytics.AggregateGroups(pairs, false)
	}
	if doseAnchors, err := analytics.InsulinAnchors(doses, analytics.GroupByDoseSize); err == nil {
		pairs := analytics.MatchPairs(doseAnchors, samples, c.cfg.PreWindowMinutes, c.cfg.PostWindowMinutes)
		metrics.InsulinImpacts = analytics.AggregateGroups(pairs, true)
	}

	return metrics
}

// Dashboard is the combined single-call report.
type Dashboard struct {
	Summary        analytics.GlucoseSummary `json:"glucose_summary"`
	WindowSummary  analytics.WindowSummary  `json:"window_summary"`
	TimeInRange    *RangePayload            `json:"time_in_range"`
	Variability    *VariabilityPayload      `json:"variability"`
	Episodes       *EpisodesPayload         `json:"episodes"`
	MealImpacts    []analytics.GroupImpact  `json:"meal_impacts"`
	InsulinImpacts []analytics.GroupImpact  `json:"insulin_impacts"`
	Trend          *TrendPayload            `json:"trend"`
	DataQuality    analytics.DataQuality    `json:"data_quality"`
	Insights       []models.Insight         `json:"insights"`
	Meta           struct {
		Window      models.TimeWindow `json:"window"`
		UserID      string            `json:"user_id"`
		GeneratedAt time.Time         `json:"generated_at"`
	} `json:"meta"`
}

// Compose runs the whole pipeline for a user and window. The window is
// resolved exactly once and each record set is fetched exactly once; every
// sub-metric sees the same interval and the same snapshot.
func (c *Composer) Compose(userID string, q analytics.WindowQuery) (*Dashboard, error) {
	generatedAt := c.now().UTC()
	w, err := analytics.ResolveWindow(generatedAt, q)
	if err != nil {
		return nil, err
	}

	readings, err := c.repo.GlucoseReadings(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching glucose readings: %w", err)
	}
	meals, err := c.repo.Meals(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching meals: %w", err)
	}
	doses, err := c.repo.InsulinDoses(userID, w)
	if err != nil {
		return nil, fmt.Errorf("fetching insulin doses: %w", err)
	}

	samples := models.SamplesInUnit(readings, models.UnitMgdL)
	values := models.Values(samples)

	mealAnchors, err := analytics.MealAnchors(meals, analytics.GroupByTimeOfDay)
	if err != nil {
		return nil, err
	}
	doseAnchors, err := analytics.InsulinAnchors(doses, analytics.GroupByDoseSize)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		Summary:        analytics.SummarizeGlucose(samples, models.UnitMgdL),
		WindowSummary:  analytics.SummarizeWindow(values, c.cfg.TargetLow, c.cfg.TargetHigh),
		TimeInRange:    c.rangePayload(w, values, true),
		Variability:    c.variabilityPayload(w, values, true),
		Episodes:       c.episodesPayload(w, samples, 0, 0, 0),
		MealImpacts:    c.impactPayload(w, KindMeals, analytics.GroupByTimeOfDay, mealAnchors, samples).Groups,
		InsulinImpacts: c.impactPayload(w, KindInsulin, analytics.GroupByDoseSize, doseAnchors, samples).Groups,
		Trend:          c.trendPayload(w, readings, 0),
		DataQuality:    analytics.AssessDataQuality(readings, q.Window),
		Insights:       c.insightsPayload(w, samples, meals, doses).Insights,
	}
	d.Meta.Window = w
	d.Meta.UserID = userID
	d.Meta.GeneratedAt = generatedAt
	return d, nil
}
