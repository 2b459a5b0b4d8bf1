package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mwalther/diametrics/internal/models"
)

// Default correlation matching windows, in minutes.
const (
	DefaultPreWindowMinutes  = 30
	DefaultPostWindowMinutes = 120
)

// Anchor is a temporal reference event (meal, activity or insulin dose)
// reduced to the attributes correlation needs: a timestamp, a magnitude for
// the Pearson axis, and a group key.
type Anchor struct {
	At        time.Time
	Magnitude float64
	Group     string
}

// CorrelationPair links an anchor with its closest preceding and following
// glucose samples inside the matching windows.
type CorrelationPair struct {
	AnchorTime      time.Time `json:"anchor_timestamp"`
	PreValue        float64   `json:"pre_value"`
	PostValue       float64   `json:"post_value"`
	Delta           float64   `json:"delta"`
	Magnitude       float64   `json:"magnitude"`
	ResponseMinutes float64   `json:"response_minutes"`
	Group           string    `json:"group"`
}

// GroupImpact aggregates the correlation pairs of one group.
type GroupImpact struct {
	Group              string  `json:"group"`
	NumPairs           int     `json:"num_pairs"`
	AvgGlucoseChange   float64 `json:"avg_glucose_change"`
	AvgPreValue        float64 `json:"avg_pre_value"`
	AvgPostValue       float64 `json:"avg_post_value"`
	StdDevChange       float64 `json:"std_dev_change"`
	AvgResponseMinutes float64 `json:"avg_response_minutes"`
	// Pearson correlation between anchor magnitude and delta; nil with a
	// single pair, 0 when either variance is 0.
	CorrelationCoefficient *float64 `json:"correlation_coefficient"`
	// Insulin-only aggregates.
	InsulinSensitivity *float64 `json:"insulin_sensitivity,omitempty"`
	EffectivenessScore *float64 `json:"effectiveness_score,omitempty"`
}

// MatchPairs finds, for each anchor, the closest preceding sample within
// preWindowMinutes and the closest following sample within postWindowMinutes.
// Anchors missing either side are silently excluded. Samples must be sorted
// chronologically.
func MatchPairs(anchors []Anchor, samples []models.Sample, preWindowMinutes, postWindowMinutes int) []CorrelationPair {
	preWindow := time.Duration(preWindowMinutes) * time.Minute
	postWindow := time.Duration(postWindowMinutes) * time.Minute

	pairs := []CorrelationPair{}
	for _, a := range anchors {
		if a.At.IsZero() {
			continue
		}
		at := a.At.UTC()

		// Latest sample at or before the anchor, within the pre window.
		i := sort.Search(len(samples), func(i int) bool {
			return samples[i].At.After(at)
		})
		if i == 0 {
			continue
		}
		pre := samples[i-1]
		if at.Sub(pre.At) > preWindow {
			continue
		}

		// Earliest sample at or after the anchor, within the post window.
		j := sort.Search(len(samples), func(j int) bool {
			return !samples[j].At.Before(at)
		})
		if j == len(samples) {
			continue
		}
		post := samples[j]
		if post.At.Sub(at) > postWindow {
			continue
		}

		pairs = append(pairs, CorrelationPair{
			AnchorTime:      at,
			PreValue:        pre.Value,
			PostValue:       post.Value,
			Delta:           post.Value - pre.Value,
			Magnitude:       a.Magnitude,
			ResponseMinutes: post.At.Sub(at).Minutes(),
			Group:           a.Group,
		})
	}
	return pairs
}

// AggregateGroups folds correlation pairs into per-group impact statistics,
// emitted sorted by group key. When insulin is true the insulin-specific
// sensitivity and effectiveness aggregates are included.
func AggregateGroups(pairs []CorrelationPair, insulin bool) []GroupImpact {
	byGroup := make(map[string][]CorrelationPair)
	for _, p := range pairs {
		byGroup[p.Group] = append(byGroup[p.Group], p)
	}

	groups := make([]string, 0, len(byGroup))
	for g := range byGroup {
		groups = append(groups, g)
	}
	sort.Strings(groups)

	impacts := make([]GroupImpact, 0, len(groups))
	for _, g := range groups {
		group := byGroup[g]

		deltas := make([]float64, len(group))
		pres := make([]float64, len(group))
		posts := make([]float64, len(group))
		magnitudes := make([]float64, len(group))
		responses := make([]float64, len(group))
		for i, p := range group {
			deltas[i] = p.Delta
			pres[i] = p.PreValue
			posts[i] = p.PostValue
			magnitudes[i] = p.Magnitude
			responses[i] = p.ResponseMinutes
		}

		impact := GroupImpact{
			Group:              g,
			NumPairs:           len(group),
			AvgGlucoseChange:   round2(mean(deltas)),
			AvgPreValue:        round2(mean(pres)),
			AvgPostValue:       round2(mean(posts)),
			StdDevChange:       round2(stdDev(deltas)),
			AvgResponseMinutes: round2(mean(responses)),
		}

		if len(group) >= 2 {
			r := round2(pearson(magnitudes, deltas))
			impact.CorrelationCoefficient = &r
		}

		if insulin {
			sens := round2(insulinSensitivity(group))
			impact.InsulinSensitivity = &sens
			score := round2(effectivenessScore(mean(deltas), stdDev(deltas), mean(responses)))
			impact.EffectivenessScore = &score
		}

		impacts = append(impacts, impact)
	}
	return impacts
}

// insulinSensitivity is the average glucose change per unit of insulin.
func insulinSensitivity(pairs []CorrelationPair) float64 {
	perUnit := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if p.Magnitude > 0 {
			perUnit = append(perUnit, p.Delta/p.Magnitude)
		}
	}
	if len(perUnit) == 0 {
		return 0
	}
	return mean(perUnit)
}

// effectivenessScore grades insulin response in [0, 1]: a weighted sum of the
// normalized drop magnitude (50 mg/dL caps at 1.0), a consistency term and a
// response-time term.
func effectivenessScore(avgDelta, stdDev, avgResponseMinutes float64) float64 {
	drop := clamp01(-avgDelta / 50)
	consistency := clamp01(1 - stdDev/30)
	responseTime := clamp01(1 - (avgResponseMinutes-45)/60)
	return clamp01(0.4*drop + 0.3*consistency + 0.3*responseTime)
}

// Group-by selectors per anchor category.
const (
	GroupByTimeOfDay     = "time_of_day"
	GroupByMealType      = "meal_type"
	GroupByActivityType  = "activity_type"
	GroupByIntensity     = "intensity"
	GroupByDoseSize      = "dose_size"
	GroupByEffectiveness = "effectiveness"
)

// MealAnchors reduces meals to correlation anchors, keyed by the requested
// grouping. Magnitude is the meal's total carbs. An unknown grouping is a
// validation error regardless of whether any meals exist.
func MealAnchors(meals []models.Meal, groupBy string) ([]Anchor, error) {
	if groupBy == "" {
		groupBy = GroupByTimeOfDay
	}
	if groupBy != GroupByTimeOfDay && groupBy != GroupByMealType {
		return nil, fmt.Errorf("%w: unknown group_by %q for meals", ErrValidation, groupBy)
	}

	anchors := make([]Anchor, 0, len(meals))
	for _, m := range meals {
		if m.Timestamp.IsZero() {
			continue
		}
		group := mealTimeOfDay(m.Timestamp.UTC().Hour())
		if groupBy == GroupByMealType {
			group = mealTypeFromDescription(m.Description)
		}
		anchors = append(anchors, Anchor{At: m.Timestamp, Magnitude: m.TotalCarbs, Group: group})
	}
	return anchors, nil
}

// ActivityAnchors reduces activities to correlation anchors. Magnitude is
// the activity duration in minutes. An unknown grouping is a validation
// error regardless of whether any activities exist.
func ActivityAnchors(activities []models.Activity, groupBy string) ([]Anchor, error) {
	if groupBy == "" {
		groupBy = GroupByActivityType
	}
	if groupBy != GroupByActivityType && groupBy != GroupByIntensity {
		return nil, fmt.Errorf("%w: unknown group_by %q for activities", ErrValidation, groupBy)
	}

	anchors := make([]Anchor, 0, len(activities))
	for _, a := range activities {
		if a.Timestamp.IsZero() {
			continue
		}
		group := a.Type
		if groupBy == GroupByIntensity {
			group = a.Intensity
		}
		if group == "" {
			group = "unknown"
		}
		anchors = append(anchors, Anchor{At: a.Timestamp, Magnitude: a.DurationMin, Group: group})
	}
	return anchors, nil
}

// InsulinAnchors reduces insulin doses to correlation anchors. Magnitude is
// the dose in units. The effectiveness grouping is assigned after matching
// (see RegroupByEffectiveness) since it derives from the measured response.
// An unknown grouping is a validation error regardless of whether any doses
// exist.
func InsulinAnchors(doses []models.InsulinDose, groupBy string) ([]Anchor, error) {
	if groupBy == "" {
		groupBy = GroupByDoseSize
	}
	switch groupBy {
	case GroupByDoseSize, GroupByTimeOfDay, GroupByEffectiveness:
	default:
		return nil, fmt.Errorf("%w: unknown group_by %q for insulin doses", ErrValidation, groupBy)
	}

	anchors := make([]Anchor, 0, len(doses))
	for _, d := range doses {
		if d.Timestamp.IsZero() {
			continue
		}
		var group string
		switch groupBy {
		case GroupByDoseSize:
			group = doseSizeBucket(d.Units)
		case GroupByTimeOfDay:
			group = doseTimeOfDay(d.Timestamp.UTC().Hour())
		case GroupByEffectiveness:
			group = "pending"
		}
		anchors = append(anchors, Anchor{At: d.Timestamp, Magnitude: d.Units, Group: group})
	}
	return anchors, nil
}

// RegroupByEffectiveness rewrites each pair's group from its measured
// per-unit glucose response.
func RegroupByEffectiveness(pairs []CorrelationPair) []CorrelationPair {
	regrouped := make([]CorrelationPair, len(pairs))
	for i, p := range pairs {
		sensitivity := 0.0
		if p.Magnitude > 0 {
			sensitivity = p.Delta / p.Magnitude
		}
		p.Group = effectivenessBucket(sensitivity)
		regrouped[i] = p
	}
	return regrouped
}

// Meal time-of-day hour buckets: [5,11) breakfast, [11,16) lunch,
// [16,21) dinner, otherwise snack.
func mealTimeOfDay(hour int) string {
	switch {
	case hour >= 5 && hour < 11:
		return "breakfast"
	case hour >= 11 && hour < 16:
		return "lunch"
	case hour >= 16 && hour < 21:
		return "dinner"
	}
	return "snack"
}

// Insulin time-of-day hour buckets: [6,12) morning, [12,18) afternoon,
// [18,24) evening, otherwise night.
func doseTimeOfDay(hour int) string {
	switch {
	case hour >= 6 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 18:
		return "afternoon"
	case hour >= 18 && hour < 24:
		return "evening"
	}
	return "night"
}

func doseSizeBucket(units float64) string {
	switch {
	case units <= 2:
		return "small_dose"
	case units <= 5:
		return "medium_dose"
	}
	return "large_dose"
}

func effectivenessBucket(sensitivity float64) string {
	switch {
	case sensitivity <= -15:
		return "highly_effective"
	case sensitivity < 0:
		return "moderately_effective"
	}
	return "low_effect"
}

func mealTypeFromDescription(description string) string {
	desc := strings.ToLower(description)
	switch {
	case containsAny(desc, "breakfast", "morning"):
		return "breakfast"
	case containsAny(desc, "lunch", "noon", "midday"):
		return "lunch"
	case containsAny(desc, "dinner", "evening", "night"):
		return "dinner"
	}
	return "snack"
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
