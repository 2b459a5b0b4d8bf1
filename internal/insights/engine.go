// Package insights derives qualitative recommendations from computed glucose
// metrics. The rules are deterministic thresholds evaluated in a fixed order;
// they never fetch data themselves.
package insights

import (
	"fmt"

	"github.com/mwalther/diametrics/internal/analytics"
	"github.com/mwalther/diametrics/internal/models"
)

// Insight priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Minimum data for the hourly pattern rules.
const (
	minReadingsForPatterns = 7
	minReadingsPerHour     = 3
)

// Metrics is the snapshot of computed aggregates the rule table evaluates.
// Absent metrics are nil and their rules simply do not fire.
type Metrics struct {
	NumReadings    int
	MeanGlucose    *float64
	MinGlucose     *float64
	MaxGlucose     *float64
	CV             *float64
	TimeInRangePct *float64
	HourlyStats    []analytics.HourStat
	MealImpacts    []analytics.GroupImpact
	InsulinImpacts []analytics.GroupImpact
}

// rule pairs a firing condition with the insight it emits.
type rule struct {
	applies func(Metrics) bool
	build   func(Metrics) models.Insight
}

// The threshold rules, evaluated in declaration order. Rules are independent;
// several may fire for the same snapshot.
var thresholdRules = []rule{
	{
		applies: func(m Metrics) bool { return m.MeanGlucose != nil && *m.MeanGlucose > 200 },
		build: func(m Metrics) models.Insight {
			return models.Insight{
				Type:            "high_average_glucose",
				Title:           "High Average Glucose",
				Message:         fmt.Sprintf("Your average glucose of %.0f mg/dL is above the recommended range.", *m.MeanGlucose),
				Confidence:      0.9,
				SuggestedAction: "Review your meal choices and insulin dosing with your care team.",
				Priority:        PriorityHigh,
			}
		},
	},
	{
		applies: func(m Metrics) bool { return m.MaxGlucose != nil && *m.MaxGlucose > 300 },
		build: func(m Metrics) models.Insight {
			return models.Insight{
				Type:            "hyperglycemia_spike",
				Title:           "Severe Glucose Spike",
				Message:         fmt.Sprintf("A reading of %.0f mg/dL was recorded in this period.", *m.MaxGlucose),
				Confidence:      0.95,
				SuggestedAction: "Identify what preceded the spike and consider a correction strategy.",
				Priority:        PriorityHigh,
			}
		},
	},
	{
		applies: func(m Metrics) bool { return m.MinGlucose != nil && *m.MinGlucose < 54 },
		build: func(m Metrics) models.Insight {
			return models.Insight{
				Type:            "severe_hypoglycemia",
				Title:           "Severe Low Glucose",
				Message:         fmt.Sprintf("A reading of %.0f mg/dL is dangerously low.", *m.MinGlucose),
				Confidence:      0.95,
				SuggestedAction: "Keep fast-acting glucose nearby and discuss lows with your care team.",
				Priority:        PriorityHigh,
			}
		},
	},
	{
		applies: func(m Metrics) bool { return m.MinGlucose != nil && *m.MinGlucose < 70 },
		build: func(m Metrics) models.Insight {
			return models.Insight{
				Type:            "hypoglycemia_risk",
				Title:           "Low Glucose Detected",
				Message:         fmt.Sprintf("A reading of %.0f mg/dL fell below the target range.", *m.MinGlucose),
				Confidence:      0.85,
				SuggestedAction: "Watch for symptoms of lows and consider adjusting insulin timing.",
				Priority:        PriorityMedium,
			}
		},
	},
	{
		applies: func(m Metrics) bool { return m.CV != nil && *m.CV > 36 },
		build: func(m Metrics) models.Insight {
			return models.Insight{
				Type:            "high_variability",
				Title:           "High Glucose Variability",
				Message:         fmt.Sprintf("Your coefficient of variation of %.1f%% exceeds the stability target of 36%%.", *m.CV),
				Confidence:      0.8,
				SuggestedAction: "More consistent meal timing and carb counting can reduce swings.",
				Priority:        PriorityMedium,
			}
		},
	},
	{
		applies: func(m Metrics) bool { return m.TimeInRangePct != nil && *m.TimeInRangePct < 70 },
		build: func(m Metrics) models.Insight {
			return models.Insight{
				Type:            "low_time_in_range",
				Title:           "Time in Range Below Target",
				Message:         fmt.Sprintf("You were in range %.1f%% of the time; the clinical target is 70%%.", *m.TimeInRangePct),
				Confidence:      0.85,
				SuggestedAction: "Focus on the times of day where readings drift out of range.",
				Priority:        PriorityMedium,
			}
		},
	},
}

// Evaluate runs the full rule table over the snapshot and returns the fired
// insights in rule order. An empty snapshot yields no insights.
func Evaluate(m Metrics) []models.Insight {
	insights := []models.Insight{}
	for _, r := range thresholdRules {
		if r.applies(m) {
			insights = append(insights, r.build(m))
		}
	}
	insights = append(insights, hourlyPatterns(m)...)
	insights = append(insights, mealPatterns(m.MealImpacts)...)
	insights = append(insights, insulinPatterns(m.InsulinImpacts)...)
	return insights
}

// hourlyPatterns flags hours of the day whose average is consistently out of
// range. It needs enough data overall and per hour to call something a
// pattern rather than a one-off.
func hourlyPatterns(m Metrics) []models.Insight {
	if m.NumReadings < minReadingsForPatterns {
		return nil
	}

	var insights []models.Insight
	for _, h := range m.HourlyStats {
		if h.Count < minReadingsPerHour {
			continue
		}
		switch {
		case h.Average > 180:
			insights = append(insights, models.Insight{
				Type:            "hourly_high_pattern",
				Title:           fmt.Sprintf("Consistently High Around %02d:00", h.Hour),
				Message:         fmt.Sprintf("Readings around %02d:00 average %.0f mg/dL across %d readings.", h.Hour, h.Average, h.Count),
				Confidence:      hourConfidence(h.Count),
				SuggestedAction: "Review meals or basal rates affecting this time of day.",
				Priority:        PriorityMedium,
			})
		case h.Average < 100:
			insights = append(insights, models.Insight{
				Type:            "hourly_low_pattern",
				Title:           fmt.Sprintf("Consistently Low Around %02d:00", h.Hour),
				Message:         fmt.Sprintf("Readings around %02d:00 average %.0f mg/dL across %d readings.", h.Hour, h.Average, h.Count),
				Confidence:      hourConfidence(h.Count),
				SuggestedAction: "Consider whether insulin active at this hour is too aggressive.",
				Priority:        PriorityMedium,
			})
		}
	}
	return insights
}

// mealPatterns flags meal groups with a large average post-meal rise.
func mealPatterns(impacts []analytics.GroupImpact) []models.Insight {
	var insights []models.Insight
	for _, g := range impacts {
		if g.NumPairs < 2 || g.AvgGlucoseChange <= 80 {
			continue
		}
		insights = append(insights, models.Insight{
			Type:            "meal_spike_pattern",
			Title:           fmt.Sprintf("Large Rise After %s", titleCase(g.Group)),
			Message:         fmt.Sprintf("Glucose rises %.0f mg/dL on average after %s (%d meals).", g.AvgGlucoseChange, g.Group, g.NumPairs),
			Confidence:      0.75,
			SuggestedAction: "Consider pre-bolusing earlier or adjusting carbs for this meal.",
			Priority:        PriorityMedium,
		})
	}
	return insights
}

// insulinPatterns flags dose groups whose measured effectiveness is poor.
func insulinPatterns(impacts []analytics.GroupImpact) []models.Insight {
	var insights []models.Insight
	for _, g := range impacts {
		if g.NumPairs < 2 || g.EffectivenessScore == nil || *g.EffectivenessScore >= 0.3 {
			continue
		}
		insights = append(insights, models.Insight{
			Type:            "low_insulin_effectiveness",
			Title:           fmt.Sprintf("Weak Response for %s", titleCase(g.Group)),
			Message:         fmt.Sprintf("Doses in the %s group show a low measured effect (score %.2f).", g.Group, *g.EffectivenessScore),
			Confidence:      0.7,
			SuggestedAction: "Discuss dose sizing or injection timing for this pattern with your care team.",
			Priority:        PriorityLow,
		})
	}
	return insights
}

// hourConfidence grows with the per-hour sample count, capped at 0.9.
func hourConfidence(count int) float64 {
	c := 0.5 + 0.05*float64(count)
	if c > 0.9 {
		c = 0.9
	}
	return c
}

func titleCase(group string) string {
	out := []rune(group)
	up := true
	for i, r := range out {
		switch {
		case r == '_':
			out[i] = ' '
			up = true
		case up && r >= 'a' && r <= 'z':
			out[i] = r - 'a' + 'A'
			up = false
		default:
			up = false
		}
	}
	return string(out)
}
