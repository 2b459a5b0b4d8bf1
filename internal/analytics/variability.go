package analytics

import "fmt"

// Variability gate: SD and CV need at least two points to be meaningful, and
// GMI is gated together with them for a consistent endpoint contract.
const minReadingsForVariability = 2

// VariabilityMetrics are the variability statistics for a value set. SD, CV
// and GMI are nil below the two-reading threshold; mean/min/max are reported
// whenever at least one value exists.
type VariabilityMetrics struct {
	MeanGlucose            *float64 `json:"mean_glucose"`
	MinGlucose             *float64 `json:"min_glucose"`
	MaxGlucose             *float64 `json:"max_glucose"`
	StandardDeviation      *float64 `json:"standard_deviation"`
	CoefficientOfVariation *float64 `json:"coefficient_of_variation"`
	GMI                    *float64 `json:"glucose_management_indicator"`
	TotalReadings          int      `json:"total_readings"`
}

// VariabilityExplanations carries the human-readable interpretation per metric.
type VariabilityExplanations struct {
	StandardDeviation      string `json:"standard_deviation"`
	CoefficientOfVariation string `json:"coefficient_of_variation"`
	GMI                    string `json:"glucose_management_indicator"`
	OverallAssessment      string `json:"overall_assessment"`
}

// Variability computes mean, population SD, CV and GMI for a value set in
// mg/dL. CV is defined as 0 when the mean is 0. GMI uses the fixed clinical
// formula 3.31 + 0.02392 × mean.
func Variability(values []float64) (VariabilityMetrics, VariabilityExplanations) {
	metrics := VariabilityMetrics{TotalReadings: len(values)}

	if len(values) > 0 {
		m := mean(values)
		min, max := minMax(values)
		metrics.MeanGlucose = &m
		metrics.MinGlucose = &min
		metrics.MaxGlucose = &max
	}

	if len(values) < minReadingsForVariability {
		return metrics, VariabilityExplanations{
			StandardDeviation:      "Not enough data to calculate variability (at least 2 readings required).",
			CoefficientOfVariation: "Not enough data to calculate variability (at least 2 readings required).",
			GMI:                    "Not enough data to calculate GMI (at least 2 readings required).",
			OverallAssessment:      "Add more glucose readings to assess variability.",
		}
	}

	m := *metrics.MeanGlucose
	sd := stdDev(values)
	cv := 0.0
	if m != 0 {
		cv = sd / m * 100
	}
	gmi := 3.31 + 0.02392*m

	metrics.StandardDeviation = &sd
	metrics.CoefficientOfVariation = &cv
	metrics.GMI = &gmi

	return metrics, VariabilityExplanations{
		StandardDeviation:      explainSD(sd),
		CoefficientOfVariation: explainCV(cv),
		GMI:                    explainGMI(gmi),
		OverallAssessment:      overallAssessment(sd, cv, gmi),
	}
}

func explainSD(sd float64) string {
	switch {
	case sd < 20:
		return fmt.Sprintf("Excellent glucose stability (SD %.1f mg/dL).", sd)
	case sd < 30:
		return fmt.Sprintf("Good glucose stability (SD %.1f mg/dL).", sd)
	case sd < 40:
		return fmt.Sprintf("Fair glucose stability (SD %.1f mg/dL) - some fluctuation present.", sd)
	}
	return fmt.Sprintf("High variability (SD %.1f mg/dL) - glucose control needs attention.", sd)
}

func explainCV(cv float64) string {
	switch {
	case cv < 20:
		return fmt.Sprintf("Excellent consistency (CV %.1f%%).", cv)
	case cv < 30:
		return fmt.Sprintf("Good consistency (CV %.1f%%).", cv)
	case cv < 40:
		return fmt.Sprintf("Fair consistency (CV %.1f%%) - glucose fluctuates moderately.", cv)
	}
	return fmt.Sprintf("High variability (CV %.1f%%) - glucose fluctuates significantly.", cv)
}

func explainGMI(gmi float64) string {
	switch {
	case gmi < 6.5:
		return fmt.Sprintf("Excellent glucose management (GMI %.1f%%).", gmi)
	case gmi < 7.0:
		return fmt.Sprintf("Good glucose management (GMI %.1f%%).", gmi)
	case gmi < 8.0:
		return fmt.Sprintf("Fair glucose management (GMI %.1f%%) - room for improvement.", gmi)
	}
	return fmt.Sprintf("High estimated HbA1c (GMI %.1f%%) - review management plan.", gmi)
}

func overallAssessment(sd, cv, gmi float64) string {
	if sd < 30 && cv < 30 && gmi < 7.0 {
		return "Glucose control looks stable overall."
	}
	if sd >= 40 || cv >= 40 || gmi >= 8.0 {
		return "Glucose control shows high variability; consider reviewing patterns with a care provider."
	}
	return "Glucose control is moderate; watch for recurring fluctuations."
}
