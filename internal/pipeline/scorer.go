package pipeline

import "math"

// epsilon guards the relative-change denominator against division by zero
// when a metric was absent in both captures.
const epsilon = 1e-9

// relativeChange computes the normalized change between a metric's previous
// and current values. The denominator is the larger of the two values, so
// swapping before/after flips the sign but keeps the magnitude, and the
// result is naturally bounded in [-1,1] before clamping.
func relativeChange(prev, curr float64) float64 {
	denom := math.Max(math.Max(prev, curr), epsilon)
	return (curr - prev) / denom
}

// scoreGrowth folds the five before/after metric pairs into a single 0-100
// growth score plus a percentage-change breakdown. Each normalized delta is
// clamped to the configured range so one runaway metric cannot dominate the
// aggregate; the weighted sum in [-1,1] is then remapped so "no change"
// lands exactly on the neutral 50 baseline.
func scoreGrowth(before, after map[Metric]float64, opts AnalysisOptions) (float64, map[Metric]float64) {
	deltas := make(map[Metric]float64, len(metricOrder))
	weighted := 0.0
	for _, m := range metricOrder {
		r := relativeChange(before[m], after[m])
		r = clamp(r, opts.DeltaClampLo, opts.DeltaClampHi)
		deltas[m] = r * 100
		weighted += opts.Weights[m] * r
	}
	score := clamp((weighted+1)*50, 0, 100)
	return score, deltas
}

var declineAdvice = map[Metric]string{
	MetricLeafCount:        "New leaf development has stalled; check for pruning stress or nutrient deficiency.",
	MetricGreenPixelRatio:  "Green coverage is shrinking; inspect the plant for leaf drop or browning.",
	MetricBoundingBoxArea:  "The plant's footprint has contracted; make sure it has room and support to spread.",
	MetricColorHealthIndex: "Leaf color is losing vibrancy; review the watering routine and move the plant closer to indirect light.",
	MetricSunlightProxy:    "Light exposure looks reduced; relocate the plant to a brighter spot.",
}

// suggestion selects the care recommendation from a fixed rule set keyed on
// the score band and the worst-declining metric. Purely a lookup; the same
// inputs always produce the same text.
func suggestion(score float64, deltas map[Metric]float64) string {
	var base string
	switch {
	case score >= 80:
		base = "Excellent growth! Your plant is thriving with strong development across all metrics."
	case score >= 60:
		base = "Good growth progress. Consider optimizing watering and light conditions for better results."
	case score >= 40:
		base = "Moderate growth detected. Check soil nutrition and ensure adequate sunlight exposure."
	default:
		base = "Growth appears limited. Review care routine including water, light, and soil conditions."
	}

	worst := Metric("")
	worstDelta := 0.0
	for _, m := range metricOrder {
		if d := deltas[m]; d < worstDelta {
			worst = m
			worstDelta = d
		}
	}
	if worst != "" {
		base += " " + declineAdvice[worst]
	}
	return base
}
