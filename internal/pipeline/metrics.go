package pipeline

import (
	"gonum.org/v1/gonum/stat"
)

// Metric identifies one of the five growth metrics.
type Metric string

const (
	MetricLeafCount        Metric = "leaf_count"
	MetricGreenPixelRatio  Metric = "green_pixel_ratio"
	MetricBoundingBoxArea  Metric = "bounding_box_area"
	MetricColorHealthIndex Metric = "color_health_index"
	MetricSunlightProxy    Metric = "sunlight_proxy"
)

// metricOrder fixes the iteration order everywhere metrics are walked, so
// results and suggestions are deterministic.
var metricOrder = [5]Metric{
	MetricLeafCount,
	MetricGreenPixelRatio,
	MetricBoundingBoxArea,
	MetricColorHealthIndex,
	MetricSunlightProxy,
}

// Metrics returns the fixed set of metric names in reporting order.
func Metrics() []Metric {
	return metricOrder[:]
}

var metricUnits = map[Metric]string{
	MetricLeafCount:        "leaves",
	MetricGreenPixelRatio:  "%",
	MetricBoundingBoxArea:  "px²",
	MetricColorHealthIndex: "%",
	MetricSunlightProxy:    "%",
}

var metricDescriptions = map[Metric]string{
	MetricLeafCount:        "Number of individual leaf regions detected on the plant",
	MetricGreenPixelRatio:  "Percentage of image pixels classified as healthy green plant material",
	MetricBoundingBoxArea:  "Total area covered by the plant's bounding rectangle",
	MetricColorHealthIndex: "Health score based on color vibrancy and saturation",
	MetricSunlightProxy:    "Estimated sunlight exposure based on image brightness",
}

// displayScale maps a raw metric value onto its reporting unit. Ratio-style
// metrics are shown as percentages; scaling is linear so it never changes
// the scoring deltas.
var displayScale = map[Metric]float64{
	MetricLeafCount:        1,
	MetricGreenPixelRatio:  100,
	MetricBoundingBoxArea:  1,
	MetricColorHealthIndex: 100,
	MetricSunlightProxy:    100,
}

// Unit returns the reporting unit for a metric.
func (m Metric) Unit() string { return metricUnits[m] }

// Description returns the human-readable description for a metric.
func (m Metric) Description() string { return metricDescriptions[m] }

// Display converts a raw metric value to its reporting scale.
func (m Metric) Display(value float64) float64 { return value * displayScale[m] }

// computeMetric evaluates one metric over the shared immutable artifacts of
// a single image. The five variants form a closed set; the scoring formula
// fixes their number, so there is no plugin registry behind this switch.
func computeMetric(m Metric, a sideArtifacts, opts AnalysisOptions) float64 {
	switch m {
	case MetricLeafCount:
		return float64(a.features.LeafRegionCount)
	case MetricGreenPixelRatio:
		total := a.mask.W * a.mask.H
		if total == 0 {
			return 0
		}
		return float64(a.features.GreenPixelCount) / float64(total)
	case MetricBoundingBoxArea:
		if !a.features.HasPlant {
			return 0
		}
		return float64(a.features.BoundingBox.Dx() * a.features.BoundingBox.Dy())
	case MetricColorHealthIndex:
		return colorHealthIndex(a)
	case MetricSunlightProxy:
		return sunlightProxy(a, opts)
	}
	return 0
}

// colorHealthIndex maps the mean hue and saturation of the plant pixels to
// [0,1]: greener, more saturated foliage scores higher. The ideal green hue
// band is 120-180 degrees.
func colorHealthIndex(a sideArtifacts) float64 {
	bounds := a.pre.Bounds()
	var hues, sats []float64
	for y := 0; y < a.mask.H; y++ {
		for x := 0; x < a.mask.W; x++ {
			if !a.mask.At(x, y) {
				continue
			}
			h, s, _ := hsvAt(a.pre, bounds.Min.X+x, bounds.Min.Y+y)
			hues = append(hues, h)
			sats = append(sats, s)
		}
	}
	if len(hues) == 0 {
		return 0
	}

	avgHue := stat.Mean(hues, nil)
	avgSat := stat.Mean(sats, nil)

	hueScore := clamp((avgHue-120)/60, 0, 1)
	satScore := clamp(avgSat, 0, 1)
	return 0.6*hueScore + 0.4*satScore
}

// shadow pixels are plant pixels darker than a quarter of full brightness
const shadowValueThreshold = 0.25

// sunlightProxy estimates light exposure from the brightness of the plant
// pixels, discounted by shadow density. When an external ambient-light
// signal is present it is blended in at (1 - SunlightBlend); when absent
// the estimate is purely image-derived.
func sunlightProxy(a sideArtifacts, opts AnalysisOptions) float64 {
	bounds := a.pre.Bounds()
	var values []float64
	shadow := 0
	for y := 0; y < a.mask.H; y++ {
		for x := 0; x < a.mask.W; x++ {
			if !a.mask.At(x, y) {
				continue
			}
			_, _, v := hsvAt(a.pre, bounds.Min.X+x, bounds.Min.Y+y)
			values = append(values, v)
			if v < shadowValueThreshold {
				shadow++
			}
		}
	}
	if len(values) == 0 {
		return 0
	}

	avgBrightness := stat.Mean(values, nil)
	shadowDensity := float64(shadow) / float64(len(values))
	adjusted := avgBrightness * (1 - shadowDensity)

	score := adjusted
	if a.sunlight != nil {
		score = opts.SunlightBlend*adjusted + (1-opts.SunlightBlend)*(*a.sunlight)
	}
	return clamp(score, 0, 1)
}
