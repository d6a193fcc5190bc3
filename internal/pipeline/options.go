package pipeline

import (
	"fmt"
	"math"
)

// AnalysisOptions provides per-call configuration for the growth pipeline.
// Options are passed explicitly into the analyzer rather than read from
// ambient state so tests and callers can override any knob per analysis.
type AnalysisOptions struct {
	// Analysis resolution: both images are resized to Resolution x Resolution
	Resolution int

	// Gaussian blur kernel size applied before segmentation (odd, >= 3)
	BlurKernelSize int

	// Scoring weights per metric; must cover all five metrics and sum to 1.0
	Weights map[Metric]float64

	// Minimum connected-region area (pixels) for a blob to count as a leaf
	MinLeafArea int

	// Distance-transform fraction of the maximum used to pick watershed seeds
	SeedThreshold float64

	// Segmentation thresholds
	MinSaturation float64 // saturation floor for plant pixels
	MinValue      float64 // brightness floor for plant pixels
	FallbackHueLo float64 // static green window, degrees
	FallbackHueHi float64
	HueMargin     float64 // half-width of the adaptive window, degrees
	MinGreenMass  float64 // minimum green hue mass to trust the adaptive window

	// Mask fractions below this are treated as "no plant detected"
	MinMaskFraction float64

	// Per-metric normalized-change clamp bounds
	DeltaClampLo float64
	DeltaClampHi float64

	// Weight of the image-derived estimate when blending with an external
	// ambient-light signal (alpha in [0,1]); the signal itself, when present
	SunlightBlend  float64
	SunlightSignal *float64
}

// DefaultOptions returns the standard pipeline configuration.
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		Resolution:      300,
		BlurKernelSize:  5,
		Weights:         DefaultWeights(),
		MinLeafArea:     100,
		SeedThreshold:   0.4,
		MinSaturation:   0.16,
		MinValue:        0.16,
		FallbackHueLo:   50,
		FallbackHueHi:   180,
		HueMargin:       40,
		MinGreenMass:    0.02,
		MinMaskFraction: 0.001,
		DeltaClampLo:    -1.0,
		DeltaClampHi:    1.0,
		SunlightBlend:   0.6,
	}
}

// DefaultWeights returns the standard metric weights used for all species.
func DefaultWeights() map[Metric]float64 {
	return map[Metric]float64{
		MetricBoundingBoxArea:  0.25,
		MetricGreenPixelRatio:  0.25,
		MetricLeafCount:        0.20,
		MetricColorHealthIndex: 0.20,
		MetricSunlightProxy:    0.10,
	}
}

// Validate checks the options before any image is processed.
func (opts AnalysisOptions) Validate() error {
	if opts.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive (got %d)", opts.Resolution)
	}
	if opts.BlurKernelSize < 3 || opts.BlurKernelSize%2 == 0 {
		return fmt.Errorf("blur kernel size must be odd and >= 3 (got %d)", opts.BlurKernelSize)
	}
	if len(opts.Weights) != len(metricOrder) {
		return fmt.Errorf("weights must cover all %d metrics (got %d)", len(metricOrder), len(opts.Weights))
	}
	sum := 0.0
	for _, m := range metricOrder {
		w, ok := opts.Weights[m]
		if !ok {
			return fmt.Errorf("missing weight for metric %q", m)
		}
		if w < 0 {
			return fmt.Errorf("weight for metric %q must be non-negative (got %g)", m, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("metric weights must sum to 1.0 (got %g)", sum)
	}
	if opts.MinLeafArea < 0 {
		return fmt.Errorf("minimum leaf area must be non-negative (got %d)", opts.MinLeafArea)
	}
	if opts.SeedThreshold <= 0 || opts.SeedThreshold >= 1 {
		return fmt.Errorf("seed threshold must be in (0,1) (got %g)", opts.SeedThreshold)
	}
	if opts.DeltaClampLo >= opts.DeltaClampHi {
		return fmt.Errorf("delta clamp range is empty (%g >= %g)", opts.DeltaClampLo, opts.DeltaClampHi)
	}
	if opts.SunlightBlend < 0 || opts.SunlightBlend > 1 {
		return fmt.Errorf("sunlight blend must be in [0,1] (got %g)", opts.SunlightBlend)
	}
	return nil
}

// blurSigma derives the Gaussian sigma from the kernel size the way OpenCV
// does for sigma=0, so the default 5x5 kernel matches the tuned behavior.
func (opts AnalysisOptions) blurSigma() float64 {
	k := float64(opts.BlurKernelSize)
	return 0.3*((k-1)*0.5-1) + 0.8
}

// WithResolution overrides the analysis resolution.
func (opts AnalysisOptions) WithResolution(resolution int) AnalysisOptions {
	opts.Resolution = resolution
	return opts
}

// WithWeights overrides the scoring weights.
func (opts AnalysisOptions) WithWeights(weights map[Metric]float64) AnalysisOptions {
	opts.Weights = weights
	return opts
}

// WithMinLeafArea overrides the leaf-region noise floor.
func (opts AnalysisOptions) WithMinLeafArea(area int) AnalysisOptions {
	opts.MinLeafArea = area
	return opts
}

// WithDeltaClamp overrides the normalized-change clamp bounds.
func (opts AnalysisOptions) WithDeltaClamp(lo, hi float64) AnalysisOptions {
	opts.DeltaClampLo = lo
	opts.DeltaClampHi = hi
	return opts
}

// WithSunlightSignal supplies an external ambient-light score in [0,1] that
// the sunlight proxy blends with its image-derived estimate.
func (opts AnalysisOptions) WithSunlightSignal(score float64) AnalysisOptions {
	s := clamp(score, 0, 1)
	opts.SunlightSignal = &s
	return opts
}
