package pipeline

import (
	"image"
	"math"
)

// Mask is a binary plant/background classification at analysis resolution,
// stored as a flat row-major buffer (1 = plant, 0 = background). Masks are
// derived once per image and never mutated after creation; morphology and
// watershed work on copies.
type Mask struct {
	Pix []uint8
	W   int
	H   int
}

// NewMask allocates an all-background mask of the given dimensions.
func NewMask(w, h int) Mask {
	return Mask{Pix: make([]uint8, w*h), W: w, H: h}
}

// At reports whether the pixel at (x, y) is classified as plant.
func (m Mask) At(x, y int) bool {
	return m.Pix[y*m.W+x] != 0
}

// Count returns the number of plant pixels.
func (m Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Fraction returns the plant-pixel fraction of the mask.
func (m Mask) Fraction() float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.Pix))
}

// clone returns a mutable copy for morphology passes.
func (m Mask) clone() Mask {
	out := Mask{Pix: make([]uint8, len(m.Pix)), W: m.W, H: m.H}
	copy(out.Pix, m.Pix)
	return out
}

// FeatureSet holds the structural features derived from a segmentation mask.
// A degenerate mask (no plant detected) yields the zero value with HasPlant
// false rather than an error.
type FeatureSet struct {
	LeafRegionCount int
	BoundingBox     image.Rectangle
	HasPlant        bool
	GreenPixelCount int
}

// sideArtifacts are the shared immutable inputs the metric calculators read.
// Calculators never mutate them, so they are safe to share across workers.
type sideArtifacts struct {
	pre      *image.NRGBA
	mask     Mask
	features FeatureSet
	sunlight *float64 // optional external ambient-light score in [0,1]
}

// rgbToHSV converts normalized RGB ([0,1] per channel) to HSV with hue in
// degrees [0,360) and saturation/value in [0,1].
func rgbToHSV(r, g, b float64) (h, s, v float64) {
	max := math.Max(r, math.Max(g, b))
	min := math.Min(r, math.Min(g, b))
	delta := max - min

	v = max

	if max == 0 {
		s = 0
	} else {
		s = delta / max
	}

	if delta == 0 {
		h = 0
	} else if max == r {
		h = 60 * ((g - b) / delta)
	} else if max == g {
		h = 60 * (((b - r) / delta) + 2)
	} else {
		h = 60 * (((r - g) / delta) + 4)
	}

	if h < 0 {
		h += 360
	}

	return h, s, v
}

// hsvAt reads the pixel at (x, y) from an NRGBA image and converts it.
func hsvAt(img *image.NRGBA, x, y int) (h, s, v float64) {
	i := img.PixOffset(x, y)
	r := float64(img.Pix[i]) / 255.0
	g := float64(img.Pix[i+1]) / 255.0
	b := float64(img.Pix[i+2]) / 255.0
	return rgbToHSV(r, g, b)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
