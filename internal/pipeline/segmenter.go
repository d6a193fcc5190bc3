package pipeline

import "image"

// hue histogram granularity: 2-degree bins over [0,360)
const hueBins = 180

// greenish hue range (degrees) considered when estimating the dominant
// green mass of an image
const (
	greenRangeLo = 70.0
	greenRangeHi = 170.0
)

// segment classifies each pixel as plant or background. The green hue window
// is derived adaptively from the image's own hue histogram so that lighting
// differences between the "before" and "after" captures do not bias the
// comparison; when the green mass is too small to estimate reliably it falls
// back to the static default window.
func segment(img *image.NRGBA, opts AnalysisOptions) Mask {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	mask := NewMask(w, h)

	// Cache the conversion; both the histogram pass and the threshold pass
	// need HSV for every pixel.
	hue := make([]float32, w*h)
	sat := make([]float32, w*h)
	val := make([]float32, w*h)

	var hist [hueBins]float64
	considered := 0.0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hv, sv, vv := hsvAt(img, bounds.Min.X+x, bounds.Min.Y+y)
			i := y*w + x
			hue[i] = float32(hv)
			sat[i] = float32(sv)
			val[i] = float32(vv)

			if sv < opts.MinSaturation || vv < opts.MinValue {
				continue
			}
			bin := int(hv / (360.0 / hueBins))
			if bin >= hueBins {
				bin = hueBins - 1
			}
			hist[bin]++
			considered++
		}
	}

	lo, hi := greenHueWindow(hist, considered, opts)

	for i := range mask.Pix {
		hv := float64(hue[i])
		if hv >= lo && hv <= hi &&
			float64(sat[i]) >= opts.MinSaturation &&
			float64(val[i]) >= opts.MinValue {
			mask.Pix[i] = 1
		}
	}
	return mask
}

// greenHueWindow derives the adaptive [lo, hi] hue bounds from the dominant
// green mass of the histogram, falling back to the configured static window
// when that mass is below MinGreenMass of the considered pixels.
func greenHueWindow(hist [hueBins]float64, considered float64, opts AnalysisOptions) (lo, hi float64) {
	binWidth := 360.0 / hueBins
	loBin := int(greenRangeLo / binWidth)
	hiBin := int(greenRangeHi / binWidth)

	mass := 0.0
	weighted := 0.0
	for b := loBin; b <= hiBin; b++ {
		center := (float64(b) + 0.5) * binWidth
		mass += hist[b]
		weighted += hist[b] * center
	}

	if considered == 0 || mass/considered < opts.MinGreenMass {
		return opts.FallbackHueLo, opts.FallbackHueHi
	}

	center := weighted / mass
	lo = clamp(center-opts.HueMargin, 0, 360)
	hi = clamp(center+opts.HueMargin, 0, 360)
	return lo, hi
}
