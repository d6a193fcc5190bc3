package pipeline

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// leafGreen sits at hue 120 with high saturation, comfortably inside both
// the adaptive and the fallback segmentation windows.
var leafGreen = color.NRGBA{R: 0, G: 200, B: 0, A: 255}

// fillRect paints a solid rectangle onto an NRGBA image.
func fillRect(img *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}

// fillCircle paints a solid disc onto an NRGBA image.
func fillCircle(img *image.NRGBA, cx, cy, radius int, c color.NRGBA) {
	for y := cy - radius; y <= cy+radius; y++ {
		for x := cx - radius; x <= cx+radius; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= radius*radius {
				img.SetNRGBA(x, y, c)
			}
		}
	}
}

// solidImage returns a size x size image filled with one color.
func solidImage(size int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	fillRect(img, img.Bounds(), c)
	return img
}

// plantImage returns a black size x size image with a green rectangle.
func plantImage(size int, plant image.Rectangle) *image.NRGBA {
	img := solidImage(size, color.NRGBA{A: 255})
	fillRect(img, plant, leafGreen)
	return img
}

// encodePNG serializes an image for the decode path.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// maskFromCircles builds a binary mask with the given discs set.
func maskFromCircles(w, h int, circles ...[3]int) Mask {
	m := NewMask(w, h)
	for _, c := range circles {
		cx, cy, r := c[0], c[1], c[2]
		for y := cy - r; y <= cy+r; y++ {
			for x := cx - r; x <= cx+r; x++ {
				if x < 0 || y < 0 || x >= w || y >= h {
					continue
				}
				dx, dy := x-cx, y-cy
				if dx*dx+dy*dy <= r*r {
					m.Pix[y*w+x] = 1
				}
			}
		}
	}
	return m
}

// artifactsFor builds sideArtifacts directly from an image and a full mask,
// bypassing segmentation, for metric-level tests.
func artifactsFor(img *image.NRGBA, mask Mask) sideArtifacts {
	return sideArtifacts{pre: img, mask: mask}
}

// fullMask returns an all-plant mask matching the image dimensions.
func fullMask(img *image.NRGBA) Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for i := range m.Pix {
		m.Pix[i] = 1
	}
	return m
}
