package pipeline

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/disintegration/imaging"
)

// PayloadBytes converts an embedded-encoding payload (a data-URL or a bare
// base64 string) into raw image bytes. It does not validate that the bytes
// form a decodable image; decodeImage does that.
func PayloadBytes(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, fmt.Errorf("empty image payload")
	}
	// Strip a data-URL prefix such as "data:image/png;base64,"
	if idx := strings.Index(payload, ","); idx >= 0 && strings.HasPrefix(payload, "data:") {
		payload = payload[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	return data, nil
}

// decodeImage decodes raw bytes into an image, rejecting unreadable and
// zero-area payloads.
func decodeImage(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image payload")
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("unreadable image payload: %w", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("image decodes to zero area")
	}
	return img, nil
}

// preprocess applies the fixed Gaussian blur for noise suppression, then an
// interpolated resize to the square analysis resolution. Aspect ratio is
// deliberately not preserved so masks from both captures stay comparable
// pixel for pixel.
func preprocess(img image.Image, opts AnalysisOptions) *image.NRGBA {
	blurred := imaging.Blur(img, opts.blurSigma())
	return imaging.Resize(blurred, opts.Resolution, opts.Resolution, imaging.Lanczos)
}
