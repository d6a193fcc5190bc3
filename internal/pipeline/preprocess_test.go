package pipeline

import (
	"encoding/base64"
	"image"
	"strings"
	"testing"
)

func TestPayloadBytes(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04}
	encoded := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name        string
		payload     string
		expectError bool
		expected    []byte
	}{
		{"Bare base64", encoded, false, raw},
		{"PNG data-URL", "data:image/png;base64," + encoded, false, raw},
		{"JPEG data-URL", "data:image/jpeg;base64," + encoded, false, raw},
		{"Surrounding whitespace", "  " + encoded + "  ", false, raw},
		{"Empty payload", "", true, nil},
		{"Whitespace only", "   ", true, nil},
		{"Invalid base64", "not!!valid@@base64", true, nil},
		{"Data-URL with invalid body", "data:image/png;base64,????", true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PayloadBytes(tt.payload)
			if tt.expectError {
				if err == nil {
					t.Error("Expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if string(got) != string(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDecodeImage(t *testing.T) {
	valid := encodePNG(t, plantImage(32, image.Rect(8, 8, 24, 24)))

	tests := []struct {
		name          string
		data          []byte
		expectError   bool
		errorContains string
	}{
		{"Valid PNG", valid, false, ""},
		{"Empty payload", nil, true, "empty image payload"},
		{"Garbage bytes", []byte("definitely not an image"), true, "unreadable image payload"},
		{"Truncated PNG", valid[:12], true, "unreadable image payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := decodeImage(tt.data)
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got none")
				}
				if !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("Expected error to contain %q, got: %v", tt.errorContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if img.Bounds().Dx() != 32 || img.Bounds().Dy() != 32 {
				t.Errorf("Unexpected decoded dimensions: %v", img.Bounds())
			}
		})
	}
}

func TestPreprocess_NormalizesDimensions(t *testing.T) {
	opts := DefaultOptions().WithResolution(64)

	// Wildly different input shapes all land on the same square resolution.
	shapes := []image.Rectangle{
		image.Rect(0, 0, 640, 480),
		image.Rect(0, 0, 100, 400),
		image.Rect(0, 0, 64, 64),
	}
	for _, shape := range shapes {
		img := image.NewNRGBA(shape)
		out := preprocess(img, opts)
		if out.Bounds().Dx() != 64 || out.Bounds().Dy() != 64 {
			t.Errorf("preprocess(%v) produced %v, expected 64x64", shape, out.Bounds())
		}
	}
}

func TestPreprocess_PreservesDominantColor(t *testing.T) {
	opts := DefaultOptions().WithResolution(50)
	img := solidImage(200, leafGreen)

	out := preprocess(img, opts)
	h, s, v := hsvAt(out, 25, 25)
	if h < 110 || h > 130 {
		t.Errorf("Center hue drifted to %g, expected near 120", h)
	}
	if s < 0.9 || v < 0.5 {
		t.Errorf("Center saturation/value degraded: s=%g v=%g", s, v)
	}
}
