package validation

import (
	"strings"

	apperrors "go-growth-analyzer/internal/errors"
)

// SourceKind classifies how an image was supplied to the API.
type SourceKind int

const (
	// SourceUnknown means the payload is neither a URL nor an embedded image
	SourceUnknown SourceKind = iota
	// SourceURL is an http(s) location to fetch through the storage backend
	SourceURL
	// SourceEmbedded is a data-URL or bare base64 payload
	SourceEmbedded
)

// ImageSourceValidator classifies and validates the image fields of an
// analysis request before any fetching or decoding happens.
type ImageSourceValidator struct {
	urls *URLValidator
}

// NewImageSourceValidator creates a source validator with default URL rules.
func NewImageSourceValidator() *ImageSourceValidator {
	return &ImageSourceValidator{urls: NewURLValidator()}
}

// Classify determines the source kind of an image payload and validates it.
func (v *ImageSourceValidator) Classify(source string) (SourceKind, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return SourceUnknown, apperrors.NewValidationError("image source cannot be empty", nil)
	}

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		if err := v.urls.ValidateImageURL(source); err != nil {
			return SourceUnknown, err
		}
		return SourceURL, nil
	}

	if strings.HasPrefix(source, "data:") {
		if !strings.Contains(source, ",") {
			return SourceUnknown, apperrors.NewValidationError("malformed data-URL image payload", nil)
		}
		return SourceEmbedded, nil
	}

	// Anything else is treated as bare base64; the decoder is the authority
	// on whether the bytes are a readable image.
	return SourceEmbedded, nil
}
