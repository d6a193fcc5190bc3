package repository

import "errors"

var (
	// ErrAnalysisNotFound indicates the analysis result was not found
	ErrAnalysisNotFound = errors.New("analysis result not found")

	// ErrSessionNotFound indicates the upload session was not found
	ErrSessionNotFound = errors.New("upload session not found")

	// ErrNilResult indicates a nil result was passed to Save
	ErrNilResult = errors.New("nil analysis result")
)
