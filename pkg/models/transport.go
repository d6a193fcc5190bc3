package models

// AnalyzeRequest carries the before/after image pair for a growth analysis.
// Each image field accepts a data-URL, a bare base64 string, or an http(s)
// URL resolved through the configured photo storage backend.
type AnalyzeRequest struct {
	BeforeImage string          `json:"beforeImage" binding:"required"`
	AfterImage  string          `json:"afterImage" binding:"required"`
	PlantID     string          `json:"plantId,omitempty"`
	Species     string          `json:"species,omitempty"`
	Weather     *WeatherReading `json:"weather,omitempty"`
}

// UploadRequest stores an image pair under a session for later analysis.
type UploadRequest struct {
	BeforeImage string `json:"beforeImage" binding:"required"`
	AfterImage  string `json:"afterImage" binding:"required"`
	Species     string `json:"species,omitempty"`
}

// UploadResponse acknowledges a stored upload session.
type UploadResponse struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	Timestamp string `json:"timestamp"`
}

// HistoryResponse lists stored analyses, newest first.
type HistoryResponse struct {
	Analyses []*GrowthResult `json:"analyses"`
}

// TimelineResponse is the chart-ready view of the stored history.
type TimelineResponse struct {
	PlantID string          `json:"plant_id,omitempty"`
	Entries []TimelineEntry `json:"entries"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
