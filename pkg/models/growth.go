package models

import "time"

// MetricValue is one measured growth metric for the "after" image paired
// with its "before" value. Ratio-style metrics are reported on a 0-100
// percent scale; counts and areas keep their natural pixel units.
type MetricValue struct {
	Name          string  `json:"name"`
	Value         float64 `json:"value"`
	PreviousValue float64 `json:"previousValue"`
	Unit          string  `json:"unit"`
	Description   string  `json:"description"`
}

// GrowthResult is the complete outcome of one before/after comparison.
// It is immutable once produced; persistence and charting are up to the
// caller.
type GrowthResult struct {
	AnalysisID        string             `json:"analysis_id"`
	PlantID           string             `json:"plant_id,omitempty"`
	Species           string             `json:"species,omitempty"`
	GrowthScore       float64            `json:"growth_score"`
	Metrics           []MetricValue      `json:"metrics"`
	DeltaMetrics      map[string]float64 `json:"delta_metrics"`
	Suggestion        string             `json:"suggestion"`
	Timestamp         time.Time          `json:"timestamp"`
	ProcessingTimeSec float64            `json:"processing_time_sec"`
}

// TimelineEntry is one chart-ready point derived from a stored analysis.
type TimelineEntry struct {
	Date             string  `json:"date"`
	GrowthScore      float64 `json:"growthScore"`
	LeafCount        float64 `json:"leafCount"`
	GreenPixelRatio  float64 `json:"greenPixelRatio"`
	BoundingBoxArea  float64 `json:"boundingBoxArea"`
	ColorHealthIndex float64 `json:"colorHealthIndex"`
}

// WeatherReading is an optional external ambient-light signal supplied by
// the caller or fetched from a weather provider. All fields are as reported
// by the upstream API.
type WeatherReading struct {
	Clouds    int     `json:"clouds"`
	UVIndex   float64 `json:"uvi"`
	Condition string  `json:"condition,omitempty"`
}

// UploadSession holds a pair of uploaded plant images awaiting analysis.
type UploadSession struct {
	SessionID   string    `json:"session_id"`
	BeforeImage string    `json:"-"`
	AfterImage  string    `json:"-"`
	Species     string    `json:"species,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
