package services

import (
	"go-growth-analyzer/pkg/models"
)

// TimelineService shapes stored growth results into the chart-ready series
// the web client plots. It is read-only over history; persistence stays
// behind the repository.
type TimelineService struct{}

// NewTimelineService creates a timeline service.
func NewTimelineService() *TimelineService {
	return &TimelineService{}
}

// chartDateFormat matches the labels the client renders on the x axis
const chartDateFormat = "2006-01-02"

// BuildTimeline converts a newest-first history into an oldest-first series
// of chart points. Bounding box areas are rescaled to thousands of pixels so
// they share an axis with the percentage metrics.
func (s *TimelineService) BuildTimeline(history []*models.GrowthResult) []models.TimelineEntry {
	entries := make([]models.TimelineEntry, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		result := history[i]
		entry := models.TimelineEntry{
			Date:        result.Timestamp.Format(chartDateFormat),
			GrowthScore: result.GrowthScore,
		}
		for _, m := range result.Metrics {
			switch m.Name {
			case "leaf_count":
				entry.LeafCount = m.Value
			case "green_pixel_ratio":
				entry.GreenPixelRatio = m.Value
			case "bounding_box_area":
				entry.BoundingBoxArea = m.Value / 1000
			case "color_health_index":
				entry.ColorHealthIndex = m.Value
			}
		}
		entries = append(entries, entry)
	}
	return entries
}
