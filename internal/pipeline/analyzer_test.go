package pipeline

import (
	"context"
	"image"
	"math"
	"reflect"
	"testing"

	apperrors "go-growth-analyzer/internal/errors"
)

func newTestAnalyzer(t *testing.T) GrowthAnalyzer {
	t.Helper()
	ga, err := NewGrowthAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	t.Cleanup(func() { ga.Close() })
	return ga
}

func TestAnalyzeGrowth_IdenticalImagesScoreNeutral(t *testing.T) {
	ga := newTestAnalyzer(t)
	payload := encodePNG(t, plantImage(300, image.Rect(100, 100, 200, 200)))

	result, err := ga.AnalyzeGrowth(context.Background(), payload, payload, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.GrowthScore != 50.0 {
		t.Errorf("Identical images should score exactly 50.0, got %g", result.GrowthScore)
	}
	for name, delta := range result.DeltaMetrics {
		if delta != 0 {
			t.Errorf("Delta for %s should be 0 on identical images, got %g", name, delta)
		}
	}
	if len(result.Metrics) != 5 {
		t.Errorf("Expected 5 metrics, got %d", len(result.Metrics))
	}
	for _, m := range result.Metrics {
		if m.Value != m.PreviousValue {
			t.Errorf("Metric %s: value %g != previous %g on identical images", m.Name, m.Value, m.PreviousValue)
		}
	}
}

func TestAnalyzeGrowth_LargerPlantScoresAboveNeutral(t *testing.T) {
	ga := newTestAnalyzer(t)
	before := encodePNG(t, plantImage(300, image.Rect(120, 120, 180, 180)))
	after := encodePNG(t, plantImage(300, image.Rect(90, 90, 210, 210)))

	result, err := ga.AnalyzeGrowth(context.Background(), before, after, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.GrowthScore <= 50 {
		t.Errorf("A larger plant should score above 50, got %g", result.GrowthScore)
	}
	if result.DeltaMetrics[string(MetricGreenPixelRatio)] <= 0 {
		t.Errorf("Green ratio delta should be positive, got %g",
			result.DeltaMetrics[string(MetricGreenPixelRatio)])
	}
	if result.DeltaMetrics[string(MetricBoundingBoxArea)] <= 0 {
		t.Errorf("Bounding box delta should be positive, got %g",
			result.DeltaMetrics[string(MetricBoundingBoxArea)])
	}
	if result.Suggestion == "" {
		t.Error("Expected a care suggestion")
	}
}

func TestAnalyzeGrowth_SwappedImagesMirrorScore(t *testing.T) {
	ga := newTestAnalyzer(t)
	small := encodePNG(t, plantImage(300, image.Rect(120, 120, 180, 180)))
	large := encodePNG(t, plantImage(300, image.Rect(90, 90, 210, 210)))

	grown, err := ga.AnalyzeGrowth(context.Background(), small, large, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	shrunk, err := ga.AnalyzeGrowth(context.Background(), large, small, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	// Mirrored around the neutral baseline, within rounding
	if math.Abs((grown.GrowthScore-50)+(shrunk.GrowthScore-50)) > 0.2 {
		t.Errorf("Swapped inputs should mirror around 50: got %g and %g",
			grown.GrowthScore, shrunk.GrowthScore)
	}
	for name, delta := range grown.DeltaMetrics {
		if math.Abs(delta+shrunk.DeltaMetrics[name]) > 0.05 {
			t.Errorf("Delta for %s should negate on swap: %g vs %g", name, delta, shrunk.DeltaMetrics[name])
		}
	}
}

func TestAnalyzeGrowth_NoPlantInEitherImage(t *testing.T) {
	ga := newTestAnalyzer(t)
	empty := encodePNG(t, plantImage(300, image.Rect(0, 0, 0, 0)))

	result, err := ga.AnalyzeGrowth(context.Background(), empty, empty, DefaultOptions())
	if err != nil {
		t.Fatalf("Degenerate images should not fail the analysis: %v", err)
	}
	if result.GrowthScore != 50.0 {
		t.Errorf("No plant on either side should score the neutral 50.0, got %g", result.GrowthScore)
	}
	for _, m := range result.Metrics {
		if m.Value != 0 || m.PreviousValue != 0 {
			t.Errorf("Metric %s should be 0 with no plant, got %g/%g", m.Name, m.Value, m.PreviousValue)
		}
	}
}

func TestAnalyzeGrowth_MalformedPayloads(t *testing.T) {
	ga := newTestAnalyzer(t)
	valid := encodePNG(t, plantImage(300, image.Rect(100, 100, 200, 200)))
	garbage := []byte("not an image at all")

	tests := []struct {
		name         string
		before       []byte
		after        []byte
		expectedSide string
	}{
		{"Bad before image", garbage, valid, "before"},
		{"Bad after image", valid, garbage, "after"},
		{"Empty before image", nil, valid, "before"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ga.AnalyzeGrowth(context.Background(), tt.before, tt.after, DefaultOptions())
			if err == nil {
				t.Fatal("Expected decode error, got none")
			}
			if !apperrors.IsType(err, apperrors.ErrorTypeDecode) {
				t.Fatalf("Expected decode error type, got: %v", err)
			}
			if appErr := err.(*apperrors.AppError); appErr.Details != tt.expectedSide {
				t.Errorf("Expected failed side %q, got %q", tt.expectedSide, appErr.Details)
			}
		})
	}
}

func TestAnalyzeGrowth_InvalidOptionsRejectedBeforeDecoding(t *testing.T) {
	ga := newTestAnalyzer(t)

	opts := DefaultOptions().WithWeights(map[Metric]float64{MetricLeafCount: 1})
	_, err := ga.AnalyzeGrowth(context.Background(), []byte("irrelevant"), []byte("irrelevant"), opts)
	if err == nil {
		t.Fatal("Expected validation error, got none")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error before any decoding, got: %v", err)
	}
}

func TestAnalyzeGrowth_CanceledContext(t *testing.T) {
	ga := newTestAnalyzer(t)
	payload := encodePNG(t, plantImage(300, image.Rect(100, 100, 200, 200)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ga.AnalyzeGrowth(ctx, payload, payload, DefaultOptions())
	if err == nil {
		t.Fatal("Expected error from canceled context, got none")
	}
}

func TestAnalyzeGrowth_Deterministic(t *testing.T) {
	ga := newTestAnalyzer(t)
	before := encodePNG(t, plantImage(300, image.Rect(110, 110, 190, 190)))
	after := encodePNG(t, plantImage(300, image.Rect(95, 95, 205, 205)))

	first, err := ga.AnalyzeGrowth(context.Background(), before, after, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i := 0; i < 3; i++ {
		next, err := ga.AnalyzeGrowth(context.Background(), before, after, DefaultOptions())
		if err != nil {
			t.Fatalf("Unexpected error on run %d: %v", i, err)
		}
		if next.GrowthScore != first.GrowthScore {
			t.Errorf("Score changed between runs: %g vs %g", first.GrowthScore, next.GrowthScore)
		}
		if !reflect.DeepEqual(next.DeltaMetrics, first.DeltaMetrics) {
			t.Errorf("Deltas changed between runs: %v vs %v", first.DeltaMetrics, next.DeltaMetrics)
		}
		if !reflect.DeepEqual(next.Metrics, first.Metrics) {
			t.Errorf("Metrics changed between runs: %v vs %v", first.Metrics, next.Metrics)
		}
		if next.Suggestion != first.Suggestion {
			t.Errorf("Suggestion changed between runs")
		}
	}
}

func TestAnalyzeGrowth_PanicSurfacesAsAnalysisError(t *testing.T) {
	ga, err := NewGrowthAnalyzer()
	if err != nil {
		t.Fatalf("Failed to create analyzer: %v", err)
	}
	ga.Close()

	// Submitting to the closed pool panics inside the per-side goroutine.
	// The analysis must return an error instead of crashing the process.
	payload := encodePNG(t, plantImage(300, image.Rect(100, 100, 200, 200)))
	_, err = ga.AnalyzeGrowth(context.Background(), payload, payload, DefaultOptions())
	if err == nil {
		t.Fatal("Expected an error from the closed analyzer, got none")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeAnalysis) {
		t.Errorf("Expected analysis error type, got: %v", err)
	}
}

func TestAnalyzeGrowth_MetricsReportedInFixedOrder(t *testing.T) {
	ga := newTestAnalyzer(t)
	payload := encodePNG(t, plantImage(300, image.Rect(100, 100, 200, 200)))

	result, err := ga.AnalyzeGrowth(context.Background(), payload, payload, DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	for i, m := range Metrics() {
		if result.Metrics[i].Name != string(m) {
			t.Errorf("Metric %d = %s, expected %s", i, result.Metrics[i].Name, m)
		}
	}
}
