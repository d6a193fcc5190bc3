package pipeline

import (
	"context"

	"go-growth-analyzer/pkg/models"
)

// GrowthAnalyzer runs the full before/after comparison pipeline. Each call
// is a pure function of its two input payloads and options; no state is
// held across invocations.
type GrowthAnalyzer interface {
	// AnalyzeGrowth decodes, segments and measures both images, then scores
	// the change between them. Decode failure on either side aborts the
	// whole analysis.
	AnalyzeGrowth(ctx context.Context, before, after []byte, opts AnalysisOptions) (*models.GrowthResult, error)

	// Lifecycle management
	Close() error
}
