package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "go-growth-analyzer/internal/errors"
	"go-growth-analyzer/pkg/models"
)

// growthAnalyzer implements GrowthAnalyzer and orchestrates the pipeline:
// Decode -> Preprocess -> Segment -> Extract -> Metrics for each side, then
// Score. The two sides are independent and run in parallel; the scorer is
// the synchronization point.
type growthAnalyzer struct {
	workerPool *WorkerPool
}

// NewGrowthAnalyzer creates a growth analyzer with its metric worker pool.
func NewGrowthAnalyzer() (GrowthAnalyzer, error) {
	workerPool := NewWorkerPool(0) // default CPU count
	workerPool.Start()

	return &growthAnalyzer{workerPool: workerPool}, nil
}

// AnalyzeGrowth runs the full comparison. Options are validated before any
// pixel work; a decode failure on either image aborts the whole analysis
// naming the failed side. Lower-level faults never propagate unwrapped:
// panics inside the pipeline are recovered into an AnalysisError.
func (ga *growthAnalyzer) AnalyzeGrowth(ctx context.Context, before, after []byte, opts AnalysisOptions) (result *models.GrowthResult, err error) {
	start := time.Now()

	if verr := opts.Validate(); verr != nil {
		return nil, apperrors.NewValidationError("invalid analysis options", verr)
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = apperrors.NewAnalysisError("pipeline", "", fmt.Errorf("panic: %v", r))
		}
	}()

	var beforeMetrics, afterMetrics map[Metric]float64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, serr := ga.analyzeSide(gctx, "before", before, opts)
		beforeMetrics = m
		return serr
	})
	g.Go(func() error {
		m, serr := ga.analyzeSide(gctx, "after", after, opts)
		afterMetrics = m
		return serr
	})
	if werr := g.Wait(); werr != nil {
		return nil, werr
	}

	score, deltas := scoreGrowth(beforeMetrics, afterMetrics, opts)

	metrics := make([]models.MetricValue, 0, len(metricOrder))
	deltaOut := make(map[string]float64, len(metricOrder))
	for _, m := range metricOrder {
		metrics = append(metrics, models.MetricValue{
			Name:          string(m),
			Value:         round(m.Display(afterMetrics[m]), 2),
			PreviousValue: round(m.Display(beforeMetrics[m]), 2),
			Unit:          m.Unit(),
			Description:   m.Description(),
		})
		deltaOut[string(m)] = round(deltas[m], 2)
	}

	return &models.GrowthResult{
		GrowthScore:       round(score, 1),
		Metrics:           metrics,
		DeltaMetrics:      deltaOut,
		Suggestion:        suggestion(score, deltas),
		Timestamp:         time.Now().UTC(),
		ProcessingTimeSec: time.Since(start).Seconds(),
	}, nil
}

// analyzeSide runs the single-image pipeline and computes all five metrics.
// Degenerate segmentation is recovered locally: the side yields all-zero
// structural metrics instead of failing. The recover here covers this side's
// goroutine; the deferred recover in AnalyzeGrowth cannot see it.
func (ga *growthAnalyzer) analyzeSide(ctx context.Context, side string, payload []byte, opts AnalysisOptions) (out map[Metric]float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = apperrors.NewAnalysisError("pipeline", side, fmt.Errorf("panic: %v", r))
		}
	}()

	img, err := decodeImage(payload)
	if err != nil {
		return nil, apperrors.NewDecodeError(side, err)
	}
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	pre := preprocess(img, opts)
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	mask := segment(pre, opts)
	features := extractFeatures(mask, opts)
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}

	artifacts := sideArtifacts{
		pre:      pre,
		mask:     mask,
		features: features,
		sunlight: opts.SunlightSignal,
	}

	// The five calculators are independent; fan them out on the pool. Each
	// writes only its own slot. A calculator panic runs on a pool worker, so
	// it is captured per job and surfaced after the barrier.
	values := make([]float64, len(metricOrder))
	faults := make([]error, len(metricOrder))
	var wg sync.WaitGroup
	for i, m := range metricOrder {
		i, m := i, m
		wg.Add(1)
		ga.workerPool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					faults[i] = fmt.Errorf("%s panicked: %v", m, r)
				}
			}()
			values[i] = computeMetric(m, artifacts, opts)
		})
	}
	wg.Wait()
	for _, fault := range faults {
		if fault != nil {
			return nil, apperrors.NewAnalysisError("metrics", side, fault)
		}
	}

	result := make(map[Metric]float64, len(metricOrder))
	for i, m := range metricOrder {
		result[m] = values[i]
	}
	return result, nil
}

// Close shuts down the metric worker pool.
func (ga *growthAnalyzer) Close() error {
	ga.workerPool.Close()
	return nil
}

// ctxErr maps context expiry onto the error taxonomy so callers see a
// timeout instead of a hung or half-finished analysis.
func ctxErr(ctx context.Context) error {
	switch {
	case ctx.Err() == nil:
		return nil
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apperrors.NewTimeoutError("analysis timed out", ctx.Err())
	default:
		return apperrors.NewInternalError("analysis canceled", ctx.Err())
	}
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
