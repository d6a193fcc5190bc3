package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	apperrors "go-growth-analyzer/internal/errors"
	"go-growth-analyzer/internal/logger"
	"go-growth-analyzer/internal/observer"
	"go-growth-analyzer/internal/pipeline"
	"go-growth-analyzer/internal/repository"
	"go-growth-analyzer/internal/storage"
	"go-growth-analyzer/internal/weather"
	"go-growth-analyzer/pkg/models"
	"go-growth-analyzer/pkg/validation"
)

// GrowthAnalysisService is the application boundary around the core
// pipeline: it resolves image sources, acquires the optional ambient-light
// signal, runs the analysis, and hands the result to the persistence
// collaborator.
type GrowthAnalysisService interface {
	// AnalyzeGrowth runs a before/after comparison from an API request
	AnalyzeGrowth(ctx context.Context, req models.AnalyzeRequest) (*models.GrowthResult, error)

	// AnalyzeSession runs a comparison over a previously uploaded image pair
	AnalyzeSession(ctx context.Context, sessionID string) (*models.GrowthResult, error)

	// SaveUpload stores an image pair for later analysis
	SaveUpload(ctx context.Context, req models.UploadRequest) (*models.UploadSession, error)

	// GetAnalysis retrieves a stored result
	GetAnalysis(ctx context.Context, id string) (*models.GrowthResult, error)

	// GetHistory returns stored analyses newest-first
	GetHistory(ctx context.Context, plantID string) ([]*models.GrowthResult, error)
}

// growthAnalysisService implements GrowthAnalysisService
type growthAnalysisService struct {
	analyzer pipeline.GrowthAnalyzer
	fetcher  storage.ImageFetcher
	repo     repository.AnalysisRepository
	weather  weather.Provider // nil when no provider is configured
	events   observer.Subject
	sources  *validation.ImageSourceValidator
	defaults pipeline.AnalysisOptions
}

// NewGrowthAnalysisService wires the service. The weather provider may be
// nil; the sunlight proxy then runs on its image-derived estimate alone.
func NewGrowthAnalysisService(
	analyzer pipeline.GrowthAnalyzer,
	fetcher storage.ImageFetcher,
	repo repository.AnalysisRepository,
	weatherProvider weather.Provider,
	events observer.Subject,
) GrowthAnalysisService {
	return &growthAnalysisService{
		analyzer: analyzer,
		fetcher:  fetcher,
		repo:     repo,
		weather:  weatherProvider,
		events:   events,
		sources:  validation.NewImageSourceValidator(),
		defaults: pipeline.DefaultOptions(),
	}
}

func (s *growthAnalysisService) AnalyzeGrowth(ctx context.Context, req models.AnalyzeRequest) (*models.GrowthResult, error) {
	start := time.Now()
	s.publish(ctx, observer.GrowthEvent{
		EventType: observer.AnalysisStarted,
		Timestamp: start,
		PlantID:   req.PlantID,
	})

	result, err := s.analyze(ctx, req)
	if err != nil {
		s.publish(ctx, observer.GrowthEvent{
			EventType:      observer.AnalysisFailed,
			Timestamp:      time.Now(),
			PlantID:        req.PlantID,
			ProcessingTime: time.Since(start),
			ErrorMessage:   err.Error(),
		})
		return nil, err
	}

	s.publish(ctx, observer.GrowthEvent{
		EventType:      observer.AnalysisCompleted,
		Timestamp:      time.Now(),
		AnalysisID:     result.AnalysisID,
		PlantID:        req.PlantID,
		ProcessingTime: time.Since(start),
		Success:        true,
		Metadata:       map[string]interface{}{"growth_score": result.GrowthScore},
	})
	return result, nil
}

func (s *growthAnalysisService) analyze(ctx context.Context, req models.AnalyzeRequest) (*models.GrowthResult, error) {
	before, err := s.resolveImage(ctx, "before", req.BeforeImage)
	if err != nil {
		return nil, err
	}
	after, err := s.resolveImage(ctx, "after", req.AfterImage)
	if err != nil {
		return nil, err
	}

	opts := s.defaults
	if signal := s.sunlightSignal(ctx, req.Weather); signal != nil {
		opts = opts.WithSunlightSignal(*signal)
	}

	result, err := s.analyzer.AnalyzeGrowth(ctx, before, after, opts)
	if err != nil {
		return nil, err
	}

	result.AnalysisID = uuid.NewString()
	result.PlantID = req.PlantID
	result.Species = req.Species

	if err := s.repo.SaveAnalysis(ctx, result); err != nil {
		// The caller still gets their result; history is best-effort here
		logger.WithError(err).WithField("analysis_id", result.AnalysisID).Warn("Failed to persist analysis result")
	}
	return result, nil
}

func (s *growthAnalysisService) AnalyzeSession(ctx context.Context, sessionID string) (*models.GrowthResult, error) {
	session, err := s.repo.GetUpload(ctx, sessionID)
	if err != nil {
		return nil, apperrors.NewNotFoundError("upload session not found", err)
	}
	return s.AnalyzeGrowth(ctx, models.AnalyzeRequest{
		BeforeImage: session.BeforeImage,
		AfterImage:  session.AfterImage,
		Species:     session.Species,
	})
}

func (s *growthAnalysisService) SaveUpload(ctx context.Context, req models.UploadRequest) (*models.UploadSession, error) {
	for side, src := range map[string]string{"before": req.BeforeImage, "after": req.AfterImage} {
		if _, err := s.sources.Classify(src); err != nil {
			return nil, apperrors.NewValidationError("invalid "+side+" image source", err)
		}
	}

	session := &models.UploadSession{
		SessionID:   uuid.NewString(),
		BeforeImage: req.BeforeImage,
		AfterImage:  req.AfterImage,
		Species:     req.Species,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.repo.SaveUpload(ctx, session); err != nil {
		return nil, apperrors.NewInternalError("failed to store upload session", err)
	}
	return session, nil
}

func (s *growthAnalysisService) GetAnalysis(ctx context.Context, id string) (*models.GrowthResult, error) {
	result, err := s.repo.GetAnalysis(ctx, id)
	if err != nil {
		return nil, apperrors.NewNotFoundError("analysis not found", err)
	}
	return result, nil
}

func (s *growthAnalysisService) GetHistory(ctx context.Context, plantID string) ([]*models.GrowthResult, error) {
	return s.repo.GetHistory(ctx, plantID)
}

// resolveImage turns a request image field into raw bytes: URLs go through
// the storage backend, embedded payloads are base64-decoded locally.
func (s *growthAnalysisService) resolveImage(ctx context.Context, side, source string) ([]byte, error) {
	kind, err := s.sources.Classify(source)
	if err != nil {
		return nil, err
	}

	var data []byte
	switch kind {
	case validation.SourceURL:
		data, err = s.fetcher.FetchImage(ctx, source)
		if err != nil {
			s.publish(ctx, observer.GrowthEvent{
				EventType:    observer.ImageResolveFailed,
				Timestamp:    time.Now(),
				ErrorMessage: err.Error(),
				Metadata:     map[string]interface{}{"side": side},
			})
			return nil, apperrors.NewNetworkError("failed to fetch "+side+" image", err)
		}
	default:
		data, err = pipeline.PayloadBytes(source)
		if err != nil {
			return nil, apperrors.NewDecodeError(side, err)
		}
	}

	s.publish(ctx, observer.GrowthEvent{
		EventType: observer.ImageResolved,
		Timestamp: time.Now(),
		Success:   true,
		Metadata:  map[string]interface{}{"side": side, "bytes": len(data)},
	})
	return data, nil
}

// sunlightSignal normalizes the caller-supplied reading, or fetches one from
// the configured provider. Failures here never fail the analysis.
func (s *growthAnalysisService) sunlightSignal(ctx context.Context, supplied *models.WeatherReading) *float64 {
	reading := supplied
	if reading == nil && s.weather != nil {
		fetched, err := s.weather.Current(ctx)
		if err != nil {
			logger.WithError(err).Debug("Weather provider unavailable, using image-derived sunlight estimate")
			return nil
		}
		reading = fetched
	}
	if reading == nil {
		return nil
	}
	score := weather.SunlightScore(*reading)
	logger.WithFields(logrus.Fields{"clouds": reading.Clouds, "condition": reading.Condition, "score": score}).
		Debug("Applying ambient-light signal")
	return &score
}

func (s *growthAnalysisService) publish(ctx context.Context, event observer.GrowthEvent) {
	if s.events != nil {
		s.events.NotifyObservers(ctx, event)
	}
}
