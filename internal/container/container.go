package container

import (
	"fmt"
	"net/http"

	"go-growth-analyzer/internal/config"
	"go-growth-analyzer/internal/factory"
	"go-growth-analyzer/internal/logger"
	"go-growth-analyzer/internal/observer"
	"go-growth-analyzer/internal/pipeline"
	"go-growth-analyzer/internal/repository"
	"go-growth-analyzer/internal/service"
	"go-growth-analyzer/internal/storage"
	"go-growth-analyzer/internal/transport"
	"go-growth-analyzer/internal/weather"
)

// Container holds all application dependencies
type Container struct {
	config       *config.Config
	imageFetcher storage.ImageFetcher
	analyzer     pipeline.GrowthAnalyzer
	repo         repository.AnalysisRepository
	growth       service.GrowthAnalysisService
	stats        *observer.StatsObserver
	handler      http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	imageFetcher, err := factory.NewStorageFactory().CreateStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage backend: %w", err)
	}

	analyzer, err := pipeline.NewGrowthAnalyzer()
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}
	repo := repository.NewMemoryRepository()

	var weatherProvider weather.Provider
	if cfg.WeatherAPIURL != "" {
		weatherProvider = weather.NewHTTPProvider(cfg.WeatherAPIURL, cfg.WeatherAPIKey)
	}

	stats := observer.NewStatsObserver()
	events := observer.NewEventPublisher()
	events.Subscribe(observer.NewLoggingObserver(logger.Logger))
	events.Subscribe(stats)

	growth := service.NewGrowthAnalysisService(analyzer, imageFetcher, repo, weatherProvider, events)
	handler := transport.NewHandler(growth, stats, cfg)

	return &Container{
		config:       cfg,
		imageFetcher: imageFetcher,
		analyzer:     analyzer,
		repo:         repo,
		growth:       growth,
		stats:        stats,
		handler:      handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases the analyzer's worker pool
func (c *Container) Close() error {
	return c.analyzer.Close()
}
