package factory

import (
	"fmt"

	"go-growth-analyzer/internal/config"
	"go-growth-analyzer/internal/storage"
)

// StorageType represents different types of photo storage backends
type StorageType string

const (
	// HTTPStorage fetches photos from public HTTP(S) URLs
	HTTPStorage StorageType = "http"
	// AzureStorage fetches photos from Azure blob storage
	AzureStorage StorageType = "azure"
)

// StorageFactory creates storage implementations
type StorageFactory interface {
	CreateStorage(cfg *config.Config) (storage.ImageFetcher, error)
}

// storageFactory implements StorageFactory
type storageFactory struct{}

// NewStorageFactory creates a new storage factory
func NewStorageFactory() StorageFactory {
	return &storageFactory{}
}

// CreateStorage creates the image fetcher selected by the configuration
func (f *storageFactory) CreateStorage(cfg *config.Config) (storage.ImageFetcher, error) {
	switch StorageType(cfg.StorageBackend) {
	case HTTPStorage:
		return storage.NewHTTPImageFetcher(), nil
	case AzureStorage:
		return storage.NewAzureStorage(cfg.AzureAccountName, cfg.AzureAccountKey)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.StorageBackend)
	}
}
