package factory

import (
	"testing"

	"go-growth-analyzer/internal/config"
)

func TestCreateStorage_HTTP(t *testing.T) {
	fetcher, err := NewStorageFactory().CreateStorage(&config.Config{StorageBackend: "http"})
	if err != nil {
		t.Fatalf("CreateStorage(http) failed: %v", err)
	}
	if fetcher == nil {
		t.Fatal("Expected an HTTP fetcher, got nil")
	}
}

func TestCreateStorage_Azure(t *testing.T) {
	cfg := &config.Config{
		StorageBackend:   "azure",
		AzureAccountName: "plantphotos",
		AzureAccountKey:  "c2VjcmV0LWtleQ==", // shared keys are base64
	}
	fetcher, err := NewStorageFactory().CreateStorage(cfg)
	if err != nil {
		t.Fatalf("CreateStorage(azure) failed: %v", err)
	}
	if fetcher == nil {
		t.Fatal("Expected an Azure fetcher, got nil")
	}
}

func TestCreateStorage_UnknownBackend(t *testing.T) {
	if _, err := NewStorageFactory().CreateStorage(&config.Config{StorageBackend: "s3"}); err == nil {
		t.Error("Expected error for unknown backend, got none")
	}
}
