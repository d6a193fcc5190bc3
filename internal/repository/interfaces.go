package repository

import (
	"context"

	"go-growth-analyzer/pkg/models"
)

// AnalysisRepository is the persistence collaborator for growth results and
// upload sessions. The core pipeline never touches it; ownership of a
// GrowthResult transfers here only after the analysis completes.
type AnalysisRepository interface {
	// SaveAnalysis stores a completed growth result under its analysis ID
	SaveAnalysis(ctx context.Context, result *models.GrowthResult) error

	// GetAnalysis retrieves a stored growth result
	GetAnalysis(ctx context.Context, id string) (*models.GrowthResult, error)

	// GetHistory returns stored analyses newest-first, optionally filtered
	// by plant ID (empty means all)
	GetHistory(ctx context.Context, plantID string) ([]*models.GrowthResult, error)

	// SaveUpload stores an uploaded image pair under a session ID
	SaveUpload(ctx context.Context, session *models.UploadSession) error

	// GetUpload retrieves an upload session
	GetUpload(ctx context.Context, sessionID string) (*models.UploadSession, error)
}
