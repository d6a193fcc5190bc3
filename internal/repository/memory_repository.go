package repository

import (
	"context"
	"sort"
	"sync"

	"go-growth-analyzer/pkg/models"
)

// memoryRepository implements AnalysisRepository in process memory. Good
// enough for single-instance deployments; swap in a database-backed
// implementation behind the same interface for anything else.
type memoryRepository struct {
	mu       sync.RWMutex
	analyses map[string]*models.GrowthResult
	sessions map[string]*models.UploadSession
}

// NewMemoryRepository creates an in-memory analysis repository.
func NewMemoryRepository() AnalysisRepository {
	return &memoryRepository{
		analyses: make(map[string]*models.GrowthResult),
		sessions: make(map[string]*models.UploadSession),
	}
}

func (r *memoryRepository) SaveAnalysis(ctx context.Context, result *models.GrowthResult) error {
	if result == nil {
		return ErrNilResult
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[result.AnalysisID] = result
	return nil
}

func (r *memoryRepository) GetAnalysis(ctx context.Context, id string) (*models.GrowthResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result, ok := r.analyses[id]
	if !ok {
		return nil, ErrAnalysisNotFound
	}
	return result, nil
}

func (r *memoryRepository) GetHistory(ctx context.Context, plantID string) ([]*models.GrowthResult, error) {
	r.mu.RLock()
	results := make([]*models.GrowthResult, 0, len(r.analyses))
	for _, result := range r.analyses {
		if plantID != "" && result.PlantID != plantID {
			continue
		}
		results = append(results, result)
	}
	r.mu.RUnlock()

	// Newest first, ID as a stable tie-break
	sort.Slice(results, func(i, j int) bool {
		if !results[i].Timestamp.Equal(results[j].Timestamp) {
			return results[i].Timestamp.After(results[j].Timestamp)
		}
		return results[i].AnalysisID < results[j].AnalysisID
	})
	return results, nil
}

func (r *memoryRepository) SaveUpload(ctx context.Context, session *models.UploadSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.SessionID] = session
	return nil
}

func (r *memoryRepository) GetUpload(ctx context.Context, sessionID string) (*models.UploadSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}
