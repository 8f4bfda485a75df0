// Package store persists submissions in memory or PostgreSQL.
package store

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"formview/internal/submission/models"
	"formview/pkg/platform/sentinel"
)

type submissionKey struct {
	assetUID string
	id       int64
}

type InMemoryStore struct {
	mu          sync.RWMutex
	submissions map[submissionKey]models.Submission
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{submissions: make(map[submissionKey]models.Submission)}
}

func (s *InMemoryStore) Save(_ context.Context, sub *models.Submission) error {
	if sub == nil || sub.AssetUID == "" {
		return fmt.Errorf("submission asset uid is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sub
	stored.Data = maps.Clone(sub.Data)
	s.submissions[submissionKey{sub.AssetUID, sub.ID}] = stored
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, assetUID string, id int64) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.submissions[submissionKey{assetUID, id}]
	if !ok {
		return nil, fmt.Errorf("submission %d of %s: %w", id, assetUID, sentinel.ErrNotFound)
	}
	return &sub, nil
}

// FindMany returns the submissions that exist among ids, keyed by id.
func (s *InMemoryStore) FindMany(_ context.Context, assetUID string, ids []int64) (map[int64]*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[int64]*models.Submission, len(ids))
	for _, id := range ids {
		if sub, ok := s.submissions[submissionKey{assetUID, id}]; ok {
			out[id] = &sub
		}
	}
	return out, nil
}
