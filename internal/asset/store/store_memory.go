// Package store persists assets in memory or PostgreSQL.
package store

import (
	"context"
	"fmt"
	"sync"

	"formview/internal/asset/models"
	"formview/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	assets map[string]models.Asset
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{assets: make(map[string]models.Asset)}
}

func (s *InMemoryStore) Save(_ context.Context, asset *models.Asset) error {
	if asset == nil || asset.UID == "" {
		return fmt.Errorf("asset uid is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets[asset.UID] = *asset
	return nil
}

func (s *InMemoryStore) FindByUID(_ context.Context, uid string) (*models.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	asset, ok := s.assets[uid]
	if !ok {
		return nil, fmt.Errorf("asset %s: %w", uid, sentinel.ErrNotFound)
	}
	return &asset, nil
}
