package cache

import (
	"context"
	"sync"
	"time"

	"formview/internal/display"
)

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// InMemoryCache stores encoded trees so callers never share mutable nodes.
type InMemoryCache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

func NewInMemory(ttl time.Duration) *InMemoryCache {
	return &InMemoryCache{entries: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (c *InMemoryCache) Get(_ context.Context, key Key) (*display.Group, error) {
	c.mu.Lock()
	e, ok := c.entries[key.String()]
	if ok && c.ttl > 0 && c.now().After(e.expiresAt) {
		delete(c.entries, key.String())
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decode(e.payload)
}

func (c *InMemoryCache) Set(_ context.Context, key Key, tree *display.Group) error {
	b, err := encode(tree)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key.String()] = entry{payload: b, expiresAt: c.now().Add(c.ttl)}
	return nil
}
