package store

import (
	"context"
	"sync"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
)

// Cache is a read-through/write-through accelerator in front of a store.
// It mirrors sessions currently being played to avoid a store round-trip on
// every action. It is never an independent source of truth: on process
// restart it starts empty and the inner store is authoritative.
type Cache struct {
	inner game.SessionStore

	mu      sync.RWMutex
	records map[string][]byte
}

func NewCache(inner game.SessionStore) *Cache {
	return &Cache{inner: inner, records: make(map[string][]byte)}
}

func (c *Cache) Create(ctx context.Context, s *game.Session) error {
	if err := c.inner.Create(ctx, s); err != nil {
		return err
	}
	c.put(s)
	return nil
}

func (c *Cache) Save(ctx context.Context, s *game.Session) error {
	if err := c.inner.Save(ctx, s); err != nil {
		return err
	}
	c.put(s)
	return nil
}

func (c *Cache) Get(ctx context.Context, id string) (*game.Session, error) {
	c.mu.RLock()
	raw, ok := c.records[id]
	c.mu.RUnlock()
	if ok {
		return decodeSession(raw)
	}
	s, err := c.inner.Get(ctx, id)
	if err != nil || s == nil {
		return s, err
	}
	c.put(s)
	return s, nil
}

func (c *Cache) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	delete(c.records, id)
	c.mu.Unlock()
	return c.inner.Delete(ctx, id)
}

// ListActive always consults the inner store: the mirror only holds what this
// process has touched.
func (c *Cache) ListActive(ctx context.Context) ([]*game.Session, error) {
	return c.inner.ListActive(ctx)
}

func (c *Cache) put(s *game.Session) {
	raw, err := encodeSession(s)
	if err != nil {
		return
	}
	c.mu.Lock()
	c.records[s.ID] = raw
	c.mu.Unlock()
}
