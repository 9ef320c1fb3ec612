package store

import (
	"context"
	"sync"

	"github.com/TempoXqc/projectNexus-sub000/internal/game"
)

// MemoryStore is a development and test implementation. It keeps the same
// encoded-record representation as the redis store so decode validation is
// exercised either way.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemory() *MemoryStore {
	return &MemoryStore{records: make(map[string][]byte)}
}

func (m *MemoryStore) Create(ctx context.Context, s *game.Session) error {
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[s.ID]; exists {
		return ErrExists
	}
	m.records[s.ID] = raw
	return nil
}

func (m *MemoryStore) Save(ctx context.Context, s *game.Session) error {
	raw, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.records[s.ID] = raw
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*game.Session, error) {
	m.mu.RLock()
	raw, ok := m.records[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return decodeSession(raw)
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.records, id)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListActive(ctx context.Context) ([]*game.Session, error) {
	m.mu.RLock()
	raws := make([][]byte, 0, len(m.records))
	for _, raw := range m.records {
		raws = append(raws, raw)
	}
	m.mu.RUnlock()

	out := make([]*game.Session, 0, len(raws))
	for _, raw := range raws {
		s, err := decodeSession(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
