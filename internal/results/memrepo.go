package results

import (
	"context"
	"sort"
	"sync"
)

// memrepo is the in-memory repository used when no database is configured.
type memrepo struct {
	mu sync.RWMutex

	nextID    int64
	bySession map[string]*MatchResult
	ordered   []*MatchResult // append order; sorted on read
}

func NewMemoryRepository() Repository {
	return &memrepo{bySession: make(map[string]*MatchResult)}
}

func (m *memrepo) SaveResult(ctx context.Context, res *MatchResult) error {
	if res == nil {
		return ErrDuplicateResult
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.bySession[res.SessionID]; exists {
		return ErrDuplicateResult
	}
	m.nextID++
	cp := *res
	cp.ID = m.nextID
	res.ID = cp.ID
	m.bySession[res.SessionID] = &cp
	m.ordered = append(m.ordered, &cp)
	return nil
}

func (m *memrepo) RecentResults(ctx context.Context, limit int) ([]*MatchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	m.mu.RLock()
	items := append([]*MatchResult(nil), m.ordered...)
	m.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].EndedAt.Equal(items[j].EndedAt) {
			return items[i].EndedAt.After(items[j].EndedAt)
		}
		return items[i].ID > items[j].ID
	})
	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]*MatchResult, 0, len(items))
	for _, it := range items {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}
