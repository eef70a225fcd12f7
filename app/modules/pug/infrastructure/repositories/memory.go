package pugdb

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MemoryRepository keeps matches in process memory. It backs the history
// endpoints when no database is configured; the db argument is ignored.
type MemoryRepository struct {
	mu      sync.RWMutex
	matches map[uuid.UUID]*Match
	order   []uuid.UUID
	limit   int
}

// NewMemoryRepository keeps at most limit matches, dropping the oldest.
func NewMemoryRepository(limit int) *MemoryRepository {
	if limit <= 0 {
		limit = 100
	}
	return &MemoryRepository{
		matches: make(map[uuid.UUID]*Match),
		limit:   limit,
	}
}

func (r *MemoryRepository) SaveMatch(_ context.Context, _ bun.IDB, match *Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.matches[match.ID]; exists {
		return fmt.Errorf("failed to insert match: duplicate id %s", match.ID)
	}
	r.matches[match.ID] = cloneMatch(match)
	r.order = append(r.order, match.ID)

	for len(r.order) > r.limit {
		delete(r.matches, r.order[0])
		r.order = r.order[1:]
	}
	return nil
}

func (r *MemoryRepository) GetMatch(_ context.Context, _ bun.IDB, id uuid.UUID) (*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneMatch(m), nil
}

func (r *MemoryRepository) ListRecentMatches(_ context.Context, _ bun.IDB, limit int) ([]*Match, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Match, 0, min(max(limit, 0), len(r.order)))
	for i := len(r.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, cloneMatch(r.matches[r.order[i]]))
	}
	return out, nil
}

func cloneMatch(m *Match) *Match {
	c := *m
	c.Players = make([]*MatchPlayer, len(m.Players))
	for i, p := range m.Players {
		cp := *p
		c.Players[i] = &cp
	}
	return &c
}

var _ Repository = (*MemoryRepository)(nil)
