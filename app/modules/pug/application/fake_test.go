package pugservice

import (
	"context"
	"sync"

	pugdb "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ------------------------
// Fake Pug Repo
// ------------------------

type FakePugRepo struct {
	mu    sync.Mutex
	trace []string
	saved []*pugdb.Match

	SaveMatchFunc         func(ctx context.Context, db bun.IDB, match *pugdb.Match) error
	GetMatchFunc          func(ctx context.Context, db bun.IDB, id uuid.UUID) (*pugdb.Match, error)
	ListRecentMatchesFunc func(ctx context.Context, db bun.IDB, limit int) ([]*pugdb.Match, error)
}

func NewFakePugRepo() *FakePugRepo {
	return &FakePugRepo{
		trace: []string{},
	}
}

func (f *FakePugRepo) record(step string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakePugRepo) SaveMatch(ctx context.Context, db bun.IDB, match *pugdb.Match) error {
	f.record("SaveMatch")
	if f.SaveMatchFunc != nil {
		return f.SaveMatchFunc(ctx, db, match)
	}
	f.mu.Lock()
	f.saved = append(f.saved, match)
	f.mu.Unlock()
	return nil
}

func (f *FakePugRepo) GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*pugdb.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, id)
	}
	return nil, pugdb.ErrNotFound
}

func (f *FakePugRepo) ListRecentMatches(ctx context.Context, db bun.IDB, limit int) ([]*pugdb.Match, error) {
	f.record("ListRecentMatches")
	if f.ListRecentMatchesFunc != nil {
		return f.ListRecentMatchesFunc(ctx, db, limit)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakePugRepo) Trace() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakePugRepo) Saved() []*pugdb.Match {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*pugdb.Match, len(f.saved))
	copy(out, f.saved)
	return out
}

// Ensure the fake actually satisfies the interface
var _ pugdb.Repository = (*FakePugRepo)(nil)
