package pugdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrNotFound is returned when a match is not found.
var ErrNotFound = errors.New("match not found")

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new match repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// SaveMatch inserts the match row followed by its players. Callers that need
// atomicity pass a transaction.
func (r *Impl) SaveMatch(ctx context.Context, db bun.IDB, match *Match) error {
	db = r.resolveDB(db)
	if _, err := db.NewInsert().Model(match).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	if len(match.Players) == 0 {
		return nil
	}
	if _, err := db.NewInsert().Model(&match.Players).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert match players: %w", err)
	}
	return nil
}

// GetMatch retrieves a match by ID.
func (r *Impl) GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error) {
	db = r.resolveDB(db)
	match := new(Match)
	err := db.NewSelect().
		Model(match).
		Relation("Players", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("mp.team_index ASC", "mp.pick_order ASC")
		}).
		Where("m.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	return match, nil
}

// ListRecentMatches returns the newest matches first.
func (r *Impl) ListRecentMatches(ctx context.Context, db bun.IDB, limit int) ([]*Match, error) {
	if limit <= 0 {
		return []*Match{}, nil
	}
	db = r.resolveDB(db)
	var matches []*Match
	err := db.NewSelect().
		Model(&matches).
		Relation("Players", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("mp.team_index ASC", "mp.pick_order ASC")
		}).
		Order("m.completed_at DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}
