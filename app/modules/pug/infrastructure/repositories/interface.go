package pugdb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository stores completed matches.
type Repository interface {
	// SaveMatch inserts a match and its roster.
	SaveMatch(ctx context.Context, db bun.IDB, match *Match) error

	// GetMatch loads a match with its roster.
	GetMatch(ctx context.Context, db bun.IDB, id uuid.UUID) (*Match, error)

	// ListRecentMatches returns up to limit matches, newest first.
	ListRecentMatches(ctx context.Context, db bun.IDB, limit int) ([]*Match, error)
}
