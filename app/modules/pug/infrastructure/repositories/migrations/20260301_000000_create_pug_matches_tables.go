package migrations

import (
	"context"
	"fmt"

	pugdb "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Creating pug_matches and pug_match_players tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				if _, err := tx.NewCreateTable().Model((*pugdb.Match)(nil)).IfNotExists().Exec(ctx); err != nil {
					return fmt.Errorf("failed to create pug_matches table: %w", err)
				}
				if _, err := tx.NewCreateTable().
					Model((*pugdb.MatchPlayer)(nil)).
					IfNotExists().
					ForeignKey(`("match_id") REFERENCES "pug_matches" ("id") ON DELETE CASCADE`).
					Exec(ctx); err != nil {
					return fmt.Errorf("failed to create pug_match_players table: %w", err)
				}
				if _, err := tx.ExecContext(ctx, `
					CREATE INDEX IF NOT EXISTS idx_pug_matches_completed_at ON pug_matches(completed_at DESC);
					CREATE INDEX IF NOT EXISTS idx_pug_match_players_player_id ON pug_match_players(player_id);
				`); err != nil {
					return fmt.Errorf("failed to create pug indexes: %w", err)
				}
				return nil
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			fmt.Println("Dropping pug_match_players and pug_matches tables...")
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				if _, err := tx.NewDropTable().Model((*pugdb.MatchPlayer)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
					return err
				}
				if _, err := tx.NewDropTable().Model((*pugdb.Match)(nil)).IfExists().Cascade().Exec(ctx); err != nil {
					return err
				}
				return nil
			})
		},
	)
}
