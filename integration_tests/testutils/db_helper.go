package testutils

import (
	"context"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	pugmigrations "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories/migrations"
)

// runMigrations creates the migration tables and applies the pug schema.
func runMigrations(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, pugmigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("failed to run pug migrations: %w", err)
	}
	if group.IsZero() {
		log.Println("No new pug migrations to run")
	} else {
		log.Printf("Migrated pug schema to %s", group)
	}
	return nil
}

// TruncateTables removes every stored match.
func TruncateTables(ctx context.Context, db bun.IDB) error {
	_, err := db.NewTruncateTable().
		Table("pug_match_players", "pug_matches").
		Cascade().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to truncate pug tables: %w", err)
	}
	return nil
}

// CountRows returns the number of rows in model's table.
func CountRows(ctx context.Context, db bun.IDB, model any) (int, error) {
	return db.NewSelect().Model(model).Count(ctx)
}
