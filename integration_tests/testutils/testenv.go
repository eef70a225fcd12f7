package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/Black-And-White-Club/pug-bot/app/eventbus"
	pugevents "github.com/Black-And-White-Club/pug-bot/app/modules/pug/events"
	"github.com/Black-And-White-Club/pug-bot/config"
	"github.com/Black-And-White-Club/pug-bot/integration_tests/containers"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      eventbus.EventBus
	NatsConn      *nats.Conn
	JetStream     jetstream.JetStream
	Config        *config.Config
	Logger        *slog.Logger
}

// SkipIfShort skips integration tests under -short.
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed integration test in short mode")
	}
}

// NewTestEnvironment creates a new test environment with Postgres and NATS containers
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(ctx)

	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	if err := env.setupContainers(ctx); err != nil {
		cancel()
		return nil, err
	}
	return env, nil
}

// setupContainers initializes all containers and connections
func (env *TestEnvironment) setupContainers(ctx context.Context) error {
	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	sqlDB, err := sql.Open("pgx", pgConnStr)
	if err != nil {
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to open sql DB connection: %w", err)
	}

	db := bun.NewDB(sqlDB, pgdialect.New())
	env.DB = db

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	natsConn, err := nats.Connect(natsURL, nats.Timeout(10*time.Second))
	if err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	env.NatsConn = natsConn

	js, err := jetstream.New(natsConn)
	if err != nil {
		natsConn.Close()
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}
	env.JetStream = js

	cfg := config.Default()
	cfg.Postgres.DSN = pgConnStr
	cfg.NATS.URL = natsURL
	cfg.NATS.JetStream = true
	env.Config = cfg

	eventBus, err := eventbus.NewEventBus(ctx, eventbus.Config{
		URL:        natsURL,
		JetStream:  true,
		StreamName: pugevents.StreamName,
		Subjects:   pugevents.StreamSubjects,
	}, env.Logger)
	if err != nil {
		natsConn.Close()
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		return fmt.Errorf("failed to create EventBus: %w", err)
	}
	env.EventBus = eventBus

	return nil
}

// Reset empties the pug tables and purges the stream between tests.
func (env *TestEnvironment) Reset(ctx context.Context) error {
	if err := TruncateTables(ctx, env.DB); err != nil {
		return err
	}

	stream, err := env.JetStream.Stream(ctx, pugevents.StreamName)
	if err != nil {
		return fmt.Errorf("failed to look up stream: %w", err)
	}
	if err := stream.Purge(ctx); err != nil {
		return fmt.Errorf("failed to purge stream: %w", err)
	}
	return nil
}

// Cleanup releases every connection and terminates the containers.
func (env *TestEnvironment) Cleanup() {
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing EventBus: %v", err)
		}
	}
	if env.NatsConn != nil {
		env.NatsConn.Close()
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cleanupContainers(ctx, env.PgContainer, env.NatsContainer)

	if env.CancelContext != nil {
		env.CancelContext()
	}
}

func cleanupContainers(ctx context.Context, pg *postgres.PostgresContainer, nc testcontainers.Container) {
	if pg != nil {
		if err := pg.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate postgres container: %v", err)
		}
	}
	if nc != nil {
		if err := nc.Terminate(ctx); err != nil {
			log.Printf("Failed to terminate NATS container: %v", err)
		}
	}
}
