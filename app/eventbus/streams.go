package eventbus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nats-io/nats.go/jetstream"
)

// EnsureStream creates the named stream, or adds any missing subjects to it
// when it already exists.
func EnsureStream(ctx context.Context, js jetstream.JetStream, name string, subjects []string, logger *slog.Logger) error {
	if name == "" || len(subjects) == 0 {
		return fmt.Errorf("stream name and subjects are required")
	}

	stream, err := js.Stream(ctx, name)
	if errors.Is(err, jetstream.ErrStreamNotFound) {
		if _, err := js.CreateStream(ctx, jetstream.StreamConfig{
			Name:     name,
			Subjects: subjects,
		}); err != nil {
			logger.ErrorContext(ctx, "Failed to create JetStream stream", slog.String("stream", name), slog.Any("error", err))
			return fmt.Errorf("failed to create stream %s: %w", name, err)
		}
		logger.InfoContext(ctx, "Created JetStream stream", slog.String("stream", name), slog.Any("subjects", subjects))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check stream %s: %w", name, err)
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	cfg := info.Config
	changed := false
	for _, s := range subjects {
		if !slices.Contains(cfg.Subjects, s) {
			cfg.Subjects = append(cfg.Subjects, s)
			changed = true
		}
	}
	if !changed {
		return nil
	}

	if _, err := js.UpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to update stream %s: %w", name, err)
	}
	logger.InfoContext(ctx, "Stream updated with new subjects", slog.String("stream", name), slog.Any("subjects", cfg.Subjects))
	return nil
}
