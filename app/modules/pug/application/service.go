package pugservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	pugdb "github.com/Black-And-White-Club/pug-bot/app/modules/pug/infrastructure/repositories"
	pugmetrics "github.com/Black-And-White-Club/pug-bot/app/modules/pug/metrics"
	"github.com/Black-And-White-Club/pug-bot/app/shared/attr"
	"github.com/Black-And-White-Club/pug-bot/app/shared/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "PugService"

// Options configures the game the service runs.
type Options struct {
	Game   pugdomain.GameConfig
	Policy pugdomain.CaptainPolicy
	// AutoReset starts a fresh game as soon as a draft completes.
	AutoReset bool
}

// PugService owns the active game. Every command runs inside one critical
// section; persistence and logging happen after it is released.
type PugService struct {
	mu        sync.Mutex
	game      *pugdomain.Game
	channelID string

	opts    Options
	repo    pugdb.Repository
	logger  *slog.Logger
	metrics pugmetrics.PugMetrics
	tracer  trace.Tracer
	db      *bun.DB
}

// NewPugService creates a PugService with an empty game.
func NewPugService(
	opts Options,
	repo pugdb.Repository,
	logger *slog.Logger,
	metrics pugmetrics.PugMetrics,
	tracer trace.Tracer,
	db *bun.DB,
) (*PugService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = pugmetrics.NewNoop()
	}
	if opts.Policy == nil {
		opts.Policy = pugdomain.FirstPolicy{}
	}

	game, err := pugdomain.NewGame(opts.Game)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	return &PugService{
		game:    game,
		opts:    opts,
		repo:    repo,
		logger:  logger,
		metrics: metrics,
		tracer:  tracer,
		db:      db,
	}, nil
}

// Join adds a player to the queue. When the queue fills, captains are chosen
// by the configured policy in the same critical section. A policy choice the
// game refuses leaves the join in place and captain selection open.
func (s *PugService) Join(ctx context.Context, cmd PlayerCommand) (CommandResult, error) {
	return withTelemetry(s, ctx, "Join", string(cmd.Player.ID), func(ctx context.Context) (CommandResult, error) {
		var policyErr error
		res, err := s.apply(ctx, pugdomain.CommandJoin, cmd.ChannelID, func(g *pugdomain.Game, out *CommandSuccess) error {
			n, outcome, err := g.Join(cmd.Player)
			if err != nil {
				return err
			}
			out.JoinOutcome = outcome
			out.Notifications = append(out.Notifications, n)

			if outcome != pugdomain.AddedQueueNowFull {
				return nil
			}
			captains := s.opts.Policy.SelectCaptains(g.Members(), g.Config().NumCaptains)
			if len(captains) == 0 {
				return nil
			}
			n, policyErr = g.AssignCaptains(captains)
			if policyErr == nil {
				out.Notifications = append(out.Notifications, n)
			}
			return nil
		})
		if policyErr != nil {
			s.logger.WarnContext(ctx, "Captain policy selection refused, waiting for volunteers",
				attr.ExtractCorrelationID(ctx),
				attr.String("policy", s.opts.Policy.Name()),
				attr.Error(policyErr),
			)
		}
		return res, err
	})
}

// Leave removes a player from the open queue.
func (s *PugService) Leave(ctx context.Context, cmd PlayerCommand) (CommandResult, error) {
	return withTelemetry(s, ctx, "Leave", string(cmd.Player.ID), func(ctx context.Context) (CommandResult, error) {
		return s.apply(ctx, pugdomain.CommandLeave, cmd.ChannelID, func(g *pugdomain.Game, out *CommandSuccess) error {
			n, outcome, err := g.Leave(cmd.Player)
			if err != nil {
				return err
			}
			out.LeaveOutcome = outcome
			out.Notifications = append(out.Notifications, n)
			return nil
		})
	})
}

// VolunteerCaptain seats the player as a captain during captain selection.
func (s *PugService) VolunteerCaptain(ctx context.Context, cmd PlayerCommand) (CommandResult, error) {
	return withTelemetry(s, ctx, "VolunteerCaptain", string(cmd.Player.ID), func(ctx context.Context) (CommandResult, error) {
		return s.apply(ctx, pugdomain.CommandCaptain, cmd.ChannelID, func(g *pugdomain.Game, out *CommandSuccess) error {
			n, err := g.AssignCaptain(cmd.Player)
			if err != nil {
				return err
			}
			out.Notifications = append(out.Notifications, n)
			return nil
		})
	})
}

// Pick drafts a player for the captain on the clock.
func (s *PugService) Pick(ctx context.Context, cmd PickCommand) (CommandResult, error) {
	return withTelemetry(s, ctx, "Pick", string(cmd.Captain.ID), func(ctx context.Context) (CommandResult, error) {
		return s.apply(ctx, pugdomain.CommandPick, cmd.ChannelID, func(g *pugdomain.Game, out *CommandSuccess) error {
			n, err := g.Pick(cmd.Captain, cmd.Number)
			if err != nil {
				return err
			}
			out.Notifications = append(out.Notifications, n)
			return nil
		})
	})
}

// Reset abandons the current game and opens an empty queue.
func (s *PugService) Reset(ctx context.Context, cmd PlayerCommand) (CommandResult, error) {
	return withTelemetry(s, ctx, "Reset", string(cmd.Player.ID), func(ctx context.Context) (CommandResult, error) {
		game, err := pugdomain.NewGame(s.opts.Game)
		if err != nil {
			return CommandResult{}, fmt.Errorf("failed to create game: %w", err)
		}

		s.mu.Lock()
		previous := s.game
		s.game = game
		s.channelID = cmd.ChannelID
		s.mu.Unlock()

		s.logger.InfoContext(ctx, "Game reset",
			attr.ExtractCorrelationID(ctx),
			attr.String("previous_game_id", previous.ID().String()),
			attr.String("previous_phase", string(previous.Phase())),
			attr.String("game_id", game.ID().String()),
			attr.String("requested_by", string(cmd.Player.ID)),
		)
		s.metrics.RecordQueueSize(ctx, 0)

		return results.SuccessResult[CommandSuccess, CommandFailure](CommandSuccess{
			GameID:        game.ID(),
			Phase:         game.Phase(),
			ChannelID:     cmd.ChannelID,
			Notifications: []pugdomain.Notification{pugdomain.QueueProgressNotification(nil, s.opts.Game.MaxMembers)},
		}), nil
	})
}

// Status returns a snapshot of the active game.
func (s *PugService) Status(ctx context.Context) (pugdomain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.game.Snapshot()
	snap.ChannelID = s.channelID
	return snap, nil
}

// gameMutation runs against the locked game and fills out on success.
type gameMutation func(g *pugdomain.Game, out *CommandSuccess) error

// mutation is what a command changed, captured before the lock is released.
type mutation struct {
	out       CommandSuccess
	from, to  pugdomain.Phase
	queueSize int
	config    pugdomain.GameConfig
	completed *pugdomain.Result
}

// mutate runs fn inside the critical section. A draft that completes is
// captured and, with AutoReset, replaced by a fresh game before unlocking.
func (s *PugService) mutate(channelID string, fn gameMutation) (m mutation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	game := s.game
	if s.channelID == "" {
		s.channelID = channelID
	}
	m.out.ChannelID = s.channelID
	m.config = game.Config()
	m.from = game.Phase()

	err = fn(game, &m.out)

	m.to = game.Phase()
	m.queueSize = len(game.Members())
	m.out.GameID = game.ID()
	m.out.Phase = m.to
	if err != nil || m.to != pugdomain.PhaseComplete || m.from == pugdomain.PhaseComplete {
		return m, err
	}

	if res, resErr := game.Result(); resErr == nil {
		m.completed = &res
		m.out.Completed = &res
	}
	if s.opts.AutoReset {
		next, newErr := pugdomain.NewGame(s.opts.Game)
		if newErr != nil {
			return m, fmt.Errorf("failed to start next game: %w", newErr)
		}
		s.game = next
		s.channelID = ""
	}
	return m, nil
}

// apply runs fn under the game lock, then handles metrics, rule rejections and
// match completion outside it.
func (s *PugService) apply(ctx context.Context, command pugdomain.Command, channelID string, fn gameMutation) (CommandResult, error) {
	m, err := s.mutate(channelID, fn)
	if err != nil {
		var cmdErr *pugdomain.CommandError
		if !errors.As(err, &cmdErr) {
			return CommandResult{}, err
		}
		reason := pugdomain.Reason(err)
		s.metrics.RecordCommandRejected(ctx, string(command), reason)
		return results.FailureResult[CommandSuccess, CommandFailure](CommandFailure{
			Command:    cmdErr.Command,
			Reason:     reason,
			Message:    cmdErr.Error(),
			Phase:      cmdErr.Phase,
			PlayerID:   cmdErr.PlayerID,
			PickNumber: cmdErr.PickNumber,
			ChannelID:  m.out.ChannelID,
		}), nil
	}

	s.metrics.RecordQueueSize(ctx, m.queueSize)
	if m.from != m.to {
		s.metrics.RecordPhaseTransition(ctx, string(m.from), string(m.to))
		s.logger.InfoContext(ctx, "Game phase changed",
			attr.ExtractCorrelationID(ctx),
			attr.String("game_id", m.out.GameID.String()),
			attr.String("from", string(m.from)),
			attr.String("to", string(m.to)),
		)
	}

	if m.completed != nil {
		s.recordMatch(ctx, *m.completed, m.config, m.out.ChannelID)
	}

	return results.SuccessResult[CommandSuccess, CommandFailure](m.out), nil
}

// recordMatch stores a finished draft. A storage failure is logged and does
// not undo the draft.
func (s *PugService) recordMatch(ctx context.Context, res pugdomain.Result, cfg pugdomain.GameConfig, channelID string) {
	s.metrics.RecordMatchCompleted(ctx, res.CompletedAt.Sub(res.CreatedAt))
	if s.repo == nil {
		return
	}

	match := pugdb.NewMatch(res, cfg, channelID)
	err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) error {
		return s.repo.SaveMatch(ctx, db, match)
	})
	if err != nil {
		s.metrics.RecordOperationFailure(ctx, "SaveMatch", serviceName)
		s.logger.ErrorContext(ctx, "Failed to store completed match",
			attr.ExtractCorrelationID(ctx),
			attr.String("game_id", res.GameID.String()),
			attr.Error(err),
		)
		return
	}
	s.logger.InfoContext(ctx, "Completed match stored",
		attr.ExtractCorrelationID(ctx),
		attr.String("game_id", res.GameID.String()),
		attr.Int("players", len(match.Players)),
	)
}

// GetMatch loads a stored match.
func (s *PugService) GetMatch(ctx context.Context, id uuid.UUID) (*MatchSummary, error) {
	if s.repo == nil {
		return nil, pugdb.ErrNotFound
	}
	var match *pugdb.Match
	err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		match, err = s.repo.GetMatch(ctx, db, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	summary := toSummary(match)
	return &summary, nil
}

// ListMatches returns up to limit of the newest stored matches. A limit of
// zero or less yields an empty list.
func (s *PugService) ListMatches(ctx context.Context, limit int) ([]MatchSummary, error) {
	if s.repo == nil || limit <= 0 {
		return []MatchSummary{}, nil
	}
	var matches []*pugdb.Match
	err := runInTx(s, ctx, func(ctx context.Context, db bun.IDB) error {
		var err error
		matches, err = s.repo.ListRecentMatches(ctx, db, limit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	out := make([]MatchSummary, len(matches))
	for i, m := range matches {
		out[i] = toSummary(m)
	}
	return out, nil
}

func toSummary(m *pugdb.Match) MatchSummary {
	return MatchSummary{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		Teams:       m.Teams(),
		CreatedAt:   m.CreatedAt,
		CompletedAt: m.CompletedAt,
	}
}

// -----------------------------------------------------------------------------
// Generic Helpers (Defined as functions because methods cannot have type params)
// -----------------------------------------------------------------------------

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *PugService,
	ctx context.Context,
	operationName string,
	identifier string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {
	var span trace.Span
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operationName, trace.WithAttributes(
			attribute.String("operation", operationName),
			attribute.String("identifier", identifier),
		))
	} else {
		span = trace.SpanFromContext(ctx)
	}
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, serviceName)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, serviceName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, "Operation triggered", attr.ExtractCorrelationID(ctx), attr.String("operation", operationName))

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.ExtractCorrelationID(ctx),
				attr.String("identifier", identifier),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, serviceName)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, "Operation completed successfully",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("identifier", identifier),
		)
	}

	s.metrics.RecordOperationSuccess(ctx, operationName, serviceName)
	return result, nil
}

// runInTx runs fn within a transaction when a database is configured.
func runInTx(s *PugService, ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}
