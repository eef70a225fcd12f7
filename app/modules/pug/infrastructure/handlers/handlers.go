package pughandlers

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	pugevents "github.com/Black-And-White-Club/pug-bot/app/modules/pug/events"
	pugmetrics "github.com/Black-And-White-Club/pug-bot/app/modules/pug/metrics"
	"github.com/Black-And-White-Club/pug-bot/app/shared/attr"
	"github.com/Black-And-White-Club/pug-bot/app/shared/handlerwrapper"
	"go.opentelemetry.io/otel/trace"
)

// ReasonRateLimited is the rejection reason for throttled players.
const ReasonRateLimited = "rate_limited"

// PugHandlers implements the Handlers interface.
type PugHandlers struct {
	service pugservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	limiter *PlayerRateLimiter
	metrics pugmetrics.PugMetrics
}

// NewPugHandlers creates a new PugHandlers instance. A nil limiter disables throttling.
func NewPugHandlers(
	service pugservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	limiter *PlayerRateLimiter,
	metrics pugmetrics.PugMetrics,
) Handlers {
	if metrics == nil {
		metrics = pugmetrics.NewNoop()
	}
	return &PugHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		limiter: limiter,
		metrics: metrics,
	}
}

// HandleJoinRequested handles pug.join.requested.v1.
func (h *PugHandlers) HandleJoinRequested(ctx context.Context, payload *pugevents.PlayerCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PugHandlers.HandleJoinRequested")
	defer span.End()

	return h.playerCommand(ctx, pugdomain.CommandJoin, payload, h.service.Join)
}

// HandleLeaveRequested handles pug.leave.requested.v1.
func (h *PugHandlers) HandleLeaveRequested(ctx context.Context, payload *pugevents.PlayerCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PugHandlers.HandleLeaveRequested")
	defer span.End()

	return h.playerCommand(ctx, pugdomain.CommandLeave, payload, h.service.Leave)
}

// HandleCaptainRequested handles pug.captain.requested.v1.
func (h *PugHandlers) HandleCaptainRequested(ctx context.Context, payload *pugevents.PlayerCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PugHandlers.HandleCaptainRequested")
	defer span.End()

	return h.playerCommand(ctx, pugdomain.CommandCaptain, payload, h.service.VolunteerCaptain)
}

// HandlePickRequested handles pug.pick.requested.v1.
func (h *PugHandlers) HandlePickRequested(ctx context.Context, payload *pugevents.PickRequestedPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PugHandlers.HandlePickRequested")
	defer span.End()

	if payload.Captain.ID == "" {
		h.logger.WarnContext(ctx, "Pick request without captain", attr.ExtractCorrelationID(ctx))
		return nil, nil
	}
	if !h.limiter.Allow(payload.Captain.ID) {
		return h.rateLimited(ctx, pugdomain.CommandPick, payload.Captain.ID, payload.PickNumber, payload.ChannelID), nil
	}

	res, err := h.service.Pick(ctx, pugservice.PickCommand{
		Captain:   payload.Captain,
		Number:    payload.PickNumber,
		ChannelID: payload.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	return commandResults(res), nil
}

// HandleResetRequested handles pug.reset.requested.v1.
func (h *PugHandlers) HandleResetRequested(ctx context.Context, payload *pugevents.AdminCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PugHandlers.HandleResetRequested")
	defer span.End()

	h.logger.InfoContext(ctx, "Reset requested",
		attr.ExtractCorrelationID(ctx),
		attr.String("requested_by", string(payload.RequestedBy.ID)),
	)

	res, err := h.service.Reset(ctx, pugservice.PlayerCommand{
		Player:    payload.RequestedBy,
		ChannelID: payload.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	return commandResults(res), nil
}

// HandleStatusRequested replies on the message's reply_to subject when it is
// under pugevents.StatusReplyPrefix, and on pug.status.v1 otherwise.
func (h *PugHandlers) HandleStatusRequested(ctx context.Context, payload *pugevents.AdminCommandPayloadV1) ([]handlerwrapper.Result, error) {
	ctx, span := h.tracer.Start(ctx, "PugHandlers.HandleStatusRequested")
	defer span.End()

	snapshot, err := h.service.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read game status: %w", err)
	}

	replyTopic := pugevents.StatusV1
	if rt, ok := ctx.Value(handlerwrapper.CtxKeyReplyTo).(string); ok && rt != "" {
		if strings.HasPrefix(rt, pugevents.StatusReplyPrefix) && len(rt) > len(pugevents.StatusReplyPrefix) {
			replyTopic = rt
		} else {
			h.logger.WarnContext(ctx, "Ignoring status reply_to outside the reply namespace",
				attr.ExtractCorrelationID(ctx),
				attr.String("reply_to", rt),
			)
		}
	}

	channelID := payload.ChannelID
	if channelID == "" {
		channelID = snapshot.ChannelID
	}

	return []handlerwrapper.Result{{
		Topic: replyTopic,
		Payload: &pugevents.StatusPayloadV1{
			Snapshot:  snapshot,
			ChannelID: channelID,
		},
	}}, nil
}

type playerOp func(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error)

func (h *PugHandlers) playerCommand(
	ctx context.Context,
	command pugdomain.Command,
	payload *pugevents.PlayerCommandPayloadV1,
	op playerOp,
) ([]handlerwrapper.Result, error) {
	if payload.Player.ID == "" {
		h.logger.WarnContext(ctx, "Player command without player",
			attr.ExtractCorrelationID(ctx),
			attr.String("command", string(command)),
		)
		return nil, nil
	}
	if !h.limiter.Allow(payload.Player.ID) {
		return h.rateLimited(ctx, command, payload.Player.ID, 0, payload.ChannelID), nil
	}

	res, err := op(ctx, pugservice.PlayerCommand{
		Player:    payload.Player,
		ChannelID: payload.ChannelID,
	})
	if err != nil {
		return nil, err
	}
	return commandResults(res), nil
}

func (h *PugHandlers) rateLimited(ctx context.Context, command pugdomain.Command, id pugdomain.PlayerID, pick int, channelID string) []handlerwrapper.Result {
	h.logger.WarnContext(ctx, "Player rate limited",
		attr.ExtractCorrelationID(ctx),
		attr.String("command", string(command)),
		attr.String("player_id", string(id)),
	)
	h.metrics.RecordCommandRejected(ctx, string(command), ReasonRateLimited)

	// The game remembers its channel; commands may omit it.
	if channelID == "" {
		if snapshot, err := h.service.Status(ctx); err == nil {
			channelID = snapshot.ChannelID
		}
	}

	return []handlerwrapper.Result{{
		Topic: pugevents.CommandRejectedV1,
		Payload: &pugevents.CommandRejectedPayloadV1{
			Command:    string(command),
			Reason:     ReasonRateLimited,
			Message:    "too many commands, slow down",
			PlayerID:   id,
			PickNumber: pick,
			ChannelID:  channelID,
		},
	}}
}

// commandResults turns a service result into outbound messages: one
// rejection, or one message per notification followed by the final rosters
// when the draft completed.
func commandResults(res pugservice.CommandResult) []handlerwrapper.Result {
	if res.IsFailure() {
		f := res.Failure
		return []handlerwrapper.Result{{
			Topic: pugevents.CommandRejectedV1,
			Payload: &pugevents.CommandRejectedPayloadV1{
				Command:    string(f.Command),
				Reason:     f.Reason,
				Message:    f.Message,
				Phase:      f.Phase,
				PlayerID:   f.PlayerID,
				PickNumber: f.PickNumber,
				ChannelID:  f.ChannelID,
			},
		}}
	}
	if !res.IsSuccess() {
		return nil
	}

	s := res.Success
	out := make([]handlerwrapper.Result, 0, len(s.Notifications)+1)
	for _, n := range s.Notifications {
		out = append(out, handlerwrapper.Result{
			Topic: pugevents.NotificationV1,
			Payload: &pugevents.NotificationPayloadV1{
				GameID:       s.GameID,
				Phase:        s.Phase,
				ChannelID:    s.ChannelID,
				Notification: n,
			},
		})
	}
	if s.Completed != nil {
		out = append(out, handlerwrapper.Result{
			Topic: pugevents.MatchCompletedV1,
			Payload: &pugevents.MatchCompletedPayloadV1{
				GameID:    s.Completed.GameID,
				Teams:     s.Completed.Teams,
				ChannelID: s.ChannelID,
			},
		})
	}
	return out
}
