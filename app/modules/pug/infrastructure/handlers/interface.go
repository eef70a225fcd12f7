package pughandlers

import (
	"context"

	pugevents "github.com/Black-And-White-Club/pug-bot/app/modules/pug/events"
	"github.com/Black-And-White-Club/pug-bot/app/shared/handlerwrapper"
)

// Handlers defines the interface for pug event handlers.
type Handlers interface {
	// HandleJoinRequested adds the player to the queue.
	HandleJoinRequested(ctx context.Context, payload *pugevents.PlayerCommandPayloadV1) ([]handlerwrapper.Result, error)

	// HandleLeaveRequested removes the player from the open queue.
	HandleLeaveRequested(ctx context.Context, payload *pugevents.PlayerCommandPayloadV1) ([]handlerwrapper.Result, error)

	// HandleCaptainRequested seats a volunteer captain.
	HandleCaptainRequested(ctx context.Context, payload *pugevents.PlayerCommandPayloadV1) ([]handlerwrapper.Result, error)

	// HandlePickRequested drafts a player onto the requesting captain's team.
	HandlePickRequested(ctx context.Context, payload *pugevents.PickRequestedPayloadV1) ([]handlerwrapper.Result, error)

	// HandleResetRequested abandons the current game.
	HandleResetRequested(ctx context.Context, payload *pugevents.AdminCommandPayloadV1) ([]handlerwrapper.Result, error)

	// HandleStatusRequested replies with a snapshot of the current game.
	HandleStatusRequested(ctx context.Context, payload *pugevents.AdminCommandPayloadV1) ([]handlerwrapper.Result, error)
}
