package pugservice

import (
	"context"
	"time"

	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/Black-And-White-Club/pug-bot/app/shared/results"
	"github.com/google/uuid"
)

// Service is the single entry point to the active game and the match history.
type Service interface {
	Join(ctx context.Context, cmd PlayerCommand) (CommandResult, error)
	Leave(ctx context.Context, cmd PlayerCommand) (CommandResult, error)
	VolunteerCaptain(ctx context.Context, cmd PlayerCommand) (CommandResult, error)
	Pick(ctx context.Context, cmd PickCommand) (CommandResult, error)
	Reset(ctx context.Context, cmd PlayerCommand) (CommandResult, error)
	Status(ctx context.Context) (pugdomain.Snapshot, error)
	GetMatch(ctx context.Context, id uuid.UUID) (*MatchSummary, error)
	ListMatches(ctx context.Context, limit int) ([]MatchSummary, error)
}

// PlayerCommand is a command issued by a single player.
type PlayerCommand struct {
	Player    pugdomain.Player
	ChannelID string
}

// PickCommand drafts player Number onto Captain's team.
type PickCommand struct {
	Captain   pugdomain.Player
	Number    int
	ChannelID string
}

// CommandSuccess describes an accepted command.
type CommandSuccess struct {
	GameID        uuid.UUID
	Phase         pugdomain.Phase
	ChannelID     string
	Notifications []pugdomain.Notification
	JoinOutcome   pugdomain.AddOutcome
	LeaveOutcome  pugdomain.RemoveOutcome
	// Completed is set when this command finished the draft.
	Completed *pugdomain.Result
}

// CommandFailure describes a command the game rules refused.
type CommandFailure struct {
	Command    pugdomain.Command
	Reason     string
	Message    string
	Phase      pugdomain.Phase
	PlayerID   pugdomain.PlayerID
	PickNumber int
	ChannelID  string
}

// CommandResult holds either a success or a failure.
type CommandResult = results.OperationResult[CommandSuccess, CommandFailure]

// MatchSummary is a stored match as served to readers.
type MatchSummary struct {
	ID          uuid.UUID        `json:"id"`
	ChannelID   string           `json:"channel_id,omitempty"`
	Teams       []pugdomain.Team `json:"teams"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt time.Time        `json:"completed_at"`
}
