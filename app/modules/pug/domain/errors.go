package pugdomain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrAlreadyMember is reported when a player joins a queue they are already in.
	ErrAlreadyMember = errors.New("player is already in the queue")
	// ErrNotAMember is reported when a command names a player outside the queue.
	ErrNotAMember = errors.New("player is not in the queue")
	// ErrInvalidPhaseTransition is returned when a command is not allowed in the current phase.
	ErrInvalidPhaseTransition = errors.New("command not allowed in current phase")
	// ErrPickNotFound is returned when a pick number is not in the available-player index.
	ErrPickNotFound = errors.New("pick number not available")
	// ErrNotYourTurn is returned when a captain picks out of turn.
	ErrNotYourTurn = errors.New("not this captain's turn to pick")
	// ErrCaptainSlotsUnfilled is returned when drafting is attempted before all captains are seated.
	ErrCaptainSlotsUnfilled = errors.New("captain slots are not filled yet")
	// ErrNotACaptain is returned when a non-captain tries to pick.
	ErrNotACaptain = errors.New("player is not a captain")
	// ErrAlreadyCaptain is returned when a captain is seated twice.
	ErrAlreadyCaptain = errors.New("player is already a captain")
	// ErrQueueClosed is returned when the member list of a full pool would change.
	ErrQueueClosed = errors.New("queue is closed")
	// ErrQueueFull is returned when a pool is seeded with more players than it can hold.
	ErrQueueFull = errors.New("queue is full")
	// ErrInvalidCapacity is returned for a non-positive pool capacity.
	ErrInvalidCapacity = errors.New("queue capacity must be positive")
	// ErrInvalidConfig is returned for inconsistent game settings.
	ErrInvalidConfig = errors.New("invalid game configuration")
)

// Command names a game command for error reporting.
type Command string

const (
	CommandJoin    Command = "join"
	CommandLeave   Command = "leave"
	CommandCaptain Command = "captain"
	CommandPick    Command = "pick"
	CommandResult  Command = "result"
)

// CommandError describes a rejected command. It wraps one of the sentinel errors
// above so callers can match with errors.Is.
type CommandError struct {
	Command    Command
	Phase      Phase
	PlayerID   PlayerID
	PickNumber int
	Err        error
}

func (e *CommandError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s rejected in phase %s", e.Command, e.Phase)
	if e.PlayerID != "" {
		fmt.Fprintf(&b, " for player %s", e.PlayerID)
	}
	if e.PickNumber != 0 {
		fmt.Fprintf(&b, " (pick %d)", e.PickNumber)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Reason returns a short machine-readable code for the wrapped error.
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrNotAMember):
		return "not_a_member"
	case errors.Is(err, ErrInvalidPhaseTransition):
		return "invalid_phase_transition"
	case errors.Is(err, ErrPickNotFound):
		return "pick_not_found"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrCaptainSlotsUnfilled):
		return "captain_slots_unfilled"
	case errors.Is(err, ErrNotACaptain):
		return "not_a_captain"
	case errors.Is(err, ErrAlreadyCaptain):
		return "already_captain"
	case errors.Is(err, ErrQueueClosed):
		return "queue_closed"
	case errors.Is(err, ErrQueueFull):
		return "queue_full"
	default:
		return "unknown"
	}
}
