package pughandlers

import (
	"context"

	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/google/uuid"
)

// ------------------------
// Fake Pug Service
// ------------------------

type FakePugService struct {
	trace []string

	JoinFunc             func(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error)
	LeaveFunc            func(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error)
	VolunteerCaptainFunc func(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error)
	PickFunc             func(ctx context.Context, cmd pugservice.PickCommand) (pugservice.CommandResult, error)
	ResetFunc            func(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error)
	StatusFunc           func(ctx context.Context) (pugdomain.Snapshot, error)
	GetMatchFunc         func(ctx context.Context, id uuid.UUID) (*pugservice.MatchSummary, error)
	ListMatchesFunc      func(ctx context.Context, limit int) ([]pugservice.MatchSummary, error)
}

func NewFakePugService() *FakePugService {
	return &FakePugService{
		trace: []string{},
	}
}

func (f *FakePugService) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Service Interface Implementation ---

func (f *FakePugService) Join(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error) {
	f.record("Join")
	if f.JoinFunc != nil {
		return f.JoinFunc(ctx, cmd)
	}
	return pugservice.CommandResult{}, nil
}

func (f *FakePugService) Leave(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error) {
	f.record("Leave")
	if f.LeaveFunc != nil {
		return f.LeaveFunc(ctx, cmd)
	}
	return pugservice.CommandResult{}, nil
}

func (f *FakePugService) VolunteerCaptain(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error) {
	f.record("VolunteerCaptain")
	if f.VolunteerCaptainFunc != nil {
		return f.VolunteerCaptainFunc(ctx, cmd)
	}
	return pugservice.CommandResult{}, nil
}

func (f *FakePugService) Pick(ctx context.Context, cmd pugservice.PickCommand) (pugservice.CommandResult, error) {
	f.record("Pick")
	if f.PickFunc != nil {
		return f.PickFunc(ctx, cmd)
	}
	return pugservice.CommandResult{}, nil
}

func (f *FakePugService) Reset(ctx context.Context, cmd pugservice.PlayerCommand) (pugservice.CommandResult, error) {
	f.record("Reset")
	if f.ResetFunc != nil {
		return f.ResetFunc(ctx, cmd)
	}
	return pugservice.CommandResult{}, nil
}

func (f *FakePugService) Status(ctx context.Context) (pugdomain.Snapshot, error) {
	f.record("Status")
	if f.StatusFunc != nil {
		return f.StatusFunc(ctx)
	}
	return pugdomain.Snapshot{}, nil
}

func (f *FakePugService) GetMatch(ctx context.Context, id uuid.UUID) (*pugservice.MatchSummary, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, id)
	}
	return nil, nil
}

func (f *FakePugService) ListMatches(ctx context.Context, limit int) ([]pugservice.MatchSummary, error) {
	f.record("ListMatches")
	if f.ListMatchesFunc != nil {
		return f.ListMatchesFunc(ctx, limit)
	}
	return nil, nil
}

// --- Accessors for assertions ---

func (f *FakePugService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

// Ensure the fake actually satisfies the interface
var _ pugservice.Service = (*FakePugService)(nil)
