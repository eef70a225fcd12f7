package pughttp

import (
	"context"

	pugservice "github.com/Black-And-White-Club/pug-bot/app/modules/pug/application"
	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/google/uuid"
)

// FakeService serves the read operations; commands are not reachable over HTTP.
type FakeService struct {
	pugservice.Service

	trace []string

	StatusFunc      func(ctx context.Context) (pugdomain.Snapshot, error)
	GetMatchFunc    func(ctx context.Context, id uuid.UUID) (*pugservice.MatchSummary, error)
	ListMatchesFunc func(ctx context.Context, limit int) ([]pugservice.MatchSummary, error)
}

func (f *FakeService) record(step string) {
	f.trace = append(f.trace, step)
}

func (f *FakeService) Status(ctx context.Context) (pugdomain.Snapshot, error) {
	f.record("Status")
	if f.StatusFunc != nil {
		return f.StatusFunc(ctx)
	}
	return pugdomain.Snapshot{}, nil
}

func (f *FakeService) GetMatch(ctx context.Context, id uuid.UUID) (*pugservice.MatchSummary, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, id)
	}
	return nil, nil
}

func (f *FakeService) ListMatches(ctx context.Context, limit int) ([]pugservice.MatchSummary, error) {
	f.record("ListMatches")
	if f.ListMatchesFunc != nil {
		return f.ListMatchesFunc(ctx, limit)
	}
	return nil, nil
}

func (f *FakeService) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}
