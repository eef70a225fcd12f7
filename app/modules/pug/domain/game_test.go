package pugdomain

import (
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var fixedNow = func() time.Time { return time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC) }

func newTestGame(t *testing.T, numCaptains, teamSize int, seed ...Player) *Game {
	t.Helper()
	g, err := NewGame(GameConfig{
		MaxMembers:  numCaptains * teamSize,
		NumCaptains: numCaptains,
		TeamSize:    teamSize,
		Now:         fixedNow,
	}, seed...)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func TestGameJoinClosesQueue(t *testing.T) {
	ps := players(2)
	g := newTestGame(t, 2, 1)

	n, outcome, err := g.Join(ps[0])
	if err != nil || outcome != AddedQueueOpen {
		t.Fatalf("first join: got %q, %v", outcome, err)
	}
	if n.Footer != "1 of 2 users in queue" || n.Kind != KindQueueProgress {
		t.Fatalf("unexpected notification: %+v", n)
	}

	n, outcome, err = g.Join(ps[1])
	if err != nil || outcome != AddedQueueNowFull {
		t.Fatalf("second join: got %q, %v", outcome, err)
	}
	if n.Kind != KindQueueFull || n.Footer != "The queue is full! Now picking captains!" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if g.Phase() != PhaseCaptainSelection {
		t.Fatalf("phase = %s, want %s", g.Phase(), PhaseCaptainSelection)
	}
	if len(g.AvailablePlayers()) != 2 {
		t.Fatalf("index should hold every member, got %v", g.AvailablePlayers())
	}
}

func TestGameDuplicateJoin(t *testing.T) {
	ps := players(1)
	g := newTestGame(t, 2, 2, ps[0])

	_, outcome, err := g.Join(ps[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outcome != AlreadyMember {
		t.Fatalf("got %q, want %q", outcome, AlreadyMember)
	}
	if len(g.Members()) != 1 {
		t.Fatalf("members changed: %v", g.Members())
	}
}

func TestGameRejectsQueueChangesAfterClosure(t *testing.T) {
	ps := players(3)
	g := newTestGame(t, 2, 1, ps[0], ps[1])
	before := g.Snapshot()

	_, _, err := g.Join(ps[2])
	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) || !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("join after closure: got %v", err)
	}
	if cmdErr.Phase != PhaseCaptainSelection || cmdErr.Command != CommandJoin {
		t.Fatalf("unexpected error context: %+v", cmdErr)
	}

	if _, _, err := g.Leave(ps[0]); !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("leave after closure: got %v", err)
	}

	if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestGameLeave(t *testing.T) {
	ps := players(3)
	g := newTestGame(t, 2, 2, ps...)

	n, outcome, err := g.Leave(ps[1])
	if err != nil || outcome != Removed {
		t.Fatalf("got %q, %v", outcome, err)
	}
	if n.Footer != "2 of 4 users in queue" {
		t.Fatalf("footer = %q", n.Footer)
	}

	_, outcome, err = g.Leave(ps[1])
	if err != nil || outcome != NotMember {
		t.Fatalf("second leave: got %q, %v", outcome, err)
	}

	_, added, err := g.Join(ps[1])
	if err != nil || added != AddedQueueOpen {
		t.Fatalf("rejoin: got %q, %v", added, err)
	}
	if diff := cmp.Diff([]Player{ps[0], ps[2], ps[1]}, g.Members()); diff != "" {
		t.Fatalf("rejoined player should be last (-want +got):\n%s", diff)
	}
}

func TestAssignCaptains(t *testing.T) {
	ps := players(4)
	outsider := Player{ID: "ghost", Name: "Ghost"}

	tests := []struct {
		name    string
		assign  [][]Player
		wantErr error
		want    Phase
	}{
		{name: "one at a time", assign: [][]Player{{ps[2]}, {ps[0]}}, want: PhaseDrafting},
		{name: "batch", assign: [][]Player{{ps[0], ps[1]}}, want: PhaseDrafting},
		{name: "non member", assign: [][]Player{{outsider}}, wantErr: ErrNotAMember, want: PhaseCaptainSelection},
		{name: "same player twice", assign: [][]Player{{ps[0]}, {ps[0]}}, wantErr: ErrAlreadyCaptain, want: PhaseCaptainSelection},
		{name: "duplicate in batch", assign: [][]Player{{ps[1], ps[1]}}, wantErr: ErrAlreadyCaptain, want: PhaseCaptainSelection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGame(t, 2, 2, ps...)
			var err error
			for _, batch := range tt.assign {
				if _, err = g.AssignCaptains(batch); err != nil {
					break
				}
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if g.Phase() != tt.want {
				t.Fatalf("phase = %s, want %s", g.Phase(), tt.want)
			}
		})
	}
}

func TestAssignCaptainsRejectedBatchLeavesStateUntouched(t *testing.T) {
	ps := players(4)
	g := newTestGame(t, 2, 2, ps...)
	before := g.Snapshot()

	if _, err := g.AssignCaptains([]Player{ps[0], {ID: "ghost"}}); !errors.Is(err, ErrNotAMember) {
		t.Fatalf("got %v, want %v", err, ErrNotAMember)
	}
	if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
		t.Fatalf("state changed (-before +after):\n%s", diff)
	}
}

func TestAssignCaptainOutsideCaptainSelection(t *testing.T) {
	ps := players(2)
	g := newTestGame(t, 2, 2, ps...)

	if _, err := g.AssignCaptain(ps[0]); !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("got %v, want %v", err, ErrInvalidPhaseTransition)
	}
}

func TestRoundRobinDraftToCompletion(t *testing.T) {
	ps := players(8)
	g := newTestGame(t, 2, 4, ps...)

	n, err := g.AssignCaptains([]Player{ps[0], ps[1]})
	if err != nil {
		t.Fatalf("assign captains: %v", err)
	}
	if n.Kind != KindDraftUpdate || n.Footer != "Player 1 is up to pick" {
		t.Fatalf("unexpected notification: %+v", n)
	}
	if got := len(g.AvailablePlayers()); got != 6 {
		t.Fatalf("captains must leave the index, %d players remain", got)
	}

	captains := g.Captains()
	for i, number := range []int{3, 4, 5, 6, 7, 8} {
		captain := captains[i%2]
		if next, _ := g.CurrentCaptain(); next.ID != captain.ID {
			t.Fatalf("pick %d: on the clock %s, want %s", i+1, next.ID, captain.ID)
		}
		n, err = g.Pick(captain, number)
		if err != nil {
			t.Fatalf("pick %d: %v", i+1, err)
		}
	}

	if g.Phase() != PhaseComplete {
		t.Fatalf("phase = %s, want %s", g.Phase(), PhaseComplete)
	}
	if n.Kind != KindDraftComplete {
		t.Fatalf("last notification kind = %s", n.Kind)
	}
	if len(g.AvailablePlayers()) != 0 {
		t.Fatalf("index should be empty")
	}

	wantTeams := []Team{
		{Captain: ps[0], Players: []Player{ps[0], ps[2], ps[4], ps[6]}},
		{Captain: ps[1], Players: []Player{ps[1], ps[3], ps[5], ps[7]}},
	}
	if diff := cmp.Diff(wantTeams, g.Teams()); diff != "" {
		t.Fatalf("teams mismatch (-want +got):\n%s", diff)
	}

	var union []Player
	for _, team := range g.Teams() {
		union = append(union, team.Players...)
	}
	byID := cmpopts.SortSlices(func(a, b Player) bool { return a.ID < b.ID })
	if diff := cmp.Diff(g.Members(), union, byID); diff != "" {
		t.Fatalf("rosters must cover every member exactly once (-want +got):\n%s", diff)
	}

	res, err := g.Result()
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if len(res.Picks) != 6 || res.Picks[5].Round != 3 {
		t.Fatalf("unexpected pick log: %+v", res.Picks)
	}
}

func TestPickRejections(t *testing.T) {
	ps := players(4)

	drafting := func(t *testing.T) *Game {
		g := newTestGame(t, 2, 2, ps...)
		if _, err := g.AssignCaptains([]Player{ps[0], ps[1]}); err != nil {
			t.Fatalf("assign captains: %v", err)
		}
		return g
	}

	tests := []struct {
		name    string
		game    func(t *testing.T) *Game
		captain Player
		number  int
		wantErr error
	}{
		{name: "out of turn", game: drafting, captain: ps[1], number: 3, wantErr: ErrNotYourTurn},
		{name: "missing number", game: drafting, captain: ps[0], number: 9, wantErr: ErrPickNotFound},
		{name: "captain's own number", game: drafting, captain: ps[0], number: 1, wantErr: ErrPickNotFound},
		{name: "not a captain", game: drafting, captain: ps[2], number: 4, wantErr: ErrNotACaptain},
		{
			name:    "captains unfilled",
			game:    func(t *testing.T) *Game { return newTestGame(t, 2, 2, ps...) },
			captain: ps[0], number: 1, wantErr: ErrCaptainSlotsUnfilled,
		},
		{
			name:    "registration",
			game:    func(t *testing.T) *Game { return newTestGame(t, 2, 2, ps[0]) },
			captain: ps[0], number: 1, wantErr: ErrInvalidPhaseTransition,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game(t)
			before := g.Snapshot()

			_, err := g.Pick(tt.captain, tt.number)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			var cmdErr *CommandError
			if !errors.As(err, &cmdErr) || cmdErr.PickNumber != tt.number {
				t.Fatalf("expected CommandError carrying pick %d, got %v", tt.number, err)
			}
			if diff := cmp.Diff(before, g.Snapshot()); diff != "" {
				t.Fatalf("state changed (-before +after):\n%s", diff)
			}
		})
	}
}

func TestCompleteGameAcceptsNoCommands(t *testing.T) {
	ps := players(2)
	g := newTestGame(t, 2, 1, ps...)
	if _, err := g.AssignCaptains(ps); err != nil {
		t.Fatalf("assign captains: %v", err)
	}
	if g.Phase() != PhaseComplete {
		t.Fatalf("teams of one are complete once captains are seated, got %s", g.Phase())
	}

	if _, _, err := g.Join(Player{ID: "late"}); !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("join: got %v", err)
	}
	if _, err := g.Pick(ps[0], 1); !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("pick: got %v", err)
	}
}

func TestResultBeforeCompletion(t *testing.T) {
	g := newTestGame(t, 2, 2)
	if _, err := g.Result(); !errors.Is(err, ErrInvalidPhaseTransition) {
		t.Fatalf("got %v, want %v", err, ErrInvalidPhaseTransition)
	}
}

func TestGameConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  GameConfig
		ok   bool
	}{
		{name: "default sizing", cfg: GameConfig{MaxMembers: 12, NumCaptains: 2, TeamSize: 6}, ok: true},
		{name: "mismatched capacity", cfg: GameConfig{MaxMembers: 10, NumCaptains: 2, TeamSize: 6}},
		{name: "no captains", cfg: GameConfig{MaxMembers: 6, NumCaptains: 0, TeamSize: 6}},
		{name: "no capacity", cfg: GameConfig{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("got %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}

func TestReason(t *testing.T) {
	g := newTestGame(t, 2, 2)
	_, err := g.Pick(Player{ID: "x"}, 1)
	if got := Reason(err); got != "invalid_phase_transition" {
		t.Fatalf("Reason = %q", got)
	}

	codes := []string{Reason(ErrNotYourTurn), Reason(ErrPickNotFound), Reason(errors.New("boom"))}
	sort.Strings(codes)
	if diff := cmp.Diff([]string{"not_your_turn", "pick_not_found", "unknown"}, codes); diff != "" {
		t.Fatalf("codes mismatch (-want +got):\n%s", diff)
	}
}
