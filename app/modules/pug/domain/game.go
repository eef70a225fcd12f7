package pugdomain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is the lifecycle stage of a game.
type Phase string

const (
	PhasePlayerRegistration Phase = "player_registration"
	PhaseCaptainSelection   Phase = "captain_selection"
	PhaseDrafting           Phase = "drafting"
	PhaseComplete           Phase = "complete"
)

// GameConfig holds the sizing of a game. MaxMembers must equal
// NumCaptains*TeamSize so that every roster fills exactly when the pool runs dry.
type GameConfig struct {
	MaxMembers  int
	NumCaptains int
	TeamSize    int
	// Now overrides the clock used for timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Validate checks the sizing rules.
func (c GameConfig) Validate() error {
	switch {
	case c.MaxMembers <= 0:
		return fmt.Errorf("%w: max members must be positive, got %d", ErrInvalidConfig, c.MaxMembers)
	case c.NumCaptains <= 0:
		return fmt.Errorf("%w: captain count must be positive, got %d", ErrInvalidConfig, c.NumCaptains)
	case c.TeamSize <= 0:
		return fmt.Errorf("%w: team size must be positive, got %d", ErrInvalidConfig, c.TeamSize)
	case c.MaxMembers != c.NumCaptains*c.TeamSize:
		return fmt.Errorf("%w: max members %d must equal %d captains x team size %d",
			ErrInvalidConfig, c.MaxMembers, c.NumCaptains, c.TeamSize)
	}
	return nil
}

// Pick records one draft selection.
type Pick struct {
	Round   int       `json:"round"`
	Number  int       `json:"number"`
	Captain Player    `json:"captain"`
	Player  Player    `json:"player"`
	At      time.Time `json:"at"`
}

// Game drives one queue from registration through the draft. Game is not safe
// for concurrent use; callers serialize access.
type Game struct {
	id          uuid.UUID
	phase       Phase
	pool        *DraftPool
	captains    []Player
	teams       map[PlayerID][]Player
	numCaptains int
	teamSize    int
	turn        int
	picks       []Pick
	now         func() time.Time

	createdAt   time.Time
	closedAt    time.Time
	completedAt time.Time
}

// NewGame starts a game in PlayerRegistration. A seed list that fills the
// pool moves the game straight to CaptainSelection.
func NewGame(cfg GameConfig, seed ...Player) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := NewDraftPool(cfg.MaxMembers, seed...)
	if err != nil {
		return nil, err
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	g := &Game{
		id:          uuid.New(),
		phase:       PhasePlayerRegistration,
		pool:        pool,
		teams:       make(map[PlayerID][]Player, cfg.NumCaptains),
		numCaptains: cfg.NumCaptains,
		teamSize:    cfg.TeamSize,
		now:         now,
		createdAt:   now(),
	}
	if !pool.IsOpen() {
		g.phase = PhaseCaptainSelection
		g.closedAt = g.createdAt
	}
	return g, nil
}

func (g *Game) reject(cmd Command, playerID PlayerID, pick int, err error) error {
	return &CommandError{
		Command:    cmd,
		Phase:      g.phase,
		PlayerID:   playerID,
		PickNumber: pick,
		Err:        err,
	}
}

// Join adds p to the queue. A duplicate join is a no-op reported through the
// outcome. Filling the last slot closes the queue and starts captain selection.
func (g *Game) Join(p Player) (Notification, AddOutcome, error) {
	if g.phase != PhasePlayerRegistration {
		return Notification{}, "", g.reject(CommandJoin, p.ID, 0, ErrInvalidPhaseTransition)
	}

	outcome, err := g.pool.AddMember(p)
	if err != nil {
		return Notification{}, "", g.reject(CommandJoin, p.ID, 0, err)
	}

	switch outcome {
	case AddedQueueNowFull:
		g.phase = PhaseCaptainSelection
		g.closedAt = g.now()
		return QueueFullNotification(g.pool.Members()), outcome, nil
	default:
		return QueueProgressNotification(g.pool.Members(), g.pool.MaxMembers()), outcome, nil
	}
}

// Leave removes p from the queue. Only allowed while the queue is open.
func (g *Game) Leave(p Player) (Notification, RemoveOutcome, error) {
	if g.phase != PhasePlayerRegistration {
		return Notification{}, "", g.reject(CommandLeave, p.ID, 0, ErrInvalidPhaseTransition)
	}

	outcome, err := g.pool.RemoveMember(p)
	if err != nil {
		return Notification{}, "", g.reject(CommandLeave, p.ID, 0, err)
	}
	return QueueProgressNotification(g.pool.Members(), g.pool.MaxMembers()), outcome, nil
}

// AssignCaptain seats a single captain. Seating the last captain starts the draft.
func (g *Game) AssignCaptain(p Player) (Notification, error) {
	return g.AssignCaptains([]Player{p})
}

// AssignCaptains seats several captains at once. Every player is validated
// before any is seated, so a rejected call leaves the game unchanged.
func (g *Game) AssignCaptains(players []Player) (Notification, error) {
	if g.phase != PhaseCaptainSelection {
		var id PlayerID
		if len(players) > 0 {
			id = players[0].ID
		}
		return Notification{}, g.reject(CommandCaptain, id, 0, ErrInvalidPhaseTransition)
	}

	seen := make(map[PlayerID]struct{}, len(players))
	for _, p := range players {
		if !g.pool.Contains(p.ID) {
			return Notification{}, g.reject(CommandCaptain, p.ID, 0, ErrNotAMember)
		}
		if _, dup := seen[p.ID]; dup || g.isCaptain(p.ID) {
			return Notification{}, g.reject(CommandCaptain, p.ID, 0, ErrAlreadyCaptain)
		}
		seen[p.ID] = struct{}{}
	}
	if len(g.captains)+len(players) > g.numCaptains {
		return Notification{}, g.reject(CommandCaptain, players[0].ID, 0,
			fmt.Errorf("%w: only %d captain slots remain", ErrInvalidPhaseTransition, g.numCaptains-len(g.captains)))
	}

	for _, p := range players {
		// Use the registered name in case the caller only knew the ID.
		member := g.pool.members[indexOf(g.pool.members, p.ID)]
		g.pool.RetractAvailablePlayer(member.ID)
		g.captains = append(g.captains, member)
		g.teams[member.ID] = []Player{member}
	}

	if len(g.captains) < g.numCaptains {
		return CaptainUpdateNotification(g.Captains(), g.numCaptains), nil
	}

	g.phase = PhaseDrafting
	g.turn = 0
	if g.pool.AvailableCount() == 0 {
		g.complete()
		return DraftCompleteNotification(g.Teams()), nil
	}
	return DraftUpdateNotification(g.pool.AvailablePlayers(), g.Teams(), g.captains[g.turn]), nil
}

// Pick moves player number n from the index onto the captain's roster. The
// captain must be the one whose turn it is. All checks run before anything
// changes.
func (g *Game) Pick(captain Player, n int) (Notification, error) {
	switch g.phase {
	case PhaseDrafting:
	case PhaseCaptainSelection:
		return Notification{}, g.reject(CommandPick, captain.ID, n, ErrCaptainSlotsUnfilled)
	default:
		return Notification{}, g.reject(CommandPick, captain.ID, n, ErrInvalidPhaseTransition)
	}

	if !g.isCaptain(captain.ID) {
		return Notification{}, g.reject(CommandPick, captain.ID, n, ErrNotACaptain)
	}
	current := g.captains[g.turn]
	if current.ID != captain.ID {
		return Notification{}, g.reject(CommandPick, captain.ID, n, ErrNotYourTurn)
	}

	picked, err := g.pool.PopAvailablePlayer(n)
	if err != nil {
		return Notification{}, g.reject(CommandPick, captain.ID, n, err)
	}

	g.teams[current.ID] = append(g.teams[current.ID], picked)
	g.picks = append(g.picks, Pick{
		Round:   len(g.picks)/g.numCaptains + 1,
		Number:  n,
		Captain: current,
		Player:  picked,
		At:      g.now(),
	})
	g.turn = (g.turn + 1) % g.numCaptains

	if g.pool.AvailableCount() == 0 {
		g.complete()
		return DraftCompleteNotification(g.Teams()), nil
	}
	return DraftUpdateNotification(g.pool.AvailablePlayers(), g.Teams(), g.captains[g.turn]), nil
}

func (g *Game) complete() {
	g.phase = PhaseComplete
	g.completedAt = g.now()
}

func (g *Game) isCaptain(id PlayerID) bool {
	return indexOf(g.captains, id) >= 0
}

// ID returns the game identifier.
func (g *Game) ID() uuid.UUID { return g.id }

// Phase returns the current phase.
func (g *Game) Phase() Phase { return g.phase }

// Config returns the sizing the game was created with.
func (g *Game) Config() GameConfig {
	return GameConfig{
		MaxMembers:  g.pool.MaxMembers(),
		NumCaptains: g.numCaptains,
		TeamSize:    g.teamSize,
		Now:         g.now,
	}
}

// Members returns the queue members in join order.
func (g *Game) Members() []Player { return g.pool.Members() }

// Captains returns the seated captains in seating order.
func (g *Game) Captains() []Player {
	out := make([]Player, len(g.captains))
	copy(out, g.captains)
	return out
}

// AvailablePlayers returns the undrafted players ordered by pick number.
func (g *Game) AvailablePlayers() []NumberedPlayer { return g.pool.AvailablePlayers() }

// Teams returns the rosters in captain seating order.
func (g *Game) Teams() []Team {
	teams := make([]Team, len(g.captains))
	for i, c := range g.captains {
		roster := g.teams[c.ID]
		players := make([]Player, len(roster))
		copy(players, roster)
		teams[i] = Team{Captain: c, Players: players}
	}
	return teams
}

// CurrentCaptain returns the captain on the clock while drafting.
func (g *Game) CurrentCaptain() (Player, bool) {
	if g.phase != PhaseDrafting {
		return Player{}, false
	}
	return g.captains[g.turn], true
}

// Picks returns the draft log in order.
func (g *Game) Picks() []Pick {
	out := make([]Pick, len(g.picks))
	copy(out, g.picks)
	return out
}

// Snapshot is a read-only copy of the game state.
type Snapshot struct {
	GameID      uuid.UUID        `json:"game_id"`
	Phase       Phase            `json:"phase"`
	MaxMembers  int              `json:"max_members"`
	NumCaptains int              `json:"num_captains"`
	TeamSize    int              `json:"team_size"`
	Members     []Player         `json:"members"`
	Captains    []Player         `json:"captains"`
	Teams       []Team           `json:"teams"`
	Available   []NumberedPlayer `json:"available"`
	NextCaptain *Player          `json:"next_captain,omitempty"`
	Picks       []Pick           `json:"picks"`
	CreatedAt   time.Time        `json:"created_at"`
	// ChannelID is filled in by the owner of the game, which tracks where
	// it is being played.
	ChannelID string `json:"channel_id,omitempty"`
}

// Snapshot copies the current state.
func (g *Game) Snapshot() Snapshot {
	s := Snapshot{
		GameID:      g.id,
		Phase:       g.phase,
		MaxMembers:  g.pool.MaxMembers(),
		NumCaptains: g.numCaptains,
		TeamSize:    g.teamSize,
		Members:     g.Members(),
		Captains:    g.Captains(),
		Teams:       g.Teams(),
		Available:   g.AvailablePlayers(),
		Picks:       g.Picks(),
		CreatedAt:   g.createdAt,
	}
	if next, ok := g.CurrentCaptain(); ok {
		s.NextCaptain = &next
	}
	return s
}

// Result is the outcome of a completed game.
type Result struct {
	GameID      uuid.UUID `json:"game_id"`
	Teams       []Team    `json:"teams"`
	Picks       []Pick    `json:"picks"`
	CreatedAt   time.Time `json:"created_at"`
	ClosedAt    time.Time `json:"closed_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Result returns the final rosters. Only available once the draft is complete.
func (g *Game) Result() (Result, error) {
	if g.phase != PhaseComplete {
		return Result{}, g.reject(CommandResult, "", 0, ErrInvalidPhaseTransition)
	}
	return Result{
		GameID:      g.id,
		Teams:       g.Teams(),
		Picks:       g.Picks(),
		CreatedAt:   g.createdAt,
		ClosedAt:    g.closedAt,
		CompletedAt: g.completedAt,
	}, nil
}
