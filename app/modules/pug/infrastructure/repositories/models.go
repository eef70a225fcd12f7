package pugdb

import (
	"sort"
	"time"

	pugdomain "github.com/Black-And-White-Club/pug-bot/app/modules/pug/domain"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Match is a completed draft.
type Match struct {
	bun.BaseModel `bun:"table:pug_matches,alias:m"`

	ID          uuid.UUID      `bun:"id,pk,type:uuid"`
	ChannelID   string         `bun:"channel_id,nullzero,type:varchar(32)"`
	NumCaptains int            `bun:"num_captains,notnull"`
	TeamSize    int            `bun:"team_size,notnull"`
	CreatedAt   time.Time      `bun:"created_at,notnull"`
	ClosedAt    time.Time      `bun:"closed_at,notnull"`
	CompletedAt time.Time      `bun:"completed_at,notnull"`
	Players     []*MatchPlayer `bun:"rel:has-many,join:id=match_id"`
}

// MatchPlayer is one roster slot of a match. Captains have PickOrder 0.
type MatchPlayer struct {
	bun.BaseModel `bun:"table:pug_match_players,alias:mp"`

	MatchID    uuid.UUID `bun:"match_id,pk,type:uuid"`
	PlayerID   string    `bun:"player_id,pk,type:varchar(32)"`
	PlayerName string    `bun:"player_name,notnull"`
	TeamIndex  int       `bun:"team_index,notnull"`
	IsCaptain  bool      `bun:"is_captain,notnull,default:false"`
	PickOrder  int       `bun:"pick_order,notnull,default:0"`
	PickNumber int       `bun:"pick_number,notnull,default:0"`
}

// NewMatch flattens a game result into rows.
func NewMatch(res pugdomain.Result, cfg pugdomain.GameConfig, channelID string) *Match {
	m := &Match{
		ID:          res.GameID,
		ChannelID:   channelID,
		NumCaptains: cfg.NumCaptains,
		TeamSize:    cfg.TeamSize,
		CreatedAt:   res.CreatedAt,
		ClosedAt:    res.ClosedAt,
		CompletedAt: res.CompletedAt,
	}

	picks := make(map[pugdomain.PlayerID]pugdomain.Pick, len(res.Picks))
	order := make(map[pugdomain.PlayerID]int, len(res.Picks))
	for i, p := range res.Picks {
		picks[p.Player.ID] = p
		order[p.Player.ID] = i + 1
	}

	for teamIdx, team := range res.Teams {
		for _, p := range team.Players {
			row := &MatchPlayer{
				MatchID:    res.GameID,
				PlayerID:   string(p.ID),
				PlayerName: p.Name,
				TeamIndex:  teamIdx,
				IsCaptain:  p.ID == team.Captain.ID,
			}
			if pick, ok := picks[p.ID]; ok {
				row.PickOrder = order[p.ID]
				row.PickNumber = pick.Number
			}
			m.Players = append(m.Players, row)
		}
	}
	return m
}

// Teams rebuilds the rosters: captain first, then players in pick order.
func (m *Match) Teams() []pugdomain.Team {
	rows := make([]*MatchPlayer, len(m.Players))
	copy(rows, m.Players)
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TeamIndex != rows[j].TeamIndex {
			return rows[i].TeamIndex < rows[j].TeamIndex
		}
		return rows[i].PickOrder < rows[j].PickOrder
	})

	var teams []pugdomain.Team
	for _, r := range rows {
		for len(teams) <= r.TeamIndex {
			teams = append(teams, pugdomain.Team{})
		}
		p := pugdomain.Player{ID: pugdomain.PlayerID(r.PlayerID), Name: r.PlayerName}
		if r.IsCaptain {
			teams[r.TeamIndex].Captain = p
		}
		teams[r.TeamIndex].Players = append(teams[r.TeamIndex].Players, p)
	}
	return teams
}
