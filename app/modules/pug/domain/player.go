package pugdomain

// PlayerID is the chat-platform identifier of a player.
type PlayerID string

// Player is a chat participant. Two players are the same player when their IDs match;
// the display name is carried along for rendering only.
type Player struct {
	ID   PlayerID `json:"id"`
	Name string   `json:"name"`
}

// Is reports whether p and other refer to the same player.
func (p Player) Is(other Player) bool {
	return p.ID == other.ID
}

// NumberedPlayer is an entry of the available-player index.
type NumberedPlayer struct {
	Number int    `json:"number"`
	Player Player `json:"player"`
}

func indexOf(players []Player, id PlayerID) int {
	for i, p := range players {
		if p.ID == id {
			return i
		}
	}
	return -1
}
