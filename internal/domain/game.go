package domain

import "time"

// Game groups a clue catalog under one identifier. Sessions reference a game
// through GameID; the engine itself does not enforce isolation between games
// beyond that field.
type Game struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Active         bool       `json:"active"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	MaxPlayers     int        `json:"maxPlayers,omitempty"`
	CurrentPlayers int        `json:"currentPlayers"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}

// DefaultGameID is used when no explicit game is configured.
const DefaultGameID = "default"

// CanJoin reports whether a new player may start a session in this game.
func (g *Game) CanJoin() bool {
	if !g.Active {
		return false
	}
	if g.MaxPlayers > 0 && g.CurrentPlayers >= g.MaxPlayers {
		return false
	}
	if g.EndTime != nil && !g.EndTime.After(time.Now()) {
		return false
	}
	return true
}
