// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/avelasco/textquest/internal/domain"
)

// SessionFilter narrows ListSessions results. Zero values match everything.
type SessionFilter struct {
	PhoneNumber string
	Completed   *bool
}

// Stats summarizes catalog size and player progress across all sessions.
type Stats struct {
	TotalClues       int `json:"totalClues"`
	TotalPlayers     int `json:"totalPlayers"`
	ActivePlayers    int `json:"activePlayers"`
	CompletedPlayers int `json:"completedPlayers"`
}

// Repository defines the interface for persisting clues, sessions and games.
// Lookup methods return (nil, nil) when the record does not exist.
type Repository interface {
	// ListClues returns the full catalog ordered by id ascending. This
	// ordering defines the play sequence and must be stable.
	ListClues(ctx context.Context) ([]*domain.Clue, error)

	// GetClue retrieves a single clue by id.
	GetClue(ctx context.Context, id string) (*domain.Clue, error)

	// CreateClue inserts a new clue. Fails if the id already exists.
	CreateClue(ctx context.Context, clue *domain.Clue) error

	// UpdateClue rewrites an existing clue's attributes.
	UpdateClue(ctx context.Context, clue *domain.Clue) error

	// DeleteClue removes a clue and reports whether it existed.
	DeleteClue(ctx context.Context, id string) (bool, error)

	// CountClues returns the catalog size.
	CountClues(ctx context.Context) (int, error)

	// FindSession retrieves the session for a phone number.
	FindSession(ctx context.Context, phoneNumber string) (*domain.PlayerSession, error)

	// CreateSession inserts a new player session.
	CreateSession(ctx context.Context, session *domain.PlayerSession) error

	// SaveSession writes back a mutated session.
	SaveSession(ctx context.Context, session *domain.PlayerSession) error

	// DeleteSession removes a player session and reports whether it existed.
	DeleteSession(ctx context.Context, phoneNumber string) (bool, error)

	// ListSessions returns sessions matching the filter, newest first.
	ListSessions(ctx context.Context, filter SessionFilter) ([]*domain.PlayerSession, error)

	// SessionStats aggregates player and catalog counts.
	SessionStats(ctx context.Context) (*Stats, error)

	// CreateGame inserts a new game record.
	CreateGame(ctx context.Context, game *domain.Game) error

	// GetGame retrieves a game by id.
	GetGame(ctx context.Context, id string) (*domain.Game, error)

	// UpdateGame rewrites an existing game's attributes.
	UpdateGame(ctx context.Context, game *domain.Game) error

	// DeleteGame removes a game and reports whether it existed.
	DeleteGame(ctx context.Context, id string) (bool, error)

	// ListGames returns all games, newest start time first.
	ListGames(ctx context.Context) ([]*domain.Game, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
