package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/avelasco/textquest/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS clues (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		question TEXT NOT NULL,
		answer TEXT NOT NULL,
		answer_lower_case TEXT NOT NULL,
		hint TEXT,
		media_url TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS player_sessions (
		phone_number TEXT NOT NULL,
		game_id TEXT NOT NULL,
		current_clue_id TEXT NOT NULL,
		attempts INTEGER NOT NULL DEFAULT 0,
		hints_used INTEGER NOT NULL DEFAULT 0,
		completed INTEGER NOT NULL DEFAULT 0,
		start_time INTEGER NOT NULL,
		completed_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (phone_number, game_id)
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_completed ON player_sessions(completed);

	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		start_time INTEGER NOT NULL,
		end_time INTEGER,
		max_players INTEGER,
		current_players INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_games_active ON games(active);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const clueColumns = `id, type, question, answer, answer_lower_case, hint, media_url, created_at, updated_at`

func scanClue(row interface{ Scan(...any) error }) (*domain.Clue, error) {
	var clue domain.Clue
	var hint, mediaURL sql.NullString
	var createdAt, updatedAt int64

	err := row.Scan(
		&clue.ID, &clue.Type, &clue.Question, &clue.Answer, &clue.AnswerLower,
		&hint, &mediaURL, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	clue.Hint = hint.String
	clue.MediaURL = mediaURL.String
	clue.CreatedAt = time.Unix(createdAt, 0)
	clue.UpdatedAt = time.Unix(updatedAt, 0)
	return &clue, nil
}

// ListClues returns the full catalog ordered by id ascending.
func (s *SQLiteStore) ListClues(ctx context.Context) ([]*domain.Clue, error) {
	query := `SELECT ` + clueColumns + ` FROM clues ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query clues: %w", err)
	}
	defer rows.Close()

	var clues []*domain.Clue
	for rows.Next() {
		clue, err := scanClue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan clue row: %w", err)
		}
		clues = append(clues, clue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clue rows: %w", err)
	}
	return clues, nil
}

// GetClue retrieves a single clue by id.
func (s *SQLiteStore) GetClue(ctx context.Context, id string) (*domain.Clue, error) {
	query := `SELECT ` + clueColumns + ` FROM clues WHERE id = ?`

	clue, err := scanClue(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan clue row: %w", err)
	}
	return clue, nil
}

// CreateClue inserts a new clue.
func (s *SQLiteStore) CreateClue(ctx context.Context, clue *domain.Clue) error {
	query := `
	INSERT INTO clues (id, type, question, answer, answer_lower_case, hint, media_url, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		clue.ID, clue.Type, clue.Question, clue.Answer, clue.AnswerLower,
		nullString(clue.Hint), nullString(clue.MediaURL), now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert clue: %w", err)
	}
	clue.CreatedAt = now
	clue.UpdatedAt = now
	return nil
}

// UpdateClue rewrites an existing clue's attributes.
func (s *SQLiteStore) UpdateClue(ctx context.Context, clue *domain.Clue) error {
	query := `
	UPDATE clues
	SET type = ?, question = ?, answer = ?, answer_lower_case = ?, hint = ?, media_url = ?, updated_at = ?
	WHERE id = ?`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		clue.Type, clue.Question, clue.Answer, clue.AnswerLower,
		nullString(clue.Hint), nullString(clue.MediaURL), now.Unix(), clue.ID,
	)
	if err != nil {
		return fmt.Errorf("update clue: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("clue not found: %s", clue.ID)
	}
	clue.UpdatedAt = now
	return nil
}

// DeleteClue removes a clue and reports whether it existed.
func (s *SQLiteStore) DeleteClue(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM clues WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete clue: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// CountClues returns the catalog size.
func (s *SQLiteStore) CountClues(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clues`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count clues: %w", err)
	}
	return count, nil
}

const sessionColumns = `phone_number, game_id, current_clue_id, attempts, hints_used, completed, start_time, completed_at, created_at, updated_at`

func scanSession(row interface{ Scan(...any) error }) (*domain.PlayerSession, error) {
	var session domain.PlayerSession
	var completed int
	var startTime, createdAt, updatedAt int64
	var completedAt sql.NullInt64

	err := row.Scan(
		&session.PhoneNumber, &session.GameID, &session.CurrentClueID,
		&session.Attempts, &session.HintsUsed, &completed,
		&startTime, &completedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	session.Completed = completed != 0
	session.StartTime = time.Unix(startTime, 0)
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		session.CompletedAt = &t
	}
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)
	return &session, nil
}

// FindSession retrieves the session for a phone number.
func (s *SQLiteStore) FindSession(ctx context.Context, phoneNumber string) (*domain.PlayerSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM player_sessions WHERE phone_number = ?`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, phoneNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}
	return session, nil
}

// CreateSession inserts a new player session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.PlayerSession) error {
	query := `
	INSERT INTO player_sessions (phone_number, game_id, current_clue_id, attempts, hints_used, completed, start_time, completed_at, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	_, err := s.db.ExecContext(ctx, query,
		session.PhoneNumber, session.GameID, session.CurrentClueID,
		session.Attempts, session.HintsUsed, boolToInt(session.Completed),
		session.StartTime.Unix(), nullTime(session.CompletedAt),
		now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	session.CreatedAt = now
	session.UpdatedAt = now
	return nil
}

// SaveSession writes back a mutated session.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.PlayerSession) error {
	query := `
	UPDATE player_sessions
	SET current_clue_id = ?, attempts = ?, hints_used = ?, completed = ?, completed_at = ?, updated_at = ?
	WHERE phone_number = ? AND game_id = ?`

	now := time.Now()
	result, err := s.db.ExecContext(ctx, query,
		session.CurrentClueID, session.Attempts, session.HintsUsed,
		boolToInt(session.Completed), nullTime(session.CompletedAt), now.Unix(),
		session.PhoneNumber, session.GameID,
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("session not found: %s", session.PhoneNumber)
	}
	session.UpdatedAt = now
	return nil
}

// DeleteSession removes a player session and reports whether it existed.
func (s *SQLiteStore) DeleteSession(ctx context.Context, phoneNumber string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM player_sessions WHERE phone_number = ?`, phoneNumber)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListSessions returns sessions matching the filter, newest first.
func (s *SQLiteStore) ListSessions(ctx context.Context, filter SessionFilter) ([]*domain.PlayerSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM player_sessions WHERE 1=1`
	var args []any

	if filter.PhoneNumber != "" {
		query += ` AND phone_number = ?`
		args = append(args, filter.PhoneNumber)
	}
	if filter.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, boolToInt(*filter.Completed))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.PlayerSession
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}
	return sessions, nil
}

// SessionStats aggregates player and catalog counts.
func (s *SQLiteStore) SessionStats(ctx context.Context) (*Stats, error) {
	query := `
	SELECT
		(SELECT COUNT(*) FROM clues),
		COUNT(*),
		COALESCE(SUM(CASE WHEN completed = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN completed = 1 THEN 1 ELSE 0 END), 0)
	FROM player_sessions`

	var stats Stats
	err := s.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalClues, &stats.TotalPlayers, &stats.ActivePlayers, &stats.CompletedPlayers,
	)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return &stats, nil
}

const gameColumns = `id, name, description, active, start_time, end_time, max_players, current_players, created_at, updated_at`

func scanGame(row interface{ Scan(...any) error }) (*domain.Game, error) {
	var game domain.Game
	var active int
	var startTime, createdAt, updatedAt int64
	var endTime, maxPlayers sql.NullInt64

	err := row.Scan(
		&game.ID, &game.Name, &game.Description, &active,
		&startTime, &endTime, &maxPlayers, &game.CurrentPlayers,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	game.Active = active != 0
	game.StartTime = time.Unix(startTime, 0)
	if endTime.Valid {
		t := time.Unix(endTime.Int64, 0)
		game.EndTime = &t
	}
	game.MaxPlayers = int(maxPlayers.Int64)
	game.CreatedAt = time.Unix(createdAt, 0)
	game.UpdatedAt = time.Unix(updatedAt, 0)
	return &game, nil
}

// CreateGame inserts a new game record.
func (s *SQLiteStore) CreateGame(ctx context.Context, game *domain.Game) error {
	query := `
	INSERT INTO games (id, name, description, active, start_time, end_time, max_players, current_players, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	now := time.Now()
	var maxPlayers any
	if game.MaxPlayers > 0 {
		maxPlayers = game.MaxPlayers
	}
	_, err := s.db.ExecContext(ctx, query,
		game.ID, game.Name, game.Description, boolToInt(game.Active),
		game.StartTime.Unix(), nullTime(game.EndTime), maxPlayers,
		game.CurrentPlayers, now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	game.CreatedAt = now
	game.UpdatedAt = now
	return nil
}

// GetGame retrieves a game by id.
func (s *SQLiteStore) GetGame(ctx context.Context, id string) (*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ?`

	game, err := scanGame(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan game row: %w", err)
	}
	return game, nil
}

// UpdateGame rewrites an existing game's attributes.
func (s *SQLiteStore) UpdateGame(ctx context.Context, game *domain.Game) error {
	query := `
	UPDATE games
	SET name = ?, description = ?, active = ?, end_time = ?, max_players = ?, current_players = ?, updated_at = ?
	WHERE id = ?`

	now := time.Now()
	var maxPlayers any
	if game.MaxPlayers > 0 {
		maxPlayers = game.MaxPlayers
	}
	result, err := s.db.ExecContext(ctx, query,
		game.Name, game.Description, boolToInt(game.Active),
		nullTime(game.EndTime), maxPlayers, game.CurrentPlayers,
		now.Unix(), game.ID,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("game not found: %s", game.ID)
	}
	game.UpdatedAt = now
	return nil
}

// DeleteGame removes a game and reports whether it existed.
func (s *SQLiteStore) DeleteGame(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete game: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

// ListGames returns all games, newest start time first.
func (s *SQLiteStore) ListGames(ctx context.Context) ([]*domain.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game row: %w", err)
		}
		games = append(games, game)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rows: %w", err)
	}
	return games, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
