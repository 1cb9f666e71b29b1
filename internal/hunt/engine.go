package hunt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avelasco/textquest/internal/domain"
)

// ClueSource lists the clue catalog. The returned sequence must be ordered
// by id ascending; that ordering defines clue advancement.
type ClueSource interface {
	ListClues(ctx context.Context) ([]*domain.Clue, error)
}

// SessionStore persists player progress. The store is the single source of
// truth: the engine reads, mutates and writes back on every operation.
type SessionStore interface {
	FindSession(ctx context.Context, phoneNumber string) (*domain.PlayerSession, error)
	CreateSession(ctx context.Context, session *domain.PlayerSession) error
	SaveSession(ctx context.Context, session *domain.PlayerSession) error
}

// Engine is the game progression engine: answer checking, hint gating and
// clue advancement over the loaded catalog.
type Engine struct {
	catalog  ClueSource
	sessions SessionStore

	mu    sync.RWMutex
	order []string
	clues map[string]*domain.Clue
}

// NewEngine creates a progression engine. Call InitializeClues before use.
func NewEngine(catalog ClueSource, sessions SessionStore) *Engine {
	return &Engine{
		catalog:  catalog,
		sessions: sessions,
		clues:    make(map[string]*domain.Clue),
	}
}

// InitializeClues (re)loads the catalog into the engine's working set.
// Idempotent: the working set is replaced wholesale, so repeated calls with
// an unchanged catalog produce the same sequence.
func (e *Engine) InitializeClues(ctx context.Context) error {
	clues, err := e.catalog.ListClues(ctx)
	if err != nil {
		return fmt.Errorf("load clue catalog: %w", err)
	}

	order := make([]string, 0, len(clues))
	byID := make(map[string]*domain.Clue, len(clues))
	for _, clue := range clues {
		order = append(order, clue.ID)
		byID[clue.ID] = clue
	}

	e.mu.Lock()
	e.order = order
	e.clues = byID
	e.mu.Unlock()
	return nil
}

// Size returns the number of loaded clues.
func (e *Engine) Size() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order)
}

// FirstClueID returns the id of the first clue in play order.
func (e *Engine) FirstClueID() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if len(e.order) == 0 {
		return "", false
	}
	return e.order[0], true
}

func (e *Engine) clueByID(id string) *domain.Clue {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.clues[id]
}

// nextClueID returns the clue following current in play order.
func (e *Engine) nextClueID(current string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for i, id := range e.order {
		if id == current && i+1 < len(e.order) {
			return e.order[i+1], true
		}
	}
	return "", false
}

// CurrentClue returns the clue at the session's pointer. A nil clue with a
// nil error means the pointer does not resolve (catalog empty or the clue
// was removed).
func (e *Engine) CurrentClue(ctx context.Context, phoneNumber string) (*domain.Clue, error) {
	session, err := e.sessions.FindSession(ctx, phoneNumber)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return e.clueByID(session.CurrentClueID), nil
}

// CheckAnswer normalizes guess and compares it against the current clue.
// A correct answer advances the session to the next clue (resetting attempt
// and hint counters) or marks it completed when no clue remains. An
// incorrect answer increments the attempt counter.
func (e *Engine) CheckAnswer(ctx context.Context, phoneNumber, guess string) (bool, error) {
	session, err := e.sessions.FindSession(ctx, phoneNumber)
	if err != nil {
		return false, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return false, ErrSessionNotFound
	}

	clue := e.clueByID(session.CurrentClueID)
	if clue == nil {
		return false, ErrClueNotFound
	}

	if !clue.CheckAnswer(guess) {
		session.RecordAttempt()
		if err := e.sessions.SaveSession(ctx, session); err != nil {
			return false, fmt.Errorf("save session: %w", err)
		}
		return false, nil
	}

	if next, ok := e.nextClueID(clue.ID); ok {
		session.AdvanceTo(next)
	} else {
		session.MarkCompleted(time.Now())
	}
	if err := e.sessions.SaveSession(ctx, session); err != nil {
		return false, fmt.Errorf("save session: %w", err)
	}
	return true, nil
}

// RequestHint returns the current clue's hint when the session is eligible:
// at least two failed attempts and no hint used yet for this clue. An empty
// string with a nil error is the valid "no hint available" result.
func (e *Engine) RequestHint(ctx context.Context, phoneNumber string) (string, error) {
	session, err := e.sessions.FindSession(ctx, phoneNumber)
	if err != nil {
		return "", fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return "", ErrSessionNotFound
	}

	if !session.CanRequestHint() {
		return "", nil
	}

	clue := e.clueByID(session.CurrentClueID)
	if clue == nil || clue.Hint == "" {
		return "", nil
	}

	session.HintsUsed++
	if err := e.sessions.SaveSession(ctx, session); err != nil {
		return "", fmt.Errorf("save session: %w", err)
	}
	return clue.Hint, nil
}

// IsComplete reports whether the session has finished the hunt.
func (e *Engine) IsComplete(ctx context.Context, phoneNumber string) (bool, error) {
	session, err := e.sessions.FindSession(ctx, phoneNumber)
	if err != nil {
		return false, fmt.Errorf("find session: %w", err)
	}
	if session == nil {
		return false, ErrSessionNotFound
	}
	return session.Completed, nil
}
