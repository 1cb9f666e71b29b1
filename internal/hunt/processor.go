package hunt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/avelasco/textquest/internal/domain"
	"github.com/avelasco/textquest/internal/events"
)

// Sender is the outbound delivery pipeline replies are handed to. Both
// methods are fire-and-forget.
type Sender interface {
	Send(to, body string)
	SendMedia(to, body, mediaURL string)
}

// GameStore reads and writes game records so session creation can honor
// capacity and activity limits.
type GameStore interface {
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	UpdateGame(ctx context.Context, game *domain.Game) error
}

// Player-facing reply texts.
const (
	replyWelcome    = "Welcome to the Scavenger Hunt! Here's your first clue:\n\n%s"
	replyNextClue   = "Correct! Here's your next clue:\n\n%s"
	replyComplete   = "Congratulations! You have completed the scavenger hunt!"
	replyIncorrect  = "Sorry, that answer is incorrect. Try again!"
	replyHint       = "Hint: %s"
	replyNoHint     = "Sorry, no hint is available for this clue yet. Try making a few more attempts first."
	replyStartFirst = "Please start the game first by sending START"
	replyNoClues    = "Sorry, no clues are available at the moment."
	replyGameClosed = "Sorry, this game is not accepting new players right now."
	replyStaleClue  = "Sorry, we couldn't find your current clue. Please send START to continue."
	replyHelp       = "Available commands:\n" +
		"START - Start the scavenger hunt\n" +
		"HINT - Get a hint for the current clue\n" +
		"ANSWER <your answer> - Submit an answer for the current clue\n" +
		"HELP - Show this help message"
)

// Processor turns one inbound message into state changes and at most one
// queued reply. All collaborators are injected at construction.
type Processor struct {
	engine   *Engine
	sessions SessionStore
	games    GameStore
	sender   Sender
	hub      *events.Hub
	locks    *addressLocks
	gameID   string
}

// NewProcessor creates the session orchestrator. hub may be nil.
func NewProcessor(engine *Engine, sessions SessionStore, games GameStore, sender Sender, hub *events.Hub) *Processor {
	return &Processor{
		engine:   engine,
		sessions: sessions,
		games:    games,
		sender:   sender,
		hub:      hub,
		locks:    newAddressLocks(),
		gameID:   domain.DefaultGameID,
	}
}

// HandleInbound processes one inbound message. It never returns an error
// and never panics outward: every failure is logged and swallowed so the
// webhook can always acknowledge receipt. Commands for the same phone
// number are serialized to prevent lost session updates.
func (p *Processor) HandleInbound(ctx context.Context, phoneNumber, body string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while processing inbound message", "phone", phoneNumber, "panic", r)
		}
	}()

	unlock := p.locks.lock(phoneNumber)
	defer unlock()

	command, payload := ParseCommand(body)
	p.hub.Publish(events.KindMessageReceived, phoneNumber, command.String())

	var err error
	switch command {
	case CommandStart:
		err = p.handleStart(ctx, phoneNumber)
	case CommandHint:
		err = p.handleHint(ctx, phoneNumber)
	case CommandAnswer:
		err = p.handleAnswer(ctx, phoneNumber, payload)
	default:
		p.sender.Send(phoneNumber, replyHelp)
	}
	if err != nil {
		slog.Error("Failed to process inbound message",
			"phone", phoneNumber,
			"command", command.String(),
			"error", err)
	}
}

// handleStart creates a session on first contact, or re-shows the current
// clue without resetting progress. When the catalog is empty no session is
// created: a session must never point at a clue that does not exist.
func (p *Processor) handleStart(ctx context.Context, phoneNumber string) error {
	session, err := p.sessions.FindSession(ctx, phoneNumber)
	if err != nil {
		return fmt.Errorf("find session: %w", err)
	}

	if session == nil {
		if p.engine.Size() == 0 {
			if err := p.engine.InitializeClues(ctx); err != nil {
				return err
			}
		}
		firstID, ok := p.engine.FirstClueID()
		if !ok {
			p.sender.Send(phoneNumber, replyNoClues)
			return nil
		}

		// A missing game record is allowed (development without seeding);
		// a present one must be open before a session is created.
		game, err := p.games.GetGame(ctx, p.gameID)
		if err != nil {
			return fmt.Errorf("find game: %w", err)
		}
		if game != nil && !game.CanJoin() {
			p.sender.Send(phoneNumber, replyGameClosed)
			return nil
		}

		session = &domain.PlayerSession{
			PhoneNumber:   phoneNumber,
			GameID:        p.gameID,
			CurrentClueID: firstID,
			StartTime:     time.Now(),
		}
		if err := p.sessions.CreateSession(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		if game != nil {
			game.CurrentPlayers++
			if err := p.games.UpdateGame(ctx, game); err != nil {
				slog.Warn("Failed to update player count", "game", game.ID, "error", err)
			}
		}
	}

	clue, err := p.engine.CurrentClue(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if clue == nil {
		p.sender.Send(phoneNumber, replyNoClues)
		return nil
	}
	p.sendClue(phoneNumber, fmt.Sprintf(replyWelcome, clue.Question), clue)
	return nil
}

func (p *Processor) handleHint(ctx context.Context, phoneNumber string) error {
	hint, err := p.engine.RequestHint(ctx, phoneNumber)
	if errors.Is(err, ErrSessionNotFound) {
		p.sender.Send(phoneNumber, replyStartFirst)
		return nil
	}
	if err != nil {
		return err
	}

	if hint != "" {
		p.sender.Send(phoneNumber, fmt.Sprintf(replyHint, hint))
	} else {
		p.sender.Send(phoneNumber, replyNoHint)
	}
	return nil
}

func (p *Processor) handleAnswer(ctx context.Context, phoneNumber, answer string) error {
	correct, err := p.engine.CheckAnswer(ctx, phoneNumber, answer)
	switch {
	case errors.Is(err, ErrSessionNotFound):
		p.sender.Send(phoneNumber, replyStartFirst)
		return nil
	case errors.Is(err, ErrClueNotFound):
		slog.Warn("Session points at a missing clue", "phone", phoneNumber)
		p.sender.Send(phoneNumber, replyStaleClue)
		return nil
	case err != nil:
		return err
	}

	if !correct {
		p.sender.Send(phoneNumber, replyIncorrect)
		return nil
	}

	complete, err := p.engine.IsComplete(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if complete {
		p.sender.Send(phoneNumber, replyComplete)
		return nil
	}

	clue, err := p.engine.CurrentClue(ctx, phoneNumber)
	if err != nil {
		return err
	}
	if clue == nil {
		slog.Warn("Next clue missing after advancement", "phone", phoneNumber)
		p.sender.Send(phoneNumber, replyStaleClue)
		return nil
	}
	p.sendClue(phoneNumber, fmt.Sprintf(replyNextClue, clue.Question), clue)
	return nil
}

// sendClue queues the reply, attaching the clue's media when present.
func (p *Processor) sendClue(phoneNumber, body string, clue *domain.Clue) {
	if clue.MediaURL != "" {
		p.sender.SendMedia(phoneNumber, body, clue.MediaURL)
		return
	}
	p.sender.Send(phoneNumber, body)
}
