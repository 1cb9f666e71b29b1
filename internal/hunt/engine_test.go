package hunt

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/avelasco/textquest/internal/domain"
)

// fakeStore implements ClueSource and SessionStore in memory. FindSession
// returns copies so mutations only persist through SaveSession, matching
// the real store's read-modify-write contract.
type fakeStore struct {
	mu       sync.Mutex
	clues    []*domain.Clue
	sessions map[string]*domain.PlayerSession
	games    map[string]*domain.Game
	listErr  error
	findErr  error
	saveErr  error
}

func newFakeStore(clues ...*domain.Clue) *fakeStore {
	return &fakeStore{
		clues:    clues,
		sessions: make(map[string]*domain.PlayerSession),
		games:    make(map[string]*domain.Game),
	}
}

func (f *fakeStore) ListClues(_ context.Context) ([]*domain.Clue, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*domain.Clue, len(f.clues))
	copy(out, f.clues)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) FindSession(_ context.Context, phone string) (*domain.PlayerSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	s, ok := f.sessions[phone]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) CreateSession(_ context.Context, s *domain.PlayerSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.sessions[s.PhoneNumber]; ok {
		return fmt.Errorf("session already exists: %s", s.PhoneNumber)
	}
	cp := *s
	f.sessions[s.PhoneNumber] = &cp
	return nil
}

func (f *fakeStore) SaveSession(_ context.Context, s *domain.PlayerSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	if _, ok := f.sessions[s.PhoneNumber]; !ok {
		return fmt.Errorf("session not found: %s", s.PhoneNumber)
	}
	cp := *s
	f.sessions[s.PhoneNumber] = &cp
	return nil
}

func (f *fakeStore) GetGame(_ context.Context, id string) (*domain.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (f *fakeStore) UpdateGame(_ context.Context, g *domain.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.games[g.ID]; !ok {
		return fmt.Errorf("game not found: %s", g.ID)
	}
	cp := *g
	f.games[g.ID] = &cp
	return nil
}

func (f *fakeStore) addGame(g *domain.Game) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *g
	f.games[g.ID] = &cp
}

func (f *fakeStore) game(t *testing.T, id string) *domain.Game {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		t.Fatalf("no game stored for %s", id)
	}
	cp := *g
	return &cp
}

func (f *fakeStore) session(t *testing.T, phone string) *domain.PlayerSession {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[phone]
	if !ok {
		t.Fatalf("no session stored for %s", phone)
	}
	cp := *s
	return &cp
}

func makeClue(id, question, answer, hint string) *domain.Clue {
	clue := &domain.Clue{ID: id, Type: domain.ClueTypeText, Question: question, Hint: hint}
	clue.SetAnswer(answer)
	return clue
}

func startSession(t *testing.T, store *fakeStore, phone, clueID string) {
	t.Helper()
	err := store.CreateSession(context.Background(), &domain.PlayerSession{
		PhoneNumber:   phone,
		GameID:        domain.DefaultGameID,
		CurrentClueID: clueID,
		StartTime:     time.Now(),
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
}

func newTestEngine(t *testing.T, store *fakeStore) *Engine {
	t.Helper()
	engine := NewEngine(store, store)
	if err := engine.InitializeClues(context.Background()); err != nil {
		t.Fatalf("InitializeClues failed: %v", err)
	}
	return engine
}

func TestInitializeCluesOrdersByID(t *testing.T) {
	store := newFakeStore(
		makeClue("c", "third?", "three", ""),
		makeClue("a", "first?", "one", ""),
		makeClue("b", "second?", "two", ""),
	)
	engine := newTestEngine(t, store)

	first, ok := engine.FirstClueID()
	if !ok || first != "a" {
		t.Errorf("FirstClueID() = %q, %v, want %q, true", first, ok, "a")
	}
	if next, ok := engine.nextClueID("a"); !ok || next != "b" {
		t.Errorf("nextClueID(a) = %q, %v, want b, true", next, ok)
	}
	if next, ok := engine.nextClueID("c"); ok {
		t.Errorf("nextClueID(c) = %q, true, want false", next)
	}
}

func TestInitializeCluesIdempotent(t *testing.T) {
	store := newFakeStore(
		makeClue("b", "second?", "two", ""),
		makeClue("a", "first?", "one", ""),
	)
	engine := newTestEngine(t, store)

	if err := engine.InitializeClues(context.Background()); err != nil {
		t.Fatalf("second InitializeClues failed: %v", err)
	}

	if got := engine.Size(); got != 2 {
		t.Errorf("Size() = %d after re-init, want 2", got)
	}
	if first, _ := engine.FirstClueID(); first != "a" {
		t.Errorf("FirstClueID() = %q after re-init, want a", first)
	}
}

func TestCurrentClueNoSession(t *testing.T) {
	engine := newTestEngine(t, newFakeStore(makeClue("a", "q", "x", "")))

	_, err := engine.CurrentClue(context.Background(), "+15550001")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("CurrentClue() error = %v, want ErrSessionNotFound", err)
	}
}

func TestCurrentClueStalePointer(t *testing.T) {
	store := newFakeStore(makeClue("a", "q", "x", ""))
	engine := newTestEngine(t, store)
	startSession(t, store, "+15550001", "deleted-clue")

	clue, err := engine.CurrentClue(context.Background(), "+15550001")
	if err != nil {
		t.Fatalf("CurrentClue() error = %v", err)
	}
	if clue != nil {
		t.Errorf("CurrentClue() = %+v, want nil for unresolvable pointer", clue)
	}
}

func TestCheckAnswerNormalization(t *testing.T) {
	tests := []struct {
		name  string
		guess string
		want  bool
	}{
		{"exact", "Paris", true},
		{"lowercase", "paris", true},
		{"uppercase padded", "  PARIS  ", true},
		{"wrong", "London", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(makeClue("a", "capital of France?", "Paris", ""))
			engine := newTestEngine(t, store)
			startSession(t, store, "+15550001", "a")

			got, err := engine.CheckAnswer(context.Background(), "+15550001", tt.guess)
			if err != nil {
				t.Fatalf("CheckAnswer() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckAnswer(%q) = %v, want %v", tt.guess, got, tt.want)
			}

			session := store.session(t, "+15550001")
			wantAttempts := 0
			if !tt.want {
				wantAttempts = 1
			}
			if session.Attempts != wantAttempts {
				t.Errorf("attempts = %d, want %d", session.Attempts, wantAttempts)
			}
		})
	}
}

func TestCheckAnswerErrors(t *testing.T) {
	store := newFakeStore(makeClue("a", "q", "x", ""))
	engine := newTestEngine(t, store)

	if _, err := engine.CheckAnswer(context.Background(), "+15550001", "x"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("CheckAnswer() without session error = %v, want ErrSessionNotFound", err)
	}

	startSession(t, store, "+15550002", "gone")
	if _, err := engine.CheckAnswer(context.Background(), "+15550002", "x"); !errors.Is(err, ErrClueNotFound) {
		t.Errorf("CheckAnswer() with stale pointer error = %v, want ErrClueNotFound", err)
	}
}

func TestRequestHintEligibility(t *testing.T) {
	tests := []struct {
		name      string
		attempts  int
		hintsUsed int
		hint      string
		wantHint  string
		wantUsed  int
	}{
		{"no attempts", 0, 0, "look up", "", 0},
		{"one attempt", 1, 0, "look up", "", 0},
		{"eligible", 2, 0, "look up", "look up", 1},
		{"many attempts", 5, 0, "look up", "look up", 1},
		{"hint already used", 4, 1, "look up", "", 1},
		{"clue has no hint", 3, 0, "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(makeClue("a", "q", "x", tt.hint))
			engine := newTestEngine(t, store)
			startSession(t, store, "+15550001", "a")

			// Seed the counters directly through the store.
			s := store.session(t, "+15550001")
			s.Attempts = tt.attempts
			s.HintsUsed = tt.hintsUsed
			if err := store.SaveSession(context.Background(), s); err != nil {
				t.Fatalf("SaveSession failed: %v", err)
			}

			hint, err := engine.RequestHint(context.Background(), "+15550001")
			if err != nil {
				t.Fatalf("RequestHint() error = %v", err)
			}
			if hint != tt.wantHint {
				t.Errorf("RequestHint() = %q, want %q", hint, tt.wantHint)
			}
			if got := store.session(t, "+15550001").HintsUsed; got != tt.wantUsed {
				t.Errorf("hintsUsed = %d, want %d", got, tt.wantUsed)
			}
		})
	}
}

func TestRequestHintNoSession(t *testing.T) {
	engine := newTestEngine(t, newFakeStore(makeClue("a", "q", "x", "h")))

	if _, err := engine.RequestHint(context.Background(), "+15550001"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("RequestHint() error = %v, want ErrSessionNotFound", err)
	}
}

// TestProgressionScenario walks the canonical two-clue game end to end.
func TestProgressionScenario(t *testing.T) {
	ctx := context.Background()
	phone := "+15550001"
	store := newFakeStore(
		makeClue("a", "capital of France?", "Paris", "city of lights"),
		makeClue("b", "largest planet?", "Jupiter", "it has a big red spot"),
	)
	engine := newTestEngine(t, store)
	startSession(t, store, phone, "a")

	correct, err := engine.CheckAnswer(ctx, phone, "paris")
	if err != nil || !correct {
		t.Fatalf("CheckAnswer(paris) = %v, %v, want true, nil", correct, err)
	}
	session := store.session(t, phone)
	if session.CurrentClueID != "b" || session.Attempts != 0 || session.HintsUsed != 0 {
		t.Fatalf("after advance: clue=%s attempts=%d hints=%d, want b, 0, 0",
			session.CurrentClueID, session.Attempts, session.HintsUsed)
	}

	correct, err = engine.CheckAnswer(ctx, phone, "Mars")
	if err != nil || correct {
		t.Fatalf("CheckAnswer(Mars) = %v, %v, want false, nil", correct, err)
	}
	if got := store.session(t, phone).Attempts; got != 1 {
		t.Fatalf("attempts = %d, want 1", got)
	}

	// One failed attempt is not enough for a hint.
	hint, err := engine.RequestHint(ctx, phone)
	if err != nil || hint != "" {
		t.Fatalf("RequestHint() = %q, %v, want empty, nil", hint, err)
	}
	if got := store.session(t, phone).HintsUsed; got != 0 {
		t.Fatalf("hintsUsed = %d, want 0", got)
	}

	if correct, _ := engine.CheckAnswer(ctx, phone, "wrong"); correct {
		t.Fatal("CheckAnswer(wrong) = true, want false")
	}
	if got := store.session(t, phone).Attempts; got != 2 {
		t.Fatalf("attempts = %d, want 2", got)
	}

	hint, err = engine.RequestHint(ctx, phone)
	if err != nil || hint != "it has a big red spot" {
		t.Fatalf("RequestHint() = %q, %v, want hint text, nil", hint, err)
	}
	if got := store.session(t, phone).HintsUsed; got != 1 {
		t.Fatalf("hintsUsed = %d, want 1", got)
	}

	correct, err = engine.CheckAnswer(ctx, phone, "jupiter")
	if err != nil || !correct {
		t.Fatalf("CheckAnswer(jupiter) = %v, %v, want true, nil", correct, err)
	}
	session = store.session(t, phone)
	if !session.Completed {
		t.Fatal("session not completed after final answer")
	}
	if session.CompletedAt == nil {
		t.Fatal("completedAt not set on completion")
	}

	complete, err := engine.IsComplete(ctx, phone)
	if err != nil || !complete {
		t.Fatalf("IsComplete() = %v, %v, want true, nil", complete, err)
	}
}

// TestFullWalkthrough answers every clue of an N-clue catalog in order.
func TestFullWalkthrough(t *testing.T) {
	ctx := context.Background()
	phone := "+15550001"
	const n = 5

	clues := make([]*domain.Clue, 0, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("clue-%02d", i)
		clues = append(clues, makeClue(id, fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i), ""))
	}
	store := newFakeStore(clues...)
	engine := newTestEngine(t, store)
	startSession(t, store, phone, "clue-00")

	for i := 0; i < n; i++ {
		before := store.session(t, phone)
		if before.CompletedAt != nil {
			t.Fatalf("completedAt set before final answer (step %d)", i)
		}

		correct, err := engine.CheckAnswer(ctx, phone, fmt.Sprintf("  ANSWER %d  ", i))
		if err != nil {
			t.Fatalf("step %d: CheckAnswer error = %v", i, err)
		}
		if !correct {
			t.Fatalf("step %d: correct answer rejected", i)
		}

		after := store.session(t, phone)
		if after.Attempts != 0 || after.HintsUsed != 0 {
			t.Fatalf("step %d: counters not reset (attempts=%d hints=%d)", i, after.Attempts, after.HintsUsed)
		}
	}

	final := store.session(t, phone)
	if !final.Completed || final.CompletedAt == nil {
		t.Fatalf("walkthrough did not complete: completed=%v completedAt=%v", final.Completed, final.CompletedAt)
	}
}

func TestIsCompleteNoSession(t *testing.T) {
	engine := newTestEngine(t, newFakeStore())

	if _, err := engine.IsComplete(context.Background(), "+15550001"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("IsComplete() error = %v, want ErrSessionNotFound", err)
	}
}
