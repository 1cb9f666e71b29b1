package domain

import "time"

// PlayerSession tracks one player's progress through a game's clue sequence.
// There is at most one session per (phone number, game) pair.
type PlayerSession struct {
	PhoneNumber   string     `json:"phoneNumber"`
	GameID        string     `json:"gameId"`
	CurrentClueID string     `json:"currentClueId"`
	Attempts      int        `json:"attempts"`
	HintsUsed     int        `json:"hintsUsed"`
	Completed     bool       `json:"completed"`
	StartTime     time.Time  `json:"startTime"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`
}

// CanRequestHint reports hint eligibility for the current clue: at least two
// failed attempts and no hint consumed yet.
func (s *PlayerSession) CanRequestHint() bool {
	return s.Attempts >= 2 && s.HintsUsed == 0
}

// RecordAttempt counts a failed answer against the current clue.
func (s *PlayerSession) RecordAttempt() {
	s.Attempts++
}

// AdvanceTo moves the session to the next clue and resets the per-clue
// counters.
func (s *PlayerSession) AdvanceTo(nextClueID string) {
	s.CurrentClueID = nextClueID
	s.Attempts = 0
	s.HintsUsed = 0
}

// MarkCompleted freezes the session at its final clue and records the
// completion time.
func (s *PlayerSession) MarkCompleted(now time.Time) {
	s.Completed = true
	s.CompletedAt = &now
}
