// Package domain holds the core data types of the scavenger hunt.
package domain

import (
	"strings"
	"time"
)

// Clue types understood by the hunt.
const (
	ClueTypeText   = "text"
	ClueTypeImage  = "image"
	ClueTypeRiddle = "riddle"
)

// Clue is one question/answer/hint unit in the hunt's fixed sequence.
// Clues are immutable while a round is in play; the catalog administrator
// owns their lifecycle.
type Clue struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	AnswerLower string    `json:"-"`
	Hint        string    `json:"hint,omitempty"`
	MediaURL    string    `json:"mediaUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SetAnswer stores the canonical answer and recomputes its normalized form.
// Always use this instead of assigning Answer directly so AnswerLower stays
// in sync.
func (c *Clue) SetAnswer(answer string) {
	c.Answer = answer
	c.AnswerLower = NormalizeAnswer(answer)
}

// CheckAnswer reports whether guess matches the clue's answer after
// normalization.
func (c *Clue) CheckAnswer(guess string) bool {
	return c.AnswerLower != "" && c.AnswerLower == NormalizeAnswer(guess)
}

// NormalizeAnswer trims surrounding whitespace and lowercases.
func NormalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
