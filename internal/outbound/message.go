// Package outbound implements the retrying delivery pipeline for replies
// sent back to players.
package outbound

// Message is an outbound queue entry. Exactly two variants exist, Text and
// Media; consumers dispatch on the concrete type.
type Message interface {
	Destination() string
	sealed()
}

// Text is a plain text message.
type Text struct {
	To   string
	Body string
}

// Destination returns the recipient address.
func (t Text) Destination() string { return t.To }

func (Text) sealed() {}

// Media is a text message with an attached media reference.
type Media struct {
	To       string
	Body     string
	MediaURL string
}

// Destination returns the recipient address.
func (m Media) Destination() string { return m.To }

func (Media) sealed() {}
