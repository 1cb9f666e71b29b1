package outbound

import (
	"context"
	"log/slog"
)

// Carrier delivers a single message through the external messaging
// provider. A returned error is treated as transient and retried by the
// queue until the retry budget is exhausted.
type Carrier interface {
	Deliver(ctx context.Context, msg Message) error
}

// LogCarrier logs messages instead of delivering them. Used in development
// when no carrier credentials are configured.
type LogCarrier struct{}

// Deliver logs the message and reports success.
func (LogCarrier) Deliver(_ context.Context, msg Message) error {
	switch m := msg.(type) {
	case Text:
		slog.Info("Would deliver SMS", "to", m.To, "body", m.Body)
	case Media:
		slog.Info("Would deliver MMS", "to", m.To, "body", m.Body, "media_url", m.MediaURL)
	}
	return nil
}
