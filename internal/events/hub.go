// Package events provides an in-process feed of message-pipeline activity
// for operator dashboards.
package events

import (
	"sync"
	"time"
)

// Event kinds published on the hub.
const (
	KindMessageReceived = "message.received"
	KindReplyQueued     = "reply.queued"
	KindDeliveryOK      = "delivery.ok"
	KindDeliveryRetry   = "delivery.retry"
	KindDeliveryDropped = "delivery.dropped"
)

// Event is one observable occurrence in the message pipeline.
type Event struct {
	Kind   string    `json:"kind"`
	Phone  string    `json:"phone,omitempty"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Hub fans events out to subscribers. Publishing never blocks; a subscriber
// that falls behind loses events rather than stalling the pipeline.
type Hub struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

// NewHub creates an event hub with no subscribers.
func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Publish sends an event to all current subscribers. Safe on a nil hub so
// components can treat the feed as optional.
func (h *Hub) Publish(kind, phone, detail string) {
	if h == nil {
		return
	}
	ev := Event{Kind: kind, Phone: phone, Detail: detail, At: time.Now()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The caller must call Unsubscribe
// with the returned channel when done.
func (h *Hub) Subscribe() chan Event {
	ch := make(chan Event, 64)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(ch chan Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[ch]; ok {
		delete(h.subs, ch)
		close(ch)
	}
}
