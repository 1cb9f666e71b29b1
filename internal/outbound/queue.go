package outbound

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/avelasco/textquest/internal/events"
)

// Queue defaults.
const (
	DefaultSize       = 256
	DefaultMaxRetries = 3
	DefaultRetryDelay = 5 * time.Second
)

// Options configures a Queue. Zero values fall back to the defaults above.
type Options struct {
	Size       int
	MaxRetries int
	RetryDelay time.Duration
}

// envelope carries a message and its retry count through the queue.
type envelope struct {
	msg     Message
	retries int
}

// Queue is a FIFO delivery pipeline drained by a single worker goroutine.
// Delivery failures are retried with a fixed backoff; a message that
// exhausts its retry budget is dropped. A retried message moves to the tail
// so a persistently failing destination cannot starve healthy recipients.
type Queue struct {
	carrier    Carrier
	hub        *events.Hub
	ch         chan envelope
	maxRetries int
	retryDelay time.Duration

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

// New creates a queue. Start must be called before messages are delivered.
func New(carrier Carrier, hub *events.Hub, opts Options) *Queue {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = DefaultRetryDelay
	}
	return &Queue{
		carrier:    carrier,
		hub:        hub,
		ch:         make(chan envelope, opts.Size),
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		stopped:    make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Send queues a plain text message. Fire-and-forget.
func (q *Queue) Send(to, body string) {
	q.Enqueue(Text{To: to, Body: body})
}

// SendMedia queues a message with a media attachment. Fire-and-forget.
func (q *Queue) SendMedia(to, body, mediaURL string) {
	q.Enqueue(Media{To: to, Body: body, MediaURL: mediaURL})
}

// Enqueue appends a message to the tail. Non-blocking: when the queue is
// full the message is dropped and logged.
func (q *Queue) Enqueue(msg Message) {
	select {
	case q.ch <- envelope{msg: msg}:
		q.hub.Publish(events.KindReplyQueued, msg.Destination(), "")
	default:
		slog.Warn("Outbound queue full, dropping message", "to", msg.Destination())
		q.hub.Publish(events.KindDeliveryDropped, msg.Destination(), "queue full")
	}
}

// Depth reports the number of queued, not-yet-attempted messages.
func (q *Queue) Depth() int {
	return len(q.ch)
}

// Start launches the delivery worker. The worker blocks on the queue when
// idle and exits when ctx is cancelled or Stop is called; an in-flight
// delivery attempt is allowed to finish.
func (q *Queue) Start(ctx context.Context) {
	go q.run(ctx)
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)
	slog.Info("Outbound queue worker started",
		"max_retries", q.maxRetries,
		"retry_delay", q.retryDelay)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbound queue worker shutting down", "reason", ctx.Err(), "abandoned", len(q.ch))
			return
		case <-q.stopped:
			slog.Info("Outbound queue worker stopped", "abandoned", len(q.ch))
			return
		case env := <-q.ch:
			if q.attempt(ctx, env) {
				continue
			}
			// Back off after any failed attempt before touching the queue again.
			if !q.wait(ctx, q.retryDelay) {
				return
			}
		}
	}
}

// attempt delivers one message and reports success. On transient failure
// the message is requeued at the tail until its retry budget runs out.
func (q *Queue) attempt(ctx context.Context, env envelope) bool {
	err := q.carrier.Deliver(ctx, env.msg)
	if err == nil {
		q.hub.Publish(events.KindDeliveryOK, env.msg.Destination(), "")
		return true
	}

	if env.retries < q.maxRetries {
		env.retries++
		select {
		case q.ch <- env:
			slog.Warn("Delivery failed, requeued",
				"to", env.msg.Destination(),
				"retries", env.retries,
				"error", err)
			q.hub.Publish(events.KindDeliveryRetry, env.msg.Destination(), err.Error())
		default:
			slog.Error("Delivery failed and queue is full, dropping message",
				"to", env.msg.Destination(),
				"error", err)
			q.hub.Publish(events.KindDeliveryDropped, env.msg.Destination(), "queue full")
		}
		return false
	}

	slog.Error("Dropping message after max retries",
		"to", env.msg.Destination(),
		"retries", env.retries,
		"error", err)
	q.hub.Publish(events.KindDeliveryDropped, env.msg.Destination(), err.Error())
	return false
}

// wait sleeps for d, returning false if the worker should exit instead.
func (q *Queue) wait(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-q.stopped:
		return false
	}
}

// Stop signals the worker to exit after its current iteration and waits for
// it. Queued-and-not-yet-attempted messages are abandoned. Stop must only
// be called after Start.
func (q *Queue) Stop() {
	q.stopOnce.Do(func() { close(q.stopped) })
	<-q.done
}
