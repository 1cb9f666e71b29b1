package events

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	hub.Publish(KindDeliveryOK, "+15550001", "")

	select {
	case ev := <-sub:
		if ev.Kind != KindDeliveryOK || ev.Phone != "+15550001" {
			t.Errorf("received %+v", ev)
		}
		if ev.At.IsZero() {
			t.Error("event timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestHubPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	// Must not block or panic.
	hub.Publish(KindReplyQueued, "+15550001", "")
}

func TestHubNilSafe(t *testing.T) {
	var hub *Hub
	hub.Publish(KindMessageReceived, "+15550001", "START")
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	hub.Unsubscribe(sub)

	if _, ok := <-sub; ok {
		t.Error("channel still open after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	hub.Publish(KindDeliveryRetry, "+15550001", "timeout")
}

func TestHubSlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe()
	defer hub.Unsubscribe(sub)

	// Overflow the subscriber buffer; Publish must keep returning.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 200; i++ {
			hub.Publish(KindDeliveryOK, "+15550001", "")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
