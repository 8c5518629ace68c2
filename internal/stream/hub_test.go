package stream

import (
	"testing"
	"time"
)

func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("user-1")
	defer unsubscribe()

	hub.Publish("user-1", Event{Type: EventExpenseCreated})

	select {
	case event := <-ch:
		if event.Type != EventExpenseCreated {
			t.Fatalf("expected event type %s, got %s", EventExpenseCreated, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("user-1")
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}

func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("user-1")
	defer unsubscribe()

	hub.Publish("user-2", Event{Type: EventBillPaid})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event for other user: %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe("user-1")
	defer unsubscribe()

	// Channel buffer is 10; the publisher must never block past it.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			hub.Publish("user-1", Event{Type: EventExpenseUpdated})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publisher blocked on a full subscriber")
	}

	if len(ch) != 10 {
		t.Fatalf("expected buffer to hold 10 events, got %d", len(ch))
	}
}
