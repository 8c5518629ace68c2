// Package stream fans ledger change events out to per-user SSE subscribers.
package stream

import (
	"sync"
	"time"
)

// Event types published by the services.
const (
	EventExpenseCreated    = "expense.created"
	EventExpenseUpdated    = "expense.updated"
	EventExpenseDeleted    = "expense.deleted"
	EventExpensesGenerated = "expenses.generated"
	EventBillPaid          = "bill.paid"
)

type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

// Hub tracks SSE subscribers per user. Slow subscribers drop events rather
// than blocking the publisher.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a listener for one user's events. The returned cancel
// func unregisters and closes the channel; it must be called exactly once.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 10)

	h.mu.Lock()
	defer h.mu.Unlock()

	userSubs, ok := h.subscribers[userID]
	if !ok {
		userSubs = make(map[chan Event]struct{})
		h.subscribers[userID] = userSubs
	}
	userSubs[ch] = struct{}{}

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, exists := h.subscribers[userID]; exists {
			delete(subs, ch)
			if len(subs) == 0 {
				delete(h.subscribers, userID)
			}
		}
		close(ch)
	}
}

// Publish delivers an event to every subscriber of userID.
func (h *Hub) Publish(userID string, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[userID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}
