// Package realtime delivers recipient-marker insert events to in-process
// subscribers. Events originate from a Postgres trigger and reach the hub
// through a LISTEN/NOTIFY connection.
package realtime

import (
	"sync"

	"github.com/gofrs/uuid/v5"
)

// Event describes one inserted recipient marker.
type Event struct {
	MessageID   uuid.UUID `json:"message_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
}

// Hub fans events out to subscribers keyed by recipient id.
type Hub struct {
	mu   sync.RWMutex
	subs map[uuid.UUID]map[chan Event]struct{}
}

// NewHub constructs an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[chan Event]struct{})}
}

// Subscribe registers interest in events for one recipient. The returned
// cancel function releases the subscription and closes the channel.
func (h *Hub) Subscribe(recipientID uuid.UUID) (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	set, ok := h.subs[recipientID]
	if !ok {
		set = make(map[chan Event]struct{})
		h.subs[recipientID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[recipientID]; ok {
			if _, member := set[ch]; member {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, recipientID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber of its recipient.
// Slow subscribers drop events rather than block the dispatch loop.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[ev.RecipientID] {
		select {
		case ch <- ev:
		default:
		}
	}
}
