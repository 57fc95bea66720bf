// Package hub delivers newly persisted chat messages to live subscribers.
// Rooms are keyed by product ID, created lazily on first subscription and
// removed when the last subscriber leaves. Nothing here is durable: a
// subscriber that is not connected at publish time simply misses the event
// and catches up through message history.
package hub

import (
	"sync"

	"github.com/eldtechnologies/bazaar/internal/models"
)

// Subscriber is a live delivery sink, typically one websocket connection.
// Deliver must not block; it reports whether the message was accepted.
type Subscriber interface {
	Deliver(msg *models.Message) bool
}

// Hub maintains one broadcast room per product.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[Subscriber]struct{}
}

// New creates an empty hub.
func New() *Hub {
	return &Hub{rooms: make(map[string]map[Subscriber]struct{})}
}

// Subscribe adds sub to the product's room, creating the room if needed.
func (h *Hub) Subscribe(productID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[productID]
	if !ok {
		room = make(map[Subscriber]struct{})
		h.rooms[productID] = room
	}
	room[sub] = struct{}{}
}

// Unsubscribe removes sub from the product's room. Empty rooms are removed.
func (h *Hub) Unsubscribe(productID string, sub Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[productID]
	if !ok {
		return
	}
	delete(room, sub)
	if len(room) == 0 {
		delete(h.rooms, productID)
	}
}

// Publish delivers msg to every live subscriber of the product's room and
// returns the number of accepted deliveries. Delivery is at-most-once
// best-effort per subscriber.
func (h *Hub) Publish(productID string, msg *models.Message) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for sub := range h.rooms[productID] {
		if sub.Deliver(msg) {
			delivered++
		}
	}
	return delivered
}

// Rooms returns the number of active rooms.
func (h *Hub) Rooms() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Subscribers returns the number of live subscribers across all rooms.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, room := range h.rooms {
		total += len(room)
	}
	return total
}
