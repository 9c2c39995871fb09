// Package dispatch fans out engine state to subscribers as sanitized
// wire projections: one table view and one player view per seated
// viewer, computed once per revision and reused across subscribers
// that share a view. Grounded on the teacher's HandMonitor observer
// shape (internal/server/monitor.go) and pool.go's separate
// registration channel discipline — subscribing/unsubscribing never
// blocks hand processing.
package dispatch

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/wire"
)

// updateBuffer is how many projections a slow subscriber can lag by
// before its oldest update is dropped in favor of the newest.
const updateBuffer = 8

// Subscription is a live feed of one room's projections, either the
// table view (Seat nil) or one seat's player view.
type Subscription struct {
	ID       string
	RoomCode string
	Seat     *int
	Updates  chan wire.GameState

	hub *Hub
}

// Close unsubscribes and releases the channel.
func (s *Subscription) Close() {
	s.hub.unsubscribe(s.RoomCode, s.ID)
}

// Hub tracks every room's live subscriptions and fans out projections
// on each publish.
type Hub struct {
	logger zerolog.Logger
	mu     sync.Mutex
	subs   map[string]map[string]*Subscription
	nextID uint64
}

// NewHub builds an empty Hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger: logger.With().Str("component", "dispatch").Logger(),
		subs:   make(map[string]map[string]*Subscription),
	}
}

// Subscribe opens a feed for roomCode. Pass seat nil for the table
// view, or a seat index for that seat's player view.
func (h *Hub) Subscribe(roomCode string, seat *int) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &Subscription{
		ID:       subID(h.nextID),
		RoomCode: roomCode,
		Seat:     seat,
		Updates:  make(chan wire.GameState, updateBuffer),
		hub:      h,
	}
	room, ok := h.subs[roomCode]
	if !ok {
		room = make(map[string]*Subscription)
		h.subs[roomCode] = room
	}
	room[sub.ID] = sub
	return sub
}

func (h *Hub) unsubscribe(roomCode, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.subs[roomCode]
	if !ok {
		return
	}
	if sub, ok := room[id]; ok {
		close(sub.Updates)
		delete(room, id)
	}
	if len(room) == 0 {
		delete(h.subs, roomCode)
	}
}

// Publish computes the table projection and each subscribed seat's
// player projection once, then fans them out to every matching
// subscriber. A subscriber whose buffer is full has its oldest queued
// update dropped rather than blocking the publisher.
func (h *Hub) Publish(state *engine.State) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.subs[state.RoomCode]
	if !ok || len(room) == 0 {
		return
	}

	cache := make(map[int]wire.GameState) // seat index -> player view; -1 keys the table view
	projectionFor := func(seat *int) wire.GameState {
		key := -1
		if seat != nil {
			key = *seat
		}
		if cached, ok := cache[key]; ok {
			return cached
		}
		projected := wire.ToGameState(state, seat)
		cache[key] = projected
		return projected
	}

	for _, sub := range room {
		projected := projectionFor(sub.Seat)
		select {
		case sub.Updates <- projected:
		default:
			select {
			case <-sub.Updates:
			default:
			}
			select {
			case sub.Updates <- projected:
			default:
				h.logger.Warn().Str("room_code", state.RoomCode).Str("sub_id", sub.ID).Msg("dropped projection, subscriber too slow")
			}
		}
	}
}

func subID(n uint64) string {
	const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	if n == 0 {
		return "0"
	}
	var buf []byte
	for n > 0 {
		buf = append([]byte{alphabet[n%uint64(len(alphabet))]}, buf...)
		n /= uint64(len(alphabet))
	}
	return string(buf)
}
