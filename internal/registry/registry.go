// Package registry maps room codes to the active game inside them and
// rotates a room onto a fresh game at hand-boundary (NextGame) while
// keeping its room-player roster and credentials intact. Grounded on
// the teacher's GameManager (map + RWMutex, register/lookup/default
// shape), adapted from one flat game namespace to room-scoped slots
// that can be replaced in place.
package registry

import (
	"crypto/rand"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/errkind"
)

// codeAlphabet excludes visually ambiguous characters (0/O, 1/I/L).
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const codeLength = 6

const maxCodeAttempts = 20

// Room is one room's current game slot.
type Room struct {
	Code   string
	GameID string
}

// Registry tracks room -> active game mappings.
type Registry struct {
	logger zerolog.Logger
	mu     sync.RWMutex
	rooms  map[string]*Room
}

// New builds an empty Registry.
func New(logger zerolog.Logger) *Registry {
	return &Registry{
		logger: logger.With().Str("component", "registry").Logger(),
		rooms:  make(map[string]*Room),
	}
}

// CreateRoom allocates a fresh, collision-free room code for gameID.
func (r *Registry) CreateRoom(gameID string) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, errkind.Wrap(errkind.Internal, "generate room code", err)
		}
		if _, exists := r.rooms[code]; exists {
			continue
		}
		room := &Room{Code: code, GameID: gameID}
		r.rooms[code] = room
		r.logger.Info().Str("room_code", code).Str("game_id", gameID).Msg("room created")
		return room, nil
	}
	return nil, errkind.New(errkind.Internal, "exhausted room code attempts")
}

// Lookup returns the room for code, if any.
func (r *Registry) Lookup(code string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.rooms[code]
	return room, ok
}

// Rotate points a room at a freshly started game, as happens between
// hands when the orchestrator starts the room's next game while
// preserving the room's player roster and credentials (spec.md §3.3
// NextGame).
func (r *Registry) Rotate(code, newGameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[code]
	if !ok {
		return errkind.Newf(errkind.NotFound, "room %s not found", code)
	}
	room.GameID = newGameID
	r.logger.Info().Str("room_code", code).Str("game_id", newGameID).Msg("room rotated to new game")
	return nil
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
