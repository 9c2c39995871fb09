// Package orchestrator runs the per-game command lane: it validates
// commands against the engine, appends the events they emit through
// the storage boundary, folds them into the live state with
// engine.Apply, and publishes the result through the dispatch hub.
// Grounded on the teacher's BotPool (internal/server/pool.go), which
// owns one RNG and one mutex per running table; here the mutex scopes
// to a single game rather than a shared bot-matching pool, since
// spec.md §5 requires one single-writer lane per game rather than one
// for the whole process.
package orchestrator

import (
	"context"
	rand "math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/cards"
	"github.com/lox/holdem-engine/internal/dispatch"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/randutil"
	"github.com/lox/holdem-engine/internal/registry"
	"github.com/lox/holdem-engine/internal/store"
)

// Manager owns every running game and the collaborators a game needs
// to process commands: storage, fan-out, and room code assignment.
type Manager struct {
	logger   zerolog.Logger
	store    store.Store
	hub      *dispatch.Hub
	registry *registry.Registry

	mu    sync.Mutex
	games map[string]*Game
}

// NewManager builds a Manager. hub and registry may be shared across
// many Managers in a process; store is the durable boundary every
// game appends through.
func NewManager(logger zerolog.Logger, st store.Store, hub *dispatch.Hub, reg *registry.Registry) *Manager {
	return &Manager{
		logger:   logger.With().Str("component", "orchestrator").Logger(),
		store:    st,
		hub:      hub,
		registry: reg,
		games:    make(map[string]*Game),
	}
}

// CreateGame allocates a fresh room code, persists the game header,
// appends the seed GameCreated event, and registers the game's
// command lane.
func (m *Manager) CreateGame(ctx context.Context, config engine.GameConfig, seed int64) (*Game, error) {
	gameID := uuid.NewString()
	room, err := m.registry.CreateRoom(gameID)
	if err != nil {
		return nil, err
	}
	return m.createGame(ctx, gameID, room.Code, config, seed)
}

// createGame builds and registers a game under an already-resolved
// room code, used directly by both CreateGame and NextGame (which
// repoints an existing code rather than minting a new one).
func (m *Manager) createGame(ctx context.Context, gameID, roomCode string, config engine.GameConfig, seed int64) (*Game, error) {
	if err := m.store.CreateGame(ctx, store.GameRecord{
		GameID: gameID, RoomCode: roomCode, Config: config, Seed: seed,
	}); err != nil {
		return nil, errkind.Wrap(errkind.StorageUnavailable, "create game", err)
	}

	g := &Game{
		id:     gameID,
		logger: m.logger.With().Str("game_id", gameID).Logger(),
		store:  m.store,
		hub:    m.hub,
		rng:    randutil.New(seed),
		state:  &engine.State{CurrentActor: -1},
	}

	event := g.nextEvent(engine.EventGameCreated, engine.GameCreatedPayload{
		GameID: gameID, RoomCode: roomCode, Config: config, Seed: seed,
	})
	if err := g.commit(ctx, []engine.Event{event}); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.games[gameID] = g
	m.mu.Unlock()

	return g, nil
}

// Game looks up a running game's command lane by ID.
func (m *Manager) Game(gameID string) (*Game, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[gameID]
	return g, ok
}

// NextGame rotates roomCode onto a freshly created game, preserving
// the room's player roster and credentials (spec.md §3.3). The prior
// game's seats are re-joined with the same IDs and names, each with a
// fresh Config.StartingChips stack.
func (m *Manager) NextGame(ctx context.Context, prior *Game) (*Game, error) {
	prior.mu.Lock()
	roomCode := prior.state.RoomCode
	config := prior.state.Config
	seed := prior.state.Seed
	seats := prior.state.Seats
	prior.mu.Unlock()

	gameID := uuid.NewString()
	next, err := m.createGame(ctx, gameID, roomCode, config, seed+1)
	if err != nil {
		return nil, err
	}
	for _, seat := range seats {
		if _, err := next.JoinGame(ctx, seat.ID, seat.Name); err != nil {
			return nil, err
		}
	}

	if err := m.registry.Rotate(roomCode, gameID); err != nil {
		return nil, err
	}
	return next, nil
}

// Game is one game's single-writer command lane: every exported
// method locks mu for its whole duration, so commands for this game
// linearize exactly as spec.md §5 requires. Cross-game commands need
// no coordination since each Game owns an independent lock.
type Game struct {
	mu sync.Mutex

	id     string
	logger zerolog.Logger
	store  store.Store
	hub    *dispatch.Hub

	rng  *rand.Rand  // persists across hands; seeded once when the game is created
	deck *cards.Deck // the live hand's shoe; nil between hands

	state *engine.State
}

// State returns a snapshot of the game's current derived state. The
// returned pointer must be treated as read-only; Apply never mutates
// in place, so this is safe to share.
func (g *Game) State() *engine.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// ID returns the game's identifier.
func (g *Game) ID() string { return g.id }

// nextEvent stamps an event with the next sequence number and the
// current hand number. Callers hold g.mu.
func (g *Game) nextEvent(kind engine.EventKind, payload any) engine.Event {
	return engine.Event{
		Seq:     g.state.LastSeq + 1,
		HandNo:  g.state.HandNumber,
		Kind:    kind,
		Payload: payload,
	}
}

// commit appends events through storage, folds them into the live
// state, and publishes the result. It is the sole suspension point
// inside a command handler (spec.md §5), bounded by appendTimeout; if
// the append fails no state change is observed by any caller. Callers
// hold g.mu.
func (g *Game) commit(ctx context.Context, events []engine.Event) error {
	if len(events) == 0 {
		return nil
	}

	records := make([]store.EventRecord, len(events))
	for i, ev := range events {
		rec, err := store.EncodeEvent(g.id, ev)
		if err != nil {
			return errkind.Wrap(errkind.Internal, "encode event", err)
		}
		records[i] = rec
	}

	const appendTimeout = 5 * time.Second
	appendCtx, cancel := context.WithTimeout(ctx, appendTimeout)
	defer cancel()
	if err := g.store.AppendEvents(appendCtx, g.id, records); err != nil {
		return errkind.Wrap(errkind.StorageUnavailable, "append events", err)
	}

	g.state = engine.DeriveFrom(g.state, events)
	if g.hub != nil {
		g.hub.Publish(g.state)
	}
	return nil
}

func seatIndexOf(state *engine.State, seatID string) (int, bool) {
	for _, seat := range state.Seats {
		if seat.ID == seatID {
			return seat.Index, true
		}
	}
	return -1, false
}

func nameTaken(state *engine.State, name string) bool {
	for _, seat := range state.Seats {
		if seat.Name == name {
			return true
		}
	}
	return false
}
