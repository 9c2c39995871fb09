// Package memstore is an in-memory store.Store, dependency-free and
// suited to tests and single-process deployments that don't need
// durability across restarts.
package memstore

import (
	"context"
	"sync"

	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/store"
)

// Store is a sync.RWMutex-guarded in-memory store.Store, grounded on
// the teacher's BotPool bookkeeping style (maps behind a single lock,
// no per-key fine-graining since contention is low).
type Store struct {
	mu sync.RWMutex

	games     map[string]store.GameRecord
	events    map[string][]store.EventRecord
	snapshots map[string]store.SnapshotRecord
	players   map[string]map[string]store.RoomPlayerRecord // roomCode -> playerID -> record
}

// New builds an empty Store.
func New() *Store {
	return &Store{
		games:     make(map[string]store.GameRecord),
		events:    make(map[string][]store.EventRecord),
		snapshots: make(map[string]store.SnapshotRecord),
		players:   make(map[string]map[string]store.RoomPlayerRecord),
	}
}

func (s *Store) CreateGame(_ context.Context, rec store.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[rec.GameID]; exists {
		return errkind.Newf(errkind.Conflict, "game %s already exists", rec.GameID)
	}
	s.games[rec.GameID] = rec
	return nil
}

func (s *Store) AppendEvents(_ context.Context, gameID string, events []store.EventRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[gameID]; !exists {
		return errkind.Newf(errkind.NotFound, "game %s not found", gameID)
	}
	s.events[gameID] = append(s.events[gameID], events...)
	return nil
}

func (s *Store) ReadEvents(_ context.Context, gameID string, sinceSeq uint64) ([]store.EventRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := s.events[gameID]
	out := make([]store.EventRecord, 0, len(all))
	for _, e := range all {
		if e.Seq > sinceSeq {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) WriteSnapshot(_ context.Context, gameID string, snap store.SnapshotRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[gameID] = snap
	return nil
}

func (s *Store) ReadSnapshot(_ context.Context, gameID string) (*store.SnapshotRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[gameID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (s *Store) CreateRoomPlayer(_ context.Context, rec store.RoomPlayerRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.players[rec.RoomCode]
	if !ok {
		room = make(map[string]store.RoomPlayerRecord)
		s.players[rec.RoomCode] = room
	}
	if _, exists := room[rec.PlayerID]; exists {
		return errkind.Newf(errkind.Conflict, "player %s already in room %s", rec.PlayerID, rec.RoomCode)
	}
	room[rec.PlayerID] = rec
	return nil
}

func (s *Store) GetRoomPlayer(_ context.Context, roomCode, playerID string) (*store.RoomPlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.players[roomCode]
	if !ok {
		return nil, errkind.Newf(errkind.NotFound, "room %s not found", roomCode)
	}
	rec, ok := room[playerID]
	if !ok {
		return nil, errkind.Newf(errkind.NotFound, "player %s not found in room %s", playerID, roomCode)
	}
	return &rec, nil
}

func (s *Store) ListRoomPlayers(_ context.Context, roomCode string) ([]store.RoomPlayerRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room := s.players[roomCode]
	out := make([]store.RoomPlayerRecord, 0, len(room))
	for _, rec := range room {
		out = append(out, rec)
	}
	return out, nil
}
