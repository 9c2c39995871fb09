// Package store defines the durable persistence boundary: the
// append-only event log, periodic snapshots, and room-player
// credentials that survive a room's NextGame rotation. Two
// implementations exist: memstore (in-process, dependency-free) and
// sqlstore (modernc.org/sqlite, durable across restarts).
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lox/holdem-engine/internal/engine"
)

// GameRecord is a newly created game's immutable header.
type GameRecord struct {
	GameID   string
	RoomCode string
	Config   engine.GameConfig
	Seed     int64
}

// EventRecord is one append-only log entry as persisted: Payload is
// JSON-encoded so storage never needs to know the event vocabulary.
type EventRecord struct {
	GameID  string
	Seq     uint64
	HandNo  int
	Kind    engine.EventKind
	Seat    *int
	Payload json.RawMessage
}

// SnapshotRecord accelerates replay: the engine state as of Revision,
// so Derive only needs to fold events after it.
type SnapshotRecord struct {
	GameID   string
	Revision uint64
	LastSeq  uint64
	State    json.RawMessage
}

// RoomPlayerRecord is a room-scoped player credential, kept across a
// room's successive games (spec.md §3.3 NextGame rotation).
type RoomPlayerRecord struct {
	RoomCode     string
	PlayerID     string
	Name         string
	PasswordHash string
}

// Store is the storage boundary every command handler appends
// through and every read-side projection replays from.
type Store interface {
	CreateGame(ctx context.Context, rec GameRecord) error

	// AppendEvents appends events to gameID's log in order. It is the
	// orchestrator's only suspension point per hand-command
	// transaction (spec.md §5): either every event in the batch lands,
	// or none do.
	AppendEvents(ctx context.Context, gameID string, events []EventRecord) error
	ReadEvents(ctx context.Context, gameID string, sinceSeq uint64) ([]EventRecord, error)

	WriteSnapshot(ctx context.Context, gameID string, snap SnapshotRecord) error
	ReadSnapshot(ctx context.Context, gameID string) (*SnapshotRecord, error)

	CreateRoomPlayer(ctx context.Context, rec RoomPlayerRecord) error
	GetRoomPlayer(ctx context.Context, roomCode, playerID string) (*RoomPlayerRecord, error)
	ListRoomPlayers(ctx context.Context, roomCode string) ([]RoomPlayerRecord, error)
}

// EncodeEvent converts an engine.Event into its storable record form.
func EncodeEvent(gameID string, event engine.Event) (EventRecord, error) {
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return EventRecord{}, fmt.Errorf("encode event payload: %w", err)
	}
	return EventRecord{
		GameID:  gameID,
		Seq:     event.Seq,
		HandNo:  event.HandNo,
		Kind:    event.Kind,
		Seat:    event.Seat,
		Payload: payload,
	}, nil
}

// DecodeEvent reconstructs an engine.Event from its record, type
// switching on Kind to unmarshal into the matching payload struct.
func DecodeEvent(rec EventRecord) (engine.Event, error) {
	event := engine.Event{Seq: rec.Seq, HandNo: rec.HandNo, Kind: rec.Kind, Seat: rec.Seat}

	target, err := payloadTarget(rec.Kind)
	if err != nil {
		return engine.Event{}, err
	}
	if target != nil {
		if err := json.Unmarshal(rec.Payload, target); err != nil {
			return engine.Event{}, fmt.Errorf("decode %s payload: %w", rec.Kind, err)
		}
		event.Payload = derefPayload(target)
	}
	return event, nil
}

func payloadTarget(kind engine.EventKind) (any, error) {
	switch kind {
	case engine.EventGameCreated:
		return &engine.GameCreatedPayload{}, nil
	case engine.EventPlayerJoined:
		return &engine.PlayerJoinedPayload{}, nil
	case engine.EventHandStart:
		return &engine.HandStartPayload{}, nil
	case engine.EventPostBlind:
		return &engine.PostBlindPayload{}, nil
	case engine.EventCheck, engine.EventCall, engine.EventBet, engine.EventRaise,
		engine.EventFold, engine.EventAllIn:
		return &engine.ActionPayload{}, nil
	case engine.EventDealCommunity:
		return &engine.DealCommunityPayload{}, nil
	case engine.EventAdvanceRound:
		return &engine.AdvanceRoundPayload{}, nil
	case engine.EventShowdown:
		return nil, nil
	case engine.EventAwardPot:
		return &engine.AwardPotPayload{}, nil
	case engine.EventHandComplete:
		return &engine.HandCompletePayload{}, nil
	case engine.EventRevealCards:
		return &engine.RevealCardsPayload{}, nil
	default:
		return nil, fmt.Errorf("unknown event kind %q", kind)
	}
}

func derefPayload(target any) any {
	switch v := target.(type) {
	case *engine.GameCreatedPayload:
		return *v
	case *engine.PlayerJoinedPayload:
		return *v
	case *engine.HandStartPayload:
		return *v
	case *engine.PostBlindPayload:
		return *v
	case *engine.ActionPayload:
		return *v
	case *engine.DealCommunityPayload:
		return *v
	case *engine.AdvanceRoundPayload:
		return *v
	case *engine.AwardPotPayload:
		return *v
	case *engine.HandCompletePayload:
		return *v
	case *engine.RevealCardsPayload:
		return *v
	default:
		return nil
	}
}
