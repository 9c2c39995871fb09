package sqlstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppendAndReadEventsSinceSeq(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateGame(ctx, store.GameRecord{GameID: "g1", RoomCode: "ABCDEF", Seed: 1}))

	require.NoError(t, s.AppendEvents(ctx, "g1", []store.EventRecord{
		{GameID: "g1", Seq: 1, Payload: json.RawMessage(`{}`)},
		{GameID: "g1", Seq: 2, Payload: json.RawMessage(`{}`)},
	}))

	events, err := s.ReadEvents(ctx, "g1", 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, uint64(2), events[0].Seq)
}

func TestAppendEventsIsTransactional(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateGame(ctx, store.GameRecord{GameID: "g1", RoomCode: "ABCDEF"}))

	require.NoError(t, s.AppendEvents(ctx, "g1", []store.EventRecord{
		{GameID: "g1", Seq: 1, Payload: json.RawMessage(`{}`)},
	}))

	err := s.AppendEvents(ctx, "g1", []store.EventRecord{
		{GameID: "g1", Seq: 2, Payload: json.RawMessage(`{}`)},
		{GameID: "g1", Seq: 1, Payload: json.RawMessage(`{}`)}, // duplicate seq, violates PK
	})
	assert.True(t, errkind.Is(err, errkind.StorageUnavailable))

	events, err := s.ReadEvents(ctx, "g1", 0)
	require.NoError(t, err)
	require.Len(t, events, 1, "partial batch must not be committed")
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateGame(ctx, store.GameRecord{GameID: "g1", RoomCode: "ABCDEF"}))

	none, err := s.ReadSnapshot(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, none)

	require.NoError(t, s.WriteSnapshot(ctx, "g1", store.SnapshotRecord{
		GameID: "g1", Revision: 5, LastSeq: 3, State: json.RawMessage(`{"a":1}`),
	}))
	snap, err := s.ReadSnapshot(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, uint64(5), snap.Revision)

	require.NoError(t, s.WriteSnapshot(ctx, "g1", store.SnapshotRecord{
		GameID: "g1", Revision: 9, LastSeq: 7, State: json.RawMessage(`{"a":2}`),
	}))
	snap, err = s.ReadSnapshot(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, uint64(9), snap.Revision, "second write upserts rather than erroring")
}

func TestRoomPlayerLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	require.NoError(t, s.CreateRoomPlayer(ctx, store.RoomPlayerRecord{RoomCode: "ABCDEF", PlayerID: "p1", Name: "Alice", PasswordHash: "h"}))

	rec, err := s.GetRoomPlayer(ctx, "ABCDEF", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", rec.Name)

	_, err = s.GetRoomPlayer(ctx, "ABCDEF", "missing")
	assert.True(t, errkind.Is(err, errkind.NotFound))

	err = s.CreateRoomPlayer(ctx, store.RoomPlayerRecord{RoomCode: "ABCDEF", PlayerID: "p1", Name: "Alice", PasswordHash: "h"})
	assert.True(t, errkind.Is(err, errkind.Conflict))

	all, err := s.ListRoomPlayers(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
