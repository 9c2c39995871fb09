// Package sqlstore is a store.Store backed by modernc.org/sqlite, a
// pure-Go driver, with schema managed by goose migrations embedded
// into the binary.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/store"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a store.Store implementation over a SQLite database file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite database at path and
// brings its schema up to date via goose.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite single-writer; see spec.md §5

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreateGame(ctx context.Context, rec store.GameRecord) error {
	config, err := json.Marshal(rec.Config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (game_id, room_code, config, seed) VALUES (?, ?, ?, ?)`,
		rec.GameID, rec.RoomCode, config, rec.Seed)
	if err != nil {
		return errkind.Wrap(errkind.StorageUnavailable, "create game", err)
	}
	return nil
}

func (s *Store) AppendEvents(ctx context.Context, gameID string, events []store.EventRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errkind.Wrap(errkind.StorageUnavailable, "begin append", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (game_id, seq, hand_no, kind, seat, payload) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errkind.Wrap(errkind.StorageUnavailable, "prepare append", err)
	}
	defer stmt.Close()

	for _, e := range events {
		var seat any
		if e.Seat != nil {
			seat = *e.Seat
		}
		if _, err := stmt.ExecContext(ctx, gameID, e.Seq, e.HandNo, string(e.Kind), seat, string(e.Payload)); err != nil {
			return errkind.Wrap(errkind.StorageUnavailable, "append event", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return errkind.Wrap(errkind.StorageUnavailable, "commit append", err)
	}
	return nil
}

func (s *Store) ReadEvents(ctx context.Context, gameID string, sinceSeq uint64) ([]store.EventRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, hand_no, kind, seat, payload FROM events WHERE game_id = ? AND seq > ? ORDER BY seq`,
		gameID, sinceSeq)
	if err != nil {
		return nil, errkind.Wrap(errkind.StorageUnavailable, "read events", err)
	}
	defer rows.Close()

	var out []store.EventRecord
	for rows.Next() {
		var rec store.EventRecord
		var kind string
		var seat sql.NullInt64
		var payload string
		if err := rows.Scan(&rec.Seq, &rec.HandNo, &kind, &seat, &payload); err != nil {
			return nil, errkind.Wrap(errkind.StorageUnavailable, "scan event", err)
		}
		rec.GameID = gameID
		rec.Kind = engine.EventKind(kind)
		rec.Payload = json.RawMessage(payload)
		if seat.Valid {
			v := int(seat.Int64)
			rec.Seat = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) WriteSnapshot(ctx context.Context, gameID string, snap store.SnapshotRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshots (game_id, revision, last_seq, state) VALUES (?, ?, ?, ?)
		 ON CONFLICT (game_id) DO UPDATE SET revision = excluded.revision, last_seq = excluded.last_seq, state = excluded.state`,
		gameID, snap.Revision, snap.LastSeq, string(snap.State))
	if err != nil {
		return errkind.Wrap(errkind.StorageUnavailable, "write snapshot", err)
	}
	return nil
}

func (s *Store) ReadSnapshot(ctx context.Context, gameID string) (*store.SnapshotRecord, error) {
	var snap store.SnapshotRecord
	var state string
	err := s.db.QueryRowContext(ctx,
		`SELECT revision, last_seq, state FROM snapshots WHERE game_id = ?`, gameID).
		Scan(&snap.Revision, &snap.LastSeq, &state)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errkind.Wrap(errkind.StorageUnavailable, "read snapshot", err)
	}
	snap.GameID = gameID
	snap.State = json.RawMessage(state)
	return &snap, nil
}

func (s *Store) CreateRoomPlayer(ctx context.Context, rec store.RoomPlayerRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO room_players (room_code, player_id, name, password_hash) VALUES (?, ?, ?, ?)`,
		rec.RoomCode, rec.PlayerID, rec.Name, rec.PasswordHash)
	if err != nil {
		return errkind.Wrap(errkind.Conflict, "create room player", err)
	}
	return nil
}

func (s *Store) GetRoomPlayer(ctx context.Context, roomCode, playerID string) (*store.RoomPlayerRecord, error) {
	rec := store.RoomPlayerRecord{RoomCode: roomCode, PlayerID: playerID}
	err := s.db.QueryRowContext(ctx,
		`SELECT name, password_hash FROM room_players WHERE room_code = ? AND player_id = ?`,
		roomCode, playerID).Scan(&rec.Name, &rec.PasswordHash)
	if err == sql.ErrNoRows {
		return nil, errkind.Newf(errkind.NotFound, "player %s not found in room %s", playerID, roomCode)
	}
	if err != nil {
		return nil, errkind.Wrap(errkind.StorageUnavailable, "get room player", err)
	}
	return &rec, nil
}

func (s *Store) ListRoomPlayers(ctx context.Context, roomCode string) ([]store.RoomPlayerRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT player_id, name, password_hash FROM room_players WHERE room_code = ?`, roomCode)
	if err != nil {
		return nil, errkind.Wrap(errkind.StorageUnavailable, "list room players", err)
	}
	defer rows.Close()

	var out []store.RoomPlayerRecord
	for rows.Next() {
		rec := store.RoomPlayerRecord{RoomCode: roomCode}
		if err := rows.Scan(&rec.PlayerID, &rec.Name, &rec.PasswordHash); err != nil {
			return nil, errkind.Wrap(errkind.StorageUnavailable, "scan room player", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
