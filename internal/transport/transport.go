// Package transport is the HTTP+WebSocket command/stream surface over
// internal/orchestrator, matching spec.md §6.1's transport-agnostic
// command API. Grounded on the teacher's internal/server package:
// Server owns one *http.ServeMux and one websocket.Upgrader
// (internal/server/server.go), and the per-connection pump/dispatch
// loop is adapted from internal/server/connection.go.
package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/authn"
	"github.com/lox/holdem-engine/internal/clockutil"
	"github.com/lox/holdem-engine/internal/dispatch"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/orchestrator"
	"github.com/lox/holdem-engine/internal/registry"
	"github.com/lox/holdem-engine/internal/store"
	"github.com/lox/holdem-engine/internal/wire"
)

const sessionTTL = 12 * time.Hour

// Server wires the orchestrator's command lane to HTTP request/response
// handlers and a WebSocket stream, matching spec.md §6.1's concrete
// transports ("request/response and push are both supported").
type Server struct {
	logger        zerolog.Logger
	manager       *orchestrator.Manager
	registry      *registry.Registry
	hub           *dispatch.Hub
	store         store.Store
	sessions      *authn.SessionManager
	upgrader      websocket.Upgrader
	defaultConfig engine.GameConfig

	mux *http.ServeMux
	srv *http.Server
}

// New builds a Server. manager, reg, hub, and st are shared with
// whatever else runs in the process; each Server builds its own
// session manager, so sessions are not shared between Servers.
// defaultConfig fills in any zero field a CreateGame request leaves
// unset.
func New(logger zerolog.Logger, manager *orchestrator.Manager, reg *registry.Registry, hub *dispatch.Hub, st store.Store, defaultConfig engine.GameConfig) *Server {
	s := &Server{
		logger:        logger.With().Str("component", "transport").Logger(),
		manager:       manager,
		registry:      reg,
		hub:           hub,
		store:         st,
		sessions:      authn.NewSessionManager(clockutil.Real(), sessionTTL),
		upgrader:      websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096, CheckOrigin: func(*http.Request) bool { return true }},
		defaultConfig: defaultConfig,
		mux:           http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/games", s.handleCreateGame)
	s.mux.HandleFunc("/rooms/", s.handleRoomAction) // /rooms/{code}/join|auth
	s.mux.HandleFunc("/ws", s.handleStream)
}

// Serve starts the HTTP server on addr and blocks until it exits.
func (s *Server) Serve(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.mux}
	s.logger.Info().Str("addr", addr).Msg("transport starting")
	err := s.srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, errkind.New(errkind.InvalidState, "POST only"))
		return
	}
	var req wire.CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errkind.Wrap(errkind.InvalidState, "decode request", err))
		return
	}
	config := s.defaultConfig
	if req.SmallBlind != 0 {
		config.SmallBlind = req.SmallBlind
	}
	if req.BigBlind != 0 {
		config.BigBlind = req.BigBlind
	}
	if req.StartingChips != 0 {
		config.StartingChips = req.StartingChips
	}
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	game, err := s.manager.CreateGame(r.Context(), config, seed)
	if err != nil {
		writeCommandError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wire.CreateGameResponse{GameID: game.ID(), RoomCode: game.State().RoomCode})
}

// handleRoomAction dispatches POST /rooms/{code}/join and
// /rooms/{code}/auth, the two credential-presenting commands that seat
// a player and issue their session token (spec.md §6.1/§6.2).
func (s *Server) handleRoomAction(w http.ResponseWriter, r *http.Request) {
	code, action, ok := parseRoomPath(r.URL.Path)
	if !ok || r.Method != http.MethodPost {
		writeError(w, http.StatusNotFound, errkind.New(errkind.NotFound, "unknown route"))
		return
	}

	room, ok := s.registry.Lookup(code)
	if !ok {
		writeError(w, http.StatusNotFound, errkind.Newf(errkind.NotFound, "room %s not found", code))
		return
	}
	game, ok := s.manager.Game(room.GameID)
	if !ok {
		writeError(w, http.StatusNotFound, errkind.Newf(errkind.NotFound, "game for room %s not found", code))
		return
	}

	var req wire.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errkind.Wrap(errkind.InvalidState, "decode request", err))
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, errkind.New(errkind.InvalidState, "name is required"))
		return
	}

	switch action {
	case "join":
		s.handleJoin(w, r, code, game, req)
	case "auth":
		s.handleAuth(w, r, code, game, req)
	default:
		writeError(w, http.StatusNotFound, errkind.New(errkind.NotFound, "unknown room action"))
	}
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, roomCode string, game *orchestrator.Game, req wire.JoinGameRequest) {
	ctx := r.Context()
	if existing := findRoomPlayerByName(ctx, s.store, roomCode, req.Name); existing != nil {
		writeError(w, http.StatusConflict, errkind.Newf(errkind.Conflict, "name %q already registered, use auth", req.Name))
		return
	}

	hash, err := authn.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, errkind.Wrap(errkind.Internal, "hash password", err))
		return
	}
	playerID := uuid.NewString()
	if err := s.store.CreateRoomPlayer(ctx, store.RoomPlayerRecord{
		RoomCode: roomCode, PlayerID: playerID, Name: req.Name, PasswordHash: hash,
	}); err != nil {
		writeCommandError(w, errkind.Wrap(errkind.StorageUnavailable, "create room player", err))
		return
	}

	seat, err := game.JoinGame(ctx, playerID, req.Name)
	if err != nil {
		writeCommandError(w, err)
		return
	}

	token := s.sessions.Issue(authn.Identity{RoomCode: roomCode, PlayerID: playerID, Name: req.Name})
	writeJSON(w, http.StatusOK, wire.JoinGameResponse{SeatID: seat, AuthToken: token})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request, roomCode string, game *orchestrator.Game, req wire.JoinGameRequest) {
	ctx := r.Context()
	rec := findRoomPlayerByName(ctx, s.store, roomCode, req.Name)
	if rec == nil {
		writeError(w, http.StatusNotFound, errkind.Newf(errkind.NotFound, "no room player named %q", req.Name))
		return
	}
	if err := authn.VerifyPassword(rec.PasswordHash, req.Password); err != nil {
		writeError(w, http.StatusUnauthorized, errkind.Wrap(errkind.Unauthenticated, "wrong password", err))
		return
	}

	state := game.State()
	seatIdx := -1
	for _, seat := range state.Seats {
		if seat.ID == rec.PlayerID {
			seatIdx = seat.Index
			break
		}
	}
	if seatIdx == -1 {
		// The room rotated to a new game since this player last played;
		// re-seat them under their existing credential.
		idx, err := game.JoinGame(ctx, rec.PlayerID, rec.Name)
		if err != nil {
			writeCommandError(w, err)
			return
		}
		seatIdx = idx
	}

	token := s.sessions.Issue(authn.Identity{RoomCode: roomCode, PlayerID: rec.PlayerID, Name: rec.Name})
	writeJSON(w, http.StatusOK, wire.JoinGameResponse{SeatID: seatIdx, AuthToken: token})
}

func findRoomPlayerByName(ctx context.Context, st store.Store, roomCode, name string) *store.RoomPlayerRecord {
	players, err := st.ListRoomPlayers(ctx, roomCode)
	if err != nil {
		return nil
	}
	for _, p := range players {
		if p.Name == name {
			rec := p
			return &rec
		}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, wire.ErrorResponse{Kind: string(errkind.KindOf(err)), Reason: err.Error()})
}

func writeCommandError(w http.ResponseWriter, err error) {
	writeError(w, statusForKind(errkind.KindOf(err)), err)
}

func statusForKind(kind errkind.Kind) int {
	switch kind {
	case errkind.NotFound:
		return http.StatusNotFound
	case errkind.Unauthenticated:
		return http.StatusUnauthorized
	case errkind.Forbidden:
		return http.StatusForbidden
	case errkind.InvalidState, errkind.InvalidAmount:
		return http.StatusBadRequest
	case errkind.Conflict:
		return http.StatusConflict
	case errkind.StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func parseRoomPath(path string) (code, action string, ok bool) {
	const prefix = "/rooms/"
	if len(path) <= len(prefix) || path[:len(prefix)] != prefix {
		return "", "", false
	}
	rest := path[len(prefix):]
	slash := -1
	for i, c := range rest {
		if c == '/' {
			slash = i
			break
		}
	}
	if slash == -1 {
		return "", "", false
	}
	return rest[:slash], rest[slash+1:], true
}
