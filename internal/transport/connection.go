package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/holdem-engine/internal/dispatch"
	"github.com/lox/holdem-engine/internal/engine"
	"github.com/lox/holdem-engine/internal/errkind"
	"github.com/lox/holdem-engine/internal/orchestrator"
	"github.com/lox/holdem-engine/internal/wire"
)

// Connection lifetime constants, mirroring the teacher's
// internal/server/connection.go ping/pong discipline.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// handleStream upgrades to a WebSocket and serves spec.md §6.1's
// Subscribe command plus authenticated command submission over the
// same connection: one stream carries both the push side (GameState)
// and the request/response side (SubmitAction and friends).
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	roomCode := q.Get("room")
	mode := q.Get("mode")
	token := q.Get("token")

	room, ok := s.registry.Lookup(roomCode)
	if !ok {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	game, ok := s.manager.Game(room.GameID)
	if !ok {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}

	var seat *int
	var playerID string
	if mode == "player" {
		id, err := s.sessions.Validate(r.Context(), token)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}
		if id.RoomCode != roomCode {
			http.Error(w, "token not valid for this room", http.StatusForbidden)
			return
		}
		idx, ok := seatIndexFor(game, id.PlayerID)
		if !ok {
			http.Error(w, "player not seated in this game", http.StatusForbidden)
			return
		}
		seat = &idx
		playerID = id.PlayerID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	sub := s.hub.Subscribe(roomCode, seat)
	c := &streamConn{
		conn:     conn,
		logger:   s.logger.With().Str("room_code", roomCode).Logger(),
		manager:  s.manager,
		game:     game,
		playerID: playerID,
		authed:   mode == "player",
		sub:      sub,
		ctx:      context.Background(),
	}
	c.run()
}

func seatIndexFor(game *orchestrator.Game, playerID string) (int, bool) {
	for _, seat := range game.State().Seats {
		if seat.ID == playerID {
			return seat.Index, true
		}
	}
	return 0, false
}

// streamConn pumps one subscriber's projections out and reads
// authenticated commands in, adapted from the teacher's Connection
// (internal/server/connection.go): same ping/pong deadlines, same
// read/write goroutine split.
type streamConn struct {
	conn     *websocket.Conn
	logger   zerolog.Logger
	manager  *orchestrator.Manager
	game     *orchestrator.Game
	playerID string
	authed   bool
	sub      *dispatch.Subscription
	ctx      context.Context
}

func (c *streamConn) run() {
	go c.writePump()
	c.readPump()
}

func (c *streamConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.sub.Close()
		_ = c.conn.Close()
	}()

	_ = c.writeEnvelope(wire.ServerEnvelope{Type: "hello"})
	_ = c.writeEnvelope(wire.ServerEnvelope{Type: "subscribed"})

	// spec.md §4.7: a subscriber may request an initial snapshot at
	// subscribe time rather than waiting for the next state change.
	initial := wire.ToGameState(c.game.State(), c.sub.Seat)
	_ = c.writeEnvelope(wire.ServerEnvelope{Type: "game_state", State: &initial})

	for {
		select {
		case state, ok := <-c.sub.Updates:
			if !ok {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.writeEnvelope(wire.ServerEnvelope{Type: "game_state", State: &state}); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *streamConn) writeEnvelope(env wire.ServerEnvelope) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(env)
}

func (c *streamConn) readPump() {
	defer func() { _ = c.conn.Close() }()

	c.conn.SetReadLimit(8192)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var cmd wire.CommandEnvelope
		if err := c.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("stream closed")
			}
			return
		}
		c.handleCommand(cmd)
	}
}

func (c *streamConn) handleCommand(cmd wire.CommandEnvelope) {
	if !c.authed && cmd.Type != "" {
		_ = c.writeEnvelope(wire.ServerEnvelope{Type: "error", Error: &wire.ErrorResponse{
			Kind: string(errkind.Unauthenticated), Reason: "table-view subscriptions cannot submit commands",
		}})
		return
	}

	seatIdx, ok := seatIndexFor(c.game, c.playerID)
	if !ok {
		c.sendError(errkind.New(errkind.Forbidden, "no longer seated in this game"))
		return
	}

	var err error
	switch cmd.Type {
	case "start_hand":
		err = c.game.StartHand(c.ctx)
	case "submit_action":
		if cmd.Action == nil {
			err = errkind.New(errkind.InvalidState, "missing action")
			break
		}
		err = c.game.Act(c.ctx, seatIdx, engine.ActionRequest{Kind: engine.ActionKind(cmd.Action.Kind), Amount: cmd.Action.Amount})
	case "reveal_card":
		err = c.game.RevealCard(c.ctx, seatIdx)
	case "advance":
		err = c.game.Advance(c.ctx)
	case "next_hand":
		err = c.game.NextHand(c.ctx)
	case "legal_actions":
		legal := engine.Legal(c.game.State())
		wireLegal := wire.ToActionRequest(legal)
		_ = c.writeEnvelope(wire.ServerEnvelope{Type: "legal_actions", Legal: &wireLegal})
		return
	default:
		err = errkind.Newf(errkind.InvalidState, "unknown command %q", cmd.Type)
	}

	if err != nil {
		c.sendError(err)
	}
}

func (c *streamConn) sendError(err error) {
	_ = c.writeEnvelope(wire.ServerEnvelope{Type: "error", Error: &wire.ErrorResponse{
		Kind: string(errkind.KindOf(err)), Reason: err.Error(),
	}})
}
