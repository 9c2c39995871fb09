package transport

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/lox/holdem-engine/internal/wire"
)

// dialStream opens a table-view (unauthenticated) subscription to
// roomCode, adapted from the teacher's httptest.NewServer + Dial
// pattern in internal/server/integration_test.go.
func dialStream(t *testing.T, ts *httptest.Server, roomCode string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=" + roomCode
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wire.ServerEnvelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env wire.ServerEnvelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestStreamSendsHelloAndSubscribed(t *testing.T) {
	s := newTestServer()
	ts := httptest.NewServer(s.mux)
	defer ts.Close()

	rec := postJSON(t, s, "/games", wire.CreateGameRequest{})
	require.Equal(t, 200, rec.Code)
	var created wire.CreateGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	conn := dialStream(t, ts, created.RoomCode)
	defer conn.Close()

	hello := readEnvelope(t, conn)
	require.Equal(t, "hello", hello.Type)
	sub := readEnvelope(t, conn)
	require.Equal(t, "subscribed", sub.Type)
}

func TestStreamRejectsCommandsFromUnauthenticatedView(t *testing.T) {
	s := newTestServer()
	ts := httptest.NewServer(s.mux)
	defer ts.Close()

	rec := postJSON(t, s, "/games", wire.CreateGameRequest{})
	require.Equal(t, 200, rec.Code)
	var created wire.CreateGameResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	conn := dialStream(t, ts, created.RoomCode)
	defer conn.Close()

	readEnvelope(t, conn) // hello
	readEnvelope(t, conn) // subscribed
	readEnvelope(t, conn) // initial game_state snapshot

	require.NoError(t, conn.WriteJSON(wire.CommandEnvelope{Type: "start_hand"}))

	errEnv := readEnvelope(t, conn)
	require.Equal(t, "error", errEnv.Type)
	require.NotNil(t, errEnv.Error)
	require.Equal(t, "unauthenticated", errEnv.Error.Kind)
}

func TestStreamRejectsUnknownRoom(t *testing.T) {
	s := newTestServer()
	ts := httptest.NewServer(s.mux)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?room=ZZZZZZ"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	require.Equal(t, 404, resp.StatusCode)
}
