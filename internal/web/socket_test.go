package web

import (
    "net/http/httptest"
    "strings"
    "testing"
    "time"

    "github.com/gorilla/websocket"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/jaminalder/tictactoe-history/internal/app"
    "github.com/jaminalder/tictactoe-history/internal/domain"
)

func dialGame(t *testing.T, srv *httptest.Server, id string) *websocket.Conn {
    t.Helper()
    u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/game/" + id + "/ws"
    conn, _, err := websocket.DefaultDialer.Dial(u, nil)
    require.NoError(t, err)
    t.Cleanup(func() { _ = conn.Close() })
    return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
    t.Helper()
    require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
    _, b, err := conn.ReadMessage()
    require.NoError(t, err)
    return string(b)
}

func TestSocketCommands(t *testing.T) {
    svc := app.NewService()
    srv := httptest.NewServer(NewServer(svc))
    defer srv.Close()
    gs, _ := svc.CreateGame()

    conn := dialGame(t, srv, gs.ID)
    assert.Contains(t, readFrame(t, conn), "Next player:X")

    require.NoError(t, conn.WriteJSON(map[string]any{"type": "play", "contents": map[string]any{"index": 4}}))
    assert.Contains(t, readFrame(t, conn), "Next player:O")

    // ignored: occupied cell, missing field, unknown command, bad jump,
    // fractional numbers, malformed frame
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "play", "contents": map[string]any{"index": 4}}))
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "play", "contents": map[string]any{}}))
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "resign"}))
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "jump", "contents": map[string]any{"move": 9}}))
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "play", "contents": map[string]any{"index": 2.5}}))
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "jump", "contents": map[string]any{"move": 0.9}}))
    require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "play", "contents": {"index": `)))

    // an order toggle round-trips behind the ignored commands, so the
    // state below reflects all of them
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "order"}))
    assert.Contains(t, readFrame(t, conn), "Sort ascending")
    require.NoError(t, conn.WriteJSON(map[string]any{"type": "order"}))
    assert.Contains(t, readFrame(t, conn), "Sort descending")
    mid, _ := svc.Get(gs.ID)
    assert.Equal(t, 2, mid.Game.Len())
    assert.Equal(t, 1, mid.Game.Cursor())
    assert.Equal(t, domain.Empty, mid.Game.Current().Board[2])

    require.NoError(t, conn.WriteJSON(map[string]any{"type": "jump", "contents": map[string]any{"move": 0}}))
    frame := readFrame(t, conn)
    assert.Contains(t, frame, "<strong>Go to game start</strong>")
    assert.Contains(t, frame, "Go to move #1")

    require.NoError(t, conn.WriteJSON(map[string]any{"type": "order"}))
    assert.Contains(t, readFrame(t, conn), "Sort ascending")

    latest, _ := svc.Get(gs.ID)
    assert.Equal(t, 2, latest.Game.Len())
    assert.Equal(t, 0, latest.Game.Cursor())
    assert.True(t, latest.Descending)
    assert.Equal(t, domain.X, latest.Game.Snapshot(1).Board[4])
}

func TestSocketReceivesFormMoves(t *testing.T) {
    svc := app.NewService()
    h := NewServer(svc)
    srv := httptest.NewServer(h)
    defer srv.Close()
    gs, _ := svc.CreateGame()

    conn := dialGame(t, srv, gs.ID)
    readFrame(t, conn)

    _, err := svc.PlayAt(gs.ID, 0, 0)
    require.NoError(t, err)
    assert.Contains(t, readFrame(t, conn), "Next player:O")
}

func TestSocketClosedOnDisconnect(t *testing.T) {
    svc := app.NewService()
    srv := httptest.NewServer(NewServer(svc))
    defer srv.Close()
    gs, _ := svc.CreateGame()

    conn := dialGame(t, srv, gs.ID)
    readFrame(t, conn)

    require.Equal(t, 0, svc.Expire(0), "watched games do not expire")
    require.Equal(t, 1, svc.DisconnectAll())
    require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
    _, _, err := conn.ReadMessage()
    require.Error(t, err)
    assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}
