package web

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/mitchellh/mapstructure"
    "go.uber.org/zap"
)

const writeWait = 10 * time.Second

var errMissingField = errors.New("missing field")

// socketMessage is a command sent by a socket client, e.g.
// {"type": "play", "contents": {"index": 4}}.
type socketMessage struct {
    Type     string      `json:"type"`
    Contents interface{} `json:"contents"`
}

type playRequest struct {
    Index *int `mapstructure:"index"`
}

type jumpRequest struct {
    Move *int `mapstructure:"move"`
}

// socketHub serves the WebSocket view of a game: board fragments out,
// commands in.
type socketHub struct {
    h        *handlers
    upgrader websocket.Upgrader
}

func (s *socketHub) serve(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := s.h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := s.upgrader.Upgrade(w, r, nil)
    if err != nil {
        s.h.log.Debug("websocket upgrade", zap.String("game", id), zap.Error(err))
        return
    }
    defer conn.Close()

    ctx, cancel := context.WithCancel(r.Context())
    defer cancel()
    ch, unsub, err := s.h.svc.Subscribe(ctx, id)
    if err != nil {
        return
    }
    defer unsub()

    // read after subscribing so no change falls between the two
    gs, ok := s.h.svc.Get(id)
    if !ok {
        return
    }
    initial, err := s.h.renderBoard(*gs)
    if err != nil {
        s.h.log.Error("render board", zap.String("game", id), zap.Error(err))
        return
    }
    _ = conn.SetWriteDeadline(time.Now().Add(writeWait))
    if err := conn.WriteMessage(websocket.TextMessage, initial); err != nil {
        return
    }

    go s.writeLoop(ctx, conn, ch)

    for {
        _, frame, err := conn.ReadMessage()
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
                s.h.log.Debug("websocket read", zap.String("game", id), zap.Error(err))
            }
            return
        }
        msg, err := decodeMessage(frame)
        if err != nil {
            s.h.log.Debug("malformed socket command", zap.String("game", id), zap.Error(err))
            continue
        }
        if err := s.dispatch(id, msg); err != nil {
            s.h.log.Debug("ignored socket command", zap.String("game", id), zap.String("type", msg.Type), zap.Error(err))
        }
    }
}

// decodeMessage parses one frame. Numbers stay json.Number so that
// fractional values fail integer decoding instead of being truncated.
func decodeMessage(frame []byte) (socketMessage, error) {
    var msg socketMessage
    dec := json.NewDecoder(bytes.NewReader(frame))
    dec.UseNumber()
    err := dec.Decode(&msg)
    return msg, err
}

// writeLoop is the only writer after the initial frame. It closes the
// connection when the subscription ends so the read loop returns too.
func (s *socketHub) writeLoop(ctx context.Context, conn *websocket.Conn, ch <-chan []byte) {
    ticker := time.NewTicker(s.h.heartbeat)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
                _ = conn.Close()
                return
            }
        case b, ok := <-ch:
            if !ok {
                _ = conn.WriteControl(websocket.CloseMessage,
                    websocket.FormatCloseMessage(websocket.CloseGoingAway, "game closed"),
                    time.Now().Add(writeWait))
                _ = conn.Close()
                return
            }
            _ = conn.SetWriteDeadline(time.Now().Add(writeWait))
            if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
                _ = conn.Close()
                return
            }
        }
    }
}

// dispatch applies one command. Successful changes reach this socket
// through the subscription like any other.
func (s *socketHub) dispatch(id string, msg socketMessage) error {
    switch msg.Type {
    case "play":
        var req playRequest
        if err := mapstructure.Decode(msg.Contents, &req); err != nil {
            return err
        }
        if req.Index == nil {
            return errMissingField
        }
        _, err := s.h.svc.Play(id, *req.Index)
        return err
    case "jump":
        var req jumpRequest
        if err := mapstructure.Decode(msg.Contents, &req); err != nil {
            return err
        }
        if req.Move == nil {
            return errMissingField
        }
        _, err := s.h.svc.Jump(id, *req.Move)
        return err
    case "order":
        _, err := s.h.svc.ToggleOrder(id)
        return err
    default:
        return errors.New("unknown command " + msg.Type)
    }
}
