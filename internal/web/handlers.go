package web

import (
    "errors"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-history/internal/app"
)

type handlers struct {
    svc       *app.Service
    tpl       *templates
    log       *zap.Logger
    heartbeat time.Duration
}

func (h *handlers) renderBoard(gs app.GameState) ([]byte, error) {
    return renderTemplate(h.tpl.board, "", newBoardView(gs))
}

// broadcastBoard renders board fragments for service subscribers.
func (h *handlers) broadcastBoard(gs app.GameState) []byte {
    b, err := h.renderBoard(gs)
    if err != nil {
        h.log.Error("render board", zap.String("game", gs.ID), zap.Error(err))
        return nil
    }
    return b
}

func (h *handlers) writeHTML(w http.ResponseWriter, b []byte, err error) {
    if err != nil {
        h.log.Error("render template", zap.Error(err))
        http.Error(w, "render failed", http.StatusInternalServerError)
        return
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(b)
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    b, err := renderTemplate(h.tpl.index, "", nil)
    h.writeHTML(w, b, err)
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/plain; charset=utf-8")
    _, _ = io.WriteString(w, "ok")
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.CreateGame()
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    // Render page with embedded board container
    b, err := renderTemplate(h.tpl.game, "", newBoardView(*gs))
    h.writeHTML(w, b, err)
}

func (h *handlers) board(w http.ResponseWriter, r *http.Request) {
    gs, ok := h.svc.Get(chi.URLParam(r, "id"))
    if !ok {
        http.NotFound(w, r)
        return
    }
    b, err := h.renderBoard(*gs)
    h.writeHTML(w, b, err)
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    _ = r.ParseForm()
    gs, err := h.svc.PlayAt(id, formInt(r, "r"), formInt(r, "c"))
    h.respondBoard(w, r, gs, err)
}

func (h *handlers) jump(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    _ = r.ParseForm()
    gs, err := h.svc.Jump(id, formInt(r, "move"))
    h.respondBoard(w, r, gs, err)
}

func (h *handlers) order(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.ToggleOrder(chi.URLParam(r, "id"))
    h.respondBoard(w, r, gs, err)
}

// respondBoard writes the board after a state change. Illegal moves and bad
// jumps leave the board as it was and show no message.
func (h *handlers) respondBoard(w http.ResponseWriter, r *http.Request, gs *app.GameState, err error) {
    if errors.Is(err, app.ErrNotFound) || gs == nil {
        http.NotFound(w, r)
        return
    }
    if err != nil {
        h.log.Debug("ignored request", zap.String("game", gs.ID), zap.String("path", r.URL.Path), zap.Error(err))
    }
    b, rerr := h.renderBoard(*gs)
    h.writeHTML(w, b, rerr)
}

// formInt reads an integer form value; missing or malformed values become
// -1 so they fail bounds checks instead of defaulting to cell 0.
func formInt(r *http.Request, key string) int {
    v, err := strconv.Atoi(r.Form.Get(key))
    if err != nil {
        return -1
    }
    return v
}

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    if _, ok := h.svc.Get(id); !ok {
        http.NotFound(w, r)
        return
    }
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, unsub, err := h.svc.Subscribe(ctx, id)
    if err != nil {
        w.WriteHeader(http.StatusOK)
        return
    }
    defer unsub()
    ticker := time.NewTicker(h.heartbeat)
    defer ticker.Stop()
    w.WriteHeader(http.StatusOK)
    // current board, read after subscribing so no change falls in between
    if gs, ok := h.svc.Get(id); ok {
        if b, err := h.renderBoard(*gs); err == nil {
            _ = writeEvent(w, "board", b)
        }
    }
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            _ = writeEvent(w, "board", b)
            flusher.Flush()
        }
    }
}
