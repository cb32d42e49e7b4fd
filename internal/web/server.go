package web

import (
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/gorilla/websocket"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-history/internal/app"
)

const defaultHeartbeat = 15 * time.Second

// Option configures the handler built by NewServer.
type Option func(*handlers)

// WithLogger sets the logger used for requests and rendering errors.
func WithLogger(l *zap.Logger) Option {
    return func(h *handlers) {
        if l != nil {
            h.log = l
        }
    }
}

// WithHeartbeat sets the keep-alive interval of event streams and sockets.
func WithHeartbeat(d time.Duration) Option {
    return func(h *handlers) {
        if d > 0 {
            h.heartbeat = d
        }
    }
}

// NewServer wires routes and returns an http.Handler. It also installs the
// board renderer on s so every state change reaches live subscribers.
func NewServer(s *app.Service, opts ...Option) http.Handler {
    h := &handlers{svc: s, tpl: loadTemplates(), log: zap.NewNop(), heartbeat: defaultHeartbeat}
    for _, opt := range opts {
        opt(h)
    }
    h.log = h.log.With(zap.String("component", "web"))
    s.SetRenderer(h.broadcastBoard)
    up := &socketHub{h: h, upgrader: websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 4096}}

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(requestLogger(h.log))
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Get("/healthz", h.health)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Get("/board", h.board)
        r.Post("/play", h.play)
        r.Post("/jump", h.jump)
        r.Post("/order", h.order)
        r.Get("/events", h.events)
        r.Get("/ws", up.serve)
    })
    return r
}
