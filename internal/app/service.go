package app

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/google/uuid"
    "go.uber.org/zap"

    "github.com/jaminalder/tictactoe-history/internal/domain"
)

// Errors exposed by the service layer.
var (
    ErrNotFound = errors.New("game not found")
)

// GameState is the in-memory state tracked per game session.
type GameState struct {
    ID   string
    Game domain.Game
    // Descending flips the display order of the move list; it never
    // touches the game history.
    Descending bool
    Created    time.Time
    // Updated is the last activity: a change, or the last viewer leaving.
    Updated time.Time
}

type subscriber struct {
    ch        chan []byte
    closeOnce sync.Once
}

func (s *subscriber) close() { s.closeOnce.Do(func() { close(s.ch) }) }

// Service manages game sessions and their subscribers.
type Service struct {
    mu     sync.Mutex
    games  map[string]*GameState
    subs   map[string]map[*subscriber]struct{}
    render func(GameState) []byte
    log    *zap.Logger
    now    func() time.Time
}

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService() *Service { return NewServiceWithRenderer(nil) }

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    return &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        render: renderer,
        log:    zap.NewNop(),
        now:    time.Now,
    }
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

// SetLogger replaces the service logger.
func (s *Service) SetLogger(l *zap.Logger) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if l == nil {
        l = zap.NewNop()
    }
    s.log = l.With(zap.String("component", "service"))
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame() (*GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    id := uuid.NewString()
    now := s.now()
    gs := &GameState{ID: id, Game: domain.New(), Created: now, Updated: now}
    s.games[id] = gs
    s.log.Info("game created", zap.String("game", id))
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Play applies a move at cell idx (0..8) and broadcasts the new state.
// On a domain error the unchanged state is returned alongside the error.
func (s *Service) Play(id string, idx int) (*GameState, error) {
    return s.update(id, "play", func(gs *GameState) error { return gs.Game.Play(idx) })
}

// PlayAt applies a move at row r, column c (0..2).
func (s *Service) PlayAt(id string, r, c int) (*GameState, error) {
    return s.update(id, "play", func(gs *GameState) error { return gs.Game.PlayAt(r, c) })
}

// Jump moves the game cursor to snapshot move.
func (s *Service) Jump(id string, move int) (*GameState, error) {
    return s.update(id, "jump", func(gs *GameState) error { return gs.Game.Jump(move) })
}

// ToggleOrder flips the move list display order.
func (s *Service) ToggleOrder(id string) (*GameState, error) {
    return s.update(id, "order", func(gs *GameState) error {
        gs.Descending = !gs.Descending
        return nil
    })
}

// update runs fn on the stored state under the lock, then fans out the
// rendered result. Nothing is broadcast when fn fails.
func (s *Service) update(id, op string, fn func(*GameState) error) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if err := fn(gs); err != nil {
        cp := *gs
        log := s.log
        s.mu.Unlock()
        log.Debug("operation rejected", zap.String("game", id), zap.String("op", op), zap.Error(err))
        return &cp, err
    }
    gs.Updated = s.now()

    cp := *gs
    payload := s.render(cp)
    dropped := s.broadcastLocked(id, payload)
    log := s.log
    s.mu.Unlock()

    log.Debug("game updated",
        zap.String("game", id),
        zap.String("op", op),
        zap.Int("cursor", cp.Game.Cursor()),
        zap.Int("snapshots", cp.Game.Len()),
    )
    if dropped > 0 {
        log.Debug("dropped slow subscribers", zap.String("game", id), zap.Int("count", dropped))
    }
    return &cp, nil
}

// broadcastLocked fans payload out without blocking; slow subscribers are
// closed and dropped. Sends and closes both happen under s.mu.
func (s *Service) broadcastLocked(id string, payload []byte) int {
    dropped := 0
    for sub := range s.subs[id] {
        select {
        case sub.ch <- payload:
        default:
            sub.close()
            delete(s.subs[id], sub)
            dropped++
        }
    }
    return dropped
}

// Subscribe registers a subscriber for a game. Returns a channel and an
// unsubscribe func; the subscription also ends when ctx is done.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func(), error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        return nil, nil, ErrNotFound
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            defer s.mu.Unlock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
                if len(set) == 0 {
                    delete(s.subs, id)
                    if gs, ok := s.games[id]; ok {
                        gs.Updated = s.now()
                    }
                }
            }
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub, nil
}

// Expire removes games idle for longer than maxIdle. A game with live
// subscribers is never idle. It returns the number of games removed.
func (s *Service) Expire(maxIdle time.Duration) int {
    s.mu.Lock()
    cutoff := s.now().Add(-maxIdle)
    removed := 0
    for id, gs := range s.games {
        if len(s.subs[id]) > 0 || gs.Updated.After(cutoff) {
            continue
        }
        delete(s.subs, id)
        delete(s.games, id)
        removed++
    }
    log := s.log
    s.mu.Unlock()

    if removed > 0 {
        log.Info("expired idle games", zap.Int("count", removed), zap.Duration("max_idle", maxIdle))
    }
    return removed
}

// DisconnectAll closes every subscriber so streaming handlers return,
// e.g. before the HTTP server shuts down. Games are kept.
func (s *Service) DisconnectAll() int {
    s.mu.Lock()
    n := 0
    for id, set := range s.subs {
        for sub := range set {
            sub.close()
            n++
        }
        delete(s.subs, id)
    }
    log := s.log
    s.mu.Unlock()

    if n > 0 {
        log.Info("disconnected subscribers", zap.Int("count", n))
    }
    return n
}

// Len returns the number of live games.
func (s *Service) Len() int {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.games)
}
