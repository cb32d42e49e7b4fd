package domain

import (
    "errors"
    "fmt"
)

// Errors returned by domain operations. ErrOutOfBounds, ErrOccupied and
// ErrGameOver all match ErrIllegalMove with errors.Is.
var (
    ErrIllegalMove = errors.New("illegal move")
    ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrIllegalMove)
    ErrOccupied    = fmt.Errorf("%w: cell occupied", ErrIllegalMove)
    ErrGameOver    = fmt.Errorf("%w: game over", ErrIllegalMove)
    ErrOutOfRange  = errors.New("move out of range")
)

// Location is the 1-based row and column of a move. The zero value means
// "no move", which is how the initial snapshot is recorded.
type Location struct {
    Row int
    Col int
}

// IsZero reports whether l records no move.
func (l Location) IsZero() bool { return l.Row == 0 && l.Col == 0 }

func (l Location) String() string {
    if l.IsZero() {
        return ""
    }
    return fmt.Sprintf("(%d, %d)", l.Row, l.Col)
}

// Snapshot is one recorded board and the move that produced it.
type Snapshot struct {
    Board    Board
    Location Location
}

// Game holds the move history of a Tic-Tac-Toe match and the cursor of the
// position being shown. The zero value is not usable; call New.
type Game struct {
    history []Snapshot
    cursor  int
}

// New returns a new game at the empty board with X to move.
func New() Game {
    return Game{history: []Snapshot{{}}}
}

// Play puts the mark of the side to move on cell idx (0..8) of the current
// snapshot. Snapshots after the cursor are discarded before the new one is
// appended.
func (g *Game) Play(idx int) error {
    if idx < 0 || idx >= len(Board{}) {
        return ErrOutOfBounds
    }
    cur := g.history[g.cursor]
    if _, won := Evaluate(cur.Board); won {
        return ErrGameOver
    }
    if cur.Board[idx] != Empty {
        return ErrOccupied
    }

    next := Snapshot{Board: cur.Board, Location: Location{Row: idx/3 + 1, Col: idx%3 + 1}}
    next.Board[idx] = g.Turn()

    // Fresh backing array: copies of g keep their own branch intact.
    h := make([]Snapshot, g.cursor+1, g.cursor+2)
    copy(h, g.history[:g.cursor+1])
    g.history = append(h, next)
    g.cursor = len(g.history) - 1
    return nil
}

// PlayAt plays at row r, column c (0..2).
func (g *Game) PlayAt(r, c int) error {
    if r < 0 || r > 2 || c < 0 || c > 2 {
        return ErrOutOfBounds
    }
    return g.Play(r*3 + c)
}

// Jump moves the cursor to snapshot move without touching the history.
func (g *Game) Jump(move int) error {
    if move < 0 || move >= len(g.history) {
        return ErrOutOfRange
    }
    g.cursor = move
    return nil
}

// Current returns the snapshot under the cursor.
func (g Game) Current() Snapshot { return g.history[g.cursor] }

// Cursor returns the index of the current snapshot.
func (g Game) Cursor() int { return g.cursor }

// Len returns the number of recorded snapshots, the initial one included.
func (g Game) Len() int { return len(g.history) }

// Snapshot returns snapshot i; it panics if i is out of range.
func (g Game) Snapshot(i int) Snapshot { return g.history[i] }

// History returns a copy of all recorded snapshots.
func (g Game) History() []Snapshot {
    out := make([]Snapshot, len(g.history))
    copy(out, g.history)
    return out
}

// Turn is the side to move at the cursor: X on even moves, O on odd.
func (g Game) Turn() Cell {
    if g.cursor%2 == 0 {
        return X
    }
    return O
}

// Winner evaluates the current snapshot.
func (g Game) Winner() (Result, bool) { return Evaluate(g.Current().Board) }

// Status derives the status line of the current snapshot.
func (g Game) Status() Status { return StatusOf(g.Current().Board, g.Turn()) }

// Over reports whether the current snapshot is won or drawn.
func (g Game) Over() bool { return g.Status().Kind != InProgress }
