package domain

// Cell represents a board cell state.
type Cell uint8

const (
    Empty Cell = iota
    X
    O
)

// String returns the mark shown in a square; Empty renders as "".
func (c Cell) String() string {
    switch c {
    case X:
        return "X"
    case O:
        return "O"
    default:
        return ""
    }
}

// Board is a fixed 3x3 board stored row-major.
type Board [9]Cell

// Full reports whether no cell is Empty.
func (b Board) Full() bool {
    for _, c := range b {
        if c == Empty {
            return false
        }
    }
    return true
}

// Line is a winning triple of board indexes.
type Line [3]int

// Contains reports whether idx is one of the line's cells.
func (l Line) Contains(idx int) bool {
    return l[0] == idx || l[1] == idx || l[2] == idx
}

// Lines lists the winning triples in evaluation order.
var Lines = [8]Line{
    // rows
    {0, 1, 2}, {3, 4, 5}, {6, 7, 8},
    // cols
    {0, 3, 6}, {1, 4, 7}, {2, 5, 8},
    // diags
    {0, 4, 8}, {2, 4, 6},
}

// Result is a completed line and the mark that owns it.
type Result struct {
    Winner Cell
    Line   Line
}

// Evaluate returns the first line in Lines whose cells share one non-empty mark.
func Evaluate(b Board) (Result, bool) {
    for _, ln := range Lines {
        a := b[ln[0]]
        if a != Empty && a == b[ln[1]] && a == b[ln[2]] {
            return Result{Winner: a, Line: ln}, true
        }
    }
    return Result{}, false
}

// StatusKind classifies a position.
type StatusKind uint8

const (
    InProgress StatusKind = iota
    Won
    Draw
)

// Status describes a position for display. Mark is the winner for Won and
// the side to move for InProgress.
type Status struct {
    Kind StatusKind
    Mark Cell
}

// StatusOf derives the status of b with next to move.
func StatusOf(b Board, next Cell) Status {
    if res, ok := Evaluate(b); ok {
        return Status{Kind: Won, Mark: res.Winner}
    }
    if b.Full() {
        return Status{Kind: Draw}
    }
    return Status{Kind: InProgress, Mark: next}
}

func (s Status) String() string {
    switch s.Kind {
    case Won:
        return "Winner:" + s.Mark.String()
    case Draw:
        return "It's a draw!"
    default:
        return "Next player:" + s.Mark.String()
    }
}
