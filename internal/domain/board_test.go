package domain

import (
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// boardFrom decodes a 9-rune string of 'X', 'O' and '.'.
func boardFrom(t *testing.T, s string) Board {
    t.Helper()
    require.Len(t, s, 9)
    var b Board
    for i, r := range s {
        switch r {
        case 'X':
            b[i] = X
        case 'O':
            b[i] = O
        case '.':
        default:
            t.Fatalf("bad board rune %q", r)
        }
    }
    return b
}

func TestCellString(t *testing.T) {
    assert.Equal(t, "", Empty.String())
    assert.Equal(t, "X", X.String())
    assert.Equal(t, "O", O.String())
}

func TestEvaluateEveryLine(t *testing.T) {
    for _, ln := range Lines {
        for _, mark := range []Cell{X, O} {
            var b Board
            for _, i := range ln {
                b[i] = mark
            }
            res, ok := Evaluate(b)
            require.True(t, ok, "line %v", ln)
            assert.Equal(t, Result{Winner: mark, Line: ln}, res)
        }
    }
}

func TestEvaluateNoWinner(t *testing.T) {
    for _, s := range []string{".........", "XOX......", "XOXXOOOXX", "XX.OO...."} {
        _, ok := Evaluate(boardFrom(t, s))
        assert.False(t, ok, s)
    }
}

func TestEvaluateFirstLineWins(t *testing.T) {
    t.Run("row before column", func(t *testing.T) {
        // top row and left column are both X
        res, ok := Evaluate(boardFrom(t, "XXXXOOXO."))
        require.True(t, ok)
        assert.Equal(t, Line{0, 1, 2}, res.Line)
    })

    t.Run("earlier row before later row", func(t *testing.T) {
        res, ok := Evaluate(boardFrom(t, "...OOOXXX"))
        require.True(t, ok)
        assert.Equal(t, Result{Winner: O, Line: Line{3, 4, 5}}, res)
    })

    t.Run("column before diagonal", func(t *testing.T) {
        res, ok := Evaluate(boardFrom(t, "..O.OOO.O"))
        require.True(t, ok)
        assert.Equal(t, Line{2, 5, 8}, res.Line)
    })
}

// TestEvaluateExhaustive walks all 3^9 boards and compares Evaluate with a
// direct uniformity check of every line.
func TestEvaluateExhaustive(t *testing.T) {
    const total = 19683
    for n := 0; n < total; n++ {
        var b Board
        v := n
        for i := range b {
            b[i] = Cell(v % 3)
            v /= 3
        }
        uniform := false
        for _, ln := range Lines {
            if b[ln[0]] != Empty && b[ln[0]] == b[ln[1]] && b[ln[1]] == b[ln[2]] {
                uniform = true
                break
            }
        }
        res, ok := Evaluate(b)
        if ok != uniform {
            t.Fatalf("board %v: Evaluate ok=%v, uniform=%v", b, ok, uniform)
        }
        if ok {
            for _, i := range res.Line {
                if b[i] != res.Winner {
                    t.Fatalf("board %v: line %v not owned by %v", b, res.Line, res.Winner)
                }
            }
        }
    }
}

func TestStatusOf(t *testing.T) {
    cases := []struct {
        name  string
        board string
        next  Cell
        want  string
        kind  StatusKind
    }{
        {"empty", ".........", X, "Next player:X", InProgress},
        {"o to move", "X........", O, "Next player:O", InProgress},
        {"x wins", "XXXOO....", O, "Winner:X", Won},
        {"o wins on full board", "XXOXOXOXO", X, "Winner:O", Won},
        {"draw", "XOXXOOOXX", O, "It's a draw!", Draw},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            st := StatusOf(boardFrom(t, tc.board), tc.next)
            assert.Equal(t, tc.kind, st.Kind)
            assert.Equal(t, tc.want, st.String())
        })
    }
}

func TestLineContains(t *testing.T) {
    ln := Line{2, 4, 6}
    assert.True(t, ln.Contains(4))
    assert.False(t, ln.Contains(0))
}
