package web

import (
    "bytes"
    "html/template"
    "strconv"

    "github.com/jaminalder/tictactoe-history/internal/app"
    "github.com/jaminalder/tictactoe-history/internal/domain"
)

type templates struct {
    base  *template.Template
    game  *template.Template
    board *template.Template
    index *template.Template
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org@1.9.12/dist/ext/sse.js"></script>
<style>
.game{display:flex;gap:2rem}
.board-row{display:flex}
.board-row form{margin:0}
.square{width:3rem;height:3rem;font-size:1.5rem;font-weight:bold}
.square.highlight{background:#ffe066}
</style>
</head><body>{{template "content" .}}</body></html>`))
    // Define the board template within the same set so game can include it
    template.Must(base.New("board").Parse(boardTemplate))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(`<h1>Tic-Tac-Toe</h1><form action="/game" method="post"><button>New game</button></form>`))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<h1>Tic-Tac-Toe</h1>
<form action="/game" method="post"><button>New game</button></form>
<div hx-ext="sse" sse-connect="/game/{{.ID}}/events">
  <div id="board-slot" sse-swap="board" hx-swap="innerHTML">{{template "board" .}}</div>
</div>`))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index}
}

func renderTemplate(t *template.Template, name string, data any) ([]byte, error) {
    var buf bytes.Buffer
    var err error
    if name == "" {
        err = t.Execute(&buf, data)
    } else {
        err = t.ExecuteTemplate(&buf, name, data)
    }
    if err != nil {
        return nil, err
    }
    return buf.Bytes(), nil
}

const boardTemplate = `
<div id="board" class="game">
  <div class="game-board">
    <div class="status">{{.Status}}</div>
    {{range .Rows}}
    <div class="board-row">
      {{range .}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/play">
        <input type="hidden" name="r" value="{{.Row}}">
        <input type="hidden" name="c" value="{{.Col}}">
        <button type="submit" class="square{{if .Highlight}} highlight{{end}}">{{.Symbol}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
  </div>
  <div class="game-info">
    <form hx-post="/game/{{.ID}}/order" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{.ID}}/order">
      <button type="submit" class="order">{{if .Descending}}Sort ascending{{else}}Sort descending{{end}}</button>
    </form>
    <ol class="moves {{if .Descending}}desc{{else}}asc{{end}}">
      {{range .Moves}}
      <li value="{{.Number}}">
        <form hx-post="/game/{{$.ID}}/jump" hx-target="#board" hx-swap="outerHTML" method="post" action="/game/{{$.ID}}/jump">
          <input type="hidden" name="move" value="{{.Move}}">
          <button type="submit">{{if .Current}}<strong>{{.Label}}</strong>{{else}}{{.Label}}{{end}}</button>
        </form>
        {{with .Location}}<span class="location">{{.}}</span>{{end}}
      </li>
      {{end}}
    </ol>
  </div>
</div>
`

type cellView struct {
    Row       int
    Col       int
    Symbol    string
    Highlight bool
}

type moveView struct {
    Move     int
    Number   int
    Label    string
    Location string
    Current  bool
}

// boardView is everything the board fragment shows, derived from one
// game state.
type boardView struct {
    ID         string
    Status     string
    Rows       [3][3]cellView
    Moves      []moveView
    Descending bool
}

func newBoardView(gs app.GameState) boardView {
    g := gs.Game
    cur := g.Current()
    win, won := g.Winner()

    v := boardView{ID: gs.ID, Status: g.Status().String(), Descending: gs.Descending}
    for i, c := range cur.Board {
        v.Rows[i/3][i%3] = cellView{
            Row:       i / 3,
            Col:       i % 3,
            Symbol:    c.String(),
            Highlight: won && win.Line.Contains(i),
        }
    }

    v.Moves = make([]moveView, 0, g.Len())
    for i := 0; i < g.Len(); i++ {
        v.Moves = append(v.Moves, newMoveView(i, g.Snapshot(i), i == g.Cursor()))
    }
    if gs.Descending {
        for l, r := 0, len(v.Moves)-1; l < r; l, r = l+1, r-1 {
            v.Moves[l], v.Moves[r] = v.Moves[r], v.Moves[l]
        }
    }
    return v
}

func newMoveView(move int, snap domain.Snapshot, current bool) moveView {
    label := "Go to game start"
    if move > 0 {
        label = "Go to move #" + strconv.Itoa(move)
    }
    return moveView{
        Move:     move,
        Number:   move + 1,
        Label:    label,
        Location: snap.Location.String(),
        Current:  current,
    }
}
