// Package terminal hosts a game in an interactive terminal.
package terminal

import (
	"fmt"
	"math"
	"strings"

	"concentration/internal/domain"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Palette holds the colours used for cards and messages.
type Palette struct {
	Hidden  *color.Color
	FaceUp  *color.Color
	Matched *color.Color
	Header  *color.Color
	Info    *color.Color
	Warn    *color.Color
	Win     *color.Color
}

// NewPalette builds the default palette. With enabled false every colour prints
// plain text.
func NewPalette(enabled bool) Palette {
	p := Palette{
		Hidden:  color.New(color.FgHiBlack),
		FaceUp:  color.New(color.FgHiYellow, color.Bold),
		Matched: color.New(color.FgGreen),
		Header:  color.New(color.FgWhite, color.Bold),
		Info:    color.New(color.FgCyan),
		Warn:    color.New(color.FgRed),
		Win:     color.New(color.FgHiMagenta, color.Bold),
	}
	if !enabled {
		for _, c := range []*color.Color{p.Hidden, p.FaceUp, p.Matched, p.Header, p.Info, p.Warn, p.Win} {
			c.DisableColor()
		}
	}
	return p
}

// Renderer draws boards and scoreboards as tables.
type Renderer struct {
	palette Palette
}

func NewRenderer(p Palette) *Renderer {
	return &Renderer{palette: p}
}

// Board renders the cards in a near-square grid. Cards are numbered from 1.
func (r *Renderer) Board(view domain.GameState) string {
	cols := gridColumns(len(view.Cards))
	t := table.NewWriter()
	t.SetTitle("Concentration")
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Style().Options.SeparateRows = true

	row := make(table.Row, 0, cols)
	for _, c := range view.Cards {
		row = append(row, r.cell(c))
		if len(row) == cols {
			t.AppendRow(row)
			row = make(table.Row, 0, cols)
		}
	}
	if len(row) > 0 {
		t.AppendRow(row)
	}
	return t.Render()
}

func (r *Renderer) cell(c domain.Card) string {
	switch {
	case c.IsMatched:
		return fmt.Sprintf("%2d %s", c.ID+1, r.palette.Matched.Sprint(c.Symbol))
	case c.IsFlipped:
		return fmt.Sprintf("%2d %s", c.ID+1, r.palette.FaceUp.Sprint(c.Symbol))
	default:
		return fmt.Sprintf("%2d %s", c.ID+1, r.palette.Hidden.Sprint("?"))
	}
}

// Scoreboard renders one row per player, marking whose turn it is.
func (r *Renderer) Scoreboard(view domain.GameState) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"", "Player", "Score", "Pairs"})
	for i, p := range view.Players {
		marker := ""
		if view.Status == domain.StatusPlaying && i == view.CurrentPlayerIndex {
			marker = "▶"
		}
		name := p.Name
		if p.IsBot {
			name += " (bot)"
		}
		t.AppendRow(table.Row{marker, name, p.Score, joinSymbols(p.EarnedSymbols)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
	})
	return t.Render()
}

// StatusLine summarises the state in one line.
func (r *Renderer) StatusLine(view domain.GameState) string {
	if view.Status == domain.StatusEnded {
		if view.Tie {
			return r.palette.Win.Sprintf("Game over: a tie, %s listed first.", view.Winner)
		}
		return r.palette.Win.Sprintf("Game over: %s wins!", view.Winner)
	}
	p, ok := view.CurrentPlayer()
	if !ok {
		return ""
	}
	if p.IsBot {
		return r.palette.Info.Sprintf("%s is thinking...", p.Name)
	}
	return r.palette.Info.Sprintf("%s's turn.", p.Name)
}

// Help renders the command reference.
func (r *Renderer) Help() string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Command", "Alias", "Description"})
	t.AppendRows([]table.Row{
		{"flip <n>", "<n>, f", "Turn card n face up"},
		{"reset", "r", "Start over with the same settings"},
		{"new <mode> <cards> [players]", "n", "Start over with new settings (mode: bot or local)"},
		{"board", "b", "Show the board and scores"},
		{"help", "h, ?", "Show this help"},
		{"quit", "q, exit", "Leave the game"},
	})
	t.SetStyle(table.StyleLight)
	return t.Render()
}

// gridColumns picks the smallest width that makes a roughly square grid.
func gridColumns(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

func joinSymbols(symbols []domain.Symbol) string {
	parts := make([]string, len(symbols))
	for i, s := range symbols {
		parts[i] = string(s)
	}
	return strings.Join(parts, " ")
}
