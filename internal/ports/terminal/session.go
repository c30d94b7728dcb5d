package terminal

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"concentration/internal/app"
	"concentration/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

var (
	ErrBotTurn     = errors.New("wait for the bot to finish its turn")
	ErrIllegalFlip = errors.New("that card can't be flipped now")
)

// Session narrates one engine to a terminal and executes typed commands.
type Session struct {
	engine *app.Engine
	render *Renderer
	out    io.Writer
	mu     *sync.Mutex
	logger runtime.Logger
}

// NewSession writes to out, holding mu for every write. Subscribe OnEvent to the
// engine to narrate play.
func NewSession(engine *app.Engine, r *Renderer, out io.Writer, mu *sync.Mutex, logger runtime.Logger) *Session {
	if mu == nil {
		mu = &sync.Mutex{}
	}
	return &Session{engine: engine, render: r, out: out, mu: mu, logger: logger}
}

// Execute runs cmd. It reports true when the player asked to quit.
func (s *Session) Execute(cmd Command) (bool, error) {
	switch cmd.Kind {
	case CmdFlip:
		switch err := s.engine.HumanFlip(cmd.Card); {
		case errors.Is(err, app.ErrBotTurn):
			return false, ErrBotTurn
		case err != nil:
			return false, fmt.Errorf("card %d: %w", cmd.Card+1, ErrIllegalFlip)
		}
	case CmdReset:
		return false, s.engine.Reset(nil)
	case CmdNew:
		if err := s.engine.Reset(cmd.Patch); err != nil {
			return false, err
		}
	case CmdBoard:
		s.PrintBoard()
	case CmdHelp:
		s.print(s.render.Help())
	case CmdQuit:
		return true, nil
	default:
		return false, fmt.Errorf("unsupported command %d", cmd.Kind)
	}
	return false, nil
}

// PrintBoard prints the board, the scores and the status line.
func (s *Session) PrintBoard() {
	view := s.engine.View()
	s.print(s.render.Board(view), s.render.Scoreboard(view), s.render.StatusLine(view))
}

// OnEvent narrates an engine event.
func (s *Session) OnEvent(ev app.Event) {
	view := s.engine.View()
	switch p := ev.Payload.(type) {
	case app.CardFlippedPayload:
		s.print(fmt.Sprintf("%s flips %d: %s", playerName(view, p.PlayerIndex), p.CardID+1, p.Symbol))
		if len(view.PendingFlips) == 2 {
			s.print(s.render.Board(view))
		}
	case app.PairResolvedPayload:
		if !p.Matched {
			s.print(s.render.palette.Info.Sprint("No match."))
		} else if view.Status == domain.StatusPlaying {
			s.print(s.render.Board(view), s.render.StatusLine(view))
		}
	case app.TurnAdvancedPayload:
		s.print(s.render.Board(view), s.render.StatusLine(view))
	case app.GameEndedPayload:
		s.print(s.render.Board(view), s.render.Scoreboard(view))
	case app.GameResetPayload:
		s.print(s.render.palette.Header.Sprintf("New game: %s, %d cards, %d players.", p.Settings.Mode, p.Settings.CardCount, len(view.Players)))
		s.print(s.render.Board(view), s.render.StatusLine(view))
	default:
		if s.logger != nil {
			s.logger.Warn("terminal: unhandled event %s", ev.Kind)
		}
	}
}

func (s *Session) print(blocks ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range blocks {
		if b == "" {
			continue
		}
		fmt.Fprintln(s.out, b)
	}
}

func playerName(view domain.GameState, idx int) string {
	if idx < 0 || idx >= len(view.Players) {
		return "?"
	}
	return view.Players[idx].Name
}
