package bot

import (
	"math/rand"
	"sync"
	"time"

	"concentration/internal/app"
	"concentration/internal/bot/brain"
	"concentration/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Table is the part of the engine an agent plays against.
type Table interface {
	View() domain.GameState
	Flip(cardID int) bool
	Subscribe(fn func(app.Event)) func()
}

// AgentConfig controls pacing and plumbing. Zero delays pick the defaults.
type AgentConfig struct {
	Level      BotLevel
	ThinkDelay time.Duration
	FlipDelay  time.Duration
	Scheduler  app.Scheduler
	Logger     runtime.Logger
	Rng        *rand.Rand
}

// Agent plays every bot seat at one table. It learns from card_flipped events,
// moves when a bot is due and keeps one turn in flight. A bot turn that already
// has one card face up is finished with a second card.
type Agent struct {
	Strategy Brain

	memory *brain.Memory
	sched  app.Scheduler
	logger runtime.Logger
	think  time.Duration
	flip   time.Duration

	mu       sync.Mutex
	table    Table
	detach   func()
	inFlight bool
	turn     uint64 // bumped per started turn; stale callbacks compare against it
	lastGen  uint64
	timer    app.Timer
}

// NewAgent builds an agent for the configured level.
func NewAgent(cfg AgentConfig) (*Agent, error) {
	if cfg.Level == 0 {
		cfg.Level = BotLevelMedium
	}
	strategy, err := NewBrain(cfg.Level, cfg.Rng)
	if err != nil {
		return nil, err
	}
	return NewAgentWithBrain(strategy, brain.NewMemory(DefaultTuning[cfg.Level].MemoryCapacity), cfg), nil
}

// NewAgentWithBrain builds an agent around a custom strategy and memory.
func NewAgentWithBrain(strategy Brain, memory *brain.Memory, cfg AgentConfig) *Agent {
	if cfg.Scheduler == nil {
		cfg.Scheduler = app.TimerScheduler{}
	}
	if cfg.ThinkDelay <= 0 {
		cfg.ThinkDelay = DefaultThinkDelay
	}
	if cfg.FlipDelay <= 0 {
		cfg.FlipDelay = DefaultFlipDelay
	}
	return &Agent{
		Strategy: strategy,
		memory:   memory,
		sched:    cfg.Scheduler,
		logger:   cfg.Logger,
		think:    cfg.ThinkDelay,
		flip:     cfg.FlipDelay,
	}
}

// Attach subscribes the agent to t and takes the turn at once if a bot is due.
func (a *Agent) Attach(t Table) {
	a.mu.Lock()
	a.table = t
	a.mu.Unlock()

	unsubscribe := t.Subscribe(a.OnEvent)

	a.mu.Lock()
	a.detach = unsubscribe
	a.mu.Unlock()

	a.maybeTakeTurn()
}

// Detach stops the agent. Scheduled flips are cancelled.
func (a *Agent) Detach() {
	a.mu.Lock()
	detach := a.detach
	a.detach = nil
	a.cancelLocked()
	a.table = nil
	a.mu.Unlock()

	if detach != nil {
		detach()
	}
}

// Memory exposes what the agent has seen.
func (a *Agent) Memory() *brain.Memory {
	return a.memory
}

// OnEvent feeds an engine event to the agent.
func (a *Agent) OnEvent(ev app.Event) {
	a.mu.Lock()
	if ev.Generation < a.lastGen {
		a.mu.Unlock()
		return
	}
	a.lastGen = ev.Generation

	switch ev.Kind {
	case app.EventCardFlipped:
		if p, ok := ev.Payload.(app.CardFlippedPayload); ok {
			a.memory.Observe(p.CardID, p.Symbol)
		}
	case app.EventPairResolved:
		if p, ok := ev.Payload.(app.PairResolvedPayload); ok && p.Matched {
			a.memory.Forget(p.CardIDs[0], p.CardIDs[1])
		}
	case app.EventGameReset:
		a.memory.Reset()
		a.cancelLocked()
	case app.EventTurnAdvanced:
	default:
		a.mu.Unlock()
		return
	}
	a.mu.Unlock()

	a.maybeTakeTurn()
}

func (a *Agent) maybeTakeTurn() {
	t := a.currentTable()
	if t == nil {
		return
	}
	view := t.View()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.inFlight || a.table == nil {
		return
	}
	switch {
	case botToMove(view):
		a.inFlight = true
		a.turn++
		token, gen := a.turn, view.Generation
		a.timer = a.sched.AfterFunc(a.think, func() { a.playFirst(token, gen) })
	case botToFinish(view):
		a.inFlight = true
		a.turn++
		token, gen := a.turn, view.Generation
		move := Move{First: view.PendingFlips[0], Second: -1}
		a.timer = a.sched.AfterFunc(a.think, func() { a.playSecond(token, gen, move) })
	}
}

func (a *Agent) playFirst(token, gen uint64) {
	t := a.currentTable()
	if t == nil {
		return
	}
	view := t.View()

	a.mu.Lock()
	if token != a.turn {
		a.mu.Unlock()
		return
	}
	if view.Generation != gen || !botToMove(view) {
		a.inFlight = false
		a.mu.Unlock()
		a.maybeTakeTurn()
		return
	}
	move, err := a.Strategy.CalculateMove(view, a.memory)
	if err != nil {
		a.inFlight = false
		a.mu.Unlock()
		a.logf("playFirst: no move: %v", err)
		return
	}
	a.mu.Unlock()

	a.logf("playFirst: flipping %d (planned %d, from memory %v)", move.First, move.Second, move.FromMemory)
	if !t.Flip(move.First) {
		a.finish(token)
		a.maybeTakeTurn()
		return
	}

	a.mu.Lock()
	if token == a.turn {
		a.timer = a.sched.AfterFunc(a.flip, func() { a.playSecond(token, gen, move) })
	}
	a.mu.Unlock()
}

func (a *Agent) playSecond(token, gen uint64, move Move) {
	t := a.currentTable()
	if t == nil {
		return
	}
	view := t.View()

	a.mu.Lock()
	if token != a.turn {
		a.mu.Unlock()
		return
	}
	a.inFlight = false
	a.timer = nil
	cur, ok := view.CurrentPlayer()
	valid := ok && cur.IsBot &&
		view.Generation == gen &&
		view.Status == domain.StatusPlaying &&
		!view.IsResolving &&
		len(view.PendingFlips) == 1 && view.PendingFlips[0] == move.First
	if !valid {
		a.mu.Unlock()
		return
	}
	second, err := a.Strategy.CompleteMove(view, a.memory, move)
	a.mu.Unlock()
	if err != nil {
		a.logf("playSecond: no card to pair with %d: %v", move.First, err)
		return
	}

	a.logf("playSecond: flipping %d", second)
	t.Flip(second)
}

func (a *Agent) finish(token uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if token == a.turn {
		a.inFlight = false
		a.timer = nil
	}
}

func (a *Agent) cancelLocked() {
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.inFlight = false
	a.turn++
}

func (a *Agent) currentTable() Table {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.table
}

func (a *Agent) logf(format string, args ...interface{}) {
	if a.logger != nil {
		a.logger.Debug("bot "+format, args...)
	}
}

// botToMove reports whether a bot seat is due to start a turn.
func botToMove(view domain.GameState) bool {
	cur, ok := view.CurrentPlayer()
	return ok && cur.IsBot &&
		view.Status == domain.StatusPlaying &&
		!view.IsResolving &&
		len(view.PendingFlips) == 0
}

// botToFinish reports whether a bot seat is due with one card already face up.
func botToFinish(view domain.GameState) bool {
	cur, ok := view.CurrentPlayer()
	return ok && cur.IsBot &&
		view.Status == domain.StatusPlaying &&
		!view.IsResolving &&
		len(view.PendingFlips) == 1
}
