package app

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"concentration/internal/domain"
)

var (
	ErrBotTurn      = errors.New("a bot is due to move")
	ErrFlipRejected = errors.New("flip rejected")
)

// Options tunes an Engine. Zero values select the defaults.
type Options struct {
	Rng          *rand.Rand
	Scheduler    Scheduler
	ResolveDelay time.Duration
	Catalog      []domain.Symbol
}

// Engine owns one game's state and enforces its rules. All methods are safe for
// concurrent use. Events are delivered to subscribers in emission order, outside
// the engine lock, so a subscriber may call back into the engine.
//
// Delivery is done by whichever goroutine finds the queue idle. When another
// goroutine is already delivering, Flip and Reset return before their own events
// reach subscribers, and a subscriber reading View may see a later state than the
// event it is handling.
type Engine struct {
	mu           sync.Mutex
	rng          *rand.Rand
	sched        Scheduler
	resolveDelay time.Duration
	catalog      []domain.Symbol

	settings domain.Settings
	state    domain.GameState
	pending  Timer
	closed   bool

	subs     map[int]func(Event)
	nextSub  int
	queue    []Event
	draining bool
}

// NewEngine validates settings and starts the first game.
func NewEngine(settings domain.Settings, opts Options) (*Engine, error) {
	if opts.Rng == nil {
		opts.Rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Scheduler == nil {
		opts.Scheduler = TimerScheduler{}
	}
	if opts.ResolveDelay <= 0 {
		opts.ResolveDelay = DefaultResolveDelay
	}
	if len(opts.Catalog) == 0 {
		opts.Catalog = domain.DefaultCatalog()
	}

	e := &Engine{
		rng:          opts.Rng,
		sched:        opts.Scheduler,
		resolveDelay: opts.ResolveDelay,
		catalog:      append([]domain.Symbol(nil), opts.Catalog...),
		subs:         make(map[int]func(Event)),
	}
	state, err := e.newGame(settings, 1)
	if err != nil {
		return nil, err
	}
	e.settings = settings
	e.state = state
	return e, nil
}

// Subscribe registers fn for every future event and returns a function that
// removes it.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.subs, id)
	}
}

// State returns a deep copy of the full state, including face-down symbols.
func (e *Engine) State() domain.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// View returns a deep copy with the symbols of face-down cards blanked. This is
// what players, remote clients and the bot get to see.
func (e *Engine) View() domain.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Masked()
}

// Settings returns the settings of the current game.
func (e *Engine) Settings() domain.Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

// Generation returns the current state generation.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Generation
}

// IsBotTurn reports whether a bot is due to move in a live game.
func (e *Engine) IsBotTurn() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.state.CurrentPlayer()
	return ok && p.IsBot && e.state.Status == domain.StatusPlaying
}

// Flip turns a card face up. It reports whether the flip was applied; a flip that
// breaks any rule leaves the state untouched.
func (e *Engine) Flip(cardID int) bool {
	e.mu.Lock()
	ok := e.flipLocked(cardID)
	e.mu.Unlock()

	if ok {
		e.drain()
	}
	return ok
}

// HumanFlip flips cardID for the human seat to move. The turn check and the flip
// happen under one lock, so a flip never lands on a bot's turn.
func (e *Engine) HumanFlip(cardID int) error {
	e.mu.Lock()
	if p, ok := e.state.CurrentPlayer(); ok && p.IsBot && e.state.Status == domain.StatusPlaying {
		e.mu.Unlock()
		return ErrBotTurn
	}
	if !e.flipLocked(cardID) {
		e.mu.Unlock()
		return ErrFlipRejected
	}
	e.mu.Unlock()

	e.drain()
	return nil
}

func (e *Engine) flipLocked(cardID int) bool {
	if !e.canFlip(cardID) {
		return false
	}

	idx := domain.CardIndex(e.state.Cards, cardID)
	e.state.Cards[idx].IsFlipped = true
	e.state.PendingFlips = append(e.state.PendingFlips, cardID)
	e.enqueue(EventCardFlipped, CardFlippedPayload{
		CardID:      cardID,
		Symbol:      e.state.Cards[idx].Symbol,
		PlayerIndex: e.state.CurrentPlayerIndex,
	})

	if len(e.state.PendingFlips) == 2 {
		e.state.IsResolving = true
		gen := e.state.Generation
		e.pending = e.sched.AfterFunc(e.resolveDelay, func() { e.resolve(gen) })
	}
	return true
}

func (e *Engine) canFlip(cardID int) bool {
	if e.closed || e.state.Status != domain.StatusPlaying || e.state.IsResolving {
		return false
	}
	if len(e.state.PendingFlips) >= 2 {
		return false
	}
	idx := domain.CardIndex(e.state.Cards, cardID)
	return idx >= 0 && e.state.Cards[idx].Hidden()
}

func (e *Engine) resolve(gen uint64) {
	e.mu.Lock()
	if e.closed || gen != e.state.Generation || !e.state.IsResolving || len(e.state.PendingFlips) != 2 {
		e.mu.Unlock()
		return
	}
	e.pending = nil

	s := &e.state
	a := domain.CardIndex(s.Cards, s.PendingFlips[0])
	b := domain.CardIndex(s.Cards, s.PendingFlips[1])
	cur := s.CurrentPlayerIndex
	matched := s.Cards[a].Symbol == s.Cards[b].Symbol

	if matched {
		s.Cards[a].IsMatched = true
		s.Cards[b].IsMatched = true
		s.Players[cur].Score++
		s.Players[cur].EarnedSymbols = append(s.Players[cur].EarnedSymbols, s.Cards[a].Symbol)
	} else {
		s.Cards[a].IsFlipped = false
		s.Cards[b].IsFlipped = false
	}
	ids := [2]int{s.PendingFlips[0], s.PendingFlips[1]}
	s.PendingFlips = nil
	s.IsResolving = false

	e.enqueue(EventPairResolved, PairResolvedPayload{
		CardIDs:     ids,
		Symbol:      s.Cards[a].Symbol,
		Matched:     matched,
		PlayerIndex: cur,
		Score:       s.Players[cur].Score,
	})

	if !matched {
		s.CurrentPlayerIndex = (cur + 1) % len(s.Players)
		e.enqueue(EventTurnAdvanced, TurnAdvancedPayload{FromIndex: cur, ToIndex: s.CurrentPlayerIndex})
	}

	if domain.AllMatched(s.Cards) {
		s.Status = domain.StatusEnded
		s.WinnerIndex, s.Tie = domain.ComputeWinner(s.Players)
		scores := make([]int, len(s.Players))
		for i, p := range s.Players {
			scores[i] = p.Score
		}
		if s.WinnerIndex >= 0 {
			s.Winner = s.Players[s.WinnerIndex].Name
		}
		e.enqueue(EventGameEnded, GameEndedPayload{
			Winner:      s.Winner,
			WinnerIndex: s.WinnerIndex,
			Tie:         s.Tie,
			Scores:      scores,
		})
	}
	e.mu.Unlock()

	e.drain()
}

// Reset merges patch over the current settings and starts a new game. A nil patch
// replays the current settings. On error the running game is left as it was.
func (e *Engine) Reset(patch *domain.SettingsPatch) error {
	e.mu.Lock()
	next := e.settings
	if patch != nil {
		next = next.Merge(*patch)
	}
	err := e.restartLocked(next)
	e.mu.Unlock()

	e.drain()
	return err
}

// Configure replaces the settings wholesale and starts a new game.
func (e *Engine) Configure(settings domain.Settings) error {
	e.mu.Lock()
	err := e.restartLocked(settings)
	e.mu.Unlock()

	e.drain()
	return err
}

func (e *Engine) restartLocked(settings domain.Settings) error {
	state, err := e.newGame(settings, e.state.Generation+1)
	if err != nil {
		return err
	}
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.settings = settings
	e.state = state
	e.enqueue(EventGameReset, GameResetPayload{Settings: settings})
	return nil
}

func (e *Engine) newGame(settings domain.Settings, generation uint64) (domain.GameState, error) {
	if err := domain.ValidateSettings(settings, e.catalog); err != nil {
		return domain.GameState{}, err
	}
	cards, err := domain.BuildDeck(settings.CardCount, e.catalog, e.rng)
	if err != nil {
		return domain.GameState{}, err
	}
	players, err := domain.BuildRoster(settings)
	if err != nil {
		return domain.GameState{}, err
	}
	return domain.NewGameState(cards, players, generation), nil
}

// Close cancels pending work. Later flips and resolutions are ignored.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
}

func (e *Engine) enqueue(kind EventKind, payload any) {
	e.queue = append(e.queue, Event{Kind: kind, Generation: e.state.Generation, Payload: payload})
}

// drain delivers queued events. Only one goroutine drains at a time; events queued
// meanwhile, including by subscribers, are picked up by the active drainer.
func (e *Engine) drain() {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return
	}
	e.draining = true
	for len(e.queue) > 0 {
		ev := e.queue[0]
		e.queue = e.queue[1:]
		subs := make([]func(Event), 0, len(e.subs))
		for i := 0; i < e.nextSub; i++ {
			if fn, ok := e.subs[i]; ok {
				subs = append(subs, fn)
			}
		}
		e.mu.Unlock()
		for _, fn := range subs {
			fn(ev)
		}
		e.mu.Lock()
	}
	e.draining = false
	e.mu.Unlock()
}
