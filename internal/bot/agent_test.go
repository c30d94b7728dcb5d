package bot

import (
	"math/rand"
	"testing"
	"time"

	"concentration/internal/app"
	"concentration/internal/bot/brain"
	"concentration/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// fakeTable hands out masked views and emits card_flipped like the engine does.
type fakeTable struct {
	view    domain.GameState
	symbols []domain.Symbol
	flips   []int
	subs    []func(app.Event)
}

func newFakeTable(symbols ...domain.Symbol) *fakeTable {
	view := maskedBoard(len(symbols))
	view.CurrentPlayerIndex = 1
	return &fakeTable{view: view, symbols: symbols}
}

func (f *fakeTable) View() domain.GameState { return f.view.Clone() }

func (f *fakeTable) Flip(id int) bool {
	if id < 0 || id >= len(f.view.Cards) || !f.view.Cards[id].Hidden() || len(f.view.PendingFlips) >= 2 {
		return false
	}
	f.view.Cards[id].IsFlipped = true
	f.view.Cards[id].Symbol = f.symbols[id]
	f.view.PendingFlips = append(f.view.PendingFlips, id)
	f.flips = append(f.flips, id)
	f.emit(app.Event{
		Kind:       app.EventCardFlipped,
		Generation: f.view.Generation,
		Payload:    app.CardFlippedPayload{CardID: id, Symbol: f.symbols[id], PlayerIndex: f.view.CurrentPlayerIndex},
	})
	return true
}

func (f *fakeTable) Subscribe(fn func(app.Event)) func() {
	f.subs = append(f.subs, fn)
	return func() { f.subs = nil }
}

func (f *fakeTable) emit(ev app.Event) {
	for _, fn := range f.subs {
		fn(ev)
	}
}

func testAgent(exploit float64, sched app.Scheduler) *Agent {
	return NewAgentWithBrain(
		NewMemoryBot(Tuning{ExploitProbability: exploit}, rand.New(rand.NewSource(11))),
		brain.NewMemory(0),
		AgentConfig{
			ThinkDelay: time.Second,
			FlipDelay:  time.Second,
			Scheduler:  sched,
			Logger:     noopLogger{},
		},
	)
}

func TestAgentPlaysRememberedPair(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "C", "A", "B", "C")
	a := testAgent(1, sched)

	// The bot watched an earlier turn reveal both A cards.
	a.OnEvent(app.Event{Kind: app.EventCardFlipped, Generation: 1, Payload: app.CardFlippedPayload{CardID: 0, Symbol: "A"}})
	a.OnEvent(app.Event{Kind: app.EventCardFlipped, Generation: 1, Payload: app.CardFlippedPayload{CardID: 3, Symbol: "A"}})

	a.Attach(table)
	if len(table.flips) != 0 {
		t.Fatal("agent flipped before its think delay")
	}
	sched.Advance(time.Second)
	if len(table.flips) != 1 || table.flips[0] != 0 {
		t.Fatalf("flips after think = %v, want [0]", table.flips)
	}
	sched.Advance(time.Second)
	if len(table.flips) != 2 || table.flips[1] != 3 {
		t.Fatalf("flips = %v, want [0 3]", table.flips)
	}
}

func TestAgentTakesMateRevealedByGuess(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	a := testAgent(1, sched)
	// Only card 2 is known, so the bot has to guess first.
	a.OnEvent(app.Event{Kind: app.EventCardFlipped, Generation: 1, Payload: app.CardFlippedPayload{CardID: 2, Symbol: "A"}})

	a.Attach(table)
	sched.Advance(2 * time.Second)
	if len(table.flips) != 2 {
		t.Fatalf("flips = %v", table.flips)
	}
	first, second := table.flips[0], table.flips[1]
	if first == 0 && second != 2 {
		t.Fatalf("bot revealed A at 0 but did not pick its mate: %v", table.flips)
	}
	if first == second {
		t.Fatalf("bot flipped the same card twice: %v", table.flips)
	}
}

func TestAgentWaitsWhileResolving(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	table.view.IsResolving = true
	table.view.PendingFlips = []int{0, 1}
	table.view.Cards[0].IsFlipped = true
	table.view.Cards[1].IsFlipped = true

	a := testAgent(1, sched)
	a.Attach(table)
	if sched.Pending() != 0 {
		t.Fatal("agent scheduled a move during resolution")
	}
}

func TestAgentIgnoresHumanTurn(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	table.view.CurrentPlayerIndex = 0

	a := testAgent(1, sched)
	a.Attach(table)
	a.OnEvent(app.Event{Kind: app.EventTurnAdvanced, Generation: 1})
	sched.Advance(time.Minute)
	if len(table.flips) != 0 {
		t.Fatalf("agent flipped on a human turn: %v", table.flips)
	}
}

func TestAgentSingleTurnInFlight(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	a := testAgent(0, sched)
	a.Attach(table)
	a.OnEvent(app.Event{Kind: app.EventTurnAdvanced, Generation: 1})
	a.OnEvent(app.Event{Kind: app.EventPairResolved, Generation: 1, Payload: app.PairResolvedPayload{}})
	if sched.Pending() != 1 {
		t.Fatalf("pending callbacks = %d, want 1", sched.Pending())
	}
	sched.Advance(2 * time.Second)
	if len(table.flips) != 2 {
		t.Fatalf("flips = %v, want exactly two", table.flips)
	}
}

func TestAgentRevalidatesBeforeSecondFlip(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	a := testAgent(0, sched)
	a.Attach(table)
	sched.Advance(time.Second)
	if len(table.flips) != 1 {
		t.Fatalf("flips = %v", table.flips)
	}

	// The turn moved on before the second flip was due.
	table.view.CurrentPlayerIndex = 0
	sched.Advance(time.Second)
	if len(table.flips) != 1 {
		t.Fatalf("agent flipped after losing the turn: %v", table.flips)
	}
}

func TestAgentResetCancelsTurn(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	a := testAgent(1, sched)
	a.OnEvent(app.Event{Kind: app.EventCardFlipped, Generation: 1, Payload: app.CardFlippedPayload{CardID: 1, Symbol: "B"}})
	a.Attach(table)

	table.view = maskedBoard(4)
	table.view.Generation = 2
	table.emit(app.Event{Kind: app.EventGameReset, Generation: 2})

	if a.Memory().Len() != 0 {
		t.Fatal("reset did not clear memory")
	}
	sched.Advance(time.Minute)
	if len(table.flips) != 0 {
		t.Fatalf("stale turn flipped on the new game: %v", table.flips)
	}

	// Old-generation events are ignored once the new game started.
	a.OnEvent(app.Event{Kind: app.EventCardFlipped, Generation: 1, Payload: app.CardFlippedPayload{CardID: 3, Symbol: "B"}})
	if a.Memory().Len() != 0 {
		t.Fatal("agent learned from a previous game")
	}
}

func TestAgentDetach(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	a := testAgent(1, sched)
	a.Attach(table)
	a.Detach()
	sched.Advance(time.Minute)
	if len(table.flips) != 0 {
		t.Fatalf("detached agent flipped: %v", table.flips)
	}
}

func TestAgentFinishesTurnWithOneCardUp(t *testing.T) {
	sched := app.NewStepScheduler()
	table := newFakeTable("A", "B", "A", "B")
	a := testAgent(1, sched)
	a.OnEvent(app.Event{Kind: app.EventCardFlipped, Generation: 1, Payload: app.CardFlippedPayload{CardID: 2, Symbol: "A"}})
	a.Attach(table)
	if len(table.flips) != 0 || sched.Pending() != 1 {
		t.Fatalf("flips = %v, pending = %d", table.flips, sched.Pending())
	}

	// A flip landed on the bot's turn before its first move was due.
	table.Flip(0)
	sched.Advance(time.Minute)
	if len(table.flips) != 2 || table.flips[1] != 2 {
		t.Fatalf("flips = %v, want [0 2]", table.flips)
	}
}

func TestAgentRecoversFromFlipOnItsTurn(t *testing.T) {
	sched := app.NewStepScheduler()
	engine, err := app.NewEngine(domain.Settings{Mode: domain.ModeBot, CardCount: 4}, app.Options{
		Rng:       rand.New(rand.NewSource(3)),
		Scheduler: sched,
	})
	if err != nil {
		t.Fatal(err)
	}
	agent := testAgent(1, sched)
	agent.Attach(engine)

	groups := make(map[domain.Symbol][]int)
	for _, c := range engine.State().Cards {
		groups[c.Symbol] = append(groups[c.Symbol], c.ID)
	}
	var pairs [][]int
	for _, ids := range groups {
		pairs = append(pairs, ids)
	}
	engine.Flip(pairs[0][0])
	engine.Flip(pairs[1][0])
	sched.Advance(app.DefaultResolveDelay)
	if !engine.IsBotTurn() {
		t.Fatal("expected the bot to be due after a mismatch")
	}

	// A flip that skipped the turn check lands before the bot moves.
	if !engine.Flip(pairs[0][1]) {
		t.Fatal("unchecked flip was refused")
	}
	sched.Advance(time.Minute)

	s := engine.State()
	if s.Status == domain.StatusPlaying && !s.IsResolving && len(s.PendingFlips) == 1 && engine.IsBotTurn() && sched.Pending() == 0 {
		t.Fatalf("game stuck on the bot's turn with one card up: %+v", s)
	}
	if s.Status != domain.StatusEnded {
		t.Fatalf("bot did not finish the game: %+v", s)
	}
}

// countingTable records flips the engine refused.
type countingTable struct {
	*app.Engine
	rejected int
}

func (c *countingTable) Flip(id int) bool {
	ok := c.Engine.Flip(id)
	if !ok {
		c.rejected++
	}
	return ok
}

// A full game against the real engine: every flip the bot attempts is legal and
// the game finishes.
func TestAgentPlaysFullGameAgainstEngine(t *testing.T) {
	for seed := int64(1); seed <= 5; seed++ {
		sched := app.NewStepScheduler()
		engine, err := app.NewEngine(domain.Settings{Mode: domain.ModeBot, CardCount: 12}, app.Options{
			Rng:       rand.New(rand.NewSource(seed)),
			Scheduler: sched,
		})
		if err != nil {
			t.Fatal(err)
		}

		agent, err := NewAgent(AgentConfig{
			Level:      BotLevelHard,
			ThinkDelay: 300 * time.Millisecond,
			FlipDelay:  300 * time.Millisecond,
			Scheduler:  sched,
			Logger:     noopLogger{},
			Rng:        rand.New(rand.NewSource(seed)),
		})
		if err != nil {
			t.Fatal(err)
		}
		table := &countingTable{Engine: engine}
		agent.Attach(table)

		human := rand.New(rand.NewSource(seed * 7))
		for step := 0; step < 5000 && engine.State().Status == domain.StatusPlaying; step++ {
			s := engine.State()
			if !engine.IsBotTurn() && !s.IsResolving && len(s.PendingFlips) < 2 {
				if avail := domain.AvailableCards(s.Cards); len(avail) > 0 {
					engine.HumanFlip(avail[human.Intn(len(avail))])
				}
			}
			sched.Advance(100 * time.Millisecond)
		}

		s := engine.State()
		if s.Status != domain.StatusEnded {
			t.Fatalf("seed %d: game did not finish: %+v", seed, s)
		}
		if s.Players[0].Score+s.Players[1].Score != 6 {
			t.Fatalf("seed %d: scores %d + %d != 6", seed, s.Players[0].Score, s.Players[1].Score)
		}
		if table.rejected != 0 {
			t.Fatalf("seed %d: engine refused %d bot flips", seed, table.rejected)
		}
	}
}
