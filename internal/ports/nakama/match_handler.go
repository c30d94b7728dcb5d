package nakama

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"concentration/internal/app"
	"concentration/internal/bot"
	"concentration/internal/config"
	"concentration/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// MatchState holds the authoritative runtime state for one table.
type MatchState struct {
	OwnerUserID string             // Only this user may join
	Presence    runtime.Presence   // The owner's current session, nil while away
	Engine      *app.Engine        // Game rules and state
	Scheduler   *app.StepScheduler // Advanced once per tick; drives resolution and bot pacing
	Agent       *bot.Agent         // Plays every bot seat
	Tickets     *app.TicketService // Verifies join tickets
	Runtime     config.Runtime     // Env-derived settings
	Outbox      []app.Event        // Engine events waiting for the end of the tick
	EmptyTicks  int64              // Consecutive ticks without a presence

	label       string
	unsubscribe func()
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return &matchHandler{}, nil
}

type matchHandler struct{}

// MatchInit builds the engine and bot for the table described by params.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing table.")

	rt, err := config.LoadRuntime(runtimeEnv(ctx))
	if err != nil {
		logger.Error("MatchInit: Bad runtime config: %v", err)
		return nil, 0, ""
	}
	owner, _ := params["owner"].(string)
	if owner == "" {
		logger.Error("MatchInit: Missing owner param.")
		return nil, 0, ""
	}

	gameCfg, err := config.LoadGameConfig(rt.ConfigPath)
	if err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
		gameCfg = config.DefaultGameConfig()
	}

	levelName := rt.BotLevel
	if levelName == "" {
		levelName = gameCfg.BotLevel
	}
	level, err := bot.ParseLevel(levelName)
	if err != nil {
		logger.Warn("MatchInit: %v, using medium.", err)
		level = bot.BotLevelMedium
	}

	sched := app.NewStepScheduler()
	engine, err := app.NewEngine(settingsFromParams(gameCfg.Settings(), params), app.Options{
		Scheduler:    sched,
		ResolveDelay: rt.ResolveDelay,
		Catalog:      gameCfg.Catalog(),
	})
	if err != nil {
		logger.Error("MatchInit: Invalid settings: %v", err)
		return nil, 0, ""
	}
	agent, err := bot.NewAgent(bot.AgentConfig{
		Level:      level,
		ThinkDelay: rt.BotThinkDelay,
		FlipDelay:  rt.BotFlipDelay,
		Scheduler:  sched,
		Logger:     logger,
	})
	if err != nil {
		logger.Error("MatchInit: Failed to create bot: %v", err)
		return nil, 0, ""
	}

	state := &MatchState{
		OwnerUserID: owner,
		Engine:      engine,
		Scheduler:   sched,
		Agent:       agent,
		Tickets:     app.NewTicketService(rt.TicketSecret, rt.TicketIssuer, rt.TicketTTL),
		Runtime:     rt,
	}
	state.unsubscribe = engine.Subscribe(func(ev app.Event) {
		state.Outbox = append(state.Outbox, ev)
	})
	agent.Attach(engine)

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.label = label
	return state, rt.TickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if presence.GetUserId() != matchState.OwnerUserID {
		logger.Warn("MatchJoinAttempt: User %s is not the table owner.", presence.GetUserId())
		return state, false, "table is private"
	}

	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)
	if err := matchState.Tickets.Verify(metadata[MetadataKeyTicket], presence.GetUserId(), matchID); err != nil {
		logger.Warn("MatchJoinAttempt: User %s rejected: %v", presence.GetUserId(), err)
		return state, false, err.Error()
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: Invalid match state type.")
		return state
	}

	for _, p := range presences {
		if matchState.Presence != nil && matchState.Presence.GetSessionId() != p.GetSessionId() {
			logger.Info("MatchJoin: Session %s replaces %s.", p.GetSessionId(), matchState.Presence.GetSessionId())
		}
		matchState.Presence = p
		matchState.EmptyTicks = 0
		mh.sendSnapshot(matchState, dispatcher, logger, []runtime.Presence{p})
	}
	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: Invalid match state type.")
		return state
	}

	for _, p := range presences {
		// A replaced session leaving must not clear its successor.
		if matchState.Presence != nil && matchState.Presence.GetSessionId() == p.GetSessionId() {
			matchState.Presence = nil
		}
	}
	if matchState.Presence == nil {
		logger.Info("MatchLeave: Terminating match with no humans.")
		matchState.shutdown()
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLoop advances pending timers, applies client messages and broadcasts the
// resulting events.
func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLoop: Invalid match state type.")
		return state
	}

	matchState.Scheduler.Advance(matchState.Runtime.TickInterval())

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpFlipCard:
			mh.handleFlipCard(matchState, dispatcher, logger, msg)
		case OpResetGame:
			mh.handleResetGame(matchState, dispatcher, logger, msg)
		case OpRequestState:
			mh.sendSnapshot(matchState, dispatcher, logger, []runtime.Presence{msg})
		default:
			logger.Warn("MatchLoop: Unknown op code %d from %s", msg.GetOpCode(), msg.GetUserId())
		}
	}

	mh.flush(matchState, dispatcher, logger)

	if matchState.Presence == nil {
		matchState.EmptyTicks++
		waited := time.Duration(matchState.EmptyTicks) * matchState.Runtime.TickInterval()
		if waited >= matchState.Runtime.TicketTTL {
			logger.Info("MatchLoop: Owner never joined, closing table.")
			matchState.shutdown()
			return nil
		}
	}
	return matchState
}

func (mh *matchHandler) handleFlipCard(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	s, err := decodeStruct(msg.GetData())
	if err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadPayload, err.Error())
		return
	}
	cardID, err := cardIDFromStruct(s)
	if err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadPayload, err.Error())
		return
	}
	switch err := state.Engine.HumanFlip(cardID); {
	case errors.Is(err, app.ErrBotTurn):
		mh.sendError(state, dispatcher, logger, ErrCodeNotYourTurn, "the bot is playing")
	case err != nil:
		logger.Debug("handleFlipCard: Flip of card %d ignored.", cardID)
	}
}

func (mh *matchHandler) handleResetGame(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	s, err := decodeStruct(msg.GetData())
	if err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadPayload, err.Error())
		return
	}
	patch, err := patchFromStruct(s)
	if err != nil {
		mh.sendError(state, dispatcher, logger, ErrCodeBadPayload, err.Error())
		return
	}
	if err := state.Engine.Reset(patch); err != nil {
		logger.Warn("handleResetGame: Rejected reset: %v", err)
		mh.sendError(state, dispatcher, logger, ErrCodeInvalidConfig, err.Error())
	}
}

// flush broadcasts queued engine events in order. A reset is followed by a fresh
// snapshot so clients can redraw the board.
func (mh *matchHandler) flush(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	events := state.Outbox
	state.Outbox = nil

	reset := false
	for _, ev := range events {
		mh.broadcastEvent(dispatcher, logger, ev)
		if ev.Kind == app.EventGameReset {
			reset = true
		}
	}
	if reset {
		mh.sendSnapshot(state, dispatcher, logger, nil)
	}
	if len(events) > 0 {
		mh.updateLabel(state, dispatcher, logger)
	}
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, payload, err := eventToMap(ev)
	if err != nil {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}
	bytes, err := encodeStruct(payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}
	if err := dispatcher.BroadcastMessage(opCode, bytes, nil, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

// sendSnapshot sends the masked view to recipients, or to everyone when nil.
func (mh *matchHandler) sendSnapshot(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, recipients []runtime.Presence) {
	bytes, err := encodeStruct(snapshotToMap(state.Engine.Settings(), state.Engine.View()))
	if err != nil {
		logger.Error("Failed to marshal snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpStateSnapshot, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to send snapshot: %v", err)
	}
}

// sendError sends an error event to the owner.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, code int, message string) {
	if state.Presence == nil {
		logger.Warn("Cannot send error %d: owner not connected", code)
		return
	}
	bytes, err := encodeStruct(map[string]interface{}{
		"code":    code,
		"message": message,
	})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{state.Presence}, nil, true); err != nil {
		logger.Error("Failed to send error: %v", err)
	}
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.label = label
}

func buildLabel(state *MatchState) (string, error) {
	view := state.Engine.View()
	l := domain.ComputeLabel(state.Engine.Settings(), &view, state.Presence != nil)
	s, err := structpb.NewStruct(map[string]interface{}{
		"open":   l.Open,
		"game":   l.Game,
		"mode":   l.Mode,
		"status": l.Status,
	})
	if err != nil {
		return "", err
	}
	b, err := (&protojson.MarshalOptions{EmitUnpopulated: true}).Marshal(s)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// shutdown stops the bot and the engine. It is safe to call more than once.
func (ms *MatchState) shutdown() {
	if ms.Agent != nil {
		ms.Agent.Detach()
	}
	if ms.unsubscribe != nil {
		ms.unsubscribe()
		ms.unsubscribe = nil
	}
	if ms.Engine != nil {
		ms.Engine.Close()
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, reason int) interface{} {
	logger.Debug("MatchTerminate: Match terminated for reason %d", reason)
	if matchState, ok := state.(*MatchState); ok {
		matchState.shutdown()
	}
	return state
}

// MatchSignal answers "snapshot" with the JSON form of the public view.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok || data != "snapshot" {
		return state, ""
	}
	s, err := structpb.NewStruct(snapshotToMap(matchState.Engine.Settings(), matchState.Engine.View()))
	if err != nil {
		logger.Error("MatchSignal: Failed to build snapshot: %v", err)
		return state, ""
	}
	b, err := protojson.Marshal(s)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(b)
}
