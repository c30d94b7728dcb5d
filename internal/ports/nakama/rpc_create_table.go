package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"concentration/internal/app"
	"concentration/internal/config"
	"concentration/internal/domain"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Nakama error codes (gRPC status codes).
const (
	codeInvalidArgument = 3
	codeInternal        = 13
	codeUnauthenticated = 16
)

type matchCreator interface {
	MatchCreate(ctx context.Context, module string, params map[string]interface{}) (string, error)
}

type createTableRequest struct {
	Mode        *string `json:"mode,omitempty"`
	CardCount   *int    `json:"card_count,omitempty"`
	PlayerCount *int    `json:"player_count,omitempty"`
	HumanName   *string `json:"human_name,omitempty"`
	BotName     *string `json:"bot_name,omitempty"`
}

func (r createTableRequest) patch() domain.SettingsPatch {
	p := domain.SettingsPatch{
		CardCount:   r.CardCount,
		PlayerCount: r.PlayerCount,
		HumanName:   r.HumanName,
		BotName:     r.BotName,
	}
	if r.Mode != nil {
		mode := domain.Mode(*r.Mode)
		p.Mode = &mode
	}
	return p
}

type createTableResponse struct {
	MatchID string `json:"match_id"`
	Ticket  string `json:"ticket"`
}

// RegisterRPCs registers all RPC endpoints with the Nakama initializer.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcCreateTable, RpcCreateTableHandler)
}

// RpcCreateTableHandler opens a table owned by the calling user.
//
// Payload: optional JSON settings {mode, card_count, player_count, human_name, bot_name}.
// Returns: JSON {match_id, ticket}; the ticket goes into the join metadata.
func RpcCreateTableHandler(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return createTable(ctx, logger, nk, payload)
}

func createTable(ctx context.Context, logger runtime.Logger, nk matchCreator, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("user ID missing from context", codeUnauthenticated)
	}

	var req createTableRequest
	if strings.TrimSpace(payload) != "" {
		if err := json.Unmarshal([]byte(payload), &req); err != nil {
			return "", runtime.NewError("invalid request payload", codeInvalidArgument)
		}
	}

	rt, err := config.LoadRuntime(runtimeEnv(ctx))
	if err != nil {
		logger.Error("RpcCreateTable [User:%s]: Bad runtime config: %v", userID, err)
		return "", runtime.NewError("server misconfigured", codeInternal)
	}
	gameCfg, err := config.LoadGameConfig(rt.ConfigPath)
	if err != nil {
		logger.Error("RpcCreateTable [User:%s]: Bad game config: %v", userID, err)
		return "", runtime.NewError("server misconfigured", codeInternal)
	}

	settings := gameCfg.Settings().Merge(req.patch())
	if err := domain.ValidateSettings(settings, gameCfg.Catalog()); err != nil {
		return "", runtime.NewError(err.Error(), codeInvalidArgument)
	}

	if rt.TicketSecret == "" {
		logger.Error("RpcCreateTable [User:%s]: Ticket secret is not configured.", userID)
		return "", runtime.NewError("server misconfigured", codeInternal)
	}
	tickets := app.NewTicketService(rt.TicketSecret, rt.TicketIssuer, rt.TicketTTL)
	matchID, err := nk.MatchCreate(ctx, MatchNameConcentration, settingsToParams(userID, settings))
	if err != nil {
		logger.Error("RpcCreateTable [User:%s]: Failed to create match: %v", userID, err)
		return "", runtime.NewError("failed to create table", codeInternal)
	}
	ticket, err := tickets.Issue(userID, matchID)
	if err != nil {
		logger.Error("RpcCreateTable [User:%s]: Failed to issue ticket: %v", userID, err)
		return "", runtime.NewError("failed to issue ticket", codeInternal)
	}

	out, err := json.Marshal(createTableResponse{MatchID: matchID, Ticket: ticket})
	if err != nil {
		return "", runtime.NewError("failed to encode response", codeInternal)
	}
	logger.Info("RpcCreateTable [User:%s]: Created table %s (%s, %d cards)", userID, matchID, settings.Mode, settings.CardCount)
	return string(out), nil
}

// runtimeEnv returns the Nakama runtime environment, or an empty map outside Nakama.
func runtimeEnv(ctx context.Context) map[string]string {
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok && env != nil {
		return env
	}
	return map[string]string{}
}

func settingsToParams(owner string, s domain.Settings) map[string]interface{} {
	return map[string]interface{}{
		"owner":        owner,
		"mode":         string(s.Mode),
		"card_count":   s.CardCount,
		"player_count": s.PlayerCount,
		"human_name":   s.HumanName,
		"bot_name":     s.BotName,
	}
}

// settingsFromParams overlays match params on base.
func settingsFromParams(base domain.Settings, params map[string]interface{}) domain.Settings {
	var p domain.SettingsPatch
	if v, ok := params["mode"].(string); ok {
		mode := domain.Mode(v)
		p.Mode = &mode
	}
	if n, ok := intParam(params["card_count"]); ok {
		p.CardCount = &n
	}
	if n, ok := intParam(params["player_count"]); ok {
		p.PlayerCount = &n
	}
	if v, ok := params["human_name"].(string); ok {
		p.HumanName = &v
	}
	if v, ok := params["bot_name"].(string); ok {
		p.BotName = &v
	}
	return base.Merge(p)
}

func intParam(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}
