package nakama

import (
	"bytes"
	"fmt"

	"concentration/internal/app"
	"concentration/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// encodeStruct turns a plain map into wire bytes.
func encodeStruct(m map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

// decodeStruct accepts a binary Struct or its JSON form.
func decodeStruct(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return s, nil
	}
	if trimmed[0] == '{' {
		if err := protojson.Unmarshal(trimmed, s); err != nil {
			return nil, fmt.Errorf("invalid JSON payload: %w", err)
		}
		return s, nil
	}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	return s, nil
}

func settingsToMap(s domain.Settings) map[string]interface{} {
	return map[string]interface{}{
		"mode":         string(s.Mode),
		"card_count":   s.CardCount,
		"player_count": s.PlayerCount,
		"human_name":   s.HumanName,
		"bot_name":     s.BotName,
	}
}

// snapshotToMap renders a masked view for clients.
func snapshotToMap(settings domain.Settings, view domain.GameState) map[string]interface{} {
	cards := make([]interface{}, 0, len(view.Cards))
	for _, c := range view.Cards {
		cards = append(cards, map[string]interface{}{
			"id":      c.ID,
			"symbol":  string(c.Symbol),
			"flipped": c.IsFlipped,
			"matched": c.IsMatched,
		})
	}
	players := make([]interface{}, 0, len(view.Players))
	for _, p := range view.Players {
		players = append(players, map[string]interface{}{
			"id":     p.ID,
			"name":   p.Name,
			"score":  p.Score,
			"is_bot": p.IsBot,
			"earned": symbolsToList(p.EarnedSymbols),
		})
	}
	return map[string]interface{}{
		"generation":     int64(view.Generation),
		"status":         string(view.Status),
		"cards":          cards,
		"players":        players,
		"current_player": view.CurrentPlayerIndex,
		"pending":        intsToList(view.PendingFlips),
		"resolving":      view.IsResolving,
		"winner":         view.Winner,
		"winner_index":   view.WinnerIndex,
		"tie":            view.Tie,
		"settings":       settingsToMap(settings),
	}
}

// eventToMap maps an app event to its op code and payload.
func eventToMap(ev app.Event) (int64, map[string]interface{}, error) {
	m := map[string]interface{}{"generation": int64(ev.Generation)}
	switch p := ev.Payload.(type) {
	case app.CardFlippedPayload:
		m["card_id"] = p.CardID
		m["symbol"] = string(p.Symbol)
		m["player"] = p.PlayerIndex
		return OpCardFlipped, m, nil
	case app.PairResolvedPayload:
		m["card_ids"] = intsToList(p.CardIDs[:])
		m["symbol"] = string(p.Symbol)
		m["matched"] = p.Matched
		m["player"] = p.PlayerIndex
		m["score"] = p.Score
		return OpPairResolved, m, nil
	case app.TurnAdvancedPayload:
		m["from"] = p.FromIndex
		m["to"] = p.ToIndex
		return OpTurnAdvanced, m, nil
	case app.GameEndedPayload:
		m["winner"] = p.Winner
		m["winner_index"] = p.WinnerIndex
		m["tie"] = p.Tie
		m["scores"] = intsToList(p.Scores)
		return OpGameEnded, m, nil
	case app.GameResetPayload:
		m["settings"] = settingsToMap(p.Settings)
		return OpGameReset, m, nil
	default:
		return 0, nil, fmt.Errorf("unknown event %s", ev.Kind)
	}
}

// patchFromStruct reads optional settings overrides. An empty struct yields nil.
func patchFromStruct(s *structpb.Struct) (*domain.SettingsPatch, error) {
	fields := s.GetFields()
	if len(fields) == 0 {
		return nil, nil
	}
	patch := &domain.SettingsPatch{}
	for key, v := range fields {
		switch key {
		case "mode":
			mode := domain.Mode(v.GetStringValue())
			patch.Mode = &mode
		case "card_count":
			n, err := wholeNumber(key, v)
			if err != nil {
				return nil, err
			}
			patch.CardCount = &n
		case "player_count":
			n, err := wholeNumber(key, v)
			if err != nil {
				return nil, err
			}
			patch.PlayerCount = &n
		case "human_name":
			name := v.GetStringValue()
			patch.HumanName = &name
		case "bot_name":
			name := v.GetStringValue()
			patch.BotName = &name
		default:
			return nil, fmt.Errorf("unknown setting %q", key)
		}
	}
	return patch, nil
}

// cardIDFromStruct reads {"card_id": n}.
func cardIDFromStruct(s *structpb.Struct) (int, error) {
	v, ok := s.GetFields()["card_id"]
	if !ok {
		return 0, fmt.Errorf("card_id is required")
	}
	return wholeNumber("card_id", v)
}

func wholeNumber(key string, v *structpb.Value) (int, error) {
	if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
		return 0, fmt.Errorf("%s must be a number", key)
	}
	f := v.GetNumberValue()
	n := int(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%s must be a whole number", key)
	}
	return n, nil
}

func intsToList(ids []int) []interface{} {
	out := make([]interface{}, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func symbolsToList(symbols []domain.Symbol) []interface{} {
	out := make([]interface{}, len(symbols))
	for i, s := range symbols {
		out[i] = string(s)
	}
	return out
}
