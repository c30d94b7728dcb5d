package nakama

import (
	"testing"

	"concentration/internal/app"
	"concentration/internal/domain"

	"google.golang.org/protobuf/types/known/structpb"
)

func TestEventOpCodes(t *testing.T) {
	tests := []struct {
		ev   app.Event
		want int64
	}{
		{app.Event{Kind: app.EventCardFlipped, Payload: app.CardFlippedPayload{CardID: 3, Symbol: "Sun"}}, OpCardFlipped},
		{app.Event{Kind: app.EventPairResolved, Payload: app.PairResolvedPayload{CardIDs: [2]int{1, 2}, Matched: true}}, OpPairResolved},
		{app.Event{Kind: app.EventTurnAdvanced, Payload: app.TurnAdvancedPayload{FromIndex: 0, ToIndex: 1}}, OpTurnAdvanced},
		{app.Event{Kind: app.EventGameEnded, Payload: app.GameEndedPayload{Winner: "Me", Scores: []int{2, 1}}}, OpGameEnded},
		{app.Event{Kind: app.EventGameReset, Payload: app.GameResetPayload{Settings: domain.DefaultSettings()}}, OpGameReset},
	}
	for _, tc := range tests {
		t.Run(string(tc.ev.Kind), func(t *testing.T) {
			op, m, err := eventToMap(tc.ev)
			if err != nil {
				t.Fatalf("eventToMap error: %v", err)
			}
			if op != tc.want {
				t.Fatalf("op = %d, want %d", op, tc.want)
			}
			if _, err := encodeStruct(m); err != nil {
				t.Fatalf("payload does not encode: %v", err)
			}
		})
	}

	if _, _, err := eventToMap(app.Event{Kind: "mystery"}); err == nil {
		t.Fatal("expected error for unknown payload")
	}
}

func TestPatchFromStruct(t *testing.T) {
	empty, err := patchFromStruct(&structpb.Struct{})
	if err != nil || empty != nil {
		t.Fatalf("empty struct = %v, %v; want nil patch", empty, err)
	}

	s, _ := structpb.NewStruct(map[string]interface{}{"mode": "local-multiplayer", "card_count": 10, "bot_name": "Robo"})
	patch, err := patchFromStruct(s)
	if err != nil {
		t.Fatalf("patchFromStruct error: %v", err)
	}
	got := domain.DefaultSettings().Merge(*patch)
	if got.Mode != domain.ModeLocalMultiplayer || got.CardCount != 10 || got.BotName != "Robo" || got.PlayerCount != 2 {
		t.Fatalf("merged = %+v", got)
	}

	bad := []map[string]interface{}{
		{"colour": "red"},
		{"card_count": "ten"},
		{"player_count": 2.5},
	}
	for _, fields := range bad {
		s, _ := structpb.NewStruct(fields)
		if _, err := patchFromStruct(s); err == nil {
			t.Fatalf("expected error for %v", fields)
		}
	}
}

func TestDecodeStruct(t *testing.T) {
	bin, err := encodeStruct(map[string]interface{}{"card_id": 4})
	if err != nil {
		t.Fatal(err)
	}
	for _, data := range [][]byte{bin, []byte(` {"card_id": 4}`)} {
		s, err := decodeStruct(data)
		if err != nil {
			t.Fatalf("decodeStruct(%q) error: %v", data, err)
		}
		if id, err := cardIDFromStruct(s); err != nil || id != 4 {
			t.Fatalf("card id = %d, %v", id, err)
		}
	}

	if _, err := decodeStruct([]byte("{not json")); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
	s, err := decodeStruct(nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := cardIDFromStruct(s); err == nil {
		t.Fatal("expected error for missing card_id")
	}
}
