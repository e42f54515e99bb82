package nakama

import (
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"onecard/internal/app"
	"onecard/internal/domain"
)

func encodeStruct(fields map[string]interface{}) ([]byte, error) {
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func decodeStruct(data []byte) (*structpb.Struct, error) {
	s := &structpb.Struct{}
	if len(data) == 0 {
		return s, nil
	}
	if err := proto.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func intsToValues(ints []int) []interface{} {
	out := make([]interface{}, len(ints))
	for i, v := range ints {
		out[i] = v
	}
	return out
}

func intField(s *structpb.Struct, key string) (int, bool) {
	v, ok := s.GetFields()[key]
	if !ok {
		return 0, false
	}
	if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
		return 0, false
	}
	return int(v.GetNumberValue()), true
}

// probeFromStruct reads a probe given either as "cards": [0, 2] or as
// "names": "ac".
func probeFromStruct(s *structpb.Struct) (domain.Probe, error) {
	fields := s.GetFields()
	if names, ok := fields["names"]; ok {
		cards, err := domain.ParseCards(names.GetStringValue())
		if err != nil {
			return nil, err
		}
		return domain.Probe(cards), nil
	}
	list := fields["cards"].GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: missing cards", domain.ErrInvalidProbe)
	}
	probe := make(domain.Probe, 0, len(list.GetValues()))
	for _, v := range list.GetValues() {
		if _, isNumber := v.GetKind().(*structpb.Value_NumberValue); !isNumber {
			return nil, fmt.Errorf("%w: card %v is not a number", domain.ErrInvalidProbe, v.AsInterface())
		}
		probe = append(probe, int(v.GetNumberValue()))
	}
	return probe, nil
}

func guessFromStruct(s *structpb.Struct) (domain.Guess, error) {
	card, ok := intField(s, "card")
	if !ok {
		if name := s.GetFields()["name"].GetStringValue(); name != "" {
			cards, err := domain.ParseCards(name)
			if err != nil || len(cards) != 1 {
				return domain.Guess{}, fmt.Errorf("%w: bad card name %q", domain.ErrInvalidGuess, name)
			}
			card, ok = cards[0], true
		}
	}
	value, hasValue := intField(s, "value")
	if !ok || !hasValue {
		return domain.Guess{}, fmt.Errorf("%w: card and value are required", domain.ErrInvalidGuess)
	}
	return domain.Guess{Card: card, Value: value}, nil
}

func clueToMap(c domain.Clue) map[string]interface{} {
	return map[string]interface{}{
		"cards": intsToValues(c.Probe),
		"names": domain.CardsToString(c.Probe),
		"value": c.Value,
	}
}

// eventMessage maps an app event to its opcode and message fields. ok is
// false for events that are not sent to clients.
func eventMessage(ev app.Event) (opCode int64, fields map[string]interface{}, ok bool) {
	switch p := ev.Payload.(type) {
	case app.GameStartedPayload:
		return domain.OpCodeGameStarted, map[string]interface{}{
			"game_id":    p.GameID,
			"phase":      string(p.Phase),
			"cards":      p.Cards,
			"probe_size": p.ProbeSize,
		}, true
	case app.ClueGivenPayload:
		fields := clueToMap(p.Clue)
		fields["probes"] = p.Probes
		return domain.OpCodeClue, fields, true
	case app.EngineShrunkPayload:
		return domain.OpCodeEngineShrunk, map[string]interface{}{
			"dropped": p.Dropped,
			"live":    p.Live,
		}, true
	case app.GuessVerifiedPayload:
		return domain.OpCodeVerdict, map[string]interface{}{
			"card":       p.Verdict.Guess.Card,
			"value":      p.Verdict.Guess.Value,
			"deduced":    p.Verdict.Guess.Deduced,
			"won":        p.Verdict.Won,
			"assignment": intsToValues(p.Verdict.Assignment),
			"probes":     p.Probes,
		}, true
	default:
		return 0, nil, false
	}
}
