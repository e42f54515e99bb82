package nakama

import (
	"errors"
	"testing"

	"google.golang.org/protobuf/types/known/structpb"

	"onecard/internal/app"
	"onecard/internal/domain"
)

func mustStruct(t *testing.T, fields map[string]interface{}) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(fields)
	if err != nil {
		t.Fatalf("NewStruct(%v) error = %v", fields, err)
	}
	return s
}

func TestProbeFromStruct(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]interface{}
		want    domain.Probe
		wantErr error
	}{
		{name: "Indices", fields: map[string]interface{}{"cards": []interface{}{3, 0}}, want: domain.Probe{3, 0}},
		{name: "Names", fields: map[string]interface{}{"names": "c, a"}, want: domain.Probe{2, 0}},
		{name: "NamesWin", fields: map[string]interface{}{"names": "b", "cards": []interface{}{0}}, want: domain.Probe{1}},
		{name: "NotNumbers", fields: map[string]interface{}{"cards": []interface{}{"a"}}, wantErr: domain.ErrInvalidProbe},
		{name: "Missing", fields: map[string]interface{}{}, wantErr: domain.ErrInvalidProbe},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := probeFromStruct(mustStruct(t, test.fields))
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("probeFromStruct() error = %v, want %v", err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("probeFromStruct() error = %v", err)
			}
			if !got.Equal(test.want) {
				t.Fatalf("probeFromStruct() = %v, want %v", got, test.want)
			}
		})
	}
}

func TestGuessFromStruct(t *testing.T) {
	guess, err := guessFromStruct(mustStruct(t, map[string]interface{}{"card": 2, "value": 4}))
	if err != nil || guess != (domain.Guess{Card: 2, Value: 4}) {
		t.Fatalf("guessFromStruct() = %+v, %v", guess, err)
	}
	guess, err = guessFromStruct(mustStruct(t, map[string]interface{}{"name": "d", "value": 0}))
	if err != nil || guess != (domain.Guess{Card: 3, Value: 0}) {
		t.Fatalf("guessFromStruct() by name = %+v, %v", guess, err)
	}
	if _, err := guessFromStruct(mustStruct(t, map[string]interface{}{"card": 1})); !errors.Is(err, domain.ErrInvalidGuess) {
		t.Fatalf("Expected ErrInvalidGuess without a value, got %v", err)
	}
	if _, err := guessFromStruct(mustStruct(t, map[string]interface{}{"name": "ab", "value": 1})); !errors.Is(err, domain.ErrInvalidGuess) {
		t.Fatalf("Expected ErrInvalidGuess for two names, got %v", err)
	}
}

func TestEventMessage(t *testing.T) {
	clue := domain.Clue{Probe: domain.Probe{0, 2}, Value: 1}
	opCode, fields, ok := eventMessage(app.Event{Kind: app.EventClueGiven, Payload: app.ClueGivenPayload{Clue: clue, Probes: 3}})
	if !ok || opCode != domain.OpCodeClue {
		t.Fatalf("eventMessage() = %d, %t", opCode, ok)
	}
	if fields["names"] != "ac" || fields["value"] != 1 || fields["probes"] != 3 {
		t.Fatalf("Unexpected clue fields %v", fields)
	}
	if _, err := encodeStruct(fields); err != nil {
		t.Fatalf("Clue fields do not encode: %v", err)
	}

	if _, _, ok := eventMessage(app.Event{Kind: app.EventProbeAsked, Payload: app.ProbeAskedPayload{Probe: clue.Probe}}); ok {
		t.Fatalf("probe_asked must stay server-side")
	}
}
