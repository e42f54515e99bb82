package brain

import (
	"errors"
	"testing"

	"onecard/internal/domain"
)

func TestClueLog_Record(t *testing.T) {
	log := NewClueLog()

	if _, err := log.Record(domain.Clue{Probe: domain.Probe{0, 1}, Value: 2}); !errors.Is(err, domain.ErrUnexpectedClue) {
		t.Fatalf("expected ErrUnexpectedClue without a pending probe, got %v", err)
	}

	log.Expect(domain.Probe{2, 0})
	if _, err := log.Record(domain.Clue{Probe: domain.Probe{0, 1}, Value: 2}); !errors.Is(err, domain.ErrUnexpectedClue) {
		t.Fatalf("expected ErrUnexpectedClue for another probe, got %v", err)
	}

	clue, err := log.Record(domain.Clue{Probe: domain.Probe{0, 2}, Value: 3})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if clue.Probe.Key() != "0,2" {
		t.Errorf("recorded probe should be canonical, got %v", clue.Probe)
	}
	if _, waiting := log.Pending(); waiting {
		t.Errorf("nothing should be pending after an answer")
	}
	if v, ok := log.Lookup(domain.Probe{2, 0}); !ok || v != 3 {
		t.Errorf("Lookup = %d,%v; want 3,true", v, ok)
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 clue, got %d", log.Len())
	}
}

func TestPrefixSpace_MatchesUniverseAtFullWidth(t *testing.T) {
	clues := []domain.Clue{
		{Probe: domain.Probe{0, 1}, Value: 3},
		{Probe: domain.Probe{1, 2}, Value: 0},
		{Probe: domain.Probe{2, 4}, Value: 1},
	}
	const cards = 5

	space := NewPrefixSpace(cards, 2, clues)
	if space.Width() != 2 {
		t.Fatalf("width = %d", space.Width())
	}
	for _, prefix := range space.Prefixes() {
		if prefix[0] != 3 && prefix[1] != 3 {
			t.Errorf("prefix %v ignores a fully covered clue", prefix)
		}
	}
	for space.Width() < cards {
		before := space.Len()
		space.Extend(clues)
		if space.Len() == 0 {
			t.Fatalf("space emptied at width %d (had %d)", space.Width(), before)
		}
	}

	universe, err := domain.NewUniverse(cards)
	if err != nil {
		t.Fatalf("NewUniverse: %v", err)
	}
	for _, c := range clues {
		universe.Filter(c)
	}

	want := make(map[string]bool)
	for _, a := range universe.Survivors() {
		want[a.Key()] = true
	}
	if len(want) != space.Len() {
		t.Fatalf("prefix space has %d members, universe has %d", space.Len(), len(want))
	}
	for _, prefix := range space.Prefixes() {
		if !want[prefix.Key()] {
			t.Errorf("prefix %v is not a consistent assignment", prefix)
		}
	}
}

func TestConsistentPrefix(t *testing.T) {
	clue := domain.Clue{Probe: domain.Probe{1, 3}, Value: 2}
	tests := []struct {
		name   string
		prefix domain.Assignment
		want   bool
	}{
		{name: "covered card carries the value", prefix: domain.Assignment{0, 2}, want: true},
		{name: "value free and card 3 uncovered", prefix: domain.Assignment{0, 1}, want: true},
		{name: "value used elsewhere", prefix: domain.Assignment{2, 1}, want: false},
		{name: "fully covered without the value", prefix: domain.Assignment{0, 1, 3, 4}, want: false},
		{name: "empty prefix", prefix: domain.Assignment{}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConsistentPrefix(tt.prefix, []domain.Clue{clue}); got != tt.want {
				t.Errorf("ConsistentPrefix(%v) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestIntersections(t *testing.T) {
	x := NewIntersections()
	steps := []domain.Clue{
		{Probe: domain.Probe{0, 1, 2}, Value: 4},
		{Probe: domain.Probe{1, 2, 3}, Value: 4},
		{Probe: domain.Probe{0, 3, 4}, Value: 1},
		{Probe: domain.Probe{2, 3, 4}, Value: 4},
	}
	for _, c := range steps {
		if err := x.Add(c); err != nil {
			t.Fatalf("Add(%v): %v", c, err)
		}
	}

	card, value, ok := x.Singleton()
	if !ok || card != 2 || value != 4 {
		t.Errorf("Singleton = %d,%d,%v; want 2,4,true", card, value, ok)
	}
	if got := x.Values(); len(got) != 2 || got[0] != 1 || got[1] != 4 {
		t.Errorf("Values = %v", got)
	}

	err := x.Add(domain.Clue{Probe: domain.Probe{0, 1, 3}, Value: 4})
	if !errors.Is(err, domain.ErrHypothesisExhausted) {
		t.Errorf("expected ErrHypothesisExhausted, got %v", err)
	}
}
