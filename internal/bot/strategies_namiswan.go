package bot

import (
	"fmt"
	"math/rand"

	"onecard/internal/bot/brain"
	"onecard/internal/domain"
)

// NamiswanPlayer asks every combination of p cards, then intersects the
// probes that produced each value. A value whose intersection is a single
// card pins that card.
type NamiswanPlayer struct {
	rules  domain.Rules
	rng    *rand.Rand
	memory *brain.ClueLog
	probes []domain.Probe
	next   int
	sets   *brain.Intersections
}

func NewNamiswanPlayer(rules domain.Rules, rng *rand.Rand) *NamiswanPlayer {
	return &NamiswanPlayer{
		rules:  rules,
		rng:    rng,
		memory: brain.NewClueLog(),
		probes: domain.AllProbes(rules),
		sets:   brain.NewIntersections(),
	}
}

func (s *NamiswanPlayer) AskProbe() (domain.Probe, bool) {
	if probe, waiting := s.memory.Pending(); waiting {
		return probe, true
	}
	if s.next >= len(s.probes) {
		return nil, false
	}
	probe := s.probes[s.next]
	s.next++
	s.memory.Expect(probe)
	return probe, true
}

func (s *NamiswanPlayer) ReceiveClue(clue domain.Clue) error {
	clue, err := s.memory.Record(clue)
	if err != nil {
		return err
	}
	return s.sets.Add(clue)
}

func (s *NamiswanPlayer) KnownCard() (domain.Guess, bool) {
	card, value, ok := s.sets.Singleton()
	if !ok {
		return domain.Guess{}, false
	}
	return domain.Guess{Card: card, Value: value, Deduced: true}, true
}

func (s *NamiswanPlayer) DeclareGuess() (domain.Guess, error) {
	if guess, ok := s.KnownCard(); ok {
		return guess, nil
	}
	values := s.sets.Values()
	if len(values) == 0 {
		return domain.Guess{}, domain.ErrHypothesisExhausted
	}
	value := values[s.rng.Intn(len(values))]
	cards := s.sets.Cards(value)
	return domain.Guess{Card: cards[s.rng.Intn(len(cards))], Value: value}, nil
}

// Possibilities lists, per answered value, the cards that may hold it.
func (s *NamiswanPlayer) Possibilities() []string {
	values := s.sets.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%d: %s", v, domain.CardsToString(s.sets.Cards(v)))
	}
	return out
}

// Intersections exposes the per-value intersections.
func (s *NamiswanPlayer) Intersections() *brain.Intersections { return s.sets }
