package bot

import (
	"fmt"
	"math/rand"

	"onecard/internal/bot/brain"
	"onecard/internal/bot/internal"
	"onecard/internal/domain"
)

// TheoreticalPlayer works on the full permutation space. It walks the pairs
// of live candidates that disagree on every card and asks a probe that
// separates them. Candidates contradicting a clue are pruned. If the pairs
// run out before a card is known, the remaining unasked probes are asked in
// lexicographic order.
type TheoreticalPlayer struct {
	rules    domain.Rules
	rng      *rand.Rand
	memory   *brain.ClueLog
	universe *domain.Universe

	// next pair to examine
	i, j int
	// pair that produced the pending probe
	pairA, pairB int
	hasPair      bool

	completion []domain.Probe
	finished   bool
}

func NewTheoreticalPlayer(rules domain.Rules, rng *rand.Rand) (*TheoreticalPlayer, error) {
	universe, err := domain.NewUniverse(rules.Cards)
	if err != nil {
		return nil, err
	}
	return &TheoreticalPlayer{
		rules:    rules,
		rng:      rng,
		memory:   brain.NewClueLog(),
		universe: universe,
		j:        1,
	}, nil
}

func (s *TheoreticalPlayer) AskProbe() (domain.Probe, bool) {
	if probe, waiting := s.memory.Pending(); waiting {
		return probe, true
	}
	if s.finished {
		return nil, false
	}
	if _, _, known := s.universe.KnownCard(); known || s.universe.Len() == 0 {
		s.finished = true
		return nil, false
	}

	for {
		a, b, ok := s.nextPair()
		if !ok {
			break
		}
		probe := internal.DistinguishingProbe(s.universe.At(a), s.universe.At(b), s.rules.ProbeSize)
		if value, asked := s.memory.Lookup(probe); asked {
			s.discardPair(a, b, domain.Clue{Probe: probe, Value: value})
			continue
		}
		s.pairA, s.pairB, s.hasPair = a, b, true
		s.memory.Expect(probe)
		return probe, true
	}

	if s.completion == nil {
		s.completion = domain.AllProbes(s.rules)
	}
	for len(s.completion) > 0 {
		probe := s.completion[0]
		s.completion = s.completion[1:]
		if _, asked := s.memory.Lookup(probe); asked {
			continue
		}
		s.memory.Expect(probe)
		return probe, true
	}

	s.finished = true
	return nil, false
}

// nextPair returns the next live pair, in lexicographic order, with no card
// carrying the same value.
func (s *TheoreticalPlayer) nextPair() (int, int, bool) {
	n := s.universe.Size()
	for ; s.i < n; s.i, s.j = s.i+1, s.i+2 {
		if !s.universe.Alive(s.i) {
			continue
		}
		a := s.universe.At(s.i)
		for ; s.j < n; s.j++ {
			if !s.universe.Alive(s.j) || a.SharesPosition(s.universe.At(s.j)) {
				continue
			}
			j := s.j
			s.j++
			return s.i, j, true
		}
	}
	return 0, 0, false
}

func (s *TheoreticalPlayer) discardPair(a, b int, clue domain.Clue) {
	if !s.universe.At(a).Satisfies(clue) {
		s.universe.Discard(a)
	}
	if !s.universe.At(b).Satisfies(clue) {
		s.universe.Discard(b)
	}
}

func (s *TheoreticalPlayer) ReceiveClue(clue domain.Clue) error {
	clue, err := s.memory.Record(clue)
	if err != nil {
		return err
	}
	if s.hasPair {
		s.discardPair(s.pairA, s.pairB, clue)
		s.hasPair = false
	}
	s.universe.Filter(clue)
	if s.universe.Len() == 0 {
		return fmt.Errorf("%w: after clue %v", domain.ErrHypothesisExhausted, clue)
	}
	return nil
}

func (s *TheoreticalPlayer) KnownCard() (domain.Guess, bool) {
	card, value, ok := s.universe.KnownCard()
	if !ok {
		return domain.Guess{}, false
	}
	return domain.Guess{Card: card, Value: value, Deduced: true}, true
}

func (s *TheoreticalPlayer) DeclareGuess() (domain.Guess, error) {
	if guess, ok := s.KnownCard(); ok {
		return guess, nil
	}
	return randomGuess(s.rng, s.universe.Survivors())
}

// Possibilities lists the surviving assignments.
func (s *TheoreticalPlayer) Possibilities() []string {
	return describeAssignments(s.universe.Survivors())
}

// Survivors returns the live candidates in lexicographic order.
func (s *TheoreticalPlayer) Survivors() []domain.Assignment {
	return s.universe.Survivors()
}
