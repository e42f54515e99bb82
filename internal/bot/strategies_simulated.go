package bot

import (
	"math/rand"

	"onecard/internal/bot/brain"
	"onecard/internal/domain"
)

// SimulatedPlayer reveals the hidden assignment card by card. Once cards
// [0, k) are covered by prefixes, it asks every probe made of p-1 covered
// cards plus card k, then extends the prefixes to card k.
type SimulatedPlayer struct {
	rules    domain.Rules
	rng      *rand.Rand
	memory   *brain.ClueLog
	space    *brain.PrefixSpace
	queue    []domain.Probe
	started  bool
	finished bool
}

func NewSimulatedPlayer(rules domain.Rules, rng *rand.Rand) *SimulatedPlayer {
	return &SimulatedPlayer{rules: rules, rng: rng, memory: brain.NewClueLog()}
}

func (s *SimulatedPlayer) AskProbe() (domain.Probe, bool) {
	if probe, waiting := s.memory.Pending(); waiting {
		return probe, true
	}
	for len(s.queue) == 0 {
		if !s.advance() {
			return nil, false
		}
	}
	probe := s.queue[0]
	s.queue = s.queue[1:]
	s.memory.Expect(probe)
	return probe, true
}

// advance runs once every probe of the current stage is answered.
func (s *SimulatedPlayer) advance() bool {
	if s.finished {
		return false
	}
	switch {
	case !s.started:
		s.started = true
		first := make(domain.Probe, s.rules.ProbeSize)
		for i := range first {
			first[i] = i
		}
		s.queue = []domain.Probe{first}
		return true
	case s.space == nil:
		s.space = brain.NewPrefixSpace(s.rules.Cards, s.rules.ProbeSize, s.memory.Clues())
	default:
		s.space.Extend(s.memory.Clues())
	}

	if _, _, known := s.space.KnownCard(); known || s.space.Width() >= s.rules.Cards || s.space.Len() == 0 {
		s.finished = true
		return false
	}
	s.queue = stageProbes(s.space.Width(), s.rules.ProbeSize)
	return true
}

// stageProbes returns every (p-1)-subset of [0, k) joined with card k.
func stageProbes(k, size int) []domain.Probe {
	var probes []domain.Probe
	domain.Combinations(k, size-1, func(c []int) bool {
		probe := make(domain.Probe, 0, size)
		probe = append(probe, c...)
		probes = append(probes, append(probe, k))
		return true
	})
	return probes
}

func (s *SimulatedPlayer) ReceiveClue(clue domain.Clue) error {
	_, err := s.memory.Record(clue)
	return err
}

func (s *SimulatedPlayer) KnownCard() (domain.Guess, bool) {
	if s.space == nil {
		return domain.Guess{}, false
	}
	card, value, ok := s.space.KnownCard()
	if !ok {
		return domain.Guess{}, false
	}
	return domain.Guess{Card: card, Value: value, Deduced: true}, true
}

func (s *SimulatedPlayer) DeclareGuess() (domain.Guess, error) {
	if guess, ok := s.KnownCard(); ok {
		return guess, nil
	}
	return randomGuess(s.rng, s.prefixes())
}

func (s *SimulatedPlayer) prefixes() []domain.Assignment {
	if s.space == nil {
		width := s.rules.ProbeSize
		if s.memory.Len() == 0 {
			width = 1
		}
		return brain.NewPrefixSpace(s.rules.Cards, width, s.memory.Clues()).Prefixes()
	}
	return s.space.Prefixes()
}

// Possibilities lists the surviving prefixes.
func (s *SimulatedPlayer) Possibilities() []string {
	return describeAssignments(s.prefixes())
}

// Prefixes exposes the prefix space for inspection.
func (s *SimulatedPlayer) Prefixes() *brain.PrefixSpace { return s.space }
