package bot

import (
	"math/rand"

	"onecard/internal/domain"
)

// Move is the decision an agent takes on its turn: a probe, or a final guess.
type Move struct {
	Probe domain.Probe
	Guess *domain.Guess
}

// Agent represents an autonomous player.
type Agent struct {
	ID       string
	Name     string
	Kind     Kind
	Strategy Strategy
}

// NewAgent wraps a freshly built strategy of the given kind.
func NewAgent(id, name string, kind Kind, rules domain.Rules, rng *rand.Rand) (*Agent, error) {
	strategy, err := NewStrategy(kind, rules, rng)
	if err != nil {
		return nil, err
	}
	return &Agent{ID: id, Name: name, Kind: kind, Strategy: strategy}, nil
}

// Play asks the agent for its next move.
func (a *Agent) Play() (Move, error) {
	if probe, ok := a.Strategy.AskProbe(); ok {
		return Move{Probe: probe}, nil
	}
	guess, err := a.Strategy.DeclareGuess()
	if err != nil {
		return Move{}, err
	}
	return Move{Guess: &guess}, nil
}

// OnClue forwards the engine's answer to the strategy.
func (a *Agent) OnClue(clue domain.Clue) error {
	return a.Strategy.ReceiveClue(clue)
}
