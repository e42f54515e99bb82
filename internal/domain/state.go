package domain

import (
	"errors"
	"fmt"
)

// Phase represents the lifecycle stage of a deduction game.
type Phase string

const (
	// PhaseAwaitingProbe is the state where the player submits a probe or a guess.
	PhaseAwaitingProbe Phase = "awaiting_probe"
	// PhaseAwaitingAnswer is the state where a probe has been asked and the engine owes a clue.
	PhaseAwaitingAnswer Phase = "awaiting_answer"
	// PhaseReadyToGuess is the state after the player stopped probing.
	PhaseReadyToGuess Phase = "ready_to_guess"
	// PhaseVerified is the terminal state after the engine checked the guess.
	PhaseVerified Phase = "verified"
)

var (
	ErrInvalidRules        = errors.New("invalid rules")
	ErrInvalidProbe        = errors.New("invalid probe")
	ErrInvalidGuess        = errors.New("invalid guess")
	ErrInvalidAssignment   = errors.New("invalid assignment")
	ErrNoLiveAssignment    = errors.New("engine has no live assignment")
	ErrWrongPhase          = errors.New("operation not allowed in current phase")
	ErrHypothesisExhausted = errors.New("hypothesis space is empty")
	ErrUnexpectedClue      = errors.New("clue does not answer the pending probe")
	ErrUniverseTooLarge    = errors.New("permutation universe too large")
	ErrUnknownCardName     = errors.New("unknown card name")
	ErrGameTooLarge        = errors.New("game too large for strategy")
)

// Rules fixes the shape of a game: t cards, probes of p cards.
type Rules struct {
	Cards     int `json:"cards" yaml:"cards"`
	ProbeSize int `json:"probe_size" yaml:"probe_size"`
}

// Validate checks 2 <= t <= MaxNamedCards and 1 <= p < t.
func (r Rules) Validate() error {
	if r.Cards < 2 {
		return fmt.Errorf("%w: need at least 2 cards, got %d", ErrInvalidRules, r.Cards)
	}
	if r.Cards > MaxNamedCards {
		return fmt.Errorf("%w: at most %d cards, got %d", ErrInvalidRules, MaxNamedCards, r.Cards)
	}
	if r.ProbeSize < 1 || r.ProbeSize >= r.Cards {
		return fmt.Errorf("%w: probe size %d outside [1,%d)", ErrInvalidRules, r.ProbeSize, r.Cards)
	}
	return nil
}

// Deducible reports whether t > 3(p-1), the regime where adaptive strategies
// always reach a proven card.
func (r Rules) Deducible() bool {
	return r.Cards > 3*(r.ProbeSize-1)
}

// Clue is the engine's answer to a probe: one of the probed cards carries Value.
type Clue struct {
	Probe Probe `json:"probe" yaml:"probe"`
	Value int   `json:"value" yaml:"value"`
}

func (c Clue) String() string {
	return fmt.Sprintf("%s -> %d", CardsToString(c.Probe), c.Value)
}

// Guess is the player's final claim. Deduced is set only when the value was proven.
type Guess struct {
	Card    int  `json:"card" yaml:"card"`
	Value   int  `json:"value" yaml:"value"`
	Deduced bool `json:"deduced" yaml:"deduced"`
}

// Verdict is the engine's ruling on a guess together with the revealed assignment.
type Verdict struct {
	Guess      Guess      `json:"guess" yaml:"guess"`
	Won        bool       `json:"won" yaml:"won"`
	Assignment Assignment `json:"assignment" yaml:"assignment"`
}
