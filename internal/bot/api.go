package bot

import (
	"onecard/internal/domain"
)

// Strategy is the interface that every player, bot or human, implements.
// AskProbe returns false once the player wants to stop probing; every probe
// it returns must be answered with ReceiveClue before the next call.
type Strategy interface {
	AskProbe() (domain.Probe, bool)
	ReceiveClue(clue domain.Clue) error
	DeclareGuess() (domain.Guess, error)
}

// Deducer is implemented by strategies that can prove a card's value.
type Deducer interface {
	KnownCard() (domain.Guess, bool)
}

// Explainer is implemented by strategies that can list their remaining hypotheses.
type Explainer interface {
	Possibilities() []string
}

// Possibilities lists at most limit remaining hypotheses of s, or nil when s
// does not expose them. A non-positive limit means no limit.
func Possibilities(s Strategy, limit int) []string {
	e, ok := s.(Explainer)
	if !ok {
		return nil
	}
	all := e.Possibilities()
	if limit > 0 && len(all) > limit {
		return all[:limit]
	}
	return all
}
