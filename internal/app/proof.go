package app

import "onecard/internal/domain"

// ProvenByClues reports whether every assignment consistent with the clues
// puts value on card. Games too large to enumerate are never proven.
func ProvenByClues(rules domain.Rules, clues []domain.Clue, card, value int) bool {
	universe, err := domain.NewUniverse(rules.Cards)
	if err != nil {
		return false
	}
	for _, clue := range clues {
		universe.Filter(clue)
	}
	survivors := universe.Survivors()
	if len(survivors) == 0 || card < 0 || card >= rules.Cards {
		return false
	}
	for _, a := range survivors {
		if a[card] != value {
			return false
		}
	}
	return true
}
