package brain

import "onecard/internal/domain"

// PrefixSpace holds every injective partial assignment of cards [0, width)
// that could still extend to an assignment consistent with the clues.
type PrefixSpace struct {
	cards    int
	width    int
	prefixes []domain.Assignment
}

// NewPrefixSpace enumerates all prefixes of the given width and keeps the
// consistent ones.
func NewPrefixSpace(cards, width int, clues []domain.Clue) *PrefixSpace {
	s := &PrefixSpace{cards: cards}
	s.prefixes = []domain.Assignment{{}}
	for s.width < width {
		s.Extend(clues)
	}
	return s
}

// Extend covers one more card: every prefix is extended with every unused
// value and inconsistent extensions are dropped.
func (s *PrefixSpace) Extend(clues []domain.Clue) {
	if s.width >= s.cards {
		return
	}
	next := make([]domain.Assignment, 0, len(s.prefixes))
	for _, prefix := range s.prefixes {
		used := make([]bool, s.cards)
		for _, v := range prefix {
			used[v] = true
		}
		for value := 0; value < s.cards; value++ {
			if used[value] {
				continue
			}
			extended := make(domain.Assignment, len(prefix)+1)
			copy(extended, prefix)
			extended[len(prefix)] = value
			if ConsistentPrefix(extended, clues) {
				next = append(next, extended)
			}
		}
	}
	s.prefixes = next
	s.width++
}

// ConsistentPrefix reports whether prefix can still satisfy every clue. A clue
// holds when a covered probed card carries the value, or when a probed card is
// not covered yet and the value is still unused.
func ConsistentPrefix(prefix domain.Assignment, clues []domain.Clue) bool {
	for _, clue := range clues {
		if !prefixAllows(prefix, clue) {
			return false
		}
	}
	return true
}

func prefixAllows(prefix domain.Assignment, clue domain.Clue) bool {
	uncovered := false
	for _, card := range clue.Probe {
		if card >= len(prefix) {
			uncovered = true
			continue
		}
		if prefix[card] == clue.Value {
			return true
		}
	}
	if !uncovered {
		return false
	}
	for _, v := range prefix {
		if v == clue.Value {
			return false
		}
	}
	return true
}

func (s *PrefixSpace) Width() int { return s.width }

func (s *PrefixSpace) Len() int { return len(s.prefixes) }

// Prefixes returns the surviving prefixes. Callers must not modify them.
func (s *PrefixSpace) Prefixes() []domain.Assignment { return s.prefixes }

// KnownCard returns the lowest covered card with the same value in every prefix.
func (s *PrefixSpace) KnownCard() (card, value int, ok bool) {
	if s.width == 0 {
		return 0, 0, false
	}
	return domain.AgreedCard(s.prefixes)
}
