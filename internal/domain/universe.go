package domain

import "fmt"

// Universe is the full set of bijections on [0, t), filtered in place by clues.
// Members keep their lexicographic index for the whole life of the universe.
type Universe struct {
	cards   int
	members []Assignment
	alive   []bool
	count   int
}

// NewUniverse enumerates all t! assignments.
func NewUniverse(cards int) (*Universe, error) {
	if cards > MaxUniverseCards {
		return nil, fmt.Errorf("%w: %d cards, limit %d", ErrUniverseTooLarge, cards, MaxUniverseCards)
	}
	if cards < 1 {
		return nil, fmt.Errorf("%w: %d cards", ErrInvalidRules, cards)
	}
	members := Permutations(cards)
	alive := make([]bool, len(members))
	for i := range alive {
		alive[i] = true
	}
	return &Universe{cards: cards, members: members, alive: alive, count: len(members)}, nil
}

// Size is the number of members ever enumerated, dead or alive.
func (u *Universe) Size() int { return len(u.members) }

// Len is the number of live members.
func (u *Universe) Len() int { return u.count }

// At returns member i. Callers must not modify it.
func (u *Universe) At(i int) Assignment { return u.members[i] }

// Alive reports whether member i is still a candidate.
func (u *Universe) Alive(i int) bool { return u.alive[i] }

// Discard removes member i. It returns false when it was already gone.
func (u *Universe) Discard(i int) bool {
	if !u.alive[i] {
		return false
	}
	u.alive[i] = false
	u.count--
	return true
}

// Filter discards every member inconsistent with the clue and returns how many went.
func (u *Universe) Filter(c Clue) int {
	removed := 0
	for i, m := range u.members {
		if u.alive[i] && !m.Satisfies(c) {
			u.alive[i] = false
			removed++
		}
	}
	u.count -= removed
	return removed
}

// Survivors returns the live members in lexicographic order.
func (u *Universe) Survivors() []Assignment {
	out := make([]Assignment, 0, u.count)
	for i, m := range u.members {
		if u.alive[i] {
			out = append(out, m)
		}
	}
	return out
}

// KnownCard returns a card whose value is the same in every live member.
func (u *Universe) KnownCard() (card, value int, ok bool) {
	return AgreedCard(u.Survivors())
}
