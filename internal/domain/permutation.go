package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Assignment maps a card index to its hidden value. A complete assignment is a
// bijection on [0, t); strategies also use partial ones covering cards [0, k).
type Assignment []int

// Key is a content hash usable as a map key.
func (a Assignment) Key() string {
	var b strings.Builder
	for i, v := range a {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(v))
	}
	return b.String()
}

// Clone returns an independent copy.
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	copy(out, a)
	return out
}

// Inverse returns the value -> card mapping of a complete assignment.
func (a Assignment) Inverse() Assignment {
	inv := make(Assignment, len(a))
	for card, value := range a {
		inv[value] = card
	}
	return inv
}

// Validate checks that a is a bijection on [0, cards).
func (a Assignment) Validate(cards int) error {
	if len(a) != cards {
		return fmt.Errorf("%w: length %d, want %d", ErrInvalidAssignment, len(a), cards)
	}
	seen := make([]bool, cards)
	for card, value := range a {
		if value < 0 || value >= cards || seen[value] {
			return fmt.Errorf("%w: card %d has value %d", ErrInvalidAssignment, card, value)
		}
		seen[value] = true
	}
	return nil
}

// Satisfies reports whether some probed card carries the clue's value.
// Cards beyond a partial assignment are ignored.
func (a Assignment) Satisfies(c Clue) bool {
	for _, card := range c.Probe {
		if card < len(a) && a[card] == c.Value {
			return true
		}
	}
	return false
}

// SatisfiesAll reports whether every clue is satisfied.
func (a Assignment) SatisfiesAll(clues []Clue) bool {
	for _, c := range clues {
		if !a.Satisfies(c) {
			return false
		}
	}
	return true
}

// SharesPosition reports whether both assignments give some card the same value.
func (a Assignment) SharesPosition(other Assignment) bool {
	for card := range a {
		if card < len(other) && a[card] == other[card] {
			return true
		}
	}
	return false
}

// Permutations returns every bijection on [0, n) in lexicographic order.
func Permutations(n int) []Assignment {
	current := make(Assignment, n)
	for i := range current {
		current[i] = i
	}
	out := []Assignment{current.Clone()}
	for nextPermutation(current) {
		out = append(out, current.Clone())
	}
	return out
}

func nextPermutation(a Assignment) bool {
	i := len(a) - 2
	for i >= 0 && a[i] >= a[i+1] {
		i--
	}
	if i < 0 {
		return false
	}
	j := len(a) - 1
	for a[j] <= a[i] {
		j--
	}
	a[i], a[j] = a[j], a[i]
	for l, r := i+1, len(a)-1; l < r; l, r = l+1, r-1 {
		a[l], a[r] = a[r], a[l]
	}
	return true
}

// Combinations calls fn with every k-subset of [0, n) in lexicographic order.
// The slice is reused between calls. Iteration stops when fn returns false.
func Combinations(n, k int, fn func([]int) bool) {
	if k < 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !fn(idx) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// AllProbes returns every p-subset of [0, t) as probes in lexicographic order.
func AllProbes(rules Rules) []Probe {
	var out []Probe
	Combinations(rules.Cards, rules.ProbeSize, func(c []int) bool {
		out = append(out, Probe(c).Canonical())
		return true
	})
	return out
}

// AgreedCard returns the lowest card that carries the same value in every
// candidate. Candidates may be partial; only cards covered by all are checked.
func AgreedCard(candidates []Assignment) (card, value int, ok bool) {
	if len(candidates) == 0 {
		return 0, 0, false
	}
	width := len(candidates[0])
	for _, c := range candidates[1:] {
		if len(c) < width {
			width = len(c)
		}
	}
	for card := 0; card < width; card++ {
		value := candidates[0][card]
		agreed := true
		for _, c := range candidates[1:] {
			if c[card] != value {
				agreed = false
				break
			}
		}
		if agreed {
			return card, value, true
		}
	}
	return 0, 0, false
}
