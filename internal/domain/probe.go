package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Probe is a set of distinct card indices asked in one turn, kept sorted.
type Probe []int

// NewProbe copies and sorts cards, then validates them against rules.
func NewProbe(rules Rules, cards ...int) (Probe, error) {
	p := Probe(cards).Canonical()
	if err := p.Validate(rules); err != nil {
		return nil, err
	}
	return p, nil
}

// Canonical returns a sorted copy of the probe.
func (p Probe) Canonical() Probe {
	out := make(Probe, len(p))
	copy(out, p)
	sort.Ints(out)
	return out
}

// Validate checks size, range and uniqueness.
func (p Probe) Validate(rules Rules) error {
	if len(p) != rules.ProbeSize {
		return fmt.Errorf("%w: got %d cards, want %d", ErrInvalidProbe, len(p), rules.ProbeSize)
	}
	seen := make(map[int]bool, len(p))
	for _, card := range p {
		if card < 0 || card >= rules.Cards {
			return fmt.Errorf("%w: card %d out of range [0,%d)", ErrInvalidProbe, card, rules.Cards)
		}
		if seen[card] {
			return fmt.Errorf("%w: card %d repeated", ErrInvalidProbe, card)
		}
		seen[card] = true
	}
	return nil
}

// Key is a content hash usable as a map key.
func (p Probe) Key() string {
	var b strings.Builder
	for i, card := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(card))
	}
	return b.String()
}

// Equal compares two probes element by element.
func (p Probe) Equal(other Probe) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// Contains reports whether card is part of the probe.
func (p Probe) Contains(card int) bool {
	for _, c := range p {
		if c == card {
			return true
		}
	}
	return false
}
