package brain

import (
	"fmt"
	"sort"

	"onecard/internal/domain"
)

// Intersections keeps, per answered value, the cards common to every probe
// that produced it. The card holding that value is always among them.
type Intersections struct {
	byValue map[int][]int
}

func NewIntersections() *Intersections {
	return &Intersections{byValue: make(map[int][]int)}
}

// Add narrows the intersection of the clue's value.
func (x *Intersections) Add(clue domain.Clue) error {
	current, seen := x.byValue[clue.Value]
	if !seen {
		x.byValue[clue.Value] = clue.Probe.Canonical()
		return nil
	}
	narrowed := current[:0:0]
	for _, card := range current {
		if clue.Probe.Contains(card) {
			narrowed = append(narrowed, card)
		}
	}
	if len(narrowed) == 0 {
		return fmt.Errorf("%w: no card left for value %d", domain.ErrHypothesisExhausted, clue.Value)
	}
	x.byValue[clue.Value] = narrowed
	return nil
}

// Values returns the answered values in ascending order.
func (x *Intersections) Values() []int {
	values := make([]int, 0, len(x.byValue))
	for v := range x.byValue {
		values = append(values, v)
	}
	sort.Ints(values)
	return values
}

// Cards returns the intersection for value.
func (x *Intersections) Cards(value int) []int {
	return x.byValue[value]
}

// Singleton returns the lowest value whose intersection is a single card.
func (x *Intersections) Singleton() (card, value int, ok bool) {
	for _, v := range x.Values() {
		if cards := x.byValue[v]; len(cards) == 1 {
			return cards[0], v, true
		}
	}
	return 0, 0, false
}
