package domain

import "math/rand"

// Chooser breaks ties when several values are admissible answers.
type Chooser interface {
	Choose(values []int) int
}

// RandomChooser picks uniformly.
type RandomChooser struct {
	rng *rand.Rand
}

func NewRandomChooser(rng *rand.Rand) *RandomChooser {
	return &RandomChooser{rng: rng}
}

func (c *RandomChooser) Choose(values []int) int {
	return values[c.rng.Intn(len(values))]
}

// LowestChooser always picks the smallest value. Values arrive sorted.
type LowestChooser struct{}

func (LowestChooser) Choose(values []int) int {
	return values[0]
}
