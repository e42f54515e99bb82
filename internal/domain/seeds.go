package domain

import "math/rand"

// SeedAssignments builds the engine's two starting assignments. The second is
// a derangement of the first: 3-cycles with a random rotation cover the first
// t - [0,4,2][t%3] cards and transpositions cover the rest. Both are then
// shuffled with the same card permutation, which keeps them disjoint.
func SeedAssignments(cards int, rng *rand.Rand) (Assignment, Assignment) {
	first := make(Assignment, cards)
	second := make(Assignment, cards)
	for i := range first {
		first[i] = i
	}

	tail := [3]int{0, 4, 2}[cards%3]
	if tail > cards {
		tail = cards
	}
	cycled := cards - tail
	for i := 0; i < cycled; i += 3 {
		if rng.Intn(2) == 0 {
			second[i], second[i+1], second[i+2] = i+1, i+2, i
		} else {
			second[i], second[i+1], second[i+2] = i+2, i, i+1
		}
	}
	for i := cycled; i+1 < cards; i += 2 {
		second[i], second[i+1] = i+1, i
	}

	rng.Shuffle(cards, func(i, j int) {
		first[i], first[j] = first[j], first[i]
		second[i], second[j] = second[j], second[i]
	})
	return first, second
}
