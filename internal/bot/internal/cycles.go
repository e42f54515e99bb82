package internal

import (
	"sort"

	"onecard/internal/domain"
)

// Cycles decomposes the permutation card -> b⁻¹(a(card)) into cycles, each
// starting from its lowest card.
func Cycles(a, b domain.Assignment) [][]int {
	inv := b.Inverse()
	seen := make([]bool, len(a))
	var cycles [][]int
	for start := range a {
		if seen[start] {
			continue
		}
		var cycle []int
		card := start
		for {
			cycle = append(cycle, card)
			seen[card] = true
			card = inv[a[card]]
			if card == start {
				break
			}
		}
		cycles = append(cycles, cycle)
	}
	return cycles
}

// DistinguishingProbe picks every other card of each cycle of a against b,
// leaving out each cycle's last card, then pads with the lowest unused cards.
// The result is sorted and cut to size.
func DistinguishingProbe(a, b domain.Assignment, size int) domain.Probe {
	used := make([]bool, len(a))
	cards := make([]int, 0, size)
	for _, cycle := range Cycles(a, b) {
		for i := 0; i < len(cycle)-1; i += 2 {
			cards = append(cards, cycle[i])
			used[cycle[i]] = true
		}
	}
	for card := 0; card < len(a) && len(cards) < size; card++ {
		if !used[card] {
			cards = append(cards, card)
			used[card] = true
		}
	}
	sort.Ints(cards)
	if len(cards) > size {
		cards = cards[:size]
	}
	return domain.Probe(cards)
}
