package bot

import (
	"fmt"
	"math/rand"

	"onecard/internal/domain"
)

// randomGuess picks a random candidate and a random card it covers.
func randomGuess(rng *rand.Rand, candidates []domain.Assignment) (domain.Guess, error) {
	if len(candidates) == 0 {
		return domain.Guess{}, domain.ErrHypothesisExhausted
	}
	candidate := candidates[rng.Intn(len(candidates))]
	if len(candidate) == 0 {
		return domain.Guess{}, domain.ErrHypothesisExhausted
	}
	card := rng.Intn(len(candidate))
	return domain.Guess{Card: card, Value: candidate[card]}, nil
}

func describeAssignments(candidates []domain.Assignment) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = fmt.Sprint([]int(c))
	}
	return out
}
