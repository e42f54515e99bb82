package bot

import (
	"fmt"

	"onecard/internal/domain"
)

// MaxEnumeration caps how many probes or prefixes a strategy may build.
const MaxEnumeration = 1 << 20

// Cost returns the size of the largest set the strategy enumerates for the
// rules, saturating at MaxEnumeration+1.
func Cost(kind Kind, rules domain.Rules) int {
	t, p := rules.Cards, rules.ProbeSize
	switch kind {
	case KindSimulated:
		// First prefix space: t!/(t-p)! partial assignments.
		return falling(t, p)
	case KindTheoretical:
		if t > domain.MaxUniverseCards {
			return MaxEnumeration + 1
		}
		return falling(t, t)
	case KindNamiswan:
		return binomial(t, p)
	default:
		return 0
	}
}

// CheckBudget rejects rules whose enumeration would exceed MaxEnumeration.
func CheckBudget(kind Kind, rules domain.Rules) error {
	if kind == KindTheoretical && rules.Cards > domain.MaxUniverseCards {
		return fmt.Errorf("%w: %d cards, limit %d", domain.ErrUniverseTooLarge, rules.Cards, domain.MaxUniverseCards)
	}
	if cost := Cost(kind, rules); cost > MaxEnumeration {
		return fmt.Errorf("%w: %s with %d cards and probe size %d", domain.ErrGameTooLarge, kind, rules.Cards, rules.ProbeSize)
	}
	return nil
}

func falling(n, k int) int {
	out := 1
	for i := 0; i < k; i++ {
		out *= n - i
		if out > MaxEnumeration {
			return MaxEnumeration + 1
		}
	}
	return out
}

// binomial computes C(n, k) incrementally; each partial product is itself a
// binomial coefficient, so the running value never shrinks.
func binomial(n, k int) int {
	if k > n-k {
		k = n - k
	}
	out := 1
	for i := 1; i <= k; i++ {
		out = out * (n - k + i) / i
		if out > MaxEnumeration {
			return MaxEnumeration + 1
		}
	}
	return out
}
