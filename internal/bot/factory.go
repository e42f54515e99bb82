package bot

import (
	"fmt"
	"math/rand"
	"strings"

	"onecard/internal/domain"
)

// Kind names a strategy.
type Kind string

const (
	KindSimulated   Kind = "simulated"
	KindTheoretical Kind = "theoretical"
	KindNamiswan    Kind = "namiswan"

	// KindHuman plays through an I/O adapter and is never built by NewStrategy.
	KindHuman Kind = "human"
)

// Kinds lists every bot strategy in a stable order.
func Kinds() []Kind {
	return []Kind{KindSimulated, KindTheoretical, KindNamiswan}
}

// ParseKind maps a case-insensitive name to a Kind.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(name)))
	for _, k := range Kinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown strategy: %q", name)
}

// Describe returns a one-line summary of a strategy.
func Describe(kind Kind) string {
	switch kind {
	case KindSimulated:
		return "extends card-by-card prefixes of the hidden assignment"
	case KindTheoretical:
		return "separates pairs of candidate assignments over the full permutation space"
	case KindNamiswan:
		return "asks every combination and intersects probes per answered value"
	default:
		return ""
	}
}

// NewStrategy creates a new strategy of the given kind.
func NewStrategy(kind Kind, rules domain.Rules, rng *rand.Rand) (Strategy, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := CheckBudget(kind, rules); err != nil {
		return nil, err
	}
	switch kind {
	case KindSimulated:
		return NewSimulatedPlayer(rules, rng), nil
	case KindTheoretical:
		return NewTheoreticalPlayer(rules, rng)
	case KindNamiswan:
		return NewNamiswanPlayer(rules, rng), nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", kind)
	}
}
