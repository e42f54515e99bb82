package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/heroiclabs/nakama-common/runtime"
	"golang.org/x/sync/errgroup"

	"onecard/internal/bot"
	"onecard/internal/domain"
	"onecard/internal/logging"
)

// BenchmarkConfig describes a batch of self-play games.
type BenchmarkConfig struct {
	Rules       domain.Rules
	Kinds       []bot.Kind
	Games       int
	Seed        int64
	Parallelism int
}

// BenchmarkSummary aggregates the games of one strategy.
type BenchmarkSummary struct {
	Kind        bot.Kind `json:"strategy" yaml:"strategy"`
	Games       int      `json:"games" yaml:"games"`
	Deduced     int      `json:"deduced" yaml:"deduced"`
	Won         int      `json:"won" yaml:"won"`
	TotalProbes int      `json:"total_probes" yaml:"total_probes"`
	MaxProbes   int      `json:"max_probes" yaml:"max_probes"`
	Shrinks     int      `json:"shrinks" yaml:"shrinks"`
}

// AvgProbes is the mean number of probes per game.
func (b BenchmarkSummary) AvgProbes() float64 {
	if b.Games == 0 {
		return 0
	}
	return float64(b.TotalProbes) / float64(b.Games)
}

// Benchmark plays cfg.Games games per strategy in parallel. Game i of every
// strategy uses seed cfg.Seed+i for its engine, so strategies face the same
// seed assignments.
func Benchmark(ctx context.Context, cfg BenchmarkConfig, logger runtime.Logger) ([]BenchmarkSummary, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return nil, err
	}
	if cfg.Games < 1 {
		return nil, fmt.Errorf("benchmark needs at least one game, got %d", cfg.Games)
	}
	if logger == nil {
		logger = logging.Discard()
	}
	requested := cfg.Kinds
	if len(requested) == 0 {
		requested = bot.Kinds()
	}
	var kinds []bot.Kind
	for _, kind := range requested {
		if _, err := bot.NewStrategy(kind, cfg.Rules, rand.New(rand.NewSource(cfg.Seed))); err != nil {
			if errors.Is(err, domain.ErrUniverseTooLarge) {
				logger.Warn("skipping %s: %v", kind, err)
				continue
			}
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	if len(kinds) == 0 {
		return nil, fmt.Errorf("no strategy can play %d cards", cfg.Rules.Cards)
	}

	results := make([][]*Result, len(kinds))
	for k := range results {
		results[k] = make([]*Result, cfg.Games)
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for k, kind := range kinds {
		for i := 0; i < cfg.Games; i++ {
			k, kind, i := k, kind, i
			g.Go(func() error {
				seed := cfg.Seed + int64(i)
				svc := NewService(rand.New(rand.NewSource(seed)), logger)
				identity := bot.IdentityFor(kind)
				agent, err := bot.NewAgent(identity.UserID, identity.DisplayName, kind, cfg.Rules, rand.New(rand.NewSource(^seed)))
				if err != nil {
					return err
				}
				result, err := svc.Play(ctx, cfg.Rules, agent)
				if err != nil {
					return fmt.Errorf("%s game %d: %w", kind, i, err)
				}
				results[k][i] = result
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summaries := make([]BenchmarkSummary, len(kinds))
	for k, kind := range kinds {
		summary := BenchmarkSummary{Kind: kind}
		for _, r := range results[k] {
			summary.Games++
			if r.Guess.Deduced {
				summary.Deduced++
			}
			if r.Verdict.Won {
				summary.Won++
			}
			summary.TotalProbes += len(r.Clues)
			if len(r.Clues) > summary.MaxProbes {
				summary.MaxProbes = len(r.Clues)
			}
			summary.Shrinks += r.Shrinks
		}
		summaries[k] = summary
	}
	return summaries, nil
}
