package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecard/internal/bot"
	"onecard/internal/domain"
)

func TestBenchmark(t *testing.T) {
	cfg := BenchmarkConfig{
		Rules:       domain.Rules{Cards: 5, ProbeSize: 2},
		Games:       8,
		Seed:        100,
		Parallelism: 4,
	}
	summaries, err := Benchmark(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, summaries, len(bot.Kinds()))

	for _, s := range summaries {
		assert.Equal(t, 8, s.Games, s.Kind)
		assert.LessOrEqual(t, s.Deduced, s.Won, "deduced guesses always win (%s)", s.Kind)
		assert.Greater(t, s.AvgProbes(), 0.0)
		assert.GreaterOrEqual(t, float64(s.MaxProbes), s.AvgProbes())
		if s.Kind != bot.KindNamiswan {
			assert.Equal(t, s.Games, s.Deduced, "%s must deduce every game", s.Kind)
		}
	}
}

func TestBenchmarkSkipsOversizedUniverse(t *testing.T) {
	cfg := BenchmarkConfig{
		Rules: domain.Rules{Cards: 8, ProbeSize: 3},
		Kinds: []bot.Kind{bot.KindTheoretical, bot.KindNamiswan},
		Games: 2,
		Seed:  1,
	}
	summaries, err := Benchmark(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, bot.KindNamiswan, summaries[0].Kind)

	_, err = Benchmark(context.Background(), BenchmarkConfig{Rules: cfg.Rules, Kinds: []bot.Kind{bot.KindTheoretical}, Games: 1}, nil)
	assert.Error(t, err)
}
