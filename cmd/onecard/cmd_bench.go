package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"onecard/internal/app"
	"onecard/internal/bot"
)

var (
	gamesFlag       int
	parallelismFlag int
	benchKinds      []string
	metricsAddr     string
)

func runBenchCommand(cmd *cobra.Command, args []string) error {
	rules, err := rulesFromFlags()
	if err != nil {
		return err
	}
	cfg := app.BenchmarkConfig{
		Rules:       rules,
		Games:       gameConfig.Games,
		Seed:        seedFromFlags(),
		Parallelism: gameConfig.Parallelism,
	}
	if gamesFlag > 0 {
		cfg.Games = gamesFlag
	}
	if parallelismFlag > 0 {
		cfg.Parallelism = parallelismFlag
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	for _, name := range benchKinds {
		kind, err := bot.ParseKind(name)
		if err != nil {
			return err
		}
		cfg.Kinds = append(cfg.Kinds, kind)
	}

	if metricsAddr != "" {
		server := &http.Server{Addr: metricsAddr, Handler: promhttp.Handler()}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped: %v", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		}()
		logger.Info("serving metrics on %s/metrics", metricsAddr)
	}

	started := time.Now()
	summaries, err := app.Benchmark(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	logger.WithField("seed", cfg.Seed).Info("%d games per strategy in %s", cfg.Games, time.Since(started).Round(time.Millisecond))

	renderBenchmark(os.Stdout, rules, summaries)
	return nil
}
