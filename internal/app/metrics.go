package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("onecard.app")

var (
	// gamesTotal counts finished games by strategy and outcome
	gamesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onecard_games_total",
		Help: "Finished games by strategy and outcome",
	}, []string{"strategy", "outcome"})

	// probesPerGame tracks how many probes a strategy needed
	probesPerGame = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "onecard_probes_per_game",
		Help:    "Probes asked per finished game",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	}, []string{"strategy"})

	// engineShrinks counts assignments dropped by engines to answer a probe
	engineShrinks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "onecard_engine_shrinks_total",
		Help: "Assignments dropped by engines to answer probes",
	})
)

const (
	OutcomeDeducedWin = "deduced_win"
	OutcomeLuckyWin   = "lucky_win"
	OutcomeLoss       = "loss"
)

// Outcome classifies a result for metrics and reports.
func (r *Result) Outcome() string {
	switch {
	case r.Verdict.Won && r.Guess.Deduced:
		return OutcomeDeducedWin
	case r.Verdict.Won:
		return OutcomeLuckyWin
	default:
		return OutcomeLoss
	}
}

func recordResult(r *Result) {
	strategy := string(r.Strategy)
	gamesTotal.WithLabelValues(strategy, r.Outcome()).Inc()
	probesPerGame.WithLabelValues(strategy).Observe(float64(len(r.Clues)))
}
