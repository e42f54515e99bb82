package app

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onecard/internal/bot"
	"onecard/internal/domain"
)

func TestStartGame(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(42)), nil)

	game, evs, err := svc.StartGame(domain.Rules{Cards: 6, ProbeSize: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingProbe, game.Phase)
	assert.NotEmpty(t, game.ID)
	assert.Len(t, game.Engine.Live(), 2)

	require.Len(t, evs, 1)
	assert.Equal(t, EventGameStarted, evs[0].Kind)
	payload := evs[0].Payload.(GameStartedPayload)
	assert.Equal(t, game.ID, payload.GameID)
	assert.Equal(t, 6, payload.Cards)

	_, _, err = svc.StartGame(domain.Rules{Cards: 3, ProbeSize: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidRules)
}

func TestProtocolPhases(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(7)), nil)
	game, _, err := svc.StartGame(domain.Rules{Cards: 5, ProbeSize: 3})
	require.NoError(t, err)

	_, _, err = svc.Answer(game)
	assert.ErrorIs(t, err, domain.ErrWrongPhase, "answer without a pending probe")

	_, err = svc.AskProbe(game, domain.Probe{4, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingAnswer, game.Phase)
	assert.Equal(t, domain.Probe{1, 3, 4}, game.Pending)

	_, err = svc.AskProbe(game, domain.Probe{0, 1, 2})
	assert.ErrorIs(t, err, domain.ErrWrongPhase, "second probe before the answer")
	_, _, err = svc.SubmitGuess(game, domain.Guess{Card: 0, Value: 0})
	assert.ErrorIs(t, err, domain.ErrWrongPhase, "guess before the answer")

	clue, evs, err := svc.Answer(game)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseAwaitingProbe, game.Phase)
	assert.Equal(t, EventClueGiven, evs[0].Kind)
	for _, a := range game.Engine.Live() {
		assert.True(t, a.Satisfies(clue), "live %v contradicts %v", a, clue)
	}

	_, err = svc.StopProbing(game)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseReadyToGuess, game.Phase)
	_, _, err = svc.Probe(game, domain.Probe{0, 1, 2})
	assert.ErrorIs(t, err, domain.ErrWrongPhase, "probe after probing ended")

	verdict, evs, err := svc.SubmitGuess(game, domain.Guess{Card: 0, Value: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseVerified, game.Phase)
	assert.False(t, verdict.Won, "two live assignments always defeat a guess")
	assert.Equal(t, EventGuessVerified, evs[len(evs)-1].Kind)

	_, err = svc.AskProbe(game, domain.Probe{0, 1, 2})
	assert.True(t, errors.Is(err, ErrGameEnded))
}

func TestAskProbeRejectsMalformedProbe(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), nil)
	game, _, err := svc.StartGame(domain.Rules{Cards: 5, ProbeSize: 2})
	require.NoError(t, err)

	for _, probe := range []domain.Probe{{1}, {1, 1}, {0, 5}, {0, 1, 2}} {
		_, err := svc.AskProbe(game, probe)
		assert.ErrorIs(t, err, domain.ErrInvalidProbe, "probe %v", probe)
	}
	assert.Equal(t, domain.PhaseAwaitingProbe, game.Phase)
	assert.Empty(t, game.Clues)
}

func TestAnswerReportsEngineShrink(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(5)), nil, WithLowestAnswers())
	game, _, err := svc.StartGame(domain.Rules{Cards: 4, ProbeSize: 1})
	require.NoError(t, err)

	before := testutil.ToFloat64(engineShrinks)
	_, evs, err := svc.Probe(game, domain.Probe{0})
	require.NoError(t, err)

	require.Len(t, evs, 3)
	assert.Equal(t, EventEngineShrunk, evs[2].Kind)
	payload := evs[2].Payload.(EngineShrunkPayload)
	assert.Equal(t, 1, payload.Dropped)
	assert.Equal(t, 1, payload.Live)
	assert.Equal(t, before+1, testutil.ToFloat64(engineShrinks))
}

func TestPlay(t *testing.T) {
	rules := domain.Rules{Cards: 6, ProbeSize: 2}
	for _, kind := range bot.Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			svc := NewService(rand.New(rand.NewSource(11)), nil)
			agent, err := bot.NewAgent("bot", "bot", kind, rules, rand.New(rand.NewSource(12)))
			require.NoError(t, err)

			before := testutil.ToFloat64(gamesTotal.WithLabelValues(string(kind), OutcomeDeducedWin))
			result, err := svc.Play(context.Background(), rules, agent)
			require.NoError(t, err)

			assert.Equal(t, kind, result.Strategy)
			assert.NotEmpty(t, result.Clues)
			if kind != bot.KindNamiswan {
				assert.True(t, result.Guess.Deduced)
			}
			if result.Guess.Deduced {
				assert.True(t, result.Verdict.Won)
				assert.Equal(t, OutcomeDeducedWin, result.Outcome())
				assert.Equal(t, before+1, testutil.ToFloat64(gamesTotal.WithLabelValues(string(kind), OutcomeDeducedWin)))
			} else {
				assert.NotEmpty(t, result.Possibilities)
			}
		})
	}
}

func TestPlayStopsOnCancelledContext(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(1)), nil)
	rules := domain.Rules{Cards: 5, ProbeSize: 2}
	agent, err := bot.NewAgent("bot", "bot", bot.KindNamiswan, rules, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = svc.Play(ctx, rules, agent)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = svc.Play(context.Background(), rules, &bot.Agent{})
	assert.ErrorIs(t, err, ErrNoStrategy)
}

func TestFinish(t *testing.T) {
	svc := NewService(rand.New(rand.NewSource(3)), nil)
	rules := domain.Rules{Cards: 3, ProbeSize: 2}
	game, _, err := svc.StartGame(rules)
	require.NoError(t, err)

	_, err = svc.Finish(game, bot.KindHuman, nil)
	assert.ErrorIs(t, err, domain.ErrWrongPhase, "finish before the verdict")

	_, _, err = svc.Probe(game, domain.Probe{0, 1})
	require.NoError(t, err)
	_, _, err = svc.SubmitGuess(game, domain.Guess{Card: 2, Value: 0})
	require.NoError(t, err)

	result, err := svc.Finish(game, bot.KindHuman, nil)
	require.NoError(t, err)
	assert.Equal(t, game.ID, result.GameID)
	assert.Equal(t, bot.KindHuman, result.Strategy)
	assert.Len(t, result.Clues, 1)
	assert.Nil(t, result.Possibilities, "a player without hypotheses explains nothing")
	assert.Equal(t, 1.0, testutil.ToFloat64(gamesTotal.WithLabelValues(string(bot.KindHuman), result.Outcome())))
}
