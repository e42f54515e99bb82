package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"onecard/internal/bot"
	"onecard/internal/domain"
	"onecard/internal/logging"
)

// Service contains deduction game use-cases operating on domain state.
type Service struct {
	rng           *rand.Rand
	logger        runtime.Logger
	deterministic bool
}

// Option customizes a Service.
type Option func(*Service)

// WithLowestAnswers makes engines answer with the lowest admissible value
// instead of a random one.
func WithLowestAnswers() Option {
	return func(s *Service) { s.deterministic = true }
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, logger runtime.Logger, opts ...Option) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Service{rng: rng, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrGameEnded  = errors.New("game already ended")
	ErrNoStrategy = errors.New("agent has no strategy")
)

// StartGame seeds a new engine and returns the game in the awaiting_probe phase.
func (s *Service) StartGame(rules domain.Rules) (*domain.Game, []Event, error) {
	if err := rules.Validate(); err != nil {
		return nil, nil, err
	}

	var (
		engine *domain.Engine
		err    error
	)
	if s.deterministic {
		first, second := domain.SeedAssignments(rules.Cards, s.rng)
		engine, err = domain.NewEngineWithAssignments(rules, domain.LowestChooser{}, first, second)
	} else {
		engine, err = domain.NewEngine(rules, s.rng)
	}
	if err != nil {
		return nil, nil, err
	}

	game := &domain.Game{
		ID:     uuid.NewString(),
		Rules:  rules,
		Phase:  domain.PhaseAwaitingProbe,
		Engine: engine,
	}
	s.logger.WithField("game", game.ID).Debug("game started with %d cards, %d per probe", rules.Cards, rules.ProbeSize)

	return game, []Event{{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			GameID:    game.ID,
			Phase:     game.Phase,
			Cards:     rules.Cards,
			ProbeSize: rules.ProbeSize,
		},
	}}, nil
}

// AskProbe validates and records a probe; the game then awaits the engine's answer.
func (s *Service) AskProbe(game *domain.Game, probe domain.Probe) ([]Event, error) {
	if err := requirePhase(game, domain.PhaseAwaitingProbe); err != nil {
		return nil, err
	}
	probe = probe.Canonical()
	if err := probe.Validate(game.Rules); err != nil {
		return nil, err
	}
	game.Pending = probe
	game.Phase = domain.PhaseAwaitingAnswer
	return []Event{{Kind: EventProbeAsked, Payload: ProbeAskedPayload{Probe: probe}}}, nil
}

// Answer lets the engine answer the pending probe.
func (s *Service) Answer(game *domain.Game) (domain.Clue, []Event, error) {
	if err := requirePhase(game, domain.PhaseAwaitingAnswer); err != nil {
		return domain.Clue{}, nil, err
	}

	before := game.Engine.Shrinks()
	value, err := game.Engine.Answer(game.Pending)
	if err != nil {
		return domain.Clue{}, nil, err
	}
	clue := domain.Clue{Probe: game.Pending, Value: value}
	game.Clues = append(game.Clues, clue)
	game.Pending = nil
	game.Phase = domain.PhaseAwaitingProbe

	logger := s.logger.WithField("game", game.ID)
	logger.Debug("probe %d: %s", len(game.Clues), clue)

	events := []Event{{Kind: EventClueGiven, Payload: ClueGivenPayload{Clue: clue, Probes: len(game.Clues)}}}
	if dropped := game.Engine.Shrinks() - before; dropped > 0 {
		live := len(game.Engine.Live())
		logger.Warn("probes of %d cards are too small: engine dropped %d assignment(s), %d left", game.Rules.ProbeSize, dropped, live)
		engineShrinks.Add(float64(dropped))
		events = append(events, Event{Kind: EventEngineShrunk, Payload: EngineShrunkPayload{Dropped: dropped, Live: live}})
	}
	return clue, events, nil
}

// Probe asks a probe and immediately lets the engine answer it.
func (s *Service) Probe(game *domain.Game, probe domain.Probe) (domain.Clue, []Event, error) {
	asked, err := s.AskProbe(game, probe)
	if err != nil {
		return domain.Clue{}, nil, err
	}
	clue, answered, err := s.Answer(game)
	if err != nil {
		return domain.Clue{}, nil, err
	}
	return clue, append(asked, answered...), nil
}

// StopProbing moves the game to the ready_to_guess phase.
func (s *Service) StopProbing(game *domain.Game) ([]Event, error) {
	if err := requirePhase(game, domain.PhaseAwaitingProbe); err != nil {
		return nil, err
	}
	game.Phase = domain.PhaseReadyToGuess
	return []Event{{Kind: EventProbingEnded, Payload: ProbingEndedPayload{Probes: len(game.Clues)}}}, nil
}

// SubmitGuess has the engine verify a guess and ends the game. Guessing while
// awaiting a probe stops probing first.
func (s *Service) SubmitGuess(game *domain.Game, guess domain.Guess) (domain.Verdict, []Event, error) {
	var events []Event
	if game.Phase == domain.PhaseAwaitingProbe {
		stopped, err := s.StopProbing(game)
		if err != nil {
			return domain.Verdict{}, nil, err
		}
		events = append(events, stopped...)
	}
	if err := requirePhase(game, domain.PhaseReadyToGuess); err != nil {
		return domain.Verdict{}, nil, err
	}

	verdict, err := game.Engine.Verify(guess.Card, guess.Value)
	if err != nil {
		return domain.Verdict{}, nil, err
	}
	verdict.Guess = guess
	game.Guess = &guess
	game.Verdict = &verdict
	game.Phase = domain.PhaseVerified

	s.logger.WithFields(map[string]interface{}{"game": game.ID, "won": verdict.Won}).
		Debug("guess %s -> %d (deduced=%v) after %d probes", domain.CardName(guess.Card), guess.Value, guess.Deduced, len(game.Clues))

	events = append(events, Event{Kind: EventGuessVerified, Payload: GuessVerifiedPayload{Verdict: verdict, Probes: len(game.Clues)}})
	return verdict, events, nil
}

func requirePhase(game *domain.Game, want domain.Phase) error {
	if game.Phase == domain.PhaseVerified {
		return ErrGameEnded
	}
	if game.Phase != want {
		return fmt.Errorf("%w: in %s, need %s", domain.ErrWrongPhase, game.Phase, want)
	}
	return nil
}

// Result summarizes a finished game.
type Result struct {
	GameID        string         `json:"game_id" yaml:"game_id"`
	Strategy      bot.Kind       `json:"strategy" yaml:"strategy"`
	Rules         domain.Rules   `json:"rules" yaml:"rules"`
	Clues         []domain.Clue  `json:"clues" yaml:"clues"`
	Guess         domain.Guess   `json:"guess" yaml:"guess"`
	Verdict       domain.Verdict `json:"verdict" yaml:"verdict"`
	Shrinks       int            `json:"shrinks" yaml:"shrinks"`
	Possibilities []string       `json:"possibilities,omitempty" yaml:"possibilities,omitempty"`
}

// Play drives a whole game: the agent probes until it stops, then guesses.
func (s *Service) Play(ctx context.Context, rules domain.Rules, agent *bot.Agent) (result *Result, err error) {
	if agent == nil || agent.Strategy == nil {
		return nil, ErrNoStrategy
	}
	ctx, span := tracer.Start(ctx, "app.Play",
		trace.WithAttributes(
			attribute.String("onecard.strategy", string(agent.Kind)),
			attribute.Int("onecard.cards", rules.Cards),
			attribute.Int("onecard.probe_size", rules.ProbeSize),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	game, _, err := s.StartGame(rules)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("onecard.game_id", game.ID))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		move, err := agent.Play()
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", agent.Name, err)
		}
		if move.Guess != nil {
			if _, _, err := s.SubmitGuess(game, *move.Guess); err != nil {
				return nil, err
			}
			break
		}
		clue, _, err := s.Probe(game, move.Probe)
		if err != nil {
			return nil, err
		}
		if err := agent.OnClue(clue); err != nil {
			return nil, fmt.Errorf("agent %s: %w", agent.Name, err)
		}
	}

	result, err = s.Finish(game, agent.Kind, agent.Strategy)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("onecard.probes", len(result.Clues)),
		attribute.String("onecard.outcome", result.Outcome()),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}

// Finish summarizes a verified game played by strategy and records its
// metrics. strategy may be nil for players that cannot explain themselves.
func (s *Service) Finish(game *domain.Game, kind bot.Kind, strategy bot.Strategy) (*Result, error) {
	if !game.Ended() || game.Guess == nil || game.Verdict == nil {
		return nil, fmt.Errorf("%w: in %s, need %s", domain.ErrWrongPhase, game.Phase, domain.PhaseVerified)
	}
	result := &Result{
		GameID:   game.ID,
		Strategy: kind,
		Rules:    game.Rules,
		Clues:    game.Clues,
		Guess:    *game.Guess,
		Verdict:  *game.Verdict,
		Shrinks:  game.Engine.Shrinks(),
	}
	if !result.Guess.Deduced && strategy != nil {
		result.Possibilities = bot.Possibilities(strategy, PossibilitiesLimit)
		s.logger.WithField("game", game.ID).Info("%s could not find a card, %d possibilities left", kind, len(result.Possibilities))
	}
	recordResult(result)
	return result, nil
}
