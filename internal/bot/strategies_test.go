package bot

import (
	"errors"
	"math/rand"
	"testing"

	"onecard/internal/bot/brain"
	"onecard/internal/domain"
)

// selfPlay runs a strategy against a seeded engine and returns the final guess,
// the clues given and the verdict.
func selfPlay(t *testing.T, kind Kind, rules domain.Rules, seed int64) (Strategy, domain.Guess, []domain.Clue, domain.Verdict, *domain.Engine) {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	engine, err := domain.NewEngine(rules, rng)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	strategy, err := NewStrategy(kind, rules, rand.New(rand.NewSource(seed+1)))
	if err != nil {
		t.Fatalf("NewStrategy(%s): %v", kind, err)
	}

	var clues []domain.Clue
	for {
		probe, ok := strategy.AskProbe()
		if !ok {
			break
		}
		if len(clues) > 1000 {
			t.Fatalf("%s did not stop probing", kind)
		}
		value, err := engine.Answer(probe)
		if err != nil {
			t.Fatalf("Answer(%v): %v", probe, err)
		}
		clue := domain.Clue{Probe: probe, Value: value}
		if err := strategy.ReceiveClue(clue); err != nil {
			t.Fatalf("ReceiveClue(%v): %v", clue, err)
		}
		clues = append(clues, clue)
	}

	guess, err := strategy.DeclareGuess()
	if err != nil {
		t.Fatalf("DeclareGuess: %v", err)
	}
	verdict, err := engine.Verify(guess.Card, guess.Value)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	return strategy, guess, clues, verdict, engine
}

func TestAdaptiveStrategies_DeduceWhenCardsOutnumberProbes(t *testing.T) {
	tests := []struct {
		kind  Kind
		rules domain.Rules
		seeds int64
	}{
		{kind: KindTheoretical, rules: domain.Rules{Cards: 4, ProbeSize: 2}, seeds: 30},
		{kind: KindTheoretical, rules: domain.Rules{Cards: 5, ProbeSize: 2}, seeds: 20},
		{kind: KindTheoretical, rules: domain.Rules{Cards: 7, ProbeSize: 3}, seeds: 3},
		{kind: KindSimulated, rules: domain.Rules{Cards: 4, ProbeSize: 2}, seeds: 30},
		{kind: KindSimulated, rules: domain.Rules{Cards: 7, ProbeSize: 3}, seeds: 10},
		{kind: KindSimulated, rules: domain.Rules{Cards: 10, ProbeSize: 4}, seeds: 3},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if !tt.rules.Deducible() {
				t.Fatalf("rules %+v are not in the deducible regime", tt.rules)
			}
			for seed := int64(0); seed < tt.seeds; seed++ {
				_, guess, _, verdict, engine := selfPlay(t, tt.kind, tt.rules, seed)
				if !guess.Deduced {
					t.Fatalf("seed %d: %s fell back to a random guess at %+v", seed, tt.kind, tt.rules)
				}
				if !verdict.Won {
					t.Fatalf("seed %d: deduced guess %+v lost against %v", seed, guess, verdict.Assignment)
				}
				for _, a := range engine.Live() {
					if a[guess.Card] != guess.Value {
						t.Fatalf("seed %d: known card contradicts live assignment %v", seed, a)
					}
				}
			}
		})
	}
}

func TestStrategies_ThreeCardsTwoPerProbeAlwaysLose(t *testing.T) {
	rules := domain.Rules{Cards: 3, ProbeSize: 2}
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			for seed := int64(0); seed < 20; seed++ {
				strategy, guess, _, verdict, engine := selfPlay(t, kind, rules, seed)
				if guess.Deduced {
					t.Errorf("seed %d: %s claims a proof with %d live assignments", seed, kind, len(engine.Live()))
				}
				if verdict.Won {
					t.Errorf("seed %d: guess %+v should be defeated", seed, guess)
				}
				if len(Possibilities(strategy, 0)) == 0 {
					t.Errorf("seed %d: a failed %s should list its possibilities", seed, kind)
				}
			}
		})
	}
}

func TestNamiswanPlayer_AllIntersectionsSingleton(t *testing.T) {
	rules := domain.Rules{Cards: 10, ProbeSize: 4}
	for seed := int64(0); seed < 5; seed++ {
		strategy, guess, clues, verdict, engine := selfPlay(t, KindNamiswan, rules, seed)
		if len(clues) != 210 {
			t.Fatalf("expected 210 probes, got %d", len(clues))
		}
		namiswan := strategy.(*NamiswanPlayer)
		truth := engine.Live()[0]
		for _, value := range namiswan.Intersections().Values() {
			cards := namiswan.Intersections().Cards(value)
			if len(cards) != 1 {
				t.Errorf("seed %d: value %d still spread over %v", seed, value, cards)
				continue
			}
			if truth[cards[0]] != value {
				t.Errorf("seed %d: value %d pinned to card %d but truth is %v", seed, value, cards[0], truth)
			}
		}
		if !guess.Deduced || !verdict.Won {
			t.Errorf("seed %d: expected a deduced win, got %+v won=%v", seed, guess, verdict.Won)
		}
	}
}

func TestPrefixSpace_ReachesTheoreticalKnownCard(t *testing.T) {
	rules := domain.Rules{Cards: 5, ProbeSize: 2}
	for seed := int64(0); seed < 10; seed++ {
		strategy, guess, clues, _, _ := selfPlay(t, KindTheoretical, rules, seed)
		theoretical := strategy.(*TheoreticalPlayer)

		space := brain.NewPrefixSpace(rules.Cards, rules.ProbeSize, clues)
		for space.Width() < rules.Cards {
			space.Extend(clues)
		}
		if space.Len() != len(theoretical.Survivors()) {
			t.Fatalf("seed %d: %d prefixes vs %d survivors", seed, space.Len(), len(theoretical.Survivors()))
		}
		card, value, ok := space.KnownCard()
		if !ok || card != guess.Card || value != guess.Value {
			t.Errorf("seed %d: prefix space knows %d=%d (%v), theoretical guessed %+v", seed, card, value, ok, guess)
		}
	}
}

func TestStrategies_RejectUnexpectedClue(t *testing.T) {
	rules := domain.Rules{Cards: 5, ProbeSize: 2}
	for _, kind := range Kinds() {
		t.Run(string(kind), func(t *testing.T) {
			strategy, err := NewStrategy(kind, rules, rand.New(rand.NewSource(1)))
			if err != nil {
				t.Fatalf("NewStrategy: %v", err)
			}
			probe, ok := strategy.AskProbe()
			if !ok {
				t.Fatalf("%s asked nothing", kind)
			}
			again, _ := strategy.AskProbe()
			if !again.Equal(probe) {
				t.Errorf("an unanswered probe must be repeated, got %v then %v", probe, again)
			}
			other := domain.Probe{3, 4}
			if probe.Equal(other) {
				other = domain.Probe{0, 4}
			}
			err = strategy.ReceiveClue(domain.Clue{Probe: other, Value: 0})
			if !errors.Is(err, domain.ErrUnexpectedClue) {
				t.Errorf("expected ErrUnexpectedClue, got %v", err)
			}
		})
	}
}

func TestNewStrategy(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	if _, err := NewStrategy(KindTheoretical, domain.Rules{Cards: domain.MaxUniverseCards + 1, ProbeSize: 3}, rng); !errors.Is(err, domain.ErrUniverseTooLarge) {
		t.Errorf("expected ErrUniverseTooLarge, got %v", err)
	}
	if _, err := NewStrategy(KindNamiswan, domain.Rules{Cards: 4, ProbeSize: 4}, rng); !errors.Is(err, domain.ErrInvalidRules) {
		t.Errorf("expected ErrInvalidRules, got %v", err)
	}
	if _, err := NewStrategy(Kind("oracle"), domain.Rules{Cards: 4, ProbeSize: 2}, rng); err == nil {
		t.Errorf("expected an error for an unknown kind")
	}
	kind, err := ParseKind(" Namiswan ")
	if err != nil || kind != KindNamiswan {
		t.Errorf("ParseKind = %q, %v", kind, err)
	}
}

func TestCheckBudget(t *testing.T) {
	cases := []struct {
		kind  Kind
		rules domain.Rules
		want  error
	}{
		{KindNamiswan, domain.Rules{Cards: 10, ProbeSize: 4}, nil},
		{KindSimulated, domain.Rules{Cards: 10, ProbeSize: 4}, nil},
		{KindTheoretical, domain.Rules{Cards: 7, ProbeSize: 3}, nil},
		{KindNamiswan, domain.Rules{Cards: 40, ProbeSize: 20}, domain.ErrGameTooLarge},
		{KindSimulated, domain.Rules{Cards: 40, ProbeSize: 20}, domain.ErrGameTooLarge},
		{KindSimulated, domain.Rules{Cards: 52, ProbeSize: 51}, domain.ErrGameTooLarge},
		{KindTheoretical, domain.Rules{Cards: 8, ProbeSize: 3}, domain.ErrUniverseTooLarge},
	}
	for _, c := range cases {
		err := CheckBudget(c.kind, c.rules)
		if c.want == nil && err != nil {
			t.Errorf("%s %+v: unexpected error %v", c.kind, c.rules, err)
		}
		if c.want != nil && !errors.Is(err, c.want) {
			t.Errorf("%s %+v: expected %v, got %v", c.kind, c.rules, c.want, err)
		}
	}

	if got := Cost(KindNamiswan, domain.Rules{Cards: 10, ProbeSize: 4}); got != 210 {
		t.Errorf("Cost(namiswan, 10/4) = %d, want 210", got)
	}
	if got := Cost(KindSimulated, domain.Rules{Cards: 10, ProbeSize: 4}); got != 5040 {
		t.Errorf("Cost(simulated, 10/4) = %d, want 5040", got)
	}
	rng := rand.New(rand.NewSource(1))
	if _, err := NewStrategy(KindNamiswan, domain.Rules{Cards: 40, ProbeSize: 20}, rng); !errors.Is(err, domain.ErrGameTooLarge) {
		t.Errorf("NewStrategy must refuse oversized games, got %v", err)
	}
}

func TestAgent_Play(t *testing.T) {
	rules := domain.Rules{Cards: 4, ProbeSize: 2}
	agent, err := NewAgent("bot-1", "Pairs", KindTheoretical, rules, rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	engine, _ := domain.NewEngine(rules, rand.New(rand.NewSource(3)))

	for turn := 0; turn < 20; turn++ {
		move, err := agent.Play()
		if err != nil {
			t.Fatalf("Play: %v", err)
		}
		if move.Guess != nil {
			if !move.Guess.Deduced {
				t.Errorf("expected a deduced guess, got %+v", *move.Guess)
			}
			return
		}
		value, err := engine.Answer(move.Probe)
		if err != nil {
			t.Fatalf("Answer: %v", err)
		}
		if err := agent.OnClue(domain.Clue{Probe: move.Probe, Value: value}); err != nil {
			t.Fatalf("OnClue: %v", err)
		}
	}
	t.Fatalf("agent never guessed")
}

func TestParseIdentities(t *testing.T) {
	identities, err := ParseIdentities([]byte(`[{"username":"pairs","strategy":"Theoretical"}]`))
	if err != nil {
		t.Fatalf("ParseIdentities: %v", err)
	}
	if identities[0].Strategy != KindTheoretical {
		t.Errorf("strategy = %q", identities[0].Strategy)
	}
	if _, err := ParseIdentities([]byte(`[{"username":"x","strategy":"oracle"}]`)); err == nil {
		t.Errorf("expected an error for an unknown strategy")
	}

	if err := LoadIdentities("testdata/identities.json"); err != nil {
		t.Fatalf("LoadIdentities: %v", err)
	}
	if got := IdentityFor(KindNamiswan); got.DisplayName != "Namiswan" {
		t.Errorf("IdentityFor(namiswan) = %+v", got)
	}
}

func FuzzSelfPlay_DeducedGuessesWin(f *testing.F) {
	f.Add(int64(1), uint8(5), uint8(2), uint8(0))
	f.Add(int64(7), uint8(7), uint8(3), uint8(1))
	f.Add(int64(3), uint8(3), uint8(2), uint8(2))
	f.Fuzz(func(t *testing.T, seed int64, cards, size, which uint8) {
		kind := Kinds()[int(which)%len(Kinds())]
		maxCards := 7
		if kind == KindTheoretical {
			// 7! pair scans per probe are too slow for a fuzz worker.
			maxCards = 6
		}
		rules := domain.Rules{Cards: 2 + int(cards)%(maxCards-1)}
		rules.ProbeSize = 1 + int(size)%(rules.Cards-1)

		_, guess, clues, verdict, engine := selfPlay(t, kind, rules, seed)
		if guess.Deduced && !verdict.Won {
			t.Fatalf("%s deduced %+v after %v but lost to %v", kind, guess, clues, verdict.Assignment)
		}
		for _, a := range engine.Live() {
			if !a.SatisfiesAll(clues) {
				t.Fatalf("live %v contradicts clues %v", a, clues)
			}
		}
	})
}
