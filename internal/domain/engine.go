package domain

import (
	"fmt"
	"math/rand"
	"sort"
)

// Engine is the adversary. It keeps a list of live assignments, all consistent
// with every clue given so far, and answers probes so that as many of them as
// possible stay live.
type Engine struct {
	rules   Rules
	live    []Assignment
	chooser Chooser
	shrinks int
}

// NewEngine seeds an engine with two disjoint assignments and random tie-breaking.
func NewEngine(rules Rules, rng *rand.Rand) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	first, second := SeedAssignments(rules.Cards, rng)
	return NewEngineWithAssignments(rules, NewRandomChooser(rng), first, second)
}

// NewEngineWithAssignments builds an engine from explicit live assignments.
func NewEngineWithAssignments(rules Rules, chooser Chooser, live ...Assignment) (*Engine, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if len(live) == 0 {
		return nil, ErrNoLiveAssignment
	}
	if chooser == nil {
		chooser = LowestChooser{}
	}
	e := &Engine{rules: rules, chooser: chooser}
	for _, a := range live {
		if err := a.Validate(rules.Cards); err != nil {
			return nil, err
		}
		e.live = append(e.live, a.Clone())
	}
	return e, nil
}

func (e *Engine) Rules() Rules { return e.rules }

// Shrinks counts how many assignments were dropped to answer probes.
func (e *Engine) Shrinks() int { return e.shrinks }

// Live returns copies of the live assignments in order.
func (e *Engine) Live() []Assignment {
	out := make([]Assignment, len(e.live))
	for i, a := range e.live {
		out[i] = a.Clone()
	}
	return out
}

// Answer returns a value that every live assignment places on one of the
// probed cards. When none exists the last live assignment is dropped and the
// intersection is retried.
func (e *Engine) Answer(probe Probe) (int, error) {
	if err := probe.Validate(e.rules); err != nil {
		return 0, err
	}
	if len(e.live) == 0 {
		return 0, ErrNoLiveAssignment
	}
	for {
		if common := e.commonValues(probe); len(common) > 0 {
			return e.chooser.Choose(common), nil
		}
		// A single assignment always has values on its probed cards.
		e.live = e.live[:len(e.live)-1]
		e.shrinks++
	}
}

func (e *Engine) commonValues(probe Probe) []int {
	counts := make(map[int]int, len(probe))
	for _, a := range e.live {
		for _, card := range probe {
			counts[a[card]]++
		}
	}
	common := make([]int, 0, len(counts))
	for value, n := range counts {
		if n == len(e.live) {
			common = append(common, value)
		}
	}
	sort.Ints(common)
	return common
}

// Verify reveals an assignment: the first live one disagreeing with the guess
// if any (player loses), otherwise the first live one (player wins).
func (e *Engine) Verify(card, value int) (Verdict, error) {
	if card < 0 || card >= e.rules.Cards || value < 0 || value >= e.rules.Cards {
		return Verdict{}, fmt.Errorf("%w: card %d value %d", ErrInvalidGuess, card, value)
	}
	if len(e.live) == 0 {
		return Verdict{}, ErrNoLiveAssignment
	}
	guess := Guess{Card: card, Value: value}
	for _, a := range e.live {
		if a[card] != value {
			return Verdict{Guess: guess, Won: false, Assignment: a.Clone()}, nil
		}
	}
	return Verdict{Guess: guess, Won: true, Assignment: e.live[0].Clone()}, nil
}
