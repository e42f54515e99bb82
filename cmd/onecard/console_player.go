package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"onecard/internal/app"
	"onecard/internal/bot"
	"onecard/internal/domain"
)

// prompter is the part of *liner.State the console player uses.
type prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

var errAborted = errors.New("aborted at the prompt")

// consolePlayer lets a person play through the bot.Strategy contract.
type consolePlayer struct {
	line    prompter
	rules   domain.Rules
	out     io.Writer
	clues   []domain.Clue
	pending domain.Probe
}

var _ bot.Strategy = (*consolePlayer)(nil)

func newConsolePlayer(line prompter, rules domain.Rules, out io.Writer) *consolePlayer {
	return &consolePlayer{line: line, rules: rules, out: out}
}

// AskProbe reads probes until one is valid. An empty line, "guess" or the
// end of input stops probing.
func (p *consolePlayer) AskProbe() (domain.Probe, bool) {
	for {
		input, err := p.line.Prompt(fmt.Sprintf("probe %d> ", len(p.clues)+1))
		if err != nil {
			return nil, false
		}
		input = strings.TrimSpace(input)
		if input == "" || input == "guess" || input == "g" {
			return nil, false
		}

		cards, err := domain.ParseCards(input)
		if err == nil {
			var probe domain.Probe
			probe, err = domain.NewProbe(p.rules, cards...)
			if err == nil {
				p.line.AppendHistory(input)
				p.pending = probe
				return probe, true
			}
		}
		palette.Loss.Fprintln(p.out, err)
	}
}

func (p *consolePlayer) ReceiveClue(clue domain.Clue) error {
	if p.pending == nil || !clue.Probe.Equal(p.pending) {
		return fmt.Errorf("%w: got %s", domain.ErrUnexpectedClue, clue)
	}
	p.pending = nil
	p.clues = append(p.clues, clue)
	printClue(p.out, clue)
	return nil
}

// DeclareGuess reads "<card> <value>". The guess counts as deduced when the
// clues so far prove it.
func (p *consolePlayer) DeclareGuess() (domain.Guess, error) {
	for {
		input, err := p.line.Prompt("guess> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return domain.Guess{}, errAborted
			}
			return domain.Guess{}, err
		}
		guess, err := parseGuess(p.rules, input)
		if err != nil {
			palette.Loss.Fprintln(p.out, err)
			continue
		}
		p.line.AppendHistory(input)
		guess.Deduced = app.ProvenByClues(p.rules, p.clues, guess.Card, guess.Value)
		return guess, nil
	}
}

func parseGuess(rules domain.Rules, input string) (domain.Guess, error) {
	fields := strings.Fields(input)
	if len(fields) != 2 {
		return domain.Guess{}, fmt.Errorf("%w: want a card and a value, e.g. \"c 2\"", domain.ErrInvalidGuess)
	}
	cards, err := domain.ParseCards(fields[0])
	if err != nil {
		return domain.Guess{}, err
	}
	if len(cards) != 1 || cards[0] >= rules.Cards {
		return domain.Guess{}, fmt.Errorf("%w: %q is not one of %s", domain.ErrInvalidGuess, fields[0], cardRange(rules.Cards))
	}
	value, err := strconv.Atoi(fields[1])
	if err != nil || value < 0 || value >= rules.Cards {
		return domain.Guess{}, fmt.Errorf("%w: value must be in [0,%d)", domain.ErrInvalidGuess, rules.Cards)
	}
	return domain.Guess{Card: cards[0], Value: value}, nil
}
