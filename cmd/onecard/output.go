package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"onecard/internal/app"
	"onecard/internal/bot"
	"onecard/internal/domain"
)

// Palette holds the colors used by the terminal output.
type Palette struct {
	Win, Loss, Clue, Info, Header *color.Color
}

var palette = Palette{
	Win:    color.New(color.FgGreen),
	Loss:   color.New(color.FgRed),
	Clue:   color.New(color.FgYellow),
	Info:   color.New(color.FgCyan),
	Header: color.New(color.FgWhite, color.Bold),
}

func printRules(w io.Writer, rules domain.Rules) {
	palette.Header.Fprintf(w, "%d cards (%s), %d per probe\n", rules.Cards, cardRange(rules.Cards), rules.ProbeSize)
	palette.Info.Fprintln(w, "Name the cards of a probe, e.g. \"ab\". An empty line stops probing.")
	palette.Info.Fprintln(w, "Then guess a card and its value, e.g. \"c 2\".")
}

func cardRange(cards int) string {
	return domain.CardName(0) + ".." + domain.CardName(cards-1)
}

func printClue(w io.Writer, clue domain.Clue) {
	palette.Clue.Fprintln(w, clue.String())
}

// printResult writes the transcript of a finished game. Bot transcripts
// include every clue; humans already saw theirs.
func printResult(w io.Writer, r *app.Result, withClues bool) {
	palette.Header.Fprintf(w, "%s game %s: %d cards, %d per probe\n", r.Strategy, r.GameID, r.Rules.Cards, r.Rules.ProbeSize)
	if withClues {
		for _, clue := range r.Clues {
			printClue(w, clue)
		}
	}
	if r.Shrinks > 0 {
		palette.Info.Fprintf(w, "probes were too small: the engine dropped %d assignment(s)\n", r.Shrinks)
	}

	how := "guessed"
	if r.Guess.Deduced {
		how = "deduced"
	}
	fmt.Fprintf(w, "%s %s = %d after %d probes\n", how, domain.CardName(r.Guess.Card), r.Guess.Value, len(r.Clues))
	if r.Verdict.Won {
		palette.Win.Fprintln(w, "won")
	} else {
		palette.Loss.Fprintf(w, "lost: the engine reveals %s\n", formatAssignment(r.Verdict.Assignment))
	}
	if len(r.Possibilities) > 0 {
		palette.Info.Fprintf(w, "%d possibilities were left, including:\n", len(r.Possibilities))
		for _, p := range r.Possibilities {
			fmt.Fprintf(w, "  %s\n", p)
		}
	}
}

func formatAssignment(a domain.Assignment) string {
	parts := make([]string, len(a))
	for card, value := range a {
		parts[card] = fmt.Sprintf("%s=%d", domain.CardName(card), value)
	}
	return strings.Join(parts, " ")
}

func renderBenchmark(w io.Writer, rules domain.Rules, summaries []app.BenchmarkSummary) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("%d cards, %d per probe", rules.Cards, rules.ProbeSize))
	t.AppendHeader(table.Row{"Strategy", "Games", "Deduced", "Won", "Avg probes", "Max probes", "Shrinks"})
	for _, s := range summaries {
		t.AppendRow(table.Row{
			s.Kind,
			s.Games,
			s.Deduced,
			s.Won,
			fmt.Sprintf("%.1f", s.AvgProbes()),
			s.MaxProbes,
			s.Shrinks,
		})
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

func renderStrategies(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Strategy", "How it plays"})
	for _, kind := range bot.Kinds() {
		t.AppendRow(table.Row{kind, bot.Describe(kind)})
	}
	t.SetStyle(table.StyleLight)
	t.Render()
}
