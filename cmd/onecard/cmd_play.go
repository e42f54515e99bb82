package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"onecard/internal/app"
	"onecard/internal/bot"
)

var (
	strategyFlag   string
	humanFlag      bool
	lowestFlag     bool
	transcriptPath string
)

func runPlayCommand(cmd *cobra.Command, args []string) error {
	rules, err := rulesFromFlags()
	if err != nil {
		return err
	}
	seed := seedFromFlags()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var opts []app.Option
	if lowestFlag {
		opts = append(opts, app.WithLowestAnswers())
	}
	svc := app.NewService(rand.New(rand.NewSource(seed)), logger, opts...)

	var agent *bot.Agent
	if humanFlag {
		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)

		printRules(os.Stdout, rules)
		agent = &bot.Agent{
			ID:       "human",
			Name:     "you",
			Kind:     bot.KindHuman,
			Strategy: newConsolePlayer(line, rules, os.Stdout),
		}
	} else {
		name := strategyFlag
		if name == "" {
			name = gameConfig.Strategy
		}
		kind, err := bot.ParseKind(name)
		if err != nil {
			return err
		}
		identity := bot.IdentityFor(kind)
		agent, err = bot.NewAgent(identity.UserID, identity.DisplayName, kind, rules, rand.New(rand.NewSource(^seed)))
		if err != nil {
			return err
		}
	}

	result, err := svc.Play(cmd.Context(), rules, agent)
	if err != nil {
		return err
	}
	printResult(os.Stdout, result, !humanFlag)

	if transcriptPath != "" {
		if err := writeTranscript(transcriptPath, result); err != nil {
			return err
		}
		fmt.Println(palette.Info.Sprintf("transcript written to %s", transcriptPath))
	}
	return nil
}

func writeTranscript(path string, result *app.Result) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
