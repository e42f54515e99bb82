package main

import (
	"os"

	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/spf13/cobra"

	"onecard/internal/config"
	"onecard/internal/domain"
	"onecard/internal/logging"
)

// --- Global Command Variables ---
var (
	configPath string
	logLevel   string
	jsonLogs   bool

	gameConfig *config.GameConfig
	logger     runtime.Logger

	rootCmd = &cobra.Command{
		Use:   "onecard",
		Short: "Play and benchmark the one-card deduction game",
		Long: `onecard pits a player against an engine that hides a value behind every card.
Each probe names a few cards and the engine answers with a value one of them carries;
the player wins by naming a card together with its value.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			gameConfig = cfg

			level := cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = logLevel
			}
			logger = logging.New(logging.Options{Level: level, JSON: jsonLogs, Output: os.Stderr})
			return nil
		},
	}

	playCmd = &cobra.Command{
		Use:   "play",
		Short: "Play one game with a bot strategy or at the terminal",
		RunE:  runPlayCommand, // Defined in cmd_play.go
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Play many seeded games per strategy and compare them",
		RunE:  runBenchCommand, // Defined in cmd_bench.go
	}

	strategiesCmd = &cobra.Command{
		Use:   "strategies",
		Short: "List the bot strategies",
		Args:  cobra.NoArgs,
		Run:   runStrategiesCommand, // Defined in cmd_strategies.go
	}
)

// Flags shared by play and bench.
var (
	cardsFlag     int
	probeSizeFlag int
	seedFlag      int64
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML or JSON game config")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")
	rootCmd.PersistentFlags().IntVarP(&cardsFlag, "cards", "t", 0, "number of cards (default from config)")
	rootCmd.PersistentFlags().IntVarP(&probeSizeFlag, "probe-size", "p", 0, "cards per probe (default from config)")
	rootCmd.PersistentFlags().Int64Var(&seedFlag, "seed", 0, "random seed, 0 picks one")

	playCmd.Flags().StringVarP(&strategyFlag, "strategy", "s", "", "bot strategy (default from config)")
	playCmd.Flags().BoolVar(&humanFlag, "human", false, "play at the terminal")
	playCmd.Flags().BoolVar(&lowestFlag, "lowest", false, "engine answers with the lowest admissible value")
	playCmd.Flags().StringVar(&transcriptPath, "transcript", "", "write the game transcript as YAML")

	benchCmd.Flags().IntVarP(&gamesFlag, "games", "n", 0, "games per strategy (default from config)")
	benchCmd.Flags().IntVar(&parallelismFlag, "parallelism", 0, "games played at once (default from config)")
	benchCmd.Flags().StringSliceVar(&benchKinds, "strategies", nil, "strategies to compare (default all)")
	benchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	rootCmd.AddCommand(playCmd, benchCmd, strategiesCmd)
}

// rulesFromFlags applies --cards and --probe-size over the loaded config.
func rulesFromFlags() (domain.Rules, error) {
	rules := gameConfig.Rules()
	if cardsFlag > 0 {
		rules.Cards = cardsFlag
	}
	if probeSizeFlag > 0 {
		rules.ProbeSize = probeSizeFlag
	}
	return rules, rules.Validate()
}

func seedFromFlags() int64 {
	if seedFlag != 0 {
		return seedFlag
	}
	return gameConfig.Seed
}
