package config

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"

	"onecard/internal/domain"
)

// GameConfig holds the tunables shared by the server plugin and the CLI.
type GameConfig struct {
	Cards             int           `mapstructure:"cards"`
	ProbeSize         int           `mapstructure:"probe_size"`
	Strategy          string        `mapstructure:"strategy"`
	Seed              int64         `mapstructure:"seed"`
	Games             int           `mapstructure:"games"`
	Parallelism       int           `mapstructure:"parallelism"`
	ResultSecret      string        `mapstructure:"result_secret"`
	ResultTTL         time.Duration `mapstructure:"result_ttl"`
	RewardGold        int64         `mapstructure:"reward_gold"`
	BotMoveDelayTicks int           `mapstructure:"bot_move_delay_ticks"`
	LogLevel          string        `mapstructure:"log_level"`
}

var (
	cfg      *GameConfig
	loadOnce sync.Once
	loadErr  error
)

// EnvPrefix prefixes environment overrides, e.g. ONECARD_CARDS.
const EnvPrefix = "onecard"

func setDefaults(v *viper.Viper) {
	v.SetDefault("cards", 10)
	v.SetDefault("probe_size", 4)
	v.SetDefault("strategy", "namiswan")
	v.SetDefault("seed", 0)
	v.SetDefault("games", 100)
	v.SetDefault("parallelism", 4)
	v.SetDefault("result_ttl", 24*time.Hour)
	v.SetDefault("reward_gold", 100)
	v.SetDefault("bot_move_delay_ticks", 1)
	v.SetDefault("log_level", "info")
	v.SetDefault("result_secret", "")
}

// Defaults returns the configuration used when no file is given.
func Defaults() *GameConfig {
	c, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config defaults are invalid: %v", err))
	}
	return c
}

// Load reads a YAML or JSON file (optional) and ONECARD_* environment overrides.
func Load(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read game config: %w", err)
		}
	}

	var c GameConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadGameConfig loads the game configuration from the given path once per process.
func LoadGameConfig(path string) error {
	loadOnce.Do(func() {
		cfg, loadErr = Load(path)
	})
	return loadErr
}

// GetGameConfig returns the global game configuration, or the defaults when
// nothing was loaded.
func GetGameConfig() *GameConfig {
	if cfg == nil {
		return Defaults()
	}
	return cfg
}

// Rules returns the game shape.
func (c *GameConfig) Rules() domain.Rules {
	return domain.Rules{Cards: c.Cards, ProbeSize: c.ProbeSize}
}

// Validate checks the values that the game cannot run without.
func (c *GameConfig) Validate() error {
	if err := c.Rules().Validate(); err != nil {
		return err
	}
	if c.Games < 0 || c.Parallelism < 0 || c.RewardGold < 0 || c.BotMoveDelayTicks < 0 {
		return fmt.Errorf("games, parallelism, reward_gold and bot_move_delay_ticks must not be negative")
	}
	return nil
}

// WithEnv returns a copy overridden by onecard_* keys of a Nakama runtime env map.
// Malformed values are reported and leave the field unchanged.
func (c *GameConfig) WithEnv(env map[string]string) (*GameConfig, error) {
	out := *c
	var errs []string
	setInt := func(key string, dst *int) {
		if raw, ok := env[EnvPrefix+"_"+key]; ok && raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s_%s=%q", EnvPrefix, key, raw))
				return
			}
			*dst = n
		}
	}
	setInt("cards", &out.Cards)
	setInt("probe_size", &out.ProbeSize)
	setInt("bot_move_delay_ticks", &out.BotMoveDelayTicks)
	if raw, ok := env[EnvPrefix+"_reward_gold"]; ok && raw != "" {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			out.RewardGold = n
		} else {
			errs = append(errs, fmt.Sprintf("%s_reward_gold=%q", EnvPrefix, raw))
		}
	}
	if raw := env[EnvPrefix+"_strategy"]; raw != "" {
		out.Strategy = raw
	}
	if raw := env[EnvPrefix+"_result_secret"]; raw != "" {
		out.ResultSecret = raw
	}

	if len(errs) > 0 {
		return c, fmt.Errorf("malformed env overrides: %s", strings.Join(errs, ", "))
	}
	if err := out.Validate(); err != nil {
		return c, err
	}
	return &out, nil
}
