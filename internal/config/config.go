// Package config loads game settings from defaults, an optional config file,
// and SKIRMISH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. SKIRMISH_GRID_WIDTH.
const EnvPrefix = "SKIRMISH"

// GridConfig sizes the board.
type GridConfig struct {
	Width     int `mapstructure:"width"`
	Height    int `mapstructure:"height"`
	Obstacles int `mapstructure:"obstacles"` // random draws; -1 means one per column
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// UIConfig controls the windowed front-end.
type UIConfig struct {
	CellSize int `mapstructure:"cellSize"`
}

// MatchConfig bounds a single game.
type MatchConfig struct {
	MaxRounds int `mapstructure:"maxRounds"`
}

// Config is the full settings tree.
type Config struct {
	Seed     int64       `mapstructure:"seed"` // 0 seeds from the clock
	Scenario string      `mapstructure:"scenario"`
	Grid     GridConfig  `mapstructure:"grid"`
	Log      LogConfig   `mapstructure:"log"`
	UI       UIConfig    `mapstructure:"ui"`
	Match    MatchConfig `mapstructure:"match"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("seed", 0)
	v.SetDefault("scenario", "")

	v.SetDefault("grid.width", 10)
	v.SetDefault("grid.height", 10)
	v.SetDefault("grid.obstacles", -1)

	v.SetDefault("log.level", "info")

	v.SetDefault("ui.cellSize", 64)

	v.SetDefault("match.maxRounds", 200)
}

// Load reads settings. An empty path uses defaults and the environment only;
// otherwise the file must exist and its format is taken from the extension.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in settings.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		// defaults always validate unless the environment is broken
		panic(err)
	}
	return cfg
}

var (
	ErrGridTooSmall = errors.New("grid must be at least 3x3")
	ErrBadCellSize  = errors.New("ui.cellSize must be positive")
	ErrBadMaxRounds = errors.New("match.maxRounds must not be negative")
)

// Validate rejects settings the game cannot run with.
func (c Config) Validate() error {
	if c.Grid.Width < 3 || c.Grid.Height < 3 {
		return fmt.Errorf("%w: got %dx%d", ErrGridTooSmall, c.Grid.Width, c.Grid.Height)
	}
	if c.UI.CellSize <= 0 {
		return ErrBadCellSize
	}
	if c.Match.MaxRounds < 0 {
		return ErrBadMaxRounds
	}
	return nil
}
