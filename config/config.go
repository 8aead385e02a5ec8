// Package config provides configuration loading and validation for gridctl.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"terraingrid/symgrid"
)

// Sentinel validation errors.
var (
	ErrInvalidSlots    = errors.New("arena slots must be positive")
	ErrInvalidMaxDim   = errors.New("arena max dimension must be between 1 and 65535")
	ErrInvalidParallel = errors.New("run parallelism must not be negative")
	ErrInvalidLevel    = errors.New("logging level must be one of: debug, info, warn, error")
	ErrInvalidFormat   = errors.New("logging format must be one of: text, json")
)

// Default configuration values.
const (
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	maxDimLimit      = 1<<16 - 1
)

// Config holds all configuration for gridctl.
type Config struct {
	Arena   ArenaConfig   `mapstructure:"arena"`
	Run     RunConfig     `mapstructure:"run"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ArenaConfig sizes the level slab pool.
type ArenaConfig struct {
	Slots  int `mapstructure:"slots"`
	MaxDim int `mapstructure:"max_dim"`
}

// RunConfig controls plan execution.
type RunConfig struct {
	// Parallel is the number of plans run at once. Zero derives it from the arena size.
	Parallel int `mapstructure:"parallel"`
	// Seed, when non-zero, overrides the seed of every plan.
	Seed uint64 `mapstructure:"seed"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// LoadConfig loads configuration from file and GRIDCTL_* environment variables.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("gridctl")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")
	}

	viperCfg.SetEnvPrefix("GRIDCTL")
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("arena.slots", symgrid.DefaultArenaSlots)
	viperCfg.SetDefault("arena.max_dim", symgrid.DefaultMaxDim)

	viperCfg.SetDefault("run.parallel", 0)
	viperCfg.SetDefault("run.seed", 0)

	viperCfg.SetDefault("logging.level", defaultLogLevel)
	viperCfg.SetDefault("logging.format", defaultLogFormat)
}

func validateConfig(config *Config) error {
	if config.Arena.Slots <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSlots, config.Arena.Slots)
	}

	if config.Arena.MaxDim <= 0 || config.Arena.MaxDim > maxDimLimit {
		return fmt.Errorf("%w: %d", ErrInvalidMaxDim, config.Arena.MaxDim)
	}

	if config.Run.Parallel < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidParallel, config.Run.Parallel)
	}

	if _, err := parseLevel(config.Logging.Level); err != nil {
		return err
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, config.Logging.Format)
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidLevel, s)
}

// NewLogger builds the structured logger described by the logging section.
func (c LoggingConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewArena builds the slab arena described by the arena section.
func (c ArenaConfig) NewArena(logger *slog.Logger) *symgrid.Arena {
	return symgrid.NewArena(symgrid.ArenaConfig{
		Slots:  c.Slots,
		MaxDim: c.MaxDim,
		Logger: logger,
	})
}
