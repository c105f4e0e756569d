package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/mitchelldurbincs/mancala/internal/game/core"
	"github.com/mitchelldurbincs/mancala/internal/strategy"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Simulation  SimulationConfig  `mapstructure:"simulation"`
	Batch       BatchConfig       `mapstructure:"batch"`
	Server      ServerConfig      `mapstructure:"server"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// GameConfig holds the board geometry and scoring rules
type GameConfig struct {
	Bins             int  `mapstructure:"bins"`
	StartingPieces   int  `mapstructure:"starting_pieces"`
	VictoryThreshold int  `mapstructure:"victory_threshold"`
	CaptureEnabled   bool `mapstructure:"capture_enabled"`
}

// SimulationConfig holds the settings of a single simulation run
type SimulationConfig struct {
	MaxTurns       int    `mapstructure:"max_turns"`
	StartingPlayer string `mapstructure:"starting_player"` // "", "one" or "two"
	Seed           uint64 `mapstructure:"seed"`            // 0 means time based
	PlayerOne      string `mapstructure:"player_one"`
	PlayerTwo      string `mapstructure:"player_two"`
}

// BatchConfig holds batch runner settings
type BatchConfig struct {
	Games   int `mapstructure:"games"`
	Workers int `mapstructure:"workers"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	HTTP HTTPServerConfig `mapstructure:"http"`
}

// HTTPServerConfig holds HTTP inspection server configuration
type HTTPServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	LogLevel       string `mapstructure:"log_level"`
	RequestTimeout int    `mapstructure:"request_timeout"` // seconds
	MaxReports     int    `mapstructure:"max_reports"`
	MaxBatchGames  int    `mapstructure:"max_batch_games"`
	ShutdownDelay  int    `mapstructure:"graceful_shutdown_delay"` // seconds
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseLogging bool `mapstructure:"verbose_logging"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.bins", core.DefaultBins)
	v.SetDefault("game.starting_pieces", core.DefaultStartingPieces)
	v.SetDefault("game.victory_threshold", core.DefaultVictoryThreshold)
	v.SetDefault("game.capture_enabled", false)

	// Simulation defaults
	v.SetDefault("simulation.max_turns", 1000)
	v.SetDefault("simulation.starting_player", "")
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.player_one", strategy.RandomSelectionName)
	v.SetDefault("simulation.player_two", strategy.AlwaysMinimumName)

	// Batch defaults
	v.SetDefault("batch.games", 100)
	v.SetDefault("batch.workers", 0)

	// HTTP server defaults
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.http.log_level", "info")
	v.SetDefault("server.http.request_timeout", 10)
	v.SetDefault("server.http.max_reports", 1000)
	v.SetDefault("server.http.max_batch_games", 10000)
	v.SetDefault("server.http.graceful_shutdown_delay", 2)

	// Development defaults
	v.SetDefault("development.verbose_logging", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/mancala")
	}

	v.SetEnvPrefix("MANCALA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A specific file that does not exist falls back to defaults; for
		// the search paths only a missing file is tolerated.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if _, err := os.Stat(envFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}

	return Validate(cfg)
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	_ = v.Unmarshal(cfg)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A reloaded config
// that fails validation is ignored and the previous values are kept.
func WatchConfig(onChange func()) {
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil {
			return
		}
		if err := Validate(next); err != nil {
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}

// Rules maps the game section to engine rules
func (c *Config) Rules() core.Rules {
	return core.Rules{
		Bins:             c.Game.Bins,
		StartingPieces:   c.Game.StartingPieces,
		VictoryThreshold: c.Game.VictoryThreshold,
		Capture:          c.Game.CaptureEnabled,
	}
}

// StartingPlayer returns the pinned first mover, or nil for a random draw
func (c *Config) StartingPlayer() (*core.Player, error) {
	if c.Simulation.StartingPlayer == "" {
		return nil, nil
	}
	p, err := core.ParsePlayer(c.Simulation.StartingPlayer)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Validate game rules
	if err := c.Rules().Validate(); err != nil {
		return fmt.Errorf("game: %w", err)
	}

	// Validate simulation settings
	if c.Simulation.MaxTurns <= 0 {
		return fmt.Errorf("simulation.max_turns must be positive")
	}
	if _, err := c.StartingPlayer(); err != nil {
		return fmt.Errorf("simulation.starting_player: %w", err)
	}
	names := strategy.Names()
	if !slices.Contains(names, c.Simulation.PlayerOne) {
		return fmt.Errorf("simulation.player_one: %w: %q", strategy.ErrUnknownStrategy, c.Simulation.PlayerOne)
	}
	if !slices.Contains(names, c.Simulation.PlayerTwo) {
		return fmt.Errorf("simulation.player_two: %w: %q", strategy.ErrUnknownStrategy, c.Simulation.PlayerTwo)
	}

	// Validate batch settings
	if c.Batch.Games < 0 {
		return fmt.Errorf("batch.games must be non-negative")
	}
	if c.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be non-negative")
	}

	// Validate server configuration
	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("server.http.port must be between 1 and 65535")
	}
	if !slices.Contains(validLogLevels, c.Server.HTTP.LogLevel) {
		return fmt.Errorf("server.http.log_level must be one of %v", validLogLevels)
	}
	if c.Server.HTTP.RequestTimeout <= 0 {
		return fmt.Errorf("server.http.request_timeout must be positive")
	}
	if c.Server.HTTP.MaxReports < 0 {
		return fmt.Errorf("server.http.max_reports must be non-negative")
	}
	if c.Server.HTTP.MaxBatchGames <= 0 {
		return fmt.Errorf("server.http.max_batch_games must be positive")
	}
	if c.Server.HTTP.ShutdownDelay < 0 {
		return fmt.Errorf("server.http.graceful_shutdown_delay must be non-negative")
	}

	return nil
}
