package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Server      ServerConfig      `mapstructure:"server"`
	Journal     JournalConfig     `mapstructure:"journal"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// GameConfig holds per-game settings
type GameConfig struct {
	Board            BoardConfig `mapstructure:"board"`
	EnforceTurnOrder bool        `mapstructure:"enforce_turn_order"`
	StandardSetup    bool        `mapstructure:"standard_setup"`
}

// BoardConfig holds board dimensions
type BoardConfig struct {
	Rows int `mapstructure:"rows"`
	Cols int `mapstructure:"cols"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	HTTP            HTTPConfig    `mapstructure:"http"`
	Health          HealthConfig  `mapstructure:"health"`
	MaxGames        int           `mapstructure:"max_games"`
	IdempotencyTTL  time.Duration `mapstructure:"idempotency_ttl"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig holds the HTTP API listener settings
type HTTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// HealthConfig holds the gRPC health listener settings
type HealthConfig struct {
	Port int `mapstructure:"port"`
}

// JournalConfig holds the move journal settings
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseEvents bool   `mapstructure:"verbose_events"`
	EventLogLevel string `mapstructure:"event_log_level"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.board.rows", 8)
	v.SetDefault("game.board.cols", 8)
	v.SetDefault("game.enforce_turn_order", true)
	v.SetDefault("game.standard_setup", false)

	// Server defaults
	v.SetDefault("server.http.host", "0.0.0.0")
	v.SetDefault("server.http.port", 8080)
	v.SetDefault("server.health.port", 50051)
	v.SetDefault("server.max_games", 100)
	v.SetDefault("server.idempotency_ttl", 24*time.Hour)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	// Journal defaults
	v.SetDefault("journal.enabled", true)
	v.SetDefault("journal.path", "chesstx-journal.db")

	// Development defaults
	v.SetDefault("development.verbose_events", false)
	v.SetDefault("development.event_log_level", "debug")
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
		v.AddConfigPath("/etc/chesstx")
	}

	v.SetEnvPrefix("CHESSTX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "" && errors.Is(err, fs.ErrNotExist):
			// Specific file requested but not found - use defaults
		case configPath == "" && errors.As(err, &notFound):
			// No config in the default locations - use defaults
		default:
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	cfg = c
	return nil
}

// Get returns the global config instance, initializing defaults on first use
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// LoadEnvironmentConfig merges config.<env>.yaml from the directory of the
// loaded config file (or the working directory) over the current settings.
// A missing overlay is not an error.
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	if used := v.ConfigFileUsed(); used != "" {
		envFile = filepath.Join(filepath.Dir(used), envFile)
	}

	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
		return nil
	}

	return reload()
}

// Set overrides key at runtime. The override outlives config file reloads.
// A value that fails validation is rejected and the previous one kept.
func Set(key string, value interface{}) error {
	prev := v.Get(key)
	v.Set(key, value)
	if err := reload(); err != nil {
		v.Set(key, prev)
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. Invalid edits are
// reported to onError and the previous values are kept.
func WatchConfig(onChange func(), onError func(error)) {
	v.OnConfigChange(func(e fsnotify.Event) {
		if err := reload(); err != nil {
			if onError != nil {
				onError(fmt.Errorf("reload %s: %w", e.Name, err))
			}
			return
		}
		if onChange != nil {
			onChange()
		}
	})
	v.WatchConfig()
}

// reload decodes and validates the viper state before swapping it in
func reload() error {
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return err
	}
	*cfg = *c
	return nil
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Board.Rows < 2 || c.Game.Board.Cols < 1 {
		return fmt.Errorf("game.board must have at least 2 rows and 1 column")
	}
	if c.Game.Board.Rows > 26 || c.Game.Board.Cols > 26 {
		return fmt.Errorf("game.board dimensions must not exceed 26")
	}
	if c.Game.StandardSetup && (c.Game.Board.Rows != 8 || c.Game.Board.Cols != 8) {
		return fmt.Errorf("game.standard_setup requires an 8x8 board")
	}

	if c.Server.HTTP.Port <= 0 || c.Server.HTTP.Port > 65535 {
		return fmt.Errorf("server.http.port must be between 1 and 65535")
	}
	if c.Server.Health.Port < 0 || c.Server.Health.Port > 65535 {
		return fmt.Errorf("server.health.port must be between 0 and 65535")
	}
	if c.Server.Health.Port != 0 && c.Server.Health.Port == c.Server.HTTP.Port {
		return fmt.Errorf("server.health.port must differ from server.http.port")
	}
	if c.Server.MaxGames < 0 {
		return fmt.Errorf("server.max_games must be non-negative (0 means unlimited)")
	}
	if c.Server.IdempotencyTTL < 0 {
		return fmt.Errorf("server.idempotency_ttl must be non-negative")
	}
	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("server.shutdown_timeout must be non-negative")
	}

	switch c.Server.LogLevel {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("server.log_level must be one of trace, debug, info, warn, error")
	}
	switch c.Server.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("server.log_format must be console or json")
	}
	switch c.Development.EventLogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("development.event_log_level must be one of debug, info, warn, error")
	}

	if c.Journal.Enabled && c.Journal.Path == "" {
		return fmt.Errorf("journal.path is required when the journal is enabled")
	}

	return nil
}
