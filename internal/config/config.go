// Package config provides Viper-based configuration loading for the
// Stagecraft player client.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EngineConfig holds realtime Engine connection settings.
type EngineConfig struct {
	// URL is the Engine WebSocket endpoint, e.g. "ws://localhost:8080/ws".
	URL string `mapstructure:"url"`
	// HeartbeatInterval is the keepalive cadence while connected.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	// Profile is the concurrency profile: "threaded" or "cooperative".
	Profile string `mapstructure:"profile"`
}

// APIConfig holds Engine HTTP API settings.
type APIConfig struct {
	// BaseURL is the Engine REST base, e.g. "http://localhost:8080".
	BaseURL string `mapstructure:"base_url"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReconnectConfig holds retry policy bounds for link recovery.
type ReconnectConfig struct {
	// Enabled turns automatic reconnection on.
	Enabled bool `mapstructure:"enabled"`
	// InitialInterval is the first backoff delay.
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	// MaxInterval caps the backoff delay.
	MaxInterval time.Duration `mapstructure:"max_interval"`
	// MaxElapsedTime is the total retry budget before giving up; zero
	// retries forever.
	MaxElapsedTime time.Duration `mapstructure:"max_elapsed_time"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PlayerConfig holds local player identity and DM tooling settings.
type PlayerConfig struct {
	// Name is the display name offered when joining.
	Name string `mapstructure:"name"`
	// Role is the default join role: "DungeonMaster", "Player", or
	// "Spectator".
	Role string `mapstructure:"role"`
	// DirectorsDir is the directory of directorial preset YAML files;
	// empty disables preset loading.
	DirectorsDir string `mapstructure:"directors_dir"`
}

// Config is the top-level application configuration.
type Config struct {
	Engine    EngineConfig    `mapstructure:"engine"`
	API       APIConfig       `mapstructure:"api"`
	Reconnect ReconnectConfig `mapstructure:"reconnect"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Player    PlayerConfig    `mapstructure:"player"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateEngine(c.Engine); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateAPI(c.API); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateReconnect(c.Reconnect); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePlayer(c.Player); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateEngine(e EngineConfig) error {
	var errs []string
	if !strings.HasPrefix(e.URL, "ws://") && !strings.HasPrefix(e.URL, "wss://") {
		errs = append(errs, fmt.Sprintf("engine.url must start with ws:// or wss://, got %q", e.URL))
	}
	if e.HeartbeatInterval <= 0 {
		errs = append(errs, "engine.heartbeat_interval must be positive")
	}
	if e.Profile != "threaded" && e.Profile != "cooperative" {
		errs = append(errs, fmt.Sprintf("engine.profile must be one of [threaded, cooperative], got %q", e.Profile))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateAPI(a APIConfig) error {
	var errs []string
	if !strings.HasPrefix(a.BaseURL, "http://") && !strings.HasPrefix(a.BaseURL, "https://") {
		errs = append(errs, fmt.Sprintf("api.base_url must start with http:// or https://, got %q", a.BaseURL))
	}
	if a.Timeout <= 0 {
		errs = append(errs, "api.timeout must be positive")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateReconnect(r ReconnectConfig) error {
	if !r.Enabled {
		return nil
	}
	var errs []string
	if r.InitialInterval <= 0 {
		errs = append(errs, "reconnect.initial_interval must be positive")
	}
	if r.MaxInterval < r.InitialInterval {
		errs = append(errs, "reconnect.max_interval must be >= reconnect.initial_interval")
	}
	if r.MaxElapsedTime < 0 {
		errs = append(errs, "reconnect.max_elapsed_time must not be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validatePlayer(p PlayerConfig) error {
	validRoles := map[string]bool{"DungeonMaster": true, "Player": true, "Spectator": true}
	if !validRoles[p.Role] {
		return fmt.Errorf("player.role must be one of [DungeonMaster, Player, Spectator], got %q", p.Role)
	}
	return nil
}

// Load reads configuration from the given file path, applies
// environment variable overrides, and validates the result.
//
// Precondition: path must point to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with STAGECRAFT_ prefix
	v.SetEnvPrefix("STAGECRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("engine.url", "ws://localhost:8080/ws")
	v.SetDefault("engine.heartbeat_interval", 20*time.Second)
	v.SetDefault("engine.profile", "threaded")
	v.SetDefault("api.base_url", "http://localhost:8080")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("reconnect.enabled", true)
	v.SetDefault("reconnect.initial_interval", 500*time.Millisecond)
	v.SetDefault("reconnect.max_interval", 15*time.Second)
	v.SetDefault("reconnect.max_elapsed_time", 2*time.Minute)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("player.name", "")
	v.SetDefault("player.role", "Player")
	v.SetDefault("player.directors_dir", "")
}
