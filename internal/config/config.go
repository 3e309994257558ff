// Package config loads the service-level configuration layer: server
// identity, transport mode, logging, and the process-singleton tunables
// for the task manager, elicitation manager, and smart-defaults engine.
// The registry fleet itself is loaded separately by internal/registry,
// by its own fixed env-var contract.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all service-level configuration for the control plane.
// Precedence: environment variables > config file > defaults.
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Transport     TransportConfig     `toml:"transport"`
	Log           LogConfig           `toml:"log"`
	Task          TaskConfig          `toml:"task"`
	Elicitation   ElicitationConfig   `toml:"elicitation"`
	SmartDefaults SmartDefaultsConfig `toml:"smart_defaults"`
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Mode selects the transport: "stdio" (default) or "http".
	Mode string `toml:"mode"`
	// Port is the HTTP listen port (default: 8765). Only used when Mode is "http".
	Port string `toml:"port"`
	// Host is the HTTP listen address (default: "0.0.0.0"). Only used when Mode is "http".
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins (default: "*").
	CORSOrigins string `toml:"cors_origins"`
	// AuthToken, when set, is the shared bearer token HTTP clients must
	// present. Empty disables transport-level auth. Only used when Mode is "http".
	AuthToken string `toml:"auth_token"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// TaskConfig sizes the async task manager's bounded worker pool (C3).
type TaskConfig struct {
	PoolSize int `toml:"pool_size"` // default 10
}

// ElicitationConfig holds the default timeout applied when a caller opens
// an elicitation without specifying its own (C5).
type ElicitationConfig struct {
	DefaultTimeoutSeconds int `toml:"default_timeout_seconds"`
}

// SmartDefaultsConfig points the Learning Engine (C7) at its persisted
// preference store.
type SmartDefaultsConfig struct {
	Enabled   bool   `toml:"enabled"`
	StorePath string `toml:"store_path"`
}

// Load creates a Config by reading from a TOML config file and environment
// variables. Precedence: environment variables > config file > defaults.
//
// Config file search order (first found wins):
//  1. Path passed via configPath parameter (from --config flag)
//  2. SRCP_CONFIG environment variable
//  3. ./srcp.toml (current directory)
//  4. ~/.config/srcp/srcp.toml (XDG-style)
//
// All fields are optional in the config file. Environment variables always
// override file values.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Name:    "srcp",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Mode:        "stdio",
			Port:        "8765",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Log: LogConfig{
			Level: "info",
		},
		Task: TaskConfig{
			PoolSize: 10,
		},
		Elicitation: ElicitationConfig{
			DefaultTimeoutSeconds: 300,
		},
		SmartDefaults: SmartDefaultsConfig{
			Enabled:   true,
			StorePath: defaultStorePath(),
		},
	}

	if err := cfg.loadFile(configPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaultStorePath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home + "/.local/share/srcp/smart_defaults.db"
	}
	return "./smart_defaults.db"
}

// loadFile finds and parses the TOML config file. If no file is found,
// this is a no-op (config file is optional).
func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}

	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	return nil
}

// resolveConfigPath determines which config file to use. Returns empty string
// if no config file is found (config file is optional).
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit // caller wants this file; let DecodeFile report if missing
	}

	if p := os.Getenv("SRCP_CONFIG"); p != "" {
		return p
	}

	if _, err := os.Stat("srcp.toml"); err == nil {
		return "srcp.toml"
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/srcp/srcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("SRCP_TRANSPORT", &c.Transport.Mode)
	envOverride("SRCP_PORT", &c.Transport.Port)
	envOverride("SRCP_HOST", &c.Transport.Host)
	envOverride("SRCP_CORS_ORIGINS", &c.Transport.CORSOrigins)
	envOverride("SRCP_AUTH_TOKEN", &c.Transport.AuthToken)

	envOverride("SRCP_LOG_LEVEL", &c.Log.Level)

	envOverride("SRCP_SMART_DEFAULTS_STORE_PATH", &c.SmartDefaults.StorePath)
	if v := os.Getenv("SRCP_SMART_DEFAULTS_ENABLED"); v != "" {
		c.SmartDefaults.Enabled = v == "true" || v == "1"
	}

	if v := os.Getenv("SRCP_TASK_POOL_SIZE"); v != "" {
		var size int
		if _, err := fmt.Sscanf(v, "%d", &size); err == nil && size > 0 {
			c.Task.PoolSize = size
		}
	}
	if v := os.Getenv("SRCP_ELICITATION_DEFAULT_TIMEOUT_SECONDS"); v != "" {
		var seconds int
		if _, err := fmt.Sscanf(v, "%d", &seconds); err == nil && seconds > 0 {
			c.Elicitation.DefaultTimeoutSeconds = seconds
		}
	}
}

// Validate checks that required fields are present.
func (c *Config) Validate() error {
	switch c.Transport.Mode {
	case "stdio", "http":
	default:
		return fmt.Errorf("invalid transport mode: %q (must be \"stdio\" or \"http\")", c.Transport.Mode)
	}
	if c.Task.PoolSize <= 0 {
		return fmt.Errorf("task.pool_size must be positive, got %d", c.Task.PoolSize)
	}
	return nil
}

// envOverride sets *dst to the value of the named env var, if it is non-empty.
func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
