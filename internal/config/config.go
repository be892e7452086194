// Package config loads and validates the watcher configuration.
//
// DESIGN: Environment variables are the primary surface (the agent usually
// runs inside a compose stack with a shared .env). An optional YAML file can
// pre-set any value; environment variables always win over the file, and
// every value has a working default so the agent starts with no config at
// all.
//
// FILES:
//   - config.go: Config struct, Load(), env overrides, Validate()
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither the environment nor the config file provide
// a value.
const (
	DefaultLogPath     = "/var/log/nginx/access.log"
	DefaultThreshold   = 2.0
	DefaultWindowSize  = 200
	DefaultCooldownSec = 300
)

// Config is the full watcher configuration, immutable after Load.
type Config struct {
	LogPath    string  `yaml:"log_path"`    // access log to tail
	WebhookURL string  `yaml:"webhook_url"` // Slack incoming webhook; empty disables delivery
	Threshold  float64 `yaml:"threshold"`   // error-rate alert threshold, percent
	WindowSize int     `yaml:"window_size"` // sliding window capacity, requests

	CooldownSec int  `yaml:"cooldown_sec"` // min seconds between firings per alert class
	Maintenance bool `yaml:"maintenance"`  // suppress all deliveries
	Debug       bool `yaml:"debug"`        // debug logging

	StatusAddr  string `yaml:"status_addr"`   // bind address for the status API; empty disables
	StateDBPath string `yaml:"state_db_path"` // SQLite gate-state file; empty keeps state in memory

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error
	LogFormat string `yaml:"log_format"` // console, json
}

// Cooldown returns the alert cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSec) * time.Second
}

// expandEnvWithDefaults expands environment variables with support for
// default values. Supports both ${VAR} and ${VAR:-default} syntax.
func expandEnvWithDefaults(s string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

// Load builds the configuration: defaults, then the optional YAML file at
// path (empty path skips the file), then environment overrides, then
// validation.
func Load(path string) (*Config, error) {
	cfg := &Config{
		LogPath:     DefaultLogPath,
		Threshold:   DefaultThreshold,
		WindowSize:  DefaultWindowSize,
		CooldownSec: DefaultCooldownSec,
		LogFormat:   "console",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
		}
		// Expand environment variables (supports ${VAR:-default} syntax)
		expanded := expandEnvWithDefaults(string(data))
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// The variable names match the original compose deployment so existing .env
// files keep working.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("NGINX_LOG_PATH"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("SLACK_WEBHOOK_URL"); v != "" {
		c.WebhookURL = v
	}
	if v := os.Getenv("ERROR_RATE_THRESHOLD"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid ERROR_RATE_THRESHOLD '%s': %w", v, err)
		}
		c.Threshold = f
	}
	if v := os.Getenv("WINDOW_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WINDOW_SIZE '%s': %w", v, err)
		}
		c.WindowSize = n
	}
	if v := os.Getenv("ALERT_COOLDOWN_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid ALERT_COOLDOWN_SEC '%s': %w", v, err)
		}
		c.CooldownSec = n
	}
	if v := os.Getenv("MAINTENANCE_MODE"); v != "" {
		c.Maintenance = parseBool(v)
	}
	if v := os.Getenv("WATCHER_DEBUG"); v != "" {
		c.Debug = parseBool(v)
	}
	if v := os.Getenv("STATUS_ADDR"); v != "" {
		c.StatusAddr = v
	}
	if v := os.Getenv("STATE_DB_PATH"); v != "" {
		c.StateDBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	return nil
}

// parseBool accepts the original deployment's truthy spellings.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.LogPath == "" {
		return fmt.Errorf("log_path is required")
	}
	if c.WindowSize < 1 {
		return fmt.Errorf("invalid window_size: %d (must be >= 1)", c.WindowSize)
	}
	if c.Threshold < 0 {
		return fmt.Errorf("invalid threshold: %g (must be >= 0)", c.Threshold)
	}
	if c.CooldownSec < 0 {
		return fmt.Errorf("invalid cooldown_sec: %d (must be >= 0)", c.CooldownSec)
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("invalid log_format: %s (must be console or json)", c.LogFormat)
	}
	return nil
}
