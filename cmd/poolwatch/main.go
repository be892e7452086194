// Package main is the entry point for poolwatch.
package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edgeops/poolwatch/internal/config"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:          "poolwatch",
	Short:        "Access-log watcher with failover and error-rate alerts",
	Long:         "poolwatch tails an nginx access log, detects backend pool failovers and elevated upstream 5xx error rates, and posts rate-limited alerts to a Slack-compatible webhook.",
	SilenceUsage: true,
	RunE:         runWatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file (env vars override it)")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "enable debug logging")
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFiles loads .env from standard locations.
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	// Try loading from ~/.config/poolwatch/.env first
	configEnv := filepath.Join(homeDir, ".config", "poolwatch", ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Also load local .env (can override)
	_ = godotenv.Load()
}

// setupLogging configures zerolog from the loaded configuration.
func setupLogging(cfg *config.Config, debug bool) {
	if cfg.LogFormat != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if cfg.LogLevel != "" {
		if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
			level = parsed
		}
	}
	if debug {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
