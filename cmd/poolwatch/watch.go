package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/edgeops/poolwatch/internal/api"
	"github.com/edgeops/poolwatch/internal/config"
	"github.com/edgeops/poolwatch/internal/monitoring"
	"github.com/edgeops/poolwatch/internal/notify"
	"github.com/edgeops/poolwatch/internal/store"
	"github.com/edgeops/poolwatch/internal/tailer"
	"github.com/edgeops/poolwatch/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Tail the access log and alert on failovers and error rates",
	RunE:  runWatch,
}

func runWatch(_ *cobra.Command, _ []string) error {
	loadEnvFiles()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	setupLogging(cfg, flagDebug || cfg.Debug)
	logger := monitoring.FromZerolog(log.Logger)
	metrics := monitoring.NewMetrics()

	var states store.Store
	if cfg.StateDBPath != "" {
		sqlStore, err := store.OpenSQLite(cfg.StateDBPath)
		if err != nil {
			return fmt.Errorf("failed to open state db: %w", err)
		}
		states = sqlStore
	} else {
		states = store.NewMemory()
	}
	defer states.Close()

	var notifier watcher.Notifier
	if cfg.WebhookURL == "" {
		log.Warn().Msg("no webhook configured, alerts will be logged only")
		notifier = notify.NewLogOnly(logger)
	} else {
		notifier = notify.NewSlack(cfg.WebhookURL, logger)
	}

	engine := watcher.NewEngine(cfg, notifier, logger, metrics, states)

	// Interrupt is the only intended termination; it exits the loop cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	lines, err := tailer.New(cfg.LogPath, logger).Follow(ctx)
	if err != nil {
		return err
	}

	if cfg.StatusAddr != "" {
		srv := api.New(cfg.StatusAddr, engine, metrics, logger)
		go func() {
			if err := srv.Start(); err != nil {
				log.Error().Err(err).Msg("status API error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("status API shutdown error")
			}
		}()
	}

	log.Info().
		Str("version", Version).
		Str("log_path", cfg.LogPath).
		Float64("threshold_pct", cfg.Threshold).
		Int("window_size", cfg.WindowSize).
		Dur("cooldown", cfg.Cooldown()).
		Bool("maintenance", cfg.Maintenance).
		Bool("webhook_configured", cfg.WebhookURL != "").
		Msg("poolwatch starting")

	if err := engine.Run(ctx, lines); err != nil {
		return err
	}

	log.Info().Msg("poolwatch stopped")
	return nil
}
