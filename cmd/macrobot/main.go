// Package main provides the entry point for the macrobot MCP server.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/raphaelgruber/macrobot-go/internal/capture"
	"github.com/raphaelgruber/macrobot-go/internal/config"
	"github.com/raphaelgruber/macrobot-go/internal/db"
	"github.com/raphaelgruber/macrobot-go/internal/export"
	"github.com/raphaelgruber/macrobot-go/internal/metrics"
	"github.com/raphaelgruber/macrobot-go/internal/models"
	"github.com/raphaelgruber/macrobot-go/internal/server"
	"github.com/raphaelgruber/macrobot-go/internal/store"
	"github.com/raphaelgruber/macrobot-go/internal/synthesis"
	"github.com/raphaelgruber/macrobot-go/internal/tools"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	// Setup logger (dual output: stderr text + file JSON)
	logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer cleanup()

	logger.Info("macrobot starting",
		"version", version,
		"persist", cfg.Persist,
		"synth_provider", cfg.SynthProvider,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Synthesis strategy: seeded rules by default, LLM-backed when configured
	strategy, err := synthesis.NewStrategy(cfg, logger)
	if err != nil {
		logger.Error("failed to create synthesis strategy", "error", err)
		os.Exit(1)
	}
	engine := synthesis.NewEngine(strategy, logger)
	profiles := store.New(engine, store.WithLogger(logger))

	// Optional persistence
	var dbClient *db.Client
	if cfg.Persist {
		dbClient, err = db.NewClient(ctx, db.Config{
			URL:       cfg.DBURL,
			Namespace: cfg.DBNamespace,
			Database:  cfg.DBDatabase,
			Username:  cfg.DBUser,
			Password:  cfg.DBPass,
			AuthLevel: cfg.DBAuthLevel,
		}, logger)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer func() {
			logger.Info("closing database connection")
			_ = dbClient.Close(ctx)
		}()

		if err := dbClient.InitSchema(ctx); err != nil {
			logger.Error("failed to initialize database schema", "error", err)
			os.Exit(1)
		}
		if err := restoreProfiles(ctx, dbClient, profiles); err != nil {
			logger.Error("failed to restore profiles", "error", err)
			os.Exit(1)
		}
	}

	// Capture bridge for screen and microphone feeds
	var media capture.MediaSource
	if cfg.BridgeURL != "" {
		media = capture.NewBridge(cfg.BridgeURL, logger)
	}

	collector := metrics.NewCollector()

	srv := server.New(version, logger, collector)
	srv.Setup()

	deps := &tools.Dependencies{
		Store:   profiles,
		DB:      dbClient,
		Media:   media,
		Metrics: collector,
		Logger:  logger,

		FrameInterval: cfg.FrameInterval,
	}
	tools.RegisterAll(srv.MCPServer(), deps)

	logger.Info("server ready, awaiting connections")

	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

// restoreProfiles loads persisted profiles into the store.
func restoreProfiles(ctx context.Context, dbClient *db.Client, profiles *store.Store) error {
	records, err := dbClient.LoadProfiles(ctx)
	if err != nil {
		return err
	}
	loaded := make([]*models.Profile, 0, len(records))
	for _, rec := range records {
		p, err := export.RestoreProfile(rec.ID, rec.Created, rec.Updated, &rec.Doc)
		if err != nil {
			return err
		}
		loaded = append(loaded, p)
	}
	profiles.Restore(loaded)
	return nil
}
