// Package main is the entry point for the CapScope analytics server.
// The application ingests monthly return histories for market-cap quintile
// groups, computes rolling performance metrics and composite scores, and
// serves them over an HTTP API alongside rendered comparison charts.
//
// Startup sequence:
//  1. Load configuration from environment variables (.env supported)
//  2. Initialize structured logging
//  3. Open the data and cache databases and run migrations
//  4. Ingest group CSV files (a missing dataset is tolerated at startup)
//  5. Register the scheduled dataset refresh job
//  6. Start the HTTP server and wait for a shutdown signal
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/quantrove/capscope/internal/config"
	"github.com/quantrove/capscope/internal/database"
	"github.com/quantrove/capscope/internal/domain"
	"github.com/quantrove/capscope/internal/modules/charts"
	"github.com/quantrove/capscope/internal/modules/historical"
	"github.com/quantrove/capscope/internal/modules/metrics"
	"github.com/quantrove/capscope/internal/modules/scoring"
	"github.com/quantrove/capscope/internal/modules/snapshots"
	"github.com/quantrove/capscope/internal/scheduler"
	"github.com/quantrove/capscope/internal/server"
	"github.com/quantrove/capscope/internal/services"
	"github.com/quantrove/capscope/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting CapScope")

	// Databases: durable observations and ephemeral snapshot cache.
	dataDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "data.db"),
		Profile: database.ProfileStandard,
		Name:    "data",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data database")
	}
	defer dataDB.Close()

	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	repo := historical.NewRepository(dataDB.Conn(), log)
	if err := repo.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate data database")
	}

	cache := snapshots.NewCache(cacheDB.Conn(), cfg.SnapshotTTL, log)
	if err := cache.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate cache database")
	}

	// Domain services.
	loader := historical.NewLoader(cfg.DataDir, cfg.MaxObservationDate, log)
	historicalSvc := historical.NewService(loader, repo, log)

	scorer := scoring.NewScorer(log)
	metricsSvc := metrics.NewService(scorer, log)
	chartsSvc := charts.NewService(log)
	analysisSvc := services.NewAnalysisService(historicalSvc, metricsSvc, cache, log)

	// Initial ingest. Missing CSVs are not fatal: the API reports the
	// no-data condition until the refresh job finds files.
	if err := historicalSvc.Refresh(); err != nil {
		if errors.Is(err, domain.ErrNoData) {
			log.Warn().Str("data_dir", cfg.DataDir).Msg("No group CSV files found, starting with empty dataset")
		} else {
			log.Fatal().Err(err).Msg("Failed to ingest group CSV files")
		}
	}

	// Scheduled dataset refresh.
	refreshJob := scheduler.NewRefreshJob(historicalSvc, cache, log)
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
	}
	if err := sched.AddJob("@hourly", scheduler.NewPurgeJob(cache, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register snapshot purge job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:        log,
		Config:     cfg,
		DataDB:     dataDB,
		CacheDB:    cacheDB,
		Historical: historicalSvc,
		Analysis:   analysisSvc,
		Charts:     chartsSvc,
		RefreshJob: refreshJob,
	})

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for shutdown signal or server failure.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
	case err := <-serverErr:
		log.Error().Err(err).Msg("HTTP server failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
	}

	log.Info().Msg("CapScope stopped")
}
