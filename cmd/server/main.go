// Package main is the entry point for the qbench entanglement benchmarking
// service. It builds multi-qubit entanglement circuits, simulates them exactly
// and by shot sampling, scores the results, and persists signed benchmark
// reports.
//
// Startup sequence:
// 1. Load configuration from environment variables (.env file)
// 2. Initialize structured logging
// 3. Open the reports database and apply schema migrations
// 4. Wire clients, simulators, the run service, and HTTP handlers
// 5. Start the cron scheduler for periodic benchmark runs (if configured)
// 6. Start the HTTP server and wait for a shutdown signal
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/quantalab/qbench/internal/analysis"
	"github.com/quantalab/qbench/internal/clients/anchor"
	"github.com/quantalab/qbench/internal/clients/correction"
	"github.com/quantalab/qbench/internal/config"
	"github.com/quantalab/qbench/internal/database"
	"github.com/quantalab/qbench/internal/modules/charts"
	"github.com/quantalab/qbench/internal/modules/runs"
	runshandlers "github.com/quantalab/qbench/internal/modules/runs/handlers"
	"github.com/quantalab/qbench/internal/scheduler"
	"github.com/quantalab/qbench/internal/server"
	"github.com/quantalab/qbench/internal/simulator"
	"github.com/quantalab/qbench/pkg/logger"
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

	log.Info().Msg("Starting qbench")

	// Reports database (append-only run history)
	reportsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "reports.db"),
		Profile: database.ProfileLedger,
		Name:    "reports",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open reports database")
	}
	defer reportsDB.Close()

	if err := reportsDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate reports database")
	}

	repository := runs.NewRepository(reportsDB.Conn())

	// External collaborators are optional: an empty URL disables the client.
	// The concrete nil checks matter here; assigning a nil *Client to an
	// interface field would make it non-nil.
	var anchorer runs.Anchorer
	if cfg.AnchorURL != "" {
		anchorer = anchor.NewClient(cfg.AnchorURL, log)
		log.Info().Str("url", cfg.AnchorURL).Msg("Report anchoring enabled")
	}

	var correctionProvider analysis.CorrectionProvider
	if cfg.CorrectionURL != "" {
		correctionProvider = correction.NewClient(cfg.CorrectionURL, log)
		log.Info().Str("url", cfg.CorrectionURL).Msg("Error-correction metrics enabled")
	}

	exactSimulator := simulator.NewExactSimulator(cfg.MaxQubits, log)
	estimator := analysis.NewFidelityEstimator(correctionProvider, log)

	runService := runs.NewService(runs.Config{
		DefaultShots:     cfg.DefaultShots,
		DefaultGroupSize: cfg.DefaultGroupSize,
	}, exactSimulator, estimator, anchorer, repository, log)

	chartsService := charts.NewService(log)
	runHandlers := runshandlers.NewHandler(runService, repository, chartsService, cfg.MaxQubits, log)

	srv := server.New(server.Config{
		Log:         log,
		Config:      cfg,
		ReportsDB:   reportsDB,
		RunHandlers: runHandlers,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
	})

	// Periodic benchmark job
	var cronScheduler *cron.Cron
	if cfg.BenchmarkCron != "" {
		cronScheduler = cron.New()
		job := scheduler.NewBenchmarkJob(runService, runs.Request{
			Label:    "scheduled-benchmark",
			Qubits:   cfg.BenchmarkQubits,
			Schedule: "cascade",
			Shots:    cfg.BenchmarkShots,
		}, log)
		if _, err := cronScheduler.AddJob(cfg.BenchmarkCron, job); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.BenchmarkCron).Msg("Invalid benchmark cron expression")
		}
		cronScheduler.Start()
		log.Info().Str("cron", cfg.BenchmarkCron).Int("qubits", cfg.BenchmarkQubits).Msg("Benchmark scheduler started")
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	if cronScheduler != nil {
		cronCtx := cronScheduler.Stop()
		select {
		case <-cronCtx.Done():
		case <-time.After(30 * time.Second):
			log.Warn().Msg("Timed out waiting for running benchmark job")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}
