// Package main is the entry point for the Fluxo financial analytics service.
// It serves cash-flow projections, alerts, KPIs, concentration analysis,
// result statements, what-if simulations and ranked insights over the
// tenants' payable/receivable ledgers.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fluxohq/fluxo/internal/config"
	"github.com/fluxohq/fluxo/internal/database"
	"github.com/fluxohq/fluxo/internal/modules/ledger"
	"github.com/fluxohq/fluxo/internal/scheduler"
	"github.com/fluxohq/fluxo/internal/server"
	"github.com/fluxohq/fluxo/internal/services"
	"github.com/fluxohq/fluxo/pkg/logger"
)

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables
// 2. Initializes logging
// 3. Opens the ledger and cache databases and initializes their schemas
// 4. Wires the snapshot loader, dashboard cache and analytics service
// 5. Starts the HTTP server and the cron-based dashboard refresher
// 6. Waits for a shutdown signal and shuts everything down gracefully
//
// The service uses a 2-database architecture:
// - ledger.db: tenant financial records (payables, receivables, dictionaries, balances)
// - cache.db: ephemeral pre-computed dashboards, rebuildable at any time
func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
	})

	log.Info().Msg("Starting Fluxo")

	// Ledger database: safety first, this holds the financial records.
	ledgerDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "ledger.db"),
		Profile: database.ProfileLedger,
		Name:    "ledger",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open ledger database")
	}
	defer ledgerDB.Close()

	// Cache database: speed first, contents can be rebuilt at any time.
	cacheDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "cache.db"),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open cache database")
	}
	defer cacheDB.Close()

	if err := ledger.InitSchema(ledgerDB.Conn()); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ledger schema")
	}

	dashboardCache := services.NewDashboardCache(cacheDB.Conn(), log)
	if err := dashboardCache.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache schema")
	}

	loader := ledger.NewSnapshotLoader(ledgerDB.Conn(), log)
	analytics := services.NewAnalyticsService(loader, dashboardCache, cfg.ProjectionDays, log)

	srv := server.New(server.Config{
		Log:       log,
		LedgerDB:  ledgerDB,
		CacheDB:   cacheDB,
		Config:    cfg,
		Loader:    loader,
		Analytics: analytics,
	})

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Nightly dashboard refresh keeps the first read of the day warm.
	sched := scheduler.New(log)
	refreshJob := scheduler.NewRefreshDashboardsJob(analytics, log)
	if err := sched.Register(cfg.RefreshSchedule, refreshJob); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.RefreshSchedule).Msg("Failed to register refresh job")
	}
	sched.Start()
	defer sched.Stop()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Fluxo stopped")
}
