package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/adurand/portanalyzer/internal/clients/yahoo"
	"github.com/adurand/portanalyzer/internal/config"
	"github.com/adurand/portanalyzer/internal/database"
	"github.com/adurand/portanalyzer/internal/modules/calculations"
	"github.com/adurand/portanalyzer/internal/modules/concentration"
	"github.com/adurand/portanalyzer/internal/modules/optimization"
	"github.com/adurand/portanalyzer/internal/modules/portfolio"
	"github.com/adurand/portanalyzer/internal/modules/risk"
	"github.com/adurand/portanalyzer/internal/modules/universe"
	"github.com/adurand/portanalyzer/internal/scheduler"
	"github.com/adurand/portanalyzer/internal/server"
	"github.com/adurand/portanalyzer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("configuration error: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.DevMode})
	logger.SetGlobalLogger(log)
	log.Info().Int("port", cfg.Port).Bool("dev_mode", cfg.DevMode).Msg("Starting portanalyzer")

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate database")
	}

	// Shared infrastructure
	conn := db.Conn()
	cache := calculations.NewCache(conn, log)
	yahooClient := yahoo.New(cfg.MarketDataBaseURL, log)
	historyDB := universe.NewHistoryDB(conn, log)

	// Services
	universeSvc := universe.NewService(yahooClient, historyDB, conn, log)
	positionRepo := portfolio.NewPositionRepository(conn, log)
	portfolioSvc := portfolio.NewService(positionRepo, universeSvc, log)
	importer := portfolio.NewImporter(positionRepo, log)

	riskAnalyzer := risk.NewAnalyzer(risk.Config{
		RiskFreeRate:        cfg.RiskFreeRate,
		AssumedMarketReturn: cfg.AssumedMarketReturn,
		TradingDaysPerYear:  cfg.TradingDaysPerYear,
	}, universeSvc, log)
	riskSvc := risk.NewService(riskAnalyzer, portfolioSvc, universeSvc, cfg.MarketIndexSymbol, 365, log)

	optimizationSvc := optimization.NewService(universeSvc, cache, optimization.Config{
		RiskFreeRate:       cfg.RiskFreeRate,
		TradingDaysPerYear: cfg.TradingDaysPerYear,
		LookbackDays:       365,
	}, log)

	// Background jobs
	sched := scheduler.New(log)
	refreshJob := portfolio.NewPriceRefreshJob(portfolioSvc, log)
	if err := sched.AddJob("0 */15 * * * *", 5*time.Minute, refreshJob); err != nil {
		log.Fatal().Err(err).Msg("Failed to register price refresh job")
	}
	if err := sched.AddJob("0 0 3 * * *", time.Minute, cacheMaintenanceJob{cache: cache}); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache maintenance job")
	}
	sched.Start()
	defer sched.Stop()

	srv := server.New(server.Config{
		Log:     log,
		Port:    cfg.Port,
		DevMode: cfg.DevMode,

		PortfolioHandler:     portfolio.NewHandler(portfolioSvc, importer, log),
		ConcentrationHandler: concentration.NewHandler(portfolioSvc, log),
		RiskHandler:          risk.NewHandler(riskSvc, log),
		OptimizationHandler:  optimization.NewHandler(optimizationSvc, portfolioSvc, log),
		UniverseHandler:      universe.NewHandler(universeSvc, log),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	case sig := <-stop:
		log.Info().Str("signal", sig.String()).Msg("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
		}
	}
}

// cacheMaintenanceJob prunes expired calculation cache entries nightly.
type cacheMaintenanceJob struct {
	cache *calculations.Cache
}

func (j cacheMaintenanceJob) Name() string { return "cache_prune" }

func (j cacheMaintenanceJob) Run(context.Context) error { return j.cache.Prune() }
