// Package main is the entry point for the autonomous portfolio rebalancer.
// It wires the decision components (trading gate, sizers, band evaluator,
// concentration detector, currency router) to their stores and the broker,
// then runs the evaluation cycle on a schedule behind a small HTTP API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/rebalancer/internal/clients/tradernet"
	"github.com/aristath/rebalancer/internal/config"
	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/modules/allocation"
	"github.com/aristath/rebalancer/internal/modules/currency"
	"github.com/aristath/rebalancer/internal/modules/evaluation"
	"github.com/aristath/rebalancer/internal/modules/portfolio"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/aristath/rebalancer/internal/modules/settings"
	"github.com/aristath/rebalancer/internal/modules/sizing"
	"github.com/aristath/rebalancer/internal/modules/trading"
	"github.com/aristath/rebalancer/internal/modules/universe"
	"github.com/aristath/rebalancer/internal/scheduler"
	"github.com/aristath/rebalancer/internal/server"
	"github.com/aristath/rebalancer/pkg/logger"
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

	// Databases
	configDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("config"),
		Profile: database.ProfileStandard,
		Name:    "config",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open config database")
	}
	defer configDB.Close()

	portfolioDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("portfolio"),
		Profile: database.ProfileStandard,
		Name:    "portfolio",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open portfolio database")
	}
	defer portfolioDB.Close()

	universeDB, err := database.New(database.Config{
		Path:    cfg.DatabasePath("universe"),
		Profile: database.ProfileStandard,
		Name:    "universe",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open universe database")
	}
	defer universeDB.Close()

	// Repositories
	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	allocationRepo := allocation.NewRepository(configDB.Conn(), log)
	positionRepo := portfolio.NewPositionRepository(portfolioDB.Conn(), log)
	universeRepo := universe.NewRepository(universeDB.Conn(), log)

	for name, init := range map[string]func() error{
		"settings":   settingsRepo.InitSchema,
		"allocation": allocationRepo.InitSchema,
		"positions":  positionRepo.InitSchema,
		"universe":   universeRepo.InitSchema,
	} {
		if err := init(); err != nil {
			log.Fatal().Err(err).Str("schema", name).Msg("Failed to initialize schema")
		}
	}

	// Settings DB credentials take precedence over environment
	if err := cfg.UpdateFromSettings(settingsRepo); err != nil {
		log.Warn().Err(err).Msg("Failed to load credentials from settings")
	}
	settingsService := settings.NewService(settingsRepo, log)

	// Broker and currency plumbing
	broker := tradernet.NewClient(cfg.TradernetAPIKey, cfg.TradernetAPISecret, log)
	if err := broker.Connect(); err != nil {
		log.Warn().Err(err).Msg("Broker connection failed at startup, will retry on demand")
	}
	router := currency.NewRouter(broker, log)
	exchange := currency.NewExchangeService(broker, router, log)

	cashService := portfolio.NewBrokerCashService(broker, router, log)
	snapshotRepo := portfolio.NewSnapshotRepository(portfolioDB.Conn(), positionRepo, cashService, log)
	if err := snapshotRepo.InitSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize snapshot schema")
	}
	summaryService := portfolio.NewSummaryService(positionRepo, allocationRepo, cashService, log)

	// Decision components
	gate := trading.NewDailyPnLGate(
		trading.GateConfig{
			SellHaltPct: settingsService.SellHaltPct(),
			FullHaltPct: settingsService.FullHaltPct(),
		},
		snapshotRepo,
		trading.NewTTLStatusCache(cfg.StatusCacheTTL),
		log,
	)
	detector := allocation.NewConcentrationAlertService(allocation.ConcentrationConfig{
		MaxCountryConcentration:  settingsService.MaxCountryConcentration(),
		MaxSectorConcentration:   settingsService.MaxSectorConcentration(),
		MaxPositionConcentration: settingsService.MaxPositionConcentration(),
		CountryAlertThreshold:    settingsService.CountryAlertThreshold(),
		SectorAlertThreshold:     settingsService.SectorAlertThreshold(),
		PositionAlertThreshold:   settingsService.PositionAlertThreshold(),
	}, log)
	bands := rebalancing.NewBandEvaluator()
	triggers := rebalancing.NewTriggerChecker(bands, log)
	sizerCfg := sizing.DefaultConvictionConfig()
	sizerCfg.MaxSizeFactor = settingsService.MaxSizeFactor()
	sizer := sizing.NewConvictionSizer(sizerCfg, nil, log)

	cycleService := evaluation.NewCycleService(
		gate,
		summaryService,
		detector,
		triggers,
		bands,
		sizer,
		exchange,
		router,
		universeRepo,
		universeRepo,
		settingsService,
		log,
	)
	results := evaluation.NewResultStore(50)

	// Background jobs
	sched := scheduler.New(log)
	sched.Register(scheduler.NewEvaluationJob(cycleService, results, log), cfg.CycleInterval)
	sched.Register(scheduler.NewSnapshotJob(snapshotRepo, log), time.Hour)
	sched.Register(scheduler.NewPriceHistoryJob(broker, universeRepo, universeRepo, log), 24*time.Hour)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	sched.Start(ctx)

	// HTTP surface
	srv := server.New(server.Config{
		Port: cfg.Port,
		Log:  log,
		Handlers: server.NewHandlers(
			gate,
			detector,
			summaryService,
			cycleService,
			results,
			log,
		),
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP shutdown failed")
	}
	sched.Wait()
	log.Info().Msg("Shutdown complete")
	os.Exit(0)
}
