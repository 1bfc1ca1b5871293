package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/oakmere-data/enricher/internal/auth"
	"github.com/oakmere-data/enricher/internal/config"
	"github.com/oakmere-data/enricher/internal/contacts"
	"github.com/oakmere-data/enricher/internal/database"
	"github.com/oakmere-data/enricher/internal/domains"
	"github.com/oakmere-data/enricher/internal/handler"
	"github.com/oakmere-data/enricher/internal/httpx"
	"github.com/oakmere-data/enricher/internal/logger"
	middlewarepkg "github.com/oakmere-data/enricher/internal/middleware"
	"github.com/oakmere-data/enricher/internal/repository"
	"github.com/oakmere-data/enricher/internal/router"
	"github.com/oakmere-data/enricher/internal/schedule"
	"github.com/oakmere-data/enricher/internal/scoring"
	"github.com/oakmere-data/enricher/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("failed to load config: %v", err)
	}

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		stdlog.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer startCancel()

	pool, err := database.Connect(startCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	operatorsRepo := repository.NewPGXOperatorsRepository(pool)
	recordsRepo := repository.NewPGXRecordsRepository(pool)
	runsRepo := repository.NewPGXRunsRepository(pool)

	authService := service.NewAuthService(operatorsRepo, jwtManager, log)
	if err := authService.EnsureBootstrapAdmin(startCtx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		log.Fatal("failed to ensure bootstrap admin", zap.Error(err))
	}

	weights := scoring.DefaultWeights()
	if cfg.Enrich.BrandThreshold > 0 {
		weights.BrandThreshold = cfg.Enrich.BrandThreshold
	}

	verifier := domains.NewVerifier(
		domains.WithResolver(httpx.NewPinnedResolver(cfg.Enrich.DNSServers)),
		domains.WithHeadClient(httpx.NewClient(cfg.Enrich.HeadTimeout, 2)),
		domains.WithGetClient(httpx.NewClient(cfg.Enrich.GetTimeout, 2)),
		domains.WithDNSTimeout(cfg.Enrich.DNSTimeout),
	)
	selector := domains.NewSelector(verifier, log,
		domains.WithWeights(weights),
		domains.WithCandidateCap(cfg.Enrich.CandidateCap),
		domains.WithBatchSize(cfg.Enrich.VerifyBatchSize),
		domains.WithBatchPause(cfg.Enrich.BatchPause),
	)
	extractor := contacts.NewExtractor(httpx.NewClient(cfg.Enrich.FetchTimeout, 3))
	discoverer := contacts.NewDiscoverer(extractor, cfg.Enrich.CrawlPause, log)

	enricher := service.NewEnricher(selector, discoverer, weights, log)
	runner := service.NewRunner(recordsRepo, runsRepo, enricher,
		cfg.Enrich.BatchSize, cfg.Enrich.DayWindow, cfg.Enrich.DefaultRegion, log)

	scheduler := schedule.New(runner, cfg.Enrich.Cron, log)
	if err := scheduler.Start(); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log))
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, router.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Records:   handler.NewRecordsHandler(service.NewRecordsService(recordsRepo)),
		Enrich:    handler.NewEnrichHandler(enricher),
		Runs:      handler.NewRunsHandler(runner, runsRepo),
		Operators: handler.NewOperatorsHandler(service.NewOperatorService(operatorsRepo)),
	})

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()
	log.Info("server started", zap.String("port", cfg.Port), zap.String("cron", cfg.Enrich.Cron))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			scheduler.Stop()
			log.Fatal("server error", zap.Error(err))
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	scheduler.Stop()
	log.Info("shutdown complete")
}
