package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/queuewise/queue-intel/internal/api/http"
	"github.com/queuewise/queue-intel/internal/api/http/handlers"
	"github.com/queuewise/queue-intel/internal/cache"
	"github.com/queuewise/queue-intel/internal/config"
	"github.com/queuewise/queue-intel/internal/events"
	"github.com/queuewise/queue-intel/internal/observability"
	"github.com/queuewise/queue-intel/internal/persistence"
	"github.com/queuewise/queue-intel/internal/repository"
	"github.com/queuewise/queue-intel/internal/service"
	"github.com/queuewise/queue-intel/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	pool := pg.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	skillRepo := repository.NewSkillRepository(pool)
	configRepo := repository.NewRoutingConfigRepository(pool)
	forecastRepo := repository.NewForecastRepository(pool)
	anomalyRepo := repository.NewAnomalyRepository(pool)
	orgRepo := repository.NewOrganizationRepository(pool)

	routingService := service.NewRoutingService(service.RoutingDependencies{
		SessionRepo: sessionRepo,
		SkillRepo:   skillRepo,
		TicketRepo:  ticketRepo,
		ConfigRepo:  configRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
	})
	forecastService := service.NewForecastService(service.ForecastDependencies{
		TicketRepo:   ticketRepo,
		ForecastRepo: forecastRepo,
		HotCache:     cache.NewRedisForecastCache(redis.Client, cfg.Forecast.CacheTTL()),
		Dispatcher:   dispatcher,
		Logger:       logger,
		Metrics:      metrics,
		HistoryDays:  cfg.Forecast.HistoryDays,
	})
	anomalyService := service.NewAnomalyService(service.AnomalyDependencies{
		OrgRepo:     orgRepo,
		TicketRepo:  ticketRepo,
		AnomalyRepo: anomalyRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
		Metrics:     metrics,
		Workers:     cfg.Detector.Workers,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notify)
	notificationService.RegisterHandlers()

	detectorWorker := worker.NewDetectorWorker(anomalyService, logger, cfg.Detector)
	go detectorWorker.Run(ctx)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Routing:  handlers.NewRoutingHandler(routingService),
		Forecast: handlers.NewForecastHandler(forecastService),
		Anomaly:  handlers.NewAnomalyHandler(anomalyService),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)
	cancel()

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
