package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ticket-analytics/internal/api/http"
	"github.com/spec-kit/ticket-analytics/internal/api/http/handlers"
	"github.com/spec-kit/ticket-analytics/internal/config"
	"github.com/spec-kit/ticket-analytics/internal/observability"
	"github.com/spec-kit/ticket-analytics/internal/persistence"
	"github.com/spec-kit/ticket-analytics/internal/repository"
	"github.com/spec-kit/ticket-analytics/internal/service"
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

	store, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer store.Close(ctx)

	if cfg.Mongo.EnsureIndexes {
		if err := persistence.EnsureIndexes(ctx, store.DatabaseHandle(), logger); err != nil {
			logger.Fatal("failed to ensure indexes", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()

	db := store.DatabaseHandle()
	classifierRepo := repository.NewClassifierRepository(db, metrics)
	if cfg.Redis.CacheEnabled {
		classifierRepo = repository.NewCachedClassifierRepository(classifierRepo, redis.Client, cfg.Redis.ClassifierTTL(), logger)
	}
	ticketRepo := repository.NewTicketRepository(db, metrics)
	historyRepo := repository.NewHistoryRepository(db, metrics)

	resolver := service.NewClassifierResolver(classifierRepo)
	queryTimeout := cfg.Mongo.QueryTimeout()

	ticketQueries := service.NewTicketQueryService(service.TicketQueryDependencies{
		TicketRepo:   ticketRepo,
		Resolver:     resolver,
		QueryTimeout: queryTimeout,
		Logger:       logger,
	})
	historyQueries := service.NewHistoryQueryService(service.HistoryQueryDependencies{
		HistoryRepo:  historyRepo,
		QueryTimeout: queryTimeout,
		Logger:       logger,
	})
	transitions := service.NewTransitionService(service.TransitionDependencies{
		HistoryRepo:  historyRepo,
		Resolver:     resolver,
		QueryTimeout: queryTimeout,
		Logger:       logger,
	})
	intakes := service.NewIntakeService(service.IntakeDependencies{
		TicketRepo:   ticketRepo,
		Resolver:     resolver,
		QueryTimeout: queryTimeout,
		Logger:       logger,
	})
	resolution := service.NewResolutionService(service.ResolutionDependencies{
		HistoryRepo:  historyRepo,
		Resolver:     resolver,
		QueryTimeout: queryTimeout,
		Logger:       logger,
	})

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(map[string]handlers.ReadinessCheck{
		"mongodb": func(ctx context.Context) error {
			return store.Client.Ping(ctx, readpref.Primary())
		},
		"redis": redis.Ping,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    healthHandler,
		Tickets:   handlers.NewTicketsHandler(ticketQueries),
		Actions:   handlers.NewActionsHandler(historyQueries),
		Analytics: handlers.NewAnalyticsHandler(transitions, intakes, resolution),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
