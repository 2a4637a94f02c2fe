package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/virtual-card-service/internal/api/http"
	"github.com/spec-kit/virtual-card-service/internal/api/http/handlers"
	"github.com/spec-kit/virtual-card-service/internal/auth"
	"github.com/spec-kit/virtual-card-service/internal/config"
	"github.com/spec-kit/virtual-card-service/internal/events"
	"github.com/spec-kit/virtual-card-service/internal/observability"
	"github.com/spec-kit/virtual-card-service/internal/persistence"
	"github.com/spec-kit/virtual-card-service/internal/service"
	"github.com/spec-kit/virtual-card-service/internal/store"
	"github.com/spec-kit/virtual-card-service/internal/worker"
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

	blob, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open snapshot backend", zap.Error(err))
	}
	defer blob.Close()

	st, err := store.Open(ctx, blob, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService, err := service.NewAuthService(*cfg, st, dispatcher)
	if err != nil {
		logger.Fatal("failed to init auth service", zap.Error(err))
	}
	ledgerService := service.NewLedgerService(st, dispatcher)
	messagingService := service.NewMessagingService(st, dispatcher)
	notificationService := service.NewNotificationService(st, dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), st)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, blob),
		Auth:           handlers.NewAuthHandler(authService),
		User:           handlers.NewUserHandler(ledgerService, messagingService, notificationService),
		Admin:          handlers.NewAdminHandler(ledgerService, messagingService, notificationService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.BlobStore, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		return persistence.NewPostgresBlobStore(ctx, cfg.Postgres, cfg.Store.SnapshotKey, logger)
	case config.StoreBackendMemory:
		logger.Warn("using in-memory snapshot backend; state will not survive restarts")
		return persistence.NewMemoryBlobStore(), nil
	default:
		return persistence.NewRedisBlobStore(cfg.Redis, cfg.Store.SnapshotKey, logger), nil
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
