package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/kabayemedia/ticketing/internal/api/http"
	"github.com/kabayemedia/ticketing/internal/api/http/handlers"
	"github.com/kabayemedia/ticketing/internal/auth"
	"github.com/kabayemedia/ticketing/internal/config"
	"github.com/kabayemedia/ticketing/internal/events"
	"github.com/kabayemedia/ticketing/internal/observability"
	"github.com/kabayemedia/ticketing/internal/payment"
	"github.com/kabayemedia/ticketing/internal/persistence"
	"github.com/kabayemedia/ticketing/internal/qr"
	"github.com/kabayemedia/ticketing/internal/repository"
	"github.com/kabayemedia/ticketing/internal/service"
	"github.com/kabayemedia/ticketing/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	attemptRepo := repository.NewEntryAttemptRepository(pool)
	deviceRepo := repository.NewDeviceStatusRepository(redis.Client)

	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(cfg.Auth, userRepo)
	catalogService := service.NewCatalogService(eventRepo)
	purchaseService := service.NewPurchaseService(service.PurchaseDependencies{
		TicketRepo: ticketRepo,
		EventRepo:  eventRepo,
		Gateway:    payment.NewSimulatedGateway(cfg.Payment),
		Encoder:    qr.NewPassthroughEncoder(),
		Dispatcher: dispatcher,
	})
	admissionService := service.NewAdmissionService(service.AdmissionDependencies{
		TicketRepo:  ticketRepo,
		AttemptRepo: attemptRepo,
		UserRepo:    userRepo,
		EventRepo:   eventRepo,
		Dispatcher:  dispatcher,
	})
	deviceService := service.NewDeviceService(deviceRepo, cfg.Device.HeartbeatTTL(), nil)
	reportService := service.NewReportService(ticketRepo, attemptRepo, userRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Payment)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Events:         handlers.NewEventsHandler(catalogService),
		Tickets:        handlers.NewTicketsHandler(purchaseService),
		Validate:       handlers.NewValidateHandler(admissionService, metrics),
		Device:         handlers.NewDeviceHandler(deviceService),
		Admin:          handlers.NewAdminHandler(reportService),
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

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
