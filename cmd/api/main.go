package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/tashkhees/support-portal/internal/api/http"
	"github.com/tashkhees/support-portal/internal/api/http/handlers"
	"github.com/tashkhees/support-portal/internal/auth"
	"github.com/tashkhees/support-portal/internal/config"
	"github.com/tashkhees/support-portal/internal/events"
	"github.com/tashkhees/support-portal/internal/mail"
	"github.com/tashkhees/support-portal/internal/observability"
	"github.com/tashkhees/support-portal/internal/persistence"
	"github.com/tashkhees/support-portal/internal/realtime"
	"github.com/tashkhees/support-portal/internal/repository"
	"github.com/tashkhees/support-portal/internal/service"
	"github.com/tashkhees/support-portal/internal/worker"
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

	if err := os.MkdirAll(cfg.Upload.Dir, 0o755); err != nil {
		logger.Fatal("failed to create upload dir", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	licenseRepo := repository.NewLicenseRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	historyRepo := repository.NewStatusHistoryRepository(pool)
	replyRepo := repository.NewReplyRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	hub := realtime.NewHub(logger, redis.Client)
	go hub.Run(ctx)

	mailer := mail.NewSender(cfg.SMTP, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	licenseService := service.NewLicenseService(licenseRepo, logger)
	authService := service.NewAuthService(service.AuthServiceDeps{
		Users:      userRepo,
		Licenses:   licenseService,
		Tokens:     tokens,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	ticketService := service.NewTicketService(service.TicketServiceDeps{
		Tickets:    ticketRepo,
		History:    historyRepo,
		Replies:    replyRepo,
		Users:      userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	replyService := service.NewReplyService(replyRepo, ticketRepo, dispatcher, logger)
	directoryService := service.NewDirectoryService(userRepo, ticketRepo)
	notificationService := service.NewNotificationService(service.NotificationServiceDeps{
		Notifications: notificationRepo,
		Users:         userRepo,
		Hub:           hub,
		Mailer:        mailer,
		Logger:        logger,
	})
	worker.StartNotificationWorker(notificationService, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(tokens, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxSizeBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, time.Duration(cfg.App.RequestTimeoutSeconds)*time.Second)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Licenses:       handlers.NewLicensesHandler(licenseService),
		Tickets:        handlers.NewTicketsHandler(ticketService, replyService, cfg.Upload),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Users:          handlers.NewUsersHandler(directoryService),
		AuthMiddleware: authMiddleware,
		Hub:            hub,
		Logger:         logger,
		UploadDir:      cfg.Upload.Dir,
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
