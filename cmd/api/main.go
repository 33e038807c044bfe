package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/campuskit/coursedesk/internal/api/http"
	"github.com/campuskit/coursedesk/internal/api/http/handlers"
	"github.com/campuskit/coursedesk/internal/auth"
	"github.com/campuskit/coursedesk/internal/bootstrap"
	"github.com/campuskit/coursedesk/internal/config"
	"github.com/campuskit/coursedesk/internal/events"
	"github.com/campuskit/coursedesk/internal/observability"
	"github.com/campuskit/coursedesk/internal/persistence"
	"github.com/campuskit/coursedesk/internal/repository"
	"github.com/campuskit/coursedesk/internal/service"
	"github.com/campuskit/coursedesk/internal/worker"
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
	courseRepo := repository.NewCourseRepository(pool)
	mediumStore := repository.NewMediumStore(pool)
	ticketRepo := repository.NewTicketRepository(pool, mediumStore)
	commentRepo := repository.NewCommentRepository(pool)
	markRepo := repository.NewBootstrapMarkRepository(pool)

	sessions := auth.NewSessionStore(redis.Client)
	dispatcher := events.NewInMemoryDispatcher()

	identityService := service.NewIdentityService(*cfg, service.IdentityDependencies{
		UserRepo:   userRepo,
		Sessions:   sessions,
		Dispatcher: dispatcher,
	})
	courseService := service.NewCourseService(courseRepo, userRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  ticketRepo,
		MediumStore: mediumStore,
		CommentRepo: commentRepo,
		CourseRepo:  courseRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
	})

	mailer := service.NewSMTPMailer(cfg.SMTP)
	notificationService := service.NewNotificationService(dispatcher, userRepo, mailer, logger, cfg.App.PublicURL)
	worker.StartNotificationWorker(notificationService)

	if err := bootstrap.Run(ctx, *cfg, bootstrap.Dependencies{
		Marks:   markRepo,
		Users:   userRepo,
		Courses: courseRepo,
	}, logger); err != nil {
		logger.Fatal("bootstrap failed", zap.Error(err))
	}

	authMiddleware := auth.NewAuthMiddleware(identityService.TokenManager(), sessions, userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{DisableStartupMessage: cfg.App.Env == "production"})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(identityService),
		Users:          handlers.NewUsersHandler(identityService),
		Courses:        handlers.NewCoursesHandler(courseService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
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
