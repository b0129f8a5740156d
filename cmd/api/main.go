package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/local1284/membership/internal/config"
	"github.com/local1284/membership/internal/db"
	"github.com/local1284/membership/internal/events"
	apphttp "github.com/local1284/membership/internal/http"
	"github.com/local1284/membership/internal/http/handlers"
	"github.com/local1284/membership/internal/metrics"
	"github.com/local1284/membership/internal/middleware"
	"github.com/local1284/membership/internal/ratelimit"
	"github.com/local1284/membership/internal/repositories"
	"github.com/local1284/membership/internal/services"
	"github.com/local1284/membership/internal/session"
	"github.com/local1284/membership/migrations"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	if err := cfg.Validate(log); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	if err := session.AssertCookieSecurity(cfg); err != nil {
		log.Fatal("insecure session configuration", zap.Error(err))
	}

	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Sessions, CSRF and rate limiting share the Redis backend.
	sessionStorage := session.NewRedisStorage(rdb)
	sessionStore := session.NewStore(cfg, sessionStorage)
	limiter := ratelimit.New(ratelimit.NewRedisCounterStore(rdb), cfg)

	// Repositories
	userRepo := repositories.NewUserRepo(pool)
	memberRepo := repositories.NewMemberRepo(pool)
	newsRepo := repositories.NewNewsRepo(pool)
	smsRepo := repositories.NewSMSRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Services
	auditTrail := services.NewAuditTrail(auditRepo, publisher, log)
	userService := services.NewUserService(userRepo, auditTrail, cfg, log)
	memberService := services.NewMemberService(memberRepo, auditTrail, log)
	newsService := services.NewNewsService(newsRepo, auditTrail, log)
	smsClient := services.NewHTTPSMSClient(cfg, log)
	smsService := services.NewSMSService(memberRepo, smsRepo, smsClient, auditTrail, cfg, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, sessionStore, cfg, log)
	memberHandler := handlers.NewMemberHandler(memberService, log)
	newsHandler := handlers.NewNewsHandler(newsService, log)
	adminUserHandler := handlers.NewAdminUserHandler(userService, log)
	smsHandler := handlers.NewSMSHandler(smsService, log)
	auditHandler := handlers.NewAuditHandler(auditRepo, log)
	adminActionHandler := handlers.NewAdminActionHandler(auditTrail, log)
	healthHandler := handlers.NewHealthHandler(pool, rdb)
	auditFeed := handlers.NewAuditFeedHub(subscriber, log)

	auditFeed.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName: "membership-api",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "Internal error."
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				message = e.Message
			}
			return middleware.RespondError(c, code, message)
		},
	})

	apphttp.SetupRouter(app, cfg, log, sessionStore, sessionStorage, limiter,
		authHandler, memberHandler, newsHandler, adminUserHandler,
		smsHandler, auditHandler, adminActionHandler, healthHandler, auditFeed)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
