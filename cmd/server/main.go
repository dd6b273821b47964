package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/eventmate-api/internal/config"
	"github.com/iliyamo/eventmate-api/internal/database"
	"github.com/iliyamo/eventmate-api/internal/gateway"
	"github.com/iliyamo/eventmate-api/internal/handler"
	"github.com/iliyamo/eventmate-api/internal/logger"
	"github.com/iliyamo/eventmate-api/internal/queue"
	"github.com/iliyamo/eventmate-api/internal/repository"
	"github.com/iliyamo/eventmate-api/internal/router"
	"github.com/iliyamo/eventmate-api/internal/service"
)

func main() {
	migrate := flag.Bool("migrate", false, "apply the database schema before serving")
	consume := flag.Bool("consume", false, "run the activity consumer alongside the API")
	flag.Parse()

	cfg := config.Load()
	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(database.Options{
		User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
	})
	if err != nil {
		zl.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()
	if *migrate {
		if err := database.Migrate(ctx, db); err != nil {
			zl.Fatal("migration failed", zap.Error(err))
		}
		zl.Info("schema applied")
	}
	st := repository.NewStore(db)

	var pub queue.Publisher = queue.Nop{}
	if cfg.RabbitURL != "" {
		amqpPub := queue.NewAMQPPublisher(cfg.RabbitURL, zl)
		defer amqpPub.Close()
		pub = amqpPub
	} else {
		zl.Warn("RABBITMQ_URL not set; activity messages are discarded")
	}
	if *consume {
		if cfg.RabbitURL == "" {
			zl.Fatal("-consume requires RABBITMQ_URL")
		}
		c := &queue.ActivityConsumer{URL: cfg.RabbitURL, Dir: cfg.ActivityDir, Log: zl}
		go func() {
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				zl.Error("activity consumer stopped", zap.Error(err))
			}
		}()
	}

	stripe := gateway.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret, nil)

	auth := service.NewAuthService(st, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	}, zl)
	if err := auth.SeedAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		zl.Fatal("admin seed failed", zap.Error(err))
	}
	payments := service.NewPaymentService(st, stripe, pub, zl, service.PaymentConfig{
		Currency:  cfg.PaymentCurrency,
		ClientURL: cfg.ClientURL,
	})

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(auth, zl),
		Users:        handler.NewUserHandler(service.NewUserService(st), zl),
		EventTypes:   handler.NewEventTypeHandler(service.NewEventTypeService(st), zl),
		Events:       handler.NewEventHandler(service.NewEventService(st), zl),
		Participants: handler.NewParticipationHandler(service.NewParticipationService(st, pub, zl), zl),
		Payments:     handler.NewPaymentHandler(payments, stripe, zl),
		Reviews:      handler.NewReviewHandler(service.NewReviewService(st), zl),
		Friends:      handler.NewFriendHandler(service.NewFriendService(st), zl),
		Admin:        handler.NewAdminHandler(service.NewAdminService(st), service.NewHostApplicationService(st), zl),
	}

	rdb := config.NewRedisClient(zl)
	if rdb != nil {
		defer rdb.Close()
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, h, router.Options{
		JWTSecret: cfg.JWTSecret,
		DB:        db,
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Log:       zl,
	})

	addr := ":" + cfg.Port
	go func() {
		zl.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
}
