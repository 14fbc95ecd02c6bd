package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/seatrelay/seatrelay-backend/api/routes"
	"github.com/seatrelay/seatrelay-backend/internal/listings"
	"github.com/seatrelay/seatrelay-backend/internal/notifications"
	"github.com/seatrelay/seatrelay-backend/internal/payments"
	"github.com/seatrelay/seatrelay-backend/internal/purchases"
	gatewaywebhook "github.com/seatrelay/seatrelay-backend/internal/webhooks/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/config"
	"github.com/seatrelay/seatrelay-backend/pkg/db"
	"github.com/seatrelay/seatrelay-backend/pkg/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
	"github.com/seatrelay/seatrelay-backend/pkg/metrics"
	"github.com/seatrelay/seatrelay-backend/pkg/migrate"
	"github.com/seatrelay/seatrelay-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gatewayClient, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		logg.Error(context.Background(), "failed to create gateway client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	purchaseRepo := purchases.NewRepository(dbClient.DB())
	listingRepo := listings.NewRepository(dbClient.DB())
	notificationRepo := notifications.NewRepository(dbClient.DB())
	paymentRepo := payments.NewRepository(dbClient.DB())

	purchasesService, err := purchases.NewService(
		purchaseRepo,
		listingRepo,
		notificationRepo,
		dbClient,
		logg,
		paymentMetrics,
		purchases.FeePolicy{Percent: cfg.Payments.FeePercent, DueAfter: cfg.Payments.FeeDueAfter},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchases service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	poller, err := payments.NewPoller(gatewayClient, cfg.Payments.PollInterval, cfg.Payments.PollMaxAttempts, logg, paymentMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconciliation poller", err)
		os.Exit(1)
	}

	paymentsService, err := payments.NewService(
		paymentRepo,
		purchaseRepo,
		listingRepo,
		purchasesService,
		dbClient,
		poller,
		logg,
		payments.Policy{MinTestAmount: cfg.Payments.MinTestAmount, Production: cfg.App.IsProd()},
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create payments service", err)
		os.Exit(1)
	}

	webhookService, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		Payments: paymentsService,
		Logger:   logg,
		Metrics:  paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := gatewaywebhook.NewIdempotencyGuard(redisClient, cfg.Payments.WebhookEventTTL, "gateway")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			registry,
			paymentsService,
			purchasesService,
			notificationsService,
			webhookService,
			webhookGuard,
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := multierr.Append(server.Shutdown(timeoutCtx), <-errCh); err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "error during shutdown", err)
			os.Exit(1)
		}
	}
}
