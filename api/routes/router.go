package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/seatrelay/seatrelay-backend/api/controllers"
	webhookcontrollers "github.com/seatrelay/seatrelay-backend/api/controllers/webhooks"
	"github.com/seatrelay/seatrelay-backend/api/middleware"
	"github.com/seatrelay/seatrelay-backend/internal/notifications"
	"github.com/seatrelay/seatrelay-backend/internal/payments"
	"github.com/seatrelay/seatrelay-backend/internal/purchases"
	gatewaywebhook "github.com/seatrelay/seatrelay-backend/internal/webhooks/gateway"
	"github.com/seatrelay/seatrelay-backend/pkg/config"
	"github.com/seatrelay/seatrelay-backend/pkg/db"
	"github.com/seatrelay/seatrelay-backend/pkg/logger"
	"github.com/seatrelay/seatrelay-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	registry *prometheus.Registry,
	paymentsService payments.Service,
	purchasesService purchases.Service,
	notificationsService notifications.Service,
	webhookService *gatewaywebhook.Service,
	webhookGuard *gatewaywebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/payment", webhookcontrollers.GatewayWebhook(webhookService, cfg.Gateway.WebhookSecret, webhookGuard, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))
		r.Use(middleware.RateLimit(middleware.RateLimitPolicy{Limit: 300, Window: time.Minute}, redisClient, logg))

		r.Route("/payments", func(r chi.Router) {
			r.Post("/init", controllers.PaymentInit(paymentsService, logg))
			r.Get("/{sessionId}", controllers.PaymentStatus(paymentsService, logg))
			r.Post("/{sessionId}/confirm", controllers.PaymentConfirm(paymentsService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(purchasesService, logg))
			r.Get("/{orderNumber}", controllers.OrderDetail(purchasesService, logg))
			r.Patch("/{orderNumber}/status", controllers.UpdateOrderStatus(purchasesService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})
	})

	return r
}
