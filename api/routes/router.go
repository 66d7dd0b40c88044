package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mateovergara/sitesupply-backend/api/controllers"
	"github.com/mateovergara/sitesupply-backend/api/middleware"
	"github.com/mateovergara/sitesupply-backend/internal/negotiation"
	"github.com/mateovergara/sitesupply-backend/internal/orders"
	"github.com/mateovergara/sitesupply-backend/pkg/config"
	"github.com/mateovergara/sitesupply-backend/pkg/db"
	"github.com/mateovergara/sitesupply-backend/pkg/logger"
	"github.com/mateovergara/sitesupply-backend/pkg/redis"
)

// Pinger is the readiness probe contract shared by the broker clients.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	pubsubP Pinger,
	ordersService orders.Service,
	negotiationService negotiation.Service,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	var redisP Pinger
	if redisClient != nil {
		redisP = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, pubsubP))
	})

	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		if redisClient != nil {
			r.Use(middleware.Idempotency(redisClient, logg))
		}

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/unread-count", controllers.UnreadCount(negotiationService, logg))

			r.Route("/{orderId}", func(r chi.Router) {
				r.Get("/", controllers.OrderDetail(ordersService, logg))
				r.Post("/acknowledge", controllers.AcknowledgeOrder(ordersService, logg))
				r.Post("/cancel", controllers.CancelOrder(ordersService, logg))

				r.Get("/messages", controllers.ListMessages(negotiationService, logg))
				r.Post("/messages", controllers.SendMessage(negotiationService, logg))
				r.Put("/mark-read", controllers.MarkMessagesRead(negotiationService, logg))

				r.Post("/quotation", controllers.SubmitQuotation(negotiationService, logg))
				r.Put("/quotation/{messageId}/accept", controllers.AcceptQuotation(negotiationService, logg))
				r.Put("/quotation/{messageId}/reject", controllers.RejectQuotation(negotiationService, logg))

				r.Post("/delivery-details", controllers.SubmitDeliveryDetails(negotiationService, logg))
				r.Put("/delivery-status", controllers.UpdateDeliveryStatus(negotiationService, logg))
			})
		})
	})

	return r
}
