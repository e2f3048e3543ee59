package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/modomarket/modomarket-backend/api/controllers"
	cartcontrollers "github.com/modomarket/modomarket-backend/api/controllers/cart"
	ordercontrollers "github.com/modomarket/modomarket-backend/api/controllers/orders"
	paymentcontrollers "github.com/modomarket/modomarket-backend/api/controllers/payments"
	refundcontrollers "github.com/modomarket/modomarket-backend/api/controllers/refunds"
	"github.com/modomarket/modomarket-backend/api/middleware"
	cartsvc "github.com/modomarket/modomarket-backend/internal/cart"
	ordersvc "github.com/modomarket/modomarket-backend/internal/orders"
	paymentsvc "github.com/modomarket/modomarket-backend/internal/payments"
	refundsvc "github.com/modomarket/modomarket-backend/internal/refunds"
	"github.com/modomarket/modomarket-backend/pkg/config"
	"github.com/modomarket/modomarket-backend/pkg/logger"
	pkgredis "github.com/modomarket/modomarket-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	registry *prometheus.Registry,
	readiness map[string]controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	cartService cartsvc.Service,
	orderService ordersvc.Service,
	paymentService paymentsvc.Service,
	refundService refundsvc.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartList(cartService, logg))
			r.Post("/", cartcontrollers.CartAdd(cartService, logg))
			r.Delete("/{cartLineId}", cartcontrollers.CartRemove(cartService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(orderService, logg))
			r.Post("/", ordercontrollers.Create(orderService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(orderService, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(orderService, logg))
			r.Get("/{orderId}/payment", paymentcontrollers.ByOrder(paymentService, logg))
		})

		r.Post("/payments/confirm", paymentcontrollers.Confirm(paymentService, logg))

		r.Route("/refunds", func(r chi.Router) {
			r.Get("/", refundcontrollers.List(refundService, logg))
			r.Post("/", refundcontrollers.Create(refundService, logg))
			r.Post("/{refundId}/cancel", refundcontrollers.Cancel(refundService, logg))
			r.Post("/{refundId}/approve", refundcontrollers.Approve(refundService, logg))
			r.Post("/{refundId}/reject", refundcontrollers.Reject(refundService, logg))
			r.Post("/{refundId}/complete", refundcontrollers.Complete(refundService, logg))
		})
	})

	return r
}
