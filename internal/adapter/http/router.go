package http

import (
	"net/http"
	"time"

	"github.com/YelzhanWeb/theo-eats/internal/adapter/logger"
	"github.com/YelzhanWeb/theo-eats/internal/adapter/metrics"
	"github.com/YelzhanWeb/theo-eats/internal/interfaces"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Cart           interfaces.CartService
	Lifecycle      interfaces.LifecycleService
	Catalog        interfaces.CatalogService
	Metrics        *metrics.ServerMetrics
	Logger         logger.Logger
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	orders := NewOrderHandler(cfg.Cart, cfg.Lifecycle, cfg.Metrics, cfg.Logger)
	tracking := NewTrackingHandler(cfg.Lifecycle, cfg.Catalog, cfg.Logger)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(MetricsMiddleware(cfg.Metrics))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", cfg.Metrics.Handler())

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		r.Get("/menu", tracking.Menu)
		r.Get("/menu/price", tracking.Price)

		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Post("/order", tracking.OpenOrder)
			r.Post("/checkout", tracking.Checkout)
			r.Get("/track", tracking.Track)
		})

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Get("/", orders.GetOrder)
			r.Get("/items", orders.GetItems)
			r.Get("/total", orders.GetTotal)
			r.Post("/status", orders.AdvanceStatus)
			r.Post("/lines", orders.AddLine)
			r.Delete("/lines", orders.Clear)
			r.Delete("/lines/{itemName}", orders.RemoveLine)
		})
	})

	return r
}
