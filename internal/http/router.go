package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const serviceName = "catalog-service"

type RouterConfig struct {
	AllowOrigins   []string
	RequestTimeout time.Duration
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(products *ProductHandler, orders *OrderHandler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.AllowOrigins))

	r.Get("/health", healthHandler)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}

		r.Get("/products", products.ListProducts)
		r.Post("/orders", orders.CreateOrder)
		r.Get("/orders/{orderId}", orders.GetOrder)
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": serviceName,
	})
}
