package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vitrinehub/vitrine-backend/api/controllers"
	"github.com/vitrinehub/vitrine-backend/api/middleware"
	"github.com/vitrinehub/vitrine-backend/pkg/config"
	"github.com/vitrinehub/vitrine-backend/pkg/db"
	"github.com/vitrinehub/vitrine-backend/pkg/logger"
	"github.com/vitrinehub/vitrine-backend/pkg/redis"
	"github.com/vitrinehub/vitrine-backend/pkg/storage/gcs"
)

// NewRouter assembles the HTTP surface: health probes, metrics and the
// per-store storefront API. Every storefront route runs inside the store and
// shopper-session resolution middleware.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	gcsP gcs.Pinger,
	registry *prometheus.Registry,
	eng controllers.Engine,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP, gcsP))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/stores/{storeSlug}", func(r chi.Router) {
		r.Use(
			middleware.StoreResolver(),
			middleware.ShopperSession(cfg.Session, logg),
		)

		r.Get("/view", controllers.StorefrontView(eng, logg))
		r.Post("/view/filter", controllers.StorefrontFilter(eng, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Post("/items", controllers.CartAdd(eng, logg))
			r.Delete("/items", controllers.CartRemove(eng, logg))
			r.Patch("/items", controllers.CartUpdateQuantity(eng, logg))
			r.Delete("/", controllers.CartClear(eng, logg))
		})

		r.Route("/gate", func(r chi.Router) {
			r.Post("/unlock", controllers.GateUnlock(eng, logg))
			r.Post("/lock", controllers.GateLock(eng, logg))
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", controllers.CheckoutFinalize(eng, logg))
			r.Get("/message-link", controllers.CheckoutMessageLink(eng, logg))
			r.Delete("/success", controllers.CheckoutDismiss(eng, logg))
		})

		r.Route("/saved-carts", func(r chi.Router) {
			r.Post("/", controllers.SavedCartSave(eng, logg))
			r.Post("/load", controllers.SavedCartLoad(eng, logg))
		})
	})

	return r
}
