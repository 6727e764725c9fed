package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/storefront/pkg/health"
	"github.com/utafrali/storefront/pkg/middleware"
)

const (
	loadMorePath        = "/api/v1/storefront/listings/load-more"
	initialPathTemplate = "/api/v1/storefront/listings/{kind}/initial"
)

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	ServiceName       string
	CORSOrigins       []string
	PprofAllowedCIDRs []string
	SecureCookies     bool
	Labels            Labels
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cfg RouterConfig,
	listingService ListingService,
	tokens TokenIssuer,
	limiter middleware.Limiter,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.CORSOrigins)))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	middleware.RegisterPprof(r, cfg.PprofAllowedCIDRs, logger)

	listingHandler := NewListingHandler(listingService, tokens, logger)
	sectionHandler := NewSectionHandler(listingService, tokens, cfg.Labels, logger)

	r.Group(func(r chi.Router) {
		r.Use(Session(cfg.SecureCookies))
		r.Use(middleware.RequestLogger(logger))
		r.Use(middleware.NoStore)

		r.Get("/storefront/sections/categories", sectionHandler.Categories)

		r.Route("/api/v1/storefront", func(r chi.Router) {
			r.Get("/token", listingHandler.Token)
			r.Get("/listings/{kind}/initial", listingHandler.Initial)

			r.With(middleware.RateLimit(limiter, logger)).
				Post("/listings/load-more", listingHandler.LoadMore)
		})
	})

	return r
}
