package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nikhilarsid/review-service/internal/service"
	"github.com/nikhilarsid/review-service/pkg/health"
	"github.com/nikhilarsid/review-service/pkg/middleware"
)

// ServiceName labels metrics and spans emitted by the HTTP layer.
const ServiceName = "review"

// RouterConfig carries the dependencies of NewRouter.
type RouterConfig struct {
	ReviewService *service.ReviewService
	Health        *health.Handler
	Logger        *slog.Logger

	// TokenValidator authenticates bearer tokens on mutating routes.
	TokenValidator middleware.TokenValidator

	CORS       middleware.CORSConfig
	PprofCIDRs []string

	// CacheMaxAge is the public max-age in seconds of the read endpoints.
	CacheMaxAge int

	// RequestTimeout bounds every request. Zero uses 30s.
	RequestTimeout time.Duration
}

// NewRouter creates a chi router with all review service routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(timeout))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.Metrics(ServiceName))
	r.Use(middleware.Tracing(ServiceName))
	r.Use(middleware.RequestLogger(cfg.Logger))

	// Health check endpoints
	r.Get("/health/live", cfg.Health.LivenessHandler())
	r.Get("/health/ready", cfg.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, cfg.Logger)

	reviewHandler := NewReviewHandler(cfg.ReviewService, cfg.Logger)

	r.Route("/api/v1/reviews", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		// Public reads
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(cfg.CacheMaxAge))

			r.Get("/product/{productId}", reviewHandler.ListProductReviews)
			r.Get("/{id}", reviewHandler.GetReview)
		})

		// Author-bound operations
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.TokenValidator))

			r.Post("/", reviewHandler.CreateReview)
			r.Get("/me", reviewHandler.ListMyReviews)
			r.Put("/{id}", reviewHandler.UpdateReview)
			r.Delete("/{id}", reviewHandler.DeleteReview)
		})
	})

	return r
}
