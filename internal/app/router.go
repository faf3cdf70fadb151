package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/guriri-express/dispatch/internal/auth"
	"github.com/guriri-express/dispatch/internal/observability"
	"github.com/guriri-express/dispatch/internal/platform/httpx"
	"github.com/guriri-express/dispatch/internal/pricing"
	reporthttp "github.com/guriri-express/dispatch/internal/reports/http"
	"github.com/guriri-express/dispatch/jobs"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Identity       auth.IdentityResolver
	ReportHandler  *reporthttp.Handler
	PricingHandler *pricing.Handler
	JobHandler     *jobs.Handler
	Metrics        *observability.Metrics
	Readiness      []Pinger
}

// NewRouter constructs the chi.Router with dispatch defaults.
func NewRouter(params RouterParams) http.Handler {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.OK(w, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readiness(logger, params.Readiness))
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	guard := auth.Middleware{Resolver: params.Identity, Logger: logger}
	if guard.Resolver == nil {
		guard.Resolver = auth.HeaderResolver{}
	}
	r.Group(func(r chi.Router) {
		r.Use(guard.RequireCaller)
		params.ReportHandler.MountRoutes(r)
		params.PricingHandler.MountRoutes(r)
	})

	return r
}

func readiness(logger *slog.Logger, checks []Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, check := range checks {
			if check == nil {
				continue
			}
			if err := check.Ping(ctx); err != nil {
				logger.Warn("readiness check failed", slog.Any("error", err))
				httpx.Fail(w, http.StatusServiceUnavailable, "not ready")
				return
			}
		}
		httpx.OK(w, map[string]string{"status": "ready"})
	}
}
