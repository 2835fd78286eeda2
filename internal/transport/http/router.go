// Package httptransport assembles the HTTP surface: platform middleware,
// locale routing at the edge, and the domain handlers behind it.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "velofit/internal/auth/handler"
	bikehandler "velofit/internal/bike/handler"
	localemw "velofit/internal/locale/middleware"
	"velofit/internal/pages"
	"velofit/internal/platform/health"
	"velofit/internal/platform/metrics"
	"velofit/internal/platform/middleware"
)

// Deps carries everything the router needs. Handlers are constructed by the
// caller so transport stays free of wiring decisions.
type Deps struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Locale  *localemw.Middleware
	Health  *health.Handler
	Auth    *authhandler.Handler
	Bikes   *bikehandler.Handler
	Pages   *pages.Handler
}

// NewRouter wires all endpoints with middleware. Locale routing runs after
// the platform stack but before any route, so every page request is already
// rewritten to its internal path by the time a handler sees it.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger, d.Metrics))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(d.Locale.Handler)

	d.Health.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	d.Auth.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(d.Auth.RequireSession)
		d.Bikes.Register(r)
	})

	d.Pages.Register(r)

	return r
}
