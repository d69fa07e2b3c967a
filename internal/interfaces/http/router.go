// Package http wires the chi router and the HTTP server lifecycle.
package http

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DealRadar/internal/interfaces/http/handlers"
	"github.com/turtacn/DealRadar/internal/interfaces/http/middleware"
)

// RouterDeps bundles everything the router needs.
type RouterDeps struct {
	Service *tracker.Service
	DB      *sql.DB
	Metrics *prometheus.Metrics
	Logger  logging.Logger
}

// NewRouter builds the full route tree.
func NewRouter(d RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	if d.Metrics != nil {
		r.Use(middleware.Metrics(d.Metrics))
	}
	r.Use(middleware.CORS)
	r.Use(chimiddleware.Recoverer)

	health := handlers.NewHealthHandler(d.DB)
	r.Get("/healthz", health.Live)
	r.Get("/readyz", health.Ready)
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}

	keyDates := handlers.NewKeyDateHandler(d.Service, d.Logger)
	opps := handlers.NewOpportunityHandler(d.Service, d.Logger)
	alerts := handlers.NewAlertHandler(d.Service, d.Logger)
	analytics := handlers.NewAnalyticsHandler(d.Service, d.Logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/key-dates/upcoming", keyDates.Upcoming)

		r.Route("/opportunities", func(r chi.Router) {
			r.Get("/", opps.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", opps.Get)
				r.Put("/stage", opps.ChangeStage)
				r.Get("/transitions", opps.Transitions)
				r.Get("/activities", opps.Activities)
				r.Get("/key-dates", keyDates.ForOpportunity)
				r.Get("/alerts", alerts.ForOpportunity)
				r.Post("/alerts/{ruleID}/dismiss", alerts.Dismiss)
			})
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Get("/aging", analytics.Aging)
			r.Get("/funnel", analytics.Funnel)
		})
	})

	return r
}
