package handlers

import (
	"net/http"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
)

// AnalyticsHandler serves the pipeline analytics endpoints.
type AnalyticsHandler struct {
	svc    *tracker.Service
	logger logging.Logger
}

// NewAnalyticsHandler constructs the handler.
func NewAnalyticsHandler(svc *tracker.Service, logger logging.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, logger: logger.Named("handler.analytics")}
}

// Aging handles GET /api/v1/analytics/aging.
func (h *AnalyticsHandler) Aging(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.AgingReport(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// Funnel handles GET /api/v1/analytics/funnel.
func (h *AnalyticsHandler) Funnel(w http.ResponseWriter, r *http.Request) {
	counts, err := h.svc.Funnel(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
