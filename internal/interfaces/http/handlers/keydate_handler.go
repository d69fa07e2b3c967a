package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// KeyDateHandler serves the key-date endpoints.
type KeyDateHandler struct {
	svc    *tracker.Service
	logger logging.Logger
}

// NewKeyDateHandler constructs the handler.
func NewKeyDateHandler(svc *tracker.Service, logger logging.Logger) *KeyDateHandler {
	return &KeyDateHandler{svc: svc, logger: logger.Named("handler.keydate")}
}

// Upcoming handles GET /api/v1/key-dates/upcoming.
func (h *KeyDateHandler) Upcoming(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.UpcomingDates(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ForOpportunity handles GET /api/v1/opportunities/{id}/key-dates.
// ?all=true disables truncation.
func (h *KeyDateHandler) ForOpportunity(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))
	showAll := r.URL.Query().Get("all") == "true"

	out, err := h.svc.DatesForOpportunity(r.Context(), id, showAll)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
