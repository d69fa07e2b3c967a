package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// AlertHandler serves the alert endpoints.
type AlertHandler struct {
	svc    *tracker.Service
	logger logging.Logger
}

// NewAlertHandler constructs the handler.
func NewAlertHandler(svc *tracker.Service, logger logging.Logger) *AlertHandler {
	return &AlertHandler{svc: svc, logger: logger.Named("handler.alert")}
}

// ForOpportunity handles GET /api/v1/opportunities/{id}/alerts.
func (h *AlertHandler) ForOpportunity(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))

	alerts, err := h.svc.AlertsForOpportunity(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

type dismissRequest struct {
	DismissedBy string `json:"dismissed_by"`
}

// Dismiss handles POST /api/v1/opportunities/{id}/alerts/{ruleID}/dismiss.
// Replaying a dismissal returns 204 just like the first call.
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	oppID := common.ID(chi.URLParam(r, "id"))
	ruleID := common.ID(chi.URLParam(r, "ruleID"))

	var req dismissRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, errors.InvalidParam("malformed request body"))
			return
		}
	}

	if err := h.svc.DismissAlert(r.Context(), oppID, ruleID, req.DismissedBy); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
