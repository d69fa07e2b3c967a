package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/domain/opportunity"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// OpportunityHandler serves the opportunity endpoints.
type OpportunityHandler struct {
	svc    *tracker.Service
	logger logging.Logger
}

// NewOpportunityHandler constructs the handler.
func NewOpportunityHandler(svc *tracker.Service, logger logging.Logger) *OpportunityHandler {
	return &OpportunityHandler{svc: svc, logger: logger.Named("handler.opportunity")}
}

// List handles GET /api/v1/opportunities with optional stage, project_type,
// and q filters.
func (h *OpportunityHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := opportunity.ListFilter{
		Stage:       opportunity.Stage(q.Get("stage")),
		ProjectType: q.Get("project_type"),
		Search:      q.Get("q"),
	}
	if filter.Stage != "" && !filter.Stage.IsValid() {
		writeError(w, h.logger, errors.InvalidParam("unknown stage filter: "+string(filter.Stage)))
		return
	}

	opps, err := h.svc.ListOpportunities(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opps)
}

// Get handles GET /api/v1/opportunities/{id}.
func (h *OpportunityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))

	opp, err := h.svc.GetOpportunity(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, opp)
}

type changeStageRequest struct {
	Stage string `json:"stage"`
	Note  string `json:"note"`
}

// ChangeStage handles PUT /api/v1/opportunities/{id}/stage.
func (h *OpportunityHandler) ChangeStage(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))

	var req changeStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, errors.InvalidParam("malformed request body"))
		return
	}

	tr, err := h.svc.ChangeStage(r.Context(), id, opportunity.Stage(req.Stage), req.Note)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tr)
}

// Transitions handles GET /api/v1/opportunities/{id}/transitions.
func (h *OpportunityHandler) Transitions(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))

	trs, err := h.svc.Transitions(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, trs)
}

// Activities handles GET /api/v1/opportunities/{id}/activities.
func (h *OpportunityHandler) Activities(w http.ResponseWriter, r *http.Request) {
	id := common.ID(chi.URLParam(r, "id"))

	acts, err := h.svc.Activities(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, acts)
}
