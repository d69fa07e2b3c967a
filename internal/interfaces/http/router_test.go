package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DealRadar/internal/application/tracker"
	"github.com/turtacn/DealRadar/internal/domain/alert"
	"github.com/turtacn/DealRadar/internal/domain/keydate"
	"github.com/turtacn/DealRadar/internal/domain/opportunity"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// In-memory fakes
// ─────────────────────────────────────────────────────────────────────────────

type fakeKeyDates struct {
	defs []*keydate.Definition
}

func (f *fakeKeyDates) FindActive(context.Context) ([]*keydate.Definition, error) {
	return f.defs, nil
}

func (f *fakeKeyDates) FindActiveByName(_ context.Context, name string) (*keydate.Definition, error) {
	for _, d := range f.defs {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, errors.New(errors.ErrCodeKeyDateNotFound, "key date not found")
}

type fakeOpps struct {
	opps map[common.ID]*opportunity.Opportunity
}

func (f *fakeOpps) FindByID(_ context.Context, id common.ID) (*opportunity.Opportunity, error) {
	if opp, ok := f.opps[id]; ok {
		return opp, nil
	}
	return nil, errors.New(errors.ErrCodeOpportunityNotFound, "opportunity not found")
}

func (f *fakeOpps) List(context.Context, opportunity.ListFilter) ([]*opportunity.Opportunity, error) {
	var out []*opportunity.Opportunity
	for _, opp := range f.opps {
		out = append(out, opp)
	}
	return out, nil
}

func (f *fakeOpps) UpdateStage(_ context.Context, id common.ID, to opportunity.Stage, note string, at time.Time) (*opportunity.StageTransition, error) {
	opp, ok := f.opps[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeOpportunityNotFound, "opportunity not found")
	}
	from := opp.Stage
	opp.Stage = to
	return &opportunity.StageTransition{
		ID: common.NewID(), OpportunityID: id,
		FromStage: from, ToStage: to, Note: note, OccurredAt: at,
	}, nil
}

func (f *fakeOpps) Transitions(context.Context, common.ID) ([]*opportunity.StageTransition, error) {
	return nil, nil
}

func (f *fakeOpps) Activities(context.Context, common.ID) ([]*opportunity.Activity, error) {
	return nil, nil
}

func (f *fakeOpps) Aging(context.Context, time.Time, time.Duration, int) ([]*opportunity.AgingEntry, error) {
	return nil, nil
}

func (f *fakeOpps) FunnelCounts(context.Context) ([]*opportunity.FunnelCount, error) {
	counts := make([]*opportunity.FunnelCount, 0, len(opportunity.Stages))
	for _, s := range opportunity.Stages {
		counts = append(counts, &opportunity.FunnelCount{Stage: s})
	}
	return counts, nil
}

type fakeRules struct {
	rules []*alert.Rule
}

func (f *fakeRules) FindActive(context.Context) ([]*alert.Rule, error) { return f.rules, nil }

func (f *fakeRules) FindByID(_ context.Context, id common.ID) (*alert.Rule, error) {
	for _, r := range f.rules {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New(errors.ErrCodeRuleNotFound, "rule not found")
}

type fakeDismissals struct {
	dismissed map[string]struct{}
}

func key(opp, rule common.ID) string { return string(opp) + "/" + string(rule) }

func (f *fakeDismissals) Dismiss(_ context.Context, d *alert.Dismissal) (bool, error) {
	k := key(d.OpportunityID, d.RuleID)
	if _, ok := f.dismissed[k]; ok {
		return false, nil
	}
	f.dismissed[k] = struct{}{}
	return true, nil
}

func (f *fakeDismissals) DismissedRuleIDs(_ context.Context, opp common.ID) (map[common.ID]struct{}, error) {
	out := make(map[common.ID]struct{})
	for k := range f.dismissed {
		if strings.HasPrefix(k, string(opp)+"/") {
			out[common.ID(strings.TrimPrefix(k, string(opp)+"/"))] = struct{}{}
		}
	}
	return out, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────────────────────────────────────

var handlerNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func newTestRouter(t *testing.T) (http.Handler, *fakeDismissals) {
	t.Helper()

	deadline := handlerNow.AddDate(0, 0, 5)
	anchor := time.Date(deadline.Year(), deadline.Month(), deadline.Day(), 0, 0, 0, 0, time.UTC)
	keyDates := &fakeKeyDates{defs: []*keydate.Definition{{
		ID: common.NewID(), Name: "grant deadline", Type: keydate.DateTypeDeadline,
		Priority: keydate.PriorityCritical, Active: true, FixedDate: &anchor,
		Thresholds: keydate.Thresholds{RedDays: 7, YellowDays: 30, BlueDays: 90},
	}}}

	opps := &fakeOpps{opps: map[common.ID]*opportunity.Opportunity{
		common.ID("opp-1"): {
			ID: common.ID("opp-1"), Name: "Acme robotics line", Organization: "Acme Corp",
			ProjectType: "research", Stage: opportunity.StageProposal, EstimatedValue: "75000",
		},
	}}

	rules := &fakeRules{rules: []*alert.Rule{{
		ID: common.ID("rule-1"), StakeholderName: "Dana Reyes", TriggerType: alert.TriggerStageChange,
		Condition: alert.StageChangeCondition{To: "proposal"}, Active: true, Priority: 1,
		AlertMessage: "Check in with {organization}",
	}}}

	dismissals := &fakeDismissals{dismissed: make(map[string]struct{})}

	svc := tracker.NewService(tracker.Deps{
		KeyDates:   keyDates,
		Opps:       opps,
		Rules:      rules,
		Dismissals: dismissals,
		Logger:     logging.NewNopLogger(),
		Now:        func() time.Time { return handlerNow },
	})

	return NewRouter(RouterDeps{Service: svc, Logger: logging.NewNopLogger()}), dismissals
}

func doRequest(t *testing.T, h http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, into interface{}) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NoError(t, json.Unmarshal(env.Data, into))
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestHealthEndpoints(t *testing.T) {
	h, _ := newTestRouter(t)
	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/healthz", "").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, h, http.MethodGet, "/readyz", "").Code)
}

func TestUpcomingKeyDates(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/key-dates/upcoming", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var view struct {
		Deadlines []struct {
			Name      string `json:"name"`
			DaysUntil int    `json:"days_until"`
			Urgency   string `json:"urgency"`
		} `json:"deadlines"`
	}
	decodeData(t, rec, &view)
	require.Len(t, view.Deadlines, 1)
	assert.Equal(t, "grant deadline", view.Deadlines[0].Name)
	assert.Equal(t, 5, view.Deadlines[0].DaysUntil)
	assert.Equal(t, "red", view.Deadlines[0].Urgency)
}

func TestKeyDatesForOpportunity(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/opportunities/opp-1/key-dates", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Dates      []json.RawMessage `json:"dates"`
		HasMore    bool              `json:"has_more"`
		TotalCount int               `json:"total_count"`
	}
	decodeData(t, rec, &out)
	assert.Len(t, out.Dates, 1)
	assert.False(t, out.HasMore)
	assert.Equal(t, 1, out.TotalCount)
}

func TestKeyDatesForUnknownOpportunity(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/opportunities/ghost/key-dates", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, "OPP_001", env.Error.Code)
}

func TestAlertsForOpportunity(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/opportunities/opp-1/alerts", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var alerts []struct {
		RuleID  string `json:"rule_id"`
		Message string `json:"message"`
	}
	decodeData(t, rec, &alerts)
	require.Len(t, alerts, 1)
	assert.Equal(t, "rule-1", alerts[0].RuleID)
	assert.Equal(t, "Check in with Acme Corp", alerts[0].Message)
}

func TestDismissAlertIdempotent(t *testing.T) {
	h, dismissals := newTestRouter(t)

	rec := doRequest(t, h, http.MethodPost, "/api/v1/opportunities/opp-1/alerts/rule-1/dismiss",
		`{"dismissed_by":"sam"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Len(t, dismissals.dismissed, 1)

	rec = doRequest(t, h, http.MethodPost, "/api/v1/opportunities/opp-1/alerts/rule-1/dismiss", "")
	assert.Equal(t, http.StatusNoContent, rec.Code, "replay succeeds")
	assert.Len(t, dismissals.dismissed, 1)

	rec = doRequest(t, h, http.MethodGet, "/api/v1/opportunities/opp-1/alerts", "")
	var alerts []json.RawMessage
	decodeData(t, rec, &alerts)
	assert.Empty(t, alerts, "dismissed alerts no longer surface")
}

func TestDismissUnknownRule(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodPost, "/api/v1/opportunities/opp-1/alerts/ghost/dismiss", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestChangeStage(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodPut, "/api/v1/opportunities/opp-1/stage",
		`{"stage":"negotiation","note":"terms sent"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var tr struct {
		FromStage string `json:"from_stage"`
		ToStage   string `json:"to_stage"`
	}
	decodeData(t, rec, &tr)
	assert.Equal(t, "proposal", tr.FromStage)
	assert.Equal(t, "negotiation", tr.ToStage)
}

func TestChangeStageRejectsUnknown(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodPut, "/api/v1/opportunities/opp-1/stage",
		`{"stage":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOpportunitiesRejectsBadStageFilter(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/opportunities?stage=bogus", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFunnelEndpoint(t *testing.T) {
	h, _ := newTestRouter(t)
	rec := doRequest(t, h, http.MethodGet, "/api/v1/analytics/funnel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var counts []struct {
		Stage string `json:"stage"`
		Count int    `json:"count"`
	}
	decodeData(t, rec, &counts)
	require.Len(t, counts, len(opportunity.Stages))
	assert.Equal(t, "lead", counts[0].Stage)
}
