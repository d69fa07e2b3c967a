package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/DealRadar/internal/domain/alert"
	"github.com/turtacn/DealRadar/internal/domain/keydate"
	"github.com/turtacn/DealRadar/internal/domain/opportunity"
	"github.com/turtacn/DealRadar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Mocks
// ─────────────────────────────────────────────────────────────────────────────

type mockKeyDateRepo struct{ mock.Mock }

func (m *mockKeyDateRepo) FindActive(ctx context.Context) ([]*keydate.Definition, error) {
	args := m.Called(ctx)
	defs, _ := args.Get(0).([]*keydate.Definition)
	return defs, args.Error(1)
}

func (m *mockKeyDateRepo) FindActiveByName(ctx context.Context, name string) (*keydate.Definition, error) {
	args := m.Called(ctx, name)
	def, _ := args.Get(0).(*keydate.Definition)
	return def, args.Error(1)
}

type mockOppRepo struct{ mock.Mock }

func (m *mockOppRepo) FindByID(ctx context.Context, id common.ID) (*opportunity.Opportunity, error) {
	args := m.Called(ctx, id)
	opp, _ := args.Get(0).(*opportunity.Opportunity)
	return opp, args.Error(1)
}

func (m *mockOppRepo) List(ctx context.Context, f opportunity.ListFilter) ([]*opportunity.Opportunity, error) {
	args := m.Called(ctx, f)
	opps, _ := args.Get(0).([]*opportunity.Opportunity)
	return opps, args.Error(1)
}

func (m *mockOppRepo) UpdateStage(ctx context.Context, id common.ID, to opportunity.Stage, note string, at time.Time) (*opportunity.StageTransition, error) {
	args := m.Called(ctx, id, to, note, at)
	tr, _ := args.Get(0).(*opportunity.StageTransition)
	return tr, args.Error(1)
}

func (m *mockOppRepo) Transitions(ctx context.Context, id common.ID) ([]*opportunity.StageTransition, error) {
	args := m.Called(ctx, id)
	trs, _ := args.Get(0).([]*opportunity.StageTransition)
	return trs, args.Error(1)
}

func (m *mockOppRepo) Activities(ctx context.Context, id common.ID) ([]*opportunity.Activity, error) {
	args := m.Called(ctx, id)
	acts, _ := args.Get(0).([]*opportunity.Activity)
	return acts, args.Error(1)
}

func (m *mockOppRepo) Aging(ctx context.Context, now time.Time, staleAfter time.Duration, limit int) ([]*opportunity.AgingEntry, error) {
	args := m.Called(ctx, now, staleAfter, limit)
	entries, _ := args.Get(0).([]*opportunity.AgingEntry)
	return entries, args.Error(1)
}

func (m *mockOppRepo) FunnelCounts(ctx context.Context) ([]*opportunity.FunnelCount, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).([]*opportunity.FunnelCount)
	return counts, args.Error(1)
}

type mockRuleRepo struct{ mock.Mock }

func (m *mockRuleRepo) FindActive(ctx context.Context) ([]*alert.Rule, error) {
	args := m.Called(ctx)
	rules, _ := args.Get(0).([]*alert.Rule)
	return rules, args.Error(1)
}

func (m *mockRuleRepo) FindByID(ctx context.Context, id common.ID) (*alert.Rule, error) {
	args := m.Called(ctx, id)
	rule, _ := args.Get(0).(*alert.Rule)
	return rule, args.Error(1)
}

type mockDismissalRepo struct{ mock.Mock }

func (m *mockDismissalRepo) Dismiss(ctx context.Context, d *alert.Dismissal) (bool, error) {
	args := m.Called(ctx, d)
	return args.Bool(0), args.Error(1)
}

func (m *mockDismissalRepo) DismissedRuleIDs(ctx context.Context, id common.ID) (map[common.ID]struct{}, error) {
	args := m.Called(ctx, id)
	ids, _ := args.Get(0).(map[common.ID]struct{})
	return ids, args.Error(1)
}

type recordingProducer struct {
	published []struct {
		topic string
		env   kafka.EventEnvelope
	}
}

func (r *recordingProducer) Publish(_ context.Context, topic, _ string, env kafka.EventEnvelope) error {
	r.published = append(r.published, struct {
		topic string
		env   kafka.EventEnvelope
	}{topic, env})
	return nil
}

func (r *recordingProducer) Close() error { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Fixtures
// ─────────────────────────────────────────────────────────────────────────────

var testNow = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	keyDates   *mockKeyDateRepo
	opps       *mockOppRepo
	rules      *mockRuleRepo
	dismissals *mockDismissalRepo
	producer   *recordingProducer
	svc        *Service
}

func newFixture() *fixture {
	f := &fixture{
		keyDates:   &mockKeyDateRepo{},
		opps:       &mockOppRepo{},
		rules:      &mockRuleRepo{},
		dismissals: &mockDismissalRepo{},
		producer:   &recordingProducer{},
	}
	f.svc = NewService(Deps{
		KeyDates:   f.keyDates,
		Opps:       f.opps,
		Rules:      f.rules,
		Dismissals: f.dismissals,
		Producer:   f.producer,
		Now:        func() time.Time { return testNow },
	})
	return f
}

func fixedDef(name string, dt keydate.DateType, daysOut int) *keydate.Definition {
	d := testNow.AddDate(0, 0, daysOut)
	anchor := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &keydate.Definition{
		ID:         common.NewID(),
		Name:       name,
		Type:       dt,
		Priority:   keydate.PriorityCritical,
		Active:     true,
		FixedDate:  &anchor,
		Thresholds: keydate.Thresholds{RedDays: 7, YellowDays: 30, BlueDays: 90},
	}
}

func sampleOpp() *opportunity.Opportunity {
	return &opportunity.Opportunity{
		ID:             common.ID("opp-1"),
		Name:           "Acme robotics line",
		Organization:   "Acme Corp",
		ProjectType:    "research",
		Stage:          opportunity.StageProposal,
		EstimatedValue: "75000",
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestUpcomingDatesSkipsMalformedDefinitions(t *testing.T) {
	f := newFixture()
	defs := []*keydate.Definition{
		fixedDef("grant deadline", keydate.DateTypeDeadline, 5),
		{ID: common.NewID(), Name: "broken row", Active: true},
		fixedDef("alliance summit", keydate.DateTypeEvent, 20),
	}
	f.keyDates.On("FindActive", mock.Anything).Return(defs, nil)

	view, err := f.svc.UpcomingDates(context.Background())
	require.NoError(t, err)
	assert.Len(t, view.All, 2, "the malformed row is skipped, not fatal")
	require.Len(t, view.Deadlines, 1)
	assert.Equal(t, "grant deadline", view.Deadlines[0].Name)
}

func TestUpcomingDatesStorageFailure(t *testing.T) {
	f := newFixture()
	f.keyDates.On("FindActive", mock.Anything).
		Return(nil, errors.New(errors.ErrCodeStorageUnavailable, "connection refused"))

	_, err := f.svc.UpcomingDates(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeStorageUnavailable, errors.GetCode(err))
}

func TestDatesForOpportunityScopesAndTruncates(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("opp-1")).Return(sampleOpp(), nil)

	var defs []*keydate.Definition
	for i := 1; i <= 7; i++ {
		d := fixedDef("scoped", keydate.DateTypeEvent, i*10)
		d.Priority = 2
		d.AppliesToProjectTypes = []string{"Research Agreement"}
		defs = append(defs, d)
	}
	unscoped := fixedDef("critical everywhere", keydate.DateTypeDeadline, 3)
	outOfScope := fixedDef("consulting only", keydate.DateTypeEvent, 5)
	outOfScope.Priority = 2
	outOfScope.AppliesToProjectTypes = []string{"Consulting Engagement"}
	defs = append(defs, unscoped, outOfScope)
	f.keyDates.On("FindActive", mock.Anything).Return(defs, nil)

	out, err := f.svc.DatesForOpportunity(context.Background(), common.ID("opp-1"), false)
	require.NoError(t, err)
	assert.Equal(t, 8, out.TotalCount, "7 scoped + 1 unscoped critical; consulting-only is excluded")
	assert.Len(t, out.Dates, keydate.DefaultOpportunityLimit)
	assert.True(t, out.HasMore)
	assert.Equal(t, "critical everywhere", out.Dates[0].Name, "deadlines sort before events")
}

func TestDatesForOpportunityUnknownID(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("ghost")).
		Return(nil, errors.New(errors.ErrCodeOpportunityNotFound, "opportunity not found"))

	_, err := f.svc.DatesForOpportunity(context.Background(), common.ID("ghost"), false)
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestAlertsForOpportunityExcludesDismissed(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("opp-1")).Return(sampleOpp(), nil)
	f.rules.On("FindActive", mock.Anything).Return([]*alert.Rule{
		{ID: common.ID("r1"), StakeholderName: "Dana Reyes", TriggerType: alert.TriggerStageChange,
			Condition: alert.StageChangeCondition{To: "proposal"}, Active: true, Priority: 1},
		{ID: common.ID("r2"), StakeholderName: "Lee Park", TriggerType: alert.TriggerProjectTypeSet,
			Condition: alert.ProjectTypeSetCondition{ProjectType: "Research Agreement"}, Active: true, Priority: 2},
	}, nil)
	f.dismissals.On("DismissedRuleIDs", mock.Anything, common.ID("opp-1")).
		Return(map[common.ID]struct{}{common.ID("r1"): {}}, nil)

	alerts, err := f.svc.AlertsForOpportunity(context.Background(), common.ID("opp-1"))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, common.ID("r2"), alerts[0].RuleID)
}

func TestDeadlineProximityAlertUsesCatalog(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("opp-1")).Return(sampleOpp(), nil)
	f.rules.On("FindActive", mock.Anything).Return([]*alert.Rule{
		{ID: common.ID("prox"), StakeholderName: "Dana Reyes", TriggerType: alert.TriggerDeadlineProximity,
			Condition: alert.DeadlineProximityCondition{Deadline: "proposal close"}, Active: true},
	}, nil)
	f.dismissals.On("DismissedRuleIDs", mock.Anything, common.ID("opp-1")).Return(nil, nil)
	f.keyDates.On("FindActiveByName", mock.Anything, "proposal close").
		Return(fixedDef("proposal close", keydate.DateTypeDeadline, 45), nil)

	alerts, err := f.svc.AlertsForOpportunity(context.Background(), common.ID("opp-1"))
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, common.ID("prox"), alerts[0].RuleID)
}

func TestDeadlineProximityMissingDeadlineDoesNotMatch(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("opp-1")).Return(sampleOpp(), nil)
	f.rules.On("FindActive", mock.Anything).Return([]*alert.Rule{
		{ID: common.ID("prox"), TriggerType: alert.TriggerDeadlineProximity,
			Condition: alert.DeadlineProximityCondition{Deadline: "retired deadline"}, Active: true},
	}, nil)
	f.dismissals.On("DismissedRuleIDs", mock.Anything, common.ID("opp-1")).Return(nil, nil)
	f.keyDates.On("FindActiveByName", mock.Anything, "retired deadline").
		Return(nil, errors.New(errors.ErrCodeKeyDateNotFound, "key date not found"))

	alerts, err := f.svc.AlertsForOpportunity(context.Background(), common.ID("opp-1"))
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestDismissAlertPublishesEventOnce(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("opp-1")).Return(sampleOpp(), nil)
	f.rules.On("FindByID", mock.Anything, common.ID("r1")).Return(&alert.Rule{ID: common.ID("r1")}, nil)
	f.dismissals.On("Dismiss", mock.Anything, mock.Anything).Return(true, nil).Once()
	f.dismissals.On("Dismiss", mock.Anything, mock.Anything).Return(false, nil)

	require.NoError(t, f.svc.DismissAlert(context.Background(), common.ID("opp-1"), common.ID("r1"), "sam"))
	require.NoError(t, f.svc.DismissAlert(context.Background(), common.ID("opp-1"), common.ID("r1"), "sam"),
		"replaying a dismissal succeeds")

	require.Len(t, f.producer.published, 1, "only the first dismissal emits an event")
	assert.Equal(t, kafka.TopicAlertDismissed, f.producer.published[0].topic)
}

func TestDismissAlertUnknownRule(t *testing.T) {
	f := newFixture()
	f.opps.On("FindByID", mock.Anything, common.ID("opp-1")).Return(sampleOpp(), nil)
	f.rules.On("FindByID", mock.Anything, common.ID("ghost")).
		Return(nil, errors.New(errors.ErrCodeRuleNotFound, "rule not found"))

	err := f.svc.DismissAlert(context.Background(), common.ID("opp-1"), common.ID("ghost"), "")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, f.producer.published)
}

func TestChangeStagePublishesEvent(t *testing.T) {
	f := newFixture()
	tr := &opportunity.StageTransition{
		OpportunityID: common.ID("opp-1"),
		FromStage:     opportunity.StageProposal,
		ToStage:       opportunity.StageNegotiation,
		OccurredAt:    testNow,
	}
	f.opps.On("UpdateStage", mock.Anything, common.ID("opp-1"),
		opportunity.StageNegotiation, "terms sent", testNow).Return(tr, nil)

	got, err := f.svc.ChangeStage(context.Background(), common.ID("opp-1"), opportunity.StageNegotiation, "terms sent")
	require.NoError(t, err)
	assert.Equal(t, tr, got)
	require.Len(t, f.producer.published, 1)
	assert.Equal(t, kafka.TopicStageChanged, f.producer.published[0].topic)
}

func TestChangeStageRejectsUnknownStage(t *testing.T) {
	f := newFixture()

	_, err := f.svc.ChangeStage(context.Background(), common.ID("opp-1"), opportunity.Stage("archived"), "")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeInvalidStage, errors.GetCode(err))
	f.opps.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAgingReportUsesPolicy(t *testing.T) {
	f := newFixture()
	f.opps.On("Aging", mock.Anything, testNow, agingStaleAfter, agingLimit).
		Return([]*opportunity.AgingEntry{{Opportunity: sampleOpp(), DaysStalled: 12}}, nil)

	entries, err := f.svc.AgingReport(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 12, entries[0].DaysStalled)
}

func TestFunnel(t *testing.T) {
	f := newFixture()
	f.opps.On("FunnelCounts", mock.Anything).Return([]*opportunity.FunnelCount{
		{Stage: opportunity.StageLead, Count: 40},
		{Stage: opportunity.StageQualified, Count: 25},
	}, nil)

	counts, err := f.svc.Funnel(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, 2)
}
