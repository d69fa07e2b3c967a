// Package tracker is the application layer of the pipeline tracker: it
// orchestrates the key-date relevance engine, the alert rule engine, and the
// opportunity read models behind a single service facade.
package tracker

import (
	"context"
	"time"

	"github.com/turtacn/DealRadar/internal/domain/alert"
	"github.com/turtacn/DealRadar/internal/domain/keydate"
	"github.com/turtacn/DealRadar/internal/domain/opportunity"
	"github.com/turtacn/DealRadar/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// Aging report policy: opportunities with no touchpoint for a week, capped.
const (
	agingStaleAfter = 7 * 24 * time.Hour
	agingLimit      = 10
)

// Deps bundles the collaborators the service needs.
type Deps struct {
	KeyDates   keydate.Repository
	Opps       opportunity.Repository
	Rules      alert.RuleRepository
	Dismissals alert.DismissalRepository
	Producer   kafka.Producer
	Metrics    *prometheus.Metrics
	Logger     logging.Logger

	// Now overrides the clock; nil means time.Now.  Every derived value
	// (countdowns, urgency, proximity) is computed from one sample per
	// request so a response is internally consistent.
	Now func() time.Time
}

// Service is the application facade over the tracker's domain.
type Service struct {
	keyDates   keydate.Repository
	opps       opportunity.Repository
	rules      alert.RuleRepository
	dismissals alert.DismissalRepository
	engine     *alert.Engine
	producer   kafka.Producer
	metrics    *prometheus.Metrics
	logger     logging.Logger
	now        func() time.Time
}

// NewService wires the service from its dependencies.
func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = logging.NewNopLogger()
	}
	if d.Producer == nil {
		d.Producer = kafka.NewNopProducer()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &Service{
		keyDates:   d.KeyDates,
		opps:       d.Opps,
		rules:      d.Rules,
		dismissals: d.Dismissals,
		producer:   d.Producer,
		metrics:    d.Metrics,
		logger:     d.Logger.Named("tracker"),
		now:        d.Now,
	}
	s.engine = alert.NewEngine(&deadlineChecker{keyDates: d.KeyDates}, d.Logger)
	return s
}

// ─────────────────────────────────────────────────────────────────────────────
// Key dates
// ─────────────────────────────────────────────────────────────────────────────

// resolveActiveDates loads the catalog and resolves every definition against
// one clock sample.  A malformed definition is logged, counted, and skipped:
// one bad row must not blank the dashboard.
func (s *Service) resolveActiveDates(ctx context.Context, now time.Time) ([]*keydate.Resolved, error) {
	defs, err := s.keyDates.FindActive(ctx)
	if err != nil {
		return nil, err
	}

	resolved := make([]*keydate.Resolved, 0, len(defs))
	for _, def := range defs {
		r, err := keydate.ResolveAndClassify(def, now)
		if err != nil {
			s.logger.Warn("skipping malformed key date",
				logging.String("key_date_id", def.ID.String()),
				logging.String("key_date_name", def.Name),
				logging.Err(err))
			if s.metrics != nil {
				s.metrics.MalformedDefsSkipped.Inc()
			}
			continue
		}
		resolved = append(resolved, r)
	}
	if s.metrics != nil {
		s.metrics.DatesResolved.Add(float64(len(resolved)))
	}
	return resolved, nil
}

// UpcomingDates returns the global dashboard view of upcoming key dates.
func (s *Service) UpcomingDates(ctx context.Context) (*keydate.DashboardView, error) {
	resolved, err := s.resolveActiveDates(ctx, s.now())
	if err != nil {
		return nil, err
	}
	return keydate.BuildDashboard(resolved), nil
}

// DatesForOpportunity returns key dates relevant to one opportunity, scoped
// by its project type, composite-sorted, and truncated unless showAll.
func (s *Service) DatesForOpportunity(ctx context.Context, id common.ID, showAll bool) (*keydate.OpportunityDates, error) {
	opp, err := s.opps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	resolved, err := s.resolveActiveDates(ctx, now)
	if err != nil {
		return nil, err
	}

	projectType := opp.DisplayProjectType()
	scoped := resolved[:0:0]
	for _, r := range resolved {
		if r.AppliesToProjectType(projectType) {
			scoped = append(scoped, r)
		}
	}
	return keydate.BuildForOpportunity(scoped, showAll), nil
}

// deadlineChecker answers the alert engine's proximity questions from the
// key-date catalog.
type deadlineChecker struct {
	keyDates keydate.Repository
}

func (c *deadlineChecker) DeadlineWithin(ctx context.Context, name string, withinDays int, now time.Time) (bool, error) {
	def, err := c.keyDates.FindActiveByName(ctx, name)
	if err != nil {
		if errors.IsNotFound(err) {
			// A rule naming a retired deadline simply stops matching.
			return false, nil
		}
		return false, err
	}
	r, err := keydate.ResolveAndClassify(def, now)
	if err != nil {
		return false, err
	}
	return r.DaysUntil >= 0 && r.DaysUntil <= withinDays, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Alerts
// ─────────────────────────────────────────────────────────────────────────────

// AlertsForOpportunity evaluates every active communication rule against the
// opportunity, excluding dismissed rules.
func (s *Service) AlertsForOpportunity(ctx context.Context, id common.ID) ([]*alert.Alert, error) {
	opp, err := s.opps.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rules, err := s.rules.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	dismissed, err := s.dismissals.DismissedRuleIDs(ctx, id)
	if err != nil {
		return nil, err
	}

	alerts := s.engine.AlertsFor(ctx, opp, rules, dismissed, s.now())
	if s.metrics != nil {
		s.metrics.AlertsEvaluated.Add(float64(len(rules)))
		s.metrics.AlertsMatched.Add(float64(len(alerts)))
	}
	return alerts, nil
}

// DismissAlert durably suppresses one rule's alert for one opportunity.
// Dismissing an already-dismissed pair succeeds without effect.  A new
// dismissal is published as an event; replays are not.
func (s *Service) DismissAlert(ctx context.Context, opportunityID, ruleID common.ID, dismissedBy string) error {
	if _, err := s.opps.FindByID(ctx, opportunityID); err != nil {
		return err
	}
	if _, err := s.rules.FindByID(ctx, ruleID); err != nil {
		return err
	}

	d := &alert.Dismissal{
		OpportunityID: opportunityID,
		RuleID:        ruleID,
		DismissedBy:   dismissedBy,
		DismissedAt:   s.now(),
	}
	created, err := s.dismissals.Dismiss(ctx, d)
	if err != nil {
		return err
	}
	if !created {
		s.logger.Debug("dismissal replayed",
			logging.String("opportunity_id", opportunityID.String()),
			logging.String("rule_id", ruleID.String()))
		return nil
	}

	if s.metrics != nil {
		s.metrics.DismissalsTotal.Inc()
	}
	s.publish(ctx, kafka.TopicAlertDismissed, opportunityID.String(),
		kafka.NewEnvelope("alert.dismissed", d.DismissedAt, kafka.AlertDismissedEvent{
			OpportunityID: opportunityID.String(),
			RuleID:        ruleID.String(),
			DismissedBy:   dismissedBy,
			DismissedAt:   d.DismissedAt,
		}))
	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Opportunities
// ─────────────────────────────────────────────────────────────────────────────

// GetOpportunity loads one opportunity.
func (s *Service) GetOpportunity(ctx context.Context, id common.ID) (*opportunity.Opportunity, error) {
	return s.opps.FindByID(ctx, id)
}

// ListOpportunities returns opportunities matching the filter.
func (s *Service) ListOpportunities(ctx context.Context, filter opportunity.ListFilter) ([]*opportunity.Opportunity, error) {
	return s.opps.List(ctx, filter)
}

// ChangeStage moves an opportunity to a new stage, records the transition,
// and publishes a stage-changed event.
func (s *Service) ChangeStage(ctx context.Context, id common.ID, to opportunity.Stage, note string) (*opportunity.StageTransition, error) {
	if !to.IsValid() {
		return nil, errors.New(errors.ErrCodeInvalidStage, "unknown pipeline stage: "+string(to))
	}

	tr, err := s.opps.UpdateStage(ctx, id, to, note, s.now())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.TopicStageChanged, id.String(),
		kafka.NewEnvelope("opportunity.stage_changed", tr.OccurredAt, kafka.StageChangedEvent{
			OpportunityID: id.String(),
			FromStage:     string(tr.FromStage),
			ToStage:       string(tr.ToStage),
			Note:          note,
			OccurredAt:    tr.OccurredAt,
		}))
	return tr, nil
}

// Transitions returns the stage history of one opportunity.
func (s *Service) Transitions(ctx context.Context, id common.ID) ([]*opportunity.StageTransition, error) {
	if _, err := s.opps.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.opps.Transitions(ctx, id)
}

// Activities returns the logged touchpoints of one opportunity.
func (s *Service) Activities(ctx context.Context, id common.ID) ([]*opportunity.Activity, error) {
	if _, err := s.opps.FindByID(ctx, id); err != nil {
		return nil, err
	}
	return s.opps.Activities(ctx, id)
}

// ─────────────────────────────────────────────────────────────────────────────
// Analytics
// ─────────────────────────────────────────────────────────────────────────────

// AgingReport lists open opportunities with no activity for over a week,
// most stalled first, capped at ten.
func (s *Service) AgingReport(ctx context.Context) ([]*opportunity.AgingEntry, error) {
	return s.opps.Aging(ctx, s.now(), agingStaleAfter, agingLimit)
}

// Funnel returns, per stage in funnel order, how many distinct opportunities
// have ever reached that stage.
func (s *Service) Funnel(ctx context.Context) ([]*opportunity.FunnelCount, error) {
	return s.opps.FunnelCounts(ctx)
}

// ─────────────────────────────────────────────────────────────────────────────
// Event publishing
// ─────────────────────────────────────────────────────────────────────────────

// publish sends one event, logging rather than failing the request when the
// broker is unavailable: events are advisory, the state change has already
// committed.
func (s *Service) publish(ctx context.Context, topic, key string, env kafka.EventEnvelope) {
	if err := s.producer.Publish(ctx, topic, key, env); err != nil {
		s.logger.Error("event publish failed",
			logging.String("topic", topic),
			logging.String("event_id", env.ID),
			logging.Err(err))
		if s.metrics != nil {
			s.metrics.EventsFailed.WithLabelValues(topic).Inc()
		}
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(topic).Inc()
	}
}
