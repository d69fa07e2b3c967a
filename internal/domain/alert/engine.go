package alert

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/DealRadar/internal/domain/opportunity"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// DeadlineChecker answers deadline-proximity questions for the engine
// without coupling it to the key-date catalog.  The application layer wires
// the temporal relevance engine behind this interface.
type DeadlineChecker interface {
	// DeadlineWithin reports whether the named key date resolves to a date
	// no more than withinDays from now.  A missing or past deadline reports
	// false without error.
	DeadlineWithin(ctx context.Context, name string, withinDays int, now time.Time) (bool, error)
}

// Engine evaluates communication rules against opportunities.
type Engine struct {
	deadlines DeadlineChecker
	logger    logging.Logger
}

// NewEngine constructs a rule-matching engine.
func NewEngine(deadlines DeadlineChecker, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Engine{deadlines: deadlines, logger: logger.Named("alert.engine")}
}

// AlertsFor evaluates every active rule against one opportunity and returns
// the matched alerts, excluding dismissed rules, deduplicated by rule id
// (first occurrence wins), and sorted by priority ascending then engagement
// rank.
func (e *Engine) AlertsFor(
	ctx context.Context,
	opp *opportunity.Opportunity,
	rules []*Rule,
	dismissed map[common.ID]struct{},
	now time.Time,
) []*Alert {
	seen := make(map[common.ID]struct{}, len(rules))
	alerts := make([]*Alert, 0, len(rules))

	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if _, ok := dismissed[rule.ID]; ok {
			continue
		}
		if _, ok := seen[rule.ID]; ok {
			continue
		}

		matched, err := e.matches(ctx, rule, opp, now)
		if err != nil {
			// A rule that cannot be evaluated must not take down the rest
			// of the alert list.
			e.logger.Warn("skipping unevaluable rule",
				logging.String("rule_id", rule.ID.String()),
				logging.String("trigger_type", string(rule.TriggerType)),
				logging.Err(err))
			continue
		}
		if !matched {
			continue
		}

		seen[rule.ID] = struct{}{}
		alerts = append(alerts, &Alert{
			RuleID:           rule.ID,
			TriggerType:      rule.TriggerType,
			Message:          RenderMessage(rule.AlertMessage, opp),
			StakeholderName:  rule.StakeholderName,
			StakeholderRole:  rule.StakeholderRole,
			StakeholderEmail: rule.StakeholderEmail,
			Category:         rule.Category,
			Priority:         rule.Priority,
			EngagementLevel:  rule.EngagementLevel,
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		if alerts[i].Priority != alerts[j].Priority {
			return alerts[i].Priority < alerts[j].Priority
		}
		return alerts[i].EngagementLevel.Rank() < alerts[j].EngagementLevel.Rank()
	})
	return alerts
}

func (e *Engine) matches(ctx context.Context, rule *Rule, opp *opportunity.Opportunity, now time.Time) (bool, error) {
	switch cond := rule.Condition.(type) {
	case ProjectTypeSetCondition:
		// Rule conditions are written in the display vocabulary.
		return cond.ProjectType == opp.DisplayProjectType(), nil

	case StageChangeCondition:
		return cond.To == string(opp.Stage), nil

	case ValueThresholdCondition:
		if cond.MinValue == nil {
			// A threshold rule without a floor is unconfigured.
			return false, nil
		}
		v := opp.Value()
		if v < *cond.MinValue {
			return false, nil
		}
		if cond.MaxValue != nil && v > *cond.MaxValue {
			return false, nil
		}
		return true, nil

	case DeadlineProximityCondition:
		if e.deadlines == nil {
			return false, nil
		}
		return e.deadlines.DeadlineWithin(ctx, cond.Deadline, cond.Horizon(), now)

	default:
		return false, nil
	}
}

// RenderMessage expands the rule's alert message with opportunity fields.
// Supported placeholders: {name}, {organization}, {project_type}, {stage},
// {value}.  Messages without placeholders pass through unchanged.
func RenderMessage(message string, opp *opportunity.Opportunity) string {
	if !strings.Contains(message, "{") {
		return message
	}
	r := strings.NewReplacer(
		"{name}", opp.Name,
		"{organization}", opp.Organization,
		"{project_type}", opp.DisplayProjectType(),
		"{stage}", string(opp.Stage),
		"{value}", strconv.FormatFloat(opp.Value(), 'f', -1, 64),
	)
	return r.Replace(message)
}
