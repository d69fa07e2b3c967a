// Package alert defines communication alert rules and the matching engine
// that evaluates them against opportunities.
package alert

import (
	"time"

	"github.com/turtacn/DealRadar/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Trigger types
// ─────────────────────────────────────────────────────────────────────────────

// TriggerType names the kind of condition a rule evaluates.
type TriggerType string

const (
	// TriggerProjectTypeSet fires when an opportunity's project type equals
	// the rule's (display-form) project type.
	TriggerProjectTypeSet TriggerType = "project_type_set"

	// TriggerStageChange fires when an opportunity sits in the rule's
	// target stage.
	TriggerStageChange TriggerType = "stage_change"

	// TriggerValueThreshold fires when an opportunity's estimated value is
	// inside the rule's bounds.
	TriggerValueThreshold TriggerType = "value_threshold"

	// TriggerDeadlineProximity fires when a named key date is within the
	// rule's horizon.
	TriggerDeadlineProximity TriggerType = "deadline_proximity"
)

// ─────────────────────────────────────────────────────────────────────────────
// Engagement levels
// ─────────────────────────────────────────────────────────────────────────────

// EngagementLevel is the ordered stakeholder-awareness tier attached to a
// rule, A highest.
type EngagementLevel string

const (
	EngagementA EngagementLevel = "A"
	EngagementC EngagementLevel = "C"
	EngagementI EngagementLevel = "I"
	EngagementO EngagementLevel = "O"
)

// Rank orders engagement levels for alert sorting; lower sorts first, and
// unknown levels sort last.
func (e EngagementLevel) Rank() int {
	switch e {
	case EngagementA:
		return 1
	case EngagementC:
		return 2
	case EngagementI:
		return 3
	case EngagementO:
		return 4
	default:
		return 5
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Rule and dismissal records
// ─────────────────────────────────────────────────────────────────────────────

// Rule is a persisted communication rule.  Condition is the decoded
// trigger-specific payload; its concrete type corresponds to TriggerType.
type Rule struct {
	ID          common.ID   `json:"id"`
	TriggerType TriggerType `json:"trigger_type"`
	Condition   Condition   `json:"trigger_condition"`

	StakeholderName  string `json:"stakeholder_name"`
	StakeholderRole  string `json:"stakeholder_role,omitempty"`
	StakeholderEmail string `json:"stakeholder_email,omitempty"`

	EngagementLevel EngagementLevel `json:"engagement_level"`
	AlertMessage    string          `json:"alert_message"`
	Category        string          `json:"category,omitempty"`
	Priority        int             `json:"priority"`
	Active          bool            `json:"active"`
}

// Dismissal records that one rule's alert has been suppressed for one
// opportunity.  Dismissals are durable and idempotent.
type Dismissal struct {
	OpportunityID common.ID `json:"opportunity_id"`
	RuleID        common.ID `json:"rule_id"`
	DismissedBy   string    `json:"dismissed_by,omitempty"`
	DismissedAt   time.Time `json:"dismissed_at"`
}

// Alert is one matched rule projected for presentation.  Alerts are computed
// per request and never stored.
type Alert struct {
	RuleID           common.ID       `json:"rule_id"`
	TriggerType      TriggerType     `json:"trigger_type"`
	Message          string          `json:"message"`
	StakeholderName  string          `json:"stakeholder_name"`
	StakeholderRole  string          `json:"stakeholder_role,omitempty"`
	StakeholderEmail string          `json:"stakeholder_email,omitempty"`
	Category         string          `json:"category,omitempty"`
	Priority         int             `json:"priority"`
	EngagementLevel  EngagementLevel `json:"engagement_level"`
}
