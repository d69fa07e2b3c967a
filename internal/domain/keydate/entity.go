// Package keydate defines the calendar-anchored key-date catalog and the
// temporal relevance engine that resolves, classifies, and ranks occurrences
// of those dates for presentation.
package keydate

import (
	"time"

	"github.com/turtacn/DealRadar/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// DateType enumeration
// ─────────────────────────────────────────────────────────────────────────────

// DateType categorizes the nature of a key date.
type DateType string

const (
	// DateTypeDeadline is a hard institutional cutoff (e.g., proposal
	// submission close).
	DateTypeDeadline DateType = "deadline"

	// DateTypeShutdown is a period during which the institution is closed
	// and no pipeline progress is possible.
	DateTypeShutdown DateType = "shutdown"

	// DateTypeEvent is a one-off calendar event relevant to stakeholders.
	DateTypeEvent DateType = "event"

	// DateTypeRecurring is an annually repeating date (semester starts,
	// budget cycles).
	DateTypeRecurring DateType = "recurring"
)

// ─────────────────────────────────────────────────────────────────────────────
// Urgency enumeration
// ─────────────────────────────────────────────────────────────────────────────

// Urgency is the discrete band summarizing proximity/status of an occurrence.
type Urgency string

const (
	// UrgencyActive means "now" falls inside the occurrence's date range.
	// Active-range occupancy dominates every countdown band.
	UrgencyActive Urgency = "active"

	// UrgencyRed / UrgencyYellow / UrgencyBlue are countdown bands driven by
	// the definition's warn-day thresholds, tightest first.
	UrgencyRed    Urgency = "red"
	UrgencyYellow Urgency = "yellow"
	UrgencyBlue   Urgency = "blue"

	// UrgencyNone means the occurrence is upcoming but beyond every threshold.
	UrgencyNone Urgency = "none"

	// UrgencyPast means the occurrence has already passed and is not active.
	UrgencyPast Urgency = "past"
)

// ─────────────────────────────────────────────────────────────────────────────
// Definition — the persisted key-date catalog entry
// ─────────────────────────────────────────────────────────────────────────────

// PriorityCritical marks definitions whose banner rendering is "CRITICAL"
// and which stay relevant to every opportunity even without a project-type
// scope.  Any priority >= 2 is informational.
const PriorityCritical = 1

// Thresholds carries the warn-day cutoffs for urgency classification.
// Correct classification assumes Red < Yellow < Blue; the invariant is
// authored out-of-band and not enforced here.
type Thresholds struct {
	RedDays    int `json:"warn_days_red"`
	YellowDays int `json:"warn_days_yellow"`
	BlueDays   int `json:"warn_days_blue"`
}

// Definition is a persisted, rarely-mutated key-date catalog entry.
//
// Exactly one anchor representation is present: either FixedDate, or the
// (RecurringMonth, RecurringDay) pair with both components non-zero.  If a
// range end is declared, exactly one end representation is present the same
// way.  A definition violating the anchor invariant fails resolution with
// ErrCodeMalformedDateDefinition.
type Definition struct {
	ID       common.ID `json:"id"`
	Name     string    `json:"name"`
	Type     DateType  `json:"date_type"`
	Priority int       `json:"priority"`
	Active   bool      `json:"active"`

	// Anchor: absolute date, or annually recurring month/day (1-12, 1-31).
	FixedDate      *time.Time `json:"fixed_date,omitempty"`
	RecurringMonth int        `json:"recurring_month,omitempty"`
	RecurringDay   int        `json:"recurring_day,omitempty"`

	// Optional range end, same two representations.
	EndDate           *time.Time `json:"end_date,omitempty"`
	RecurringEndMonth int        `json:"recurring_end_month,omitempty"`
	RecurringEndDay   int        `json:"recurring_end_day,omitempty"`

	Thresholds Thresholds `json:"thresholds"`

	// AppliesToProjectTypes scopes the definition to a set of project-type
	// display names; nil means "applies to all".
	AppliesToProjectTypes []string `json:"applies_to_project_types,omitempty"`

	// OpportunityRelevant marks recurring dates that should surface in the
	// dashboard events partition alongside plain events.
	OpportunityRelevant bool `json:"is_opportunity"`

	// ActionSuggestion is free-form guidance rendered next to events.
	ActionSuggestion string `json:"action_suggestion,omitempty"`
}

// HasFixedAnchor reports whether the definition anchors to an absolute date.
func (d *Definition) HasFixedAnchor() bool {
	return d.FixedDate != nil
}

// HasRecurringAnchor reports whether the definition anchors to an annually
// recurring month/day pair.
func (d *Definition) HasRecurringAnchor() bool {
	return d.RecurringMonth != 0 && d.RecurringDay != 0
}

// HasRangeEnd reports whether the definition declares a range end in either
// representation.
func (d *Definition) HasRangeEnd() bool {
	return d.EndDate != nil || (d.RecurringEndMonth != 0 && d.RecurringEndDay != 0)
}

// IsDeadlineLike reports whether the definition belongs to the deadlines
// partition (deadline or shutdown).
func (d *Definition) IsDeadlineLike() bool {
	return d.Type == DateTypeDeadline || d.Type == DateTypeShutdown
}

// AppliesToProjectType reports whether the definition is relevant to one
// specific opportunity with the given project type (display form).
//
// An unset scope applies to a specific opportunity only when the definition
// is critical: unscoped informational dates are general awareness, not
// actionable for a single deal.
func (d *Definition) AppliesToProjectType(projectType string) bool {
	if d.AppliesToProjectTypes == nil {
		return d.Priority == PriorityCritical
	}
	for _, pt := range d.AppliesToProjectTypes {
		if pt == projectType {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Resolved — the ephemeral, per-request projection of a Definition
// ─────────────────────────────────────────────────────────────────────────────

// Resolved is a Definition projected onto a concrete occurrence relative to
// a reference instant.  It is recomputed on every request and never stored.
type Resolved struct {
	Definition

	// Occurrence is the concrete next calendar date the definition refers
	// to.  For fixed anchors it may be in the past.
	Occurrence time.Time `json:"calculated_date"`

	// OccurrenceEnd is the resolved range end, when a range is declared.
	OccurrenceEnd *time.Time `json:"calculated_end_date,omitempty"`

	// DaysUntil is ceil((Occurrence - now) / 24h): 0 for today's
	// occurrence, negative once past.
	DaysUntil int `json:"days_until"`

	// IsActiveRange is true when "now" falls inside [Occurrence,
	// OccurrenceEnd] inclusive.
	IsActiveRange bool `json:"is_active"`

	Urgency Urgency `json:"urgency"`
}
