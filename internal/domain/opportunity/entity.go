// Package opportunity defines the sales-pipeline opportunity aggregate and
// its read-model queries.
package opportunity

import (
	"strconv"
	"time"

	"github.com/turtacn/DealRadar/pkg/types/common"
)

// ─────────────────────────────────────────────────────────────────────────────
// Pipeline stages
// ─────────────────────────────────────────────────────────────────────────────

// Stage is a pipeline stage code.
type Stage string

const (
	StageLead        Stage = "lead"
	StageQualified   Stage = "qualified"
	StageProposal    Stage = "proposal"
	StageNegotiation Stage = "negotiation"
	StageActive      Stage = "active"
	StageComplete    Stage = "complete"
)

// Stages lists every pipeline stage in funnel order.
var Stages = []Stage{
	StageLead, StageQualified, StageProposal,
	StageNegotiation, StageActive, StageComplete,
}

// IsValid reports whether s is a known pipeline stage.
func (s Stage) IsValid() bool {
	for _, v := range Stages {
		if s == v {
			return true
		}
	}
	return false
}

// ─────────────────────────────────────────────────────────────────────────────
// Project types
// ─────────────────────────────────────────────────────────────────────────────

// projectTypeDisplay maps stored project-type codes to the display names that
// key-date scopes and alert-rule conditions are written against.
var projectTypeDisplay = map[string]string{
	"tbd":           "TBD",
	"research":      "Research Agreement",
	"senior_design": "Senior Design",
	"consulting":    "Consulting Engagement",
	"workforce":     "Workforce Training",
	"membership":    "Alliance Membership",
	"does_not_fit":  "Does Not Fit",
}

// DisplayProjectType converts a stored project-type code to its display name.
// Unknown codes pass through unchanged so new codes degrade gracefully.
func DisplayProjectType(code string) string {
	if display, ok := projectTypeDisplay[code]; ok {
		return display
	}
	return code
}

// ─────────────────────────────────────────────────────────────────────────────
// Opportunity aggregate
// ─────────────────────────────────────────────────────────────────────────────

// Opportunity is one deal in the pipeline.
type Opportunity struct {
	ID              common.ID `json:"id"`
	Name            string    `json:"name"`
	Organization    string    `json:"organization"`
	ProjectType     string    `json:"project_type"`
	Stage           Stage     `json:"stage"`
	EngagementLevel string    `json:"engagement_level,omitempty"`

	// EstimatedValue is stored as entered; empty or unparseable values
	// evaluate to 0.
	EstimatedValue string `json:"estimated_value,omitempty"`

	Owner     string    `json:"owner,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayProjectType returns the display form of the opportunity's project
// type.
func (o *Opportunity) DisplayProjectType() string {
	return DisplayProjectType(o.ProjectType)
}

// Value parses the estimated value as a number, treating missing or
// malformed input as 0 rather than failing the caller.
func (o *Opportunity) Value() float64 {
	if o.EstimatedValue == "" {
		return 0
	}
	v, err := strconv.ParseFloat(o.EstimatedValue, 64)
	if err != nil {
		return 0
	}
	return v
}

// HasValue reports whether a parseable, non-empty estimated value is present.
// Alert rules with a minimum-value bound never match an opportunity without
// one.
func (o *Opportunity) HasValue() bool {
	if o.EstimatedValue == "" {
		return false
	}
	_, err := strconv.ParseFloat(o.EstimatedValue, 64)
	return err == nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Stage transitions and read models
// ─────────────────────────────────────────────────────────────────────────────

// StageTransition records one stage change of one opportunity.
type StageTransition struct {
	ID            common.ID `json:"id"`
	OpportunityID common.ID `json:"opportunity_id"`
	FromStage     Stage     `json:"from_stage"`
	ToStage       Stage     `json:"to_stage"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Activity is a logged touchpoint on an opportunity (call, email, meeting).
type Activity struct {
	ID            common.ID `json:"id"`
	OpportunityID common.ID `json:"opportunity_id"`
	Kind          string    `json:"kind"`
	Summary       string    `json:"summary"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AgingEntry is one stalled opportunity in the aging report.
type AgingEntry struct {
	Opportunity  *Opportunity `json:"opportunity"`
	LastActivity *time.Time   `json:"last_activity,omitempty"`
	DaysStalled  int          `json:"days_stalled"`
}

// FunnelCount is the number of distinct opportunities that have ever reached
// one stage.
type FunnelCount struct {
	Stage Stage `json:"stage"`
	Count int   `json:"count"`
}
