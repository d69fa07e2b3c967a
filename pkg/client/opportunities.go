package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Opportunity is one pipeline deal as returned by the API.
type Opportunity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Organization    string    `json:"organization"`
	ProjectType     string    `json:"project_type"`
	Stage           string    `json:"stage"`
	EngagementLevel string    `json:"engagement_level,omitempty"`
	EstimatedValue  string    `json:"estimated_value,omitempty"`
	Owner           string    `json:"owner,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// StageTransition is one recorded stage change.
type StageTransition struct {
	ID            string    `json:"id"`
	OpportunityID string    `json:"opportunity_id"`
	FromStage     string    `json:"from_stage"`
	ToStage       string    `json:"to_stage"`
	Note          string    `json:"note,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Alert is one matched communication alert.
type Alert struct {
	RuleID           string `json:"rule_id"`
	TriggerType      string `json:"trigger_type"`
	Message          string `json:"message"`
	StakeholderName  string `json:"stakeholder_name"`
	StakeholderRole  string `json:"stakeholder_role,omitempty"`
	StakeholderEmail string `json:"stakeholder_email,omitempty"`
	Category         string `json:"category,omitempty"`
	Priority         int    `json:"priority"`
	EngagementLevel  string `json:"engagement_level"`
}

// ListFilter narrows ListOpportunities.
type ListFilter struct {
	Stage       string
	ProjectType string
	Search      string
}

// ListOpportunities fetches opportunities matching the filter.
func (c *Client) ListOpportunities(ctx context.Context, filter ListFilter) ([]Opportunity, error) {
	query := url.Values{}
	if filter.Stage != "" {
		query.Set("stage", filter.Stage)
	}
	if filter.ProjectType != "" {
		query.Set("project_type", filter.ProjectType)
	}
	if filter.Search != "" {
		query.Set("q", filter.Search)
	}
	var out []Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/v1/opportunities", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOpportunity fetches one opportunity.
func (c *Client) GetOpportunity(ctx context.Context, id string) (*Opportunity, error) {
	var out Opportunity
	if err := c.do(ctx, http.MethodGet, "/api/v1/opportunities/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangeStage moves an opportunity to a new pipeline stage.
func (c *Client) ChangeStage(ctx context.Context, id, stage, note string) (*StageTransition, error) {
	body := map[string]string{"stage": stage, "note": note}
	var out StageTransition
	if err := c.do(ctx, http.MethodPut, "/api/v1/opportunities/"+id+"/stage", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AlertsForOpportunity fetches the active alerts for one opportunity.
func (c *Client) AlertsForOpportunity(ctx context.Context, id string) ([]Alert, error) {
	var out []Alert
	if err := c.do(ctx, http.MethodGet, "/api/v1/opportunities/"+id+"/alerts", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DismissAlert suppresses one rule's alert for one opportunity.
func (c *Client) DismissAlert(ctx context.Context, opportunityID, ruleID, dismissedBy string) error {
	body := map[string]string{"dismissed_by": dismissedBy}
	return c.do(ctx, http.MethodPost,
		"/api/v1/opportunities/"+opportunityID+"/alerts/"+ruleID+"/dismiss", nil, body, nil)
}
