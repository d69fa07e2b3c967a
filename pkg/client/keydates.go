package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// ResolvedDate is one key date projected onto its next occurrence.
type ResolvedDate struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Type             string     `json:"date_type"`
	Priority         int        `json:"priority"`
	Occurrence       time.Time  `json:"calculated_date"`
	OccurrenceEnd    *time.Time `json:"calculated_end_date,omitempty"`
	DaysUntil        int        `json:"days_until"`
	IsActiveRange    bool       `json:"is_active"`
	Urgency          string     `json:"urgency"`
	ActionSuggestion string     `json:"action_suggestion,omitempty"`
}

// Dashboard is the global upcoming-dates view.
type Dashboard struct {
	Deadlines []ResolvedDate `json:"deadlines"`
	Events    []ResolvedDate `json:"events"`
	All       []ResolvedDate `json:"all"`
}

// OpportunityDates is the per-opportunity date list with truncation
// metadata.
type OpportunityDates struct {
	Dates      []ResolvedDate `json:"dates"`
	HasMore    bool           `json:"has_more"`
	TotalCount int            `json:"total_count"`
}

// UpcomingDates fetches the global dashboard view.
func (c *Client) UpcomingDates(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.do(ctx, http.MethodGet, "/api/v1/key-dates/upcoming", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DatesForOpportunity fetches the key dates relevant to one opportunity.
func (c *Client) DatesForOpportunity(ctx context.Context, opportunityID string, showAll bool) (*OpportunityDates, error) {
	query := url.Values{}
	if showAll {
		query.Set("all", "true")
	}
	var out OpportunityDates
	err := c.do(ctx, http.MethodGet, "/api/v1/opportunities/"+opportunityID+"/key-dates", query, nil, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
