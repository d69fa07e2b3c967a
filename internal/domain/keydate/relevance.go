package keydate

import "sort"

// RelevanceWindowDays bounds how far ahead a date may be and still surface.
const RelevanceWindowDays = 180

// DefaultOpportunityLimit is how many dates the single-opportunity view
// returns unless the caller asks for the unabridged list.
const DefaultOpportunityLimit = 5

// IsRelevant reports whether a resolved date falls inside the presentation
// window: at most 180 days out, or currently active.
func IsRelevant(r *Resolved) bool {
	return r.DaysUntil <= RelevanceWindowDays || r.IsActiveRange
}

// ─────────────────────────────────────────────────────────────────────────────
// Dashboard policy
// ─────────────────────────────────────────────────────────────────────────────

// DashboardView partitions the relevant dates for the global dashboard.
type DashboardView struct {
	// Deadlines holds deadline and shutdown dates.
	Deadlines []*Resolved `json:"deadlines"`

	// Events holds plain events plus recurring dates flagged as
	// opportunity-relevant.
	Events []*Resolved `json:"events"`

	// All is the full relevant set, unpartitioned.
	All []*Resolved `json:"all"`
}

// BuildDashboard applies the dashboard policy: window, sort each set by
// countdown ascending, and partition into deadlines and events.
func BuildDashboard(resolved []*Resolved) *DashboardView {
	upcoming := make([]*Resolved, 0, len(resolved))
	for _, r := range resolved {
		if IsRelevant(r) {
			upcoming = append(upcoming, r)
		}
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].DaysUntil < upcoming[j].DaysUntil
	})

	view := &DashboardView{
		Deadlines: make([]*Resolved, 0, len(upcoming)),
		Events:    make([]*Resolved, 0, len(upcoming)),
		All:       upcoming,
	}
	for _, r := range upcoming {
		switch {
		case r.IsDeadlineLike():
			view.Deadlines = append(view.Deadlines, r)
		case r.Type == DateTypeEvent, r.Type == DateTypeRecurring && r.OpportunityRelevant:
			view.Events = append(view.Events, r)
		}
	}
	return view
}

// ─────────────────────────────────────────────────────────────────────────────
// Single-opportunity policy
// ─────────────────────────────────────────────────────────────────────────────

// OpportunityDates is the truncation-aware result of the single-opportunity
// policy.  TotalCount and HasMore let the caller offer pagination without a
// second round trip.
type OpportunityDates struct {
	Dates      []*Resolved `json:"dates"`
	HasMore    bool        `json:"has_more"`
	TotalCount int         `json:"total_count"`
}

// urgencyRank orders urgency bands for the composite sort.  Red outranks
// active here: on a specific deal an imminent countdown needs attention
// before an already-running range.
func urgencyRank(u Urgency) int {
	switch u {
	case UrgencyRed:
		return 1
	case UrgencyYellow:
		return 2
	case UrgencyBlue:
		return 3
	case UrgencyActive:
		return 4
	case UrgencyNone:
		return 5
	default: // past
		return 6
	}
}

// SortForOpportunity orders resolved dates by the composite key: deadlines
// and shutdowns before everything else, then urgency rank, then countdown
// ascending.
func SortForOpportunity(dates []*Resolved) {
	typeRank := func(r *Resolved) int {
		if r.IsDeadlineLike() {
			return 0
		}
		return 1
	}
	sort.SliceStable(dates, func(i, j int) bool {
		a, b := dates[i], dates[j]
		if ta, tb := typeRank(a), typeRank(b); ta != tb {
			return ta < tb
		}
		if ua, ub := urgencyRank(a.Urgency), urgencyRank(b.Urgency); ua != ub {
			return ua < ub
		}
		return a.DaysUntil < b.DaysUntil
	})
}

// BuildForOpportunity applies the single-opportunity policy to resolved
// dates that have already passed the project-type scope check: window,
// composite sort, and truncation to DefaultOpportunityLimit unless showAll.
func BuildForOpportunity(resolved []*Resolved, showAll bool) *OpportunityDates {
	relevant := make([]*Resolved, 0, len(resolved))
	for _, r := range resolved {
		if IsRelevant(r) {
			relevant = append(relevant, r)
		}
	}
	SortForOpportunity(relevant)

	total := len(relevant)
	out := &OpportunityDates{Dates: relevant, TotalCount: total}
	if !showAll && total > DefaultOpportunityLimit {
		out.Dates = relevant[:DefaultOpportunityLimit]
		out.HasMore = true
	}
	return out
}
