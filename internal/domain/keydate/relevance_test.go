package keydate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resolved(name string, dt DateType, daysOut int, u Urgency) *Resolved {
	now := fixedNow()
	return &Resolved{
		Definition: Definition{Name: name, Type: dt, Active: true},
		Occurrence: now.AddDate(0, 0, daysOut),
		DaysUntil:  daysOut,
		Urgency:    u,
	}
}

func TestIsRelevantWindow(t *testing.T) {
	assert.True(t, IsRelevant(resolved("soon", DateTypeEvent, 10, UrgencyYellow)))
	assert.True(t, IsRelevant(resolved("edge", DateTypeEvent, 180, UrgencyNone)))
	assert.False(t, IsRelevant(resolved("far", DateTypeEvent, 181, UrgencyNone)))

	active := resolved("running", DateTypeShutdown, 400, UrgencyActive)
	active.IsActiveRange = true
	assert.True(t, IsRelevant(active), "active ranges bypass the window")
}

func TestBuildDashboardPartitionsAndSorts(t *testing.T) {
	shutdown := resolved("winter shutdown", DateTypeShutdown, 40, UrgencyYellow)
	deadline := resolved("grant deadline", DateTypeDeadline, 5, UrgencyRed)
	event := resolved("alliance summit", DateTypeEvent, 20, UrgencyYellow)
	semester := resolved("fall semester", DateTypeRecurring, 60, UrgencyBlue)
	semester.OpportunityRelevant = true
	budget := resolved("budget cycle", DateTypeRecurring, 30, UrgencyYellow)
	far := resolved("next year", DateTypeDeadline, 300, UrgencyNone)

	view := BuildDashboard([]*Resolved{shutdown, deadline, event, semester, budget, far})

	require.Len(t, view.Deadlines, 2)
	assert.Equal(t, "grant deadline", view.Deadlines[0].Name)
	assert.Equal(t, "winter shutdown", view.Deadlines[1].Name)

	require.Len(t, view.Events, 2)
	assert.Equal(t, "alliance summit", view.Events[0].Name)
	assert.Equal(t, "fall semester", view.Events[1].Name)

	// Plain recurring without the opportunity flag lands in All only.
	assert.Len(t, view.All, 5)
}

func TestSortForOpportunityCompositeOrder(t *testing.T) {
	dates := []*Resolved{
		resolved("event red", DateTypeEvent, 3, UrgencyRed),
		resolved("deadline yellow", DateTypeDeadline, 20, UrgencyYellow),
		resolved("deadline red far", DateTypeDeadline, 6, UrgencyRed),
		resolved("deadline red near", DateTypeDeadline, 2, UrgencyRed),
		resolved("event none", DateTypeEvent, 150, UrgencyNone),
	}

	SortForOpportunity(dates)

	got := make([]string, len(dates))
	for i, d := range dates {
		got[i] = d.Name
	}
	assert.Equal(t, []string{
		"deadline red near",
		"deadline red far",
		"deadline yellow",
		"event red",
		"event none",
	}, got)
}

func TestSortForOpportunityRedBeforeActive(t *testing.T) {
	active := resolved("running range", DateTypeEvent, -2, UrgencyActive)
	active.IsActiveRange = true
	red := resolved("imminent", DateTypeEvent, 3, UrgencyRed)

	dates := []*Resolved{active, red}
	SortForOpportunity(dates)
	assert.Equal(t, "imminent", dates[0].Name)
}

func TestBuildForOpportunityTruncation(t *testing.T) {
	var dates []*Resolved
	for i := 1; i <= 8; i++ {
		dates = append(dates, resolved(fmt.Sprintf("date-%d", i), DateTypeEvent, i*10, UrgencyNone))
	}

	out := BuildForOpportunity(dates, false)
	assert.Len(t, out.Dates, DefaultOpportunityLimit)
	assert.True(t, out.HasMore)
	assert.Equal(t, 8, out.TotalCount)

	all := BuildForOpportunity(dates, true)
	assert.Len(t, all.Dates, 8)
	assert.False(t, all.HasMore)
	assert.Equal(t, 8, all.TotalCount)
}

func TestBuildForOpportunityAtLimitNoTruncation(t *testing.T) {
	var dates []*Resolved
	for i := 1; i <= DefaultOpportunityLimit; i++ {
		dates = append(dates, resolved(fmt.Sprintf("date-%d", i), DateTypeEvent, i, UrgencyRed))
	}

	out := BuildForOpportunity(dates, false)
	assert.Len(t, out.Dates, DefaultOpportunityLimit)
	assert.False(t, out.HasMore)
	assert.Equal(t, DefaultOpportunityLimit, out.TotalCount)
}

func TestAppliesToProjectTypeScoping(t *testing.T) {
	scoped := &Definition{AppliesToProjectTypes: []string{"Research Agreement", "Senior Design"}}
	assert.True(t, scoped.AppliesToProjectType("Research Agreement"))
	assert.False(t, scoped.AppliesToProjectType("Consulting Engagement"))

	critical := &Definition{Priority: PriorityCritical}
	assert.True(t, critical.AppliesToProjectType("anything"))

	informational := &Definition{Priority: 2}
	assert.False(t, informational.AppliesToProjectType("anything"))

	emptyScope := &Definition{Priority: 2, AppliesToProjectTypes: []string{}}
	assert.False(t, emptyScope.AppliesToProjectType("anything"),
		"an empty but non-nil scope matches nothing")
}
