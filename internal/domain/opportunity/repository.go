package opportunity

import (
	"context"
	"time"

	"github.com/turtacn/DealRadar/pkg/types/common"
)

// ListFilter narrows List results.  Zero values mean "no constraint".
type ListFilter struct {
	Stage       Stage
	ProjectType string
	Search      string
}

// Repository abstracts persistence for opportunities and their history.
type Repository interface {
	// FindByID loads one opportunity.  Returns ErrCodeOpportunityNotFound
	// when the id is unknown.
	FindByID(ctx context.Context, id common.ID) (*Opportunity, error)

	// List returns opportunities matching the filter, newest first.
	List(ctx context.Context, filter ListFilter) ([]*Opportunity, error)

	// UpdateStage moves an opportunity to a new stage and records the
	// transition atomically.
	UpdateStage(ctx context.Context, id common.ID, to Stage, note string, at time.Time) (*StageTransition, error)

	// Transitions returns the full stage history of one opportunity, oldest
	// first.
	Transitions(ctx context.Context, id common.ID) ([]*StageTransition, error)

	// Activities returns logged touchpoints for one opportunity, newest
	// first.
	Activities(ctx context.Context, id common.ID) ([]*Activity, error)

	// Aging returns open opportunities with no activity for more than
	// staleAfter, capped at limit, most stalled first.
	Aging(ctx context.Context, now time.Time, staleAfter time.Duration, limit int) ([]*AgingEntry, error)

	// FunnelCounts returns, per stage in funnel order, the number of
	// distinct opportunities that have ever transitioned into that stage.
	FunnelCounts(ctx context.Context) ([]*FunnelCount, error)
}
