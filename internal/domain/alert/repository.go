package alert

import (
	"context"

	"github.com/turtacn/DealRadar/pkg/types/common"
)

// RuleRepository abstracts persistence for communication rules.
type RuleRepository interface {
	// FindActive returns every active rule with its condition decoded.
	FindActive(ctx context.Context) ([]*Rule, error)

	// FindByID loads one rule.  Returns ErrCodeRuleNotFound when the id is
	// unknown.
	FindByID(ctx context.Context, id common.ID) (*Rule, error)
}

// DismissalRepository abstracts persistence for per-opportunity alert
// dismissals.
type DismissalRepository interface {
	// Dismiss records the dismissal.  Dismissing an already-dismissed pair
	// is a no-op; created reports whether a new record was written.
	Dismiss(ctx context.Context, d *Dismissal) (created bool, err error)

	// DismissedRuleIDs returns the set of rule ids dismissed for one
	// opportunity.
	DismissedRuleIDs(ctx context.Context, opportunityID common.ID) (map[common.ID]struct{}, error)
}
