package repositories

import (
	"context"
	"database/sql"

	"github.com/turtacn/DealRadar/internal/domain/alert"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// DismissalRepo implements alert.DismissalRepository on PostgreSQL.  The
// UNIQUE(opportunity_id, rule_id) constraint plus ON CONFLICT DO NOTHING
// makes dismissal idempotent at the storage level, not just in application
// code.
type DismissalRepo struct {
	baseRepo
}

// NewDismissalRepo constructs a dismissal repository.
func NewDismissalRepo(db *sql.DB, logger logging.Logger) *DismissalRepo {
	return &DismissalRepo{baseRepo: newBaseRepo(db, logger, "dismissal")}
}

var _ alert.DismissalRepository = (*DismissalRepo)(nil)

// Dismiss records the dismissal; created is false on replay.
func (r *DismissalRepo) Dismiss(ctx context.Context, d *alert.Dismissal) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO dismissed_alerts (opportunity_id, rule_id, dismissed_by, dismissed_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (opportunity_id, rule_id) DO NOTHING`,
		string(d.OpportunityID), string(d.RuleID), d.DismissedBy, d.DismissedAt)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "insert dismissal")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, errors.ErrCodeDatabaseError, "read affected rows")
	}
	return affected == 1, nil
}

// DismissedRuleIDs returns the dismissed rule ids for one opportunity.
func (r *DismissalRepo) DismissedRuleIDs(ctx context.Context, opportunityID common.ID) (map[common.ID]struct{}, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rule_id FROM dismissed_alerts WHERE opportunity_id = $1`,
		string(opportunityID))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query dismissals")
	}
	defer rows.Close()

	ids := make(map[common.ID]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan dismissal row")
		}
		ids[common.ID(id)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate dismissal rows")
	}
	return ids, nil
}
