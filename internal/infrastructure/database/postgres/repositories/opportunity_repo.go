package repositories

import (
	"context"
	"database/sql"
	goerrors "errors"
	"time"

	"github.com/turtacn/DealRadar/internal/domain/opportunity"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// OpportunityRepo implements opportunity.Repository on PostgreSQL.
type OpportunityRepo struct {
	baseRepo
}

// NewOpportunityRepo constructs an opportunity repository.
func NewOpportunityRepo(db *sql.DB, logger logging.Logger) *OpportunityRepo {
	return &OpportunityRepo{baseRepo: newBaseRepo(db, logger, "opportunity")}
}

var _ opportunity.Repository = (*OpportunityRepo)(nil)

const opportunityColumns = `
	id, name, organization, project_type, stage, engagement_level,
	estimated_value, owner, created_at, updated_at`

func scanOpportunity(s scanner) (*opportunity.Opportunity, error) {
	var (
		opp             opportunity.Opportunity
		id              string
		engagementLevel sql.NullString
		estimatedValue  sql.NullString
		owner           sql.NullString
	)
	err := s.Scan(
		&id, &opp.Name, &opp.Organization, &opp.ProjectType, &opp.Stage,
		&engagementLevel, &estimatedValue, &owner, &opp.CreatedAt, &opp.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	opp.ID = common.ID(id)
	opp.EngagementLevel = engagementLevel.String
	opp.EstimatedValue = estimatedValue.String
	opp.Owner = owner.String
	return &opp, nil
}

// FindByID loads one opportunity.
func (r *OpportunityRepo) FindByID(ctx context.Context, id common.ID) (*opportunity.Opportunity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+opportunityColumns+` FROM opportunities WHERE id = $1`, string(id))
	opp, err := scanOpportunity(row)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeOpportunityNotFound, "opportunity not found").
				WithDetail("id=" + id.String())
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query opportunity by id")
	}
	return opp, nil
}

// List returns opportunities matching the filter, newest first.
func (r *OpportunityRepo) List(ctx context.Context, filter opportunity.ListFilter) ([]*opportunity.Opportunity, error) {
	query := `SELECT` + opportunityColumns + ` FROM opportunities WHERE 1=1`
	var args []interface{}
	next := func(v interface{}) string {
		args = append(args, v)
		return placeholder(len(args))
	}

	if filter.Stage != "" {
		query += ` AND stage = ` + next(string(filter.Stage))
	}
	if filter.ProjectType != "" {
		query += ` AND project_type = ` + next(filter.ProjectType)
	}
	if filter.Search != "" {
		p := next("%" + filter.Search + "%")
		query += ` AND (name ILIKE ` + p + ` OR organization ILIKE ` + p + `)`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query opportunities")
	}
	defer rows.Close()

	var opps []*opportunity.Opportunity
	for rows.Next() {
		opp, err := scanOpportunity(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan opportunity row")
		}
		opps = append(opps, opp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate opportunity rows")
	}
	return opps, nil
}

// UpdateStage moves the opportunity and records the transition in one
// transaction.
func (r *OpportunityRepo) UpdateStage(ctx context.Context, id common.ID, to opportunity.Stage, note string, at time.Time) (*opportunity.StageTransition, error) {
	tr := &opportunity.StageTransition{
		ID:            common.NewID(),
		OpportunityID: id,
		ToStage:       to,
		Note:          note,
		OccurredAt:    at,
	}

	err := r.inTx(ctx, func(tx *sql.Tx) error {
		var from opportunity.Stage
		err := tx.QueryRowContext(ctx,
			`SELECT stage FROM opportunities WHERE id = $1 FOR UPDATE`, string(id)).Scan(&from)
		if err != nil {
			if goerrors.Is(err, sql.ErrNoRows) {
				return errors.New(errors.ErrCodeOpportunityNotFound, "opportunity not found").
					WithDetail("id=" + id.String())
			}
			return errors.Wrap(err, errors.ErrCodeStorageUnavailable, "lock opportunity row")
		}
		tr.FromStage = from

		if _, err := tx.ExecContext(ctx,
			`UPDATE opportunities SET stage = $1, updated_at = $2 WHERE id = $3`,
			string(to), at, string(id)); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "update opportunity stage")
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO stage_transitions (id, opportunity_id, from_stage, to_stage, note, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			string(tr.ID), string(id), string(from), string(to), note, at); err != nil {
			return errors.Wrap(err, errors.ErrCodeDatabaseError, "insert stage transition")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tr, nil
}

// Transitions returns the stage history of one opportunity, oldest first.
func (r *OpportunityRepo) Transitions(ctx context.Context, id common.ID) ([]*opportunity.StageTransition, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, opportunity_id, from_stage, to_stage, note, occurred_at
		FROM stage_transitions WHERE opportunity_id = $1 ORDER BY occurred_at`,
		string(id))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query transitions")
	}
	defer rows.Close()

	var trs []*opportunity.StageTransition
	for rows.Next() {
		var (
			tr    opportunity.StageTransition
			trID  string
			oppID string
			note  sql.NullString
		)
		if err := rows.Scan(&trID, &oppID, &tr.FromStage, &tr.ToStage, &note, &tr.OccurredAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan transition row")
		}
		tr.ID = common.ID(trID)
		tr.OpportunityID = common.ID(oppID)
		tr.Note = note.String
		trs = append(trs, &tr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate transition rows")
	}
	return trs, nil
}

// Activities returns logged touchpoints, newest first.
func (r *OpportunityRepo) Activities(ctx context.Context, id common.ID) ([]*opportunity.Activity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, opportunity_id, kind, summary, occurred_at
		FROM activities WHERE opportunity_id = $1 ORDER BY occurred_at DESC`,
		string(id))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query activities")
	}
	defer rows.Close()

	var acts []*opportunity.Activity
	for rows.Next() {
		var (
			act   opportunity.Activity
			actID string
			oppID string
		)
		if err := rows.Scan(&actID, &oppID, &act.Kind, &act.Summary, &act.OccurredAt); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan activity row")
		}
		act.ID = common.ID(actID)
		act.OpportunityID = common.ID(oppID)
		acts = append(acts, &act)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate activity rows")
	}
	return acts, nil
}

// Aging returns open opportunities whose most recent activity (or creation,
// when no activity was ever logged) is older than staleAfter, most stalled
// first.
func (r *OpportunityRepo) Aging(ctx context.Context, now time.Time, staleAfter time.Duration, limit int) ([]*opportunity.AgingEntry, error) {
	cutoff := now.Add(-staleAfter)
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.organization, o.project_type, o.stage, o.engagement_level,
		       o.estimated_value, o.owner, o.created_at, o.updated_at,
		       MAX(a.occurred_at) AS last_activity
		FROM opportunities o
		LEFT JOIN activities a ON a.opportunity_id = o.id
		WHERE o.stage NOT IN ('active', 'complete')
		GROUP BY o.id
		HAVING COALESCE(MAX(a.occurred_at), o.created_at) < $1
		ORDER BY COALESCE(MAX(a.occurred_at), o.created_at)
		LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query aging report")
	}
	defer rows.Close()

	var entries []*opportunity.AgingEntry
	for rows.Next() {
		var (
			opp             opportunity.Opportunity
			id              string
			engagementLevel sql.NullString
			estimatedValue  sql.NullString
			owner           sql.NullString
			lastActivity    sql.NullTime
		)
		err := rows.Scan(
			&id, &opp.Name, &opp.Organization, &opp.ProjectType, &opp.Stage,
			&engagementLevel, &estimatedValue, &owner, &opp.CreatedAt, &opp.UpdatedAt,
			&lastActivity,
		)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan aging row")
		}
		opp.ID = common.ID(id)
		opp.EngagementLevel = engagementLevel.String
		opp.EstimatedValue = estimatedValue.String
		opp.Owner = owner.String

		entry := &opportunity.AgingEntry{Opportunity: &opp}
		since := opp.CreatedAt
		if lastActivity.Valid {
			t := lastActivity.Time
			entry.LastActivity = &t
			since = t
		}
		entry.DaysStalled = int(now.Sub(since) / (24 * time.Hour))
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate aging rows")
	}
	return entries, nil
}

// FunnelCounts returns, per stage in funnel order, the number of distinct
// opportunities that have ever transitioned into that stage.  Stages never
// reached report zero.
func (r *OpportunityRepo) FunnelCounts(ctx context.Context) ([]*opportunity.FunnelCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_stage, COUNT(DISTINCT opportunity_id)
		FROM stage_transitions GROUP BY to_stage`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query funnel counts")
	}
	defer rows.Close()

	byStage := make(map[opportunity.Stage]int)
	for rows.Next() {
		var (
			stage opportunity.Stage
			count int
		)
		if err := rows.Scan(&stage, &count); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan funnel row")
		}
		byStage[stage] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate funnel rows")
	}

	counts := make([]*opportunity.FunnelCount, 0, len(opportunity.Stages))
	for _, stage := range opportunity.Stages {
		counts = append(counts, &opportunity.FunnelCount{Stage: stage, Count: byStage[stage]})
	}
	return counts, nil
}
