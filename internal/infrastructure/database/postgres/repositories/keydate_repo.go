package repositories

import (
	"context"
	"database/sql"
	goerrors "errors"

	"github.com/lib/pq"

	"github.com/turtacn/DealRadar/internal/domain/keydate"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// KeyDateRepo implements keydate.Repository on PostgreSQL.
type KeyDateRepo struct {
	baseRepo
}

// NewKeyDateRepo constructs a key-date repository.
func NewKeyDateRepo(db *sql.DB, logger logging.Logger) *KeyDateRepo {
	return &KeyDateRepo{baseRepo: newBaseRepo(db, logger, "keydate")}
}

var _ keydate.Repository = (*KeyDateRepo)(nil)

const keyDateColumns = `
	id, name, date_type, priority, active,
	fixed_date, recurring_month, recurring_day,
	end_date, recurring_end_month, recurring_end_day,
	warn_days_red, warn_days_yellow, warn_days_blue,
	applies_to_project_types, is_opportunity, action_suggestion`

func scanKeyDate(s scanner) (*keydate.Definition, error) {
	var (
		def              keydate.Definition
		id               string
		fixedDate        sql.NullTime
		recurringMonth   sql.NullInt64
		recurringDay     sql.NullInt64
		endDate          sql.NullTime
		recurringEndM    sql.NullInt64
		recurringEndD    sql.NullInt64
		appliesTo        pq.StringArray
		actionSuggestion sql.NullString
	)
	err := s.Scan(
		&id, &def.Name, &def.Type, &def.Priority, &def.Active,
		&fixedDate, &recurringMonth, &recurringDay,
		&endDate, &recurringEndM, &recurringEndD,
		&def.Thresholds.RedDays, &def.Thresholds.YellowDays, &def.Thresholds.BlueDays,
		&appliesTo, &def.OpportunityRelevant, &actionSuggestion,
	)
	if err != nil {
		return nil, err
	}

	def.ID = common.ID(id)
	if fixedDate.Valid {
		t := fixedDate.Time
		def.FixedDate = &t
	}
	def.RecurringMonth = int(recurringMonth.Int64)
	def.RecurringDay = int(recurringDay.Int64)
	if endDate.Valid {
		t := endDate.Time
		def.EndDate = &t
	}
	def.RecurringEndMonth = int(recurringEndM.Int64)
	def.RecurringEndDay = int(recurringEndD.Int64)
	if appliesTo != nil {
		def.AppliesToProjectTypes = []string(appliesTo)
	}
	def.ActionSuggestion = actionSuggestion.String
	return &def, nil
}

// FindActive returns every active key-date definition.
func (r *KeyDateRepo) FindActive(ctx context.Context) ([]*keydate.Definition, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+keyDateColumns+` FROM key_dates WHERE active ORDER BY name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query key dates")
	}
	defer rows.Close()

	var defs []*keydate.Definition
	for rows.Next() {
		def, err := scanKeyDate(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan key date row")
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate key date rows")
	}
	return defs, nil
}

// FindActiveByName looks up one active definition by its unique name.
func (r *KeyDateRepo) FindActiveByName(ctx context.Context, name string) (*keydate.Definition, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+keyDateColumns+` FROM key_dates WHERE active AND name = $1`, name)
	def, err := scanKeyDate(row)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeKeyDateNotFound, "key date not found").
				WithDetail("name=" + name)
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query key date by name")
	}
	return def, nil
}
