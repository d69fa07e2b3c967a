package repositories

import (
	"context"
	"database/sql"
	goerrors "errors"

	"github.com/turtacn/DealRadar/internal/domain/alert"
	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
	"github.com/turtacn/DealRadar/pkg/types/common"
)

// RuleRepo implements alert.RuleRepository on PostgreSQL.  Rule conditions
// are stored as JSONB and decoded into their trigger-specific types on read.
type RuleRepo struct {
	baseRepo
}

// NewRuleRepo constructs a communication-rule repository.
func NewRuleRepo(db *sql.DB, logger logging.Logger) *RuleRepo {
	return &RuleRepo{baseRepo: newBaseRepo(db, logger, "rule")}
}

var _ alert.RuleRepository = (*RuleRepo)(nil)

const ruleColumns = `
	id, trigger_type, trigger_condition,
	stakeholder_name, stakeholder_role, stakeholder_email,
	engagement_level, alert_message, category, priority, active`

func scanRule(s scanner) (*alert.Rule, error) {
	var (
		rule        alert.Rule
		id          string
		rawCond     []byte
		role, email sql.NullString
		category    sql.NullString
	)
	err := s.Scan(
		&id, &rule.TriggerType, &rawCond,
		&rule.StakeholderName, &role, &email,
		&rule.EngagementLevel, &rule.AlertMessage, &category,
		&rule.Priority, &rule.Active,
	)
	if err != nil {
		return nil, err
	}
	rule.ID = common.ID(id)
	rule.StakeholderRole = role.String
	rule.StakeholderEmail = email.String
	rule.Category = category.String

	cond, err := alert.DecodeCondition(rule.TriggerType, rawCond)
	if err != nil {
		return nil, err
	}
	rule.Condition = cond
	return &rule, nil
}

// FindActive returns every active rule.  A rule whose stored condition no
// longer decodes is skipped with a warning rather than poisoning the whole
// list.
func (r *RuleRepo) FindActive(ctx context.Context) ([]*alert.Rule, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT`+ruleColumns+` FROM communication_rules WHERE active ORDER BY priority, stakeholder_name`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query rules")
	}
	defer rows.Close()

	var rules []*alert.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			if errors.IsCode(err, errors.ErrCodeRuleConditionInvalid) {
				r.logger.Warn("skipping rule with undecodable condition", logging.Err(err))
				continue
			}
			return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "scan rule row")
		}
		rules = append(rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "iterate rule rows")
	}
	return rules, nil
}

// FindByID loads one rule.
func (r *RuleRepo) FindByID(ctx context.Context, id common.ID) (*alert.Rule, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT`+ruleColumns+` FROM communication_rules WHERE id = $1`, string(id))
	rule, err := scanRule(row)
	if err != nil {
		if goerrors.Is(err, sql.ErrNoRows) {
			return nil, errors.New(errors.ErrCodeRuleNotFound, "rule not found").
				WithDetail("id=" + id.String())
		}
		if errors.IsCode(err, errors.ErrCodeRuleConditionInvalid) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageUnavailable, "query rule by id")
	}
	return rule, nil
}
