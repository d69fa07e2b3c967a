// Package repositories implements the domain repository interfaces on
// PostgreSQL.
package repositories

import (
	"context"
	"database/sql"
	"strconv"

	"github.com/turtacn/DealRadar/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/DealRadar/pkg/errors"
)

// queryExecutor is the subset of *sql.DB / *sql.Tx the repositories use, so
// a method can run inside or outside a transaction unchanged.
type queryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// scanner abstracts *sql.Row and *sql.Rows for shared row-mapping helpers.
type scanner interface {
	Scan(dest ...interface{}) error
}

type baseRepo struct {
	db     *sql.DB
	logger logging.Logger
}

func newBaseRepo(db *sql.DB, logger logging.Logger, name string) baseRepo {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return baseRepo{db: db, logger: logger.Named("repo." + name)}
}

// placeholder renders the n-th positional query parameter ($1, $2, ...).
func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// inTx runs fn inside a transaction, committing on success and rolling back
// on error or panic.
func (r baseRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "begin transaction")
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "commit transaction")
	}
	return nil
}
