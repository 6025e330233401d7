package persistence

import (
	"context"
	"database/sql"
)

// Executor abstracts *sql.DB and *sql.Tx so repositories can run inside or
// outside a transaction.
type Executor interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// executor returns tx if present, otherwise the pool
func executor(db *sql.DB, tx *sql.Tx) Executor {
	if tx != nil {
		return tx
	}
	return db
}
