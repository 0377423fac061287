package postgres

import (
	"context"
	"database/sql"
)

// DBTX is a common interface for *sqlx.DB and *sqlx.Tx
// This allows repositories to work with both regular connections and transactions
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

	// Named query support, including slice arguments for batch inserts
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}
