package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver

	"gradpredict/internal/adapters/config"
	"gradpredict/pkg/errors"
)

// Client owns the connection pool used by the Postgres prediction log.
// The log writes one batch at a time, so the pool stays small.
type Client struct {
	db       *sqlx.DB
	database string
}

// NewClient opens the pool and verifies it with a ping bounded by ctx
func NewClient(ctx context.Context, cfg config.PostgresConfig) (*Client, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DSN())
	if err != nil {
		return nil, errors.Wrapf(err, "connect postgres %s:%d/%s", cfg.Host, cfg.Port, cfg.Database)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 4
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &Client{db: db, database: cfg.Database}, nil
}

// DB exposes the pool to repositories
func (c *Client) DB() *sqlx.DB {
	return c.db
}

// Close releases every pooled connection
func (c *Client) Close() error {
	return c.db.Close()
}

// Health pings the database for the readiness probe
func (c *Client) Health(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return errors.Wrapf(err, "postgres %s", c.database)
	}
	return nil
}
