package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"gradpredict/internal/adapters/config"
	"gradpredict/pkg/errors"
)

// Client is the native-protocol connection used by the ClickHouse prediction log
type Client struct {
	conn     driver.Conn
	database string
}

// NewClient opens an LZ4-compressed connection and pings it within ctx
func NewClient(ctx context.Context, cfg config.ClickHouseConfig) (*Client, error) {
	opts := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.MaxOpenConns > 0 {
		opts.MaxOpenConns = cfg.MaxOpenConns
		opts.MaxIdleConns = cfg.MaxOpenConns
	}

	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open clickhouse %s", opts.Addr[0])
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "ping clickhouse %s", opts.Addr[0])
	}

	return &Client{conn: conn, database: cfg.Database}, nil
}

// Exec runs a statement that returns no rows (DDL and batched inserts)
func (c *Client) Exec(ctx context.Context, query string, args ...interface{}) error {
	return c.conn.Exec(ctx, query, args...)
}

// Health pings the server for the readiness probe
func (c *Client) Health(ctx context.Context) error {
	if err := c.conn.Ping(ctx); err != nil {
		return errors.Wrapf(err, "clickhouse %s", c.database)
	}
	return nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}
