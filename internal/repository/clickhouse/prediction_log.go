package clickhouse

import (
	"context"
	"strings"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
)

// PredictionLogSchema creates the prediction log table
const PredictionLogSchema = `
	CREATE TABLE IF NOT EXISTS prediction_log (
		id            UUID,
		request_id    String,
		created_at    DateTime64(3, 'UTC'),
		features      Map(String, Float64),
		prediction    Int32,
		label         LowCardinality(String),
		confidence    Float64,
		response_time Float64
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(created_at)
	ORDER BY (created_at, id)`

const predictionLogColumns = 8

// Execer runs a statement; satisfied by driver.Conn and the ClickHouse client
type Execer interface {
	Exec(ctx context.Context, query string, args ...interface{}) error
}

// PredictionLogRepository stores prediction records in ClickHouse for analytics
type PredictionLogRepository struct {
	conn Execer
}

// NewPredictionLogRepository creates a new prediction log repository
func NewPredictionLogRepository(conn Execer) *PredictionLogRepository {
	return &PredictionLogRepository{conn: conn}
}

// EnsureSchema creates the table if it does not exist
func (r *PredictionLogRepository) EnsureSchema(ctx context.Context) error {
	if err := r.conn.Exec(ctx, PredictionLogSchema); err != nil {
		return errors.Wrap(err, "failed to create prediction_log table")
	}
	return nil
}

// Name implements graduation.Sink
func (r *PredictionLogRepository) Name() string {
	return "clickhouse"
}

// Record inserts a batch of records with one multi-row INSERT
func (r *PredictionLogRepository) Record(ctx context.Context, records []graduation.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", predictionLogColumns), ", ") + ")"
	values := make([]string, len(records))
	args := make([]interface{}, 0, len(records)*predictionLogColumns)

	for i, rec := range records {
		values[i] = placeholders
		args = append(args,
			rec.ID,
			rec.RequestID,
			rec.Timestamp,
			rec.Features,
			int32(rec.Class),
			rec.Label,
			rec.Confidence,
			rec.ResponseTime,
		)
	}

	query := `
		INSERT INTO prediction_log (
			id, request_id, created_at, features,
			prediction, label, confidence, response_time
		) VALUES ` + strings.Join(values, ", ")

	if err := r.conn.Exec(ctx, query, args...); err != nil {
		return errors.Wrap(err, "failed to insert prediction log batch")
	}

	return nil
}

// Close implements graduation.Sink. The connection is owned by the client.
func (r *PredictionLogRepository) Close() error {
	return nil
}

var _ graduation.Sink = (*PredictionLogRepository)(nil)
