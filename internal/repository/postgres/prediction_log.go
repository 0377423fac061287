package postgres

import (
	"context"
	"encoding/json"
	"time"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
)

// PredictionLogSchema creates the prediction log table
const PredictionLogSchema = `
	CREATE TABLE IF NOT EXISTS prediction_log (
		id            UUID PRIMARY KEY,
		request_id    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL,
		features      JSONB NOT NULL,
		prediction    INTEGER NOT NULL,
		label         TEXT NOT NULL,
		confidence    DOUBLE PRECISION NOT NULL,
		response_time DOUBLE PRECISION NOT NULL
	)`

// Compile-time check
var _ graduation.Sink = (*PredictionLogRepository)(nil)

// PredictionLogRepository stores prediction records in PostgreSQL
type PredictionLogRepository struct {
	db DBTX
}

// NewPredictionLogRepository creates a new prediction log repository
func NewPredictionLogRepository(db DBTX) *PredictionLogRepository {
	return &PredictionLogRepository{db: db}
}

// predictionLogRow is the table shape of a graduation.PredictionRecord
type predictionLogRow struct {
	ID           string    `db:"id"`
	RequestID    string    `db:"request_id"`
	CreatedAt    time.Time `db:"created_at"`
	Features     []byte    `db:"features"`
	Prediction   int       `db:"prediction"`
	Label        string    `db:"label"`
	Confidence   float64   `db:"confidence"`
	ResponseTime float64   `db:"response_time"`
}

// EnsureSchema creates the table if it does not exist
func (r *PredictionLogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, PredictionLogSchema); err != nil {
		return errors.Wrap(err, "failed to create prediction_log table")
	}
	return nil
}

// Name implements graduation.Sink
func (r *PredictionLogRepository) Name() string {
	return "postgres"
}

// Record inserts a batch of records with one statement
func (r *PredictionLogRepository) Record(ctx context.Context, records []graduation.PredictionRecord) error {
	if len(records) == 0 {
		return nil
	}

	rows := make([]predictionLogRow, len(records))
	for i, rec := range records {
		features, err := json.Marshal(rec.Features)
		if err != nil {
			return errors.Wrapf(err, "failed to encode features of record %s", rec.ID)
		}
		rows[i] = predictionLogRow{
			ID:           rec.ID,
			RequestID:    rec.RequestID,
			CreatedAt:    rec.Timestamp,
			Features:     features,
			Prediction:   rec.Class,
			Label:        rec.Label,
			Confidence:   rec.Confidence,
			ResponseTime: rec.ResponseTime,
		}
	}

	query := `
		INSERT INTO prediction_log (
			id, request_id, created_at, features,
			prediction, label, confidence, response_time
		) VALUES (
			:id, :request_id, :created_at, :features,
			:prediction, :label, :confidence, :response_time
		)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.db.NamedExecContext(ctx, query, rows); err != nil {
		return errors.Wrap(err, "failed to insert prediction log batch")
	}

	return nil
}

// Close implements graduation.Sink. The connection is owned by the client.
func (r *PredictionLogRepository) Close() error {
	return nil
}
