package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/internal/domain/graduation"
)

type fakeDB struct {
	execQueries []string
	namedQuery  string
	namedArg    interface{}
	err         error
}

func (f *fakeDB) ExecContext(_ context.Context, query string, _ ...interface{}) (sql.Result, error) {
	f.execQueries = append(f.execQueries, query)
	return nil, f.err
}

func (f *fakeDB) NamedExecContext(_ context.Context, query string, arg interface{}) (sql.Result, error) {
	f.namedQuery = query
	f.namedArg = arg
	return nil, f.err
}

func TestPredictionLogRepository_Record(t *testing.T) {
	db := &fakeDB{}
	repo := NewPredictionLogRepository(db)
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	err := repo.Record(context.Background(), []graduation.PredictionRecord{
		{
			ID:         "0b6f3a1e-0000-4000-8000-000000000001",
			RequestID:  "req-1",
			Timestamp:  at,
			Features:   map[string]float64{"ips_1": 3.5, "total_sks_ditempuh": 144},
			Class:      1,
			Label:      graduation.LabelLate,
			Confidence: 0.81,
		},
		{ID: "0b6f3a1e-0000-4000-8000-000000000002", Timestamp: at, Label: graduation.LabelOnTime},
	})
	require.NoError(t, err)

	assert.True(t, strings.Contains(db.namedQuery, "INSERT INTO prediction_log"))
	rows, ok := db.namedArg.([]predictionLogRow)
	require.True(t, ok)
	require.Len(t, rows, 2)

	assert.Equal(t, "req-1", rows[0].RequestID)
	assert.Equal(t, 1, rows[0].Prediction)
	assert.Equal(t, at, rows[0].CreatedAt)

	var features map[string]float64
	require.NoError(t, json.Unmarshal(rows[0].Features, &features))
	assert.Equal(t, 144.0, features["total_sks_ditempuh"])
}

func TestPredictionLogRepository_EmptyBatchAndErrors(t *testing.T) {
	db := &fakeDB{}
	repo := NewPredictionLogRepository(db)

	require.NoError(t, repo.Record(context.Background(), nil))
	assert.Empty(t, db.namedQuery)

	db.err = fmt.Errorf("connection reset")
	err := repo.Record(context.Background(), []graduation.PredictionRecord{{ID: "x"}})
	assert.ErrorContains(t, err, "connection reset")

	assert.Error(t, repo.EnsureSchema(context.Background()))
	assert.Equal(t, "postgres", repo.Name())
}
