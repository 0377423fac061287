package prediction

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/metrics"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// fakeClassifier is a hand-written graduation.Classifier
type fakeClassifier struct {
	loaded   bool
	class    int
	probs    []float64
	classErr error
	probErr  error
	panicMsg string

	mu   sync.Mutex
	seen []graduation.FeatureVector
}

func (f *fakeClassifier) Loaded() bool { return f.loaded }

func (f *fakeClassifier) Classify(_ context.Context, features graduation.FeatureVector) (int, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	f.mu.Lock()
	f.seen = append(f.seen, features)
	f.mu.Unlock()
	return f.class, f.classErr
}

func (f *fakeClassifier) Probabilities(_ context.Context, _ graduation.FeatureVector) ([]float64, error) {
	return f.probs, f.probErr
}

// singleRunClassifier also implements graduation.Predictor and counts every call
type singleRunClassifier struct {
	fakeClassifier
	predictCalls  int
	separateCalls int
}

func (f *singleRunClassifier) Classify(ctx context.Context, features graduation.FeatureVector) (int, error) {
	f.separateCalls++
	return f.fakeClassifier.Classify(ctx, features)
}

func (f *singleRunClassifier) Probabilities(ctx context.Context, features graduation.FeatureVector) ([]float64, error) {
	f.separateCalls++
	return f.fakeClassifier.Probabilities(ctx, features)
}

func (f *singleRunClassifier) Predict(_ context.Context, _ graduation.FeatureVector) (int, []float64, error) {
	f.predictCalls++
	return f.class, f.probs, f.classErr
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []graduation.PredictionRecord
	accept  bool
}

func (r *fakeRecorder) Enqueue(record graduation.PredictionRecord) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.accept {
		return false
	}
	r.records = append(r.records, record)
	return true
}

type fakeTracker struct {
	mu       sync.Mutex
	captured []error
}

func (t *fakeTracker) CaptureError(_ context.Context, err error, _ map[string]string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.captured = append(t.captured, err)
	return nil
}

func (t *fakeTracker) CaptureMessage(context.Context, string, errors.Level, map[string]string) error {
	return nil
}

func (t *fakeTracker) AddBreadcrumb(context.Context, string, string, errors.Level, map[string]interface{}) {
}

func (t *fakeTracker) Flush(context.Context) error { return nil }

func newTestService(model graduation.Classifier, recorder Recorder, tracker errors.Tracker) (*Service, *metrics.ServiceCounters) {
	counters := metrics.NewServiceCounters()
	return NewService(model, counters, recorder, tracker, logger.Nop()), counters
}

func TestService_PredictSuccess(t *testing.T) {
	model := &fakeClassifier{loaded: true, class: 1, probs: []float64{0.2345, 0.7655}}
	recorder := &fakeRecorder{accept: true}
	svc, counters := newTestService(model, recorder, nil)

	ctx := errors.WithRequestID(context.Background(), "req-1")
	pred, err := svc.Predict(ctx, validPayload())
	require.NoError(t, err)

	assert.Equal(t, 1, pred.Class)
	assert.Equal(t, graduation.LabelFor(pred.Class), pred.Label)
	assert.Equal(t, 0.766, pred.Confidence)
	assert.GreaterOrEqual(t, pred.ResponseTime, 0.0)

	assert.Equal(t, uint64(1), counters.Requests())
	assert.Equal(t, uint64(0), counters.Errors())

	require.Len(t, model.seen, 1)
	assert.Equal(t, graduation.FeatureVector{3.5, 3.2, 3.8, 3.6, 0, 0, 1, 2, 144, 0}, model.seen[0])

	require.Len(t, recorder.records, 1)
	rec := recorder.records[0]
	assert.Equal(t, "req-1", rec.RequestID)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, pred.Label, rec.Label)
	assert.Equal(t, 144.0, rec.Features[graduation.FieldCreditsAttempted])
}

func TestService_ResponseTimeUsesClock(t *testing.T) {
	model := &fakeClassifier{loaded: true, probs: []float64{0.9, 0.1}}
	svc, _ := newTestService(model, nil, nil)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	svc.now = func() time.Time {
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(41237 * time.Microsecond)
	}

	pred, err := svc.Predict(context.Background(), validPayload())
	require.NoError(t, err)
	assert.Equal(t, 0.041, pred.ResponseTime)
	assert.Equal(t, graduation.LabelOnTime, pred.Label)
}

func TestService_ValidationFailure(t *testing.T) {
	model := &fakeClassifier{loaded: true, probs: []float64{1, 0}}
	svc, counters := newTestService(model, nil, nil)

	p := validPayload()
	p["ips_1"] = 5.0

	pred, err := svc.Predict(context.Background(), p)
	require.Error(t, err)
	assert.Nil(t, pred)
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))
	assert.Equal(t, "ips_1 must be between 0.0 and 4.0", err.Error())

	assert.Empty(t, model.seen, "model must not be called for invalid input")
	assert.Equal(t, uint64(1), counters.Requests())
	assert.Equal(t, uint64(1), counters.Errors())
}

func TestService_ValidationRunsBeforeModelCheck(t *testing.T) {
	svc, _ := newTestService(&fakeClassifier{loaded: false}, nil, nil)

	_, err := svc.Predict(context.Background(), graduation.Payload{})
	assert.Equal(t, errors.KindValidation, errors.KindOf(err))
}

func TestService_ModelUnavailable(t *testing.T) {
	svc, counters := newTestService(&fakeClassifier{loaded: false}, nil, nil)

	_, err := svc.Predict(context.Background(), validPayload())
	require.Error(t, err)
	assert.Equal(t, errors.KindModelUnavailable, errors.KindOf(err))
	assert.True(t, errors.Is(err, errors.ErrModelUnavailable))
	assert.Equal(t, "Model is not loaded properly.", err.Error())
	assert.Equal(t, uint64(1), counters.Errors())
	assert.False(t, svc.ModelLoaded())
}

func TestService_ModelErrors(t *testing.T) {
	tests := []struct {
		name  string
		model *fakeClassifier
		kind  errors.Kind
	}{
		{
			name:  "classify failure",
			model: &fakeClassifier{loaded: true, classErr: fmt.Errorf("tensor shape mismatch")},
			kind:  errors.KindProcessing,
		},
		{
			name:  "probabilities failure",
			model: &fakeClassifier{loaded: true, probErr: fmt.Errorf("no probability output")},
			kind:  errors.KindProcessing,
		},
		{
			name:  "empty probabilities",
			model: &fakeClassifier{loaded: true},
			kind:  errors.KindProcessing,
		},
		{
			name:  "adapter reports unavailable",
			model: &fakeClassifier{loaded: true, classErr: errors.ErrModelUnavailable},
			kind:  errors.KindModelUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &fakeTracker{}
			svc, counters := newTestService(tt.model, nil, tracker)

			_, err := svc.Predict(context.Background(), validPayload())
			require.Error(t, err)
			assert.Equal(t, tt.kind, errors.KindOf(err))
			assert.Equal(t, uint64(1), counters.Errors())

			if tt.kind == errors.KindProcessing {
				assert.Len(t, tracker.captured, 1)
			}
		})
	}
}

func TestService_PanicBecomesProcessingError(t *testing.T) {
	tracker := &fakeTracker{}
	svc, counters := newTestService(&fakeClassifier{loaded: true, panicMsg: "index out of range"}, nil, tracker)

	var err error
	require.NotPanics(t, func() {
		_, err = svc.Predict(context.Background(), validPayload())
	})
	require.Error(t, err)
	assert.Equal(t, errors.KindProcessing, errors.KindOf(err))
	assert.Equal(t, "index out of range", err.Error())
	assert.Equal(t, uint64(1), counters.Errors())
	assert.Len(t, tracker.captured, 1)
}

func TestService_DroppedRecordDoesNotFailRequest(t *testing.T) {
	model := &fakeClassifier{loaded: true, probs: []float64{0.6, 0.4}}
	svc, counters := newTestService(model, &fakeRecorder{accept: false}, nil)

	_, err := svc.Predict(context.Background(), validPayload())
	require.NoError(t, err)
	assert.Equal(t, uint64(0), counters.Errors())
}

func TestService_ConcurrentCountersAreMonotonic(t *testing.T) {
	model := &fakeClassifier{loaded: true, probs: []float64{0.6, 0.4}}
	svc, counters := newTestService(model, nil, nil)

	bad := validPayload()
	bad["cuti_1"] = "graduated"

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := validPayload()
			if i%4 == 0 {
				p = bad
			}
			_, _ = svc.Predict(context.Background(), p)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, uint64(40), counters.Requests())
	assert.Equal(t, uint64(10), counters.Errors())
	assert.Equal(t, 75.0, counters.Snapshot().SuccessRate)
}

func TestService_PrefersSingleInferenceRun(t *testing.T) {
	model := &singleRunClassifier{fakeClassifier: fakeClassifier{loaded: true, class: 1, probs: []float64{0.25, 0.75}}}
	svc, _ := newTestService(model, nil, nil)

	pred, err := svc.Predict(context.Background(), validPayload())
	require.NoError(t, err)

	assert.Equal(t, 1, model.predictCalls)
	assert.Equal(t, 0, model.separateCalls)
	assert.Equal(t, graduation.LabelLate, pred.Label)
	assert.Equal(t, 0.75, pred.Confidence)
}
