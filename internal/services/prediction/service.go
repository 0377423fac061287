package prediction

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/metrics"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// modelUnavailableMessage is what clients see while the model is not loaded
const modelUnavailableMessage = "Model is not loaded properly."

// Recorder accepts successful predictions for the prediction log.
// Enqueue must not block; it returns false when the record was dropped.
type Recorder interface {
	Enqueue(record graduation.PredictionRecord) bool
}

// Service runs the prediction pipeline: validate, assemble, classify, respond.
// It owns no per-request state; counters and the model are shared.
type Service struct {
	model    graduation.Classifier
	counters *metrics.ServiceCounters
	recorder Recorder
	tracker  errors.Tracker
	log      *logger.Logger
	now      func() time.Time
}

// NewService creates a prediction service. recorder and tracker may be nil.
func NewService(
	model graduation.Classifier,
	counters *metrics.ServiceCounters,
	recorder Recorder,
	tracker errors.Tracker,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Get()
	}
	return &Service{
		model:    model,
		counters: counters,
		recorder: recorder,
		tracker:  tracker,
		log:      log.Component("prediction_service"),
		now:      time.Now,
	}
}

// ModelLoaded reports whether predictions can be served
func (s *Service) ModelLoaded() bool {
	return s.model != nil && s.model.Loaded()
}

// Predict handles one prediction request.
// The request counter is incremented on entry and the error counter on every failure.
// Errors carry a kind: validation, model_unavailable or processing.
func (s *Service) Predict(ctx context.Context, payload graduation.Payload) (pred *graduation.Prediction, err error) {
	start := s.now()
	s.counters.IncRequests()
	s.log.Debugw("Prediction request received", "request_id", errors.RequestID(ctx))

	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("Recovered panic in prediction pipeline",
				"request_id", errors.RequestID(ctx),
				"panic", r,
				"stack", string(debug.Stack()),
			)
			pred = nil
			err = errors.NewKind(errors.KindProcessing, fmt.Sprintf("%v", r), errors.ErrInternal)
		}

		if err != nil {
			s.counters.IncErrors()
			metrics.RecordPrediction(outcomeFor(err), "", 0, s.now().Sub(start))
			s.reportFailure(ctx, err)
		}
	}()

	if err := Validate(payload); err != nil {
		return nil, err
	}

	if !s.ModelLoaded() {
		return nil, errors.NewKind(errors.KindModelUnavailable, modelUnavailableMessage, errors.ErrModelUnavailable)
	}

	features, err := Assemble(payload)
	if err != nil {
		return nil, err
	}

	class, probs, err := s.infer(ctx, features)
	if err != nil {
		return nil, s.modelError(err)
	}

	elapsed := s.now().Sub(start)
	pred, err = BuildPrediction(class, probs, elapsed)
	if err != nil {
		return nil, err
	}

	metrics.RecordPrediction(metrics.OutcomeSuccess, pred.Label, pred.Confidence, elapsed)
	s.log.Infow("Prediction completed",
		"request_id", errors.RequestID(ctx),
		"label", pred.Label,
		"confidence", pred.Confidence,
		"response_time", pred.ResponseTime,
	)

	s.record(ctx, features, pred, start)
	return pred, nil
}

// Reject counts a request whose body could not be read as a payload.
// Returns err as a validation error.
func (s *Service) Reject(ctx context.Context, err error) error {
	s.counters.IncRequests()
	s.counters.IncErrors()

	rejected := errors.NewKind(errors.KindValidation, err.Error(), errors.Wrap(errors.ErrInvalidInput, err.Error()))
	metrics.RecordPrediction(metrics.OutcomeValidation, "", 0, 0)
	s.log.Warnw("Malformed prediction request", "request_id", errors.RequestID(ctx), "error", err.Error())
	return rejected
}

// infer runs the model once when it supports combined prediction,
// otherwise asks for the class and the probabilities separately
func (s *Service) infer(ctx context.Context, features graduation.FeatureVector) (int, []float64, error) {
	if p, ok := s.model.(graduation.Predictor); ok {
		return p.Predict(ctx, features)
	}

	class, err := s.model.Classify(ctx, features)
	if err != nil {
		return 0, nil, err
	}
	probs, err := s.model.Probabilities(ctx, features)
	if err != nil {
		return 0, nil, err
	}
	return class, probs, nil
}

// modelError classifies an error coming out of the model adapter
func (s *Service) modelError(err error) error {
	if errors.Is(err, errors.ErrModelUnavailable) {
		return errors.NewKind(errors.KindModelUnavailable, modelUnavailableMessage, err)
	}
	return errors.NewKind(errors.KindProcessing, err.Error(), err)
}

func (s *Service) record(ctx context.Context, features graduation.FeatureVector, pred *graduation.Prediction, at time.Time) {
	if s.recorder == nil {
		return
	}

	ok := s.recorder.Enqueue(graduation.PredictionRecord{
		ID:           uuid.New().String(),
		RequestID:    errors.RequestID(ctx),
		Timestamp:    at.UTC(),
		Features:     features.Map(),
		Class:        pred.Class,
		Label:        pred.Label,
		Confidence:   pred.Confidence,
		ResponseTime: pred.ResponseTime,
	})
	if !ok {
		s.log.Warnw("Prediction log queue full, record dropped", "request_id", errors.RequestID(ctx))
	}
}

func (s *Service) reportFailure(ctx context.Context, err error) {
	kind := errors.KindOf(err)
	requestID := errors.RequestID(ctx)

	switch kind {
	case errors.KindValidation:
		s.log.Warnw("Validation errors", "request_id", requestID, "error", err.Error())
		if s.tracker != nil {
			s.tracker.AddBreadcrumb(ctx, err.Error(), "validation", errors.LevelWarning, nil)
		}
	case errors.KindModelUnavailable:
		s.log.Warnw("Prediction rejected, model unavailable", "request_id", requestID)
	default:
		s.log.Errorw("Prediction error", "request_id", requestID, "error", err.Error())
		if s.tracker != nil {
			_ = s.tracker.CaptureError(ctx, err, map[string]string{
				"component": "prediction_service",
				"kind":      kind.String(),
			})
		}
	}
}

func outcomeFor(err error) string {
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return metrics.OutcomeValidation
	case errors.KindModelUnavailable:
		return metrics.OutcomeModelUnavailable
	default:
		return metrics.OutcomeProcessing
	}
}
