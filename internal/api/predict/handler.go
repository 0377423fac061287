package predict

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"gradpredict/internal/api/respond"
	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Predictor runs the prediction pipeline
type Predictor interface {
	Predict(ctx context.Context, payload graduation.Payload) (*graduation.Prediction, error)
	Reject(ctx context.Context, err error) error
}

// Handler serves POST /predict
type Handler struct {
	svc          Predictor
	maxBodyBytes int64
	log          *logger.Logger
}

// New creates a new predict handler
func New(svc Predictor, maxBodyBytes int64, log *logger.Logger) *Handler {
	return &Handler{
		svc:          svc,
		maxBodyBytes: maxBodyBytes,
		log:          log.Component("predict_handler"),
	}
}

// ServeHTTP decodes the payload, runs the pipeline and maps errors to status codes
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	payload, status, err := decodePayload(r.Body)
	if err != nil {
		rejected := h.svc.Reject(r.Context(), err)
		respond.Error(w, status, rejected.Error())
		return
	}

	pred, err := h.svc.Predict(r.Context(), payload)
	if err != nil {
		respond.Error(w, StatusFor(err), err.Error())
		return
	}

	respond.JSON(w, http.StatusOK, pred)
}

// decodePayload reads a single JSON object, keeping numbers as json.Number
func decodePayload(body io.Reader) (graduation.Payload, int, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("Request body too large")
		}
		return nil, http.StatusBadRequest, errors.New("Request body must be valid JSON")
	}

	// A single document only; trailing data is invalid JSON
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, http.StatusRequestEntityTooLarge, errors.New("Request body too large")
		}
		return nil, http.StatusBadRequest, errors.New("Request body must be valid JSON")
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, http.StatusBadRequest, errors.New("Request body must be a JSON object")
	}
	return graduation.Payload(obj), http.StatusOK, nil
}

// StatusFor maps an error kind to its HTTP status code
func StatusFor(err error) int {
	switch errors.KindOf(err) {
	case errors.KindValidation, errors.KindProcessing:
		return http.StatusBadRequest
	case errors.KindModelUnavailable:
		return http.StatusServiceUnavailable
	case errors.KindRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
