package predict

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradpredict/internal/domain/graduation"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

type fakePredictor struct {
	payload  graduation.Payload
	pred     *graduation.Prediction
	err      error
	rejected []error
}

func (f *fakePredictor) Predict(_ context.Context, payload graduation.Payload) (*graduation.Prediction, error) {
	f.payload = payload
	return f.pred, f.err
}

func (f *fakePredictor) Reject(_ context.Context, err error) error {
	f.rejected = append(f.rejected, err)
	return errors.NewKind(errors.KindValidation, err.Error(), err)
}

func serve(h http.Handler, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
	return rec
}

func TestHandler_KeepsNumbersExact(t *testing.T) {
	f := &fakePredictor{pred: &graduation.Prediction{Class: 0, Label: graduation.LabelOnTime, Confidence: 0.9}}
	h := New(f, 1024, logger.Nop())

	rec := serve(h, `{"ips_1": 3.75, "cuti_1": "active"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"prediction":0,"label":"graduated on time","confidence_score":0.9,"response_time":0}`, rec.Body.String())

	assert.Equal(t, "3.75", f.payload["ips_1"].(interface{ String() string }).String())
	assert.Equal(t, "active", f.payload["cuti_1"])
}

func TestHandler_BodyTooLarge(t *testing.T) {
	f := &fakePredictor{}
	h := New(f, 16, logger.Nop())

	rec := serve(h, `{"ips_1": 3.5, "ips_2": 3.5, "ips_3": 3.5}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.JSONEq(t, `{"error":"Request body too large"}`, rec.Body.String())
	assert.Len(t, f.rejected, 1)
}

func TestHandler_EmptyBody(t *testing.T) {
	f := &fakePredictor{}
	h := New(f, 1024, logger.Nop())

	rec := serve(h, ``)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Request body must be valid JSON"}`, rec.Body.String())
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.NewKind(errors.KindValidation, "bad", nil)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.NewKind(errors.KindProcessing, "oops", nil)))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(errors.NewKind(errors.KindModelUnavailable, "", errors.ErrModelUnavailable)))
	assert.Equal(t, http.StatusTooManyRequests, StatusFor(errors.NewKind(errors.KindRateLimit, "slow", nil)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(errors.New("plain")), "plain errors are processing errors")
}
