package graduation

import (
	"context"
	"os"

	"github.com/dustin/go-humanize"

	"gradpredict/internal/adapters/config"
	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/ml"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Classifier performs graduation-timeliness classification using the ONNX model.
// A classifier whose model failed to load stays usable and reports ErrModelUnavailable.
type Classifier struct {
	model   *ml.ONNXModel
	loadErr error
}

// Load loads the model described by cfg. It never fails: a load error leaves the
// classifier in the unavailable state so the rest of the service keeps serving.
func Load(cfg config.ModelConfig, log *logger.Logger) *Classifier {
	log = log.Component("model")

	info, err := os.Stat(cfg.Path)
	if err != nil {
		log.Errorw("Error loading model", "path", cfg.Path, "error", err)
		return Unavailable(err)
	}

	model, err := ml.LoadONNXModel(ml.ONNXOptions{
		Path:           cfg.Path,
		RuntimeLibrary: cfg.RuntimeLibrary,
		InputName:      cfg.InputName,
		LabelOutput:    cfg.LabelOutputName,
		ProbaOutput:    cfg.ProbaOutputName,
		NumFeatures:    graduation.NumFeatures,
		NumClasses:     cfg.NumClasses,
	})
	if err != nil {
		log.Errorw("Error loading model", "path", cfg.Path, "error", err)
		return Unavailable(err)
	}

	log.Infow("Model loaded successfully",
		"path", cfg.Path,
		"size", humanize.Bytes(uint64(info.Size())),
		"classes", cfg.NumClasses,
	)
	return &Classifier{model: model}
}

// Unavailable returns a classifier in the unavailable state
func Unavailable(cause error) *Classifier {
	if cause == nil {
		cause = errors.ErrModelUnavailable
	}
	return &Classifier{loadErr: cause}
}

// Loaded reports whether the model artifact is loaded
func (c *Classifier) Loaded() bool {
	return c.model != nil
}

// Err returns why the model is unavailable, or nil
func (c *Classifier) Err() error {
	return c.loadErr
}

// Classify returns the predicted class index
func (c *Classifier) Classify(ctx context.Context, features graduation.FeatureVector) (int, error) {
	class, _, err := c.Predict(ctx, features)
	return class, err
}

// Probabilities returns the probability of every class
func (c *Classifier) Probabilities(ctx context.Context, features graduation.FeatureVector) ([]float64, error) {
	_, probs, err := c.Predict(ctx, features)
	return probs, err
}

// Predict returns the class and the probability of every class from a single inference run
func (c *Classifier) Predict(ctx context.Context, features graduation.FeatureVector) (int, []float64, error) {
	if c.model == nil {
		return 0, nil, errors.Wrapf(errors.ErrModelUnavailable, "%v", c.loadErr)
	}
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	class, probs, err := c.model.Predict(features.Float32())
	if err != nil {
		return 0, nil, errors.Wrap(err, "classification failed")
	}
	if len(probs) == 0 {
		return 0, nil, errors.Wrap(errors.ErrModelCapability, "no probability output")
	}
	return class, probs, nil
}

// Close cleans up the classifier resources
func (c *Classifier) Close() {
	if c.model != nil {
		c.model.Destroy()
	}
}

var (
	_ graduation.Classifier = (*Classifier)(nil)
	_ graduation.Predictor  = (*Classifier)(nil)
)
