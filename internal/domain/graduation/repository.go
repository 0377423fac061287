package graduation

import "context"

// Sink stores or forwards prediction records
type Sink interface {
	Name() string
	Record(ctx context.Context, records []PredictionRecord) error
	Close() error
}

// Classifier is the pre-trained model as seen by the prediction pipeline
type Classifier interface {
	// Loaded reports whether the model artifact was loaded at startup
	Loaded() bool

	// Classify returns the predicted class index
	Classify(ctx context.Context, features FeatureVector) (int, error)

	// Probabilities returns the posterior probability of every class
	Probabilities(ctx context.Context, features FeatureVector) ([]float64, error)
}

// Predictor is implemented by classifiers that produce the class and the
// probabilities from one inference run
type Predictor interface {
	Predict(ctx context.Context, features FeatureVector) (int, []float64, error)
}
