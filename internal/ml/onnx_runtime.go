package ml

import (
	"fmt"
	"sync"

	onnxruntime "github.com/yalue/onnxruntime_go"

	"gradpredict/pkg/errors"
)

// ONNXOptions describes where the model lives and how its tensors are named
type ONNXOptions struct {
	Path           string
	RuntimeLibrary string // path to libonnxruntime; empty uses the platform default
	InputName      string
	LabelOutput    string
	ProbaOutput    string
	NumFeatures    int
	NumClasses     int
}

// ONNXModel wraps ONNX Runtime session for ML inference.
// Inference holds a read lock, Destroy the write lock.
type ONNXModel struct {
	mu      sync.RWMutex
	session *onnxruntime.DynamicAdvancedSession
	opts    ONNXOptions
}

var envMu sync.Mutex

// initEnvironment initializes the ONNX runtime once per process
func initEnvironment(libraryPath string) error {
	envMu.Lock()
	defer envMu.Unlock()

	if onnxruntime.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		onnxruntime.SetSharedLibraryPath(libraryPath)
	}
	return onnxruntime.InitializeEnvironment()
}

// ShutdownEnvironment releases the ONNX runtime. Call after every model is destroyed.
func ShutdownEnvironment() error {
	envMu.Lock()
	defer envMu.Unlock()

	if !onnxruntime.IsInitialized() {
		return nil
	}
	return onnxruntime.DestroyEnvironment()
}

// LoadONNXModel loads an ONNX model from file
func LoadONNXModel(opts ONNXOptions) (*ONNXModel, error) {
	if opts.NumFeatures <= 0 || opts.NumClasses < 2 {
		return nil, fmt.Errorf("invalid model shape: %d features, %d classes", opts.NumFeatures, opts.NumClasses)
	}

	if err := initEnvironment(opts.RuntimeLibrary); err != nil {
		return nil, errors.Wrap(err, "failed to initialize ONNX runtime")
	}

	options, err := onnxruntime.NewSessionOptions()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create session options")
	}
	defer options.Destroy()

	// Dynamic session: tensors are created per call
	session, err := onnxruntime.NewDynamicAdvancedSession(opts.Path,
		[]string{opts.InputName}, []string{opts.LabelOutput, opts.ProbaOutput}, options)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load ONNX model")
	}

	return &ONNXModel{
		session: session,
		opts:    opts,
	}, nil
}

// Predict runs inference on the model with given features.
// Returns the predicted class index and the probability of every class.
func (m *ONNXModel) Predict(features []float32) (int, []float64, error) {
	if len(features) != m.opts.NumFeatures {
		return 0, nil, fmt.Errorf("expected %d features, got %d", m.opts.NumFeatures, len(features))
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.session == nil {
		return 0, nil, errors.New("model session is closed")
	}

	// Input: float32, shape [1, num_features]
	inputTensor, err := onnxruntime.NewTensor(onnxruntime.NewShape(1, int64(len(features))), features)
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create input tensor")
	}
	defer inputTensor.Destroy()

	// Output 1: predicted label (int64, shape [1])
	labelTensor, err := onnxruntime.NewEmptyTensor[int64](onnxruntime.NewShape(1))
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create label output tensor")
	}
	defer labelTensor.Destroy()

	// Output 2: probabilities (float32, shape [1, num_classes])
	probTensor, err := onnxruntime.NewEmptyTensor[float32](onnxruntime.NewShape(1, int64(m.opts.NumClasses)))
	if err != nil {
		return 0, nil, errors.Wrap(err, "failed to create probabilities output tensor")
	}
	defer probTensor.Destroy()

	err = m.session.Run(
		[]onnxruntime.Value{inputTensor},
		[]onnxruntime.Value{labelTensor, probTensor},
	)
	if err != nil {
		return 0, nil, errors.Wrap(err, "inference failed")
	}

	labels := labelTensor.GetData()
	if len(labels) == 0 {
		return 0, nil, errors.New("model returned no label")
	}

	raw := probTensor.GetData()
	probs := make([]float64, len(raw))
	for i, p := range raw {
		probs[i] = float64(p)
	}

	return int(labels[0]), probs, nil
}

// Destroy cleans up the ONNX session
func (m *ONNXModel) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		m.session.Destroy()
		m.session = nil
	}
}
