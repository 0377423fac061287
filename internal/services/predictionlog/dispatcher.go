package predictionlog

import (
	"context"
	"sync"
	"time"

	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/metrics"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Config controls batching of the dispatcher
type Config struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	WriteTimeout  time.Duration
}

// Dispatcher fans successful predictions out to every sink.
// Enqueue never blocks the request path; a full queue drops the record.
type Dispatcher struct {
	cfg   Config
	sinks []graduation.Sink
	log   *logger.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan graduation.PredictionRecord
	done   chan struct{}
	start  sync.Once
}

// NewDispatcher creates a dispatcher. Call Start to begin writing.
func NewDispatcher(cfg Config, sinks []graduation.Sink, log *logger.Logger) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1024
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}

	return &Dispatcher{
		cfg:   cfg,
		sinks: sinks,
		log:   log.Component("prediction_log"),
		queue: make(chan graduation.PredictionRecord, cfg.QueueSize),
		done:  make(chan struct{}),
	}
}

// Enqueue queues a record for the sinks. Returns false if it was dropped.
func (d *Dispatcher) Enqueue(record graduation.PredictionRecord) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.PredictionLogDropped.Inc()
		return false
	}

	select {
	case d.queue <- record:
		return true
	default:
		metrics.PredictionLogDropped.Inc()
		return false
	}
}

// Start launches the writer goroutine
func (d *Dispatcher) Start() {
	d.start.Do(func() {
		d.log.Infow("Prediction log dispatcher started",
			"sinks", d.sinkNames(),
			"batch_size", d.cfg.BatchSize,
			"flush_interval", d.cfg.FlushInterval,
		)
		go d.run()
	})
}

func (d *Dispatcher) run() {
	defer close(d.done)

	ticker := time.NewTicker(d.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]graduation.PredictionRecord, 0, d.cfg.BatchSize)

	for {
		select {
		case rec, ok := <-d.queue:
			if !ok {
				d.flush(batch)
				return
			}
			batch = append(batch, rec)
			if len(batch) >= d.cfg.BatchSize {
				d.flush(batch)
				batch = batch[:0]
			}

		case <-ticker.C:
			if len(batch) > 0 {
				d.flush(batch)
				batch = batch[:0]
			}
		}
	}
}

// flush writes batch to every sink; a failing sink does not stop the others
func (d *Dispatcher) flush(batch []graduation.PredictionRecord) {
	if len(batch) == 0 {
		return
	}

	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.cfg.WriteTimeout)
		err := sink.Record(ctx, batch)
		cancel()

		metrics.RecordPredictionLogWrite(sink.Name(), err)
		if err != nil {
			d.log.Errorw("Failed to write prediction log batch",
				"sink", sink.Name(),
				"records", len(batch),
				"error", err,
			)
			continue
		}
		d.log.Debugw("Prediction log batch written", "sink", sink.Name(), "records", len(batch))
	}
}

// Close stops accepting records, drains the queue and closes every sink.
// Returns early with ctx's error if draining takes too long.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()

	// A dispatcher that was never started still drains what it holds
	d.Start()

	select {
	case <-d.done:
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "prediction log drain interrupted")
	}

	var firstErr error
	for _, sink := range d.sinks {
		if err := sink.Close(); err != nil {
			d.log.Errorw("Failed to close prediction log sink", "sink", sink.Name(), "error", err)
			if firstErr == nil {
				firstErr = errors.Wrapf(err, "close sink %s", sink.Name())
			}
		}
	}

	d.log.Info("✓ Prediction log dispatcher stopped")
	return firstErr
}

func (d *Dispatcher) sinkNames() []string {
	names := make([]string, len(d.sinks))
	for i, s := range d.sinks {
		names[i] = s.Name()
	}
	return names
}
