package bootstrap

import (
	"context"
	"sync"

	chclient "gradpredict/internal/adapters/clickhouse"
	"gradpredict/internal/adapters/config"
	"gradpredict/internal/adapters/kafka"
	pgclient "gradpredict/internal/adapters/postgres"
	"gradpredict/internal/adapters/ratelimit"
	redisclient "gradpredict/internal/adapters/redis"
	"gradpredict/internal/api"
	"gradpredict/internal/api/health"
	"gradpredict/internal/api/middleware"
	"gradpredict/internal/api/predict"
	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/metrics"
	mlgrad "gradpredict/internal/ml/graduation"
	"gradpredict/internal/services/prediction"
	"gradpredict/internal/services/predictionlog"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Log          *logger.Logger
	ErrorTracker errors.Tracker

	// Optional data stores, nil when disabled
	PG    *pgclient.Client
	CH    *chclient.Client
	Redis *redisclient.Client

	Model    *mlgrad.Classifier
	Counters *metrics.ServiceCounters
	Sampler  metrics.Sampler

	Adapters    *Adapters
	Services    *Services
	Application *Application

	Lifecycle *Lifecycle
	WG        *sync.WaitGroup
	Context   context.Context
	Cancel    context.CancelFunc
}

// Adapters groups external integrations
type Adapters struct {
	KafkaProducer  *kafka.Producer
	RateLimitStore ratelimit.Store
	Sinks          []graduation.Sink
}

// Services groups application services
type Services struct {
	PredictionLog *predictionlog.Dispatcher // nil when no sink is enabled
	Prediction    *prediction.Service
}

// Application groups the HTTP surface
type Application struct {
	HealthHandler  *health.Handler
	PredictHandler *predict.Handler
	RateLimiter    *middleware.RateLimiter
	HTTPServer     *api.Server
}

// NewContainer creates a new dependency container
func NewContainer() *Container {
	ctx, cancel := context.WithCancel(context.Background())

	return &Container{
		Adapters:    &Adapters{},
		Services:    &Services{},
		Application: &Application{},
		Lifecycle:   NewLifecycle(),
		WG:          &sync.WaitGroup{},
		Context:     ctx,
		Cancel:      cancel,
	}
}

// MustInit initializes all components in the correct order
// Panics on any initialization error (fail-fast at startup)
func (c *Container) MustInit() {
	c.MustInitConfig()
	c.MustInitInfrastructure()
	c.MustInitModel()
	c.MustInitAdapters()
	c.MustInitServices()
	c.MustInitApplication()
}

// Start starts the HTTP server and background components
func (c *Container) Start() error {
	c.Log.Info("Starting all systems...")

	if c.Services.PredictionLog != nil {
		c.Services.PredictionLog.Start()
	}

	if store, ok := c.Adapters.RateLimitStore.(*ratelimit.MemoryStore); ok {
		c.WG.Add(1)
		go func() {
			defer c.WG.Done()
			store.RunSweeper(c.Context, c.Config.RateLimit.IdleEviction/2, c.Config.RateLimit.IdleEviction)
		}()
	}

	c.WG.Add(1)
	go func() {
		defer c.WG.Done()
		if err := c.Application.HTTPServer.Start(); err != nil {
			c.Log.Errorf("HTTP server failed: %v", err)
			c.Cancel() // Trigger shutdown on fatal HTTP error
		}
	}()

	c.Log.Infow("✓ All systems operational",
		"port", c.Config.HTTP.Port,
		"model_loaded", c.Model.Loaded(),
		"sinks", len(c.Adapters.Sinks),
	)
	return nil
}

// Shutdown performs graceful shutdown in the correct order
func (c *Container) Shutdown() {
	c.Log.Info("Initiating graceful shutdown...")

	// Cancel application context to stop background loops
	c.Cancel()

	c.Lifecycle.Shutdown(ShutdownDeps{
		WG:             c.WG,
		HTTPServer:     c.Application.HTTPServer,
		PredictionLog:  c.Services.PredictionLog,
		RateLimitStore: c.Adapters.RateLimitStore,
		Model:          c.Model,
		PG:             c.PG,
		CH:             c.CH,
		ErrorTracker:   c.ErrorTracker,
	}, c.Log)
}
