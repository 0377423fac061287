package bootstrap

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	chclient "gradpredict/internal/adapters/clickhouse"
	"gradpredict/internal/adapters/config"
	errnoop "gradpredict/internal/adapters/errors/noop"
	"gradpredict/internal/adapters/errors/sentry"
	"gradpredict/internal/adapters/kafka"
	pgclient "gradpredict/internal/adapters/postgres"
	"gradpredict/internal/adapters/ratelimit"
	redisclient "gradpredict/internal/adapters/redis"
	"gradpredict/internal/api"
	"gradpredict/internal/api/health"
	"gradpredict/internal/api/middleware"
	"gradpredict/internal/api/predict"
	"gradpredict/internal/domain/graduation"
	"gradpredict/internal/events"
	"gradpredict/internal/metrics"
	mlgrad "gradpredict/internal/ml/graduation"
	chrepo "gradpredict/internal/repository/clickhouse"
	pgrepo "gradpredict/internal/repository/postgres"
	"gradpredict/internal/services/prediction"
	"gradpredict/internal/services/predictionlog"
	"gradpredict/pkg/errors"
	"gradpredict/pkg/logger"
)

const connectTimeout = 10 * time.Second

// ========================================
// Phase 1: Configuration & Logging
// ========================================

// MustInitConfig loads configuration and initializes logger
func (c *Container) MustInitConfig() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	c.Config = cfg
	if cfg.HTTP.ShutdownTimeout > 0 {
		c.Lifecycle.httpTimeout = cfg.HTTP.ShutdownTimeout
	}

	if err := logger.Init(logger.Options{
		Level:   cfg.App.LogLevel,
		Env:     cfg.App.Env,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
	}); err != nil {
		panic("failed to init logger: " + err.Error())
	}

	c.Log = logger.Get()
	c.Log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	c.ErrorTracker = provideErrorTracker(cfg, c.Log)
	logger.SetErrorTracker(c.ErrorTracker)
}

// ========================================
// Phase 2: Infrastructure Layer
// ========================================

// MustInitInfrastructure connects the optional data stores.
// A store that is enabled but unreachable stops startup.
func (c *Container) MustInitInfrastructure() {
	var err error

	if c.Config.Postgres.Enabled {
		c.Log.Info("Connecting to PostgreSQL...")
		ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
		c.PG, err = pgclient.NewClient(ctx, c.Config.Postgres)
		cancel()
		if err != nil {
			c.Log.Fatalf("failed to connect postgres: %v", err)
		}
		c.Log.Info("✓ PostgreSQL connected")
	}

	if c.Config.ClickHouse.Enabled {
		c.Log.Info("Connecting to ClickHouse...")
		ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
		c.CH, err = chclient.NewClient(ctx, c.Config.ClickHouse)
		cancel()
		if err != nil {
			c.Log.Fatalf("failed to connect clickhouse: %v", err)
		}
		c.Log.Info("✓ ClickHouse connected")
	}

	if c.Config.RateLimit.Enabled && c.Config.RateLimit.Storage == "redis" {
		c.Log.Info("Connecting to Redis...")
		ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
		c.Redis, err = redisclient.NewClient(ctx, c.Config.Redis)
		cancel()
		if err != nil {
			c.Log.Fatalf("failed to connect redis: %v", err)
		}
		c.Log.Info("✓ Redis connected")
	}
}

// ========================================
// Phase 3: Model & Metrics
// ========================================

// MustInitModel loads the classifier and registers service metrics.
// A model that fails to load does not stop startup.
func (c *Container) MustInitModel() {
	c.Model = mlgrad.Load(c.Config.Model, c.Log)
	c.Counters = metrics.NewServiceCounters()
	c.Sampler = metrics.NewHostSampler(c.Config.Metrics.CPUSampleInterval, c.Config.Metrics.DiskPath)

	metrics.Init()
	prometheus.MustRegister(metrics.NewServiceCollector(c.Counters, c.Model.Loaded))

	if !c.Model.Loaded() {
		c.Log.Warnw("Serving without a model, predictions will return 503", "error", c.Model.Err())
		_ = c.ErrorTracker.CaptureMessage(c.Context, "model failed to load", errors.LevelError, map[string]string{
			"component": "model",
			"path":      c.Config.Model.Path,
		})
	}
}

// ========================================
// Phase 4: Adapters
// ========================================

// MustInitAdapters builds prediction log sinks and the rate limit store
func (c *Container) MustInitAdapters() {
	c.Adapters.Sinks = c.mustProvideSinks()
	c.Adapters.RateLimitStore = provideRateLimitStore(c.Config, c.Redis, c.Log)
}

func (c *Container) mustProvideSinks() []graduation.Sink {
	var sinks []graduation.Sink

	ctx, cancel := context.WithTimeout(c.Context, connectTimeout)
	defer cancel()

	if c.PG != nil {
		repo := pgrepo.NewPredictionLogRepository(c.PG.DB())
		if err := repo.EnsureSchema(ctx); err != nil {
			c.Log.Fatalf("failed to prepare postgres prediction log: %v", err)
		}
		sinks = append(sinks, repo)
	}

	if c.CH != nil {
		repo := chrepo.NewPredictionLogRepository(c.CH)
		if err := repo.EnsureSchema(ctx); err != nil {
			c.Log.Fatalf("failed to prepare clickhouse prediction log: %v", err)
		}
		sinks = append(sinks, repo)
	}

	if c.Config.Kafka.Enabled {
		c.Adapters.KafkaProducer = provideKafkaProducer(c.Config, c.Log)
		topic := c.Config.Kafka.Topic
		if topic == "" {
			topic = kafka.TopicPredictionCompleted
		}
		sinks = append(sinks, events.NewPublisher(c.Adapters.KafkaProducer, topic, c.Config.App.Name, c.Log))
	}

	return sinks
}

// ========================================
// Phase 5: Services
// ========================================

// MustInitServices initializes the prediction pipeline
func (c *Container) MustInitServices() {
	var recorder prediction.Recorder
	if len(c.Adapters.Sinks) > 0 {
		c.Services.PredictionLog = predictionlog.NewDispatcher(predictionlog.Config{
			QueueSize:     c.Config.PredictionLog.QueueSize,
			BatchSize:     c.Config.PredictionLog.BatchSize,
			FlushInterval: c.Config.PredictionLog.FlushInterval,
			WriteTimeout:  c.Config.PredictionLog.WriteTimeout,
		}, c.Adapters.Sinks, c.Log)
		recorder = c.Services.PredictionLog
	}

	c.Services.Prediction = prediction.NewService(c.Model, c.Counters, recorder, c.ErrorTracker, c.Log)
}

// ========================================
// Phase 6: Application Layer
// ========================================

// MustInitApplication initializes handlers and the HTTP server
func (c *Container) MustInitApplication() {
	cfg := c.Config

	quotas := health.RouteQuotas{
		Health:  cfg.RateLimit.HealthQuota,
		Docs:    cfg.RateLimit.DocsQuota,
		Metrics: cfg.RateLimit.MetricsQuota,
		Predict: cfg.RateLimit.PredictQuota,
	}

	healthHandler := health.New(
		c.Log,
		c.Counters,
		c.Model,
		c.Sampler,
		health.NewDocs(cfg.App.Name, cfg.App.Version, quotas),
		cfg.App.Name,
	)
	if c.PG != nil {
		healthHandler.AddDependency("postgres", c.PG)
	}
	if c.CH != nil {
		healthHandler.AddDependency("clickhouse", c.CH)
	}
	if c.Redis != nil {
		healthHandler.AddDependency("redis", c.Redis)
	}
	c.Application.HealthHandler = healthHandler

	c.Application.PredictHandler = predict.New(c.Services.Prediction, cfg.HTTP.MaxBodyBytes, c.Log)

	c.Application.RateLimiter = middleware.NewRateLimiter(
		c.Adapters.RateLimitStore,
		cfg.RateLimit.Enabled,
		cfg.RateLimit.TrustProxy,
		c.Log,
	)

	c.Application.HTTPServer = api.NewServer(
		api.ServerConfig{
			Port:         cfg.HTTP.Port,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
			CORSOrigins:  cfg.HTTP.CORSOrigins,
			Quotas:       quotas,
			Window:       cfg.RateLimit.Window,
		},
		healthHandler,
		c.Application.PredictHandler,
		c.Application.RateLimiter,
		c.ErrorTracker,
		c.Log,
	)
}

// ========================================
// Providers
// ========================================

func provideErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return errnoop.New()
	}

	tracker, err := sentry.New(sentry.Options{
		DSN:         cfg.ErrorTracking.SentryDSN,
		Environment: cfg.ErrorTracking.Environment,
		Release:     cfg.App.Version,
		ServerName:  cfg.App.Name,
	})
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return errnoop.New()
	}

	log.Info("✓ Error tracking initialized (Sentry)")
	return tracker
}

func provideKafkaProducer(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	log.Info("Initializing Kafka producer...")
	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers:      cfg.Kafka.Brokers,
		WriteTimeout: cfg.PredictionLog.WriteTimeout,
	}, log)
	log.Infow("✓ Kafka producer initialized", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	return producer
}

func provideRateLimitStore(cfg *config.Config, redisClient *redisclient.Client, log *logger.Logger) ratelimit.Store {
	if redisClient != nil {
		log.Info("✓ Rate limits stored in Redis")
		return ratelimit.NewRedisStore(redisClient, "ratelimit")
	}

	if cfg.RateLimit.Enabled {
		log.Info("✓ Rate limits stored in memory")
	} else {
		log.Warn("Rate limiting disabled")
	}
	return ratelimit.NewMemoryStore()
}
