package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"gradpredict/pkg/errors"
)

type Config struct {
	App           AppConfig
	HTTP          HTTPConfig
	Model         ModelConfig
	RateLimit     RateLimitConfig
	Metrics       MetricsConfig
	PredictionLog PredictionLogConfig
	Postgres      PostgresConfig
	ClickHouse    ClickHouseConfig
	Redis         RedisConfig
	Kafka         KafkaConfig
	ErrorTracking ErrorTrackingConfig
}

type AppConfig struct {
	Name     string `envconfig:"APP_NAME" default:"graduation-predictor"`
	Env      string `envconfig:"APP_ENV" default:"development"`
	Version  string `envconfig:"APP_VERSION" default:"1.0.0"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

type HTTPConfig struct {
	Port            int           `envconfig:"PORT" default:"5000"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"15s"`
	MaxBodyBytes    int64         `envconfig:"HTTP_MAX_BODY_BYTES" default:"65536"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// ModelConfig describes the ONNX export of the graduation classifier.
// Tensor names default to what skl2onnx produces with zipmap disabled.
type ModelConfig struct {
	Path            string `envconfig:"MODEL_PATH" default:"base_model_random_forest.onnx"`
	RuntimeLibrary  string `envconfig:"ONNX_RUNTIME_LIB"`
	InputName       string `envconfig:"MODEL_INPUT_NAME" default:"float_input"`
	LabelOutputName string `envconfig:"MODEL_LABEL_OUTPUT" default:"output_label"`
	ProbaOutputName string `envconfig:"MODEL_PROBA_OUTPUT" default:"output_probability"`
	NumClasses      int    `envconfig:"MODEL_NUM_CLASSES" default:"2"`
}

// RateLimitConfig holds per-route quotas in requests per minute per client
type RateLimitConfig struct {
	Enabled      bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Storage      string        `envconfig:"RATE_LIMIT_STORAGE" default:"memory"` // memory|redis
	Window       time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	HealthQuota  int           `envconfig:"RATE_LIMIT_HEALTH" default:"100"`
	DocsQuota    int           `envconfig:"RATE_LIMIT_DOCS" default:"50"`
	MetricsQuota int           `envconfig:"RATE_LIMIT_METRICS" default:"10"`
	PredictQuota int           `envconfig:"RATE_LIMIT_PREDICT" default:"30"`
	IdleEviction time.Duration `envconfig:"RATE_LIMIT_IDLE_EVICTION" default:"10m"`
	TrustProxy   bool          `envconfig:"RATE_LIMIT_TRUST_PROXY" default:"false"`
}

type MetricsConfig struct {
	CPUSampleInterval time.Duration `envconfig:"METRICS_CPU_SAMPLE_INTERVAL" default:"1s"`
	DiskPath          string        `envconfig:"METRICS_DISK_PATH" default:"/"`
}

// PredictionLogConfig controls the optional sinks that receive successful predictions
type PredictionLogConfig struct {
	QueueSize     int           `envconfig:"PREDICTION_LOG_QUEUE_SIZE" default:"1024"`
	BatchSize     int           `envconfig:"PREDICTION_LOG_BATCH_SIZE" default:"100"`
	FlushInterval time.Duration `envconfig:"PREDICTION_LOG_FLUSH_INTERVAL" default:"2s"`
	WriteTimeout  time.Duration `envconfig:"PREDICTION_LOG_WRITE_TIMEOUT" default:"5s"`
}

type PostgresConfig struct {
	Enabled  bool   `envconfig:"POSTGRES_ENABLED" default:"false"`
	Host     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	Database string `envconfig:"POSTGRES_DB"`
	SSLMode  string `envconfig:"POSTGRES_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"POSTGRES_MAX_CONNS" default:"4"`

	ConnMaxLifetime time.Duration `envconfig:"POSTGRES_CONN_MAX_LIFETIME" default:"30m"`
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD"`
	Database string `envconfig:"CLICKHOUSE_DB" default:"predictions"`

	DialTimeout  time.Duration `envconfig:"CLICKHOUSE_DIAL_TIMEOUT" default:"5s"`
	MaxOpenConns int           `envconfig:"CLICKHOUSE_MAX_OPEN_CONNS" default:"4"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`

	PoolSize    int           `envconfig:"REDIS_POOL_SIZE" default:"20"`
	DialTimeout time.Duration `envconfig:"REDIS_DIAL_TIMEOUT" default:"2s"`
	// Per-command timeout on the request path
	OpTimeout   time.Duration `envconfig:"REDIS_OP_TIMEOUT" default:"250ms"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type KafkaConfig struct {
	Enabled bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	Brokers []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	Topic   string   `envconfig:"KAFKA_PREDICTION_TOPIC" default:"predictions.completed"`
}

type ErrorTrackingConfig struct {
	Enabled     bool   `envconfig:"ERROR_TRACKING_ENABLED" default:"false"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`
	Environment string `envconfig:"SENTRY_ENVIRONMENT" default:"production"`
}

// Load reads configuration from environment variables
// It first tries to load .env file (useful for local development)
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks values envconfig cannot express with tags
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return errors.Newf("PORT must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Model.NumClasses < 2 {
		return errors.Newf("MODEL_NUM_CLASSES must be at least 2, got %d", c.Model.NumClasses)
	}
	switch c.RateLimit.Storage {
	case "memory", "redis":
	default:
		return errors.Newf("RATE_LIMIT_STORAGE must be memory or redis, got %q", c.RateLimit.Storage)
	}
	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	// Halved for the sweeper tick, which must stay positive
	if c.RateLimit.IdleEviction < time.Second {
		return errors.New("RATE_LIMIT_IDLE_EVICTION must be at least 1s")
	}
	if c.Postgres.Enabled && (c.Postgres.User == "" || c.Postgres.Database == "") {
		return errors.New("POSTGRES_USER and POSTGRES_DB are required when POSTGRES_ENABLED=true")
	}
	if c.PredictionLog.QueueSize <= 0 || c.PredictionLog.BatchSize <= 0 {
		return errors.New("PREDICTION_LOG_QUEUE_SIZE and PREDICTION_LOG_BATCH_SIZE must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED=true")
	}
	return nil
}
