// Package config provides configuration structures and validation for the ledger binaries.
// Every process (HTTP API, receipt archiver, operator CLI) loads the same structure from
// its own .env file, so settings for storage, messaging and the simulated payment
// collaborators live side by side.
package config

import (
	"errors"
	"strings"
	"time"
)

// Storage backends accepted by STORAGE_BACKEND.
const (
	StorageBackendPostgres = "postgres"
	StorageBackendRedis    = "redis"
	StorageBackendSQLite   = "sqlite"
	StorageBackendMemory   = "memory"
)

// Config holds the complete application configuration with settings for all components.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Auth        AuthConfig
	Ledger      LedgerConfig
	Storage     StorageConfig
	Postgres    PostgresConfig
	Redis       RedisConfig
	SQLite      SQLiteConfig
	MongoDB     MongoDBConfig
	Kafka       KafkaConfig
	RabbitMQ    RabbitMQConfig
	Outbox      OutboxConfig
	WorkerPool  WorkerPoolConfig
	Payment     PaymentConfig
	Fulfillment FulfillmentConfig
	DealSearch  DealSearchConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration // Also bounds a checkout request, keep it above the simulated delays
	IdleTimeout     time.Duration
}

// AuthConfig enables bearer token checks on the API when JWTSecret is set.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// Enabled reports whether requests must carry a signed bearer token.
func (a AuthConfig) Enabled() bool {
	return a.JWTSecret != ""
}

// LedgerConfig contains the ledger store settings
type LedgerConfig struct {
	BaseCurrency       string
	DefaultTotalBudget float64
	SubscriberBuffer   int           // Per-subscriber event channel capacity
	MirrorWriteTimeout time.Duration // Deadline for a single snapshot write
	RecoverOnStart     bool          // Fail items left in "paid" by a previous run
}

// StorageConfig selects the key-value backend used for the ledger snapshot.
type StorageConfig struct {
	Backend   string
	KeyPrefix string
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL              string        // Database connection string
	MaxConns         int32         // Maximum number of open connections
	MinConns         int32         // Maximum number of idle connections
	ConnMaxLifetime  time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime  time.Duration // Maximum idle time of a connection
	MigrationsPath   string        // Path to migration files
	ApplicationName  string        // Reported to the server as application_name
	StatementTimeout time.Duration // Per-statement limit on ledger queries, 0 disables it
}

// RedisConfig contains Redis configuration
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	UseTLS      bool
	DialTimeout time.Duration
}

// SQLiteConfig contains the sqlite snapshot file location
type SQLiteConfig struct {
	Path string
}

// MongoDBConfig contains MongoDB configuration
type MongoDBConfig struct {
	URI               string
	Database          string
	ReceiptCollection string
	Timeout           time.Duration
	MaxPoolSize       uint64
	MinPoolSize       uint64
	MaxConnIdleTime   time.Duration
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	ReceiptTopic      string
	NumPartitions     int // Number of partitions for topics
	ReplicationFactor int // Replication factor for topics
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// RabbitMQConfig contains RabbitMQ configuration. An empty URL disables notifications.
type RabbitMQConfig struct {
	URL            string
	ConfirmedQueue string
}

// OutboxConfig contains outbox pattern configuration
type OutboxConfig struct {
	PollingInterval  time.Duration
	BatchSize        int
	MaxRetryAttempts int // Maximum number of retry attempts for outbox messages
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of concurrent supplier confirmations
}

// PaymentConfig drives the simulated payment authorizer
type PaymentConfig struct {
	AuthDelay    time.Duration
	DeclineAbove float64
	FailureRate  float64
}

// FulfillmentConfig drives the simulated supplier confirmer
type FulfillmentConfig struct {
	DelayScale  float64 // Multiplier applied to the per-type base delays
	SuccessRate float64
}

// DealSearchConfig contains the GigaChat deal search settings. An empty APIKey disables it.
type DealSearchConfig struct {
	APIKey             string
	Scope              string
	Model              string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// Enabled reports whether a deal search backend is configured.
func (d DealSearchConfig) Enabled() bool {
	return d.APIKey != ""
}

// validate performs validation of all configuration values,
// ensuring they meet minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate Ledger config
	if c.Ledger.BaseCurrency == "" {
		validationErrors = append(validationErrors, "LEDGER_BASE_CURRENCY is required")
	}
	if c.Ledger.DefaultTotalBudget < 0 {
		validationErrors = append(validationErrors, "LEDGER_DEFAULT_TOTAL_BUDGET must not be negative")
	}
	if c.Ledger.SubscriberBuffer <= 0 {
		validationErrors = append(validationErrors, "LEDGER_SUBSCRIBER_BUFFER must be greater than 0")
	}
	if c.Ledger.MirrorWriteTimeout <= 0 {
		validationErrors = append(validationErrors, "LEDGER_MIRROR_WRITE_TIMEOUT must be greater than 0")
	}

	// Validate Storage config
	switch c.Storage.Backend {
	case StorageBackendPostgres, StorageBackendRedis, StorageBackendMemory:
	case StorageBackendSQLite:
		if c.SQLite.Path == "" {
			validationErrors = append(validationErrors, "SQLITE_PATH is required for the sqlite backend")
		}
	default:
		validationErrors = append(validationErrors, "STORAGE_BACKEND must be one of postgres, redis, sqlite, memory")
	}
	if c.Storage.Backend == StorageBackendRedis && c.Redis.Addr == "" {
		validationErrors = append(validationErrors, "REDIS_ADDR is required for the redis backend")
	}

	// Validate PostgreSQL config
	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	// Validate MongoDB config
	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.ReceiptCollection == "" {
		validationErrors = append(validationErrors, "MONGO_RECEIPT_COLLECTION is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.ReceiptTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_RECEIPT_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate RabbitMQ config
	if c.RabbitMQ.URL != "" && c.RabbitMQ.ConfirmedQueue == "" {
		validationErrors = append(validationErrors, "RABBITMQ_CONFIRMED_QUEUE is required when RABBITMQ_URL is set")
	}

	// Validate Outbox config
	if c.Outbox.PollingInterval <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_POLLING_INTERVAL must be greater than 0")
	}
	if c.Outbox.BatchSize <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_BATCH_SIZE must be greater than 0")
	}
	if c.Outbox.MaxRetryAttempts <= 0 {
		validationErrors = append(validationErrors, "OUTBOX_MAX_RETRY_ATTEMPTS must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	// Validate simulated collaborators
	if c.Payment.AuthDelay < 0 {
		validationErrors = append(validationErrors, "PAYMENT_AUTH_DELAY must not be negative")
	}
	if c.Payment.DeclineAbove <= 0 {
		validationErrors = append(validationErrors, "PAYMENT_DECLINE_ABOVE must be greater than 0")
	}
	if c.Payment.FailureRate < 0 || c.Payment.FailureRate > 1 {
		validationErrors = append(validationErrors, "PAYMENT_FAILURE_RATE must be between 0 and 1")
	}
	if c.Fulfillment.DelayScale < 0 {
		validationErrors = append(validationErrors, "FULFILLMENT_DELAY_SCALE must not be negative")
	}
	if c.Fulfillment.SuccessRate < 0 || c.Fulfillment.SuccessRate > 1 {
		validationErrors = append(validationErrors, "FULFILLMENT_SUCCESS_RATE must be between 0 and 1")
	}

	if c.DealSearch.Enabled() && c.DealSearch.Timeout <= 0 {
		validationErrors = append(validationErrors, "DEAL_SEARCH_TIMEOUT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
