package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted by STORAGE_DRIVER.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress         string
	DatabaseURI        string
	StorageDriver      string
	StripeSecretKey    string
	WebhookSecrets     []string
	StripeAPIBase      string
	StripeTimeout      time.Duration
	SignatureHeader    string
	SignatureTolerance time.Duration
	AppURL             string
	KafkaBrokers       []string
	KafkaTopic         string
	NotifyPollInterval time.Duration
	NotifyBatchSize    int
	WorkerPoolSize     int
	ShutdownTimeout    time.Duration
	LogLevel           string
}

const (
	defaultRunAddress         = ":8080"
	defaultStripeAPIBase      = "https://api.stripe.com"
	defaultStripeTimeout      = 10 * time.Second
	defaultSignatureHeader    = "Stripe-Signature"
	defaultKafkaTopic         = "orders.paid"
	defaultNotifyPollInterval = 5 * time.Second
	defaultNotifyBatchSize    = 32
	defaultWorkerPoolSize     = 4
	defaultShutdownTimeout    = 10 * time.Second
	defaultLogLevel           = "info"
)

// Load parses configuration from .env, flags and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:         getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:        getString(lookup, "DATABASE_URI", ""),
		StorageDriver:      getString(lookup, "STORAGE_DRIVER", StorageDriverPostgres),
		StripeSecretKey:    getString(lookup, "STRIPE_SECRET_KEY", ""),
		StripeAPIBase:      getString(lookup, "STRIPE_API_BASE", defaultStripeAPIBase),
		StripeTimeout:      getDuration(lookup, "STRIPE_TIMEOUT", defaultStripeTimeout),
		SignatureHeader:    getString(lookup, "SIGNATURE_HEADER", defaultSignatureHeader),
		AppURL:             getString(lookup, "APP_URL", ""),
		KafkaTopic:         getString(lookup, "KAFKA_TOPIC", defaultKafkaTopic),
		NotifyPollInterval: getDuration(lookup, "NOTIFY_POLL_INTERVAL", defaultNotifyPollInterval),
		NotifyBatchSize:    getInt(lookup, "NOTIFY_BATCH_SIZE", defaultNotifyBatchSize),
		WorkerPoolSize:     getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:    getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		LogLevel:           getString(lookup, "LOG_LEVEL", defaultLogLevel),
	}

	fs := flag.NewFlagSet("paygate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		webhookSecrets     = getString(lookup, "STRIPE_WEBHOOK_SECRET", "")
		kafkaBrokers       = getString(lookup, "KAFKA_BROKERS", "")
		stripeTimeoutStr   = cfg.StripeTimeout.String()
		toleranceStr       = getString(lookup, "SIGNATURE_TOLERANCE", "0s")
		pollIntervalStr    = cfg.NotifyPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "Database DSN or SQLite file path")
	fs.StringVar(&cfg.StorageDriver, "storage", cfg.StorageDriver, "Storage driver: postgres or sqlite")
	fs.StringVar(&cfg.AppURL, "app-url", cfg.AppURL, "Public base URL used for checkout redirects")
	fs.StringVar(&cfg.StripeAPIBase, "stripe-api", cfg.StripeAPIBase, "Payment processor API base URL")
	fs.StringVar(&stripeTimeoutStr, "stripe-timeout", stripeTimeoutStr, "Payment processor request timeout")
	fs.StringVar(&cfg.SignatureHeader, "signature-header", cfg.SignatureHeader, "Webhook signature header name")
	fs.StringVar(&toleranceStr, "signature-tolerance", toleranceStr, "Maximum webhook timestamp skew, 0 disables the check")
	fs.StringVar(&kafkaBrokers, "kafka-brokers", kafkaBrokers, "Comma separated Kafka brokers for paid order notifications")
	fs.StringVar(&cfg.KafkaTopic, "kafka-topic", cfg.KafkaTopic, "Kafka topic for paid order notifications")
	fs.StringVar(&pollIntervalStr, "notify-interval", pollIntervalStr, "Interval between notification polls")
	fs.IntVar(&cfg.NotifyBatchSize, "notify-batch", cfg.NotifyBatchSize, "Maximum orders per notification batch")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent notification workers")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.StripeTimeout, err = time.ParseDuration(stripeTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid stripe timeout: %w", err)
	}

	if cfg.SignatureTolerance, err = time.ParseDuration(toleranceStr); err != nil {
		return nil, fmt.Errorf("invalid signature tolerance: %w", err)
	}

	if cfg.NotifyPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid notify interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("STRIPE_SECRET_KEY_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read stripe secret key file: %w", err)
		}
		cfg.StripeSecretKey = strings.TrimSpace(string(content))
	}

	if secretFile, ok := lookup("STRIPE_WEBHOOK_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read webhook secret file: %w", err)
		}
		webhookSecrets = string(content)
	}

	cfg.WebhookSecrets = splitList(webhookSecrets)
	cfg.KafkaBrokers = splitList(kafkaBrokers)
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")

	if cfg.StripeTimeout <= 0 {
		cfg.StripeTimeout = defaultStripeTimeout
	}

	if cfg.SignatureTolerance < 0 {
		cfg.SignatureTolerance = 0
	}

	if cfg.NotifyPollInterval <= 0 {
		cfg.NotifyPollInterval = defaultNotifyPollInterval
	}

	if cfg.NotifyBatchSize <= 0 {
		cfg.NotifyBatchSize = defaultNotifyBatchSize
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.SignatureHeader == "" {
		cfg.SignatureHeader = defaultSignatureHeader
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.StripeSecretKey == "" {
		return nil, fmt.Errorf("stripe secret key must be provided")
	}

	if len(cfg.WebhookSecrets) == 0 {
		return nil, fmt.Errorf("stripe webhook secret must be provided")
	}

	if cfg.AppURL == "" {
		return nil, fmt.Errorf("app URL must be provided")
	}

	return cfg, nil
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getInt(lookup envLookup, key string, def int) int {
	if v, ok := lookup(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
