package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress             string
	DatabaseURI            string
	CheckoutBaseURL        string
	Currency               string
	JWTSecret              string
	TokenStrategy          string
	TokenTTL               time.Duration
	SettlementPollInterval time.Duration
	WorkerPoolSize         int
	ShutdownTimeout        time.Duration
	MaxSettlementBatch     int
	CORSAllowOrigins       []string
}

const (
	defaultRunAddress             = ":8080"
	defaultCurrency               = "bdt"
	defaultJWTSecret              = "change-me-in-production"
	defaultTokenStrategy          = "jwt"
	defaultTokenTTL               = 12 * time.Hour
	defaultSettlementPollInterval = 15 * time.Second
	defaultWorkerPoolSize         = 4
	defaultShutdownTimeout        = 10 * time.Second
	defaultMaxSettlementBatch     = 32
)

// Load parses configuration from .env file, environment variables and flags.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:             getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:            getString(lookup, "DATABASE_URI", ""),
		CheckoutBaseURL:        getString(lookup, "CHECKOUT_BASE_URL", ""),
		Currency:               getString(lookup, "CURRENCY", defaultCurrency),
		JWTSecret:              getString(lookup, "JWT_SECRET", defaultJWTSecret),
		TokenStrategy:          getString(lookup, "TOKEN_STRATEGY", defaultTokenStrategy),
		TokenTTL:               getDuration(lookup, "TOKEN_TTL", defaultTokenTTL),
		SettlementPollInterval: getDuration(lookup, "SETTLEMENT_POLL_INTERVAL", defaultSettlementPollInterval),
		WorkerPoolSize:         getInt(lookup, "WORKER_POOL_SIZE", defaultWorkerPoolSize),
		ShutdownTimeout:        getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		MaxSettlementBatch:     getInt(lookup, "SETTLEMENT_BATCH_SIZE", defaultMaxSettlementBatch),
		CORSAllowOrigins:       []string{"*"},
	}

	fs := flag.NewFlagSet("homemeal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		pollIntervalStr    = cfg.SettlementPollInterval.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.CheckoutBaseURL, "c", cfg.CheckoutBaseURL, "Checkout provider base URL")
	fs.StringVar(&cfg.Currency, "currency", cfg.Currency, "ISO currency code for checkout sessions")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", cfg.JWTSecret, "Secret for signing auth tokens")
	fs.StringVar(&cfg.TokenStrategy, "token-strategy", cfg.TokenStrategy, "Auth token strategy (jwt or hmac)")
	fs.IntVar(&cfg.WorkerPoolSize, "worker-pool", cfg.WorkerPoolSize, "Number of concurrent settlement workers")
	fs.StringVar(&pollIntervalStr, "poll-interval", pollIntervalStr, "Interval between settlement reconciliation polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.MaxSettlementBatch, "poll-batch", cfg.MaxSettlementBatch, "Maximum orders per reconciliation batch")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.SettlementPollInterval, err = time.ParseDuration(pollIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("JWT_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read jwt secret file: %w", err)
		}
		cfg.JWTSecret = string(content)
	}

	if cfg.TokenStrategy != "jwt" && cfg.TokenStrategy != "hmac" {
		return nil, fmt.Errorf("unknown token strategy %q", cfg.TokenStrategy)
	}

	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = defaultWorkerPoolSize
	}

	if cfg.MaxSettlementBatch <= 0 {
		cfg.MaxSettlementBatch = defaultMaxSettlementBatch
	}

	if cfg.SettlementPollInterval <= 0 {
		cfg.SettlementPollInterval = defaultSettlementPollInterval
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	if origins, ok := lookup("CORS_ALLOW_ORIGINS"); ok && origins != "" {
		cfg.CORSAllowOrigins = splitComma(origins)
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.CheckoutBaseURL == "" {
		return nil, fmt.Errorf("checkout provider base URL must be provided")
	}

	return cfg, nil
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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
