package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress           string
	DatabaseURI          string
	GatewayAddress       string
	GatewayWebhookSecret string
	CarrierAddress       string
	StaffKeyHash         string
	RetryAttempts        int
	RetryBaseDelay       time.Duration
	RetryMaxDelay        time.Duration
	ShutdownTimeout      time.Duration
}

const (
	defaultRunAddress      = ":8080"
	defaultRetryAttempts   = 3
	defaultRetryBaseDelay  = 500 * time.Millisecond
	defaultRetryMaxDelay   = 7 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		GatewayAddress:       getString(lookup, "GATEWAY_ADDRESS", ""),
		GatewayWebhookSecret: getString(lookup, "GATEWAY_WEBHOOK_SECRET", ""),
		CarrierAddress:       getString(lookup, "CARRIER_ADDRESS", ""),
		StaffKeyHash:         getString(lookup, "STAFF_KEY_HASH", ""),
		RetryAttempts:        getInt(lookup, "RETRY_ATTEMPTS", defaultRetryAttempts),
		RetryBaseDelay:       getDuration(lookup, "RETRY_BASE_DELAY", defaultRetryBaseDelay),
		RetryMaxDelay:        getDuration(lookup, "RETRY_MAX_DELAY", defaultRetryMaxDelay),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}

	fs := flag.NewFlagSet("fulfillment", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		baseDelayStr       = cfg.RetryBaseDelay.String()
		maxDelayStr        = cfg.RetryMaxDelay.String()
		shutdownTimeoutStr = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.GatewayAddress, "g", cfg.GatewayAddress, "Payment gateway base URL")
	fs.StringVar(&cfg.CarrierAddress, "c", cfg.CarrierAddress, "Shipping carrier base URL")
	fs.StringVar(&cfg.StaffKeyHash, "staff-key-hash", cfg.StaffKeyHash, "Bcrypt hash of the staff API key")
	fs.IntVar(&cfg.RetryAttempts, "retry-attempts", cfg.RetryAttempts, "Attempts per compensating call")
	fs.StringVar(&baseDelayStr, "retry-base-delay", baseDelayStr, "Base backoff delay for compensating calls")
	fs.StringVar(&maxDelayStr, "retry-max-delay", maxDelayStr, "Backoff delay cap for compensating calls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.RetryBaseDelay, err = time.ParseDuration(baseDelayStr); err != nil {
		return nil, fmt.Errorf("invalid retry base delay: %w", err)
	}

	if cfg.RetryMaxDelay, err = time.ParseDuration(maxDelayStr); err != nil {
		return nil, fmt.Errorf("invalid retry max delay: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if secretFile, ok := lookup("GATEWAY_WEBHOOK_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read webhook secret file: %w", err)
		}
		cfg.GatewayWebhookSecret = string(content)
	}

	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = defaultRetryAttempts
	}

	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultRetryBaseDelay
	}

	if cfg.RetryMaxDelay <= 0 {
		cfg.RetryMaxDelay = defaultRetryMaxDelay
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.GatewayAddress == "" {
		return nil, fmt.Errorf("payment gateway address must be provided")
	}

	if cfg.GatewayWebhookSecret == "" {
		return nil, fmt.Errorf("gateway webhook secret must be provided")
	}

	if cfg.CarrierAddress == "" {
		return nil, fmt.Errorf("carrier address must be provided")
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
