package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from a dotenv file, environment and flags.
type Config struct {
	RunAddress  string
	DatabaseURI string
	LogLevel    string

	TwilioAPIURL         string
	TwilioAccountSID     string
	TwilioAuthToken      string
	TwilioWhatsAppNumber string
	ConfirmationTemplate string
	NotifyTimeout        time.Duration

	RestaurantName string
	Currency       string

	RateLimitMax       int
	RateLimitWindow    time.Duration
	DailyNumberZone    *time.Location
	TokenSecret        string
	StaffLogin         string
	StaffPassword      string
	RedeliveryInterval time.Duration
	RedeliveryWorkers  int
	RedeliveryBatch    int
	MaxDeliveryAttempt int
	ShutdownTimeout    time.Duration
}

const (
	defaultRunAddress         = ":8080"
	defaultLogLevel           = "info"
	defaultTwilioAPIURL       = "https://api.twilio.com"
	defaultNotifyTimeout      = 10 * time.Second
	defaultRestaurantName     = "Restaurant Mustafa"
	defaultCurrency           = "DA"
	defaultRateLimitMax       = 5
	defaultRateLimitWindow    = time.Hour
	defaultDailyNumberZone    = "UTC"
	defaultTokenSecret        = "change-me-in-production"
	defaultRedeliveryInterval = time.Minute
	defaultRedeliveryWorkers  = 2
	defaultRedeliveryBatch    = 16
	defaultMaxDeliveryAttempt = 3
	defaultShutdownTimeout    = 10 * time.Second
	defaultEnvFile            = ".env"
)

// Load parses configuration from flags, environment variables and an optional dotenv file.
func Load() (*Config, error) {
	path := defaultEnvFile
	if v, ok := os.LookupEnv("ENV_FILE"); ok && v != "" {
		path = v
	}
	fileEnv, err := readDotEnv(path)
	if err != nil {
		return nil, err
	}
	return load(os.Args[1:], layered(os.LookupEnv, fileEnv))
}

type envLookup func(string) (string, bool)

// layered prefers the process environment over values read from the dotenv file.
func layered(primary envLookup, fallback map[string]string) envLookup {
	return func(key string) (string, bool) {
		if v, ok := primary(key); ok {
			return v, true
		}
		v, ok := fallback[key]
		return v, ok
	}
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		LogLevel:             getString(lookup, "LOG_LEVEL", defaultLogLevel),
		TwilioAPIURL:         getString(lookup, "TWILIO_API_URL", defaultTwilioAPIURL),
		TwilioAccountSID:     getString(lookup, "TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:      getString(lookup, "TWILIO_AUTH_TOKEN", ""),
		TwilioWhatsAppNumber: getString(lookup, "TWILIO_WHATSAPP_NUMBER", ""),
		ConfirmationTemplate: getString(lookup, "WHATSAPP_CONFIRMATION_TEMPLATE", ""),
		NotifyTimeout:        getDuration(lookup, "NOTIFY_TIMEOUT", defaultNotifyTimeout),
		RestaurantName:       getString(lookup, "RESTAURANT_NAME", defaultRestaurantName),
		Currency:             getString(lookup, "CURRENCY", defaultCurrency),
		RateLimitMax:         getInt(lookup, "RATE_LIMIT_MAX", defaultRateLimitMax),
		RateLimitWindow:      getDuration(lookup, "RATE_LIMIT_WINDOW", defaultRateLimitWindow),
		TokenSecret:          getString(lookup, "TOKEN_SECRET", defaultTokenSecret),
		StaffLogin:           getString(lookup, "STAFF_LOGIN", ""),
		StaffPassword:        getString(lookup, "STAFF_PASSWORD", ""),
		RedeliveryInterval:   getDuration(lookup, "REDELIVERY_INTERVAL", defaultRedeliveryInterval),
		RedeliveryWorkers:    getInt(lookup, "REDELIVERY_WORKERS", defaultRedeliveryWorkers),
		RedeliveryBatch:      getInt(lookup, "REDELIVERY_BATCH", defaultRedeliveryBatch),
		MaxDeliveryAttempt:   getInt(lookup, "MAX_DELIVERY_ATTEMPTS", defaultMaxDeliveryAttempt),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
	}
	zoneName := getString(lookup, "DAILY_NUMBER_TIMEZONE", defaultDailyNumberZone)

	fs := flag.NewFlagSet("foodorder", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		notifyTimeoutStr      = cfg.NotifyTimeout.String()
		redeliveryIntervalStr = cfg.RedeliveryInterval.String()
		shutdownTimeoutStr    = cfg.ShutdownTimeout.String()
	)

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.TwilioAPIURL, "twilio-url", cfg.TwilioAPIURL, "Messaging provider base URL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error")
	fs.StringVar(&notifyTimeoutStr, "notify-timeout", notifyTimeoutStr, "Bound on a single provider call")
	fs.StringVar(&redeliveryIntervalStr, "redelivery-interval", redeliveryIntervalStr, "Interval between redelivery polls")
	fs.StringVar(&shutdownTimeoutStr, "shutdown-timeout", shutdownTimeoutStr, "Graceful shutdown timeout")
	fs.IntVar(&cfg.RedeliveryWorkers, "redelivery-workers", cfg.RedeliveryWorkers, "Number of concurrent redelivery workers")
	fs.StringVar(&zoneName, "daily-timezone", zoneName, "Time zone whose midnight resets daily order numbers")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	var err error

	if cfg.NotifyTimeout, err = time.ParseDuration(notifyTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid notify timeout: %w", err)
	}

	if cfg.RedeliveryInterval, err = time.ParseDuration(redeliveryIntervalStr); err != nil {
		return nil, fmt.Errorf("invalid redelivery interval: %w", err)
	}

	if cfg.ShutdownTimeout, err = time.ParseDuration(shutdownTimeoutStr); err != nil {
		return nil, fmt.Errorf("invalid shutdown timeout: %w", err)
	}

	if cfg.DailyNumberZone, err = time.LoadLocation(zoneName); err != nil {
		return nil, fmt.Errorf("invalid daily number timezone: %w", err)
	}

	if secretFile, ok := lookup("TOKEN_SECRET_FILE"); ok && secretFile != "" {
		content, err := os.ReadFile(secretFile)
		if err != nil {
			return nil, fmt.Errorf("read token secret file: %w", err)
		}
		cfg.TokenSecret = strings.TrimSpace(string(content))
	}

	if tokenFile, ok := lookup("TWILIO_AUTH_TOKEN_FILE"); ok && tokenFile != "" {
		content, err := os.ReadFile(tokenFile)
		if err != nil {
			return nil, fmt.Errorf("read twilio auth token file: %w", err)
		}
		cfg.TwilioAuthToken = strings.TrimSpace(string(content))
	}

	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = defaultNotifyTimeout
	}

	if cfg.RateLimitMax <= 0 {
		cfg.RateLimitMax = defaultRateLimitMax
	}

	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = defaultRateLimitWindow
	}

	if cfg.RedeliveryInterval <= 0 {
		cfg.RedeliveryInterval = defaultRedeliveryInterval
	}

	if cfg.RedeliveryWorkers <= 0 {
		cfg.RedeliveryWorkers = defaultRedeliveryWorkers
	}

	if cfg.RedeliveryBatch <= 0 {
		cfg.RedeliveryBatch = defaultRedeliveryBatch
	}

	if cfg.MaxDeliveryAttempt <= 0 {
		cfg.MaxDeliveryAttempt = defaultMaxDeliveryAttempt
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}

	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioWhatsAppNumber == "" {
		return nil, fmt.Errorf("twilio credentials and sender number must be provided")
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
