package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// ConsoleConfig captures all tunable parameters for the terminal clients.
// Values are primarily loaded from environment variables with sane defaults
// so the binaries can run locally without excessive setup.
type ConsoleConfig struct {
	APIBaseURL   string
	APIToken     string
	APITokenFile string

	PollInterval   time.Duration
	RequestTimeout time.Duration

	ListenWS    bool
	MetricsAddr string

	LogLevel string
	LogFile  string

	RideID string // rider console only
}

func defaultConsoleConfig() ConsoleConfig {
	return ConsoleConfig{
		APIBaseURL:     "http://localhost:8080",
		PollInterval:   5 * time.Second,
		RequestTimeout: 10 * time.Second,
		LogLevel:       "info",
		LogFile:        "ride-console.log",
	}
}

func LoadConsoleConfig() (ConsoleConfig, error) {
	cfg := defaultConsoleConfig()
	var errs []error

	setStringFromEnv(&cfg.APIBaseURL, "API_BASE_URL")
	cfg.APIToken = os.Getenv("API_TOKEN")
	setStringFromEnv(&cfg.APITokenFile, "API_TOKEN_FILE")

	setDurationFromEnv(&cfg.PollInterval, "POLL_INTERVAL", &errs)
	setDurationFromEnv(&cfg.RequestTimeout, "REQUEST_TIMEOUT", &errs)

	cfg.ListenWS = strings.EqualFold(os.Getenv("LISTEN_WS"), "true")
	setStringFromEnv(&cfg.MetricsAddr, "METRICS_ADDR")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	setStringFromEnv(&cfg.LogFile, "LOG_FILE")

	setStringFromEnv(&cfg.RideID, "RIDE_ID")

	if cfg.APIToken == "" && cfg.APITokenFile == "" {
		errs = append(errs, fmt.Errorf("one of API_TOKEN or API_TOKEN_FILE must be set"))
	}
	if cfg.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("POLL_INTERVAL must be > 0"))
	}

	return cfg, errors.Join(errs...)
}

// StubConfig captures tunable parameters for the stub collaborator API.
type StubConfig struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	PGDSN     string
	RedisAddr string
	RedisPass string

	KafkaBrokers []string
	KafkaTopic   string

	LogLevel      string
	RunMigrations bool
	Seed          bool
}

func defaultStubConfig() StubConfig {
	return StubConfig{
		HTTPAddr:        ":8080",
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		KafkaTopic:      "ride-events",
		LogLevel:        "info",
	}
}

func LoadStubConfig() (StubConfig, error) {
	cfg := defaultStubConfig()
	var errs []error

	setStringFromEnv(&cfg.HTTPAddr, "HTTP_ADDR")
	setDurationFromEnv(&cfg.ReadTimeout, "HTTP_READ_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.WriteTimeout, "HTTP_WRITE_TIMEOUT", &errs)
	setDurationFromEnv(&cfg.ShutdownTimeout, "HTTP_SHUTDOWN_TIMEOUT", &errs)

	cfg.PGDSN = os.Getenv("PG_DSN")
	cfg.RedisAddr = strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	cfg.RedisPass = os.Getenv("REDIS_PASSWORD")

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitAndTrim(brokers)
	}
	setStringFromEnv(&cfg.KafkaTopic, "KAFKA_TOPIC")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.RunMigrations = strings.EqualFold(os.Getenv("MIGRATE"), "true")
	cfg.Seed = strings.EqualFold(os.Getenv("SEED"), "true")

	return cfg, errors.Join(errs...)
}

func setDurationFromEnv(target *time.Duration, key string, errs *[]error) {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
			return
		}
		*target = d
	}
}

func setStringFromEnv(target *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*target = v
	}
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
