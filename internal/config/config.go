// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// HTTPAddr is the address the HTTP server listens on (e.g. :8080).
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	// DatabaseURL is the Postgres DSN.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// ProbeTimeout is the per-tier probe timeout (e.g. "5s"). Applies to the HTTP HEAD tier and the TCP fallback tier separately.
	ProbeTimeout string `mapstructure:"PROBE_TIMEOUT"`
	// ProbeTCPPort is the port for the TCP fallback probe (default 80).
	ProbeTCPPort int `mapstructure:"PROBE_TCP_PORT"`
	// MonitorConcurrency caps how many devices a sweep probes at once; 1 means sequential.
	MonitorConcurrency int `mapstructure:"MONITOR_CONCURRENCY"`
	// ResendAPIKey is the API key for the Resend email API. Email alerts are skipped when empty.
	ResendAPIKey string `mapstructure:"RESEND_API_KEY"`
	// ResendBaseURL is the Resend API base URL (default https://api.resend.com).
	ResendBaseURL string `mapstructure:"RESEND_BASE_URL"`
	// AlertEmailFrom is the From address for alert emails.
	AlertEmailFrom string `mapstructure:"ALERT_EMAIL_FROM"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// Telemetry (optional). When Kafka brokers are set, the monitor emits probe/alert events to Kafka.
	// KafkaBrokers is a comma-separated list of Kafka broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaTopic is the Kafka topic for monitor events (default device-monitor-events).
	KafkaTopic string `mapstructure:"MONITOR_KAFKA_TOPIC"`
	// OTLPEndpoint is the OTLP gRPC endpoint for traces/metrics (e.g. http://localhost:4317). Empty disables export.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP export even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// Worker-only: Loki URL for the event worker to push logs (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// KafkaGroupID is the consumer group ID for the event worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PROBE_TIMEOUT", "5s")
	v.SetDefault("PROBE_TCP_PORT", 80)
	v.SetDefault("MONITOR_CONCURRENCY", 1)
	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("RESEND_BASE_URL", "https://api.resend.com")
	v.SetDefault("ALERT_EMAIL_FROM", "DDaaS Companion <noreply@resend.dev>")
	v.SetDefault("APP_ENV", "")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("MONITOR_KAFKA_TOPIC", "device-monitor-events")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("KAFKA_GROUP_ID", "device-monitor-worker")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPAddr == "" {
		return nil, errors.New("config: HTTP_ADDR must be set")
	}

	if cfg.ProbeTCPPort <= 0 || cfg.ProbeTCPPort > 65535 {
		return nil, errors.New("config: PROBE_TCP_PORT must be between 1 and 65535")
	}

	if cfg.MonitorConcurrency == 0 {
		cfg.MonitorConcurrency = 1
	}
	if cfg.MonitorConcurrency < 0 {
		return nil, errors.New("config: MONITOR_CONCURRENCY must be at least 1")
	}

	return &cfg, nil
}

// ProbeTimeoutDuration parses ProbeTimeout as a time.Duration. Returns 5s if unset or invalid.
func (c *Config) ProbeTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.ProbeTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if event emission is enabled (non-empty list) and to create the producer.
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
