package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            string
	Mode            string
	Environment     string
	ServiceName     string
	ServiceVersion  string
	OTelEndpoint    string
	DefaultPolicy   string
	ShutdownTimeout time.Duration
}

func Load() *Config {
	return &Config{
		Port:            envOr("APP_PORT", "8080"),
		Mode:            envOr("APP_MODE", "cli"),
		Environment:     envOr("APP_ENV", "development"),
		ServiceName:     envOr("OTEL_SERVICE_NAME", "easypark"),
		ServiceVersion:  envOr("SERVICE_VERSION", "1.0.0"),
		OTelEndpoint:    envOr("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
		DefaultPolicy:   envOr("PARKING_POLICY", "strict"),
		ShutdownTimeout: time.Duration(envOrInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
