package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "cli", cfg.Mode)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "easypark", cfg.ServiceName)
	assert.Equal(t, "1.0.0", cfg.ServiceVersion)
	assert.Equal(t, "http://localhost:4318", cfg.OTelEndpoint)
	assert.Equal(t, "strict", cfg.DefaultPolicy)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("APP_MODE", "server")
	t.Setenv("APP_ENV", "production")
	t.Setenv("OTEL_SERVICE_NAME", "garage-north")
	t.Setenv("PARKING_POLICY", "permissive")
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "3")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "server", cfg.Mode)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "garage-north", cfg.ServiceName)
	assert.Equal(t, "permissive", cfg.DefaultPolicy)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestInvalidNumericFallsBackToDefault(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT_SECONDS", "soon")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}
