package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.APIPort)
	assert.Equal(t, "campaign_sends", cfg.QueueName)
	assert.Equal(t, 3, cfg.WorkerConcurrency)
	assert.Equal(t, 500, cfg.SendDelayMS)
	assert.False(t, cfg.FailOnAllFailed)
	assert.True(t, cfg.TrackingEnabled)
	assert.Equal(t, "mock", cfg.Mailer)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("API_PORT", "9000")
	t.Setenv("SEND_DELAY_MS", "50")
	t.Setenv("FAIL_ON_ALL_FAILED", "true")
	t.Setenv("MAILER", "ses")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.APIPort)
	assert.Equal(t, 50, cfg.SendDelayMS)
	assert.True(t, cfg.FailOnAllFailed)
	assert.Equal(t, "ses", cfg.Mailer)
}

func TestLoad_InvalidMailer(t *testing.T) {
	t.Setenv("MAILER", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestConfig_DSN(t *testing.T) {
	cfg := &Config{
		DBHost:     "db.internal",
		DBPort:     5433,
		DBUser:     "svc",
		DBPassword: "secret",
		DBName:     "campaigns",
		DBSSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=svc password=secret dbname=campaigns sslmode=require",
		cfg.DSN(),
	)
}
