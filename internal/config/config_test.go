package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"formscan/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:3000"}, cfg.CORS.AllowedOrigins)
	assert.InDelta(t, 0.3, cfg.Classifier.Threshold, 1e-9)
	assert.Equal(t, int64(2<<20), cfg.Ingest.MaxPayloadBytes)
	assert.True(t, cfg.Ingest.KeepSourceText)
	assert.Equal(t, 5000, cfg.Export.MaxRows)
	assert.Equal(t, 200, cfg.Export.BatchSize)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("FORMSCAN_SERVER_PORT", ":9090")
	t.Setenv("PORT", "7000")
	t.Setenv("FORMSCAN_DB_HOST", "db.internal")
	t.Setenv("FORMSCAN_CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("FORMSCAN_CLASSIFIER_THRESHOLD", "0.5")
	t.Setenv("FORMSCAN_EXPORT_MAX_ROWS", "10")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.InDelta(t, 0.5, cfg.Classifier.Threshold, 1e-9)
	assert.Equal(t, 10, cfg.Export.MaxRows)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("FORMSCAN_SERVER_PORT", "")
	t.Setenv("PORT", "7000")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Server.Port)
}

func TestLoad_RejectsBadThreshold(t *testing.T) {
	t.Setenv("FORMSCAN_CLASSIFIER_THRESHOLD", "1.5")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSN(t *testing.T) {
	db := config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/n?sslmode=disable", db.DSN())
}
