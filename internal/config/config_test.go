package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{}))
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, ":5000", cfg.Address())
	assert.Equal(t, "local", cfg.Backend.Type)
	assert.Equal(t, "/tmp/kota", cfg.Backend.RootPath)
	assert.Equal(t, "us-east-1", cfg.Backend.S3.Region)
	assert.Equal(t, 16<<20, cfg.Fetch.MaxBytes)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "kota", cfg.Fetch.UserAgent)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, cfg.Trace.Enable)
	assert.Empty(t, cfg.Verify.KeyringPath)
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT":                      "8080",
		"BACKEND_TYPE":              "s3",
		"BACKEND_S3_BUCKET":         "ota-snapshots",
		"BACKEND_S3_ENDPOINT":       "http://localhost:9000",
		"BACKEND_S3_USE_PATH_STYLE": "true",
		"FETCH_MAX_BYTES":           "1048576",
		"FETCH_TIMEOUT":             "5s",
		"LOG_LEVEL":                 "debug",
		"LOG_FORMAT":                "console",
		"TRACE_ENABLE":              "true",
		"VERIFY_KEYRING_PATH":       "/etc/kota/keyring.asc",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "s3", cfg.Backend.Type)
	assert.Equal(t, "ota-snapshots", cfg.Backend.S3.Bucket)
	assert.Equal(t, "http://localhost:9000", cfg.Backend.S3.Endpoint)
	assert.True(t, cfg.Backend.S3.UsePathStyle)
	assert.Equal(t, 1<<20, cfg.Fetch.MaxBytes)
	assert.Equal(t, 5*time.Second, cfg.Fetch.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Trace.Enable)
	assert.Equal(t, "/etc/kota/keyring.asc", cfg.Verify.KeyringPath)
}

func TestLoadGCS(t *testing.T) {
	cfg, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"BACKEND_TYPE":                    "gcs",
		"BACKEND_GCS_BUCKET":              "ota-snapshots",
		"BACKEND_GCS_SERVICE_ACCOUNT_KEY": "/var/run/secrets/gcs.json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "gcs", cfg.Backend.Type)
	assert.Equal(t, "ota-snapshots", cfg.Backend.GCS.Bucket)
	assert.Equal(t, "/var/run/secrets/gcs.json", cfg.Backend.GCS.ServiceAccountKey)
	assert.Empty(t, cfg.Backend.GCS.Endpoint)
}

func TestLoadInvalid(t *testing.T) {
	_, err := LoadWith(context.Background(), envconfig.MapLookuper(map[string]string{
		"PORT": "not-a-port",
	}))
	assert.Error(t, err)
}
