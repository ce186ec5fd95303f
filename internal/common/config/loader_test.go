package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Arnavmishra002/agri-advisory-app-sub001/internal/common/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func configErrorDetails(t *testing.T, err error) string {
	t.Helper()
	var stdErr *apperrors.StandardError
	require.True(t, errors.As(err, &stdErr))
	assert.Equal(t, apperrors.ErrCodeConfigurationError, stdErr.Code)
	return stdErr.Details
}

// ==========================
// Defaults and validation
// ==========================

func TestLoadFromFileAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
database:
  redis:
    address: localhost:6379
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "advisory-server", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 0.6, cfg.NLP.FuzzyThreshold)
	assert.Equal(t, 0.6, cfg.NLP.IntentThreshold)
	assert.Equal(t, 0.3, cfg.NLP.HindiScriptMin)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 1800, cfg.Session.TTL)
	assert.Equal(t, 300, cfg.Session.SweepEvery)
	assert.Equal(t, "redis", cfg.Cache.Store)
	assert.Equal(t, 4096, cfg.Cache.MaxEntries)
	assert.Equal(t, 10, cfg.Cache.StaleFactor)
	assert.Equal(t, 30, cfg.RateLimit.Default.PerMinute)
	assert.Equal(t, 600, cfg.Providers.Weather.TTL)
	assert.Equal(t, 4000, cfg.Providers.Weather.Timeout)
}

func TestLoadFromFileKeepsExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
database:
  redis:
    address: localhost:6379
session:
  store: memory
  ttl: 600
nlp:
  fuzzy_threshold: 0.85
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 600, cfg.Session.TTL)
	assert.Equal(t, 0.85, cfg.NLP.FuzzyThreshold)
}

func TestLoadFromFileRejectsMissingRedisAddress(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: advisory-server
database:
  redis:
    address: ""
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, configErrorDetails(t, err), "redis")
}

func TestLoadFromFileRejectsUnknownSessionStore(t *testing.T) {
	path := writeConfigFile(t, `
database:
  redis:
    address: localhost:6379
session:
  store: mongo
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, configErrorDetails(t, err), "session.store")
}

func TestLoadFromFileRejectsUnknownCacheStore(t *testing.T) {
	path := writeConfigFile(t, `
database:
  redis:
    address: localhost:6379
cache:
  store: disk
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, configErrorDetails(t, err), "cache.store")
}

func TestLoadFromFileRejectsOutOfRangeThreshold(t *testing.T) {
	path := writeConfigFile(t, `
database:
  redis:
    address: localhost:6379
nlp:
  fuzzy_threshold: 1.5
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, configErrorDetails(t, err), "fuzzy_threshold")
}

// Runs last: env expansion writes resolved values into the shared viper
// override layer.
func TestLoadFromFileExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("ADVISORY_TEST_PG_PASSWORD", "s3cret")
	path := writeConfigFile(t, `
database:
  redis:
    address: localhost:6379
  postgres:
    password: ${ADVISORY_TEST_PG_PASSWORD}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
}
