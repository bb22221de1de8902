package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/nba-analytics-pipeline/internal/config"
)

const sampleYAML = `
logger:
  env: dev
  level: debug

postgres:
  host: localhost
  port: 5432
  user: pipeline
  password: secret
  dbname: nba_analytics
  sslmode: disable
  max_conns: 10
  max_conn_lifetime: 30m

pipeline:
  data_dir: ./data
  batch_size: 250
  strict_validation: true
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Logger.Env)
	assert.Equal(t, "debug", cfg.Logger.Level)

	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "nba_analytics", cfg.Postgres.DBName)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.Postgres.MaxConnLifetime)

	assert.Equal(t, "./data", cfg.Pipeline.DataDir)
	assert.Equal(t, 250, cfg.Pipeline.BatchSize)
	assert.True(t, cfg.Pipeline.StrictValidation)
}

func TestLoadConfigAppliesPipelineDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, "postgres:\n  host: localhost\n"))
	require.NoError(t, err)

	assert.Equal(t, config.DefaultBatchSize, cfg.Pipeline.BatchSize)
	assert.Equal(t, config.DefaultAbortErrorRate, cfg.Pipeline.AbortErrorRate)
	assert.Equal(t, config.DefaultRecencyDecay, cfg.Pipeline.RecencyDecay)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
