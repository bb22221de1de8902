// Package config holds the typed configuration tree and the viper loader.
package config

import (
	"time"

	"github.com/maxviazov/nba-analytics-pipeline/internal/logger"
)

type Config struct {
	Logger   logger.LoggerConfig `mapstructure:"logger"`
	Postgres PostgresConfig      `mapstructure:"postgres"`
	Pipeline PipelineConfig      `mapstructure:"pipeline"`
}

// PostgresConfig parameterizes the pgx pool.
type PostgresConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"required"`
	User     string `mapstructure:"user" validate:"required"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname" validate:"required"`
	SSLMode  string `mapstructure:"sslmode"`

	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"`
}

// PipelineConfig tunes ingestion and processing behavior.
type PipelineConfig struct {
	// DataDir is scanned for season CSV files.
	DataDir string `mapstructure:"data_dir"`
	// BatchSize bounds rows per upsert batch.
	BatchSize int `mapstructure:"batch_size"`
	// StrictValidation makes validation warnings fail a batch.
	StrictValidation bool `mapstructure:"strict_validation"`
	// MaxValidationErrors caps collected blocking issues per batch.
	MaxValidationErrors int `mapstructure:"max_validation_errors"`
	// AbortErrorRate is the validation-error fraction above which a file's
	// ingestion aborts instead of writing partial data.
	AbortErrorRate float64 `mapstructure:"abort_error_rate"`
	// RecencyDecay weights recent months in trend aggregation.
	RecencyDecay float64 `mapstructure:"recency_decay"`
}

// Defaults for the pipeline knobs when the config file leaves them unset.
const (
	DefaultBatchSize      = 500
	DefaultAbortErrorRate = 0.10
	DefaultRecencyDecay   = 0.95
)

func (p *PipelineConfig) setDefaults() {
	if p.BatchSize <= 0 {
		p.BatchSize = DefaultBatchSize
	}
	if p.AbortErrorRate <= 0 {
		p.AbortErrorRate = DefaultAbortErrorRate
	}
	if p.RecencyDecay <= 0 {
		p.RecencyDecay = DefaultRecencyDecay
	}
}
