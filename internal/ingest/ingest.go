// Package ingest drives raw CSV rows through validation and into the raw
// store. Each file moves through an explicit state machine; a file whose
// validation error rate crosses the abort threshold writes nothing.
package ingest

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/reader"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
	"github.com/maxviazov/nba-analytics-pipeline/internal/validator"
)

// State is a file's position in the ingestion lifecycle.
type State string

const (
	StatePending    State = "pending"
	StateReading    State = "reading"
	StateValidating State = "validating"
	StateWriting    State = "writing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// ErrTooManyValidationErrors aborts a file whose blocking-issue rate
// crosses the configured threshold.
var ErrTooManyValidationErrors = errors.New("validation error rate above abort threshold")

// Stats counts what happened to one file's rows.
type Stats struct {
	RowsRead      int `json:"rows_read"`
	RowsSkipped   int `json:"rows_skipped"`
	RowsInvalid   int `json:"rows_invalid"`
	RowsWritten   int `json:"rows_written"`
	RowsInserted  int `json:"rows_inserted"`
	RowsUpdated   int `json:"rows_updated"`
	Warnings      int `json:"warnings"`
	FailedBatches int `json:"failed_batches"`
}

// Add folds another file's stats into this one.
func (s *Stats) Add(other Stats) {
	s.RowsRead += other.RowsRead
	s.RowsSkipped += other.RowsSkipped
	s.RowsInvalid += other.RowsInvalid
	s.RowsWritten += other.RowsWritten
	s.RowsInserted += other.RowsInserted
	s.RowsUpdated += other.RowsUpdated
	s.Warnings += other.Warnings
	s.FailedBatches += other.FailedBatches
}

// FileReport is the outcome of ingesting one file.
type FileReport struct {
	Path   string            `json:"path"`
	Schema reader.Schema     `json:"schema"`
	State  State             `json:"state"`
	Stats  Stats             `json:"stats"`
	Issues validator.Outcome `json:"issues"`
}

// Config tunes the engine.
type Config struct {
	// BatchSize bounds rows per transactional upsert batch.
	BatchSize int
	// AbortErrorRate is the blocking-issue fraction above which the file
	// is abandoned before any write.
	AbortErrorRate float64
}

// Engine ingests one file at a time: read, validate, write in batches.
type Engine struct {
	cfg       Config
	reader    *reader.Reader
	validator *validator.Validator
	raw       repository.RawStatsRepository
	tx        repository.TxManager
	log       zerolog.Logger
}

func New(cfg Config, r *reader.Reader, v *validator.Validator, raw repository.RawStatsRepository, tx repository.TxManager, logger zerolog.Logger) *Engine {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if cfg.AbortErrorRate <= 0 {
		cfg.AbortErrorRate = 0.10
	}
	return &Engine{
		cfg:       cfg,
		reader:    r,
		validator: v,
		raw:       raw,
		tx:        tx,
		log:       logger.With().Str("component", "ingest").Logger(),
	}
}

// IngestFile runs one file through the full lifecycle. The returned report
// carries the final state even when err is non-nil.
func (e *Engine) IngestFile(ctx context.Context, path string) (FileReport, error) {
	report := FileReport{Path: path, State: StatePending}
	log := e.log.With().Str("file", path).Logger()

	report.State = StateReading
	result, err := e.reader.ReadFile(path)
	if err != nil {
		report.State = StateFailed
		return report, fmt.Errorf("read %s: %w", path, err)
	}
	report.Schema = result.Schema
	report.Stats.RowsRead = result.RowsRead
	report.Stats.RowsSkipped = result.RowsSkipped

	report.State = StateValidating
	switch result.Schema {
	case reader.SchemaBoxScores:
		report.Issues = e.validator.ValidateBoxScores(result.BoxScores)
	case reader.SchemaTotals:
		report.Issues = e.validator.ValidateTotals(result.Totals)
	}
	report.Stats.Warnings = report.Issues.WarningCount()

	if rate := errorRate(report.Issues); rate > e.cfg.AbortErrorRate {
		report.State = StateFailed
		log.Error().
			Float64("error_rate", rate).
			Float64("threshold", e.cfg.AbortErrorRate).
			Int("errors", report.Issues.ErrorCount()).
			Msg("aborting file, too many validation errors")
		return report, fmt.Errorf("%s: %w", path, ErrTooManyValidationErrors)
	}

	invalid := invalidRows(report.Issues)
	report.Stats.RowsInvalid = len(invalid)

	report.State = StateWriting
	switch result.Schema {
	case reader.SchemaBoxScores:
		rows := dropInvalid(result.BoxScores, invalid)
		e.writeBoxScores(ctx, log, rows, &report.Stats)
	case reader.SchemaTotals:
		rows := dropInvalid(result.Totals, invalid)
		e.writeTotals(ctx, log, rows, &report.Stats)
	}

	report.State = StateCompleted
	log.Info().
		Int("written", report.Stats.RowsWritten).
		Int("inserted", report.Stats.RowsInserted).
		Int("updated", report.Stats.RowsUpdated).
		Int("invalid", report.Stats.RowsInvalid).
		Int("skipped", report.Stats.RowsSkipped).
		Msg("file ingested")
	return report, nil
}

// errorRate relates blocking issues to total rows. An empty file has no
// error rate.
func errorRate(o validator.Outcome) float64 {
	if o.TotalRows == 0 {
		return 0
	}
	return float64(o.ErrorCount()) / float64(o.TotalRows)
}

// invalidRows collects the distinct row indexes carrying blocking issues.
// Batch-level issues (row -1) invalidate no particular row.
func invalidRows(o validator.Outcome) map[int]bool {
	out := make(map[int]bool)
	for _, issue := range o.Errors {
		if issue.Row >= 0 {
			out[issue.Row] = true
		}
	}
	return out
}

func dropInvalid[T any](rows []T, invalid map[int]bool) []T {
	if len(invalid) == 0 {
		return rows
	}
	kept := make([]T, 0, len(rows)-len(invalid))
	for i, row := range rows {
		if !invalid[i] {
			kept = append(kept, row)
		}
	}
	return kept
}

// writeBoxScores upserts rows in transactional batches. A failed batch
// rolls back alone and the rest keep going.
func (e *Engine) writeBoxScores(ctx context.Context, log zerolog.Logger, rows []model.PlayerBoxScore, stats *Stats) {
	for start := 0; start < len(rows); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(rows))
		batch := rows[start:end]

		var res repository.UpsertResult
		err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
			var txErr error
			res, txErr = e.raw.UpsertBoxScores(ctx, batch)
			return txErr
		})
		if err != nil {
			stats.FailedBatches++
			log.Error().Err(err).Int("batch_start", start).Int("batch_size", len(batch)).Msg("batch upsert failed")
			continue
		}
		stats.RowsWritten += len(batch)
		stats.RowsInserted += res.Inserted
		stats.RowsUpdated += res.Updated
	}
}

func (e *Engine) writeTotals(ctx context.Context, log zerolog.Logger, rows []model.TeamGameTotal, stats *Stats) {
	for start := 0; start < len(rows); start += e.cfg.BatchSize {
		end := min(start+e.cfg.BatchSize, len(rows))
		batch := rows[start:end]

		var res repository.UpsertResult
		err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
			var txErr error
			res, txErr = e.raw.UpsertTeamTotals(ctx, batch)
			return txErr
		})
		if err != nil {
			stats.FailedBatches++
			log.Error().Err(err).Int("batch_start", start).Int("batch_size", len(batch)).Msg("batch upsert failed")
			continue
		}
		stats.RowsWritten += len(batch)
		stats.RowsInserted += res.Inserted
		stats.RowsUpdated += res.Updated
	}
}
