// Package pipeline orchestrates the full dataset run: CSV discovery and
// ingestion, metric processing per season, and monthly trend generation per
// player. Stages run strictly in order; each stage reads only what the
// previous one committed.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/config"
	"github.com/maxviazov/nba-analytics-pipeline/internal/ingest"
	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/reader"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

// Summary is the outcome of one full pipeline run.
type Summary struct {
	FilesDiscovered int          `json:"files_discovered"`
	FilesIngested   int          `json:"files_ingested"`
	FilesFailed     int          `json:"files_failed"`
	Ingest          ingest.Stats `json:"ingest"`

	SeasonsProcessed int                     `json:"seasons_processed"`
	Processed        repository.UpsertResult `json:"processed"`

	PlayersAnalyzed int                     `json:"players_analyzed"`
	Trends          repository.UpsertResult `json:"trends"`

	Duration time.Duration `json:"duration"`
}

// Orchestrator wires the stages together.
type Orchestrator struct {
	cfg       config.PipelineConfig
	engine    *ingest.Engine
	raw       repository.RawStatsRepository
	processed repository.ProcessedRepository
	trends    repository.TrendsRepository
	tx        repository.TxManager
	log       zerolog.Logger
}

func NewOrchestrator(
	cfg config.PipelineConfig,
	engine *ingest.Engine,
	raw repository.RawStatsRepository,
	processed repository.ProcessedRepository,
	trends repository.TrendsRepository,
	tx repository.TxManager,
	logger zerolog.Logger,
) *Orchestrator {
	return &Orchestrator{
		cfg:       cfg,
		engine:    engine,
		raw:       raw,
		processed: processed,
		trends:    trends,
		tx:        tx,
		log:       logger.With().Str("component", "pipeline").Logger(),
	}
}

// Run executes ingestion, processing and trend generation over the data
// directory. Per-file and per-player failures are tolerated and counted;
// stage-level failures abort the run.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	var summary Summary

	if err := o.runIngestion(ctx, &summary); err != nil {
		return summary, err
	}
	if err := o.runProcessing(ctx, &summary); err != nil {
		return summary, err
	}
	if err := o.runTrends(ctx, &summary); err != nil {
		return summary, err
	}

	summary.Duration = time.Since(started)
	o.log.Info().
		Int("files_ingested", summary.FilesIngested).
		Int("files_failed", summary.FilesFailed).
		Int("seasons_processed", summary.SeasonsProcessed).
		Int("players_analyzed", summary.PlayersAnalyzed).
		Dur("duration", summary.Duration).
		Msg("pipeline run complete")
	return summary, nil
}

func (o *Orchestrator) runIngestion(ctx context.Context, summary *Summary) error {
	files, err := reader.DiscoverCSVFiles(o.cfg.DataDir)
	if err != nil {
		return fmt.Errorf("discover csv files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no csv files under %s", o.cfg.DataDir)
	}
	summary.FilesDiscovered = len(files)

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		report, err := o.engine.IngestFile(ctx, path)
		summary.Ingest.Add(report.Stats)
		if err != nil {
			summary.FilesFailed++
			o.log.Error().Err(err).Str("file", path).Msg("file ingestion failed")
			continue
		}
		summary.FilesIngested++
	}
	return nil
}

func (o *Orchestrator) runProcessing(ctx context.Context, summary *Summary) error {
	seasons, err := o.raw.ListSeasons(ctx)
	if err != nil {
		return fmt.Errorf("list seasons: %w", err)
	}

	now := time.Now().UTC()
	for _, season := range seasons {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Every season is rebuilt from the raw store each run. The upsert
		// replaces rows wholesale, so re-ingested changes always land in the
		// processed records.
		rows, err := o.raw.ListBoxScoresBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("load season %s: %w", season, err)
		}

		processed := make([]model.PlayerProcessed, 0, len(rows))
		for _, raw := range rows {
			processed = append(processed, BuildProcessed(raw, now))
		}

		res, err := o.upsertProcessedBatched(ctx, processed)
		if err != nil {
			return fmt.Errorf("write season %s: %w", season, err)
		}
		summary.Processed.Add(res)
		summary.SeasonsProcessed++
		o.log.Info().
			Str("season", season).
			Int("rows", len(processed)).
			Int("inserted", res.Inserted).
			Int("updated", res.Updated).
			Msg("season processed")
	}
	return nil
}

func (o *Orchestrator) upsertProcessedBatched(ctx context.Context, rows []model.PlayerProcessed) (repository.UpsertResult, error) {
	var total repository.UpsertResult
	batchSize := o.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = config.DefaultBatchSize
	}
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		batch := rows[start:end]

		var res repository.UpsertResult
		err := o.tx.WithinTx(ctx, func(ctx context.Context) error {
			var txErr error
			res, txErr = o.processed.UpsertProcessed(ctx, batch)
			return txErr
		})
		if err != nil {
			return total, err
		}
		total.Add(res)
	}
	return total, nil
}

func (o *Orchestrator) runTrends(ctx context.Context, summary *Summary) error {
	seasons, err := o.raw.ListSeasons(ctx)
	if err != nil {
		return fmt.Errorf("list seasons: %w", err)
	}

	now := time.Now().UTC()
	for _, season := range seasons {
		players, err := o.processed.ListPlayerIDsBySeason(ctx, season)
		if err != nil {
			return fmt.Errorf("list players for %s: %w", season, err)
		}

		for _, personID := range players {
			if err := ctx.Err(); err != nil {
				return err
			}

			games, err := o.processed.ListByPlayerSeason(ctx, personID, season)
			if err != nil {
				o.log.Error().Err(err).Int64("person_id", personID).Str("season", season).Msg("loading player games failed")
				continue
			}
			rows := BuildMonthlyTrends(games, o.cfg.RecencyDecay, now)
			if len(rows) == 0 {
				continue
			}

			var res repository.UpsertResult
			err = o.tx.WithinTx(ctx, func(ctx context.Context) error {
				var txErr error
				res, txErr = o.trends.UpsertTrends(ctx, rows)
				return txErr
			})
			if err != nil {
				o.log.Error().Err(err).Int64("person_id", personID).Str("season", season).Msg("writing trends failed")
				continue
			}
			summary.Trends.Add(res)
			summary.PlayersAnalyzed++
		}
	}
	return nil
}
