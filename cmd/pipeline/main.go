package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/maxviazov/nba-analytics-pipeline/internal/config"
	"github.com/maxviazov/nba-analytics-pipeline/internal/ingest"
	"github.com/maxviazov/nba-analytics-pipeline/internal/logger"
	"github.com/maxviazov/nba-analytics-pipeline/internal/pipeline"
	"github.com/maxviazov/nba-analytics-pipeline/internal/reader"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository/postgres"
	"github.com/maxviazov/nba-analytics-pipeline/internal/validator"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the config file")
	dataDir := flag.String("data", "", "override the configured data directory")
	flag.Parse()

	// Local overrides from .env, if present.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config loading failed: %v", err)
	}
	if *dataDir != "" {
		cfg.Pipeline.DataDir = *dataDir
	}

	appLogger, err := logger.New(&cfg.Logger)
	if err != nil {
		log.Fatalf("❌ Logger initialization failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(ctx, cfg, &appLogger)
	if err != nil {
		log.Fatalf("❌ Postgres connection failed: %v", err)
	}
	defer repo.Close()

	pool := repo.Pool()
	rawRepo := postgres.NewRawStatsRepository(pool)
	processedRepo := postgres.NewProcessedRepository(pool)
	trendsRepo := postgres.NewTrendsRepository(pool)
	txManager := postgres.NewTxManager(pool)

	csvReader := reader.New(appLogger)
	rules := validator.New(validator.Config{
		StrictMode: cfg.Pipeline.StrictValidation,
		MaxErrors:  cfg.Pipeline.MaxValidationErrors,
	}, appLogger)

	engine := ingest.New(ingest.Config{
		BatchSize:      cfg.Pipeline.BatchSize,
		AbortErrorRate: cfg.Pipeline.AbortErrorRate,
	}, csvReader, rules, rawRepo, txManager, appLogger)

	orchestrator := pipeline.NewOrchestrator(
		cfg.Pipeline, engine, rawRepo, processedRepo, trendsRepo, txManager, appLogger,
	)

	appLogger.Info().Str("data_dir", cfg.Pipeline.DataDir).Msg("🚀 Pipeline started")
	summary, err := orchestrator.Run(ctx)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("pipeline run failed")
	}

	appLogger.Info().
		Int("files_ingested", summary.FilesIngested).
		Int("rows_written", summary.Ingest.RowsWritten).
		Int("seasons_processed", summary.SeasonsProcessed).
		Int("players_analyzed", summary.PlayersAnalyzed).
		Msg("✅ Pipeline finished")
}
