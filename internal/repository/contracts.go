package repository

import (
	"context"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// UpsertResult splits an upsert batch into fresh inserts and replaced rows.
type UpsertResult struct {
	Inserted int
	Updated  int
}

// Total returns the number of rows the batch touched.
func (r UpsertResult) Total() int { return r.Inserted + r.Updated }

// Add folds another batch's result into this one.
func (r *UpsertResult) Add(other UpsertResult) {
	r.Inserted += other.Inserted
	r.Updated += other.Updated
}

// RawStatsRepository persists raw box-score and team-totals rows exactly as
// ingested. Re-ingesting a row replaces it wholesale; the natural composite
// keys make ingestion idempotent.
type RawStatsRepository interface {
	UpsertBoxScores(ctx context.Context, rows []model.PlayerBoxScore) (UpsertResult, error)
	UpsertTeamTotals(ctx context.Context, rows []model.TeamGameTotal) (UpsertResult, error)
	// ListSeasons returns the distinct seasons present in the raw store.
	ListSeasons(ctx context.Context) ([]string, error)
	// ListBoxScoresBySeason streams one season's raw rows ordered by game
	// date then player, the order the processing stage folds them in.
	ListBoxScoresBySeason(ctx context.Context, season string) ([]model.PlayerBoxScore, error)
	CountBoxScores(ctx context.Context, season string) (int64, error)
}

// ProcessedRepository persists metric-enriched rows and serves the read
// queries built on them.
type ProcessedRepository interface {
	UpsertProcessed(ctx context.Context, rows []model.PlayerProcessed) (UpsertResult, error)
	// ListPlayerIDsBySeason returns the distinct players with processed rows
	// in a season.
	ListPlayerIDsBySeason(ctx context.Context, season string) ([]int64, error)
	// ListByPlayerSeason returns one player's processed games ordered by
	// game date ascending.
	ListByPlayerSeason(ctx context.Context, personID int64, season string) ([]model.PlayerProcessed, error)
	ListByPlayer(ctx context.Context, personID int64, p Page) (PageResult[model.PlayerProcessed], error)
	// TopByMetric ranks players by a whitelisted per-game metric column.
	TopByMetric(ctx context.Context, metric, season string, limit int) ([]model.PlayerProcessed, error)
	// SearchPlayers finds distinct players whose name contains the fragment,
	// case-insensitively.
	SearchPlayers(ctx context.Context, name string) ([]model.PlayerRef, error)
}

// TrendsRepository persists the monthly rollups.
type TrendsRepository interface {
	UpsertTrends(ctx context.Context, rows []model.PlayerMonthlyTrend) (UpsertResult, error)
	ListByPlayer(ctx context.Context, personID int64) ([]model.PlayerMonthlyTrend, error)
	// ListByPlayerRange returns rollups inside an inclusive YYYY-MM range,
	// oldest first.
	ListByPlayerRange(ctx context.Context, personID int64, fromMonth, toMonth string) ([]model.PlayerMonthlyTrend, error)
	// GetMonth fetches one rollup row, ErrNotFound when absent.
	GetMonth(ctx context.Context, personID int64, season, monthYear string) (model.PlayerMonthlyTrend, error)
}
