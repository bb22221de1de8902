package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

type trendsRepository struct{ pool *pgxpool.Pool }

func NewTrendsRepository(pool *pgxpool.Pool) repository.TrendsRepository {
	return &trendsRepository{pool: pool}
}

const upsertTrendSQL = `INSERT INTO player_monthly_trends (
	person_id, season_year, month_year, person_name, games_played,
	avg_minutes, avg_points, avg_rebounds, avg_assists, avg_steals, avg_blocks, avg_turnovers,
	avg_field_goal_pct, avg_three_point_pct, avg_free_throw_pct,
	avg_true_shooting_pct, avg_player_efficiency_rating, avg_usage_rate, avg_defensive_impact_score,
	trend_direction, consistency_score, calculated_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22
)
ON CONFLICT (person_id, season_year, month_year)
DO UPDATE SET
	person_name = EXCLUDED.person_name,
	games_played = EXCLUDED.games_played,
	avg_minutes = EXCLUDED.avg_minutes,
	avg_points = EXCLUDED.avg_points,
	avg_rebounds = EXCLUDED.avg_rebounds,
	avg_assists = EXCLUDED.avg_assists,
	avg_steals = EXCLUDED.avg_steals,
	avg_blocks = EXCLUDED.avg_blocks,
	avg_turnovers = EXCLUDED.avg_turnovers,
	avg_field_goal_pct = EXCLUDED.avg_field_goal_pct,
	avg_three_point_pct = EXCLUDED.avg_three_point_pct,
	avg_free_throw_pct = EXCLUDED.avg_free_throw_pct,
	avg_true_shooting_pct = EXCLUDED.avg_true_shooting_pct,
	avg_player_efficiency_rating = EXCLUDED.avg_player_efficiency_rating,
	avg_usage_rate = EXCLUDED.avg_usage_rate,
	avg_defensive_impact_score = EXCLUDED.avg_defensive_impact_score,
	trend_direction = EXCLUDED.trend_direction,
	consistency_score = EXCLUDED.consistency_score,
	calculated_at = EXCLUDED.calculated_at
RETURNING (xmax = 0) AS inserted`

func (r *trendsRepository) UpsertTrends(ctx context.Context, rows []model.PlayerMonthlyTrend) (repository.UpsertResult, error) {
	var result repository.UpsertResult
	if err := ensurePool(r.pool); err != nil {
		return result, err
	}
	if len(rows) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertTrendSQL,
			row.PersonID, row.SeasonYear, row.MonthYear, row.PersonName, row.GamesPlayed,
			row.AvgMinutes, row.AvgPoints, row.AvgRebounds, row.AvgAssists,
			row.AvgSteals, row.AvgBlocks, row.AvgTurnovers,
			row.AvgFieldGoalPct, row.AvgThreePointPct, row.AvgFreeThrowPct,
			row.AvgTrueShootingPct, row.AvgEfficiencyRating, row.AvgUsageRate, row.AvgDefensiveImpact,
			row.TrendDirection, row.ConsistencyScore, row.CalculatedAt,
		)
	}

	exec := getQ(ctx, r.pool)
	results := exec.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		var inserted bool
		if err := results.QueryRow().Scan(&inserted); err != nil {
			return repository.UpsertResult{}, repository.MapPgError(err)
		}
		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
	}
	return result, nil
}

const selectTrendColumns = `person_id, season_year, month_year, person_name, games_played,
	avg_minutes, avg_points, avg_rebounds, avg_assists, avg_steals, avg_blocks, avg_turnovers,
	avg_field_goal_pct, avg_three_point_pct, avg_free_throw_pct,
	avg_true_shooting_pct, avg_player_efficiency_rating, avg_usage_rate, avg_defensive_impact_score,
	trend_direction, consistency_score, calculated_at`

func scanTrend(row pgx.Row) (model.PlayerMonthlyTrend, error) {
	var it model.PlayerMonthlyTrend
	err := row.Scan(
		&it.PersonID, &it.SeasonYear, &it.MonthYear, &it.PersonName, &it.GamesPlayed,
		&it.AvgMinutes, &it.AvgPoints, &it.AvgRebounds, &it.AvgAssists,
		&it.AvgSteals, &it.AvgBlocks, &it.AvgTurnovers,
		&it.AvgFieldGoalPct, &it.AvgThreePointPct, &it.AvgFreeThrowPct,
		&it.AvgTrueShootingPct, &it.AvgEfficiencyRating, &it.AvgUsageRate, &it.AvgDefensiveImpact,
		&it.TrendDirection, &it.ConsistencyScore, &it.CalculatedAt,
	)
	return it, err
}

func (r *trendsRepository) ListByPlayer(ctx context.Context, personID int64) ([]model.PlayerMonthlyTrend, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+selectTrendColumns+`
		 FROM player_monthly_trends
		 WHERE person_id = $1
		 ORDER BY month_year`, personID)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.PlayerMonthlyTrend, 0, 12)
	for rows.Next() {
		it, err := scanTrend(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *trendsRepository) ListByPlayerRange(ctx context.Context, personID int64, fromMonth, toMonth string) ([]model.PlayerMonthlyTrend, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+selectTrendColumns+`
		 FROM player_monthly_trends
		 WHERE person_id = $1 AND month_year BETWEEN $2 AND $3
		 ORDER BY month_year`, personID, fromMonth, toMonth)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.PlayerMonthlyTrend, 0, 8)
	for rows.Next() {
		it, err := scanTrend(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *trendsRepository) GetMonth(ctx context.Context, personID int64, season, monthYear string) (model.PlayerMonthlyTrend, error) {
	if err := ensurePool(r.pool); err != nil {
		return model.PlayerMonthlyTrend{}, err
	}
	exec := getQ(ctx, r.pool)
	it, err := scanTrend(exec.QueryRow(ctx,
		`SELECT `+selectTrendColumns+`
		 FROM player_monthly_trends
		 WHERE person_id = $1 AND season_year = $2 AND month_year = $3`,
		personID, season, monthYear))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PlayerMonthlyTrend{}, repository.ErrNotFound
		}
		return model.PlayerMonthlyTrend{}, repository.MapPgError(err)
	}
	return it, nil
}

var _ repository.TrendsRepository = (*trendsRepository)(nil)
