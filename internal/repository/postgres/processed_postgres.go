package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

type processedRepository struct{ pool *pgxpool.Pool }

func NewProcessedRepository(pool *pgxpool.Pool) repository.ProcessedRepository {
	return &processedRepository{pool: pool}
}

// metricColumns whitelists the rankable columns so TopByMetric can never
// interpolate caller input into SQL.
var metricColumns = map[string]string{
	"points":                   "points",
	"true_shooting_pct":        "true_shooting_pct",
	"effective_fg_pct":         "effective_fg_pct",
	"player_efficiency_rating": "player_efficiency_rating",
	"usage_rate":               "usage_rate",
	"defensive_impact_score":   "defensive_impact_score",
	"points_per_36":            "points_per_36",
	"rebounds_per_36":          "rebounds_per_36",
	"assists_per_36":           "assists_per_36",
}

// RankableMetrics lists the metric names TopByMetric accepts.
func RankableMetrics() []string {
	out := make([]string, 0, len(metricColumns))
	for name := range metricColumns {
		out = append(out, name)
	}
	return out
}

const upsertProcessedSQL = `INSERT INTO players_processed (
	game_id, person_id, season_year, game_date, matchup, person_name,
	team_id, team_name, team_tricode, position,
	minutes_played, is_dnp,
	points, field_goals_made, field_goals_attempted,
	three_pointers_made, three_pointers_attempted,
	free_throws_made, free_throws_attempted,
	rebounds_offensive, rebounds_defensive, rebounds_total,
	assists, steals, blocks, turnovers, fouls_personal, plus_minus,
	true_shooting_pct, effective_fg_pct, field_goal_pct, three_point_pct, free_throw_pct,
	player_efficiency_rating, usage_rate, defensive_impact_score,
	points_per_36, rebounds_per_36, assists_per_36, steals_per_36, blocks_per_36,
	efficiency_grade, defensive_grade, processed_at
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
	$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34,$35,$36,$37,$38,
	$39,$40,$41,$42,$43,$44
)
ON CONFLICT (game_id, person_id)
DO UPDATE SET
	season_year = EXCLUDED.season_year,
	game_date = EXCLUDED.game_date,
	matchup = EXCLUDED.matchup,
	person_name = EXCLUDED.person_name,
	team_id = EXCLUDED.team_id,
	team_name = EXCLUDED.team_name,
	team_tricode = EXCLUDED.team_tricode,
	position = EXCLUDED.position,
	minutes_played = EXCLUDED.minutes_played,
	is_dnp = EXCLUDED.is_dnp,
	points = EXCLUDED.points,
	field_goals_made = EXCLUDED.field_goals_made,
	field_goals_attempted = EXCLUDED.field_goals_attempted,
	three_pointers_made = EXCLUDED.three_pointers_made,
	three_pointers_attempted = EXCLUDED.three_pointers_attempted,
	free_throws_made = EXCLUDED.free_throws_made,
	free_throws_attempted = EXCLUDED.free_throws_attempted,
	rebounds_offensive = EXCLUDED.rebounds_offensive,
	rebounds_defensive = EXCLUDED.rebounds_defensive,
	rebounds_total = EXCLUDED.rebounds_total,
	assists = EXCLUDED.assists,
	steals = EXCLUDED.steals,
	blocks = EXCLUDED.blocks,
	turnovers = EXCLUDED.turnovers,
	fouls_personal = EXCLUDED.fouls_personal,
	plus_minus = EXCLUDED.plus_minus,
	true_shooting_pct = EXCLUDED.true_shooting_pct,
	effective_fg_pct = EXCLUDED.effective_fg_pct,
	field_goal_pct = EXCLUDED.field_goal_pct,
	three_point_pct = EXCLUDED.three_point_pct,
	free_throw_pct = EXCLUDED.free_throw_pct,
	player_efficiency_rating = EXCLUDED.player_efficiency_rating,
	usage_rate = EXCLUDED.usage_rate,
	defensive_impact_score = EXCLUDED.defensive_impact_score,
	points_per_36 = EXCLUDED.points_per_36,
	rebounds_per_36 = EXCLUDED.rebounds_per_36,
	assists_per_36 = EXCLUDED.assists_per_36,
	steals_per_36 = EXCLUDED.steals_per_36,
	blocks_per_36 = EXCLUDED.blocks_per_36,
	efficiency_grade = EXCLUDED.efficiency_grade,
	defensive_grade = EXCLUDED.defensive_grade,
	processed_at = EXCLUDED.processed_at
RETURNING (xmax = 0) AS inserted`

func (r *processedRepository) UpsertProcessed(ctx context.Context, rows []model.PlayerProcessed) (repository.UpsertResult, error) {
	var result repository.UpsertResult
	if err := ensurePool(r.pool); err != nil {
		return result, err
	}
	if len(rows) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertProcessedSQL,
			row.GameID, row.PersonID, row.SeasonYear, row.GameDate, row.Matchup, row.PersonName,
			row.TeamID, row.TeamName, row.TeamTricode, row.Position,
			row.MinutesPlayed, row.DidNotPlay,
			row.Points, row.FieldGoalsMade, row.FieldGoalsAttempted,
			row.ThreePointersMade, row.ThreePointersAttempted,
			row.FreeThrowsMade, row.FreeThrowsAttempted,
			row.ReboundsOffensive, row.ReboundsDefensive, row.ReboundsTotal,
			row.Assists, row.Steals, row.Blocks, row.Turnovers, row.FoulsPersonal, row.PlusMinus,
			row.TrueShootingPct, row.EffectiveFGPct, row.FieldGoalPct, row.ThreePointPct, row.FreeThrowPct,
			row.EfficiencyRating, row.UsageRate, row.DefensiveImpact,
			row.PointsPer36, row.ReboundsPer36, row.AssistsPer36, row.StealsPer36, row.BlocksPer36,
			row.EfficiencyGrade, row.DefensiveGrade, row.ProcessedAt,
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

func (r *processedRepository) ListPlayerIDsBySeason(ctx context.Context, season string) ([]int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT DISTINCT person_id FROM players_processed WHERE season_year = $1 ORDER BY person_id`, season)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, repository.MapPgError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

const selectProcessedColumns = `game_id, person_id, season_year, game_date, matchup, person_name,
	team_id, team_name, team_tricode, position,
	minutes_played, is_dnp,
	points, field_goals_made, field_goals_attempted,
	three_pointers_made, three_pointers_attempted,
	free_throws_made, free_throws_attempted,
	rebounds_offensive, rebounds_defensive, rebounds_total,
	assists, steals, blocks, turnovers, fouls_personal, plus_minus,
	true_shooting_pct, effective_fg_pct, field_goal_pct, three_point_pct, free_throw_pct,
	player_efficiency_rating, usage_rate, defensive_impact_score,
	points_per_36, rebounds_per_36, assists_per_36, steals_per_36, blocks_per_36,
	efficiency_grade, defensive_grade, processed_at`

func scanProcessed(row pgx.Row) (model.PlayerProcessed, error) {
	var it model.PlayerProcessed
	err := row.Scan(
		&it.GameID, &it.PersonID, &it.SeasonYear, &it.GameDate, &it.Matchup, &it.PersonName,
		&it.TeamID, &it.TeamName, &it.TeamTricode, &it.Position,
		&it.MinutesPlayed, &it.DidNotPlay,
		&it.Points, &it.FieldGoalsMade, &it.FieldGoalsAttempted,
		&it.ThreePointersMade, &it.ThreePointersAttempted,
		&it.FreeThrowsMade, &it.FreeThrowsAttempted,
		&it.ReboundsOffensive, &it.ReboundsDefensive, &it.ReboundsTotal,
		&it.Assists, &it.Steals, &it.Blocks, &it.Turnovers, &it.FoulsPersonal, &it.PlusMinus,
		&it.TrueShootingPct, &it.EffectiveFGPct, &it.FieldGoalPct, &it.ThreePointPct, &it.FreeThrowPct,
		&it.EfficiencyRating, &it.UsageRate, &it.DefensiveImpact,
		&it.PointsPer36, &it.ReboundsPer36, &it.AssistsPer36, &it.StealsPer36, &it.BlocksPer36,
		&it.EfficiencyGrade, &it.DefensiveGrade, &it.ProcessedAt,
	)
	return it, err
}

func (r *processedRepository) collectProcessed(rows pgx.Rows) ([]model.PlayerProcessed, error) {
	defer rows.Close()
	res := make([]model.PlayerProcessed, 0, 32)
	for rows.Next() {
		it, err := scanProcessed(rows)
		if err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *processedRepository) ListByPlayerSeason(ctx context.Context, personID int64, season string) ([]model.PlayerProcessed, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+selectProcessedColumns+`
		 FROM players_processed
		 WHERE person_id = $1 AND season_year = $2
		 ORDER BY game_date, game_id`, personID, season)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return r.collectProcessed(rows)
}

func (r *processedRepository) ListByPlayer(ctx context.Context, personID int64, p repository.Page) (repository.PageResult[model.PlayerProcessed], error) {
	var out repository.PageResult[model.PlayerProcessed]
	if err := ensurePool(r.pool); err != nil {
		return out, err
	}
	limit, offset := sanitizeLimitOffset(p.Limit, p.Offset)
	exec := getQ(ctx, r.pool)

	if err := exec.QueryRow(ctx,
		`SELECT COUNT(*) FROM players_processed WHERE person_id = $1`, personID).Scan(&out.Total); err != nil {
		return out, repository.MapPgError(err)
	}

	rows, err := exec.Query(ctx,
		`SELECT `+selectProcessedColumns+`
		 FROM players_processed
		 WHERE person_id = $1
		 ORDER BY game_date DESC, game_id
		 LIMIT $2 OFFSET $3`, personID, limit, offset)
	if err != nil {
		return out, repository.MapPgError(err)
	}
	items, err := r.collectProcessed(rows)
	if err != nil {
		return out, err
	}
	out.Items = items
	return out, nil
}

// TopByMetric ranks processed games by one whitelisted metric column.
// DNP rows and rows where the metric is NULL never rank.
func (r *processedRepository) TopByMetric(ctx context.Context, metric, season string, limit int) ([]model.PlayerProcessed, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	column, ok := metricColumns[metric]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q: %w", metric, repository.ErrNotFound)
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+selectProcessedColumns+`
		 FROM players_processed
		 WHERE season_year = $1 AND NOT is_dnp AND `+column+` IS NOT NULL
		 ORDER BY `+column+` DESC, game_date DESC
		 LIMIT $2`, season, limit)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	return r.collectProcessed(rows)
}

func (r *processedRepository) SearchPlayers(ctx context.Context, name string) ([]model.PlayerRef, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT DISTINCT person_id, person_name
		 FROM players_processed
		 WHERE person_name ILIKE '%' || $1 || '%'
		 ORDER BY person_name`, name)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	var refs []model.PlayerRef
	for rows.Next() {
		var ref model.PlayerRef
		if err := rows.Scan(&ref.PersonID, &ref.PersonName); err != nil {
			return nil, repository.MapPgError(err)
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

var _ repository.ProcessedRepository = (*processedRepository)(nil)
