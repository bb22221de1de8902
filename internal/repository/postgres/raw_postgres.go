package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

type rawStatsRepository struct{ pool *pgxpool.Pool }

func NewRawStatsRepository(pool *pgxpool.Pool) repository.RawStatsRepository {
	return &rawStatsRepository{pool: pool}
}

const upsertBoxScoreSQL = `INSERT INTO players_raw (
	game_id, person_id, season_year, game_date, matchup,
	team_id, team_city, team_name, team_tricode, team_slug,
	person_name, position, comment, jersey_num, minutes,
	field_goals_made, field_goals_attempted, field_goals_percentage,
	three_pointers_made, three_pointers_attempted, three_pointers_percentage,
	free_throws_made, free_throws_attempted, free_throws_percentage,
	rebounds_offensive, rebounds_defensive, rebounds_total,
	assists, steals, blocks, turnovers, fouls_personal, points, plus_minus_points
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
	$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31,$32,$33,$34
)
ON CONFLICT (game_id, person_id)
DO UPDATE SET
	season_year = EXCLUDED.season_year,
	game_date = EXCLUDED.game_date,
	matchup = EXCLUDED.matchup,
	team_id = EXCLUDED.team_id,
	team_city = EXCLUDED.team_city,
	team_name = EXCLUDED.team_name,
	team_tricode = EXCLUDED.team_tricode,
	team_slug = EXCLUDED.team_slug,
	person_name = EXCLUDED.person_name,
	position = EXCLUDED.position,
	comment = EXCLUDED.comment,
	jersey_num = EXCLUDED.jersey_num,
	minutes = EXCLUDED.minutes,
	field_goals_made = EXCLUDED.field_goals_made,
	field_goals_attempted = EXCLUDED.field_goals_attempted,
	field_goals_percentage = EXCLUDED.field_goals_percentage,
	three_pointers_made = EXCLUDED.three_pointers_made,
	three_pointers_attempted = EXCLUDED.three_pointers_attempted,
	three_pointers_percentage = EXCLUDED.three_pointers_percentage,
	free_throws_made = EXCLUDED.free_throws_made,
	free_throws_attempted = EXCLUDED.free_throws_attempted,
	free_throws_percentage = EXCLUDED.free_throws_percentage,
	rebounds_offensive = EXCLUDED.rebounds_offensive,
	rebounds_defensive = EXCLUDED.rebounds_defensive,
	rebounds_total = EXCLUDED.rebounds_total,
	assists = EXCLUDED.assists,
	steals = EXCLUDED.steals,
	blocks = EXCLUDED.blocks,
	turnovers = EXCLUDED.turnovers,
	fouls_personal = EXCLUDED.fouls_personal,
	points = EXCLUDED.points,
	plus_minus_points = EXCLUDED.plus_minus_points,
	updated_at = NOW()
RETURNING (xmax = 0) AS inserted`

// UpsertBoxScores writes the batch through a single pgx batch round trip.
// xmax = 0 distinguishes fresh inserts from replaced rows.
func (r *rawStatsRepository) UpsertBoxScores(ctx context.Context, rows []model.PlayerBoxScore) (repository.UpsertResult, error) {
	var result repository.UpsertResult
	if err := ensurePool(r.pool); err != nil {
		return result, err
	}
	if len(rows) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertBoxScoreSQL,
			row.GameID, row.PersonID, row.SeasonYear, row.GameDate, row.Matchup,
			row.TeamID, row.TeamCity, row.TeamName, row.TeamTricode, row.TeamSlug,
			row.PersonName, row.Position, row.Comment, row.JerseyNum, row.Minutes,
			row.FieldGoalsMade, row.FieldGoalsAttempted, row.FieldGoalsPercentage,
			row.ThreePointersMade, row.ThreePointersAttempted, row.ThreePointersPercentage,
			row.FreeThrowsMade, row.FreeThrowsAttempted, row.FreeThrowsPercentage,
			row.ReboundsOffensive, row.ReboundsDefensive, row.ReboundsTotal,
			row.Assists, row.Steals, row.Blocks, row.Turnovers, row.FoulsPersonal,
			row.Points, row.PlusMinusPoints,
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

const upsertTeamTotalSQL = `INSERT INTO teams_raw (
	game_id, team_id, season_year, team_abbreviation, team_name, game_date, matchup, wl,
	min, fgm, fga, fg_pct, fg3m, fg3a, fg3_pct, ftm, fta, ft_pct,
	oreb, dreb, reb, ast, tov, stl, blk, blka, pf, pfd, pts, plus_minus
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,
	$21,$22,$23,$24,$25,$26,$27,$28,$29,$30
)
ON CONFLICT (game_id, team_id)
DO UPDATE SET
	season_year = EXCLUDED.season_year,
	team_abbreviation = EXCLUDED.team_abbreviation,
	team_name = EXCLUDED.team_name,
	game_date = EXCLUDED.game_date,
	matchup = EXCLUDED.matchup,
	wl = EXCLUDED.wl,
	min = EXCLUDED.min,
	fgm = EXCLUDED.fgm,
	fga = EXCLUDED.fga,
	fg_pct = EXCLUDED.fg_pct,
	fg3m = EXCLUDED.fg3m,
	fg3a = EXCLUDED.fg3a,
	fg3_pct = EXCLUDED.fg3_pct,
	ftm = EXCLUDED.ftm,
	fta = EXCLUDED.fta,
	ft_pct = EXCLUDED.ft_pct,
	oreb = EXCLUDED.oreb,
	dreb = EXCLUDED.dreb,
	reb = EXCLUDED.reb,
	ast = EXCLUDED.ast,
	tov = EXCLUDED.tov,
	stl = EXCLUDED.stl,
	blk = EXCLUDED.blk,
	blka = EXCLUDED.blka,
	pf = EXCLUDED.pf,
	pfd = EXCLUDED.pfd,
	pts = EXCLUDED.pts,
	plus_minus = EXCLUDED.plus_minus,
	updated_at = NOW()
RETURNING (xmax = 0) AS inserted`

func (r *rawStatsRepository) UpsertTeamTotals(ctx context.Context, rows []model.TeamGameTotal) (repository.UpsertResult, error) {
	var result repository.UpsertResult
	if err := ensurePool(r.pool); err != nil {
		return result, err
	}
	if len(rows) == 0 {
		return result, nil
	}

	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(upsertTeamTotalSQL,
			row.GameID, row.TeamID, row.SeasonYear, row.TeamAbbreviation, row.TeamName,
			row.GameDate, row.Matchup, row.WinLoss,
			row.MinutesPlayed, row.FieldGoalsMade, row.FieldGoalsAttempted, row.FieldGoalPct,
			row.ThreePointersMade, row.ThreePointersAttempted, row.ThreePointPct,
			row.FreeThrowsMade, row.FreeThrowsAttempted, row.FreeThrowPct,
			row.ReboundsOffensive, row.ReboundsDefensive, row.ReboundsTotal,
			row.Assists, row.Turnovers, row.Steals, row.Blocks, row.BlocksAgainst,
			row.FoulsPersonal, row.FoulsDrawn, row.Points, row.PlusMinus,
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

func (r *rawStatsRepository) ListSeasons(ctx context.Context) ([]string, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT DISTINCT season_year FROM players_raw ORDER BY season_year`)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()
	var seasons []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, repository.MapPgError(err)
		}
		seasons = append(seasons, s)
	}
	return seasons, rows.Err()
}

const selectBoxScoreColumns = `game_id, person_id, season_year, game_date, matchup,
	team_id, team_city, team_name, team_tricode, team_slug,
	person_name, position, comment, jersey_num, minutes,
	field_goals_made, field_goals_attempted, field_goals_percentage,
	three_pointers_made, three_pointers_attempted, three_pointers_percentage,
	free_throws_made, free_throws_attempted, free_throws_percentage,
	rebounds_offensive, rebounds_defensive, rebounds_total,
	assists, steals, blocks, turnovers, fouls_personal, points, plus_minus_points`

func (r *rawStatsRepository) ListBoxScoresBySeason(ctx context.Context, season string) ([]model.PlayerBoxScore, error) {
	if err := ensurePool(r.pool); err != nil {
		return nil, err
	}
	exec := getQ(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+selectBoxScoreColumns+`
		 FROM players_raw WHERE season_year = $1
		 ORDER BY game_date, game_id, person_id`, season)
	if err != nil {
		return nil, repository.MapPgError(err)
	}
	defer rows.Close()

	res := make([]model.PlayerBoxScore, 0, 256)
	for rows.Next() {
		var it model.PlayerBoxScore
		if err := rows.Scan(
			&it.GameID, &it.PersonID, &it.SeasonYear, &it.GameDate, &it.Matchup,
			&it.TeamID, &it.TeamCity, &it.TeamName, &it.TeamTricode, &it.TeamSlug,
			&it.PersonName, &it.Position, &it.Comment, &it.JerseyNum, &it.Minutes,
			&it.FieldGoalsMade, &it.FieldGoalsAttempted, &it.FieldGoalsPercentage,
			&it.ThreePointersMade, &it.ThreePointersAttempted, &it.ThreePointersPercentage,
			&it.FreeThrowsMade, &it.FreeThrowsAttempted, &it.FreeThrowsPercentage,
			&it.ReboundsOffensive, &it.ReboundsDefensive, &it.ReboundsTotal,
			&it.Assists, &it.Steals, &it.Blocks, &it.Turnovers, &it.FoulsPersonal,
			&it.Points, &it.PlusMinusPoints,
		); err != nil {
			return nil, repository.MapPgError(err)
		}
		res = append(res, it)
	}
	return res, rows.Err()
}

func (r *rawStatsRepository) CountBoxScores(ctx context.Context, season string) (int64, error) {
	if err := ensurePool(r.pool); err != nil {
		return 0, err
	}
	exec := getQ(ctx, r.pool)
	var count int64
	err := exec.QueryRow(ctx,
		`SELECT COUNT(*) FROM players_raw WHERE season_year = $1`, season).Scan(&count)
	if err != nil {
		return 0, repository.MapPgError(err)
	}
	return count, nil
}

var _ repository.RawStatsRepository = (*rawStatsRepository)(nil)
