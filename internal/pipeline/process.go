package pipeline

import (
	"time"

	"github.com/maxviazov/nba-analytics-pipeline/internal/analytics"
	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

// BuildProcessed enriches one raw box-score row with the derived metrics.
// Metrics the calculators report as undefined stay nil; grades are only
// assigned when their underlying metric exists.
func BuildProcessed(raw model.PlayerBoxScore, now time.Time) model.PlayerProcessed {
	stats := analytics.StatsFromBoxScore(raw)

	out := model.PlayerProcessed{
		GameID:   raw.GameID,
		PersonID: raw.PersonID,

		SeasonYear:  raw.SeasonYear,
		GameDate:    raw.GameDate,
		Matchup:     raw.Matchup,
		PersonName:  raw.PersonName,
		TeamID:      raw.TeamID,
		TeamName:    raw.TeamName,
		TeamTricode: raw.TeamTricode,
		Position:    raw.Position,

		MinutesPlayed: stats.MinutesPlayed,
		DidNotPlay:    raw.IsDNP(),

		Points:                 raw.Points,
		FieldGoalsMade:         raw.FieldGoalsMade,
		FieldGoalsAttempted:    raw.FieldGoalsAttempted,
		ThreePointersMade:      raw.ThreePointersMade,
		ThreePointersAttempted: raw.ThreePointersAttempted,
		FreeThrowsMade:         raw.FreeThrowsMade,
		FreeThrowsAttempted:    raw.FreeThrowsAttempted,
		ReboundsOffensive:      raw.ReboundsOffensive,
		ReboundsDefensive:      raw.ReboundsDefensive,
		ReboundsTotal:          raw.ReboundsTotal,
		Assists:                raw.Assists,
		Steals:                 raw.Steals,
		Blocks:                 raw.Blocks,
		Turnovers:              raw.Turnovers,
		FoulsPersonal:          raw.FoulsPersonal,
		PlusMinus:              raw.PlusMinusPoints,

		ProcessedAt: now,
	}

	if ts, ok := analytics.TrueShootingPct(stats); ok {
		out.TrueShootingPct = &ts
		out.EfficiencyGrade = analytics.GradeEfficiency(ts)
	}
	if efg, ok := analytics.EffectiveFGPct(stats); ok {
		out.EffectiveFGPct = &efg
	}
	if per, ok := analytics.EfficiencyRating(stats); ok {
		out.EfficiencyRating = &per
	}
	if usage, ok := analytics.UsageRate(stats); ok {
		out.UsageRate = &usage
	}
	if def, ok := analytics.DefensiveImpactScore(stats); ok {
		out.DefensiveImpact = &def
		out.DefensiveGrade = analytics.GradeDefense(def)
	}

	out.FieldGoalPct = ratioPtr(raw.FieldGoalsMade, raw.FieldGoalsAttempted)
	out.ThreePointPct = ratioPtr(raw.ThreePointersMade, raw.ThreePointersAttempted)
	out.FreeThrowPct = ratioPtr(raw.FreeThrowsMade, raw.FreeThrowsAttempted)

	out.PointsPer36 = per36Ptr(raw.Points, stats.MinutesPlayed)
	out.ReboundsPer36 = per36Ptr(raw.ReboundsTotal, stats.MinutesPlayed)
	out.AssistsPer36 = per36Ptr(raw.Assists, stats.MinutesPlayed)
	out.StealsPer36 = per36Ptr(raw.Steals, stats.MinutesPlayed)
	out.BlocksPer36 = per36Ptr(raw.Blocks, stats.MinutesPlayed)

	return out
}

func ratioPtr(made, attempted int) *float64 {
	if attempted == 0 {
		return nil
	}
	v := float64(made) / float64(attempted)
	return &v
}

func per36Ptr(value int, minutes float64) *float64 {
	v, ok := analytics.Per36(value, minutes)
	if !ok {
		return nil
	}
	return &v
}

// statsFromProcessed reconstructs the calculator input from a processed row
// so the trend fold does not have to re-read the raw store.
func statsFromProcessed(p model.PlayerProcessed) analytics.GameStats {
	return analytics.GameStats{
		Points:                 p.Points,
		FieldGoalsMade:         p.FieldGoalsMade,
		FieldGoalsAttempted:    p.FieldGoalsAttempted,
		ThreePointersMade:      p.ThreePointersMade,
		ThreePointersAttempted: p.ThreePointersAttempted,
		FreeThrowsMade:         p.FreeThrowsMade,
		FreeThrowsAttempted:    p.FreeThrowsAttempted,
		ReboundsOffensive:      p.ReboundsOffensive,
		ReboundsDefensive:      p.ReboundsDefensive,
		ReboundsTotal:          p.ReboundsTotal,
		Assists:                p.Assists,
		Steals:                 p.Steals,
		Blocks:                 p.Blocks,
		Turnovers:              p.Turnovers,
		FoulsPersonal:          p.FoulsPersonal,
		MinutesPlayed:          p.MinutesPlayed,
	}
}

// BuildMonthlyTrends folds one player's processed season games into monthly
// rollup rows. DNP games contribute nothing. Each row's trend direction is
// the points regression over the months seen so far; consistency comes from
// that month's TS% spread.
func BuildMonthlyTrends(games []model.PlayerProcessed, recencyDecay float64, now time.Time) []model.PlayerMonthlyTrend {
	if len(games) == 0 {
		return nil
	}

	season := games[0].SeasonYear
	name := games[0].PersonName
	personID := games[0].PersonID

	trend := analytics.NewTrendAnalyzer(recencyDecay)
	monthEfficiency := make(map[string]*analytics.EfficiencyAnalyzer)
	for _, g := range games {
		if g.DidNotPlay {
			continue
		}
		stats := statsFromProcessed(g)
		trend.AddGame(g.GameDate, stats)

		key := model.MonthKey(g.GameDate)
		eff, ok := monthEfficiency[key]
		if !ok {
			eff = analytics.NewEfficiencyAnalyzer()
			monthEfficiency[key] = eff
		}
		eff.AddGame(g.GameDate, stats)
	}

	months := trend.Months()
	out := make([]model.PlayerMonthlyTrend, 0, len(months))

	// Rebuild the fold month by month so each row's direction reflects
	// only what was known through that month.
	running := analytics.NewTrendAnalyzer(recencyDecay)
	for _, m := range months {
		for _, g := range games {
			if g.DidNotPlay || model.MonthKey(g.GameDate) != m.MonthKey() {
				continue
			}
			running.AddGame(g.GameDate, statsFromProcessed(g))
		}

		direction := analytics.TrendStable
		if dir, ok := running.TrendDirection(analytics.MetricPoints, analytics.DefaultMinTrendMonths); ok {
			direction = dir
		}

		var consistency float64
		if eff, ok := monthEfficiency[m.MonthKey()]; ok {
			if c, defined := eff.ConsistencyScore(); defined {
				consistency = c
			}
		}

		out = append(out, model.PlayerMonthlyTrend{
			PersonID:   personID,
			SeasonYear: season,
			MonthYear:  m.MonthKey(),
			PersonName: name,

			GamesPlayed: m.GamesPlayed,

			AvgMinutes:   m.AvgMinutes,
			AvgPoints:    m.AvgPoints,
			AvgRebounds:  m.AvgRebounds,
			AvgAssists:   m.AvgAssists,
			AvgSteals:    m.AvgSteals,
			AvgBlocks:    m.AvgBlocks,
			AvgTurnovers: m.AvgTurnovers,

			AvgFieldGoalPct:  m.AvgFieldGoalPct,
			AvgThreePointPct: m.AvgThreePointPct,
			AvgFreeThrowPct:  m.AvgFreeThrowPct,

			AvgTrueShootingPct:  m.AvgTrueShootingPct,
			AvgEfficiencyRating: m.AvgEfficiencyRating,
			AvgUsageRate:        m.AvgUsageRate,
			AvgDefensiveImpact:  m.AvgDefensiveImpact,

			TrendDirection:   direction,
			ConsistencyScore: consistency,

			CalculatedAt: now,
		})
	}
	return out
}
