package pipeline_test

import (
	"math"
	"testing"
	"time"

	"github.com/maxviazov/nba-analytics-pipeline/internal/analytics"
	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/pipeline"
)

var processedAt = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func rawGame(gameID int64, date time.Time, points int) model.PlayerBoxScore {
	return model.PlayerBoxScore{
		GameID:     gameID,
		PersonID:   201939,
		SeasonYear: "2023-24",
		GameDate:   date,
		PersonName: "Stephen Curry",
		TeamID:     1610612744,
		Minutes:    "34:00",

		Points:         points,
		FieldGoalsMade: 10, FieldGoalsAttempted: 20,
		ThreePointersMade: 4, ThreePointersAttempted: 10,
		FreeThrowsMade: 6, FreeThrowsAttempted: 7,
		ReboundsOffensive: 1, ReboundsDefensive: 4, ReboundsTotal: 5,
		Assists: 7, Steals: 2, Blocks: 1, Turnovers: 3, FoulsPersonal: 2,
	}
}

func TestBuildProcessedEnrichesMetrics(t *testing.T) {
	raw := rawGame(1, time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC), 30)
	p := pipeline.BuildProcessed(raw, processedAt)

	if p.GameID != raw.GameID || p.PersonID != raw.PersonID {
		t.Fatalf("key not carried over: %+v", p)
	}
	if p.MinutesPlayed != 34 {
		t.Fatalf("minutes = %v, want 34", p.MinutesPlayed)
	}
	if p.DidNotPlay {
		t.Fatal("played game marked DNP")
	}

	if p.TrueShootingPct == nil {
		t.Fatal("TS%% should be defined")
	}
	wantTS := 30.0 / (2 * (20 + 0.44*7))
	if math.Abs(*p.TrueShootingPct-wantTS) > 1e-9 {
		t.Fatalf("TS%% = %v, want %v", *p.TrueShootingPct, wantTS)
	}
	if p.EfficiencyGrade != analytics.GradeEfficiency(wantTS) {
		t.Fatalf("efficiency grade = %q", p.EfficiencyGrade)
	}

	if p.EffectiveFGPct == nil || p.EfficiencyRating == nil || p.UsageRate == nil || p.DefensiveImpact == nil {
		t.Fatalf("expected all metrics defined: %+v", p)
	}
	if p.DefensiveGrade == "" {
		t.Fatal("defensive grade should be assigned with a defined score")
	}

	if p.PointsPer36 == nil || math.Abs(*p.PointsPer36-30.0/34*36) > 1e-9 {
		t.Fatalf("points per 36 = %v", p.PointsPer36)
	}
	if p.FieldGoalPct == nil || *p.FieldGoalPct != 0.5 {
		t.Fatalf("FG%% = %v, want 0.5", p.FieldGoalPct)
	}
	if !p.ProcessedAt.Equal(processedAt) {
		t.Fatalf("processed at = %v", p.ProcessedAt)
	}
}

func TestBuildProcessedDNPHasNilMetrics(t *testing.T) {
	raw := model.PlayerBoxScore{
		GameID: 2, PersonID: 7, SeasonYear: "2023-24",
		GameDate: time.Date(2023, 11, 7, 0, 0, 0, 0, time.UTC),
		Minutes:  "", Comment: "DNP - Coach's Decision",
	}
	p := pipeline.BuildProcessed(raw, processedAt)

	if !p.DidNotPlay {
		t.Fatal("should be flagged DNP")
	}
	if p.TrueShootingPct != nil || p.EfficiencyRating != nil || p.UsageRate != nil ||
		p.DefensiveImpact != nil || p.PointsPer36 != nil {
		t.Fatalf("DNP metrics must be nil: %+v", p)
	}
	if p.EfficiencyGrade != "" || p.DefensiveGrade != "" {
		t.Fatalf("DNP grades must be empty: %q %q", p.EfficiencyGrade, p.DefensiveGrade)
	}
}

func TestBuildMonthlyTrends(t *testing.T) {
	nov := time.Date(2023, 11, 1, 0, 0, 0, 0, time.UTC)
	dec := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var games []model.PlayerProcessed
	// Rising scoring across three months, several games each.
	for i, month := range []time.Time{nov, dec, jan} {
		for g := 0; g < 4; g++ {
			raw := rawGame(int64(i*10+g), month.AddDate(0, 0, g*3), 10+i*10)
			games = append(games, pipeline.BuildProcessed(raw, processedAt))
		}
	}
	// A DNP game contributes nothing.
	games = append(games, pipeline.BuildProcessed(model.PlayerBoxScore{
		GameID: 99, PersonID: 201939, SeasonYear: "2023-24",
		GameDate: jan.AddDate(0, 0, 20), PersonName: "Stephen Curry",
	}, processedAt))

	rows := pipeline.BuildMonthlyTrends(games, 0.95, processedAt)
	if len(rows) != 3 {
		t.Fatalf("months = %d, want 3", len(rows))
	}

	first := rows[0]
	if first.MonthYear != "2023-11" || first.GamesPlayed != 4 {
		t.Fatalf("first month = %+v", first)
	}
	if math.Abs(first.AvgPoints-10) > 1e-9 {
		t.Fatalf("november avg points = %v, want 10", first.AvgPoints)
	}
	if first.SeasonYear != "2023-24" || first.PersonID != 201939 {
		t.Fatalf("identity not carried: %+v", first)
	}
	// Two months of history cannot support a regression yet.
	if first.TrendDirection != analytics.TrendStable {
		t.Fatalf("first month trend = %q, want stable", first.TrendDirection)
	}

	last := rows[2]
	if last.MonthYear != "2024-01" || last.GamesPlayed != 4 {
		t.Fatalf("last month = %+v", last)
	}
	// With three rising months behind it, January reads as improving.
	if last.TrendDirection != analytics.TrendImproving {
		t.Fatalf("last month trend = %q, want improving", last.TrendDirection)
	}
	if last.ConsistencyScore <= 0 {
		t.Fatalf("consistency = %v, want > 0 with four identical games", last.ConsistencyScore)
	}
	if last.AvgTrueShootingPct == nil {
		t.Fatal("TS%% rollup should be defined")
	}
}

func TestBuildMonthlyTrendsEmpty(t *testing.T) {
	if rows := pipeline.BuildMonthlyTrends(nil, 0.95, processedAt); rows != nil {
		t.Fatalf("rows = %v, want nil", rows)
	}
}
