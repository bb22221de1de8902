package analytics_test

import (
	"errors"
	"testing"
	"time"

	"github.com/maxviazov/nba-analytics-pipeline/internal/analytics"
)

func monthDay(month time.Month, d int) time.Time {
	return time.Date(2023, month, d, 0, 0, 0, 0, time.UTC)
}

func scoringGame(points int) analytics.GameStats {
	return analytics.GameStats{
		Points:              points,
		FieldGoalsAttempted: 15,
		MinutesPlayed:       30,
		ReboundsTotal:       5,
		Assists:             3,
	}
}

func TestTrendAnalyzerRunningAverageEqualsMean(t *testing.T) {
	a := analytics.NewTrendAnalyzer(0.9)
	points := []int{10, 20, 30, 16}
	for i, p := range points {
		a.AddGame(monthDay(time.November, i+1), scoringGame(p))
	}

	months := a.Months()
	if len(months) != 1 {
		t.Fatalf("months = %d, want 1", len(months))
	}
	m := months[0]
	if m.GamesPlayed != 4 {
		t.Fatalf("games = %d, want 4", m.GamesPlayed)
	}
	if !almostEqual(m.AvgPoints, 19) {
		t.Fatalf("avg points = %v, want 19", m.AvgPoints)
	}
}

func TestTrendAnalyzerSeedsUndefinedMetrics(t *testing.T) {
	a := analytics.NewTrendAnalyzer(0.9)
	// First game is a DNP-like line: no attempts, no minutes, so TS% and
	// the minute-based metrics stay nil.
	a.AddGame(monthDay(time.November, 1), analytics.GameStats{})

	months := a.Months()
	if months[0].AvgTrueShootingPct != nil {
		t.Fatal("TS%% should stay nil until a game defines it")
	}

	// The first defined game seeds the average instead of blending with a
	// placeholder zero.
	a.AddGame(monthDay(time.November, 3), scoringGame(30)) // TS% = 1.0
	months = a.Months()
	if months[0].AvgTrueShootingPct == nil {
		t.Fatal("TS%% should be seeded by the first defined game")
	}
	if !almostEqual(*months[0].AvgTrueShootingPct, 1.0) {
		t.Fatalf("seeded TS%% = %v, want 1.0", *months[0].AvgTrueShootingPct)
	}
}

func TestTrendDirectionRegression(t *testing.T) {
	t.Run("improving points", func(t *testing.T) {
		a := analytics.NewTrendAnalyzer(0.9)
		for i, pts := range []int{10, 12, 14, 16, 18} {
			a.AddGame(monthDay(time.Month(i+1), 10), scoringGame(pts))
		}
		dir, ok := a.TrendDirection(analytics.MetricPoints, 3)
		if !ok || dir != analytics.TrendImproving {
			t.Fatalf("trend = %q (ok=%v), want improving", dir, ok)
		}
	})

	t.Run("declining points", func(t *testing.T) {
		a := analytics.NewTrendAnalyzer(0.9)
		for i, pts := range []int{20, 17, 14, 11, 8} {
			a.AddGame(monthDay(time.Month(i+1), 10), scoringGame(pts))
		}
		dir, ok := a.TrendDirection(analytics.MetricPoints, 3)
		if !ok || dir != analytics.TrendDeclining {
			t.Fatalf("trend = %q (ok=%v), want declining", dir, ok)
		}
	})

	t.Run("flat is stable", func(t *testing.T) {
		a := analytics.NewTrendAnalyzer(0.9)
		for i := 0; i < 4; i++ {
			a.AddGame(monthDay(time.Month(i+1), 10), scoringGame(15))
		}
		dir, ok := a.TrendDirection(analytics.MetricPoints, 3)
		if !ok || dir != analytics.TrendStable {
			t.Fatalf("trend = %q (ok=%v), want stable", dir, ok)
		}
	})

	t.Run("small drift stays under the counting threshold", func(t *testing.T) {
		a := analytics.NewTrendAnalyzer(0.9)
		// Slope of 0.4 points per month: below the 0.5 cutoff.
		for i, pts := range []int{15, 15, 16, 16} {
			a.AddGame(monthDay(time.Month(i+1), 10), scoringGame(pts))
		}
		dir, ok := a.TrendDirection(analytics.MetricPoints, 3)
		if !ok || dir != analytics.TrendStable {
			t.Fatalf("trend = %q (ok=%v), want stable", dir, ok)
		}
	})

	t.Run("undefined under minimum months", func(t *testing.T) {
		a := analytics.NewTrendAnalyzer(0.9)
		a.AddGame(monthDay(time.January, 10), scoringGame(10))
		a.AddGame(monthDay(time.February, 10), scoringGame(20))
		if _, ok := a.TrendDirection(analytics.MetricPoints, 3); ok {
			t.Fatal("trend should be undefined with two months")
		}
	})
}

func TestTrendWeightedAverageSkipsUndefinedMonths(t *testing.T) {
	a := analytics.NewTrendAnalyzer(0.9)
	// November has no defined TS%; December does.
	a.AddGame(monthDay(time.November, 5), analytics.GameStats{})
	a.AddGame(monthDay(time.December, 5), scoringGame(15)) // TS% = 0.5

	got, ok := a.WeightedAverage(analytics.MetricTrueShootingPct)
	if !ok || !almostEqual(got, 0.5) {
		t.Fatalf("weighted TS%% = %v (ok=%v), want 0.5", got, ok)
	}

	if _, ok := analytics.NewTrendAnalyzer(0.9).WeightedAverage(analytics.MetricPoints); ok {
		t.Fatal("weighted average should be undefined without months")
	}
}

func TestTrendWeightedAverageWeighsByGames(t *testing.T) {
	a := analytics.NewTrendAnalyzer(1.0) // no decay, weights reduce to game counts
	// November: 3 games at 10 points. December: 1 game at 30.
	for i := 0; i < 3; i++ {
		a.AddGame(monthDay(time.November, i+1), scoringGame(10))
	}
	a.AddGame(monthDay(time.December, 1), scoringGame(30))

	got, ok := a.WeightedAverage(analytics.MetricPoints)
	want := (10.0*3 + 30.0*1) / 4
	if !ok || !almostEqual(got, want) {
		t.Fatalf("weighted points = %v, want %v", got, want)
	}
}

func TestRecentPerformanceOver(t *testing.T) {
	a := analytics.NewTrendAnalyzer(0.9)
	if _, err := a.RecentPerformanceOver(3); !errors.Is(err, analytics.ErrNoGames) {
		t.Fatalf("err = %v, want ErrNoGames", err)
	}

	for i, month := range []time.Month{time.October, time.November, time.December, time.January} {
		a.AddGame(monthDay(month, 10), scoringGame(10+i*5))
	}
	recent, err := a.RecentPerformanceOver(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recent.MonthsAnalyzed != 2 {
		t.Fatalf("months analyzed = %d, want 2", recent.MonthsAnalyzed)
	}
	if recent.TotalGames != 2 {
		t.Fatalf("total games = %d, want 2", recent.TotalGames)
	}

	// A non-positive window has no data to report, even with months loaded.
	for _, months := range []int{0, -1} {
		if _, err := a.RecentPerformanceOver(months); !errors.Is(err, analytics.ErrNoGames) {
			t.Fatalf("RecentPerformanceOver(%d) err = %v, want ErrNoGames", months, err)
		}
	}
}

func TestTrendSummary(t *testing.T) {
	a := analytics.NewTrendAnalyzer(0.9)
	if _, err := a.Summary(); !errors.Is(err, analytics.ErrNoGames) {
		t.Fatalf("err = %v, want ErrNoGames", err)
	}

	for i, month := range []time.Month{time.October, time.November, time.December} {
		a.AddGame(monthDay(month, 10), scoringGame(12+i*4))
	}
	sum, err := a.Summary()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.TotalMonths != 3 || sum.TotalGames != 3 {
		t.Fatalf("months/games = %d/%d, want 3/3", sum.TotalMonths, sum.TotalGames)
	}
	if sum.WeightedAverages[analytics.MetricPoints] == nil {
		t.Fatal("points weighted average should be present")
	}
	if dir := sum.TrendDirections[analytics.MetricPoints]; dir != analytics.TrendImproving {
		t.Fatalf("points trend = %q, want improving", dir)
	}
}
