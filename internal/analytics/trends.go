package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

// Metric names a monthly aggregate field for weighted-average and trend
// queries.
type Metric string

const (
	MetricPoints           Metric = "avg_points"
	MetricRebounds         Metric = "avg_rebounds"
	MetricAssists          Metric = "avg_assists"
	MetricSteals           Metric = "avg_steals"
	MetricBlocks           Metric = "avg_blocks"
	MetricTurnovers        Metric = "avg_turnovers"
	MetricMinutes          Metric = "avg_minutes"
	MetricFieldGoalPct     Metric = "avg_field_goal_pct"
	MetricThreePointPct    Metric = "avg_three_point_pct"
	MetricFreeThrowPct     Metric = "avg_free_throw_pct"
	MetricTrueShootingPct  Metric = "avg_true_shooting_pct"
	MetricEfficiencyRating Metric = "avg_player_efficiency_rating"
	MetricUsageRate        Metric = "avg_usage_rate"
	MetricDefensiveImpact  Metric = "avg_defensive_impact_score"
)

// Trend significance thresholds differ by metric class: half a unit per
// month for counting stats, one percentage point for shooting percentages,
// a conservative default otherwise.
const (
	countingTrendThreshold   = 0.5
	percentageTrendThreshold = 0.01
	defaultTrendThreshold    = 0.1

	// DefaultMinTrendMonths is the minimum distinct months carrying a
	// metric before a regression slope means anything.
	DefaultMinTrendMonths = 3
)

// MonthlyPerformance is one calendar month's running aggregate. Fields the
// per-game calculators report as undefined stay nil until a game defines
// them, then join the running average.
type MonthlyPerformance struct {
	Year        int
	Month       time.Month
	GamesPlayed int

	AvgMinutes   float64
	AvgPoints    float64
	AvgRebounds  float64
	AvgAssists   float64
	AvgSteals    float64
	AvgBlocks    float64
	AvgTurnovers float64

	AvgFieldGoalPct  float64
	AvgThreePointPct float64
	AvgFreeThrowPct  float64

	AvgTrueShootingPct  *float64
	AvgEfficiencyRating *float64
	AvgUsageRate        *float64
	AvgDefensiveImpact  *float64
}

// MonthKey returns the YYYY-MM key for this month.
func (m MonthlyPerformance) MonthKey() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (m MonthlyPerformance) metricValue(metric Metric) (float64, bool) {
	switch metric {
	case MetricPoints:
		return m.AvgPoints, true
	case MetricRebounds:
		return m.AvgRebounds, true
	case MetricAssists:
		return m.AvgAssists, true
	case MetricSteals:
		return m.AvgSteals, true
	case MetricBlocks:
		return m.AvgBlocks, true
	case MetricTurnovers:
		return m.AvgTurnovers, true
	case MetricMinutes:
		return m.AvgMinutes, true
	case MetricFieldGoalPct:
		return m.AvgFieldGoalPct, true
	case MetricThreePointPct:
		return m.AvgThreePointPct, true
	case MetricFreeThrowPct:
		return m.AvgFreeThrowPct, true
	case MetricTrueShootingPct:
		return deref(m.AvgTrueShootingPct)
	case MetricEfficiencyRating:
		return deref(m.AvgEfficiencyRating)
	case MetricUsageRate:
		return deref(m.AvgUsageRate)
	case MetricDefensiveImpact:
		return deref(m.AvgDefensiveImpact)
	default:
		return 0, false
	}
}

func deref(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

func trendThresholdFor(metric Metric) float64 {
	switch metric {
	case MetricPoints, MetricRebounds, MetricAssists:
		return countingTrendThreshold
	case MetricFieldGoalPct, MetricThreePointPct, MetricFreeThrowPct, MetricTrueShootingPct:
		return percentageTrendThreshold
	default:
		return defaultTrendThreshold
	}
}

// TrendAnalyzer folds games into monthly aggregates and derives
// recency-weighted multi-month averages and regression-based trend
// directions. Like EfficiencyAnalyzer it is a plain sequential fold.
type TrendAnalyzer struct {
	recencyDecay float64
	months       map[string]*MonthlyPerformance
}

func NewTrendAnalyzer(recencyDecay float64) *TrendAnalyzer {
	if recencyDecay <= 0 {
		recencyDecay = DefaultRecencyDecay
	}
	return &TrendAnalyzer{
		recencyDecay: recencyDecay,
		months:       make(map[string]*MonthlyPerformance),
	}
}

// MonthCount returns how many distinct months have been seen.
func (t *TrendAnalyzer) MonthCount() int { return len(t.months) }

// Months returns the monthly aggregates sorted oldest first.
func (t *TrendAnalyzer) Months() []MonthlyPerformance {
	out := make([]MonthlyPerformance, 0, len(t.months))
	for _, m := range t.months {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// AddGame updates the matching month's running averages with one game.
// Every field updates independently with new = (old*n + value) / (n+1);
// undefined advanced metrics are seeded on their first defined game rather
// than averaged against a placeholder.
func (t *TrendAnalyzer) AddGame(gameDate time.Time, s GameStats) {
	key := model.MonthKey(gameDate)

	ts, tsOK := TrueShootingPct(s)
	per, perOK := EfficiencyRating(s)
	usage, usageOK := UsageRate(s)
	def, defOK := DefensiveImpactScore(s)

	fgPct := ratio(s.FieldGoalsMade, s.FieldGoalsAttempted)
	threePct := ratio(s.ThreePointersMade, s.ThreePointersAttempted)
	ftPct := ratio(s.FreeThrowsMade, s.FreeThrowsAttempted)

	m, exists := t.months[key]
	if !exists {
		m = &MonthlyPerformance{
			Year:             gameDate.Year(),
			Month:            gameDate.Month(),
			GamesPlayed:      1,
			AvgMinutes:       s.MinutesPlayed,
			AvgPoints:        float64(s.Points),
			AvgRebounds:      float64(s.ReboundsTotal),
			AvgAssists:       float64(s.Assists),
			AvgSteals:        float64(s.Steals),
			AvgBlocks:        float64(s.Blocks),
			AvgTurnovers:     float64(s.Turnovers),
			AvgFieldGoalPct:  fgPct,
			AvgThreePointPct: threePct,
			AvgFreeThrowPct:  ftPct,
		}
		if tsOK {
			m.AvgTrueShootingPct = &ts
		}
		if perOK {
			m.AvgEfficiencyRating = &per
		}
		if usageOK {
			m.AvgUsageRate = &usage
		}
		if defOK {
			m.AvgDefensiveImpact = &def
		}
		t.months[key] = m
		return
	}

	n := float64(m.GamesPlayed)
	m.AvgMinutes = runningAvg(m.AvgMinutes, n, s.MinutesPlayed)
	m.AvgPoints = runningAvg(m.AvgPoints, n, float64(s.Points))
	m.AvgRebounds = runningAvg(m.AvgRebounds, n, float64(s.ReboundsTotal))
	m.AvgAssists = runningAvg(m.AvgAssists, n, float64(s.Assists))
	m.AvgSteals = runningAvg(m.AvgSteals, n, float64(s.Steals))
	m.AvgBlocks = runningAvg(m.AvgBlocks, n, float64(s.Blocks))
	m.AvgTurnovers = runningAvg(m.AvgTurnovers, n, float64(s.Turnovers))
	m.AvgFieldGoalPct = runningAvg(m.AvgFieldGoalPct, n, fgPct)
	m.AvgThreePointPct = runningAvg(m.AvgThreePointPct, n, threePct)
	m.AvgFreeThrowPct = runningAvg(m.AvgFreeThrowPct, n, ftPct)

	m.AvgTrueShootingPct = foldOptional(m.AvgTrueShootingPct, n, ts, tsOK)
	m.AvgEfficiencyRating = foldOptional(m.AvgEfficiencyRating, n, per, perOK)
	m.AvgUsageRate = foldOptional(m.AvgUsageRate, n, usage, usageOK)
	m.AvgDefensiveImpact = foldOptional(m.AvgDefensiveImpact, n, def, defOK)

	m.GamesPlayed++
}

func runningAvg(old, n, value float64) float64 {
	return (old*n + value) / (n + 1)
}

func foldOptional(old *float64, n float64, value float64, ok bool) *float64 {
	if !ok {
		return old
	}
	if old == nil {
		return &value
	}
	v := runningAvg(*old, n, value)
	return &v
}

func ratio(made, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return float64(made) / float64(attempted)
}

func (t *TrendAnalyzer) sortedRecentFirst() []MonthlyPerformance {
	months := t.Months()
	for i, j := 0, len(months)-1; i < j; i, j = i+1, j-1 {
		months[i], months[j] = months[j], months[i]
	}
	return months
}

// WeightedAverage computes the recency-weighted multi-month average of a
// metric: weight_i = decay^i * games_in_month_i over months sorted most
// recent first. Months without the metric are skipped. Undefined when no
// month carries it.
func (t *TrendAnalyzer) WeightedAverage(metric Metric) (float64, bool) {
	if len(t.months) == 0 {
		return 0, false
	}
	var weightedSum, weightSum float64
	for i, m := range t.sortedRecentFirst() {
		value, ok := m.metricValue(metric)
		if !ok {
			continue
		}
		w := math.Pow(t.recencyDecay, float64(i)) * float64(m.GamesPlayed)
		weightedSum += value * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, false
	}
	return weightedSum / weightSum, true
}

// TrendDirection fits an ordinary least-squares slope of the metric against
// the month index (oldest first) and classifies it against the metric
// class's threshold. Undefined with fewer than minMonths months carrying
// the metric; a degenerate x-variance reads as stable.
func (t *TrendAnalyzer) TrendDirection(metric Metric, minMonths int) (string, bool) {
	if minMonths <= 0 {
		minMonths = DefaultMinTrendMonths
	}
	if len(t.months) < minMonths {
		return "", false
	}

	type point struct{ x, y float64 }
	var points []point
	for i, m := range t.Months() {
		if value, ok := m.metricValue(metric); ok {
			points = append(points, point{x: float64(i), y: value})
		}
	}
	if len(points) < minMonths {
		return "", false
	}

	n := float64(len(points))
	var sumX, sumY, sumXY, sumX2 float64
	for _, p := range points {
		sumX += p.x
		sumY += p.y
		sumXY += p.x * p.y
		sumX2 += p.x * p.x
	}
	denom := n*sumX2 - sumX*sumX
	if denom == 0 {
		return TrendStable, true
	}
	slope := (n*sumXY - sumX*sumY) / denom

	threshold := trendThresholdFor(metric)
	switch {
	case slope > threshold:
		return TrendImproving, true
	case slope < -threshold:
		return TrendDeclining, true
	default:
		return TrendStable, true
	}
}

// RecentPerformance is the games-weighted average over the N most recent
// months.
type RecentPerformance struct {
	MonthsAnalyzed     int      `json:"months_analyzed"`
	TotalGames         int      `json:"total_games"`
	AvgPoints          float64  `json:"avg_points"`
	AvgRebounds        float64  `json:"avg_rebounds"`
	AvgAssists         float64  `json:"avg_assists"`
	AvgFieldGoalPct    float64  `json:"avg_field_goal_pct"`
	AvgTrueShootingPct *float64 `json:"avg_true_shooting_pct"`
}

// RecentPerformanceOver aggregates the most recent months, weighting each
// month by its games played. Returns ErrNoGames without data or with a
// non-positive window.
func (t *TrendAnalyzer) RecentPerformanceOver(months int) (RecentPerformance, error) {
	if months <= 0 || len(t.months) == 0 {
		return RecentPerformance{}, ErrNoGames
	}
	recent := t.sortedRecentFirst()
	if months < len(recent) {
		recent = recent[:months]
	}

	var totalWeight, points, rebounds, assists, fgPct, tsPct, tsWeight float64
	totalGames := 0
	for _, m := range recent {
		w := float64(m.GamesPlayed)
		totalGames += m.GamesPlayed
		totalWeight += w
		points += m.AvgPoints * w
		rebounds += m.AvgRebounds * w
		assists += m.AvgAssists * w
		fgPct += m.AvgFieldGoalPct * w
		if m.AvgTrueShootingPct != nil {
			tsPct += *m.AvgTrueShootingPct * w
			tsWeight += w
		}
	}

	out := RecentPerformance{
		MonthsAnalyzed: len(recent),
		TotalGames:     totalGames,
	}
	if totalWeight > 0 {
		out.AvgPoints = points / totalWeight
		out.AvgRebounds = rebounds / totalWeight
		out.AvgAssists = assists / totalWeight
		out.AvgFieldGoalPct = fgPct / totalWeight
	}
	if tsWeight > 0 {
		v := tsPct / tsWeight
		out.AvgTrueShootingPct = &v
	}
	return out, nil
}

// TrendSummary reports trend direction and weighted average for the fixed
// key-metric set plus recent performance.
type TrendSummary struct {
	TotalMonths       int                 `json:"total_months"`
	TotalGames        int                 `json:"total_games"`
	RecencyDecay      float64             `json:"recency_decay_factor"`
	WeightedAverages  map[Metric]*float64 `json:"weighted_averages"`
	TrendDirections   map[Metric]string   `json:"trend_directions"`
	RecentPerformance RecentPerformance   `json:"recent_performance"`
}

// Summary analyzes the key metrics (points, rebounds, assists, TS%) and
// the last three months. Returns ErrNoGames without data.
func (t *TrendAnalyzer) Summary() (TrendSummary, error) {
	if len(t.months) == 0 {
		return TrendSummary{}, ErrNoGames
	}

	keyMetrics := []Metric{MetricPoints, MetricRebounds, MetricAssists, MetricTrueShootingPct}

	out := TrendSummary{
		TotalMonths:      len(t.months),
		RecencyDecay:     t.recencyDecay,
		WeightedAverages: make(map[Metric]*float64, len(keyMetrics)),
		TrendDirections:  make(map[Metric]string, len(keyMetrics)),
	}
	for _, m := range t.months {
		out.TotalGames += m.GamesPlayed
	}
	for _, metric := range keyMetrics {
		if avg, ok := t.WeightedAverage(metric); ok {
			v := avg
			out.WeightedAverages[metric] = &v
		} else {
			out.WeightedAverages[metric] = nil
		}
		if dir, ok := t.TrendDirection(metric, DefaultMinTrendMonths); ok {
			out.TrendDirections[metric] = dir
		}
	}
	recent, err := t.RecentPerformanceOver(3)
	if err != nil {
		return TrendSummary{}, err
	}
	out.RecentPerformance = recent
	return out, nil
}
