package analytics

import (
	"errors"
	"math"
	"sort"
	"time"
)

// ErrNoGames marks summaries requested before any game was recorded.
var ErrNoGames = errors.New("no games available for analysis")

// Defaults for the efficiency accumulator.
const (
	DefaultRecencyDecay = 0.95
	DefaultTrendWindow  = 10

	// trendThreshold is the TS% half-to-half difference (2 percentage
	// points) below which a window reads as stable.
	trendThreshold = 0.02

	minConsistencyGames = 3
)

// Trend directions shared by the efficiency and trend analyzers.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// EfficiencyGame is one game's efficiency data point. Only games with a
// defined TS% make it into the accumulator.
type EfficiencyGame struct {
	GameDate          time.Time `json:"date"`
	TrueShootingPct   float64   `json:"true_shooting_pct"`
	Points            int       `json:"points"`
	FieldGoalAttempts int       `json:"field_goal_attempts"`
	MinutesPlayed     float64   `json:"minutes_played"`
}

// EfficiencyAnalyzer accumulates per-game shooting efficiency and derives
// recency-weighted averages, trend direction and consistency. It is a plain
// sequential fold; callers own any synchronization.
type EfficiencyAnalyzer struct {
	games []EfficiencyGame
}

func NewEfficiencyAnalyzer() *EfficiencyAnalyzer {
	return &EfficiencyAnalyzer{}
}

// AddGame records a game's stat line. Games with no shot attempts have no
// defined TS% and contribute nothing.
func (a *EfficiencyAnalyzer) AddGame(gameDate time.Time, s GameStats) {
	ts, ok := TrueShootingPct(s)
	if !ok {
		return
	}
	a.games = append(a.games, EfficiencyGame{
		GameDate:          gameDate,
		TrueShootingPct:   ts,
		Points:            s.Points,
		FieldGoalAttempts: s.FieldGoalsAttempted,
		MinutesPlayed:     s.MinutesPlayed,
	})
}

// GameCount returns how many games carry a defined TS%.
func (a *EfficiencyAnalyzer) GameCount() int { return len(a.games) }

func (a *EfficiencyAnalyzer) sortedRecentFirst() []EfficiencyGame {
	sorted := make([]EfficiencyGame, len(a.games))
	copy(sorted, a.games)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].GameDate.After(sorted[j].GameDate)
	})
	return sorted
}

// WeightedAverage computes the recency-weighted mean TS% with weight
// decay^i over games sorted most-recent-first. Undefined without games.
func (a *EfficiencyAnalyzer) WeightedAverage(decay float64) (float64, bool) {
	if len(a.games) == 0 {
		return 0, false
	}
	var weightedSum, weightSum float64
	for i, g := range a.sortedRecentFirst() {
		w := math.Pow(decay, float64(i))
		weightedSum += g.TrueShootingPct * w
		weightSum += w
	}
	if weightSum == 0 {
		return 0, false
	}
	return weightedSum / weightSum, true
}

// TrendDirection splits the most recent window games into halves and
// compares mean TS%. A difference beyond 2 percentage points tips the
// verdict; undefined with fewer than window games.
func (a *EfficiencyAnalyzer) TrendDirection(window int) (string, bool) {
	if len(a.games) < window {
		return "", false
	}
	recent := a.sortedRecentFirst()[:window]

	mid := window / 2
	recentHalf := recent[:mid]
	earlierHalf := recent[mid:]
	if len(recentHalf) == 0 || len(earlierHalf) == 0 {
		return "", false
	}

	diff := meanTS(recentHalf) - meanTS(earlierHalf)
	switch {
	case diff > trendThreshold:
		return TrendImproving, true
	case diff < -trendThreshold:
		return TrendDeclining, true
	default:
		return TrendStable, true
	}
}

func meanTS(games []EfficiencyGame) float64 {
	var sum float64
	for _, g := range games {
		sum += g.TrueShootingPct
	}
	return sum / float64(len(games))
}

// GradeEfficiency maps a TS% (decimal) onto twelve letter bands calibrated
// to NBA shooting standards (elite is 60%+).
func GradeEfficiency(tsPct float64) string {
	pct := tsPct * 100
	switch {
	case pct >= 62:
		return "A+"
	case pct >= 60:
		return "A"
	case pct >= 57:
		return "A-"
	case pct >= 55:
		return "B+"
	case pct >= 52:
		return "B"
	case pct >= 50:
		return "B-"
	case pct >= 47:
		return "C+"
	case pct >= 45:
		return "C"
	case pct >= 42:
		return "C-"
	case pct >= 40:
		return "D+"
	case pct >= 37:
		return "D"
	default:
		return "D-"
	}
}

// ConsistencyScore maps the coefficient of variation of TS% samples onto a
// 0-100 scale (100 - 300*CV, clamped). Undefined with fewer than 3 games.
func (a *EfficiencyAnalyzer) ConsistencyScore() (float64, bool) {
	if len(a.games) < minConsistencyGames {
		return 0, false
	}
	samples := make([]float64, len(a.games))
	for i, g := range a.games {
		samples[i] = g.TrueShootingPct
	}
	mean := meanOf(samples)
	if mean == 0 {
		return 0, true
	}
	cv := sampleStdDev(samples, mean) / mean
	score := max(100-cv*300, 0)
	return min(score, 100), true
}

func meanOf(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sampleStdDev uses the n-1 denominator, matching statistics over samples
// rather than whole populations.
func sampleStdDev(xs []float64, mean float64) float64 {
	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

// VolumeAnalysis relates shot volume to efficiency: volume category by
// average FGA, and mean TS% of above- vs below-average-volume games.
type VolumeAnalysis struct {
	VolumeCategory       string   `json:"volume_category"`
	AvgFieldGoalAttempts float64  `json:"avg_field_goal_attempts"`
	AvgTrueShootingPct   float64  `json:"avg_true_shooting_pct"`
	AvgPointsPerGame     float64  `json:"avg_points_per_game"`
	HighVolumeEfficiency *float64 `json:"high_volume_efficiency"`
	LowVolumeEfficiency  *float64 `json:"low_volume_efficiency"`
	EfficiencyGrade      string   `json:"efficiency_grade"`
	TotalGames           int      `json:"total_games"`
}

// VolumeVsEfficiency classifies average FGA into High (>=15), Medium (>=10)
// or Low volume and compares efficiency of the above/below-average-volume
// game subsets.
func (a *EfficiencyAnalyzer) VolumeVsEfficiency() (VolumeAnalysis, error) {
	if len(a.games) == 0 {
		return VolumeAnalysis{}, ErrNoGames
	}

	var fgaSum, tsSum, pointsSum float64
	for _, g := range a.games {
		fgaSum += float64(g.FieldGoalAttempts)
		tsSum += g.TrueShootingPct
		pointsSum += float64(g.Points)
	}
	n := float64(len(a.games))
	avgFGA := fgaSum / n
	avgTS := tsSum / n

	category := "Low Volume"
	switch {
	case avgFGA >= 15:
		category = "High Volume"
	case avgFGA >= 10:
		category = "Medium Volume"
	}

	var highTS, lowTS []float64
	for _, g := range a.games {
		if float64(g.FieldGoalAttempts) >= avgFGA {
			highTS = append(highTS, g.TrueShootingPct)
		} else {
			lowTS = append(lowTS, g.TrueShootingPct)
		}
	}

	out := VolumeAnalysis{
		VolumeCategory:       category,
		AvgFieldGoalAttempts: avgFGA,
		AvgTrueShootingPct:   avgTS,
		AvgPointsPerGame:     pointsSum / n,
		EfficiencyGrade:      GradeEfficiency(avgTS),
		TotalGames:           len(a.games),
	}
	if len(highTS) > 0 {
		v := meanOf(highTS)
		out.HighVolumeEfficiency = &v
	}
	if len(lowTS) > 0 {
		v := meanOf(lowTS)
		out.LowVolumeEfficiency = &v
	}
	return out, nil
}

// EfficiencySummary is the complete efficiency picture for one player.
type EfficiencySummary struct {
	GamesAnalyzed      int            `json:"games_analyzed"`
	AvgTrueShootingPct float64        `json:"average_true_shooting_pct"`
	WeightedTSPct      *float64       `json:"weighted_true_shooting_pct"`
	EfficiencyGrade    string         `json:"efficiency_grade"`
	TrendDirection     string         `json:"trend_direction,omitempty"`
	ConsistencyScore   *float64       `json:"consistency_score"`
	VolumeAnalysis     VolumeAnalysis `json:"volume_analysis"`
	BestGame           EfficiencyGame `json:"best_game"`
	WorstGame          EfficiencyGame `json:"worst_game"`
}

// Summary bundles weighted average, trend, consistency, volume analysis and
// best/worst single games. Returns ErrNoGames on an empty accumulator.
func (a *EfficiencyAnalyzer) Summary() (EfficiencySummary, error) {
	if len(a.games) == 0 {
		return EfficiencySummary{}, ErrNoGames
	}

	var tsSum float64
	best, worst := a.games[0], a.games[0]
	for _, g := range a.games {
		tsSum += g.TrueShootingPct
		if g.TrueShootingPct > best.TrueShootingPct {
			best = g
		}
		if g.TrueShootingPct < worst.TrueShootingPct {
			worst = g
		}
	}
	avgTS := tsSum / float64(len(a.games))

	out := EfficiencySummary{
		GamesAnalyzed:      len(a.games),
		AvgTrueShootingPct: avgTS,
		EfficiencyGrade:    GradeEfficiency(avgTS),
		BestGame:           best,
		WorstGame:          worst,
	}
	if w, ok := a.WeightedAverage(DefaultRecencyDecay); ok {
		out.WeightedTSPct = &w
	}
	if dir, ok := a.TrendDirection(DefaultTrendWindow); ok {
		out.TrendDirection = dir
	}
	if c, ok := a.ConsistencyScore(); ok {
		out.ConsistencyScore = &c
	}
	va, err := a.VolumeVsEfficiency()
	if err != nil {
		return EfficiencySummary{}, err
	}
	out.VolumeAnalysis = va
	return out, nil
}
