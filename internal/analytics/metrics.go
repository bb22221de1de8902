// Package analytics implements the advanced basketball metrics and the
// stateful efficiency/trend accumulators. All calculators are pure functions
// over a single game's stat line; metrics that cannot be computed report
// ok=false instead of returning a misleading zero.
package analytics

import "github.com/maxviazov/nba-analytics-pipeline/internal/model"

// Calibration constants. These are tuned so outputs land in familiar stat
// ranges, not derived from first principles; keep them adjustable.
const (
	// PossessionsPer48 estimates team possessions over a full game at
	// typical NBA pace.
	PossessionsPer48 = 100.0
	// PERScale maps net per-minute contribution into a PER-like range
	// (league average around 15).
	PERScale = 30.0
	// FreeThrowPossessionWeight is the standard 0.44 true-shooting-attempt
	// weight for free throws.
	FreeThrowPossessionWeight = 0.44
)

// GameStats is the flat stat line the calculators operate on. Minutes are
// decimal here; conversion from the raw MM:SS form happens upstream.
type GameStats struct {
	Points                 int
	FieldGoalsMade         int
	FieldGoalsAttempted    int
	ThreePointersMade      int
	ThreePointersAttempted int
	FreeThrowsMade         int
	FreeThrowsAttempted    int

	ReboundsOffensive int
	ReboundsDefensive int
	ReboundsTotal     int
	Assists           int
	Steals            int
	Blocks            int
	Turnovers         int
	FoulsPersonal     int

	MinutesPlayed float64
}

// StatsFromBoxScore converts a raw box-score row into the calculator input.
// Rows whose minutes field cannot be parsed get zero minutes, which makes
// every minute-dependent metric undefined rather than wrong.
func StatsFromBoxScore(b model.PlayerBoxScore) GameStats {
	minutes, err := b.MinutesDecimal()
	if err != nil {
		minutes = 0
	}
	return GameStats{
		Points:                 b.Points,
		FieldGoalsMade:         b.FieldGoalsMade,
		FieldGoalsAttempted:    b.FieldGoalsAttempted,
		ThreePointersMade:      b.ThreePointersMade,
		ThreePointersAttempted: b.ThreePointersAttempted,
		FreeThrowsMade:         b.FreeThrowsMade,
		FreeThrowsAttempted:    b.FreeThrowsAttempted,
		ReboundsOffensive:      b.ReboundsOffensive,
		ReboundsDefensive:      b.ReboundsDefensive,
		ReboundsTotal:          b.ReboundsTotal,
		Assists:                b.Assists,
		Steals:                 b.Steals,
		Blocks:                 b.Blocks,
		Turnovers:              b.Turnovers,
		FoulsPersonal:          b.FoulsPersonal,
		MinutesPlayed:          minutes,
	}
}

// TrueShootingPct computes TS% = points / (2 * (FGA + 0.44*FTA)).
// Undefined when the player attempted no field goals and no free throws.
func TrueShootingPct(s GameStats) (float64, bool) {
	if s.FieldGoalsAttempted == 0 && s.FreeThrowsAttempted == 0 {
		return 0, false
	}
	attempts := float64(s.FieldGoalsAttempted) + FreeThrowPossessionWeight*float64(s.FreeThrowsAttempted)
	if attempts == 0 {
		return 0, false
	}
	return float64(s.Points) / (2 * attempts), true
}

// EffectiveFGPct computes eFG% = (FGM + 0.5*3PM) / FGA.
// Undefined when FGA is zero.
func EffectiveFGPct(s GameStats) (float64, bool) {
	if s.FieldGoalsAttempted == 0 {
		return 0, false
	}
	effective := float64(s.FieldGoalsMade) + 0.5*float64(s.ThreePointersMade)
	return effective / float64(s.FieldGoalsAttempted), true
}

// UsageRate estimates the share of team possessions the player used,
// without team context: possessions used are FGA + 0.44*FTA + TOV, team
// possessions are estimated from minutes at PossessionsPer48 pace.
// Undefined when minutes <= 0; zero possessions used with minutes played
// yields 0.0, not undefined. Capped at 1.0.
func UsageRate(s GameStats) (float64, bool) {
	if s.MinutesPlayed <= 0 {
		return 0, false
	}
	used := float64(s.FieldGoalsAttempted) + FreeThrowPossessionWeight*float64(s.FreeThrowsAttempted) + float64(s.Turnovers)
	if used == 0 {
		return 0, true
	}
	teamPossessions := (s.MinutesPlayed / 48.0) * PossessionsPer48
	if teamPossessions <= 0 {
		return 0, false
	}
	return min(used/teamPossessions, 1.0), true
}

// EfficiencyRating computes the simplified per-minute PER: positive
// contributions minus negative ones, per minute, scaled by PERScale and
// floored at zero. Undefined when minutes <= 0. No league normalization.
func EfficiencyRating(s GameStats) (float64, bool) {
	if s.MinutesPlayed <= 0 {
		return 0, false
	}
	positive := float64(s.FieldGoalsMade) +
		0.5*float64(s.ThreePointersMade) +
		float64(s.FreeThrowsMade) +
		float64(s.ReboundsOffensive) +
		float64(s.ReboundsDefensive) +
		float64(s.Assists) +
		float64(s.Steals) +
		float64(s.Blocks)
	negative := float64(s.FieldGoalsAttempted-s.FieldGoalsMade) +
		float64(s.FreeThrowsAttempted-s.FreeThrowsMade) +
		float64(s.Turnovers) +
		0.5*float64(s.FoulsPersonal)
	rating := (positive - negative) / s.MinutesPlayed * PERScale
	return max(rating, 0), true
}

// Per36 scales a counting stat to a 36-minute basis.
// Undefined when minutes <= 0.
func Per36(value int, minutes float64) (float64, bool) {
	if minutes <= 0 {
		return 0, false
	}
	return float64(value) / minutes * 36.0, true
}
