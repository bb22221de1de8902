// Package model contains domain entities and DTOs used across layers.
// I keep it lean and focused on data shapes without behavior beyond
// small derivations (minutes parsing, DNP detection).
package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PlayerBoxScore is one player's raw box-score row for one game, as read
// from the box_scores input. Composite key: (GameID, PersonID).
type PlayerBoxScore struct {
	GameID   int64 `json:"game_id"`
	PersonID int64 `json:"person_id"`

	SeasonYear string    `json:"season_year"` // YYYY-YY
	GameDate   time.Time `json:"game_date"`
	Matchup    string    `json:"matchup,omitempty"`

	TeamID      int64  `json:"team_id"`
	TeamCity    string `json:"team_city"`
	TeamName    string `json:"team_name"`
	TeamTricode string `json:"team_tricode"` // 3 uppercase letters
	TeamSlug    string `json:"team_slug"`

	PersonName string `json:"person_name"`
	Position   string `json:"position,omitempty"`
	Comment    string `json:"comment,omitempty"` // DNP reasons, injuries
	JerseyNum  string `json:"jersey_num,omitempty"`

	// Minutes stays a raw string ("MM:SS", decimal, or empty for DNP);
	// MinutesDecimal converts on demand.
	Minutes string `json:"minutes"`

	FieldGoalsMade          int     `json:"field_goals_made"`
	FieldGoalsAttempted     int     `json:"field_goals_attempted"`
	FieldGoalsPercentage    float64 `json:"field_goals_percentage"`
	ThreePointersMade       int     `json:"three_pointers_made"`
	ThreePointersAttempted  int     `json:"three_pointers_attempted"`
	ThreePointersPercentage float64 `json:"three_pointers_percentage"`
	FreeThrowsMade          int     `json:"free_throws_made"`
	FreeThrowsAttempted     int     `json:"free_throws_attempted"`
	FreeThrowsPercentage    float64 `json:"free_throws_percentage"`

	ReboundsOffensive int `json:"rebounds_offensive"`
	ReboundsDefensive int `json:"rebounds_defensive"`
	ReboundsTotal     int `json:"rebounds_total"`

	Assists         int `json:"assists"`
	Steals          int `json:"steals"`
	Blocks          int `json:"blocks"`
	Turnovers       int `json:"turnovers"`
	FoulsPersonal   int `json:"fouls_personal"`
	Points          int `json:"points"`
	PlusMinusPoints int `json:"plus_minus_points"`
}

// MinutesDecimal converts the raw minutes string to decimal minutes.
// "MM:SS" and plain decimal forms are accepted; empty and "0" mean DNP.
func (b PlayerBoxScore) MinutesDecimal() (float64, error) {
	return ParseMinutes(b.Minutes)
}

// IsDNP reports whether the player did not play.
func (b PlayerBoxScore) IsDNP() bool {
	m := strings.TrimSpace(b.Minutes)
	if m == "" || m == "0" || m == "0:00" {
		return true
	}
	return strings.Contains(b.Comment, "DNP")
}

// ParseMinutes converts a minutes field to decimal minutes.
// Callers treat a returned error as a coercion failure and skip the row.
func ParseMinutes(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" || s == "0" {
		return 0, nil
	}
	if mm, ss, ok := strings.Cut(s, ":"); ok {
		m, err := strconv.Atoi(mm)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q: %w", raw, err)
		}
		sec, err := strconv.Atoi(ss)
		if err != nil {
			return 0, fmt.Errorf("invalid minutes %q: %w", raw, err)
		}
		if sec < 0 || sec > 59 {
			return 0, fmt.Errorf("invalid minutes %q: seconds out of range", raw)
		}
		return float64(m) + float64(sec)/60.0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes %q: %w", raw, err)
	}
	return v, nil
}

// TeamGameTotal is one team's raw totals row for one game.
// Composite key: (GameID, TeamID).
type TeamGameTotal struct {
	GameID int64 `json:"game_id"`
	TeamID int64 `json:"team_id"`

	SeasonYear       string    `json:"season_year"`
	TeamAbbreviation string    `json:"team_abbreviation"`
	TeamName         string    `json:"team_name"`
	GameDate         time.Time `json:"game_date"`
	Matchup          string    `json:"matchup"`
	WinLoss          string    `json:"wl"` // "W" or "L"

	MinutesPlayed          float64 `json:"min"`
	FieldGoalsMade         int     `json:"fgm"`
	FieldGoalsAttempted    int     `json:"fga"`
	FieldGoalPct           float64 `json:"fg_pct"`
	ThreePointersMade      int     `json:"fg3m"`
	ThreePointersAttempted int     `json:"fg3a"`
	ThreePointPct          float64 `json:"fg3_pct"`
	FreeThrowsMade         int     `json:"ftm"`
	FreeThrowsAttempted    int     `json:"fta"`
	FreeThrowPct           float64 `json:"ft_pct"`
	ReboundsOffensive      int     `json:"oreb"`
	ReboundsDefensive      int     `json:"dreb"`
	ReboundsTotal          int     `json:"reb"`
	Assists                int     `json:"ast"`
	Turnovers              float64 `json:"tov"`
	Steals                 int     `json:"stl"`
	Blocks                 int     `json:"blk"`
	BlocksAgainst          int     `json:"blka"`
	FoulsPersonal          int     `json:"pf"`
	FoulsDrawn             int     `json:"pfd"`
	Points                 int     `json:"pts"`
	PlusMinus              float64 `json:"plus_minus"`
}

// IsWin reports whether the team won the game.
func (t TeamGameTotal) IsWin() bool { return t.WinLoss == "W" }

// PlayerProcessed is a PlayerBoxScore enriched with derived metrics and
// grades. Same composite key as the raw row; re-ingestion replaces the row
// wholesale, never patches it. Metrics that cannot be computed from the
// inputs (zero minutes, zero attempts) are nil, not zero.
type PlayerProcessed struct {
	GameID   int64 `json:"game_id"`
	PersonID int64 `json:"person_id"`

	SeasonYear  string    `json:"season_year"`
	GameDate    time.Time `json:"game_date"`
	Matchup     string    `json:"matchup,omitempty"`
	PersonName  string    `json:"person_name"`
	TeamID      int64     `json:"team_id"`
	TeamName    string    `json:"team_name"`
	TeamTricode string    `json:"team_tricode"`
	Position    string    `json:"position,omitempty"`

	MinutesPlayed float64 `json:"minutes_played"`
	DidNotPlay    bool    `json:"is_dnp"`

	Points                 int `json:"points"`
	FieldGoalsMade         int `json:"field_goals_made"`
	FieldGoalsAttempted    int `json:"field_goals_attempted"`
	ThreePointersMade      int `json:"three_pointers_made"`
	ThreePointersAttempted int `json:"three_pointers_attempted"`
	FreeThrowsMade         int `json:"free_throws_made"`
	FreeThrowsAttempted    int `json:"free_throws_attempted"`
	ReboundsOffensive      int `json:"rebounds_offensive"`
	ReboundsDefensive      int `json:"rebounds_defensive"`
	ReboundsTotal          int `json:"rebounds_total"`
	Assists                int `json:"assists"`
	Steals                 int `json:"steals"`
	Blocks                 int `json:"blocks"`
	Turnovers              int `json:"turnovers"`
	FoulsPersonal          int `json:"fouls_personal"`
	PlusMinus              int `json:"plus_minus"`

	TrueShootingPct  *float64 `json:"true_shooting_percentage"`
	EffectiveFGPct   *float64 `json:"effective_field_goal_percentage"`
	FieldGoalPct     *float64 `json:"field_goal_percentage"`
	ThreePointPct    *float64 `json:"three_point_percentage"`
	FreeThrowPct     *float64 `json:"free_throw_percentage"`
	EfficiencyRating *float64 `json:"player_efficiency_rating"`
	UsageRate        *float64 `json:"usage_rate"`
	DefensiveImpact  *float64 `json:"defensive_impact_score"`

	PointsPer36   *float64 `json:"points_per_36"`
	ReboundsPer36 *float64 `json:"rebounds_per_36"`
	AssistsPer36  *float64 `json:"assists_per_36"`
	StealsPer36   *float64 `json:"steals_per_36"`
	BlocksPer36   *float64 `json:"blocks_per_36"`

	EfficiencyGrade string `json:"efficiency_grade,omitempty"`
	DefensiveGrade  string `json:"defensive_grade,omitempty"`

	ProcessedAt time.Time `json:"processed_at"`
}

// PlayerMonthlyTrend is the monthly rollup for one player.
// Composite key: (PersonID, SeasonYear, MonthYear).
type PlayerMonthlyTrend struct {
	PersonID   int64  `json:"person_id"`
	SeasonYear string `json:"season_year"`
	MonthYear  string `json:"month_year"` // YYYY-MM
	PersonName string `json:"person_name"`

	GamesPlayed int `json:"games_played"`

	AvgMinutes   float64 `json:"avg_minutes"`
	AvgPoints    float64 `json:"avg_points"`
	AvgRebounds  float64 `json:"avg_rebounds"`
	AvgAssists   float64 `json:"avg_assists"`
	AvgSteals    float64 `json:"avg_steals"`
	AvgBlocks    float64 `json:"avg_blocks"`
	AvgTurnovers float64 `json:"avg_turnovers"`

	AvgFieldGoalPct  float64 `json:"avg_field_goal_pct"`
	AvgThreePointPct float64 `json:"avg_three_point_pct"`
	AvgFreeThrowPct  float64 `json:"avg_free_throw_pct"`

	AvgTrueShootingPct  *float64 `json:"avg_true_shooting_pct"`
	AvgEfficiencyRating *float64 `json:"avg_player_efficiency_rating"`
	AvgUsageRate        *float64 `json:"avg_usage_rate"`
	AvgDefensiveImpact  *float64 `json:"avg_defensive_impact_score"`

	TrendDirection   string  `json:"trend_direction"` // improving, declining, stable
	ConsistencyScore float64 `json:"consistency_score"`

	CalculatedAt time.Time `json:"calculated_at"`
}

// PlayerRef identifies a player present in the processed store.
type PlayerRef struct {
	PersonID   int64  `json:"person_id"`
	PersonName string `json:"person_name"`
}

// MonthKey formats a game date as the YYYY-MM key used for monthly rollups.
func MonthKey(d time.Time) string { return d.Format("2006-01") }
