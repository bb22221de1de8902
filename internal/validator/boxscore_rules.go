package validator

import (
	"fmt"
	"regexp"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

var (
	seasonPattern  = regexp.MustCompile(`^\d{4}-\d{2}$`)
	tricodePattern = regexp.MustCompile(`^[A-Z]{3}$`)
	// minutes: "MM:SS", plain integer/decimal, or empty for DNP
	minutesPattern = regexp.MustCompile(`^(\d{1,2}:\d{2}|\d+\.?\d*|0?)$`)
)

// boxScoreRules returns the ordered rule set for the box_scores schema:
// required-fields, data-types, business-rules, cross-field.
func boxScoreRules() []boxScoreRule {
	return []boxScoreRule{
		{"required_fields_box_scores", checkRequiredFieldsBoxScores},
		{"data_types_box_scores", checkDataTypesBoxScores},
		{"shooting_consistency", checkShootingConsistency},
		{"rebounds_consistency", checkReboundsConsistency},
		{"non_negative_stats", checkNonNegativeStats},
		{"season_format", checkSeasonFormat},
		{"team_tricode", checkTeamTricode},
		{"minutes_format", checkMinutesFormat},
		{"points_calculation", checkPointsCalculation},
		{"three_point_subset", checkThreePointSubset},
		{"dnp_consistency", checkDNPConsistency},
	}
}

func checkRequiredFieldsBoxScores(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.GameID == 0 {
			issues = append(issues, missingField("gameId", i))
		}
		if row.PersonID == 0 {
			issues = append(issues, missingField("personId", i))
		}
		if row.SeasonYear == "" {
			issues = append(issues, missingField("season_year", i))
		}
		if row.GameDate.IsZero() {
			issues = append(issues, missingField("game_date", i))
		}
		if row.TeamID == 0 {
			issues = append(issues, missingField("teamId", i))
		}
		if row.PersonName == "" {
			issues = append(issues, missingField("personName", i))
		}
	}
	return issues
}

func missingField(field string, row int) Issue {
	return Issue{
		Field:    field,
		Message:  fmt.Sprintf("required field %q is missing", field),
		Severity: SeverityError,
		Row:      row,
	}
}

// checkDataTypesBoxScores flags percentage fields outside [0, 1]. Type
// coercion proper happens in the reader; out-of-domain values here mean the
// source computed them differently.
func checkDataTypesBoxScores(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	pct := func(i int, field string, v float64) {
		if v < 0 || v > 1 {
			issues = append(issues, Issue{
				Field:    field,
				Message:  fmt.Sprintf("percentage out of range: %v", v),
				Severity: SeverityWarning,
				Row:      i,
				Value:    v,
			})
		}
	}
	for i, row := range rows {
		pct(i, "fieldGoalsPercentage", row.FieldGoalsPercentage)
		pct(i, "threePointersPercentage", row.ThreePointersPercentage)
		pct(i, "freeThrowsPercentage", row.FreeThrowsPercentage)
	}
	return issues
}

func checkShootingConsistency(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.FieldGoalsMade > row.FieldGoalsAttempted {
			issues = append(issues, Issue{
				Field:    "fieldGoals",
				Message:  fmt.Sprintf("FGM (%d) > FGA (%d)", row.FieldGoalsMade, row.FieldGoalsAttempted),
				Severity: SeverityError,
				Row:      i,
			})
		}
		if row.ThreePointersMade > row.FieldGoalsMade {
			issues = append(issues, Issue{
				Field:    "threePointers",
				Message:  fmt.Sprintf("3PM (%d) > FGM (%d)", row.ThreePointersMade, row.FieldGoalsMade),
				Severity: SeverityError,
				Row:      i,
			})
		}
		if row.ThreePointersMade > row.ThreePointersAttempted {
			issues = append(issues, Issue{
				Field:    "threePointers",
				Message:  fmt.Sprintf("3PM (%d) > 3PA (%d)", row.ThreePointersMade, row.ThreePointersAttempted),
				Severity: SeverityError,
				Row:      i,
			})
		}
		if row.FreeThrowsMade > row.FreeThrowsAttempted {
			issues = append(issues, Issue{
				Field:    "freeThrows",
				Message:  fmt.Sprintf("FTM (%d) > FTA (%d)", row.FreeThrowsMade, row.FreeThrowsAttempted),
				Severity: SeverityError,
				Row:      i,
			})
		}
	}
	return issues
}

func checkReboundsConsistency(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.ReboundsTotal != row.ReboundsOffensive+row.ReboundsDefensive {
			issues = append(issues, Issue{
				Field: "rebounds",
				Message: fmt.Sprintf("total rebounds (%d) != OREB (%d) + DREB (%d)",
					row.ReboundsTotal, row.ReboundsOffensive, row.ReboundsDefensive),
				Severity: SeverityError,
				Row:      i,
			})
		}
	}
	return issues
}

func checkNonNegativeStats(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		for _, stat := range []struct {
			field string
			value int
		}{
			{"fieldGoalsMade", row.FieldGoalsMade},
			{"fieldGoalsAttempted", row.FieldGoalsAttempted},
			{"threePointersMade", row.ThreePointersMade},
			{"threePointersAttempted", row.ThreePointersAttempted},
			{"freeThrowsMade", row.FreeThrowsMade},
			{"freeThrowsAttempted", row.FreeThrowsAttempted},
			{"reboundsOffensive", row.ReboundsOffensive},
			{"reboundsDefensive", row.ReboundsDefensive},
			{"reboundsTotal", row.ReboundsTotal},
			{"assists", row.Assists},
			{"steals", row.Steals},
			{"blocks", row.Blocks},
			{"turnovers", row.Turnovers},
			{"foulsPersonal", row.FoulsPersonal},
			{"points", row.Points},
		} {
			if stat.value < 0 {
				issues = append(issues, Issue{
					Field:    stat.field,
					Message:  fmt.Sprintf("negative value: %d", stat.value),
					Severity: SeverityError,
					Row:      i,
					Value:    stat.value,
				})
			}
		}
	}
	return issues
}

func checkSeasonFormat(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if !seasonPattern.MatchString(row.SeasonYear) {
			issues = append(issues, Issue{
				Field:    "season_year",
				Message:  fmt.Sprintf("invalid season format: %q (expected YYYY-YY)", row.SeasonYear),
				Severity: SeverityWarning,
				Row:      i,
				Value:    row.SeasonYear,
			})
		}
	}
	return issues
}

func checkTeamTricode(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if !tricodePattern.MatchString(row.TeamTricode) {
			issues = append(issues, Issue{
				Field:    "teamTricode",
				Message:  fmt.Sprintf("invalid tricode format: %q (expected 3 uppercase letters)", row.TeamTricode),
				Severity: SeverityWarning,
				Row:      i,
				Value:    row.TeamTricode,
			})
		}
	}
	return issues
}

func checkMinutesFormat(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.Minutes == "" {
			continue // DNP
		}
		if !minutesPattern.MatchString(row.Minutes) {
			issues = append(issues, Issue{
				Field:    "minutes",
				Message:  fmt.Sprintf("invalid minutes format: %q (expected MM:SS or decimal)", row.Minutes),
				Severity: SeverityWarning,
				Row:      i,
				Value:    row.Minutes,
			})
		}
	}
	return issues
}

// checkPointsCalculation compares reported points with the naive
// reconstruction 2*(FGM-3PM) + 3*3PM + FTM. Mismatches stay warnings:
// and-ones and technicals legitimately break the naive formula.
func checkPointsCalculation(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		calculated := (row.FieldGoalsMade-row.ThreePointersMade)*2 +
			row.ThreePointersMade*3 +
			row.FreeThrowsMade
		if row.Points != calculated {
			issues = append(issues, Issue{
				Field:    "points",
				Message:  fmt.Sprintf("points calculation mismatch: reported %d, calculated %d", row.Points, calculated),
				Severity: SeverityWarning,
				Row:      i,
			})
		}
	}
	return issues
}

func checkThreePointSubset(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.ThreePointersAttempted > row.FieldGoalsAttempted {
			issues = append(issues, Issue{
				Field:    "threePointers",
				Message:  fmt.Sprintf("3PA (%d) > FGA (%d)", row.ThreePointersAttempted, row.FieldGoalsAttempted),
				Severity: SeverityError,
				Row:      i,
			})
		}
	}
	return issues
}

// checkDNPConsistency flags did-not-play rows that still carry stats.
func checkDNPConsistency(rows []model.PlayerBoxScore) []Issue {
	var issues []Issue
	for i, row := range rows {
		if !row.IsDNP() {
			continue
		}
		for _, stat := range []struct {
			field string
			value int
		}{
			{"points", row.Points},
			{"assists", row.Assists},
			{"rebounds", row.ReboundsTotal},
			{"steals", row.Steals},
			{"blocks", row.Blocks},
		} {
			if stat.value > 0 {
				issues = append(issues, Issue{
					Field:    "dnp_consistency",
					Message:  fmt.Sprintf("player with 0 minutes has %s: %d", stat.field, stat.value),
					Severity: SeverityWarning,
					Row:      i,
					Value:    stat.value,
				})
			}
		}
	}
	return issues
}
