package validator

import (
	"fmt"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

// totalsRules returns the ordered rule set for the team totals schema.
func totalsRules() []totalsRule {
	return []totalsRule{
		{"required_fields_totals", checkRequiredFieldsTotals},
		{"win_loss_format", checkWinLossFormat},
		{"team_abbreviation_format", checkTeamAbbreviation},
		{"non_negative_team_stats", checkNonNegativeTeamStats},
	}
}

func checkRequiredFieldsTotals(rows []model.TeamGameTotal) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.GameID == 0 {
			issues = append(issues, missingField("GAME_ID", i))
		}
		if row.TeamID == 0 {
			issues = append(issues, missingField("TEAM_ID", i))
		}
		if row.SeasonYear == "" {
			issues = append(issues, missingField("SEASON_YEAR", i))
		}
		if row.TeamName == "" {
			issues = append(issues, missingField("TEAM_NAME", i))
		}
		if row.WinLoss == "" {
			issues = append(issues, missingField("WL", i))
		}
	}
	return issues
}

func checkWinLossFormat(rows []model.TeamGameTotal) []Issue {
	var issues []Issue
	for i, row := range rows {
		if row.WinLoss != "W" && row.WinLoss != "L" {
			issues = append(issues, Issue{
				Field:    "WL",
				Message:  fmt.Sprintf("invalid W/L value: %q (must be 'W' or 'L')", row.WinLoss),
				Severity: SeverityError,
				Row:      i,
				Value:    row.WinLoss,
			})
		}
	}
	return issues
}

func checkTeamAbbreviation(rows []model.TeamGameTotal) []Issue {
	var issues []Issue
	for i, row := range rows {
		if !tricodePattern.MatchString(row.TeamAbbreviation) {
			issues = append(issues, Issue{
				Field:    "TEAM_ABBREVIATION",
				Message:  fmt.Sprintf("invalid abbreviation: %q (expected 3 uppercase letters)", row.TeamAbbreviation),
				Severity: SeverityWarning,
				Row:      i,
				Value:    row.TeamAbbreviation,
			})
		}
	}
	return issues
}

func checkNonNegativeTeamStats(rows []model.TeamGameTotal) []Issue {
	var issues []Issue
	for i, row := range rows {
		for _, stat := range []struct {
			field string
			value float64
		}{
			{"PTS", float64(row.Points)},
			{"FGM", float64(row.FieldGoalsMade)},
			{"FGA", float64(row.FieldGoalsAttempted)},
			{"FG3M", float64(row.ThreePointersMade)},
			{"FG3A", float64(row.ThreePointersAttempted)},
			{"FTM", float64(row.FreeThrowsMade)},
			{"FTA", float64(row.FreeThrowsAttempted)},
			{"OREB", float64(row.ReboundsOffensive)},
			{"DREB", float64(row.ReboundsDefensive)},
			{"REB", float64(row.ReboundsTotal)},
			{"AST", float64(row.Assists)},
			{"TOV", row.Turnovers},
			{"STL", float64(row.Steals)},
			{"BLK", float64(row.Blocks)},
			{"PF", float64(row.FoulsPersonal)},
		} {
			if stat.value < 0 {
				issues = append(issues, Issue{
					Field:    stat.field,
					Message:  fmt.Sprintf("negative team stat: %v", stat.value),
					Severity: SeverityError,
					Row:      i,
					Value:    stat.value,
				})
			}
		}
	}
	return issues
}
