package validator

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

func validBoxScore() model.PlayerBoxScore {
	return model.PlayerBoxScore{
		GameID:     22300001,
		PersonID:   201939,
		SeasonYear: "2023-24",
		GameDate:   time.Date(2023, 11, 5, 0, 0, 0, 0, time.UTC),
		TeamID:     1610612744,
		TeamTricode: "GSW",
		PersonName: "Stephen Curry",
		Minutes:    "34:12",

		FieldGoalsMade: 10, FieldGoalsAttempted: 20,
		ThreePointersMade: 5, ThreePointersAttempted: 11,
		FreeThrowsMade: 5, FreeThrowsAttempted: 5,
		ReboundsOffensive: 1, ReboundsDefensive: 4, ReboundsTotal: 5,
		Assists: 8, Steals: 2, Blocks: 0, Turnovers: 3, FoulsPersonal: 2,
		Points: 30,
	}
}

func validTotal() model.TeamGameTotal {
	return model.TeamGameTotal{
		GameID: 22300001, TeamID: 1610612744,
		SeasonYear: "2023-24", TeamAbbreviation: "GSW", TeamName: "Golden State Warriors",
		WinLoss: "W",
		Points:  120, FieldGoalsMade: 45, FieldGoalsAttempted: 90,
	}
}

func newTestValidator(cfg Config) *Validator {
	return New(cfg, zerolog.New(io.Discard))
}

func TestValidateBoxScoresCleanBatch(t *testing.T) {
	v := newTestValidator(Config{})
	out := v.ValidateBoxScores([]model.PlayerBoxScore{validBoxScore()})
	if !out.Success {
		t.Fatalf("clean batch should pass, errors: %v, warnings: %v", out.Errors, out.Warnings)
	}
	if out.TotalRows != 1 {
		t.Fatalf("total rows = %d, want 1", out.TotalRows)
	}
}

func TestValidateBoxScoresReboundsMismatch(t *testing.T) {
	row := validBoxScore()
	row.ReboundsTotal = 9 // OREB 1 + DREB 4 != 9
	v := newTestValidator(Config{})
	out := v.ValidateBoxScores([]model.PlayerBoxScore{row})

	if out.Success {
		t.Fatal("rebounds mismatch should fail the batch")
	}
	found := false
	for _, issue := range out.Errors {
		if issue.Field == "rebounds" && issue.Row == 0 && issue.Severity == SeverityError {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing rebounds error, got %v", out.Errors)
	}
}

func TestValidateBoxScoresShootingConsistency(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*model.PlayerBoxScore)
	}{
		{"FGM over FGA", func(r *model.PlayerBoxScore) { r.FieldGoalsMade = 21 }},
		{"3PM over FGM", func(r *model.PlayerBoxScore) { r.ThreePointersMade = 11 }},
		{"3PM over 3PA", func(r *model.PlayerBoxScore) { r.ThreePointersMade = 12; r.ThreePointersAttempted = 11 }},
		{"FTM over FTA", func(r *model.PlayerBoxScore) { r.FreeThrowsMade = 6 }},
		{"3PA over FGA", func(r *model.PlayerBoxScore) { r.ThreePointersAttempted = 21 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			row := validBoxScore()
			tc.mutate(&row)
			out := newTestValidator(Config{}).ValidateBoxScores([]model.PlayerBoxScore{row})
			if out.IsValid() {
				t.Fatalf("expected a blocking issue, got warnings only: %v", out.Warnings)
			}
		})
	}
}

func TestValidateBoxScoresWarningsDoNotBlock(t *testing.T) {
	row := validBoxScore()
	row.SeasonYear = "2023/24"    // bad season format: warning
	row.TeamTricode = "gsw"       // bad tricode: warning
	row.Points = 31               // naive points mismatch: warning
	v := newTestValidator(Config{})
	out := v.ValidateBoxScores([]model.PlayerBoxScore{row})

	if !out.Success {
		t.Fatalf("warnings alone should not fail, errors: %v", out.Errors)
	}
	if out.WarningCount() < 3 {
		t.Fatalf("warnings = %d, want >= 3: %v", out.WarningCount(), out.Warnings)
	}
}

func TestValidateBoxScoresStrictMode(t *testing.T) {
	row := validBoxScore()
	row.TeamTricode = "gs"
	out := newTestValidator(Config{StrictMode: true}).ValidateBoxScores([]model.PlayerBoxScore{row})
	if out.Success {
		t.Fatal("strict mode should fail a batch with warnings")
	}
	if !out.IsValid() {
		t.Fatal("warnings are still non-blocking for IsValid")
	}
}

func TestValidateBoxScoresErrorCeiling(t *testing.T) {
	rows := make([]model.PlayerBoxScore, 50)
	for i := range rows {
		r := validBoxScore()
		r.PersonID = int64(i + 1)
		r.ReboundsTotal = 99 // one guaranteed error per row
		rows[i] = r
	}
	out := newTestValidator(Config{MaxErrors: 10}).ValidateBoxScores(rows)
	if got := out.ErrorCount(); got > 10 {
		t.Fatalf("errors = %d, want ceiling 10", got)
	}
	if out.Success {
		t.Fatal("batch at the ceiling must still fail")
	}
}

func TestRuleFailureBecomesCriticalIssue(t *testing.T) {
	v := newTestValidator(Config{})
	v.boxScoreRules = []boxScoreRule{
		{"exploding_rule", func([]model.PlayerBoxScore) []Issue { panic("boom") }},
	}
	out := v.ValidateBoxScores([]model.PlayerBoxScore{validBoxScore()})

	if out.Success {
		t.Fatal("a panicking rule must fail the batch")
	}
	if len(out.Errors) != 1 {
		t.Fatalf("errors = %v, want exactly one critical issue", out.Errors)
	}
	issue := out.Errors[0]
	if issue.Severity != SeverityCritical || issue.Rule != "exploding_rule" || issue.Row != -1 {
		t.Fatalf("unexpected issue: %+v", issue)
	}
}

func TestValidateTotals(t *testing.T) {
	t.Run("clean", func(t *testing.T) {
		out := newTestValidator(Config{}).ValidateTotals([]model.TeamGameTotal{validTotal()})
		if !out.Success {
			t.Fatalf("clean totals should pass: %v %v", out.Errors, out.Warnings)
		}
	})

	t.Run("bad win loss", func(t *testing.T) {
		row := validTotal()
		row.WinLoss = "X"
		out := newTestValidator(Config{}).ValidateTotals([]model.TeamGameTotal{row})
		if out.IsValid() {
			t.Fatal("invalid W/L must be a blocking issue")
		}
	})

	t.Run("negative stat", func(t *testing.T) {
		row := validTotal()
		row.Points = -3
		out := newTestValidator(Config{}).ValidateTotals([]model.TeamGameTotal{row})
		if out.IsValid() {
			t.Fatal("negative team stat must be a blocking issue")
		}
	})

	t.Run("bad abbreviation is a warning", func(t *testing.T) {
		row := validTotal()
		row.TeamAbbreviation = "GSWX"
		out := newTestValidator(Config{}).ValidateTotals([]model.TeamGameTotal{row})
		if !out.IsValid() || out.WarningCount() == 0 {
			t.Fatalf("abbreviation should warn, not block: %v %v", out.Errors, out.Warnings)
		}
	})

	t.Run("missing required fields", func(t *testing.T) {
		out := newTestValidator(Config{}).ValidateTotals([]model.TeamGameTotal{{}})
		if out.IsValid() {
			t.Fatal("empty totals row must fail required fields")
		}
	})
}

func TestIssueString(t *testing.T) {
	rowIssue := Issue{Field: "points", Message: "mismatch", Severity: SeverityWarning, Row: 3}
	if got := rowIssue.String(); got != "[warning] points (row 3): mismatch" {
		t.Fatalf("String() = %q", got)
	}
	batchIssue := Issue{Field: "validation_system", Message: "boom", Severity: SeverityCritical, Row: -1}
	if got := batchIssue.String(); got != "[critical] validation_system: boom" {
		t.Fatalf("String() = %q", got)
	}
}
