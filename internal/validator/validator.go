// Package validator applies the domain business rules to batches of raw
// rows before they reach the store. Rules are first-class functions grouped
// by category; every finding is a severity-tagged issue, collected and
// never thrown. A rule that panics becomes a single critical issue so one
// broken rule cannot abort validation of the rest.
package validator

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

// Severity levels for validation issues.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// blocking reports whether the severity counts against the error ceiling
// and the batch's pass/fail verdict.
func (s Severity) blocking() bool {
	return s == SeverityError || s == SeverityCritical
}

// Issue is a single validation finding. Row is the zero-based batch index,
// or -1 for batch-level findings. Issues are never mutated after creation.
type Issue struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Row      int      `json:"row"`
	Value    any      `json:"value,omitempty"`
	Rule     string   `json:"rule,omitempty"`
}

func (i Issue) String() string {
	location := ""
	if i.Row >= 0 {
		location = fmt.Sprintf(" (row %d)", i.Row)
	}
	return fmt.Sprintf("[%s] %s%s: %s", i.Severity, i.Field, location, i.Message)
}

// Outcome aggregates a batch's issues. Success is "zero errors, and zero
// warnings when strict mode is on".
type Outcome struct {
	Success   bool             `json:"success"`
	TotalRows int              `json:"total_rows"`
	Errors    []Issue          `json:"errors"`
	Warnings  []Issue          `json:"warnings"`
	Summary   map[Severity]int `json:"summary"`
}

// ErrorCount returns how many blocking issues were collected.
func (o Outcome) ErrorCount() int { return len(o.Errors) }

// WarningCount returns how many non-blocking issues were collected.
func (o Outcome) WarningCount() int { return len(o.Warnings) }

// IsValid reports whether the batch has no blocking issues, regardless of
// strict mode.
func (o Outcome) IsValid() bool { return len(o.Errors) == 0 }

// DefaultMaxErrors bounds validation cost on pathological inputs.
const DefaultMaxErrors = 100

// Config tunes a Validator.
type Config struct {
	// StrictMode makes warnings fail the batch too.
	StrictMode bool
	// MaxErrors stops collecting new issues once this many blocking
	// issues exist; issues collected so far are still returned.
	// Zero means DefaultMaxErrors.
	MaxErrors int
}

// boxScoreRule is one named check over a box-scores batch.
type boxScoreRule struct {
	name  string
	check func(rows []model.PlayerBoxScore) []Issue
}

// totalsRule is one named check over a totals batch.
type totalsRule struct {
	name  string
	check func(rows []model.TeamGameTotal) []Issue
}

// Validator runs the ordered rule categories for a schema over a batch.
type Validator struct {
	strictMode bool
	maxErrors  int
	log        zerolog.Logger

	boxScoreRules []boxScoreRule
	totalsRules   []totalsRule
}

// New builds a Validator with the full rule set registered in category
// order: required-fields, data-types, business-rules, cross-field.
func New(cfg Config, logger zerolog.Logger) *Validator {
	maxErrors := cfg.MaxErrors
	if maxErrors <= 0 {
		maxErrors = DefaultMaxErrors
	}
	return &Validator{
		strictMode:    cfg.StrictMode,
		maxErrors:     maxErrors,
		log:           logger.With().Str("component", "validator").Logger(),
		boxScoreRules: boxScoreRules(),
		totalsRules:   totalsRules(),
	}
}

// ValidateBoxScores runs every box-scores rule over the batch.
func (v *Validator) ValidateBoxScores(rows []model.PlayerBoxScore) Outcome {
	collector := newCollector(v.maxErrors)
	for _, rule := range v.boxScoreRules {
		if collector.full() {
			v.log.Warn().Int("max_errors", v.maxErrors).Msg("stopping validation at error ceiling")
			break
		}
		collector.addAll(v.runBoxScoreRule(rule, rows))
	}
	return collector.outcome(len(rows), v.strictMode)
}

// ValidateTotals runs every totals rule over the batch.
func (v *Validator) ValidateTotals(rows []model.TeamGameTotal) Outcome {
	collector := newCollector(v.maxErrors)
	for _, rule := range v.totalsRules {
		if collector.full() {
			v.log.Warn().Int("max_errors", v.maxErrors).Msg("stopping validation at error ceiling")
			break
		}
		collector.addAll(v.runTotalsRule(rule, rows))
	}
	return collector.outcome(len(rows), v.strictMode)
}

func (v *Validator) runBoxScoreRule(rule boxScoreRule, rows []model.PlayerBoxScore) (issues []Issue) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Error().Str("rule", rule.name).Any("panic", r).Msg("validation rule failed")
			issues = []Issue{ruleFailure(rule.name, r)}
		}
	}()
	return rule.check(rows)
}

func (v *Validator) runTotalsRule(rule totalsRule, rows []model.TeamGameTotal) (issues []Issue) {
	defer func() {
		if r := recover(); r != nil {
			v.log.Error().Str("rule", rule.name).Any("panic", r).Msg("validation rule failed")
			issues = []Issue{ruleFailure(rule.name, r)}
		}
	}()
	return rule.check(rows)
}

func ruleFailure(name string, cause any) Issue {
	return Issue{
		Field:    "validation_system",
		Message:  fmt.Sprintf("internal validation error: %v", cause),
		Severity: SeverityCritical,
		Row:      -1,
		Rule:     name,
	}
}

// collector splits issues by severity and enforces the error ceiling.
type collector struct {
	maxErrors int
	errors    []Issue
	warnings  []Issue
}

func newCollector(maxErrors int) *collector {
	return &collector{maxErrors: maxErrors}
}

func (c *collector) full() bool { return len(c.errors) >= c.maxErrors }

func (c *collector) addAll(issues []Issue) {
	for _, issue := range issues {
		if issue.Severity.blocking() {
			if c.full() {
				return
			}
			c.errors = append(c.errors, issue)
		} else {
			c.warnings = append(c.warnings, issue)
		}
	}
}

func (c *collector) outcome(totalRows int, strict bool) Outcome {
	summary := make(map[Severity]int)
	for _, issue := range c.errors {
		summary[issue.Severity]++
	}
	for _, issue := range c.warnings {
		summary[issue.Severity]++
	}
	success := len(c.errors) == 0 && (!strict || len(c.warnings) == 0)
	return Outcome{
		Success:   success,
		TotalRows: totalRows,
		Errors:    c.errors,
		Warnings:  c.warnings,
		Summary:   summary,
	}
}
