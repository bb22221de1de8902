package service

import (
	"regexp"

	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

var (
	seasonPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	monthPattern  = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)
)

func normalizePage(p repository.Page) repository.Page {
	limit := p.Limit
	offset := p.Offset
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}

// isValidSeason accepts the NBA YYYY-YY season form, e.g. "2023-24".
func isValidSeason(s string) bool { return seasonPattern.MatchString(s) }

// isValidMonth accepts the YYYY-MM rollup key, e.g. "2023-11".
func isValidMonth(s string) bool { return monthPattern.MatchString(s) }
