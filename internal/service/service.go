// Package service holds the read-side use cases built on the processed and
// trend stores. Kept intentionally lean: only use-case coordination,
// validation and domain error shaping.
package service

import (
	"context"
	"errors"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

// ErrInvalidInput is the marker error for aggregated validation failures.
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// FieldError describes a single invalid field in a request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	type feIface interface{ Fields() []FieldError }
	if v, ok := err.(feIface); ok && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// QueryService defines the analytical read use cases.
type QueryService interface {
	// PlayerSeason returns a player's processed games for one season,
	// ordered by game date.
	PlayerSeason(ctx context.Context, personID int64, season string) ([]model.PlayerProcessed, error)
	// PlayerGames pages through a player's processed games across seasons,
	// most recent first.
	PlayerGames(ctx context.Context, personID int64, page repository.Page) (repository.PageResult[model.PlayerProcessed], error)
	// TopPerformances ranks single-game performances by a whitelisted metric.
	TopPerformances(ctx context.Context, metric, season string, limit int) ([]model.PlayerProcessed, error)
	// FindPlayers resolves a name fragment to players present in the
	// processed store.
	FindPlayers(ctx context.Context, name string) ([]model.PlayerRef, error)
	// PlayerTrends returns a player's monthly rollups, oldest first.
	PlayerTrends(ctx context.Context, personID int64) ([]model.PlayerMonthlyTrend, error)
	// PlayerTrendRange returns rollups inside an inclusive YYYY-MM range.
	PlayerTrendRange(ctx context.Context, personID int64, fromMonth, toMonth string) ([]model.PlayerMonthlyTrend, error)
	// PlayerMonth fetches one monthly rollup row.
	PlayerMonth(ctx context.Context, personID int64, season, monthYear string) (model.PlayerMonthlyTrend, error)
}
