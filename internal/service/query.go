package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
)

type queryService struct {
	processed repository.ProcessedRepository
	trends    repository.TrendsRepository
	log       zerolog.Logger
}

func NewQueryService(processed repository.ProcessedRepository, trends repository.TrendsRepository, logger zerolog.Logger) QueryService {
	l := logger.With().Str("module", "service").Str("component", "query").Logger()
	return &queryService{processed: processed, trends: trends, log: l}
}

func (s *queryService) PlayerSeason(ctx context.Context, personID int64, season string) ([]model.PlayerProcessed, error) {
	var ferrs []FieldError
	if personID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "person_id", Message: "must be > 0"})
	}
	if !isValidSeason(season) {
		ferrs = append(ferrs, FieldError{Field: "season", Message: "must be in YYYY-YY format"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}

	games, err := s.processed.ListByPlayerSeason(ctx, personID, season)
	if err != nil {
		s.log.Error().Err(err).Int64("person_id", personID).Str("season", season).Msg("list player season failed")
		return nil, err
	}
	return games, nil
}

func (s *queryService) PlayerGames(ctx context.Context, personID int64, page repository.Page) (repository.PageResult[model.PlayerProcessed], error) {
	if personID <= 0 {
		return repository.PageResult[model.PlayerProcessed]{}, newInvalidInput([]FieldError{{Field: "person_id", Message: "must be > 0"}})
	}
	p := normalizePage(page)
	res, err := s.processed.ListByPlayer(ctx, personID, p)
	if err != nil {
		s.log.Error().Err(err).Int64("person_id", personID).Int("limit", p.Limit).Int("offset", p.Offset).Msg("list player games failed")
		return repository.PageResult[model.PlayerProcessed]{}, err
	}
	return res, nil
}

func (s *queryService) TopPerformances(ctx context.Context, metric, season string, limit int) ([]model.PlayerProcessed, error) {
	start := time.Now()

	var ferrs []FieldError
	if metric == "" {
		ferrs = append(ferrs, FieldError{Field: "metric", Message: "must not be empty"})
	}
	if !isValidSeason(season) {
		ferrs = append(ferrs, FieldError{Field: "season", Message: "must be in YYYY-YY format"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}

	rows, err := s.processed.TopByMetric(ctx, metric, season, limit)
	if err != nil {
		s.log.Error().Err(err).Str("metric", metric).Str("season", season).Msg("top performances failed")
		return nil, err
	}
	s.log.Debug().Dur("took", time.Since(start)).Str("metric", metric).Int("rows", len(rows)).Msg("top performances served")
	return rows, nil
}

func (s *queryService) FindPlayers(ctx context.Context, name string) ([]model.PlayerRef, error) {
	if len(strings.TrimSpace(name)) < 2 {
		return nil, newInvalidInput([]FieldError{{Field: "name", Message: "must be at least 2 characters"}})
	}
	refs, err := s.processed.SearchPlayers(ctx, strings.TrimSpace(name))
	if err != nil {
		s.log.Error().Err(err).Str("name", name).Msg("player search failed")
		return nil, err
	}
	return refs, nil
}

func (s *queryService) PlayerTrendRange(ctx context.Context, personID int64, fromMonth, toMonth string) ([]model.PlayerMonthlyTrend, error) {
	var ferrs []FieldError
	if personID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "person_id", Message: "must be > 0"})
	}
	if !isValidMonth(fromMonth) {
		ferrs = append(ferrs, FieldError{Field: "from_month", Message: "must be in YYYY-MM format"})
	}
	if !isValidMonth(toMonth) {
		ferrs = append(ferrs, FieldError{Field: "to_month", Message: "must be in YYYY-MM format"})
	}
	if len(ferrs) == 0 && fromMonth > toMonth {
		ferrs = append(ferrs, FieldError{Field: "from_month", Message: "must not be after to_month"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return nil, err
	}

	rows, err := s.trends.ListByPlayerRange(ctx, personID, fromMonth, toMonth)
	if err != nil {
		s.log.Error().Err(err).Int64("person_id", personID).Str("from", fromMonth).Str("to", toMonth).Msg("trend range failed")
		return nil, err
	}
	return rows, nil
}

func (s *queryService) PlayerTrends(ctx context.Context, personID int64) ([]model.PlayerMonthlyTrend, error) {
	if personID <= 0 {
		return nil, newInvalidInput([]FieldError{{Field: "person_id", Message: "must be > 0"}})
	}
	rows, err := s.trends.ListByPlayer(ctx, personID)
	if err != nil {
		s.log.Error().Err(err).Int64("person_id", personID).Msg("list player trends failed")
		return nil, err
	}
	return rows, nil
}

func (s *queryService) PlayerMonth(ctx context.Context, personID int64, season, monthYear string) (model.PlayerMonthlyTrend, error) {
	var ferrs []FieldError
	if personID <= 0 {
		ferrs = append(ferrs, FieldError{Field: "person_id", Message: "must be > 0"})
	}
	if !isValidSeason(season) {
		ferrs = append(ferrs, FieldError{Field: "season", Message: "must be in YYYY-YY format"})
	}
	if !isValidMonth(monthYear) {
		ferrs = append(ferrs, FieldError{Field: "month_year", Message: "must be in YYYY-MM format"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return model.PlayerMonthlyTrend{}, err
	}
	return s.trends.GetMonth(ctx, personID, season, monthYear)
}

var _ QueryService = (*queryService)(nil)
