package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
	"github.com/maxviazov/nba-analytics-pipeline/internal/repository"
	"github.com/maxviazov/nba-analytics-pipeline/internal/service"
)

type fakeProcessedRepo struct {
	games      []model.PlayerProcessed
	lastMetric string
	lastLimit  int
	lastPage   repository.Page
}

func (f *fakeProcessedRepo) UpsertProcessed(context.Context, []model.PlayerProcessed) (repository.UpsertResult, error) {
	return repository.UpsertResult{}, nil
}
func (f *fakeProcessedRepo) ListPlayerIDsBySeason(context.Context, string) ([]int64, error) {
	return nil, nil
}
func (f *fakeProcessedRepo) ListByPlayerSeason(_ context.Context, personID int64, season string) ([]model.PlayerProcessed, error) {
	var out []model.PlayerProcessed
	for _, g := range f.games {
		if g.PersonID == personID && g.SeasonYear == season {
			out = append(out, g)
		}
	}
	return out, nil
}
func (f *fakeProcessedRepo) ListByPlayer(_ context.Context, personID int64, p repository.Page) (repository.PageResult[model.PlayerProcessed], error) {
	f.lastPage = p
	return repository.PageResult[model.PlayerProcessed]{Items: f.games, Total: len(f.games)}, nil
}
func (f *fakeProcessedRepo) TopByMetric(_ context.Context, metric, season string, limit int) ([]model.PlayerProcessed, error) {
	f.lastMetric = metric
	f.lastLimit = limit
	return f.games, nil
}
func (f *fakeProcessedRepo) SearchPlayers(_ context.Context, name string) ([]model.PlayerRef, error) {
	seen := make(map[int64]bool)
	var refs []model.PlayerRef
	for _, g := range f.games {
		if seen[g.PersonID] || !strings.Contains(strings.ToLower(g.PersonName), strings.ToLower(name)) {
			continue
		}
		seen[g.PersonID] = true
		refs = append(refs, model.PlayerRef{PersonID: g.PersonID, PersonName: g.PersonName})
	}
	return refs, nil
}

var _ repository.ProcessedRepository = (*fakeProcessedRepo)(nil)

type fakeTrendsRepo struct {
	rows map[string]model.PlayerMonthlyTrend
}

func (f *fakeTrendsRepo) UpsertTrends(context.Context, []model.PlayerMonthlyTrend) (repository.UpsertResult, error) {
	return repository.UpsertResult{}, nil
}
func (f *fakeTrendsRepo) ListByPlayer(_ context.Context, personID int64) ([]model.PlayerMonthlyTrend, error) {
	var out []model.PlayerMonthlyTrend
	for _, r := range f.rows {
		if r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeTrendsRepo) ListByPlayerRange(_ context.Context, personID int64, fromMonth, toMonth string) ([]model.PlayerMonthlyTrend, error) {
	var out []model.PlayerMonthlyTrend
	for _, r := range f.rows {
		if r.PersonID == personID && r.MonthYear >= fromMonth && r.MonthYear <= toMonth {
			out = append(out, r)
		}
	}
	return out, nil
}
func (f *fakeTrendsRepo) GetMonth(_ context.Context, personID int64, season, monthYear string) (model.PlayerMonthlyTrend, error) {
	key := season + "/" + monthYear
	if r, ok := f.rows[key]; ok && r.PersonID == personID {
		return r, nil
	}
	return model.PlayerMonthlyTrend{}, repository.ErrNotFound
}

var _ repository.TrendsRepository = (*fakeTrendsRepo)(nil)

func newQueryService(processed *fakeProcessedRepo, trends *fakeTrendsRepo) service.QueryService {
	return service.NewQueryService(processed, trends, zerolog.New(io.Discard))
}

func hasFieldError(err error, field string) bool {
	for _, fe := range service.FieldErrors(err) {
		if fe.Field == field {
			return true
		}
	}
	return false
}

func TestPlayerSeasonValidation(t *testing.T) {
	svc := newQueryService(&fakeProcessedRepo{}, &fakeTrendsRepo{})
	cases := []struct {
		name     string
		personID int64
		season   string
		field    string
	}{
		{"bad person id", 0, "2023-24", "person_id"},
		{"bad season", 42, "2023", "season"},
		{"both bad", -1, "nope", "person_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlayerSeason(context.Background(), tc.personID, tc.season)
			if !errors.Is(err, service.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if !hasFieldError(err, tc.field) {
				t.Fatalf("missing field error %q in %v", tc.field, service.FieldErrors(err))
			}
		})
	}
}

func TestPlayerSeasonReturnsGames(t *testing.T) {
	repo := &fakeProcessedRepo{games: []model.PlayerProcessed{
		{PersonID: 42, SeasonYear: "2023-24", Points: 30},
		{PersonID: 42, SeasonYear: "2022-23", Points: 25},
		{PersonID: 7, SeasonYear: "2023-24", Points: 12},
	}}
	svc := newQueryService(repo, &fakeTrendsRepo{})

	games, err := svc.PlayerSeason(context.Background(), 42, "2023-24")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(games) != 1 || games[0].Points != 30 {
		t.Fatalf("games = %+v", games)
	}
}

func TestPlayerGamesNormalizesPage(t *testing.T) {
	repo := &fakeProcessedRepo{}
	svc := newQueryService(repo, &fakeTrendsRepo{})

	if _, err := svc.PlayerGames(context.Background(), 42, repository.Page{Limit: -5, Offset: -3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastPage.Limit != 50 || repo.lastPage.Offset != 0 {
		t.Fatalf("page not normalized: %+v", repo.lastPage)
	}

	if _, err := svc.PlayerGames(context.Background(), 0, repository.Page{}); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestTopPerformancesValidation(t *testing.T) {
	repo := &fakeProcessedRepo{}
	svc := newQueryService(repo, &fakeTrendsRepo{})

	_, err := svc.TopPerformances(context.Background(), "", "bad-season", 10)
	if !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
	if !hasFieldError(err, "metric") || !hasFieldError(err, "season") {
		t.Fatalf("field errors = %v", service.FieldErrors(err))
	}

	if _, err := svc.TopPerformances(context.Background(), "true_shooting_pct", "2023-24", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastMetric != "true_shooting_pct" || repo.lastLimit != 10 {
		t.Fatalf("repo call = %q/%d", repo.lastMetric, repo.lastLimit)
	}
}

func TestPlayerMonth(t *testing.T) {
	trends := &fakeTrendsRepo{rows: map[string]model.PlayerMonthlyTrend{
		"2023-24/2023-11": {PersonID: 42, SeasonYear: "2023-24", MonthYear: "2023-11", AvgPoints: 28},
	}}
	svc := newQueryService(&fakeProcessedRepo{}, trends)

	t.Run("found", func(t *testing.T) {
		row, err := svc.PlayerMonth(context.Background(), 42, "2023-24", "2023-11")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if row.AvgPoints != 28 {
			t.Fatalf("row = %+v", row)
		}
	})

	t.Run("not found maps through", func(t *testing.T) {
		_, err := svc.PlayerMonth(context.Background(), 42, "2023-24", "2024-03")
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("bad month format", func(t *testing.T) {
		_, err := svc.PlayerMonth(context.Background(), 42, "2023-24", "2023-13")
		if !errors.Is(err, service.ErrInvalidInput) || !hasFieldError(err, "month_year") {
			t.Fatalf("err = %v", err)
		}
	})
}

func TestFindPlayers(t *testing.T) {
	repo := &fakeProcessedRepo{games: []model.PlayerProcessed{
		{PersonID: 201939, PersonName: "Stephen Curry", SeasonYear: "2023-24"},
		{PersonID: 201939, PersonName: "Stephen Curry", SeasonYear: "2022-23"},
		{PersonID: 2544, PersonName: "LeBron James", SeasonYear: "2023-24"},
	}}
	svc := newQueryService(repo, &fakeTrendsRepo{})

	refs, err := svc.FindPlayers(context.Background(), "curry")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(refs) != 1 || refs[0].PersonID != 201939 {
		t.Fatalf("refs = %+v", refs)
	}

	if _, err := svc.FindPlayers(context.Background(), " x "); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput for a one-letter fragment", err)
	}
}

func TestPlayerTrendRange(t *testing.T) {
	trends := &fakeTrendsRepo{rows: map[string]model.PlayerMonthlyTrend{
		"a": {PersonID: 42, MonthYear: "2023-11"},
		"b": {PersonID: 42, MonthYear: "2023-12"},
		"c": {PersonID: 42, MonthYear: "2024-02"},
	}}
	svc := newQueryService(&fakeProcessedRepo{}, trends)

	rows, err := svc.PlayerTrendRange(context.Background(), 42, "2023-11", "2024-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want the two months inside the range", len(rows))
	}

	_, err = svc.PlayerTrendRange(context.Background(), 42, "2024-01", "2023-11")
	if !errors.Is(err, service.ErrInvalidInput) || !hasFieldError(err, "from_month") {
		t.Fatalf("err = %v, want inverted range rejected", err)
	}

	_, err = svc.PlayerTrendRange(context.Background(), 42, "2023-13", "2024-01")
	if !errors.Is(err, service.ErrInvalidInput) || !hasFieldError(err, "from_month") {
		t.Fatalf("err = %v, want bad month rejected", err)
	}
}

func TestPlayerTrends(t *testing.T) {
	trends := &fakeTrendsRepo{rows: map[string]model.PlayerMonthlyTrend{
		"a": {PersonID: 42, MonthYear: "2023-11"},
		"b": {PersonID: 42, MonthYear: "2023-12"},
		"c": {PersonID: 9, MonthYear: "2023-11"},
	}}
	svc := newQueryService(&fakeProcessedRepo{}, trends)

	rows, err := svc.PlayerTrends(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	if _, err := svc.PlayerTrends(context.Background(), 0); !errors.Is(err, service.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
