// Package reader loads season CSV exports into domain rows. Each file's
// schema is detected from its name first, then its header; unknown files
// are reported, never guessed at. Rows whose identity columns cannot be
// coerced are skipped and counted, rows with bad stat cells fall back to
// zero so one stray cell does not discard a whole stat line.
package reader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

// Schema identifies which table a CSV file feeds.
type Schema string

const (
	SchemaBoxScores Schema = "box_scores"
	SchemaTotals    Schema = "totals"
	SchemaUnknown   Schema = "unknown"
)

// Result is the outcome of reading one file.
type Result struct {
	Path   string
	Schema Schema

	BoxScores []model.PlayerBoxScore
	Totals    []model.TeamGameTotal

	RowsRead    int
	RowsSkipped int
	// Errors holds one message per skipped row, capped at maxRowErrors.
	Errors []string
}

const maxRowErrors = 50

// Reader parses season CSV files.
type Reader struct {
	log zerolog.Logger
}

func New(logger zerolog.Logger) *Reader {
	return &Reader{log: logger.With().Str("component", "reader").Logger()}
}

// DetectSchema classifies a file by name, falling back to header sniffing.
func DetectSchema(path string, header []string) Schema {
	name := strings.ToLower(filepath.Base(path))
	switch {
	case strings.Contains(name, "box_scores"):
		return SchemaBoxScores
	case strings.Contains(name, "totals"):
		return SchemaTotals
	}
	cols := make(map[string]bool, len(header))
	for _, h := range header {
		cols[strings.TrimSpace(h)] = true
	}
	switch {
	case cols["personId"] && cols["gameId"]:
		return SchemaBoxScores
	case cols["TEAM_ID"] && cols["WL"]:
		return SchemaTotals
	}
	return SchemaUnknown
}

// ReadFile parses one CSV file into domain rows according to its schema.
func (r *Reader) ReadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return r.read(path, f)
}

func (r *Reader) read(path string, src io.Reader) (Result, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("read header of %s: %w", path, err)
	}

	result := Result{Path: path, Schema: DetectSchema(path, header)}
	if result.Schema == SchemaUnknown {
		return result, fmt.Errorf("cannot detect schema of %s", path)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}

	line := 1
	for {
		line++
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// malformed CSV line, skip and keep going
			result.RowsSkipped++
			result.addError(fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		row := rowView{index: index, record: record}
		switch result.Schema {
		case SchemaBoxScores:
			box, err := parseBoxScore(row)
			if err != nil {
				result.RowsSkipped++
				result.addError(fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			result.BoxScores = append(result.BoxScores, box)
		case SchemaTotals:
			total, err := parseTotals(row)
			if err != nil {
				result.RowsSkipped++
				result.addError(fmt.Sprintf("line %d: %v", line, err))
				continue
			}
			result.Totals = append(result.Totals, total)
		}
		result.RowsRead++
	}

	r.log.Info().
		Str("file", filepath.Base(path)).
		Str("schema", string(result.Schema)).
		Int("rows", result.RowsRead).
		Int("skipped", result.RowsSkipped).
		Msg("file read")
	return result, nil
}

func (res *Result) addError(msg string) {
	if len(res.Errors) < maxRowErrors {
		res.Errors = append(res.Errors, msg)
	}
}

// rowView resolves cells by header name with safe fallbacks.
type rowView struct {
	index  map[string]int
	record []string
}

func (r rowView) str(col string) string {
	i, ok := r.index[col]
	if !ok || i >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[i])
}

// intField coerces a numeric cell, defaulting bad or empty cells to zero.
// NBA exports render some counting stats as "12.0".
func (r rowView) intField(col string) int {
	s := r.str(col)
	if s == "" {
		return 0
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

func (r rowView) floatField(col string) float64 {
	s := r.str(col)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// int64Field coerces identity columns; these must parse or the row is bad.
func (r rowView) int64Field(col string) (int64, error) {
	s := r.str(col)
	if s == "" {
		return 0, fmt.Errorf("missing %s", col)
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// identity columns sometimes carry a float rendering too
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, fmt.Errorf("bad %s value %q", col, s)
		}
		return int64(f), nil
	}
	return v, nil
}

var dateLayouts = []string{"2006-01-02", "2006-01-02T15:04:05", time.RFC3339}

func (r rowView) dateField(col string) time.Time {
	s := r.str(col)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseBoxScore(row rowView) (model.PlayerBoxScore, error) {
	gameID, err := row.int64Field("gameId")
	if err != nil {
		return model.PlayerBoxScore{}, fmt.Errorf("box score row: %w", err)
	}
	personID, err := row.int64Field("personId")
	if err != nil {
		return model.PlayerBoxScore{}, fmt.Errorf("box score row: %w", err)
	}
	teamID, _ := row.int64Field("teamId")

	return model.PlayerBoxScore{
		GameID:   gameID,
		PersonID: personID,

		SeasonYear: row.str("season_year"),
		GameDate:   row.dateField("game_date"),
		Matchup:    row.str("matchup"),

		TeamID:      teamID,
		TeamCity:    row.str("teamCity"),
		TeamName:    row.str("teamName"),
		TeamTricode: row.str("teamTricode"),
		TeamSlug:    row.str("teamSlug"),

		PersonName: row.str("personName"),
		Position:   row.str("position"),
		Comment:    row.str("comment"),
		JerseyNum:  row.str("jerseyNum"),

		Minutes: row.str("minutes"),

		FieldGoalsMade:          row.intField("fieldGoalsMade"),
		FieldGoalsAttempted:     row.intField("fieldGoalsAttempted"),
		FieldGoalsPercentage:    row.floatField("fieldGoalsPercentage"),
		ThreePointersMade:       row.intField("threePointersMade"),
		ThreePointersAttempted:  row.intField("threePointersAttempted"),
		ThreePointersPercentage: row.floatField("threePointersPercentage"),
		FreeThrowsMade:          row.intField("freeThrowsMade"),
		FreeThrowsAttempted:     row.intField("freeThrowsAttempted"),
		FreeThrowsPercentage:    row.floatField("freeThrowsPercentage"),

		ReboundsOffensive: row.intField("reboundsOffensive"),
		ReboundsDefensive: row.intField("reboundsDefensive"),
		ReboundsTotal:     row.intField("reboundsTotal"),

		Assists:         row.intField("assists"),
		Steals:          row.intField("steals"),
		Blocks:          row.intField("blocks"),
		Turnovers:       row.intField("turnovers"),
		FoulsPersonal:   row.intField("foulsPersonal"),
		Points:          row.intField("points"),
		PlusMinusPoints: row.intField("plusMinusPoints"),
	}, nil
}

func parseTotals(row rowView) (model.TeamGameTotal, error) {
	gameID, err := row.int64Field("GAME_ID")
	if err != nil {
		return model.TeamGameTotal{}, fmt.Errorf("totals row: %w", err)
	}
	teamID, err := row.int64Field("TEAM_ID")
	if err != nil {
		return model.TeamGameTotal{}, fmt.Errorf("totals row: %w", err)
	}

	return model.TeamGameTotal{
		GameID: gameID,
		TeamID: teamID,

		SeasonYear:       row.str("SEASON_YEAR"),
		TeamAbbreviation: row.str("TEAM_ABBREVIATION"),
		TeamName:         row.str("TEAM_NAME"),
		GameDate:         row.dateField("GAME_DATE"),
		Matchup:          row.str("MATCHUP"),
		WinLoss:          row.str("WL"),

		MinutesPlayed:          row.floatField("MIN"),
		FieldGoalsMade:         row.intField("FGM"),
		FieldGoalsAttempted:    row.intField("FGA"),
		FieldGoalPct:           row.floatField("FG_PCT"),
		ThreePointersMade:      row.intField("FG3M"),
		ThreePointersAttempted: row.intField("FG3A"),
		ThreePointPct:          row.floatField("FG3_PCT"),
		FreeThrowsMade:         row.intField("FTM"),
		FreeThrowsAttempted:    row.intField("FTA"),
		FreeThrowPct:           row.floatField("FT_PCT"),
		ReboundsOffensive:      row.intField("OREB"),
		ReboundsDefensive:      row.intField("DREB"),
		ReboundsTotal:          row.intField("REB"),
		Assists:                row.intField("AST"),
		Turnovers:              row.floatField("TOV"),
		Steals:                 row.intField("STL"),
		Blocks:                 row.intField("BLK"),
		BlocksAgainst:          row.intField("BLKA"),
		FoulsPersonal:          row.intField("PF"),
		FoulsDrawn:             row.intField("PFD"),
		Points:                 row.intField("PTS"),
		PlusMinus:              row.floatField("PLUS_MINUS"),
	}, nil
}

// DiscoverCSVFiles lists the CSV files under dir, sorted by name so multi
// part exports ingest in order.
func DiscoverCSVFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return matches, nil
}
