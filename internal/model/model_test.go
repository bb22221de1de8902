package model_test

import (
	"testing"
	"time"

	"github.com/maxviazov/nba-analytics-pipeline/internal/model"
)

func TestParseMinutes(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"mm:ss", "34:30", 34.5, false},
		{"mm:ss zero seconds", "12:00", 12, false},
		{"plain decimal", "27.5", 27.5, false},
		{"plain integer", "31", 31, false},
		{"empty means dnp", "", 0, false},
		{"zero", "0", 0, false},
		{"whitespace", "  18:15 ", 18.25, false},
		{"seconds out of range", "10:75", 0, true},
		{"garbage", "abc", 0, true},
		{"garbage seconds", "10:xx", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := model.ParseMinutes(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tc.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("ParseMinutes(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestPlayerBoxScoreIsDNP(t *testing.T) {
	cases := []struct {
		name string
		row  model.PlayerBoxScore
		want bool
	}{
		{"empty minutes", model.PlayerBoxScore{Minutes: ""}, true},
		{"zero minutes", model.PlayerBoxScore{Minutes: "0"}, true},
		{"zero clock", model.PlayerBoxScore{Minutes: "0:00"}, true},
		{"dnp comment", model.PlayerBoxScore{Minutes: "5:00", Comment: "DNP - Coach's Decision"}, true},
		{"played", model.PlayerBoxScore{Minutes: "34:12"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.row.IsDNP(); got != tc.want {
				t.Fatalf("IsDNP() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	d := time.Date(2023, time.November, 5, 19, 30, 0, 0, time.UTC)
	if got := model.MonthKey(d); got != "2023-11" {
		t.Fatalf("MonthKey = %q, want 2023-11", got)
	}
}
