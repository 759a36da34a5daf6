package core

import (
	"errors"
	"testing"
	"time"
)

func TestDayOf(t *testing.T) {
	tests := []struct {
		name string
		ms   int64
		want string
	}{
		{"epoch", 0, "1970-01-01"},
		{"midday UTC", time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC).UnixMilli(), "2024-01-10"},
		{"just before UTC midnight", time.Date(2024, 1, 10, 23, 59, 59, 0, time.UTC).UnixMilli(), "2024-01-10"},
		{"just after UTC midnight", time.Date(2024, 1, 11, 0, 0, 1, 0, time.UTC).UnixMilli(), "2024-01-11"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayOf(tt.ms); got != tt.want {
				t.Fatalf("DayOf(%d) = %q, want %q", tt.ms, got, tt.want)
			}
		})
	}
}

func TestDayOfUsesUTC(t *testing.T) {
	// 2024-01-10 23:30 in UTC is already 2024-01-11 in UTC+2; the stored
	// day must follow UTC regardless.
	ms := time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC).UnixMilli()
	if got := DayOf(ms); got != "2024-01-10" {
		t.Fatalf("DayOf = %q, want 2024-01-10", got)
	}
}

func TestParseDay(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid", "2024-01-10", false},
		{"valid with spaces", " 2024-01-10 ", false},
		{"wrong layout", "10/01/2024", true},
		{"missing day", "2024-01", true},
		{"empty", "", true},
		{"garbage", "not-a-date", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDay(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDate) {
					t.Fatalf("ParseDay(%q) error = %v, want ErrInvalidDate", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDay(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestWeekOf(t *testing.T) {
	tests := []struct {
		name      string
		day       time.Time
		wantStart string
		wantEnd   string
	}{
		{
			"wednesday mid-week",
			time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			"2024-01-07", "2024-01-13",
		},
		{
			"sunday is its own week start",
			time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC),
			"2024-01-07", "2024-01-13",
		},
		{
			"saturday is week end",
			time.Date(2024, 1, 13, 0, 0, 0, 0, time.UTC),
			"2024-01-07", "2024-01-13",
		},
		{
			"week spanning month boundary",
			time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			"2024-01-28", "2024-02-03",
		},
		{
			"week spanning year boundary",
			time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
			"2023-12-31", "2024-01-06",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := WeekOf(tt.day)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Fatalf("WeekOf(%v) = %q..%q, want %q..%q",
					tt.day, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestValidateRange(t *testing.T) {
	tests := []struct {
		name    string
		start   string
		end     string
		wantErr error
	}{
		{"valid range", "2024-01-01", "2024-01-31", nil},
		{"single day", "2024-01-10", "2024-01-10", nil},
		{"inverted", "2024-01-31", "2024-01-01", ErrInvalidDateRange},
		{"bad start", "nope", "2024-01-31", ErrInvalidDate},
		{"bad end", "2024-01-01", "nope", ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRange(tt.start, tt.end)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
