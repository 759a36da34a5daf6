package core

import (
	"fmt"
	"strings"
	"time"
)

// DayFormat is the calendar day layout used everywhere: YYYY-MM-DD.
const DayFormat = "2006-01-02"

// Day boundaries are computed in UTC. The date stored on an entry is the
// UTC calendar day of its start timestamp, so daily and weekly windows are
// stable regardless of where the caller runs.

// DayOf returns the UTC calendar day of an epoch-millisecond timestamp.
func DayOf(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(DayFormat)
}

// Today returns the current UTC calendar day.
func Today(now time.Time) string {
	return now.UTC().Format(DayFormat)
}

// ParseDay parses a YYYY-MM-DD day string as a UTC midnight instant.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayFormat, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// WeekOf returns the Sunday..Saturday week containing the given day, as an
// inclusive day-string range. The week starts by subtracting the weekday
// index (Sunday = 0) from the day.
func WeekOf(day time.Time) (startDate, endDate string) {
	day = day.UTC()
	start := day.AddDate(0, 0, -int(day.Weekday()))
	end := start.AddDate(0, 0, 6)
	return start.Format(DayFormat), end.Format(DayFormat)
}

// ValidateRange checks that both bounds parse and start <= end.
func ValidateRange(startDate, endDate string) error {
	start, err := ParseDay(startDate)
	if err != nil {
		return err
	}
	end, err := ParseDay(endDate)
	if err != nil {
		return err
	}
	if start.After(end) {
		return ErrInvalidDateRange
	}
	return nil
}
