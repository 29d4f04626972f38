// Package cli holds small parsers shared by command flags.
package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Matches "2h", "2h ago", "3d", "1w ago", "1mo".
var sinceRegex = regexp.MustCompile(`^(\d+)\s*(mo|w|d|h|m)(\s+ago)?$`)

// ParseSince turns a --modified-since style expression into an instant in the
// past. It accepts durations ("2h", "3d ago", "1mo"), "today", "yesterday",
// weekday names (the most recent such day, today included), dates
// (2006-01-02) and RFC3339 timestamps.
func ParseSince(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}
	input := strings.ToLower(raw)

	switch input {
	case "today":
		return startOfDay(now), nil
	case "yesterday":
		return startOfDay(now).AddDate(0, 0, -1), nil
	}

	if t, ok := lastWeekday(strings.TrimPrefix(input, "last "), now); ok {
		return t, nil
	}

	if m := sinceRegex.FindStringSubmatch(input); m != nil {
		value, err := strconv.Atoi(m[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid relative time %q", raw)
		}
		return subtract(now, value, m[2]), nil
	}

	if t, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid time expression %q (try 2h, 3d ago, yesterday, monday or 2006-01-02)", raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func lastWeekday(name string, now time.Time) (time.Time, bool) {
	weekday, ok := weekdays[name]
	if !ok {
		return time.Time{}, false
	}
	base := startOfDay(now)
	delta := (int(base.Weekday()) - int(weekday) + 7) % 7
	return base.AddDate(0, 0, -delta), true
}

var weekdays = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tues": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thurs": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

func subtract(now time.Time, value int, unit string) time.Time {
	switch unit {
	case "mo":
		return now.AddDate(0, -value, 0)
	case "w":
		return now.AddDate(0, 0, -7*value)
	case "d":
		return now.AddDate(0, 0, -value)
	case "h":
		return now.Add(-time.Duration(value) * time.Hour)
	default:
		return now.Add(-time.Duration(value) * time.Minute)
	}
}
