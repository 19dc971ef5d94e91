package model

import (
	"fmt"
	"time"
)

const (
	// TimestampLayout is how every timestamp is stored and returned:
	// UTC, whole seconds, no offset suffix.
	TimestampLayout = "2006-01-02T15:04:05"

	// DayLayout is the calendar-day format used by queries and day keys.
	DayLayout = "2006-01-02"
)

// Accepted input layouts, tried in order. Go's parser accepts a fractional
// second after the seconds field even when the layout has none.
var timestampLayouts = []string{
	time.RFC3339,
	TimestampLayout,
	"2006-01-02 15:04:05",
	DayLayout,
}

// ParseTimestamp parses a client-supplied timestamp. Values without an offset
// are taken as UTC; values with one are converted to UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("model: unrecognised timestamp %q", s)
}

// FormatTimestamp renders t in TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// DayOf returns the calendar day of t in DayLayout.
func DayOf(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay validates a strict YYYY-MM-DD date and returns it unchanged.
func ParseDay(s string) (string, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return "", fmt.Errorf("model: unrecognised date %q", s)
	}
	return t.Format(DayLayout), nil
}
