package event

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format of Event.Date
const DateLayout = "2006-01-02"

// NormalizeDate reduces a datetime attribute such as "2026-03-14T20:00:00-0600"
// to its leading YYYY-MM-DD part. Shorter values are returned trimmed but otherwise
// untouched, since the site sometimes only exposes a partial date.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if runes := []rune(raw); len(runes) > len(DateLayout) {
		return string(runes[:len(DateLayout)])
	}
	return raw
}

// ParseDate parses Event.Date. Returns time.Time{} (zero value) if the date is
// missing or not a calendar date.
func ParseDate(date string) time.Time {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasCalendarDate reports whether the event date is a full YYYY-MM-DD value.
func (e *Event) HasCalendarDate() bool {
	return !ParseDate(e.Date).IsZero()
}
