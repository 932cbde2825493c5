package dates

import (
	"log/slog"
	"time"

	"github.com/araddon/dateparse"
)

const (
	// FeedLayout is the RFC 822 style format Google News feeds use.
	FeedLayout = "Mon, 02 Jan 2006 15:04:05 MST"

	isoLayout      = "2006-01-02T15:04:05"
	dateOnlyLayout = "2006-01-02"
)

// publishedLayouts are tried in order by ParsePublished. The feed-native
// layout goes first because nearly every entry uses it.
var publishedLayouts = []string{
	FeedLayout,
	time.RFC3339,
	isoLayout,
	dateOnlyLayout,
}

// ParsePublished parses a feed-entry publish date string. The boolean
// reports whether any known layout matched; callers decide how to treat
// values that did not parse.
func ParsePublished(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseInput parses a caller-supplied date window bound. It accepts
// anything dateparse recognizes (date-only, date with time, RFC 3339).
// An empty string yields fallback silently; an unparseable one is
// logged and also yields fallback.
func ParseInput(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		slog.Warn("unparseable date, using default", "input", s, "default", fallback.Format(dateOnlyLayout))
		return fallback
	}
	return t
}

// Day truncates t to its civil date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InRange reports whether t falls within [from, to] at calendar-date
// granularity, inclusive on both ends.
func InRange(t, from, to time.Time) bool {
	d := Day(t)
	return !d.Before(Day(from)) && !d.After(Day(to))
}

// DayKey formats t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(dateOnlyLayout)
}
