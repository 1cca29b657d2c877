package usecase

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var yearOnly = regexp.MustCompile(`^\d{4}$`)

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01",
	"January 2006",
	"Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"01/2006",
}

// parseFlexibleDate accepts ISO-parseable strings, a "Month Year" pattern,
// or a bare 4-digit year (assumed January 1st). Unparseable input defaults
// to fallback: a missing date must not block ingestion of otherwise valid
// text.
func parseFlexibleDate(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	if yearOnly.MatchString(s) {
		year, _ := strconv.Atoi(s)
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}

// isOngoing reports whether an end-date string means the engagement is
// still running and should map to isCurrent with no end date.
func isOngoing(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "present", "current", "now", "ongoing":
		return true
	}
	return false
}
