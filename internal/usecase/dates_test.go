package usecase

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseFlexibleDate(t *testing.T) {
	fallback := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"iso date", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"iso year-month", "2024-03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"short month year", "Jan 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"long month year", "January 2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"bare year", "2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"numeric month year", "03/2024", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
		{"unparseable defaults to processing date", "sometime back", fallback},
		{"empty defaults to processing date", "", fallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFlexibleDate(tt.input, fallback))
		})
	}
}

func TestParseFlexibleDateMonthYearLandsInMonth(t *testing.T) {
	got := parseFlexibleDate("Jan 2024", time.Now())
	assert.Equal(t, 2024, got.Year())
	assert.Equal(t, time.January, got.Month())
}

func TestIsOngoing(t *testing.T) {
	for _, s := range []string{"Present", "present", "CURRENT", "now", " ongoing "} {
		assert.True(t, isOngoing(s), "%q should read as ongoing", s)
	}
	for _, s := range []string{"", "2024", "presently employed"} {
		assert.False(t, isOngoing(s), "%q should not read as ongoing", s)
	}
}

func TestEnsureScheme(t *testing.T) {
	assert.Equal(t, "https://github.com/jane", ensureScheme("github.com/jane"))
	assert.Equal(t, "http://a.example", ensureScheme("http://a.example"))
	assert.Equal(t, "", ensureScheme("  "))
}

func TestNormalizeURLKey(t *testing.T) {
	assert.Equal(t, normalizeURLKey("https://www.example.com/app/"), normalizeURLKey("example.com/app"))
	assert.NotEqual(t, normalizeURLKey("a.example"), normalizeURLKey("b.example"))
	assert.Equal(t, "", normalizeURLKey(""))
}
