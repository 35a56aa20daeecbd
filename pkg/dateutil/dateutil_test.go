package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("  2025-02-28 ")
	require.NoError(t, err)
	assert.Equal(t, 28, d.Day())

	for _, bad := range []string{"", "2025-13-01", "2025-02-30", "01/15/2025", "garbage"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, "expected %q to fail", bad)
	}
}

func TestFormatDateRoundTrip(t *testing.T) {
	for _, s := range []string{"2024-02-29", "2025-01-01", "2025-12-31", "1999-07-04"} {
		assert.Equal(t, s, FormatDate(mustDate(t, s)))
	}

	// Local offsets must not shift the calendar day.
	loc := time.FixedZone("UTC-10", -10*3600)
	late := time.Date(2025, 3, 3, 23, 30, 0, 0, loc)
	assert.Equal(t, "2025-03-03", FormatDate(Normalize(late)))
}

func TestIsWeekday(t *testing.T) {
	tests := []struct {
		date string
		want bool
	}{
		{"2025-01-13", true},  // Monday
		{"2025-01-17", true},  // Friday
		{"2025-01-18", false}, // Saturday
		{"2025-01-19", false}, // Sunday
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsWeekday(mustDate(t, tt.date)), tt.date)
	}
}

func TestEachDay(t *testing.T) {
	var days []string
	EachDay(mustDate(t, "2025-01-30"), mustDate(t, "2025-02-02"), func(d time.Time) {
		days = append(days, FormatDate(d))
	})
	assert.Equal(t, []string{"2025-01-30", "2025-01-31", "2025-02-01", "2025-02-02"}, days)

	called := false
	EachDay(mustDate(t, "2025-02-02"), mustDate(t, "2025-01-30"), func(time.Time) { called = true })
	assert.False(t, called, "reversed range should not iterate")
}

func TestCountWeekdays(t *testing.T) {
	assert.Equal(t, 10, CountWeekdays(mustDate(t, "2025-02-01"), mustDate(t, "2025-02-14")))
	assert.Equal(t, 13, CountWeekdays(mustDate(t, "2025-01-15"), mustDate(t, "2025-01-31")))
	assert.Equal(t, 0, CountWeekdays(mustDate(t, "2025-02-01"), mustDate(t, "2025-02-02")))
}

func TestIntersect(t *testing.T) {
	s, e, ok := Intersect(mustDate(t, "2025-01-01"), mustDate(t, "2025-01-31"), mustDate(t, "2025-01-15"), mustDate(t, "2025-02-15"))
	require.True(t, ok)
	assert.Equal(t, "2025-01-15", FormatDate(s))
	assert.Equal(t, "2025-01-31", FormatDate(e))

	_, _, ok = Intersect(mustDate(t, "2025-01-01"), mustDate(t, "2025-01-10"), mustDate(t, "2025-01-11"), mustDate(t, "2025-01-20"))
	assert.False(t, ok)
}
