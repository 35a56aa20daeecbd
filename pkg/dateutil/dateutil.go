package dateutil

import (
	"strings"
	"time"
)

// Layout is the calendar-date layout used for every date string in splittax.
const Layout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into UTC midnight of that day
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(Layout, strings.TrimSpace(s), time.UTC)
}

// FormatDate renders the calendar day of t as YYYY-MM-DD.
// The inverse of ParseDate for any UTC-midnight value.
func FormatDate(t time.Time) string {
	return t.UTC().Format(Layout)
}

// Normalize truncates t to UTC midnight of its calendar day
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsWeekday reports whether t falls on Monday through Friday
func IsWeekday(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	default:
		return true
	}
}

// Within reports whether d lies in the inclusive range [start, end]
func Within(d, start, end time.Time) bool {
	return !d.Before(start) && !d.After(end)
}

// EachDay calls fn for every calendar day from start to end inclusive.
// Nothing is visited when end is before start.
func EachDay(start, end time.Time, fn func(day time.Time)) {
	start, end = Normalize(start), Normalize(end)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// CountWeekdays returns the number of weekdays in [start, end]
func CountWeekdays(start, end time.Time) int {
	n := 0
	EachDay(start, end, func(d time.Time) {
		if IsWeekday(d) {
			n++
		}
	})
	return n
}

// Intersect returns the overlap of two inclusive ranges. ok is false when
// they do not overlap.
func Intersect(aStart, aEnd, bStart, bEnd time.Time) (start, end time.Time, ok bool) {
	start = aStart
	if bStart.After(start) {
		start = bStart
	}
	end = aEnd
	if bEnd.Before(end) {
		end = bEnd
	}
	return start, end, !start.After(end)
}
