package allocation

import (
	"sort"
	"strings"
	"time"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
)

// workCalendar answers "where was the person working on day d" for one run
type workCalendar struct {
	primary    string
	visitStart time.Time
	visitEnd   time.Time

	// weekday entries only; drives day counting
	workdays map[string]string
	// every parseable entry, weekends included; drives bonus date resolution
	explicit map[string]string
	// every state named in the other-state input, even with no dates
	named []string
}

func newWorkCalendar(primary string, visiting domain.VisitingDates, other domain.OtherStateDays) (*workCalendar, error) {
	start, err := dateutil.ParseDate(visiting.Start)
	if err != nil {
		return nil, &domain.InvalidDateError{Field: "visiting start date", Value: visiting.Start}
	}
	end, err := dateutil.ParseDate(visiting.End)
	if err != nil {
		return nil, &domain.InvalidDateError{Field: "visiting end date", Value: visiting.End}
	}

	cal := &workCalendar{
		primary:    primary,
		visitStart: start,
		visitEnd:   end,
		workdays:   make(map[string]string),
		explicit:   make(map[string]string),
	}

	// Sorted so that a date listed under two states resolves the same way on
	// every call. Input validation rejects that case before it gets here.
	states := make([]string, 0, len(other))
	for state := range other {
		states = append(states, state)
	}
	sort.Strings(states)

	for _, state := range states {
		code := strings.TrimSpace(state)
		if code == "" {
			continue
		}
		cal.named = append(cal.named, code)
		for _, raw := range other[state] {
			d, err := dateutil.ParseDate(raw)
			if err != nil {
				continue
			}
			key := dateutil.FormatDate(d)
			cal.explicit[key] = code
			if dateutil.IsWeekday(d) {
				cal.workdays[key] = code
			}
		}
	}
	return cal, nil
}

// workedState returns the state a weekday is attributed to, or "" when the
// day is a weekend or was not worked.
func (c *workCalendar) workedState(d time.Time) string {
	if !dateutil.IsWeekday(d) {
		return ""
	}
	if state, ok := c.workdays[dateutil.FormatDate(d)]; ok {
		return state
	}
	if dateutil.Within(d, c.visitStart, c.visitEnd) {
		return c.primary
	}
	return ""
}

// bonusState resolves the state a dated bonus belongs to
func (c *workCalendar) bonusState(d time.Time, hint string) string {
	if state, ok := c.explicit[dateutil.FormatDate(d)]; ok {
		return state
	}
	if dateutil.Within(d, c.visitStart, c.visitEnd) {
		return c.primary
	}
	if hint != "" {
		return hint
	}
	return c.primary
}
