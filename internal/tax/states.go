package tax

import (
	"strings"

	"github.com/samber/lo"
)

// LookupState resolves a state code or full name, ignoring case
func LookupState(t Tables, input string) (StateTaxConfig, bool) {
	q := strings.TrimSpace(input)
	if q == "" {
		return StateTaxConfig{}, false
	}
	if s, ok := t.State(q); ok {
		return s, true
	}
	return lo.Find(t.States(), func(s StateTaxConfig) bool {
		return strings.EqualFold(s.Name, q)
	})
}

// SearchStates returns the states whose code or name contains query,
// ordered by name. An empty query matches everything.
func SearchStates(t Tables, query string) []StateTaxConfig {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return t.States()
	}
	return lo.Filter(t.States(), func(s StateTaxConfig, _ int) bool {
		return strings.Contains(strings.ToLower(s.Code), q) || strings.Contains(strings.ToLower(s.Name), q)
	})
}
