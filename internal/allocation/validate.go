package allocation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
)

// DuplicateDateError reports a date assigned to more than one other state
type DuplicateDateError struct {
	Date   string
	States []string
}

func (e *DuplicateDateError) Error() string {
	return fmt.Sprintf("date %s is listed under more than one state: %s", e.Date, strings.Join(e.States, ", "))
}

// ValidateOtherStateDays rejects a calendar date listed under two different
// states. Repeats of a date within the same state are allowed.
func ValidateOtherStateDays(other domain.OtherStateDays) error {
	seen := make(map[string]map[string]bool)
	for state, dates := range other {
		for _, raw := range dates {
			d, err := dateutil.ParseDate(raw)
			if err != nil {
				continue
			}
			key := dateutil.FormatDate(d)
			if seen[key] == nil {
				seen[key] = make(map[string]bool)
			}
			seen[key][state] = true
		}
	}

	keys := make([]string, 0, len(seen))
	for k, states := range seen {
		if len(states) > 1 {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	states := make([]string, 0, len(seen[keys[0]]))
	for s := range seen[keys[0]] {
		states = append(states, s)
	}
	sort.Strings(states)
	return &DuplicateDateError{Date: keys[0], States: states}
}
