package domain

import "fmt"

// InvalidDateError reports a date string that is not a valid YYYY-MM-DD calendar date
type InvalidDateError struct {
	Field string
	Value string
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}
