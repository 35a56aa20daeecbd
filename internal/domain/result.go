package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// AllocationResult is one state's share of a pay period.
// Total is always RegularPay + Bonus.
type AllocationResult struct {
	Days       int             `json:"days" yaml:"days"`
	RegularPay decimal.Decimal `json:"regularPay" yaml:"regular_pay"`
	Bonus      decimal.Decimal `json:"bonus" yaml:"bonus"`
	Total      decimal.Decimal `json:"total" yaml:"total"`
}

// IsZero reports whether the state received neither days nor money
func (a AllocationResult) IsZero() bool {
	return a.Days == 0 && a.Total.IsZero()
}

// Allocations is the per-state ledger of a pay period
type Allocations map[string]AllocationResult

// States returns the ledger's state codes in alphabetical order
func (a Allocations) States() []string {
	states := make([]string, 0, len(a))
	for s := range a {
		states = append(states, s)
	}
	sort.Strings(states)
	return states
}

// PeriodSummary describes how a pay period's regular pay was apportioned
type PeriodSummary struct {
	TotalWorkedDays int             `json:"totalWorkedDays" yaml:"total_worked_days"`
	DailyRate       decimal.Decimal `json:"dailyRate" yaml:"daily_rate"`
	RegularPay      decimal.Decimal `json:"regularPay" yaml:"regular_pay"`
}

// CalculationResult is the allocation of one pay period
type CalculationResult struct {
	Allocations  Allocations   `json:"allocations" yaml:"allocations"`
	PrimaryState string        `json:"primaryState" yaml:"primary_state"`
	Summary      PeriodSummary `json:"summary" yaml:"summary"`
}

// TotalAllocated sums the totals of every state in the result
func (r *CalculationResult) TotalAllocated() decimal.Decimal {
	sum := decimal.Zero
	for _, a := range r.Allocations {
		sum = sum.Add(a.Total)
	}
	return sum
}

// StateTotal aggregates one state's allocations across pay periods
type StateTotal struct {
	State      string          `json:"state" yaml:"state"`
	Days       int             `json:"days" yaml:"days"`
	RegularPay decimal.Decimal `json:"regularPay" yaml:"regular_pay"`
	Bonus      decimal.Decimal `json:"bonus" yaml:"bonus"`
	Total      decimal.Decimal `json:"total" yaml:"total"`
	IsPrimary  bool            `json:"isPrimary" yaml:"is_primary"`
}

// DailyAllocation is the income attributed to one worked weekday
type DailyAllocation struct {
	Date      time.Time       `json:"date" yaml:"date"`
	State     string          `json:"state" yaml:"state"`
	Income    decimal.Decimal `json:"income" yaml:"income"`
	IsPrimary bool            `json:"isPrimary" yaml:"is_primary"`
}
