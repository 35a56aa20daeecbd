package tax

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Bracket is one marginal rate band. UpTo is the inclusive upper limit of
// the band; an invalid UpTo means the band is unbounded.
type Bracket struct {
	Rate decimal.Decimal     `json:"rate"`
	UpTo decimal.NullDecimal `json:"upTo"`
}

// Unbounded reports whether the bracket has no upper limit
func (b Bracket) Unbounded() bool { return !b.UpTo.Valid }

// NewBracket creates a bounded bracket
func NewBracket(rate, upTo decimal.Decimal) Bracket {
	return Bracket{Rate: rate, UpTo: decimal.NewNullDecimal(upTo)}
}

// TopBracket creates the unbounded terminal bracket
func TopBracket(rate decimal.Decimal) Bracket {
	return Bracket{Rate: rate}
}

// TaxOwed applies progressive brackets to the amount of taxableGross above
// deduction. Brackets must be sorted by UpTo and end with an unbounded
// bracket; other lists give incomplete results and are not rejected.
func TaxOwed(taxableGross, deduction decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if taxableGross.LessThanOrEqual(deduction) {
		return decimal.Zero
	}
	taxable := taxableGross.Sub(deduction)

	owed := decimal.Zero
	lastLimit := decimal.Zero
	for _, b := range brackets {
		upper := taxable
		if !b.Unbounded() {
			upper = decimal.Min(b.UpTo.Decimal, taxable)
		}
		if portion := upper.Sub(lastLimit); portion.IsPositive() {
			owed = owed.Add(portion.Mul(b.Rate))
			lastLimit = upper
		}
		if b.Unbounded() || taxable.LessThanOrEqual(b.UpTo.Decimal) {
			break
		}
	}
	return owed
}

// MarginalRate returns the rate applied to the last dollar of taxable income
func MarginalRate(taxableGross, deduction decimal.Decimal, brackets []Bracket) decimal.Decimal {
	if taxableGross.LessThanOrEqual(deduction) || len(brackets) == 0 {
		return decimal.Zero
	}
	taxable := taxableGross.Sub(deduction)
	for _, b := range brackets {
		if b.Unbounded() || taxable.LessThanOrEqual(b.UpTo.Decimal) {
			return b.Rate
		}
	}
	return brackets[len(brackets)-1].Rate
}

// ValidateBrackets checks that limits strictly increase, rates are
// non-negative, and the list ends with an unbounded bracket. An empty list is
// valid and taxes nothing.
func ValidateBrackets(brackets []Bracket) error {
	if len(brackets) == 0 {
		return nil
	}
	prev := decimal.Zero
	for i, b := range brackets {
		if b.Rate.IsNegative() {
			return fmt.Errorf("bracket %d: negative rate %s", i+1, b.Rate)
		}
		last := i == len(brackets)-1
		if b.Unbounded() {
			if !last {
				return fmt.Errorf("bracket %d: only the last bracket may be unbounded", i+1)
			}
			continue
		}
		if last {
			return fmt.Errorf("bracket %d: last bracket must be unbounded", i+1)
		}
		if !b.UpTo.Decimal.GreaterThan(prev) {
			return fmt.Errorf("bracket %d: limit %s does not exceed %s", i+1, b.UpTo.Decimal, prev)
		}
		prev = b.UpTo.Decimal
	}
	return nil
}
