package tax

import "github.com/shopspring/decimal"

// Required reports whether a nonresident with the given state-source income
// and days worked must file a return in the state.
func (f FilingRequirement) Required(income decimal.Decimal, days int) bool {
	if !f.RequiresReturn {
		return false
	}
	switch f.Rule {
	case RuleDayOne:
		return income.IsPositive() || days > 0
	case RuleIncomeThreshold:
		return f.incomeMet(income)
	case RuleDayThreshold, RuleDayMutuality:
		return days > f.MinDaysExclusive
	case RuleDayAndIncome:
		return days > f.MinDaysExclusive && f.incomeMet(income)
	default:
		return false
	}
}

func (f FilingRequirement) incomeMet(income decimal.Decimal) bool {
	switch {
	case f.MinIncome.Valid:
		return income.GreaterThanOrEqual(f.MinIncome.Decimal)
	case f.MinIncomeExclusive.Valid:
		return income.GreaterThan(f.MinIncomeExclusive.Decimal)
	default:
		return false
	}
}

// FilingRequired looks up a state's rule and applies it. Unknown states
// never require a return.
func FilingRequired(t Tables, code string, income decimal.Decimal, days int) bool {
	f, ok := t.FilingRequirement(code)
	if !ok {
		return false
	}
	return f.Required(income, days)
}
