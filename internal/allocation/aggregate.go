package allocation

import (
	"sort"
	"time"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Aggregate sums each state's days and pay across the run's successful pay
// periods. States with neither days nor money are dropped. The result is
// ordered by SortStateTotals.
func (r *Run) Aggregate() []domain.StateTotal {
	byState := make(map[string]*domain.StateTotal)
	for _, o := range r.Succeeded() {
		for state, a := range o.Result.Allocations {
			t, ok := byState[state]
			if !ok {
				t = &domain.StateTotal{State: state, IsPrimary: state == r.PrimaryState}
				byState[state] = t
			}
			t.Days += a.Days
			t.RegularPay = t.RegularPay.Add(a.RegularPay)
			t.Bonus = t.Bonus.Add(a.Bonus)
			t.Total = t.Total.Add(a.Total)
		}
	}

	totals := lo.FilterMap(lo.Values(byState), func(t *domain.StateTotal, _ int) (domain.StateTotal, bool) {
		return *t, t.Days > 0 || t.Total.IsPositive()
	})
	SortStateTotals(totals, r.PrimaryState)
	return totals
}

// SortStateTotals orders totals by descending total; on a tie the primary
// state comes first, then states sort alphabetically.
func SortStateTotals(totals []domain.StateTotal, primary string) {
	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		if c := a.Total.Cmp(b.Total); c != 0 {
			return c > 0
		}
		if a.State == primary {
			return b.State != primary
		}
		if b.State == primary {
			return false
		}
		return a.State < b.State
	})
}

// GrandTotal sums every state's total
func GrandTotal(totals []domain.StateTotal) decimal.Decimal {
	return lo.Reduce(totals, func(acc decimal.Decimal, t domain.StateTotal, _ int) decimal.Decimal {
		return acc.Add(t.Total)
	}, decimal.Zero)
}

// DailyAllocations lists the income attributed to every worked weekday of the
// run's successful pay periods, ordered by date. Each day carries the
// period's daily rate, its per-day services-rendered share, and any sign-on or
// legacy bonus paid that day.
func (r *Run) DailyAllocations() []domain.DailyAllocation {
	var out []domain.DailyAllocation
	for _, o := range r.Succeeded() {
		dailyRate := o.Result.Summary.DailyRate
		dated := make(map[string]decimal.Decimal)
		type accrual struct {
			from, to time.Time
			perDay   decimal.Decimal
		}
		var accruals []accrual

		for _, b := range r.Bonuses {
			base := b.Base()
			if !dateutil.Within(base.Date, o.start, o.end) {
				continue
			}
			switch bonus := b.(type) {
			case domain.ServicesRenderedBonus:
				s, e := bonus.AccrualPeriod(o.start, o.end)
				n := dateutil.CountWeekdays(s, e)
				if n == 0 {
					continue
				}
				if from, to, ok := dateutil.Intersect(s, e, o.start, o.end); ok {
					accruals = append(accruals, accrual{from: from, to: to, perDay: bonus.Amount.Div(decimal.NewFromInt(int64(n)))})
				}
			default:
				key := dateutil.FormatDate(base.Date)
				dated[key] = dated[key].Add(base.Amount)
			}
		}

		dateutil.EachDay(o.start, o.end, func(d time.Time) {
			state := r.calendar.workedState(d)
			if state == "" {
				return
			}
			income := dailyRate.Add(dated[dateutil.FormatDate(d)])
			for _, a := range accruals {
				if dateutil.Within(d, a.from, a.to) {
					income = income.Add(a.perDay)
				}
			}
			out = append(out, domain.DailyAllocation{
				Date:      d,
				State:     state,
				Income:    income,
				IsPrimary: state == r.PrimaryState,
			})
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
