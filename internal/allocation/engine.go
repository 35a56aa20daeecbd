package allocation

import (
	"fmt"
	"time"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// ALLOCATION RULES:
//
// 1. Only weekdays count. Weekends never accrue days, regular pay or bonus pay.
// 2. An explicit other-state date wins over the primary visiting window.
// 3. Regular pay is split by days: state share = netPay * stateDays / workedDays.
//    No cent rounding is applied.
// 4. Sign-on and legacy bonuses go wholly to the state of their date.
// 5. Services-rendered bonuses accrue at amount / weekdays(bonus period) per
//    weekday, counted only over the part of the bonus period inside the pay
//    period whose range contains the bonus date.

// Engine runs allocations with optional logging
type Engine struct {
	Logger Logger
}

// NewEngine creates an engine that logs nothing
func NewEngine() *Engine {
	return &Engine{Logger: nopLogger{}}
}

// SetLogger replaces the engine's logger. A nil logger silences output.
func (e *Engine) SetLogger(l Logger) {
	if l == nil {
		l = nopLogger{}
	}
	e.Logger = l
}

func (e *Engine) logger() Logger {
	if e == nil || e.Logger == nil {
		return nopLogger{}
	}
	return e.Logger
}

// Allocate computes one pay period's per-state ledger. See the package-level
// Allocate for semantics.
func (e *Engine) Allocate(period domain.PayPeriod, primaryState string, visiting domain.VisitingDates, other domain.OtherStateDays, bonuses []domain.Bonus) (*domain.CalculationResult, error) {
	res, err := Allocate(period, primaryState, visiting, other, bonuses)
	if err != nil {
		e.logger().Warnf("pay period %s: %v", period.Label(), err)
		return nil, err
	}
	e.logger().Debugf("pay period %s: %d worked days, daily rate %s, %d states",
		period.Label(), res.Summary.TotalWorkedDays, res.Summary.DailyRate.StringFixed(2), len(res.Allocations))
	return res, nil
}

// Allocate partitions one pay period's earnings into a per-state ledger.
// It is a pure function of its inputs and never modifies them.
//
// An *domain.InvalidDateError is returned when the pay period or visiting
// window dates do not parse. A reversed pay period is not an error; it
// yields zero days and zero pay.
func Allocate(period domain.PayPeriod, primaryState string, visiting domain.VisitingDates, other domain.OtherStateDays, bonuses []domain.Bonus) (*domain.CalculationResult, error) {
	cal, err := newWorkCalendar(primaryState, visiting, other)
	if err != nil {
		return nil, err
	}
	res, _, err := allocatePeriod(cal, period, bonuses)
	return res, err
}

// allocatePeriod also returns how much of each services-rendered bonus this
// period allocated, keyed by bonus ID.
func allocatePeriod(cal *workCalendar, period domain.PayPeriod, bonuses []domain.Bonus) (*domain.CalculationResult, map[string]decimal.Decimal, error) {
	start, err := dateutil.ParseDate(period.PayPeriodStart)
	if err != nil {
		return nil, nil, &domain.InvalidDateError{Field: "pay period start date", Value: period.PayPeriodStart}
	}
	end, err := dateutil.ParseDate(period.PayPeriodEnd)
	if err != nil {
		return nil, nil, &domain.InvalidDateError{Field: "pay period end date", Value: period.PayPeriodEnd}
	}

	days := make(map[string]int)
	worked := 0
	dateutil.EachDay(start, end, func(d time.Time) {
		if state := cal.workedState(d); state != "" {
			days[state]++
			worked++
		}
	})

	regularPay := period.NetPay.Decimal()
	dailyRate := decimal.Zero
	if worked > 0 {
		dailyRate = regularPay.Div(decimal.NewFromInt(int64(worked)))
	}

	ledger := newLedger(cal)
	for state, n := range days {
		ledger.addDays(state, n)
	}
	for state, n := range ledger.days {
		if n > 0 {
			ledger.regular[state] = regularPay.Mul(decimal.NewFromInt(int64(n))).Div(decimal.NewFromInt(int64(worked)))
		}
	}

	srAllocated := make(map[string]decimal.Decimal)
	for _, b := range bonuses {
		base := b.Base()
		if !dateutil.Within(base.Date, start, end) {
			continue
		}
		switch bonus := b.(type) {
		case domain.SignOnBonus:
			ledger.addBonus(cal.bonusState(bonus.Date, ""), bonus.Amount)
		case domain.LegacyBonus:
			ledger.addBonus(cal.bonusState(bonus.Date, bonus.State), bonus.Amount)
		case domain.ServicesRenderedBonus:
			shares := servicesRenderedShares(cal, bonus, start, end)
			allocated := decimal.Zero
			for state, amount := range shares {
				ledger.addBonus(state, amount)
				allocated = allocated.Add(amount)
			}
			srAllocated[bonus.ID] = srAllocated[bonus.ID].Add(allocated)
		default:
			return nil, nil, fmt.Errorf("unsupported bonus variant %T", b)
		}
	}

	return &domain.CalculationResult{
		Allocations:  ledger.build(),
		PrimaryState: cal.primary,
		Summary: domain.PeriodSummary{
			TotalWorkedDays: worked,
			DailyRate:       dailyRate,
			RegularPay:      regularPay,
		},
	}, srAllocated, nil
}

// servicesRenderedShares splits a services-rendered bonus across the states
// worked in the overlap of its accrual period and the pay period.
func servicesRenderedShares(cal *workCalendar, b domain.ServicesRenderedBonus, payStart, payEnd time.Time) map[string]decimal.Decimal {
	accrualStart, accrualEnd := b.AccrualPeriod(payStart, payEnd)
	total := dateutil.CountWeekdays(accrualStart, accrualEnd)
	if total == 0 {
		return nil
	}
	from, to, ok := dateutil.Intersect(accrualStart, accrualEnd, payStart, payEnd)
	if !ok {
		return nil
	}

	counts := make(map[string]int)
	dateutil.EachDay(from, to, func(d time.Time) {
		if state := cal.workedState(d); state != "" {
			counts[state]++
		}
	})

	shares := make(map[string]decimal.Decimal, len(counts))
	weekdays := decimal.NewFromInt(int64(total))
	for state, n := range counts {
		shares[state] = b.Amount.Mul(decimal.NewFromInt(int64(n))).Div(weekdays)
	}
	return shares
}

// ledger accumulates a period's allocation before it is frozen into a result
type ledger struct {
	days    map[string]int
	regular map[string]decimal.Decimal
	bonus   map[string]decimal.Decimal
}

func newLedger(cal *workCalendar) *ledger {
	l := &ledger{
		days:    make(map[string]int),
		regular: make(map[string]decimal.Decimal),
		bonus:   make(map[string]decimal.Decimal),
	}
	if cal.primary != "" {
		l.touch(cal.primary)
	}
	for _, state := range cal.named {
		l.touch(state)
	}
	return l
}

func (l *ledger) touch(state string) {
	if _, ok := l.days[state]; !ok {
		l.days[state] = 0
	}
}

func (l *ledger) addDays(state string, n int) {
	l.touch(state)
	l.days[state] += n
}

func (l *ledger) addBonus(state string, amount decimal.Decimal) {
	if state == "" {
		return
	}
	l.touch(state)
	l.bonus[state] = l.bonus[state].Add(amount)
}

func (l *ledger) build() domain.Allocations {
	out := make(domain.Allocations, len(l.days))
	for state, n := range l.days {
		regular := l.regular[state]
		bonus := l.bonus[state]
		out[state] = domain.AllocationResult{
			Days:       n,
			RegularPay: regular,
			Bonus:      bonus,
			Total:      regular.Add(bonus),
		}
	}
	return out
}
