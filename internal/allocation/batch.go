package allocation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrIncompleteSettings is returned when the global settings needed by every
// pay period are missing
var ErrIncompleteSettings = errors.New("primary state and both visiting dates are required")

// PeriodError names the pay period whose calculation failed
type PeriodError struct {
	Period domain.PayPeriod
	Err    error
}

func (e *PeriodError) Error() string {
	return fmt.Sprintf("pay period %s: %v", e.Period.Label(), e.Err)
}

func (e *PeriodError) Unwrap() error { return e.Err }

// PeriodOutcome is the result of one pay period within a run. Exactly one of
// Result and Err is set.
type PeriodOutcome struct {
	Period domain.PayPeriod
	Result *domain.CalculationResult
	Err    error

	start, end       time.Time
	servicesRendered map[string]decimal.Decimal
}

// OK reports whether the period was calculated
func (o PeriodOutcome) OK() bool { return o.Err == nil && o.Result != nil }

// Run holds every pay period outcome of one calculation
type Run struct {
	PrimaryState string
	Outcomes     []PeriodOutcome
	Bonuses      []domain.Bonus

	calendar *workCalendar
}

// Succeeded returns the outcomes that produced a result, in input order
func (r *Run) Succeeded() []PeriodOutcome {
	out := make([]PeriodOutcome, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		if o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Failed returns the outcomes that could not be calculated, in input order
func (r *Run) Failed() []PeriodOutcome {
	var out []PeriodOutcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

type bonusFault struct {
	date time.Time
	err  error
}

// CalculateAll allocates every pay period in cfg. Periods are independent and
// are evaluated concurrently; outcomes keep input order. A failing period is
// recorded in its outcome as a *PeriodError and does not stop the others.
// The returned error is reserved for problems that affect every period.
func (e *Engine) CalculateAll(ctx context.Context, cfg *domain.Configuration) (*Run, error) {
	log := e.logger()
	if strings.TrimSpace(cfg.PrimaryState) == "" || strings.TrimSpace(cfg.VisitingDates.Start) == "" || strings.TrimSpace(cfg.VisitingDates.End) == "" {
		return nil, ErrIncompleteSettings
	}
	cal, err := newWorkCalendar(strings.TrimSpace(cfg.PrimaryState), cfg.VisitingDates, cfg.OtherStateDays)
	if err != nil {
		return nil, err
	}

	bonuses := make([]domain.Bonus, 0, len(cfg.Bonuses))
	var faults []bonusFault
	for i, in := range cfg.Bonuses {
		if strings.TrimSpace(in.Date) == "" {
			continue
		}
		b, err := domain.ParseBonus(in)
		if err == nil {
			bonuses = append(bonuses, b)
			continue
		}
		// A bad bonus period only spoils the pay period that would process it.
		d, derr := dateutil.ParseDate(in.Date)
		if derr != nil {
			return nil, fmt.Errorf("bonus %d: %w", i+1, err)
		}
		faults = append(faults, bonusFault{date: d, err: fmt.Errorf("bonus %s: %w", in.ID, err)})
	}

	outcomes := make([]PeriodOutcome, len(cfg.PayPeriods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range cfg.PayPeriods {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = runPeriod(cal, p, bonuses, faults)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	run := &Run{PrimaryState: cal.primary, Outcomes: outcomes, Bonuses: bonuses, calendar: cal}
	for _, o := range run.Failed() {
		log.Warnf("%v", o.Err)
	}
	log.Infof("calculated %d of %d pay periods", len(run.Succeeded()), len(outcomes))
	return run, nil
}

func runPeriod(cal *workCalendar, p domain.PayPeriod, bonuses []domain.Bonus, faults []bonusFault) PeriodOutcome {
	out := PeriodOutcome{Period: p}
	res, sr, err := allocatePeriod(cal, p, bonuses)
	if err != nil {
		out.Err = &PeriodError{Period: p, Err: err}
		return out
	}
	out.start, _ = dateutil.ParseDate(p.PayPeriodStart)
	out.end, _ = dateutil.ParseDate(p.PayPeriodEnd)
	for _, f := range faults {
		if dateutil.Within(f.date, out.start, out.end) {
			out.Err = &PeriodError{Period: p, Err: f.err}
			return out
		}
	}
	out.Result = res
	out.servicesRendered = sr
	return out
}
