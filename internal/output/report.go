package output

import (
	"time"

	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/shopspring/decimal"
)

// PeriodReport is one pay period's outcome. Exactly one of Result and Error is set.
type PeriodReport struct {
	ID     string                    `json:"id"`
	Start  string                    `json:"start"`
	End    string                    `json:"end"`
	NetPay decimal.Decimal           `json:"netPay"`
	Result *domain.CalculationResult `json:"result,omitempty"`
	Error  string                    `json:"error,omitempty"`
}

// Label names the period by its date range
func (p PeriodReport) Label() string { return p.Start + " to " + p.End }

// Report is everything a formatter needs to render one calculation
type Report struct {
	GeneratedAt  time.Time                  `json:"generatedAt"`
	PrimaryState string                     `json:"primaryState"`
	VisitStart   string                     `json:"visitStart"`
	VisitEnd     string                     `json:"visitEnd"`
	FilingStatus string                     `json:"filingStatus"`
	Periods      []PeriodReport             `json:"periods"`
	StateTotals  []domain.StateTotal        `json:"stateTotals"`
	GrandTotal   decimal.Decimal            `json:"grandTotal"`
	StateTaxes   []tax.StateEstimate        `json:"stateTaxes,omitempty"`
	Federal      *tax.FederalEstimate       `json:"federal,omitempty"`
	Coverage     []allocation.BonusCoverage `json:"bonusCoverage,omitempty"`
	Warnings     []string                   `json:"warnings,omitempty"`
	Daily        []domain.DailyAllocation   `json:"daily,omitempty"`
}

// Failures lists the error message of every pay period that was not calculated
func (r *Report) Failures() []string {
	var out []string
	for _, p := range r.Periods {
		if p.Error != "" {
			out = append(out, p.Error)
		}
	}
	return out
}

// Calculated counts the pay periods that produced a result
func (r *Report) Calculated() int {
	n := 0
	for _, p := range r.Periods {
		if p.Result != nil {
			n++
		}
	}
	return n
}

// ReportOptions controls optional report sections
type ReportOptions struct {
	// Estimator adds tax estimates when set
	Estimator *tax.Estimator
	// IncludeDaily adds the per-weekday calendar
	IncludeDaily bool
}

// BuildReport assembles a report from a calculation run
func BuildReport(cfg *domain.Configuration, run *allocation.Run, opts ReportOptions) *Report {
	r := &Report{
		GeneratedAt:  time.Now().UTC(),
		PrimaryState: run.PrimaryState,
		VisitStart:   cfg.VisitingDates.Start,
		VisitEnd:     cfg.VisitingDates.End,
		FilingStatus: cfg.TaxSettings.Status(),
	}

	for _, o := range run.Outcomes {
		p := PeriodReport{
			ID:     string(o.Period.ID),
			Start:  o.Period.PayPeriodStart,
			End:    o.Period.PayPeriodEnd,
			NetPay: o.Period.NetPay.Decimal(),
		}
		if o.OK() {
			p.Result = o.Result
		} else {
			p.Error = o.Err.Error()
		}
		r.Periods = append(r.Periods, p)
	}

	r.StateTotals = run.Aggregate()
	r.GrandTotal = allocation.GrandTotal(r.StateTotals)
	r.Coverage = run.Coverage()
	r.Warnings = run.Warnings()

	if opts.Estimator != nil {
		estimates, warnings := opts.Estimator.EstimateAll(r.StateTotals, cfg.TaxSettings)
		r.StateTaxes = estimates
		r.Warnings = append(r.Warnings, warnings...)
		federal := opts.Estimator.EstimateFederal(r.GrandTotal, cfg.TaxSettings.Status())
		r.Federal = &federal
	}
	if opts.IncludeDaily {
		r.Daily = run.DailyAllocations()
	}
	return r
}

// FormatCurrency formats a decimal as currency
func FormatCurrency(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

// FormatPercentage formats a fraction as a percentage
func FormatPercentage(fraction decimal.Decimal) string {
	return fraction.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
