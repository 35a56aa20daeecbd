package tax

import (
	"fmt"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/shopspring/decimal"
)

// StateEstimate is a rough income tax figure for one state's allocated income
type StateEstimate struct {
	State          string          `json:"state"`
	Name           string          `json:"name"`
	IsPrimary      bool            `json:"isPrimary"`
	Days           int             `json:"days"`
	Gross          decimal.Decimal `json:"gross"`
	Deduction      decimal.Decimal `json:"deduction"`
	Taxable        decimal.Decimal `json:"taxable"`
	Tax            decimal.Decimal `json:"tax"`
	HasIncomeTax   bool            `json:"hasIncomeTax"`
	FilingRequired bool            `json:"filingRequired"`
	FilingNote     string          `json:"filingNote,omitempty"`
}

// EffectiveRate is tax divided by gross income
func (e StateEstimate) EffectiveRate() decimal.Decimal {
	if !e.Gross.IsPositive() {
		return decimal.Zero
	}
	return e.Tax.Div(e.Gross)
}

// FederalEstimate is the federal tax on the combined allocated income
type FederalEstimate struct {
	FilingStatus string          `json:"filingStatus"`
	Gross        decimal.Decimal `json:"gross"`
	Deduction    decimal.Decimal `json:"deduction"`
	Taxable      decimal.Decimal `json:"taxable"`
	Tax          decimal.Decimal `json:"tax"`
	MarginalRate decimal.Decimal `json:"marginalRate"`
}

// Estimator turns allocated income into tax estimates
type Estimator struct {
	Tables Tables
}

// NewEstimator creates an estimator over the given tables
func NewEstimator(t Tables) *Estimator {
	return &Estimator{Tables: t}
}

// EstimateState estimates one state's tax. The itemized deduction in settings
// only replaces the standard deduction for the primary state.
func (e *Estimator) EstimateState(code string, gross decimal.Decimal, days int, settings domain.TaxSettings, primary bool) (StateEstimate, error) {
	cfg, ok := e.Tables.State(code)
	if !ok {
		return StateEstimate{}, fmt.Errorf("%w: %q", ErrUnknownState, code)
	}
	est := StateEstimate{
		State:        cfg.Code,
		Name:         cfg.Name,
		IsPrimary:    primary,
		Days:         days,
		Gross:        gross,
		Deduction:    decimal.Zero,
		Taxable:      gross,
		Tax:          decimal.Zero,
		HasIncomeTax: cfg.HasIncomeTax,
	}
	if f, ok := e.Tables.FilingRequirement(cfg.Code); ok {
		est.FilingNote = f.Description
		est.FilingRequired = !primary && f.Required(gross, days)
	}
	if !cfg.HasIncomeTax {
		return est, nil
	}

	est.Deduction = cfg.StandardDeduction.For(settings.Status())
	if primary && settings.Itemized() {
		est.Deduction = settings.ItemizedDeduction.Decimal()
	}
	est.Taxable = decimal.Max(decimal.Zero, gross.Sub(est.Deduction))
	est.Tax = TaxOwed(gross, est.Deduction, cfg.Brackets)
	return est, nil
}

// EstimateFederal estimates federal tax with the standard deduction
func (e *Estimator) EstimateFederal(gross decimal.Decimal, status string) FederalEstimate {
	if status != domain.FilingMarried {
		status = domain.FilingSingle
	}
	table := e.Tables.Federal(status)
	return FederalEstimate{
		FilingStatus: status,
		Gross:        gross,
		Deduction:    table.StandardDeduction,
		Taxable:      decimal.Max(decimal.Zero, gross.Sub(table.StandardDeduction)),
		Tax:          TaxOwed(gross, table.StandardDeduction, table.Brackets),
		MarginalRate: MarginalRate(gross, table.StandardDeduction, table.Brackets),
	}
}

// EstimateAll estimates every state total. States missing from the tables
// are skipped and reported as warnings.
func (e *Estimator) EstimateAll(totals []domain.StateTotal, settings domain.TaxSettings) ([]StateEstimate, []string) {
	var (
		out      []StateEstimate
		warnings []string
	)
	for _, t := range totals {
		est, err := e.EstimateState(t.State, t.Total, t.Days, settings, t.IsPrimary)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("no tax estimate for %s: %v", t.State, err))
			continue
		}
		out = append(out, est)
	}
	return out, warnings
}
