package api

import (
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// TaxRequest asks for tax on an amount. Either Brackets or State is used:
// with State set, the state's own brackets and standard deduction apply.
type TaxRequest struct {
	TaxableGross decimal.Decimal `json:"taxableGross"`
	Deduction    decimal.Decimal `json:"deduction"`
	Brackets     []tax.Bracket   `json:"brackets,omitempty"`

	State        string          `json:"state,omitempty"`
	Gross        decimal.Decimal `json:"gross"`
	FilingStatus string          `json:"filingStatus,omitempty"`
}

// TaxResponse is the tax on one amount
type TaxResponse struct {
	Tax          decimal.Decimal    `json:"tax"`
	MarginalRate decimal.Decimal    `json:"marginalRate"`
	Estimate     *tax.StateEstimate `json:"estimate,omitempty"`
}

// StateDTO is a state's tax parameters together with its nonresident filing rule
type StateDTO struct {
	tax.StateTaxConfig
	Filing *tax.FilingRequirement `json:"filing,omitempty"`
}

// ScenarioRequest creates or replaces a saved scenario
type ScenarioRequest struct {
	Name   string               `json:"name"`
	Config domain.Configuration `json:"config"`
}

// HealthResponse is returned by /healthz
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}
