package domain

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a user-entered money value. The raw text is kept as typed so an
// unparsable entry degrades to zero instead of rejecting the whole input.
type Amount string

// NewAmount creates an Amount from a decimal
func NewAmount(d decimal.Decimal) Amount {
	return Amount(d.String())
}

// Decimal parses the amount. Empty, unparsable and negative values are zero.
func (a Amount) Decimal() decimal.Decimal {
	s := strings.TrimSpace(string(a))
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Valid reports whether the text parses as a non-negative number
func (a Amount) Valid() bool {
	s := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(string(a)), "$"), ",", "")
	d, err := decimal.NewFromString(s)
	return err == nil && !d.IsNegative()
}

// UnmarshalJSON accepts both JSON numbers and strings
func (a *Amount) UnmarshalJSON(b []byte) error {
	*a = Amount(flexText(b))
	return nil
}

// ID identifies a pay period or bonus. JSON numbers and strings are both accepted.
type ID string

// UnmarshalJSON accepts both JSON numbers and strings
func (id *ID) UnmarshalJSON(b []byte) error {
	*id = ID(flexText(b))
	return nil
}

func flexText(b []byte) string {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s
	}
	return string(b)
}

// PayPeriod is one payroll disbursement as entered by the user. Dates are
// inclusive YYYY-MM-DD strings and are parsed by the allocation engine.
type PayPeriod struct {
	ID             ID     `yaml:"id" json:"id"`
	NetPay         Amount `yaml:"net_pay" json:"netPay"`
	PayPeriodStart string `yaml:"pay_period_start" json:"payPeriodStart"`
	PayPeriodEnd   string `yaml:"pay_period_end" json:"payPeriodEnd"`
}

// Label names the period by its date range for user-facing messages
func (p PayPeriod) Label() string {
	return p.PayPeriodStart + " to " + p.PayPeriodEnd
}

// VisitingDates is the inclusive window of presence in the primary state
type VisitingDates struct {
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`
}

// OtherStateDays maps a state code to the dates worked in that state
type OtherStateDays map[string][]string

// Filing statuses
const (
	FilingSingle  = "single"
	FilingMarried = "married"
)

// Deduction types
const (
	DeductionStandard = "standard"
	DeductionItemized = "itemized"
)

// TaxSettings controls how tax estimates are produced for the primary state
type TaxSettings struct {
	FilingStatus      string `yaml:"filing_status" json:"filingStatus"`
	DeductionType     string `yaml:"deduction_type" json:"deductionType"`
	ItemizedDeduction Amount `yaml:"itemized_deduction,omitempty" json:"itemizedDeduction,omitempty"`
}

// Status returns the filing status, defaulting to single
func (ts TaxSettings) Status() string {
	if ts.FilingStatus == FilingMarried {
		return FilingMarried
	}
	return FilingSingle
}

// Itemized reports whether an itemized deduction should replace the standard one
func (ts TaxSettings) Itemized() bool {
	return ts.DeductionType == DeductionItemized && !ts.ItemizedDeduction.Decimal().IsZero()
}

// Configuration is one complete allocation input
type Configuration struct {
	PrimaryState   string         `yaml:"primary_state" json:"primaryState"`
	VisitingDates  VisitingDates  `yaml:"visiting_dates" json:"visitingDates"`
	OtherStateDays OtherStateDays `yaml:"days_in_other_states" json:"daysInOtherStates"`
	PayPeriods     []PayPeriod    `yaml:"pay_periods" json:"payPeriods"`
	Bonuses        []BonusInput   `yaml:"bonuses" json:"bonuses"`
	TaxSettings    TaxSettings    `yaml:"tax_settings" json:"taxSettings"`
}

// DeepCopy returns a copy that shares no maps or slices with c
func (c *Configuration) DeepCopy() *Configuration {
	if c == nil {
		return nil
	}
	out := *c
	if c.OtherStateDays != nil {
		out.OtherStateDays = make(OtherStateDays, len(c.OtherStateDays))
		for state, dates := range c.OtherStateDays {
			out.OtherStateDays[state] = append([]string(nil), dates...)
		}
	}
	out.PayPeriods = append([]PayPeriod(nil), c.PayPeriods...)
	out.Bonuses = append([]BonusInput(nil), c.Bonuses...)
	return &out
}

// ExampleConfiguration is the sample input shown to first-time users
func ExampleConfiguration() *Configuration {
	return &Configuration{
		PrimaryState:  "MN",
		VisitingDates: VisitingDates{Start: "2025-01-01", End: "2025-05-31"},
		OtherStateDays: OtherStateDays{
			"FL": {"2025-01-16", "2025-01-17", "2025-02-10"},
			"AZ": {},
		},
		PayPeriods: []PayPeriod{
			{ID: "1", NetPay: "8500.00", PayPeriodStart: "2025-01-15", PayPeriodEnd: "2025-01-31"},
			{ID: "2", NetPay: "8650.00", PayPeriodStart: "2025-02-01", PayPeriodEnd: "2025-02-15"},
		},
		Bonuses: []BonusInput{
			{ID: "1", Amount: "1000", Date: "2025-01-20", Type: BonusTypeSignOn},
			{ID: "2", Amount: "250", Date: "2025-01-30"},
			{ID: "3", Amount: "1200", Date: "2025-02-14", Type: BonusTypeServicesRendered,
				BonusPeriodStart: "2025-02-01", BonusPeriodEnd: "2025-02-14"},
		},
		TaxSettings: TaxSettings{FilingStatus: FilingSingle, DeductionType: DeductionStandard},
	}
}
