package allocation

import (
	"fmt"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// BonusCoverage compares a bonus amount with what the run actually allocated
type BonusCoverage struct {
	BonusID   string          `json:"bonusId"`
	Kind      string          `json:"kind"`
	Date      string          `json:"date"`
	Amount    decimal.Decimal `json:"amount"`
	Allocated decimal.Decimal `json:"allocated"`
}

// Shortfall is the part of the bonus that no state received
func (c BonusCoverage) Shortfall() decimal.Decimal {
	return c.Amount.Sub(c.Allocated)
}

// Complete reports whether the full amount was allocated, ignoring
// sub-cent division residue.
func (c BonusCoverage) Complete() bool {
	return c.Shortfall().Abs().LessThan(decimal.New(1, -6))
}

// Warning describes an incomplete allocation for the user
func (c BonusCoverage) Warning() string {
	if c.Allocated.IsZero() {
		return fmt.Sprintf("%s bonus %s dated %s (%s) was not allocated: no calculated pay period contains its date",
			c.Kind, c.BonusID, c.Date, c.Amount.StringFixed(2))
	}
	return fmt.Sprintf("%s bonus %s dated %s: %s of %s was not allocated; its bonus period includes days outside the paying pay period or days not worked",
		c.Kind, c.BonusID, c.Date, c.Shortfall().StringFixed(2), c.Amount.StringFixed(2))
}

// Coverage reports allocation coverage for every bonus in the run
func (r *Run) Coverage() []BonusCoverage {
	out := make([]BonusCoverage, 0, len(r.Bonuses))
	for _, b := range r.Bonuses {
		base := b.Base()
		c := BonusCoverage{
			BonusID:   base.ID,
			Date:      dateutil.FormatDate(base.Date),
			Amount:    base.Amount,
			Allocated: decimal.Zero,
		}
		switch b.(type) {
		case domain.SignOnBonus:
			c.Kind = domain.BonusTypeSignOn
		case domain.ServicesRenderedBonus:
			c.Kind = domain.BonusTypeServicesRendered
		case domain.LegacyBonus:
			c.Kind = "legacy"
		}

		for _, o := range r.Succeeded() {
			if !dateutil.Within(base.Date, o.start, o.end) {
				continue
			}
			if _, ok := b.(domain.ServicesRenderedBonus); ok {
				c.Allocated = c.Allocated.Add(o.servicesRendered[base.ID])
			} else {
				c.Allocated = c.Allocated.Add(base.Amount)
			}
		}
		out = append(out, c)
	}
	return out
}

// Warnings lists a message for every bonus that was not fully allocated
func (r *Run) Warnings() []string {
	var out []string
	for _, c := range r.Coverage() {
		if c.Amount.IsPositive() && !c.Complete() {
			out = append(out, c.Warning())
		}
	}
	return out
}
