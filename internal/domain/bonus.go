package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/rgehrsitz/splittax/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// Bonus types as entered by the user
const (
	BonusTypeSignOn           = "sign-on"
	BonusTypeServicesRendered = "services-rendered"
)

// BonusInput is a bonus as entered by the user
type BonusInput struct {
	ID               ID     `yaml:"id" json:"id"`
	Amount           Amount `yaml:"amount" json:"amount"`
	Date             string `yaml:"date" json:"date"`
	Type             string `yaml:"type,omitempty" json:"type,omitempty"`
	BonusPeriodStart string `yaml:"bonus_period_start,omitempty" json:"bonusPeriodStart,omitempty"`
	BonusPeriodEnd   string `yaml:"bonus_period_end,omitempty" json:"bonusPeriodEnd,omitempty"`
	State            string `yaml:"state,omitempty" json:"state,omitempty"`
}

// Bonus is one of SignOnBonus, ServicesRenderedBonus or LegacyBonus
type Bonus interface {
	Base() BonusBase
	isBonus()
}

// BonusBase holds the fields every bonus variant carries
type BonusBase struct {
	ID     string
	Amount decimal.Decimal
	Date   time.Time
}

// Base returns the common bonus fields
func (b BonusBase) Base() BonusBase { return b }

// SignOnBonus is attributed wholly to the state worked on its date
type SignOnBonus struct {
	BonusBase
}

// ServicesRenderedBonus compensates work over an accrual period and is split
// across the states worked during that period. A zero PeriodStart or
// PeriodEnd defaults to the bound of the pay period that pays the bonus.
type ServicesRenderedBonus struct {
	BonusBase
	PeriodStart time.Time
	PeriodEnd   time.Time
}

// LegacyBonus predates bonus types. It resolves like a sign-on bonus; State is
// only consulted when the date cannot be resolved to a worked state.
type LegacyBonus struct {
	BonusBase
	State string
}

func (SignOnBonus) isBonus()           {}
func (ServicesRenderedBonus) isBonus() {}
func (LegacyBonus) isBonus()           {}

// AccrualPeriod returns the bonus period, filling missing bounds from the pay period
func (b ServicesRenderedBonus) AccrualPeriod(payStart, payEnd time.Time) (time.Time, time.Time) {
	start, end := b.PeriodStart, b.PeriodEnd
	if start.IsZero() {
		start = payStart
	}
	if end.IsZero() {
		end = payEnd
	}
	return start, end
}

// ParseBonus converts user input into a typed bonus
func ParseBonus(in BonusInput) (Bonus, error) {
	date, err := dateutil.ParseDate(in.Date)
	if err != nil {
		return nil, &InvalidDateError{Field: "bonus date", Value: in.Date}
	}
	base := BonusBase{ID: string(in.ID), Amount: in.Amount.Decimal(), Date: date}

	switch strings.TrimSpace(in.Type) {
	case BonusTypeSignOn:
		return SignOnBonus{BonusBase: base}, nil
	case BonusTypeServicesRendered:
		b := ServicesRenderedBonus{BonusBase: base}
		if in.BonusPeriodStart != "" {
			if b.PeriodStart, err = dateutil.ParseDate(in.BonusPeriodStart); err != nil {
				return nil, &InvalidDateError{Field: "bonus period start", Value: in.BonusPeriodStart}
			}
		}
		if in.BonusPeriodEnd != "" {
			if b.PeriodEnd, err = dateutil.ParseDate(in.BonusPeriodEnd); err != nil {
				return nil, &InvalidDateError{Field: "bonus period end", Value: in.BonusPeriodEnd}
			}
		}
		return b, nil
	case "":
		return LegacyBonus{BonusBase: base, State: strings.ToUpper(strings.TrimSpace(in.State))}, nil
	default:
		return nil, fmt.Errorf("bonus %s: unknown bonus type %q", in.ID, in.Type)
	}
}

// ParseBonuses converts every bonus that has a date. Bonuses with a blank
// date are skipped; they cannot belong to any pay period.
func ParseBonuses(ins []BonusInput) ([]Bonus, error) {
	out := make([]Bonus, 0, len(ins))
	for i, in := range ins {
		if strings.TrimSpace(in.Date) == "" {
			continue
		}
		b, err := ParseBonus(in)
		if err != nil {
			return nil, fmt.Errorf("bonus %d: %w", i+1, err)
		}
		out = append(out, b)
	}
	return out, nil
}
