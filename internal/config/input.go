package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/rgehrsitz/splittax/pkg/dateutil"
	"gopkg.in/yaml.v3"
)

// InputParser handles parsing of input configuration files
type InputParser struct {
	// Tables is used to check state codes. Nil skips the check.
	Tables tax.Tables
}

// NewInputParser creates a new input parser backed by the embedded tax tables
func NewInputParser() *InputParser {
	t, err := tax.DefaultTables()
	if err != nil {
		return &InputParser{}
	}
	return &InputParser{Tables: t}
}

// LoadFromFile loads configuration from a YAML or JSON file. JSON is chosen
// by a .json extension; everything else is read as YAML.
func (ip *InputParser) LoadFromFile(filename string) (*domain.Configuration, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	config, err := ip.Parse(data, strings.EqualFold(filepath.Ext(filename), ".json"))
	if err != nil {
		return nil, err
	}

	if err := ip.ValidateConfiguration(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Parse decodes configuration bytes and normalizes the result
func (ip *InputParser) Parse(data []byte, isJSON bool) (*domain.Configuration, error) {
	var config domain.Configuration
	if isJSON {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	Normalize(&config)
	return &config, nil
}

// Normalize trims and upper-cases state codes and gives every pay period and
// bonus without an ID a generated one.
func Normalize(config *domain.Configuration) {
	config.PrimaryState = strings.ToUpper(strings.TrimSpace(config.PrimaryState))

	if len(config.OtherStateDays) > 0 {
		other := make(domain.OtherStateDays, len(config.OtherStateDays))
		for state, dates := range config.OtherStateDays {
			code := strings.ToUpper(strings.TrimSpace(state))
			other[code] = append(other[code], dates...)
		}
		config.OtherStateDays = other
	}

	for i := range config.PayPeriods {
		if strings.TrimSpace(string(config.PayPeriods[i].ID)) == "" {
			config.PayPeriods[i].ID = domain.ID(uuid.NewString())
		}
	}
	for i := range config.Bonuses {
		if strings.TrimSpace(string(config.Bonuses[i].ID)) == "" {
			config.Bonuses[i].ID = domain.ID(uuid.NewString())
		}
		config.Bonuses[i].State = strings.ToUpper(strings.TrimSpace(config.Bonuses[i].State))
	}
}

// ValidateConfiguration checks the settings every pay period depends on.
// Problems confined to a single pay period or bonus are left to the
// calculation, which reports them per period; see Lint.
func (ip *InputParser) ValidateConfiguration(config *domain.Configuration) error {
	if config == nil {
		return errors.New("configuration is required")
	}
	if err := ip.validateStates(config); err != nil {
		return fmt.Errorf("state validation failed: %w", err)
	}
	if err := validateVisitingDates(config.VisitingDates); err != nil {
		return fmt.Errorf("visiting dates validation failed: %w", err)
	}
	if err := allocation.ValidateOtherStateDays(config.OtherStateDays); err != nil {
		return fmt.Errorf("other state days validation failed: %w", err)
	}
	for i, b := range config.Bonuses {
		if err := ip.validateBonus(b); err != nil {
			return fmt.Errorf("bonus %d validation failed: %w", i+1, err)
		}
	}
	if err := validateTaxSettings(config.TaxSettings); err != nil {
		return fmt.Errorf("tax settings validation failed: %w", err)
	}
	return nil
}

func (ip *InputParser) validateStates(config *domain.Configuration) error {
	if config.PrimaryState == "" {
		return fmt.Errorf("primary state is required")
	}
	if err := ip.knownState(config.PrimaryState); err != nil {
		return err
	}
	for state := range config.OtherStateDays {
		if state == "" {
			return fmt.Errorf("other state code cannot be empty")
		}
		if state == config.PrimaryState {
			return fmt.Errorf("%s is the primary state and cannot also be an other state", state)
		}
		if err := ip.knownState(state); err != nil {
			return err
		}
	}
	return nil
}

func (ip *InputParser) knownState(code string) error {
	if ip.Tables == nil {
		return nil
	}
	if _, ok := ip.Tables.State(code); !ok {
		return fmt.Errorf("%w: %q", tax.ErrUnknownState, code)
	}
	return nil
}

func validateVisitingDates(v domain.VisitingDates) error {
	start, err := dateutil.ParseDate(v.Start)
	if err != nil {
		return &domain.InvalidDateError{Field: "visiting start date", Value: v.Start}
	}
	end, err := dateutil.ParseDate(v.End)
	if err != nil {
		return &domain.InvalidDateError{Field: "visiting end date", Value: v.End}
	}
	if end.Before(start) {
		return fmt.Errorf("visiting end date %s is before start date %s", v.End, v.Start)
	}
	return nil
}

func (ip *InputParser) validateBonus(b domain.BonusInput) error {
	switch strings.TrimSpace(b.Type) {
	case "", domain.BonusTypeSignOn, domain.BonusTypeServicesRendered:
	default:
		return fmt.Errorf("unknown bonus type %q", b.Type)
	}
	if b.State != "" {
		return ip.knownState(b.State)
	}
	return nil
}

func validateTaxSettings(ts domain.TaxSettings) error {
	switch ts.FilingStatus {
	case "", domain.FilingSingle, domain.FilingMarried:
	default:
		return fmt.Errorf("filing status must be %q or %q", domain.FilingSingle, domain.FilingMarried)
	}
	switch ts.DeductionType {
	case "", domain.DeductionStandard:
	case domain.DeductionItemized:
		if ts.ItemizedDeduction != "" && !ts.ItemizedDeduction.Valid() {
			return fmt.Errorf("itemized deduction %q is not a valid amount", ts.ItemizedDeduction)
		}
	default:
		return fmt.Errorf("deduction type must be %q or %q", domain.DeductionStandard, domain.DeductionItemized)
	}
	return nil
}

// Lint lists problems that do not stop a calculation: pay periods that will
// fail or produce nothing, amounts that will be read as zero, and
// other-state dates that will be ignored.
func Lint(config *domain.Configuration) []string {
	var issues []string

	if len(config.PayPeriods) == 0 {
		issues = append(issues, "no pay periods entered")
	}
	for _, p := range config.PayPeriods {
		start, serr := dateutil.ParseDate(p.PayPeriodStart)
		end, eerr := dateutil.ParseDate(p.PayPeriodEnd)
		switch {
		case serr != nil || eerr != nil:
			issues = append(issues, fmt.Sprintf("pay period %s has an invalid date and will not be calculated", p.Label()))
		case end.Before(start):
			issues = append(issues, fmt.Sprintf("pay period %s ends before it starts and will allocate nothing", p.Label()))
		}
		if !p.NetPay.Valid() {
			issues = append(issues, fmt.Sprintf("pay period %s net pay %q is not a valid amount and counts as 0", p.Label(), p.NetPay))
		}
	}

	for _, state := range sortedStates(config.OtherStateDays) {
		for _, raw := range config.OtherStateDays[state] {
			d, err := dateutil.ParseDate(raw)
			if err != nil {
				issues = append(issues, fmt.Sprintf("%s date %q is not a valid date and is ignored", state, raw))
				continue
			}
			if !dateutil.IsWeekday(d) {
				issues = append(issues, fmt.Sprintf("%s date %s is a weekend day and only affects bonus attribution", state, raw))
			}
		}
	}

	for _, b := range config.Bonuses {
		if strings.TrimSpace(b.Date) == "" {
			issues = append(issues, fmt.Sprintf("bonus %s has no date and is ignored", b.ID))
			continue
		}
		if _, err := domain.ParseBonus(b); err != nil {
			issues = append(issues, fmt.Sprintf("bonus %s: %v", b.ID, err))
		}
		if !b.Amount.Valid() {
			issues = append(issues, fmt.Sprintf("bonus %s amount %q is not a valid amount and counts as 0", b.ID, b.Amount))
		}
	}
	return issues
}

func sortedStates(other domain.OtherStateDays) []string {
	out := make([]string, 0, len(other))
	for s := range other {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
