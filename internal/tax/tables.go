package tax

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var dataFS embed.FS

// ErrUnknownState is returned for a state code missing from the tables
var ErrUnknownState = errors.New("unknown state")

// Deductions holds an amount per filing status
type Deductions struct {
	Single       decimal.Decimal `json:"single" yaml:"single"`
	MarriedJoint decimal.Decimal `json:"marriedJoint" yaml:"married_joint"`
}

// For returns the amount for a filing status
func (d Deductions) For(status string) decimal.Decimal {
	if status == domain.FilingMarried {
		return d.MarriedJoint
	}
	return d.Single
}

// Exemptions holds personal exemption amounts
type Exemptions struct {
	Single       decimal.Decimal `json:"single" yaml:"single"`
	MarriedJoint decimal.Decimal `json:"marriedJoint" yaml:"married_joint"`
	Dependent    decimal.Decimal `json:"dependent" yaml:"dependent"`
}

// StateTaxConfig is one jurisdiction's individual income tax parameters
type StateTaxConfig struct {
	Code              string     `json:"code"`
	Name              string     `json:"name"`
	HasIncomeTax      bool       `json:"hasIncomeTax"`
	StandardDeduction Deductions `json:"standardDeduction"`
	PersonalExemption Exemptions `json:"personalExemption"`
	Brackets          []Bracket  `json:"brackets"`
}

// FederalTable is the federal schedule for one filing status
type FederalTable struct {
	StandardDeduction decimal.Decimal `json:"standardDeduction"`
	Brackets          []Bracket       `json:"brackets"`
}

// FilingRule names how a state decides whether a nonresident must file
type FilingRule string

// Filing rules
const (
	RuleDayOne           FilingRule = "day_one"
	RuleIncomeThreshold  FilingRule = "income_threshold"
	RuleDayThreshold     FilingRule = "day_threshold"
	RuleDayAndIncome     FilingRule = "day_and_income_threshold"
	RuleDayMutuality     FilingRule = "day_threshold_mutuality"
	RuleNoIncomeTax      FilingRule = "no_income_tax"
	RuleNoNonresidentTax FilingRule = "no_nonresident_tax"
)

// FilingRequirement describes a state's nonresident filing threshold.
// MinDaysExclusive must be exceeded; MinIncome is inclusive and
// MinIncomeExclusive must be exceeded.
type FilingRequirement struct {
	Code               string              `json:"code"`
	RequiresReturn     bool                `json:"requiresReturn"`
	Rule               FilingRule          `json:"rule"`
	Description        string              `json:"description"`
	MinDaysExclusive   int                 `json:"minDaysExclusive,omitempty"`
	MinIncome          decimal.NullDecimal `json:"minIncome"`
	MinIncomeExclusive decimal.NullDecimal `json:"minIncomeExclusive"`
}

// Tables supplies tax parameters to the estimator
type Tables interface {
	State(code string) (StateTaxConfig, bool)
	States() []StateTaxConfig
	Federal(status string) FederalTable
	FilingRequirement(code string) (FilingRequirement, bool)
}

// TableSet is the YAML-backed Tables implementation
type TableSet struct {
	states  map[string]StateTaxConfig
	federal map[string]FederalTable
	filing  map[string]FilingRequirement
}

type rawBracket struct {
	Rate decimal.Decimal  `yaml:"rate"`
	UpTo *decimal.Decimal `yaml:"up_to"`
}

type rawState struct {
	Name              string       `yaml:"name"`
	HasIncomeTax      bool         `yaml:"has_income_tax"`
	StandardDeduction Deductions   `yaml:"standard_deduction"`
	PersonalExemption Exemptions   `yaml:"personal_exemption"`
	Brackets          []rawBracket `yaml:"brackets"`
}

type rawFederal struct {
	StandardDeduction decimal.Decimal `yaml:"standard_deduction"`
	Brackets          []rawBracket    `yaml:"brackets"`
}

type rawFiling struct {
	RequiresReturn     bool             `yaml:"requires_return"`
	Rule               FilingRule       `yaml:"rule"`
	Description        string           `yaml:"description"`
	MinDaysExclusive   int              `yaml:"min_days_exclusive"`
	MinIncome          *decimal.Decimal `yaml:"min_income"`
	MinIncomeExclusive *decimal.Decimal `yaml:"min_income_exclusive"`
}

// tableDoc is the shape of every table file. A file may carry any subset of
// the sections.
type tableDoc struct {
	States             map[string]rawState   `yaml:"states"`
	Federal            map[string]rawFederal `yaml:"federal"`
	FilingRequirements map[string]rawFiling  `yaml:"filing_requirements"`
}

var (
	defaultOnce   sync.Once
	defaultTables *TableSet
	defaultErr    error
)

// DefaultTables returns the embedded 2025 tables
func DefaultTables() (*TableSet, error) {
	defaultOnce.Do(func() {
		defaultTables, defaultErr = loadEmbedded()
	})
	return defaultTables, defaultErr
}

// MustDefaultTables is DefaultTables for callers that cannot proceed without tables
func MustDefaultTables() *TableSet {
	t, err := DefaultTables()
	if err != nil {
		panic(err)
	}
	return t
}

func loadEmbedded() (*TableSet, error) {
	t := newTableSet()
	files, err := fs.Glob(dataFS, "data/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, name := range files {
		data, err := dataFS.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if err := t.merge(data); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return t, t.validate()
}

// LoadTables reads a table file and overlays it on the embedded tables.
// Entries in the file replace the embedded entry for the same key.
func LoadTables(path string) (*TableSet, error) {
	base, err := DefaultTables()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tax tables: %w", err)
	}
	t := base.clone()
	if err := t.merge(data); err != nil {
		return nil, fmt.Errorf("failed to parse tax tables: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, fmt.Errorf("invalid tax tables %s: %w", path, err)
	}
	return t, nil
}

func newTableSet() *TableSet {
	return &TableSet{
		states:  make(map[string]StateTaxConfig),
		federal: make(map[string]FederalTable),
		filing:  make(map[string]FilingRequirement),
	}
}

func (t *TableSet) clone() *TableSet {
	out := newTableSet()
	for k, v := range t.states {
		out.states[k] = v
	}
	for k, v := range t.federal {
		out.federal[k] = v
	}
	for k, v := range t.filing {
		out.filing[k] = v
	}
	return out
}

func (t *TableSet) merge(data []byte) error {
	var doc tableDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for code, s := range doc.States {
		code = strings.ToUpper(code)
		t.states[code] = StateTaxConfig{
			Code:              code,
			Name:              s.Name,
			HasIncomeTax:      s.HasIncomeTax,
			StandardDeduction: s.StandardDeduction,
			PersonalExemption: s.PersonalExemption,
			Brackets:          convertBrackets(s.Brackets),
		}
	}
	for status, f := range doc.Federal {
		t.federal[strings.ToLower(status)] = FederalTable{
			StandardDeduction: f.StandardDeduction,
			Brackets:          convertBrackets(f.Brackets),
		}
	}
	for code, f := range doc.FilingRequirements {
		code = strings.ToUpper(code)
		t.filing[code] = FilingRequirement{
			Code:               code,
			RequiresReturn:     f.RequiresReturn,
			Rule:               f.Rule,
			Description:        f.Description,
			MinDaysExclusive:   f.MinDaysExclusive,
			MinIncome:          nullable(f.MinIncome),
			MinIncomeExclusive: nullable(f.MinIncomeExclusive),
		}
	}
	return nil
}

func (t *TableSet) validate() error {
	var errs []error
	for _, code := range t.codes() {
		if err := ValidateBrackets(t.states[code].Brackets); err != nil {
			errs = append(errs, fmt.Errorf("state %s: %w", code, err))
		}
	}
	for _, status := range []string{domain.FilingSingle, domain.FilingMarried} {
		f, ok := t.federal[status]
		if !ok {
			errs = append(errs, fmt.Errorf("federal table for %s is missing", status))
			continue
		}
		if err := ValidateBrackets(f.Brackets); err != nil {
			errs = append(errs, fmt.Errorf("federal %s: %w", status, err))
		}
	}
	return errors.Join(errs...)
}

func (t *TableSet) codes() []string {
	codes := make([]string, 0, len(t.states))
	for code := range t.states {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

func convertBrackets(raw []rawBracket) []Bracket {
	out := make([]Bracket, 0, len(raw))
	for _, b := range raw {
		out = append(out, Bracket{Rate: b.Rate, UpTo: nullable(b.UpTo)})
	}
	return out
}

func nullable(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

// State returns the parameters for a state code
func (t *TableSet) State(code string) (StateTaxConfig, bool) {
	s, ok := t.states[strings.ToUpper(strings.TrimSpace(code))]
	return s, ok
}

// States lists every jurisdiction ordered by name
func (t *TableSet) States() []StateTaxConfig {
	out := make([]StateTaxConfig, 0, len(t.states))
	for _, s := range t.states {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Federal returns the federal schedule for a filing status, defaulting to single
func (t *TableSet) Federal(status string) FederalTable {
	if f, ok := t.federal[status]; ok {
		return f
	}
	return t.federal[domain.FilingSingle]
}

// FilingRequirement returns a state's nonresident filing rule
func (t *TableSet) FilingRequirement(code string) (FilingRequirement, bool) {
	f, ok := t.filing[strings.ToUpper(strings.TrimSpace(code))]
	return f, ok
}
