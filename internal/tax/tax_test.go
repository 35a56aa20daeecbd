package tax

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

var mnBrackets = []Bracket{
	NewBracket(d("0.0535"), d("32570")),
	NewBracket(d("0.068"), d("106990")),
	NewBracket(d("0.0785"), d("198630")),
	TopBracket(d("0.0985")),
}

func TestTaxOwed(t *testing.T) {
	tests := []struct {
		name      string
		gross     string
		deduction string
		want      string
	}{
		{"below deduction", "10000", "14950", "0"},
		{"equal to deduction", "14950", "14950", "0"},
		{"first bracket", "24950", "14950", "535"},
		{"first bracket boundary", "47520", "14950", "1742.495"},
		{"second bracket", "50000", "14950", "1911.135"},
		{"top bracket", "300000", "0", "23981.74"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, TaxOwed(d(tt.gross), d(tt.deduction), mnBrackets))
		})
	}
}

func TestTaxOwed_FlatAndEmpty(t *testing.T) {
	flat := []Bracket{TopBracket(d("0.05"))}
	assertDecimal(t, "50000000", TaxOwed(d("1000000000"), decimal.Zero, flat))
	assertDecimal(t, "0", TaxOwed(d("1000"), decimal.Zero, nil))
}

func TestTaxOwed_MonotonicForEveryJurisdiction(t *testing.T) {
	tables := MustDefaultTables()
	incomes := []string{"0", "500", "3000", "10000", "25000", "60000", "120000", "250000", "600000", "2000000"}

	schedules := map[string][]Bracket{
		"federal single":  tables.Federal(domain.FilingSingle).Brackets,
		"federal married": tables.Federal(domain.FilingMarried).Brackets,
	}
	for _, s := range tables.States() {
		schedules[s.Code] = s.Brackets
	}

	for name, brackets := range schedules {
		prev := decimal.Zero
		for _, income := range incomes {
			owed := TaxOwed(d(income), decimal.Zero, brackets)
			assert.False(t, owed.LessThan(prev), "%s: tax fell at %s", name, income)
			assert.False(t, owed.GreaterThan(d(income)), "%s: tax exceeds income at %s", name, income)
			prev = owed
		}
	}
}

func TestMarginalRate(t *testing.T) {
	assertDecimal(t, "0", MarginalRate(d("100"), d("200"), mnBrackets))
	assertDecimal(t, "0.0535", MarginalRate(d("32570"), decimal.Zero, mnBrackets))
	assertDecimal(t, "0.068", MarginalRate(d("32571"), decimal.Zero, mnBrackets))
	assertDecimal(t, "0.0985", MarginalRate(d("900000"), decimal.Zero, mnBrackets))
}

func TestValidateBrackets(t *testing.T) {
	assert.NoError(t, ValidateBrackets(nil))
	assert.NoError(t, ValidateBrackets(mnBrackets))

	tests := map[string][]Bracket{
		"bounded last":     {NewBracket(d("0.01"), d("100"))},
		"unbounded middle": {TopBracket(d("0.01")), TopBracket(d("0.02"))},
		"unsorted":         {NewBracket(d("0.01"), d("100")), NewBracket(d("0.02"), d("50")), TopBracket(d("0.03"))},
		"negative rate":    {TopBracket(d("-0.01"))},
	}
	for name, brackets := range tests {
		assert.Error(t, ValidateBrackets(brackets), name)
	}
}

func TestDefaultTables(t *testing.T) {
	tables, err := DefaultTables()
	require.NoError(t, err)

	states := tables.States()
	assert.Len(t, states, 51)
	assert.Equal(t, "Alabama", states[0].Name)

	mn, ok := tables.State("mn")
	require.True(t, ok)
	assert.Equal(t, "Minnesota", mn.Name)
	assertDecimal(t, "14950", mn.StandardDeduction.For(domain.FilingSingle))
	assertDecimal(t, "29900", mn.StandardDeduction.For(domain.FilingMarried))
	assert.True(t, mn.Brackets[len(mn.Brackets)-1].Unbounded())

	fl, ok := tables.State("FL")
	require.True(t, ok)
	assert.False(t, fl.HasIncomeTax)

	fed := tables.Federal(domain.FilingSingle)
	assertDecimal(t, "15000", fed.StandardDeduction)
	assertDecimal(t, "30000", tables.Federal(domain.FilingMarried).StandardDeduction)
	assertDecimal(t, "15000", tables.Federal("head-of-household").StandardDeduction)

	_, ok = tables.State("ZZ")
	assert.False(t, ok)
}

func TestFilingRequired(t *testing.T) {
	tables := MustDefaultTables()
	tests := []struct {
		state  string
		income string
		days   int
		want   bool
	}{
		{"AL", "1", 0, true},
		{"AL", "0", 0, false},
		{"FL", "50000", 100, false},
		{"DC", "50000", 100, false},
		{"MN", "14950", 1, true},
		{"MN", "14949.99", 200, false},
		{"OR", "2800", 5, false},
		{"OR", "2800.01", 5, true},
		{"IL", "100000", 30, false},
		{"IL", "100", 31, true},
		{"CT", "6001", 16, true},
		{"CT", "6001", 15, false},
		{"CT", "6000", 16, false},
		{"ME", "3001", 13, true},
		{"WV", "0", 31, true},
		{"ND", "0", 20, false},
		{"ZZ", "100000", 200, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FilingRequired(tables, tt.state, d(tt.income), tt.days), "%s income %s days %d", tt.state, tt.income, tt.days)
	}
}

func TestLookupState(t *testing.T) {
	tables := MustDefaultTables()

	s, ok := LookupState(tables, "minnesota")
	require.True(t, ok)
	assert.Equal(t, "MN", s.Code)

	s, ok = LookupState(tables, " wi ")
	require.True(t, ok)
	assert.Equal(t, "Wisconsin", s.Name)

	_, ok = LookupState(tables, "Atlantis")
	assert.False(t, ok)
	_, ok = LookupState(tables, "")
	assert.False(t, ok)
}

func TestSearchStates(t *testing.T) {
	tables := MustDefaultTables()

	var names []string
	for _, s := range SearchStates(tables, "New") {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"New Hampshire", "New Jersey", "New Mexico", "New York"}, names)
	assert.Len(t, SearchStates(tables, ""), 51)
	assert.Empty(t, SearchStates(tables, "qq"))
}

func TestEstimator_EstimateState(t *testing.T) {
	est := NewEstimator(MustDefaultTables())
	itemized := domain.TaxSettings{FilingStatus: domain.FilingSingle, DeductionType: domain.DeductionItemized, ItemizedDeduction: "20000"}

	primary, err := est.EstimateState("MN", d("50000"), 200, itemized, true)
	require.NoError(t, err)
	assertDecimal(t, "20000", primary.Deduction)
	assertDecimal(t, "30000", primary.Taxable)
	assertDecimal(t, "1605", primary.Tax)
	assert.False(t, primary.FilingRequired, "the primary state is a resident filing")

	other, err := est.EstimateState("MN", d("50000"), 200, itemized, false)
	require.NoError(t, err)
	assertDecimal(t, "14950", other.Deduction)
	assertDecimal(t, "1911.135", other.Tax)
	assert.True(t, other.FilingRequired)

	fl, err := est.EstimateState("FL", d("5000"), 3, itemized, false)
	require.NoError(t, err)
	assert.False(t, fl.HasIncomeTax)
	assertDecimal(t, "0", fl.Tax)
	assertDecimal(t, "5000", fl.Taxable)

	_, err = est.EstimateState("ZZ", d("1"), 1, itemized, false)
	assert.True(t, errors.Is(err, ErrUnknownState))
}

func TestEstimator_EstimateFederal(t *testing.T) {
	est := NewEstimator(MustDefaultTables())

	single := est.EstimateFederal(d("60000"), domain.FilingSingle)
	assertDecimal(t, "45000", single.Taxable)
	assertDecimal(t, "5161.5", single.Tax)
	assertDecimal(t, "0.12", single.MarginalRate)

	married := est.EstimateFederal(d("20000"), domain.FilingMarried)
	assertDecimal(t, "0", married.Tax)
	assertDecimal(t, "0", married.Taxable)

	assert.Equal(t, domain.FilingSingle, est.EstimateFederal(d("1"), "").FilingStatus)
}

func TestEstimator_EstimateAll(t *testing.T) {
	est := NewEstimator(MustDefaultTables())
	totals := []domain.StateTotal{
		{State: "MN", Days: 20, Total: d("17307.30"), IsPrimary: true},
		{State: "FL", Days: 3, Total: d("2292.69")},
		{State: "XX", Days: 1, Total: d("10")},
	}

	out, warnings := est.EstimateAll(totals, domain.TaxSettings{})
	require.Len(t, out, 2)
	assert.Equal(t, "MN", out[0].State)
	assert.Equal(t, "FL", out[1].State)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "XX")
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()

	override := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(override, []byte(`
states:
  mn:
    name: Minnesota
    has_income_tax: true
    standard_deduction: {single: 0, married_joint: 0}
    brackets:
      - {rate: 0.05}
`), 0o644))

	tables, err := LoadTables(override)
	require.NoError(t, err)
	mn, ok := tables.State("MN")
	require.True(t, ok)
	require.Len(t, mn.Brackets, 1)
	assertDecimal(t, "500", TaxOwed(d("10000"), mn.StandardDeduction.Single, mn.Brackets))

	_, ok = tables.State("WI")
	assert.True(t, ok, "entries not in the file come from the embedded tables")

	def := MustDefaultTables()
	original, _ := def.State("MN")
	assert.Len(t, original.Brackets, 4, "defaults are not modified")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
states:
  MN:
    name: Minnesota
    has_income_tax: true
    brackets:
      - {rate: 0.05, up_to: 1000}
`), 0o644))
	_, err = LoadTables(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state MN")

	_, err = LoadTables(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
