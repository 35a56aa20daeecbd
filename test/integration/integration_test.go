package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/api"
	"github.com/rgehrsitz/splittax/internal/config"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/store/sqlite"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	exampleInput = "../testdata/example_input.yaml"
	mixedInput   = "../testdata/mixed_input.json"
)

// calculate loads an input file and runs it through the engine and report builder
func calculate(t *testing.T, path string) (*domain.Configuration, *output.Report) {
	t.Helper()
	cfg, err := config.NewInputParser().LoadFromFile(path)
	require.NoError(t, err)

	run, err := allocation.NewEngine().CalculateAll(context.Background(), cfg)
	require.NoError(t, err)
	report := output.BuildReport(cfg, run, output.ReportOptions{
		Estimator:    tax.NewEstimator(tax.MustDefaultTables()),
		IncludeDaily: true,
	})
	return cfg, report
}

func TestEndToEndCalculation(t *testing.T) {
	_, report := calculate(t, exampleInput)

	assert.Equal(t, "MN", report.PrimaryState)
	assert.Equal(t, 2, report.Calculated())
	require.Len(t, report.StateTotals, 2)

	mn, fl := report.StateTotals[0], report.StateTotals[1]
	assert.Equal(t, "MN", mn.State)
	assert.True(t, mn.IsPrimary)
	assert.Equal(t, 20, mn.Days)
	assert.Equal(t, "FL", fl.State)
	assert.Equal(t, 3, fl.Days)
	assert.True(t, report.GrandTotal.Equal(decimal.NewFromInt(19600)), report.GrandTotal.String())

	daily := decimal.Zero
	for _, d := range report.Daily {
		daily = daily.Add(d.Income)
	}
	assert.InDelta(t, 19600, daily.InexactFloat64(), 1e-6, "daily calendar sums to the allocated total")
	assert.Empty(t, report.Warnings)
}

func TestMixedInput(t *testing.T) {
	cfg, report := calculate(t, mixedInput)

	assert.Equal(t, "WI", cfg.PrimaryState)
	assert.NotEmpty(t, cfg.PayPeriods[1].ID, "missing IDs are generated")
	assert.Len(t, config.Lint(cfg), 5)

	require.Len(t, report.Periods, 4)
	assert.Equal(t, 3, report.Calculated())
	assert.Equal(t, []string{`pay period 2025-04-31 to 2025-05-14: invalid pay period start date "2025-04-31"`}, report.Failures())

	reversed := report.Periods[2].Result
	require.NotNil(t, reversed)
	assert.Zero(t, reversed.Summary.TotalWorkedDays)
	assert.True(t, reversed.TotalAllocated().IsZero())

	var states []string
	for _, st := range report.StateTotals {
		states = append(states, st.State)
	}
	assert.Equal(t, []string{"WI", "IL", "MN"}, states)
	assert.Equal(t, 19, report.StateTotals[0].Days)
	assert.True(t, report.StateTotals[0].Total.Equal(decimal.NewFromInt(4000)))
	assert.True(t, report.StateTotals[1].Total.Equal(decimal.NewFromInt(1000)))
	assert.Zero(t, report.StateTotals[2].Days, "weekend bonus attribution carries no worked days")
	assert.True(t, report.StateTotals[2].Bonus.Equal(decimal.NewFromInt(200)))
	assert.True(t, report.GrandTotal.Equal(decimal.NewFromInt(5200)))

	require.Len(t, report.Warnings, 1)
	assert.Contains(t, report.Warnings[0], "late")

	require.Len(t, report.StateTaxes, 3)
	assert.True(t, report.StateTaxes[0].Deduction.Equal(decimal.NewFromInt(32000)), "itemized deduction applies to the primary state")
	assert.Equal(t, domain.FilingMarried, report.Federal.FilingStatus)
}

func TestConfigurationValidation(t *testing.T) {
	dir := t.TempDir()
	bad := dir + "/bad.yaml"
	require.NoError(t, os.WriteFile(bad, []byte(`
primary_state: MN
visiting_dates: {start: "2025-01-01", end: "2025-02-30"}
pay_periods: []
`), 0644))

	_, err := config.NewInputParser().LoadFromFile(bad)
	require.Error(t, err)
	var derr *domain.InvalidDateError
	assert.ErrorAs(t, err, &derr)
	assert.Equal(t, "2025-02-30", derr.Value)
}

func TestOutputGeneration(t *testing.T) {
	_, report := calculate(t, mixedInput)

	for _, name := range output.FormatterNames() {
		t.Run(name, func(t *testing.T) {
			data, err := output.GetFormatterByName(name).Format(report)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}

func TestDataConsistency(t *testing.T) {
	_, first := calculate(t, exampleInput)
	for range 5 {
		_, again := calculate(t, exampleInput)
		require.Len(t, again.StateTotals, len(first.StateTotals))
		for i := range first.StateTotals {
			assert.Equal(t, first.StateTotals[i].State, again.StateTotals[i].State)
			assert.True(t, first.StateTotals[i].Total.Equal(again.StateTotals[i].Total))
		}
	}
}

func TestAPIRoundTrip(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()
	srv := httptest.NewServer(api.NewRouter(api.NewHandler(store, tax.MustDefaultTables())))
	defer srv.Close()

	cfg, err := config.NewInputParser().LoadFromFile(exampleInput)
	require.NoError(t, err)
	body, err := json.Marshal(api.ScenarioRequest{Name: "example", Config: *cfg})
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/api/scenarios", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created sqlite.Scenario
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp2, err := http.Post(srv.URL+"/api/scenarios/"+created.ID+"/calculate", "application/json", nil)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)
	var report output.Report
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&report))
	assert.True(t, report.GrandTotal.Equal(decimal.NewFromInt(19600)))
}
