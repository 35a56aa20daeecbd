package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/store/sqlite"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, tax.MustDefaultTables())
	h.Version = "test"
	return NewRouter(h)
}

func do(t *testing.T, srv http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, HealthResponse{Status: "ok", Version: "test"}, decode[HealthResponse](t, rec))
}

func TestCalculate(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/calculate", domain.ExampleConfiguration())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	report := decode[output.Report](t, rec)
	assert.Equal(t, "MN", report.PrimaryState)
	require.Len(t, report.Periods, 2)
	assert.Empty(t, report.Failures())
	require.Len(t, report.StateTotals, 2)
	assert.Equal(t, "MN", report.StateTotals[0].State)
	assert.Equal(t, 20, report.StateTotals[0].Days)
	assert.InDelta(t, 19600, report.GrandTotal.InexactFloat64(), 1e-6)
	require.Len(t, report.StateTaxes, 2)
	assert.NotNil(t, report.Federal)
	assert.Empty(t, report.Daily)

	rec = do(t, srv, http.MethodPost, "/api/calculate?daily=true", domain.ExampleConfiguration())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[output.Report](t, rec).Daily, 23)
}

func TestCalculate_FailedPeriodIsNotAnHTTPError(t *testing.T) {
	cfg := domain.ExampleConfiguration()
	cfg.PayPeriods[0].PayPeriodStart = "2025-13-01"

	rec := do(t, newTestServer(t), http.MethodPost, "/api/calculate", cfg)
	require.Equal(t, http.StatusOK, rec.Code)

	report := decode[output.Report](t, rec)
	assert.Equal(t, 1, report.Calculated())
	require.Len(t, report.Failures(), 1)
	assert.Contains(t, report.Failures()[0], "pay period 2025-13-01 to 2025-01-31")
}

func TestCalculate_Errors(t *testing.T) {
	srv := newTestServer(t)

	badWindow := domain.ExampleConfiguration()
	badWindow.VisitingDates.End = "2025-02-30"
	reversed := domain.ExampleConfiguration()
	reversed.VisitingDates = domain.VisitingDates{Start: "2025-05-31", End: "2025-01-01"}
	unknown := domain.ExampleConfiguration()
	unknown.PrimaryState = "ZZ"
	overlap := domain.ExampleConfiguration()
	overlap.OtherStateDays["WI"] = []string{"2025-01-16"}

	tests := []struct {
		name   string
		body   any
		status int
		detail string
	}{
		{"malformed JSON", "{", http.StatusBadRequest, ""},
		{"invalid visiting date", badWindow, http.StatusUnprocessableEntity, `invalid visiting end date "2025-02-30"`},
		{"reversed visiting window", reversed, http.StatusUnprocessableEntity, "before start date"},
		{"unknown state", unknown, http.StatusUnprocessableEntity, "ZZ"},
		{"date in two states", overlap, http.StatusUnprocessableEntity, "2025-01-16"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, http.MethodPost, "/api/calculate", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			resp := decode[ErrorResponse](t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.Contains(t, resp.Details, tt.detail)
		})
	}
}

func TestTax_Brackets(t *testing.T) {
	srv := newTestServer(t)

	req := TaxRequest{
		TaxableGross: decimal.NewFromInt(25000),
		Deduction:    decimal.NewFromInt(5000),
		Brackets: []tax.Bracket{
			tax.NewBracket(decimal.RequireFromString("0.10"), decimal.NewFromInt(10000)),
			tax.TopBracket(decimal.RequireFromString("0.20")),
		},
	}
	rec := do(t, srv, http.MethodPost, "/api/tax", req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[TaxResponse](t, rec)
	assert.True(t, resp.Tax.Equal(decimal.NewFromInt(3000)), resp.Tax.String())
	assert.True(t, resp.MarginalRate.Equal(decimal.RequireFromString("0.2")))
	assert.Nil(t, resp.Estimate)

	rec = do(t, srv, http.MethodPost, "/api/tax", `{"taxableGross": 100, "brackets": [{"rate": 0.1, "upTo": 50}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTax_State(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/tax", `{"state": "Florida", "gross": 50000}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[TaxResponse](t, rec)
	assert.True(t, resp.Tax.IsZero())
	require.NotNil(t, resp.Estimate)
	assert.False(t, resp.Estimate.HasIncomeTax)

	rec = do(t, srv, http.MethodPost, "/api/tax", `{"state": "mn", "gross": "60000", "filingStatus": "married"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[TaxResponse](t, rec)
	require.NotNil(t, resp.Estimate)
	assert.Equal(t, "MN", resp.Estimate.State)
	assert.True(t, resp.Tax.IsPositive())
	assert.True(t, resp.Estimate.Deduction.GreaterThan(decimal.Zero))

	rec = do(t, srv, http.MethodPost, "/api/tax", `{"state": "Atlantis", "gross": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStates(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/states", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	all := decode[[]StateDTO](t, rec)
	assert.Len(t, all, 51)

	rec = do(t, srv, http.MethodGet, "/api/states?q=new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]StateDTO](t, rec), 4)

	rec = do(t, srv, http.MethodGet, "/api/states/mn", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mn := decode[StateDTO](t, rec)
	assert.Equal(t, "Minnesota", mn.Name)
	assert.True(t, mn.HasIncomeTax)
	assert.NotEmpty(t, mn.Brackets)
	require.NotNil(t, mn.Filing)
	assert.Equal(t, "MN", mn.Filing.Code)

	rec = do(t, srv, http.MethodGet, "/api/states/ZZ", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenarios(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/api/scenarios", ScenarioRequest{Name: "Spring", Config: *domain.ExampleConfiguration()})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[sqlite.Scenario](t, rec)
	require.NotEmpty(t, created.ID)

	rec = do(t, srv, http.MethodGet, "/api/scenarios/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MN", decode[sqlite.Scenario](t, rec).Config.PrimaryState)

	cfg := *domain.ExampleConfiguration()
	cfg.PrimaryState = "wi"
	rec = do(t, srv, http.MethodPut, "/api/scenarios/"+created.ID, ScenarioRequest{Name: "Spring (WI)", Config: cfg})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[sqlite.Scenario](t, rec)
	assert.Equal(t, "Spring (WI)", updated.Name)
	assert.Equal(t, "WI", updated.Config.PrimaryState)

	rec = do(t, srv, http.MethodPost, "/api/scenarios/"+created.ID+"/calculate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[output.Report](t, rec)
	assert.Equal(t, "WI", report.PrimaryState)
	assert.InDelta(t, 19600, report.GrandTotal.InexactFloat64(), 1e-6)

	rec = do(t, srv, http.MethodGet, "/api/scenarios", nil)
	list := decode[[]sqlite.Summary](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	rec = do(t, srv, http.MethodDelete, "/api/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = do(t, srv, http.MethodGet, "/api/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodDelete, "/api/scenarios/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodPost, "/api/scenarios/"+created.ID+"/calculate", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestScenarios_Validation(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, http.MethodPost, "/api/scenarios", ScenarioRequest{Name: "  ", Config: *domain.ExampleConfiguration()})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "name is required", decode[ErrorResponse](t, rec).Error)

	rec = do(t, srv, http.MethodPut, "/api/scenarios/missing", ScenarioRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodPost, "/api/scenarios", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
