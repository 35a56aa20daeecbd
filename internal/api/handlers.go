/*
handlers.go - HTTP API handlers for the income allocation engine

ENDPOINTS:
  Calculation:
    POST   /api/calculate                 Allocate an input, returns the report
    POST   /api/tax                       Tax on an amount (brackets or state)

  States:
    GET    /api/states                    All jurisdictions (?q= searches names)
    GET    /api/states/{code}             One jurisdiction by code or name

  Scenarios:
    GET    /api/scenarios                 List saved inputs
    POST   /api/scenarios                 Save an input
    GET    /api/scenarios/{id}            Load a saved input
    PUT    /api/scenarios/{id}            Replace a saved input
    DELETE /api/scenarios/{id}            Delete a saved input
    POST   /api/scenarios/{id}/calculate  Allocate a saved input

ERROR HANDLING:
  Errors are returned as JSON with an HTTP status:
  - 400: Malformed JSON
  - 404: Unknown scenario or state
  - 422: Input that cannot be calculated (bad visiting window, unknown
         state, duplicate other-state dates)
  - 500: Store failures

  A pay period that cannot be calculated is not an HTTP error. It appears in
  the report with its own error message and the other periods are returned
  as usual.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/config"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/store/sqlite"
	"github.com/rgehrsitz/splittax/internal/tax"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds the dependencies of every endpoint
type Handler struct {
	Store     *sqlite.Store
	Tables    tax.Tables
	Parser    *config.InputParser
	Engine    *allocation.Engine
	Estimator *tax.Estimator
	Version   string

	log *logrus.Entry
}

// NewHandler wires a handler over a store and a set of tax tables
func NewHandler(store *sqlite.Store, tables tax.Tables) *Handler {
	log := logrus.WithField("module", "api")
	engine := allocation.NewEngine()
	engine.SetLogger(log)
	return &Handler{
		Store:     store,
		Tables:    tables,
		Parser:    &config.InputParser{Tables: tables},
		Engine:    engine,
		Estimator: tax.NewEstimator(tables),
		log:       log,
	}
}

func (h *Handler) logger() *logrus.Entry {
	if h.log == nil {
		return logrus.WithField("module", "api")
	}
	return h.log
}

// Health reports that the server is up
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.Version})
}

// =============================================================================
// CALCULATION ENDPOINTS
// =============================================================================

// Calculate allocates the posted input. ?daily=true adds the per-day calendar.
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	var cfg domain.Configuration
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}
	h.respondReport(w, r, &cfg)
}

func (h *Handler) respondReport(w http.ResponseWriter, r *http.Request, cfg *domain.Configuration) {
	report, err := h.calculate(r.Context(), cfg, r.URL.Query().Get("daily") == "true")
	if err != nil {
		status := calculationStatus(err)
		if status == http.StatusInternalServerError {
			h.logger().Errorf("calculation failed: %v", err)
		}
		writeError(w, status, "calculation failed", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) calculate(ctx context.Context, cfg *domain.Configuration, daily bool) (*output.Report, error) {
	config.Normalize(cfg)
	if err := h.Parser.ValidateConfiguration(cfg); err != nil {
		return nil, &validationError{err}
	}
	run, err := h.Engine.CalculateAll(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return output.BuildReport(cfg, run, output.ReportOptions{Estimator: h.Estimator, IncludeDaily: daily}), nil
}

type validationError struct{ err error }

func (e *validationError) Error() string { return e.err.Error() }
func (e *validationError) Unwrap() error { return e.err }

func calculationStatus(err error) int {
	var (
		verr *validationError
		derr *domain.InvalidDateError
	)
	switch {
	case errors.As(err, &verr), errors.As(err, &derr), errors.Is(err, allocation.ErrIncompleteSettings):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Tax computes the tax on an amount, either from explicit brackets or from a
// state's table
func (h *Handler) Tax(w http.ResponseWriter, r *http.Request) {
	var req TaxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return
	}

	if strings.TrimSpace(req.State) == "" {
		if err := tax.ValidateBrackets(req.Brackets); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "invalid brackets", err)
			return
		}
		writeJSON(w, http.StatusOK, TaxResponse{
			Tax:          tax.TaxOwed(req.TaxableGross, req.Deduction, req.Brackets),
			MarginalRate: tax.MarginalRate(req.TaxableGross, req.Deduction, req.Brackets),
		})
		return
	}

	state, ok := tax.LookupState(h.Tables, req.State)
	if !ok {
		writeError(w, http.StatusNotFound, "state not found", fmt.Errorf("%w: %q", tax.ErrUnknownState, req.State))
		return
	}
	settings := domain.TaxSettings{FilingStatus: req.FilingStatus, DeductionType: domain.DeductionStandard}
	est, err := h.Estimator.EstimateState(state.Code, req.Gross, 0, settings, true)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "estimate failed", err)
		return
	}
	writeJSON(w, http.StatusOK, TaxResponse{
		Tax:          est.Tax,
		MarginalRate: tax.MarginalRate(req.Gross, est.Deduction, state.Brackets),
		Estimate:     &est,
	})
}

// =============================================================================
// STATE ENDPOINTS
// =============================================================================

// ListStates returns every jurisdiction ordered by name
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	states := h.Tables.States()
	if q := r.URL.Query().Get("q"); q != "" {
		states = tax.SearchStates(h.Tables, q)
	}
	out := make([]StateDTO, 0, len(states))
	for _, s := range states {
		out = append(out, h.stateDTO(s))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetState returns one jurisdiction by code or full name
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	state, ok := tax.LookupState(h.Tables, code)
	if !ok {
		writeError(w, http.StatusNotFound, "state not found", fmt.Errorf("%w: %q", tax.ErrUnknownState, code))
		return
	}
	writeJSON(w, http.StatusOK, h.stateDTO(state))
}

func (h *Handler) stateDTO(s tax.StateTaxConfig) StateDTO {
	dto := StateDTO{StateTaxConfig: s}
	if f, ok := h.Tables.FilingRequirement(s.Code); ok {
		dto.Filing = &f
	}
	return dto
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

// ListScenarios returns every saved scenario without its input
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list scenarios", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// CreateScenario saves a named input
func (h *Handler) CreateScenario(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScenario(w, r)
	if !ok {
		return
	}
	sc, err := h.Store.Create(r.Context(), req.Name, req.Config)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save scenario", err)
		return
	}
	h.logger().Infof("saved scenario %s (%s)", sc.ID, sc.Name)
	writeJSON(w, http.StatusCreated, sc)
}

// GetScenario loads a saved input
func (h *Handler) GetScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.loadScenario(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// UpdateScenario replaces a saved input
func (h *Handler) UpdateScenario(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeScenario(w, r)
	if !ok {
		return
	}
	sc, err := h.Store.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Config)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// DeleteScenario removes a saved input
func (h *Handler) DeleteScenario(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CalculateScenario allocates a saved input
func (h *Handler) CalculateScenario(w http.ResponseWriter, r *http.Request) {
	sc, ok := h.loadScenario(w, r)
	if !ok {
		return
	}
	h.respondReport(w, r, &sc.Config)
}

func (h *Handler) loadScenario(w http.ResponseWriter, r *http.Request) (*sqlite.Scenario, bool) {
	sc, err := h.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return nil, false
	}
	return sc, true
}

func decodeScenario(w http.ResponseWriter, r *http.Request) (*ScenarioRequest, bool) {
	var req ScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON", err)
		return nil, false
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return nil, false
	}
	config.Normalize(&req.Config)
	return &req, true
}

// =============================================================================
// HELPERS
// =============================================================================

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, sqlite.ErrNotFound) {
		writeError(w, http.StatusNotFound, "scenario not found", nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "store error", err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
