// Package tui is a terminal browser for allocation results: state totals,
// per-period breakdowns, the daily calendar and tax estimates.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rgehrsitz/splittax/internal/allocation"
	"github.com/rgehrsitz/splittax/internal/config"
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/tax"
)

// Loader supplies the input to calculate. It is called again on every reload.
type Loader func() (*domain.Configuration, error)

// FileLoader reads and validates an input file on each call
func FileLoader(parser *config.InputParser, path string) Loader {
	return func() (*domain.Configuration, error) {
		return parser.LoadFromFile(path)
	}
}

// Model represents the entire application state
type Model struct {
	// Navigation
	scene         Scene
	previousScene Scene

	// Terminal dimensions
	width  int
	height int

	// Input and results
	source    string
	load      Loader
	engine    *allocation.Engine
	estimator *tax.Estimator
	config    *domain.Configuration
	report    *output.Report

	// Cursor within the pay period list and scroll offset of the daily view
	periodCursor int
	dailyOffset  int

	keys keyMap

	err     error
	loading bool
}

// NewModel creates a model that calculates whatever load returns. source
// names the input in the title bar.
func NewModel(source string, load Loader, tables tax.Tables) Model {
	return Model{
		scene:     SceneSummary,
		source:    source,
		load:      load,
		engine:    allocation.NewEngine(),
		estimator: tax.NewEstimator(tables),
		keys:      defaultKeyMap(),
		loading:   true,
		width:     80,
		height:    24,
	}
}

// Init starts the first calculation
func (m Model) Init() tea.Cmd {
	return calculateCmd(m.load, m.engine, m.estimator)
}

// calculateCmd loads the input and runs every pay period
func calculateCmd(load Loader, engine *allocation.Engine, estimator *tax.Estimator) tea.Cmd {
	return func() tea.Msg {
		cfg, err := load()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		run, err := engine.CalculateAll(context.Background(), cfg)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		report := output.BuildReport(cfg, run, output.ReportOptions{Estimator: estimator, IncludeDaily: true})
		return ReportReadyMsg{Config: cfg, Report: report}
	}
}

// Scene returns the scene on screen
func (m Model) Scene() Scene { return m.scene }

// Report returns the last calculation, or nil
func (m Model) Report() *output.Report { return m.report }

func (m Model) dailyPageSize() int {
	return max(m.height-8, 5)
}
