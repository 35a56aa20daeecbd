package tui

import (
	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/output"
)

// Scene represents the different screens in the TUI
type Scene int

const (
	SceneSummary Scene = iota
	ScenePeriods
	SceneDaily
	SceneTaxes
	SceneHelp
)

// tabs are the scenes reachable with tab/shift+tab, in order
var tabs = []Scene{SceneSummary, ScenePeriods, SceneDaily, SceneTaxes}

func (s Scene) String() string {
	switch s {
	case SceneSummary:
		return "Summary"
	case ScenePeriods:
		return "Pay Periods"
	case SceneDaily:
		return "Daily"
	case SceneTaxes:
		return "Taxes"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// ReportReadyMsg carries a finished calculation
type ReportReadyMsg struct {
	Config *domain.Configuration
	Report *output.Report
}

// ErrorMsg displays an error to the user
type ErrorMsg struct {
	Err error
}
