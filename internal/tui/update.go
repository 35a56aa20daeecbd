package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles all messages and updates the model state
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampCursors()
		return m, nil

	case ReportReadyMsg:
		m.loading = false
		m.err = nil
		m.config = msg.Config
		m.report = msg.Report
		m.clampCursors()
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Reload):
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, calculateCmd(m.load, m.engine, m.estimator)

	case key.Matches(msg, m.keys.Help):
		if m.scene == SceneHelp {
			m.scene = m.previousScene
		} else {
			m.previousScene = m.scene
			m.scene = SceneHelp
		}
		return m, nil
	}

	if m.scene == SceneHelp {
		if msg.String() == "esc" {
			m.scene = m.previousScene
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.scene = m.stepTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.scene = m.stepTab(-1)
	case key.Matches(msg, m.keys.Up):
		m.scroll(-1)
	case key.Matches(msg, m.keys.Down):
		m.scroll(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scroll(-m.dailyPageSize())
	case key.Matches(msg, m.keys.PageDn):
		m.scroll(m.dailyPageSize())
	default:
		if n := msg.String(); len(n) == 1 && n[0] >= '1' && int(n[0]-'1') < len(tabs) {
			m.scene = tabs[n[0]-'1']
		}
	}
	return m, nil
}

func (m Model) stepTab(delta int) Scene {
	for i, s := range tabs {
		if s == m.scene {
			return tabs[(i+delta+len(tabs))%len(tabs)]
		}
	}
	return SceneSummary
}

func (m *Model) scroll(delta int) {
	switch m.scene {
	case ScenePeriods:
		m.periodCursor += delta
	case SceneDaily:
		m.dailyOffset += delta
	}
	m.clampCursors()
}

func (m *Model) clampCursors() {
	periods, days := 0, 0
	if m.report != nil {
		periods = len(m.report.Periods)
		days = len(m.report.Daily)
	}
	m.periodCursor = min(max(m.periodCursor, 0), max(periods-1, 0))
	m.dailyOffset = min(max(m.dailyOffset, 0), max(days-m.dailyPageSize(), 0))
}
