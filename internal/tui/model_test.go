package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rgehrsitz/splittax/internal/domain"
	"github.com/rgehrsitz/splittax/internal/tax"
)

func exampleModel(t *testing.T) Model {
	t.Helper()
	load := func() (*domain.Configuration, error) { return domain.ExampleConfiguration(), nil }
	m := NewModel("example", load, tax.MustDefaultTables())

	msg := m.Init()()
	ready, ok := msg.(ReportReadyMsg)
	require.True(t, ok, "expected ReportReadyMsg, got %T", msg)

	next, _ := m.Update(ready)
	return next.(Model)
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestModel_InitCalculates(t *testing.T) {
	m := exampleModel(t)
	require.NotNil(t, m.Report())
	assert.Equal(t, "MN", m.Report().PrimaryState)
	assert.Len(t, m.Report().Daily, 23)

	view := m.View()
	assert.Contains(t, view, "SplitTax")
	assert.Contains(t, view, "Total Allocated")
	assert.Contains(t, view, "$19600.00")
	assert.Contains(t, view, "MN*")
}

func TestModel_LoadError(t *testing.T) {
	m := NewModel("broken", func() (*domain.Configuration, error) { return nil, errors.New("no such file") }, tax.MustDefaultTables())

	msg := m.Init()()
	require.IsType(t, ErrorMsg{}, msg)
	next, _ := m.Update(msg)
	view := next.(Model).View()
	assert.Contains(t, view, "Error: no such file")
	assert.Contains(t, view, "Press r to try again")
}

func TestModel_Navigation(t *testing.T) {
	m := exampleModel(t)
	assert.Equal(t, SceneSummary, m.Scene())

	m = press(t, m, "tab")
	assert.Equal(t, ScenePeriods, m.Scene())
	m = press(t, m, "tab", "tab", "tab")
	assert.Equal(t, SceneSummary, m.Scene())
	m = press(t, m, "shift+tab")
	assert.Equal(t, SceneTaxes, m.Scene())
	m = press(t, m, "3")
	assert.Equal(t, SceneDaily, m.Scene())

	m = press(t, m, "?")
	assert.Equal(t, SceneHelp, m.Scene())
	assert.Contains(t, m.View(), "recalculate")
	m = press(t, m, "tab")
	assert.Equal(t, SceneHelp, m.Scene(), "tabs are ignored on the help screen")
	m = press(t, m, "esc")
	assert.Equal(t, SceneDaily, m.Scene())
}

func TestModel_PeriodCursor(t *testing.T) {
	m := press(t, exampleModel(t), "2")
	assert.Contains(t, m.View(), "> 2025-01-15 to 2025-01-31")
	assert.Contains(t, m.View(), "13 worked days")

	m = press(t, m, "down", "down", "down")
	assert.Equal(t, 1, m.periodCursor, "cursor stops at the last period")
	assert.Contains(t, m.View(), "> 2025-02-01 to 2025-02-15")

	m = press(t, m, "up", "up")
	assert.Equal(t, 0, m.periodCursor)
}

func TestModel_FailedPeriod(t *testing.T) {
	load := func() (*domain.Configuration, error) {
		cfg := domain.ExampleConfiguration()
		cfg.PayPeriods[1].PayPeriodEnd = "2025-02-30"
		return cfg, nil
	}
	m := NewModel("bad", load, tax.MustDefaultTables())
	next, _ := m.Update(m.Init()())
	m = next.(Model)

	assert.Contains(t, m.View(), "! pay period 2025-02-01 to 2025-02-30")

	m = press(t, m, "2", "down")
	assert.Contains(t, m.View(), "FAILED")
	assert.Contains(t, m.View(), `invalid pay period end date "2025-02-30"`)
}

func TestModel_DailyScroll(t *testing.T) {
	m := exampleModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 18})
	m = press(t, next.(Model), "3")

	assert.Equal(t, 10, m.dailyPageSize())
	assert.Contains(t, m.View(), "days 1-10 of 23")

	m = press(t, m, "f")
	assert.Contains(t, m.View(), "days 11-20 of 23")
	m = press(t, m, "f")
	assert.Equal(t, 13, m.dailyOffset, "offset stops at the last full page")
	assert.Contains(t, m.View(), "days 14-23 of 23")
	m = press(t, m, "b", "b")
	assert.Equal(t, 0, m.dailyOffset)
}

func TestModel_ReloadAndQuit(t *testing.T) {
	m := exampleModel(t)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	require.NotNil(t, cmd)
	assert.True(t, next.(Model).loading)
	assert.IsType(t, ReportReadyMsg{}, cmd())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestModel_TaxesView(t *testing.T) {
	m := press(t, exampleModel(t), "4")
	view := m.View()
	assert.Contains(t, view, "Minnesota")
	assert.Contains(t, view, "no income tax")
	assert.Contains(t, view, "Federal (single)")
}
