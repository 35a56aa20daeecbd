package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rgehrsitz/splittax/internal/output"
	"github.com/rgehrsitz/splittax/internal/tui/components"
	"github.com/rgehrsitz/splittax/internal/tui/tuistyles"
)

// View renders the current state of the application
func (m Model) View() string {
	var content string
	switch {
	case m.loading && m.report == nil:
		content = tuistyles.SubtitleStyle.Render("Calculating...")
	case m.err != nil:
		content = m.renderError()
	case m.report == nil:
		content = "No results to display."
	default:
		switch m.scene {
		case SceneSummary:
			content = m.renderSummary()
		case ScenePeriods:
			content = m.renderPeriods()
		case SceneDaily:
			content = m.renderDaily()
		case SceneTaxes:
			content = m.renderTaxes()
		case SceneHelp:
			content = m.renderHelp()
		}
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderTitleBar(),
		"",
		content,
		"",
		m.renderStatusBar(),
	)
}

func (m Model) renderTitleBar() string {
	title := tuistyles.TitleStyle.Render("SplitTax - Multi-State Income Allocation")
	if m.source != "" {
		title += "  " + tuistyles.SubtitleStyle.Render(m.source)
	}

	tabLabels := make([]string, 0, len(tabs))
	for i, s := range tabs {
		label := fmt.Sprintf("%d %s", i+1, s)
		if s == m.scene {
			tabLabels = append(tabLabels, tuistyles.ActiveTabStyle.Render(label))
		} else {
			tabLabels = append(tabLabels, tuistyles.TabStyle.Render(label))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinHorizontal(lipgloss.Top, tabLabels...))
}

func (m Model) renderStatusBar() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		parts = append(parts, tuistyles.HelpKeyStyle.Render(b.Help().Key)+" "+tuistyles.HelpDescStyle.Render(b.Help().Desc))
	}
	status := strings.Join(parts, "  ")
	if m.loading {
		status = "recalculating...  " + status
	}
	return tuistyles.StatusBarStyle.Render(status)
}

func (m Model) renderError() string {
	return tuistyles.ErrorStyle.Render("Error: "+m.err.Error()) + "\n\n" +
		tuistyles.SubtitleStyle.Render("Press r to try again or q to quit.")
}

func (m Model) renderSummary() string {
	r := m.report
	cards := []*components.MetricCard{
		components.NewMetricCard("Total Allocated", output.FormatCurrency(r.GrandTotal)),
		components.NewMetricCard("Pay Periods", fmt.Sprintf("%d of %d", r.Calculated(), len(r.Periods))).
			WithDescription("calculated"),
		components.NewMetricCard("Primary State", r.PrimaryState).
			WithDescription(r.VisitStart + " to " + r.VisitEnd).
			WithWidth(28),
	}
	columns := max(m.width/30, 1)

	var b strings.Builder
	b.WriteString(components.MetricGrid(cards, columns))
	b.WriteString("\n\n")
	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%-6s %5s %14s %12s %14s  %s", "State", "Days", "Regular", "Bonus", "Total", "Share")))
	b.WriteString("\n")
	for _, t := range r.StateTotals {
		state := fmt.Sprintf("%-6s", t.State)
		if t.IsPrimary {
			state = tuistyles.PrimaryStateStyle.Render(fmt.Sprintf("%-6s", t.State+"*"))
		}
		fmt.Fprintf(&b, "%s %5d %14s %12s %14s  %s\n", state, t.Days,
			output.FormatCurrency(t.RegularPay), output.FormatCurrency(t.Bonus), output.FormatCurrency(t.Total),
			components.ShareBar(t.Total, r.GrandTotal, 20, tuistyles.ColorPrimary))
	}
	if len(r.StateTotals) == 0 {
		b.WriteString(tuistyles.SubtitleStyle.Render("No income was allocated.") + "\n")
	}

	if len(r.Warnings) > 0 || len(r.Failures()) > 0 {
		b.WriteString("\n")
		for _, f := range r.Failures() {
			b.WriteString(tuistyles.ErrorStyle.Render("! "+f) + "\n")
		}
		for _, w := range r.Warnings {
			b.WriteString(tuistyles.WarningStyle.Render("- "+w) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderPeriods() string {
	r := m.report
	if len(r.Periods) == 0 {
		return tuistyles.SubtitleStyle.Render("The input has no pay periods.")
	}

	var b strings.Builder
	for i, p := range r.Periods {
		line := fmt.Sprintf("%s  net %s", p.Label(), output.FormatCurrency(p.NetPay))
		if p.Result == nil {
			line += "  FAILED"
		}
		if i == m.periodCursor {
			b.WriteString(tuistyles.SelectedRowStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")

	p := r.Periods[m.periodCursor]
	if p.Result == nil {
		b.WriteString(tuistyles.ErrorStyle.Render(p.Error))
		return b.String()
	}

	s := p.Result.Summary
	b.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("%d worked days at %s per day", s.TotalWorkedDays, output.FormatCurrency(s.DailyRate))))
	b.WriteString("\n")
	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%-6s %5s %14s %12s %14s", "State", "Days", "Regular", "Bonus", "Total")))
	b.WriteString("\n")
	for _, state := range p.Result.Allocations.States() {
		a := p.Result.Allocations[state]
		if a.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "%-6s %5d %14s %12s %14s\n", state, a.Days,
			output.FormatCurrency(a.RegularPay), output.FormatCurrency(a.Bonus), output.FormatCurrency(a.Total))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderDaily() string {
	daily := m.report.Daily
	if len(daily) == 0 {
		return tuistyles.SubtitleStyle.Render("No worked days in the calculated pay periods.")
	}

	end := min(m.dailyOffset+m.dailyPageSize(), len(daily))
	var b strings.Builder
	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%-16s %-6s %12s", "Date", "State", "Income")))
	b.WriteString("\n")
	for _, d := range daily[m.dailyOffset:end] {
		state := fmt.Sprintf("%-6s", d.State)
		if d.IsPrimary {
			state = tuistyles.PrimaryStateStyle.Render(state)
		}
		fmt.Fprintf(&b, "%-16s %s %12s\n", d.Date.Format("2006-01-02 Mon"), state, output.FormatCurrency(d.Income))
	}
	b.WriteString(tuistyles.SubtitleStyle.Render(fmt.Sprintf("days %d-%d of %d", m.dailyOffset+1, end, len(daily))))
	return b.String()
}

func (m Model) renderTaxes() string {
	r := m.report
	if len(r.StateTaxes) == 0 && r.Federal == nil {
		return tuistyles.SubtitleStyle.Render("No tax estimates.")
	}

	var b strings.Builder
	b.WriteString(tuistyles.TableHeaderStyle.Render(fmt.Sprintf("%-16s %14s %12s %14s %12s  %s", "State", "Income", "Deduction", "Tax", "Effective", "Nonresident return")))
	b.WriteString("\n")
	for _, e := range r.StateTaxes {
		filing := ""
		if e.FilingRequired {
			filing = "required"
		}
		if !e.HasIncomeTax {
			fmt.Fprintf(&b, "%-16s %14s %12s %14s %12s  %s\n", e.Name, output.FormatCurrency(e.Gross), "-", "no income tax", "-", filing)
			continue
		}
		fmt.Fprintf(&b, "%-16s %14s %12s %14s %12s  %s\n", e.Name, output.FormatCurrency(e.Gross),
			output.FormatCurrency(e.Deduction), output.FormatCurrency(e.Tax), output.FormatPercentage(e.EffectiveRate()), filing)
	}
	if f := r.Federal; f != nil {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Federal (%s): taxable %s, tax %s, marginal rate %s", f.FilingStatus,
			output.FormatCurrency(f.Taxable), output.FormatCurrency(f.Tax), output.FormatPercentage(f.MarginalRate))
	}
	return b.String()
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, k := range m.keys.FullHelp() {
		fmt.Fprintf(&b, "%s  %s\n", tuistyles.HelpKeyStyle.Render(fmt.Sprintf("%-10s", k.Help().Key)), tuistyles.HelpDescStyle.Render(k.Help().Desc))
	}
	fmt.Fprintf(&b, "%s  %s\n", tuistyles.HelpKeyStyle.Render(fmt.Sprintf("%-10s", "1-4")), tuistyles.HelpDescStyle.Render("jump to view"))
	b.WriteString("\n")
	b.WriteString(tuistyles.SubtitleStyle.Render("* marks the primary state. Press ? or esc to return."))
	return b.String()
}
