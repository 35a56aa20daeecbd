package output

import (
	"bytes"
	"fmt"
	"strings"
)

// ConsoleFormatter renders a plain-text report for the terminal
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, strings.Repeat("=", 72))
	fmt.Fprintln(&buf, "MULTI-STATE INCOME ALLOCATION")
	fmt.Fprintln(&buf, strings.Repeat("=", 72))
	fmt.Fprintf(&buf, "Primary state:  %s\n", r.PrimaryState)
	fmt.Fprintf(&buf, "Visiting dates: %s to %s\n", r.VisitStart, r.VisitEnd)
	fmt.Fprintf(&buf, "Pay periods:    %d of %d calculated\n", r.Calculated(), len(r.Periods))
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "KEY ASSUMPTIONS:")
	for _, a := range DefaultAssumptions {
		fmt.Fprintf(&buf, "• %s\n", a)
	}
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "STATE TOTALS")
	fmt.Fprintln(&buf, strings.Repeat("-", 72))
	fmt.Fprintf(&buf, "%-8s %6s %16s %14s %16s\n", "State", "Days", "Regular Pay", "Bonus", "Total")
	for _, t := range r.StateTotals {
		state := t.State
		if t.IsPrimary {
			state += "*"
		}
		fmt.Fprintf(&buf, "%-8s %6d %16s %14s %16s\n", state, t.Days,
			FormatCurrency(t.RegularPay), FormatCurrency(t.Bonus), FormatCurrency(t.Total))
	}
	fmt.Fprintf(&buf, "%-8s %6s %16s %14s %16s\n", "TOTAL", "", "", "", FormatCurrency(r.GrandTotal))
	fmt.Fprintln(&buf, "* primary state")
	fmt.Fprintln(&buf)

	fmt.Fprintln(&buf, "PAY PERIODS")
	fmt.Fprintln(&buf, strings.Repeat("-", 72))
	for _, p := range r.Periods {
		if p.Result == nil {
			fmt.Fprintf(&buf, "%s  FAILED: %s\n", p.Label(), p.Error)
			continue
		}
		s := p.Result.Summary
		fmt.Fprintf(&buf, "%s  net %s, %d worked days at %s/day\n",
			p.Label(), FormatCurrency(s.RegularPay), s.TotalWorkedDays, FormatCurrency(s.DailyRate))
		for _, state := range p.Result.Allocations.States() {
			a := p.Result.Allocations[state]
			if a.IsZero() {
				continue
			}
			fmt.Fprintf(&buf, "    %-4s %3d days  regular %12s  bonus %10s  total %12s\n",
				state, a.Days, FormatCurrency(a.RegularPay), FormatCurrency(a.Bonus), FormatCurrency(a.Total))
		}
	}
	fmt.Fprintln(&buf)

	if len(r.StateTaxes) > 0 {
		fmt.Fprintln(&buf, "ESTIMATED STATE INCOME TAX")
		fmt.Fprintln(&buf, strings.Repeat("-", 72))
		for _, e := range r.StateTaxes {
			if !e.HasIncomeTax {
				fmt.Fprintf(&buf, "%-4s no income tax\n", e.State)
				continue
			}
			filing := ""
			if e.FilingRequired {
				filing = "  (nonresident return required)"
			}
			fmt.Fprintf(&buf, "%-4s income %12s  deduction %10s  tax %10s  effective %7s%s\n",
				e.State, FormatCurrency(e.Gross), FormatCurrency(e.Deduction), FormatCurrency(e.Tax),
				FormatPercentage(e.EffectiveRate()), filing)
		}
		fmt.Fprintln(&buf)
	}
	if r.Federal != nil {
		fmt.Fprintf(&buf, "Federal (%s): taxable %s, tax %s, marginal rate %s\n",
			r.Federal.FilingStatus, FormatCurrency(r.Federal.Taxable), FormatCurrency(r.Federal.Tax),
			FormatPercentage(r.Federal.MarginalRate))
		fmt.Fprintln(&buf)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(&buf, "WARNINGS:")
		for _, w := range r.Warnings {
			fmt.Fprintf(&buf, "! %s\n", w)
		}
		fmt.Fprintln(&buf)
	}

	if len(r.Daily) > 0 {
		fmt.Fprintln(&buf, "DAILY ALLOCATION")
		fmt.Fprintln(&buf, strings.Repeat("-", 72))
		for _, d := range r.Daily {
			fmt.Fprintf(&buf, "%s %s  %-4s %12s\n", d.Date.Format("2006-01-02"), d.Date.Format("Mon"), d.State, FormatCurrency(d.Income))
		}
	}

	return buf.Bytes(), nil
}
