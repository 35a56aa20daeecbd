package output

import (
	"bytes"
	"encoding/csv"
	"strconv"
)

// CSVFormatter writes one row per state per pay period, a row per failed
// pay period, and a TOTAL row per state.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string { return "csv" }

func (c CSVFormatter) Format(r *Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	header := []string{"PayPeriod", "Start", "End", "State", "Days", "RegularPay", "Bonus", "Total", "Error"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, p := range r.Periods {
		if p.Result == nil {
			if err := w.Write([]string{p.ID, p.Start, p.End, "", "", "", "", "", p.Error}); err != nil {
				return nil, err
			}
			continue
		}
		for _, state := range p.Result.Allocations.States() {
			a := p.Result.Allocations[state]
			if a.IsZero() {
				continue
			}
			row := []string{
				p.ID, p.Start, p.End, state,
				strconv.Itoa(a.Days),
				a.RegularPay.StringFixed(2),
				a.Bonus.StringFixed(2),
				a.Total.StringFixed(2),
				"",
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	for _, t := range r.StateTotals {
		row := []string{
			"TOTAL", r.VisitStart, r.VisitEnd, t.State,
			strconv.Itoa(t.Days),
			t.RegularPay.StringFixed(2),
			t.Bonus.StringFixed(2),
			t.Total.StringFixed(2),
			"",
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
