package output

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"
)

// PDFFormatter renders a printable Letter-size report
type PDFFormatter struct{}

func (p PDFFormatter) Name() string { return "pdf" }

func (p PDFFormatter) Format(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetMargins(18, 18, 18)
	pdf.SetAutoPageBreak(true, 18)
	pdf.AliasNbPages("{nb}")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-14)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 6, "Page "+strconv.Itoa(pdf.PageNo())+" of {nb}", "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	drawHeader(pdf, r)
	drawStateTotals(pdf, r)
	drawPeriods(pdf, r)
	drawTaxes(pdf, r)
	drawWarnings(pdf, r)

	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	pageW, _ := pdf.GetPageSize()
	marginL, _, marginR, _ := pdf.GetMargins()
	return pageW - marginL - marginR
}

func drawHeader(pdf *fpdf.Fpdf, r *Report) {
	w := contentWidth(pdf)
	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(w, 10, "  MULTI-STATE INCOME ALLOCATION", "", 1, "L", true, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(w/2, 5.5, "Primary state: "+r.PrimaryState, "", 0, "L", false, 0, "")
	pdf.CellFormat(w/2, 5.5, "Visiting: "+r.VisitStart+" to "+r.VisitEnd, "", 1, "R", false, 0, "")
	pdf.CellFormat(w/2, 5.5, fmt.Sprintf("Pay periods: %d of %d calculated", r.Calculated(), len(r.Periods)), "", 0, "L", false, 0, "")
	pdf.CellFormat(w/2, 5.5, "Generated "+r.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "R", false, 0, "")
	pdf.Ln(4)
}

func sectionTitle(pdf *fpdf.Fpdf, title string) {
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentWidth(pdf), 6, title, "1", 1, "L", true, 0, "")
}

// allocationTable draws a State/Days/Regular/Bonus/Total table
func allocationTable(pdf *fpdf.Fpdf, rows [][5]string, bold func(i int) bool) {
	w := contentWidth(pdf)
	cols := []float64{w * 0.22, w * 0.12, w * 0.22, w * 0.22, w * 0.22}
	pdf.SetFillColor(30, 30, 30)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 8.5)
	for i, h := range []string{"State", "Days", "Regular Pay", "Bonus", "Total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(cols[i], 6.5, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetTextColor(0, 0, 0)

	for i, row := range rows {
		style := ""
		if bold != nil && bold(i) {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		for j, cell := range row {
			align := "R"
			if j == 0 {
				align = "L"
			}
			pdf.CellFormat(cols[j], 6, cell, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(3)
}

func drawStateTotals(pdf *fpdf.Fpdf, r *Report) {
	sectionTitle(pdf, "STATE TOTALS")
	rows := make([][5]string, 0, len(r.StateTotals)+1)
	for _, t := range r.StateTotals {
		name := t.State
		if t.IsPrimary {
			name += " (primary)"
		}
		rows = append(rows, [5]string{name, strconv.Itoa(t.Days), FormatCurrency(t.RegularPay), FormatCurrency(t.Bonus), FormatCurrency(t.Total)})
	}
	rows = append(rows, [5]string{"Total", "", "", "", FormatCurrency(r.GrandTotal)})
	allocationTable(pdf, rows, func(i int) bool { return i == len(rows)-1 })
}

func drawPeriods(pdf *fpdf.Fpdf, r *Report) {
	sectionTitle(pdf, "PAY PERIODS")
	w := contentWidth(pdf)
	for _, p := range r.Periods {
		pdf.SetFont("Helvetica", "B", 9)
		if p.Result == nil {
			pdf.SetTextColor(185, 28, 28)
			pdf.MultiCell(w, 5.5, p.Error, "", "L", false)
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(2)
			continue
		}
		s := p.Result.Summary
		pdf.CellFormat(w, 6, fmt.Sprintf("%s   net %s, %d worked days at %s/day",
			p.Label(), FormatCurrency(s.RegularPay), s.TotalWorkedDays, FormatCurrency(s.DailyRate)), "", 1, "L", false, 0, "")

		var rows [][5]string
		for _, state := range p.Result.Allocations.States() {
			a := p.Result.Allocations[state]
			if a.IsZero() {
				continue
			}
			rows = append(rows, [5]string{state, strconv.Itoa(a.Days), FormatCurrency(a.RegularPay), FormatCurrency(a.Bonus), FormatCurrency(a.Total)})
		}
		allocationTable(pdf, rows, nil)
	}
}

func drawTaxes(pdf *fpdf.Fpdf, r *Report) {
	if len(r.StateTaxes) == 0 && r.Federal == nil {
		return
	}
	sectionTitle(pdf, "ESTIMATED INCOME TAX")
	w := contentWidth(pdf)
	pdf.SetFont("Helvetica", "", 9)
	for _, e := range r.StateTaxes {
		line := fmt.Sprintf("%s: no income tax", e.Name)
		if e.HasIncomeTax {
			line = fmt.Sprintf("%s: income %s, deduction %s, tax %s (%s effective)",
				e.Name, FormatCurrency(e.Gross), FormatCurrency(e.Deduction), FormatCurrency(e.Tax), FormatPercentage(e.EffectiveRate()))
		}
		if e.FilingRequired {
			line += ". Nonresident return required"
		}
		pdf.MultiCell(w, 5.5, line, "", "L", false)
	}
	if r.Federal != nil {
		pdf.MultiCell(w, 5.5, fmt.Sprintf("Federal (%s): taxable %s, tax %s, marginal rate %s",
			r.Federal.FilingStatus, FormatCurrency(r.Federal.Taxable), FormatCurrency(r.Federal.Tax), FormatPercentage(r.Federal.MarginalRate)), "", "L", false)
	}
	pdf.Ln(3)
}

func drawWarnings(pdf *fpdf.Fpdf, r *Report) {
	if len(r.Warnings) == 0 {
		return
	}
	sectionTitle(pdf, "WARNINGS")
	pdf.SetFont("Helvetica", "", 9)
	for _, w := range r.Warnings {
		pdf.MultiCell(contentWidth(pdf), 5.5, "- "+w, "", "L", false)
	}
}
