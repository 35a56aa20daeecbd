package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ShareBar draws part/whole as a bar of the given width
func ShareBar(part, whole decimal.Decimal, width int, color lipgloss.TerminalColor) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if whole.IsPositive() && part.IsPositive() {
		filled = int(part.Div(whole).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart())
	}
	filled = min(max(filled, 0), width)
	return lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled)) +
		lipgloss.NewStyle().Faint(true).Render(strings.Repeat("░", width-filled))
}
