// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// ResultRow is one tick in the history table.
type ResultRow struct {
	Time         string
	BlockNumber  uint64
	ExchangeRate decimal.Decimal
	SupplyAPY    decimal.Decimal
	QueueYears   decimal.Decimal
	Profit       decimal.Decimal
	Profitable   bool
	Degraded     bool
}

// HistoryComponent renders recent ticks, newest first.
type HistoryComponent struct {
	rows    []ResultRow
	maxRows int
	offset  int
	visible int
}

// NewHistoryComponent creates a history keeping maxRows entries.
func NewHistoryComponent(maxRows int) *HistoryComponent {
	return &HistoryComponent{
		rows:    make([]ResultRow, 0),
		maxRows: maxRows,
		visible: 10,
	}
}

// Add prepends a row.
func (h *HistoryComponent) Add(row ResultRow) {
	h.rows = append([]ResultRow{row}, h.rows...)
	if len(h.rows) > h.maxRows {
		h.rows = h.rows[:h.maxRows]
	}
}

// Len returns the number of stored rows.
func (h *HistoryComponent) Len() int {
	return len(h.rows)
}

// Clear clears the history.
func (h *HistoryComponent) Clear() {
	h.rows = make([]ResultRow, 0)
	h.offset = 0
}

// ScrollUp moves towards newer rows.
func (h *HistoryComponent) ScrollUp() {
	if h.offset > 0 {
		h.offset--
	}
}

// ScrollDown moves towards older rows.
func (h *HistoryComponent) ScrollDown() {
	if h.offset < len(h.rows)-h.visible {
		h.offset++
	}
}

// View renders the history component.
func (h *HistoryComponent) View() string {
	if len(h.rows) == 0 {
		return "No ticks yet..."
	}

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	profitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	unprofitableStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	degradedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	end := h.offset + h.visible
	if end > len(h.rows) {
		end = len(h.rows)
	}

	result := headerStyle.Render(fmt.Sprintf("HISTORY (%d-%d of %d)", h.offset+1, end, len(h.rows))) + "\n"
	result += "┌──────────┬──────────┬──────────┬─────────┬─────────┬────────────┬───┐\n"
	result += "│   Time   │  Block   │  Price   │   APY   │  Queue  │   Profit   │   │\n"
	result += "├──────────┼──────────┼──────────┼─────────┼─────────┼────────────┼───┤\n"

	for _, row := range h.rows[h.offset:end] {
		style, icon := unprofitableStyle, "✗"
		if row.Profitable {
			style, icon = profitableStyle, "✓"
		}
		if row.Degraded {
			icon = degradedStyle.Render("!")
		} else {
			icon = style.Render(icon)
		}

		result += fmt.Sprintf("│ %8s │%9d │ %8s │%7s%% │%8sy │ %s │ %s │\n",
			row.Time,
			row.BlockNumber,
			row.ExchangeRate.StringFixed(6),
			row.SupplyAPY.Shift(2).StringFixed(3),
			row.QueueYears.StringFixed(4),
			style.Render(fmt.Sprintf("%10s", row.Profit.StringFixed(6))),
			icon,
		)
	}

	result += "└──────────┴──────────┴──────────┴─────────┴─────────┴────────────┴───┘"
	return result
}
