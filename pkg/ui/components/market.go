// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// MarketView is the latest tick, pre-computed for display.
type MarketView struct {
	Block           uint64
	ObservedAt      time.Time
	ExchangeRate    decimal.Decimal
	SupplyAPY       decimal.Decimal
	QueueYears      decimal.Decimal
	QueueEmpty      bool
	Unavailable     map[string]bool
	ReferenceCoupon decimal.Decimal
	QueueCoupon     decimal.Decimal
	RelativeProfit  decimal.Decimal
	Profitable      bool
	Principal       decimal.Decimal
	RiskPremium     decimal.Decimal
}

// MarketComponent renders the feeds and the coupon comparison.
type MarketComponent struct {
	view *MarketView
}

// NewMarketComponent creates a new market component.
func NewMarketComponent() *MarketComponent {
	return &MarketComponent{}
}

// Update replaces the displayed tick.
func (m *MarketComponent) Update(v MarketView) {
	m.view = &v
}

// View renders the market component.
func (m *MarketComponent) View() string {
	if m.view == nil {
		return "Waiting for first tick..."
	}
	v := m.view

	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	positiveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	negativeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))

	feed := func(source, value string) string {
		if v.Unavailable[source] {
			return warnStyle.Render(value + "  (unavailable)")
		}
		return value
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("MARKET  #%d", v.Block)))
	sb.WriteString("\n\n")

	queue := v.QueueYears.StringFixed(4) + " years"
	if v.QueueEmpty {
		queue = "Empty"
	}

	fmt.Fprintf(&sb, "  %-20s %s\n", "stETH/ETH (Curve)", feed("price", v.ExchangeRate.StringFixed(6)))
	fmt.Fprintf(&sb, "  %-20s %s\n", "Supply APY (Aave)", feed("yield", v.SupplyAPY.Shift(2).StringFixed(4)+"%"))
	fmt.Fprintf(&sb, "  %-20s %s\n", "Queue (Lido)", feed("queue", queue))

	sb.WriteString(dimStyle.Render("  "+strings.Repeat("─", 44)) + "\n")

	fmt.Fprintf(&sb, "  %-20s %12s ETH\n", "Reference coupon", v.ReferenceCoupon.StringFixed(6))
	fmt.Fprintf(&sb, "  %-20s %12s ETH\n", "Queue coupon", v.QueueCoupon.StringFixed(6))

	result := v.RelativeProfit.StringFixed(6)
	if v.Profitable {
		result = positiveStyle.Render(fmt.Sprintf("%12s ETH  PROFITABLE", "+"+result))
	} else {
		result = negativeStyle.Render(fmt.Sprintf("%12s ETH", result))
	}
	fmt.Fprintf(&sb, "  %-20s %s\n", "Result", result)

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  principal %s ETH • risk premium %s bps • %s",
		v.Principal.String(),
		v.RiskPremium.Shift(4).StringFixed(0),
		v.ObservedAt.Format("15:04:05"))))

	return sb.String()
}
