// Package components provides reusable TUI components.
package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

// Stats holds running totals for display.
type Stats struct {
	Ticks         int64
	Profitable    int64
	DegradedTicks int64
	TickErrors    int64
	AvgTickMs     float64
	BestProfit    decimal.Decimal
}

// StatsComponent renders statistics.
type StatsComponent struct {
	stats Stats
}

// NewStatsComponent creates a new stats component.
func NewStatsComponent() *StatsComponent {
	return &StatsComponent{}
}

// Update updates the statistics.
func (s *StatsComponent) Update(stats Stats) {
	s.stats = stats
}

// Stats returns the current statistics.
func (s *StatsComponent) Stats() Stats {
	return s.stats
}

// View renders the stats component.
func (s *StatsComponent) View() string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)

	profitableRate := float64(0)
	if s.stats.Ticks > 0 {
		profitableRate = float64(s.stats.Profitable) / float64(s.stats.Ticks) * 100
	}

	degraded := valueStyle.Render(fmt.Sprintf("%d", s.stats.DegradedTicks))
	if s.stats.DegradedTicks > 0 {
		degraded = errorStyle.Render(fmt.Sprintf("%d", s.stats.DegradedTicks))
	}

	return style.Render("STATS") + "\n" +
		fmt.Sprintf("Ticks: %s  │  Profitable: %s (%.1f%%)  │  Best: %s ETH\n",
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Ticks)),
			valueStyle.Render(fmt.Sprintf("%d", s.stats.Profitable)),
			profitableRate,
			valueStyle.Render(s.stats.BestProfit.StringFixed(6)),
		) +
		fmt.Sprintf("Avg tick: %s  │  Degraded ticks: %s",
			valueStyle.Render(fmt.Sprintf("%.0fms", s.stats.AvgTickMs)),
			degraded,
		)
}
