package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/steth-arb/business/blockchain/domain"
	marketDomain "github.com/fd1az/steth-arb/business/market/domain"
)

func report(block uint64, profit string, unavailable ...string) domain.TickReport {
	return domain.TickReport{
		Sequence: block,
		Snapshot: marketDomain.MarketSnapshot{
			BlockHeight:        block,
			ExchangeRate:       decimal.RequireFromString("0.9990"),
			SupplyAPY:          decimal.RequireFromString("0.03"),
			QueueDurationYears: decimal.RequireFromString("0.0137"),
			ObservedAt:         time.Now(),
			Unavailable:        unavailable,
		},
		Result: domain.ArbitrageResult{
			ReferenceCoupon: decimal.RequireFromString("0.0004"),
			QueueCoupon:     decimal.RequireFromString("0.001"),
			RelativeProfit:  decimal.RequireFromString(profit),
		},
		Params: domain.StrategyParams{
			Principal:   decimal.NewFromInt(1),
			RiskPremium: decimal.RequireFromString("0.0015"),
		},
		StartedAt:  time.Now(),
		Duration:   40 * time.Millisecond,
		Connection: blockchainDomain.ConnectionStatus{State: blockchainDomain.StateConnected, Latency: 12 * time.Millisecond},
	}
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func newStartedModel() Model {
	m := New()
	m.onStart = nil
	m.phase = PhaseStartup
	return m
}

func TestModel_WelcomeKeyStartsModules(t *testing.T) {
	started := make(chan struct{}, 1)
	m := New()
	m.onStart = func() { started <- struct{}{} }

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, PhaseStartup, m.phase)

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("start callback not invoked")
	}
}

func TestModel_FirstReportShowsDashboard(t *testing.T) {
	m := newStartedModel()

	m = update(t, m, TickReportMsg{Report: report(100, "0.0006")})

	assert.Equal(t, PhaseDashboard, m.phase)
	assert.Equal(t, uint64(100), m.currentBlock)
	assert.Equal(t, 1, m.history.Len())
	assert.Contains(t, m.View(), "0.999000")
}

func TestModel_Stats(t *testing.T) {
	m := newStartedModel()

	m = update(t, m, TickReportMsg{Report: report(1, "0.0006")})
	m = update(t, m, TickReportMsg{Report: report(2, "-0.0100", marketDomain.SourceYield)})
	m = update(t, m, TickFailedMsg{Sequence: 3, Err: errors.New("rpc down")})

	s := m.stats.Stats()
	assert.Equal(t, int64(2), s.Ticks)
	assert.Equal(t, int64(1), s.Profitable)
	assert.Equal(t, int64(1), s.DegradedTicks)
	assert.Equal(t, int64(1), s.TickErrors)
	assert.True(t, s.BestProfit.Equal(decimal.RequireFromString("0.0006")))
	assert.InDelta(t, 40.0, s.AvgTickMs, 0.001)
	require.Len(t, m.errors, 1)
	assert.Contains(t, m.errors[0].Message, "rpc down")
}

func TestModel_PauseFreezesPanels(t *testing.T) {
	m := newStartedModel()
	m = update(t, m, TickReportMsg{Report: report(1, "0.0006")})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("p")})
	require.True(t, m.paused)

	m = update(t, m, TickReportMsg{Report: report(2, "0.0007")})
	assert.Equal(t, 1, m.history.Len())
	assert.Equal(t, int64(2), m.stats.Stats().Ticks)
	assert.Equal(t, uint64(2), m.currentBlock)
}

func TestModel_StartupSteps(t *testing.T) {
	m := newStartedModel()

	for _, step := range stepOrder[:3] {
		m = update(t, m, StartupMsg{Step: step, Status: "done"})
	}
	assert.False(t, m.startupComplete)
	assert.Equal(t, PhaseStartup, m.phase)

	m = update(t, m, StartupMsg{Step: "loop", Status: "done"})
	assert.True(t, m.startupComplete)
	assert.Equal(t, PhaseDashboard, m.phase)
}

func TestModel_ErrorPanelKeepsLastThree(t *testing.T) {
	m := newStartedModel()
	for i := 0; i < 5; i++ {
		m = update(t, m, ErrorMsg{Error: errors.New(string(rune('a' + i)))})
	}
	require.Len(t, m.errors, 3)
	assert.Equal(t, "c", m.errors[0].Message)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("e")})
	assert.Empty(t, m.errors)
}
