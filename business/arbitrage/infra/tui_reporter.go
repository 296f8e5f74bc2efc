package infra

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/steth-arb/business/arbitrage/app"
	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	"github.com/fd1az/steth-arb/pkg/ui"
)

var (
	_ app.Reporter        = (*TUIReporter)(nil)
	_ app.FailureReporter = (*TUIReporter)(nil)
)

// TUIReporter implements Reporter for Bubble Tea TUI.
type TUIReporter struct {
	send func(tea.Msg)
}

// NewTUIReporter creates a reporter that forwards ticks through send.
// A nil send uses ui.Send.
func NewTUIReporter(send func(tea.Msg)) *TUIReporter {
	if send == nil {
		send = ui.Send
	}
	return &TUIReporter{send: send}
}

// Start marks the loop step as done on the startup screen.
func (r *TUIReporter) Start(_ context.Context) error {
	r.send(ui.StartupMsg{Step: "loop", Status: "done"})
	return nil
}

// Report sends one tick to the dashboard.
func (r *TUIReporter) Report(_ context.Context, report domain.TickReport) error {
	r.send(ui.TickReportMsg{Report: report})
	return nil
}

// ReportFailure shows a skipped tick in the error panel.
func (r *TUIReporter) ReportFailure(_ context.Context, seq uint64, err error) {
	r.send(ui.TickFailedMsg{Sequence: seq, Err: err})
}

// Stop is a no-op; the program owns the terminal.
func (r *TUIReporter) Stop() error {
	return nil
}
