// Package ui provides the Bubble Tea TUI for the stETH queue monitor.
package ui

import (
	"github.com/fd1az/steth-arb/business/arbitrage/domain"
)

// Message types for TUI updates

// TickReportMsg is sent after every successful tick.
type TickReportMsg struct {
	Report domain.TickReport
}

// TickFailedMsg is sent when a tick was skipped.
type TickFailedMsg struct {
	Sequence uint64
	Err      error
}

// ErrorMsg is sent when an error occurs.
type ErrorMsg struct {
	Error error
}

// FrameMsg drives animations.
type FrameMsg struct{}

// StartModulesMsg signals that modules should start loading.
type StartModulesMsg struct{}

// LogMsg is sent to display a log message in the UI.
type LogMsg struct {
	Level   string // "info", "warn", "error"
	Message string
}

// StartupMsg is sent during application startup to show progress.
type StartupMsg struct {
	Step    string // config, ethereum, contracts, loop
	Status  string // "connecting", "connected", "done", "failed"
	Message string
}
