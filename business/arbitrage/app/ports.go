// Package app contains application services and port definitions for the arbitrage context.
package app

import (
	"context"
	"time"

	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/steth-arb/business/blockchain/domain"
	marketDomain "github.com/fd1az/steth-arb/business/market/domain"
)

// Reporter is the sink for tick results.
type Reporter interface {
	// Start prepares the sink before the first tick.
	Start(ctx context.Context) error

	// Report delivers one tick. An error fails the tick, not the loop.
	Report(ctx context.Context, report domain.TickReport) error

	// Stop flushes and releases the sink.
	Stop() error
}

// FailureReporter is implemented by sinks that also surface skipped ticks.
type FailureReporter interface {
	ReportFailure(ctx context.Context, seq uint64, err error)
}

// SnapshotProvider assembles the market view for a tick.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (marketDomain.MarketSnapshot, error)
}

// StatusProvider exposes RPC connection health for reports.
type StatusProvider interface {
	ConnectionStatus() blockchainDomain.ConnectionStatus
}

// Waiter suspends the loop between ticks. It returns ctx.Err() once the
// context is cancelled; this is the only point the loop observes cancellation.
type Waiter interface {
	WaitUntilNextTick(ctx context.Context, interval time.Duration) error
}

// TimerWaiter waits on a timer.
type TimerWaiter struct{}

func (TimerWaiter) WaitUntilNextTick(ctx context.Context, interval time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t := time.NewTimer(interval)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
