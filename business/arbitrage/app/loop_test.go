package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	blockchainDomain "github.com/fd1az/steth-arb/business/blockchain/domain"
	marketDomain "github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
)

type mockLogger struct {
	mu     sync.Mutex
	errors []string
}

func (m *mockLogger) Debug(context.Context, string, ...any) {}
func (m *mockLogger) Info(context.Context, string, ...any)  {}
func (m *mockLogger) Warn(context.Context, string, ...any)  {}
func (m *mockLogger) Error(_ context.Context, msg string, args ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}
func (m *mockLogger) Debugc(context.Context, int, string, ...any) {}
func (m *mockLogger) Infoc(context.Context, int, string, ...any)  {}
func (m *mockLogger) Warnc(context.Context, int, string, ...any)  {}
func (m *mockLogger) Errorc(context.Context, int, string, ...any) {}

func (m *mockLogger) errorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

type fakeSnapshots struct {
	fn    func(ctx context.Context, n int) (marketDomain.MarketSnapshot, error)
	calls int
}

func (f *fakeSnapshots) Snapshot(ctx context.Context) (marketDomain.MarketSnapshot, error) {
	f.calls++
	if f.fn != nil {
		return f.fn(ctx, f.calls)
	}
	return marketDomain.MarketSnapshot{
		BlockHeight:        uint64(19_000_000 + f.calls),
		ExchangeRate:       decimal.RequireFromString("1.05"),
		SupplyAPY:          decimal.RequireFromString("0.02"),
		QueueDurationYears: decimal.RequireFromString("0.1"),
	}, nil
}

type fakeReporter struct {
	reports  []domain.TickReport
	failures []uint64
	err      error
	panics   bool
}

func (f *fakeReporter) ReportFailure(_ context.Context, seq uint64, err error) {
	if apperror.GetCode(err) == apperror.CodeTransientTickFailure {
		f.failures = append(f.failures, seq)
	}
}

func (f *fakeReporter) Start(context.Context) error { return nil }
func (f *fakeReporter) Stop() error                 { return nil }
func (f *fakeReporter) Report(_ context.Context, r domain.TickReport) error {
	if f.panics {
		panic("render failed")
	}
	if f.err != nil {
		return f.err
	}
	f.reports = append(f.reports, r)
	return nil
}

// cancelWaiter cancels the run after a fixed number of waits and never sleeps.
type cancelWaiter struct {
	after  int
	waits  int
	cancel context.CancelFunc
}

func (w *cancelWaiter) WaitUntilNextTick(ctx context.Context, _ time.Duration) error {
	w.waits++
	if w.waits >= w.after {
		w.cancel()
	}
	return ctx.Err()
}

type staticStatus struct{}

func (staticStatus) ConnectionStatus() blockchainDomain.ConnectionStatus {
	return blockchainDomain.ConnectionStatus{State: blockchainDomain.StateConnected, LastBlock: 19_000_000}
}

func newLoop(t *testing.T, snaps SnapshotProvider, rep Reporter, log *mockLogger, opts ...LoopOption) *Loop {
	t.Helper()
	calc, err := NewCalculator(domain.StrategyParams{
		Principal:   decimal.NewFromInt(1),
		RiskPremium: decimal.RequireFromString("0.005"),
	})
	require.NoError(t, err)

	l, err := NewLoop(snaps, calc, rep, LoopConfig{Interval: time.Second}, log, opts...)
	require.NoError(t, err)
	return l
}

func TestLoop_CancelAfterNTicks(t *testing.T) {
	for _, n := range []int{1, 3, 10} {
		ctx, cancel := context.WithCancel(context.Background())
		rep := &fakeReporter{}
		waiter := &cancelWaiter{after: n, cancel: cancel}

		l := newLoop(t, &fakeSnapshots{}, rep, &mockLogger{}, WithWaiter(waiter))
		assert.Equal(t, domain.StateRunning, l.State())

		require.NoError(t, l.Run(ctx))
		cancel()

		assert.Len(t, rep.reports, n)
		assert.Equal(t, domain.StateStopped, l.State())
		assert.Equal(t, uint64(n), l.Ticks())
		for i, r := range rep.reports {
			assert.Equal(t, uint64(i+1), r.Sequence)
			assert.True(t, decimal.RequireFromString("0.0485").Equal(r.Result.RelativeProfit))
		}
	}
}

func TestLoop_CancellationNeverInterruptsTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var tickCtxErr error
	snaps := &fakeSnapshots{fn: func(tickCtx context.Context, _ int) (marketDomain.MarketSnapshot, error) {
		cancel()
		tickCtxErr = tickCtx.Err()
		return marketDomain.MarketSnapshot{ExchangeRate: decimal.NewFromInt(1)}, nil
	}}
	rep := &fakeReporter{}

	l := newLoop(t, snaps, rep, &mockLogger{}, WithWaiter(TimerWaiter{}))
	require.NoError(t, l.Run(ctx))

	assert.NoError(t, tickCtxErr, "tick context must not observe cancellation")
	assert.Len(t, rep.reports, 1, "the cancelled tick still reports")
	assert.Equal(t, 1, snaps.calls)
}

func TestLoop_AlreadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep := &fakeReporter{}
	l := newLoop(t, &fakeSnapshots{}, rep, &mockLogger{})

	require.NoError(t, l.Run(ctx))
	assert.Empty(t, rep.reports)
	assert.Equal(t, domain.StateStopped, l.State())
}

func TestLoop_TransientFailuresAreSwallowed(t *testing.T) {
	tests := []struct {
		name  string
		snaps *fakeSnapshots
		rep   *fakeReporter
	}{
		{
			name: "snapshot error",
			snaps: &fakeSnapshots{fn: func(_ context.Context, n int) (marketDomain.MarketSnapshot, error) {
				if n == 2 {
					return marketDomain.MarketSnapshot{}, errors.New("header not found")
				}
				return marketDomain.MarketSnapshot{ExchangeRate: decimal.NewFromInt(1)}, nil
			}},
			rep: &fakeReporter{},
		},
		{
			name: "snapshot panic",
			snaps: &fakeSnapshots{fn: func(_ context.Context, n int) (marketDomain.MarketSnapshot, error) {
				if n == 2 {
					panic("nil pointer")
				}
				return marketDomain.MarketSnapshot{ExchangeRate: decimal.NewFromInt(1)}, nil
			}},
			rep: &fakeReporter{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			log := &mockLogger{}

			l := newLoop(t, tt.snaps, tt.rep, log, WithWaiter(&cancelWaiter{after: 3, cancel: cancel}))
			require.NoError(t, l.Run(ctx))

			assert.Equal(t, 3, tt.snaps.calls, "loop keeps ticking after a failure")
			assert.Len(t, tt.rep.reports, 2)
			assert.Equal(t, []uint64{2}, tt.rep.failures)
			assert.Equal(t, 1, log.errorCount())
		})
	}
}

func TestLoop_ReporterFailures(t *testing.T) {
	for _, rep := range []*fakeReporter{{err: errors.New("write: broken pipe")}, {panics: true}} {
		ctx, cancel := context.WithCancel(context.Background())
		log := &mockLogger{}

		l := newLoop(t, &fakeSnapshots{}, rep, log, WithWaiter(&cancelWaiter{after: 2, cancel: cancel}))
		require.NoError(t, l.Run(ctx))
		cancel()

		assert.Equal(t, uint64(2), l.Ticks())
		assert.Equal(t, 2, log.errorCount())
		assert.True(t, l.LastTick().IsZero())
	}
}

func TestLoop_RunTickWrapsErrors(t *testing.T) {
	boom := errors.New("connection refused")
	snaps := &fakeSnapshots{fn: func(context.Context, int) (marketDomain.MarketSnapshot, error) {
		return marketDomain.MarketSnapshot{}, boom
	}}
	l := newLoop(t, snaps, &fakeReporter{}, &mockLogger{})

	_, err := l.runTick(context.Background(), [16]byte{}, 1, time.Now())
	require.ErrorIs(t, err, boom)
	assert.True(t, apperror.HasCode(err, apperror.CodeTransientTickFailure))

	rep := &fakeReporter{err: errors.New("closed")}
	l = newLoop(t, &fakeSnapshots{}, rep, &mockLogger{})
	_, err = l.runTick(context.Background(), [16]byte{}, 1, time.Now())
	assert.True(t, apperror.HasCode(err, apperror.CodeReportFailed))
}

func TestLoop_MaxTicks(t *testing.T) {
	calc, err := NewCalculator(domain.StrategyParams{Principal: decimal.NewFromInt(1)})
	require.NoError(t, err)

	rep := &fakeReporter{}
	l, err := NewLoop(&fakeSnapshots{}, calc, rep,
		LoopConfig{Interval: time.Millisecond, MaxTicks: 3}, &mockLogger{},
		WithStatusProvider(staticStatus{}))
	require.NoError(t, err)

	require.NoError(t, l.Run(context.Background()))
	require.Len(t, rep.reports, 3)
	assert.Equal(t, blockchainDomain.StateConnected, rep.reports[0].Connection.State)
	assert.False(t, l.LastTick().IsZero())

	assert.ErrorIs(t, l.Run(context.Background()), ErrLoopStopped)
}

func TestNewLoop_RejectsZeroInterval(t *testing.T) {
	calc, err := NewCalculator(domain.StrategyParams{Principal: decimal.NewFromInt(1)})
	require.NoError(t, err)

	_, err = NewLoop(&fakeSnapshots{}, calc, &fakeReporter{}, LoopConfig{}, &mockLogger{})
	assert.Equal(t, apperror.CodeConfigurationError, apperror.GetCode(err))
}

func TestTimerWaiter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, TimerWaiter{}.WaitUntilNextTick(ctx, time.Hour), context.Canceled)

	assert.NoError(t, TimerWaiter{}.WaitUntilNextTick(context.Background(), time.Millisecond))
}
