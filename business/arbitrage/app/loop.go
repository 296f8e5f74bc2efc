package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	"github.com/fd1az/steth-arb/internal/apm"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/logger"
)

const instrumentationName = "github.com/fd1az/steth-arb/business/arbitrage"

// ErrLoopStopped is returned by Run on a loop that already ran.
var ErrLoopStopped = errors.New("polling loop already stopped")

// LoopConfig controls tick cadence.
type LoopConfig struct {
	Interval time.Duration
	// MaxTicks stops the loop after that many ticks. 0 runs until cancelled.
	MaxTicks uint64
}

// LoopOption configures optional collaborators.
type LoopOption func(*Loop)

// WithWaiter replaces the timer between ticks.
func WithWaiter(w Waiter) LoopOption {
	return func(l *Loop) { l.waiter = w }
}

// WithStatusProvider attaches RPC health to every report.
func WithStatusProvider(p StatusProvider) LoopOption {
	return func(l *Loop) { l.status = p }
}

type loopMetrics struct {
	ticks        metric.Int64Counter
	failures     metric.Int64Counter
	tickDuration metric.Float64Histogram
	profit       metric.Float64Gauge
}

// Loop samples the market, computes the spread and reports it, once per
// interval, until its context is cancelled.
type Loop struct {
	snapshots  SnapshotProvider
	calculator *Calculator
	reporter   Reporter
	config     LoopConfig
	logger     logger.LoggerInterface
	waiter     Waiter
	status     StatusProvider

	mu       sync.Mutex
	state    domain.LoopState
	ran      bool
	seq      atomic.Uint64
	lastTick atomic.Int64

	tracer  apm.Tracer
	metrics *loopMetrics
}

// NewLoop creates a loop in the Running state.
func NewLoop(
	snapshots SnapshotProvider,
	calculator *Calculator,
	reporter Reporter,
	cfg LoopConfig,
	log logger.LoggerInterface,
	opts ...LoopOption,
) (*Loop, error) {
	if cfg.Interval <= 0 {
		return nil, apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext("poll interval must be positive"))
	}

	l := &Loop{
		snapshots:  snapshots,
		calculator: calculator,
		reporter:   reporter,
		config:     cfg,
		logger:     log,
		waiter:     TimerWaiter{},
		state:      domain.StateRunning,
		tracer:     apm.NewTracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := l.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}
	return l, nil
}

func (l *Loop) initMetrics() error {
	meter := otel.Meter(instrumentationName)
	var err error

	l.metrics = &loopMetrics{}

	l.metrics.ticks, err = meter.Int64Counter(
		"arbitrage_ticks_total",
		metric.WithDescription("Completed ticks by outcome"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return err
	}

	l.metrics.failures, err = meter.Int64Counter(
		"arbitrage_tick_failures_total",
		metric.WithDescription("Ticks that failed and were skipped"),
		metric.WithUnit("{tick}"),
	)
	if err != nil {
		return err
	}

	l.metrics.tickDuration, err = meter.Float64Histogram(
		"arbitrage_tick_duration_ms",
		metric.WithDescription("Tick duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	l.metrics.profit, err = meter.Float64Gauge(
		"arbitrage_relative_profit_eth",
		metric.WithDescription("Latest relative profit of the queue over the reference coupon"),
		metric.WithUnit("ETH"),
	)
	return err
}

// State returns the lifecycle state.
func (l *Loop) State() domain.LoopState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// LastTick returns when the last tick completed successfully.
func (l *Loop) LastTick() time.Time {
	ns := l.lastTick.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// Ticks returns how many ticks have started.
func (l *Loop) Ticks() uint64 {
	return l.seq.Load()
}

// Run ticks until ctx is cancelled or MaxTicks is reached, then moves to
// Stopped and returns nil. A tick in progress always completes.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.ran {
		l.mu.Unlock()
		return ErrLoopStopped
	}
	l.ran = true
	l.mu.Unlock()

	defer l.stop()

	l.logger.Info(ctx, "polling loop started",
		"interval", l.config.Interval.String(),
		"max_ticks", l.config.MaxTicks)

	if ctx.Err() != nil {
		return nil
	}

	for {
		seq := l.tick(ctx)

		if l.config.MaxTicks > 0 && seq >= l.config.MaxTicks {
			l.logger.Info(ctx, "tick limit reached", "ticks", seq)
			return nil
		}

		if err := l.waiter.WaitUntilNextTick(ctx, l.config.Interval); err != nil {
			l.logger.Info(ctx, "polling loop cancelled", "ticks", seq, "reason", err.Error())
			return nil
		}
	}
}

func (l *Loop) stop() {
	l.mu.Lock()
	l.state = domain.StateStopped
	l.mu.Unlock()
}

// tick runs one iteration detached from ctx's cancellation and swallows
// any failure after logging it.
func (l *Loop) tick(parent context.Context) uint64 {
	seq := l.seq.Add(1)
	id := uuid.New()
	start := time.Now()

	ctx, span := l.tracer.StartSpanFromContext(context.WithoutCancel(parent), "arbitrage.tick")
	defer span.End()
	span.SetAttributes(
		attribute.String("tick.id", id.String()),
		attribute.Int64("tick.seq", int64(seq)),
	)

	report, err := l.runTick(ctx, id, seq, start)
	elapsed := time.Since(start)
	l.metrics.tickDuration.Record(ctx, float64(elapsed.Microseconds())/1000)

	if err != nil {
		tickErr := apperror.Wrap(err, apperror.CodeTransientTickFailure, fmt.Sprintf("tick %d", seq)).
			WithTraceID(apm.TraceID(ctx))

		args := append([]any{"tick", seq, "tick_id", id.String()}, tickErr.LogFields()...)
		l.logger.Error(ctx, "tick failed, continuing", args...)

		span.NoticeError(tickErr)
		if fr, ok := l.reporter.(FailureReporter); ok {
			fr.ReportFailure(ctx, seq, tickErr)
		}
		l.metrics.failures.Add(ctx, 1)
		l.metrics.ticks.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "failed")))
		return seq
	}

	l.lastTick.Store(time.Now().UnixNano())
	l.metrics.ticks.Add(ctx, 1, metric.WithAttributes(attribute.String("status", "ok")))
	l.metrics.profit.Record(ctx, report.Result.RelativeProfit.InexactFloat64())

	span.SetAttributes(
		attribute.Int64("block", int64(report.Snapshot.BlockHeight)),
		attribute.Bool("profitable", report.Result.Profitable()),
	)
	span.Ok("reported")

	l.logger.Debug(ctx, "tick complete",
		"tick", seq,
		"block", report.Snapshot.BlockHeight,
		"relative_profit", report.Result.RelativeProfit.String(),
		"duration", elapsed.String())
	return seq
}

func (l *Loop) runTick(ctx context.Context, id uuid.UUID, seq uint64, start time.Time) (report domain.TickReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeTransientTickFailure,
				apperror.WithMessage(fmt.Sprintf("panic during tick: %v", r)))
		}
	}()

	snapshot, err := l.snapshots.Snapshot(ctx)
	if err != nil {
		return domain.TickReport{}, apperror.Wrap(err, apperror.CodeTransientTickFailure, "snapshot")
	}

	report = domain.TickReport{
		ID:        id,
		Sequence:  seq,
		Snapshot:  snapshot,
		Result:    l.calculator.Calculate(snapshot),
		Params:    l.calculator.Params(),
		StartedAt: start,
		Duration:  time.Since(start),
	}
	if l.status != nil {
		report.Connection = l.status.ConnectionStatus()
	}

	if err := l.reporter.Report(ctx, report); err != nil {
		return domain.TickReport{}, apperror.Wrap(err, apperror.CodeReportFailed, "report")
	}
	return report, nil
}
