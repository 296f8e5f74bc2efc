// Package ethereum provides the go-ethereum adapter for contract reads.
package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/steth-arb/business/blockchain/app"
	"github.com/fd1az/steth-arb/business/blockchain/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/circuitbreaker"
	"github.com/fd1az/steth-arb/internal/logger"
	"github.com/fd1az/steth-arb/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/steth-arb/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/steth-arb/business/blockchain/infra/ethereum"
)

var (
	_ app.ContractReader = (*Reader)(nil)
	_ app.ContractBinder = (*Reader)(nil)
	_ app.StatusReporter = (*Reader)(nil)
)

// Client is the subset of *ethclient.Client the reader needs.
type Client interface {
	geth.ContractCaller
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	ChainID(ctx context.Context) (*big.Int, error)
}

// ReaderConfig holds call pacing settings.
type ReaderConfig struct {
	CallTimeout    time.Duration // 0 waits as long as ctx allows
	RateLimitRPS   float64
	RateLimitBurst int
}

type binding struct {
	name string
	abi  abi.ABI
	cb   *circuitbreaker.CircuitBreaker[[]byte]
}

type readerMetrics struct {
	callsTotal  metric.Int64Counter
	callLatency metric.Float64Histogram
	headBlock   metric.Int64Gauge
}

// Reader implements ContractReader over JSON-RPC.
// Each bound contract has its own circuit breaker so one failing contract
// cannot starve reads from the others.
type Reader struct {
	client  Client
	config  ReaderConfig
	logger  logger.LoggerInterface
	limiter *ratelimit.Limiter
	headCB  *circuitbreaker.CircuitBreaker[*types.Header]

	mu       sync.RWMutex
	bindings map[common.Address]*binding

	lastLatency atomic.Int64
	lastBlock   atomic.Uint64
	lastSuccess atomic.Int64
	failures    atomic.Uint64

	tracer  trace.Tracer
	metrics *readerMetrics
}

// NewReader creates a reader. Contracts must be bound before they are called.
func NewReader(client Client, cfg ReaderConfig, log logger.LoggerInterface) (*Reader, error) {
	r := &Reader{
		client:   client,
		config:   cfg,
		logger:   log,
		limiter:  ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst),
		bindings: make(map[common.Address]*binding),
		tracer:   otel.Tracer(tracerName),
	}

	r.headCB = circuitbreaker.New[*types.Header](r.breakerConfig("eth-head"))

	if err := r.initMetrics(); err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return r, nil
}

func (r *Reader) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	r.metrics = &readerMetrics{}

	r.metrics.callsTotal, err = meter.Int64Counter(
		"eth_calls_total",
		metric.WithDescription("Total JSON-RPC reads by contract, method and outcome"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return err
	}

	r.metrics.callLatency, err = meter.Float64Histogram(
		"eth_call_latency_ms",
		metric.WithDescription("JSON-RPC read latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	r.metrics.headBlock, err = meter.Int64Gauge(
		"eth_head_block",
		metric.WithDescription("Latest observed block number"),
		metric.WithUnit("{block}"),
	)
	return err
}

func (r *Reader) breakerConfig(name string) circuitbreaker.Config {
	cfg := circuitbreaker.DefaultConfig(name)
	cfg.OnStateChange = func(name string, from, to gobreaker.State) {
		r.logger.Warn(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	return cfg
}

// Bind registers the ABI for a contract address. Rebinding replaces the ABI
// and resets the contract's breaker.
func (r *Reader) Bind(contract common.Address, name string, parsed abi.ABI) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bindings[contract] = &binding{
		name: name,
		abi:  parsed,
		cb:   circuitbreaker.New[[]byte](r.breakerConfig("eth-call-" + name)),
	}
}

func (r *Reader) binding(contract common.Address) (*binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bindings[contract]
	return b, ok
}

// Call encodes method with args, executes eth_call at the latest block and
// decodes the outputs.
func (r *Reader) Call(ctx context.Context, contract common.Address, method string, args ...any) ([]any, error) {
	b, ok := r.binding(contract)
	if !ok {
		return nil, apperror.New(apperror.CodeContractNotBound,
			apperror.WithContext(contract.Hex()))
	}

	ctx, span := r.tracer.Start(ctx, "eth.call",
		trace.WithAttributes(
			attribute.String("contract", contract.Hex()),
			attribute.String("contract_name", b.name),
			attribute.String("method", method),
		),
	)
	defer span.End()

	data, err := b.abi.Pack(method, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "encode failed")
		return nil, apperror.New(apperror.CodeABIEncodeFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s.%s", b.name, method)))
	}

	start := time.Now()
	raw, err := execute(ctx, r, b.cb, func(callCtx context.Context) ([]byte, error) {
		return r.client.CallContract(callCtx, geth.CallMsg{To: &contract, Data: data}, nil)
	})
	r.record(ctx, b.name, method, start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return nil, r.classify(err, apperror.CodeContractCallFailed, fmt.Sprintf("%s.%s", b.name, method))
	}

	values, err := b.abi.Unpack(method, raw)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return nil, apperror.New(apperror.CodeABIDecodeFailed,
			apperror.WithCause(err),
			apperror.WithContext(fmt.Sprintf("%s.%s (%d bytes)", b.name, method, len(raw))))
	}

	span.SetAttributes(attribute.Int("outputs", len(values)))
	span.SetStatus(codes.Ok, "decoded")
	return values, nil
}

// LatestBlock fetches the head header.
func (r *Reader) LatestBlock(ctx context.Context) (domain.Block, error) {
	ctx, span := r.tracer.Start(ctx, "eth.latest_block")
	defer span.End()

	start := time.Now()
	header, err := execute(ctx, r, r.headCB, func(callCtx context.Context) (*types.Header, error) {
		return r.client.HeaderByNumber(callCtx, nil)
	})
	r.record(ctx, "chain", "latest_block", start, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return domain.Block{}, r.classify(err, apperror.CodeBlockNotFound, "latest block")
	}
	if header == nil || header.Number == nil {
		return domain.Block{}, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext("empty header"))
	}

	block := domain.Block{
		Number:    header.Number.Uint64(),
		Hash:      header.Hash(),
		Timestamp: time.Unix(int64(header.Time), 0).UTC(),
	}

	r.lastBlock.Store(block.Number)
	r.metrics.headBlock.Record(ctx, int64(block.Number))

	span.SetAttributes(attribute.Int64("block", int64(block.Number)))
	span.SetStatus(codes.Ok, "fetched")
	return block, nil
}

// ChainID asks the node which chain it serves.
func (r *Reader) ChainID(ctx context.Context) (uint64, error) {
	callCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	id, err := r.client.ChainID(callCtx)
	if err != nil {
		return 0, r.classify(err, apperror.CodeEthereumRPCError, "chain id")
	}
	return id.Uint64(), nil
}

// execute applies rate limiting, the per-call timeout and the breaker.
func execute[T any](ctx context.Context, r *Reader, cb *circuitbreaker.CircuitBreaker[T], fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if err := r.limiter.Wait(ctx); err != nil {
		return zero, apperror.New(apperror.CodeRateLimitExceeded, apperror.WithCause(err))
	}

	callCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	return cb.Execute(func() (T, error) {
		return fn(callCtx)
	})
}

func (r *Reader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.config.CallTimeout)
}

func (r *Reader) classify(err error, code apperror.Code, what string) error {
	switch {
	case apperror.IsAppError(err):
		return err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return apperror.New(apperror.CodeCircuitOpen, apperror.WithCause(err), apperror.WithContext(what))
	case errors.Is(err, context.DeadlineExceeded):
		return apperror.New(apperror.CodeServiceTimeout, apperror.WithCause(err), apperror.WithContext(what))
	default:
		return apperror.New(code, apperror.WithCause(err), apperror.WithContext(what))
	}
}

func (r *Reader) record(ctx context.Context, contract, method string, start time.Time, err error) {
	elapsed := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
		r.failures.Add(1)
	} else {
		r.failures.Store(0)
		r.lastLatency.Store(int64(elapsed))
		r.lastSuccess.Store(time.Now().UnixNano())
	}

	attrs := metric.WithAttributes(
		attribute.String("contract", contract),
		attribute.String("method", method),
		attribute.String("status", status),
	)
	r.metrics.callsTotal.Add(ctx, 1, attrs)
	r.metrics.callLatency.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// Status summarizes recent RPC health.
func (r *Reader) Status() domain.ConnectionStatus {
	status := domain.ConnectionStatus{
		State:     domain.StateUnknown,
		Latency:   time.Duration(r.lastLatency.Load()),
		LastBlock: r.lastBlock.Load(),
		Failures:  r.failures.Load(),
	}

	if ns := r.lastSuccess.Load(); ns > 0 {
		status.LastUpdate = time.Unix(0, ns)
		status.State = domain.StateConnected
	}

	r.mu.RLock()
	for _, b := range r.bindings {
		if b.cb.IsOpen() {
			status.OpenCircuits = append(status.OpenCircuits, b.name)
		}
	}
	r.mu.RUnlock()
	sort.Strings(status.OpenCircuits)

	switch {
	case r.headCB.IsOpen():
		status.State = domain.StateDisconnected
		status.OpenCircuits = append(status.OpenCircuits, r.headCB.Name())
	case status.Failures > 0 || len(status.OpenCircuits) > 0:
		status.State = domain.StateDegraded
	}

	return status
}
