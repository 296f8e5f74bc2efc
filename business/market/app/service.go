package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/logger"
)

const instrumentationName = "github.com/fd1az/steth-arb/business/market"

// ServiceConfig controls snapshot assembly.
type ServiceConfig struct {
	// ConcurrentFetch issues the three reads in parallel. The snapshot is
	// still assembled only after all of them finish.
	ConcurrentFetch bool
}

// Service assembles a MarketSnapshot from the price, yield and queue sources.
type Service struct {
	reader  ContractReader
	sources []Source
	config  ServiceConfig
	logger  logger.LoggerInterface
	now     func() time.Time

	tracer   trace.Tracer
	failures metric.Int64Counter
}

// NewService creates a Service. The sources are fetched in the given order
// and fill ExchangeRate, SupplyAPY and QueueDurationYears respectively.
func NewService(reader ContractReader, price, yield, queue Source, cfg ServiceConfig, log logger.LoggerInterface) (*Service, error) {
	failures, err := otel.Meter(instrumentationName).Int64Counter(
		"market_source_failures_total",
		metric.WithDescription("Source reads that fell back to the zero sentinel"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	return &Service{
		reader:   reader,
		sources:  []Source{price, yield, queue},
		config:   cfg,
		logger:   log,
		now:      time.Now,
		tracer:   otel.Tracer(instrumentationName),
		failures: failures,
	}, nil
}

// Sources returns the sources in fetch order.
func (s *Service) Sources() []Source {
	return s.sources
}

type reading struct {
	value decimal.Decimal
	err   error
}

// Snapshot reads the block height and all three sources. A failed source
// contributes zero and is listed in Unavailable; only a block height failure
// is returned as an error.
func (s *Service) Snapshot(ctx context.Context) (domain.MarketSnapshot, error) {
	ctx, span := s.tracer.Start(ctx, "market.snapshot")
	defer span.End()

	block, err := s.reader.LatestBlock(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "block height")
		return domain.MarketSnapshot{}, err
	}

	readings := s.fetch(ctx)

	snapshot := domain.MarketSnapshot{
		BlockHeight:        block.Number,
		ExchangeRate:       readings[0].value,
		SupplyAPY:          readings[1].value,
		QueueDurationYears: readings[2].value,
		ObservedAt:         s.now(),
	}

	for i, r := range readings {
		if r.err == nil {
			continue
		}
		src := s.sources[i]
		snapshot.Unavailable = append(snapshot.Unavailable, src.Name())

		args := []any{"source", src.Name(), "contract", src.Contract().Hex()}
		var appErr *apperror.AppError
		if errors.As(r.err, &appErr) {
			args = append(args, appErr.LogFields()...)
		} else {
			args = append(args, "error", r.err)
		}
		s.logger.Warn(ctx, "source unavailable, using zero", args...)
		s.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("source", src.Name())))
	}

	span.SetAttributes(
		attribute.Int64("block", int64(snapshot.BlockHeight)),
		attribute.StringSlice("unavailable", snapshot.Unavailable),
	)
	span.SetStatus(codes.Ok, "assembled")
	return snapshot, nil
}

func (s *Service) fetch(ctx context.Context) []reading {
	readings := make([]reading, len(s.sources))

	if !s.config.ConcurrentFetch {
		for i, src := range s.sources {
			readings[i] = s.read(ctx, src)
		}
		return readings
	}

	// Sources never fail the group; each failure is kept in its own slot.
	var g errgroup.Group
	for i, src := range s.sources {
		g.Go(func() error {
			readings[i] = s.read(ctx, src)
			return nil
		})
	}
	_ = g.Wait()
	return readings
}

// read enforces the zero-sentinel contract regardless of what the source
// returned alongside its error. A panic is confined to the source's slot.
func (s *Service) read(ctx context.Context, src Source) (r reading) {
	defer func() {
		if p := recover(); p != nil {
			r = reading{
				value: decimal.Zero,
				err:   domain.NewSourceUnavailable(src.Name(), src.Contract(), fmt.Errorf("panic: %v", p)),
			}
		}
	}()

	v, err := src.Fetch(ctx)
	if err != nil {
		var su *domain.SourceUnavailable
		if !errors.As(err, &su) {
			err = domain.NewSourceUnavailable(src.Name(), src.Contract(), err)
		}
		return reading{value: decimal.Zero, err: err}
	}
	return reading{value: v}
}
