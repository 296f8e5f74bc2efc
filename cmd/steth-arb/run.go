package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fd1az/steth-arb/business/arbitrage"
	arbitrageDI "github.com/fd1az/steth-arb/business/arbitrage/di"
	"github.com/fd1az/steth-arb/business/blockchain"
	"github.com/fd1az/steth-arb/business/market"
	"github.com/fd1az/steth-arb/internal/apm"
	"github.com/fd1az/steth-arb/internal/config"
	"github.com/fd1az/steth-arb/internal/health"
	"github.com/fd1az/steth-arb/internal/logger"
	"github.com/fd1az/steth-arb/internal/metrics"
	"github.com/fd1az/steth-arb/internal/monolith"
	"github.com/fd1az/steth-arb/pkg/ui"
)

// startupSteps names the dashboard step each module completes.
var startupSteps = []string{"ethereum", "contracts", "loop"}

func run(ctx context.Context, opts runOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.App.TUIMode = !opts.cliMode
	if opts.ticks > 0 {
		cfg.Strategy.MaxTicks = opts.ticks
	}

	log := newLogger(cfg)
	if !cfg.App.TUIMode {
		log.Info(ctx, "starting stETH withdrawal queue monitor",
			"version", version,
			"environment", cfg.App.Environment,
		)
	}

	shutdownTelemetry, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer shutdownTelemetry()

	var healthServer *health.Server
	if cfg.Health.Enabled {
		healthServer = health.NewServer(cfg.Health.Port, version, log)
		if err := healthServer.Start(); err != nil {
			log.Warn(ctx, "failed to start health server", "error", err)
		} else {
			log.Info(ctx, "health server started", "port", cfg.Health.Port)
		}
		defer healthServer.Stop(context.Background())
	}

	mono, err := monolith.New(ctx, cfg, log, healthServer)
	if err != nil {
		return fmt.Errorf("failed to create monolith: %w", err)
	}
	defer mono.Close()

	// Dependency order
	modules := []monolith.Module{
		&blockchain.Module{},
		&market.Module{},
		&arbitrage.Module{},
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	if cfg.App.TUIMode {
		return runTUI(ctx, mono, modules)
	}

	if err := mono.StartModules(ctx, modules...); err != nil {
		return fmt.Errorf("failed to start modules: %w", err)
	}
	return runCLI(ctx, mono, log)
}

func newLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.App.LogLevel)

	switch {
	case cfg.App.TUIMode:
		// The dashboard owns the terminal.
		return logger.New(io.Discard, level, cfg.App.Name, apm.TraceID)
	case strings.EqualFold(cfg.App.LogFormat, "json"):
		return logger.New(os.Stderr, level, cfg.App.Name, apm.TraceID)
	default:
		return logger.NewConsole(os.Stderr, level, cfg.App.Name, apm.TraceID)
	}
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log logger.LoggerInterface) (func(), error) {
	if !cfg.Telemetry.Enabled {
		return func() {}, nil
	}

	traceProvider, err := apm.NewTraceProvider(ctx, apm.Config{
		Provider:    apm.Provider(cfg.Telemetry.TraceProvider),
		ServiceName: cfg.Telemetry.ServiceName,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}

	metricOpts := []metrics.OptionFn{
		metrics.WithServiceName(cfg.Telemetry.ServiceName),
		metrics.WithProviderConfig(metrics.ProviderCfg{Provider: metrics.PrometheusProvider}),
	}
	if cfg.Telemetry.OTLPEndpoint != "" && apm.Provider(cfg.Telemetry.TraceProvider) == apm.OTLPProvider {
		metricOpts = append(metricOpts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(
			cfg.Telemetry.OTLPEndpoint, apm.ParseHeaders(cfg.Telemetry.OTLPHeaders), true)))
	}

	meterProvider, err := metrics.NewMetricProvider(metricOpts...)
	if err != nil {
		_ = traceProvider.Stop()
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	port := cfg.Telemetry.PrometheusPort
	if port == 0 {
		port = 9090
	}
	promServer := metrics.NewPrometheusServer(nil, metrics.WithPort(strconv.Itoa(port)))
	go func() {
		if err := promServer.ListenAndServe(); err != nil {
			log.Warn(ctx, "prometheus server stopped", "error", err)
		}
	}()
	log.Info(ctx, "prometheus metrics server started", "port", port)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = promServer.Shutdown(shutdownCtx)
		_ = meterProvider.Shutdown(shutdownCtx)
		_ = traceProvider.Stop()
	}, nil
}

func runCLI(ctx context.Context, mono monolith.Monolith, log logger.LoggerInterface) error {
	log.Info(ctx, "all modules started, polling")

	loop := arbitrageDI.GetLoop(mono.Services())
	if err := loop.Run(ctx); err != nil {
		return fmt.Errorf("polling loop: %w", err)
	}

	if err := arbitrageDI.GetReporter(mono.Services()).Stop(); err != nil {
		log.Error(ctx, "error stopping reporter", "error", err)
	}
	return nil
}

type starter interface {
	StartModules(ctx context.Context, modules ...monolith.Module) error
	monolith.Monolith
}

func runTUI(ctx context.Context, mono starter, modules []monolith.Module) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Show the welcome screen immediately
	p := tea.NewProgram(ui.New(), tea.WithAltScreen())
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		ui.Send(ui.StartupMsg{Step: "config", Status: "done"})
		for i, m := range modules {
			ui.Send(ui.StartupMsg{Step: startupSteps[i], Status: "connecting"})
			if err := mono.StartModules(ctx, m); err != nil {
				ui.Send(ui.StartupMsg{Step: startupSteps[i], Status: "failed", Message: err.Error()})
				errCh <- fmt.Errorf("failed to start modules: %w", err)
				return
			}
			ui.Send(ui.StartupMsg{Step: startupSteps[i], Status: "done"})
		}

		errCh <- runAndQuit(ctx, arbitrageDI.GetLoop(mono.Services()), p.Quit)
	}()

	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	cancel()
	return awaitLoop(os.Stdout, errCh)
}

type runner interface {
	Run(ctx context.Context) error
}

// runAndQuit runs the loop and closes the dashboard when it returns, whether
// it was cancelled or ran out of ticks.
func runAndQuit(ctx context.Context, loop runner, quit func()) error {
	defer quit()
	return loop.Run(ctx)
}

// awaitLoop prints the shutdown notice once the dashboard has released the
// terminal and blocks until the loop goroutine reports. The in-flight tick
// always finishes before the loop returns.
func awaitLoop(out io.Writer, errCh <-chan error) error {
	fmt.Fprintln(out, "Exiting...")
	return <-errCh
}
