// Package arbitrage implements the arbitrage bounded context: the coupon
// comparison and the polling loop that drives it.
package arbitrage

import (
	"context"
	"os"

	"github.com/fd1az/steth-arb/business/arbitrage/app"
	arbitrageDI "github.com/fd1az/steth-arb/business/arbitrage/di"
	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	"github.com/fd1az/steth-arb/business/arbitrage/infra"
	blockchainDI "github.com/fd1az/steth-arb/business/blockchain/di"
	marketDI "github.com/fd1az/steth-arb/business/market/di"
	"github.com/fd1az/steth-arb/internal/config"
	"github.com/fd1az/steth-arb/internal/di"
	"github.com/fd1az/steth-arb/internal/health"
	"github.com/fd1az/steth-arb/internal/logger"
	"github.com/fd1az/steth-arb/internal/monolith"
)

// Module implements the arbitrage bounded context.
type Module struct{}

// RegisterServices registers all arbitrage services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, arbitrageDI.Calculator, func(sr di.ServiceRegistry) *app.Calculator {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)

		calc, err := app.NewCalculator(domain.StrategyParams{
			Principal:   cfg.Strategy.PrincipalDecimal(),
			RiskPremium: cfg.Strategy.RiskPremiumDecimal(),
		})
		if err != nil {
			panic("failed to create calculator: " + err.Error())
		}
		return calc
	})

	// Reporter follows the CLI mode
	di.RegisterToken(c, arbitrageDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		if cfg.App.TUIMode {
			return infra.NewTUIReporter(nil)
		}
		return infra.NewConsoleReporter(os.Stdout)
	})

	di.RegisterToken(c, arbitrageDI.Loop, func(sr di.ServiceRegistry) *app.Loop {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		loop, err := app.NewLoop(
			marketDI.GetMarketService(sr),
			arbitrageDI.GetCalculator(sr),
			arbitrageDI.GetReporter(sr),
			app.LoopConfig{
				Interval: cfg.Strategy.PollInterval,
				MaxTicks: cfg.Strategy.MaxTicks,
			},
			log,
			app.WithStatusProvider(blockchainDI.GetBlockchainService(sr)),
		)
		if err != nil {
			panic("failed to create polling loop: " + err.Error())
		}
		return loop
	})

	return nil
}

// Startup starts the reporter and registers the tick freshness check.
// The loop itself is run by the caller.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	loop := arbitrageDI.GetLoop(mono.Services())
	calc := arbitrageDI.GetCalculator(mono.Services())

	if hs := mono.Health(); hs != nil && cfg.Health.MaxTickAge > 0 {
		hs.RegisterCheck("tick", health.Freshness("tick", cfg.Health.MaxTickAge, loop.LastTick))
	}

	if err := arbitrageDI.GetReporter(mono.Services()).Start(ctx); err != nil {
		return err
	}

	log.Info(ctx, "arbitrage module started",
		"principal", calc.Params().Principal.String(),
		"risk_premium", calc.Params().RiskPremium.String(),
		"poll_interval", cfg.Strategy.PollInterval.String())
	return nil
}
