// Package market implements the market bounded context: the three on-chain
// feeds and the per-tick snapshot built from them.
package market

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	blockchainApp "github.com/fd1az/steth-arb/business/blockchain/app"
	blockchainDI "github.com/fd1az/steth-arb/business/blockchain/di"
	"github.com/fd1az/steth-arb/business/blockchain/infra/ethereum"
	"github.com/fd1az/steth-arb/business/market/app"
	marketDI "github.com/fd1az/steth-arb/business/market/di"
	"github.com/fd1az/steth-arb/business/market/infra/aave"
	"github.com/fd1az/steth-arb/business/market/infra/curve"
	"github.com/fd1az/steth-arb/business/market/infra/lido"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/asset"
	"github.com/fd1az/steth-arb/internal/config"
	"github.com/fd1az/steth-arb/internal/di"
	"github.com/fd1az/steth-arb/internal/logger"
	"github.com/fd1az/steth-arb/internal/monolith"
)

// Module implements the market bounded context.
type Module struct{}

// RegisterServices registers all market services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	di.RegisterToken(c, marketDI.PriceSource, func(sr di.ServiceRegistry) app.Source {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		in, out, err := priceAssets(sr.Get(monolith.ServiceAssetRegistry).(*asset.Registry))
		if err != nil {
			panic("failed to create price source: " + err.Error())
		}
		return curve.NewPriceSource(blockchainDI.GetContractReader(sr), cfg.Contracts.CurvePoolAddress(), in, out)
	})

	di.RegisterToken(c, marketDI.YieldSource, func(sr di.ServiceRegistry) app.Source {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		return aave.NewYieldSource(blockchainDI.GetContractReader(sr),
			cfg.Contracts.AavePoolAddress(), cfg.Contracts.WstETHAddress())
	})

	di.RegisterToken(c, marketDI.QueueSource, func(sr di.ServiceRegistry) app.Source {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		return lido.NewQueueDurationSource(blockchainDI.GetContractReader(sr), cfg.Contracts.WithdrawalQueueAddress())
	})

	// Register Service (public - consumed by the arbitrage loop)
	di.RegisterToken(c, marketDI.MarketService, func(sr di.ServiceRegistry) *app.Service {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)

		svc, err := app.NewService(
			blockchainDI.GetContractReader(sr),
			marketDI.GetPriceSource(sr),
			marketDI.GetYieldSource(sr),
			marketDI.GetQueueSource(sr),
			app.ServiceConfig{ConcurrentFetch: cfg.Strategy.ConcurrentFetch},
			log,
		)
		if err != nil {
			panic("failed to create market service: " + err.Error())
		}
		return svc
	})

	return nil
}

// Startup checks the lending reserve is a known token, then loads and binds
// every source's ABI. Any failure is fatal.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	reserve, err := checkReserve(mono.AssetRegistry(), cfg.Contracts.WstETHAddress())
	if err != nil {
		return err
	}
	log.Debug(ctx, "aave reserve asset", "symbol", reserve.Symbol(), "decimals", reserve.Decimals())

	reader := blockchainDI.GetContractReader(mono.Services())
	binder, ok := reader.(blockchainApp.ContractBinder)
	if !ok {
		return apperror.New(apperror.CodeStartupFailure,
			apperror.WithContext("contract reader does not accept ABI bindings"))
	}

	svc := marketDI.GetMarketService(mono.Services())
	for _, src := range svc.Sources() {
		bindable, ok := src.(app.Bindable)
		if !ok {
			continue
		}
		if err := BindSource(binder, bindable.Binding(), cfg.Contracts.ABIDir); err != nil {
			return err
		}
		log.Debug(ctx, "contract bound", "source", src.Name(), "contract", src.Contract().Hex())
	}

	log.Info(ctx, "market module started",
		"abi_dir", cfg.Contracts.ABIDir,
		"concurrent_fetch", cfg.Strategy.ConcurrentFetch)
	return nil
}

// priceAssets returns the asset sold on the pool and the native coin it is
// quoted in.
func priceAssets(reg *asset.Registry) (in, out *asset.Asset, err error) {
	in, ok := reg.BySymbol(asset.STETH.Symbol())
	if !ok {
		return nil, nil, apperror.New(apperror.CodeStartupFailure,
			apperror.WithContext("stETH is not a registered asset"))
	}
	out, ok = reg.Native()
	if !ok {
		return nil, nil, apperror.New(apperror.CodeStartupFailure,
			apperror.WithContext("no native asset registered"))
	}
	return in, out, nil
}

// checkReserve rejects a reserve address the registry does not know, since
// its supply rate would be quoted for an unknown token.
func checkReserve(reg *asset.Registry, reserve common.Address) (*asset.Asset, error) {
	a, ok := reg.ByAddress(reserve)
	if !ok {
		return nil, apperror.New(apperror.CodeStartupFailure,
			apperror.WithContext(fmt.Sprintf("aave reserve %s is not a registered asset", reserve.Hex())))
	}
	return a, nil
}

// BindSource loads b's ABI, from abiDir when set, and binds it.
func BindSource(binder blockchainApp.ContractBinder, b app.Binding, abiDir string) error {
	parsed, err := ethereum.LoadABI(abiDir, b.Name, b.ABI)
	if err != nil {
		return apperror.Wrap(err, apperror.CodeStartupFailure, b.Name)
	}
	if err := ethereum.RequireMethods(parsed, b.Name, b.Methods...); err != nil {
		return apperror.Wrap(err, apperror.CodeStartupFailure, b.Name)
	}
	binder.Bind(b.Contract, b.Name, parsed)
	return nil
}
