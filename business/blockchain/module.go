// Package blockchain implements the blockchain bounded context for Ethereum integration.
package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/fd1az/steth-arb/business/blockchain/app"
	blockchainDI "github.com/fd1az/steth-arb/business/blockchain/di"
	"github.com/fd1az/steth-arb/business/blockchain/infra/ethereum"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/config"
	"github.com/fd1az/steth-arb/internal/di"
	"github.com/fd1az/steth-arb/internal/logger"
	"github.com/fd1az/steth-arb/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Register ContractReader (public - shared by the market sources)
	di.RegisterToken(c, blockchainDI.ContractReader, func(sr di.ServiceRegistry) app.ContractReader {
		cfg := sr.Get(monolith.ServiceConfig).(*config.Config)
		log := sr.Get(monolith.ServiceLogger).(logger.LoggerInterface)
		client := sr.Get(monolith.ServiceEthClient).(*ethclient.Client)

		reader, err := ethereum.NewReader(client, ethereum.ReaderConfig{
			CallTimeout:    cfg.Ethereum.CallTimeout,
			RateLimitRPS:   cfg.Ethereum.RateLimitRPS,
			RateLimitBurst: cfg.Ethereum.RateLimitBurst,
		}, log)
		if err != nil {
			panic("failed to create contract reader: " + err.Error())
		}
		return reader
	})

	// Register BlockchainService (public - exposed to other modules)
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		return app.NewBlockchainService(blockchainDI.GetContractReader(sr))
	})

	return nil
}

// Startup verifies the node serves the configured chain and registers the
// rpc health check.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	cfg := mono.Config()

	reader := blockchainDI.GetContractReader(mono.Services())
	svc := blockchainDI.GetBlockchainService(mono.Services())

	if err := verifyChain(ctx, reader, cfg.Ethereum.ChainID, log); err != nil {
		return err
	}

	if hs := mono.Health(); hs != nil {
		hs.RegisterCheck("rpc", svc.CheckRPC)
	}

	log.Info(ctx, "blockchain module started", "rpc", cfg.Ethereum.HTTPURL, "chain_id", cfg.Ethereum.ChainID)
	return nil
}

// verifyChain fails on a chain id mismatch. An unreachable node only warns;
// the loop keeps retrying on every tick.
func verifyChain(ctx context.Context, reader app.ContractReader, want uint64, log logger.LoggerInterface) error {
	identifier, ok := reader.(interface {
		ChainID(context.Context) (uint64, error)
	})
	if !ok || want == 0 {
		return nil
	}

	got, err := identifier.ChainID(ctx)
	if err != nil {
		log.Warn(ctx, "rpc unreachable at startup", "error", err)
		return nil
	}
	if got != want {
		return apperror.New(apperror.CodeStartupFailure,
			apperror.WithCause(apperror.New(apperror.CodeChainIDMismatch)),
			apperror.WithContext(fmt.Sprintf("node chain id %d, configured %d", got, want)))
	}
	return nil
}
