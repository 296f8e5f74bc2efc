// Package monolith provides the application container and module interface.
package monolith

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/asset"
	"github.com/fd1az/steth-arb/internal/config"
	"github.com/fd1az/steth-arb/internal/di"
	"github.com/fd1az/steth-arb/internal/health"
	"github.com/fd1az/steth-arb/internal/httpclient"
	"github.com/fd1az/steth-arb/internal/logger"
)

// Shared service names.
const (
	ServiceConfig        = "config"
	ServiceLogger        = "logger"
	ServiceEthClient     = "ethClient"
	ServiceAssetRegistry = "assetRegistry"
	ServiceHealth        = "health"
)

// Monolith is the main application container providing access to shared infrastructure.
type Monolith interface {
	Config() *config.Config
	Logger() logger.LoggerInterface
	EthClient() *ethclient.Client
	AssetRegistry() *asset.Registry
	Health() *health.Server
	Services() di.ServiceRegistry
}

// Module represents a bounded context module that can register services and start up.
type Module interface {
	RegisterServices(di.Container) error
	Startup(context.Context, Monolith) error
}

type app struct {
	config        *config.Config
	logger        logger.LoggerInterface
	ethClient     *ethclient.Client
	assetRegistry *asset.Registry
	health        *health.Server
	container     di.Container
}

// New dials the RPC endpoint and creates the container.
// The dial itself is lazy for HTTP; reachability is verified in module startup.
func New(ctx context.Context, cfg *config.Config, log logger.LoggerInterface, hs *health.Server) (*app, error) {
	httpClient, err := httpclient.New(
		httpclient.WithProviderName("ethereum-rpc"),
		// Per-call deadlines come from the reader; this only bounds stuck sockets.
		httpclient.WithTimeout(transportTimeout(cfg.Ethereum.CallTimeout)),
	)
	if err != nil {
		return nil, apperror.New(apperror.CodeStartupFailure, apperror.WithCause(err),
			apperror.WithContext("rpc http client"))
	}

	rpcClient, err := rpc.DialOptions(ctx, cfg.Ethereum.HTTPURL, rpc.WithHTTPClient(httpClient))
	if err != nil {
		return nil, apperror.New(apperror.CodeEthereumConnectionFailed, apperror.WithCause(err),
			apperror.WithContext(cfg.Ethereum.HTTPURL))
	}

	return newApp(cfg, log, ethclient.NewClient(rpcClient), hs), nil
}

func newApp(cfg *config.Config, log logger.LoggerInterface, client *ethclient.Client, hs *health.Server) *app {
	registry := asset.DefaultRegistry()
	container := di.NewContainer()

	container.Register(ServiceConfig, cfg)
	container.Register(ServiceLogger, log)
	container.Register(ServiceEthClient, client)
	container.Register(ServiceAssetRegistry, registry)
	container.Register(ServiceHealth, hs)

	return &app{
		config:        cfg,
		logger:        log,
		ethClient:     client,
		assetRegistry: registry,
		health:        hs,
		container:     container,
	}
}

func transportTimeout(callTimeout time.Duration) time.Duration {
	if callTimeout <= 0 {
		return 0
	}
	return 2 * callTimeout
}

func (a *app) Config() *config.Config {
	return a.config
}

func (a *app) Logger() logger.LoggerInterface {
	return a.logger
}

func (a *app) EthClient() *ethclient.Client {
	return a.ethClient
}

func (a *app) AssetRegistry() *asset.Registry {
	return a.assetRegistry
}

func (a *app) Health() *health.Server {
	return a.health
}

func (a *app) Services() di.ServiceRegistry {
	return a.container
}

// RegisterModules registers all provided modules.
func (a *app) RegisterModules(modules ...Module) error {
	for _, m := range modules {
		if err := m.RegisterServices(a.container); err != nil {
			return err
		}
	}
	return nil
}

// StartModules starts all provided modules in order.
func (a *app) StartModules(ctx context.Context, modules ...Module) error {
	for _, m := range modules {
		if err := m.Startup(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all resources.
func (a *app) Close() error {
	if a.ethClient != nil {
		a.ethClient.Close()
	}
	return nil
}
