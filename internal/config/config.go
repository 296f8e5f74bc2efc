// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Mainnet contract defaults.
const (
	DefaultCurvePool           = "0x21e27a5e5513d6e65c4f830167390997aa84843a"
	DefaultAavePool            = "0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2"
	DefaultWstETHToken         = "0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0"
	DefaultLidoWithdrawalQueue = "0x889edC2eDab5f40e902b864aD4d7AdE8E412F9B1"
)

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Ethereum  EthereumConfig  `mapstructure:"ethereum"`
	Contracts ContractsConfig `mapstructure:"contracts"`
	Strategy  StrategyConfig  `mapstructure:"strategy"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"` // console or json
	TUIMode     bool   `mapstructure:"-"`          // set at runtime from flags
}

// EthereumConfig holds JSON-RPC settings.
type EthereumConfig struct {
	HTTPURL        string        `mapstructure:"http_url"`
	ChainID        uint64        `mapstructure:"chain_id"`
	CallTimeout    time.Duration `mapstructure:"call_timeout"` // 0 disables
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

// ContractsConfig holds the monitored contract addresses.
type ContractsConfig struct {
	CurvePool           string `mapstructure:"curve_pool"`
	AavePool            string `mapstructure:"aave_pool"`
	WstETHToken         string `mapstructure:"wsteth_token"`
	LidoWithdrawalQueue string `mapstructure:"lido_withdrawal_queue"`
	ABIDir              string `mapstructure:"abi_dir"` // optional overrides
}

func (c *ContractsConfig) CurvePoolAddress() common.Address {
	return common.HexToAddress(c.CurvePool)
}

func (c *ContractsConfig) AavePoolAddress() common.Address {
	return common.HexToAddress(c.AavePool)
}

func (c *ContractsConfig) WstETHAddress() common.Address {
	return common.HexToAddress(c.WstETHToken)
}

func (c *ContractsConfig) WithdrawalQueueAddress() common.Address {
	return common.HexToAddress(c.LidoWithdrawalQueue)
}

// StrategyConfig holds the arbitrage parameters and loop cadence.
type StrategyConfig struct {
	Principal       float64       `mapstructure:"principal"`
	RiskPremium     float64       `mapstructure:"risk_premium"`
	PollInterval    time.Duration `mapstructure:"poll_interval"`
	ConcurrentFetch bool          `mapstructure:"concurrent_fetch"`
	MaxTicks        uint64        `mapstructure:"max_ticks"` // 0 runs until interrupted
}

// PrincipalDecimal returns the principal (ETH) as decimal.Decimal.
func (c *StrategyConfig) PrincipalDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Principal)
}

// RiskPremiumDecimal returns the risk premium as decimal.Decimal.
func (c *StrategyConfig) RiskPremiumDecimal() decimal.Decimal {
	return decimal.NewFromFloat(c.RiskPremium)
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TraceProvider  string `mapstructure:"trace_provider"` // zipkin, otlp, otlp-http, console
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// HealthConfig holds health endpoint settings.
type HealthConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Port       int           `mapstructure:"port"`
	MaxTickAge time.Duration `mapstructure:"max_tick_age"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("STETH")
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "STETH_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "STETH_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "STETH_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_format", "STETH_LOG_FORMAT", "LOG_FORMAT")

	// Ethereum
	v.BindEnv("ethereum.http_url", "STETH_RPC_URL", "ETH_HTTP_URL", "RPC_URL")
	v.BindEnv("ethereum.chain_id", "STETH_CHAIN_ID", "ETH_CHAIN_ID")
	v.BindEnv("ethereum.call_timeout", "STETH_CALL_TIMEOUT")

	// Contracts
	v.BindEnv("contracts.curve_pool", "STETH_CURVE_POOL")
	v.BindEnv("contracts.aave_pool", "STETH_AAVE_POOL")
	v.BindEnv("contracts.wsteth_token", "STETH_WSTETH_TOKEN")
	v.BindEnv("contracts.lido_withdrawal_queue", "STETH_LIDO_WITHDRAWAL_QUEUE")
	v.BindEnv("contracts.abi_dir", "STETH_ABI_DIR")

	// Strategy
	v.BindEnv("strategy.principal", "STETH_PRINCIPAL")
	v.BindEnv("strategy.risk_premium", "STETH_RISK_PREMIUM")
	v.BindEnv("strategy.poll_interval", "STETH_POLL_INTERVAL")
	v.BindEnv("strategy.concurrent_fetch", "STETH_CONCURRENT_FETCH")

	// Telemetry
	v.BindEnv("telemetry.enabled", "STETH_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "STETH_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "STETH_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "STETH_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "steth-arb")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.log_format", "console")

	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("ethereum.call_timeout", "10s")
	v.SetDefault("ethereum.rate_limit_rps", 10)
	v.SetDefault("ethereum.rate_limit_burst", 5)

	v.SetDefault("contracts.curve_pool", DefaultCurvePool)
	v.SetDefault("contracts.aave_pool", DefaultAavePool)
	v.SetDefault("contracts.wsteth_token", DefaultWstETHToken)
	v.SetDefault("contracts.lido_withdrawal_queue", DefaultLidoWithdrawalQueue)

	v.SetDefault("strategy.principal", 1)
	v.SetDefault("strategy.risk_premium", 0.005)
	v.SetDefault("strategy.poll_interval", "2s")
	v.SetDefault("strategy.concurrent_fetch", false)
	v.SetDefault("strategy.max_ticks", 0)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "steth-arb")
	v.SetDefault("telemetry.trace_provider", "zipkin")
	v.SetDefault("telemetry.prometheus_port", 9090)

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)
	v.SetDefault("health.max_tick_age", "30s")
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Ethereum.HTTPURL == "" {
		return fmt.Errorf("ethereum.http_url is required")
	}
	if c.Ethereum.CallTimeout < 0 {
		return fmt.Errorf("ethereum.call_timeout cannot be negative")
	}
	if c.Ethereum.RateLimitRPS <= 0 {
		return fmt.Errorf("ethereum.rate_limit_rps must be positive")
	}

	addrs := map[string]string{
		"contracts.curve_pool":            c.Contracts.CurvePool,
		"contracts.aave_pool":             c.Contracts.AavePool,
		"contracts.wsteth_token":          c.Contracts.WstETHToken,
		"contracts.lido_withdrawal_queue": c.Contracts.LidoWithdrawalQueue,
	}
	for key, addr := range addrs {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("invalid %s: %q", key, addr)
		}
	}

	if c.Strategy.Principal <= 0 {
		return fmt.Errorf("strategy.principal must be positive")
	}
	if c.Strategy.RiskPremium < 0 {
		return fmt.Errorf("strategy.risk_premium cannot be negative")
	}
	if c.Strategy.PollInterval <= 0 {
		return fmt.Errorf("strategy.poll_interval must be positive")
	}
	return nil
}
