package app

import (
	"github.com/shopspring/decimal"

	"github.com/fd1az/steth-arb/business/arbitrage/domain"
	marketDomain "github.com/fd1az/steth-arb/business/market/domain"
)

var one = decimal.NewFromInt(1)

// Compute derives the two coupons and their spread from a snapshot:
//
//	reference = queueYears * (apy - riskPremium) * principal
//	queue     = (exchangeRate - 1) * principal
//	profit    = queue - reference
//
// Zero sentinels from unavailable sources flow through unchanged.
func Compute(s marketDomain.MarketSnapshot, riskPremium, principal decimal.Decimal) domain.ArbitrageResult {
	reference := s.QueueDurationYears.Mul(s.SupplyAPY.Sub(riskPremium)).Mul(principal)
	queue := s.ExchangeRate.Sub(one).Mul(principal)

	return domain.ArbitrageResult{
		ReferenceCoupon: reference,
		QueueCoupon:     queue,
		RelativeProfit:  queue.Sub(reference),
	}
}

// Calculator applies fixed strategy parameters to each snapshot.
type Calculator struct {
	params domain.StrategyParams
}

// NewCalculator creates a Calculator.
func NewCalculator(params domain.StrategyParams) (*Calculator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{params: params}, nil
}

// Params returns the strategy parameters.
func (c *Calculator) Params() domain.StrategyParams {
	return c.params
}

// Calculate runs Compute with the configured parameters.
func (c *Calculator) Calculate(s marketDomain.MarketSnapshot) domain.ArbitrageResult {
	return Compute(s, c.params.RiskPremium, c.params.Principal)
}
