package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// StrategyParams are the fixed inputs of the calculation.
type StrategyParams struct {
	// Principal is the simulated position size in ETH.
	Principal decimal.Decimal
	// RiskPremium is subtracted from the supply APY for illiquidity and
	// rate volatility, e.g. 0.005 for 50 bps.
	RiskPremium decimal.Decimal
}

// Validate rejects a non-positive principal and a negative risk premium.
func (p StrategyParams) Validate() error {
	if !p.Principal.IsPositive() {
		return errors.New("principal must be positive")
	}
	if p.RiskPremium.IsNegative() {
		return errors.New("risk premium cannot be negative")
	}
	return nil
}
