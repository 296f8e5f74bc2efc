// Package domain contains the core domain types for the arbitrage context.
package domain

import (
	"github.com/shopspring/decimal"
)

// ArbitrageResult compares holding stETH through the withdrawal queue with
// selling it on the pool. All values are in ETH.
//
// ReferenceCoupon is what the principal would earn on Aave, net of the risk
// premium, over the time the queue currently takes. QueueCoupon is the gain
// from buying stETH at the pool price and redeeming it 1:1 through the queue.
type ArbitrageResult struct {
	ReferenceCoupon decimal.Decimal
	QueueCoupon     decimal.Decimal
	RelativeProfit  decimal.Decimal
}

// Profitable reports whether the queue coupon beats the reference coupon.
func (r ArbitrageResult) Profitable() bool {
	return r.RelativeProfit.IsPositive()
}
