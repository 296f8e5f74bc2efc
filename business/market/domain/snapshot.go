// Package domain contains the core domain types for the market context.
package domain

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Source names, in fetch order.
const (
	SourcePrice = "price"
	SourceYield = "yield"
	SourceQueue = "queue"
)

// MarketSnapshot is one tick's view of the three feeds. A field is zero
// when its source was unavailable; Unavailable names those sources.
type MarketSnapshot struct {
	BlockHeight        uint64
	ExchangeRate       decimal.Decimal // ETH received per stETH
	SupplyAPY          decimal.Decimal
	QueueDurationYears decimal.Decimal
	ObservedAt         time.Time
	Unavailable        []string
}

// Complete reports whether every source produced a value.
func (s MarketSnapshot) Complete() bool {
	return len(s.Unavailable) == 0
}

// IsUnavailable reports whether the named source failed this tick.
func (s MarketSnapshot) IsUnavailable(source string) bool {
	return slices.Contains(s.Unavailable, source)
}

// QueueEmpty is true when the withdrawal queue had no pending request, as
// opposed to the queue source failing.
func (s MarketSnapshot) QueueEmpty() bool {
	return s.QueueDurationYears.IsZero() && !s.IsUnavailable(SourceQueue)
}
