// Package di contains dependency injection tokens for the market context.
package di

import (
	"github.com/fd1az/steth-arb/business/market/app"
	"github.com/fd1az/steth-arb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	MarketService = di.NewToken[*app.Service]("market.Service")
)

// Private dependency tokens - internal to market module
var (
	PriceSource = di.NewToken[app.Source]("market:priceSource")
	YieldSource = di.NewToken[app.Source]("market:yieldSource")
	QueueSource = di.NewToken[app.Source]("market:queueSource")
)

// Helper functions for type-safe access
func GetMarketService(c di.ServiceRegistry) *app.Service {
	return di.GetToken(c, MarketService)
}

func GetPriceSource(c di.ServiceRegistry) app.Source {
	return di.GetToken(c, PriceSource)
}

func GetYieldSource(c di.ServiceRegistry) app.Source {
	return di.GetToken(c, YieldSource)
}

func GetQueueSource(c di.ServiceRegistry) app.Source {
	return di.GetToken(c, QueueSource)
}
