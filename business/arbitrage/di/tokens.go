// Package di contains dependency injection tokens for the arbitrage context.
package di

import (
	"github.com/fd1az/steth-arb/business/arbitrage/app"
	"github.com/fd1az/steth-arb/internal/di"
)

// Public service tokens - exposed to cmd
var (
	Loop     = di.NewToken[*app.Loop]("arbitrage.Loop")
	Reporter = di.NewToken[app.Reporter]("arbitrage.Reporter")
)

// Private dependency tokens - internal to arbitrage module
var (
	Calculator = di.NewToken[*app.Calculator]("arbitrage:calculator")
)

func GetLoop(c di.ServiceRegistry) *app.Loop {
	return di.GetToken(c, Loop)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}

func GetCalculator(c di.ServiceRegistry) *app.Calculator {
	return di.GetToken(c, Calculator)
}
