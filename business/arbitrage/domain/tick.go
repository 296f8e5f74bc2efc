package domain

import (
	"time"

	"github.com/google/uuid"

	blockchainDomain "github.com/fd1az/steth-arb/business/blockchain/domain"
	marketDomain "github.com/fd1az/steth-arb/business/market/domain"
)

// LoopState is the polling loop lifecycle state.
type LoopState string

const (
	StateRunning LoopState = "running"
	StateStopped LoopState = "stopped"
)

// TickReport is everything a reporter receives for one tick.
type TickReport struct {
	ID         uuid.UUID
	Sequence   uint64
	Snapshot   marketDomain.MarketSnapshot
	Result     ArbitrageResult
	Params     StrategyParams
	StartedAt  time.Time
	Duration   time.Duration
	Connection blockchainDomain.ConnectionStatus
}
