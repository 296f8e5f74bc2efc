// Package app contains application services and port definitions for the market context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	blockchainApp "github.com/fd1az/steth-arb/business/blockchain/app"
)

// Source produces one metric per tick from a single contract.
// On failure Fetch returns decimal.Zero and a *domain.SourceUnavailable.
type Source interface {
	Name() string
	Contract() common.Address
	Fetch(ctx context.Context) (decimal.Decimal, error)
}

// Binding describes the ABI a source needs bound before its first call.
type Binding struct {
	Name     string
	Contract common.Address
	ABI      string
	Methods  []string
}

// Bindable is implemented by sources that read through a ContractReader.
type Bindable interface {
	Binding() Binding
}

// ContractReader is the blockchain context's reader, re-exported for the sources.
type ContractReader = blockchainApp.ContractReader
