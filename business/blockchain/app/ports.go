// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/steth-arb/business/blockchain/domain"
)

// ContractReader performs read-only contract calls against the chain.
type ContractReader interface {
	// Call invokes method on the contract bound at address and returns the
	// ABI-decoded outputs in declaration order.
	Call(ctx context.Context, contract common.Address, method string, args ...any) ([]any, error)

	// LatestBlock returns the current chain head.
	LatestBlock(ctx context.Context) (domain.Block, error)
}

// ContractBinder registers the ABI used to encode calls to a contract.
type ContractBinder interface {
	Bind(contract common.Address, name string, parsed abi.ABI)
}

// StatusReporter exposes recent connection health.
type StatusReporter interface {
	Status() domain.ConnectionStatus
}
