// Package asset models the tokens the monitor quotes and their on-chain scale.
package asset

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Asset describes a native coin or ERC-20 token.
// Identity is the contract address; native assets use the zero address.
type Asset struct {
	symbol   string
	name     string
	decimals uint8
	address  common.Address
	native   bool
}

// NewNative creates a native coin asset.
func NewNative(symbol, name string, decimals uint8) *Asset {
	return newAsset(symbol, name, decimals, common.Address{}, true)
}

// NewToken creates an ERC-20 token asset.
func NewToken(address common.Address, symbol, name string, decimals uint8) *Asset {
	return newAsset(symbol, name, decimals, address, false)
}

func newAsset(symbol, name string, decimals uint8, addr common.Address, native bool) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > 30 {
		panic("asset: suspicious decimals (>30)")
	}

	return &Asset{
		symbol:   symbol,
		name:     name,
		decimals: decimals,
		address:  addr,
		native:   native,
	}
}

func (a *Asset) Symbol() string          { return a.symbol }
func (a *Asset) Name() string            { return a.name }
func (a *Asset) Decimals() uint8         { return a.decimals }
func (a *Asset) Address() common.Address { return a.address }
func (a *Asset) IsNative() bool          { return a.native }

// OneUnit returns one whole unit in the smallest denomination (10^decimals).
func (a *Asset) OneUnit() Amount {
	return NewAmount(a, pow10(a.decimals))
}

func (a *Asset) String() string {
	if a.native {
		return a.symbol
	}
	return fmt.Sprintf("%s(%s)", a.symbol, a.address.Hex())
}
