// Package curve reads the stETH/ETH exchange rate from the Curve pool.
package curve

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/steth-arb/business/market/app"
	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/asset"
)

var (
	_ app.Source   = (*PriceSource)(nil)
	_ app.Bindable = (*PriceSource)(nil)
)

// PriceSource quotes how much ETH one stETH buys on the pool.
type PriceSource struct {
	reader app.ContractReader
	pool   common.Address
	in     *asset.Asset
	out    *asset.Asset
}

// NewPriceSource creates a price source selling one whole unit of in for out
// on the pool at address.
func NewPriceSource(reader app.ContractReader, pool common.Address, in, out *asset.Asset) *PriceSource {
	return &PriceSource{
		reader: reader,
		pool:   pool,
		in:     in,
		out:    out,
	}
}

func (s *PriceSource) Name() string             { return domain.SourcePrice }
func (s *PriceSource) Contract() common.Address { return s.pool }

// Binding returns the pool ABI.
func (s *PriceSource) Binding() app.Binding {
	return app.Binding{Name: ABIName, Contract: s.pool, ABI: PoolABI, Methods: []string{methodGetDy}}
}

// Fetch calls get_dy(stETH -> ETH) for one whole unit of the sold asset and
// scales the output by the received asset's decimals.
func (s *PriceSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	dx := s.in.OneUnit().Raw()

	out, err := s.reader.Call(ctx, s.pool, methodGetDy, big.NewInt(CoinStETH), big.NewInt(CoinETH), dx)
	if err != nil {
		return decimal.Zero, domain.NewSourceUnavailable(s.Name(), s.pool, err)
	}

	dy, err := uint256Output(out)
	if err != nil {
		return decimal.Zero, domain.NewSourceUnavailable(s.Name(), s.pool, err)
	}

	return asset.NewAmount(s.out, dy).ToDecimal(), nil
}

func uint256Output(out []any) (*big.Int, error) {
	if len(out) != 1 {
		return nil, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext("get_dy: want 1 output"))
	}
	v, ok := out[0].(*big.Int)
	if !ok || v == nil || v.Sign() < 0 {
		return nil, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext("get_dy: not a uint256"))
	}
	return v, nil
}
