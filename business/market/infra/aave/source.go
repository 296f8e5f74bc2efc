// Package aave reads the wstETH supply rate from the Aave v3 Pool.
package aave

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/steth-arb/business/market/app"
	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/rates"
)

var (
	_ app.Source   = (*YieldSource)(nil)
	_ app.Bindable = (*YieldSource)(nil)
)

// YieldSource derives the supply APY of one reserve.
type YieldSource struct {
	reader  app.ContractReader
	pool    common.Address
	reserve common.Address
}

// NewYieldSource creates a yield source for reserve on the pool at address.
func NewYieldSource(reader app.ContractReader, pool, reserve common.Address) *YieldSource {
	return &YieldSource{reader: reader, pool: pool, reserve: reserve}
}

func (s *YieldSource) Name() string             { return domain.SourceYield }
func (s *YieldSource) Contract() common.Address { return s.pool }

// Binding returns the pool ABI.
func (s *YieldSource) Binding() app.Binding {
	return app.Binding{Name: ABIName, Contract: s.pool, ABI: PoolABI, Methods: []string{methodGetReserveData}}
}

// Fetch reads currentLiquidityRate and compounds it per second over a year.
func (s *YieldSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	data, err := s.ReserveData(ctx)
	if err != nil {
		return decimal.Zero, domain.NewSourceUnavailable(s.Name(), s.pool, err)
	}
	return rates.SupplyAPY(data.CurrentLiquidityRate), nil
}

// ReserveData returns the decoded reserve struct.
func (s *YieldSource) ReserveData(ctx context.Context) (data ReserveData, err error) {
	out, err := s.reader.Call(ctx, s.pool, methodGetReserveData, s.reserve)
	if err != nil {
		return ReserveData{}, err
	}
	if len(out) != 1 {
		return ReserveData{}, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext(fmt.Sprintf("getReserveData: %d outputs", len(out))))
	}

	// ConvertType panics when the shape does not match.
	defer func() {
		if r := recover(); r != nil {
			err = apperror.New(apperror.CodeABIDecodeFailed,
				apperror.WithContext(fmt.Sprintf("getReserveData: %v", r)))
		}
	}()
	data = *abi.ConvertType(out[0], new(ReserveData)).(*ReserveData)

	if data.CurrentLiquidityRate == nil {
		return ReserveData{}, apperror.New(apperror.CodeUnexpectedOutput,
			apperror.WithContext("getReserveData: missing currentLiquidityRate"))
	}
	return data, nil
}
