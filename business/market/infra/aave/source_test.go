package aave

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blockchainDomain "github.com/fd1az/steth-arb/business/blockchain/domain"
	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/business/market/markettest"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/rates"
)

var (
	pool   = common.HexToAddress("0x87870Bca3F3fD6335C3F4ce8392D69350B4fA4E2")
	wsteth = common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")
)

// ray returns pct percent as a 1e27-scaled rate.
func ray(pct int64) *big.Int {
	v := new(big.Int).Exp(big.NewInt(10), big.NewInt(25), nil)
	return v.Mul(v, big.NewInt(pct))
}

func reserve(liquidityRate *big.Int) ReserveData {
	zero := big.NewInt(0)
	return ReserveData{
		Configuration:             ReserveConfigurationMap{Data: big.NewInt(0x1234)},
		LiquidityIndex:            ray(100),
		CurrentLiquidityRate:      liquidityRate,
		VariableBorrowIndex:       ray(100),
		CurrentVariableBorrowRate: ray(5),
		CurrentStableBorrowRate:   zero,
		LastUpdateTimestamp:       big.NewInt(1_700_000_000),
		Id:                        27,
		ATokenAddress:             common.HexToAddress("0x0B925eD163218f6662a35e0f0371Ac234f9E9371"),
		AccruedToTreasury:         zero,
		Unbacked:                  zero,
		IsolationModeTotalDebt:    zero,
	}
}

func TestYieldSource_Fetch(t *testing.T) {
	reader := markettest.NewReader(PoolABI).Returns(methodGetReserveData, reserve(ray(3)))
	src := NewYieldSource(reader, pool, wsteth)

	got, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, rates.SupplyAPY(ray(3)).Equal(got))
	assert.InDelta(t, 0.0304545, got.InexactFloat64(), 1e-6)
}

func TestYieldSource_DecodesTuple(t *testing.T) {
	reader := markettest.NewReader(PoolABI).Returns(methodGetReserveData, reserve(ray(2)))
	src := NewYieldSource(reader, pool, wsteth)

	data, err := src.ReserveData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ray(2).String(), data.CurrentLiquidityRate.String())
	assert.Equal(t, int64(0x1234), data.Configuration.Data.Int64())
	assert.Equal(t, uint16(27), data.Id)
	assert.Equal(t, int64(1_700_000_000), data.LastUpdateTimestamp.Int64())
}

func TestYieldSource_ZeroRate(t *testing.T) {
	reader := markettest.NewReader(PoolABI).Returns(methodGetReserveData, reserve(big.NewInt(0)))

	got, err := NewYieldSource(reader, pool, wsteth).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestYieldSource_FailureIsZeroSentinel(t *testing.T) {
	reader := markettest.NewReader(PoolABI).Fails(methodGetReserveData, errors.New("dial tcp: connection refused"))

	got, err := NewYieldSource(reader, pool, wsteth).Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, got.IsZero())

	var su *domain.SourceUnavailable
	require.ErrorAs(t, err, &su)
	assert.Equal(t, domain.SourceYield, su.Source)
	assert.Equal(t, pool, su.Contract)
	assert.True(t, apperror.HasCode(err, apperror.CodeSourceUnavailable))
}

type shapeReader struct{ out []any }

func (r shapeReader) Call(context.Context, common.Address, string, ...any) ([]any, error) {
	return r.out, nil
}

func (r shapeReader) LatestBlock(context.Context) (blockchainDomain.Block, error) {
	return blockchainDomain.Block{}, nil
}

func TestYieldSource_UnexpectedShape(t *testing.T) {
	tests := []struct {
		name string
		out  []any
		code apperror.Code
	}{
		{"no outputs", nil, apperror.CodeUnexpectedOutput},
		{"wrong type", []any{"not a tuple"}, apperror.CodeABIDecodeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewYieldSource(shapeReader{out: tt.out}, pool, wsteth).ReserveData(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.code, apperror.GetCode(err))
		})
	}
}
