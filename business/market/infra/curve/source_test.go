package curve

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/business/market/markettest"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/asset"
)

var pool = common.HexToAddress("0x21e27a5e5513d6e65c4f830167390997aa84843a")

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic(s)
	}
	return v
}

func TestPriceSource_Fetch(t *testing.T) {
	tests := []struct {
		name string
		dy   *big.Int
		want string
	}{
		{"discount", wei("998731000000000000"), "0.998731"},
		{"par", wei("1000000000000000000"), "1"},
		{"premium", wei("1010000000000000001"), "1.010000000000000001"},
		{"drained", big.NewInt(0), "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := markettest.NewReader(PoolABI).Returns(methodGetDy, tt.dy)
			src := NewPriceSource(reader, pool, asset.STETH, asset.ETH)

			got, err := src.Fetch(context.Background())
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
			assert.Equal(t, []string{methodGetDy}, reader.Calls())
		})
	}
}

func TestPriceSource_FailureIsZeroSentinel(t *testing.T) {
	reader := markettest.NewReader(PoolABI).Fails(methodGetDy, errors.New("execution reverted"))
	src := NewPriceSource(reader, pool, asset.STETH, asset.ETH)

	got, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, got.IsZero())

	var su *domain.SourceUnavailable
	require.ErrorAs(t, err, &su)
	assert.Equal(t, domain.SourcePrice, su.Source)
	assert.Equal(t, pool, su.Contract)
	assert.True(t, apperror.HasCode(err, apperror.CodeSourceUnavailable))
}

func TestPriceSource_Binding(t *testing.T) {
	b := NewPriceSource(nil, pool, asset.STETH, asset.ETH).Binding()
	assert.Equal(t, ABIName, b.Name)
	assert.Equal(t, pool, b.Contract)
	assert.Contains(t, b.Methods, methodGetDy)
}
