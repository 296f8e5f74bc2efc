package lido

import (
	"context"
	"errors"
	"math/big"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	blockchainDomain "github.com/fd1az/steth-arb/business/blockchain/domain"
	"github.com/fd1az/steth-arb/business/market/domain"
	"github.com/fd1az/steth-arb/business/market/markettest"
	"github.com/fd1az/steth-arb/internal/apperror"
	"github.com/fd1az/steth-arb/internal/rates"
)

var queue = common.HexToAddress("0x889edC2eDab5f40e902b864aD4d7AdE8E412F9B1")

const requestedAt = 1_700_000_000

func head(unix int64) blockchainDomain.Block {
	return blockchainDomain.Block{Number: 19_000_000, Timestamp: time.Unix(unix, 0)}
}

func status(ts int64) []WithdrawalRequestStatus {
	return []WithdrawalRequestStatus{{
		AmountOfStETH:  big.NewInt(1e18),
		AmountOfShares: big.NewInt(9e17),
		Owner:          common.HexToAddress("0xdead"),
		Timestamp:      big.NewInt(ts),
	}}
}

func TestQueueDurationSource_Fetch(t *testing.T) {
	reader := markettest.NewReader(WithdrawalQueueABI).
		Returns(methodGetLastRequestID, big.NewInt(42)).
		Returns(methodGetWithdrawalStatus, status(requestedAt)).
		Head(head(requestedAt+rates.SecondsPerYear/2), nil)

	got, err := NewQueueDurationSource(reader, queue).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.5").Equal(got), "got %s", got)
	assert.Equal(t, []string{methodGetLastRequestID, methodGetWithdrawalStatus}, reader.Calls())
	assert.Equal(t, 1, reader.BlockReads())
}

func TestQueueDurationSource_EmptyQueue(t *testing.T) {
	reader := markettest.NewReader(WithdrawalQueueABI).Returns(methodGetLastRequestID, big.NewInt(0))

	got, err := NewQueueDurationSource(reader, queue).Fetch(context.Background())
	require.NoError(t, err, "an empty queue is not a failure")
	assert.True(t, got.IsZero())
	assert.Equal(t, []string{methodGetLastRequestID}, reader.Calls())
	assert.Zero(t, reader.BlockReads())
}

func TestQueueDurationSource_RequestAheadOfHead(t *testing.T) {
	reader := markettest.NewReader(WithdrawalQueueABI).
		Returns(methodGetLastRequestID, big.NewInt(7)).
		Returns(methodGetWithdrawalStatus, status(requestedAt+12)).
		Head(head(requestedAt), nil)

	got, err := NewQueueDurationSource(reader, queue).Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestQueueDurationSource_AnyFailureIsTotal(t *testing.T) {
	boom := errors.New("header not found")

	tests := []struct {
		name   string
		reader *markettest.Reader
	}{
		{
			name: "last request id",
			reader: markettest.NewReader(WithdrawalQueueABI).
				Fails(methodGetLastRequestID, boom),
		},
		{
			name: "chain head",
			reader: markettest.NewReader(WithdrawalQueueABI).
				Returns(methodGetLastRequestID, big.NewInt(42)).
				Returns(methodGetWithdrawalStatus, status(requestedAt)).
				Head(blockchainDomain.Block{}, boom),
		},
		{
			name: "withdrawal status",
			reader: markettest.NewReader(WithdrawalQueueABI).
				Returns(methodGetLastRequestID, big.NewInt(42)).
				Fails(methodGetWithdrawalStatus, boom).
				Head(head(requestedAt+60), nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewQueueDurationSource(tt.reader, queue).Fetch(context.Background())
			require.Error(t, err)
			assert.True(t, got.IsZero())
			assert.ErrorIs(t, err, boom)

			var su *domain.SourceUnavailable
			require.ErrorAs(t, err, &su)
			assert.Equal(t, domain.SourceQueue, su.Source)
			assert.Equal(t, queue, su.Contract)
			assert.True(t, apperror.HasCode(err, apperror.CodeSourceUnavailable))
		})
	}
}

func TestQueueDurationSource_WithdrawalStatusDecodes(t *testing.T) {
	reader := markettest.NewReader(WithdrawalQueueABI).
		Returns(methodGetWithdrawalStatus, status(requestedAt))

	got, err := NewQueueDurationSource(reader, queue).WithdrawalStatus(context.Background(), big.NewInt(42))
	require.NoError(t, err)
	assert.Equal(t, int64(requestedAt), got.Timestamp.Int64())
	assert.Equal(t, common.HexToAddress("0xdead"), got.Owner)
	assert.False(t, got.IsFinalized)
}

func TestQueueDurationSource_WrongStatusCount(t *testing.T) {
	reader := markettest.NewReader(WithdrawalQueueABI).
		Returns(methodGetWithdrawalStatus, append(status(1), status(2)...))

	_, err := NewQueueDurationSource(reader, queue).WithdrawalStatus(context.Background(), big.NewInt(42))
	require.Error(t, err)
	assert.Equal(t, apperror.CodeUnexpectedOutput, apperror.GetCode(err))
}

func TestWithdrawalQueueABI_OnlyCalledMethods(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(WithdrawalQueueABI))
	require.NoError(t, err)

	names := make([]string, 0, len(parsed.Methods))
	for name := range parsed.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{methodGetLastRequestID, methodGetWithdrawalStatus}, names)
}
