package blockchain

import (
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/steth-arb/business/blockchain/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
)

type mockLogger struct{ warns int }

func (*mockLogger) Debug(context.Context, string, ...any)       {}
func (*mockLogger) Info(context.Context, string, ...any)        {}
func (m *mockLogger) Warn(context.Context, string, ...any)      { m.warns++ }
func (*mockLogger) Error(context.Context, string, ...any)       {}
func (*mockLogger) Debugc(context.Context, int, string, ...any) {}
func (*mockLogger) Infoc(context.Context, int, string, ...any)  {}
func (*mockLogger) Warnc(context.Context, int, string, ...any)  {}
func (*mockLogger) Errorc(context.Context, int, string, ...any) {}

type chainReader struct {
	id  uint64
	err error
}

func (chainReader) Call(context.Context, common.Address, string, ...any) ([]any, error) {
	return nil, nil
}

func (chainReader) LatestBlock(context.Context) (domain.Block, error) {
	return domain.Block{}, nil
}

func (c chainReader) ChainID(context.Context) (uint64, error) {
	return c.id, c.err
}

func TestVerifyChain(t *testing.T) {
	t.Run("match", func(t *testing.T) {
		require.NoError(t, verifyChain(context.Background(), chainReader{id: 1}, 1, &mockLogger{}))
	})

	t.Run("mismatch fails startup", func(t *testing.T) {
		err := verifyChain(context.Background(), chainReader{id: 5}, 1, &mockLogger{})
		require.Error(t, err)
		assert.Equal(t, apperror.CodeStartupFailure, apperror.GetCode(err))
		assert.Contains(t, err.Error(), "node chain id 5, configured 1")
	})

	t.Run("unreachable node only warns", func(t *testing.T) {
		log := &mockLogger{}
		err := verifyChain(context.Background(), chainReader{err: errors.New("dial tcp: connection refused")}, 1, log)
		require.NoError(t, err)
		assert.Equal(t, 1, log.warns)
	})

	t.Run("check disabled", func(t *testing.T) {
		require.NoError(t, verifyChain(context.Background(), chainReader{id: 5}, 0, &mockLogger{}))
	})
}
