package ethereum

import (
	"context"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/steth-arb/business/blockchain/domain"
	"github.com/fd1az/steth-arb/internal/apperror"
)

const counterABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view",
	 "inputs":[{"name":"owner","type":"address"}],
	 "outputs":[{"name":"","type":"uint256"}]}
]`

type mockLogger struct{}

func (mockLogger) Debug(context.Context, string, ...any)       {}
func (mockLogger) Info(context.Context, string, ...any)        {}
func (mockLogger) Warn(context.Context, string, ...any)        {}
func (mockLogger) Error(context.Context, string, ...any)       {}
func (mockLogger) Debugc(context.Context, int, string, ...any) {}
func (mockLogger) Infoc(context.Context, int, string, ...any)  {}
func (mockLogger) Warnc(context.Context, int, string, ...any)  {}
func (mockLogger) Errorc(context.Context, int, string, ...any) {}

type fakeClient struct {
	call    func(ctx context.Context, msg geth.CallMsg) ([]byte, error)
	header  *types.Header
	chainID int64
	calls   atomic.Int32
}

func (f *fakeClient) CallContract(ctx context.Context, msg geth.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls.Add(1)
	return f.call(ctx, msg)
}

func (f *fakeClient) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	if f.header == nil {
		return nil, errors.New("header unavailable")
	}
	return f.header, nil
}

func (f *fakeClient) ChainID(context.Context) (*big.Int, error) {
	return big.NewInt(f.chainID), nil
}

func mustABI(t *testing.T) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(counterABI))
	require.NoError(t, err)
	return parsed
}

func newTestReader(t *testing.T, client Client, cfg ReaderConfig) *Reader {
	t.Helper()
	r, err := NewReader(client, cfg, mockLogger{})
	require.NoError(t, err)
	return r
}

var token = common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")

func TestReader_CallDecodesOutputs(t *testing.T) {
	parsed := mustABI(t)
	client := &fakeClient{call: func(_ context.Context, msg geth.CallMsg) ([]byte, error) {
		require.NotNil(t, msg.To)
		assert.Equal(t, token, *msg.To)
		assert.Equal(t, parsed.Methods["balanceOf"].ID, msg.Data[:4])
		return parsed.Methods["balanceOf"].Outputs.Pack(big.NewInt(42))
	}}

	r := newTestReader(t, client, ReaderConfig{})
	r.Bind(token, "wstETH", parsed)

	out, err := r.Call(context.Background(), token, "balanceOf", common.Address{})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(42), out[0].(*big.Int).Int64())

	status := r.Status()
	assert.Equal(t, domain.StateConnected, status.State)
	assert.Zero(t, status.Failures)
}

func TestReader_UnboundContract(t *testing.T) {
	r := newTestReader(t, &fakeClient{}, ReaderConfig{})

	_, err := r.Call(context.Background(), token, "balanceOf", common.Address{})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeContractNotBound, apperror.GetCode(err))
}

func TestReader_UnknownMethod(t *testing.T) {
	client := &fakeClient{}
	r := newTestReader(t, client, ReaderConfig{})
	r.Bind(token, "wstETH", mustABI(t))

	_, err := r.Call(context.Background(), token, "totalSupply")
	require.Error(t, err)
	assert.Equal(t, apperror.CodeABIEncodeFailed, apperror.GetCode(err))
	assert.Zero(t, client.calls.Load(), "nothing should reach the node")
}

func TestReader_CallTimeout(t *testing.T) {
	client := &fakeClient{call: func(ctx context.Context, _ geth.CallMsg) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	r := newTestReader(t, client, ReaderConfig{CallTimeout: 20 * time.Millisecond})
	r.Bind(token, "wstETH", mustABI(t))

	start := time.Now()
	_, err := r.Call(context.Background(), token, "balanceOf", common.Address{})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeServiceTimeout, apperror.GetCode(err))
	assert.Less(t, time.Since(start), time.Second)
}

func TestReader_BreakerOpensPerContract(t *testing.T) {
	parsed := mustABI(t)
	failing := common.HexToAddress("0x01")
	client := &fakeClient{call: func(_ context.Context, msg geth.CallMsg) ([]byte, error) {
		if *msg.To == failing {
			return nil, errors.New("execution reverted")
		}
		return parsed.Methods["balanceOf"].Outputs.Pack(big.NewInt(1))
	}}

	r := newTestReader(t, client, ReaderConfig{})
	r.Bind(failing, "broken", parsed)
	r.Bind(token, "wstETH", parsed)

	for i := 0; i < 5; i++ {
		_, err := r.Call(context.Background(), failing, "balanceOf", common.Address{})
		assert.Equal(t, apperror.CodeContractCallFailed, apperror.GetCode(err))
	}

	_, err := r.Call(context.Background(), failing, "balanceOf", common.Address{})
	assert.Equal(t, apperror.CodeCircuitOpen, apperror.GetCode(err))

	_, err = r.Call(context.Background(), token, "balanceOf", common.Address{})
	require.NoError(t, err)

	status := r.Status()
	assert.Equal(t, domain.StateDegraded, status.State)
	assert.Equal(t, []string{"broken"}, status.OpenCircuits)
}

func TestReader_LatestBlock(t *testing.T) {
	client := &fakeClient{header: &types.Header{
		Number:     big.NewInt(19_000_000),
		Time:       1_700_000_000,
		Difficulty: big.NewInt(0),
	}}
	r := newTestReader(t, client, ReaderConfig{})

	block, err := r.LatestBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(19_000_000), block.Number)
	assert.Equal(t, int64(1_700_000_000), block.Unix())
	assert.Equal(t, uint64(19_000_000), r.Status().LastBlock)
}

func TestReader_LatestBlockFailure(t *testing.T) {
	r := newTestReader(t, &fakeClient{}, ReaderConfig{})

	_, err := r.LatestBlock(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperror.CodeBlockNotFound, apperror.GetCode(err))
}

func TestReader_ChainID(t *testing.T) {
	r := newTestReader(t, &fakeClient{chainID: 1}, ReaderConfig{})

	id, err := r.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)
}

func TestLoadABI(t *testing.T) {
	t.Run("built-in", func(t *testing.T) {
		parsed, err := LoadABI("", "counter", counterABI)
		require.NoError(t, err)
		require.NoError(t, RequireMethods(parsed, "counter", "balanceOf"))
	})

	t.Run("override file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.json"), []byte(counterABI), 0o600))

		parsed, err := LoadABI(dir, "counter", "not json")
		require.NoError(t, err)
		assert.Contains(t, parsed.Methods, "balanceOf")
	})

	t.Run("artifact file", func(t *testing.T) {
		dir := t.TempDir()
		artifact := `{"contractName":"Counter","abi":` + counterABI + `}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.json"), []byte(artifact), 0o600))

		parsed, err := LoadABI(dir, "counter", "")
		require.NoError(t, err)
		assert.Contains(t, parsed.Methods, "balanceOf")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadABI(t.TempDir(), "counter", counterABI)
		require.Error(t, err)
		assert.Equal(t, apperror.CodeABILoadFailed, apperror.GetCode(err))
	})

	t.Run("malformed file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "counter.json"), []byte("[{"), 0o600))

		_, err := LoadABI(dir, "counter", counterABI)
		assert.Equal(t, apperror.CodeABILoadFailed, apperror.GetCode(err))
	})

	t.Run("missing method", func(t *testing.T) {
		parsed, err := LoadABI("", "counter", counterABI)
		require.NoError(t, err)

		err = RequireMethods(parsed, "counter", "balanceOf", "getDy")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "getDy")
	})
}
