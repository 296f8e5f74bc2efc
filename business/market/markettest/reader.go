// Package markettest provides an in-memory ContractReader for source tests.
package markettest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/steth-arb/business/blockchain/domain"
)

// Reader answers calls from canned output values. Inputs and outputs are
// round-tripped through the real ABI codec, so decoded values have the
// same shapes a node response would.
type Reader struct {
	mu sync.Mutex

	abi      abi.ABI
	outputs  map[string][]any
	errs     map[string]error
	block    domain.Block
	blockErr error

	calls      []string
	blockReads int
}

// NewReader creates a reader for contracts described by abiJSON.
func NewReader(abiJSON string) *Reader {
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	if err != nil {
		panic(err)
	}
	return &Reader{
		abi:     parsed,
		outputs: make(map[string][]any),
		errs:    make(map[string]error),
	}
}

// Returns sets the values method responds with.
func (r *Reader) Returns(method string, values ...any) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[method] = values
	return r
}

// Fails makes method return err.
func (r *Reader) Fails(method string, err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[method] = err
	return r
}

// Head sets the block LatestBlock returns, or the error when err != nil.
func (r *Reader) Head(block domain.Block, err error) *Reader {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.block, r.blockErr = block, err
	return r
}

// Call implements the ContractReader port.
func (r *Reader) Call(_ context.Context, _ common.Address, method string, args ...any) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, method)
	if err := r.errs[method]; err != nil {
		return nil, err
	}

	m, ok := r.abi.Methods[method]
	if !ok {
		return nil, fmt.Errorf("method %q not in ABI", method)
	}
	if _, err := m.Inputs.Pack(args...); err != nil {
		return nil, fmt.Errorf("pack %s inputs: %w", method, err)
	}

	values, ok := r.outputs[method]
	if !ok {
		return nil, fmt.Errorf("no output configured for %s", method)
	}
	packed, err := m.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("pack %s outputs: %w", method, err)
	}
	return m.Outputs.Unpack(packed)
}

// LatestBlock implements the ContractReader port.
func (r *Reader) LatestBlock(context.Context) (domain.Block, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.blockReads++
	if r.blockErr != nil {
		return domain.Block{}, r.blockErr
	}
	return r.block, nil
}

// Calls returns the methods called so far, in order.
func (r *Reader) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// BlockReads counts LatestBlock calls.
func (r *Reader) BlockReads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockReads
}
