package asset

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Registry indexes known assets by token address and symbol.
type Registry struct {
	mu        sync.RWMutex
	native    *Asset
	byAddress map[common.Address]*Asset
	bySymbol  map[string]*Asset
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byAddress: make(map[common.Address]*Asset),
		bySymbol:  make(map[string]*Asset),
	}
}

// Register adds an asset. Panics on a duplicate address or symbol.
func (r *Registry) Register(a *Asset) {
	if a == nil {
		panic("asset: cannot register nil asset")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySymbol[a.Symbol()]; exists {
		panic(fmt.Sprintf("asset: symbol %s already registered", a.Symbol()))
	}

	if a.IsNative() {
		r.native = a
	} else {
		if _, exists := r.byAddress[a.Address()]; exists {
			panic(fmt.Sprintf("asset: %s already registered", a.Address().Hex()))
		}
		r.byAddress[a.Address()] = a
	}
	r.bySymbol[a.Symbol()] = a
}

// ByAddress looks up a token by contract address.
func (r *Registry) ByAddress(addr common.Address) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byAddress[addr]
	return a, ok
}

// BySymbol looks up an asset by ticker.
func (r *Registry) BySymbol(symbol string) (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.bySymbol[symbol]
	return a, ok
}

// Native returns the chain's native coin, if registered.
func (r *Registry) Native() (*Asset, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.native, r.native != nil
}
