package asset

import "github.com/ethereum/go-ethereum/common"

// ChainIDEthereum is Ethereum mainnet.
const ChainIDEthereum = 1

// Mainnet token addresses.
var (
	AddrStETH  = common.HexToAddress("0xae7ab96520DE3A18E5e111B5EaAb095312D7fE84")
	AddrWstETH = common.HexToAddress("0x7f39C581F595B53c5cb19bD0b3f8dA6c935E2Ca0")
	AddrWETH   = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
)

var (
	ETH    = NewNative("ETH", "Ether", 18)
	STETH  = NewToken(AddrStETH, "stETH", "Lido Staked Ether", 18)
	WSTETH = NewToken(AddrWstETH, "wstETH", "Wrapped liquid staked Ether", 18)
	WETH   = NewToken(AddrWETH, "WETH", "Wrapped Ether", 18)
)

// DefaultRegistry returns a registry with the mainnet staking assets.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(ETH)
	r.Register(STETH)
	r.Register(WSTETH)
	r.Register(WETH)
	return r
}
