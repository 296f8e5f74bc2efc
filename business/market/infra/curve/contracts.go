package curve

// PoolABI covers the stETH/ETH StableSwap methods the price source calls.
// Coin 0 is ETH, coin 1 is stETH.
const PoolABI = `[
	{
		"name": "get_dy",
		"outputs": [{"type": "uint256", "name": ""}],
		"inputs": [
			{"type": "int128", "name": "i"},
			{"type": "int128", "name": "j"},
			{"type": "uint256", "name": "dx"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"name": "coins",
		"outputs": [{"type": "address", "name": ""}],
		"inputs": [{"type": "uint256", "name": "arg0"}],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ABIName is the override file stem under contracts.abi_dir.
const ABIName = "curve_abi"

const methodGetDy = "get_dy"

// Pool coin indices.
const (
	CoinETH   int64 = 0
	CoinStETH int64 = 1
)
