package aave

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// PoolABI is the Aave v3 Pool getReserveData definition.
const PoolABI = `[
	{
		"inputs": [{"internalType": "address", "name": "asset", "type": "address"}],
		"name": "getReserveData",
		"outputs": [
			{
				"components": [
					{
						"components": [{"internalType": "uint256", "name": "data", "type": "uint256"}],
						"internalType": "struct DataTypes.ReserveConfigurationMap",
						"name": "configuration",
						"type": "tuple"
					},
					{"internalType": "uint128", "name": "liquidityIndex", "type": "uint128"},
					{"internalType": "uint128", "name": "currentLiquidityRate", "type": "uint128"},
					{"internalType": "uint128", "name": "variableBorrowIndex", "type": "uint128"},
					{"internalType": "uint128", "name": "currentVariableBorrowRate", "type": "uint128"},
					{"internalType": "uint128", "name": "currentStableBorrowRate", "type": "uint128"},
					{"internalType": "uint40", "name": "lastUpdateTimestamp", "type": "uint40"},
					{"internalType": "uint16", "name": "id", "type": "uint16"},
					{"internalType": "address", "name": "aTokenAddress", "type": "address"},
					{"internalType": "address", "name": "stableDebtTokenAddress", "type": "address"},
					{"internalType": "address", "name": "variableDebtTokenAddress", "type": "address"},
					{"internalType": "address", "name": "interestRateStrategyAddress", "type": "address"},
					{"internalType": "uint128", "name": "accruedToTreasury", "type": "uint128"},
					{"internalType": "uint128", "name": "unbacked", "type": "uint128"},
					{"internalType": "uint128", "name": "isolationModeTotalDebt", "type": "uint128"}
				],
				"internalType": "struct DataTypes.ReserveData",
				"name": "",
				"type": "tuple"
			}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ABIName is the override file stem under contracts.abi_dir.
const ABIName = "aave_abi"

const methodGetReserveData = "getReserveData"

// ReserveConfigurationMap is the packed reserve configuration bitmap.
type ReserveConfigurationMap struct {
	Data *big.Int
}

// ReserveData mirrors DataTypes.ReserveData. Rates are ray-scaled (1e27).
type ReserveData struct {
	Configuration               ReserveConfigurationMap
	LiquidityIndex              *big.Int
	CurrentLiquidityRate        *big.Int
	VariableBorrowIndex         *big.Int
	CurrentVariableBorrowRate   *big.Int
	CurrentStableBorrowRate     *big.Int
	LastUpdateTimestamp         *big.Int
	Id                          uint16
	ATokenAddress               common.Address
	StableDebtTokenAddress      common.Address
	VariableDebtTokenAddress    common.Address
	InterestRateStrategyAddress common.Address
	AccruedToTreasury           *big.Int
	Unbacked                    *big.Int
	IsolationModeTotalDebt      *big.Int
}
