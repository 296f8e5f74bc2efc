package lido

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// WithdrawalQueueABI covers the WithdrawalQueueERC721 view methods the
// queue source calls.
const WithdrawalQueueABI = `[
	{
		"inputs": [],
		"name": "getLastRequestId",
		"outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"internalType": "uint256[]", "name": "_requestIds", "type": "uint256[]"}],
		"name": "getWithdrawalStatus",
		"outputs": [
			{
				"components": [
					{"internalType": "uint256", "name": "amountOfStETH", "type": "uint256"},
					{"internalType": "uint256", "name": "amountOfShares", "type": "uint256"},
					{"internalType": "address", "name": "owner", "type": "address"},
					{"internalType": "uint256", "name": "timestamp", "type": "uint256"},
					{"internalType": "bool", "name": "isFinalized", "type": "bool"},
					{"internalType": "bool", "name": "isClaimed", "type": "bool"}
				],
				"internalType": "struct WithdrawalQueueBase.WithdrawalRequestStatus[]",
				"name": "statuses",
				"type": "tuple[]"
			}
		],
		"stateMutability": "view",
		"type": "function"
	}
]`

// ABIName is the override file stem under contracts.abi_dir.
const ABIName = "lido_abi"

const (
	methodGetLastRequestID    = "getLastRequestId"
	methodGetWithdrawalStatus = "getWithdrawalStatus"
)

// WithdrawalRequestStatus mirrors WithdrawalQueueBase.WithdrawalRequestStatus.
type WithdrawalRequestStatus struct {
	AmountOfStETH  *big.Int
	AmountOfShares *big.Int
	Owner          common.Address
	Timestamp      *big.Int
	IsFinalized    bool
	IsClaimed      bool
}
