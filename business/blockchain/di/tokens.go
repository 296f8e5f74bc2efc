// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/steth-arb/business/blockchain/app"
	"github.com/fd1az/steth-arb/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BlockchainService = di.NewToken[*app.BlockchainService]("blockchain.BlockchainService")
	ContractReader    = di.NewToken[app.ContractReader]("blockchain.ContractReader")
)

func GetBlockchainService(c di.ServiceRegistry) *app.BlockchainService {
	return di.GetToken(c, BlockchainService)
}

func GetContractReader(c di.ServiceRegistry) app.ContractReader {
	return di.GetToken(c, ContractReader)
}
