package app

import (
	"context"
	"fmt"

	"github.com/fd1az/steth-arb/business/blockchain/domain"
)

// BlockchainService is the blockchain context's public facade.
type BlockchainService struct {
	reader ContractReader
}

// NewBlockchainService creates a new BlockchainService.
func NewBlockchainService(reader ContractReader) *BlockchainService {
	return &BlockchainService{reader: reader}
}

// Reader returns the contract reader shared by the data sources.
func (s *BlockchainService) Reader() ContractReader {
	return s.reader
}

// CheckRPC is a health check that reads the chain head.
func (s *BlockchainService) CheckRPC(ctx context.Context) (bool, string) {
	block, err := s.reader.LatestBlock(ctx)
	if err != nil {
		return false, err.Error()
	}
	return true, fmt.Sprintf("block %d", block.Number)
}

// ConnectionStatus reports recent RPC health when the reader tracks it.
func (s *BlockchainService) ConnectionStatus() domain.ConnectionStatus {
	if sr, ok := s.reader.(StatusReporter); ok {
		return sr.Status()
	}
	return domain.ConnectionStatus{State: domain.StateUnknown}
}
