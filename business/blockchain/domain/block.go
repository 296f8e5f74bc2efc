// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Block is the chain head as seen by a read.
type Block struct {
	Number    uint64
	Hash      common.Hash
	Timestamp time.Time
}

// Unix returns the block timestamp in seconds.
func (b Block) Unix() int64 {
	return b.Timestamp.Unix()
}

// ConnectionState represents the state of the RPC connection.
type ConnectionState string

const (
	StateUnknown      ConnectionState = "unknown"
	StateConnected    ConnectionState = "connected"
	StateDegraded     ConnectionState = "degraded"
	StateDisconnected ConnectionState = "disconnected"
)

// ConnectionStatus summarizes recent RPC health. Latency is that of the
// last successful call; Failures counts consecutive failed calls.
type ConnectionStatus struct {
	State        ConnectionState
	Latency      time.Duration
	LastBlock    uint64
	LastUpdate   time.Time
	Failures     uint64
	OpenCircuits []string
}
