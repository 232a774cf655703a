package capsuleprogram

import "github.com/gagliardetto/solana-go"

// Program IDs
const (
	// CapsuleX program (declare_id of the on-chain program)
	CapsuleXProgramID = "J1r7tHjxEuCcSYVrikUKxzyeeccuC3QbyHjUbY8Pw7uH"
)

// DefaultProgramID is CapsuleXProgramID decoded.
var DefaultProgramID = solana.MustPublicKeyFromBase58(CapsuleXProgramID)

// PDA Seeds
var (
	SeedCapsule = []byte("capsule")
	SeedGame    = []byte("game")
	SeedGuess   = []byte("guess")
	SeedVault   = []byte("vault")
)

// MaxTransactionSize is the largest serialized transaction that fits in one
// network packet (1280 IPv6 MTU - 40 IPv6 header - 8 fragment header).
const MaxTransactionSize = 1232

// Networks
const (
	NetworkDevnet  = "devnet"
	NetworkTestnet = "testnet"
	NetworkMainnet = "mainnet"
)

// Blockchain ids (CAIP-2) advertised in X-Blockchain-Ids
const (
	BlockchainIDDevnet  = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	BlockchainIDTestnet = "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z"
	BlockchainIDMainnet = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
)

// RPC URLs
const (
	RPCURLDevnet    = "https://api.devnet.solana.com"
	RPCURLTestnet   = "https://api.testnet.solana.com"
	RPCURLMainnet   = "https://api.mainnet-beta.solana.com"
	RPCURLLocalhost = "http://localhost:8899"
)

// BlockchainID returns the chain id for a network name and false for an
// unknown network.
func BlockchainID(network string) (string, bool) {
	switch network {
	case NetworkDevnet:
		return BlockchainIDDevnet, true
	case NetworkTestnet:
		return BlockchainIDTestnet, true
	case NetworkMainnet, "mainnet-beta":
		return BlockchainIDMainnet, true
	}
	return "", false
}
