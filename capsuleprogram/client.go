package capsuleprogram

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// BlockhashSource hands out the network's current blockhash.
type BlockhashSource interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
}

// Client wraps Solana RPC client
type Client struct {
	RPC        *rpc.Client
	Commitment rpc.CommitmentType
}

// NewClient creates an RPC client. One instance is shared by all requests so
// the underlying HTTP connections are pooled.
func NewClient(rpcURL string, commitment string) *Client {
	c := rpc.CommitmentType(commitment)
	if c == "" {
		c = rpc.CommitmentFinalized
	}
	return &Client{
		RPC:        rpc.New(rpcURL),
		Commitment: c,
	}
}

// LatestBlockhash implements BlockhashSource.
func (c *Client) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	recent, err := c.RPC.GetLatestBlockhash(ctx, c.Commitment)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get blockhash: %w", err)
	}
	if recent == nil || recent.Value == nil {
		return solana.Hash{}, fmt.Errorf("failed to get blockhash: empty result")
	}
	return recent.Value.Blockhash, nil
}

// HealthCheck reports whether the RPC node answers getHealth with "ok".
func (c *Client) HealthCheck(ctx context.Context) error {
	status, err := c.RPC.GetHealth(ctx)
	if err != nil {
		return fmt.Errorf("rpc health: %w", err)
	}
	if status != rpc.HealthOk {
		return fmt.Errorf("rpc health: %s", status)
	}
	return nil
}
