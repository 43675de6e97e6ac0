package blockchain

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

const probeTimeout = 5 * time.Second

// CheckerAdapter probes RPC endpoints for liveness
type CheckerAdapter struct {
	dial func(ctx context.Context, rawURL string) (chainReader, error)
}

type chainReader interface {
	ChainID(ctx context.Context) (*big.Int, error)
	BlockNumber(ctx context.Context) (uint64, error)
	Close()
}

// NewCheckerAdapter creates a new blockchain checker adapter
func NewCheckerAdapter() *CheckerAdapter {
	return &CheckerAdapter{
		dial: func(ctx context.Context, rawURL string) (chainReader, error) {
			return ethclient.DialContext(ctx, rawURL)
		},
	}
}

// Probe connects to the network's RPC and reports its chain ID and head block.
// A configured chain ID that disagrees with the node is an error.
func (c *CheckerAdapter) Probe(ctx context.Context, network *config.Network) (*usecase.ChainStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	client, err := c.dial(ctx, network.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain ID: %w", err)
	}
	if network.ChainID != 0 && chainID.Uint64() != network.ChainID {
		return nil, fmt.Errorf("chain ID mismatch: expected %d, got %d", network.ChainID, chainID.Uint64())
	}

	block, err := client.BlockNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get block number: %w", err)
	}

	return &usecase.ChainStatus{ChainID: chainID.Uint64(), BlockNumber: block}, nil
}

// Ensure the adapter implements the interface
var _ usecase.ChainProbe = (*CheckerAdapter)(nil)
