package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// Operation names
const (
	OperationFundAndTransfer = "fund-and-transfer"
	OperationFlashLoan       = "flash-loan"
	OperationWrap            = "wrap"
)

// FundAndTransferParams contains parameters for funding
type FundAndTransferParams struct {
	Amount      *big.Int
	Destination string // alias or address; empty means the flash-loan contract
	Sender      string
	Resume      bool
}

// FundAndTransfer wraps native currency and moves the wrapped tokens to a
// destination, by default the flash-loan contract.
type FundAndTransfer struct {
	cfg          *config.RuntimeConfig
	registry     ContractRegistry
	senders      *SenderResolver
	orchestrator *Orchestrator
}

// NewFundAndTransfer creates a new FundAndTransfer use case
func NewFundAndTransfer(
	cfg *config.RuntimeConfig,
	registry ContractRegistry,
	senders *SenderResolver,
	orchestrator *Orchestrator,
) *FundAndTransfer {
	return &FundAndTransfer{
		cfg:          cfg,
		registry:     registry,
		senders:      senders,
		orchestrator: orchestrator,
	}
}

// Build assembles the two-step operation: deposit(value=amount), transfer(dest, amount)
func (uc *FundAndTransfer) Build(ctx context.Context, params FundAndTransferParams) (*Operation, error) {
	if params.Amount == nil || params.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}

	weth, err := uc.registry.WrappedToken()
	if err != nil {
		return nil, err
	}

	var dest common.Address
	if params.Destination == "" {
		fl, err := uc.registry.FlashLoan()
		if err != nil {
			return nil, fmt.Errorf("no destination given and %w", err)
		}
		dest = fl.Address()
	} else {
		dest, err = uc.registry.ResolveAddress(params.Destination)
		if err != nil {
			return nil, err
		}
	}

	account, err := uc.senders.Resolve(ctx, params.Sender)
	if err != nil {
		return nil, err
	}

	amount := new(big.Int).Set(params.Amount)
	return &Operation{
		Name:    OperationFundAndTransfer,
		Network: networkName(uc.cfg),
		Account: account,
		Steps: []*Step{
			{
				Name:     "wrap",
				Contract: weth,
				Method:   "deposit",
				Value:    amount,
			},
			{
				Name:     "transfer",
				Contract: weth,
				Method:   "transfer",
				Args:     []any{dest, amount},
			},
		},
	}, nil
}

// Run executes the operation
func (uc *FundAndTransfer) Run(ctx context.Context, params FundAndTransferParams) (*OperationResult, error) {
	op, err := uc.Build(ctx, params)
	if err != nil {
		return nil, err
	}
	if err := uc.senders.ConfirmBroadcast(ctx, op); err != nil {
		return nil, err
	}
	return uc.orchestrator.Run(ctx, op, RunOptions{Resume: params.Resume})
}

func networkName(cfg *config.RuntimeConfig) string {
	if cfg == nil || cfg.Network == nil {
		return ""
	}
	return cfg.Network.Name
}
