package usecase

import (
	"context"
	"fmt"
	"math/big"

	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// WrapNativeParams contains parameters for wrapping
type WrapNativeParams struct {
	Amount *big.Int
	Sender string
}

// WrapNative deposits native currency into the wrapped token
type WrapNative struct {
	cfg          *config.RuntimeConfig
	registry     ContractRegistry
	senders      *SenderResolver
	orchestrator *Orchestrator
}

// NewWrapNative creates a new WrapNative use case
func NewWrapNative(
	cfg *config.RuntimeConfig,
	registry ContractRegistry,
	senders *SenderResolver,
	orchestrator *Orchestrator,
) *WrapNative {
	return &WrapNative{
		cfg:          cfg,
		registry:     registry,
		senders:      senders,
		orchestrator: orchestrator,
	}
}

// Run executes the single deposit step
func (uc *WrapNative) Run(ctx context.Context, params WrapNativeParams) (*OperationResult, error) {
	if params.Amount == nil || params.Amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidAmount)
	}
	weth, err := uc.registry.WrappedToken()
	if err != nil {
		return nil, err
	}
	account, err := uc.senders.Resolve(ctx, params.Sender)
	if err != nil {
		return nil, err
	}

	op := &Operation{
		Name:    OperationWrap,
		Network: networkName(uc.cfg),
		Account: account,
		Steps: []*Step{{
			Name:     "wrap",
			Contract: weth,
			Method:   "deposit",
			Value:    new(big.Int).Set(params.Amount),
		}},
	}
	if err := uc.senders.ConfirmBroadcast(ctx, op); err != nil {
		return nil, err
	}
	return uc.orchestrator.Run(ctx, op, RunOptions{})
}
