package usecase

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/samber/lo"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// ExecuteFlashLoanParams contains parameters for flash loans
type ExecuteFlashLoanParams struct {
	Assets []string // aliases or addresses; empty means the wrapped token
	Sender string
	Resume bool
}

// ExecuteFlashLoanResult holds one result per asset, in input order
type ExecuteFlashLoanResult struct {
	Assets  []common.Address   `json:"assets"`
	Results []*OperationResult `json:"results"`
}

// ExecuteFlashLoan invokes the flash-loan entrypoint once per asset.
// Assets run as independent operations, concurrently.
type ExecuteFlashLoan struct {
	cfg          *config.RuntimeConfig
	registry     ContractRegistry
	senders      *SenderResolver
	orchestrator *Orchestrator
}

// NewExecuteFlashLoan creates a new ExecuteFlashLoan use case
func NewExecuteFlashLoan(
	cfg *config.RuntimeConfig,
	registry ContractRegistry,
	senders *SenderResolver,
	orchestrator *Orchestrator,
) *ExecuteFlashLoan {
	return &ExecuteFlashLoan{
		cfg:          cfg,
		registry:     registry,
		senders:      senders,
		orchestrator: orchestrator,
	}
}

type entryMethod interface {
	EntryMethod() string
}

// Build assembles one single-step operation per asset
func (uc *ExecuteFlashLoan) Build(ctx context.Context, params ExecuteFlashLoanParams) ([]common.Address, []*Operation, error) {
	fl, err := uc.registry.FlashLoan()
	if err != nil {
		return nil, nil, err
	}
	method := "flashLoan"
	if em, ok := fl.(entryMethod); ok {
		method = em.EntryMethod()
	}

	refs := params.Assets
	if len(refs) == 0 {
		refs = []string{"wrapped_token"}
	}

	assets := make([]common.Address, 0, len(refs))
	for _, ref := range refs {
		addr, err := uc.registry.ResolveAddress(ref)
		if err != nil {
			return nil, nil, fmt.Errorf("asset %q: %w", ref, err)
		}
		assets = append(assets, addr)
	}
	if dups := lo.FindDuplicates(assets); len(dups) > 0 {
		return nil, nil, fmt.Errorf("asset %s listed more than once", dups[0].Hex())
	}

	account, err := uc.senders.Resolve(ctx, params.Sender)
	if err != nil {
		return nil, nil, err
	}

	ops := lo.Map(assets, func(asset common.Address, _ int) *Operation {
		return &Operation{
			Name:    OperationFlashLoan,
			Network: networkName(uc.cfg),
			Account: account,
			Steps: []*Step{
				{
					Name:     "flash-loan " + asset.Hex(),
					Contract: fl,
					Method:   method,
					Args:     []any{asset},
				},
			},
		}
	})
	return assets, ops, nil
}

// Run executes the flash loans
func (uc *ExecuteFlashLoan) Run(ctx context.Context, params ExecuteFlashLoanParams) (*ExecuteFlashLoanResult, error) {
	assets, ops, err := uc.Build(ctx, params)
	if err != nil {
		return nil, err
	}
	combined := &Operation{
		Name:    OperationFlashLoan,
		Account: ops[0].Account,
		Steps:   lo.FlatMap(ops, func(op *Operation, _ int) []*Step { return op.Steps }),
	}
	if err := uc.senders.ConfirmBroadcast(ctx, combined); err != nil {
		return nil, err
	}

	results, err := uc.orchestrator.RunAll(ctx, ops, RunOptions{Resume: params.Resume})
	return &ExecuteFlashLoanResult{Assets: assets, Results: results}, err
}
