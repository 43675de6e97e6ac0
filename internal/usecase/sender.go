package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// ErrCancelled is returned when the user declines a broadcast
var ErrCancelled = errors.New("cancelled by user")

// SenderResolver picks the signing account and guards broadcasts
type SenderResolver struct {
	accounts AccountProvider
	selector InteractiveSelector
	cfg      *config.RuntimeConfig
}

// NewSenderResolver creates a new sender resolver
func NewSenderResolver(accounts AccountProvider, selector InteractiveSelector, cfg *config.RuntimeConfig) *SenderResolver {
	return &SenderResolver{accounts: accounts, selector: selector, cfg: cfg}
}

// Resolve unlocks the named sender. When no name was given and the default
// sender doesn't exist, an interactive session may pick one.
func (r *SenderResolver) Resolve(ctx context.Context, name string) (*domain.Account, error) {
	acct, err := r.accounts.Account(ctx, name)
	if err == nil {
		return acct, nil
	}
	if name != "" || r.cfg.NonInteractive || r.selector == nil || !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	senders, lerr := r.accounts.List(ctx)
	if lerr != nil || len(senders) == 0 {
		return nil, err
	}
	chosen, serr := r.selector.SelectSender(ctx, senders, "Select sender")
	if serr != nil {
		return nil, serr
	}
	return r.accounts.Account(ctx, chosen)
}

// ConfirmBroadcast asks before sending transactions to a non-local network
func (r *SenderResolver) ConfirmBroadcast(ctx context.Context, op *Operation) error {
	if r.cfg.AssumeYes || r.cfg.Network == nil || r.cfg.Network.IsLocal() {
		return nil
	}
	if r.cfg.NonInteractive || r.selector == nil {
		return fmt.Errorf("refusing to broadcast %d transaction(s) to %s in non-interactive mode without --yes",
			len(op.Steps), r.cfg.Network.Name)
	}

	prompt := fmt.Sprintf("Send %d transaction(s) for %s from %s on %s (chain %d)",
		len(op.Steps), op.Name, op.Account.Address.Hex(), r.cfg.Network.Name, r.cfg.Network.ChainID)
	ok, err := r.selector.Confirm(ctx, prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return nil
}
