package ledger

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// NonceSource reports the next nonce the node expects for an account
type NonceSource interface {
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
}

// NonceManager hands out gap-free nonces per account. A lease holds the
// account's slot from assignment until the transaction is broadcast or
// abandoned, so concurrent submitters for one account are serialized.
type NonceManager struct {
	source NonceSource

	mu       sync.Mutex
	accounts map[common.Address]*accountNonce
}

// accountNonce is guarded by slot, a one-element semaphore, so waiters can
// give up when their context ends.
type accountNonce struct {
	slot   chan struct{}
	next   uint64
	synced bool
}

// NonceLease is an assigned nonce. Exactly one of Commit, CommitUnconfirmed
// or Release must be called.
type NonceLease struct {
	Nonce uint64

	acct *accountNonce
	done bool
}

// NewNonceManager creates a manager that syncs from source
func NewNonceManager(source NonceSource) *NonceManager {
	return &NonceManager{
		source:   source,
		accounts: make(map[common.Address]*accountNonce),
	}
}

// Lease waits until the account is free and assigns its next nonce. It
// returns ctx.Err() if ctx ends while waiting.
func (m *NonceManager) Lease(ctx context.Context, account common.Address) (*NonceLease, error) {
	m.mu.Lock()
	acct, ok := m.accounts[account]
	if !ok {
		acct = &accountNonce{slot: make(chan struct{}, 1)}
		m.accounts[account] = acct
	}
	m.mu.Unlock()

	select {
	case acct.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if !acct.synced {
		n, err := m.source.PendingNonceAt(ctx, account)
		if err != nil {
			<-acct.slot
			return nil, err
		}
		acct.next = n
		acct.synced = true
	}
	return &NonceLease{Nonce: acct.next, acct: acct}, nil
}

// Commit marks the nonce as used by a broadcast transaction
func (l *NonceLease) Commit() {
	l.finish(l.Nonce+1, true)
}

// CommitUnconfirmed marks the nonce as used by a transaction the node may or
// may not have accepted. The next lease re-reads the node's pending nonce.
func (l *NonceLease) CommitUnconfirmed() {
	l.finish(l.Nonce+1, false)
}

// Release gives the nonce back. With resync the next lease re-reads the
// node's pending nonce instead of trusting the local counter.
func (l *NonceLease) Release(resync bool) {
	l.finish(l.Nonce, !resync)
}

func (l *NonceLease) finish(next uint64, synced bool) {
	if l.done {
		return
	}
	l.done = true
	l.acct.next = next
	if !synced {
		l.acct.synced = false
	}
	<-l.acct.slot
}
