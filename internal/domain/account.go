package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Signer signs transactions on behalf of an account
type Signer interface {
	SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// Account is an address plus the capability to sign for it
type Account struct {
	Name    string
	Address common.Address
	Signer  Signer
}

// SenderInfo describes a configured sender without unlocking it
type SenderInfo struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Address common.Address `json:"address"`
	Default bool           `json:"default"`
	Balance *big.Int       `json:"balance,omitempty"`
}
