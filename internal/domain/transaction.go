package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxRequest is a call to submit. Nonce is assigned by the ledger client.
type TxRequest struct {
	From     common.Address
	To       common.Address
	Data     []byte
	Value    *big.Int
	GasLimit uint64 // 0 means estimate
	Nonce    uint64
}

// Clone returns a deep copy of the request
func (r *TxRequest) Clone() *TxRequest {
	c := *r
	c.Data = common.CopyBytes(r.Data)
	if r.Value != nil {
		c.Value = new(big.Int).Set(r.Value)
	}
	return &c
}

// PendingTx is the handle of a broadcast transaction awaiting inclusion
type PendingTx struct {
	Hash        common.Hash    `json:"hash"`
	From        common.Address `json:"from"`
	Nonce       uint64         `json:"nonce"`
	Request     *TxRequest     `json:"-"`
	SubmittedAt time.Time      `json:"submittedAt"`
}

// ReceiptStatus is the terminal outcome of a transaction
type ReceiptStatus string

const (
	ReceiptStatusSuccess  ReceiptStatus = "success"
	ReceiptStatusReverted ReceiptStatus = "reverted"
)

// Receipt is the ledger's record of a transaction's outcome
type Receipt struct {
	Step              string        `json:"step,omitempty"`
	TxHash            common.Hash   `json:"txHash"`
	Status            ReceiptStatus `json:"status"`
	BlockNumber       uint64        `json:"blockNumber"`
	BlockHash         common.Hash   `json:"blockHash"`
	GasUsed           uint64        `json:"gasUsed"`
	EffectiveGasPrice *big.Int      `json:"effectiveGasPrice,omitempty"`
	Logs              []*types.Log  `json:"-"`
	Events            []Event       `json:"events,omitempty"`
}

// Succeeded reports whether the receipt status is success
func (r *Receipt) Succeeded() bool {
	return r != nil && r.Status == ReceiptStatusSuccess
}

// Fee returns gas used times effective gas price, or nil if the price is unknown
func (r *Receipt) Fee() *big.Int {
	if r.EffectiveGasPrice == nil {
		return nil
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(r.GasUsed), r.EffectiveGasPrice)
}

// ReceiptFromTypes converts a go-ethereum receipt
func ReceiptFromTypes(r *types.Receipt) *Receipt {
	status := ReceiptStatusReverted
	if r.Status == types.ReceiptStatusSuccessful {
		status = ReceiptStatusSuccess
	}
	var block uint64
	if r.BlockNumber != nil {
		block = r.BlockNumber.Uint64()
	}
	return &Receipt{
		TxHash:            r.TxHash,
		Status:            status,
		BlockNumber:       block,
		BlockHash:         r.BlockHash,
		GasUsed:           r.GasUsed,
		EffectiveGasPrice: r.EffectiveGasPrice,
		Logs:              r.Logs,
	}
}

// Event is a decoded contract log
type Event struct {
	Contract common.Address `json:"contract"`
	Name     string         `json:"name"`
	Fields   map[string]any `json:"fields,omitempty"`
}
