package domain

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ContractKind names the capability set a contract proxy exposes
type ContractKind string

const (
	ContractKindToken        ContractKind = "token"
	ContractKindWrappedToken ContractKind = "wrapped-token"
	ContractKindFlashLoan    ContractKind = "flash-loan"
	ContractKindCustom       ContractKind = "custom"
)

// ContractProxy is a typed handle on a deployed contract: it encodes calls
// and decodes return data and logs against the contract's interface.
type ContractProxy interface {
	Name() string
	Kind() ContractKind
	Address() common.Address
	Inputs(method string) (abi.Arguments, error)
	Encode(method string, args ...any) ([]byte, error)
	Decode(method string, data []byte) ([]any, error)
	DecodeEvents(logs []*types.Log) []Event
}
