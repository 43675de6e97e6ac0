package contracts

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// binding is the ABI machinery shared by every capability
type binding struct {
	name    string
	kind    domain.ContractKind
	address common.Address
	abi     abi.ABI
}

func newBinding(name string, kind domain.ContractKind, address common.Address, contractABI abi.ABI) binding {
	return binding{name: name, kind: kind, address: address, abi: contractABI}
}

// Name returns the display name of the contract
func (b *binding) Name() string { return b.name }

// Kind returns the capability kind
func (b *binding) Kind() domain.ContractKind { return b.kind }

// Address returns the contract address
func (b *binding) Address() common.Address { return b.address }

// Inputs returns the declared parameters of method
func (b *binding) Inputs(method string) (abi.Arguments, error) {
	m, err := b.method(method)
	if err != nil {
		return nil, err
	}
	return m.Inputs, nil
}

// Encode packs a call to method. Missing methods and arguments that don't
// type-check against the interface fail with an AbiMismatchError.
func (b *binding) Encode(method string, args ...any) ([]byte, error) {
	m, err := b.method(method)
	if err != nil {
		return nil, err
	}
	if len(args) != len(m.Inputs) {
		return nil, b.mismatch(method, fmt.Errorf("expects %d argument(s), got %d", len(m.Inputs), len(args)))
	}
	data, err := b.abi.Pack(method, args...)
	if err != nil {
		return nil, b.mismatch(method, err)
	}
	return data, nil
}

// Decode unpacks the return data of method
func (b *binding) Decode(method string, data []byte) ([]any, error) {
	m, err := b.method(method)
	if err != nil {
		return nil, err
	}
	values, err := m.Outputs.Unpack(data)
	if err != nil {
		return nil, b.mismatch(method, fmt.Errorf("cannot decode return data: %w", err))
	}
	return values, nil
}

// DecodeEvents decodes the logs emitted by this contract that match a
// known event. Unknown logs are skipped.
func (b *binding) DecodeEvents(logs []*types.Log) []domain.Event {
	var events []domain.Event
	for _, l := range logs {
		if l == nil || l.Address != b.address || len(l.Topics) == 0 {
			continue
		}
		ev, err := b.abi.EventByID(l.Topics[0])
		if err != nil {
			continue
		}

		fields := make(map[string]any)
		if len(l.Data) > 0 {
			if err := ev.Inputs.UnpackIntoMap(fields, l.Data); err != nil {
				continue
			}
		}
		var indexed abi.Arguments
		for _, arg := range ev.Inputs {
			if arg.Indexed {
				indexed = append(indexed, arg)
			}
		}
		if len(indexed) > 0 {
			if err := abi.ParseTopicsIntoMap(fields, indexed, l.Topics[1:]); err != nil {
				continue
			}
		}

		events = append(events, domain.Event{
			Contract: b.address,
			Name:     ev.Name,
			Fields:   fields,
		})
	}
	return events
}

func (b *binding) method(name string) (abi.Method, error) {
	m, ok := b.abi.Methods[name]
	if !ok {
		return abi.Method{}, b.mismatch(name, fmt.Errorf("method not found in %s interface", b.kind))
	}
	return m, nil
}

func (b *binding) mismatch(method string, err error) error {
	return &domain.AbiMismatchError{Contract: b.name, Method: method, Err: err}
}
