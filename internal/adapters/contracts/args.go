package contracts

import (
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// AddressResolver turns an alias or hex string into an address
type AddressResolver func(ref string) (common.Address, error)

// CoerceArgs converts textual arguments into the Go values the ABI expects
// for method. uint256/int256 arguments use amount syntax (whole tokens with
// 18 decimals, or an explicit wei/gwei/ether suffix); narrower integers are
// plain integers.
func CoerceArgs(proxy domain.ContractProxy, method string, raw []string, resolve AddressResolver) ([]any, error) {
	inputs, err := proxy.Inputs(method)
	if err != nil {
		return nil, err
	}
	mismatch := func(err error) error {
		return &domain.AbiMismatchError{Contract: proxy.Name(), Method: method, Err: err}
	}
	if len(raw) != len(inputs) {
		return nil, mismatch(fmt.Errorf("expects %d argument(s), got %d", len(inputs), len(raw)))
	}

	out := make([]any, len(raw))
	for i, arg := range inputs {
		v, err := coerce(arg.Type, raw[i], resolve)
		if err != nil {
			return nil, mismatch(fmt.Errorf("argument %d (%s %s): %w", i, arg.Type.String(), arg.Name, err))
		}
		out[i] = v
	}
	return out, nil
}

func coerce(t abi.Type, s string, resolve AddressResolver) (any, error) {
	s = strings.TrimSpace(s)

	switch t.T {
	case abi.AddressTy:
		if resolve == nil {
			return domain.ParseAddress(s)
		}
		return resolve(s)

	case abi.UintTy, abi.IntTy:
		if t.Size > 64 {
			if s == "0" {
				return new(big.Int), nil
			}
			neg := t.T == abi.IntTy && strings.HasPrefix(s, "-")
			n, err := domain.ParseAmount(strings.TrimPrefix(s, "-"), domain.DefaultDecimals)
			if err != nil {
				return nil, err
			}
			if neg {
				n.Neg(n)
			}
			return n, nil
		}
		// sizes without a native Go type (uint24, int40, ...) bind to *big.Int
		native := t.GetType().Kind() != reflect.Ptr
		if t.T == abi.UintTy {
			n, err := strconv.ParseUint(s, 0, t.Size)
			if err != nil {
				return nil, err
			}
			if !native {
				return new(big.Int).SetUint64(n), nil
			}
			return reflect.ValueOf(n).Convert(t.GetType()).Interface(), nil
		}
		n, err := strconv.ParseInt(s, 0, t.Size)
		if err != nil {
			return nil, err
		}
		if !native {
			return big.NewInt(n), nil
		}
		return reflect.ValueOf(n).Convert(t.GetType()).Interface(), nil

	case abi.BoolTy:
		return strconv.ParseBool(s)

	case abi.StringTy:
		return s, nil

	case abi.BytesTy:
		return hexutil.Decode(s)

	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	}

	return nil, fmt.Errorf("unsupported argument type %s", t.String())
}
