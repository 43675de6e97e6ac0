package contracts

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// DefaultFlashLoanMethod is the single-asset entrypoint of the flash-loan contract
const DefaultFlashLoanMethod = "flashLoan"

// Token is an ERC20 contract
type Token struct {
	binding
}

// NewToken binds the ERC20 interface at address
func NewToken(address common.Address) *Token {
	return &Token{binding: newBinding("ERC20("+shortAddress(address)+")", domain.ContractKindToken, address, ERC20ABI)}
}

// BalanceOfCall encodes balanceOf(owner)
func (t *Token) BalanceOfCall(owner common.Address) ([]byte, error) {
	return t.Encode("balanceOf", owner)
}

// DecodeBalance decodes a balanceOf return value
func (t *Token) DecodeBalance(data []byte) (*big.Int, error) {
	return decodeUint(&t.binding, "balanceOf", data)
}

// WrappedToken is a WETH9-style contract: ERC20 plus deposit/withdraw of native currency
type WrappedToken struct {
	binding
}

// NewWrappedToken binds the wrapped-token interface at address
func NewWrappedToken(address common.Address) *WrappedToken {
	return &WrappedToken{binding: newBinding("WETH", domain.ContractKindWrappedToken, address, WrappedTokenABI)}
}

// DepositCall encodes deposit(); the amount travels as the tx value
func (w *WrappedToken) DepositCall() ([]byte, error) {
	return w.Encode("deposit")
}

// TransferCall encodes transfer(to, amount)
func (w *WrappedToken) TransferCall(to common.Address, amount *big.Int) ([]byte, error) {
	return w.Encode("transfer", to, amount)
}

// BalanceOfCall encodes balanceOf(owner)
func (w *WrappedToken) BalanceOfCall(owner common.Address) ([]byte, error) {
	return w.Encode("balanceOf", owner)
}

// DecodeBalance decodes a balanceOf return value
func (w *WrappedToken) DecodeBalance(data []byte) (*big.Int, error) {
	return decodeUint(&w.binding, "balanceOf", data)
}

// FlashLoan is the flash-loan contract. Its entrypoint takes exactly one
// asset address.
type FlashLoan struct {
	binding
	method string
}

// NewFlashLoan binds the default flash-loan interface at address
func NewFlashLoan(address common.Address) *FlashLoan {
	fl, _ := NewFlashLoanWithABI(address, FlashLoanABI, DefaultFlashLoanMethod)
	return fl
}

// NewFlashLoanWithABI binds a custom interface and entrypoint name
func NewFlashLoanWithABI(address common.Address, contractABI abi.ABI, method string) (*FlashLoan, error) {
	if method == "" {
		method = DefaultFlashLoanMethod
	}
	fl := &FlashLoan{
		binding: newBinding("FlashLoan", domain.ContractKindFlashLoan, address, contractABI),
		method:  method,
	}

	inputs, err := fl.Inputs(method)
	if err != nil {
		return nil, err
	}
	if len(inputs) != 1 || inputs[0].Type.T != abi.AddressTy {
		return nil, fl.mismatch(method, fmt.Errorf("entrypoint must take a single address, has (%s)", argTypes(inputs)))
	}
	return fl, nil
}

// EntryMethod returns the name of the flash-loan entrypoint
func (f *FlashLoan) EntryMethod() string { return f.method }

// FlashLoanCall encodes the entrypoint for asset
func (f *FlashLoan) FlashLoanCall(asset common.Address) ([]byte, error) {
	return f.Encode(f.method, asset)
}

// Contract is any contract bound to a caller-supplied interface
type Contract struct {
	binding
}

// NewContract binds contractABI at address
func NewContract(name string, address common.Address, contractABI abi.ABI) *Contract {
	return &Contract{binding: newBinding(name, domain.ContractKindCustom, address, contractABI)}
}

// LoadABIFile reads either a Hardhat/Foundry artifact ({"abi": [...]}) or a bare ABI array
func LoadABIFile(path string) (abi.ABI, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to read ABI file: %w", err)
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var artifact struct {
			ABI json.RawMessage `json:"abi"`
		}
		if err := json.Unmarshal(data, &artifact); err != nil {
			return abi.ABI{}, fmt.Errorf("failed to parse artifact %s: %w", path, err)
		}
		if len(artifact.ABI) == 0 {
			return abi.ABI{}, fmt.Errorf("artifact %s has no abi field", path)
		}
		trimmed = string(artifact.ABI)
	}

	parsed, err := abi.JSON(strings.NewReader(trimmed))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("failed to parse ABI %s: %w", path, err)
	}
	return parsed, nil
}

func decodeUint(b *binding, method string, data []byte) (*big.Int, error) {
	values, err := b.Decode(method, data)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, b.mismatch(method, fmt.Errorf("expected 1 return value, got %d", len(values)))
	}
	v, ok := values[0].(*big.Int)
	if !ok {
		return nil, b.mismatch(method, fmt.Errorf("expected uint256 return, got %T", values[0]))
	}
	return v, nil
}

func argTypes(args abi.Arguments) string {
	types := make([]string, len(args))
	for i, a := range args {
		types[i] = a.Type.String()
	}
	return strings.Join(types, ",")
}

func shortAddress(a common.Address) string {
	h := a.Hex()
	return h[:6] + "…" + h[len(h)-4:]
}
