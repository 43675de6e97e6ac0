package contracts

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// Address aliases accepted wherever an address is expected
const (
	AliasWrappedToken = "wrapped_token"
	AliasFlashLoan    = "flash_loan"
)

// Registry builds contract proxies from the active network's configuration.
// Proxies are constructed on every call and never cached.
type Registry struct {
	network     *config.Network
	projectRoot string
}

// NewRegistry creates a registry bound to the configured network
func NewRegistry(cfg *config.RuntimeConfig) *Registry {
	return &Registry{network: cfg.Network, projectRoot: cfg.ProjectRoot}
}

// WrappedToken returns the wrapped-token proxy
func (r *Registry) WrappedToken() (domain.ContractProxy, error) {
	addr, err := r.configured(AliasWrappedToken)
	if err != nil {
		return nil, err
	}
	return NewWrappedToken(addr), nil
}

// FlashLoan returns the flash-loan proxy, using the ABI override if configured
func (r *Registry) FlashLoan() (domain.ContractProxy, error) {
	addr, err := r.configured(AliasFlashLoan)
	if err != nil {
		return nil, err
	}
	if r.network.FlashLoanABI == "" {
		if r.network.FlashLoanMethod == "" || r.network.FlashLoanMethod == DefaultFlashLoanMethod {
			return NewFlashLoan(addr), nil
		}
		return r.flashLoanWithABI(addr, FlashLoanABI)
	}

	parsed, err := LoadABIFile(r.network.FlashLoanABI)
	if err != nil {
		return nil, err
	}
	return r.flashLoanWithABI(addr, parsed)
}

func (r *Registry) flashLoanWithABI(addr common.Address, contractABI abi.ABI) (domain.ContractProxy, error) {
	fl, err := NewFlashLoanWithABI(addr, contractABI, r.network.FlashLoanMethod)
	if err != nil {
		return nil, err
	}
	return fl, nil
}

// Token returns an ERC20 proxy for address. The wrapped token gets its
// richer interface.
func (r *Registry) Token(address common.Address) domain.ContractProxy {
	if r.network != nil && address == r.network.WrappedToken && address != (common.Address{}) {
		return NewWrappedToken(address)
	}
	return NewToken(address)
}

// Contract resolves ref (an alias or address) to a proxy. With abiPath the
// contract is bound to that interface; otherwise aliases get their own
// capability and plain addresses are treated as ERC20 tokens.
func (r *Registry) Contract(ref string, abiPath string) (domain.ContractProxy, error) {
	if abiPath == "" {
		switch strings.ToLower(strings.TrimSpace(ref)) {
		case AliasWrappedToken, "weth":
			return r.WrappedToken()
		case AliasFlashLoan, "flashloan":
			return r.FlashLoan()
		}
	}

	addr, err := r.ResolveAddress(ref)
	if err != nil {
		return nil, err
	}
	if abiPath == "" {
		return r.Token(addr), nil
	}

	if !filepath.IsAbs(abiPath) && r.projectRoot != "" {
		abiPath = filepath.Join(r.projectRoot, abiPath)
	}
	parsed, err := LoadABIFile(abiPath)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(abiPath), filepath.Ext(abiPath))
	return NewContract(name, addr, parsed), nil
}

// ResolveAddress accepts an alias or a hex address
func (r *Registry) ResolveAddress(ref string) (common.Address, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case AliasWrappedToken, "weth":
		return r.configured(AliasWrappedToken)
	case AliasFlashLoan, "flashloan":
		return r.configured(AliasFlashLoan)
	}
	return domain.ParseAddress(ref)
}

// CoerceArgs converts textual args for method using this registry's aliases
func (r *Registry) CoerceArgs(proxy domain.ContractProxy, method string, raw []string) ([]any, error) {
	return CoerceArgs(proxy, method, raw, r.ResolveAddress)
}

func (r *Registry) configured(alias string) (common.Address, error) {
	if r.network == nil {
		return common.Address{}, fmt.Errorf("no network selected (use --network or set FLASHOPS_NETWORK)")
	}
	var addr common.Address
	switch alias {
	case AliasWrappedToken:
		addr = r.network.WrappedToken
	case AliasFlashLoan:
		addr = r.network.FlashLoan
	}
	if addr == (common.Address{}) {
		return common.Address{}, fmt.Errorf("%s address not configured for network '%s'", alias, r.network.Name)
	}
	return addr, nil
}
