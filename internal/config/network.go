package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// NetworkOverrides are per-invocation values from flags or FLASHOPS_* env vars
type NetworkOverrides struct {
	RPCURL          string
	ChainID         uint64
	WrappedToken    string
	FlashLoan       string
	FlashLoanMethod string
	FlashLoanABI    string
}

func (o NetworkOverrides) empty() bool {
	return o == NetworkOverrides{}
}

// NetworkResolver resolves network names against flashops.toml
type NetworkResolver struct {
	raw      *config.ProjectConfig
	expanded *config.ProjectConfig
}

// NewNetworkResolver creates a resolver; raw keeps unexpanded values so the
// env var behind each RPC URL can be reported.
func NewNetworkResolver(raw, expanded *config.ProjectConfig) *NetworkResolver {
	if raw == nil {
		raw = &config.ProjectConfig{}
	}
	if expanded == nil {
		expanded = ExpandProjectConfig(raw)
	}
	return &NetworkResolver{raw: raw, expanded: expanded}
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) (*NetworkResolver, error) {
	if cfg.ConfigSource == "" {
		return NewNetworkResolver(nil, cfg.Project), nil
	}
	raw, err := LoadRawProjectConfig(cfg.ConfigSource)
	if err != nil {
		return nil, err
	}
	return NewNetworkResolver(raw, cfg.Project), nil
}

// Names returns the configured network names in sorted order
func (r *NetworkResolver) Names() []string {
	return sortedKeys(r.expanded.Networks)
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	return r.ResolveWithOverrides(name, NetworkOverrides{})
}

// ResolveWithOverrides resolves a network and applies overrides on top. A
// name that is not configured is accepted when the overrides carry an RPC URL.
func (r *NetworkResolver) ResolveWithOverrides(name string, o NetworkOverrides) (*config.Network, error) {
	nc, exists := r.expanded.Networks[name]
	if !exists && o.RPCURL == "" {
		return nil, domain.UnknownNameErr{
			Kind:        "network",
			Name:        name,
			Suggestions: Suggest(name, r.Names()),
		}
	}

	network := &config.Network{
		Name:            name,
		RPCURL:          nc.RPCURL,
		ChainID:         nc.ChainID,
		ExplorerURL:     nc.Explorer,
		FlashLoanMethod: nc.FlashLoanMethod,
		FlashLoanABI:    nc.FlashLoanABI,
	}
	if rawNet, ok := r.raw.Networks[name]; ok {
		if envVar, isVar := DetectEnvVar(rawNet.RPCURL); isVar {
			network.RPCSource = envVar
		}
	}

	wrapped, flash := nc.WrappedToken, nc.FlashLoan
	if !o.empty() {
		if o.RPCURL != "" {
			network.RPCURL = o.RPCURL
			network.RPCSource = "FLASHOPS_RPC_URL"
		}
		if o.ChainID != 0 {
			network.ChainID = o.ChainID
		}
		if o.WrappedToken != "" {
			wrapped = o.WrappedToken
		}
		if o.FlashLoan != "" {
			flash = o.FlashLoan
		}
		if o.FlashLoanMethod != "" {
			network.FlashLoanMethod = o.FlashLoanMethod
		}
		if o.FlashLoanABI != "" {
			network.FlashLoanABI = o.FlashLoanABI
		}
	}

	if network.ExplorerURL == "" {
		network.ExplorerURL = DefaultExplorer(network.ChainID)
	}

	if network.RPCURL == "" {
		hint := network.RPCSource
		if hint == "" {
			hint = GenerateEnvVarName(name)
		}
		return nil, fmt.Errorf("network '%s' has no rpc_url (is %s set?)", name, hint)
	}

	var err error
	if network.WrappedToken, err = optionalAddress(wrapped); err != nil {
		return nil, fmt.Errorf("network '%s' wrapped_token: %w", name, err)
	}
	if network.FlashLoan, err = optionalAddress(flash); err != nil {
		return nil, fmt.Errorf("network '%s' flash_loan: %w", name, err)
	}

	return network, nil
}

func optionalAddress(s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, nil
	}
	return domain.ParseAddress(s)
}
