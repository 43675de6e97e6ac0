package usecase

import (
	"context"

	"github.com/trebuchet-org/flashops/internal/domain/config"
	"golang.org/x/sync/errgroup"
)

// ListNetworksParams contains parameters for listing networks
type ListNetworksParams struct {
	Probe bool // contact each reachable RPC for its chain ID and head block
}

// ListNetworksResult contains the result of listing networks
type ListNetworksResult struct {
	Networks []NetworkStatus
	Current  string
}

// NetworkStatus represents the status of a network
type NetworkStatus struct {
	Name    string
	Network *config.Network
	Live    *ChainStatus // set when probed successfully
	Error   error
}

// ListNetworks is a use case for listing available networks
type ListNetworks struct {
	resolver NetworkResolver
	probe    ChainProbe
	cfg      *config.RuntimeConfig
}

// NewListNetworks creates a new ListNetworks use case
func NewListNetworks(resolver NetworkResolver, probe ChainProbe, cfg *config.RuntimeConfig) *ListNetworks {
	return &ListNetworks{
		resolver: resolver,
		probe:    probe,
		cfg:      cfg,
	}
}

// Run executes the use case
func (uc *ListNetworks) Run(ctx context.Context, params ListNetworksParams) (*ListNetworksResult, error) {
	networkNames := uc.resolver.GetNetworks(ctx)

	networks := make([]NetworkStatus, len(networkNames))
	g, gctx := errgroup.WithContext(ctx)
	for i, name := range networkNames {
		networks[i].Name = name

		info, err := uc.resolver.ResolveNetwork(ctx, name)
		if err != nil {
			networks[i].Error = err
			continue
		}
		networks[i].Network = info

		if params.Probe && uc.probe != nil {
			g.Go(func() error {
				live, err := uc.probe.Probe(gctx, info)
				if err != nil {
					networks[i].Error = err
				} else {
					networks[i].Live = live
				}
				return nil
			})
		}
	}
	_ = g.Wait()

	return &ListNetworksResult{
		Networks: networks,
		Current:  networkName(uc.cfg),
	}, nil
}
