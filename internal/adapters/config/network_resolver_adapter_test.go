package config

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/flashops/internal/config"
	domainconfig "github.com/trebuchet-org/flashops/internal/domain/config"
)

func TestNetworkResolverAdapter(t *testing.T) {
	project := &domainconfig.ProjectConfig{
		Networks: map[string]domainconfig.NetworkConfig{
			"local":   {RPCURL: "http://127.0.0.1:8545", ChainID: 31337, WrappedToken: "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"},
			"sepolia": {},
		},
	}
	a := NewNetworkResolverAdapter(config.NewNetworkResolver(project, project))
	ctx := context.Background()

	assert.Equal(t, []string{"local", "sepolia"}, a.GetNetworks(ctx))

	n, err := a.ResolveNetwork(ctx, "local")
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), n.ChainID)
	assert.Equal(t, "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", n.WrappedToken.Hex())

	_, err = a.ResolveNetwork(ctx, "sepolia")
	assert.ErrorContains(t, err, "has no rpc_url")

	_, err = a.ResolveNetwork(ctx, "locl")
	assert.ErrorContains(t, err, "did you mean 'local'")
}
