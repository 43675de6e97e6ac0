package config

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

func testProject() *config.ProjectConfig {
	return &config.ProjectConfig{
		Networks: map[string]config.NetworkConfig{
			"mainnet": {RPCURL: "${MAINNET_RPC_URL}", ChainID: 1, WrappedToken: wethAddr},
			"local":   {RPCURL: "http://127.0.0.1:8545", ChainID: 31337, Explorer: "http://localhost:4000"},
			"broken":  {RPCURL: "http://x", FlashLoan: "0x1234"},
		},
	}
}

func TestNetworkResolver_Resolve(t *testing.T) {
	t.Setenv("MAINNET_RPC_URL", "https://eth.example/key")
	raw := testProject()
	r := NewNetworkResolver(raw, ExpandProjectConfig(raw))

	assert.Equal(t, []string{"broken", "local", "mainnet"}, r.Names())

	mainnet, err := r.Resolve("mainnet")
	require.NoError(t, err)
	assert.Equal(t, "https://eth.example/key", mainnet.RPCURL)
	assert.Equal(t, "MAINNET_RPC_URL", mainnet.RPCSource)
	assert.Equal(t, "https://etherscan.io", mainnet.ExplorerURL)
	assert.Equal(t, common.HexToAddress(wethAddr), mainnet.WrappedToken)
	assert.Equal(t, common.Address{}, mainnet.FlashLoan)

	local, err := r.Resolve("local")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:4000", local.ExplorerURL)
	assert.Empty(t, local.RPCSource)

	_, err = r.Resolve("broken")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidAddress))
	assert.Contains(t, err.Error(), "network 'broken' flash_loan")

	_, err = r.Resolve("mainet")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.Contains(t, err.Error(), "did you mean 'mainnet'")
}

func TestNetworkResolver_MissingRPC(t *testing.T) {
	t.Setenv("MAINNET_RPC_URL", "")
	raw := &config.ProjectConfig{Networks: map[string]config.NetworkConfig{
		"mainnet":    {RPCURL: "${MAINNET_RPC_URL}"},
		"polygon-zk": {},
	}}
	r := NewNetworkResolver(raw, ExpandProjectConfig(raw))

	_, err := r.Resolve("mainnet")
	require.Error(t, err)
	assert.Equal(t, "network 'mainnet' has no rpc_url (is MAINNET_RPC_URL set?)", err.Error())

	_, err = r.Resolve("polygon-zk")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is POLYGON_ZK_RPC_URL set?")
}

func TestNetworkResolver_Overrides(t *testing.T) {
	raw := testProject()
	r := NewNetworkResolver(raw, nil)

	n, err := r.ResolveWithOverrides("local", NetworkOverrides{
		RPCURL:          "http://10.0.0.2:8545",
		FlashLoan:       flashAddr,
		FlashLoanMethod: "borrow",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:8545", n.RPCURL)
	assert.Equal(t, "FLASHOPS_RPC_URL", n.RPCSource)
	assert.Equal(t, uint64(31337), n.ChainID)
	assert.Equal(t, common.HexToAddress(flashAddr), n.FlashLoan)
	assert.Equal(t, "borrow", n.FlashLoanMethod)

	// an unconfigured name is accepted when the overrides supply an RPC
	adhoc, err := r.ResolveWithOverrides("fork", NetworkOverrides{RPCURL: "http://127.0.0.1:8546", ChainID: 1})
	require.NoError(t, err)
	assert.Equal(t, "fork", adhoc.Name)
	assert.Equal(t, "https://etherscan.io", adhoc.ExplorerURL)
}

func TestTxURL(t *testing.T) {
	assert.Equal(t, "https://etherscan.io/tx/0xabc", TxURL("https://etherscan.io/", "0xabc"))
	assert.Empty(t, TxURL("", "0xabc"))
	assert.Equal(t, "https://basescan.org", DefaultExplorer(8453))
	assert.Empty(t, DefaultExplorer(31337))
}

func TestSuggest(t *testing.T) {
	known := []string{"mainnet", "sepolia", "holesky", "local"}

	assert.Equal(t, []string{"sepolia"}, Suggest("sepol", known))
	assert.Contains(t, Suggest("mainet", known), "mainnet")
	assert.Empty(t, Suggest("zzzz", known))
}
