package config

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot string
	DataDir     string

	// Context settings
	Network    *Network // nil if not specified
	SenderName string
	PrivateKey string // overrides the sender's configured key when set

	// Execution settings
	Debug               bool
	NonInteractive      bool
	AssumeYes           bool // Skip broadcast confirmation
	JSON                bool // Output in JSON format
	Timeout             time.Duration
	ConfirmationTimeout time.Duration
	PollInterval        time.Duration

	// Config source tracking
	ConfigSource string // path of flashops.toml, empty when running from env only

	// Resolved configurations
	Project *ProjectConfig
}

// Network represents network configuration with the contracts deployed on it
type Network struct {
	Name        string `json:"name"`
	ChainID     uint64 `json:"chainId,omitempty"` // 0 means accept whatever the node reports
	RPCURL      string `json:"-"`
	RPCSource   string `json:"rpcSource,omitempty"` // env var the URL came from, if any
	ExplorerURL string `json:"explorerUrl,omitempty"`

	WrappedToken    common.Address `json:"wrappedToken"`
	FlashLoan       common.Address `json:"flashLoan"`
	FlashLoanMethod string         `json:"flashLoanMethod,omitempty"`
	FlashLoanABI    string         `json:"flashLoanAbi,omitempty"` // path to a Hardhat artifact or ABI JSON
}

// IsLocal reports whether the network is a local development chain
func (n *Network) IsLocal() bool {
	switch n.ChainID {
	case 31337, 1337:
		return true
	}
	return n.Name == "local" || n.Name == "localhost" || n.Name == "hardhat" || n.Name == "anvil"
}
