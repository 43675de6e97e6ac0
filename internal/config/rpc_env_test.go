package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEnvVar(t *testing.T) {
	tests := []struct {
		name       string
		rawValue   string
		wantEnvVar string
		wantIsVar  bool
	}{
		{
			name:       "simple env var",
			rawValue:   "${SEPOLIA_RPC_URL}",
			wantEnvVar: "SEPOLIA_RPC_URL",
			wantIsVar:  true,
		},
		{
			name:       "env var with underscores",
			rawValue:   "${CELO_SEPOLIA_RPC_URL}",
			wantEnvVar: "CELO_SEPOLIA_RPC_URL",
			wantIsVar:  true,
		},
		{
			name:       "hardcoded URL",
			rawValue:   "https://sepolia.base.org",
			wantEnvVar: "",
			wantIsVar:  false,
		},
		{
			name:       "env var with path suffix",
			rawValue:   "${MY_VAR}/path",
			wantEnvVar: "",
			wantIsVar:  false,
		},
		{
			name:       "empty string",
			rawValue:   "",
			wantEnvVar: "",
			wantIsVar:  false,
		},
		{
			name:       "localhost URL",
			rawValue:   "http://localhost:8545",
			wantEnvVar: "",
			wantIsVar:  false,
		},
		{
			name:       "env var starting with underscore",
			rawValue:   "${_MY_VAR}",
			wantEnvVar: "_MY_VAR",
			wantIsVar:  true,
		},
		{
			name:       "partial env var syntax - missing closing brace",
			rawValue:   "${UNCLOSED",
			wantEnvVar: "",
			wantIsVar:  false,
		},
		{
			name:       "dollar without braces",
			rawValue:   "$MY_VAR",
			wantEnvVar: "",
			wantIsVar:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			envVar, isVar := DetectEnvVar(tt.rawValue)
			assert.Equal(t, tt.wantEnvVar, envVar)
			assert.Equal(t, tt.wantIsVar, isVar)
		})
	}
}

func TestGenerateEnvVarName(t *testing.T) {
	tests := []struct {
		name        string
		networkName string
		want        string
	}{
		{
			name:        "simple network",
			networkName: "sepolia",
			want:        "SEPOLIA_RPC_URL",
		},
		{
			name:        "network with dash",
			networkName: "celo-sepolia",
			want:        "CELO_SEPOLIA_RPC_URL",
		},
		{
			name:        "network with number and dash",
			networkName: "anvil-31337",
			want:        "ANVIL_31337_RPC_URL",
		},
		{
			name:        "already uppercase",
			networkName: "MAINNET",
			want:        "MAINNET_RPC_URL",
		},
		{
			name:        "mixed case with dash",
			networkName: "Base-Sepolia",
			want:        "BASE_SEPOLIA_RPC_URL",
		},
		{
			name:        "network with dot",
			networkName: "polygon.zkevm",
			want:        "POLYGON_ZKEVM_RPC_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateEnvVarName(tt.networkName)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedactRPCURL(t *testing.T) {
	tests := []struct {
		rawURL string
		want   string
	}{
		{rawURL: "https://eth-sepolia.g.alchemy.com/v2/abcdef123", want: "https://eth-sepolia.g.alchemy.com/…"},
		{rawURL: "https://mainnet.infura.io/v3/key", want: "https://mainnet.infura.io/…"},
		{rawURL: "http://localhost:8545", want: "http://localhost:8545"},
		{rawURL: "http://localhost:8545/", want: "http://localhost:8545/"},
		{rawURL: "not a url", want: "not a url"},
	}

	for _, tt := range tests {
		t.Run(tt.rawURL, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactRPCURL(tt.rawURL))
		})
	}
}
