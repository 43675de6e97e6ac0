package config

import "strings"

// knownExplorers maps well-known chain IDs to their block explorer
var knownExplorers = map[uint64]string{
	1:        "https://etherscan.io",
	11155111: "https://sepolia.etherscan.io",
	17000:    "https://holesky.etherscan.io",
	10:       "https://optimistic.etherscan.io",
	42161:    "https://arbiscan.io",
	137:      "https://polygonscan.com",
	8453:     "https://basescan.org",
	84532:    "https://sepolia.basescan.org",
	43114:    "https://snowtrace.io",
	56:       "https://bscscan.com",
	42220:    "https://celoscan.io",
	100:      "https://gnosisscan.io",
}

// DefaultExplorer returns the explorer of a well-known chain, or ""
func DefaultExplorer(chainID uint64) string {
	return knownExplorers[chainID]
}

// TxURL links a transaction hash on the explorer, or "" without one
func TxURL(explorer, hash string) string {
	if explorer == "" {
		return ""
	}
	return strings.TrimRight(explorer, "/") + "/tx/" + hash
}
