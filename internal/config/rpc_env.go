package config

import (
	"regexp"
	"strings"
)

// envVarPattern matches ${VAR_NAME} patterns in TOML values
var envVarPattern = regexp.MustCompile(`^\$\{([A-Za-z_][A-Za-z0-9_]*)\}$`)

// DetectEnvVar checks if a raw TOML value is a simple ${VAR_NAME} reference.
// Returns the variable name and true if the value is a pure env var reference.
func DetectEnvVar(rawValue string) (string, bool) {
	matches := envVarPattern.FindStringSubmatch(rawValue)
	if len(matches) == 2 {
		return matches[1], true
	}
	return "", false
}

// GenerateEnvVarName generates a conventional env var name for a network's RPC URL.
// Convention: uppercase, dashes/dots to underscores, append _RPC_URL.
// Examples: kovan -> KOVAN_RPC_URL, polygon-mumbai -> POLYGON_MUMBAI_RPC_URL
func GenerateEnvVarName(networkName string) string {
	name := strings.ToUpper(networkName)
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return name + "_RPC_URL"
}

// RedactRPCURL hides everything after the host of an RPC URL, where
// providers put API keys.
func RedactRPCURL(rawURL string) string {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return rawURL
	}
	host, path, hasPath := strings.Cut(rest, "/")
	if !hasPath || path == "" {
		return rawURL
	}
	return scheme + "://" + host + "/…"
}
