package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

// ProjectFile is the name of the project configuration file
const ProjectFile = "flashops.toml"

// LoadDotEnv loads .env files from the project root without overriding
// variables already present in the environment
func LoadDotEnv(projectRoot string) {
	envFiles := []string{
		filepath.Join(projectRoot, ".env"),
		filepath.Join(projectRoot, ".env.local"),
	}

	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				slog.Warn("failed to load env file", "file", envFile, "error", err)
			}
		}
	}
}

// LoadRawProjectConfig reads flashops.toml without env var expansion.
func LoadRawProjectConfig(path string) (*config.ProjectConfig, error) {
	var cfg config.ProjectConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if cfg.Networks == nil {
		cfg.Networks = make(map[string]config.NetworkConfig)
	}
	if cfg.Senders == nil {
		cfg.Senders = make(map[string]config.SenderConfig)
	}
	return &cfg, nil
}

// ExpandProjectConfig returns a copy of cfg with environment variables expanded
func ExpandProjectConfig(raw *config.ProjectConfig) *config.ProjectConfig {
	out := &config.ProjectConfig{
		Defaults: config.DefaultsConfig{
			Network:             os.ExpandEnv(raw.Defaults.Network),
			Sender:              os.ExpandEnv(raw.Defaults.Sender),
			ConfirmationTimeout: os.ExpandEnv(raw.Defaults.ConfirmationTimeout),
			PollInterval:        os.ExpandEnv(raw.Defaults.PollInterval),
		},
		Networks: make(map[string]config.NetworkConfig, len(raw.Networks)),
		Senders:  make(map[string]config.SenderConfig, len(raw.Senders)),
	}

	for name, n := range raw.Networks {
		out.Networks[name] = config.NetworkConfig{
			RPCURL:          os.ExpandEnv(n.RPCURL),
			ChainID:         n.ChainID,
			Explorer:        os.ExpandEnv(n.Explorer),
			WrappedToken:    os.ExpandEnv(n.WrappedToken),
			FlashLoan:       os.ExpandEnv(n.FlashLoan),
			FlashLoanMethod: n.FlashLoanMethod,
			FlashLoanABI:    os.ExpandEnv(n.FlashLoanABI),
		}
	}

	for name, s := range raw.Senders {
		out.Senders[name] = config.SenderConfig{
			PrivateKey:  os.ExpandEnv(s.PrivateKey),
			Keystore:    os.ExpandEnv(s.Keystore),
			PasswordEnv: s.PasswordEnv,
		}
	}

	return out
}

// FindProjectRoot walks up from current directory to find flashops.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a flashops project (%s not found)", ProjectFile)
		}
		dir = parent
	}
}
