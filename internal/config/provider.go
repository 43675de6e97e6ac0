package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/trebuchet-org/flashops/internal/domain/config"
)

const (
	DefaultNetwork             = "local"
	DefaultSender              = "default"
	DefaultConfirmationTimeout = 2 * time.Minute
	DefaultPollInterval        = 2 * time.Second
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		projectRoot = "."
	}
	projectRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		DataDir:        filepath.Join(projectRoot, ".flashops"),
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		AssumeYes:      v.GetBool("yes"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		PrivateKey:     v.GetString("private_key"),
	}

	// Load flashops.toml if the project has one; env-only mode otherwise
	LoadDotEnv(projectRoot)
	raw := &config.ProjectConfig{}
	projectFile := filepath.Join(projectRoot, ProjectFile)
	if _, statErr := os.Stat(projectFile); statErr == nil {
		raw, err = LoadRawProjectConfig(projectFile)
		if err != nil {
			return nil, err
		}
		cfg.ConfigSource = projectFile
	}
	cfg.Project = ExpandProjectConfig(raw)

	cfg.SenderName = firstNonEmpty(v.GetString("sender"), cfg.Project.Defaults.Sender, DefaultSender)

	cfg.ConfirmationTimeout, err = durationSetting(v.GetString("confirmation_timeout"), cfg.Project.Defaults.ConfirmationTimeout, DefaultConfirmationTimeout)
	if err != nil {
		return nil, fmt.Errorf("invalid confirmation timeout: %w", err)
	}
	cfg.PollInterval, err = durationSetting(v.GetString("poll_interval"), cfg.Project.Defaults.PollInterval, DefaultPollInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid poll interval: %w", err)
	}

	// Resolve network if one is selected or overrides make one up
	overrides := NetworkOverrides{
		RPCURL:          v.GetString("rpc_url"),
		ChainID:         v.GetUint64("chain_id"),
		WrappedToken:    v.GetString("wrapped_token"),
		FlashLoan:       v.GetString("flash_loan"),
		FlashLoanMethod: v.GetString("flash_loan_method"),
		FlashLoanABI:    v.GetString("flash_loan_abi"),
	}
	networkName := firstNonEmpty(v.GetString("network"), cfg.Project.Defaults.Network)
	if networkName == "" && overrides.RPCURL != "" {
		networkName = "env"
	}
	if networkName == "" && len(cfg.Project.Networks) == 1 {
		networkName = sortedKeys(cfg.Project.Networks)[0]
	}
	if networkName == "" {
		networkName = DefaultNetwork
	}

	resolver := NewNetworkResolver(raw, cfg.Project)
	network, err := resolver.ResolveWithOverrides(networkName, overrides)
	if err == nil {
		cfg.Network = network
	} else if v.IsSet("network") || overrides.RPCURL != "" {
		// an explicit choice that doesn't resolve is fatal; the implicit default is not
		return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
	}

	if cfg.Network != nil && cfg.Network.FlashLoanABI != "" && !filepath.IsAbs(cfg.Network.FlashLoanABI) {
		cfg.Network.FlashLoanABI = filepath.Join(projectRoot, cfg.Network.FlashLoanABI)
	}

	return cfg, nil
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) *viper.Viper {
	v := viper.New()

	// Set up environment variables
	v.SetEnvPrefix("FLASHOPS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("timeout", "10m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)

	// Env-only keys still need to be known to viper for AutomaticEnv lookups
	for _, key := range []string{"rpc_url", "chain_id", "private_key", "wrapped_token", "flash_loan", "flash_loan_method", "flash_loan_abi", "poll_interval"} {
		_ = v.BindEnv(key)
	}

	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			if err := v.BindPFlag(key, f); err != nil {
				panic(err)
			}
		})
	}

	return v
}

func durationSetting(flagValue, fileValue string, fallback time.Duration) (time.Duration, error) {
	s := firstNonEmpty(flagValue, fileValue)
	if s == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", s)
	}
	return d, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
