package config

// ProjectConfig represents flashops.toml after environment expansion
type ProjectConfig struct {
	Defaults DefaultsConfig           `toml:"defaults"`
	Networks map[string]NetworkConfig `toml:"networks"`
	Senders  map[string]SenderConfig  `toml:"senders"`
}

// DefaultsConfig holds project-wide defaults
type DefaultsConfig struct {
	Network             string `toml:"network,omitempty"`
	Sender              string `toml:"sender,omitempty"`
	ConfirmationTimeout string `toml:"confirmation_timeout,omitempty"`
	PollInterval        string `toml:"poll_interval,omitempty"`
}

// NetworkConfig is a [networks.<name>] section
type NetworkConfig struct {
	RPCURL          string `toml:"rpc_url"`
	ChainID         uint64 `toml:"chain_id,omitempty"`
	Explorer        string `toml:"explorer,omitempty"`
	WrappedToken    string `toml:"wrapped_token,omitempty"`
	FlashLoan       string `toml:"flash_loan,omitempty"`
	FlashLoanMethod string `toml:"flash_loan_method,omitempty"`
	FlashLoanABI    string `toml:"flash_loan_abi,omitempty"`
}

// SenderType identifies how a sender's key is supplied
type SenderType string

const (
	SenderTypePrivateKey SenderType = "private_key"
	SenderTypeKeystore   SenderType = "keystore"
)

// SenderConfig is a [senders.<name>] section
type SenderConfig struct {
	PrivateKey  string `toml:"private_key,omitempty"`
	Keystore    string `toml:"keystore,omitempty"`
	PasswordEnv string `toml:"password_env,omitempty"`
}

// Type returns how the sender's key is supplied
func (s SenderConfig) Type() SenderType {
	if s.Keystore != "" {
		return SenderTypeKeystore
	}
	return SenderTypePrivateKey
}
