package senders

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/trebuchet-org/flashops/internal/config"
	"github.com/trebuchet-org/flashops/internal/domain"
	domainconfig "github.com/trebuchet-org/flashops/internal/domain/config"
)

// DevPrivateKey is the first account of every Hardhat and Anvil dev chain.
// It is only used on local networks with no senders configured.
const DevPrivateKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

// overrideSender names the account built from --private-key / FLASHOPS_PRIVATE_KEY
const overrideSender = "env"

// KeySigner signs with an in-memory private key
type KeySigner struct {
	key *ecdsa.PrivateKey
}

// NewKeySigner wraps key
func NewKeySigner(key *ecdsa.PrivateKey) *KeySigner {
	return &KeySigner{key: key}
}

// SignTx signs tx for chainID
func (s *KeySigner) SignTx(tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
}

// AccountFromHex builds an account from a hex private key, with or without 0x
func AccountFromHex(name, hexKey string) (*domain.Account, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key for sender '%s': %w", name, err)
	}
	return &domain.Account{
		Name:    name,
		Address: crypto.PubkeyToAddress(key.PublicKey),
		Signer:  NewKeySigner(key),
	}, nil
}

// AccountFromKeystore decrypts a V3 keystore file
func AccountFromKeystore(name, path, password string) (*domain.Account, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore for sender '%s': %w", name, err)
	}
	key, err := keystore.DecryptKey(data, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt keystore for sender '%s': %w", name, err)
	}
	return &domain.Account{
		Name:    name,
		Address: key.Address,
		Signer:  NewKeySigner(key.PrivateKey),
	}, nil
}

// Service resolves configured senders into signing accounts
type Service struct {
	cfg *domainconfig.RuntimeConfig
	log *slog.Logger

	mu       sync.Mutex
	accounts map[string]*domain.Account
}

// NewService creates a new sender service
func NewService(cfg *domainconfig.RuntimeConfig, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		log:      logger.With("component", "senders"),
		accounts: make(map[string]*domain.Account),
	}
}

// Account unlocks the named sender. An empty name selects the default sender.
func (s *Service) Account(ctx context.Context, name string) (*domain.Account, error) {
	if name == "" {
		name = s.cfg.SenderName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := name
	if s.cfg.PrivateKey != "" && (name == s.cfg.SenderName || name == overrideSender) {
		key = overrideSender
	}
	if acct, ok := s.accounts[key]; ok {
		return acct, nil
	}

	acct, err := s.unlock(name)
	if err != nil {
		return nil, err
	}
	s.log.Debug("unlocked sender", "name", acct.Name, "address", acct.Address.Hex())
	s.accounts[key] = acct
	return acct, nil
}

// List describes every configured sender without decrypting keystores
func (s *Service) List(ctx context.Context) ([]domain.SenderInfo, error) {
	var infos []domain.SenderInfo

	if s.cfg.PrivateKey != "" {
		acct, err := AccountFromHex(overrideSender, s.cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		infos = append(infos, domain.SenderInfo{
			Name:    overrideSender,
			Type:    string(domainconfig.SenderTypePrivateKey),
			Address: acct.Address,
			Default: true,
		})
	}

	senders := s.configured()
	names := make([]string, 0, len(senders))
	for name := range senders {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sc := senders[name]
		info := domain.SenderInfo{
			Name:    name,
			Type:    string(sc.Type()),
			Default: s.cfg.PrivateKey == "" && name == s.cfg.SenderName,
		}
		switch sc.Type() {
		case domainconfig.SenderTypeKeystore:
			addr, err := keystoreAddress(s.resolvePath(sc.Keystore))
			if err != nil {
				return nil, fmt.Errorf("sender '%s': %w", name, err)
			}
			info.Address = addr
		default:
			acct, err := AccountFromHex(name, sc.PrivateKey)
			if err != nil {
				return nil, err
			}
			info.Address = acct.Address
		}
		infos = append(infos, info)
	}

	if len(infos) == 0 && s.devFallback() {
		acct, err := AccountFromHex(s.cfg.SenderName, DevPrivateKey)
		if err != nil {
			return nil, err
		}
		infos = append(infos, domain.SenderInfo{
			Name:    s.cfg.SenderName,
			Type:    "dev",
			Address: acct.Address,
			Default: true,
		})
	}
	return infos, nil
}

func (s *Service) unlock(name string) (*domain.Account, error) {
	if s.cfg.PrivateKey != "" && (name == s.cfg.SenderName || name == overrideSender) {
		return AccountFromHex(overrideSender, s.cfg.PrivateKey)
	}

	senders := s.configured()
	sc, ok := senders[name]
	if !ok {
		// Try case-insensitive lookup
		for key, candidate := range senders {
			if strings.EqualFold(key, name) {
				sc, ok, name = candidate, true, key
				break
			}
		}
	}
	if !ok {
		if len(senders) == 0 && s.devFallback() {
			s.log.Warn("no senders configured, using the dev chain's first account", "network", s.cfg.Network.Name)
			return AccountFromHex(name, DevPrivateKey)
		}
		known := make([]string, 0, len(senders))
		for k := range senders {
			known = append(known, k)
		}
		sort.Strings(known)
		return nil, domain.UnknownNameErr{Kind: "sender", Name: name, Suggestions: config.Suggest(name, known)}
	}

	switch sc.Type() {
	case domainconfig.SenderTypeKeystore:
		password := ""
		if sc.PasswordEnv != "" {
			password = os.Getenv(sc.PasswordEnv)
			if password == "" {
				return nil, fmt.Errorf("sender '%s': password env var %s is not set", name, sc.PasswordEnv)
			}
		}
		return AccountFromKeystore(name, s.resolvePath(sc.Keystore), password)
	default:
		if sc.PrivateKey == "" {
			return nil, fmt.Errorf("sender '%s' has neither private_key nor keystore", name)
		}
		return AccountFromHex(name, sc.PrivateKey)
	}
}

func (s *Service) configured() map[string]domainconfig.SenderConfig {
	if s.cfg.Project == nil {
		return nil
	}
	return s.cfg.Project.Senders
}

func (s *Service) devFallback() bool {
	return s.cfg.Network != nil && s.cfg.Network.IsLocal()
}

func (s *Service) resolvePath(path string) string {
	if filepath.IsAbs(path) || s.cfg.ProjectRoot == "" {
		return path
	}
	return filepath.Join(s.cfg.ProjectRoot, path)
}

func keystoreAddress(path string) (common.Address, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to read keystore: %w", err)
	}
	var ks struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &ks); err != nil {
		return common.Address{}, fmt.Errorf("failed to parse keystore: %w", err)
	}
	if !common.IsHexAddress(ks.Address) {
		return common.Address{}, fmt.Errorf("keystore has no valid address")
	}
	return common.HexToAddress(ks.Address), nil
}
