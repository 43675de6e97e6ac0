package usecase

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/trebuchet-org/flashops/internal/domain"
)

// NativeToken selects the chain's native currency in QueryBalanceParams
const NativeToken = "native"

// QueryBalanceParams contains parameters for a balance query
type QueryBalanceParams struct {
	Token  string // alias, address or "native"; empty means the wrapped token
	Owner  string // alias or address; empty means the sender
	Sender string
}

// BalanceResult is a balance with enough context to display it
type BalanceResult struct {
	Owner    common.Address `json:"owner"`
	Token    common.Address `json:"token,omitempty"`
	Native   bool           `json:"native"`
	Symbol   string         `json:"symbol"`
	Decimals uint8          `json:"decimals"`
	Balance  *big.Int       `json:"balance"`
}

// Formatted renders the balance in whole-token units
func (b *BalanceResult) Formatted() string {
	return domain.FormatAmount(b.Balance, int(b.Decimals))
}

// QueryBalance reads ERC20 or native balances without sending anything
type QueryBalance struct {
	ledger   LedgerClient
	registry ContractRegistry
	senders  *SenderResolver
}

// NewQueryBalance creates a new QueryBalance use case
func NewQueryBalance(ledger LedgerClient, registry ContractRegistry, senders *SenderResolver) *QueryBalance {
	return &QueryBalance{ledger: ledger, registry: registry, senders: senders}
}

// Run executes the query
func (uc *QueryBalance) Run(ctx context.Context, params QueryBalanceParams) (*BalanceResult, error) {
	owner, err := uc.owner(ctx, params)
	if err != nil {
		return nil, err
	}

	if strings.EqualFold(params.Token, NativeToken) || strings.EqualFold(params.Token, "eth") {
		balance, err := uc.ledger.NativeBalance(ctx, owner)
		if err != nil {
			return nil, err
		}
		return &BalanceResult{Owner: owner, Native: true, Symbol: "ETH", Decimals: domain.DefaultDecimals, Balance: balance}, nil
	}

	var token domain.ContractProxy
	if params.Token == "" {
		token, err = uc.registry.WrappedToken()
	} else {
		token, err = uc.registry.Contract(params.Token, "")
	}
	if err != nil {
		return nil, err
	}

	balance, err := uc.call(ctx, token, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	amount, ok := balance.(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%s.balanceOf returned %T", token.Name(), balance)
	}

	result := &BalanceResult{
		Owner:    owner,
		Token:    token.Address(),
		Symbol:   token.Name(),
		Decimals: domain.DefaultDecimals,
		Balance:  amount,
	}
	// symbol and decimals are optional in ERC20
	if v, err := uc.call(ctx, token, "symbol"); err == nil {
		if s, ok := v.(string); ok && s != "" {
			result.Symbol = s
		}
	}
	if v, err := uc.call(ctx, token, "decimals"); err == nil {
		if d, ok := v.(uint8); ok {
			result.Decimals = d
		}
	}
	return result, nil
}

func (uc *QueryBalance) owner(ctx context.Context, params QueryBalanceParams) (common.Address, error) {
	if params.Owner != "" {
		return uc.registry.ResolveAddress(params.Owner)
	}
	account, err := uc.senders.Resolve(ctx, params.Sender)
	if err != nil {
		return common.Address{}, err
	}
	return account.Address, nil
}

// call performs a read-only call and returns its single return value
func (uc *QueryBalance) call(ctx context.Context, proxy domain.ContractProxy, method string, args ...any) (any, error) {
	data, err := proxy.Encode(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := uc.ledger.Query(ctx, proxy.Address(), data)
	if err != nil {
		return nil, err
	}
	values, err := proxy.Decode(method, out)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("%s.%s returned %d values", proxy.Name(), method, len(values))
	}
	return values[0], nil
}
