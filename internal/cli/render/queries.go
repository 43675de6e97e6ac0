package render

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/flashops/internal/config"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

// BalanceRenderer renders token and native balances
type BalanceRenderer struct {
	out io.Writer
}

// NewBalanceRenderer creates a new balance renderer
func NewBalanceRenderer(out io.Writer) *BalanceRenderer {
	return &BalanceRenderer{out: out}
}

// Render prints the balance on one line
func (r *BalanceRenderer) Render(result *usecase.BalanceResult) error {
	what := result.Symbol
	if !result.Native {
		what = fmt.Sprintf("%s %s", result.Symbol, faintStyle.Sprintf("(%s)", result.Token.Hex()))
	}
	fmt.Fprintf(r.out, "%s holds %s %s\n",
		addressStyle.Sprint(result.Owner.Hex()), successStyle.Sprint(result.Formatted()), what)
	return nil
}

// AccountsRenderer renders the configured senders
type AccountsRenderer struct {
	out io.Writer
}

// NewAccountsRenderer creates a new accounts renderer
func NewAccountsRenderer(out io.Writer) *AccountsRenderer {
	return &AccountsRenderer{out: out}
}

// Render prints one row per sender; the default is starred
func (r *AccountsRenderer) Render(result *usecase.ListAccountsResult) error {
	if len(result.Accounts) == 0 {
		fmt.Fprintln(r.out, "No senders configured. Add a [senders.default] section to flashops.toml or pass --private-key.")
		return nil
	}

	withBalances := false
	for _, a := range result.Accounts {
		if a.Balance != nil {
			withBalances = true
		}
	}

	t := newTable()
	header := table.Row{"", "NAME", "TYPE", "ADDRESS"}
	if withBalances {
		header = append(header, "BALANCE")
	}
	t.AppendHeader(header)
	for _, a := range result.Accounts {
		marker := ""
		if a.Default {
			marker = "*"
		}
		row := table.Row{marker, a.Name, a.Type, addressStyle.Sprint(a.Address.Hex())}
		if withBalances {
			balance := faintStyle.Sprint("-")
			if a.Balance != nil {
				balance = domain.FormatAmount(a.Balance, domain.DefaultDecimals)
			}
			row = append(row, balance)
		}
		t.AppendRow(row)
	}
	fmt.Fprintln(r.out, t.Render())
	return nil
}

// NetworksRenderer renders network lists
type NetworksRenderer struct {
	out io.Writer
}

// NewNetworksRenderer creates a new networks renderer
func NewNetworksRenderer(out io.Writer) *NetworksRenderer {
	return &NetworksRenderer{out: out}
}

// RenderNetworksList renders the configured networks, marking the current one
func (r *NetworksRenderer) RenderNetworksList(result *usecase.ListNetworksResult) error {
	if len(result.Networks) == 0 {
		fmt.Fprintln(r.out, "No networks configured in flashops.toml [networks]")
		return nil
	}

	fmt.Fprintln(r.out, "🌐 Available Networks:")
	fmt.Fprintln(r.out)

	for _, n := range result.Networks {
		current := " "
		if n.Name == result.Current {
			current = "*"
		}
		switch {
		case n.Error != nil:
			fmt.Fprintf(r.out, "%s ❌ %s - Error: %v\n", current, n.Name, n.Error)
		case n.Live != nil:
			fmt.Fprintf(r.out, "%s ✅ %s - Chain ID: %d, block %d\n", current, n.Name, n.Live.ChainID, n.Live.BlockNumber)
		default:
			chain := "any"
			if n.Network != nil && n.Network.ChainID != 0 {
				chain = fmt.Sprint(n.Network.ChainID)
			}
			fmt.Fprintf(r.out, "%s ✅ %s - Chain ID: %s\n", current, n.Name, chain)
		}
		if n.Network != nil {
			if n.Network.RPCURL != "" {
				fmt.Fprintf(r.out, "      rpc:           %s\n", faintStyle.Sprint(config.RedactRPCURL(n.Network.RPCURL)))
			}
			r.renderContracts(n.Network.WrappedToken, n.Network.FlashLoan)
		}
	}

	return nil
}

func (r *NetworksRenderer) renderContracts(wrapped, flashLoan common.Address) {
	if wrapped != (common.Address{}) {
		fmt.Fprintf(r.out, "      wrapped token: %s\n", faintStyle.Sprint(wrapped.Hex()))
	}
	if flashLoan != (common.Address{}) {
		fmt.Fprintf(r.out, "      flash loan:    %s\n", faintStyle.Sprint(flashLoan.Hex()))
	}
}
