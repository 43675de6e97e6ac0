package contracts

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIJSON = `[
	{"type":"function","name":"name","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"symbol","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"string"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]},
	{"type":"function","name":"totalSupply","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"allowance","stateMutability":"view","inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"approve","stateMutability":"nonpayable","inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"transferFrom","stateMutability":"nonpayable","inputs":[{"name":"from","type":"address"},{"name":"to","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
	{"type":"event","name":"Approval","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]}
]`

// WETH9 on top of ERC20
const wrappedTokenExtraABIJSON = `[
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[],"outputs":[]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"wad","type":"uint256"}],"outputs":[]},
	{"type":"event","name":"Deposit","anonymous":false,"inputs":[{"name":"dst","type":"address","indexed":true},{"name":"wad","type":"uint256","indexed":false}]},
	{"type":"event","name":"Withdrawal","anonymous":false,"inputs":[{"name":"src","type":"address","indexed":true},{"name":"wad","type":"uint256","indexed":false}]}
]`

// Default flash-loan receiver interface: a single-asset entrypoint.
const flashLoanABIJSON = `[
	{"type":"function","name":"flashLoan","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]},
	{"type":"function","name":"owner","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"asset","type":"address"}],"outputs":[]}
]`

var (
	// ERC20ABI is the parsed ERC20 interface
	ERC20ABI = mustParseABI(erc20ABIJSON)
	// WrappedTokenABI is ERC20 plus WETH9 deposit/withdraw
	WrappedTokenABI = mergeABIs(ERC20ABI, mustParseABI(wrappedTokenExtraABIJSON))
	// FlashLoanABI is the default flash-loan contract interface
	FlashLoanABI = mustParseABI(flashLoanABIJSON)
)

func mustParseABI(s string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return parsed
}

func mergeABIs(parts ...abi.ABI) abi.ABI {
	out := abi.ABI{
		Methods: make(map[string]abi.Method),
		Events:  make(map[string]abi.Event),
		Errors:  make(map[string]abi.Error),
	}
	for _, p := range parts {
		for name, m := range p.Methods {
			out.Methods[name] = m
		}
		for name, e := range p.Events {
			out.Events[name] = e
		}
		for name, e := range p.Errors {
			out.Errors[name] = e
		}
	}
	return out
}
