package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// DefaultDecimals is the decimals of native currency and WETH
const DefaultDecimals = 18

var units = []struct {
	suffix   string
	decimals int
}{
	{"gwei", 9},
	{"wei", 0},
	{"ether", 18},
	{"eth", 18},
}

// ParseAmount converts a decimal string into base units. A trailing unit
// (wei, gwei, ether) overrides decimals. The result is always positive.
func ParseAmount(s string, decimals int) (*big.Int, error) {
	raw := strings.TrimSpace(strings.ToLower(s))
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	for _, u := range units {
		if strings.HasSuffix(raw, u.suffix) {
			raw = strings.TrimSpace(strings.TrimSuffix(raw, u.suffix))
			decimals = u.decimals
			break
		}
	}

	// decimal notation only: no fractions like 1/3, no hex or binary prefixes
	if strings.ContainsFunc(raw, func(c rune) bool { return !strings.ContainsRune("0123456789.+-e", c) }) {
		return nil, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, s)
	}
	r, ok := new(big.Rat).SetString(raw)
	if !ok {
		return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	r.Mul(r, new(big.Rat).SetInt(scale))
	if !r.IsInt() {
		return nil, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, decimals)
	}
	amount := new(big.Int).Set(r.Num())
	if amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %q must be positive", ErrInvalidAmount, s)
	}
	return amount, nil
}

// FormatAmount renders base units with the given decimals, trimming trailing zeros
func FormatAmount(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	if decimals == 0 {
		return amount.String()
	}
	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	whole, frac := new(big.Int).QuoRem(abs, scale, new(big.Int))

	out := whole.String()
	if frac.Sign() != 0 {
		fs := frac.String()
		fs = strings.Repeat("0", decimals-len(fs)) + fs
		out += "." + strings.TrimRight(fs, "0")
	}
	if neg {
		out = "-" + out
	}
	return out
}

// ParseAddress validates a hex address
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
