package domain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wei(s string) *big.Int {
	n, _ := new(big.Int).SetString(s, 10)
	return n
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1", "1000000000000000000"},
		{"0.5", "500000000000000000"},
		{"2 ether", "2000000000000000000"},
		{" 3ETH ", "3000000000000000000"},
		{"1.5gwei", "1500000000"},
		{"100wei", "100"},
		{"1e-18", "1"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in, DefaultDecimals)
			require.NoError(t, err)
			assert.Equal(t, wei(tt.want), got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	tests := []struct {
		in      string
		wantMsg string
	}{
		{"", "empty"},
		{"lots", "is not a decimal number"},
		{"1/3", "is not a decimal number"},
		{"1/2 ether", "is not a decimal number"},
		{"0x10", "is not a decimal number"},
		{"0", "must be positive"},
		{"-1", "must be positive"},
		{"1.5wei", "more than 0 decimal places"},
		{"0.0000000000000000001", "more than 18 decimal places"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseAmount(tt.in, DefaultDecimals)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidAmount))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1.5", FormatAmount(wei("1500000000000000000"), 18))
	assert.Equal(t, "0.000000000000000001", FormatAmount(big.NewInt(1), 18))
	assert.Equal(t, "-0.5", FormatAmount(wei("-500000000000000000"), 18))
	assert.Equal(t, "0", FormatAmount(new(big.Int), 18))
	assert.Equal(t, "0", FormatAmount(nil, 18))
	assert.Equal(t, "42", FormatAmount(big.NewInt(42), 0))
	assert.Equal(t, "12.34", FormatAmount(big.NewInt(12340000), 6))
}

func TestParseAddress(t *testing.T) {
	addr, err := ParseAddress("  0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2 ")
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"), addr)

	for _, bad := range []string{"", "0x1234", "weth", "0xzz2aaa39b223fe8d0a0e5c4f27ead9083c756cc2"} {
		_, err := ParseAddress(bad)
		assert.True(t, errors.Is(err, ErrInvalidAddress), bad)
	}
}
