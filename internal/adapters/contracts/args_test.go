package contracts

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/flashops/internal/domain"
)

const kitchenSinkABI = `[{"type":"function","name":"sink","inputs":[
	{"name":"who","type":"address"},
	{"name":"amount","type":"uint256"},
	{"name":"delta","type":"int256"},
	{"name":"fee","type":"uint24"},
	{"name":"tick","type":"int32"},
	{"name":"flag","type":"bool"},
	{"name":"memo","type":"string"},
	{"name":"payload","type":"bytes"},
	{"name":"salt","type":"bytes32"}
],"outputs":[]}]`

func TestCoerceArgs(t *testing.T) {
	proxy := NewContract("Sink", holder, mustParseABI(kitchenSinkABI))
	salt := "0xab" + strings.Repeat("00", 31)

	args, err := CoerceArgs(proxy, "sink", []string{
		holder.Hex(), "2.5", "-1gwei", "3000", "-42", "true", "hello", "0xdeadbeef", salt,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, holder, args[0])
	want, _ := new(big.Int).SetString("2500000000000000000", 10)
	assert.Equal(t, want, args[1])
	assert.Equal(t, big.NewInt(-1_000_000_000), args[2])
	assert.Equal(t, big.NewInt(3000), args[3]) // uint24 is a *big.Int in go-ethereum
	assert.Equal(t, int32(-42), args[4])
	assert.Equal(t, true, args[5])
	assert.Equal(t, "hello", args[6])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, args[7])
	var wantSalt [32]byte
	wantSalt[0] = 0xab
	assert.Equal(t, wantSalt, args[8])

	_, err = proxy.Encode("sink", args...)
	assert.NoError(t, err)
}

func TestCoerceArgs_Errors(t *testing.T) {
	proxy := NewContract("Sink", holder, mustParseABI(kitchenSinkABI))
	valid := []string{holder.Hex(), "1", "1", "1", "1", "true", "x", "0x", "0x" + strings.Repeat("00", 32)}

	tests := []struct {
		name  string
		index int
		value string
		want  string
	}{
		{name: "bad address", index: 0, value: "0x12", want: "argument 0 (address who)"},
		{name: "bad amount", index: 1, value: "many", want: "argument 1 (uint256 amount)"},
		{name: "uint overflow", index: 3, value: "16777216", want: "argument 3 (uint24 fee)"},
		{name: "bad bool", index: 5, value: "yes please", want: "argument 5"},
		{name: "short fixed bytes", index: 8, value: "0xabcd", want: "expected 32 bytes, got 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := append([]string(nil), valid...)
			raw[tt.index] = tt.value
			_, err := CoerceArgs(proxy, "sink", raw, nil)
			assert.ErrorIs(t, err, domain.ErrAbiMismatch)
			assert.ErrorContains(t, err, tt.want)
		})
	}

	t.Run("arity", func(t *testing.T) {
		_, err := CoerceArgs(proxy, "sink", []string{holder.Hex()}, nil)
		assert.ErrorIs(t, err, domain.ErrAbiMismatch)
		assert.ErrorContains(t, err, "expects 9 argument(s), got 1")
	})

	t.Run("unknown method", func(t *testing.T) {
		_, err := CoerceArgs(proxy, "drain", nil, nil)
		assert.ErrorIs(t, err, domain.ErrAbiMismatch)
	})
}

func TestCoerceArgs_Resolver(t *testing.T) {
	weth := NewWrappedToken(wethAddr)
	resolve := func(ref string) (common.Address, error) {
		if ref == "vault" {
			return flashLoanAddr, nil
		}
		return domain.ParseAddress(ref)
	}

	args, err := CoerceArgs(weth, "transfer", []string{"vault", "0"}, resolve)
	require.NoError(t, err)
	assert.Equal(t, flashLoanAddr, args[0])
	assert.Equal(t, 0, args[1].(*big.Int).Sign())
}
