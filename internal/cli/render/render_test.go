package render

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/flashops/internal/adapters/contracts"
	"github.com/trebuchet-org/flashops/internal/domain"
	"github.com/trebuchet-org/flashops/internal/domain/config"
	"github.com/trebuchet-org/flashops/internal/usecase"
)

func init() {
	color.NoColor = true
}

var (
	wethAddr  = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	flashAddr = common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	hashA     = common.HexToHash("0xaa")
	hashB     = common.HexToHash("0xbb")
)

func TestOperationTitle(t *testing.T) {
	assert.Equal(t, "Fund And Transfer", OperationTitle("fund-and-transfer"))
	assert.Equal(t, "Flash Loan", OperationTitle("flash-loan"))
	assert.Equal(t, "Seed Vault", OperationTitle("seed_vault"))
}

func TestFormatEvent(t *testing.T) {
	ev := domain.Event{
		Name: "Transfer",
		Fields: map[string]any{
			"wad": big.NewInt(5),
			"src": wethAddr,
			"dst": flashAddr,
		},
	}
	assert.Equal(t,
		fmt.Sprintf("Transfer(dst=%s, src=%s, wad=5)", flashAddr.Hex(), wethAddr.Hex()),
		FormatEvent(ev))
	assert.Equal(t, "Ping()", FormatEvent(domain.Event{Name: "Ping"}))
}

func TestFormatError(t *testing.T) {
	assert.Equal(t, "❌ Network 'x' not found", FormatError("network 'x' not found"))
	assert.Equal(t, "✅ done", FormatSuccess("done"))
	assert.Equal(t, "⚠️  careful", FormatWarning("careful"))
}

func TestOperationRenderer_RenderResult(t *testing.T) {
	var buf bytes.Buffer
	r := NewOperationRenderer(&buf, "https://sepolia.etherscan.io")

	err := r.RenderResult(&usecase.OperationResult{
		RunID:     "0123456789abcdef",
		Operation: "fund-and-transfer",
		Resumed:   1,
		Duration:  1500 * time.Millisecond,
		Receipts: []*domain.Receipt{
			{Step: "wrap", TxHash: hashA, Status: domain.ReceiptStatusSuccess, BlockNumber: 10, GasUsed: 27938,
				Events: []domain.Event{{Name: "Deposit", Fields: map[string]any{"wad": big.NewInt(1)}}}},
			{Step: "transfer", TxHash: hashB, Status: domain.ReceiptStatusSuccess, BlockNumber: 11, GasUsed: 51582},
		},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Fund And Transfer completed in 1.5s")
	assert.Contains(t, out, "run 0123456789ab")
	assert.Contains(t, out, "1 step(s) taken from an earlier run")
	assert.Contains(t, out, "STEP")
	assert.Contains(t, out, "wrap")
	assert.Contains(t, out, "transfer")
	assert.Contains(t, out, "27938")
	assert.Contains(t, out, "wrap: Deposit(wad=1)")
	assert.Contains(t, out, "https://sepolia.etherscan.io/tx/"+hashB.Hex())
}

func TestOperationRenderer_RenderReceipt(t *testing.T) {
	var buf bytes.Buffer
	r := NewOperationRenderer(&buf, "")

	require.NoError(t, r.RenderReceipt(&domain.Receipt{
		TxHash:            hashA,
		Status:            domain.ReceiptStatusReverted,
		BlockNumber:       99,
		GasUsed:           21000,
		EffectiveGasPrice: big.NewInt(1_000_000_000),
	}))

	out := buf.String()
	assert.Contains(t, out, hashA.Hex())
	assert.Contains(t, out, "reverted")
	assert.Contains(t, out, "Block:   99")
	assert.Contains(t, out, "Fee:     0.000021 ETH")
	assert.NotContains(t, out, "Explorer")
}

func TestRenderError(t *testing.T) {
	t.Run("plain error", func(t *testing.T) {
		var buf bytes.Buffer
		RenderError(&buf, errors.New("no network selected"))
		assert.Equal(t, "❌ No network selected\n", buf.String())
	})

	t.Run("aborted operation", func(t *testing.T) {
		var buf bytes.Buffer
		pending := &domain.PendingTx{Hash: hashB}
		RenderError(&buf, &domain.OperationAbortedError{
			Operation:    "fund-and-transfer",
			RunID:        "0123456789abcdef",
			Completed:    []*domain.Receipt{{Step: "wrap", TxHash: hashA}},
			FailingIndex: 1,
			FailingStep:  "transfer",
			Cause: &domain.StepFailedError{Index: 1, Step: "transfer", Pending: pending,
				Err: &domain.TimeoutError{TxHash: hashB, Waited: time.Minute}},
		})

		out := buf.String()
		assert.Contains(t, out, "Fund And Transfer aborted at step 2 (transfer)")
		assert.Contains(t, out, "1 step(s) completed and remain applied")
		assert.Contains(t, out, "✓ wrap "+hashA.Hex())
		assert.Contains(t, out, "flashops await "+hashB.Hex())
		assert.Contains(t, out, "rerun with --resume to continue run 0123456789ab")
	})

	t.Run("joined errors render one by one", func(t *testing.T) {
		var buf bytes.Buffer
		RenderError(&buf, errors.Join(
			&domain.OperationAbortedError{Operation: "flash-loan", FailingStep: "flash_loan", Cause: errors.New("a")},
			errors.New("second failure"),
		))

		out := buf.String()
		assert.Contains(t, out, "Flash Loan aborted at step 1 (flash_loan)")
		assert.Contains(t, out, "❌ Second failure")
		assert.NotContains(t, out, "rerun with --resume")
	})
}

func TestBalanceRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewBalanceRenderer(&buf).Render(&usecase.BalanceResult{
		Owner:    flashAddr,
		Token:    wethAddr,
		Symbol:   "WETH",
		Decimals: 18,
		Balance:  big.NewInt(250_000_000_000_000_000),
	}))
	assert.Equal(t, fmt.Sprintf("%s holds 0.25 WETH (%s)\n", flashAddr.Hex(), wethAddr.Hex()), buf.String())

	buf.Reset()
	require.NoError(t, NewBalanceRenderer(&buf).Render(&usecase.BalanceResult{
		Owner:    flashAddr,
		Native:   true,
		Symbol:   "ETH",
		Decimals: 18,
		Balance:  big.NewInt(1_000_000_000_000_000_000),
	}))
	assert.Equal(t, fmt.Sprintf("%s holds 1 ETH\n", flashAddr.Hex()), buf.String())
}

func TestAccountsRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewAccountsRenderer(&buf).Render(&usecase.ListAccountsResult{}))
	assert.Contains(t, buf.String(), "No senders configured")

	buf.Reset()
	require.NoError(t, NewAccountsRenderer(&buf).Render(&usecase.ListAccountsResult{
		Accounts: []domain.SenderInfo{
			{Name: "default", Type: "private_key", Address: flashAddr, Default: true, Balance: big.NewInt(2_000_000_000_000_000_000)},
			{Name: "cold", Type: "keystore", Address: wethAddr},
		},
	}))
	out := buf.String()
	assert.Contains(t, out, "BALANCE")
	assert.Contains(t, out, "default")
	assert.Contains(t, out, "keystore")
	assert.Contains(t, out, wethAddr.Hex())
	assert.Contains(t, out, "2")
}

func TestNetworksRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewNetworksRenderer(&buf).RenderNetworksList(&usecase.ListNetworksResult{}))
	assert.Contains(t, buf.String(), "No networks configured")

	buf.Reset()
	require.NoError(t, NewNetworksRenderer(&buf).RenderNetworksList(&usecase.ListNetworksResult{
		Current: "local",
		Networks: []usecase.NetworkStatus{
			{Name: "local", Network: &config.Network{Name: "local", ChainID: 31337, WrappedToken: wethAddr}},
			{Name: "sepolia", Network: &config.Network{Name: "sepolia", ChainID: 11155111}, Live: &usecase.ChainStatus{ChainID: 11155111, BlockNumber: 42}},
			{Name: "broken", Error: errors.New("network 'broken' has no rpc_url")},
		},
	}))
	out := buf.String()
	assert.Contains(t, out, "* ✅ local - Chain ID: 31337")
	assert.Contains(t, out, "wrapped token: "+wethAddr.Hex())
	assert.Contains(t, out, " ✅ sepolia - Chain ID: 11155111, block 42")
	assert.Contains(t, out, " ❌ broken - Error: network 'broken' has no rpc_url")
	assert.NotContains(t, out, "flash loan:")
}

func TestRunsRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunsRenderer(&buf)
	require.NoError(t, r.RenderList(nil))
	assert.Equal(t, "No runs recorded\n", buf.String())

	run := &domain.RunRecord{
		ID:        "0123456789abcdef0123",
		Operation: "fund-and-transfer",
		Network:   "sepolia",
		ChainID:   11155111,
		Sender:    flashAddr,
		Status:    domain.RunStatusFailed,
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
		Steps: []domain.StepRecord{
			{Name: "wrap", Contract: wethAddr, Method: "deposit", Status: domain.StepStatusConfirmed, TxHash: &hashA, BlockNumber: 5},
			{Name: "transfer", Contract: wethAddr, Method: "transfer", Status: domain.StepStatusFailed, Error: "execution reverted"},
		},
	}

	buf.Reset()
	require.NoError(t, r.RenderList([]*domain.RunRecord{run}))
	out := buf.String()
	assert.Contains(t, out, "0123456789ab")
	assert.Contains(t, out, "failed")
	assert.Contains(t, out, "1/2")

	buf.Reset()
	require.NoError(t, r.RenderRun(run))
	out = buf.String()
	assert.Contains(t, out, "Fund And Transfer run 0123456789abcdef0123")
	assert.Contains(t, out, "Network: sepolia (chain 11155111)")
	assert.Contains(t, out, "0xC02a…6Cc2.deposit")
	assert.Contains(t, out, hashA.Hex())
	assert.Contains(t, out, "step 2: execution reverted")
}

func TestPlanRenderer_DryRun(t *testing.T) {
	weth := contracts.NewWrappedToken(wethAddr)
	amount := big.NewInt(500_000_000_000_000_000)
	result := &usecase.RunPlanResult{
		Plan: &usecase.Plan{Name: "seed"},
		Operation: &usecase.Operation{
			Name:    "seed",
			Account: &domain.Account{Address: flashAddr},
			Steps: []*usecase.Step{
				{Name: "wrap", Contract: weth, Method: "deposit", Value: amount},
				{Name: "fund", Contract: weth, Method: "transfer", Args: []any{flashAddr, amount}},
			},
		},
	}

	views, err := StepViews(result.Operation)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "0xd0e30db0", views[0].Calldata)
	assert.Equal(t, "500000000000000000", views[0].Value)
	assert.Equal(t, []string{flashAddr.Hex(), "500000000000000000"}, views[1].Args)
	assert.Empty(t, views[1].Value)

	var buf bytes.Buffer
	require.NoError(t, NewPlanRenderer(&buf, true).RenderDryRun(result))
	out := buf.String()
	assert.Contains(t, out, "Plan seed (dry run)")
	assert.Contains(t, out, "WETH.deposit()")
	assert.Contains(t, out, "0.5")
	assert.Contains(t, out, "WETH.transfer("+flashAddr.Hex()+", 500000000000000000)")
	assert.Contains(t, out, "0xa9059cbb")
	assert.Contains(t, out, "dry run: nothing was sent")
}

func TestStepViews_Mismatch(t *testing.T) {
	op := &usecase.Operation{Steps: []*usecase.Step{
		{Name: "mint", Contract: contracts.NewWrappedToken(wethAddr), Method: "mint"},
	}}
	_, err := StepViews(op)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrAbiMismatch))
}
