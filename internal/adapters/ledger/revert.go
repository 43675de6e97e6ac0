package ledger

import (
	"encoding/hex"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

const revertPrefix = "execution reverted"

// isRevert reports whether a node error describes an EVM revert
func isRevert(err error) bool {
	if err == nil {
		return false
	}
	if strings.Contains(strings.ToLower(err.Error()), revertPrefix) {
		return true
	}
	_, ok := revertData(err)
	return ok
}

// revertReason extracts a human readable reason from a node error, decoding
// Error(string) payloads and falling back to the custom error selector.
func revertReason(err error) string {
	if data, ok := revertData(err); ok {
		if reason, uerr := abi.UnpackRevert(data); uerr == nil {
			return reason
		}
		if len(data) >= 4 {
			return "custom error 0x" + hex.EncodeToString(data[:4])
		}
	}

	msg := err.Error()
	if i := strings.Index(strings.ToLower(msg), revertPrefix+": "); i >= 0 {
		return strings.TrimSpace(msg[i+len(revertPrefix)+2:])
	}
	return ""
}

func revertData(err error) ([]byte, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return nil, false
	}
	s, ok := de.ErrorData().(string)
	if !ok || s == "" {
		return nil, false
	}
	data, derr := hexutil.Decode(s)
	if derr != nil || len(data) == 0 {
		return nil, false
	}
	return data, true
}

// isNonceError reports node rejections that mean our nonce counter is stale
func isNonceError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "nonce too low") ||
		strings.Contains(msg, "nonce too high") ||
		strings.Contains(msg, "replacement transaction underpriced")
}

func isInsufficientFunds(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "insufficient funds")
}

// isAlreadyKnown reports a node answering that it already holds the
// transaction, which means an earlier send of it got through.
func isAlreadyKnown(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already known") || strings.Contains(msg, "known transaction")
}

// refusals are txpool validation messages shared by geth, anvil and hardhat
var refusals = []string{
	"nonce too low",
	"nonce too high",
	"insufficient funds",
	"underpriced",
	"intrinsic gas too low",
	"exceeds block gas limit",
	"fee cap less than block base fee",
	"max fee per gas less than block base fee",
	"tip higher than fee cap",
	"invalid sender",
	"txpool is full",
	"exceeds the configured cap",
	"oversized data",
	"transaction type not supported",
	"negative value",
}

// isNodeRefusal reports whether the node definitely answered and refused the
// transaction. Transport failures such as timeouts or dropped connections are
// not refusals: the node may have accepted the transaction.
func isNodeRefusal(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, r := range refusals {
		if strings.Contains(msg, r) {
			return true
		}
	}
	return false
}

// isIndexing reports a node that cannot answer lookups until its transaction index is built
func isIndexing(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "indexing is in progress")
}
