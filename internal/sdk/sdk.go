// Package sdk defines the boundary to the external transaction-signing SDK.
// The engine consumes these contracts; transaction construction, wallet
// pairing, and wire encoding all live on the other side.
package sdk

import (
	"context"
	"math/big"

	"liquidityFlow/internal/model"
)

// Result is the uniform outcome of a signing call. ErrCode carries the
// SDK's error key when Success is false; MessageFor maps it to a
// user-facing message.
type Result struct {
	Success bool
	ErrCode string
	Receipt []byte
}

// RemovalRequest carries the computed amounts for a liquidity withdrawal.
// Amounts are human-unit decimal strings produced by the ratio calculator.
type RemovalRequest struct {
	PairAddress    string
	Token0Address  string
	Token1Address  string
	LPAmount       string
	Token0Amount   string
	Token1Amount   string
	Token0Decimals int
	Token1Decimals int
}

// Signer is the transaction-signing collaborator.
type Signer interface {
	AddLiquidity(ctx context.Context, accountID string, req model.LiquidityRequest, slippageBps, deadlineSeconds uint64) (Result, error)
	AddNativeLiquidity(ctx context.Context, accountID string, req model.LiquidityRequest, slippageBps, deadlineSeconds uint64) (Result, error)
	RemoveLiquidity(ctx context.Context, accountID string, req RemovalRequest, slippageBps, deadlineSeconds uint64) (Result, error)
	RemoveNativeLiquidity(ctx context.Context, accountID string, req RemovalRequest, slippageBps, deadlineSeconds uint64) (Result, error)
	ApproveToken(ctx context.Context, accountID string, amount *big.Int, tokenLedgerID string) (Result, error)
}

var (
	// maxUintERC20 is 2^256-1, the conventional unlimited ERC20 approval.
	maxUintERC20 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	// maxUintLedger is 2^63-1; ledger-native token supplies are int64.
	maxUintLedger = new(big.Int).SetUint64(1<<63 - 1)
)

// ApprovalAmount returns the allowance requested when approving a token:
// effectively-unlimited, sized to the token standard's supply model.
func ApprovalAmount(standard model.TokenStandard) *big.Int {
	if standard == model.StandardLedgerNative {
		return new(big.Int).Set(maxUintLedger)
	}
	return new(big.Int).Set(maxUintERC20)
}
