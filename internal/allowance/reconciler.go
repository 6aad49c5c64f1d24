// Package allowance decides whether a previously granted spending allowance
// covers a pending operation. Two variants exist: ERC20 contract allowances
// read via eth_call, and ledger-native token allowances read from the mirror
// node. Every query failure fails closed.
package allowance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"liquidityFlow/internal/model"
	"liquidityFlow/internal/numeric"
)

// LedgerAllowanceSource reads ledger-native token allowances (mirror node).
type LedgerAllowanceSource interface {
	TokenAllowance(ctx context.Context, ownerID, spenderID, tokenID string) (*big.Int, error)
}

// Reconciler checks per-token allowance sufficiency against the router
// contract. It holds no state between checks: callers re-check whenever the
// account, pair, or pending amount changes.
type Reconciler struct {
	caller          ContractCaller
	ledger          LedgerAllowanceSource
	routerAddress   common.Address
	routerAccountID string
	logger          *zap.Logger
}

func NewReconciler(caller ContractCaller, ledger LedgerAllowanceSource, routerAddress common.Address, routerAccountID string, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		caller:          caller,
		ledger:          ledger,
		routerAddress:   routerAddress,
		routerAccountID: routerAccountID,
		logger:          logger,
	}
}

// Check reports whether the connected account's allowance to the router
// covers pendingAmount (human units) for the given token. The native asset
// is always pre-approved. Any query or parse failure returns false; a
// reverting operation is worse than an extra approval prompt.
func (r *Reconciler) Check(ctx context.Context, accountID string, token model.TokenDescriptor, pendingAmount string) bool {
	if token.IsNative() {
		return true
	}
	if accountID == "" {
		return false
	}

	pending, err := numeric.ParseUnits(pendingAmount, token.Decimals)
	if err != nil {
		r.logger.Debug("unparseable pending amount",
			zap.String("token", token.Symbol),
			zap.String("amount", pendingAmount),
		)
		return false
	}
	if pending.Sign() == 0 {
		return true
	}

	var granted *big.Int
	switch token.Standard {
	case model.StandardERC20:
		granted, err = r.checkERC20(ctx, accountID, token)
	case model.StandardLedgerNative:
		granted, err = r.checkLedgerNative(ctx, accountID, token)
	default:
		return false
	}
	if err != nil {
		r.logger.Warn("allowance query failed",
			zap.String("account", accountID),
			zap.String("token", token.Symbol),
			zap.Error(err),
		)
		return false
	}

	return granted.Cmp(pending) >= 0
}

func (r *Reconciler) checkERC20(ctx context.Context, accountID string, token model.TokenDescriptor) (*big.Int, error) {
	owner, err := model.AccountIDToAddress(accountID)
	if err != nil {
		return nil, err
	}
	return erc20Allowance(ctx, r.caller, common.HexToAddress(token.Address), owner, r.routerAddress)
}

func (r *Reconciler) checkLedgerNative(ctx context.Context, accountID string, token model.TokenDescriptor) (*big.Int, error) {
	return r.ledger.TokenAllowance(ctx, accountID, r.routerAccountID, token.LedgerID)
}
