package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"liquidityFlow/internal/journal"
	"liquidityFlow/internal/liquidity"
	"liquidityFlow/internal/model"
	"liquidityFlow/internal/numeric"
	"liquidityFlow/internal/sdk"
)

// lpTokenDecimals is the LP share precision used by the pair contracts.
const lpTokenDecimals = 18

// handle is the single transition function. It runs only on the Run
// goroutine; effects it launches report back through the inbox.
func (o *Orchestrator) handle(ctx context.Context, msg interface{}) {
	switch m := msg.(type) {
	case cmdSetAccount:
		o.applySetAccount(ctx, m)
	case cmdSelectToken:
		o.applySelectToken(m)
	case cmdSetAmount:
		o.applySetAmount(ctx, m)
	case cmdSelectPool:
		o.applySelectPool(m)
	case cmdCalculateRemoval:
		o.applyCalculateRemoval(ctx, m)
	case cmdApprove:
		o.applyApprove(ctx, m)
	case cmdConfirmSubmit:
		o.applyConfirmSubmit(ctx)
	case cmdReset:
		o.applyReset()
	case model.AllowanceResult:
		o.applyAllowanceResult(m)
	case model.ApprovalResult:
		o.applyApprovalResult(m)
	case model.SubmissionResult:
		o.applySubmissionResult(m)
	default:
		o.logger.Warn("unknown message", zap.Any("message", msg))
	}
}

func (o *Orchestrator) applySetAccount(ctx context.Context, m cmdSetAccount) {
	o.accountID = m.accountID
	o.bump()
	o.resetApprovals()
	o.clearNotice()
	o.recheck(ctx)
}

func (o *Orchestrator) applySelectToken(m cmdSelectToken) {
	if o.mode != ModeProvide {
		o.applyReset()
	}

	switch m.slot {
	case model.SlotTokenA:
		o.request.TokenA = m.token
	case model.SlotTokenB:
		o.request.TokenB = m.token
	default:
		return
	}

	o.request.TokenAAmount = ""
	o.request.TokenBAmount = ""
	o.matchPool()
	o.bump()
	o.resetApprovals()
	o.clearNotice()
	o.state = StateSelectingTokens
}

func (o *Orchestrator) applySetAmount(ctx context.Context, m cmdSetAmount) {
	if o.mode != ModeProvide {
		return
	}
	token := o.request.Token(m.slot)

	// Malformed input suppresses the derived amounts instead of erroring.
	if _, err := numeric.ParseUnits(m.value, token.Decimals); err != nil {
		o.request.TokenAAmount = ""
		o.request.TokenBAmount = ""
		o.bump()
		o.resetApprovals()
		o.state = StateSelectingTokens
		return
	}

	other := otherSlot(m.slot)
	o.setAmount(m.slot, m.value)

	if pool := o.request.MatchedPool; pool != nil {
		inputReserve, otherReserve, otherDecimals := o.orientReserves(*pool, token)
		derived, err := liquidity.CounterpartAmount(m.value, token.Decimals, inputReserve, otherReserve, otherDecimals)
		if err != nil {
			o.logger.Debug("counterpart derivation skipped", zap.Error(err))
		} else {
			o.setAmount(other, derived)
		}
	}

	o.state = StateComputingRatio
	o.bump()
	o.resetApprovals()
	o.clearNotice()
	o.recheck(ctx)
}

func (o *Orchestrator) applySelectPool(m cmdSelectPool) {
	pool := m.pool
	o.mode = ModeRemove
	o.request = model.LiquidityRequest{
		TokenA:         pool.Token0,
		TokenB:         pool.Token1,
		MatchedPool:    &pool,
		UseNativeAsset: m.receiveNative && o.poolHasWrappedNative(pool),
	}
	o.receiveNative = o.request.UseNativeAsset
	o.removal = sdk.RemovalRequest{}
	o.bump()
	o.resetApprovals()
	o.clearNotice()
	o.state = StateSelectingTokens
}

func (o *Orchestrator) applyCalculateRemoval(ctx context.Context, m cmdCalculateRemoval) {
	if o.mode != ModeRemove || o.request.MatchedPool == nil {
		return
	}
	pool := *o.request.MatchedPool

	lpRaw, err := numeric.ParseUnits(m.lpAmount, lpTokenDecimals)
	if err != nil {
		o.removal = sdk.RemovalRequest{}
		o.bump()
		o.resetApprovals()
		o.state = StateSelectingTokens
		return
	}

	share0, share1 := liquidity.ComputeShare(
		lpRaw.String(), pool.TotalSupply,
		pool.Token0Amount, pool.Token1Amount,
		pool.Token0.Decimals, pool.Token1.Decimals,
	)
	o.removal = sdk.RemovalRequest{
		PairAddress:    pool.PairAddress,
		Token0Address:  pool.Token0.Address,
		Token1Address:  pool.Token1.Address,
		LPAmount:       m.lpAmount,
		Token0Amount:   share0,
		Token1Amount:   share1,
		Token0Decimals: pool.Token0.Decimals,
		Token1Decimals: pool.Token1.Decimals,
	}

	o.state = StateAwaitingApproval
	o.bump()
	o.resetApprovals()
	o.clearNotice()
	// Only the LP token needs approval on a removal; it lives in slot A.
	o.approvals[model.SlotTokenB] = true

	lpToken := o.lpTokenDescriptor(pool)
	generation := o.generation
	go func() {
		sufficient := o.allowances.Check(ctx, o.accountID, lpToken, m.lpAmount)
		o.inbox <- model.AllowanceResult{Slot: model.SlotTokenA, Sufficient: sufficient, Generation: generation}
	}()
}

func (o *Orchestrator) applyApprove(ctx context.Context, m cmdApprove) {
	if o.state != StateAwaitingApproval || o.approvals[m.slot] {
		return
	}

	var token model.TokenDescriptor
	if o.mode == ModeRemove {
		if o.request.MatchedPool == nil {
			return
		}
		token = o.lpTokenDescriptor(*o.request.MatchedPool)
	} else {
		token = o.request.Token(m.slot)
	}
	if token.IsNative() {
		return
	}

	accountID := o.accountID
	amount := sdk.ApprovalAmount(token.Standard)
	generation := o.generation
	slot := m.slot
	go func() {
		result, err := o.signer.ApproveToken(ctx, accountID, amount, token.LedgerID)
		if err != nil {
			o.logger.Warn("approval call failed", zap.String("token", token.Symbol), zap.Error(err))
			o.inbox <- model.ApprovalResult{Slot: slot, Success: false, ErrCode: result.ErrCode, Generation: generation}
			return
		}
		o.inbox <- model.ApprovalResult{Slot: slot, Success: result.Success, ErrCode: result.ErrCode, Generation: generation}
	}()
}

func (o *Orchestrator) applyConfirmSubmit(ctx context.Context) {
	if o.state != StateReadyToSubmit && o.state != StateFailed {
		return
	}

	o.state = StateSubmitting
	o.clearNotice()

	cfg := o.settings.Get()
	deadline := cfg.TransactionExpirationSeconds
	accountID := o.accountID
	generation := o.generation
	mode := o.mode
	request := o.request
	removal := o.removal
	receiveNative := o.receiveNative

	go func() {
		var result sdk.Result
		var err error

		switch {
		case mode == ModeProvide && request.UseNativeAsset:
			result, err = o.signer.AddNativeLiquidity(ctx, accountID, request, cfg.ProvideSlippageBps, deadline)
		case mode == ModeProvide:
			result, err = o.signer.AddLiquidity(ctx, accountID, request, cfg.ProvideSlippageBps, deadline)
		case receiveNative:
			result, err = o.signer.RemoveNativeLiquidity(ctx, accountID, removal, cfg.RemoveSlippageBps, deadline)
		default:
			result, err = o.signer.RemoveLiquidity(ctx, accountID, removal, cfg.RemoveSlippageBps, deadline)
		}

		if err != nil {
			o.logger.Warn("submission call failed", zap.Error(err))
			o.inbox <- model.SubmissionResult{Success: false, ErrCode: result.ErrCode, Generation: generation}
			return
		}
		o.inbox <- model.SubmissionResult{Success: result.Success, ErrCode: result.ErrCode, Generation: generation}
	}()
}

func (o *Orchestrator) applyReset() {
	o.mode = ModeProvide
	o.request = model.LiquidityRequest{}
	o.removal = sdk.RemovalRequest{}
	o.receiveNative = false
	o.bump()
	o.resetApprovals()
	o.clearNotice()
	o.state = StateSelectingTokens
}

func (o *Orchestrator) applyAllowanceResult(m model.AllowanceResult) {
	if m.Generation != o.generation {
		o.logger.Debug("stale allowance result discarded",
			zap.Uint64("result_generation", m.Generation),
			zap.Uint64("current_generation", o.generation),
		)
		return
	}
	o.approvals[m.Slot] = m.Sufficient
	o.advance()
}

func (o *Orchestrator) applyApprovalResult(m model.ApprovalResult) {
	if m.Generation != o.generation {
		o.logger.Debug("stale approval result discarded",
			zap.Uint64("result_generation", m.Generation),
			zap.Uint64("current_generation", o.generation),
		)
		return
	}

	if !m.Success {
		o.notice = sdk.MessageFor(m.ErrCode)
		o.noticeIsError = true
		o.state = StateAwaitingApproval
		return
	}

	o.approvals[m.Slot] = true
	o.clearNotice()
	o.advance()
}

func (o *Orchestrator) applySubmissionResult(m model.SubmissionResult) {
	if m.Generation != o.generation {
		o.logger.Debug("abandoned submission result discarded",
			zap.Uint64("result_generation", m.Generation),
			zap.Uint64("current_generation", o.generation),
		)
		return
	}
	if o.state != StateSubmitting {
		return
	}

	o.record(m)

	if !m.Success {
		o.notice = sdk.MessageFor(m.ErrCode)
		o.noticeIsError = true
		o.state = StateFailed
		return
	}

	o.notice = o.successNotice()
	o.noticeIsError = false
	o.request = model.LiquidityRequest{}
	o.removal = sdk.RemovalRequest{}
	o.receiveNative = false
	o.mode = ModeProvide
	o.bump()
	o.resetApprovals()
	o.state = StateSucceeded
}

// Helpers below run only on the Run goroutine.

func (o *Orchestrator) bump() {
	o.generation++
}

func (o *Orchestrator) clearNotice() {
	o.notice = ""
	o.noticeIsError = false
}

func (o *Orchestrator) resetApprovals() {
	o.approvals = model.NewApprovalState()
	if o.mode == ModeProvide {
		if o.request.TokenA.IsNative() {
			o.approvals[model.SlotTokenA] = true
		}
		if o.request.TokenB.IsNative() {
			o.approvals[model.SlotTokenB] = true
		}
	}
}

func (o *Orchestrator) setAmount(slot model.Slot, value string) {
	if slot == model.SlotTokenA {
		o.request.TokenAAmount = value
	} else {
		o.request.TokenBAmount = value
	}
}

func otherSlot(slot model.Slot) model.Slot {
	if slot == model.SlotTokenA {
		return model.SlotTokenB
	}
	return model.SlotTokenA
}

// matchPool re-runs pool discovery for the current pair. Pure and
// synchronous; there is no reactive cascade to wait on.
func (o *Orchestrator) matchPool() {
	o.request.MatchedPool = nil
	o.request.UseNativeAsset = o.request.TokenA.IsNative() || o.request.TokenB.IsNative()

	if o.pools == nil {
		return
	}
	pool, ok := o.pools.Find(o.request.TokenA, o.request.TokenB, o.wrappedNative)
	if !ok {
		return
	}
	o.request.MatchedPool = &pool
}

// orientReserves returns (inputReserve, otherReserve, otherDecimals) with
// the pool sides lined up against the input token.
func (o *Orchestrator) orientReserves(pool model.PoolDescriptor, input model.TokenDescriptor) (string, string, int) {
	inputAddr := input.MatchAddress(o.wrappedNative)
	if inputAddr == model.NormalizeAddress(pool.Token0.Address) {
		return pool.Token0Amount, pool.Token1Amount, pool.Token1.Decimals
	}
	return pool.Token1Amount, pool.Token0Amount, pool.Token0.Decimals
}

func (o *Orchestrator) poolHasWrappedNative(pool model.PoolDescriptor) bool {
	wrapped := model.NormalizeAddress(o.wrappedNative)
	return pool.ContainsAddress(wrapped)
}

// lpTokenDescriptor models the pair contract's LP share token, which follows
// the ERC20 allowance model.
func (o *Orchestrator) lpTokenDescriptor(pool model.PoolDescriptor) model.TokenDescriptor {
	ledgerID, err := model.AddressToAccountID(pool.PairAddress)
	if err != nil {
		ledgerID = ""
	}
	return model.TokenDescriptor{
		LedgerID: ledgerID,
		Address:  pool.PairAddress,
		Symbol:   "LP",
		Decimals: lpTokenDecimals,
		Standard: model.StandardERC20,
	}
}

// recheck launches allowance reconciliation for both slots of a complete
// provision request. Results carry the generation captured here.
func (o *Orchestrator) recheck(ctx context.Context) {
	if o.mode != ModeProvide || !o.request.Complete() {
		return
	}

	o.state = StateAwaitingApproval
	accountID := o.accountID
	generation := o.generation

	for _, slot := range []model.Slot{model.SlotTokenA, model.SlotTokenB} {
		token := o.request.Token(slot)
		pending := o.request.Amount(slot)
		slot := slot
		go func() {
			sufficient := o.allowances.Check(ctx, accountID, token, pending)
			o.inbox <- model.AllowanceResult{Slot: slot, Sufficient: sufficient, Generation: generation}
		}()
	}
}

// advance promotes the state once every required slot reports sufficient.
func (o *Orchestrator) advance() {
	switch o.state {
	case StateComputingRatio, StateAwaitingApproval, StateReadyToSubmit:
	default:
		return
	}

	ready := o.approvals.AllApproved()
	if o.mode == ModeProvide {
		ready = ready && o.request.Complete()
	} else {
		ready = ready && o.removal.LPAmount != ""
	}

	if ready {
		o.state = StateReadyToSubmit
	} else {
		o.state = StateAwaitingApproval
	}
}

func (o *Orchestrator) successNotice() string {
	if o.mode == ModeRemove {
		return fmt.Sprintf("Removed %s LP shares for %s %s and %s %s",
			o.removal.LPAmount,
			o.removal.Token0Amount, o.request.TokenA.Symbol,
			o.removal.Token1Amount, o.request.TokenB.Symbol,
		)
	}
	return fmt.Sprintf("Provided exactly %s %s and %s %s",
		o.request.TokenAAmount, o.request.TokenA.Symbol,
		o.request.TokenBAmount, o.request.TokenB.Symbol,
	)
}

func (o *Orchestrator) record(m model.SubmissionResult) {
	if o.journal == nil {
		return
	}

	entry := journal.Entry{
		AccountID:    o.accountID,
		Operation:    string(o.mode),
		TokenASymbol: o.request.TokenA.Symbol,
		TokenBSymbol: o.request.TokenB.Symbol,
		Success:      m.Success,
		ErrCode:      m.ErrCode,
	}
	if o.request.MatchedPool != nil {
		entry.PairAddress = o.request.MatchedPool.PairAddress
	}
	if o.mode == ModeRemove {
		entry.LPAmount = o.removal.LPAmount
		entry.TokenAAmount = o.removal.Token0Amount
		entry.TokenBAmount = o.removal.Token1Amount
	} else {
		entry.TokenAAmount = o.request.TokenAAmount
		entry.TokenBAmount = o.request.TokenBAmount
	}

	if err := o.journal.Record(entry); err != nil {
		o.logger.Warn("journal write failed", zap.Error(err))
	}
}
