package model

// Slot names one side of a liquidity request.
type Slot string

const (
	SlotTokenA Slot = "tokenA"
	SlotTokenB Slot = "tokenB"
)

// LiquidityRequest is the orchestrator's working state for one add/remove
// interaction. Amounts are human-unit decimal strings as typed by the user or
// derived from the matched pool's ratio. Only the orchestrator mutates it.
type LiquidityRequest struct {
	TokenA         TokenDescriptor
	TokenB         TokenDescriptor
	TokenAAmount   string
	TokenBAmount   string
	MatchedPool    *PoolDescriptor
	UseNativeAsset bool
}

// Token returns the descriptor occupying a slot.
func (r LiquidityRequest) Token(slot Slot) TokenDescriptor {
	if slot == SlotTokenA {
		return r.TokenA
	}
	return r.TokenB
}

// Amount returns the pending amount for a slot.
func (r LiquidityRequest) Amount(slot Slot) string {
	if slot == SlotTokenA {
		return r.TokenAAmount
	}
	return r.TokenBAmount
}

// Complete reports whether both tokens are selected and both amounts set.
func (r LiquidityRequest) Complete() bool {
	tokenASelected := r.TokenA.Address != "" || r.TokenA.IsNative()
	tokenBSelected := r.TokenB.Address != "" || r.TokenB.IsNative()
	return tokenASelected && tokenBSelected && r.TokenAAmount != "" && r.TokenBAmount != ""
}

// ApprovalState maps each slot to "sufficient allowance granted". It is
// recomputed wholesale whenever the request or connected account changes,
// never patched incrementally.
type ApprovalState map[Slot]bool

// NewApprovalState returns a state with both slots unapproved.
func NewApprovalState() ApprovalState {
	return ApprovalState{SlotTokenA: false, SlotTokenB: false}
}

// AllApproved reports whether every slot is sufficient.
func (a ApprovalState) AllApproved() bool {
	return a[SlotTokenA] && a[SlotTokenB]
}
