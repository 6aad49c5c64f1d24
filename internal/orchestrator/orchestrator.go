// Package orchestrator drives the liquidity operation state machine:
// select tokens, derive the paired amount, approve what needs approving,
// submit, reconcile the result.
//
// One goroutine (Run) owns all mutable state. Commands from the UI and
// results from asynchronous effects arrive on a single inbox channel and are
// applied by a reducer-style transition function. Every asynchronous effect
// captures the request generation at launch; a result whose generation no
// longer matches is dropped, so a stale allowance check can never unlock
// submission for a request it was not computed against.
package orchestrator

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"liquidityFlow/internal/journal"
	"liquidityFlow/internal/model"
	"liquidityFlow/internal/sdk"
	"liquidityFlow/internal/settings"
)

// State names the phases of a liquidity operation.
type State string

const (
	StateSelectingTokens  State = "selecting_tokens"
	StateComputingRatio   State = "computing_ratio"
	StateAwaitingApproval State = "awaiting_approval"
	StateReadyToSubmit    State = "ready_to_submit"
	StateSubmitting       State = "submitting"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// Mode distinguishes provision from withdrawal.
type Mode string

const (
	ModeProvide Mode = "provide"
	ModeRemove  Mode = "remove"
)

// PoolSource matches a token pair against the current pool snapshot.
type PoolSource interface {
	Find(tokenA, tokenB model.TokenDescriptor, wrappedNative string) (model.PoolDescriptor, bool)
}

// AllowanceChecker reports whether the account's allowance covers a pending
// amount. Implementations fail closed.
type AllowanceChecker interface {
	Check(ctx context.Context, accountID string, token model.TokenDescriptor, pendingAmount string) bool
}

// SettingsSource supplies the slippage and deadline configuration at
// submission time.
type SettingsSource interface {
	Get() settings.TransactionSettings
}

// Journal records submitted operations. Optional.
type Journal interface {
	Record(entry journal.Entry) error
}

// Options wires the orchestrator's collaborators. There is no ambient
// application state: everything the engine touches comes in here.
type Options struct {
	Signer        sdk.Signer
	Allowances    AllowanceChecker
	Pools         PoolSource
	Settings      SettingsSource
	Journal       Journal
	WrappedNative string
	Logger        *zap.Logger
	// InboxSize bounds queued commands and results. Zero means a default.
	InboxSize int
}

// View is a read-only snapshot of orchestrator state for rendering.
type View struct {
	State         State
	Mode          Mode
	AccountID     string
	Request       model.LiquidityRequest
	Approvals     model.ApprovalState
	Removal       sdk.RemovalRequest
	ReceiveNative bool
	Notice        string
	NoticeIsError bool
	Generation    uint64
}

// Orchestrator owns one in-flight liquidity operation.
type Orchestrator struct {
	signer        sdk.Signer
	allowances    AllowanceChecker
	pools         PoolSource
	settings      SettingsSource
	journal       Journal
	wrappedNative string
	logger        *zap.Logger

	inbox chan interface{}

	// Owned by the Run goroutine.
	state         State
	mode          Mode
	accountID     string
	request       model.LiquidityRequest
	approvals     model.ApprovalState
	removal       sdk.RemovalRequest
	receiveNative bool
	notice        string
	noticeIsError bool
	generation    uint64

	viewMu sync.RWMutex
	view   View
}

const defaultInboxSize = 64

// New builds an orchestrator in the SelectingTokens state.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	size := opts.InboxSize
	if size <= 0 {
		size = defaultInboxSize
	}

	o := &Orchestrator{
		signer:        opts.Signer,
		allowances:    opts.Allowances,
		pools:         opts.Pools,
		settings:      opts.Settings,
		journal:       opts.Journal,
		wrappedNative: opts.WrappedNative,
		logger:        logger,
		inbox:         make(chan interface{}, size),
		state:         StateSelectingTokens,
		mode:          ModeProvide,
		approvals:     model.NewApprovalState(),
	}
	o.publish()
	return o
}

// Run processes commands and effect results until the context ends. All
// state transitions happen here; callers interact only through the command
// methods and Snapshot.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-o.inbox:
			o.handle(ctx, msg)
			o.publish()
		}
	}
}

// Snapshot returns the latest published view.
func (o *Orchestrator) Snapshot() View {
	o.viewMu.RLock()
	defer o.viewMu.RUnlock()
	return o.view
}

func (o *Orchestrator) publish() {
	approvals := model.ApprovalState{}
	for slot, ok := range o.approvals {
		approvals[slot] = ok
	}

	o.viewMu.Lock()
	o.view = View{
		State:         o.state,
		Mode:          o.mode,
		AccountID:     o.accountID,
		Request:       o.request,
		Approvals:     approvals,
		Removal:       o.removal,
		ReceiveNative: o.receiveNative,
		Notice:        o.notice,
		NoticeIsError: o.noticeIsError,
		Generation:    o.generation,
	}
	o.viewMu.Unlock()
}

// Commands. Each enqueues a message for the Run loop.

type cmdSetAccount struct{ accountID string }

type cmdSelectToken struct {
	slot  model.Slot
	token model.TokenDescriptor
}

type cmdSetAmount struct {
	slot  model.Slot
	value string
}

type cmdSelectPool struct {
	pool          model.PoolDescriptor
	receiveNative bool
}

type cmdCalculateRemoval struct{ lpAmount string }

type cmdApprove struct{ slot model.Slot }

type cmdConfirmSubmit struct{}

type cmdReset struct{}

// SetAccount switches the connected account.
func (o *Orchestrator) SetAccount(accountID string) { o.inbox <- cmdSetAccount{accountID} }

// SelectToken places a token in a slot for a provision.
func (o *Orchestrator) SelectToken(slot model.Slot, token model.TokenDescriptor) {
	o.inbox <- cmdSelectToken{slot, token}
}

// SetAmount updates one side's amount; the counterpart is derived when a
// pool is matched.
func (o *Orchestrator) SetAmount(slot model.Slot, value string) {
	o.inbox <- cmdSetAmount{slot, value}
}

// SelectPool starts a removal against an existing pool.
func (o *Orchestrator) SelectPool(pool model.PoolDescriptor, receiveNative bool) {
	o.inbox <- cmdSelectPool{pool, receiveNative}
}

// CalculateRemoval computes the pro-rata shares for an LP amount. Pure; may
// be re-invoked freely.
func (o *Orchestrator) CalculateRemoval(lpAmount string) { o.inbox <- cmdCalculateRemoval{lpAmount} }

// Approve submits an approval for the token in the slot.
func (o *Orchestrator) Approve(slot model.Slot) { o.inbox <- cmdApprove{slot} }

// ConfirmSubmit submits the prepared operation.
func (o *Orchestrator) ConfirmSubmit() { o.inbox <- cmdConfirmSubmit{} }

// Reset discards the in-flight request.
func (o *Orchestrator) Reset() { o.inbox <- cmdReset{} }
