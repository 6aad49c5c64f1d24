package orchestrator

import (
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"liquidityFlow/internal/journal"
	"liquidityFlow/internal/model"
	"liquidityFlow/internal/sdk"
	"liquidityFlow/internal/settings"
)

const testWrappedNative = "0x0000000000000000000000000000000000008888"

var (
	testTokenUSD = model.TokenDescriptor{
		LedgerID: "0.0.1111",
		Address:  "0x0000000000000000000000000000000000001111",
		Symbol:   "USDX",
		Decimals: 6,
		Standard: model.StandardERC20,
	}
	testTokenALPHA = model.TokenDescriptor{
		LedgerID: "0.0.2222",
		Address:  "0x0000000000000000000000000000000000002222",
		Symbol:   "ALPHA",
		Decimals: 18,
		Standard: model.StandardLedgerNative,
	}
)

func testPool() model.PoolDescriptor {
	return model.PoolDescriptor{
		PairAddress:  "0x0000000000000000000000000000000000009999",
		Token0:       testTokenUSD,
		Token1:       testTokenALPHA,
		Token0Amount: "2000000000",
		Token1Amount: "1000000000000000000000",
		TotalSupply:  "1000000000000000000000",
	}
}

type staticPools struct {
	pool model.PoolDescriptor
	ok   bool
}

func (p staticPools) Find(_, _ model.TokenDescriptor, _ string) (model.PoolDescriptor, bool) {
	return p.pool, p.ok
}

type staticSettings struct{}

func (staticSettings) Get() settings.TransactionSettings { return settings.DefaultSettings() }

// checkerFunc adapts a function to AllowanceChecker for tests that do not
// need to control the timing of individual checks.
type checkerFunc func(ctx context.Context, accountID string, token model.TokenDescriptor, pending string) bool

func (f checkerFunc) Check(ctx context.Context, accountID string, token model.TokenDescriptor, pending string) bool {
	return f(ctx, accountID, token, pending)
}

// allowanceCall is one in-flight Check held open until the test replies.
type allowanceCall struct {
	token   model.TokenDescriptor
	pending string
	reply   chan bool
}

// blockingChecker parks every Check on a channel so tests decide when, and
// in which order, reconciliation results land.
type blockingChecker struct {
	calls chan allowanceCall
}

func newBlockingChecker() *blockingChecker {
	return &blockingChecker{calls: make(chan allowanceCall, 8)}
}

func (c *blockingChecker) Check(_ context.Context, _ string, token model.TokenDescriptor, pending string) bool {
	call := allowanceCall{token: token, pending: pending, reply: make(chan bool)}
	c.calls <- call
	return <-call.reply
}

func (c *blockingChecker) next(t *testing.T) allowanceCall {
	t.Helper()
	select {
	case call := <-c.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for allowance check")
		return allowanceCall{}
	}
}

type fakeSigner struct {
	mu            sync.Mutex
	approveResult sdk.Result
	submitResult  sdk.Result
	calls         []string
}

func (s *fakeSigner) recordCall(name string) {
	s.mu.Lock()
	s.calls = append(s.calls, name)
	s.mu.Unlock()
}

func (s *fakeSigner) callNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *fakeSigner) AddLiquidity(context.Context, string, model.LiquidityRequest, uint64, uint64) (sdk.Result, error) {
	s.recordCall("AddLiquidity")
	return s.submitResult, nil
}

func (s *fakeSigner) AddNativeLiquidity(context.Context, string, model.LiquidityRequest, uint64, uint64) (sdk.Result, error) {
	s.recordCall("AddNativeLiquidity")
	return s.submitResult, nil
}

func (s *fakeSigner) RemoveLiquidity(context.Context, string, sdk.RemovalRequest, uint64, uint64) (sdk.Result, error) {
	s.recordCall("RemoveLiquidity")
	return s.submitResult, nil
}

func (s *fakeSigner) RemoveNativeLiquidity(context.Context, string, sdk.RemovalRequest, uint64, uint64) (sdk.Result, error) {
	s.recordCall("RemoveNativeLiquidity")
	return s.submitResult, nil
}

func (s *fakeSigner) ApproveToken(context.Context, string, *big.Int, string) (sdk.Result, error) {
	s.recordCall("ApproveToken")
	return s.approveResult, nil
}

type memJournal struct {
	mu      sync.Mutex
	entries []journal.Entry
}

func (j *memJournal) Record(entry journal.Entry) error {
	j.mu.Lock()
	j.entries = append(j.entries, entry)
	j.mu.Unlock()
	return nil
}

func (j *memJournal) recorded() []journal.Entry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Entry(nil), j.entries...)
}

func startOrchestrator(t *testing.T, opts Options) *Orchestrator {
	t.Helper()
	o := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go o.Run(ctx)
	return o
}

func waitForView(t *testing.T, o *Orchestrator, cond func(View) bool) View {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		v := o.Snapshot()
		if cond(v) {
			return v
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for view condition; last view %+v", o.Snapshot())
	return View{}
}

func TestProvideFlowDerivesCounterpartAndReachesReady(t *testing.T) {
	signer := &fakeSigner{}
	o := startOrchestrator(t, Options{
		Signer: signer,
		Allowances: checkerFunc(func(context.Context, string, model.TokenDescriptor, string) bool {
			return true
		}),
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)
	o.SetAmount(model.SlotTokenB, "10")

	v := waitForView(t, o, func(v View) bool { return v.State == StateReadyToSubmit })
	if v.Request.TokenAAmount != "20" {
		t.Fatalf("derived counterpart = %q, want %q", v.Request.TokenAAmount, "20")
	}
	if v.Request.TokenBAmount != "10" {
		t.Fatalf("typed amount = %q, want %q", v.Request.TokenBAmount, "10")
	}
	if v.Request.MatchedPool == nil {
		t.Fatalf("expected a matched pool")
	}
}

func TestStaleAllowanceResultNeverGovernsApprovalState(t *testing.T) {
	checker := newBlockingChecker()
	o := startOrchestrator(t, Options{
		Signer:        &fakeSigner{},
		Allowances:    checker,
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)

	o.SetAmount(model.SlotTokenB, "10")
	staleA := checker.next(t)
	staleB := checker.next(t)

	// The amount changes before the first reconciliation resolves.
	o.SetAmount(model.SlotTokenB, "30")
	freshA := checker.next(t)
	freshB := checker.next(t)

	// The stale results arrive now, both claiming sufficiency. They must be
	// discarded: the approval state answers only to the latest amounts.
	staleA.reply <- true
	staleB.reply <- true

	time.Sleep(50 * time.Millisecond)
	v := o.Snapshot()
	if v.State != StateAwaitingApproval {
		t.Fatalf("state after stale results = %q, want %q", v.State, StateAwaitingApproval)
	}
	if v.Approvals[model.SlotTokenA] || v.Approvals[model.SlotTokenB] {
		t.Fatalf("stale results unlocked approvals: %+v", v.Approvals)
	}

	freshA.reply <- true
	freshB.reply <- true
	waitForView(t, o, func(v View) bool { return v.State == StateReadyToSubmit })
}

func TestApprovalFailureKeepsStateAndSurfacesMessage(t *testing.T) {
	checker := newBlockingChecker()
	signer := &fakeSigner{approveResult: sdk.Result{Success: false, ErrCode: "USER_REJECT"}}
	o := startOrchestrator(t, Options{
		Signer:        signer,
		Allowances:    checker,
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)
	o.SetAmount(model.SlotTokenB, "10")

	checker.next(t).reply <- false
	checker.next(t).reply <- false
	waitForView(t, o, func(v View) bool { return v.State == StateAwaitingApproval })

	o.Approve(model.SlotTokenA)
	v := waitForView(t, o, func(v View) bool { return v.Notice != "" })
	if v.State != StateAwaitingApproval {
		t.Fatalf("state after failed approval = %q, want %q", v.State, StateAwaitingApproval)
	}
	if !v.NoticeIsError {
		t.Fatalf("expected an error notice")
	}
	if want := sdk.MessageFor("USER_REJECT"); v.Notice != want {
		t.Fatalf("notice = %q, want %q", v.Notice, want)
	}
	if v.Approvals[model.SlotTokenA] {
		t.Fatalf("failed approval must not mark the slot approved")
	}
}

func TestApprovalSuccessUnlocksSubmission(t *testing.T) {
	checker := newBlockingChecker()
	signer := &fakeSigner{approveResult: sdk.Result{Success: true}}
	o := startOrchestrator(t, Options{
		Signer:        signer,
		Allowances:    checker,
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)
	o.SetAmount(model.SlotTokenB, "10")

	checker.next(t).reply <- false
	checker.next(t).reply <- true
	waitForView(t, o, func(v View) bool { return v.State == StateAwaitingApproval })

	o.Approve(model.SlotTokenA)
	o.Approve(model.SlotTokenB)

	waitForView(t, o, func(v View) bool { return v.State == StateReadyToSubmit })
}

func TestSubmitSuccessResetsRequestAndJournals(t *testing.T) {
	signer := &fakeSigner{submitResult: sdk.Result{Success: true}}
	jnl := &memJournal{}
	o := startOrchestrator(t, Options{
		Signer: signer,
		Allowances: checkerFunc(func(context.Context, string, model.TokenDescriptor, string) bool {
			return true
		}),
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		Journal:       jnl,
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)
	o.SetAmount(model.SlotTokenB, "10")
	waitForView(t, o, func(v View) bool { return v.State == StateReadyToSubmit })

	o.ConfirmSubmit()
	v := waitForView(t, o, func(v View) bool { return v.State == StateSucceeded })

	if v.Request.TokenAAmount != "" || v.Request.TokenBAmount != "" {
		t.Fatalf("request amounts not cleared after success: %+v", v.Request)
	}
	if v.NoticeIsError || v.Notice == "" {
		t.Fatalf("expected a success notice, got %+v", v)
	}

	calls := signer.callNames()
	if len(calls) != 1 || calls[0] != "AddLiquidity" {
		t.Fatalf("signer calls = %v, want [AddLiquidity]", calls)
	}

	entries := jnl.recorded()
	if len(entries) != 1 {
		t.Fatalf("journal entries = %d, want 1", len(entries))
	}
	if !entries[0].Success || entries[0].AccountID != "0.0.5005" {
		t.Fatalf("journal entry = %+v", entries[0])
	}
}

func TestSubmitFailurePreservesRequestForRetry(t *testing.T) {
	signer := &fakeSigner{submitResult: sdk.Result{Success: false, ErrCode: "EXPIRED"}}
	o := startOrchestrator(t, Options{
		Signer: signer,
		Allowances: checkerFunc(func(context.Context, string, model.TokenDescriptor, string) bool {
			return true
		}),
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)
	o.SetAmount(model.SlotTokenB, "10")
	waitForView(t, o, func(v View) bool { return v.State == StateReadyToSubmit })

	o.ConfirmSubmit()
	v := waitForView(t, o, func(v View) bool { return v.State == StateFailed })

	if v.Request.TokenBAmount != "10" {
		t.Fatalf("failed submission must preserve the request, got %+v", v.Request)
	}
	if want := sdk.MessageFor("EXPIRED"); v.Notice != want || !v.NoticeIsError {
		t.Fatalf("notice = %q (isError=%v), want %q", v.Notice, v.NoticeIsError, want)
	}

	// A failed operation stays retryable.
	o.ConfirmSubmit()
	deadline := time.Now().Add(2 * time.Second)
	for len(signer.callNames()) < 2 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if calls := signer.callNames(); len(calls) != 2 {
		t.Fatalf("signer calls = %v, want two submissions", calls)
	}
	waitForView(t, o, func(v View) bool { return v.State == StateFailed })
}

func TestRemovalFlowComputesSharesAndChecksLPAllowance(t *testing.T) {
	checker := newBlockingChecker()
	signer := &fakeSigner{submitResult: sdk.Result{Success: true}}
	o := startOrchestrator(t, Options{
		Signer:        signer,
		Allowances:    checker,
		Pools:         staticPools{},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectPool(testPool(), false)
	o.CalculateRemoval("1")

	call := checker.next(t)
	if call.pending != "1" {
		t.Fatalf("LP allowance checked for %q, want %q", call.pending, "1")
	}
	if call.token.Standard != model.StandardERC20 {
		t.Fatalf("LP token standard = %q, want %q", call.token.Standard, model.StandardERC20)
	}
	if call.token.Address != testPool().PairAddress {
		t.Fatalf("LP token address = %q, want the pair address", call.token.Address)
	}
	call.reply <- true

	v := waitForView(t, o, func(v View) bool { return v.State == StateReadyToSubmit })
	if v.Removal.Token0Amount != "2.0" {
		t.Fatalf("token0 share = %q, want %q", v.Removal.Token0Amount, "2.0")
	}
	if v.Removal.Token1Amount != "1.0" {
		t.Fatalf("token1 share = %q, want %q", v.Removal.Token1Amount, "1.0")
	}

	o.ConfirmSubmit()
	waitForView(t, o, func(v View) bool { return v.State == StateSucceeded })
	if calls := signer.callNames(); len(calls) != 1 || calls[0] != "RemoveLiquidity" {
		t.Fatalf("signer calls = %v, want [RemoveLiquidity]", calls)
	}
}

func TestMalformedAmountClearsBothSides(t *testing.T) {
	o := startOrchestrator(t, Options{
		Signer: &fakeSigner{},
		Allowances: checkerFunc(func(context.Context, string, model.TokenDescriptor, string) bool {
			return true
		}),
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectToken(model.SlotTokenA, testTokenUSD)
	o.SelectToken(model.SlotTokenB, testTokenALPHA)
	o.SetAmount(model.SlotTokenB, "10")
	waitForView(t, o, func(v View) bool { return v.Request.TokenAAmount == "20" })

	o.SetAmount(model.SlotTokenB, "10..5")
	v := waitForView(t, o, func(v View) bool { return v.Request.TokenBAmount == "" })
	if v.Request.TokenAAmount != "" {
		t.Fatalf("malformed input must clear the derived side too, got %q", v.Request.TokenAAmount)
	}
	if v.State != StateSelectingTokens {
		t.Fatalf("state = %q, want %q", v.State, StateSelectingTokens)
	}
}

func TestResetDiscardsInFlightOperation(t *testing.T) {
	o := startOrchestrator(t, Options{
		Signer: &fakeSigner{},
		Allowances: checkerFunc(func(context.Context, string, model.TokenDescriptor, string) bool {
			return true
		}),
		Pools:         staticPools{pool: testPool(), ok: true},
		Settings:      staticSettings{},
		WrappedNative: testWrappedNative,
	})

	o.SetAccount("0.0.5005")
	o.SelectPool(testPool(), false)
	o.CalculateRemoval("1")
	waitForView(t, o, func(v View) bool { return v.Removal.LPAmount == "1" })

	o.Reset()
	v := waitForView(t, o, func(v View) bool { return v.State == StateSelectingTokens && v.Removal.LPAmount == "" })
	if v.Mode != ModeProvide {
		t.Fatalf("mode after reset = %q, want %q", v.Mode, ModeProvide)
	}
}
