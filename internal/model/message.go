package model

// Messages are the tagged results the orchestrator's reducer consumes. Every
// message carries the generation of the request snapshot that triggered it;
// the reducer drops messages whose generation no longer matches current state.

// AllowanceResult reports one slot's allowance reconciliation outcome.
type AllowanceResult struct {
	Slot       Slot
	Sufficient bool
	Generation uint64
}

// ApprovalResult reports the outcome of an approval signing call.
type ApprovalResult struct {
	Slot       Slot
	Success    bool
	ErrCode    string
	Generation uint64
}

// SubmissionResult reports the outcome of a liquidity submission call.
type SubmissionResult struct {
	Success    bool
	ErrCode    string
	Generation uint64
}
