package sdk

// Error codes reported by the signing SDK, mapped to user-facing messages.
// Unrecognized codes fall back to a generic message; the raw code is still
// logged by the orchestrator.
var errorMessages = map[string]string{
	"USER_REJECT":             "The transaction was rejected in the wallet.",
	"INSUFFICIENT_A_AMOUNT":   "The price moved and the first token amount fell below your slippage tolerance.",
	"INSUFFICIENT_B_AMOUNT":   "The price moved and the second token amount fell below your slippage tolerance.",
	"INSUFFICIENT_LIQUIDITY":  "The pool does not hold enough liquidity for this operation.",
	"EXPIRED":                 "The transaction deadline passed before execution. Try again.",
	"INSUFFICIENT_ALLOWANCE":  "The router is not approved to spend this amount. Approve the token and retry.",
	"INSUFFICIENT_BALANCE":    "Your balance does not cover the requested amount.",
	"TOKEN_NOT_ASSOCIATED":    "Your account is not associated with this token.",
	"PAIR_EXISTS":             "A pool for this token pair already exists.",
	"TRANSACTION_OVERSIZE":    "The transaction exceeded the network size limit.",
	"NETWORK_TIMEOUT":         "The network did not confirm the transaction in time.",
	"INVALID_SIGNATURE":       "The wallet returned an invalid signature.",
	"PAYER_ACCOUNT_NOT_FOUND": "The paying account could not be found on the ledger.",
}

// GenericErrorMessage is surfaced when the SDK reports an unknown code or
// the call fails without one.
const GenericErrorMessage = "Something went wrong. Please try again."

// MessageFor maps an SDK error code to a human-readable message.
func MessageFor(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return GenericErrorMessage
}
