// Package liquidity implements the pool accounting math: pro-rata reserve
// shares for withdrawals and exact-ratio counterpart amounts for provisions.
package liquidity

import (
	"math/big"

	"liquidityFlow/internal/numeric"
)

// ComputeShare computes each token's proportional share of the pool reserves
// for a given LP amount: shareN = reserveN * lpAmount / totalSupply.
//
// All arithmetic is integer on raw smallest-unit values; division truncates
// toward zero, so a holder can never withdraw more than their pro-rata share
// through rounding. A zero (or unparseable) total supply means "no liquidity
// yet" and yields ("0", "0") rather than an error.
func ComputeShare(lpAmount, totalSupply, reserve0, reserve1 string, decimals0, decimals1 int) (string, string) {
	supply, err := numeric.ParseRaw(totalSupply)
	if err != nil || supply.Sign() <= 0 {
		return "0", "0"
	}
	lp, err := numeric.ParseRaw(lpAmount)
	if err != nil {
		return "0", "0"
	}
	r0, err := numeric.ParseRaw(reserve0)
	if err != nil {
		return "0", "0"
	}
	r1, err := numeric.ParseRaw(reserve1)
	if err != nil {
		return "0", "0"
	}

	share0 := new(big.Int).Mul(r0, lp)
	share0.Quo(share0, supply)
	share1 := new(big.Int).Mul(r1, lp)
	share1.Quo(share1, supply)

	return numeric.FormatUnits(share0, decimals0), numeric.FormatUnits(share1, decimals1)
}
