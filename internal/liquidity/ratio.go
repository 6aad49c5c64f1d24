package liquidity

import (
	"fmt"
	"math/big"

	"liquidityFlow/internal/numeric"
)

// CounterpartAmount derives the paired amount for a provision against an
// existing pool by exact-ratio cross-multiplication:
//
//	otherAmount = inputAmount_raw * otherReserve / inputReserve
//
// in full-precision integer math, so the two displayed amounts can never
// drift apart through repeated float rounding. The result is a human-unit
// decimal string with trailing fractional zeros trimmed.
func CounterpartAmount(inputAmount string, inputDecimals int, inputReserve, otherReserve string, otherDecimals int) (string, error) {
	amount, err := numeric.ParseUnits(inputAmount, inputDecimals)
	if err != nil {
		return "", err
	}
	in, err := numeric.ParseRaw(inputReserve)
	if err != nil {
		return "", err
	}
	out, err := numeric.ParseRaw(otherReserve)
	if err != nil {
		return "", err
	}
	if in.Sign() == 0 {
		return "", fmt.Errorf("input reserve is zero")
	}

	derived := new(big.Int).Mul(amount, out)
	derived.Quo(derived, in)

	return numeric.FormatUnitsTrimmed(derived, otherDecimals), nil
}

// PoolSharePercent estimates the share of the pool a provision would own:
// amount / (reserve + amount) * 100, rendered with four decimal places.
// An empty pool means the provider owns all of it.
func PoolSharePercent(inputAmount string, inputDecimals int, inputReserve string) (string, error) {
	amount, err := numeric.ParseUnits(inputAmount, inputDecimals)
	if err != nil {
		return "", err
	}
	reserve, err := numeric.ParseRaw(inputReserve)
	if err != nil || reserve.Sign() == 0 {
		return "100.0000", nil
	}

	total := new(big.Int).Add(reserve, amount)
	share := new(big.Rat).SetFrac(amount, total)
	share.Mul(share, big.NewRat(100, 1))
	return share.FloatString(4), nil
}
