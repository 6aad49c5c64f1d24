// Package numeric converts between human-unit decimal strings and raw
// smallest-unit integers. All arithmetic is arbitrary precision; nothing here
// touches floating point.
package numeric

import (
	"fmt"
	"math/big"
	"strings"
)

// ParseUnits converts a human-unit decimal string ("12.5") into a raw
// smallest-unit integer (12500000 at 6 decimals). Fractional digits beyond
// the token's precision are truncated, matching the input stripping the
// amount fields apply. Negative and malformed inputs are rejected.
func ParseUnits(value string, decimals int) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if decimals < 0 {
		return nil, fmt.Errorf("negative decimals %d", decimals)
	}

	whole := value
	frac := ""
	if idx := strings.IndexByte(value, '.'); idx >= 0 {
		whole = value[:idx]
		frac = value[idx+1:]
		if strings.IndexByte(frac, '.') >= 0 {
			return nil, fmt.Errorf("malformed amount %q", value)
		}
	}
	if whole == "" {
		whole = "0"
	}
	if !isDigits(whole) || (frac != "" && !isDigits(frac)) {
		return nil, fmt.Errorf("malformed amount %q", value)
	}

	if len(frac) > decimals {
		frac = frac[:decimals]
	}
	frac += strings.Repeat("0", decimals-len(frac))

	raw, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount %q", value)
	}
	return raw, nil
}

// ParseRaw parses a raw smallest-unit decimal string into a big integer.
// Used for reserve amounts and supplies coming off the indexer.
func ParseRaw(value string) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" || !isDigits(value) {
		return nil, fmt.Errorf("malformed raw amount %q", value)
	}
	raw, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("malformed raw amount %q", value)
	}
	return raw, nil
}

// FormatUnits renders a raw value in human units, keeping at least one
// fractional digit ("100.0") and trimming the rest of the trailing zeros.
func FormatUnits(raw *big.Int, decimals int) string {
	whole, frac := splitUnits(raw, decimals)
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		frac = "0"
	}
	return whole + "." + frac
}

// FormatUnitsTrimmed renders a raw value in human units with no trailing
// fractional zeros at all: whole values come out as bare integers ("20").
func FormatUnitsTrimmed(raw *big.Int, decimals int) string {
	whole, frac := splitUnits(raw, decimals)
	frac = strings.TrimRight(frac, "0")
	if frac == "" {
		return whole
	}
	return whole + "." + frac
}

func splitUnits(raw *big.Int, decimals int) (string, string) {
	if raw == nil {
		return "0", ""
	}
	if decimals <= 0 {
		return raw.String(), ""
	}

	scale := pow10(decimals)
	quo, rem := new(big.Int).QuoRem(raw, scale, new(big.Int))
	frac := rem.String()
	if pad := decimals - len(frac); pad > 0 {
		frac = strings.Repeat("0", pad) + frac
	}
	return quo.String(), frac
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
