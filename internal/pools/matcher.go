// Package pools holds the known-pool snapshot registry and the pair matcher.
package pools

import (
	"liquidityFlow/internal/model"
)

// FindPool returns the pool backing the requested token pair, if one exists.
//
// Native-asset requests are normalized first: the native token is substituted
// by the canonical wrapped-native address before comparison. A pool matches
// when its unordered {token0, token1} address set equals the normalized
// {tokenA, tokenB} set. The first match in collection order wins; callers
// that need a deterministic tie-break should pass a sorted slice (the
// Registry snapshot is sorted by pair address).
//
// A false return is not an error: it means "no pool yet, must create one".
func FindPool(tokenA, tokenB model.TokenDescriptor, wrappedNative string, pools []model.PoolDescriptor) (model.PoolDescriptor, bool) {
	wantA := tokenA.MatchAddress(wrappedNative)
	wantB := tokenB.MatchAddress(wrappedNative)
	if wantA == "" || wantB == "" || wantA == wantB {
		return model.PoolDescriptor{}, false
	}

	for _, pool := range pools {
		p0 := model.NormalizeAddress(pool.Token0.Address)
		p1 := model.NormalizeAddress(pool.Token1.Address)
		if (p0 == wantA && p1 == wantB) || (p0 == wantB && p1 == wantA) {
			return pool, true
		}
	}
	return model.PoolDescriptor{}, false
}
