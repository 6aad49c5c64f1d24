package pools

import (
	"testing"

	"liquidityFlow/internal/model"
)

const wrappedNative = "0x0000000000000000000000000000000000008888"

func token(address string) model.TokenDescriptor {
	return model.TokenDescriptor{Address: address, Standard: model.StandardERC20, Decimals: 18}
}

func nativeToken() model.TokenDescriptor {
	return model.TokenDescriptor{Symbol: "HBAR", Standard: model.StandardNative, Decimals: 8}
}

func testPools() []model.PoolDescriptor {
	return []model.PoolDescriptor{
		{
			PairAddress:  "0x000000000000000000000000000000000000aaaa",
			Token0:       token("0x0000000000000000000000000000000000000001"),
			Token1:       token("0x0000000000000000000000000000000000000002"),
			Token0Amount: "1000",
			Token1Amount: "2000",
			TotalSupply:  "500",
		},
		{
			PairAddress:  "0x000000000000000000000000000000000000bbbb",
			Token0:       token(wrappedNative),
			Token1:       token("0x0000000000000000000000000000000000000003"),
			Token0Amount: "7000",
			Token1Amount: "9000",
			TotalSupply:  "800",
		},
	}
}

func TestFindPoolMatchesPair(t *testing.T) {
	pool, ok := FindPool(
		token("0x0000000000000000000000000000000000000001"),
		token("0x0000000000000000000000000000000000000002"),
		wrappedNative,
		testPools(),
	)
	if !ok {
		t.Fatalf("expected a match")
	}
	if pool.PairAddress != "0x000000000000000000000000000000000000aaaa" {
		t.Fatalf("matched wrong pool: %s", pool.PairAddress)
	}
}

func TestFindPoolSymmetric(t *testing.T) {
	a := token("0x0000000000000000000000000000000000000001")
	b := token("0x0000000000000000000000000000000000000002")

	forward, okForward := FindPool(a, b, wrappedNative, testPools())
	reverse, okReverse := FindPool(b, a, wrappedNative, testPools())

	if okForward != okReverse {
		t.Fatalf("asymmetric match: %v != %v", okForward, okReverse)
	}
	if forward.PairAddress != reverse.PairAddress {
		t.Fatalf("asymmetric pool: %s != %s", forward.PairAddress, reverse.PairAddress)
	}
}

func TestFindPoolNativeSubstitution(t *testing.T) {
	pool, ok := FindPool(
		nativeToken(),
		token("0x0000000000000000000000000000000000000003"),
		wrappedNative,
		testPools(),
	)
	if !ok {
		t.Fatalf("expected native request to match the wrapped-native pool")
	}
	if pool.PairAddress != "0x000000000000000000000000000000000000bbbb" {
		t.Fatalf("matched wrong pool: %s", pool.PairAddress)
	}
}

func TestFindPoolAbsentIsNotAnError(t *testing.T) {
	_, ok := FindPool(
		token("0x0000000000000000000000000000000000000001"),
		token("0x0000000000000000000000000000000000000003"),
		wrappedNative,
		testPools(),
	)
	if ok {
		t.Fatalf("expected no match for an unpooled pair")
	}
}

func TestFindPoolCaseInsensitive(t *testing.T) {
	_, ok := FindPool(
		token("0x0000000000000000000000000000000000000001"),
		token("0x0000000000000000000000000000000000000002"),
		wrappedNative,
		[]model.PoolDescriptor{{
			PairAddress: "0xCCCC",
			Token0:      token("0x0000000000000000000000000000000000000001"),
			Token1:      token("0x0000000000000000000000000000000000000002"),
		}},
	)
	if !ok {
		t.Fatalf("expected case-insensitive address match")
	}
}

func TestFindPoolSameTokenTwice(t *testing.T) {
	a := token("0x0000000000000000000000000000000000000001")
	if _, ok := FindPool(a, a, wrappedNative, testPools()); ok {
		t.Fatalf("expected no match for identical tokens")
	}
}

func TestRegistryTieBreakDeterministic(t *testing.T) {
	duplicate := []model.PoolDescriptor{
		{
			PairAddress: "0x000000000000000000000000000000000000ffff",
			Token0:      token("0x0000000000000000000000000000000000000001"),
			Token1:      token("0x0000000000000000000000000000000000000002"),
		},
		{
			PairAddress: "0x000000000000000000000000000000000000aaaa",
			Token0:      token("0x0000000000000000000000000000000000000002"),
			Token1:      token("0x0000000000000000000000000000000000000001"),
		},
	}

	registry := NewRegistry()
	registry.Replace(duplicate)

	pool, ok := registry.Find(
		token("0x0000000000000000000000000000000000000001"),
		token("0x0000000000000000000000000000000000000002"),
		wrappedNative,
	)
	if !ok {
		t.Fatalf("expected a match")
	}
	if pool.PairAddress != "0x000000000000000000000000000000000000aaaa" {
		t.Fatalf("tie-break picked %s, want lowest pair address", pool.PairAddress)
	}

	// Re-inserting in a different order must not change the winner.
	registry.Replace([]model.PoolDescriptor{duplicate[1], duplicate[0]})
	again, _ := registry.Find(
		token("0x0000000000000000000000000000000000000001"),
		token("0x0000000000000000000000000000000000000002"),
		wrappedNative,
	)
	if again.PairAddress != pool.PairAddress {
		t.Fatalf("tie-break not deterministic: %s != %s", again.PairAddress, pool.PairAddress)
	}
}

func TestRegistrySnapshotIsolated(t *testing.T) {
	registry := NewRegistry()
	registry.Replace(testPools())

	snapshot := registry.Snapshot()
	snapshot[0].Token0Amount = "tampered"

	fresh := registry.Snapshot()
	if fresh[0].Token0Amount == "tampered" {
		t.Fatalf("snapshot mutation leaked into registry")
	}
}
