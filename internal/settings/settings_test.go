package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultsWhenMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	got := store.Get()
	if got != DefaultSettings() {
		t.Fatalf("missing file: got %+v, want defaults", got)
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	want := TransactionSettings{
		ProvideSlippageBps:           100,
		RemoveSlippageBps:            25,
		SwapSlippageBps:              75,
		TransactionExpirationSeconds: 600,
	}
	if err := store.Set(want); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	got := store.Get()
	if got != want {
		t.Fatalf("round-trip mismatch: %+v != %+v", got, want)
	}
}

func TestSetRejectsOutOfRange(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	cases := []TransactionSettings{
		{ProvideSlippageBps: 0, RemoveSlippageBps: 50, SwapSlippageBps: 50, TransactionExpirationSeconds: 3600},
		{ProvideSlippageBps: 50, RemoveSlippageBps: 9999, SwapSlippageBps: 50, TransactionExpirationSeconds: 3600},
		{ProvideSlippageBps: 50, RemoveSlippageBps: 50, SwapSlippageBps: 50, TransactionExpirationSeconds: 5},
		{ProvideSlippageBps: 50, RemoveSlippageBps: 50, SwapSlippageBps: 50, TransactionExpirationSeconds: 1000000},
	}
	for _, tc := range cases {
		if err := store.Set(tc); err == nil {
			t.Fatalf("expected validation error for %+v", tc)
		}
	}
}

func TestGetFallsBackOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	store := NewStore(path)
	if got := store.Get(); got != DefaultSettings() {
		t.Fatalf("corrupt file: got %+v, want defaults", got)
	}
}
