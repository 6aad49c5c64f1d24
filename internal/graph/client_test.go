package graph

import (
	"testing"

	graphql "github.com/hasura/go-graphql-client"

	"liquidityFlow/internal/model"
)

func TestToStandard(t *testing.T) {
	cases := []struct {
		indexerType string
		want        model.TokenStandard
	}{
		{"HBAR", model.StandardNative},
		{"NATIVE", model.StandardNative},
		{"HTS", model.StandardLedgerNative},
		{"LEDGER_NATIVE_TOKEN", model.StandardLedgerNative},
		{"ERC20", model.StandardERC20},
		{"", model.StandardERC20},
	}
	for _, tc := range cases {
		if got := toStandard(tc.indexerType); got != tc.want {
			t.Fatalf("toStandard(%q) = %q, want %q", tc.indexerType, got, tc.want)
		}
	}
}

func TestToPoolDescriptor(t *testing.T) {
	row := poolFields{
		PairAddress: "0x0000000000000000000000000000000000009999",
		Token0: tokenFields{
			ID:       "0.0.1111",
			Address:  "0x0000000000000000000000000000000000001111",
			Symbol:   "USDX",
			Decimals: 6,
			Type:     "ERC20",
		},
		Token1: tokenFields{
			ID:       "0.0.2222",
			Address:  "0x0000000000000000000000000000000000002222",
			Symbol:   "ALPHA",
			Decimals: 8,
			Type:     "HTS",
		},
		Token0Amount: "2000000000",
		Token1Amount: "100000000000",
		PairSupply:   "1000000000000000000000",
		LPShares:     graphql.String("5000000000000000000"),
	}

	pool := toPoolDescriptor(row)
	if pool.PairAddress != "0x0000000000000000000000000000000000009999" {
		t.Fatalf("pair address = %q", pool.PairAddress)
	}
	if pool.Token0.Standard != model.StandardERC20 || pool.Token1.Standard != model.StandardLedgerNative {
		t.Fatalf("standards = %q/%q", pool.Token0.Standard, pool.Token1.Standard)
	}
	if pool.Token1.Decimals != 8 {
		t.Fatalf("token1 decimals = %d", pool.Token1.Decimals)
	}
	if pool.TotalSupply != "1000000000000000000000" {
		t.Fatalf("total supply = %q", pool.TotalSupply)
	}
	if pool.CallerLPShares != "5000000000000000000" {
		t.Fatalf("lp shares = %q", pool.CallerLPShares)
	}
}
