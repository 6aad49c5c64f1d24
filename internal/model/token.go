package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenStandard identifies how a token is approved and transferred.
type TokenStandard string

const (
	// StandardNative is the ledger's base currency. It never needs approval
	// and participates in pools only through the wrapped-native token.
	StandardNative TokenStandard = "NATIVE"
	// StandardERC20 is a fungible token contract following the ERC20
	// allowance model.
	StandardERC20 TokenStandard = "STANDARD"
	// StandardLedgerNative is a platform-native token using the ledger's own
	// association and allowance model rather than a contract.
	StandardLedgerNative TokenStandard = "LEDGER_NATIVE_TOKEN"
)

// TokenDescriptor captures token metadata resolved from the token registry.
// Descriptors are immutable once resolved; identity is the contract address.
type TokenDescriptor struct {
	LedgerID string        `json:"ledger_id"`
	Address  string        `json:"address"`
	Symbol   string        `json:"symbol"`
	Decimals int           `json:"decimals"`
	Standard TokenStandard `json:"standard"`
}

// IsNative reports whether the descriptor is the ledger's base currency.
func (t TokenDescriptor) IsNative() bool {
	return t.Standard == StandardNative
}

// MatchAddress returns the address used for pool matching: the wrapped-native
// address for the native asset, the token's own address otherwise. The result
// is lowercased so comparisons are case-insensitive.
func (t TokenDescriptor) MatchAddress(wrappedNative string) string {
	if t.IsNative() {
		return NormalizeAddress(wrappedNative)
	}
	return NormalizeAddress(t.Address)
}

// NormalizeAddress lowercases a hex address for identity comparison.
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// AccountIDToAddress converts a "shard.realm.num" entity ID into its
// long-zero EVM address (the entity number big-endian in the low 8 bytes).
func AccountIDToAddress(id string) (common.Address, error) {
	parts := strings.Split(strings.TrimSpace(id), ".")
	if len(parts) != 3 {
		return common.Address{}, fmt.Errorf("invalid entity id %q", id)
	}

	shard, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid shard in %q: %w", id, err)
	}
	realm, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid realm in %q: %w", id, err)
	}
	num, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid entity number in %q: %w", id, err)
	}
	if shard != 0 || realm != 0 {
		return common.Address{}, fmt.Errorf("non-zero shard or realm in %q has no long-zero address", id)
	}

	var addr common.Address
	for i := 0; i < 8; i++ {
		addr[19-i] = byte(num >> (8 * i))
	}
	return addr, nil
}

// AddressToAccountID converts a long-zero EVM address back into a
// "0.0.num" entity ID. Addresses with non-zero high bytes are real contract
// addresses and have no entity ID.
func AddressToAccountID(address string) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid address %q", address)
	}
	addr := common.HexToAddress(address)
	for i := 0; i < 12; i++ {
		if addr[i] != 0 {
			return "", fmt.Errorf("address %s is not a long-zero address", address)
		}
	}

	var num uint64
	for i := 12; i < 20; i++ {
		num = num<<8 | uint64(addr[i])
	}
	return fmt.Sprintf("0.0.%d", num), nil
}
