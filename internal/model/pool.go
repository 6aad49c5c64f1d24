package model

// PoolDescriptor is an immutable snapshot of a liquidity pool as reported by
// the indexer. Amounts and supply are decimal-string encodings of 256-bit
// unsigned integers in the token's smallest unit. The engine only reads
// descriptors; refreshes replace the whole snapshot.
type PoolDescriptor struct {
	PairAddress    string          `json:"pair_address"`
	Token0         TokenDescriptor `json:"token0"`
	Token1         TokenDescriptor `json:"token1"`
	Token0Amount   string          `json:"token0_amount"`
	Token1Amount   string          `json:"token1_amount"`
	TotalSupply    string          `json:"total_supply"`
	CallerLPShares string          `json:"caller_lp_shares,omitempty"`
}

// ContainsAddress reports whether either side of the pool is the given
// normalized address.
func (p PoolDescriptor) ContainsAddress(normalized string) bool {
	return NormalizeAddress(p.Token0.Address) == normalized ||
		NormalizeAddress(p.Token1.Address) == normalized
}
