package pools

import (
	"sort"
	"sync"

	"liquidityFlow/internal/model"
)

// Registry is a thread-safe snapshot of the pools reported by the indexer.
// Refreshes replace the whole snapshot; readers get copies and can hold them
// across an update without seeing mutation.
type Registry struct {
	mu    sync.RWMutex
	pools []model.PoolDescriptor
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Replace swaps in a new snapshot. Pools are sorted by pair address so that
// duplicate-pair lookups resolve the same way on every refresh.
func (r *Registry) Replace(pools []model.PoolDescriptor) {
	snapshot := make([]model.PoolDescriptor, len(pools))
	copy(snapshot, pools)
	sort.Slice(snapshot, func(i, j int) bool {
		return model.NormalizeAddress(snapshot[i].PairAddress) < model.NormalizeAddress(snapshot[j].PairAddress)
	})

	r.mu.Lock()
	r.pools = snapshot
	r.mu.Unlock()
}

// Snapshot returns a copy of the current pool set.
func (r *Registry) Snapshot() []model.PoolDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]model.PoolDescriptor, len(r.pools))
	copy(snapshot, r.pools)
	return snapshot
}

// Len returns the number of known pools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

// Find matches a token pair against the current snapshot.
func (r *Registry) Find(tokenA, tokenB model.TokenDescriptor, wrappedNative string) (model.PoolDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FindPool(tokenA, tokenB, wrappedNative, r.pools)
}

// ByPairAddress returns the pool with the given pair address.
func (r *Registry) ByPairAddress(address string) (model.PoolDescriptor, bool) {
	want := model.NormalizeAddress(address)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pool := range r.pools {
		if model.NormalizeAddress(pool.PairAddress) == want {
			return pool, true
		}
	}
	return model.PoolDescriptor{}, false
}
