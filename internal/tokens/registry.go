// Package tokens caches the token list served by the registry collaborator.
package tokens

import (
	"sync"

	"liquidityFlow/internal/model"
)

// Registry is a thread-safe snapshot of the known token descriptors, keyed by
// normalized contract address. Descriptors are immutable once resolved.
type Registry struct {
	mu     sync.RWMutex
	byAddr map[string]model.TokenDescriptor
	order  []model.TokenDescriptor
}

func NewRegistry() *Registry {
	return &Registry{byAddr: make(map[string]model.TokenDescriptor)}
}

// Replace swaps in a new token list snapshot.
func (r *Registry) Replace(list []model.TokenDescriptor) {
	byAddr := make(map[string]model.TokenDescriptor, len(list))
	order := make([]model.TokenDescriptor, len(list))
	copy(order, list)
	for _, token := range list {
		byAddr[model.NormalizeAddress(token.Address)] = token
	}

	r.mu.Lock()
	r.byAddr = byAddr
	r.order = order
	r.mu.Unlock()
}

// ByAddress resolves a descriptor by contract address.
func (r *Registry) ByAddress(address string) (model.TokenDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	token, ok := r.byAddr[model.NormalizeAddress(address)]
	return token, ok
}

// ByLedgerID resolves a descriptor by its "0.0.N" entity ID.
func (r *Registry) ByLedgerID(id string) (model.TokenDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, token := range r.order {
		if token.LedgerID == id {
			return token, true
		}
	}
	return model.TokenDescriptor{}, false
}

// List returns a copy of the token list in registry order.
func (r *Registry) List() []model.TokenDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]model.TokenDescriptor, len(r.order))
	copy(list, r.order)
	return list
}
