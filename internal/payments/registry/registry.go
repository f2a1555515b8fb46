package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dejobratic/wspay/internal/payments/ports"
)

// Registry maps provider names to their acquirers.
type Registry struct {
	mu        sync.RWMutex
	acquirers map[string]ports.PaymentAcquirer
}

// New returns a registry holding the given acquirers.
func New(acquirers ...ports.PaymentAcquirer) *Registry {
	r := &Registry{acquirers: make(map[string]ports.PaymentAcquirer)}
	for _, acquirer := range acquirers {
		r.Register(acquirer)
	}
	return r
}

// Register adds an acquirer, replacing any previous one with the same provider name.
func (r *Registry) Register(acquirer ports.PaymentAcquirer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.acquirers[acquirer.Provider()] = acquirer
}

// Get returns the acquirer registered for provider.
func (r *Registry) Get(provider string) (ports.PaymentAcquirer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acquirer, ok := r.acquirers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ports.ErrUnknownProvider, provider)
	}
	return acquirer, nil
}

// Providers lists registered provider names in lexical order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.acquirers))
	for name := range r.acquirers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
