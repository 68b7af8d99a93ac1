// Package batch groups one run's dataset updates by contributing
// organization.
package batch

import (
	"sync"

	"github.com/google/uuid"
)

// Registry hands out one opaque token per organization per run. The token
// is generated on first sight of an organization and reused for every
// later dataset from it, so the platform treats them as one update batch.
// A Registry is scoped to a single run and never persisted.
type Registry struct {
	mu     sync.Mutex
	tokens map[string]string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tokens: make(map[string]string),
	}
}

// TokenFor returns the batch token for an organization, generating and
// storing a new one on first use. The read-check-insert is done under the
// lock so the token stays stable even if records are ever processed in
// parallel.
func (r *Registry) TokenFor(organizationID string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	token, ok := r.tokens[organizationID]
	if !ok {
		token = uuid.New().String()
		r.tokens[organizationID] = token
	}
	return token
}

// Len returns the number of organizations seen so far.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
