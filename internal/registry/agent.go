// Package registry holds the immutable agent and team specifications the
// service is provisioned with. Registries are populated at startup and
// read-mostly afterwards, so they are safe to share across requests.
package registry

import (
	"fmt"
	"sync"

	"github.com/agentic-platform/orchestrator/internal/model"
)

// AgentRegistry stores agent specs keyed by id, preserving registration
// order for listing.
type AgentRegistry struct {
	mu     sync.RWMutex
	agents map[string]*model.AgentSpec
	order  []string
}

// NewAgentRegistry creates an empty agent registry.
func NewAgentRegistry() *AgentRegistry {
	return &AgentRegistry{agents: make(map[string]*model.AgentSpec)}
}

// Register stores or overwrites a spec by id. Re-registering an id is
// idempotent and keeps the original list position.
func (r *AgentRegistry) Register(spec *model.AgentSpec) error {
	if spec.ID == "" {
		return model.Configf("agent spec missing id")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[spec.ID]; !exists {
		r.order = append(r.order, spec.ID)
	}
	r.agents[spec.ID] = spec
	return nil
}

// Get returns the spec for id, or model.ErrNotFound.
func (r *AgentRegistry) Get(id string) (*model.AgentSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	spec, ok := r.agents[id]
	if !ok {
		return nil, fmt.Errorf("agent %q: %w", id, model.ErrNotFound)
	}
	return spec, nil
}

// List returns all registered specs in registration order.
func (r *AgentRegistry) List() []*model.AgentSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	specs := make([]*model.AgentSpec, 0, len(r.order))
	for _, id := range r.order {
		specs = append(specs, r.agents[id])
	}
	return specs
}
