// Package model defines data structures for the orchestration platform.
package model

// AgentSpec is the immutable configuration of one conversational persona.
// Specs are registered at startup and never mutated afterwards, so they can
// be shared read-only across concurrent requests.
type AgentSpec struct {
	ID              string   `json:"id" yaml:"id"`
	Name            string   `json:"name" yaml:"name"`
	Description     string   `json:"description" yaml:"description"`
	SystemPrompt    string   `json:"system_prompt" yaml:"system_prompt"`
	DefaultModel    string   `json:"default_model" yaml:"default_model"`
	DefaultProvider string   `json:"default_provider" yaml:"default_provider"`
	Temperature     float64  `json:"temperature" yaml:"temperature"`
	Capabilities    []string `json:"capabilities" yaml:"capabilities"`
	MemoryEnabled   bool     `json:"memory_enabled" yaml:"memory_enabled"`
	VectorStoreID   string   `json:"vector_store_id,omitempty" yaml:"vector_store_id"`
}

// AgentConfig is the public view of an agent returned by the list endpoint.
type AgentConfig struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	DefaultModel string   `json:"default_model"`
	Capabilities []string `json:"capabilities"`
}

// Config returns the public view of the spec.
func (a *AgentSpec) Config() AgentConfig {
	return AgentConfig{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		DefaultModel: a.DefaultModel,
		Capabilities: a.Capabilities,
	}
}
