package model

import (
	"time"
)

// TeamAgentRef is a team member. It references an AgentSpec by id rather
// than embedding it, plus per-team role metadata.
type TeamAgentRef struct {
	ID            string   `json:"id" yaml:"id"`
	Role          string   `json:"role" yaml:"role"`
	IsCoordinator bool     `json:"is_coordinator" yaml:"is_coordinator"`
	Capabilities  []string `json:"capabilities,omitempty" yaml:"capabilities"`
}

// ConditionalRoute maps a named condition to the step taken when it matches.
type ConditionalRoute struct {
	Condition  string `json:"condition" yaml:"condition"`
	NextStepID string `json:"next_step_id" yaml:"next_step_id"`
}

// WorkflowStep is one unit of work in a team pipeline, executed by a specific
// agent. Conditional routes are evaluated in order and take precedence over
// NextStepID, which acts as the fallback when no condition matches. A step
// with neither is terminal.
type WorkflowStep struct {
	ID                string             `json:"id" yaml:"id"`
	AgentID           string             `json:"agent_id" yaml:"agent_id"`
	InputInstructions string             `json:"input_instructions" yaml:"input_instructions"`
	OutputFormat      string             `json:"output_format,omitempty" yaml:"output_format"`
	NextStepID        string             `json:"next_step_id,omitempty" yaml:"next_step_id"`
	ConditionalNext   []ConditionalRoute `json:"conditional_next,omitempty" yaml:"conditional_next"`
	TimeoutSeconds    int                `json:"timeout_seconds,omitempty" yaml:"timeout_seconds"`
	RequiresApproval  bool               `json:"requires_approval,omitempty" yaml:"requires_approval"`
}

// WorkflowSpec describes a team's step graph and its execution limits.
type WorkflowSpec struct {
	Steps               []WorkflowStep `json:"steps" yaml:"steps"`
	DefaultRoute        []string       `json:"default_route,omitempty" yaml:"default_route"`
	MaxIterations       int            `json:"max_iterations" yaml:"max_iterations"`
	RequireUserApproval bool           `json:"require_user_approval" yaml:"require_user_approval"`
}

// Step returns the step with the given id, or nil.
func (w *WorkflowSpec) Step(id string) *WorkflowStep {
	for i := range w.Steps {
		if w.Steps[i].ID == id {
			return &w.Steps[i]
		}
	}
	return nil
}

// FirstStepID resolves the entry step: the head of DefaultRoute when it names
// a real step, otherwise the first step with no incoming edges, otherwise the
// first declared step.
func (w *WorkflowSpec) FirstStepID() string {
	if len(w.DefaultRoute) > 0 && w.Step(w.DefaultRoute[0]) != nil {
		return w.DefaultRoute[0]
	}
	incoming := make(map[string]bool, len(w.Steps))
	for _, step := range w.Steps {
		if step.NextStepID != "" {
			incoming[step.NextStepID] = true
		}
		for _, route := range step.ConditionalNext {
			incoming[route.NextStepID] = true
		}
	}
	for _, step := range w.Steps {
		if !incoming[step.ID] {
			return step.ID
		}
	}
	if len(w.Steps) > 0 {
		return w.Steps[0].ID
	}
	return ""
}

// TeamSpec is a named group of agents plus the workflow that coordinates
// them. Immutable as configuration; deletion is soft (IsActive=false) unless
// explicitly hard.
type TeamSpec struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Description string         `json:"description" yaml:"description"`
	Agents      []TeamAgentRef `json:"agents" yaml:"agents"`
	Workflow    WorkflowSpec   `json:"workflow" yaml:"workflow"`
	IsActive    bool           `json:"is_active" yaml:"is_active"`
	CreatedAt   time.Time      `json:"created_at" yaml:"-"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"-"`
}

// HasAgent reports whether the given agent id is declared as a team member.
func (t *TeamSpec) HasAgent(agentID string) bool {
	for _, ref := range t.Agents {
		if ref.ID == agentID {
			return true
		}
	}
	return false
}
