package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/agentic-platform/orchestrator/internal/model"
)

// TeamRegistry stores team specs keyed by id. Registration validates the
// workflow graph so malformed teams are rejected before any run can start.
type TeamRegistry struct {
	mu    sync.RWMutex
	teams map[string]*model.TeamSpec
	order []string
}

// NewTeamRegistry creates an empty team registry.
func NewTeamRegistry() *TeamRegistry {
	return &TeamRegistry{teams: make(map[string]*model.TeamSpec)}
}

// Register validates and stores a team spec. Re-registering an id overwrites
// the previous definition and keeps its list position.
func (r *TeamRegistry) Register(team *model.TeamSpec) error {
	if err := ValidateTeam(team); err != nil {
		return err
	}
	now := time.Now()
	if team.CreatedAt.IsZero() {
		team.CreatedAt = now
	}
	team.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.teams[team.ID]; !exists {
		r.order = append(r.order, team.ID)
	}
	r.teams[team.ID] = team
	return nil
}

// Get returns the team for id regardless of active state, or
// model.ErrNotFound.
func (r *TeamRegistry) Get(id string) (*model.TeamSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	team, ok := r.teams[id]
	if !ok {
		return nil, fmt.Errorf("team %q: %w", id, model.ErrNotFound)
	}
	return team, nil
}

// GetActive returns the team for id only if it is active.
func (r *TeamRegistry) GetActive(id string) (*model.TeamSpec, error) {
	team, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if !team.IsActive {
		return nil, fmt.Errorf("team %q is inactive: %w", id, model.ErrNotFound)
	}
	return team, nil
}

// List returns active teams in registration order. Pass includeInactive to
// also get soft-deleted teams.
func (r *TeamRegistry) List(includeInactive bool) []*model.TeamSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	teams := make([]*model.TeamSpec, 0, len(r.order))
	for _, id := range r.order {
		team := r.teams[id]
		if team.IsActive || includeInactive {
			teams = append(teams, team)
		}
	}
	return teams
}

// SoftDelete flips a team inactive. The definition stays retrievable by id.
func (r *TeamRegistry) SoftDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	team, ok := r.teams[id]
	if !ok {
		return fmt.Errorf("team %q: %w", id, model.ErrNotFound)
	}
	team.IsActive = false
	team.UpdatedAt = time.Now()
	return nil
}

// HardDelete removes a team entirely.
func (r *TeamRegistry) HardDelete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.teams[id]; !ok {
		return fmt.Errorf("team %q: %w", id, model.ErrNotFound)
	}
	delete(r.teams, id)
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ValidateTeam checks the structural invariants of a team definition:
// every step's agent is a declared member, every route references an existing
// step, and the iteration cap is positive. Condition coverage cannot be
// proven here; an uncovered condition surfaces at run time as unroutable.
func ValidateTeam(team *model.TeamSpec) error {
	if team.ID == "" {
		return model.Configf("team spec missing id")
	}
	if len(team.Workflow.Steps) == 0 {
		return model.Configf("team %q: workflow has no steps", team.ID)
	}
	if team.Workflow.MaxIterations <= 0 {
		return model.Configf("team %q: max_iterations must be positive", team.ID)
	}

	stepIDs := make(map[string]bool, len(team.Workflow.Steps))
	for _, step := range team.Workflow.Steps {
		if step.ID == "" {
			return model.Configf("team %q: workflow step missing id", team.ID)
		}
		if stepIDs[step.ID] {
			return model.Configf("team %q: duplicate step id %q", team.ID, step.ID)
		}
		stepIDs[step.ID] = true
	}

	for _, step := range team.Workflow.Steps {
		if !team.HasAgent(step.AgentID) {
			return model.Configf("team %q: step %q references agent %q which is not a team member", team.ID, step.ID, step.AgentID)
		}
		if step.NextStepID != "" && !stepIDs[step.NextStepID] {
			return model.Configf("team %q: step %q routes to unknown step %q", team.ID, step.ID, step.NextStepID)
		}
		for _, route := range step.ConditionalNext {
			if route.Condition == "" {
				return model.Configf("team %q: step %q has a conditional route without a condition", team.ID, step.ID)
			}
			if !stepIDs[route.NextStepID] {
				return model.Configf("team %q: step %q condition %q routes to unknown step %q", team.ID, step.ID, route.Condition, route.NextStepID)
			}
		}
	}

	for _, id := range team.Workflow.DefaultRoute {
		if !stepIDs[id] {
			return model.Configf("team %q: default route references unknown step %q", team.ID, id)
		}
	}
	return nil
}
