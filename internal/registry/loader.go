package registry

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentic-platform/orchestrator/internal/model"
)

// Definitions is the YAML document shape for provisioning agents and teams.
type Definitions struct {
	Agents []*model.AgentSpec `yaml:"agents"`
	Teams  []*model.TeamSpec  `yaml:"teams"`
}

// LoadFile reads agent and team definitions from a YAML file and registers
// them. A missing file is not an error; the caller decides whether to fall
// back to built-in defaults.
func LoadFile(path string, agents *AgentRegistry, teams *TeamRegistry) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	var defs Definitions
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return false, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := RegisterAll(&defs, agents, teams); err != nil {
		return false, err
	}
	return true, nil
}

// RegisterAll registers every definition, agents first so team validation
// can assume members exist.
func RegisterAll(defs *Definitions, agents *AgentRegistry, teams *TeamRegistry) error {
	for _, spec := range defs.Agents {
		if err := agents.Register(spec); err != nil {
			return fmt.Errorf("register agent %q: %w", spec.ID, err)
		}
	}
	for _, team := range defs.Teams {
		// YAML omits timestamps and defaults is_active to false; teams in a
		// definitions file are live unless explicitly disabled elsewhere.
		team.IsActive = true
		if err := teams.Register(team); err != nil {
			return fmt.Errorf("register team %q: %w", team.ID, err)
		}
	}
	return nil
}
