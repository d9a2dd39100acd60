package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-platform/orchestrator/internal/model"
)

func validTeam() *model.TeamSpec {
	return &model.TeamSpec{
		ID:       "pipeline",
		Name:     "Pipeline",
		IsActive: true,
		Agents: []model.TeamAgentRef{
			{ID: "writer", Role: "drafting"},
			{ID: "reviewer", Role: "review"},
		},
		Workflow: model.WorkflowSpec{
			MaxIterations: 5,
			Steps: []model.WorkflowStep{
				{ID: "draft", AgentID: "writer", NextStepID: "review"},
				{
					ID:      "review",
					AgentID: "reviewer",
					ConditionalNext: []model.ConditionalRoute{
						{Condition: "needs_revision", NextStepID: "draft"},
					},
					NextStepID: "draft",
				},
			},
		},
	}
}

func TestValidateTeam(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.TeamSpec)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(team *model.TeamSpec) {},
		},
		{
			name:    "missing id",
			mutate:  func(team *model.TeamSpec) { team.ID = "" },
			wantErr: "missing id",
		},
		{
			name:    "no steps",
			mutate:  func(team *model.TeamSpec) { team.Workflow.Steps = nil },
			wantErr: "no steps",
		},
		{
			name:    "non-positive max iterations",
			mutate:  func(team *model.TeamSpec) { team.Workflow.MaxIterations = 0 },
			wantErr: "max_iterations",
		},
		{
			name: "duplicate step id",
			mutate: func(team *model.TeamSpec) {
				team.Workflow.Steps = append(team.Workflow.Steps, model.WorkflowStep{ID: "draft", AgentID: "writer"})
			},
			wantErr: "duplicate step id",
		},
		{
			name: "step agent not a member",
			mutate: func(team *model.TeamSpec) {
				team.Workflow.Steps[0].AgentID = "outsider"
			},
			wantErr: "not a team member",
		},
		{
			name: "next step unknown",
			mutate: func(team *model.TeamSpec) {
				team.Workflow.Steps[0].NextStepID = "nowhere"
			},
			wantErr: "unknown step",
		},
		{
			name: "conditional route target unknown",
			mutate: func(team *model.TeamSpec) {
				team.Workflow.Steps[1].ConditionalNext[0].NextStepID = "nowhere"
			},
			wantErr: "unknown step",
		},
		{
			name: "conditional route without condition",
			mutate: func(team *model.TeamSpec) {
				team.Workflow.Steps[1].ConditionalNext[0].Condition = ""
			},
			wantErr: "without a condition",
		},
		{
			name: "default route references unknown step",
			mutate: func(team *model.TeamSpec) {
				team.Workflow.DefaultRoute = []string{"draft", "publish"}
			},
			wantErr: "unknown step",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			team := validTeam()
			tt.mutate(team)

			err := ValidateTeam(team)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var cfgErr *model.ConfigError
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestTeamRegistry_RegisterRejectsInvalid(t *testing.T) {
	r := NewTeamRegistry()

	team := validTeam()
	team.Workflow.MaxIterations = -1
	assert.Error(t, r.Register(team))

	_, err := r.Get(team.ID)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestTeamRegistry_SoftDelete(t *testing.T) {
	r := NewTeamRegistry()
	require.NoError(t, r.Register(validTeam()))

	require.NoError(t, r.SoftDelete("pipeline"))

	// Still retrievable by id, but hidden from active lookups and listings.
	team, err := r.Get("pipeline")
	require.NoError(t, err)
	assert.False(t, team.IsActive)

	_, err = r.GetActive("pipeline")
	assert.True(t, errors.Is(err, model.ErrNotFound))

	assert.Empty(t, r.List(false))
	assert.Len(t, r.List(true), 1)
}

func TestTeamRegistry_HardDelete(t *testing.T) {
	r := NewTeamRegistry()
	require.NoError(t, r.Register(validTeam()))

	require.NoError(t, r.HardDelete("pipeline"))

	_, err := r.Get("pipeline")
	assert.True(t, errors.Is(err, model.ErrNotFound))
	assert.Empty(t, r.List(true))
}

func TestTeamRegistry_DeleteUnknown(t *testing.T) {
	r := NewTeamRegistry()

	assert.Error(t, r.SoftDelete("ghost"))
	assert.Error(t, r.HardDelete("ghost"))
}

func TestDefaults_RegisterCleanly(t *testing.T) {
	agents := NewAgentRegistry()
	teams := NewTeamRegistry()

	require.NoError(t, RegisterAll(Defaults(), agents, teams))

	assert.Len(t, agents.List(), 4)
	assert.Len(t, teams.List(false), 2)

	team, err := teams.GetActive("research-report")
	require.NoError(t, err)
	assert.Equal(t, "research", team.Workflow.FirstStepID())

	team, err = teams.GetActive("content-creation")
	require.NoError(t, err)
	assert.True(t, team.Workflow.RequireUserApproval)
	assert.Equal(t, "draft", team.Workflow.FirstStepID())
}
