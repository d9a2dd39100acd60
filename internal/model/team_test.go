package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkflowSpec_FirstStepID(t *testing.T) {
	t.Run("default route head wins", func(t *testing.T) {
		w := WorkflowSpec{
			DefaultRoute: []string{"b", "a"},
			Steps: []WorkflowStep{
				{ID: "a", NextStepID: "b"},
				{ID: "b"},
			},
		}
		assert.Equal(t, "b", w.FirstStepID())
	})

	t.Run("default route with unknown head is ignored", func(t *testing.T) {
		w := WorkflowSpec{
			DefaultRoute: []string{"ghost"},
			Steps: []WorkflowStep{
				{ID: "a", NextStepID: "b"},
				{ID: "b"},
			},
		}
		assert.Equal(t, "a", w.FirstStepID())
	})

	t.Run("cycle falls back to declaration order", func(t *testing.T) {
		w := WorkflowSpec{
			Steps: []WorkflowStep{
				{ID: "b", ConditionalNext: []ConditionalRoute{{Condition: "retry", NextStepID: "a"}}},
				{ID: "a", NextStepID: "b"},
			},
		}
		// Every step in the cycle has an incoming edge, so declaration
		// order decides.
		assert.Equal(t, "b", w.FirstStepID())
	})

	t.Run("linear graph picks the entry", func(t *testing.T) {
		w := WorkflowSpec{
			Steps: []WorkflowStep{
				{ID: "mid", NextStepID: "end"},
				{ID: "start", NextStepID: "mid"},
				{ID: "end"},
			},
		}
		assert.Equal(t, "start", w.FirstStepID())
	})

	t.Run("empty workflow", func(t *testing.T) {
		var w WorkflowSpec
		assert.Empty(t, w.FirstStepID())
	})
}

func TestWorkflowRun_Clone(t *testing.T) {
	run := &WorkflowRun{
		RunID:   "r1",
		History: []StepResult{{StepID: "a", Output: "out"}},
	}

	clone := run.Clone()
	clone.History[0].Output = "mutated"
	clone.Status = RunStatusFailed

	assert.Equal(t, "out", run.History[0].Output)
	assert.NotEqual(t, run.Status, clone.Status)
}

func TestRunStatus_Terminal(t *testing.T) {
	assert.True(t, RunStatusCompleted.Terminal())
	assert.True(t, RunStatusFailed.Terminal())
	assert.True(t, RunStatusAborted.Terminal())
	assert.False(t, RunStatusRunning.Terminal())
	assert.False(t, RunStatusAwaitingApproval.Terminal())
}

func TestTeamSpec_HasAgent(t *testing.T) {
	team := &TeamSpec{Agents: []TeamAgentRef{{ID: "writer"}, {ID: "reviewer"}}}
	assert.True(t, team.HasAgent("writer"))
	assert.False(t, team.HasAgent("ghost"))
}

func TestSessionState_Clone(t *testing.T) {
	state := &SessionState{
		SessionID: "s1",
		Messages:  []Message{{Role: RoleUser, Content: "hi"}},
	}

	clone := state.Clone()
	clone.Messages[0].Content = "mutated"

	assert.Equal(t, "hi", state.Messages[0].Content)
}
