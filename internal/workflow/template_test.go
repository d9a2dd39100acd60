package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentic-platform/orchestrator/internal/model"
)

func TestRenderStepInput_Placeholders(t *testing.T) {
	step := &model.WorkflowStep{
		ID:                "draft",
		InputInstructions: "Write about {input} using these notes:\n{previous_output}",
	}
	run := &model.WorkflowRun{
		Input: "canal history",
		History: []model.StepResult{
			{StepID: "research", Output: "notes on canals"},
		},
	}

	got := renderStepInput(step, run)
	assert.Contains(t, got, "Write about canal history")
	assert.Contains(t, got, "notes on canals")
	// Placeholders were used, so no extra task context is appended.
	assert.NotContains(t, got, "Task:")
}

func TestRenderStepInput_AppendsContextWithoutPlaceholders(t *testing.T) {
	step := &model.WorkflowStep{ID: "summarize", InputInstructions: "Summarize everything so far."}
	run := &model.WorkflowRun{
		Input: "canal history",
		History: []model.StepResult{
			{StepID: "research", Output: "notes on canals"},
			{StepID: "broken", Error: "provider unavailable"},
			{StepID: "draft", Output: "a draft"},
		},
	}

	got := renderStepInput(step, run)
	assert.Contains(t, got, "Task: canal history")
	assert.Contains(t, got, "[research] notes on canals")
	assert.Contains(t, got, "[draft] a draft")
	// Failed attempts are excluded from the context block.
	assert.NotContains(t, got, "broken")
}

func TestRenderStepInput_OutputFormat(t *testing.T) {
	step := &model.WorkflowStep{
		ID:                "draft",
		InputInstructions: "Write about {input}",
		OutputFormat:      "markdown report",
	}
	run := &model.WorkflowRun{Input: "canals"}

	got := renderStepInput(step, run)
	assert.Contains(t, got, "Respond as: markdown report")
}

func TestRenderStepInput_ApprovalFeedback(t *testing.T) {
	step := &model.WorkflowStep{ID: "draft", InputInstructions: "Write about {input}"}
	run := &model.WorkflowRun{Input: "canals", ApprovalFeedback: "cite your sources"}

	got := renderStepInput(step, run)
	assert.Contains(t, got, "Reviewer feedback to address")
	assert.Contains(t, got, "cite your sources")
}

func TestMatches_TokenContainment(t *testing.T) {
	e := &Engine{predicates: map[string]Predicate{}}
	run := &model.WorkflowRun{}

	tests := []struct {
		condition string
		output    string
		want      bool
	}{
		{"approved", "APPROVED. Ship it.", true},
		{"approved", "This is not ready", false},
		{"needs_revision", "NEEDS_REVISION: fix the intro", true},
		{"needs_revision", "needs revision throughout", true},
		{"needs_revision", "approved", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, e.matches(tt.condition, tt.output, run),
			"condition %q against %q", tt.condition, tt.output)
	}
}

func TestMatches_PredicateOverridesTokens(t *testing.T) {
	e := &Engine{predicates: map[string]Predicate{
		"approved": func(output string, run *model.WorkflowRun) bool { return false },
	}}

	// Token matching would say yes; the registered predicate wins.
	assert.False(t, e.matches("approved", "APPROVED", &model.WorkflowRun{}))
}
