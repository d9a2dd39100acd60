package registry

import (
	"github.com/agentic-platform/orchestrator/internal/model"
)

// Defaults returns the built-in agent and team fixtures used when no
// definitions file is present: a general assistant, and the research-report
// and content-creation pipelines.
func Defaults() *Definitions {
	return &Definitions{
		Agents: []*model.AgentSpec{
			{
				ID:              "assistant",
				Name:            "Assistant",
				Description:     "General-purpose conversational assistant",
				SystemPrompt:    "You are a helpful assistant.",
				DefaultModel:    "claude-3-5-sonnet-20241022",
				DefaultProvider: "anthropic",
				Temperature:     0.7,
				Capabilities:    []string{"chat"},
				MemoryEnabled:   true,
			},
			{
				ID:              "researcher",
				Name:            "Researcher",
				Description:     "Gathers and summarizes source material on a topic",
				SystemPrompt:    "You are a meticulous researcher. Gather relevant facts and cite where each came from.",
				DefaultModel:    "claude-3-5-sonnet-20241022",
				DefaultProvider: "anthropic",
				Temperature:     0.3,
				Capabilities:    []string{"research", "summarization"},
			},
			{
				ID:              "writer",
				Name:            "Writer",
				Description:     "Drafts long-form content from research notes",
				SystemPrompt:    "You are a clear, engaging writer. Turn the supplied notes into polished prose.",
				DefaultModel:    "gpt-4o",
				DefaultProvider: "openai",
				Temperature:     0.8,
				Capabilities:    []string{"writing"},
			},
			{
				ID:              "reviewer",
				Name:            "Reviewer",
				Description:     "Reviews drafts for quality and accuracy",
				SystemPrompt:    "You are a strict editor. Review the draft. End your reply with APPROVED if it is ready to publish, or NEEDS_REVISION with your required changes.",
				DefaultModel:    "claude-3-5-sonnet-20241022",
				DefaultProvider: "anthropic",
				Temperature:     0.2,
				Capabilities:    []string{"review"},
			},
		},
		Teams: []*model.TeamSpec{
			{
				ID:          "research-report",
				Name:        "Research Report",
				Description: "Research a topic, draft a report, and review it until approved",
				IsActive:    true,
				Agents: []model.TeamAgentRef{
					{ID: "researcher", Role: "research", IsCoordinator: true},
					{ID: "writer", Role: "drafting"},
					{ID: "reviewer", Role: "review"},
				},
				Workflow: model.WorkflowSpec{
					MaxIterations: 8,
					DefaultRoute:  []string{"research", "draft", "review", "finalize"},
					Steps: []model.WorkflowStep{
						{
							ID:                "research",
							AgentID:           "researcher",
							InputInstructions: "Research the following topic and produce organized notes: {input}",
							OutputFormat:      "bulleted notes with sources",
							NextStepID:        "draft",
							TimeoutSeconds:    120,
						},
						{
							ID:                "draft",
							AgentID:           "writer",
							InputInstructions: "Write a report on: {input}\n\nUse the research notes below.\n\n{previous_output}",
							OutputFormat:      "markdown report",
							NextStepID:        "review",
							TimeoutSeconds:    180,
						},
						{
							ID:                "review",
							AgentID:           "reviewer",
							InputInstructions: "Review this draft report for accuracy and clarity:\n\n{previous_output}",
							ConditionalNext: []model.ConditionalRoute{
								{Condition: "needs_revision", NextStepID: "draft"},
								{Condition: "approved", NextStepID: "finalize"},
							},
							TimeoutSeconds: 120,
						},
						{
							ID:                "finalize",
							AgentID:           "writer",
							InputInstructions: "Produce the final publication-ready version of this report:\n\n{previous_output}",
							OutputFormat:      "markdown report",
							TimeoutSeconds:    120,
						},
					},
				},
			},
			{
				ID:          "content-creation",
				Name:        "Content Creation",
				Description: "Draft and review short-form content with a human sign-off",
				IsActive:    true,
				Agents: []model.TeamAgentRef{
					{ID: "writer", Role: "drafting", IsCoordinator: true},
					{ID: "reviewer", Role: "review"},
				},
				Workflow: model.WorkflowSpec{
					MaxIterations:       6,
					RequireUserApproval: true,
					Steps: []model.WorkflowStep{
						{
							ID:                "draft",
							AgentID:           "writer",
							InputInstructions: "Write content for: {input}",
							NextStepID:        "review",
							TimeoutSeconds:    120,
						},
						{
							ID:                "review",
							AgentID:           "reviewer",
							InputInstructions: "Review this content:\n\n{previous_output}",
							ConditionalNext: []model.ConditionalRoute{
								{Condition: "needs_revision", NextStepID: "draft"},
								{Condition: "approved", NextStepID: "polish"},
							},
							RequiresApproval: true,
							TimeoutSeconds:   120,
						},
						{
							ID:                "polish",
							AgentID:           "writer",
							InputInstructions: "Apply final polish and formatting to this content:\n\n{previous_output}",
							TimeoutSeconds:    120,
						},
					},
				},
			},
		},
	}
}
