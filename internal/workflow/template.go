package workflow

import (
	"fmt"
	"strings"

	"github.com/agentic-platform/orchestrator/internal/model"
)

// renderStepInput builds the prompt for a step from its instruction template
// and the run context. Named placeholders are interpolated:
//
//	{input}           the run's original input
//	{previous_output} the most recent step output
//	{output_format}   the step's declared output format
//
// When the template references neither {input} nor {previous_output}, the
// run context is appended after the instructions so the agent always has
// enough to act on.
func renderStepInput(step *model.WorkflowStep, run *model.WorkflowRun) string {
	prev := ""
	if last := run.LastResult(); last != nil {
		prev = last.Output
	}

	text := step.InputInstructions
	hasContext := strings.Contains(text, "{input}") || strings.Contains(text, "{previous_output}")

	text = strings.NewReplacer(
		"{input}", run.Input,
		"{previous_output}", prev,
		"{output_format}", step.OutputFormat,
	).Replace(text)

	var b strings.Builder
	b.WriteString(text)

	if !hasContext {
		b.WriteString("\n\nTask: ")
		b.WriteString(run.Input)
		if history := historyBlock(run); history != "" {
			b.WriteString("\n\n")
			b.WriteString(history)
		}
	}

	if step.OutputFormat != "" && !strings.Contains(step.InputInstructions, "{output_format}") {
		b.WriteString("\n\nRespond as: ")
		b.WriteString(step.OutputFormat)
	}

	if run.ApprovalFeedback != "" {
		b.WriteString("\n\nReviewer feedback to address:\n")
		b.WriteString(run.ApprovalFeedback)
	}

	return b.String()
}

// historyBlock summarizes successful prior step outputs, oldest first.
func historyBlock(run *model.WorkflowRun) string {
	var b strings.Builder
	for _, result := range run.History {
		if result.Error != "" {
			continue
		}
		if b.Len() == 0 {
			b.WriteString("Prior step outputs:")
		}
		fmt.Fprintf(&b, "\n[%s] %s", result.StepID, result.Output)
	}
	return b.String()
}
