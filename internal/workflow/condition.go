package workflow

import (
	"strings"

	"github.com/agentic-platform/orchestrator/internal/model"
)

// Predicate decides whether a named condition holds for a step's output and
// run context. Conditions are evaluated in route order; first match wins.
type Predicate func(output string, run *model.WorkflowRun) bool

// matches evaluates a condition name. A registered predicate takes priority;
// otherwise the condition holds when the output contains the condition token,
// compared case-insensitively with underscores treated as spaces. That lets a
// review agent drive routing by ending its reply with NEEDS_REVISION or
// APPROVED.
func (e *Engine) matches(condition, output string, run *model.WorkflowRun) bool {
	if pred, ok := e.predicates[condition]; ok {
		return pred(output, run)
	}
	return strings.Contains(normalizeToken(output), normalizeToken(condition))
}

func normalizeToken(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", " ")
}
