package model

import (
	"time"
)

// RunStatus is the lifecycle state of a workflow run.
type RunStatus string

const (
	RunStatusRunning          RunStatus = "running"
	RunStatusAwaitingApproval RunStatus = "awaiting_approval"
	RunStatusCompleted        RunStatus = "completed"
	RunStatusFailed           RunStatus = "failed"
	RunStatusAborted          RunStatus = "aborted"
)

// Terminal reports whether the status is final.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusAborted:
		return true
	}
	return false
}

// Failure reason codes, kept distinct so operators can tell a stuck workflow
// from an upstream outage.
const (
	FailureMaxIterations    = "max-iterations-exceeded"
	FailureUnroutableStep   = "unroutable-step"
	FailureProviderError    = "provider-error"
	FailureStepTimeout      = "step-timeout"
	FailureConfigError      = "config-error"
	FailureApprovalRejected = "approval-rejected"
)

// StepResult records one step execution, successful or not. Failed attempts
// are recorded too, preserving the audit trail before a run fails.
type StepResult struct {
	StepID    string    `json:"step_id"`
	AgentID   string    `json:"agent_id"`
	Output    string    `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkflowRun is one execution instance of a team's workflow.
type WorkflowRun struct {
	RunID            string       `json:"run_id"`
	TeamID           string       `json:"team_id"`
	Status           RunStatus    `json:"status"`
	Input            string       `json:"input"`
	Output           string       `json:"output,omitempty"`
	CurrentStepID    string       `json:"current_step_id,omitempty"`
	PendingStepID    string       `json:"pending_step_id,omitempty"`
	IterationCount   int          `json:"iteration_count"`
	History          []StepResult `json:"history"`
	FailureReason    string       `json:"failure_reason,omitempty"`
	ApprovalFeedback string       `json:"approval_feedback,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// Clone returns a deep copy safe to return to callers while the engine keeps
// mutating the original.
func (r *WorkflowRun) Clone() *WorkflowRun {
	clone := *r
	clone.History = make([]StepResult, len(r.History))
	copy(clone.History, r.History)
	return &clone
}

// LastResult returns the most recent step result, or nil.
func (r *WorkflowRun) LastResult() *StepResult {
	if len(r.History) == 0 {
		return nil
	}
	return &r.History[len(r.History)-1]
}

// StartRunRequest kicks off a workflow run for a team.
type StartRunRequest struct {
	Input string `json:"input"`
}

// AdvanceRunRequest resolves an approval gate.
type AdvanceRunRequest struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback,omitempty"`
}

// RunEventType classifies workflow run audit events.
type RunEventType string

const (
	RunEventStarted          RunEventType = "started"
	RunEventStepCompleted    RunEventType = "step_completed"
	RunEventAwaitingApproval RunEventType = "awaiting_approval"
	RunEventCompleted        RunEventType = "completed"
	RunEventFailed           RunEventType = "failed"
	RunEventAborted          RunEventType = "aborted"
)

// RunEvent is one workflow transition published to the audit stream.
type RunEvent struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	TeamID    string       `json:"team_id"`
	Type      RunEventType `json:"type"`
	StepID    string       `json:"step_id,omitempty"`
	Reason    string       `json:"reason,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
