// Package workflow executes team workflow graphs: linear steps, conditional
// branches, iteration caps, and approval gates.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/conversation"
	"github.com/agentic-platform/orchestrator/internal/model"
	natsclient "github.com/agentic-platform/orchestrator/internal/nats"
	"github.com/agentic-platform/orchestrator/internal/registry"
	"github.com/agentic-platform/orchestrator/pkg/logger"
	"github.com/agentic-platform/orchestrator/pkg/metrics"
)

// runHandle pairs a run with the mutex that serializes its advancement.
// At most one step execution is in flight per run; cancel interrupts it.
type runHandle struct {
	mu   sync.Mutex
	run  *model.WorkflowRun
	team *model.TeamSpec

	cancelMu sync.Mutex
	cancel   context.CancelFunc
	aborting bool
}

// setCancel records the cancel func for the in-flight step, or clears it.
func (h *runHandle) setCancel(cancel context.CancelFunc) {
	h.cancelMu.Lock()
	h.cancel = cancel
	h.cancelMu.Unlock()
}

// requestAbort marks the run aborting and interrupts any in-flight step.
func (h *runHandle) requestAbort() {
	h.cancelMu.Lock()
	h.aborting = true
	if h.cancel != nil {
		h.cancel()
	}
	h.cancelMu.Unlock()
}

func (h *runHandle) abortRequested() bool {
	h.cancelMu.Lock()
	defer h.cancelMu.Unlock()
	return h.aborting
}

// Engine executes workflow runs. Each run advances under its own lock;
// different runs are independent.
type Engine struct {
	agents     *registry.AgentRegistry
	teams      *registry.TeamRegistry
	conv       *conversation.Manager
	publisher  natsclient.Publisher
	log        *logger.Logger
	predicates map[string]Predicate

	mu   sync.RWMutex
	runs map[string]*runHandle
}

// NewEngine wires the workflow engine.
func NewEngine(
	agents *registry.AgentRegistry,
	teams *registry.TeamRegistry,
	conv *conversation.Manager,
	publisher natsclient.Publisher,
	log *logger.Logger,
) *Engine {
	return &Engine{
		agents:     agents,
		teams:      teams,
		conv:       conv,
		publisher:  publisher,
		log:        log,
		predicates: make(map[string]Predicate),
		runs:       make(map[string]*runHandle),
	}
}

// RegisterPredicate installs a custom predicate for a condition name,
// overriding the default token match.
func (e *Engine) RegisterPredicate(name string, pred Predicate) {
	e.predicates[name] = pred
}

// StartRun creates a run for an active team and executes steps until the run
// reaches a terminal status or suspends at an approval gate.
func (e *Engine) StartRun(ctx context.Context, teamID, input string) (*model.WorkflowRun, error) {
	team, err := e.teams.GetActive(teamID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	run := &model.WorkflowRun{
		RunID:         uuid.Must(uuid.NewV7()).String(),
		TeamID:        team.ID,
		Status:        model.RunStatusRunning,
		Input:         input,
		CurrentStepID: team.Workflow.FirstStepID(),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	handle := &runHandle{run: run, team: team}
	e.mu.Lock()
	e.runs[run.RunID] = handle
	e.mu.Unlock()

	e.publishEvent(run, model.RunEventStarted, run.CurrentStepID, "")
	e.log.Info("workflow run started",
		zap.String("run_id", run.RunID),
		zap.String("team_id", team.ID),
		zap.String("first_step", run.CurrentStepID),
	)

	handle.mu.Lock()
	defer handle.mu.Unlock()
	e.execute(ctx, handle)
	return run.Clone(), nil
}

// Advance resolves an approval gate. Approval resumes the already-computed
// next step; rejection routes through the executed step's needs_revision
// branch when one exists, otherwise fails the run.
func (e *Engine) Advance(ctx context.Context, runID string, approved bool, feedback string) (*model.WorkflowRun, error) {
	handle, err := e.handle(runID)
	if err != nil {
		return nil, err
	}

	handle.mu.Lock()
	defer handle.mu.Unlock()
	run := handle.run

	if run.Status != model.RunStatusAwaitingApproval {
		return nil, fmt.Errorf("run %q is %s, not awaiting approval", runID, run.Status)
	}
	metrics.RunsAwaitingApproval.Dec()

	if approved {
		run.CurrentStepID = run.PendingStepID
		run.PendingStepID = ""
		run.ApprovalFeedback = ""
		run.Status = model.RunStatusRunning
		e.execute(ctx, handle)
		return run.Clone(), nil
	}

	// Rejected: fall back to the executed step's revision branch.
	last := run.LastResult()
	if last != nil {
		if step := handle.team.Workflow.Step(last.StepID); step != nil {
			for _, route := range step.ConditionalNext {
				if normalizeToken(route.Condition) == normalizeToken("needs_revision") {
					run.CurrentStepID = route.NextStepID
					run.PendingStepID = ""
					run.ApprovalFeedback = feedback
					run.Status = model.RunStatusRunning
					e.execute(ctx, handle)
					return run.Clone(), nil
				}
			}
		}
	}

	e.finish(handle, model.RunStatusFailed, model.FailureApprovalRejected)
	return run.Clone(), nil
}

// Abort cancels a run. A step in flight is interrupted cooperatively and its
// result discarded, since nothing is committed to history until the step
// returns.
func (e *Engine) Abort(runID string) (*model.WorkflowRun, error) {
	handle, err := e.handle(runID)
	if err != nil {
		return nil, err
	}

	handle.requestAbort()

	handle.mu.Lock()
	defer handle.mu.Unlock()
	run := handle.run

	if run.Status == model.RunStatusAwaitingApproval {
		metrics.RunsAwaitingApproval.Dec()
	}
	if !run.Status.Terminal() {
		e.finish(handle, model.RunStatusAborted, "")
	}
	return run.Clone(), nil
}

// Get returns a snapshot of the run.
func (e *Engine) Get(runID string) (*model.WorkflowRun, error) {
	handle, err := e.handle(runID)
	if err != nil {
		return nil, err
	}
	handle.mu.Lock()
	defer handle.mu.Unlock()
	return handle.run.Clone(), nil
}

func (e *Engine) handle(runID string) (*runHandle, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	handle, ok := e.runs[runID]
	if !ok {
		return nil, fmt.Errorf("run %q: %w", runID, model.ErrNotFound)
	}
	return handle, nil
}

// execute advances the run until it terminates or suspends. Caller holds the
// run lock.
func (e *Engine) execute(ctx context.Context, h *runHandle) {
	run, team := h.run, h.team

	for run.Status == model.RunStatusRunning {
		step := team.Workflow.Step(run.CurrentStepID)
		if step == nil {
			e.finish(h, model.RunStatusFailed, model.FailureConfigError)
			return
		}

		if run.IterationCount >= team.Workflow.MaxIterations {
			e.finish(h, model.RunStatusFailed, model.FailureMaxIterations)
			return
		}

		output, err := e.executeStep(ctx, h, step)
		run.IterationCount++

		if err != nil {
			if h.abortRequested() && errors.Is(err, context.Canceled) {
				// Interrupted step results are discarded, not recorded.
				run.IterationCount--
				e.finish(h, model.RunStatusAborted, "")
				return
			}
			// The failed attempt stays in history; the iteration count is
			// not rolled back.
			run.History = append(run.History, model.StepResult{
				StepID:    step.ID,
				AgentID:   step.AgentID,
				Error:     err.Error(),
				Timestamp: time.Now(),
			})
			e.finish(h, model.RunStatusFailed, failureReason(err))
			return
		}

		run.History = append(run.History, model.StepResult{
			StepID:    step.ID,
			AgentID:   step.AgentID,
			Output:    output,
			Timestamp: time.Now(),
		})
		run.ApprovalFeedback = ""
		metrics.RecordStep(team.ID, step.ID)
		e.publishEvent(run, model.RunEventStepCompleted, step.ID, "")

		next, terminal, err := e.route(step, output, run)
		if err != nil {
			e.finish(h, model.RunStatusFailed, model.FailureUnroutableStep)
			return
		}
		if terminal {
			run.Output = output
			e.finish(h, model.RunStatusCompleted, "")
			return
		}

		if e.approvalRequired(team, next) {
			run.PendingStepID = next
			run.Status = model.RunStatusAwaitingApproval
			run.UpdatedAt = time.Now()
			metrics.RunsAwaitingApproval.Inc()
			e.publishEvent(run, model.RunEventAwaitingApproval, step.ID, "")
			e.log.Info("workflow run awaiting approval",
				zap.String("run_id", run.RunID),
				zap.String("pending_step", next),
			)
			return
		}

		run.CurrentStepID = next
		run.UpdatedAt = time.Now()
	}
}

// executeStep runs one step's agent through the conversation manager, using
// a run-scoped session so workflow turns never mix with end-user chat.
func (e *Engine) executeStep(ctx context.Context, h *runHandle, step *model.WorkflowStep) (string, error) {
	run := h.run

	if !h.team.HasAgent(step.AgentID) {
		return "", model.Configf("step %q agent %q is not a member of team %q", step.ID, step.AgentID, h.team.ID)
	}
	if _, err := e.agents.Get(step.AgentID); err != nil {
		return "", err
	}

	stepCtx := ctx
	var cancel context.CancelFunc
	if step.TimeoutSeconds > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, time.Duration(step.TimeoutSeconds)*time.Second)
	} else {
		stepCtx, cancel = context.WithCancel(ctx)
	}
	h.setCancel(cancel)
	defer func() {
		h.setCancel(nil)
		cancel()
	}()

	input := renderStepInput(step, run)
	reply, _, err := e.conv.ProcessMessage(stepCtx, step.AgentID, "run:"+run.RunID, run.RunID, input)
	return reply, err
}

// route decides the next step. Conditional routes win, evaluated in order;
// NextStepID is the fallback when no condition matches; a step with neither
// is terminal. Conditions with no match and no fallback are unroutable.
func (e *Engine) route(step *model.WorkflowStep, output string, run *model.WorkflowRun) (string, bool, error) {
	if len(step.ConditionalNext) > 0 {
		for _, r := range step.ConditionalNext {
			if e.matches(r.Condition, output, run) {
				return r.NextStepID, false, nil
			}
		}
		if step.NextStepID != "" {
			return step.NextStepID, false, nil
		}
		return "", false, fmt.Errorf("step %q: %w", step.ID, model.ErrUnroutable)
	}
	if step.NextStepID != "" {
		return step.NextStepID, false, nil
	}
	return "", true, nil
}

// approvalRequired gates the about-to-be-entered step. With the global flag
// set, only steps marked requires_approval gate; if no step is marked, every
// step does.
func (e *Engine) approvalRequired(team *model.TeamSpec, nextStepID string) bool {
	if !team.Workflow.RequireUserApproval {
		return false
	}
	anyFlagged := false
	for _, step := range team.Workflow.Steps {
		if step.RequiresApproval {
			anyFlagged = true
			break
		}
	}
	if !anyFlagged {
		return true
	}
	next := team.Workflow.Step(nextStepID)
	return next != nil && next.RequiresApproval
}

// finish moves the run to a terminal status and publishes the transition.
// Caller holds the run lock.
func (e *Engine) finish(h *runHandle, status model.RunStatus, reason string) {
	run := h.run
	run.Status = status
	run.FailureReason = reason
	run.PendingStepID = ""
	run.UpdatedAt = time.Now()
	metrics.RecordRunFinished(run.TeamID, string(status))

	eventType := model.RunEventCompleted
	switch status {
	case model.RunStatusFailed:
		eventType = model.RunEventFailed
	case model.RunStatusAborted:
		eventType = model.RunEventAborted
	}
	e.publishEvent(run, eventType, run.CurrentStepID, reason)

	e.log.Info("workflow run finished",
		zap.String("run_id", run.RunID),
		zap.String("team_id", run.TeamID),
		zap.String("status", string(status)),
		zap.String("reason", reason),
		zap.Int("iterations", run.IterationCount),
	)
}

// failureReason classifies a step error for the run's failure reason code.
func failureReason(err error) string {
	var cfgErr *model.ConfigError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return model.FailureStepTimeout
	case errors.As(err, &cfgErr), errors.Is(err, model.ErrNotFound):
		return model.FailureConfigError
	default:
		return model.FailureProviderError
	}
}

// publishEvent sends a run transition to the audit stream, detached from the
// request context.
func (e *Engine) publishEvent(run *model.WorkflowRun, eventType model.RunEventType, stepID, reason string) {
	event := &model.RunEvent{
		ID:        uuid.Must(uuid.NewV7()).String(),
		RunID:     run.RunID,
		TeamID:    run.TeamID,
		Type:      eventType,
		StepID:    stepID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.publisher.PublishRunEvent(ctx, event); err != nil {
			e.log.Warn("run event publish failed", zap.String("run_id", run.RunID), zap.Error(err))
		}
	}()
}
