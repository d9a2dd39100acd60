// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// CompletionDuration tracks completion call duration per provider.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Completion provider call duration",
			Buckets: []float64{.5, 1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "model", "status"},
	)

	// LLMTokensTotal tracks total LLM tokens processed.
	LLMTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_tokens_total",
			Help: "Total LLM tokens processed",
		},
		[]string{"model", "direction"},
	)

	// MessagesTotal tracks chat messages appended per agent and role.
	MessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_total",
			Help: "Total conversation messages appended",
		},
		[]string{"agent_id", "role"},
	)

	// SessionsActive tracks live conversation sessions.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Number of live conversation sessions",
		},
	)

	// SSEConnectionsActive tracks active SSE connections.
	SSEConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sse_connections_active",
			Help: "Number of active SSE connections",
		},
	)

	// WorkflowRunsTotal tracks runs by team and terminal status.
	WorkflowRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_runs_total",
			Help: "Workflow runs finished, by terminal status",
		},
		[]string{"team_id", "status"},
	)

	// WorkflowStepsTotal tracks step executions per team.
	WorkflowStepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "workflow_steps_total",
			Help: "Workflow step executions",
		},
		[]string{"team_id", "step_id"},
	)

	// RunsAwaitingApproval tracks runs suspended at an approval gate.
	RunsAwaitingApproval = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "workflow_runs_awaiting_approval",
			Help: "Runs suspended at an approval gate",
		},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for a completion call.
func RecordCompletion(provider, model, status string, duration float64, tokensIn, tokensOut int) {
	CompletionDuration.WithLabelValues(provider, model, status).Observe(duration)
	LLMTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	LLMTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordRunFinished records a run reaching a terminal status.
func RecordRunFinished(teamID, status string) {
	WorkflowRunsTotal.WithLabelValues(teamID, status).Inc()
}

// RecordStep records one workflow step execution.
func RecordStep(teamID, stepID string) {
	WorkflowStepsTotal.WithLabelValues(teamID, stepID).Inc()
}

// IncrementSSEConnections increments the active SSE connection count.
func IncrementSSEConnections() {
	SSEConnectionsActive.Inc()
}

// DecrementSSEConnections decrements the active SSE connection count.
func DecrementSSEConnections() {
	SSEConnectionsActive.Dec()
}
