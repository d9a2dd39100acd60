package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-platform/orchestrator/internal/conversation"
	"github.com/agentic-platform/orchestrator/internal/llm"
	"github.com/agentic-platform/orchestrator/internal/memory"
	"github.com/agentic-platform/orchestrator/internal/model"
	natsclient "github.com/agentic-platform/orchestrator/internal/nats"
	"github.com/agentic-platform/orchestrator/internal/registry"
	"github.com/agentic-platform/orchestrator/internal/workflow"
	"github.com/agentic-platform/orchestrator/pkg/logger"
)

// newTestRouter wires the full stack against the built-in definitions and the
// mock completion responder, mounted without auth middleware.
func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	log := logger.NewNop()

	agents := registry.NewAgentRegistry()
	teams := registry.NewTeamRegistry()
	require.NoError(t, registry.RegisterAll(registry.Defaults(), agents, teams))

	gateway := llm.NewGateway(llm.GatewayConfig{}, log)
	conv := conversation.NewManager(agents, gateway, memory.NewKeywordStore(), natsclient.NoopPublisher{}, log)
	engine := workflow.NewEngine(agents, teams, conv, natsclient.NoopPublisher{}, log)

	healthHandler := NewHealthHandler(nil)
	agentHandler := NewAgentHandler(agents, conv, log)
	teamHandler := NewTeamHandler(teams, log)
	runHandler := NewRunHandler(engine, log)

	r := chi.NewRouter()
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", agentHandler.List)
			r.Post("/conversation", agentHandler.StartConversation)
			r.Post("/message", agentHandler.Message)
			r.Post("/clear-conversation", agentHandler.ClearConversation)
		})
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", teamHandler.List)
			r.Get("/{id}", teamHandler.Get)
			r.Delete("/{id}", teamHandler.Delete)
			r.Post("/{id}/runs", runHandler.Start)
		})
		r.Route("/runs", func(r chi.Router) {
			r.Get("/{id}", runHandler.Get)
			r.Post("/{id}/advance", runHandler.Advance)
			r.Post("/{id}/abort", runHandler.Abort)
		})
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/health", nil).Code)
	// No NATS configured counts as ready.
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/ready", nil).Code)
}

func TestListAgents(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/agents/", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	configs := decode[[]model.AgentConfig](t, rec)
	require.Len(t, configs, 4)
	assert.Equal(t, "assistant", configs[0].ID)
}

func TestConversationFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/conversation", model.StartConversationRequest{
		AgentID:        "assistant",
		UserID:         "user-1",
		InitialMessage: "hello",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	started := decode[model.StartConversationResponse](t, rec)
	require.NotEmpty(t, started.SessionID)
	assert.Contains(t, started.InitialResponse, "Hello")

	rec = doJSON(t, r, http.MethodPost, "/api/v1/agents/message", model.SendMessageRequest{
		AgentID:   "assistant",
		UserID:    "user-1",
		SessionID: started.SessionID,
		Message:   "tell me more",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[model.SendMessageResponse](t, rec).Response)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/agents/clear-conversation", model.ClearConversationRequest{
		AgentID:   "assistant",
		UserID:    "user-1",
		SessionID: started.SessionID,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[model.ClearConversationResponse](t, rec).Success)

	rec = doJSON(t, r, http.MethodPost, "/api/v1/agents/clear-conversation", model.ClearConversationRequest{
		AgentID:   "assistant",
		UserID:    "user-1",
		SessionID: "never-started",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[model.ClearConversationResponse](t, rec).Success)
}

func TestConversation_UnknownAgent(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/conversation", model.StartConversationRequest{
		AgentID: "ghost",
		UserID:  "user-1",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStreamMessage(t *testing.T) {
	log := logger.NewNop()
	agents := registry.NewAgentRegistry()
	teams := registry.NewTeamRegistry()
	require.NoError(t, registry.RegisterAll(registry.Defaults(), agents, teams))

	gateway := llm.NewGateway(llm.GatewayConfig{}, log)
	conv := conversation.NewManager(agents, gateway, memory.NoopStore{}, natsclient.NoopPublisher{}, log)
	streamHandler := NewStreamHandler(conv, log)

	r := chi.NewRouter()
	r.Post("/api/v1/agents/message/stream", streamHandler.Message)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/agents/message/stream", model.SendMessageRequest{
		AgentID:   "researcher",
		UserID:    "user-1",
		SessionID: "sess-1",
		Message:   "hello",
	})

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event: token")
	assert.Contains(t, body, "event: done")
	assert.NotContains(t, body, "event: error")
}

func TestStreamMessage_RejectsEmptyMessage(t *testing.T) {
	log := logger.NewNop()
	agents := registry.NewAgentRegistry()
	require.NoError(t, agents.Register(&model.AgentSpec{ID: "assistant"}))
	gateway := llm.NewGateway(llm.GatewayConfig{}, log)
	conv := conversation.NewManager(agents, gateway, memory.NoopStore{}, natsclient.NoopPublisher{}, log)
	handler := NewStreamHandler(conv, log)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/stream", bytes.NewBufferString(`{"agent_id":"assistant","message":""}`))
	handler.Message(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTeamEndpoints(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/v1/teams/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode[[]*model.TeamSpec](t, rec), 2)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/teams/research-report", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Research Report", decode[*model.TeamSpec](t, rec).Name)

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/v1/teams/ghost", nil).Code)

	// Soft delete hides the team from the default listing only.
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodDelete, "/api/v1/teams/research-report", nil).Code)
	assert.Len(t, decode[[]*model.TeamSpec](t, doJSON(t, r, http.MethodGet, "/api/v1/teams/", nil)), 1)
	assert.Len(t, decode[[]*model.TeamSpec](t, doJSON(t, r, http.MethodGet, "/api/v1/teams/?all=1", nil)), 2)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/api/v1/teams/research-report", nil).Code)

	// Hard delete removes it entirely.
	require.Equal(t, http.StatusOK, doJSON(t, r, http.MethodDelete, "/api/v1/teams/research-report?hard=1", nil).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/v1/teams/research-report", nil).Code)
}

func TestRunLifecycle(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/v1/teams/research-report/runs", model.StartRunRequest{
		Input: "the history of tulip mania",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	run := decode[*model.WorkflowRun](t, rec)
	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.NotEmpty(t, run.Output)
	require.Len(t, run.History, 4)
	assert.Equal(t, "research", run.History[0].StepID)
	assert.Equal(t, "draft", run.History[1].StepID)
	assert.Equal(t, "review", run.History[2].StepID)
	assert.Equal(t, "finalize", run.History[3].StepID)

	rec = doJSON(t, r, http.MethodGet, "/api/v1/runs/"+run.RunID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, run.RunID, decode[*model.WorkflowRun](t, rec).RunID)

	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodPost, "/api/v1/teams/ghost/runs", model.StartRunRequest{Input: "x"}).Code)
	assert.Equal(t, http.StatusNotFound, doJSON(t, r, http.MethodGet, "/api/v1/runs/no-such-run", nil).Code)
	assert.Equal(t, http.StatusBadRequest, doJSON(t, r, http.MethodPost, "/api/v1/teams/research-report/runs", model.StartRunRequest{}).Code)
}

func TestRunApproval(t *testing.T) {
	r := newTestRouter(t)

	start := func() *model.WorkflowRun {
		rec := doJSON(t, r, http.MethodPost, "/api/v1/teams/content-creation/runs", model.StartRunRequest{
			Input: "a product announcement",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		run := decode[*model.WorkflowRun](t, rec)
		require.Equal(t, model.RunStatusAwaitingApproval, run.Status)
		require.Equal(t, "review", run.PendingStepID)
		return run
	}

	t.Run("approve resumes to completion", func(t *testing.T) {
		run := start()
		rec := doJSON(t, r, http.MethodPost, "/api/v1/runs/"+run.RunID+"/advance", model.AdvanceRunRequest{Approved: true})
		require.Equal(t, http.StatusOK, rec.Code)

		run = decode[*model.WorkflowRun](t, rec)
		assert.Equal(t, model.RunStatusCompleted, run.Status)
		assert.NotEmpty(t, run.Output)
	})

	t.Run("reject without revision route fails", func(t *testing.T) {
		run := start()
		rec := doJSON(t, r, http.MethodPost, "/api/v1/runs/"+run.RunID+"/advance", model.AdvanceRunRequest{
			Approved: false,
			Feedback: "wrong tone",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		run = decode[*model.WorkflowRun](t, rec)
		assert.Equal(t, model.RunStatusFailed, run.Status)
		assert.Equal(t, model.FailureApprovalRejected, run.FailureReason)
	})

	t.Run("abort suspended run", func(t *testing.T) {
		run := start()
		rec := doJSON(t, r, http.MethodPost, "/api/v1/runs/"+run.RunID+"/abort", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, model.RunStatusAborted, decode[*model.WorkflowRun](t, rec).Status)
	})
}
