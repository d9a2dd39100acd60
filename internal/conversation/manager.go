package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/llm"
	"github.com/agentic-platform/orchestrator/internal/memory"
	"github.com/agentic-platform/orchestrator/internal/model"
	natsclient "github.com/agentic-platform/orchestrator/internal/nats"
	"github.com/agentic-platform/orchestrator/internal/registry"
	"github.com/agentic-platform/orchestrator/pkg/logger"
	"github.com/agentic-platform/orchestrator/pkg/metrics"
)

// Completer is the slice of the gateway the manager needs.
type Completer interface {
	Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error)
	CompleteStream(ctx context.Context, req *llm.CompletionRequest, callback llm.StreamCallback) (*llm.CompletionResponse, error)
}

// Manager owns the session state lifecycle: create, append turns, inject
// retrieved memory, persist assistant replies, clear. Turns on the same
// session key are serialized; different keys run in parallel.
type Manager struct {
	agents    *registry.AgentRegistry
	gateway   Completer
	memory    memory.Store
	publisher natsclient.Publisher
	store     *SessionStore
	log       *logger.Logger
}

// NewManager wires the conversation manager. Pass memory.NoopStore when
// long-term memory is not deployed and nats.NoopPublisher when no audit
// stream is configured.
func NewManager(
	agents *registry.AgentRegistry,
	gateway Completer,
	mem memory.Store,
	publisher natsclient.Publisher,
	log *logger.Logger,
) *Manager {
	return &Manager{
		agents:    agents,
		gateway:   gateway,
		memory:    mem,
		publisher: publisher,
		store:     NewSessionStore(),
		log:       log,
	}
}

// StartConversation allocates a session id and, when an initial message is
// supplied, runs the first turn.
func (m *Manager) StartConversation(ctx context.Context, agentID, userID, initialMessage string) (string, string, error) {
	if _, err := m.agents.Get(agentID); err != nil {
		return "", "", err
	}

	sessionID := uuid.Must(uuid.NewV7()).String()
	if initialMessage == "" {
		return sessionID, "", nil
	}

	reply, _, err := m.ProcessMessage(ctx, agentID, userID, sessionID, initialMessage)
	if err != nil {
		return "", "", err
	}
	return sessionID, reply, nil
}

// ProcessMessage runs one chat turn: append the user message, enrich with
// retrieved memory, call the gateway, and persist the assistant reply. On a
// provider failure no assistant message is appended and the user message
// stays in history, so the turn can be retried without duplicating input.
func (m *Manager) ProcessMessage(ctx context.Context, agentID, userID, sessionID, userText string) (string, *model.SessionState, error) {
	return m.processTurn(ctx, agentID, userID, sessionID, userText, nil)
}

// ProcessMessageStream is ProcessMessage with the reply streamed token by
// token through the callback before being persisted.
func (m *Manager) ProcessMessageStream(ctx context.Context, agentID, userID, sessionID, userText string, callback llm.StreamCallback) (string, *model.SessionState, error) {
	return m.processTurn(ctx, agentID, userID, sessionID, userText, callback)
}

func (m *Manager) processTurn(ctx context.Context, agentID, userID, sessionID, userText string, callback llm.StreamCallback) (string, *model.SessionState, error) {
	agent, err := m.agents.Get(agentID)
	if err != nil {
		// Unknown agent creates no session state.
		return "", nil, err
	}

	key := model.SessionKey{AgentID: agentID, UserID: userID, SessionID: sessionID}
	sess := m.store.acquire(key)

	// Serializes the whole read-modify-write turn, including the provider
	// call, against concurrent turns on the same key.
	sess.mu.Lock()
	defer sess.mu.Unlock()

	now := time.Now()
	if len(sess.state.Messages) == 0 {
		m.append(sess, model.Message{Role: model.RoleSystem, Content: agent.SystemPrompt, CreatedAt: now})
	}

	userMsg := model.Message{Role: model.RoleUser, Content: userText, CreatedAt: now}
	m.append(sess, userMsg)

	if agent.MemoryEnabled {
		if recall := m.recall(ctx, agent, userText); recall != "" {
			m.append(sess, model.Message{Role: model.RoleSystem, Content: recall, CreatedAt: time.Now()})
		}
	}

	req := &llm.CompletionRequest{
		Provider:    agent.DefaultProvider,
		Model:       agent.DefaultModel,
		Temperature: agent.Temperature,
		Messages:    toChatMessages(sess.state.Messages),
	}

	start := time.Now()
	var resp *llm.CompletionResponse
	if callback != nil {
		resp, err = m.gateway.CompleteStream(ctx, req, callback)
	} else {
		resp, err = m.gateway.Complete(ctx, req)
	}
	if err != nil {
		metrics.RecordCompletion(agent.DefaultProvider, agent.DefaultModel, "error", time.Since(start).Seconds(), 0, 0)
		return "", nil, fmt.Errorf("completion for agent %q: %w", agentID, err)
	}
	metrics.RecordCompletion(resp.Provider, resp.Model, "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)

	assistantMsg := model.Message{Role: model.RoleAssistant, Content: resp.Content, CreatedAt: time.Now()}
	m.append(sess, assistantMsg)
	sess.state.LastUpdated = assistantMsg.CreatedAt

	m.publish(key, userMsg)
	m.publish(key, assistantMsg)

	if agent.MemoryEnabled {
		// Fire and forget; a failed memory write must not fail the turn.
		go m.remember(agent, userText, resp.Content)
	}

	return resp.Content, sess.state.Clone(), nil
}

// ClearConversation truncates a session to its leading system message.
// Returns false, without error, when the session does not exist.
func (m *Manager) ClearConversation(agentID, userID, sessionID string) bool {
	key := model.SessionKey{AgentID: agentID, UserID: userID, SessionID: sessionID}
	sess, ok := m.store.lookup(key)
	if !ok {
		return false
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if len(sess.state.Messages) > 0 && sess.state.Messages[0].Role == model.RoleSystem {
		sess.state.Messages = sess.state.Messages[:1]
	} else {
		sess.state.Messages = nil
	}
	sess.state.LastUpdated = time.Now()
	return true
}

// History returns a copy of the session state, or model.ErrNotFound.
func (m *Manager) History(agentID, userID, sessionID string) (*model.SessionState, error) {
	key := model.SessionKey{AgentID: agentID, UserID: userID, SessionID: sessionID}
	sess, ok := m.store.lookup(key)
	if !ok {
		return nil, fmt.Errorf("session %s/%s/%s: %w", agentID, userID, sessionID, model.ErrNotFound)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state.Clone(), nil
}

// append adds a message under the session lock and counts it.
func (m *Manager) append(sess *session, msg model.Message) {
	sess.state.Messages = append(sess.state.Messages, msg)
	metrics.MessagesTotal.WithLabelValues(sess.state.AgentID, string(msg.Role)).Inc()
}

// recall queries the memory store and formats hits as a context block. The
// block is appended as a system message and persisted with the history.
func (m *Manager) recall(ctx context.Context, agent *model.AgentSpec, query string) string {
	entries, err := m.memory.Search(ctx, agent.ID, query, 5)
	if err != nil {
		m.log.Warn("memory search failed", zap.String("agent_id", agent.ID), zap.Error(err))
		return ""
	}
	if len(entries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Relevant context from memory:")
	for _, entry := range entries {
		b.WriteString("\n- ")
		b.WriteString(entry.Content)
	}
	return b.String()
}

// remember stores a summary of the exchange with its own timeout, detached
// from the request context.
func (m *Manager) remember(agent *model.AgentSpec, userText, reply string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	summary := fmt.Sprintf("User: %s\nAssistant: %s", userText, reply)
	metadata := map[string]string{"vector_store_id": agent.VectorStoreID}
	if err := m.memory.Store(ctx, agent.ID, summary, metadata); err != nil {
		m.log.Warn("memory store failed", zap.String("agent_id", agent.ID), zap.Error(err))
	}
}

// publish sends a message to the audit stream, detached from the request
// context so a slow broker cannot stall or fail the turn.
func (m *Manager) publish(key model.SessionKey, msg model.Message) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.publisher.PublishMessage(ctx, key, &msg); err != nil {
			m.log.Warn("audit publish failed", zap.String("session_id", key.SessionID), zap.Error(err))
		}
	}()
}

func toChatMessages(messages []model.Message) []llm.ChatMessage {
	out := make([]llm.ChatMessage, len(messages))
	for i, msg := range messages {
		out[i] = llm.ChatMessage{Role: string(msg.Role), Content: msg.Content}
	}
	return out
}
