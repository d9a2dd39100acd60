// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/conversation"
	"github.com/agentic-platform/orchestrator/internal/middleware"
	"github.com/agentic-platform/orchestrator/internal/model"
	"github.com/agentic-platform/orchestrator/internal/registry"
	"github.com/agentic-platform/orchestrator/pkg/logger"
)

// AgentHandler handles agent listing and single-agent chat endpoints.
type AgentHandler struct {
	agents *registry.AgentRegistry
	conv   *conversation.Manager
	logger *logger.Logger
}

// NewAgentHandler creates a new agent handler.
func NewAgentHandler(agents *registry.AgentRegistry, conv *conversation.Manager, log *logger.Logger) *AgentHandler {
	return &AgentHandler{
		agents: agents,
		conv:   conv,
		logger: log,
	}
}

// List handles GET /api/v1/agents
func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	specs := h.agents.List()
	configs := make([]model.AgentConfig, len(specs))
	for i, spec := range specs {
		configs[i] = spec.Config()
	}
	writeJSON(w, http.StatusOK, configs)
}

// StartConversation handles POST /api/v1/agents/conversation
func (h *AgentHandler) StartConversation(w http.ResponseWriter, r *http.Request) {
	var req model.StartConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateIdentifier(req.AgentID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateIdentifier(req.UserID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sessionID, reply, err := h.conv.StartConversation(r.Context(), req.AgentID, req.UserID, req.InitialMessage)
	if err != nil {
		h.logger.Error("failed to start conversation", zap.String("agent_id", req.AgentID), zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, &model.StartConversationResponse{
		SessionID:       sessionID,
		InitialResponse: reply,
	})
}

// Message handles POST /api/v1/agents/message
func (h *AgentHandler) Message(w http.ResponseWriter, r *http.Request) {
	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateIdentifier(req.AgentID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reply, _, err := h.conv.ProcessMessage(r.Context(), req.AgentID, req.UserID, req.SessionID, req.Message)
	if err != nil {
		h.logger.Error("failed to process message",
			zap.String("agent_id", req.AgentID),
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, &model.SendMessageResponse{
		Response:  reply,
		Timestamp: time.Now(),
	})
}

// ClearConversation handles POST /api/v1/agents/clear-conversation
func (h *AgentHandler) ClearConversation(w http.ResponseWriter, r *http.Request) {
	var req model.ClearConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cleared := h.conv.ClearConversation(req.AgentID, req.UserID, req.SessionID)
	writeJSON(w, http.StatusOK, &model.ClearConversationResponse{Success: cleared})
}
