package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/conversation"
	"github.com/agentic-platform/orchestrator/internal/middleware"
	"github.com/agentic-platform/orchestrator/internal/model"
	"github.com/agentic-platform/orchestrator/pkg/logger"
	"github.com/agentic-platform/orchestrator/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	conv   *conversation.Manager
	logger *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(conv *conversation.Manager, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		conv:   conv,
		logger: log,
	}
}

// Message handles POST /api/v1/agents/message/stream. The reply is streamed
// as SSE token events while the turn is in flight, followed by a done event
// carrying the persisted reply.
func (h *StreamHandler) Message(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

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

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	reply, _, err := h.conv.ProcessMessageStream(
		ctx, req.AgentID, req.UserID, req.SessionID, req.Message,
		func(token string, index int) error {
			// Consumer disconnect stops the stream cooperatively.
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			return sendSSEEvent(w, flusher, "token", &model.TokenEvent{
				Token: token,
				Index: index,
			})
		},
	)
	if err != nil {
		h.logger.Error("stream turn failed",
			zap.String("agent_id", req.AgentID),
			zap.String("session_id", req.SessionID),
			zap.Error(err),
		)
		sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    "stream_error",
			Message: err.Error(),
		})
		return
	}

	sendSSEEvent(w, flusher, "done", &model.SendMessageResponse{
		Response:  reply,
		Timestamp: time.Now(),
	})
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "event: %s\n", event)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
	flusher.Flush()

	return nil
}
