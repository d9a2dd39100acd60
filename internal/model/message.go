package model

import (
	"time"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in a conversation. Messages are
// immutable once appended; ordering is chronological, oldest first.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionKey identifies one conversation between a user and an agent.
// It is used as a map key, so it must stay a comparable value type.
type SessionKey struct {
	AgentID   string
	UserID    string
	SessionID string
}

// SessionState is the conversational state for one session key. It is owned
// by the conversation manager; nothing else mutates it. Messages are only
// ever appended or truncated back to the seed system message.
type SessionState struct {
	SessionID   string    `json:"session_id"`
	AgentID     string    `json:"agent_id"`
	UserID      string    `json:"user_id"`
	Messages    []Message `json:"messages"`
	LastUpdated time.Time `json:"last_updated"`
}

// Key returns the composite key for this session.
func (s *SessionState) Key() SessionKey {
	return SessionKey{AgentID: s.AgentID, UserID: s.UserID, SessionID: s.SessionID}
}

// Clone returns a deep copy safe for callers to hold after the session lock
// is released.
func (s *SessionState) Clone() *SessionState {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return &clone
}

// StartConversationRequest begins a new session with an agent.
type StartConversationRequest struct {
	AgentID        string `json:"agent_id"`
	UserID         string `json:"user_id"`
	InitialMessage string `json:"initial_message,omitempty"`
}

// StartConversationResponse returns the new session id and, when an initial
// message was supplied, the agent's first reply.
type StartConversationResponse struct {
	SessionID       string `json:"session_id"`
	InitialResponse string `json:"initial_response,omitempty"`
}

// SendMessageRequest is one chat turn addressed to an agent session.
type SendMessageRequest struct {
	AgentID   string `json:"agent_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Model     string `json:"model,omitempty"`
}

// SendMessageResponse carries the assistant reply for a chat turn.
type SendMessageResponse struct {
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// ClearConversationRequest truncates a session back to its system seed.
type ClearConversationRequest struct {
	AgentID   string `json:"agent_id"`
	UserID    string `json:"user_id"`
	SessionID string `json:"session_id"`
}

// ClearConversationResponse reports whether a session was found and cleared.
type ClearConversationResponse struct {
	Success bool `json:"success"`
}

// TokenEvent is one incremental chunk of a streamed reply.
type TokenEvent struct {
	Token string `json:"token"`
	Index int    `json:"index"`
}

// ErrorEvent is sent on an SSE stream when a turn fails.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HeartbeatEvent keeps idle SSE connections alive.
type HeartbeatEvent struct {
	Timestamp time.Time `json:"timestamp"`
}
