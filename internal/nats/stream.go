package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/agentic-platform/orchestrator/internal/model"
)

const (
	// StreamName is the name of the orchestrator audit stream.
	StreamName = "ORCHESTRATOR"

	// SubjectPrefix is the prefix for all orchestrator subjects.
	SubjectPrefix = "orch"
)

// Publisher is the audit-trail sink for conversation messages and workflow
// run transitions. Session and run state live in process; the stream is a
// durable record, so publish failures never fail the user-facing call.
type Publisher interface {
	PublishMessage(ctx context.Context, key model.SessionKey, msg *model.Message) error
	PublishRunEvent(ctx context.Context, event *model.RunEvent) error
}

// NoopPublisher satisfies Publisher when NATS is not configured.
type NoopPublisher struct{}

// PublishMessage discards the message.
func (NoopPublisher) PublishMessage(ctx context.Context, key model.SessionKey, msg *model.Message) error {
	return nil
}

// PublishRunEvent discards the event.
func (NoopPublisher) PublishRunEvent(ctx context.Context, event *model.RunEvent) error {
	return nil
}

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the orchestrator stream exists with proper configuration.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	// Check if stream exists
	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		MaxBytes:    10 * 1024 * 1024 * 1024, // 10GB
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Conversation messages and workflow run events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// MessageSubject returns the subject for a conversation message.
func MessageSubject(key model.SessionKey, role model.Role) string {
	return fmt.Sprintf("%s.agent.%s.%s.%s.msg.%s", SubjectPrefix, key.AgentID, key.UserID, key.SessionID, role)
}

// RunEventSubject returns the subject for a workflow run event.
func RunEventSubject(event *model.RunEvent) string {
	return fmt.Sprintf("%s.run.%s.%s.%s", SubjectPrefix, event.TeamID, event.RunID, event.Type)
}

// PublishMessage publishes a conversation message to the audit stream.
func (m *StreamManager) PublishMessage(ctx context.Context, key model.SessionKey, msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if _, err := m.client.JetStream().Publish(ctx, MessageSubject(key, msg.Role), data); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

// PublishRunEvent publishes a workflow run transition to the audit stream.
func (m *StreamManager) PublishRunEvent(ctx context.Context, event *model.RunEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}

	if _, err := m.client.JetStream().Publish(ctx, RunEventSubject(event), data); err != nil {
		return fmt.Errorf("failed to publish run event: %w", err)
	}
	return nil
}
