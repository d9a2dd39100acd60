package nats

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentic-platform/orchestrator/internal/model"
)

func TestMessageSubject(t *testing.T) {
	key := model.SessionKey{AgentID: "assistant", UserID: "user-1", SessionID: "sess-1"}
	assert.Equal(t, "orch.agent.assistant.user-1.sess-1.msg.user", MessageSubject(key, model.RoleUser))
	assert.Equal(t, "orch.agent.assistant.user-1.sess-1.msg.assistant", MessageSubject(key, model.RoleAssistant))
}

func TestRunEventSubject(t *testing.T) {
	event := &model.RunEvent{RunID: "run-1", TeamID: "research-report", Type: model.RunEventStepCompleted}
	assert.Equal(t, "orch.run.research-report.run-1.step_completed", RunEventSubject(event))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	ctx := context.Background()

	assert.NoError(t, p.PublishMessage(ctx, model.SessionKey{}, &model.Message{}))
	assert.NoError(t, p.PublishRunEvent(ctx, &model.RunEvent{}))
}
