package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// MockClient is a deterministic keyword-based responder used when no
// provider key is configured. It keeps the platform usable for local
// development and demos; it is a degradation path, not an error.
type MockClient struct{}

// NewMockClient creates the canned responder.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Name returns the provider name.
func (c *MockClient) Name() string {
	return ProviderMock
}

// Models returns available models.
func (c *MockClient) Models() []string {
	return []string{"mock-responder"}
}

// respond picks a canned reply from the last user message. Rules are ordered
// most-specific first; the same input always yields the same output.
func (c *MockClient) respond(messages []ChatMessage) string {
	var last string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			last = messages[i].Content
			break
		}
	}
	lower := strings.ToLower(last)

	switch {
	case strings.Contains(lower, "review"):
		return "APPROVED. The draft is accurate, well organized, and ready to publish."
	case strings.Contains(lower, "research"):
		return "Research notes:\n- Key fact one, drawn from a primary source.\n- Key fact two, with supporting context.\n- Key fact three, noting an open question."
	case strings.Contains(lower, "write") || strings.Contains(lower, "draft") || strings.Contains(lower, "content"):
		return "# Draft\n\nThis is a structured draft developed from the supplied material, covering the main points in order with a short conclusion."
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! How can I help you today?"
	case last == "":
		return "I'm ready when you are."
	default:
		return fmt.Sprintf("Here is a response to your request: %s", truncate(last, 120))
	}
}

// Complete returns a canned reply.
func (c *MockClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	content := c.respond(req.Messages)
	return &CompletionResponse{
		Content:    content,
		Model:      "mock-responder",
		Provider:   ProviderMock,
		TokensIn:   promptTokens(req.Messages),
		TokensOut:  len(content) / 4,
		StopReason: "end_turn",
	}, nil
}

// CompleteStream returns the canned reply in word-sized chunks.
func (c *MockClient) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	resp, err := c.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	for i, word := range strings.SplitAfter(resp.Content, " ") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := callback(word, i); err != nil {
			return nil, err
		}
	}
	resp.LatencyMs = time.Since(start).Milliseconds()
	return resp, nil
}

func promptTokens(messages []ChatMessage) int {
	total := 0
	for _, msg := range messages {
		total += len(msg.Content) / 4
	}
	return total
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
