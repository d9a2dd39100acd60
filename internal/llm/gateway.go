package llm

import (
	"context"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/model"
	"github.com/agentic-platform/orchestrator/pkg/logger"
)

// GatewayConfig selects which provider clients the gateway constructs.
type GatewayConfig struct {
	AnthropicAPIKey string
	OpenAIAPIKey    string
	DefaultProvider string
}

// Gateway fronts the configured completion providers. It normalizes provider
// failures into model.ProviderError and, when no key is configured for the
// requested provider, falls back to the deterministic mock responder instead
// of failing the caller. It never retries; retry policy belongs to callers.
type Gateway struct {
	clients         map[string]Client
	mock            *MockClient
	defaultProvider string
	log             *logger.Logger
}

// NewGateway builds clients for every provider with a configured key.
func NewGateway(cfg GatewayConfig, log *logger.Logger) *Gateway {
	g := &Gateway{
		clients:         make(map[string]Client),
		mock:            NewMockClient(),
		defaultProvider: cfg.DefaultProvider,
		log:             log,
	}

	if cfg.AnthropicAPIKey != "" {
		if client, err := NewAnthropicClient(cfg.AnthropicAPIKey); err == nil {
			g.clients[ProviderAnthropic] = client
		} else {
			log.Warn("failed to create Anthropic client", zap.Error(err))
		}
	}
	if cfg.OpenAIAPIKey != "" {
		if client, err := NewOpenAIClient(cfg.OpenAIAPIKey); err == nil {
			g.clients[ProviderOpenAI] = client
		} else {
			log.Warn("failed to create OpenAI client", zap.Error(err))
		}
	}

	if len(g.clients) == 0 {
		log.Warn("no provider keys configured, completions served by mock responder")
	}
	return g
}

// clientFor resolves the client for a request's provider, falling back to
// the default provider and then to the mock responder.
func (g *Gateway) clientFor(provider string) Client {
	if provider == ProviderMock {
		return g.mock
	}
	if client, ok := g.clients[provider]; ok {
		return client
	}
	if client, ok := g.clients[g.defaultProvider]; ok {
		return client
	}
	// Any single configured provider serves requests for the missing one.
	for _, client := range g.clients {
		return client
	}
	return g.mock
}

// Complete routes the request to the resolved provider.
func (g *Gateway) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	client := g.clientFor(req.Provider)
	resp, err := client.Complete(ctx, req)
	if err != nil {
		return nil, normalizeError(client.Name(), err)
	}
	return resp, nil
}

// CompleteStream routes the streaming request to the resolved provider.
func (g *Gateway) CompleteStream(ctx context.Context, req *CompletionRequest, callback StreamCallback) (*CompletionResponse, error) {
	client := g.clientFor(req.Provider)
	resp, err := client.CompleteStream(ctx, req, callback)
	if err != nil {
		return nil, normalizeError(client.Name(), err)
	}
	return resp, nil
}

// Providers returns the names of the configured real providers.
func (g *Gateway) Providers() []string {
	names := make([]string, 0, len(g.clients))
	for name := range g.clients {
		names = append(names, name)
	}
	return names
}

// normalizeError wraps provider SDK failures into model.ProviderError.
// Context cancellation and deadline errors pass through untouched so callers
// can tell a timeout from an upstream outage.
func normalizeError(provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	perr := &model.ProviderError{Provider: provider, Message: err.Error()}

	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) {
		perr.Status = openaiErr.HTTPStatusCode
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		perr.Status = anthropicErr.StatusCode
	}
	return perr
}
