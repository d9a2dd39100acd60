// Package main is the entry point for the orchestrator API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/config"
	"github.com/agentic-platform/orchestrator/internal/conversation"
	"github.com/agentic-platform/orchestrator/internal/handler"
	"github.com/agentic-platform/orchestrator/internal/llm"
	"github.com/agentic-platform/orchestrator/internal/memory"
	"github.com/agentic-platform/orchestrator/internal/middleware"
	natsclient "github.com/agentic-platform/orchestrator/internal/nats"
	"github.com/agentic-platform/orchestrator/internal/registry"
	"github.com/agentic-platform/orchestrator/internal/workflow"
	"github.com/agentic-platform/orchestrator/pkg/logger"
	"github.com/agentic-platform/orchestrator/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting orchestrator API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "orchestrator", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to NATS when configured. The audit stream is optional; without
	// it messages and run events are simply not recorded.
	var natsClient *natsclient.Client
	var publisher natsclient.Publisher = natsclient.NoopPublisher{}
	if cfg.NATSURL != "" {
		natsClient, err = natsclient.Connect(ctx, natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer natsClient.Close()

		streamManager := natsclient.NewStreamManager(natsClient)
		if err := streamManager.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure audit stream", zap.Error(err))
			os.Exit(1)
		}
		publisher = streamManager
	} else {
		log.Info("NATS not configured, audit stream disabled")
	}

	// Registries: load definitions from file when present, otherwise fall
	// back to the built-in agents and teams.
	agents := registry.NewAgentRegistry()
	teams := registry.NewTeamRegistry()
	loaded, err := registry.LoadFile(cfg.DefinitionsFile, agents, teams)
	if err != nil {
		log.Error("failed to load definitions", zap.String("file", cfg.DefinitionsFile), zap.Error(err))
		os.Exit(1)
	}
	if !loaded {
		if err := registry.RegisterAll(registry.Defaults(), agents, teams); err != nil {
			log.Error("failed to register default definitions", zap.Error(err))
			os.Exit(1)
		}
		log.Info("using built-in agent and team definitions")
	} else {
		log.Info("loaded definitions", zap.String("file", cfg.DefinitionsFile))
	}

	// Completion gateway. With no provider keys it serves deterministic mock
	// completions so the rest of the system stays exercisable.
	gateway := llm.NewGateway(llm.GatewayConfig{
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		DefaultProvider: cfg.DefaultProvider,
	}, log)

	// Conversation manager and workflow engine
	mem := memory.NewKeywordStore()
	conv := conversation.NewManager(agents, gateway, mem, publisher, log)
	engine := workflow.NewEngine(agents, teams, conv, publisher, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(natsClient)
	agentHandler := handler.NewAgentHandler(agents, conv, log)
	streamHandler := handler.NewStreamHandler(conv, log)
	teamHandler := handler.NewTeamHandler(teams, log)
	runHandler := handler.NewRunHandler(engine, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		// Agents and conversations
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", agentHandler.List)
			r.Post("/conversation", agentHandler.StartConversation)
			r.Post("/message", agentHandler.Message)
			r.Post("/message/stream", streamHandler.Message)
			r.Post("/clear-conversation", agentHandler.ClearConversation)
		})

		// Teams and workflow runs
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

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
