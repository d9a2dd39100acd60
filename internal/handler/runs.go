package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/middleware"
	"github.com/agentic-platform/orchestrator/internal/model"
	"github.com/agentic-platform/orchestrator/internal/workflow"
	"github.com/agentic-platform/orchestrator/pkg/logger"
)

// RunHandler handles workflow run endpoints.
type RunHandler struct {
	engine *workflow.Engine
	logger *logger.Logger
}

// NewRunHandler creates a new run handler.
func NewRunHandler(engine *workflow.Engine, log *logger.Logger) *RunHandler {
	return &RunHandler{
		engine: engine,
		logger: log,
	}
}

// Start handles POST /api/v1/teams/{id}/runs
func (h *RunHandler) Start(w http.ResponseWriter, r *http.Request) {
	teamID := chi.URLParam(r, "id")

	var req model.StartRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateMessageContent(req.Input); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.engine.StartRun(r.Context(), teamID, req.Input)
	if err != nil {
		h.logger.Error("failed to start run", zap.String("team_id", teamID), zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, run)
}

// Get handles GET /api/v1/runs/{id}
func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	run, err := h.engine.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Advance handles POST /api/v1/runs/{id}/advance
func (h *RunHandler) Advance(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")

	var req model.AdvanceRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.engine.Advance(r.Context(), runID, req.Approved, req.Feedback)
	if err != nil {
		h.logger.Error("failed to advance run", zap.String("run_id", runID), zap.Error(err))
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

// Abort handles POST /api/v1/runs/{id}/abort
func (h *RunHandler) Abort(w http.ResponseWriter, r *http.Request) {
	run, err := h.engine.Abort(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
