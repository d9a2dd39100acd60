package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/agentic-platform/orchestrator/internal/registry"
	"github.com/agentic-platform/orchestrator/pkg/logger"
)

// TeamHandler handles team metadata endpoints.
type TeamHandler struct {
	teams  *registry.TeamRegistry
	logger *logger.Logger
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(teams *registry.TeamRegistry, log *logger.Logger) *TeamHandler {
	return &TeamHandler{
		teams:  teams,
		logger: log,
	}
}

// List handles GET /api/v1/teams. Only active teams are returned unless
// ?all=1 is passed.
func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("all") == "1"
	writeJSON(w, http.StatusOK, h.teams.List(includeInactive))
}

// Get handles GET /api/v1/teams/{id}
func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	team, err := h.teams.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// Delete handles DELETE /api/v1/teams/{id}. Deletion is soft unless ?hard=1
// is passed.
func (h *TeamHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var err error
	if r.URL.Query().Get("hard") == "1" {
		err = h.teams.HardDelete(id)
	} else {
		err = h.teams.SoftDelete(id)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.logger.Info("team deleted", zap.String("team_id", id), zap.Bool("hard", r.URL.Query().Get("hard") == "1"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
