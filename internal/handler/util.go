package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/agentic-platform/orchestrator/internal/model"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

// writeDomainError maps domain errors to HTTP statuses: unknown ids are
// client errors, config problems are bad requests, provider outages are
// upstream failures the caller may retry.
func writeDomainError(w http.ResponseWriter, err error) {
	var cfgErr *model.ConfigError
	var provErr *model.ProviderError

	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &provErr):
		writeError(w, http.StatusBadGateway, "completion service unavailable, try again")
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
