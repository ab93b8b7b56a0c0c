// Package handlers implements the HTTP API surface. Handlers translate
// requests into repository and pipeline calls and wrap every response in the
// standard JSON envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/taskflow/taskflow/internal/tasks"
)

// respondJSON sends a success JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondJSONError sends an error JSON response
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   message,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondRepoError maps repository sentinel errors to HTTP statuses. Anything
// unrecognized is a persistence failure and surfaces as a 500.
func respondRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tasks.ErrNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, tasks.ErrEmptyText):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	case errors.Is(err, tasks.ErrImportFormat):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to persist tasks")
	}
}
