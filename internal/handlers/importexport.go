package handlers

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/tasks"
)

// maxImportBytes bounds the accepted import payload.
const maxImportBytes = 10 << 20

// RegisterDataRoutes registers the whole-list export and import routes on
// the given router.
func (h *TaskHandler) RegisterDataRoutes(r *mux.Router) {
	r.HandleFunc("/export", h.ExportTasks).Methods("GET")
	r.HandleFunc("/import", h.ImportTasks).Methods("POST")
}

// ExportTasks returns the full task list as a versioned payload suitable
// for re-import.
func (h *TaskHandler) ExportTasks(w http.ResponseWriter, r *http.Request) {
	payload := tasks.Export(h.repo.List())
	respondJSON(w, http.StatusOK, payload)
}

// ImportTasks replaces the entire task list with the uploaded payload.
// Records are normalized on the way in, so partial or legacy exports load
// with defaults filled.
func (h *TaskHandler) ImportTasks(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Failed to read request body")
		return
	}

	list, err := tasks.ParseImport(data, h.now())
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if err := h.repo.Replace(r.Context(), list); err != nil {
		respondRepoError(w, err)
		return
	}

	h.logger.Info("tasks_imported", zap.Int("count", len(list)))
	respondJSON(w, http.StatusOK, map[string]int{"imported": len(list)})
}
