package handlers

import (
	"net/http"
)

// Sync acknowledges a sync request without doing any work. The endpoint
// exists so clients can keep their sync flow wired while server-side
// reconciliation is not implemented; syncStatus bookkeeping on tasks is
// preserved for it.
func (h *TaskHandler) Sync(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("sync_requested")
	respondJSON(w, http.StatusOK, map[string]any{
		"synced":  false,
		"message": "Sync is not enabled on this server",
	})
}
