package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/tasks"
	"github.com/taskflow/taskflow/internal/validation"
)

// AddSubtaskRequest represents an add subtask request
type AddSubtaskRequest struct {
	Text string `json:"text" validate:"required,min=1,max=10000"`
}

// AddSubtask appends a new subtask to a task
func (h *TaskHandler) AddSubtask(w http.ResponseWriter, r *http.Request) {
	var req AddSubtaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", validationMessage(err))
		return
	}
	text := validation.SanitizeText(req.Text)
	if text == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", tasks.ErrEmptyText.Error())
		return
	}

	task, err := h.repo.Get(mux.Vars(r)["id"])
	if err != nil {
		respondRepoError(w, err)
		return
	}
	sub := task.AddSubtask(text)
	if err := h.repo.Update(r.Context(), task); err != nil {
		respondRepoError(w, err)
		return
	}

	h.logger.Info("subtask_added",
		zap.String("task_id", task.ID),
		zap.String("subtask_id", sub.ID),
	)
	respondJSON(w, http.StatusCreated, task)
}

// ToggleSubtask flips a subtask's completion. When a task's checklist
// becomes fully complete the parent is completed too, and unchecking any
// item reopens it.
func (h *TaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, err := h.repo.Get(vars["id"])
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if !task.ToggleSubtask(vars["subtaskID"], h.now()) {
		respondJSONError(w, http.StatusNotFound, "Not Found", "subtask not found")
		return
	}
	if err := h.repo.Update(r.Context(), task); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteSubtask removes a subtask from a task
func (h *TaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	task, err := h.repo.Get(vars["id"])
	if err != nil {
		respondRepoError(w, err)
		return
	}
	task.DeleteSubtask(vars["subtaskID"])
	if err := h.repo.Update(r.Context(), task); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}
