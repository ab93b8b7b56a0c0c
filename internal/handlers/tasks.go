package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/models"
	"github.com/taskflow/taskflow/internal/query"
	"github.com/taskflow/taskflow/internal/tasks"
	"github.com/taskflow/taskflow/internal/validation"
)

const (
	// MaxTaskTextLength is the maximum length for task text
	MaxTaskTextLength = 10000
	// MaxNotesLength is the maximum length for task notes
	MaxNotesLength = 50000
)

// TaskHandler handles task-related requests
type TaskHandler struct {
	repo   *tasks.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(repo *tasks.Repository, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{repo: repo, logger: logger, now: time.Now}
}

// RegisterRoutes registers task routes on the given router. The router
// should already carry the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods("GET")
	r.HandleFunc("", h.CreateTask).Methods("POST")
	r.HandleFunc("/{id}", h.GetTask).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateTask).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteTask).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteTask).Methods("POST")
	r.HandleFunc("/{id}/subtasks", h.AddSubtask).Methods("POST")
	r.HandleFunc("/{id}/subtasks/{subtaskID}/toggle", h.ToggleSubtask).Methods("POST")
	r.HandleFunc("/{id}/subtasks/{subtaskID}", h.DeleteSubtask).Methods("DELETE")
}

// CreateTaskRequest represents a create task request
type CreateTaskRequest struct {
	Text          string            `json:"text" validate:"required,min=1,max=10000"`
	Priority      models.Priority   `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate       *models.Date      `json:"dueDate,omitempty"`
	Category      string            `json:"category,omitempty" validate:"max=100"`
	IsImportant   bool              `json:"isImportant,omitempty"`
	Notes         string            `json:"notes,omitempty" validate:"max=50000"`
	RemindAt      *time.Time        `json:"remindAt,omitempty"`
	Recurrence    models.Recurrence `json:"recurrence,omitempty" validate:"omitempty,recurrence"`
	Tags          []string          `json:"tags,omitempty"`
	EstimatedTime *int              `json:"estimatedTime,omitempty" validate:"omitempty,min=1"`
}

// UpdateTaskRequest represents a partial task update. Nil fields are left
// untouched.
type UpdateTaskRequest struct {
	Text          *string            `json:"text,omitempty" validate:"omitempty,min=1,max=10000"`
	Priority      *models.Priority   `json:"priority,omitempty" validate:"omitempty,priority"`
	DueDate       *models.Date       `json:"dueDate,omitempty"`
	ClearDueDate  *bool              `json:"clearDueDate,omitempty"`
	Category      *string            `json:"category,omitempty" validate:"omitempty,max=100"`
	IsImportant   *bool              `json:"isImportant,omitempty"`
	Notes         *string            `json:"notes,omitempty" validate:"omitempty,max=50000"`
	RemindAt      *time.Time         `json:"remindAt,omitempty"`
	ClearRemindAt *bool              `json:"clearRemindAt,omitempty"`
	Recurrence    *models.Recurrence `json:"recurrence,omitempty" validate:"omitempty,recurrence"`
	Tags          []string           `json:"tags,omitempty"`
	EstimatedTime *int               `json:"estimatedTime,omitempty" validate:"omitempty,min=1"`
}

// ListTasksResponse carries the pipeline result together with the counters
// derived from the full list.
type ListTasksResponse struct {
	Tasks []*models.Task `json:"tasks"`
	Stats models.Stats   `json:"stats"`
}

// ListTasks runs the query pipeline over the current snapshot. All pipeline
// parameters arrive as query-string values and default to "show everything,
// newest first".
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	params, err := parseQueryParams(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	snapshot := h.repo.List()
	result := query.Apply(snapshot, params, h.now())

	respondJSON(w, http.StatusOK, ListTasksResponse{
		Tasks: result,
		Stats: models.CountStats(snapshot),
	})
}

// parseQueryParams validates and assembles the pipeline parameters from the
// request query string.
func parseQueryParams(r *http.Request) (query.Params, error) {
	q := r.URL.Query()
	params := query.Params{
		View:     query.ViewAll,
		Priority: query.FilterAll,
		Category: query.FilterAll,
		Due:      query.DueAll,
		Search:   q.Get("search"),
		Sort:     query.SortCreatedDesc,
	}

	if v := q.Get("view"); v != "" {
		if err := validation.ValidateView(v); err != nil {
			return query.Params{}, err
		}
		params.View = query.View(v)
	}
	if p := q.Get("priority"); p != "" && p != query.FilterAll {
		if err := validation.ValidatePriority(p); err != nil {
			return query.Params{}, err
		}
		params.Priority = p
	}
	if c := q.Get("category"); c != "" {
		params.Category = c
	}
	if d := q.Get("due"); d != "" {
		if err := validation.ValidateDueFilter(d); err != nil {
			return query.Params{}, err
		}
		params.Due = query.DueFilter(d)
	}
	if s := q.Get("sort"); s != "" {
		if err := validation.ValidateSortKey(s); err != nil {
			return query.Params{}, err
		}
		params.Sort = query.SortKey(s)
	}
	return params, nil
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", validationMessage(err))
		return
	}

	task := &models.Task{
		Text:          validation.SanitizeText(req.Text),
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		Category:      req.Category,
		IsImportant:   req.IsImportant,
		Notes:         validation.SanitizeText(req.Notes),
		RemindAt:      req.RemindAt,
		Recurrence:    req.Recurrence,
		Tags:          req.Tags,
		EstimatedTime: req.EstimatedTime,
	}
	if err := h.repo.Create(r.Context(), task); err != nil {
		respondRepoError(w, err)
		return
	}

	h.logger.Info("task_created", zap.String("task_id", task.ID))
	respondJSON(w, http.StatusCreated, task)
}

// GetTask returns a single task by id
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.repo.Get(mux.Vars(r)["id"])
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// UpdateTask applies a partial update to a task
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", validationMessage(err))
		return
	}

	task, err := h.repo.Get(mux.Vars(r)["id"])
	if err != nil {
		respondRepoError(w, err)
		return
	}

	if req.Text != nil {
		task.Text = validation.SanitizeText(*req.Text)
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.ClearDueDate != nil && *req.ClearDueDate {
		task.DueDate = nil
	}
	if req.Category != nil {
		task.Category = *req.Category
	}
	if req.IsImportant != nil {
		task.IsImportant = *req.IsImportant
	}
	if req.Notes != nil {
		task.Notes = validation.SanitizeText(*req.Notes)
	}
	if req.RemindAt != nil {
		task.RemindAt = req.RemindAt
	}
	if req.ClearRemindAt != nil && *req.ClearRemindAt {
		task.RemindAt = nil
	}
	if req.Recurrence != nil {
		task.Recurrence = *req.Recurrence
	}
	if req.Tags != nil {
		task.Tags = req.Tags
	}
	if req.EstimatedTime != nil {
		task.EstimatedTime = req.EstimatedTime
	}

	if err := h.repo.Update(r.Context(), task); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes a task
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.repo.Delete(r.Context(), id); err != nil {
		respondRepoError(w, err)
		return
	}
	h.logger.Info("task_deleted", zap.String("task_id", id))
	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// CompleteTaskResponse carries the toggled task and, when completing a
// recurring one, the spawned next occurrence.
type CompleteTaskResponse struct {
	Task    *models.Task `json:"task"`
	Spawned *models.Task `json:"spawned,omitempty"`
}

// CompleteTask toggles the completion state. Completing a recurring task
// spawns its next occurrence in the same operation.
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	toggled, spawned, err := h.repo.ToggleComplete(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondRepoError(w, err)
		return
	}

	fields := []zap.Field{
		zap.String("task_id", toggled.ID),
		zap.Bool("completed", toggled.Completed),
	}
	if spawned != nil {
		fields = append(fields, zap.String("spawned_id", spawned.ID))
	}
	h.logger.Info("task_toggled", fields...)

	respondJSON(w, http.StatusOK, CompleteTaskResponse{Task: toggled, Spawned: spawned})
}

// validationMessage flattens validator errors into a single readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errs, ok := err.(validator.ValidationErrors); ok {
		verrs = errs
	}
	if len(verrs) > 0 {
		return "Validation failed on field '" + verrs[0].Field() + "' (" + verrs[0].Tag() + ")"
	}
	return err.Error()
}
