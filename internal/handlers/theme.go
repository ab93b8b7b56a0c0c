package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/store"
	"github.com/taskflow/taskflow/internal/validation"
)

// DefaultTheme is returned before any preference has been saved.
const DefaultTheme = "light"

// ThemeHandler handles the UI theme preference
type ThemeHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewThemeHandler creates a new theme handler
func NewThemeHandler(st store.Store, logger *zap.Logger) *ThemeHandler {
	return &ThemeHandler{store: st, logger: logger}
}

// RegisterRoutes registers theme routes on the given router
func (h *ThemeHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/theme", h.GetTheme).Methods("GET")
	r.HandleFunc("/theme", h.SetTheme).Methods("PUT")
}

// ThemeRequest represents a theme change request
type ThemeRequest struct {
	Theme string `json:"theme" validate:"required,theme"`
}

// GetTheme returns the saved theme preference, falling back to the default
func (h *ThemeHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	value, found, err := h.store.Get(r.Context(), store.KeyTheme)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to read theme")
		return
	}
	theme := DefaultTheme
	if found && validation.ValidateTheme(string(value)) == nil {
		theme = string(value)
	}
	respondJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// SetTheme saves the theme preference
func (h *ThemeHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}
	if err := validation.Validate.Struct(&req); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", validationMessage(err))
		return
	}
	if err := h.store.Set(r.Context(), store.KeyTheme, []byte(req.Theme)); err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to save theme")
		return
	}
	h.logger.Info("theme_changed", zap.String("theme", req.Theme))
	respondJSON(w, http.StatusOK, map[string]string{"theme": req.Theme})
}
