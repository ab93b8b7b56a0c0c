package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/taskflow/taskflow/internal/models"
)

func TestExportImport_RoundTrip(t *testing.T) {
	t.Parallel()
	router, repo := newTestRouter(t)

	ctx := context.Background()
	for _, text := range []string{"One", "Two"} {
		if err := repo.Create(ctx, &models.Task{Text: text}); err != nil {
			t.Fatalf("Create(%q) error = %v", text, err)
		}
	}

	status, envelope := doJSON(t, router, http.MethodGet, "/api/v1/export", nil)
	if status != http.StatusOK {
		t.Fatalf("export status = %d", status)
	}
	payload := dataField(t, envelope)
	if payload["version"] != "1.0" {
		t.Errorf("version = %v, want 1.0", payload["version"])
	}
	exported, ok := payload["tasks"].([]any)
	if !ok || len(exported) != 2 {
		t.Fatalf("exported tasks = %v, want 2 entries", payload["tasks"])
	}

	// Importing the export replaces the list wholesale.
	status, envelope = doJSON(t, router, http.MethodPost, "/api/v1/import", payload)
	if status != http.StatusOK {
		t.Fatalf("import status = %d: %v", status, envelope)
	}
	if count := dataField(t, envelope)["imported"]; count != float64(2) {
		t.Errorf("imported = %v, want 2", count)
	}
	if got := len(repo.List()); got != 2 {
		t.Errorf("repo holds %d tasks after import, want 2", got)
	}
}

func TestImport_RejectsMalformedPayload(t *testing.T) {
	t.Parallel()
	router, repo := newTestRouter(t)

	if err := repo.Create(context.Background(), &models.Task{Text: "Survivor"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tests := []struct {
		name string
		body any
	}{
		{"no tasks key", map[string]any{"foo": 1}},
		{"tasks not an array", map[string]any{"version": "1.0", "tasks": "nope"}},
		{"tasks null", map[string]any{"version": "1.0", "tasks": nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := doJSON(t, router, http.MethodPost, "/api/v1/import", tt.body)
			if status != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", status)
			}
		})
	}

	// The existing list is untouched by rejected imports.
	if got := len(repo.List()); got != 1 {
		t.Errorf("repo holds %d tasks, want 1", got)
	}
}
