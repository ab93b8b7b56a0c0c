package handlers

import (
	"net/http"
	"testing"
)

func TestTheme_DefaultAndRoundTrip(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	status, envelope := doJSON(t, router, http.MethodGet, "/api/v1/theme", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if theme := dataField(t, envelope)["theme"]; theme != DefaultTheme {
		t.Errorf("theme = %v, want default %q", theme, DefaultTheme)
	}

	status, _ = doJSON(t, router, http.MethodPut, "/api/v1/theme", map[string]string{"theme": "dark"})
	if status != http.StatusOK {
		t.Fatalf("set theme status = %d, want 200", status)
	}

	status, envelope = doJSON(t, router, http.MethodGet, "/api/v1/theme", nil)
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if theme := dataField(t, envelope)["theme"]; theme != "dark" {
		t.Errorf("theme = %v, want dark", theme)
	}
}

func TestSetTheme_RejectsUnknown(t *testing.T) {
	t.Parallel()
	router, _ := newTestRouter(t)

	status, _ := doJSON(t, router, http.MethodPut, "/api/v1/theme", map[string]string{"theme": "sepia"})
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", status)
	}
}
