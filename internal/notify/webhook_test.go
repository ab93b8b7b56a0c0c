package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/models"
)

func TestFromReminder(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	opts := models.ReminderOptions{TaskID: "t1", Title: "call dentist", Body: "Priority: medium"}
	n := FromReminder(opts, now)

	if n.ID == "" {
		t.Error("notification did not get an id")
	}
	if n.TaskID != "t1" || n.Title != "call dentist" || n.Body != "Priority: medium" {
		t.Errorf("payload fields lost: %+v", n)
	}
	if len(n.Actions) != 2 || n.Actions[0] != ActionView || n.Actions[1] != ActionComplete {
		t.Errorf("actions = %v, want [view complete]", n.Actions)
	}
	if !n.CreatedAt.Equal(now) {
		t.Errorf("createdAt = %v, want %v", n.CreatedAt, now)
	}
}

func TestWebhookDeliverer_Deliver(t *testing.T) {
	t.Parallel()

	var received Notification
	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("webhook got malformed body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":""}`))
	}))
	defer webhook.Close()

	d := NewWebhookDeliverer(webhook.URL, "http://unused", zap.NewNop())
	n := Notification{ID: "n1", TaskID: "t1", Title: "x", Actions: []Action{ActionView, ActionComplete}}
	if err := d.Deliver(context.Background(), n); err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if received.ID != "n1" || received.TaskID != "t1" {
		t.Errorf("webhook received %+v", received)
	}
}

func TestWebhookDeliverer_RoutesCompleteAction(t *testing.T) {
	t.Parallel()

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"action":"complete"}`))
	}))
	defer webhook.Close()

	completeCalls := make(chan string, 1)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		completeCalls <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer api.Close()

	d := NewWebhookDeliverer(webhook.URL, api.URL, zap.NewNop())
	n := Notification{ID: "n1", TaskID: "task-42"}
	if err := d.Deliver(context.Background(), n); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	select {
	case path := <-completeCalls:
		if want := "/api/v1/tasks/task-42/complete"; path != want {
			t.Errorf("complete routed to %s, want %s", path, want)
		}
	default:
		t.Fatal("complete action was not routed to the task API")
	}
}

func TestWebhookDeliverer_ErrorStatuses(t *testing.T) {
	t.Parallel()

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer webhook.Close()

	d := NewWebhookDeliverer(webhook.URL, "http://unused", zap.NewNop())
	if err := d.Deliver(context.Background(), Notification{ID: "n1"}); err == nil {
		t.Error("expected error for webhook 5xx response")
	}
}
