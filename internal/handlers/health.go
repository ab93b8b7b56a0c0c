package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/store"
)

// QueueChecker reports whether the notification queue connection is alive.
type QueueChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	store  store.Store
	queue  QueueChecker
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler. queue may be nil when the
// server runs without a notification queue.
func NewHealthHandler(st store.Store, queue QueueChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: st, queue: queue, logger: logger}
}

// Health reports the status of the store and, when configured, the queue.
// Any failing dependency turns the response into a 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	status := http.StatusOK
	checks := map[string]string{}

	if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("health_store_failed", zap.Error(err))
		checks["store"] = "unhealthy"
		status = http.StatusServiceUnavailable
	} else {
		checks["store"] = "healthy"
	}

	if h.queue != nil {
		if err := h.queue.HealthCheck(ctx); err != nil {
			h.logger.Warn("health_queue_failed", zap.Error(err))
			checks["queue"] = "unhealthy"
			status = http.StatusServiceUnavailable
		} else {
			checks["queue"] = "healthy"
		}
	}

	overall := "healthy"
	if status != http.StatusOK {
		overall = "unhealthy"
	}
	respondJSON(w, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
