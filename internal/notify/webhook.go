package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// WebhookDeliverer posts notifications to the user-facing webhook and
// routes the action it answers with back to the core. A webhook answering
// with the complete action triggers a toggle-completion call against the
// task API for the notification's target task.
type WebhookDeliverer struct {
	client     *resty.Client
	webhookURL string
	apiBaseURL string
	logger     *zap.Logger
}

// deliveryResponse is the webhook's answer: the action the user chose, if
// any. An empty action (or a missing body) means the notification was shown
// with no follow-up.
type deliveryResponse struct {
	Action Action `json:"action"`
}

// NewWebhookDeliverer builds a deliverer posting to webhookURL and routing
// complete actions to the task API at apiBaseURL.
func NewWebhookDeliverer(webhookURL, apiBaseURL string, logger *zap.Logger) *WebhookDeliverer {
	client := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &WebhookDeliverer{
		client:     client,
		webhookURL: webhookURL,
		apiBaseURL: apiBaseURL,
		logger:     logger,
	}
}

// Deliver posts the notification and handles the returned action.
func (d *WebhookDeliverer) Deliver(ctx context.Context, n Notification) error {
	var answer deliveryResponse
	resp, err := d.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(n).
		SetResult(&answer).
		Post(d.webhookURL)
	if err != nil {
		return fmt.Errorf("failed to deliver notification %s: %w", n.ID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("webhook rejected notification %s: status %d", n.ID, resp.StatusCode())
	}

	d.logger.Info("notification_delivered",
		zap.String("notification_id", n.ID),
		zap.String("task_id", n.TaskID),
		zap.String("action", string(answer.Action)),
	)

	if answer.Action == ActionComplete {
		return d.routeComplete(ctx, n.TaskID)
	}
	return nil
}

// routeComplete forwards the complete action to the task API as a
// toggle-completion call.
func (d *WebhookDeliverer) routeComplete(ctx context.Context, taskID string) error {
	url := fmt.Sprintf("%s/api/v1/tasks/%s/complete", d.apiBaseURL, taskID)
	resp, err := d.client.R().
		SetContext(ctx).
		Post(url)
	if err != nil {
		return fmt.Errorf("failed to route complete action for task %s: %w", taskID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("task API rejected complete action for task %s: status %d", taskID, resp.StatusCode())
	}

	d.logger.Info("complete_action_routed", zap.String("task_id", taskID))
	return nil
}
