// The notifier consumes queued reminders and delivers them to the configured
// webhook. Acknowledgement is tied to delivery: a failed webhook call requeues
// the reminder for a later attempt.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/logger"
	"github.com/taskflow/taskflow/internal/notify"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.LoadNotifier()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.NotifierDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode, false)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_notifier",
		zap.Bool("debug_mode", debugMode),
		zap.String("webhook_url", cfg.NotifyWebhookURL),
		zap.Int("prefetch", cfg.NotifyPrefetch),
	)

	queue, err := connectQueue(cfg.RabbitMQURL, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
	}
	defer func() {
		if err := queue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	deliverer := notify.NewWebhookDeliverer(cfg.NotifyWebhookURL, cfg.BaseURL, zapLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deliveries, err := queue.Consume(ctx, cfg.NotifyPrefetch)
	if err != nil {
		zapLogger.Fatal("failed_to_start_consumer", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range deliveries {
			if err := deliverer.Deliver(ctx, d.Notification); err != nil {
				zapLogger.Warn("delivery_failed_requeueing",
					zap.String("notification_id", d.Notification.ID),
					zap.String("task_id", d.Notification.TaskID),
					zap.Error(err),
				)
				if err := d.Nack(true); err != nil {
					zapLogger.Error("failed_to_nack_delivery", zap.Error(err))
				}
				continue
			}
			if err := d.Ack(); err != nil {
				zapLogger.Error("failed_to_ack_delivery", zap.Error(err))
				continue
			}
			zapLogger.Info("reminder_delivered",
				zap.String("notification_id", d.Notification.ID),
				zap.String("task_id", d.Notification.TaskID),
			)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		zapLogger.Info("notifier_shutting_down")
		cancel()
		select {
		case <-done:
		case <-time.After(10 * time.Second):
			zapLogger.Warn("consumer_did_not_drain_in_time")
		}
	case <-done:
		zapLogger.Warn("delivery_channel_closed")
	}

	zapLogger.Info("notifier_exited")
}

// connectQueue dials the broker with exponential backoff.
func connectQueue(amqpURL string, zapLogger *zap.Logger) (*notify.Queue, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		queue, err := notify.NewQueue(amqpURL)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return queue, nil
		}
		lastErr = err
		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > 30*time.Second {
			delay = 30 * time.Second
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", maxRetries),
			zap.Error(err),
			zap.Duration("retry_delay", delay),
		)
		time.Sleep(delay)
	}
	return nil, lastErr
}
