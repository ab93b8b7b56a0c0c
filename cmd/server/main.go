package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/zap"

	"github.com/taskflow/taskflow/internal/config"
	"github.com/taskflow/taskflow/internal/handlers"
	"github.com/taskflow/taskflow/internal/logger"
	"github.com/taskflow/taskflow/internal/middleware"
	"github.com/taskflow/taskflow/internal/notify"
	"github.com/taskflow/taskflow/internal/scheduler"
	"github.com/taskflow/taskflow/internal/store"
	"github.com/taskflow/taskflow/internal/tasks"
	"github.com/taskflow/taskflow/internal/telemetry"
)

const serviceName = "taskflow-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(debugMode, false)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("frontend_url", cfg.FrontendURL),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	// Initialize OpenTelemetry if enabled
	if cfg.OTELEnabled {
		if cfg.OTELEndpoint == "" {
			zapLogger.Warn("otel_enabled_but_endpoint_not_configured")
		} else {
			shutdown, err := telemetry.Init(context.Background(), serviceName, cfg.OTELEndpoint)
			if err != nil {
				zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
			} else {
				zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					if err := shutdown(shutdownCtx); err != nil {
						zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
					}
				}()
			}
		}
	}

	// Connect to the store. It is the system of record, so failure is fatal.
	st, err := store.NewRedisStore(cfg.RedisURL, cfg.StorePrefix)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
	}
	defer func() {
		if err := st.Close(); err != nil {
			zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_redis")

	repo := tasks.NewRepository(st, zapLogger)
	loadCtx, loadCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.Load(loadCtx); err != nil {
		loadCancel()
		zapLogger.Fatal("failed_to_load_tasks", zap.Error(err))
	}
	loadCancel()

	// Connect the notification queue when configured. Retry with backoff to
	// ride out broker startup delays; without a broker reminders are logged.
	var notifier notify.Notifier
	var queue *notify.Queue
	if cfg.RabbitMQURL != "" {
		queue, err = connectQueue(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := queue.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		notifier = queue
	} else {
		zapLogger.Warn("rabbitmq_not_configured_logging_reminders")
		notifier = notify.NotifierFunc(func(_ context.Context, n notify.Notification) error {
			zapLogger.Info("reminder_due",
				zap.String("task_id", n.TaskID),
				zap.String("title", n.Title),
				zap.String("body", n.Body),
			)
			return nil
		})
	}

	// Start the reminder scheduler.
	schedCtx, schedCancel := context.WithCancel(context.Background())
	defer schedCancel()
	sched := scheduler.New(repo, notifier, zapLogger)
	if err := sched.Start(schedCtx); err != nil {
		zapLogger.Fatal("failed_to_start_scheduler", zap.Error(err))
	}
	defer sched.Stop()

	// Initialize handlers
	taskHandler := handlers.NewTaskHandler(repo, zapLogger)
	themeHandler := handlers.NewThemeHandler(st, zapLogger)
	var queueChecker handlers.QueueChecker
	if queue != nil {
		queueChecker = queue
	}
	healthHandler := handlers.NewHealthHandler(st, queueChecker, zapLogger)

	// Setup router. gorilla/mux runs middleware in registration order, so
	// the first Use is the outermost wrapper.
	r := mux.NewRouter()
	if cfg.OTELEnabled {
		r.Use(otelmux.Middleware(serviceName))
	}
	r.Use(middleware.CORS(cfg.FrontendURL))
	r.Use(middleware.Recover(zapLogger))
	r.Use(middleware.Logging(zapLogger))
	r.Use(middleware.ContentType)

	rateLimitMW, err := middleware.RateLimit(st.Client(), cfg.RateLimit)
	if err != nil {
		zapLogger.Fatal("failed_to_create_rate_limiter", zap.Error(err))
	}

	// Health check stays outside the rate limit.
	r.HandleFunc("/healthz", healthHandler.Health).Methods("GET")
	r.HandleFunc("/version", versionInfo).Methods("GET")

	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(rateLimitMW)
	taskHandler.RegisterRoutes(apiRouter.PathPrefix("/tasks").Subrouter())
	taskHandler.RegisterDataRoutes(apiRouter)
	themeHandler.RegisterRoutes(apiRouter)
	apiRouter.HandleFunc("/sync", taskHandler.Sync).Methods("POST")

	srv := &http.Server{
		Addr:           ":" + cfg.ServerPort,
		Handler:        r,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")
	schedCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server_forced_to_shutdown", zap.Error(err))
	}

	zapLogger.Info("server_exited")
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

func versionInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprintf(w, `{"version":"1.0.0","timestamp":"%s"}`, time.Now().UTC().Format(time.RFC3339)); err != nil {
		_ = err
	}
}
