package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bivex/webpay-client/internal/infrastructure/config"
	"github.com/bivex/webpay-client/internal/infrastructure/external/payapi"
	"github.com/bivex/webpay-client/internal/infrastructure/logging"
	"github.com/bivex/webpay-client/internal/infrastructure/storage"
	"github.com/bivex/webpay-client/internal/receipt"
	worker_tasks "github.com/bivex/webpay-client/internal/worker/tasks"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logging.Init(cfg); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logging.Sync()

	logging.Logger.Info("Starting receipt revalidation worker")

	if cfg.RedisURL == "" {
		logging.Logger.Fatal("REDIS_URL is required for the worker")
	}

	// Initialize Redis
	ctx := context.Background()
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logging.Logger.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logging.Logger.Fatal("Failed to ping Redis", zap.Error(err))
	}

	// Receipt store shared with the purchase agent through Redis
	receipts := receipt.NewStore(nil, storage.NewRedisStore(redisClient), logging.Logger)

	apiClient := payapi.NewClient(payapi.Config{
		BaseURL:       cfg.APIURLBase,
		VersionPrefix: cfg.APIVersionPrefix,
		Origin:        cfg.AppOrigin,
		Timeout:       cfg.HTTPTimeout,
	}, logging.Logger)

	taskHandlers := worker_tasks.NewTaskHandlers(receipts, apiClient, logging.Logger)

	// Initialize Asynq server
	server := asynq.NewServerFromRedisClient(redisClient, asynq.Config{
		Concurrency: 5,
		RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
			// Exponential backoff: 2^n seconds
			return time.Duration(1<<uint(n)) * time.Second
		},
	})

	mux := asynq.NewServeMux()
	worker_tasks.RegisterHandlers(mux, taskHandlers)

	if err := server.Start(mux); err != nil {
		logging.Logger.Fatal("Failed to start worker", zap.Error(err))
	}

	scheduler := asynq.NewSchedulerFromRedisClient(redisClient, nil)
	worker_tasks.RegisterScheduledTasks(scheduler, logging.Logger)

	if err := scheduler.Start(); err != nil {
		logging.Logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	logging.Logger.Info("Worker started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("Shutting down worker...")

	scheduler.Shutdown()
	server.Shutdown()

	logging.Logger.Info("Worker exited")
}
