// cmd/portal/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bursary-portal/internal/common/config"
	"bursary-portal/internal/common/database"
	commonhttp "bursary-portal/internal/common/http"
	"bursary-portal/internal/common/logger"
	"bursary-portal/internal/common/observability"
	"bursary-portal/internal/dashboard"
	"bursary-portal/internal/server"
	"bursary-portal/internal/wizard/controller"
	persistdraft "bursary-portal/internal/wizard/persist-draft"
	stepcompletion "bursary-portal/internal/wizard/step-completion"
	submitapplication "bursary-portal/internal/wizard/submit-application"
	validatedocuments "bursary-portal/internal/wizard/validate-documents"
	validatefields "bursary-portal/internal/wizard/validate-fields"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting bursary portal...",
		zap.String("environment", cfg.App.Environment),
		zap.String("apiBaseUrl", cfg.API.BaseURL),
		zap.String("storage", cfg.Storage.Driver),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Draft store ---
	var backend persistdraft.Backend
	var ready func(ctx context.Context) error
	switch cfg.Storage.Driver {
	case config.DriverRedis:
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		zapLog.Info("Redis connected successfully")

		backend = persistdraft.NewRedisBackend(redis, persistdraft.LoadConfig(cfg))
		ready = redis.Ping
	default:
		zapLog.Warn("using in-memory draft store; drafts are lost on restart")
		backend = persistdraft.NewMemoryBackend()
	}

	// --- Backend clients ---
	apiClient := commonhttp.NewClient(cfg.API.BaseURL, config.GetDuration(cfg.API.Timeout))

	fields := validatefields.NewValidator(validatefields.LoadConfig())
	documents := validatedocuments.NewValidator(&validatedocuments.Config{MaxSizeBytes: cfg.Documents.MaxSizeBytes})
	deps := &controller.Dependencies{
		Fields:    fields,
		Documents: documents,
		Tracker:   stepcompletion.NewTracker(fields, documents),
		Submitter: submitapplication.NewAssembler(submitapplication.LoadConfig(cfg), apiClient, obs, log),
		Obs:       obs,
		Logger:    log,
	}
	manager := controller.NewManager(backend, deps)

	srv := server.New(server.LoadConfig(cfg), manager, dashboard.NewClient(apiClient, log), log).
		WithReadiness(ready)

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srv.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(sigCtx)

	g.Go(func() error {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	// --- Graceful Shutdown ---
	g.Go(func() error {
		<-gctx.Done()
		zapLog.Info("Shutdown signal received, draining requests...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		zapLog.Error("Bursary portal stopped with error", zap.Error(err))
		return
	}
	zapLog.Info("Bursary portal stopped gracefully")
}
