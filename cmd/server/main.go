package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	firebase "firebase.google.com/go/v4"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/plateful/delivery-notifier/internal/api"
	"github.com/plateful/delivery-notifier/internal/config"
	"github.com/plateful/delivery-notifier/internal/db"
	"github.com/plateful/delivery-notifier/internal/metrics"
	"github.com/plateful/delivery-notifier/internal/push"
	"github.com/plateful/delivery-notifier/internal/queue"
	"github.com/plateful/delivery-notifier/internal/ratelimiter"
	"github.com/plateful/delivery-notifier/internal/repository"
	"github.com/plateful/delivery-notifier/internal/resolver"
	"github.com/plateful/delivery-notifier/internal/service"
	"github.com/plateful/delivery-notifier/internal/worker"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync() //nolint:errcheck

	// ---- configuration ----
	// Missing datastore or push credentials is fatal: the worker must not
	// start in a degraded mode.
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	// ---- database ----
	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("database migrations applied")

	// ---- push transport ----
	fbApp, err := firebase.NewApp(ctx, nil,
		option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	if err != nil {
		logger.Fatal("failed to initialise firebase app", zap.Error(err))
	}
	msgClient, err := fbApp.Messaging(ctx)
	if err != nil {
		logger.Fatal("failed to initialise messaging client", zap.Error(err))
	}
	dispatcher := push.NewFCMDispatcher(msgClient)

	// ---- core dependencies ----
	reg := prometheus.NewRegistry()
	q := queue.New(cfg.QueueSize)
	m := metrics.New(reg, q.Depth)
	queueRepo := repository.NewPgQueueRepository(pool)
	tokenRepo := repository.NewPgDeviceTokenRepository(pool)
	restaurantRepo := repository.NewPgRestaurantRepository(pool)
	deliveryRepo := repository.NewPgDeliveryRepository(pool)
	limiter := ratelimiter.New(cfg.SendRateLimit)
	res := resolver.New(tokenRepo, restaurantRepo, logger)

	onSent, onFailed, onTokenDisabled := m.Hooks()
	svc := service.NewDispatchService(queueRepo, tokenRepo, res, dispatcher, limiter, logger, service.MetricHooks{
		OnSent:          onSent,
		OnFailed:        onFailed,
		OnTokenDisabled: onTokenDisabled,
	})

	// ---- dispatch worker pool + change-feed listener ----
	// Context for all background goroutines; cancelled on shutdown signal.
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()

	dispatchPool := worker.NewPool(cfg.Workers, q, svc, logger)
	dispatchPool.Start(workerCtx)

	listener := worker.NewListener(pool, q, logger)
	go func() {
		if err := listener.Run(workerCtx); err != nil {
			logger.Error("listener terminated", zap.Error(err))
		}
	}()

	// ---- HTTP server ----
	router := api.NewRouter(deliveryRepo, q, reg, logger)
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start server in a goroutine so it does not block the shutdown listener.
	go func() {
		logger.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// ---- graceful shutdown ----
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutdown signal received")

	// 1. Stop accepting new HTTP requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	// 2. Signal the listener and workers to stop accepting new rows.
	cancelWorkers()

	// 3. Wait for in-flight pipeline runs to finish their current row.
	dispatchPool.Wait()

	logger.Info("server stopped cleanly")
}
