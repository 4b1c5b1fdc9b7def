package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"job_tracker/internal/config"
	"job_tracker/internal/db"
	"job_tracker/internal/logging"
	"job_tracker/internal/observability"
	"job_tracker/internal/queue"
	"job_tracker/internal/worker"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ValidateWorker(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logging.Setup(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Init(ctx, &cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close database connection")
		}
	}()

	if cfg.DB.AutoMigrate {
		if err := db.Migrate(ctx, database); err != nil {
			logrus.WithError(err).Fatal("Failed to apply migrations")
		}
	}

	conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer func() {
		if err := conn.Close(); err != nil {
			logrus.WithError(err).Error("Failed to close RabbitMQ connection")
		}
	}()

	consumerChannel, err := queue.CreateChannel(conn)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
	}
	if _, err := queue.DeclareQueue(consumerChannel, cfg.RabbitMQ.Queue); err != nil {
		logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
	}
	if err := consumerChannel.Close(); err != nil {
		logrus.WithError(err).Fatal("Failed to close RabbitMQ channel")
	}

	// Initialize Prometheus metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry)
	if err := metrics.RegisterDBStats(database, cfg.DB.Name); err != nil {
		logrus.WithError(err).Warn("Failed to register database stats collector")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              ":" + cfg.Worker.MetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logrus.Infof("Worker metrics server started on :%s", cfg.Worker.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start metrics server")
		}
	}()

	repo := worker.NewActivityRepository()

	var wg sync.WaitGroup
	for i := 1; i <= cfg.Worker.Count; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w := worker.NewWorker(id, database, repo, metrics, cfg.RabbitMQ.Queue)
			if err := w.Run(ctx, conn); err != nil {
				logrus.WithError(err).Errorf("Worker %d exited", id)
				stop()
			}
		}(i)
	}

	<-ctx.Done()
	logrus.Info("Shutting down workers...")
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Metrics server shutdown error")
	}
}
