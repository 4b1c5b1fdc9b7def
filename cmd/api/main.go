package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"job_tracker/internal/auth"
	"job_tracker/internal/cache"
	"job_tracker/internal/config"
	"job_tracker/internal/db"
	"job_tracker/internal/handler"
	"job_tracker/internal/job"
	"job_tracker/internal/logging"
	"job_tracker/internal/observability"
	"job_tracker/internal/queue"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ValidateAPI(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	logging.Setup(cfg.Log)
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	tokens, err := auth.NewTokenIssuer(cfg.JWT.Secret)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize token issuer")
	}

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

	var jobCache job.Cache = cache.NoopCache{}
	if cfg.Redis.Enabled() {
		rdb, err := cache.SetupRedis(ctx, &cfg.Redis)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to redis")
		}
		defer func() {
			if err := rdb.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close redis connection")
			}
		}()
		jobCache = cache.NewJobCache(rdb, cfg.Redis.TTL, metrics)
	} else {
		logrus.Info("Redis not configured, job cache disabled")
	}

	var events job.EventPublisher = queue.NoopPublisher{}
	if cfg.RabbitMQ.Enabled() {
		conn, err := queue.SetupRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
		}
		defer func() {
			if err := conn.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close RabbitMQ connection")
			}
		}()

		ch, err := queue.CreateChannel(conn)
		if err != nil {
			logrus.WithError(err).Fatal("Failed to create RabbitMQ channel")
		}
		if _, err := queue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
			logrus.WithError(err).Fatal("Failed to declare RabbitMQ queue")
		}

		publisher := queue.NewPublisher(ch, cfg.RabbitMQ.Queue, metrics)
		defer func() {
			if err := publisher.Close(); err != nil {
				logrus.WithError(err).Error("Failed to close RabbitMQ channel")
			}
		}()
		events = publisher
	} else {
		logrus.Info("RabbitMQ not configured, lifecycle events disabled")
	}

	engine := handler.SetupHandler(handler.Dependencies{
		DB:       database,
		Tokens:   tokens,
		Cache:    jobCache,
		Events:   events,
		Metrics:  metrics,
		Registry: registry,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           handler.NewHTTPHandler(engine, cfg.CORS),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.Infof("Starting %s on :%s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Server shutdown error")
	}
	logrus.Info("Server stopped")
}
