package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	qstash "github.com/austindbirch/qstash-go"
	"github.com/austindbirch/qstash-go/internal/archive"
	"github.com/austindbirch/qstash-go/internal/config"
	"github.com/austindbirch/qstash-go/internal/health"
	"github.com/austindbirch/qstash-go/internal/logging"
	"github.com/austindbirch/qstash-go/internal/metrics"
	"github.com/austindbirch/qstash-go/internal/tracing"
)

func main() {
	// Load .env when present, otherwise rely on system env vars
	_ = godotenv.Load()
	cfg := config.FromEnv()
	ctx := context.Background()

	logger := logging.New("event-archiver")

	shutdown, err := tracing.InitTracing(ctx, "event-archiver")
	if err != nil {
		logger.Plain().WithError(err).Fatal("Failed to initialize tracing")
	}
	defer shutdown()

	// DB connect
	pool, err := archive.Connect(ctx, cfg.DSN())
	if err != nil {
		logger.Plain().WithError(err).Fatal("db connect failed")
	}
	defer pool.Close()

	store := archive.NewStore(pool)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Plain().WithError(err).Fatal("schema setup failed")
	}

	client, err := qstash.NewClient(cfg.QStash.Token, qstash.WithBaseURL(cfg.QStash.BaseURL))
	if err != nil {
		logger.Plain().WithError(err).Fatal("qstash client creation failed")
	}

	// Prom metrics
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", health.HTTPHandler(pool))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{Addr: cfg.Archiver.HTTPPort, Handler: mux}
	go func() {
		logger.Plain().WithField("addr", httpSrv.Addr).Info("archiver HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Plain().WithError(err).Fatal("archiver HTTP server failed")
		}
	}()

	archiver := archive.NewArchiver(client, store, cfg.Archiver, logger)

	// Graceful stop
	runCtx, cancel := context.WithCancel(ctx)
	go func() {
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
		<-stop
		logger.Plain().Info("Shutting down archiver")
		cancel()
	}()

	logger.Plain().Info("archiver service started")
	if err := archiver.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Plain().WithError(err).Fatal("archiver run failed")
	}

	_ = httpSrv.Shutdown(context.Background())
	logger.Plain().Info("archiver service stopped")
}
