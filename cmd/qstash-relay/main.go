package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nsqio/go-nsq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	qstash "github.com/austindbirch/qstash-go"
	"github.com/austindbirch/qstash-go/internal/config"
	"github.com/austindbirch/qstash-go/internal/health"
	"github.com/austindbirch/qstash-go/internal/logging"
	"github.com/austindbirch/qstash-go/internal/metrics"
	"github.com/austindbirch/qstash-go/internal/relay"
	"github.com/austindbirch/qstash-go/internal/tracing"
)

func main() {
	// Load .env when present, otherwise rely on system env vars
	_ = godotenv.Load()
	cfg := config.FromEnv()
	ctx := context.Background()

	logger := logging.New("qstash-relay")

	shutdown, err := tracing.InitTracing(ctx, "qstash-relay")
	if err != nil {
		logger.Plain().WithError(err).Fatal("Failed to initialize tracing")
	}
	defer shutdown()

	// NSQ producer carries receipts and dead letters
	producer, err := nsq.NewProducer(cfg.NSQ.NsqdTCPAddr, nsq.NewConfig())
	if err != nil {
		logger.Plain().WithError(err).Fatal("nsq producer creation failed")
	}
	defer producer.Stop()

	client, err := qstash.NewClient(cfg.QStash.Token, qstash.WithBaseURL(cfg.QStash.BaseURL))
	if err != nil {
		logger.Plain().WithError(err).Fatal("qstash client creation failed")
	}

	receiver := &qstash.Receiver{
		CurrentSigningKey: cfg.QStash.CurrentSigningKey,
		NextSigningKey:    cfg.QStash.NextSigningKey,
		Tolerance:         cfg.QStash.Tolerance,
	}

	// Prom metrics
	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	inbound := relay.NewInbound(producer, cfg.NSQ.InboundTopic, logger)

	mux := http.NewServeMux()
	mux.Handle("/relay", receiver.Middleware(inbound.Handler()))
	mux.HandleFunc("/healthz", health.HTTPHandler(relay.ProducerPinger{Producer: producer}))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	httpSrv := &http.Server{
		Addr:         cfg.Relay.ListenAddr,
		Handler:      mux,
		ReadTimeout:  cfg.Relay.ReadTimeout,
		WriteTimeout: cfg.Relay.WriteTimeout,
		IdleTimeout:  cfg.Relay.IdleTimeout,
	}
	go func() {
		logger.Plain().WithField("addr", httpSrv.Addr).Info("relay HTTP server starting")
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Plain().WithError(err).Fatal("relay HTTP server failed")
		}
	}()

	// NSQ consumer for outbound publish requests
	conf := nsq.NewConfig()
	conf.MaxInFlight = 1000
	consumer, err := nsq.NewConsumer(cfg.NSQ.OutboundTopic, cfg.NSQ.Channel, conf)
	if err != nil {
		logger.Plain().WithError(err).Fatal("nsq consumer creation failed")
	}

	outbound := relay.NewOutbound(client, producer, cfg.NSQ.OutboundTopic+"_dlq", cfg.Relay, logger)
	consumer.AddHandler(outbound)

	// Connecting directly to NSQD forces channel creation, instead of the channel being lazily created on first publish
	if err := consumer.ConnectToNSQD(cfg.NSQ.NsqdTCPAddr); err != nil {
		logger.Plain().WithError(err).Fatal("connect to nsqd failed")
	}
	if err := consumer.ConnectToNSQLookupd(cfg.NSQ.LookupHTTPAddr); err != nil {
		logger.Plain().WithError(err).Fatal("connect to lookupd failed")
	}

	logger.Plain().Info("relay service started")

	// Graceful stop
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop

	logger.Plain().Info("Shutting down relay service")
	consumer.Stop()
	<-consumer.StopChan
	_ = httpSrv.Shutdown(context.Background())
	logger.Plain().Info("relay service stopped")
}
