package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/benvon/mood-poll/internal/config"
	"github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/queue"
	"github.com/benvon/mood-poll/internal/workers"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	interval := flag.Duration("summary-interval", workers.DefaultSummaryInterval, "How often to log an activity summary")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	debugMode := cfg.ServerDebugMode || *debugFlag

	zapLogger, err := logger.New(cfg.LogFormat, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() {
		_ = logger.Sync(zapLogger)
	}()

	if cfg.RabbitMQURL == "" {
		zapLogger.Fatal("rabbitmq_url_not_configured")
	}

	zapLogger.Info("starting_worker",
		zap.Bool("debug_mode", debugMode),
		zap.String("exchange", cfg.RabbitMQExchange),
		zap.Duration("summary_interval", *interval),
	)

	mq, err := queue.NewRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange)
	if err != nil {
		zapLogger.Fatal("failed_to_connect_to_rabbitmq", zap.Error(err))
	}
	defer func() {
		if err := mq.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	events, errs, err := mq.Subscribe(ctx)
	if err != nil {
		zapLogger.Fatal("failed_to_subscribe_to_activity", zap.Error(err))
	}

	zapLogger.Info("worker_started")

	tally := workers.NewActivityTally(zapLogger)
	if err := tally.Run(ctx, events, errs, *interval); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("worker_stopped_with_error", zap.Error(err))
		stop()
		os.Exit(1)
	}

	zapLogger.Info("worker_stopped")
}
