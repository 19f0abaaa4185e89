package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/benvon/mood-poll/api/openapi"
	"github.com/benvon/mood-poll/internal/catalog"
	"github.com/benvon/mood-poll/internal/config"
	"github.com/benvon/mood-poll/internal/handlers"
	"github.com/benvon/mood-poll/internal/logger"
	"github.com/benvon/mood-poll/internal/middleware"
	"github.com/benvon/mood-poll/internal/poll"
	"github.com/benvon/mood-poll/internal/queue"
	"github.com/benvon/mood-poll/internal/stream"
	"github.com/benvon/mood-poll/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
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

	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", debugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("catalog_path", cfg.CatalogPath),
		zap.Duration("tick_interval", cfg.TickInterval),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
		zap.Bool("strict_ballots", cfg.StrictBallots),
	)

	tracing := false
	if cfg.OTELEnabled {
		tp, err := telemetry.InitTracer(context.Background(), telemetry.ServiceName, cfg.OTELEndpoint)
		if err != nil {
			zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		} else {
			tracing = true
			zapLogger.Info("otel_tracer_initialized", zap.String("endpoint", cfg.OTELEndpoint))
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := telemetry.Shutdown(shutdownCtx, tp); err != nil {
					zapLogger.Error("failed_to_shutdown_otel_tracer", zap.Error(err))
				}
			}()
		}
	}

	songs, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		zapLogger.Fatal("failed_to_load_catalog",
			zap.String("path", cfg.CatalogPath),
			zap.Error(err),
		)
	}
	zapLogger.Info("catalog_loaded", zap.Int("songs", songs.Len()))

	state := poll.NewState(songs, zapLogger, poll.WithStrictBallots(cfg.StrictBallots))
	hub := stream.NewHub(state, zapLogger,
		stream.WithTickInterval(cfg.TickInterval),
		stream.WithKeepAliveInterval(cfg.KeepAliveInterval),
		stream.WithWriteTimeout(cfg.StreamWriteTimeout),
	)
	state.AddObserver(hub)

	healthChecker := handlers.NewHealthChecker(state.SongCount, hub.Len)

	// Redis is optional; it only backs the vote limiter
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(cfg.RedisURL)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		healthChecker.AddCheck("redis", handlers.RedisCheck(redisClient))
		zapLogger.Info("connected_to_redis")
	}

	var voteLimiter func(http.Handler) http.Handler
	if cfg.VoteRateLimit != "" {
		voteLimiter, err = middleware.RateLimit(cfg.VoteRateLimit, redisClient, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_create_vote_rate_limiter", zap.Error(err))
		}
		zapLogger.Info("vote_rate_limit_enabled",
			zap.String("rate", cfg.VoteRateLimit),
			zap.Bool("redis_store", redisClient != nil),
		)
	}

	var notifier *queue.Notifier
	if cfg.RabbitMQURL != "" {
		mq, err := connectRabbitMQ(cfg.RabbitMQURL, cfg.RabbitMQExchange, zapLogger)
		if err != nil {
			zapLogger.Fatal("failed_to_connect_to_rabbitmq_after_retries", zap.Error(err))
		}
		defer func() {
			if err := mq.Close(); err != nil {
				zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
			}
		}()
		notifier = queue.NewNotifier(mq, zapLogger, queue.DefaultNotifierBuffer)
		state.AddObserver(notifier)
		healthChecker.AddCheck("rabbitmq", mq.HealthCheck)
	}

	openAPIHandler, err := handlers.NewOpenAPIHandler(openapi.Spec)
	if err != nil {
		zapLogger.Fatal("failed_to_load_openapi_spec", zap.Error(err))
	}

	if info, err := os.Stat(cfg.StaticDir); err != nil || !info.IsDir() {
		zapLogger.Warn("static_dir_unavailable", zap.String("static_dir", cfg.StaticDir))
	}

	origins := middleware.ParseOrigins(cfg.CORSAllowedOrigins)
	router := handlers.NewRouter(handlers.RouterConfig{
		Poll:           handlers.NewPollHandler(state, zapLogger),
		Events:         handlers.NewEventsHandler(hub, zapLogger, origins),
		Health:         healthChecker,
		OpenAPI:        openAPIHandler,
		Static:         handlers.NewStaticHandler(os.DirFS(cfg.StaticDir)),
		Logger:         zapLogger,
		AllowedOrigins: origins,
		EnableHSTS:     cfg.EnableHSTS,
		RequestTimeout: cfg.RequestTimeout,
		MaxBodyBytes:   middleware.DefaultMaxRequestSize,
		VoteLimiter:    voteLimiter,
		Tracing:        tracing,
		ServiceName:    telemetry.ServiceName,
	})

	// No WriteTimeout: streams set a deadline per write instead
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	// Shutdown does not cancel request contexts, so open streams are ended here
	srv.RegisterOnShutdown(hub.CloseAll)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := hub.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
			zapLogger.Error("stream_hub_stopped_with_error", zap.Error(err))
		}
	}()
	if notifier != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := notifier.Run(bgCtx); err != nil && !errors.Is(err, context.Canceled) {
				zapLogger.Error("activity_notifier_stopped_with_error", zap.Error(err))
			}
		}()
	}

	go func() {
		zapLogger.Info("server_starting", zap.String("port", cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server_failed_to_start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("server_shutting_down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server_forced_to_shutdown", zap.Error(err))
	}

	bgCancel()
	wg.Wait()

	zapLogger.Info("server_exited")
}

func connectRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

// connectRabbitMQ retries with exponential backoff to ride out broker startup
func connectRabbitMQ(amqpURL, exchange string, zapLogger *zap.Logger) (*queue.RabbitMQ, error) {
	const maxRetries = 10
	const initialDelay = 2 * time.Second

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		mq, err := queue.NewRabbitMQ(amqpURL, exchange)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq", zap.String("exchange", exchange))
			return mq, nil
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
	return nil, fmt.Errorf("gave up after %d attempts: %w", maxRetries, lastErr)
}
