package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/trogers1052/ai-feed-monitor/internal/api"
	"github.com/trogers1052/ai-feed-monitor/internal/config"
	"github.com/trogers1052/ai-feed-monitor/internal/feed"
	"github.com/trogers1052/ai-feed-monitor/internal/kafka"
	"github.com/trogers1052/ai-feed-monitor/internal/logging"
	"github.com/trogers1052/ai-feed-monitor/internal/metrics"
	"github.com/trogers1052/ai-feed-monitor/internal/redis"
	"github.com/trogers1052/ai-feed-monitor/internal/risk"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logger := logging.New(cfg.Log)

	// Metrics registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Fetch the one-time risk snapshot
	fetcher := risk.NewFetcher(cfg.Risk.APIURL, cfg.Risk.Timeout, m, logger)
	snapshot := fetcher.Fetch(ctx)

	var sinks []feed.Sink

	// Connect to Redis
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		client, err := redis.New(cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("Continuing without Redis")
		} else {
			redisClient = client
			defer redisClient.Close()
			sinks = append(sinks, redisClient)
			logger.Info().Str("addr", cfg.Redis.Address()).Msg("Connected to Redis")

			if err := redisClient.SetRiskSnapshot(ctx, snapshot, cfg.Redis.SnapshotTTL); err != nil {
				logger.Warn().Err(err).Msg("Failed to cache risk snapshot")
			}
		}
	}

	// Create Kafka producer
	if cfg.Kafka.Enabled() {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.FeedTopic, logger)
		defer producer.Close()
		sinks = append(sinks, producer)
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.FeedTopic).Msg("Kafka producer initialized")
	}

	// Start the live feed client
	client := feed.NewClient(logger,
		feed.WithHistoryCapacity(cfg.Feed.HistoryCapacity),
		feed.WithBackoff(feed.Backoff{
			Base:        cfg.Feed.BackoffBase,
			Max:         cfg.Feed.BackoffMax,
			MaxExponent: cfg.Feed.BackoffMaxExp,
		}),
		feed.WithMetrics(m),
		feed.WithSinks(sinks...),
	)
	if err := client.Start(ctx, cfg.Feed.URL); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start feed client")
	}
	defer client.Stop()

	// Set up HTTP handler and routes
	var pinger api.Pinger
	if redisClient != nil {
		pinger = redisClient
	}
	handler := api.NewHandler(client, snapshot, pinger, cfg.Kafka.Enabled())
	router := api.SetupRoutes(handler, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	// Create HTTP server
	addr := cfg.Server.Host + ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info().Str("addr", addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	// Stop the feed first so no event lands after the sinks close
	client.Stop()
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server stopped")
}
