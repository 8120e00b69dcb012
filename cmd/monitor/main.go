package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/sunwolf-labs/supt-monitor/internal/adapter/cache"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/httpserver"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/ingv"
	kafkaadapter "github.com/sunwolf-labs/supt-monitor/internal/adapter/kafka"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/localfile"
	"github.com/sunwolf-labs/supt-monitor/internal/adapter/noaa"
	"github.com/sunwolf-labs/supt-monitor/internal/config"
	"github.com/sunwolf-labs/supt-monitor/internal/monitor"
	"github.com/sunwolf-labs/supt-monitor/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	catalog := cache.NewCatalogCache(
		ingv.NewClient(cfg.INGVBaseURL, cfg.INGVTimeout, logger),
		cfg.CatalogCacheTTL, clock,
	).Instrument(
		metrics.CacheHits.WithLabelValues("catalog"),
		metrics.CacheMisses.WithLabelValues("catalog"),
	)
	kpSource := cache.NewKpCache(
		noaa.NewClient(cfg.NOAAKpURL, cfg.NOAATimeout, logger),
		cfg.KpCacheTTL, clock,
	).Instrument(
		metrics.CacheHits.WithLabelValues("kp"),
		metrics.CacheMisses.WithLabelValues("kp"),
	)
	fallback := localfile.NewReader(cfg.LocalCatalogPath)

	// Bundle publishing is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher monitor.BundlePublisher
	var kafkaPublisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		kafkaPublisher = kafkaadapter.NewPublisher(cfg, logger)
		publisher = kafkaPublisher
		logger.Info("bundle publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("bundle publishing disabled")
	}

	svc := monitor.New(catalog, fallback, kpSource, publisher, cfg, logger, metrics)

	srv := httpserver.NewServer(cfg.HTTPAddr, svc, cfg.PsiS, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start the refresh loop.
	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.Error("monitor error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaPublisher != nil {
		if err := kafkaPublisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
