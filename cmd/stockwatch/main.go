package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ariefcatur/nava-store/internal/config"
	kafkax "github.com/ariefcatur/nava-store/internal/kafka"
	"github.com/ariefcatur/nava-store/internal/logging"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/orders"
	"github.com/ariefcatur/nava-store/internal/postgres"
	"github.com/ariefcatur/nava-store/internal/redisx"
	"github.com/ariefcatur/nava-store/internal/stockwatch"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(nil)
	name := cfg.ServiceName + "-stockwatch"
	log := logging.New(cfg.LogLevel, name)
	slog.SetDefault(log)

	if len(cfg.KafkaBrokers) == 0 {
		log.Error("KAFKA_BROKERS is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB: stockwatch membaca stok terkini, tidak pernah menulis
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	svc := &stockwatch.Service{
		Catalog:     postgres.NewStore(db),
		Log:         log,
		Metrics:     metrics.New(prometheus.DefaultRegisterer),
		Threshold:   cfg.LowStockThreshold,
		ServiceName: name,
	}

	// Redis dedup (opsional)
	if cfg.RedisAddr != "" {
		rdb, err := redisx.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis init failed", "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		svc.Dedup = &redisx.Dedup{Redis: rdb, Service: "stockwatch"}
	}

	alerts := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicStockLow, 256, log)
	alerts.Start(ctx)
	svc.Alerts = alerts

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.StockwatchGroup, orders.TopicOrderPlaced, cfg.StockwatchWorkers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("stockwatch consumer started", "group", cfg.StockwatchGroup, "topic", orders.TopicOrderPlaced,
			"workers", cfg.StockwatchWorkers, "threshold", cfg.LowStockThreshold)
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil {
			log.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer...")
	cancel()
	<-done
	alerts.Close()
	alerts.WaitClosed()
}
