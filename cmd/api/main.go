package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ariefcatur/nava-store/internal/auth"
	"github.com/ariefcatur/nava-store/internal/catalog"
	"github.com/ariefcatur/nava-store/internal/config"
	"github.com/ariefcatur/nava-store/internal/httpx"
	kafkax "github.com/ariefcatur/nava-store/internal/kafka"
	"github.com/ariefcatur/nava-store/internal/logging"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/orders"
	"github.com/ariefcatur/nava-store/internal/postgres"
	"github.com/ariefcatur/nava-store/internal/redisx"
	"github.com/ariefcatur/nava-store/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load(nil)
	log := logging.New(cfg.LogLevel, cfg.ServiceName)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	st, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store init failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	catalogSvc := &catalog.Service{
		Store:               st,
		Log:                 log.With("component", "catalog"),
		Metrics:             m,
		DefaultVariantStock: cfg.DefaultVariantStock,
		SeedOnEmpty:         cfg.SeedOnEmpty,
		Timeout:             cfg.StorageTimeout,
	}
	orderSvc := &orders.Service{
		Store:       st,
		Log:         log.With("component", "orders"),
		Metrics:     m,
		ServiceName: cfg.ServiceName,
		Timeout:     cfg.StorageTimeout,
	}

	// Redis (opsional)
	if cfg.RedisAddr != "" {
		rdb, err := redisx.New(ctx, cfg.RedisAddr)
		if err != nil {
			log.Error("redis init failed", "addr", cfg.RedisAddr, "err", err)
			os.Exit(1)
		}
		defer rdb.Close()
		catalogSvc.Lock = redisx.NewSeedLock(rdb)
		orderSvc.Idem = &redisx.Idempotency{Redis: rdb}
	}

	// Kafka producers (opsional)
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		placed := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
		status := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 256, log)
		placed.Start(ctx)
		status.Start(ctx)
		orderSvc.PlacedEvents = placed
		orderSvc.StatusEvents = status
		producers = append(producers, placed, status)
	}

	// Bootstrap katalog sekali saat startup
	if seeded, err := catalogSvc.Bootstrap(ctx); err != nil {
		log.Error("catalog bootstrap failed", "err", err)
		os.Exit(1)
	} else if seeded {
		log.Info("catalog bootstrap done")
	}

	authn, err := auth.New(cfg.AdminEmail, cfg.AdminPassword, cfg.AdminPasswordHash, cfg.JWTSecret, auth.WithTTL(cfg.TokenTTL))
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	router := httpx.NewRouter(httpx.Deps{
		Log:      log.With("component", "http"),
		Catalog:  catalogSvc,
		Orders:   orderSvc,
		Auth:     authn,
		Health:   st,
		Gatherer: reg,
	})

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen failed", "err", err)
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close() // tutup inbox -> flush & close writer
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		log.Warn("using in-memory store, data is lost on restart")
		return store.NewMemory(), nil
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool, log); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewStore(pool), nil
	default:
		return nil, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
	}
}
