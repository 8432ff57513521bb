package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "STORE_DRIVER", "REDIS_ADDR", "KAFKA_BROKERS", "TOKEN_TTL", "DEFAULT_VARIANT_STOCK", "SEED_ON_EMPTY"} {
		t.Setenv(k, "")
	}
	c := Load(nil)
	require.Equal(t, ":8080", c.HTTPAddr)
	require.Equal(t, "postgres", c.StoreDriver)
	require.Empty(t, c.RedisAddr)
	require.Empty(t, c.KafkaBrokers)
	require.Equal(t, 2*time.Hour, c.TokenTTL)
	require.Equal(t, 10, c.DefaultVariantStock)
	require.True(t, c.SeedOnEmpty)
	require.Equal(t, "admin@mail.com", c.AdminEmail)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STORAGE_TIMEOUT", "750ms")
	t.Setenv("LOW_STOCK_THRESHOLD", "5")
	t.Setenv("SEED_ON_EMPTY", "false")

	c := Load(nil)
	require.Equal(t, "memory", c.StoreDriver)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, c.KafkaBrokers)
	require.Equal(t, 750*time.Millisecond, c.StorageTimeout)
	require.Equal(t, 5, c.LowStockThreshold)
	require.False(t, c.SeedOnEmpty)
}

func TestLoad_MalformedFallsBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "dua jam")
	t.Setenv("STOCKWATCH_WORKERS", "-1")
	t.Setenv("SEED_ON_EMPTY", "kadang")

	var buf bytes.Buffer
	c := Load(slog.New(slog.NewTextHandler(&buf, nil)))
	require.Equal(t, 2*time.Hour, c.TokenTTL)
	require.Equal(t, 4, c.StockwatchWorkers)
	require.True(t, c.SeedOnEmpty)
	require.Contains(t, buf.String(), "TOKEN_TTL")
	require.Contains(t, buf.String(), "STOCKWATCH_WORKERS")
}
