package stockwatch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/nava-store/internal/domain"
	kafkax "github.com/ariefcatur/nava-store/internal/kafka"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/orders"
	"github.com/ariefcatur/nava-store/internal/store"
)

type fakePublisher struct{ msgs []kafkago.Message }

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.msgs = append(f.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

type memDedup map[string]bool

func (d memDedup) FirstSeen(_ context.Context, id string) (bool, error) {
	if d[id] {
		return false, nil
	}
	d[id] = true
	return true, nil
}

func setup(t *testing.T, stock int) (*Service, *fakePublisher, int64) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	pid, err := st.CreateProduct(ctx, domain.ProductFields{Name: "Netflix Premium"})
	require.NoError(t, err)
	vid, err := st.CreateVariant(ctx, pid, domain.VariantFields{Title: "1 Bulan", Price: 10000, Stock: stock})
	require.NoError(t, err)

	pub := &fakePublisher{}
	return &Service{
		Catalog:     st,
		Dedup:       memDedup{},
		Alerts:      pub,
		Log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:     metrics.New(prometheus.NewRegistry()),
		Threshold:   2,
		ServiceName: "nava-stockwatch",
	}, pub, vid
}

func placed(t *testing.T, eventType string, variantID int64) kafkago.Message {
	t.Helper()
	ev, err := orders.NewEnvelope(eventType, "nava-api", "req-1", "1", orders.OrderPlacedPayload{OrderID: 1, VariantID: variantID})
	require.NoError(t, err)
	return kafkago.Message{Value: kafkax.MustMarshal(ev)}
}

func TestHandleOrderPlaced_LowStock(t *testing.T) {
	svc, pub, vid := setup(t, 2)

	require.NoError(t, svc.HandleOrderPlaced(context.Background(), placed(t, orders.EventOrderPlaced, vid)))
	require.Len(t, pub.msgs, 1)

	var ev orders.Envelope
	require.NoError(t, json.Unmarshal(pub.msgs[0].Value, &ev))
	require.Equal(t, orders.EventStockLow, ev.EventType)
	require.Equal(t, "req-1", ev.TraceID)

	p, err := kafkax.UnwrapPayload[orders.StockLowPayload](ev.Payload)
	require.NoError(t, err)
	require.Equal(t, vid, p.VariantID)
	require.Equal(t, 2, p.Stock)
	require.Equal(t, "1 Bulan", p.VariantTitle)
}

func TestHandleOrderPlaced_AboveThreshold(t *testing.T) {
	svc, pub, vid := setup(t, 9)
	require.NoError(t, svc.HandleOrderPlaced(context.Background(), placed(t, orders.EventOrderPlaced, vid)))
	require.Empty(t, pub.msgs)
}

func TestHandleOrderPlaced_DedupAndIgnore(t *testing.T) {
	svc, pub, vid := setup(t, 0)
	ctx := context.Background()

	m := placed(t, orders.EventOrderPlaced, vid)
	require.NoError(t, svc.HandleOrderPlaced(ctx, m))
	require.NoError(t, svc.HandleOrderPlaced(ctx, m))
	require.Len(t, pub.msgs, 1)

	require.NoError(t, svc.HandleOrderPlaced(ctx, placed(t, orders.EventOrderStatusChanged, vid)))
	require.Len(t, pub.msgs, 1)

	// varian sudah dihapus: tidak error, tidak alert
	require.NoError(t, svc.HandleOrderPlaced(ctx, placed(t, orders.EventOrderPlaced, 999)))
	require.Len(t, pub.msgs, 1)
}

func TestHandleOrderPlaced_BadMessage(t *testing.T) {
	svc, _, _ := setup(t, 1)
	require.Error(t, svc.HandleOrderPlaced(context.Background(), kafkago.Message{Value: []byte("{")}))
}
