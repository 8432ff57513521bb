package orders

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/store"
)

type fakePublisher struct {
	mu   sync.Mutex
	msgs []kafkago.Message
}

func (f *fakePublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

type fakeIdem struct {
	m map[string]int64
}

func (f *fakeIdem) Lookup(_ context.Context, key string) (int64, bool, error) {
	id, ok := f.m[key]
	return id, ok, nil
}

func (f *fakeIdem) Remember(_ context.Context, key string, orderID int64) error {
	f.m[key] = orderID
	return nil
}

type fixture struct {
	svc       *Service
	st        *store.Memory
	placed    *fakePublisher
	status    *fakePublisher
	productID int64
	variantID int64
}

func setup(t *testing.T, stock int) fixture {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemory()
	pid, err := st.CreateProduct(ctx, domain.ProductFields{Name: "Netflix Premium", Category: "Streaming"})
	require.NoError(t, err)
	vid, err := st.CreateVariant(ctx, pid, domain.VariantFields{Title: "1 Bulan", Price: 10000, Stock: stock})
	require.NoError(t, err)
	require.NoError(t, st.SetProductStock(ctx, pid, stock))

	f := fixture{st: st, placed: &fakePublisher{}, status: &fakePublisher{}, productID: pid, variantID: vid}
	f.svc = &Service{
		Store:        st,
		Metrics:      metrics.New(prometheus.NewRegistry()),
		PlacedEvents: f.placed,
		StatusEvents: f.status,
		ServiceName:  "nava-api",
		Timeout:      time.Second,
	}
	return f
}

func (f fixture) order() domain.NewOrder {
	return domain.NewOrder{
		ProductID: f.productID,
		VariantID: f.variantID,
		Name:      "Budi",
		Contact:   "08123456789",
		Method:    "qris",
		Total:     10000,
	}
}

func TestPlaceOrder_DecrementsAndReconciles(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)
	start := time.Now().UTC()

	id, err := f.svc.PlaceOrder(ctx, f.order())
	require.NoError(t, err)
	require.Positive(t, id)

	v, _ := f.st.GetVariant(ctx, f.variantID)
	require.Equal(t, 2, v.Stock)
	p, _ := f.st.GetProduct(ctx, f.productID)
	require.Equal(t, 2, p.Stock)

	o, err := f.svc.GetOrder(ctx, id)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPending, o.Status)
	require.Equal(t, "Netflix Premium", o.ProductName)
	require.Equal(t, "1 Bulan", o.VariantTitle)
	require.Equal(t, int64(10000), o.VariantPrice)
	require.Equal(t, domain.FormatOrderID(id), o.FormattedID)
	require.False(t, o.CreatedAt.Before(start.Truncate(time.Second)))
}

func TestPlaceOrder_LastUnitThenOutOfStock(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)

	_, err := f.svc.PlaceOrder(ctx, f.order())
	require.NoError(t, err)

	v, _ := f.st.GetVariant(ctx, f.variantID)
	require.Equal(t, 0, v.Stock)

	_, err = f.svc.PlaceOrder(ctx, f.order())
	require.ErrorIs(t, err, domain.ErrOutOfStock)

	// order kedua tidak boleh tercatat
	list, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	p, _ := f.st.GetProduct(ctx, f.productID)
	require.Equal(t, 0, p.Stock)
	require.Len(t, f.placed.msgs, 1)
}

func TestPlaceOrder_ConcurrentNeverOversells(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 5)

	errs := make([]error, 20)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.PlaceOrder(ctx, f.order())
		}()
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, domain.ErrOutOfStock)
	}
	require.Equal(t, 5, ok)
	v, _ := f.st.GetVariant(ctx, f.variantID)
	require.Equal(t, 0, v.Stock)
}

func TestPlaceOrder_Validation(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)

	cases := map[string]func(o *domain.NewOrder){
		"no product":     func(o *domain.NewOrder) { o.ProductID = 0 },
		"no variant":     func(o *domain.NewOrder) { o.VariantID = 0 },
		"blank name":     func(o *domain.NewOrder) { o.Name = "  " },
		"no contact":     func(o *domain.NewOrder) { o.Contact = "" },
		"no method":      func(o *domain.NewOrder) { o.Method = "" },
		"negative total": func(o *domain.NewOrder) { o.Total = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := f.order()
			mutate(&in)
			_, err := f.svc.PlaceOrder(ctx, in)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	v, _ := f.st.GetVariant(ctx, f.variantID)
	require.Equal(t, 3, v.Stock)
}

func TestPlaceOrder_VariantMismatchAndMissing(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)
	other, _ := f.st.CreateProduct(ctx, domain.ProductFields{Name: "Spotify"})

	in := f.order()
	in.ProductID = other
	_, err := f.svc.PlaceOrder(ctx, in)
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	in = f.order()
	in.VariantID = 999
	_, err = f.svc.PlaceOrder(ctx, in)
	require.ErrorIs(t, err, domain.ErrNotFound)

	list, _ := f.svc.ListOrders(ctx)
	require.Empty(t, list)
}

func TestPlaceOrder_PublishesEnvelope(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)

	id, err := f.svc.PlaceOrder(ctx, f.order())
	require.NoError(t, err)
	require.Len(t, f.placed.msgs, 1)

	msg := f.placed.msgs[0]
	require.Equal(t, PartitionKey(id), msg.Key)

	var ev Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &ev))
	require.Equal(t, EventOrderPlaced, ev.EventType)
	require.Equal(t, "nava-api", ev.Producer)

	var p OrderPlacedPayload
	require.NoError(t, json.Unmarshal(ev.Payload, &p))
	require.Equal(t, id, p.OrderID)
	require.Equal(t, f.variantID, p.VariantID)
	require.Equal(t, domain.FormatOrderID(id), p.FormattedID)
}

func TestPlaceOrderOnce_ReplaysSameKey(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 3)
	f.svc.Idem = &fakeIdem{m: map[string]int64{}}

	first, replayed, err := f.svc.PlaceOrderOnce(ctx, "abc", f.order())
	require.NoError(t, err)
	require.False(t, replayed)

	second, replayed, err := f.svc.PlaceOrderOnce(ctx, "abc", f.order())
	require.NoError(t, err)
	require.True(t, replayed)
	require.Equal(t, first, second)

	v, _ := f.st.GetVariant(ctx, f.variantID)
	require.Equal(t, 2, v.Stock)

	// tanpa key selalu order baru
	third, _, err := f.svc.PlaceOrderOnce(ctx, "", f.order())
	require.NoError(t, err)
	require.NotEqual(t, first, third)
}

func TestGetOrder_NotFound(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 1)

	_, err := f.svc.GetOrder(ctx, 42)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.GetOrder(ctx, 0)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListOrders_NewestFirst(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 5)

	a, _ := f.svc.PlaceOrder(ctx, f.order())
	b, _ := f.svc.PlaceOrder(ctx, f.order())

	list, err := f.svc.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, b, list[0].ID)
	require.Equal(t, a, list[1].ID)
}

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := setup(t, 2)
	id, _ := f.svc.PlaceOrder(ctx, f.order())

	require.NoError(t, f.svc.UpdateStatus(ctx, id, "paid"))
	o, _ := f.svc.GetOrder(ctx, id)
	require.Equal(t, domain.StatusPaid, o.Status)

	// transisi bebas, termasuk balik ke pending
	require.NoError(t, f.svc.UpdateStatus(ctx, id, "pending"))
	require.Len(t, f.status.msgs, 2)

	require.ErrorIs(t, f.svc.UpdateStatus(ctx, id, "shipped"), domain.ErrInvalidInput)
	require.ErrorIs(t, f.svc.UpdateStatus(ctx, 999, "done"), domain.ErrNotFound)

	// stok tidak berubah oleh update status
	v, _ := f.st.GetVariant(ctx, f.variantID)
	require.Equal(t, 1, v.Stock)
}
