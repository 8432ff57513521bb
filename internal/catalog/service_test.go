package catalog

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/store"
)

func setup(t *testing.T) (*Service, *store.Memory) {
	t.Helper()
	st := store.NewMemory()
	return &Service{Store: st, Metrics: metrics.New(prometheus.NewRegistry())}, st
}

// requireInvariant memastikan products.stock tersimpan == SUM(stok varian).
func requireInvariant(t *testing.T, st store.Catalog) {
	t.Helper()
	ctx := context.Background()
	products, err := st.ListProducts(ctx)
	require.NoError(t, err)
	for _, p := range products {
		vs, err := st.ListVariants(ctx, p.ID)
		require.NoError(t, err)
		require.Equal(t, LiveStock(vs), p.Stock, "product %d", p.ID)
	}
}

func TestReconcile_SumAndIdempotent(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	pid, _ := st.CreateProduct(ctx, domain.ProductFields{Name: "Netflix Premium"})
	_, _ = st.CreateVariant(ctx, pid, domain.VariantFields{Title: "Private", Stock: 3})
	_, _ = st.CreateVariant(ctx, pid, domain.VariantFields{Title: "Sharing", Stock: 4})

	got, err := Reconcile(ctx, st, pid)
	require.NoError(t, err)
	require.Equal(t, 7, got)

	again, err := Reconcile(ctx, st, pid)
	require.NoError(t, err)
	require.Equal(t, got, again)

	p, _ := st.GetProduct(ctx, pid)
	require.Equal(t, 7, p.Stock)
}

func TestReconcile_NoVariantsIsZero(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()
	pid, _ := st.CreateProduct(ctx, domain.ProductFields{Name: "Kosong"})
	require.NoError(t, st.SetProductStock(ctx, pid, 99))

	got, err := Reconcile(ctx, st, pid)
	require.NoError(t, err)
	require.Zero(t, got)

	_, err = Reconcile(ctx, st, 404)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBootstrap_SeedsOnce(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	seeded, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	n, _ := st.CountProducts(ctx)
	require.Equal(t, len(seedCatalog), n)
	requireInvariant(t, st)

	seeded, err = svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
	n, _ = st.CountProducts(ctx)
	require.Equal(t, len(seedCatalog), n)
}

type fakeLock struct {
	free     bool
	released bool
}

func (l *fakeLock) Acquire(context.Context) (bool, error) { return l.free, nil }
func (l *fakeLock) Release(context.Context) error         { l.released = true; return nil }

func TestBootstrap_LockHeldElsewhere(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	svc.Lock = &fakeLock{free: false}

	seeded, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
	n, _ := st.CountProducts(ctx)
	require.Zero(t, n)

	lock := &fakeLock{free: true}
	svc.Lock = lock
	seeded, err = svc.Bootstrap(ctx)
	require.NoError(t, err)
	require.True(t, seeded)
	require.True(t, lock.released)
}

func TestGetCatalog_BootstrapOnEmpty(t *testing.T) {
	ctx := context.Background()
	svc, _ := setup(t)

	svc.SeedOnEmpty = false
	products, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	require.Empty(t, products)

	svc.SeedOnEmpty = true
	products, err = svc.GetCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, products, len(seedCatalog))

	netflix := products[0]
	require.Equal(t, "Netflix Premium", netflix.Name)
	require.Len(t, netflix.Variants, 3)
	require.Equal(t, 30, netflix.Stock)
}

func TestGetCatalog_LiveStockFromVariants(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	pid, _ := st.CreateProduct(ctx, domain.ProductFields{Name: "Spotify"})
	_, _ = st.CreateVariant(ctx, pid, domain.VariantFields{Title: "Private", Stock: 2})
	_, _ = st.CreateVariant(ctx, pid, domain.VariantFields{Title: "Sharing", Stock: 5})
	empty, _ := st.CreateProduct(ctx, domain.ProductFields{Name: "Tanpa Varian"})

	products, err := svc.GetCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.Equal(t, 7, products[0].Stock)
	require.Equal(t, empty, products[1].ID)
	require.NotNil(t, products[1].Variants)
	require.Zero(t, products[1].Stock)
}

func TestAdminMutations_KeepInvariant(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)

	pid, err := svc.CreateProduct(ctx, domain.ProductFields{Name: "Canva Pro", Category: "Aplikasi Premium"})
	require.NoError(t, err)

	vid, err := svc.AddVariant(ctx, pid, "Private 1 Bulan", 20000, "")
	require.NoError(t, err)
	v, _ := st.GetVariant(ctx, vid)
	require.Equal(t, DefaultVariantStock, v.Stock)
	requireInvariant(t, st)

	vid2, err := svc.AddVariant(ctx, pid, "Sharing 1 Bulan", 10000, "akun bersama")
	require.NoError(t, err)
	p, _ := st.GetProduct(ctx, pid)
	require.Equal(t, 2*DefaultVariantStock, p.Stock)

	require.NoError(t, svc.UpdateVariant(ctx, vid, domain.VariantFields{Title: "Private 1 Bulan", Price: 21000, Stock: 3}))
	p, _ = st.GetProduct(ctx, pid)
	require.Equal(t, 3+DefaultVariantStock, p.Stock)
	requireInvariant(t, st)

	require.NoError(t, svc.DeleteVariant(ctx, vid2))
	p, _ = st.GetProduct(ctx, pid)
	require.Equal(t, 3, p.Stock)
	requireInvariant(t, st)

	require.NoError(t, svc.UpdateProduct(ctx, pid, domain.ProductFields{Name: "Canva Pro+", Category: "Aplikasi Premium"}))
	p, _ = st.GetProduct(ctx, pid)
	require.Equal(t, "Canva Pro+", p.Name)
	require.Equal(t, 3, p.Stock)
}

func TestAdminMutations_Errors(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	pid, _ := svc.CreateProduct(ctx, domain.ProductFields{Name: "Zoom Pro"})

	_, err := svc.CreateProduct(ctx, domain.ProductFields{Name: "  "})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddVariant(ctx, 404, "1 Bulan", 10000, "")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddVariant(ctx, pid, "", 10000, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.AddVariant(ctx, pid, "1 Bulan", -1, "")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	err = svc.UpdateVariant(ctx, 404, domain.VariantFields{Title: "x"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	vid, _ := svc.AddVariant(ctx, pid, "1 Bulan", 10000, "")
	err = svc.UpdateVariant(ctx, vid, domain.VariantFields{Title: "1 Bulan", Stock: -5})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	require.ErrorIs(t, svc.DeleteVariant(ctx, 404), domain.ErrNotFound)
	require.ErrorIs(t, svc.UpdateProduct(ctx, 404, domain.ProductFields{Name: "x"}), domain.ErrNotFound)

	requireInvariant(t, st)
}

func TestInvariant_RandomMutationSequence(t *testing.T) {
	ctx := context.Background()
	svc, st := setup(t)
	pid, _ := svc.CreateProduct(ctx, domain.ProductFields{Name: "Diamond FF"})

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := svc.AddVariant(ctx, pid, "Top Up", int64(1000*(i+1)), "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for i, id := range ids {
		require.NoError(t, svc.UpdateVariant(ctx, id, domain.VariantFields{Title: "Top Up", Stock: i * 3}))
		requireInvariant(t, st)
	}
	for _, id := range ids[:3] {
		require.NoError(t, svc.DeleteVariant(ctx, id))
		requireInvariant(t, st)
	}
	p, _ := st.GetProduct(ctx, pid)
	require.Equal(t, 9+12, p.Stock)
}
