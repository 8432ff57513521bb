package store

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/ariefcatur/nava-store/internal/domain"
)

// Memory adalah Store in-memory. Dipakai untuk dev lokal (STORE_DRIVER=memory)
// dan sebagai fake di test service. Transaksi = kerja di salinan data lalu swap.
type Memory struct {
	mu   sync.Mutex
	data *memData
}

type memData struct {
	nextProduct int64
	nextVariant int64
	nextOrder   int64
	products    map[int64]domain.Product
	variants    map[int64]domain.Variant
	orders      map[int64]domain.Order
}

func NewMemory() *Memory {
	return &Memory{data: &memData{
		nextProduct: 1,
		nextVariant: 1,
		nextOrder:   1,
		products:    map[int64]domain.Product{},
		variants:    map[int64]domain.Variant{},
		orders:      map[int64]domain.Order{},
	}}
}

var _ Store = (*Memory)(nil)

func (d *memData) clone() *memData {
	return &memData{
		nextProduct: d.nextProduct,
		nextVariant: d.nextVariant,
		nextOrder:   d.nextOrder,
		products:    maps.Clone(d.products),
		variants:    maps.Clone(d.variants),
		orders:      maps.Clone(d.orders),
	}
}

func withLock[T any](m *Memory, ctx context.Context, fn func(t *memTx) (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, domain.Unavailable(err, "memory store")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(&memTx{d: m.data})
}

func (m *Memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable(err, "memory store")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	work := m.data.clone()
	if err := fn(&memTx{d: work}); err != nil {
		return err
	}
	m.data = work
	return nil
}

func (m *Memory) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return domain.Unavailable(err, "memory store")
	}
	return nil
}

func (m *Memory) Close() {}

func (m *Memory) CountProducts(ctx context.Context) (int, error) {
	return withLock(m, ctx, func(t *memTx) (int, error) { return t.CountProducts(ctx) })
}

func (m *Memory) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return withLock(m, ctx, func(t *memTx) ([]domain.Product, error) { return t.ListProducts(ctx) })
}

func (m *Memory) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return withLock(m, ctx, func(t *memTx) (domain.Product, error) { return t.GetProduct(ctx, id) })
}

func (m *Memory) CreateProduct(ctx context.Context, f domain.ProductFields) (int64, error) {
	return withLock(m, ctx, func(t *memTx) (int64, error) { return t.CreateProduct(ctx, f) })
}

func (m *Memory) UpdateProduct(ctx context.Context, id int64, f domain.ProductFields) error {
	_, err := withLock(m, ctx, func(t *memTx) (struct{}, error) { return struct{}{}, t.UpdateProduct(ctx, id, f) })
	return err
}

func (m *Memory) ListVariants(ctx context.Context, productID int64) ([]domain.Variant, error) {
	return withLock(m, ctx, func(t *memTx) ([]domain.Variant, error) { return t.ListVariants(ctx, productID) })
}

func (m *Memory) ListAllVariants(ctx context.Context) ([]domain.Variant, error) {
	return withLock(m, ctx, func(t *memTx) ([]domain.Variant, error) { return t.ListAllVariants(ctx) })
}

func (m *Memory) GetVariant(ctx context.Context, id int64) (domain.Variant, error) {
	return withLock(m, ctx, func(t *memTx) (domain.Variant, error) { return t.GetVariant(ctx, id) })
}

func (m *Memory) CreateVariant(ctx context.Context, productID int64, f domain.VariantFields) (int64, error) {
	return withLock(m, ctx, func(t *memTx) (int64, error) { return t.CreateVariant(ctx, productID, f) })
}

func (m *Memory) UpdateVariant(ctx context.Context, id int64, f domain.VariantFields) error {
	_, err := withLock(m, ctx, func(t *memTx) (struct{}, error) { return struct{}{}, t.UpdateVariant(ctx, id, f) })
	return err
}

func (m *Memory) DeleteVariant(ctx context.Context, id int64) (int64, error) {
	return withLock(m, ctx, func(t *memTx) (int64, error) { return t.DeleteVariant(ctx, id) })
}

func (m *Memory) DecrementVariantStock(ctx context.Context, id int64) error {
	_, err := withLock(m, ctx, func(t *memTx) (struct{}, error) { return struct{}{}, t.DecrementVariantStock(ctx, id) })
	return err
}

func (m *Memory) SumVariantStock(ctx context.Context, productID int64) (int, error) {
	return withLock(m, ctx, func(t *memTx) (int, error) { return t.SumVariantStock(ctx, productID) })
}

func (m *Memory) SetProductStock(ctx context.Context, productID int64, stock int) error {
	_, err := withLock(m, ctx, func(t *memTx) (struct{}, error) { return struct{}{}, t.SetProductStock(ctx, productID, stock) })
	return err
}

func (m *Memory) InsertOrder(ctx context.Context, o domain.Order) (int64, error) {
	return withLock(m, ctx, func(t *memTx) (int64, error) { return t.InsertOrder(ctx, o) })
}

func (m *Memory) GetOrderDetail(ctx context.Context, id int64) (domain.OrderDetail, error) {
	return withLock(m, ctx, func(t *memTx) (domain.OrderDetail, error) { return t.GetOrderDetail(ctx, id) })
}

func (m *Memory) ListOrderDetails(ctx context.Context) ([]domain.OrderDetail, error) {
	return withLock(m, ctx, func(t *memTx) ([]domain.OrderDetail, error) { return t.ListOrderDetails(ctx) })
}

func (m *Memory) UpdateOrderStatus(ctx context.Context, id int64, s domain.Status) error {
	_, err := withLock(m, ctx, func(t *memTx) (struct{}, error) { return struct{}{}, t.UpdateOrderStatus(ctx, id, s) })
	return err
}

// memTx bekerja langsung di memData tanpa lock; pemanggil yang pegang lock.
type memTx struct{ d *memData }

func (t *memTx) CountProducts(context.Context) (int, error) { return len(t.d.products), nil }

func (t *memTx) ListProducts(context.Context) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(t.d.products))
	for _, id := range slices.Sorted(maps.Keys(t.d.products)) {
		out = append(out, t.d.products[id])
	}
	return out, nil
}

func (t *memTx) GetProduct(_ context.Context, id int64) (domain.Product, error) {
	p, ok := t.d.products[id]
	if !ok {
		return domain.Product{}, domain.NotFoundf("product %d not found", id)
	}
	return p, nil
}

func (t *memTx) CreateProduct(_ context.Context, f domain.ProductFields) (int64, error) {
	id := t.d.nextProduct
	t.d.nextProduct++
	t.d.products[id] = domain.Product{
		ID: id, Name: f.Name, Category: f.Category, Image: f.Image, Description: f.Description,
	}
	return id, nil
}

func (t *memTx) UpdateProduct(_ context.Context, id int64, f domain.ProductFields) error {
	p, ok := t.d.products[id]
	if !ok {
		return domain.NotFoundf("product %d not found", id)
	}
	p.Name, p.Category, p.Image, p.Description = f.Name, f.Category, f.Image, f.Description
	t.d.products[id] = p
	return nil
}

func (t *memTx) ListVariants(_ context.Context, productID int64) ([]domain.Variant, error) {
	out := []domain.Variant{}
	for _, id := range slices.Sorted(maps.Keys(t.d.variants)) {
		if v := t.d.variants[id]; v.ProductID == productID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (t *memTx) ListAllVariants(context.Context) ([]domain.Variant, error) {
	out := make([]domain.Variant, 0, len(t.d.variants))
	for _, id := range slices.Sorted(maps.Keys(t.d.variants)) {
		out = append(out, t.d.variants[id])
	}
	return out, nil
}

func (t *memTx) GetVariant(_ context.Context, id int64) (domain.Variant, error) {
	v, ok := t.d.variants[id]
	if !ok {
		return domain.Variant{}, domain.NotFoundf("variant %d not found", id)
	}
	return v, nil
}

func (t *memTx) CreateVariant(_ context.Context, productID int64, f domain.VariantFields) (int64, error) {
	if _, ok := t.d.products[productID]; !ok {
		return 0, domain.NotFoundf("product %d not found", productID)
	}
	id := t.d.nextVariant
	t.d.nextVariant++
	t.d.variants[id] = domain.Variant{
		ID: id, ProductID: productID, Title: f.Title, Price: f.Price, Stock: f.Stock, Description: f.Description,
	}
	return id, nil
}

func (t *memTx) UpdateVariant(_ context.Context, id int64, f domain.VariantFields) error {
	v, ok := t.d.variants[id]
	if !ok {
		return domain.NotFoundf("variant %d not found", id)
	}
	v.Title, v.Price, v.Stock, v.Description = f.Title, f.Price, f.Stock, f.Description
	t.d.variants[id] = v
	return nil
}

func (t *memTx) DeleteVariant(_ context.Context, id int64) (int64, error) {
	v, ok := t.d.variants[id]
	if !ok {
		return 0, domain.NotFoundf("variant %d not found", id)
	}
	delete(t.d.variants, id)
	return v.ProductID, nil
}

func (t *memTx) DecrementVariantStock(_ context.Context, id int64) error {
	v, ok := t.d.variants[id]
	if !ok {
		return domain.NotFoundf("variant %d not found", id)
	}
	if v.Stock <= 0 {
		return domain.ErrOutOfStock
	}
	v.Stock--
	t.d.variants[id] = v
	return nil
}

func (t *memTx) SumVariantStock(_ context.Context, productID int64) (int, error) {
	sum := 0
	for _, v := range t.d.variants {
		if v.ProductID == productID {
			sum += v.Stock
		}
	}
	return sum, nil
}

func (t *memTx) SetProductStock(_ context.Context, productID int64, stock int) error {
	p, ok := t.d.products[productID]
	if !ok {
		return domain.NotFoundf("product %d not found", productID)
	}
	p.Stock = stock
	t.d.products[productID] = p
	return nil
}

func (t *memTx) InsertOrder(_ context.Context, o domain.Order) (int64, error) {
	o.ID = t.d.nextOrder
	t.d.nextOrder++
	if o.Status == "" {
		o.Status = domain.StatusPending
	}
	t.d.orders[o.ID] = o
	return o.ID, nil
}

func (t *memTx) detail(o domain.Order) domain.OrderDetail {
	d := domain.OrderDetail{Order: o, FormattedID: domain.FormatOrderID(o.ID)}
	if p, ok := t.d.products[o.ProductID]; ok {
		d.ProductName = p.Name
	}
	if v, ok := t.d.variants[o.VariantID]; ok {
		d.VariantTitle = v.Title
		d.VariantPrice = v.Price
	}
	return d
}

func (t *memTx) GetOrderDetail(_ context.Context, id int64) (domain.OrderDetail, error) {
	o, ok := t.d.orders[id]
	if !ok {
		return domain.OrderDetail{}, domain.NotFoundf("order %d not found", id)
	}
	return t.detail(o), nil
}

func (t *memTx) ListOrderDetails(context.Context) ([]domain.OrderDetail, error) {
	ids := slices.Sorted(maps.Keys(t.d.orders))
	slices.Reverse(ids)
	out := make([]domain.OrderDetail, 0, len(ids))
	for _, id := range ids {
		out = append(out, t.detail(t.d.orders[id]))
	}
	return out, nil
}

func (t *memTx) UpdateOrderStatus(_ context.Context, id int64, s domain.Status) error {
	o, ok := t.d.orders[id]
	if !ok {
		return domain.NotFoundf("order %d not found", id)
	}
	o.Status = s
	t.d.orders[id] = o
	return nil
}
