// Package store mendefinisikan port penyimpanan katalog dan ledger order.
// Implementasi: Postgres (internal/postgres) dan in-memory (Memory).
package store

import (
	"context"

	"github.com/ariefcatur/nava-store/internal/domain"
)

// Catalog menyimpan produk & varian. Semua update adalah overwrite penuh.
type Catalog interface {
	CountProducts(ctx context.Context) (int, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id int64) (domain.Product, error)
	CreateProduct(ctx context.Context, f domain.ProductFields) (int64, error)
	UpdateProduct(ctx context.Context, id int64, f domain.ProductFields) error

	ListVariants(ctx context.Context, productID int64) ([]domain.Variant, error)
	ListAllVariants(ctx context.Context) ([]domain.Variant, error)
	GetVariant(ctx context.Context, id int64) (domain.Variant, error)
	CreateVariant(ctx context.Context, productID int64, f domain.VariantFields) (int64, error)
	UpdateVariant(ctx context.Context, id int64, f domain.VariantFields) error
	// DeleteVariant mengembalikan product_id pemilik varian yang dihapus.
	DeleteVariant(ctx context.Context, id int64) (int64, error)

	// DecrementVariantStock: stock = stock - 1 hanya kalau stock > 0.
	// ErrOutOfStock kalau guard gagal, ErrNotFound kalau varian tidak ada.
	DecrementVariantStock(ctx context.Context, id int64) error
	// SumVariantStock: total stok varian, 0 kalau produk belum punya varian.
	SumVariantStock(ctx context.Context, productID int64) (int, error)
	SetProductStock(ctx context.Context, productID int64, stock int) error
}

// Ledger menyimpan order. Hanya status yang bisa diubah setelah insert.
type Ledger interface {
	InsertOrder(ctx context.Context, o domain.Order) (int64, error)
	GetOrderDetail(ctx context.Context, id int64) (domain.OrderDetail, error)
	// ListOrderDetails: terbaru dulu.
	ListOrderDetails(ctx context.Context) ([]domain.OrderDetail, error)
	UpdateOrderStatus(ctx context.Context, id int64, s domain.Status) error
}

// Tx adalah view Catalog+Ledger di dalam satu transaksi.
type Tx interface {
	Catalog
	Ledger
}

type Store interface {
	Tx
	// InTx menjalankan fn dalam satu transaksi; error dari fn -> rollback.
	InTx(ctx context.Context, fn func(tx Tx) error) error
	Ping(ctx context.Context) error
	Close()
}
