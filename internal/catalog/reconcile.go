package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/store"
)

// Reconcile menghitung ulang products.stock = SUM(stok varian) lalu menyimpannya.
// Wajib dipanggil di transaksi yang sama dengan mutasi stok varian.
// Idempoten: dua panggilan berturut-turut tanpa mutasi menghasilkan nilai sama.
func Reconcile(ctx context.Context, c store.Catalog, productID int64) (int, error) {
	sum, err := c.SumVariantStock(ctx, productID)
	if err != nil {
		return 0, errors.Wrapf(err, "reconcile product %d", productID)
	}
	if err := c.SetProductStock(ctx, productID, sum); err != nil {
		return 0, errors.Wrapf(err, "reconcile product %d", productID)
	}
	return sum, nil
}

// LiveStock menjumlah stok dari daftar varian yang sudah dibaca.
func LiveStock(variants []domain.Variant) int {
	sum := 0
	for _, v := range variants {
		sum += v.Stock
	}
	return sum
}
