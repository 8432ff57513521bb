// Package catalog menyusun produk + varian untuk konsumsi publik/admin dan
// menjaga invarian products.stock == SUM(product_variants.stock).
package catalog

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/store"
)

// DefaultVariantStock stok awal varian baru dari admin "tambah varian".
const DefaultVariantStock = 10

// SeedLock mencegah dua instance men-seed katalog kosong bersamaan.
type SeedLock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type Service struct {
	Store   store.Store
	Log     *slog.Logger
	Metrics *metrics.Metrics
	Lock    SeedLock // opsional

	DefaultVariantStock int
	// SeedOnEmpty: GetCatalog yang menemukan katalog kosong boleh memicu
	// Bootstrap, maksimal sekali per proses.
	SeedOnEmpty bool
	Timeout     time.Duration

	seedOnce sync.Once
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

func (s *Service) log() *slog.Logger {
	if s.Log == nil {
		return slog.Default()
	}
	return s.Log
}

func (s *Service) variantStock() int {
	if s.DefaultVariantStock > 0 {
		return s.DefaultVariantStock
	}
	return DefaultVariantStock
}

// Bootstrap mengisi katalog awal kalau tabel produk masih kosong.
// Dipanggil sekali saat startup oleh proses pemilik store.
func (s *Service) Bootstrap(ctx context.Context) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	n, err := s.Store.CountProducts(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	if s.Lock != nil {
		ok, err := s.Lock.Acquire(ctx)
		if err != nil {
			return false, errors.Wrap(err, "acquire seed lock")
		}
		if !ok {
			s.log().Info("catalog seeding held by another instance, skipping")
			return false, nil
		}
		defer func() {
			if err := s.Lock.Release(context.WithoutCancel(ctx)); err != nil {
				s.log().Warn("release seed lock failed", "err", err)
			}
		}()
	}

	var seeded int
	err = s.Store.InTx(ctx, func(tx store.Tx) error {
		// cek ulang di dalam tx, instance lain bisa saja sudah selesai
		n, err := tx.CountProducts(ctx)
		if err != nil || n > 0 {
			return err
		}
		seeded, err = seed(ctx, tx)
		return err
	})
	if err != nil {
		return false, errors.Wrap(err, "seed catalog")
	}
	if seeded > 0 {
		s.log().Info("catalog seeded", "products", seeded)
	}
	return seeded > 0, nil
}

// GetCatalog mengembalikan semua produk beserta variannya. Stock produk
// dihitung ulang dari varian saat baca; nilai tersimpan hanya dibandingkan.
func (s *Service) GetCatalog(ctx context.Context) ([]domain.Product, error) {
	products, err := s.readCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 || !s.SeedOnEmpty {
		return products, nil
	}

	var seeded bool
	s.seedOnce.Do(func() {
		seeded, err = s.Bootstrap(ctx)
	})
	if err != nil {
		return nil, err
	}
	if !seeded {
		return products, nil
	}
	return s.readCatalog(ctx)
}

func (s *Service) readCatalog(ctx context.Context) ([]domain.Product, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	products, err := s.Store.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	variants, err := s.Store.ListAllVariants(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[int64][]domain.Variant, len(products))
	for _, v := range variants {
		byProduct[v.ProductID] = append(byProduct[v.ProductID], v)
	}
	for i := range products {
		p := &products[i]
		p.Variants = byProduct[p.ID]
		if p.Variants == nil {
			p.Variants = []domain.Variant{}
		}
		live := LiveStock(p.Variants)
		if live != p.Stock {
			s.log().Warn("product stock drift", "product_id", p.ID, "stored", p.Stock, "live", live)
		}
		p.Stock = live
	}
	return products, nil
}

func validateProduct(f domain.ProductFields) (domain.ProductFields, error) {
	f.Name = strings.TrimSpace(f.Name)
	if f.Name == "" {
		return f, domain.Invalidf("product name is required")
	}
	return f, nil
}

func validateVariant(f domain.VariantFields) (domain.VariantFields, error) {
	f.Title = strings.TrimSpace(f.Title)
	switch {
	case f.Title == "":
		return f, domain.Invalidf("variant title is required")
	case f.Price < 0:
		return f, domain.Invalidf("variant price must not be negative")
	case f.Stock < 0:
		return f, domain.Invalidf("variant stock must not be negative")
	}
	return f, nil
}

func (s *Service) CreateProduct(ctx context.Context, f domain.ProductFields) (int64, error) {
	f, err := validateProduct(f)
	if err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err = s.Store.InTx(ctx, func(tx store.Tx) error {
		var err error
		if id, err = tx.CreateProduct(ctx, f); err != nil {
			return err
		}
		_, err = s.reconcile(ctx, tx, id)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log().Info("product created", "product_id", id, "name", f.Name)
	return id, nil
}

// UpdateProduct menimpa field deskriptif produk. Stock tidak bisa diset di sini.
func (s *Service) UpdateProduct(ctx context.Context, id int64, f domain.ProductFields) error {
	f, err := validateProduct(f)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.Store.UpdateProduct(ctx, id, f); err != nil {
		return err
	}
	s.log().Info("product updated", "product_id", id)
	return nil
}

// AddVariant membuat varian baru dengan stok default lalu reconcile produknya.
func (s *Service) AddVariant(ctx context.Context, productID int64, title string, price int64, description string) (int64, error) {
	f, err := validateVariant(domain.VariantFields{Title: title, Price: price, Stock: s.variantStock(), Description: description})
	if err != nil {
		return 0, err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err = s.Store.InTx(ctx, func(tx store.Tx) error {
		if _, err := tx.GetProduct(ctx, productID); err != nil {
			return err
		}
		var err error
		if id, err = tx.CreateVariant(ctx, productID, f); err != nil {
			return err
		}
		_, err = s.reconcile(ctx, tx, productID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log().Info("variant added", "product_id", productID, "variant_id", id, "stock", f.Stock)
	return id, nil
}

func (s *Service) UpdateVariant(ctx context.Context, id int64, f domain.VariantFields) error {
	f, err := validateVariant(f)
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var stock int
	var productID int64
	err = s.Store.InTx(ctx, func(tx store.Tx) error {
		v, err := tx.GetVariant(ctx, id)
		if err != nil {
			return err
		}
		productID = v.ProductID
		if err := tx.UpdateVariant(ctx, id, f); err != nil {
			return err
		}
		stock, err = s.reconcile(ctx, tx, productID)
		return err
	})
	if err != nil {
		return err
	}
	s.log().Info("variant updated", "variant_id", id, "product_id", productID, "product_stock", stock)
	return nil
}

func (s *Service) DeleteVariant(ctx context.Context, id int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var productID int64
	err := s.Store.InTx(ctx, func(tx store.Tx) error {
		var err error
		if productID, err = tx.DeleteVariant(ctx, id); err != nil {
			return err
		}
		_, err = s.reconcile(ctx, tx, productID)
		return err
	})
	if err != nil {
		return err
	}
	s.log().Info("variant deleted", "variant_id", id, "product_id", productID)
	return nil
}

func (s *Service) reconcile(ctx context.Context, c store.Catalog, productID int64) (int, error) {
	stock, err := Reconcile(ctx, c, productID)
	if err != nil {
		return 0, err
	}
	s.Metrics.Reconciled()
	return stock, nil
}
