package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/store"
)

// dbtx dipenuhi oleh *pgxpool.Pool maupun pgx.Tx.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	*queries
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{queries: &queries{db: pool}, pool: pool}
}

func (s *Store) InTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storageErr(err, "begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr(err, "commit tx")
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return storageErr(s.pool.Ping(ctx), "ping")
}

func (s *Store) Close() { s.pool.Close() }

// storageErr: error dari server (PgError) dibungkus biasa, selain itu
// (koneksi, timeout, pool tertutup) dianggap storage tidak tersedia.
func storageErr(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return errors.Wrap(err, op)
	}
	return domain.Unavailable(err, op)
}

const fkViolation = "23503"

type queries struct{ db dbtx }

func (q *queries) CountProducts(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, storageErr(err, "count products")
	}
	return n, nil
}

func (q *queries) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, category, image, description, stock
	                              FROM products ORDER BY id`)
	if err != nil {
		return nil, storageErr(err, "list products")
	}
	defer rows.Close()

	out := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.Image, &p.Description, &p.Stock); err != nil {
			return nil, storageErr(err, "scan product")
		}
		out = append(out, p)
	}
	return out, storageErr(rows.Err(), "list products")
}

func (q *queries) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	var p domain.Product
	err := q.db.QueryRow(ctx, `SELECT id, name, category, image, description, stock
	                           FROM products WHERE id=$1`, id).
		Scan(&p.ID, &p.Name, &p.Category, &p.Image, &p.Description, &p.Stock)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, domain.NotFoundf("product %d", id)
	}
	return p, storageErr(err, "get product")
}

func (q *queries) CreateProduct(ctx context.Context, f domain.ProductFields) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO products (name, category, image, description, stock)
		VALUES ($1, $2, $3, $4, 0) RETURNING id`,
		f.Name, f.Category, f.Image, f.Description).Scan(&id)
	return id, storageErr(err, "create product")
}

func (q *queries) UpdateProduct(ctx context.Context, id int64, f domain.ProductFields) error {
	ct, err := q.db.Exec(ctx, `
		UPDATE products SET name=$2, category=$3, image=$4, description=$5 WHERE id=$1`,
		id, f.Name, f.Category, f.Image, f.Description)
	if err != nil {
		return storageErr(err, "update product")
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFoundf("product %d", id)
	}
	return nil
}

const variantCols = `id, product_id, title, price, stock, description`

func scanVariants(rows pgx.Rows) ([]domain.Variant, error) {
	defer rows.Close()
	out := []domain.Variant{}
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Title, &v.Price, &v.Stock, &v.Description); err != nil {
			return nil, storageErr(err, "scan variant")
		}
		out = append(out, v)
	}
	return out, storageErr(rows.Err(), "list variants")
}

func (q *queries) ListVariants(ctx context.Context, productID int64) ([]domain.Variant, error) {
	rows, err := q.db.Query(ctx, `SELECT `+variantCols+` FROM product_variants
	                              WHERE product_id=$1 ORDER BY id`, productID)
	if err != nil {
		return nil, storageErr(err, "list variants")
	}
	return scanVariants(rows)
}

func (q *queries) ListAllVariants(ctx context.Context) ([]domain.Variant, error) {
	rows, err := q.db.Query(ctx, `SELECT `+variantCols+` FROM product_variants ORDER BY id`)
	if err != nil {
		return nil, storageErr(err, "list variants")
	}
	return scanVariants(rows)
}

func (q *queries) GetVariant(ctx context.Context, id int64) (domain.Variant, error) {
	var v domain.Variant
	err := q.db.QueryRow(ctx, `SELECT `+variantCols+` FROM product_variants WHERE id=$1`, id).
		Scan(&v.ID, &v.ProductID, &v.Title, &v.Price, &v.Stock, &v.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return v, domain.NotFoundf("variant %d", id)
	}
	return v, storageErr(err, "get variant")
}

func (q *queries) CreateVariant(ctx context.Context, productID int64, f domain.VariantFields) (int64, error) {
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO product_variants (product_id, title, price, stock, description)
		VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		productID, f.Title, f.Price, f.Stock, f.Description).Scan(&id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == fkViolation {
		return 0, domain.NotFoundf("product %d", productID)
	}
	return id, storageErr(err, "create variant")
}

func (q *queries) UpdateVariant(ctx context.Context, id int64, f domain.VariantFields) error {
	ct, err := q.db.Exec(ctx, `
		UPDATE product_variants SET title=$2, price=$3, stock=$4, description=$5 WHERE id=$1`,
		id, f.Title, f.Price, f.Stock, f.Description)
	if err != nil {
		return storageErr(err, "update variant")
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFoundf("variant %d", id)
	}
	return nil
}

func (q *queries) DeleteVariant(ctx context.Context, id int64) (int64, error) {
	var productID int64
	err := q.db.QueryRow(ctx, `DELETE FROM product_variants WHERE id=$1 RETURNING product_id`, id).Scan(&productID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.NotFoundf("variant %d", id)
	}
	return productID, storageErr(err, "delete variant")
}

// DecrementVariantStock satu statement bersyarat: dua checkout bersamaan
// di varian stok 1 -> hanya satu yang dapat RowsAffected 1.
func (q *queries) DecrementVariantStock(ctx context.Context, id int64) error {
	ct, err := q.db.Exec(ctx, `UPDATE product_variants SET stock = stock - 1 WHERE id=$1 AND stock > 0`, id)
	if err != nil {
		return storageErr(err, "decrement stock")
	}
	if ct.RowsAffected() == 1 {
		return nil
	}
	var exists bool
	if err := q.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM product_variants WHERE id=$1)`, id).Scan(&exists); err != nil {
		return storageErr(err, "check variant")
	}
	if !exists {
		return domain.NotFoundf("variant %d", id)
	}
	return domain.ErrOutOfStock
}

func (q *queries) SumVariantStock(ctx context.Context, productID int64) (int, error) {
	var sum int
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(stock), 0) FROM product_variants WHERE product_id=$1`, productID).Scan(&sum)
	return sum, storageErr(err, "sum variant stock")
}

func (q *queries) SetProductStock(ctx context.Context, productID int64, stock int) error {
	ct, err := q.db.Exec(ctx, `UPDATE products SET stock=$2 WHERE id=$1`, productID, stock)
	if err != nil {
		return storageErr(err, "set product stock")
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFoundf("product %d", productID)
	}
	return nil
}
