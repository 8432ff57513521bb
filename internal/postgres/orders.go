package postgres

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"

	"github.com/ariefcatur/nava-store/internal/domain"
)

func (q *queries) InsertOrder(ctx context.Context, o domain.Order) (int64, error) {
	status := o.Status
	if status == "" {
		status = domain.StatusPending
	}
	var id int64
	err := q.db.QueryRow(ctx, `
		INSERT INTO orders (product_id, variant_id, name, contact, method, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		o.ProductID, o.VariantID, o.Name, o.Contact, o.Method, o.Total, string(status), o.CreatedAt).Scan(&id)
	return id, storageErr(err, "insert order")
}

// Label produk/varian di-join saat baca, tidak disalin ke tabel orders.
const orderDetailSelect = `
	SELECT o.id, o.product_id, o.variant_id, o.name, o.contact, o.method, o.total, o.status, o.created_at,
	       COALESCE(p.name, ''), COALESCE(v.title, ''), COALESCE(v.price, 0)
	FROM orders o
	LEFT JOIN products p ON p.id = o.product_id
	LEFT JOIN product_variants v ON v.id = o.variant_id`

func scanOrderDetail(row pgx.Row) (domain.OrderDetail, error) {
	var (
		d      domain.OrderDetail
		status string
	)
	err := row.Scan(&d.ID, &d.ProductID, &d.VariantID, &d.Name, &d.Contact, &d.Method, &d.Total, &status, &d.CreatedAt,
		&d.ProductName, &d.VariantTitle, &d.VariantPrice)
	if err != nil {
		return d, err
	}
	d.Status = domain.Status(status)
	d.FormattedID = domain.FormatOrderID(d.ID)
	return d, nil
}

func (q *queries) GetOrderDetail(ctx context.Context, id int64) (domain.OrderDetail, error) {
	d, err := scanOrderDetail(q.db.QueryRow(ctx, orderDetailSelect+` WHERE o.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return d, domain.NotFoundf("order %d", id)
	}
	return d, storageErr(err, "get order")
}

func (q *queries) ListOrderDetails(ctx context.Context) ([]domain.OrderDetail, error) {
	rows, err := q.db.Query(ctx, orderDetailSelect+` ORDER BY o.id DESC`)
	if err != nil {
		return nil, storageErr(err, "list orders")
	}
	defer rows.Close()

	out := []domain.OrderDetail{}
	for rows.Next() {
		d, err := scanOrderDetail(rows)
		if err != nil {
			return nil, storageErr(err, "scan order")
		}
		out = append(out, d)
	}
	return out, storageErr(rows.Err(), "list orders")
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id int64, s domain.Status) error {
	ct, err := q.db.Exec(ctx, `UPDATE orders SET status=$2 WHERE id=$1`, id, string(s))
	if err != nil {
		return storageErr(err, "update order status")
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFoundf("order %d", id)
	}
	return nil
}
