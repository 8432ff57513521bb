package orders

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5/middleware"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/nava-store/internal/catalog"
	"github.com/ariefcatur/nava-store/internal/domain"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/store"
)

// Publisher dipenuhi oleh *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// Idempotency memetakan Idempotency-Key checkout ke order yang sudah dibuat.
type Idempotency interface {
	Lookup(ctx context.Context, key string) (orderID int64, found bool, err error)
	Remember(ctx context.Context, key string, orderID int64) error
}

type Service struct {
	Store   store.Store
	Log     *slog.Logger
	Metrics *metrics.Metrics

	// Semua opsional; nil = fitur mati.
	PlacedEvents Publisher
	StatusEvents Publisher
	Idem         Idempotency

	ServiceName string
	Timeout     time.Duration
	Now         func() time.Time
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

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func validateNewOrder(in domain.NewOrder) (domain.NewOrder, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Method = strings.TrimSpace(in.Method)
	switch {
	case in.ProductID <= 0:
		return in, domain.Invalidf("product_id is required")
	case in.VariantID <= 0:
		return in, domain.Invalidf("variant_id is required")
	case in.Name == "":
		return in, domain.Invalidf("name is required")
	case in.Contact == "":
		return in, domain.Invalidf("contact is required")
	case in.Method == "":
		return in, domain.Invalidf("method is required")
	case in.Total < 0:
		return in, domain.Invalidf("total must not be negative")
	}
	return in, nil
}

// PlaceOrder mencatat order pending, mengurangi stok varian 1 unit lalu
// reconcile stok produk, semuanya dalam satu transaksi. Varian dengan
// stok <= 0 ditolak ErrOutOfStock tanpa membuat order.
func (s *Service) PlaceOrder(ctx context.Context, in domain.NewOrder) (int64, error) {
	in, err := validateNewOrder(in)
	if err != nil {
		s.Metrics.OrderRejected("invalid_input")
		return 0, err
	}

	tctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var orderID int64
	var productStock int
	err = s.Store.InTx(tctx, func(tx store.Tx) error {
		v, err := tx.GetVariant(tctx, in.VariantID)
		if err != nil {
			return err
		}
		if v.ProductID != in.ProductID {
			return domain.Invalidf("variant %d does not belong to product %d", in.VariantID, in.ProductID)
		}

		orderID, err = tx.InsertOrder(tctx, domain.Order{
			ProductID: in.ProductID,
			VariantID: in.VariantID,
			Name:      in.Name,
			Contact:   in.Contact,
			Method:    in.Method,
			Total:     in.Total,
			Status:    domain.StatusPending,
			CreatedAt: s.now(),
		})
		if err != nil {
			return err
		}
		if err := tx.DecrementVariantStock(tctx, in.VariantID); err != nil {
			return err
		}
		productStock, err = catalog.Reconcile(tctx, tx, in.ProductID)
		return err
	})
	if err != nil {
		s.Metrics.OrderRejected(rejectReason(err))
		if errors.Is(err, domain.ErrOutOfStock) {
			s.log().Info("checkout rejected: out of stock", "product_id", in.ProductID, "variant_id", in.VariantID)
		}
		return 0, err
	}

	s.Metrics.OrderPlaced()
	s.Metrics.Reconciled()
	s.log().Info("order placed",
		"order_id", orderID, "formatted_id", domain.FormatOrderID(orderID),
		"product_id", in.ProductID, "variant_id", in.VariantID, "product_stock", productStock)

	s.publish(ctx, s.PlacedEvents, EventOrderPlaced, orderID, OrderPlacedPayload{
		OrderID:     orderID,
		FormattedID: domain.FormatOrderID(orderID),
		ProductID:   in.ProductID,
		VariantID:   in.VariantID,
		Method:      in.Method,
		Total:       in.Total,
	})
	return orderID, nil
}

// PlaceOrderOnce sama dengan PlaceOrder tapi key yang sama (mis. double
// submit dari browser) mengembalikan order yang sudah ada. key kosong = tanpa idempotency.
func (s *Service) PlaceOrderOnce(ctx context.Context, key string, in domain.NewOrder) (orderID int64, replayed bool, err error) {
	if key == "" || s.Idem == nil {
		orderID, err = s.PlaceOrder(ctx, in)
		return orderID, false, err
	}
	if id, found, err := s.Idem.Lookup(ctx, key); err != nil {
		// Redis hanya shortcut; DB tetap sumber kebenaran
		s.log().Warn("idempotency lookup failed", "err", err)
	} else if found {
		return id, true, nil
	}

	orderID, err = s.PlaceOrder(ctx, in)
	if err != nil {
		return 0, false, err
	}
	if err := s.Idem.Remember(ctx, key, orderID); err != nil {
		s.log().Warn("idempotency remember failed", "order_id", orderID, "err", err)
	}
	return orderID, false, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage_unavailable"
	default:
		return "error"
	}
}

// GetOrder mengembalikan order + label produk/varian. ErrNotFound kalau id tidak ada.
func (s *Service) GetOrder(ctx context.Context, id int64) (domain.OrderDetail, error) {
	if id <= 0 {
		return domain.OrderDetail{}, domain.NotFoundf("order %d", id)
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.GetOrderDetail(ctx, id)
}

// ListOrders: semua order, terbaru dulu.
func (s *Service) ListOrders(ctx context.Context) ([]domain.OrderDetail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.Store.ListOrderDetails(ctx)
}

// UpdateStatus hanya menerima pending|paid|done|canceled. Transisi tidak divalidasi.
func (s *Service) UpdateStatus(ctx context.Context, id int64, status string) error {
	st, err := domain.ParseStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return err
	}
	tctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.Store.UpdateOrderStatus(tctx, id, st); err != nil {
		return err
	}

	s.Metrics.StatusChanged(string(st))
	s.log().Info("order status updated", "order_id", id, "status", st)
	s.publish(ctx, s.StatusEvents, EventOrderStatusChanged, id, OrderStatusChangedPayload{OrderID: id, Status: string(st)})
	return nil
}

func (s *Service) publish(ctx context.Context, p Publisher, eventType string, orderID int64, payload any) {
	if p == nil {
		return
	}
	ev, err := NewEnvelope(eventType, s.ServiceName, middleware.GetReqID(ctx), strconv.FormatInt(orderID, 10), payload)
	if err != nil {
		s.log().Error("encode event failed", "event_type", eventType, "order_id", orderID, "err", err)
		return
	}
	value, err := json.Marshal(ev)
	if err != nil {
		s.log().Error("encode envelope failed", "event_type", eventType, "order_id", orderID, "err", err)
		return
	}
	p.Publish(PartitionKey(orderID), value, ev.Headers()...)
}
