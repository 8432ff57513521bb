// Package stockwatch mengonsumsi OrderPlaced dan menerbitkan StockLow
// ketika stok varian yang baru terjual turun ke bawah ambang.
package stockwatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/cockroachdb/errors"
	kafkago "github.com/segmentio/kafka-go"

	"github.com/ariefcatur/nava-store/internal/domain"
	kafkax "github.com/ariefcatur/nava-store/internal/kafka"
	"github.com/ariefcatur/nava-store/internal/metrics"
	"github.com/ariefcatur/nava-store/internal/orders"
	"github.com/ariefcatur/nava-store/internal/store"
)

// Deduper dipenuhi oleh *redisx.Dedup.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

type Service struct {
	Catalog     store.Catalog
	Dedup       Deduper // opsional
	Alerts      orders.Publisher
	Log         *slog.Logger
	Metrics     *metrics.Metrics
	Threshold   int
	ServiceName string
}

// HandleOrderPlaced dipasang sebagai handler consumer.
func (s *Service) HandleOrderPlaced(ctx context.Context, m kafkago.Message) error {
	// 1) decode envelope
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return errors.Wrap(err, "decode envelope")
	}
	if env.EventType != orders.EventOrderPlaced {
		return nil
	} // ignore

	// 2) dedup pakai event_id
	if s.Dedup != nil {
		first, err := s.Dedup.FirstSeen(ctx, env.EventID)
		if err != nil {
			return err
		}
		if !first {
			return nil
		}
	}

	// 3) decode payload
	p, err := kafkax.UnwrapPayload[orders.OrderPlacedPayload](env.Payload)
	if err != nil {
		return err
	}

	// 4) baca stok terkini, bukan dari event
	v, err := s.Catalog.GetVariant(ctx, p.VariantID)
	if errors.Is(err, domain.ErrNotFound) {
		s.Log.Info("variant gone, skipping", "variant_id", p.VariantID, "order_id", p.OrderID)
		return nil
	}
	if err != nil {
		return err
	}
	if v.Stock > s.Threshold {
		return nil
	}

	s.Log.Warn("low stock",
		"product_id", v.ProductID, "variant_id", v.ID, "variant_title", v.Title,
		"stock", v.Stock, "threshold", s.Threshold, "order_id", p.OrderID)
	s.Metrics.LowStockAlert()
	return s.publishLow(v, p.OrderID, env.TraceID)
}

func (s *Service) publishLow(v domain.Variant, orderID int64, trace string) error {
	if s.Alerts == nil {
		return nil
	}
	ev, err := orders.NewEnvelope(orders.EventStockLow, s.ServiceName, trace,
		strconv.FormatInt(orderID, 10), orders.StockLowPayload{
			ProductID:    v.ProductID,
			VariantID:    v.ID,
			VariantTitle: v.Title,
			Stock:        v.Stock,
			Threshold:    s.Threshold,
			OrderID:      orderID,
		})
	if err != nil {
		return err
	}
	// partisi per varian supaya alert satu varian tetap berurutan
	s.Alerts.Publish([]byte(strconv.FormatInt(v.ID, 10)), kafkax.MustMarshal(ev), ev.Headers()...)
	return nil
}
