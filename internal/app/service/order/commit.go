package order

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/metrics"
	"github.com/ovenline/bakehouse/pkg/tool"
	"github.com/ovenline/bakehouse/pkg/types"
)

// CommitPaidOrder atomically applies a payment-confirmed set of line items:
// order + items are created and each batch's quantity_sold is incremented, or
// nothing happens at all. Concurrent commits against the same batch serialize
// on the batch row (SELECT ... FOR UPDATE), so two commits can never jointly
// oversell it. Invoking it twice with the same payment ref returns the first
// order unchanged; this is what makes webhook redelivery safe even when two
// deliveries race past the gate's fast path.
func (s *Service) CommitPaidOrder(ctx context.Context, req *CommitRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var out *models.Order
	var replayed bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Order
		err := tx.Where("payment_ref = ?", req.PaymentRef).First(&existing).Error
		if err == nil {
			out = &existing
			replayed = true
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to look up order by payment ref: %w", err)
		}

		// Lock batch rows in a stable order so two multi-item commits that
		// overlap on batches cannot deadlock each other.
		items := make([]LineItem, len(req.Items))
		copy(items, req.Items)
		sort.Slice(items, func(i, j int) bool { return items[i].BatchID < items[j].BatchID })

		for _, it := range items {
			var b models.Batch
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", it.BatchID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("batch %s not found", it.BatchID)
				}
				return fmt.Errorf("failed to lock batch %s: %w", it.BatchID, err)
			}
			if it.Quantity > b.Available() {
				return &OversoldError{BatchID: b.ID, BatchDate: b.BatchDate, Requested: it.Quantity, Available: b.Available()}
			}
		}

		o := &models.Order{
			ID:               tool.GenerateUUIDV7(),
			UserID:           req.UserID,
			Status:           types.OrderStatusPaid,
			TotalCents:       req.TotalCents,
			DeliveryDate:     tool.DateOnly(req.DeliveryDate),
			PaymentRef:       req.PaymentRef,
			PaymentIntentRef: req.PaymentIntentRef,
		}
		if err := tx.Create(o).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		for _, it := range req.Items {
			item := &models.OrderItem{
				ID:                   tool.GenerateUUIDV7(),
				OrderID:              o.ID,
				BatchID:              it.BatchID,
				ProductID:            it.ProductID,
				Quantity:             it.Quantity,
				PriceAtPurchaseCents: it.PriceAtPurchaseCents,
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("failed to create order item: %w", err)
			}
			if err := tx.Model(&models.Batch{}).
				Where("id = ?", it.BatchID).
				UpdateColumn("quantity_sold", gorm.Expr("quantity_sold + ?", it.Quantity)).Error; err != nil {
				return fmt.Errorf("failed to increment sold counter for batch %s: %w", it.BatchID, err)
			}
		}

		if req.SubscriptionID != nil {
			link := &models.SubscriptionOrder{
				ID:             tool.GenerateUUIDV7(),
				SubscriptionID: *req.SubscriptionID,
				OrderID:        o.ID,
				BatchID:        req.Items[0].BatchID,
				Status:         types.SubscriptionOrderStatusCharged,
			}
			if err := tx.Create(link).Error; err != nil {
				return fmt.Errorf("failed to create subscription order link: %w", err)
			}
		}

		out = o
		return nil
	})
	if err != nil {
		var oversold *OversoldError
		if errors.As(err, &oversold) {
			metrics.OversellRejected.Inc()
			return nil, err
		}
		// Lost the race against a concurrent commit carrying the same
		// payment ref: the unique index fired, the other side won. Return
		// its order.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var winner models.Order
			if ferr := s.db.WithContext(ctx).Where("payment_ref = ?", req.PaymentRef).First(&winner).Error; ferr == nil {
				return &winner, nil
			}
		}
		return nil, err
	}

	if replayed {
		logctx.FromCtx(ctx, s.log).Infow("order_commit_replayed", "order_id", out.ID, "payment_ref", req.PaymentRef)
		return out, nil
	}

	origin := "checkout"
	if req.SubscriptionID != nil {
		origin = "subscription"
	}
	metrics.OrdersCommitted.WithLabelValues(origin).Inc()
	logctx.FromCtx(ctx, s.log).Infow("order_committed", "order_id", out.ID, "user_id", req.UserID, "origin", origin, "total_cents", req.TotalCents, "items", len(req.Items))
	return out, nil
}

// FindByPaymentRef is the gate's fast-path lookup for already-applied events.
func (s *Service) FindByPaymentRef(ctx context.Context, paymentRef string) (*models.Order, error) {
	var o models.Order
	err := s.db.WithContext(ctx).Where("payment_ref = ?", paymentRef).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find order by payment ref: %w", err)
	}
	return &o, nil
}
