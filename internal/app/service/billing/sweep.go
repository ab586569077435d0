package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	ordersvc "github.com/ovenline/bakehouse/internal/app/service/order"
	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/config"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/metrics"
	"github.com/ovenline/bakehouse/pkg/tool"
	"github.com/ovenline/bakehouse/pkg/types"
)

// Sweep runs the scheduled billing pass: it finds every active subscription
// whose next delivery date has arrived, charges its saved card off-session,
// and commits the resulting order through the same capacity-safe path that
// checkout confirmations use.
type Sweep struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	orders   *ordersvc.Service
	payments payments.Client
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, orders *ordersvc.Service, pay payments.Client) *Sweep {
	return &Sweep{cfg: cfg, db: db, log: log, orders: orders, payments: pay}
}

// SweepResult is the per-subscription line of a sweep run report.
type SweepResult struct {
	SubscriptionID string             `json:"subscription_id"`
	Outcome        types.SweepOutcome `json:"outcome"`
	OrderID        string             `json:"order_id,omitempty"`
	Error          string             `json:"error,omitempty"`
}

type SweepSummary struct {
	RanAt     time.Time      `json:"ran_at"`
	Processed int            `json:"processed"`
	Counts    map[string]int `json:"counts"`
	Results   []*SweepResult `json:"results"`
}

// RunSweep processes every due subscription once. One subscription's failure
// never aborts the run; each gets an isolated verdict. Safe to re-run: a
// charged subscription's date has advanced past today, and the commit path is
// idempotent on the charge reference anyway.
func (s *Sweep) RunSweep(ctx context.Context, today time.Time) (*SweepSummary, error) {
	today = tool.DateOnly(today)

	var due []*models.Subscription
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("is_active = ? AND next_delivery_date <= ?", true, today).
		Where("customer_ref IS NOT NULL AND payment_method_ref IS NOT NULL").
		Order("created_at").
		Find(&due).Error; err != nil {
		return nil, fmt.Errorf("failed to load due subscriptions: %w", err)
	}

	summary := &SweepSummary{
		RanAt:   time.Now(),
		Counts:  map[string]int{},
		Results: make([]*SweepResult, 0, len(due)),
	}

	logctx.FromCtx(ctx, s.log).Infow("billing_sweep_started", "date", today.Format("2006-01-02"), "due", len(due))

	for _, sub := range due {
		res := s.processOne(ctx, sub)
		summary.Results = append(summary.Results, res)
		summary.Counts[string(res.Outcome)]++
		metrics.SweepOutcomes.WithLabelValues(string(res.Outcome)).Inc()
	}
	summary.Processed = len(summary.Results)

	logctx.FromCtx(ctx, s.log).Infow("billing_sweep_finished", "date", today.Format("2006-01-02"), "processed", summary.Processed, "counts", summary.Counts)
	return summary, nil
}

// processOne evaluates and, when possible, bills a single subscription. A
// panic in one subscription is contained here so the rest of the run proceeds.
// The failure counter belongs to the payment path only: errors raised before
// a charge is attempted (batch lookup, cap sum) yield a failed outcome for
// the run report but leave failed_payment_count alone, so an infrastructure
// glitch can never deactivate a subscriber whose card was fine.
func (s *Sweep) processOne(ctx context.Context, sub *models.Subscription) (res *SweepResult) {
	charging := false
	defer func() {
		if r := recover(); r != nil {
			logctx.FromCtx(ctx, s.log).Errorf("billing sweep panic for subscription %s: %v", sub.ID, r)
			res = &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeFailed, Error: fmt.Sprintf("panic: %v", r)}
			if charging {
				s.recordFailure(ctx, sub, res.Error)
			}
		}
	}()

	deliveryDate := tool.DateOnly(sub.NextDeliveryDate)

	batch, err := s.findBatch(ctx, sub.ProductID, deliveryDate)
	if err != nil {
		return &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeFailed, Error: err.Error()}
	}

	subscribed := 0
	if batch != nil {
		subscribed, err = s.subscribedQuantity(ctx, batch.ID)
		if err != nil {
			return &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeFailed, Error: err.Error()}
		}
	}

	outcome := decide(sub, batch, subscribed)
	if outcome != types.SweepOutcomeCharged {
		// Capacity skips are not the customer's fault: the delivery is
		// forfeited and the schedule moves on to the next cycle.
		if err := s.advance(ctx, sub, deliveryDate); err != nil {
			return &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeFailed, Error: err.Error()}
		}
		logctx.FromCtx(ctx, s.log).Infow("billing_sweep_skipped", "subscription_id", sub.ID, "outcome", outcome, "date", deliveryDate.Format("2006-01-02"))
		return &SweepResult{SubscriptionID: sub.ID, Outcome: outcome}
	}

	charging = true
	orderID, err := s.charge(ctx, sub, batch, deliveryDate)
	if err != nil {
		res = &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeFailed, Error: err.Error()}
		s.recordFailure(ctx, sub, res.Error)
		return res
	}

	if err := s.advance(ctx, sub, deliveryDate); err != nil {
		// Charged but not advanced: the idempotent commit absorbs the retry
		// next run, but surface it loudly.
		logctx.FromCtx(ctx, s.log).Errorf("failed to advance subscription %s after charge: %v", sub.ID, err)
		return &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeCharged, OrderID: orderID, Error: err.Error()}
	}

	s.resetFailures(ctx, sub)
	return &SweepResult{SubscriptionID: sub.ID, Outcome: types.SweepOutcomeCharged, OrderID: orderID}
}

// decide classifies a due subscription against the batch for its delivery
// date. Pure; the caller performs whatever the outcome demands.
func decide(sub *models.Subscription, batch *models.Batch, subscribedQty int) types.SweepOutcome {
	if batch == nil {
		return types.SweepOutcomeSkippedNoBatch
	}
	if sub.Quantity > batch.Available() {
		return types.SweepOutcomeSkippedOversold
	}
	if batch.SubscriptionCap != nil && subscribedQty+sub.Quantity > *batch.SubscriptionCap {
		return types.SweepOutcomeSkippedOverCap
	}
	return types.SweepOutcomeCharged
}

func (s *Sweep) findBatch(ctx context.Context, productID string, date time.Time) (*models.Batch, error) {
	var b models.Batch
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND batch_date = ?", productID, date).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load batch: %w", err)
	}
	return &b, nil
}

// subscribedQuantity sums the units of a batch already taken by
// subscription-originated orders. The subscription cap is pooled: every
// subscription charging into the batch draws from the same allowance.
func (s *Sweep) subscribedQuantity(ctx context.Context, batchID string) (int, error) {
	var total int
	err := s.db.WithContext(ctx).
		Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_item.quantity), 0)").
		Joins("JOIN subscription_order ON subscription_order.order_id = order_item.order_id").
		Where("order_item.batch_id = ? AND subscription_order.batch_id = ?", batchID, batchID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum subscribed quantity: %w", err)
	}
	return total, nil
}

func (s *Sweep) charge(ctx context.Context, sub *models.Subscription, batch *models.Batch, deliveryDate time.Time) (string, error) {
	if !sub.Chargeable() {
		return "", fmt.Errorf("subscription %s has no saved payment method", sub.ID)
	}
	if sub.Product == nil {
		return "", fmt.Errorf("subscription %s has no product", sub.ID)
	}

	amount := sub.Product.PriceCents * int64(sub.Quantity)
	result, err := s.payments.ChargeOffSession(ctx, &payments.ChargeRequest{
		CustomerRef:      *sub.CustomerRef,
		PaymentMethodRef: *sub.PaymentMethodRef,
		AmountCents:      amount,
		Currency:         "usd",
		Metadata: map[string]string{
			"subscription_id": sub.ID,
			"delivery_date":   deliveryDate.Format("2006-01-02"),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to charge subscription: %w", err)
	}
	if result.Status != payments.ChargeStatusSucceeded {
		return "", fmt.Errorf("charge declined: %s", result.ReasonCode)
	}

	o, err := s.orders.CommitPaidOrder(ctx, &ordersvc.CommitRequest{
		UserID: sub.UserID,
		Items: []ordersvc.LineItem{{
			BatchID:              batch.ID,
			ProductID:            sub.ProductID,
			Quantity:             sub.Quantity,
			PriceAtPurchaseCents: sub.Product.PriceCents,
		}},
		TotalCents:     amount,
		DeliveryDate:   deliveryDate,
		PaymentRef:     result.IntentID,
		SubscriptionID: lo.ToPtr(sub.ID),
	})
	if err != nil {
		return "", fmt.Errorf("charged but failed to commit order: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("billing_sweep_charged",
		"subscription_id", sub.ID, "order_id", o.ID, "amount_cents", amount, "date", deliveryDate.Format("2006-01-02"))
	return o.ID, nil
}

// advance moves the schedule to the next cycle from the date just handled.
func (s *Sweep) advance(ctx context.Context, sub *models.Subscription, from time.Time) error {
	next := sub.Frequency.NextDelivery(from)
	if err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Update("next_delivery_date", next).Error; err != nil {
		return fmt.Errorf("failed to advance next delivery date: %w", err)
	}
	return nil
}

// nextFailureState advances the consecutive-failure counter and reports
// whether the cap has been reached. A maxFailed of zero disables deactivation.
func nextFailureState(current, maxFailed int) (int, bool) {
	failed := current + 1
	return failed, maxFailed > 0 && failed >= maxFailed
}

// recordFailure counts a failed charge attempt. The delivery date is left in
// place so the next sweep retries it; at the configured cap the subscription
// is deactivated instead of retrying forever against a dead card.
func (s *Sweep) recordFailure(ctx context.Context, sub *models.Subscription, reason string) {
	failed, deactivate := nextFailureState(sub.FailedPaymentCount, s.cfg.Billing.MaxFailedPayments)
	updates := map[string]any{"failed_payment_count": failed}

	if deactivate {
		updates["is_active"] = false
		logctx.FromCtx(ctx, s.log).Warnw("subscription_deactivated",
			"subscription_id", sub.ID, "failed_payment_count", failed, "reason", reason)
	} else {
		logctx.FromCtx(ctx, s.log).Warnw("subscription_charge_failed",
			"subscription_id", sub.ID, "failed_payment_count", failed, "reason", reason)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Updates(updates).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to record billing failure for subscription %s: %v", sub.ID, err)
	}
}

func (s *Sweep) resetFailures(ctx context.Context, sub *models.Subscription) {
	if sub.FailedPaymentCount == 0 {
		return
	}
	if err := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Update("failed_payment_count", 0).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to reset failure counter for subscription %s: %v", sub.ID, err)
	}
}
