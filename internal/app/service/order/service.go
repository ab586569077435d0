package order

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/config"
)

// Service owns the order/order_item tables and the commit transaction that is
// the single write path for batch sold counters.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	payments payments.Client
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, pay payments.Client) *Service {
	return &Service{cfg: cfg, db: db, log: log, payments: pay}
}

// LineItem is one (batch, quantity, unit price) entry of a commit. The price
// is whatever the caller authorized with the payment provider, not the
// current catalog price.
type LineItem struct {
	BatchID              string `json:"batch_id"`
	ProductID            string `json:"product_id"`
	Quantity             int    `json:"quantity"`
	PriceAtPurchaseCents int64  `json:"price_at_purchase_cents"`
}

type CommitRequest struct {
	UserID       string
	Items        []LineItem
	TotalCents   int64
	DeliveryDate time.Time
	// PaymentRef is the idempotency key: checkout session id or payment
	// intent id, whichever correlates this commit with its payment.
	PaymentRef       string
	PaymentIntentRef *string
	// SubscriptionID marks subscription-originated commits; a
	// subscription_order link row is created in the same transaction.
	SubscriptionID *string
}

func (r *CommitRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("nil request")
	}
	if r.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	if r.PaymentRef == "" {
		return fmt.Errorf("payment ref is required")
	}
	if len(r.Items) == 0 {
		return fmt.Errorf("at least one line item is required")
	}
	if r.DeliveryDate.IsZero() {
		return fmt.Errorf("delivery date is required")
	}
	if r.TotalCents < 0 {
		return fmt.Errorf("total must not be negative")
	}
	for i, it := range r.Items {
		if it.BatchID == "" || it.ProductID == "" {
			return fmt.Errorf("line item %d: batch id and product id are required", i)
		}
		if it.Quantity <= 0 {
			return fmt.Errorf("line item %d: quantity must be positive", i)
		}
		if it.PriceAtPurchaseCents < 0 {
			return fmt.Errorf("line item %d: price must not be negative", i)
		}
	}
	return nil
}
