package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/logctx"
)

type CheckoutCartItem struct {
	BatchID  string `json:"batch_id"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items   []CheckoutCartItem `json:"items"`
	Address string             `json:"address"`
}

// CreateCheckoutSession validates the cart and opens a payment session for
// it. The client cart is a hint only: names and unit prices are re-derived
// from the catalog here, so a tampered cart can never set the charge amount.
// Availability is pre-checked for a friendly early error, but the commit
// transaction re-validates when the confirmation event lands.
func (s *Service) CreateCheckoutSession(ctx context.Context, userID, email string, req *CheckoutRequest) (string, error) {
	if req == nil || len(req.Items) == 0 {
		return "", fmt.Errorf("cart is empty")
	}

	items := make([]payments.CheckoutItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return "", fmt.Errorf("quantity must be positive")
		}

		var b models.Batch
		if err := s.db.WithContext(ctx).Preload("Product").First(&b, "id = ?", it.BatchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", fmt.Errorf("batch %s not found", it.BatchID)
			}
			return "", fmt.Errorf("failed to load batch %s: %w", it.BatchID, err)
		}
		if b.Product == nil || !b.Product.IsActive {
			return "", fmt.Errorf("product for batch %s is not available", it.BatchID)
		}
		if it.Quantity > b.Available() {
			return "", &OversoldError{BatchID: b.ID, BatchDate: b.BatchDate, Requested: it.Quantity, Available: b.Available()}
		}

		items = append(items, payments.CheckoutItem{
			ProductID:   b.ProductID,
			ProductName: b.Product.Name,
			BatchID:     b.ID,
			Date:        b.BatchDate.Format("2006-01-02"),
			Quantity:    it.Quantity,
			PriceCents:  b.Product.PriceCents,
		})
	}

	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode cart metadata: %w", err)
	}

	session, err := s.payments.CreateCheckoutSession(ctx, &payments.CreateCheckoutRequest{
		CustomerEmail: email,
		Items:         items,
		SuccessURL:    s.cfg.Payments.CheckoutSuccessURL,
		CancelURL:     s.cfg.Payments.CheckoutCancelURL,
		Metadata: map[string]string{
			"user_id":       userID,
			"delivery_date": items[0].Date,
			"items":         string(itemsJSON),
			"address":       req.Address,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("checkout_session_created", "user_id", userID, "session_id", session.ID, "items", len(items))
	return session.URL, nil
}
