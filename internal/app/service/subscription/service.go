package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/internal/platform/payments"
	"github.com/ovenline/bakehouse/pkg/config"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/tool"
	"github.com/ovenline/bakehouse/pkg/types"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrSetupIncomplete is returned when a setup session is confirmed before
	// the provider has attached a customer and payment method to it.
	ErrSetupIncomplete = errors.New("setup session has no saved payment method")
)

type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	log      *zap.SugaredLogger
	payments payments.Client
}

func New(cfg *config.Config, db *gorm.DB, log *zap.SugaredLogger, pay payments.Client) *Service {
	return &Service{cfg: cfg, db: db, log: log, payments: pay}
}

type SetupRequest struct {
	ProductID string                      `json:"product_id" binding:"required"`
	Quantity  int                         `json:"quantity" binding:"required"`
	Frequency types.SubscriptionFrequency `json:"frequency" binding:"required"`
	// StartDate is optional; when empty the first delivery defaults to the
	// upcoming Saturday bake.
	StartDate string `json:"start_date"`
}

func (r *SetupRequest) Validate() error {
	if r == nil {
		return fmt.Errorf("request is nil")
	}
	if r.ProductID == "" {
		return fmt.Errorf("product id is required")
	}
	if r.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive")
	}
	if !r.Frequency.Valid() {
		return fmt.Errorf("invalid frequency %q", r.Frequency)
	}
	if r.StartDate != "" {
		if _, err := time.Parse("2006-01-02", r.StartDate); err != nil {
			return fmt.Errorf("invalid start date %q", r.StartDate)
		}
	}
	return nil
}

// nextSaturday returns the first Saturday strictly after from, at midnight.
func nextSaturday(from time.Time) time.Time {
	d := tool.DateOnly(from)
	days := (int(time.Saturday) - int(d.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return d.AddDate(0, 0, days)
}

// Setup opens a card-on-file session for a new subscription. Nothing is
// persisted here; the subscription is created only by Confirm, after the
// provider reports the setup completed.
func (s *Service) Setup(ctx context.Context, userID, email string, req *SetupRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	var p models.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", req.ProductID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("product %s not found", req.ProductID)
		}
		return "", fmt.Errorf("failed to load product: %w", err)
	}
	if !p.IsActive {
		return "", fmt.Errorf("product %s is not available for subscription", req.ProductID)
	}

	startDate := req.StartDate
	if startDate == "" {
		startDate = nextSaturday(time.Now()).Format("2006-01-02")
	}

	session, err := s.payments.CreateSetupSession(ctx, &payments.CreateSetupRequest{
		CustomerEmail: email,
		SuccessURL:    s.cfg.Payments.SetupSuccessURL,
		CancelURL:     s.cfg.Payments.SetupCancelURL,
		Metadata: map[string]string{
			"user_id":    userID,
			"product_id": p.ID,
			"quantity":   fmt.Sprint(req.Quantity),
			"frequency":  string(req.Frequency),
			"start_date": startDate,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create setup session: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription_setup_started", "user_id", userID, "session_id", session.ID, "product_id", p.ID)
	return session.URL, nil
}

// Confirm finalizes a completed setup session into a live subscription. It is
// idempotent on the session's payment method: confirming twice returns the
// already-created subscription.
func (s *Service) Confirm(ctx context.Context, userID, sessionID string) (*models.Subscription, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	session, err := s.payments.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve setup session: %w", err)
	}
	if session.Mode != payments.SessionModeSetup {
		return nil, fmt.Errorf("session %s is not a setup session", sessionID)
	}
	if session.Metadata["user_id"] != userID {
		return nil, ErrSubscriptionNotFound
	}
	if session.CustomerRef == "" || session.PaymentMethodRef == "" {
		return nil, ErrSetupIncomplete
	}

	var quantity int
	if _, err := fmt.Sscanf(session.Metadata["quantity"], "%d", &quantity); err != nil || quantity <= 0 {
		return nil, fmt.Errorf("invalid quantity in session metadata")
	}
	frequency := types.SubscriptionFrequency(session.Metadata["frequency"])
	if !frequency.Valid() {
		return nil, fmt.Errorf("invalid frequency in session metadata")
	}
	startDate, err := time.Parse("2006-01-02", session.Metadata["start_date"])
	if err != nil {
		return nil, fmt.Errorf("invalid start date in session metadata")
	}

	var existing models.Subscription
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND payment_method_ref = ?", userID, session.PaymentMethodRef).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	sub := &models.Subscription{
		ID:               tool.GenerateUUIDV7(),
		UserID:           userID,
		ProductID:        session.Metadata["product_id"],
		Quantity:         quantity,
		Frequency:        frequency,
		NextDeliveryDate: startDate,
		IsActive:         true,
		CustomerRef:      &session.CustomerRef,
		PaymentMethodRef: &session.PaymentMethodRef,
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		// The unique index on (user_id, payment_method_ref) backs the
		// pre-check against two confirms of the same session racing.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			var winner models.Subscription
			if ferr := s.db.WithContext(ctx).
				Where("user_id = ? AND payment_method_ref = ?", userID, session.PaymentMethodRef).
				First(&winner).Error; ferr == nil {
				return &winner, nil
			}
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription_created",
		"subscription_id", sub.ID, "user_id", userID, "product_id", sub.ProductID,
		"frequency", sub.Frequency, "next_delivery_date", startDate.Format("2006-01-02"))
	return sub, nil
}

// ListForUser returns all of a user's subscriptions, active and not.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

type UpdateRequest struct {
	Quantity *int  `json:"quantity"`
	IsActive *bool `json:"is_active"`
}

// Update changes quantity and/or pauses/resumes a subscription the user owns.
// Resuming resets the failed payment counter so the next sweep starts clean.
func (s *Service) Update(ctx context.Context, userID, subscriptionID string, req *UpdateRequest) (*models.Subscription, error) {
	if req == nil || (req.Quantity == nil && req.IsActive == nil) {
		return nil, fmt.Errorf("nothing to update")
	}
	if req.Quantity != nil && *req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}

	var sub models.Subscription
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", subscriptionID, userID).First(&sub).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubscriptionNotFound
			}
			return fmt.Errorf("failed to load subscription: %w", err)
		}

		updates := map[string]any{}
		if req.Quantity != nil {
			sub.Quantity = *req.Quantity
			updates["quantity"] = *req.Quantity
		}
		if req.IsActive != nil {
			sub.IsActive = *req.IsActive
			updates["is_active"] = *req.IsActive
			if *req.IsActive {
				sub.FailedPaymentCount = 0
				updates["failed_payment_count"] = 0
			}
		}
		return tx.Model(&models.Subscription{}).Where("id = ?", sub.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription_updated", "subscription_id", sub.ID, "user_id", userID)
	return &sub, nil
}

// Cancel deactivates a subscription. Soft only: history and past orders
// remain queryable.
func (s *Service) Cancel(ctx context.Context, userID, subscriptionID string) error {
	res := s.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND user_id = ?", subscriptionID, userID).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to cancel subscription: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}

	logctx.FromCtx(ctx, s.log).Infow("subscription_cancelled", "subscription_id", subscriptionID, "user_id", userID)
	return nil
}
