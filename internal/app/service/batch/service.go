package batch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/pkg/logctx"
	"github.com/ovenline/bakehouse/pkg/tool"
)

// DefaultAvailabilityWindowDays bounds the availability query when no end
// date is given.
const DefaultAvailabilityWindowDays = 90

// Service owns batch rows and the capacity rules around them. It never
// mutates quantity_sold; that column belongs to the order commit transaction.
type Service struct {
	db  *gorm.DB
	log *zap.SugaredLogger
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

type CreateBatchRequest struct {
	ProductID         string    `json:"product_id"`
	BatchDate         time.Time `json:"batch_date"`
	QuantityAvailable int       `json:"quantity_available"`
	SubscriptionCap   *int      `json:"subscription_cap"`
}

func (r *CreateBatchRequest) Validate() error {
	if r == nil || r.ProductID == "" {
		return fmt.Errorf("product_id is required")
	}
	if r.BatchDate.IsZero() {
		return fmt.Errorf("batch_date is required")
	}
	if r.QuantityAvailable < 0 {
		return fmt.Errorf("quantity_available must not be negative")
	}
	if r.SubscriptionCap != nil && *r.SubscriptionCap < 0 {
		return fmt.Errorf("subscription_cap must not be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, req *CreateBatchRequest) (*models.Batch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	day := tool.DateOnly(req.BatchDate)
	var existing models.Batch
	err := s.db.WithContext(ctx).
		Where("product_id = ? AND batch_date = ?", req.ProductID, day).
		First(&existing).Error
	if err == nil {
		return nil, ErrBatchExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing batch: %w", err)
	}

	b := &models.Batch{
		ID:                tool.GenerateUUIDV7(),
		ProductID:         req.ProductID,
		BatchDate:         day,
		QuantityAvailable: req.QuantityAvailable,
		SubscriptionCap:   req.SubscriptionCap,
	}
	if err := s.db.WithContext(ctx).Create(b).Error; err != nil {
		// The unique index on (product_id, batch_date) backs the pre-check
		// against two admins racing on the same date.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrBatchExists
		}
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("batch_created", "batch_id", b.ID, "product_id", b.ProductID, "batch_date", day.Format("2006-01-02"), "quantity_available", b.QuantityAvailable)
	return b, nil
}

type UpdateBatchRequest struct {
	QuantityAvailable *int `json:"quantity_available"`
	SubscriptionCap   *int `json:"subscription_cap"`
	// ClearSubscriptionCap removes the cap entirely; SubscriptionCap is
	// ignored when set.
	ClearSubscriptionCap bool `json:"clear_subscription_cap"`
}

func (s *Service) Update(ctx context.Context, id string, req *UpdateBatchRequest) (*models.Batch, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.SubscriptionCap != nil && *req.SubscriptionCap < 0 {
		return nil, fmt.Errorf("subscription_cap must not be negative")
	}

	var out *models.Batch
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Batch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to load batch: %w", err)
		}

		if req.QuantityAvailable != nil {
			if *req.QuantityAvailable < b.QuantitySold {
				return &CapacityReductionError{BatchID: b.ID, MinAllowed: b.QuantitySold}
			}
			b.QuantityAvailable = *req.QuantityAvailable
		}
		if req.ClearSubscriptionCap {
			b.SubscriptionCap = nil
		} else if req.SubscriptionCap != nil {
			b.SubscriptionCap = req.SubscriptionCap
		}

		if err := tx.Save(&b).Error; err != nil {
			return fmt.Errorf("failed to update batch: %w", err)
		}
		out = &b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logctx.FromCtx(ctx, s.log).Infow("batch_updated", "batch_id", id)
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Batch
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&b, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return fmt.Errorf("failed to load batch: %w", err)
		}
		if b.QuantitySold > 0 {
			return ErrBatchHasSales
		}
		if err := tx.Delete(&models.Batch{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logctx.FromCtx(ctx, s.log).Infow("batch_deleted", "batch_id", id)
	return nil
}

// List returns batches with products attached, optionally bounded by date.
// Used by admin screens.
func (s *Service) List(ctx context.Context, from, to *time.Time) ([]*models.Batch, error) {
	q := s.db.WithContext(ctx).Preload("Product").Order("batch_date asc")
	if from != nil {
		q = q.Where("batch_date >= ?", tool.DateOnly(*from))
	}
	if to != nil {
		q = q.Where("batch_date <= ?", tool.DateOnly(*to))
	}
	var batches []*models.Batch
	if err := q.Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	return batches, nil
}

type AvailabilitySlot struct {
	BatchID   string `json:"batch_id"`
	Date      string `json:"date"`
	Available int    `json:"available"`
}

// availabilityWindow resolves the query range. Missing bounds default to
// [today, today+90d]; both are independent of each other.
func availabilityWindow(from, to *time.Time, now time.Time) (time.Time, time.Time) {
	today := tool.DateOnly(now)
	fromDate := today
	if from != nil {
		fromDate = tool.DateOnly(*from)
	}
	toDate := today.AddDate(0, 0, DefaultAvailabilityWindowDays)
	if to != nil {
		toDate = tool.DateOnly(*to)
	}
	return fromDate, toDate
}

// Availability is a read-only projection of what is still sellable. The
// answer can go stale between query and checkout; the commit transaction
// re-validates, so callers treat this as a hint, not a reservation.
func (s *Service) Availability(ctx context.Context, productID string, from, to *time.Time) ([]AvailabilitySlot, error) {
	if productID == "" {
		return nil, fmt.Errorf("product_id is required")
	}

	fromDate, toDate := availabilityWindow(from, to, time.Now())

	var batches []*models.Batch
	if err := s.db.WithContext(ctx).
		Where("product_id = ? AND batch_date >= ? AND batch_date <= ?", productID, fromDate, toDate).
		Order("batch_date asc").
		Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to query availability: %w", err)
	}

	slots := lo.FilterMap(batches, func(b *models.Batch, _ int) (AvailabilitySlot, bool) {
		if b.Available() <= 0 {
			return AvailabilitySlot{}, false
		}
		return AvailabilitySlot{BatchID: b.ID, Date: b.BatchDate.Format("2006-01-02"), Available: b.Available()}, true
	})
	return slots, nil
}
