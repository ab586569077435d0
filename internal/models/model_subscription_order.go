package models

import (
	"time"

	"github.com/ovenline/bakehouse/pkg/types"
)

// SubscriptionOrder tags an order as subscription-originated. The sum of
// order item quantities linked through this table is what the sweep compares
// against a batch's subscription cap, so the cap is pooled across all
// subscriptions hitting the same batch.
type SubscriptionOrder struct {
	ID             string                        `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SubscriptionID string                        `gorm:"column:subscription_id;type:uuid;not null;index" json:"subscription_id"`
	OrderID        string                        `gorm:"column:order_id;type:uuid;not null" json:"order_id"`
	BatchID        string                        `gorm:"column:batch_id;type:uuid;not null;index" json:"batch_id"`
	Status         types.SubscriptionOrderStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	CreatedAt      time.Time                     `json:"created_at"`
}

func (SubscriptionOrder) TableName() string {
	return "subscription_order"
}
