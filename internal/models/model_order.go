package models

import (
	"time"

	"github.com/ovenline/bakehouse/pkg/types"
)

// Order is append-only history created by the commit transaction. It is never
// created speculatively: an Order row exists only after payment was confirmed.
type Order struct {
	ID     string            `gorm:"column:id;type:uuid;primary_key;index:idx_order_user_id_id,priority:2,sort:desc" json:"id"`
	UserID string            `gorm:"column:user_id;type:varchar(64);not null;index:idx_order_user_id_id,priority:1" json:"user_id"`
	Status types.OrderStatus `gorm:"column:status;type:varchar(32);not null" json:"status"`
	// TotalCents is the amount the customer was actually charged.
	TotalCents   int64     `gorm:"column:total_cents;type:bigint;not null" json:"total_cents"`
	DeliveryDate time.Time `gorm:"column:delivery_date;type:date;not null" json:"delivery_date"`
	// PaymentRef is the external payment correlation id (checkout session id
	// for one-time orders, payment intent id for subscription charges). The
	// unique index is what makes duplicate event delivery idempotent even
	// under concurrent retries.
	PaymentRef string `gorm:"column:payment_ref;type:varchar(128);not null;uniqueIndex" json:"payment_ref"`
	// PaymentIntentRef is kept alongside PaymentRef for checkout-session
	// orders, where the session id and the intent id differ.
	PaymentIntentRef *string   `gorm:"column:payment_intent_ref;type:varchar(128)" json:"payment_intent_ref"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Items []*OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "order"
}
