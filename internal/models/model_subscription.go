package models

import (
	"time"

	"github.com/ovenline/bakehouse/pkg/types"
)

// Subscription is a recurring standing order for one product. It is created
// only after a successful card-on-file setup (no charge yet) and mutated by
// its owner and by the billing sweep.
type Subscription struct {
	ID        string                      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID    string                      `gorm:"column:user_id;type:varchar(64);not null;index;uniqueIndex:unique_user_payment_method,priority:1" json:"user_id"`
	ProductID string                      `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity  int                         `gorm:"column:quantity;not null" json:"quantity"`
	Frequency types.SubscriptionFrequency `gorm:"column:frequency;type:varchar(32);not null" json:"frequency"`
	// NextDeliveryDate is the date the sweep will evaluate this subscription
	// for. It only advances on charge success or on a capacity skip; a failed
	// charge keeps it in place so the next sweep retries the same date.
	NextDeliveryDate time.Time `gorm:"column:next_delivery_date;type:date;not null" json:"next_delivery_date"`
	// IsActive false means paused by the user or deactivated after repeated
	// payment failures. Cancel is a soft deactivation; rows are never deleted.
	IsActive bool `gorm:"column:is_active;not null;default:true" json:"is_active"`
	// CustomerRef / PaymentMethodRef are the payment collaborator's ids for
	// the saved card. Both must be present for the sweep to charge. The
	// unique index on (user_id, payment_method_ref) is what makes confirming
	// the same setup session twice yield one subscription, even when the two
	// confirms race.
	CustomerRef        *string   `gorm:"column:customer_ref;type:varchar(128)" json:"customer_ref"`
	PaymentMethodRef   *string   `gorm:"column:payment_method_ref;type:varchar(128);uniqueIndex:unique_user_payment_method,priority:2" json:"payment_method_ref"`
	FailedPaymentCount int       `gorm:"column:failed_payment_count;not null;default:0" json:"failed_payment_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Subscription) TableName() string {
	return "subscription"
}

// Chargeable reports whether the sweep may attempt an off-session charge.
func (s *Subscription) Chargeable() bool {
	return s != nil && s.IsActive &&
		s.CustomerRef != nil && *s.CustomerRef != "" &&
		s.PaymentMethodRef != nil && *s.PaymentMethodRef != ""
}
