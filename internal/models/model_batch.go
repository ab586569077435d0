package models

import "time"

// Batch is one product's production run for one calendar date.
// It is the single owner of the capacity invariant:
// 0 <= quantity_sold <= quantity_available at all times.
// quantity_sold is mutated only inside the order commit transaction.
type Batch struct {
	ID        string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProductID string    `gorm:"column:product_id;type:uuid;not null;uniqueIndex:unique_product_batch_date,priority:1" json:"product_id"`
	BatchDate time.Time `gorm:"column:batch_date;type:date;not null;uniqueIndex:unique_product_batch_date,priority:2" json:"batch_date"`
	// QuantityAvailable is the total producible quantity for the date.
	QuantityAvailable int `gorm:"column:quantity_available;not null" json:"quantity_available"`
	// QuantitySold only ever grows; operator edits reducing quantity_available
	// below it are rejected.
	QuantitySold int `gorm:"column:quantity_sold;not null;default:0" json:"quantity_sold"`
	// SubscriptionCap, when set, limits how much of this batch may be consumed
	// by subscription-originated orders. Independent of QuantityAvailable.
	SubscriptionCap *int      `gorm:"column:subscription_cap" json:"subscription_cap"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (Batch) TableName() string {
	return "batch"
}

// Available is the quantity still sellable right now.
func (b *Batch) Available() int {
	if b == nil {
		return 0
	}
	return b.QuantityAvailable - b.QuantitySold
}
