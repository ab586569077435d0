package models

import "time"

// Product is catalog data owned by the admin surface. The engine reads
// price/name/active flag from it but never mutates it during checkout.
type Product struct {
	ID          string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name        string `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string `gorm:"column:description;type:text" json:"description"`
	// PriceCents is the current unit price. Committed orders keep their own
	// price_at_purchase copy, so changing this never rewrites history.
	PriceCents int64     `gorm:"column:price_cents;type:bigint;not null" json:"price_cents"`
	IsActive   bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Product) TableName() string {
	return "product"
}
