package models

import "time"

type OrderItem struct {
	ID        string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderID   string `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	BatchID   string `gorm:"column:batch_id;type:uuid;not null;index" json:"batch_id"`
	ProductID string `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	Quantity  int    `gorm:"column:quantity;not null" json:"quantity"`
	// PriceAtPurchaseCents is the unit price at the moment the payment was
	// authorized. Copied once, never recalculated from the catalog.
	PriceAtPurchaseCents int64     `gorm:"column:price_at_purchase_cents;type:bigint;not null" json:"price_at_purchase_cents"`
	CreatedAt            time.Time `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_item"
}
