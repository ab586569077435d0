package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentEventLogStatus string

const (
	PaymentEventLogStatusReceived     PaymentEventLogStatus = "received"
	PaymentEventLogStatusHandled      PaymentEventLogStatus = "handled"
	PaymentEventLogStatusHandleFailed PaymentEventLogStatus = "handle_failed"
)

// PaymentEventLog records every webhook delivery from the payment provider.
// Use case: troubleshooting duplicate or rejected deliveries.
type PaymentEventLog struct {
	ID         string  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID string  `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	EventID    string  `gorm:"column:event_id;type:varchar(128);index" json:"event_id"`
	UserID     *string `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID    string  `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	// Data is the parsed event payload as delivered.
	Data datatypes.JSON `gorm:"column:data;type:jsonb" json:"data"`
	// Result stores the handling outcome (order id or error detail).
	Result    *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status    PaymentEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

func (PaymentEventLog) TableName() string {
	return "payment_event_log"
}
