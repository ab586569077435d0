package types

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

type SubscriptionOrderStatus string

const (
	SubscriptionOrderStatusCharged SubscriptionOrderStatus = "charged"
)

type PaymentProvider string

const (
	PaymentProviderStripe PaymentProvider = "stripe"
)
