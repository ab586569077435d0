package payments

import (
	"context"
	"encoding/json"
	"errors"
)

// Session modes and statuses mirrored from the provider contract.
const (
	SessionModePayment = "payment"
	SessionModeSetup   = "setup"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"

	EventCheckoutSessionCompleted = "checkout.session.completed"
)

type ChargeStatus string

const (
	ChargeStatusSucceeded ChargeStatus = "succeeded"
	ChargeStatusFailed    ChargeStatus = "failed"
)

// ErrSignature is returned for any webhook whose signature does not verify.
// Deliberately carries no detail; callers must not leak why verification failed.
var ErrSignature = errors.New("webhook signature verification failed")

type CheckoutItem struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	BatchID     string `json:"batch_id"`
	Date        string `json:"date"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

type CreateCheckoutRequest struct {
	CustomerEmail string            `json:"customer_email"`
	Items         []CheckoutItem    `json:"items"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata"`
}

type CreateSetupRequest struct {
	CustomerEmail string            `json:"customer_email"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
	Metadata      map[string]string `json:"metadata"`
}

// Session is the provider's view of a checkout or setup session.
type Session struct {
	ID               string            `json:"id"`
	URL              string            `json:"url"`
	Mode             string            `json:"mode"`
	PaymentStatus    string            `json:"payment_status"`
	PaymentIntentID  string            `json:"payment_intent_id"`
	CustomerRef      string            `json:"customer_ref"`
	PaymentMethodRef string            `json:"payment_method_ref"`
	Metadata         map[string]string `json:"metadata"`
}

type ChargeRequest struct {
	CustomerRef      string            `json:"customer_ref"`
	PaymentMethodRef string            `json:"payment_method_ref"`
	AmountCents      int64             `json:"amount_cents"`
	Currency         string            `json:"currency"`
	Metadata         map[string]string `json:"metadata"`
}

// ChargeResult is the provider's answer to an off-session charge. A decline
// is a result, not a transport error.
type ChargeResult struct {
	IntentID   string       `json:"intent_id"`
	Status     ChargeStatus `json:"status"`
	ReasonCode string       `json:"reason_code"`
}

type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt int64           `json:"created_at"`
	Data      json.RawMessage `json:"data"`
}

// Client is the payment collaborator. Card collection and charge execution
// mechanics live on the provider side; the engine only consumes this contract.
type Client interface {
	CreateCheckoutSession(ctx context.Context, req *CreateCheckoutRequest) (*Session, error)
	CreateSetupSession(ctx context.Context, req *CreateSetupRequest) (*Session, error)
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
	// ChargeOffSession charges a saved payment method with the customer
	// absent. A timeout or transport failure is an error; the engine must
	// treat it as a failed charge, never an implicit success.
	ChargeOffSession(ctx context.Context, req *ChargeRequest) (*ChargeResult, error)
	// VerifyEventSignature authenticates a raw webhook delivery and returns
	// the parsed event. Only signature-verified events are trusted.
	VerifyEventSignature(payload []byte, sigHeader string) (*Event, error)
}
