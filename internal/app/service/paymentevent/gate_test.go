package paymentevent

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovenline/bakehouse/internal/platform/payments"
)

func paidSession() *payments.Session {
	items := []payments.CheckoutItem{
		{ProductID: "p1", ProductName: "Sourdough", BatchID: "b1", Date: "2024-06-01", Quantity: 2, PriceCents: 850},
		{ProductID: "p2", ProductName: "Baguette", BatchID: "b2", Date: "2024-06-01", Quantity: 1, PriceCents: 400},
	}
	itemsJSON, _ := json.Marshal(items)
	return &payments.Session{
		ID:              "cs_123",
		Mode:            payments.SessionModePayment,
		PaymentStatus:   payments.PaymentStatusPaid,
		PaymentIntentID: "pi_123",
		Metadata: map[string]string{
			"user_id":       "u1",
			"delivery_date": "2024-06-01",
			"items":         string(itemsJSON),
		},
	}
}

func TestCommitRequestFromSession(t *testing.T) {
	req, err := commitRequestFromSession(paidSession())
	require.NoError(t, err)

	assert.Equal(t, "u1", req.UserID)
	assert.Equal(t, "cs_123", req.PaymentRef)
	require.NotNil(t, req.PaymentIntentRef)
	assert.Equal(t, "pi_123", *req.PaymentIntentRef)
	assert.Equal(t, int64(2100), req.TotalCents)
	assert.Equal(t, "2024-06-01", req.DeliveryDate.Format("2006-01-02"))
	require.Len(t, req.Items, 2)
	assert.Equal(t, "b1", req.Items[0].BatchID)
	assert.Equal(t, 2, req.Items[0].Quantity)
	assert.Equal(t, int64(850), req.Items[0].PriceAtPurchaseCents)
}

func TestCommitRequestFromSessionFallsBackToItemDate(t *testing.T) {
	session := paidSession()
	delete(session.Metadata, "delivery_date")

	req, err := commitRequestFromSession(session)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", req.DeliveryDate.Format("2006-01-02"))
}

func TestCommitRequestFromSessionRejectsBadMetadata(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *payments.Session)
	}{
		{name: "missing user", mutate: func(s *payments.Session) { delete(s.Metadata, "user_id") }},
		{name: "missing items", mutate: func(s *payments.Session) { delete(s.Metadata, "items") }},
		{name: "items not json", mutate: func(s *payments.Session) { s.Metadata["items"] = "{" }},
		{name: "items empty array", mutate: func(s *payments.Session) { s.Metadata["items"] = "[]" }},
		{name: "bad delivery date", mutate: func(s *payments.Session) { s.Metadata["delivery_date"] = "June 1st" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := paidSession()
			tt.mutate(session)
			_, err := commitRequestFromSession(session)
			assert.ErrorIs(t, err, ErrBadPayload)
		})
	}
}
