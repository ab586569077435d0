package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validCommitRequest() *CommitRequest {
	return &CommitRequest{
		UserID:       "u1",
		Items:        []LineItem{{BatchID: "b1", ProductID: "p1", Quantity: 2, PriceAtPurchaseCents: 850}},
		TotalCents:   1700,
		DeliveryDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		PaymentRef:   "cs_123",
	}
}

func TestCommitRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *CommitRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(r *CommitRequest) {}},
		{name: "missing user", mutate: func(r *CommitRequest) { r.UserID = "" }, wantErr: "user id"},
		{name: "missing payment ref", mutate: func(r *CommitRequest) { r.PaymentRef = "" }, wantErr: "payment ref"},
		{name: "empty items", mutate: func(r *CommitRequest) { r.Items = nil }, wantErr: "line item"},
		{name: "zero delivery date", mutate: func(r *CommitRequest) { r.DeliveryDate = time.Time{} }, wantErr: "delivery date"},
		{name: "negative total", mutate: func(r *CommitRequest) { r.TotalCents = -1 }, wantErr: "total"},
		{name: "item missing batch", mutate: func(r *CommitRequest) { r.Items[0].BatchID = "" }, wantErr: "batch id"},
		{name: "item zero quantity", mutate: func(r *CommitRequest) { r.Items[0].Quantity = 0 }, wantErr: "quantity"},
		{name: "item negative price", mutate: func(r *CommitRequest) { r.Items[0].PriceAtPurchaseCents = -5 }, wantErr: "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCommitRequest()
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestCommitRequestValidateNil(t *testing.T) {
	var req *CommitRequest
	assert.Error(t, req.Validate())
}

func TestOversoldErrorNamesConstrainingQuantity(t *testing.T) {
	err := &OversoldError{
		BatchID:   "b1",
		BatchDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Requested: 5,
		Available: 3,
	}
	assert.Contains(t, err.Error(), "only 3 available")
	assert.Contains(t, err.Error(), "2024-06-01")
	assert.Contains(t, err.Error(), "b1")
}
