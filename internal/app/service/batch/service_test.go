package batch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ovenline/bakehouse/pkg/tool"
)

func TestCreateBatchRequestValidate(t *testing.T) {
	cap5 := 5
	negCap := -1

	tests := []struct {
		name    string
		req     *CreateBatchRequest
		wantErr bool
	}{
		{name: "valid", req: &CreateBatchRequest{ProductID: "p1", BatchDate: time.Now(), QuantityAvailable: 10}},
		{name: "valid with cap", req: &CreateBatchRequest{ProductID: "p1", BatchDate: time.Now(), QuantityAvailable: 10, SubscriptionCap: &cap5}},
		{name: "missing product", req: &CreateBatchRequest{BatchDate: time.Now(), QuantityAvailable: 10}, wantErr: true},
		{name: "missing date", req: &CreateBatchRequest{ProductID: "p1", QuantityAvailable: 10}, wantErr: true},
		{name: "negative quantity", req: &CreateBatchRequest{ProductID: "p1", BatchDate: time.Now(), QuantityAvailable: -1}, wantErr: true},
		{name: "negative cap", req: &CreateBatchRequest{ProductID: "p1", BatchDate: time.Now(), QuantityAvailable: 10, SubscriptionCap: &negCap}, wantErr: true},
		{name: "nil request", req: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCapacityReductionErrorNamesMinimum(t *testing.T) {
	err := &CapacityReductionError{BatchID: "b1", MinAllowed: 7}
	assert.Contains(t, err.Error(), "7")
}

func TestAvailabilityWindowDefaults(t *testing.T) {
	now := time.Date(2024, 6, 1, 15, 30, 0, 0, time.UTC)
	today := tool.DateOnly(now)

	from, to := availabilityWindow(nil, nil, now)
	assert.Equal(t, today, from)
	assert.Equal(t, today.AddDate(0, 0, DefaultAvailabilityWindowDays), to)

	explicitFrom := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	from, to = availabilityWindow(&explicitFrom, nil, now)
	assert.Equal(t, tool.DateOnly(explicitFrom), from)
	// End bound stays relative to today, not to the explicit start.
	assert.Equal(t, today.AddDate(0, 0, DefaultAvailabilityWindowDays), to)

	explicitTo := time.Date(2024, 6, 10, 23, 0, 0, 0, time.UTC)
	from, to = availabilityWindow(nil, &explicitTo, now)
	assert.Equal(t, today, from)
	assert.Equal(t, tool.DateOnly(explicitTo), to)
}
