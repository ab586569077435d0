package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ovenline/bakehouse/pkg/types"
)

func TestNextSaturday(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want string
	}{
		{name: "monday", from: time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC), want: "2024-06-08"},
		{name: "friday", from: time.Date(2024, 6, 7, 23, 59, 0, 0, time.UTC), want: "2024-06-08"},
		{name: "saturday rolls to next week", from: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), want: "2024-06-15"},
		{name: "sunday", from: time.Date(2024, 6, 9, 12, 0, 0, 0, time.UTC), want: "2024-06-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextSaturday(tt.from)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.Saturday, got.Weekday())
		})
	}
}

func TestSetupRequestValidate(t *testing.T) {
	valid := func() *SetupRequest {
		return &SetupRequest{
			ProductID: "p1",
			Quantity:  2,
			Frequency: types.SubscriptionFrequencyWeekly,
			StartDate: "2024-06-08",
		}
	}

	tests := []struct {
		name    string
		mutate  func(r *SetupRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(r *SetupRequest) {}},
		{name: "no start date is fine", mutate: func(r *SetupRequest) { r.StartDate = "" }},
		{name: "missing product", mutate: func(r *SetupRequest) { r.ProductID = "" }, wantErr: "product id"},
		{name: "zero quantity", mutate: func(r *SetupRequest) { r.Quantity = 0 }, wantErr: "quantity"},
		{name: "bad frequency", mutate: func(r *SetupRequest) { r.Frequency = "fortnightly" }, wantErr: "frequency"},
		{name: "bad start date", mutate: func(r *SetupRequest) { r.StartDate = "08/06/2024" }, wantErr: "start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(req)
			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}

	var nilReq *SetupRequest
	assert.Error(t, nilReq.Validate())
}
