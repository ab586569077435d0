package billing

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"

	"github.com/ovenline/bakehouse/internal/models"
	"github.com/ovenline/bakehouse/pkg/types"
)

func dueSubscription() *models.Subscription {
	return &models.Subscription{
		ID:               "s1",
		UserID:           "u1",
		ProductID:        "p1",
		Quantity:         2,
		Frequency:        types.SubscriptionFrequencyWeekly,
		NextDeliveryDate: time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		IsActive:         true,
	}
}

func openBatch() *models.Batch {
	return &models.Batch{
		ID:                "b1",
		ProductID:         "p1",
		BatchDate:         time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC),
		QuantityAvailable: 20,
		QuantitySold:      10,
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		sub           func() *models.Subscription
		batch         func() *models.Batch
		subscribedQty int
		want          types.SweepOutcome
	}{
		{
			name:  "charges when capacity allows",
			sub:   dueSubscription,
			batch: openBatch,
			want:  types.SweepOutcomeCharged,
		},
		{
			name:  "no batch for the date",
			sub:   dueSubscription,
			batch: func() *models.Batch { return nil },
			want:  types.SweepOutcomeSkippedNoBatch,
		},
		{
			name: "batch nearly sold out",
			sub:  dueSubscription,
			batch: func() *models.Batch {
				b := openBatch()
				b.QuantitySold = 19
				return b
			},
			want: types.SweepOutcomeSkippedOversold,
		},
		{
			name: "exactly fills remaining capacity",
			sub:  dueSubscription,
			batch: func() *models.Batch {
				b := openBatch()
				b.QuantitySold = 18
				return b
			},
			want: types.SweepOutcomeCharged,
		},
		{
			name: "pooled cap exceeded",
			sub:  dueSubscription,
			batch: func() *models.Batch {
				b := openBatch()
				b.SubscriptionCap = lo.ToPtr(5)
				return b
			},
			subscribedQty: 4,
			want:          types.SweepOutcomeSkippedOverCap,
		},
		{
			name: "exactly fills pooled cap",
			sub:  dueSubscription,
			batch: func() *models.Batch {
				b := openBatch()
				b.SubscriptionCap = lo.ToPtr(5)
				return b
			},
			subscribedQty: 3,
			want:          types.SweepOutcomeCharged,
		},
		{
			name: "zero cap blocks all subscription draw",
			sub:  dueSubscription,
			batch: func() *models.Batch {
				b := openBatch()
				b.SubscriptionCap = lo.ToPtr(0)
				return b
			},
			want: types.SweepOutcomeSkippedOverCap,
		},
		{
			name: "availability checked before cap",
			sub:  dueSubscription,
			batch: func() *models.Batch {
				b := openBatch()
				b.QuantitySold = 20
				b.SubscriptionCap = lo.ToPtr(0)
				return b
			},
			want: types.SweepOutcomeSkippedOversold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := decide(tt.sub(), tt.batch(), tt.subscribedQty)
			assert.Equal(t, tt.want, got)
		})
	}
}

// The failed outcome is reserved for charge attempts; capacity evaluation can
// only skip. This is what keeps the failure counter off the non-payment paths.
func TestDecideNeverReportsChargeFailure(t *testing.T) {
	batches := []*models.Batch{
		nil,
		openBatch(),
		func() *models.Batch {
			b := openBatch()
			b.QuantitySold = b.QuantityAvailable
			return b
		}(),
		func() *models.Batch {
			b := openBatch()
			b.SubscriptionCap = lo.ToPtr(0)
			return b
		}(),
	}
	for _, b := range batches {
		assert.NotEqual(t, types.SweepOutcomeFailed, decide(dueSubscription(), b, 0))
	}
}

func TestNextFailureState(t *testing.T) {
	tests := []struct {
		name           string
		current        int
		maxFailed      int
		wantCount      int
		wantDeactivate bool
	}{
		{name: "first failure", current: 0, maxFailed: 3, wantCount: 1},
		{name: "second failure", current: 1, maxFailed: 3, wantCount: 2},
		{name: "third failure deactivates", current: 2, maxFailed: 3, wantCount: 3, wantDeactivate: true},
		{name: "beyond the cap stays deactivated", current: 5, maxFailed: 3, wantCount: 6, wantDeactivate: true},
		{name: "cap of one deactivates immediately", current: 0, maxFailed: 1, wantCount: 1, wantDeactivate: true},
		{name: "zero cap disables deactivation", current: 9, maxFailed: 0, wantCount: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, deactivate := nextFailureState(tt.current, tt.maxFailed)
			assert.Equal(t, tt.wantCount, count)
			assert.Equal(t, tt.wantDeactivate, deactivate)
		})
	}
}
