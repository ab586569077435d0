package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionFrequencyValid(t *testing.T) {
	assert.True(t, SubscriptionFrequencyWeekly.Valid())
	assert.True(t, SubscriptionFrequencyBiweekly.Valid())
	assert.True(t, SubscriptionFrequencyMonthly.Valid())
	assert.False(t, SubscriptionFrequency("daily").Valid())
	assert.False(t, SubscriptionFrequency("").Valid())
}

func TestNextDelivery(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad fixture date %s: %v", s, err)
		}
		return d
	}

	tests := []struct {
		name string
		freq SubscriptionFrequency
		from time.Time
		want time.Time
	}{
		{name: "weekly", freq: SubscriptionFrequencyWeekly, from: day("2024-06-01"), want: day("2024-06-08")},
		{name: "biweekly", freq: SubscriptionFrequencyBiweekly, from: day("2024-06-01"), want: day("2024-06-15")},
		{name: "monthly same day next month", freq: SubscriptionFrequencyMonthly, from: day("2024-06-01"), want: day("2024-07-01")},
		{name: "monthly across year end", freq: SubscriptionFrequencyMonthly, from: day("2024-12-15"), want: day("2025-01-15")},
		{name: "weekly across month end", freq: SubscriptionFrequencyWeekly, from: day("2024-06-28"), want: day("2024-07-05")},
		{name: "unknown frequency falls back to weekly", freq: SubscriptionFrequency("daily"), from: day("2024-06-01"), want: day("2024-06-08")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.freq.NextDelivery(tt.from))
		})
	}
}

func TestNextDeliveryTruncatesToMidnight(t *testing.T) {
	from := time.Date(2024, 6, 1, 17, 42, 3, 0, time.UTC)
	got := SubscriptionFrequencyWeekly.NextDelivery(from)
	assert.Equal(t, time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC), got)
}
