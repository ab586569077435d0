package types

import "time"

type SubscriptionFrequency string

const (
	SubscriptionFrequencyWeekly   SubscriptionFrequency = "weekly"
	SubscriptionFrequencyBiweekly SubscriptionFrequency = "biweekly"
	SubscriptionFrequencyMonthly  SubscriptionFrequency = "monthly"
)

func (f SubscriptionFrequency) Valid() bool {
	switch f {
	case SubscriptionFrequencyWeekly, SubscriptionFrequencyBiweekly, SubscriptionFrequencyMonthly:
		return true
	}
	return false
}

// NextDelivery returns the delivery date that follows from for this frequency.
// The input is truncated to midnight first, so the interval is always counted
// from the delivery date itself, not from the moment of evaluation.
func (f SubscriptionFrequency) NextDelivery(from time.Time) time.Time {
	d := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	switch f {
	case SubscriptionFrequencyBiweekly:
		return d.AddDate(0, 0, 14)
	case SubscriptionFrequencyMonthly:
		return d.AddDate(0, 1, 0)
	default:
		return d.AddDate(0, 0, 7)
	}
}
