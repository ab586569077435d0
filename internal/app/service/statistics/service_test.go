package statistics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesStatisticRequestDateRange(t *testing.T) {
	now := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

	t.Run("defaults to trailing 30 days", func(t *testing.T) {
		req := &SalesStatisticRequest{}
		from, to, err := req.dateRange(now)
		require.NoError(t, err)
		assert.Equal(t, "2024-05-16", from.Format("2006-01-02"))
		assert.Equal(t, "2024-06-15", to.Format("2006-01-02"))
	})

	t.Run("explicit window", func(t *testing.T) {
		req := &SalesStatisticRequest{From: "2024-06-01", To: "2024-06-07"}
		from, to, err := req.dateRange(now)
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01", from.Format("2006-01-02"))
		assert.Equal(t, "2024-06-07", to.Format("2006-01-02"))
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		req := &SalesStatisticRequest{From: "2024-06-07", To: "2024-06-01"}
		_, _, err := req.dateRange(now)
		assert.ErrorContains(t, err, "precedes")
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		req := &SalesStatisticRequest{From: "June 1"}
		_, _, err := req.dateRange(now)
		assert.ErrorContains(t, err, "invalid from date")
	})
}
