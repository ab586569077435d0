package order

import (
	"fmt"
	"time"
)

// OversoldError aborts a commit whose line item asked for more than a batch
// has left. Available is the constraining quantity at the time the batch row
// was locked.
type OversoldError struct {
	BatchID   string
	BatchDate time.Time
	Requested int
	Available int
}

func (e *OversoldError) Error() string {
	return fmt.Sprintf("only %d available for batch %s on %s (requested %d)",
		e.Available, e.BatchID, e.BatchDate.Format("2006-01-02"), e.Requested)
}
