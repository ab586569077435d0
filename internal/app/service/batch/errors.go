package batch

import (
	"errors"
	"fmt"
)

var (
	ErrBatchExists   = errors.New("batch already exists for this product and date")
	ErrBatchNotFound = errors.New("batch not found")
	ErrBatchHasSales = errors.New("cannot delete batch with existing orders")
)

// CapacityReductionError rejects lowering quantity_available below what has
// already been sold. MinAllowed is the current quantity_sold.
type CapacityReductionError struct {
	BatchID    string
	MinAllowed int
}

func (e *CapacityReductionError) Error() string {
	return fmt.Sprintf("cannot reduce quantity below %d (already sold), consider cancelling orders first", e.MinAllowed)
}
