package model

import (
	"fmt"
)

// ValidationError means the request was malformed and was rejected before
// any storage call was made.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid request: " + e.Reason
}

// NotFoundError means the referenced item does not exist.
type NotFoundError struct {
	ItemID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("item %d does not exist", e.ItemID)
}

// InsufficientStockError means the requested quantity exceeded the stock
// available at the moment of reservation. Available holds the stock observed
// right after the refused reservation, so under contention it may already be
// lower than what the caller saw when building the request.
type InsufficientStockError struct {
	ItemID    int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for item %d: requested %d, available %d", e.ItemID, e.Requested, e.Available)
}

// RetryableError wraps a storage failure after which nothing was committed,
// so the caller may safely resubmit the identical request.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return "temporary storage failure, retry the request: " + e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}
