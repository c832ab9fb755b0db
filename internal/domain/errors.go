package domain

import "errors"

// Sentinel errors used throughout the application.
// HTTP handlers translate these to status codes via a single mapError function.
var (
	ErrNotFound          = errors.New("not found")
	ErrQueueFull         = errors.New("dispatch queue is at capacity")
	ErrDuplicateRow      = errors.New("row is already being processed")
	ErrMissingBranchID   = errors.New("missing branch id")
	ErrInvalidCoordinate = errors.New("missing or invalid lat/lng")
	ErrInvalidPrice      = errors.New("invalid price")
)
